// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package github

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCreatePullRequest(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v3/repos/my-org/orders/pulls" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("Authorization = %q, want %q", auth, "Bearer secret")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"number": 42, "html_url": "https://github.example.com/my-org/orders/pull/42"}`))
	}))
	defer server.Close()

	client, err := NewClient("secret", server.URL)
	if err != nil {
		t.Fatal(err)
	}
	info, err := client.CreatePullRequest(t.Context(), "my-org", "orders", PullRequest{
		Title: "build(deps): Upgrade guava 33.0.0",
		Body:  "Upgrade guava to 33.0.0.",
		Head:  "jdu/guava",
		Base:  "main",
	})
	if err != nil {
		t.Fatal(err)
	}
	wantInfo := &PullRequestInfo{Number: 42, URL: "https://github.example.com/my-org/orders/pull/42"}
	if diff := cmp.Diff(wantInfo, info); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	wantRequest := map[string]string{
		"title": "build(deps): Upgrade guava 33.0.0",
		"body":  "Upgrade guava to 33.0.0.",
		"head":  "jdu/guava",
		"base":  "main",
	}
	if diff := cmp.Diff(wantRequest, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestCreatePullRequest_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message": "Validation Failed"}`))
	}))
	defer server.Close()

	client, err := NewClient("secret", server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.CreatePullRequest(t.Context(), "my-org", "orders", PullRequest{Head: "a", Base: "b"}); err == nil {
		t.Error("CreatePullRequest() expected error, got nil")
	}
}

func TestParseRemote(t *testing.T) {
	for _, test := range []struct {
		remote  string
		want    *Repository
		wantErr bool
	}{
		{remote: "https://github.com/my-org/orders.git", want: &Repository{Owner: "my-org", Name: "orders"}},
		{remote: "https://github.com/my-org/orders", want: &Repository{Owner: "my-org", Name: "orders"}},
		{remote: "git@github.com:my-org/orders.git", want: &Repository{Owner: "my-org", Name: "orders"}},
		{remote: "https://github.example.com/my-org/orders/", want: &Repository{Owner: "my-org", Name: "orders"}},
		{remote: "https://github.com/my-org", wantErr: true},
		{remote: "orders", wantErr: true},
		{remote: "git@github.com", wantErr: true},
		{remote: "https://bitbucket.example.com/scm/team/a/b.git", wantErr: true},
	} {
		t.Run(test.remote, func(t *testing.T) {
			got, err := ParseRemote(test.remote)
			if test.wantErr {
				if err == nil {
					t.Errorf("ParseRemote(%q) expected error, got %v", test.remote, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
