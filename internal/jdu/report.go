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

package jdu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jdubot/jdu/internal/pom"
	"github.com/jdubot/jdu/internal/yaml"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Status is the outcome of processing one repository.
type Status string

const (
	// StatusPushed means the upgrade commit was pushed.
	StatusPushed Status = "pushed"
	// StatusSkipped means no pom changed, so nothing was committed.
	StatusSkipped Status = "skipped"
	// StatusFailed means processing stopped with an error.
	StatusFailed Status = "failed"
	// StatusDryRun means the upgrade was committed locally but not pushed.
	StatusDryRun Status = "dry-run"
)

// Result records what happened to one repository.
type Result struct {
	Repository     string       `json:"repository" yaml:"repository"`
	Branch         string       `json:"branch,omitempty" yaml:"branch,omitempty"`
	Status         Status       `json:"status" yaml:"status"`
	Reason         string       `json:"reason,omitempty" yaml:"reason,omitempty"`
	Commit         string       `json:"commit,omitempty" yaml:"commit,omitempty"`
	PullRequestURL string       `json:"pullRequestURL,omitempty" yaml:"pullRequestURL,omitempty"`
	Changes        []pom.Change `json:"changes,omitempty" yaml:"changes,omitempty"`
	Skips          []pom.Skip   `json:"skips,omitempty" yaml:"skips,omitempty"`
}

// Report is the outcome of an upgrade run.
type Report struct {
	RunID      string    `json:"runID" yaml:"runID"`
	Dependency string    `json:"dependency" yaml:"dependency"`
	Version    string    `json:"version" yaml:"version"`
	Results    []*Result `json:"results" yaml:"results"`
}

// Failed returns the number of repositories that failed.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			n++
		}
	}
	return n
}

func encodeReport(output string, report *Report) ([]byte, error) {
	return encode(output, report, func() []byte { return encodeReportAsTable(report) })
}

func encodeResult(output string, result *pom.Result) ([]byte, error) {
	return encode(output, result, func() []byte { return encodeChangesAsTable(result.Changes) })
}

func encode(output string, v any, asTable func() []byte) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch output {
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(v)
	case "table":
		data = asTable()
	default:
		err = fmt.Errorf("unknown output format: %q", output)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %q failed: %w", output, err)
	}
	return data, nil
}

func encodeReportAsTable(report *Report) []byte {
	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Repository", "Branch", "Status", "Changes", "Details"})
	for _, res := range report.Results {
		details := res.Reason
		if res.PullRequestURL != "" {
			details = res.PullRequestURL
		}
		t.AppendRow(table.Row{res.Repository, res.Branch, res.Status, strconv.Itoa(len(res.Changes)), details})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return buf.Bytes()
}

func encodeChangesAsTable(changes []pom.Change) []byte {
	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"File", "Section", "Element", "Name", "From", "To"})
	for _, c := range changes {
		t.AppendRow(table.Row{c.File, c.Section, c.Element, c.Name, c.From, c.To})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return buf.Bytes()
}
