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

//go:build configdocgen

// Command config_doc_generate writes the reference page of the jdu
// configuration file from the doc comments of the config package.
//
//	go run -tags configdocgen ./cmd/config_doc_generate.go
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"go/ast"
	"go/token"
	"log"
	"os"
	"reflect"
	"strings"
	"text/template"

	"golang.org/x/tools/go/packages"
)

var (
	inputDir   = flag.String("input", "internal/config", "directory of the config package")
	outputFile = flag.String("output", "doc/config.md", "Markdown file to write")
	tagName    = flag.String("tag", "json", "struct tag holding the configuration keys")
)

// documented lists the structs on the page, in order.
var documented = []string{"Config", "Repository"}

var pageTemplate = template.Must(template.New("page").Parse(`# jdu configuration

jdu reads its configuration from a JSON, YAML or TOML file. Keys are the
same in every format.
{{range .}}
## {{.Name}}
{{if .Doc}}
{{.Doc}}
{{end}}
| Key | Type | Description |
| :--- | :--- | :--- |
{{range .Fields}}| ` + "`{{.Key}}`" + ` | {{.Type}} | {{.Description}} |
{{end}}{{end}}`))

type section struct {
	Name   string
	Doc    string
	Fields []field
}

type field struct {
	Key         string
	Type        string
	Description string
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	pkg, err := loadPackage(*inputDir)
	if err != nil {
		return fmt.Errorf("loading package: %w", err)
	}
	sections, err := collect(pkg.Syntax, documented, *tagName)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, sections); err != nil {
		return err
	}
	return os.WriteFile(*outputFile, buf.Bytes(), 0644)
}

func loadPackage(dir string) (*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedSyntax | packages.NeedTypes | packages.NeedName | packages.NeedFiles,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found in %s", dir)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		var errs []error
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
		return nil, errors.Join(errs...)
	}
	return pkg, nil
}

// collect returns one section per struct in names, in that order.
func collect(files []*ast.File, names []string, tag string) ([]section, error) {
	type found struct {
		st  *ast.StructType
		doc *ast.CommentGroup
	}
	structs := make(map[string]found)
	for _, file := range files {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				structs[ts.Name.Name] = found{st: st, doc: doc}
			}
		}
	}

	var sections []section
	for _, name := range names {
		s, ok := structs[name]
		if !ok {
			return nil, fmt.Errorf("struct %s not found", name)
		}
		sec := section{Name: name, Doc: cleanDoc(s.doc)}
		for _, f := range s.st.Fields.List {
			if len(f.Names) == 0 {
				continue
			}
			for _, n := range f.Names {
				if !n.IsExported() {
					continue
				}
				key := fieldKey(f, n.Name, tag)
				if key == "-" {
					continue
				}
				sec.Fields = append(sec.Fields, field{
					Key:         key,
					Type:        typeName(f.Type, names),
					Description: cleanDoc(f.Doc),
				})
			}
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

// fieldKey returns the configuration key of a field, falling back to the Go
// field name when the tag is missing.
func fieldKey(f *ast.Field, name, tag string) string {
	if f.Tag != nil {
		tags := reflect.StructTag(strings.Trim(f.Tag.Value, "`"))
		if key, _, _ := strings.Cut(tags.Get(tag), ","); key != "" {
			return key
		}
	}
	return name
}

// typeName describes a field type in configuration terms. Documented structs
// link to their section.
func typeName(expr ast.Expr, documented []string) string {
	switch t := expr.(type) {
	case *ast.Ident:
		for _, d := range documented {
			if t.Name == d {
				return fmt.Sprintf("[%s](#%s)", t.Name, strings.ToLower(t.Name))
			}
		}
		if t.Name == "Server" {
			return "string"
		}
		return t.Name
	case *ast.StarExpr:
		return typeName(t.X, documented)
	case *ast.ArrayType:
		return "list of " + typeName(t.Elt, documented)
	case *ast.MapType:
		return fmt.Sprintf("map of %s to %s", typeName(t.Key, documented), typeName(t.Value, documented))
	case *ast.SelectorExpr:
		return t.Sel.Name
	default:
		return fmt.Sprintf("%T", expr)
	}
}

func cleanDoc(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	return strings.ReplaceAll(text, "|", `\|`)
}
