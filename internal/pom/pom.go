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

// Package pom rewrites dependency, plugin and project versions in Maven
// pom.xml files.
//
// Versions are looked up on the parsed XML tree, but the output is the
// original file with only the content of the changed version elements
// replaced. Everything else, including the layout of the root tag, entities
// and CDATA sections, is written back byte for byte.
package pom

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/jdubot/jdu/internal/semver"
)

const (
	// defaultPluginGroupID is the groupId Maven assumes for plugins that omit it.
	defaultPluginGroupID = "org.apache.maven.plugins"

	reasonOutsideProperty = "property defined outside this pom"
)

var (
	// ErrPropertyCycle is returned when properties refer to each other.
	ErrPropertyCycle = errors.New("property reference cycle")

	errNotPOM = errors.New("root element is not <project>")

	errTreeMismatch = errors.New("unexpected element structure")

	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

	propertyRefRegexp = regexp.MustCompile(`^\$\{([^}]+)\}$`)
)

// Options selects what to upgrade.
type Options struct {
	// Dependency is the artifactId to match, or "groupId:artifactId".
	Dependency string

	// Version is written to every matching dependency and plugin.
	Version string

	// ArtifactVersion, if set, replaces the project version. The parent
	// version follows when it was equal to the project version, or when the
	// project inherits its version from the parent.
	ArtifactVersion string

	// AllowDowngrade permits replacing a newer version with an older one.
	AllowDowngrade bool
}

func (o Options) coordinates() (groupID, artifactID string) {
	if g, a, ok := strings.Cut(o.Dependency, ":"); ok {
		return g, a
	}
	return "", o.Dependency
}

// Change records one version value that was replaced.
type Change struct {
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	// Section is where the declaration was found, such as
	// "dependencyManagement" or "profiles/ci/build/plugins".
	Section string `json:"section" yaml:"section"`
	// Element is "dependency", "plugin", "property", "project" or "parent".
	Element string `json:"element" yaml:"element"`
	// Name is the artifactId, or the property name for "property" changes.
	Name string `json:"name" yaml:"name"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Skip records a matching declaration that was deliberately left alone.
type Skip struct {
	File    string `json:"file,omitempty" yaml:"file,omitempty"`
	Section string `json:"section" yaml:"section"`
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Reason  string `json:"reason" yaml:"reason"`
}

// Document is a parsed pom.xml.
type Document struct {
	doc     *etree.Document
	project *etree.Element
	data    []byte
	crlf    bool
	spans   map[*etree.Element]span
	edited  map[*etree.Element]bool
}

// span is the byte range of the content of an element in the source. For
// a self-closing element, start and end enclose the trailing "/>".
type span struct {
	start, end  int64
	selfClosing bool
}

// Parse parses the contents of a pom.xml file.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil || root.Tag != "project" {
		return nil, errNotPOM
	}
	spans, err := contentSpans(data, root)
	if err != nil {
		return nil, err
	}
	return &Document{
		doc:     doc,
		project: root,
		data:    data,
		crlf:    bytes.Contains(data, []byte("\r\n")),
		spans:   spans,
		edited:  make(map[*etree.Element]bool),
	}, nil
}

// contentSpans maps every element below root to the byte range of its
// content in data. Elements are matched in document order.
func contentSpans(data []byte, root *etree.Element) (map[*etree.Element]span, error) {
	var elements []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		elements = append(elements, el)
		for _, c := range el.ChildElements() {
			walk(c)
		}
	}
	walk(root)

	type open struct {
		el    *etree.Element
		start int64
	}
	var (
		stack []open
		next  int
		spans = make(map[*etree.Element]span, len(elements))
		dec   = xml.NewDecoder(bytes.NewReader(data))
	)
	for {
		before := dec.InputOffset()
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		after := dec.InputOffset()
		switch tok.(type) {
		case xml.StartElement:
			if next == len(elements) {
				return nil, errTreeMismatch
			}
			stack = append(stack, open{el: elements[next], start: after})
			next++
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errTreeMismatch
			}
			o := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if before == after && bytes.HasSuffix(data[:o.start], []byte("/>")) {
				spans[o.el] = span{start: o.start - 2, end: o.start, selfClosing: true}
				continue
			}
			spans[o.el] = span{start: o.start, end: before}
		}
	}
	if next != len(elements) || len(stack) != 0 {
		return nil, errTreeMismatch
	}
	return spans, nil
}

// Bytes returns the source with the content of every edited element
// replaced. All other bytes are returned as they were read.
func (d *Document) Bytes() ([]byte, error) {
	var edited []*etree.Element
	for el := range d.edited {
		if _, ok := d.spans[el]; !ok {
			return nil, fmt.Errorf("no source position for <%s>", el.Tag)
		}
		edited = append(edited, el)
	}
	slices.SortFunc(edited, func(a, b *etree.Element) int {
		return cmp.Compare(d.spans[a].start, d.spans[b].start)
	})

	var buf bytes.Buffer
	var last int64
	for _, el := range edited {
		s := d.spans[el]
		buf.Write(d.data[last:s.start])
		content := textEscaper.Replace(el.Text())
		if d.crlf {
			content = strings.ReplaceAll(content, "\n", "\r\n")
		}
		if s.selfClosing {
			content = ">" + content + "</" + el.FullTag() + ">"
		}
		buf.WriteString(content)
		last = s.end
	}
	buf.Write(d.data[last:])
	return buf.Bytes(), nil
}

// setText replaces the trimmed text of el, keeping any surrounding
// whitespace, and marks el for Bytes.
func (d *Document) setText(el *etree.Element, value string) {
	d.edited[el] = true
	raw := el.Text()
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		el.SetText(value)
		return
	}
	el.SetText(strings.Replace(raw, trimmed, value, 1))
}

// Upgrade applies opts to the document and reports what changed and what was
// skipped. The document is modified in place.
func (d *Document) Upgrade(opts Options) ([]Change, []Skip, error) {
	u := &upgrader{opts: opts, doc: d, project: d.project}
	u.groupID, u.artifactID = opts.coordinates()
	if u.artifactID != "" && opts.Version != "" {
		if err := u.searchContainer(d.project, "", nil); err != nil {
			return nil, nil, err
		}
		if profiles := child(d.project, "profiles"); profiles != nil {
			for _, profile := range children(profiles, "profile") {
				prefix := fmt.Sprintf("profiles/%s/", text(child(profile, "id")))
				if err := u.searchContainer(profile, prefix, child(profile, "properties")); err != nil {
					return nil, nil, err
				}
			}
		}
	}
	if opts.ArtifactVersion != "" {
		u.changeArtifactVersion()
	}
	return u.changes, u.skips, nil
}

type upgrader struct {
	opts       Options
	doc        *Document
	groupID    string
	artifactID string
	project    *etree.Element
	changes    []Change
	skips      []Skip
}

// searchContainer searches the project, or a profile, for matching
// declarations. profileProperties is consulted before the project properties
// when resolving ${...} references.
func (u *upgrader) searchContainer(base *etree.Element, prefix string, profileProperties *etree.Element) error {
	scopes := []*etree.Element{profileProperties, child(u.project, "properties")}
	if deps := path(base, "dependencyManagement", "dependencies"); deps != nil {
		if err := u.searchDependencies(deps, prefix+"dependencyManagement", scopes); err != nil {
			return err
		}
	}
	build := child(base, "build")
	if plugins := path(build, "pluginManagement", "plugins"); plugins != nil {
		if err := u.searchPlugins(plugins, prefix+"build/pluginManagement", scopes); err != nil {
			return err
		}
	}
	if deps := child(base, "dependencies"); deps != nil {
		if err := u.searchDependencies(deps, prefix+"dependencies", scopes); err != nil {
			return err
		}
	}
	if plugins := child(build, "plugins"); plugins != nil {
		if err := u.searchPlugins(plugins, prefix+"build/plugins", scopes); err != nil {
			return err
		}
	}
	return nil
}

func (u *upgrader) searchDependencies(deps *etree.Element, section string, scopes []*etree.Element) error {
	for _, dep := range children(deps, "dependency") {
		if !u.matches(dep, "") {
			continue
		}
		if err := u.updateVersion(dep, section, "dependency", scopes); err != nil {
			return err
		}
	}
	return nil
}

// searchPlugins updates the dependencies declared inside each plugin first.
// The plugin's own version is only updated when none of its dependencies
// matched and the plugin itself is the requested artifact.
func (u *upgrader) searchPlugins(plugins *etree.Element, section string, scopes []*etree.Element) error {
	for _, plugin := range children(plugins, "plugin") {
		matchedDependency := false
		if deps := child(plugin, "dependencies"); deps != nil {
			for _, dep := range children(deps, "dependency") {
				if !u.matches(dep, "") {
					continue
				}
				matchedDependency = true
				if err := u.updateVersion(dep, section+"/plugin/dependencies", "dependency", scopes); err != nil {
					return err
				}
			}
		}
		if matchedDependency || !u.matches(plugin, defaultPluginGroupID) {
			continue
		}
		if err := u.updateVersion(plugin, section, "plugin", scopes); err != nil {
			return err
		}
	}
	return nil
}

func (u *upgrader) matches(el *etree.Element, defaultGroupID string) bool {
	if text(child(el, "artifactId")) != u.artifactID {
		return false
	}
	if u.groupID == "" {
		return true
	}
	groupID := text(child(el, "groupId"))
	if groupID == "" {
		groupID = defaultGroupID
	}
	return groupID == u.groupID
}

// updateVersion updates the <version> of a dependency or plugin, following a
// ${property} reference when the version is not a literal.
func (u *upgrader) updateVersion(el *etree.Element, section, element string, scopes []*etree.Element) error {
	version := child(el, "version")
	if version == nil {
		// Managed elsewhere, usually by dependencyManagement or a parent pom.
		return nil
	}
	current := text(version)
	if name, ok := propertyRef(current); ok {
		return u.updateProperty(name, section, scopes)
	}
	if strings.Contains(current, "${") {
		u.skip(section, u.artifactID, current, "version is an expression")
		return nil
	}
	u.set(version, section, element, u.artifactID, current)
	return nil
}

func (u *upgrader) updateProperty(name, section string, scopes []*etree.Element) error {
	visited := make(map[string]bool)
	for {
		if strings.HasPrefix(name, "project.") || strings.HasPrefix(name, "pom.") {
			u.skip(section, name, "${"+name+"}", "version follows the project version")
			return nil
		}
		if visited[name] {
			return fmt.Errorf("%w: %s", ErrPropertyCycle, name)
		}
		visited[name] = true
		prop := lookupProperty(name, scopes)
		if prop == nil {
			// Usually defined by a parent pom, which is upgraded on its own.
			u.skip(section, name, "${"+name+"}", reasonOutsideProperty)
			return nil
		}
		current := text(prop)
		if next, ok := propertyRef(current); ok {
			name = next
			continue
		}
		u.set(prop, section, "property", name, current)
		return nil
	}
}

// set replaces the version text of el unless it is already current or the
// change would be a downgrade.
func (u *upgrader) set(el *etree.Element, section, element, name, current string) {
	target := u.opts.Version
	if current == target {
		return
	}
	if !u.opts.AllowDowngrade && semver.IsNewer(current, target) {
		u.skip(section, name, current, fmt.Sprintf("current version is newer than %s", target))
		return
	}
	u.doc.setText(el, target)
	u.changes = append(u.changes, Change{
		Section: section,
		Element: element,
		Name:    name,
		From:    current,
		To:      target,
	})
}

func (u *upgrader) skip(section, name, version, reason string) {
	u.skips = append(u.skips, Skip{
		Section: section,
		Name:    name,
		Version: version,
		Reason:  reason,
	})
}

func (u *upgrader) changeArtifactVersion() {
	target := u.opts.ArtifactVersion
	parentVersion := path(u.project, "parent", "version")
	if version := child(u.project, "version"); version != nil {
		previous := text(version)
		u.setArtifact(version, "project", previous, target)
		if parentVersion != nil && text(parentVersion) == previous {
			u.setArtifact(parentVersion, "parent", previous, target)
		}
		return
	}
	if parentVersion != nil {
		u.setArtifact(parentVersion, "parent", text(parentVersion), target)
	}
}

func (u *upgrader) setArtifact(el *etree.Element, element, current, target string) {
	if current == target {
		return
	}
	u.doc.setText(el, target)
	u.changes = append(u.changes, Change{
		Section: "project",
		Element: element,
		Name:    text(child(u.project, "artifactId")),
		From:    current,
		To:      target,
	})
}

func propertyRef(version string) (string, bool) {
	m := propertyRefRegexp.FindStringSubmatch(version)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func lookupProperty(name string, scopes []*etree.Element) *etree.Element {
	for _, props := range scopes {
		if props == nil {
			continue
		}
		if prop := child(props, name); prop != nil {
			return prop
		}
	}
	return nil
}

// child returns the first child element of el with the given local name.
// Unlike etree's SelectElement it never interprets ':' in tag as a namespace
// prefix, which matters for property names.
func child(el *etree.Element, tag string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func children(el *etree.Element, tag string) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

func path(el *etree.Element, tags ...string) *etree.Element {
	for _, tag := range tags {
		el = child(el, tag)
	}
	return el
}

func text(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}
