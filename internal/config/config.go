// Package config loads and validates mica.yml, the project manifest
// consumed by `mica run`.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	semver "github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the manifest filename looked up in the working
// directory when no explicit path is given.
const DefaultFile = "mica.yml"

// Manifest represents the parsed contents of mica.yml.
type Manifest struct {
	Path      string
	Name      string
	Version   string
	License   string
	Authors   []string
	Toolchain string
	Targets   map[string]*Target

	// targetOrder preserves the manifest's declaration order so the
	// default target is deterministic.
	targetOrder []string
}

// Target describes one runnable entry in the manifest.
type Target struct {
	Name string
	Main string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// ErrNoTarget reports a manifest that defines nothing runnable.
var ErrNoTarget = errors.New("manifest: no targets defined")

// Load parses a manifest from disk, returning a validated Manifest.
func Load(path string) (*Manifest, error) {
	if path == "" {
		path = DefaultFile
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	m, err := Parse(file)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}
	m.Path = absPath
	return m, nil
}

// Parse decodes and validates a manifest from a reader. Unknown keys
// are rejected.
func Parse(r io.Reader) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}

	m := raw.toManifest()
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Version != "" {
		if _, err := semver.NewVersion(m.Version); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("invalid version %q", m.Version))
		}
	}
	if m.Toolchain != "" {
		if _, err := semver.NewConstraint(m.Toolchain); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("invalid toolchain constraint %q", m.Toolchain))
		}
	}
	for i, author := range m.Authors {
		if author == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("authors[%d] must be a non-empty string", i))
		}
	}
	if len(m.targetOrder) == 0 {
		errs.Issues = append(errs.Issues, "at least one target must be defined")
	}
	for _, name := range m.targetOrder {
		t := m.Targets[name]
		if t.Main == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires a main entrypoint", name))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// CheckToolchain verifies the running tool's version against the
// manifest's toolchain constraint. An absent constraint always passes.
func (m *Manifest) CheckToolchain(version string) error {
	if m.Toolchain == "" {
		return nil
	}
	c, err := semver.NewConstraint(m.Toolchain)
	if err != nil {
		return fmt.Errorf("manifest: toolchain constraint %q: %w", m.Toolchain, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("manifest: tool version %q: %w", version, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("manifest: toolchain %s does not satisfy constraint %q", version, m.Toolchain)
	}
	return nil
}

// DefaultTarget returns the first target in manifest order.
func (m *Manifest) DefaultTarget() (*Target, error) {
	if m == nil || len(m.targetOrder) == 0 {
		return nil, ErrNoTarget
	}
	return m.Targets[m.targetOrder[0]], nil
}

// FindTarget looks up a target by name.
func (m *Manifest) FindTarget(name string) (*Target, bool) {
	if m == nil {
		return nil, false
	}
	t, ok := m.Targets[strings.TrimSpace(name)]
	return t, ok
}

// EntryPath resolves a target's main file relative to the manifest's
// directory.
func (m *Manifest) EntryPath(t *Target) string {
	if filepath.IsAbs(t.Main) || m.Path == "" {
		return t.Main
	}
	return filepath.Join(filepath.Dir(m.Path), t.Main)
}

type manifestFile struct {
	Name      string    `yaml:"name"`
	Version   string    `yaml:"version"`
	License   string    `yaml:"license"`
	Authors   []string  `yaml:"authors"`
	Toolchain string    `yaml:"toolchain"`
	Targets   targetMap `yaml:"targets"`
}

type targetYAML struct {
	Main string `yaml:"main"`
}

type targetMap struct {
	items []targetMapEntry
}

type targetMapEntry struct {
	name string
	spec *targetYAML
}

// UnmarshalYAML decodes the targets mapping while keeping declaration
// order, which plain map decoding would lose.
func (tm *targetMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		tm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: targets must be a mapping")
	}
	items := make([]targetMapEntry, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valueNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: targets must not use empty keys")
		}
		entry := new(targetYAML)
		if err := valueNode.Decode(entry); err != nil {
			return fmt.Errorf("manifest: target %q: %w", key, err)
		}
		items = append(items, targetMapEntry{name: key, spec: entry})
	}
	tm.items = items
	return nil
}

func (mf manifestFile) toManifest() *Manifest {
	m := &Manifest{
		Name:        strings.TrimSpace(mf.Name),
		Version:     strings.TrimSpace(mf.Version),
		License:     strings.TrimSpace(mf.License),
		Toolchain:   strings.TrimSpace(mf.Toolchain),
		Targets:     make(map[string]*Target, len(mf.Targets.items)),
		targetOrder: make([]string, 0, len(mf.Targets.items)),
	}
	for _, author := range mf.Authors {
		m.Authors = append(m.Authors, strings.TrimSpace(author))
	}
	for _, item := range mf.Targets.items {
		if item.spec == nil {
			continue
		}
		if _, exists := m.Targets[item.name]; exists {
			continue
		}
		m.Targets[item.name] = &Target{
			Name: item.name,
			Main: strings.TrimSpace(item.spec.Main),
		}
		m.targetOrder = append(m.targetOrder, item.name)
	}
	return m
}
