// Package labels maps section field keys to display labels.
package labels

import (
	"fmt"
	"os"

	"github.com/iwvelando/anticrisis-view/internal/snapshot"
	"github.com/iwvelando/anticrisis-view/pkg/constants"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Overrides replaces labels per section wire name and key, e.g.
// {"balance": {"cash": "Cash on hand"}}.
type Overrides map[string]map[string]string

var (
	supported = []language.Tag{language.English, language.Russian}
	matcher   = language.NewMatcher(supported)
)

// Resolver resolves labels for one locale. It is safe for concurrent use
// once built.
type Resolver struct {
	tag       language.Tag
	catalogue Catalogue
}

var defaultResolver = mustNew(constants.DefaultLocale)

func mustNew(locale string) *Resolver {
	r, err := New(locale, nil)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the English resolver without overrides.
func Default() *Resolver {
	return defaultResolver
}

// Resolve uses the default English catalogue.
func Resolve(kind snapshot.SectionKind, key string) string {
	return defaultResolver.Resolve(kind, key)
}

// New builds a resolver for locale. Unsupported locales fall back to English.
// Overrides for unknown sections are rejected; overrides for unknown keys are
// accepted and extend the catalogue.
func New(locale string, overrides Overrides) (*Resolver, error) {
	tag := language.English
	if locale != "" {
		requested, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
		}
		_, idx, _ := matcher.Match(requested)
		tag = supported[idx]
	}

	base := english
	if tag == language.Russian {
		base = russian
	}
	cat := base.clone()

	for section, entries := range overrides {
		kind, err := snapshot.ParseSectionKind(section)
		if err != nil {
			return nil, fmt.Errorf("label overrides: %w", err)
		}
		m := cat.Fields[kind]
		if m == nil {
			m = make(map[string]string, len(entries))
			cat.Fields[kind] = m
		}
		for key, label := range entries {
			if label == "" {
				continue
			}
			m[key] = label
		}
	}

	return &Resolver{tag: tag, catalogue: cat}, nil
}

// Tag returns the matched language.
func (r *Resolver) Tag() language.Tag {
	return r.tag
}

// Resolve returns the display label for key in section kind. Keys without a
// mapping are returned unchanged.
func (r *Resolver) Resolve(kind snapshot.SectionKind, key string) string {
	if label, ok := r.catalogue.Fields[kind][key]; ok {
		return label
	}
	return key
}

// SectionTitle returns the localized title of a section.
func (r *Resolver) SectionTitle(kind snapshot.SectionKind) string {
	if title, ok := r.catalogue.Sections[kind]; ok {
		return title
	}
	return kind.String()
}

// Captions returns the fixed captions for tables and exports.
func (r *Resolver) Captions() Captions {
	return r.catalogue.Captions
}

// LoadOverrides reads label overrides from a YAML file.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read label overrides %s: %w", path, err)
	}
	var out Overrides
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse label overrides %s: %w", path, err)
	}
	return out, nil
}

// Merge returns a new Overrides holding a with b layered on top.
func Merge(a, b Overrides) Overrides {
	out := Overrides{}
	for _, src := range []Overrides{a, b} {
		for section, entries := range src {
			if out[section] == nil {
				out[section] = map[string]string{}
			}
			for k, v := range entries {
				out[section][k] = v
			}
		}
	}
	return out
}
