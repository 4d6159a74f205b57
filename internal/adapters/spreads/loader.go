// Package spreads loads operator-defined spreads from YAML.
package spreads

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

type file struct {
	Spreads []spreadFile `yaml:"spreads"`
}

type spreadFile struct {
	ID        string         `yaml:"id"`
	Title     string         `yaml:"title"`
	Positions []positionFile `yaml:"positions"`
}

type positionFile struct {
	Name   string `yaml:"name"`
	Aspect string `yaml:"aspect"`
}

// LoadFile reads extra spreads from path. An empty path yields none.
func LoadFile(path string) ([]domain.Spread, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spreads file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a spreads document.
func Parse(raw []byte) ([]domain.Spread, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spreads: %w", err)
	}

	out := make([]domain.Spread, 0, len(f.Spreads))
	for i, sf := range f.Spreads {
		if sf.ID == "" {
			return nil, fmt.Errorf("spread #%d: missing id", i+1)
		}
		if sf.ID == domain.SpreadCustom {
			return nil, fmt.Errorf("spread %q: id is reserved", sf.ID)
		}
		if n := len(sf.Positions); n < 1 || n > domain.MaxSpreadSize {
			return nil, fmt.Errorf("spread %q: %w", sf.ID, domain.ErrInvalidN)
		}
		positions := make([]domain.Position, len(sf.Positions))
		for j, p := range sf.Positions {
			a := domain.Aspect(p.Aspect)
			if a != "" && !slices.Contains(domain.Aspects, a) {
				return nil, fmt.Errorf("spread %q position %d: unknown aspect %q", sf.ID, j+1, p.Aspect)
			}
			positions[j] = domain.Position{Name: p.Name, Aspect: a}
		}
		title := sf.Title
		if title == "" {
			title = sf.ID
		}
		out = append(out, domain.Spread{ID: sf.ID, Title: title, Positions: positions})
	}
	return out, nil
}
