package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Roster is the YAML description of a simulated tournament's field
type Roster struct {
	Name    string         `yaml:"name"`
	Players []RosterPlayer `yaml:"players"`
}

// RosterPlayer is one entrant. A zero rating means the default rating.
type RosterPlayer struct {
	Name   string  `yaml:"name"`
	Rating float64 `yaml:"rating"`
}

// ParseRoster decodes a roster, rejecting unknown fields
func ParseRoster(r io.Reader) (*Roster, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var roster Roster
	if err := dec.Decode(&roster); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("roster is empty")
		}
		return nil, fmt.Errorf("invalid roster: %w", err)
	}
	for i, p := range roster.Players {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("roster player %d has no name", i+1)
		}
	}
	return &roster, nil
}

// LoadRoster reads a roster file
func LoadRoster(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseRoster(f)
}
