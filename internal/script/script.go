// Package script loads event scripts for deterministic replay.
//
// A script is an optional starting document plus an ordered list of event
// envelopes, written in YAML, TOML or JSON:
//
//	description: hotkey steal
//	events:
//	  - type: installedAppsScanned
//	    names: [alpha, beta]
//	  - type: hotCodeUpdated
//	    appName: alpha
//	    value: KeyA
//
// Replaying the same script always yields the same snapshot.
package script

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/switcher/internal/domain/applist"
	"github.com/GriffinCanCode/switcher/internal/domain/migration"
	"github.com/GriffinCanCode/switcher/internal/shared/types"
)

// Format is a script encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for unrecognised file extensions or format names.
var ErrUnknownFormat = errors.New("unknown script format")

// Script is a replayable event stream
type Script struct {
	Description string              `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Initial     *migration.Document `json:"initial,omitempty" yaml:"initial,omitempty" toml:"initial,omitempty"`
	Events      []applist.Envelope  `json:"events" yaml:"events" toml:"events"`
}

// FormatFromPath picks a format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Parse decodes a script
func Parse(data []byte, format Format) (*Script, error) {
	var s Script
	var err error

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	case FormatTOML:
		err = toml.Unmarshal(data, &s)
	case FormatJSON:
		err = sonic.Unmarshal(data, &s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s script: %w", format, err)
	}
	return &s, nil
}

// Marshal encodes a script
func Marshal(s *Script, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatTOML:
		return toml.Marshal(s)
	case FormatJSON:
		return sonic.ConfigStd.MarshalIndent(s, "", "  ")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Decode turns every envelope into an event, reporting the first bad one by index
func (s *Script) Decode() ([]applist.Event, error) {
	events := make([]applist.Event, 0, len(s.Events)+1)
	if s.Initial != nil {
		events = append(events, applist.StartupLoaded{Document: *s.Initial})
	}
	for i, env := range s.Events {
		event, err := env.Event()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, event)
	}
	return events, nil
}

// Run replays the script from the default snapshot
func (s *Script) Run() (types.Snapshot, error) {
	events, err := s.Decode()
	if err != nil {
		return types.Snapshot{}, err
	}
	return applist.ApplyAll(types.DefaultSnapshot(), events...)
}

// Record builds a script from events
func Record(description string, events ...applist.Event) (*Script, error) {
	s := &Script{Description: description, Events: make([]applist.Envelope, 0, len(events))}
	for i, event := range events {
		env, err := applist.NewEnvelope(event)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		s.Events = append(s.Events, env)
	}
	return s, nil
}
