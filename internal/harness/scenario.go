package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/animgraph/internal/compiler"
	"github.com/roach88/animgraph/internal/ir"
)

// Scenario is a document plus the expectations checked after its script
// has been played.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the path of a graph document. Relative paths resolve
	// against the scenario file.
	Document string `yaml:"document,omitempty"`

	// Graph is an inline document, used when Document is empty.
	Graph *compiler.Document `yaml:"graph,omitempty"`

	// Step is the simulated time between frames. Defaults to DefaultStep.
	Step time.Duration `yaml:"step,omitempty"`

	// Frames is the number of idle frames played after the script.
	Frames int `yaml:"frames,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks the state of a finished playback.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// View and Props are used by view_props. Props is a subset match against
	// the last native props the view received.
	View  ir.ViewTag     `yaml:"view,omitempty"`
	Props map[string]any `yaml:"props,omitempty"`

	// Node and Value are used by node_value.
	Node  ir.NodeID `yaml:"node,omitempty"`
	Value any       `yaml:"value,omitempty"`

	// Event and Count are used by event_count.
	Event string `yaml:"event,omitempty"`
	Count int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertViewProps  = "view_props"
	AssertNodeValue  = "node_value"
	AssertEventCount = "event_count"
	AssertNoErrors   = "no_errors"
)

// DefaultStep is one frame at 60Hz, rounded down to whole milliseconds.
const DefaultStep = 16 * time.Millisecond

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected and the document path is resolved relative to
// the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Document != "" && !filepath.IsAbs(scenario.Document) {
		scenario.Document = filepath.Join(filepath.Dir(path), scenario.Document)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and assertion shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Document == "" && s.Graph == nil {
		return fmt.Errorf("one of document or graph is required")
	}
	if s.Document != "" && s.Graph != nil {
		return fmt.Errorf("document and graph are mutually exclusive")
	}
	if s.Step < 0 {
		return fmt.Errorf("step must not be negative")
	}
	if s.Frames < 0 {
		return fmt.Errorf("frames must not be negative")
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertViewProps:
			if a.View == 0 {
				return fmt.Errorf("assertion %d: view_props requires view", i)
			}
		case AssertNodeValue:
			if a.Node == 0 {
				return fmt.Errorf("assertion %d: node_value requires node", i)
			}
		case AssertEventCount:
			if a.Event == "" {
				return fmt.Errorf("assertion %d: event_count requires event", i)
			}
			if a.Count < 0 {
				return fmt.Errorf("assertion %d: count must not be negative", i)
			}
		case AssertNoErrors:
		case "":
			return fmt.Errorf("assertion %d: type is required", i)
		default:
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
	}
	return nil
}

// LoadDocument returns the scenario's graph document.
func (s *Scenario) LoadDocument() (*compiler.Document, error) {
	if s.Graph != nil {
		return s.Graph, nil
	}
	return compiler.LoadFile(s.Document)
}
