// Package config loads scenario files describing a complete simulation
// run. Scenarios can be written in HCL or YAML; the format is chosen by
// file extension and both accept the same keys:
//
//	agents               = 100
//	highway              = true
//	exploration_rate     = 0.1
//	max_iterations       = 1000
//	complete_information = false
//	trials               = 10
//	seed                 = 42
//	parallelism          = 4
//
//	path_costs {
//	  u1 = 0.01
//	  u2 = 25
//	  d1 = 25
//	  d2 = 0.01
//	}
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/lox/congestion/internal/game"
	"github.com/lox/congestion/internal/route"
	"github.com/lox/congestion/internal/simulator"
)

// DefaultTrials is used when a scenario does not set trials.
const DefaultTrials = 10

// ErrUnknownFormat is returned for scenario files with an unrecognised
// extension.
var ErrUnknownFormat = errors.New("unknown scenario format")

// Format identifies a scenario file encoding.
type Format string

const (
	FormatHCL  Format = "hcl"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from the file extension.
func FormatFor(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hcl":
		return FormatHCL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (expected .hcl, .yaml or .yml)", ErrUnknownFormat, filepath.Ext(filename))
	}
}

// ParseFormat accepts a format or extension name ("hcl", "yaml", "yml"),
// case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "hcl":
		return FormatHCL, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (expected hcl, yaml or yml)", ErrUnknownFormat, name)
	}
}

// Scenario is a fully resolved run configuration.
type Scenario struct {
	Agents              int             `json:"agents" yaml:"agents"`
	Highway             bool            `json:"highway" yaml:"highway"`
	ExplorationRate     float64         `json:"exploration_rate" yaml:"exploration_rate"`
	MaxIterations       int             `json:"max_iterations" yaml:"max_iterations"`
	CompleteInformation bool            `json:"complete_information" yaml:"complete_information"`
	Trials              int             `json:"trials" yaml:"trials"`
	Seed                int64           `json:"seed" yaml:"seed"`
	Parallelism         int             `json:"parallelism" yaml:"parallelism"`
	PathCosts           route.PathCosts `json:"path_costs" yaml:"path_costs"`
}

// scenarioFile is the on-disk shape. Path costs are pointers so a partial
// path_costs block only overrides the coefficients it names.
type scenarioFile struct {
	Agents              int        `hcl:"agents" yaml:"agents"`
	Highway             bool       `hcl:"highway,optional" yaml:"highway"`
	ExplorationRate     float64    `hcl:"exploration_rate" yaml:"exploration_rate"`
	MaxIterations       int        `hcl:"max_iterations" yaml:"max_iterations"`
	CompleteInformation bool       `hcl:"complete_information,optional" yaml:"complete_information"`
	Trials              int        `hcl:"trials,optional" yaml:"trials"`
	Seed                int64      `hcl:"seed,optional" yaml:"seed"`
	Parallelism         int        `hcl:"parallelism,optional" yaml:"parallelism"`
	PathCosts           *costsFile `hcl:"path_costs,block" yaml:"path_costs"`
}

type costsFile struct {
	U1 *float64 `hcl:"u1,optional" yaml:"u1"`
	U2 *float64 `hcl:"u2,optional" yaml:"u2"`
	D1 *float64 `hcl:"d1,optional" yaml:"d1"`
	D2 *float64 `hcl:"d2,optional" yaml:"d2"`
}

// Default returns a scenario with every optional value at its default.
// Agents, exploration rate and iteration budget are left for the caller.
func Default() *Scenario {
	return &Scenario{
		Trials:    DefaultTrials,
		PathCosts: route.DefaultPathCosts,
	}
}

// Load reads a scenario file, applies defaults and returns it. The result
// is not validated; call Validate before running it.
func Load(filename string) (*Scenario, error) {
	format, err := FormatFor(filename)
	if err != nil {
		return nil, err
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	return Parse(src, filename, format)
}

// Parse decodes src in the given format. filename is only used in
// diagnostics.
func Parse(src []byte, filename string, format Format) (*Scenario, error) {
	var raw scenarioFile

	switch format {
	case FormatHCL:
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCL(src, filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
		}
		diags = gohcl.DecodeBody(file.Body, nil, &raw)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(src))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return raw.resolve(), nil
}

// resolve applies defaults for missing values
func (f *scenarioFile) resolve() *Scenario {
	s := Default()
	s.Agents = f.Agents
	s.Highway = f.Highway
	s.ExplorationRate = f.ExplorationRate
	s.MaxIterations = f.MaxIterations
	s.CompleteInformation = f.CompleteInformation
	s.Seed = f.Seed
	s.Parallelism = f.Parallelism

	if f.Trials != 0 {
		s.Trials = f.Trials
	}

	if c := f.PathCosts; c != nil {
		if c.U1 != nil {
			s.PathCosts.U1 = *c.U1
		}
		if c.U2 != nil {
			s.PathCosts.U2 = *c.U2
		}
		if c.D1 != nil {
			s.PathCosts.D1 = *c.D1
		}
		if c.D2 != nil {
			s.PathCosts.D2 = *c.D2
		}
	}
	return s
}

// Validate checks the game preconditions plus the run-level settings.
func (s *Scenario) Validate() error {
	if err := s.GameConfig().Validate(); err != nil {
		return err
	}
	if s.Trials < 1 {
		return fmt.Errorf("%w: trials must be at least 1, got %d", game.ErrInvalidConfiguration, s.Trials)
	}
	if s.Parallelism < 0 {
		return fmt.Errorf("%w: parallelism cannot be negative, got %d", game.ErrInvalidConfiguration, s.Parallelism)
	}
	return nil
}

// Topology returns the network the scenario plays on.
func (s *Scenario) Topology() route.Topology {
	return route.TopologyFor(s.Highway)
}

// GameConfig returns the per-trial game template. Seed and Logger are
// filled in by the simulator for each trial.
func (s *Scenario) GameConfig() game.Config {
	return game.Config{
		Agents:              s.Agents,
		Topology:            s.Topology(),
		ExplorationRate:     s.ExplorationRate,
		PathCosts:           s.PathCosts,
		MaxIterations:       s.MaxIterations,
		CompleteInformation: s.CompleteInformation,
	}
}

// SimulatorConfig returns a simulator configuration for the scenario.
func (s *Scenario) SimulatorConfig(logger *log.Logger) simulator.Config {
	return simulator.Config{
		Trials:      s.Trials,
		Game:        s.GameConfig(),
		Seed:        s.Seed,
		Parallelism: s.Parallelism,
		Logger:      logger,
	}
}

// Encode renders the scenario with every value explicit.
func (s *Scenario) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatHCL:
		return s.encodeHCL(), nil
	case FormatYAML:
		return yaml.Marshal(s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (s *Scenario) encodeHCL() []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	body.SetAttributeValue("agents", cty.NumberIntVal(int64(s.Agents)))
	body.SetAttributeValue("highway", cty.BoolVal(s.Highway))
	body.SetAttributeValue("exploration_rate", cty.NumberFloatVal(s.ExplorationRate))
	body.SetAttributeValue("max_iterations", cty.NumberIntVal(int64(s.MaxIterations)))
	body.SetAttributeValue("complete_information", cty.BoolVal(s.CompleteInformation))
	body.SetAttributeValue("trials", cty.NumberIntVal(int64(s.Trials)))
	body.SetAttributeValue("seed", cty.NumberIntVal(s.Seed))
	body.SetAttributeValue("parallelism", cty.NumberIntVal(int64(s.Parallelism)))
	body.AppendNewline()

	costs := body.AppendNewBlock("path_costs", nil).Body()
	costs.SetAttributeValue("u1", cty.NumberFloatVal(s.PathCosts.U1))
	costs.SetAttributeValue("u2", cty.NumberFloatVal(s.PathCosts.U2))
	costs.SetAttributeValue("d1", cty.NumberFloatVal(s.PathCosts.D1))
	costs.SetAttributeValue("d2", cty.NumberFloatVal(s.PathCosts.D2))

	return f.Bytes()
}
