package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"energyhub/internal/milp"
	"energyhub/internal/technology"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Node string `yaml:"node"`
	// Optional: load technology data from a separate YAML (e.g. data/technologies/*.yaml).
	// If both TechnologyFile and Technology are provided, Technology overrides TechnologyFile.
	TechnologyFile string           `yaml:"technology_file"`
	Technology     TechnologyConfig `yaml:"technology"`
	Model          ModelConfig      `yaml:"model"`
}

// TechnologyConfig is the raw technology data, before fitting.
type TechnologyConfig struct {
	Name        string            `yaml:"name" json:"name"`
	TecType     string            `yaml:"tec_type" json:"tec_type"`
	SizeMin     float64           `yaml:"size_min" json:"size_min"`
	SizeMax     float64           `yaml:"size_max" json:"size_max"`
	SizeIsInt   bool              `yaml:"size_is_int" json:"size_is_int"`
	Existing    bool              `yaml:"existing" json:"existing"`
	SizeInitial float64           `yaml:"size_initial" json:"size_initial"`
	Performance PerformanceConfig `yaml:"performance" json:"performance"`
	// Options are technology-specific switches. Values may be bools or 0/1.
	Options  map[string]any `yaml:"options" json:"options"`
	Dynamics DynamicsConfig `yaml:"dynamics" json:"dynamics"`
}

type PerformanceConfig struct {
	MainInputCarrier string             `yaml:"main_input_carrier" json:"main_input_carrier"`
	InputCarrier     []string           `yaml:"input_carrier" json:"input_carrier"`
	OutputCarrier    []string           `yaml:"output_carrier" json:"output_carrier"`
	Parameters       map[string]float64 `yaml:"parameters" json:"parameters"`
}

// DynamicsConfig uses pointers so an explicit -1 can be told apart from an
// absent value.
type DynamicsConfig struct {
	RampingTime     *float64 `yaml:"ramping_time" json:"ramping_time"`
	RefSize         *float64 `yaml:"ref_size" json:"ref_size"`
	RampingConstInt bool     `yaml:"ramping_const_int" json:"ramping_const_int"`
}

// ToDynamics fills absent values with technology.Disabled.
func (d DynamicsConfig) ToDynamics() technology.Dynamics {
	out := technology.DefaultDynamics()
	if d.RampingTime != nil {
		out.RampingTime = *d.RampingTime
	}
	if d.RefSize != nil {
		out.RefSize = *d.RefSize
	}
	out.RampingConstInt = d.RampingConstInt
	return out
}

// ModelConfig is the global model configuration shared by every technology.
type ModelConfig struct {
	// TimeStaging is the number of full timesteps averaged into one
	// performance timestep. 0 disables averaging.
	TimeStaging    int     `yaml:"timestaging" json:"timestaging"`
	Transformation string  `yaml:"transformation" json:"transformation"`
	BigM           float64 `yaml:"big_m" json:"big_m"`
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{Transformation: milp.BigM.String(), BigM: milp.DefaultBigM}
}

// WithDefaults fills unset fields.
func (m ModelConfig) WithDefaults() ModelConfig {
	if m.Transformation == "" {
		m.Transformation = milp.BigM.String()
	}
	if m.BigM == 0 {
		m.BigM = milp.DefaultBigM
	}
	return m
}

func (m ModelConfig) Validate() error {
	if m.TimeStaging < 0 {
		return fmt.Errorf("model.timestaging must be >= 0, got %d", m.TimeStaging)
	}
	if _, err := milp.ParseTransformation(m.Transformation); err != nil {
		return fmt.Errorf("model.transformation: %w", err)
	}
	return nil
}

// LowerOptions translates the model configuration for milp.Lower.
func (m ModelConfig) LowerOptions() (milp.LowerOptions, error) {
	tr, err := milp.ParseTransformation(m.Transformation)
	if err != nil {
		return milp.LowerOptions{}, err
	}
	return milp.LowerOptions{Transformation: tr, BigM: m.BigM}, nil
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if c.Node == "" {
		c.Node = "node"
	}
	c.Model = c.Model.WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	// If technology_file is set, load it and merge in any explicit overrides from c.Technology.
	if c.TechnologyFile != "" {
		techPath := c.TechnologyFile
		if !filepath.IsAbs(techPath) {
			// Prefer interpreting relative paths as relative to the config file directory,
			// but fall back to the provided path (relative to cwd) if that doesn't exist.
			cand := filepath.Join(filepath.Dir(path), techPath)
			if _, err := os.Stat(cand); err == nil {
				techPath = cand
			}
		}
		loaded, err := LoadTechnologyFile(techPath)
		if err != nil {
			return nil, err
		}
		c.Technology = MergeTechnology(loaded, c.Technology)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Technology.Validate(); err != nil {
		return fmt.Errorf("technology config invalid: %w", err)
	}
	return c.Model.Validate()
}

// Validate checks the structure of the technology data. Physical parameters
// are checked when the technology is constructed.
func (t TechnologyConfig) Validate() error {
	if t.Name == "" {
		return errors.New("technology.name is required")
	}
	if t.SizeMin < 0 || t.SizeMax < 0 {
		return technology.Invalid(t.Name, "size_min/size_max", "must be >= 0")
	}
	if t.SizeMin > t.SizeMax {
		return technology.Invalid(t.Name, "size_min", "must not exceed size_max (%g > %g)", t.SizeMin, t.SizeMax)
	}
	if t.Existing && t.SizeInitial < 0 {
		return technology.Invalid(t.Name, "size_initial", "must be >= 0 for an existing unit")
	}
	if len(t.Performance.InputCarrier) == 0 && len(t.Performance.OutputCarrier) == 0 {
		return technology.Invalid(t.Name, "performance", "declares no carriers")
	}
	return nil
}

// ToSize converts the size fields.
func (t TechnologyConfig) ToSize() technology.Size {
	return technology.Size{
		Min:      t.SizeMin,
		Max:      t.SizeMax,
		IsInt:    t.SizeIsInt,
		Existing: t.Existing,
		Initial:  t.SizeInitial,
	}
}

type technologyFileWrapper struct {
	Technology TechnologyConfig `yaml:"technology"`
}

// LoadTechnologyFile reads a technology data file with a top-level
// "technology" key.
func LoadTechnologyFile(path string) (TechnologyConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return TechnologyConfig{}, err
	}
	var w technologyFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return TechnologyConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return w.Technology, nil
}

// MergeTechnology overlays non-zero fields from override onto base.
// Parameter and option maps are merged key by key.
func MergeTechnology(base, override TechnologyConfig) TechnologyConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.TecType != "" {
		out.TecType = override.TecType
	}
	if override.SizeMin != 0 {
		out.SizeMin = override.SizeMin
	}
	if override.SizeMax != 0 {
		out.SizeMax = override.SizeMax
	}
	// Note: a bool override can only switch these on.
	if override.SizeIsInt {
		out.SizeIsInt = true
	}
	if override.Existing {
		out.Existing = true
	}
	if override.SizeInitial != 0 {
		out.SizeInitial = override.SizeInitial
	}

	p := override.Performance
	if p.MainInputCarrier != "" {
		out.Performance.MainInputCarrier = p.MainInputCarrier
	}
	if len(p.InputCarrier) > 0 {
		out.Performance.InputCarrier = append([]string(nil), p.InputCarrier...)
	}
	if len(p.OutputCarrier) > 0 {
		out.Performance.OutputCarrier = append([]string(nil), p.OutputCarrier...)
	}
	out.Performance.Parameters = mergeMap(base.Performance.Parameters, p.Parameters)
	out.Options = mergeMap(base.Options, override.Options)

	if override.Dynamics.RampingTime != nil {
		out.Dynamics.RampingTime = override.Dynamics.RampingTime
	}
	if override.Dynamics.RefSize != nil {
		out.Dynamics.RefSize = override.Dynamics.RefSize
	}
	if override.Dynamics.RampingConstInt {
		out.Dynamics.RampingConstInt = true
	}
	return out
}

func mergeMap[V any](base, override map[string]V) map[string]V {
	if base == nil && override == nil {
		return nil
	}
	out := make(map[string]V, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
