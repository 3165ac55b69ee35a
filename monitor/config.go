package monitor

import (
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig is the on-disk YAML shape accepted by --config: an
// alternative to passing every knob as a flag, useful for checking a
// battery of properties against the same trace.
type RunConfig struct {
	Property         string `yaml:"property"`
	PropertyFile     string `yaml:"property_file"`
	Trace            string `yaml:"trace"`
	StopOnVerdict    bool   `yaml:"stop_on_verdict"`
	LenientCausality bool   `yaml:"lenient_causality"`
	FormulaSizeLimit int    `yaml:"formula_size_limit"`
	Verbose          bool   `yaml:"verbose"`
	Debug            bool   `yaml:"debug"`

	// AllowInferredProcs is not translated into a monitor.Option: it gates
	// trace.Read's directive requirement, a concern the monitor package
	// itself has no notion of. Callers that load a RunConfig must read
	// this field directly when invoking trace.Read.
	AllowInferredProcs bool `yaml:"allow_inferred_processes"`
}

// LoadRunConfig reads and parses a YAML run configuration from path.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &RunConfigError{Path: path, Msg: err.Error()}
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &RunConfigError{Path: path, Msg: err.Error()}
	}
	if cfg.Trace == "" {
		return nil, &RunConfigError{Path: path, Msg: "trace is required"}
	}
	if cfg.Property == "" && cfg.PropertyFile == "" {
		return nil, &RunConfigError{Path: path, Msg: "one of property or property_file is required"}
	}
	return &cfg, nil
}

// Options translates the YAML-configured knobs into monitor Options.
func (c *RunConfig) Options() []Option {
	var opts []Option
	if c.StopOnVerdict {
		opts = append(opts, WithStopOnVerdict())
	}
	if c.LenientCausality {
		opts = append(opts, WithLenientCausality())
	}
	if c.FormulaSizeLimit > 0 {
		opts = append(opts, WithFormulaSizeLimit(c.FormulaSizeLimit))
	}
	if c.Verbose {
		opts = append(opts, WithVerbose())
	}
	if c.Debug {
		opts = append(opts, WithDebug())
	}
	return opts
}
