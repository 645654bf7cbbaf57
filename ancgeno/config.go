package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bitbucket.org/Davydov/ancgeno/amodel"
	"bitbucket.org/Davydov/ancgeno/check"
	"bitbucket.org/Davydov/ancgeno/simulate"
)

// Config is the run configuration read from a YAML file. Command-line
// flags take precedence over it.
//
//	method: simplex
//	iterations: 5000
//	models:
//	  split:
//	    t1: {start: 0.1, min: 0.0001, max: 10}
//	demography:
//	  ancTime: 200
//	  splitTime: 400
//	  ne0: 10000
//	  ne1: 10000
type Config struct {
	// Method is the optimization method.
	Method string `yaml:"method"`
	// Iterations is the maximum number of iterations.
	Iterations int `yaml:"iterations"`
	// Models are parameter ranges per model name.
	Models map[string]map[string]amodel.Range `yaml:"models"`
	// Demography is used by the simulate command, nil means the
	// default one.
	Demography *simulate.Demography `yaml:"demography"`
}

const (
	defaultMethod     = "lbfgsb"
	defaultIterations = 10000
)

// parseConfig decodes and validates a configuration.
func parseConfig(b []byte) (*Config, error) {
	// missing demography fields keep the default values
	d := simulate.DefaultDemography()
	conf := &Config{Demography: &d}
	if err := yaml.Unmarshal(b, conf); err != nil {
		return nil, fmt.Errorf("%w: %v", check.ErrConfig, err)
	}
	for name, ranges := range conf.Models {
		if !isModelName(name) {
			return nil, fmt.Errorf("%w: unknown model %s in configuration", check.ErrConfig, name)
		}
		for par, r := range ranges {
			if err := r.Validate(); err != nil {
				return nil, fmt.Errorf("model %s, parameter %s: %w", name, par, err)
			}
		}
	}
	switch conf.Method {
	case "", "lbfgsb", "bfgs", "simplex", "none":
	default:
		return nil, fmt.Errorf("%w: unknown optimization method %s", check.ErrConfig, conf.Method)
	}
	if conf.Iterations < 0 {
		return nil, fmt.Errorf("%w: negative number of iterations", check.ErrConfig)
	}
	if conf.Demography != nil {
		if err := conf.Demography.Validate(); err != nil {
			return nil, err
		}
	}
	return conf, nil
}

// loadConfig reads a configuration file, the empty file name gives
// the default configuration.
func loadConfig(fn string) (*Config, error) {
	if fn == "" {
		return &Config{}, nil
	}
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	conf, err := parseConfig(b)
	if err != nil {
		return nil, err
	}
	log.Infof("Read configuration from %s", fn)
	return conf, nil
}

// method returns the optimization method, the flag value overrides
// the configuration.
func (c *Config) method(flag string) string {
	switch {
	case flag != "":
		return flag
	case c.Method != "":
		return c.Method
	}
	return defaultMethod
}

// iterations returns the number of iterations, the flag value
// overrides the configuration.
func (c *Config) iterations(flag int) int {
	switch {
	case flag > 0:
		return flag
	case c.Iterations > 0:
		return c.Iterations
	}
	return defaultIterations
}

// demography returns the configured demography or the default one.
func (c *Config) demography() simulate.Demography {
	if c.Demography != nil {
		return *c.Demography
	}
	return simulate.DefaultDemography()
}
