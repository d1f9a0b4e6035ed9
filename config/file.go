package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the schema of the optional YAML config file. Unset fields
// leave the flag defaults in place.
type FileConfig struct {
	Recursive *bool    `yaml:"recursive"`
	KeepGoing *bool    `yaml:"keepGoing"`
	NoColor   *bool    `yaml:"noColor"`
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	OutputDir string   `yaml:"outputDir"`
	LogLevel  string   `yaml:"logLevel"`
	LogDir    string   `yaml:"logDir"`
}

// LoadFile reads a YAML config file. Unknown keys are rejected.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	f, err := os.Open(path)
	if err != nil {
		return fc, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fc, fmt.Errorf("parse yaml %s: %w", path, err)
	}
	return fc, nil
}
