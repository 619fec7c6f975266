package config

import (
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load reads and validates a configuration. path may name the config file
// itself or the directory holding it.
func Load(fs afero.Fs, path string) (*Configuration, error) {
	if filepath.Base(path) != ConfigurationName {
		path = filepath.Join(path, ConfigurationName)
	}

	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return parse(contents)
}

// Default returns the embedded default configuration.
func Default() *Configuration {
	out, err := parse(defaultConfigData)
	if err != nil {
		// The embedded config is covered by tests; a bad one is a build
		// defect, not a runtime condition.
		panic(err)
	}
	return out
}

func parse(contents []byte) (*Configuration, error) {
	var out Configuration
	if err := yaml.UnmarshalStrict(contents, &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}
