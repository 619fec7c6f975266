// Package config holds the YAML configuration of the engine hosts: prompt,
// persistence paths, the SSH front end, and operator table overrides.
package config

import (
	_ "embed"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pipesh/pipesh/core/pipeline"
)

//go:embed default/config.yaml
var defaultConfigData []byte

// ConfigurationName is the file name Load resolves inside a directory.
const ConfigurationName = "config.yaml"

type Configuration struct {
	// Prompt is the REPL prompt template. \w expands to the working
	// directory.
	Prompt string `json:"prompt"`
	// HistoryFile persists line history when non-empty.
	HistoryFile string `json:"history_file"`
	// AliasFile persists alias definitions when non-empty.
	AliasFile string `json:"alias_file"`
	// InitScript runs before the first prompt.
	InitScript string `json:"init_script"`
	Motd       string `json:"motd"`

	SSH SSH `json:"ssh"`

	// Operators overrides the pipeline operator table. Keys are operator
	// names (pipe, and, or, sequence, flip, redirect, append,
	// input-redirect, stderr-redirect, combined-redirect), values the
	// symbols to parse for them. An empty map keeps the default table.
	Operators map[string]string `json:"operators"`
}

type SSH struct {
	Enabled        bool   `json:"enabled"`
	Addr           string `json:"addr" validate:"required_with=Enabled"`
	HostKeyPath    string `json:"host_key_path"`
	Banner         string `json:"banner"`
	BytesPerSecond int64  `json:"bytes_per_second" validate:"gte=0"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	if err := validate.Struct(c); err != nil {
		return err
	}
	_, err := c.OperatorTable()
	return err
}

// OperatorTable builds the parser operator table from the Operators
// override. It returns nil for an empty override, leaving the default table
// in place.
func (c *Configuration) OperatorTable() (map[string]pipeline.Operator, error) {
	if len(c.Operators) == 0 {
		return nil, nil
	}
	table := make(map[string]pipeline.Operator, len(c.Operators))
	for name, symbol := range c.Operators {
		op, ok := pipeline.FromName(name)
		if !ok {
			return nil, fmt.Errorf("operators: unknown operator name %q", name)
		}
		if strings.TrimSpace(symbol) == "" {
			return nil, fmt.Errorf("operators: empty symbol for %q", name)
		}
		table[symbol] = op
	}
	return table, nil
}

// Parser returns a pipeline parser honoring the operator overrides.
func (c *Configuration) Parser() (*pipeline.Parser, error) {
	table, err := c.OperatorTable()
	if err != nil {
		return nil, err
	}
	if table == nil {
		return pipeline.NewParser(), nil
	}
	return pipeline.NewParserWith(table), nil
}
