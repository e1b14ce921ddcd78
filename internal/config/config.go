package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for ido
type Config struct {
	Package    string           `yaml:"package"`
	RootName   string           `yaml:"root_name"`
	Formatting FormattingConfig `yaml:"formatting"`
	Decode     DecodeConfig     `yaml:"decode"`
	Types      TypesConfig      `yaml:"types"`
	Naming     NamingConfig     `yaml:"naming"`
	Dev        DevConfig        `yaml:"dev"`
}

// FormattingConfig controls formatting of generated Go code
type FormattingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DecodeConfig controls the decode command
type DecodeConfig struct {
	RawStrings bool   `yaml:"raw_strings"`
	Pretty     bool   `yaml:"pretty"`
	Indent     string `yaml:"indent"`
}

// TypesConfig controls shape inference
type TypesConfig struct {
	Mappings []TypeMapping `yaml:"mappings"`
}

// Number kinds a type mapping may force.
const (
	TypeInt   = "int"
	TypeFloat = "float"
)

// TypeMapping forces the shape of numeric fields whose path matches Pattern.
// Paths look like /bank/money or /members/0/age.
type TypeMapping struct {
	Pattern string `yaml:"pattern"`
	Type    string `yaml:"type"`
	Comment string `yaml:"comment,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// NamingConfig controls Go field and struct naming in generated code
type NamingConfig struct {
	PascalCaseFields bool              `yaml:"pascal_case_fields"`
	FieldMappings    map[string]string `yaml:"field_mappings"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Package:  "main",
		RootName: "RootType",
		Formatting: FormattingConfig{
			Enabled: true,
		},
		Decode: DecodeConfig{
			RawStrings: false,
			Pretty:     false,
			Indent:     "  ",
		},
		Types: TypesConfig{
			Mappings: []TypeMapping{},
		},
		Naming: NamingConfig{
			PascalCaseFields: true,
			FieldMappings:    make(map[string]string),
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, fmt.Errorf("failed to compile patterns: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".ido.yml", ".ido.yaml", "ido.yml", "ido.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// compilePatterns compiles and checks all type mappings
func (c *Config) compilePatterns() error {
	for i := range c.Types.Mappings {
		mapping := &c.Types.Mappings[i]
		if mapping.Type != TypeInt && mapping.Type != TypeFloat {
			return fmt.Errorf("type mapping '%s' has type '%s', want %q or %q", mapping.Pattern, mapping.Type, TypeInt, TypeFloat)
		}
		regex, err := regexp.Compile(mapping.Pattern)
		if err != nil {
			return fmt.Errorf("invalid type mapping pattern '%s': %w", mapping.Pattern, err)
		}
		mapping.regex = regex
	}
	return nil
}

// MatchesField checks if this type mapping matches the given field path
func (tm *TypeMapping) MatchesField(path string) bool {
	if tm.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(tm.Pattern)
		if err != nil {
			return false
		}
		tm.regex = regex
	}
	return tm.regex.MatchString(path)
}

// GetFieldName returns the Go field name for a document key, applying naming rules
func (c *Config) GetFieldName(key string) string {
	if mapped, exists := c.Naming.FieldMappings[key]; exists {
		return mapped
	}

	if c.Naming.PascalCaseFields {
		return strcase.ToCamel(key)
	}

	return key
}

// FindTypeMapping finds the first type mapping that matches the field path
func (c *Config) FindTypeMapping(path string) (TypeMapping, bool) {
	for _, mapping := range c.Types.Mappings {
		if mapping.MatchesField(path) {
			return mapping, true
		}
	}
	return TypeMapping{}, false
}

// MergeConfigs merges CLI overrides into a base config
// Non-empty values from override take precedence over base values
func MergeConfigs(base, override *Config) *Config {
	merged := *base

	if override.Package != "" {
		merged.Package = override.Package
	}
	if override.RootName != "" {
		merged.RootName = override.RootName
	}
	if override.Decode.Indent != "" {
		merged.Decode.Indent = override.Decode.Indent
	}

	// Booleans can't be "empty", so the override always wins
	merged.Formatting.Enabled = override.Formatting.Enabled
	merged.Decode.RawStrings = override.Decode.RawStrings
	merged.Decode.Pretty = override.Decode.Pretty

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence.
// Package and root name only override the file when they differ from the
// defaults, so that a config file value is not masked by an unset flag.
func LoadConfigWithCLI(configPath, cliPackage, cliRootName string) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cliPackage != "" && cliPackage != "main" {
		cfg.Package = cliPackage
	}
	if cliRootName != "" && cliRootName != "RootType" {
		cfg.RootName = cliRootName
	}

	return cfg, nil
}
