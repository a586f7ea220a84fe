package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	DateDimension     DateDimension     `yaml:"date_dimension"`
	Classification    []CategoryRule    `yaml:"classification"`
	ProductCategories []ProductCategory `yaml:"product_categories"`
	Output            Output            `yaml:"output"`
	Server            Server            `yaml:"server"`
	Logging           Logging           `yaml:"logging"`
}

// CategoryRule classifies a channel by lower-cased substring match.
// Rules are evaluated in list order; the first match wins.
type CategoryRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// ProductCategory classifies a normalized product name by substring match,
// first match in list order wins.
type ProductCategory struct {
	Category string   `yaml:"category"`
	Patterns []string `yaml:"patterns"`
}

type DateDimension struct {
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for medwarehouse.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "medwarehouse")
}

// DataDir returns the XDG data directory for medwarehouse.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "medwarehouse")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > $MEDWAREHOUSE_CONFIG > ~/.config/medwarehouse/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if env := os.Getenv("MEDWAREHOUSE_CONFIG"); env != "" {
		if _, err := os.Stat(env); err != nil {
			return "", fmt.Errorf("config file not found: %s", env)
		}
		return env, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'medwarehouse init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		DateDimension: DateDimension{
			StartDate: "2024-01-01",
			EndDate:   "2026-12-31",
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.Classification) == 0 {
		cfg.Classification = DefaultClassification()
	}
	if len(cfg.ProductCategories) == 0 {
		cfg.ProductCategories = DefaultProductCategories()
	}

	return cfg, nil
}

// DefaultClassification returns the built-in channel classification rules
// in priority order: pharmaceutical, cosmetics, medical.
func DefaultClassification() []CategoryRule {
	return []CategoryRule{
		{Category: "Pharmaceutical", Keywords: []string{"pharma", "med", "drug", "pharmacy", "pill", "tablet"}},
		{Category: "Cosmetics", Keywords: []string{"cosmetic", "beauty", "skin", "cream", "lotion", "makeup"}},
		{Category: "Medical", Keywords: []string{"health", "medical", "hospital", "clinic", "doctor"}},
	}
}

// DefaultProductCategories returns the built-in product category patterns
// in priority order.
func DefaultProductCategories() []ProductCategory {
	return []ProductCategory{
		{Category: "Tablets", Patterns: []string{"tablet", "pill"}},
		{Category: "Capsules", Patterns: []string{"capsule"}},
		{Category: "Topical", Patterns: []string{"cream", "ointment", "lotion", "gel"}},
		{Category: "Liquids", Patterns: []string{"syrup", "liquid", "drops"}},
		{Category: "Injectables", Patterns: []string{"injection", "injectable"}},
		{Category: "Supplements", Patterns: []string{"vitamin", "supplement"}},
		{Category: "Medical Devices", Patterns: []string{"device", "equipment"}},
	}
}

// DateRange parses the configured date dimension range.
func (c *Config) DateRange() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", c.DateDimension.StartDate)
	if err != nil {
		return start, end, fmt.Errorf("parsing start_date: %w", err)
	}
	end, err = time.Parse("2006-01-02", c.DateDimension.EndDate)
	if err != nil {
		return start, end, fmt.Errorf("parsing end_date: %w", err)
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("end_date %s is before start_date %s", c.DateDimension.EndDate, c.DateDimension.StartDate)
	}
	return start, end, nil
}

// GetDataDir returns the effective data directory. Priority:
// $MEDWAREHOUSE_DATA_DIR > config output.data_dir > XDG default.
func (c *Config) GetDataDir() string {
	if env := os.Getenv("MEDWAREHOUSE_DATA_DIR"); env != "" {
		return env
	}
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
