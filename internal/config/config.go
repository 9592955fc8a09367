package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// CodePlaceholder is replaced by a pack code in file name patterns
const CodePlaceholder = "{code}"

// FileName is the config file looked up in the working directory
const FileName = "cardtsv.toml"

// EnvPrefix prefixes environment overrides, e.g. CARDTSV_PACK_DIR
const EnvPrefix = "CARDTSV"

// Config represents the application configuration
type Config struct {
	Root             string `toml:"root" mapstructure:"root"`
	PacksFile        string `toml:"packs_file" mapstructure:"packs_file"`
	SetsFile         string `toml:"sets_file" mapstructure:"sets_file"`
	PackDir          string `toml:"pack_dir" mapstructure:"pack_dir"`
	MainPattern      string `toml:"main_pattern" mapstructure:"main_pattern"`
	EncounterPattern string `toml:"encounter_pattern" mapstructure:"encounter_pattern"`
	Output           string `toml:"output" mapstructure:"output"`
	Verbose          bool   `toml:"verbose" mapstructure:"verbose"`
}

// Default returns the layout of a card data checkout
func Default() *Config {
	return &Config{
		Root:             ".",
		PacksFile:        "packs.json",
		SetsFile:         "sets.json",
		PackDir:          "pack",
		MainPattern:      CodePlaceholder + ".json",
		EncounterPattern: CodePlaceholder + "_encounter.json",
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// New returns a viper instance with defaults, env binding and search paths.
// Flags are bound by the caller.
func New() *viper.Viper {
	v := viper.New()

	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if dir := GetXDGConfigHome(); dir != "" {
		v.AddConfigPath(filepath.Join(dir, "cardtsv"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("root", d.Root)
	v.SetDefault("packs_file", d.PacksFile)
	v.SetDefault("sets_file", d.SetsFile)
	v.SetDefault("pack_dir", d.PackDir)
	v.SetDefault("main_pattern", d.MainPattern)
	v.SetDefault("encounter_pattern", d.EncounterPattern)
	v.SetDefault("output", d.Output)
	v.SetDefault("verbose", d.Verbose)

	return v
}

// Load reads the configuration.
// Priority order: flags > environment > config file > defaults.
// An explicit configPath must exist; the searched file is optional.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that every path is set and that each pattern carries
// exactly one code placeholder
func (c *Config) Validate() error {
	required := map[string]string{
		"root":       c.Root,
		"packs_file": c.PacksFile,
		"sets_file":  c.SetsFile,
		"pack_dir":   c.PackDir,
	}
	for key, value := range required {
		if value == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}

	patterns := map[string]string{
		"main_pattern":      c.MainPattern,
		"encounter_pattern": c.EncounterPattern,
	}
	for key, pattern := range patterns {
		if n := strings.Count(pattern, CodePlaceholder); n != 1 {
			return fmt.Errorf("%s %q must contain %s exactly once, found %d", key, pattern, CodePlaceholder, n)
		}
	}

	return nil
}

// Path resolves a file name relative to the data root
func (c *Config) Path(name string) string {
	return filepath.Join(c.Root, name)
}

// WriteDefault creates a config file holding the defaults.
// It refuses to overwrite an existing file.
func WriteDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("config file already exists: %s", path)
	}

	// Ensure the config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	config := Default()

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return nil, fmt.Errorf("error encoding config: %w", err)
	}

	return config, nil
}
