package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const ConfigFileName = "erpctl.yaml"

// ErrNotFound is returned when no erpctl.yaml exists up the directory tree
var ErrNotFound = errors.New(ConfigFileName + " not found")

// Server represents an ERP API server
type Server struct {
	Alias string `yaml:"alias" validate:"required"`
	URL   string `yaml:"url" validate:"required,url"`
}

// Config represents the CLI project configuration file
type Config struct {
	Servers []Server `yaml:"servers" validate:"dive"`
}

var validate = validator.New()

// Validate checks every server entry
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}

	seen := map[string]bool{}
	for _, s := range c.Servers {
		if seen[s.Alias] {
			return fmt.Errorf("invalid %s: duplicate server alias '%s'", ConfigFileName, s.Alias)
		}
		seen[s.Alias] = true
	}
	return nil
}

// FindConfigFile searches for erpctl.yaml in current directory and parent directories
func FindConfigFile() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	// Search upwards until we find erpctl.yaml or reach root
	dir := currentDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w in %s or any parent directory", ErrNotFound, currentDir)
}

// Load reads and validates the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromCurrentDir loads config from current directory or parent directories
func LoadFromCurrentDir() (*Config, error) {
	configPath, err := FindConfigFile()
	if err != nil {
		return nil, err
	}

	return Load(configPath)
}

// Save writes the configuration to a file
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// AddServer adds a server, replacing any entry with the same alias
func (c *Config) AddServer(s Server) {
	s.URL = strings.TrimRight(s.URL, "/")
	for i := range c.Servers {
		if c.Servers[i].Alias == s.Alias {
			c.Servers[i] = s
			return
		}
	}
	c.Servers = append(c.Servers, s)
}

// GetServerByAlias returns a server by its alias
func (c *Config) GetServerByAlias(alias string) (*Server, error) {
	for i := range c.Servers {
		if c.Servers[i].Alias == alias {
			return &c.Servers[i], nil
		}
	}
	return nil, fmt.Errorf("server with alias '%s' not found", alias)
}

// GetServerByURL returns a server by its URL
func (c *Config) GetServerByURL(url string) (*Server, error) {
	url = strings.TrimRight(url, "/")
	for i := range c.Servers {
		if c.Servers[i].URL == url {
			return &c.Servers[i], nil
		}
	}
	return nil, fmt.Errorf("server with URL '%s' not found", url)
}

// GetDefaultServer returns the first server in the list
func (c *Config) GetDefaultServer() (*Server, error) {
	if len(c.Servers) == 0 {
		return nil, fmt.Errorf("no servers configured in %s", ConfigFileName)
	}
	return &c.Servers[0], nil
}
