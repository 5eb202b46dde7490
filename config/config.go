package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"focus-cli/errs"
)

// Config is the static configuration for focus-cli, loaded once at startup
// and immutable for the process lifetime.
type Config struct {
	Blocklist    []string `json:"blocklist" yaml:"blocklist"`
	RedirectIP   string   `json:"redirect_ip" yaml:"redirect_ip"`
	ServerPort   int      `json:"server_port" yaml:"server_port"`
	EnableServer bool     `json:"enable_server" yaml:"enable_server"`
}

func (c Config) String() string {
	b, _ := json.MarshalIndent(c, "", "  ")
	return string(b)
}

var (
	ipv4Regex = regexp.MustCompile(`^((25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)
	ipv6Regex = regexp.MustCompile(`^([0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}$|^::1$|^::$`)
)

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Blocklist:    []string{},
		RedirectIP:   "127.0.0.1",
		ServerPort:   3000,
		EnableServer: false,
	}
}

// Dir returns the configuration directory, ~/.config/focus-cli.
func Dir() string {
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		homeDir = os.Getenv("USERPROFILE")
	}
	if homeDir == "" {
		homeDir = os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return filepath.Join(homeDir, ".config", "focus-cli")
}

// Load reads the configuration from the default directory.
func Load() (Config, error) {
	return LoadDir(Dir())
}

// LoadDir reads config.json from dir, falling back to config.yaml. A missing
// configuration is a fatal startup condition (ErrConfigMissing); content that
// does not parse, or an invalid redirect address, is ErrConfigMalformed.
func LoadDir(dir string) (Config, error) {
	jsonPath := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(jsonPath)
	if err == nil {
		return parse(data, json.Unmarshal, jsonPath)
	}
	if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	yamlPath := filepath.Join(dir, "config.yaml")
	data, err = os.ReadFile(yamlPath)
	if err == nil {
		return parse(data, yaml.Unmarshal, yamlPath)
	}
	if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	return Config{}, errs.ErrConfigMissing.WithMessagef(
		"no config.json or config.yaml in %s (run 'focus-cli init')", dir)
}

func parse(data []byte, unmarshal func([]byte, any) error, path string) (Config, error) {
	cfg := Default()
	if err := unmarshal(data, &cfg); err != nil {
		return Config{}, errs.ErrConfigMalformed.WithMessagef("%s: %v", path, err)
	}
	if cfg.RedirectIP == "" {
		cfg.RedirectIP = Default().RedirectIP
	}
	if !ipv4Regex.MatchString(cfg.RedirectIP) && !ipv6Regex.MatchString(cfg.RedirectIP) {
		return Config{}, errs.ErrConfigMalformed.WithMessagef("%s: invalid redirect_ip %q", path, cfg.RedirectIP)
	}
	if cfg.ServerPort == 0 {
		cfg.ServerPort = Default().ServerPort
	}
	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return Config{}, errs.ErrConfigMalformed.WithMessagef("%s: invalid server_port %d", path, cfg.ServerPort)
	}
	return cfg, nil
}

// Init writes a starter config.json to the default directory.
func Init() (string, error) {
	return InitDir(Dir())
}

// InitDir creates dir and writes a starter config.json into it. An existing
// config is left untouched.
func InitDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	path := filepath.Join(dir, "config.json")
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config already exists at %s", path)
	}

	starter := Default()
	starter.EnableServer = true

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(starter.String() + "\n"); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
