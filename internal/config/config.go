package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"taskdesk/internal/guard"
	"taskdesk/internal/hierarchy"
)

const (
	DefaultAPIURL     = "http://127.0.0.1:7433"
	DefaultDBFileName = ".taskdesk.db"
	DefaultLogLevel   = "debug"
	ConfigFileName    = ".taskdesk.toml"

	configDirEnvKey          = "TASKDESK_CONFIG_DIR"
	trustProjectConfigEnvKey = "TASKDESK_TRUST_PROJECT_CONFIG"
	apiURLEnvKey             = "TASKDESK_API_URL"
	dbPathEnvKey             = "TASKDESK_DB"
	userEnvKey               = "TASKDESK_USER"
	logLevelEnvKey           = "TASKDESK_LOG_LEVEL"
)

// ViewConfig defines how the task tree is searched, sorted and decorated.
type ViewConfig struct {
	SearchFields []string `toml:"search_fields"`
	SortKey      string   `toml:"sort_key"`
	SortDesc     bool     `toml:"sort_desc"`
	Transitions  []string `toml:"transitions"`
}

// Config defines runtime configuration for taskdesk.
type Config struct {
	APIURL                   string     `toml:"api_url"`
	DBPath                   string     `toml:"db_path"`
	LogLevel                 string     `toml:"log_level"`
	User                     string     `toml:"user"`
	View                     ViewConfig `toml:"view"`
	TrustedProjectConfigPath string     `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		DBPath:   "",
		LogLevel: DefaultLogLevel,
		View: ViewConfig{
			SortKey: string(hierarchy.SortByName),
		},
	}
}

// SortOptions returns the configured root ordering.
func (v ViewConfig) SortOptions() (hierarchy.SortOptions, error) {
	key, err := hierarchy.ParseSortKey(v.SortKey)
	if err != nil {
		return hierarchy.SortOptions{}, err
	}
	return hierarchy.SortOptions{Key: key, Desc: v.SortDesc}, nil
}

// TransitionList returns the configured action columns, or every transition when unset.
func (v ViewConfig) TransitionList() ([]guard.Transition, error) {
	if len(v.Transitions) == 0 {
		return guard.Transitions, nil
	}
	out := make([]guard.Transition, 0, len(v.Transitions))
	for _, raw := range v.Transitions {
		transition, err := guard.ParseTransition(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, transition)
	}
	return out, nil
}

// loadLayers reads the override file alone when TASKDESK_CONFIG_DIR is set,
// otherwise the home file and then, if trusted, the working-directory file.
func loadLayers(cfg *Config) error {
	if path, ok := overrideConfigPath(); ok {
		return loadFile(path, cfg)
	}
	if home, err := os.UserHomeDir(); err == nil {
		if err := loadFile(filepath.Join(home, ConfigFileName), cfg); err != nil {
			return err
		}
	}
	if !trustProjectConfig() {
		return nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}
	path := filepath.Join(cwd, ConfigFileName)
	loaded, err := loadFileIfExists(path, cfg)
	if err != nil {
		return err
	}
	if loaded {
		cfg.TrustedProjectConfigPath = path
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, ConfigFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

// configKey is one settable key with its accessor.
type configKey struct {
	name string
	get  func(c *Config) string
}

var configKeys = []configKey{
	{"api_url", func(c *Config) string { return c.APIURL }},
	{"db_path", func(c *Config) string { return c.DBPath }},
	{"log_level", func(c *Config) string { return c.LogLevel }},
	{"user", func(c *Config) string { return c.User }},
	{"view.search_fields", func(c *Config) string { return strings.Join(c.View.SearchFields, ",") }},
	{"view.sort_key", func(c *Config) string { return c.View.SortKey }},
	{"view.sort_desc", func(c *Config) string { return strconv.FormatBool(c.View.SortDesc) }},
	{"view.transitions", func(c *Config) string { return strings.Join(c.View.Transitions, ",") }},
}

// AllowedKeys returns the settable keys in display order.
func AllowedKeys() []string {
	keys := make([]string, len(configKeys))
	for i, key := range configKeys {
		keys[i] = key.name
	}
	return keys
}

func lookupKey(name string) (configKey, bool) {
	for _, key := range configKeys {
		if key.name == name {
			return key, true
		}
	}
	return configKey{}, false
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	_, ok := lookupKey(key)
	return ok
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	k, ok := lookupKey(key)
	if !ok {
		return "", fmt.Errorf("unknown key: %s", key)
	}
	return k.get(c), nil
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, ConfigFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()
	if err := loadLayers(&cfg); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}

	applyEnv(&cfg)

	if _, err := cfg.View.SortOptions(); err != nil {
		return nil, fmt.Errorf("view.sort_key: %w", err)
	}
	if _, err := cfg.View.TransitionList(); err != nil {
		return nil, fmt.Errorf("view.transitions: %w", err)
	}

	return &cfg, nil
}

// envOverrides map environment variables onto fields. Blank values are ignored.
var envOverrides = []struct {
	key   string
	apply func(c *Config, value string)
}{
	{apiURLEnvKey, func(c *Config, v string) { c.APIURL = v }},
	{dbPathEnvKey, func(c *Config, v string) { c.DBPath = v }},
	{userEnvKey, func(c *Config, v string) { c.User = v }},
	{logLevelEnvKey, func(c *Config, v string) { c.LogLevel = v }},
}

func applyEnv(cfg *Config) {
	for _, o := range envOverrides {
		if value := strings.TrimSpace(os.Getenv(o.key)); value != "" {
			o.apply(cfg, value)
		}
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = DefaultLogLevel
	}
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			return strings.ToLower(value), nil
		default:
			return nil, fmt.Errorf("log_level must be one of debug, info, warn, error")
		}
	case "view.sort_key":
		sortKey, err := hierarchy.ParseSortKey(value)
		if err != nil {
			return nil, err
		}
		return string(sortKey), nil
	case "view.sort_desc":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	case "view.search_fields":
		return splitCSV(value), nil
	case "view.transitions":
		parts := splitCSV(value)
		for _, part := range parts {
			if _, err := guard.ParseTransition(part); err != nil {
				return nil, err
			}
		}
		return parts, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
