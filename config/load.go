package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/sambeau/deriv/pkg/deriv/diff"
)

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the resolved path.
// When no file is named and none is found in the default locations, the
// defaults are returned with an empty path.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Defaults(), "", nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	// Interpolate environment variables
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.BaseDir = baseDir

	// Resolve relative history path
	if h := cfg.REPL.History; h != "" {
		if strings.HasPrefix(h, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				cfg.REPL.History = filepath.Join(home, h[2:])
			}
		} else if !filepath.IsAbs(h) {
			cfg.REPL.History = filepath.Join(baseDir, h)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}

	return cfg, absPath, nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > DERIV_CONFIG env > ./deriv.yaml > ~/.config/deriv/deriv.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	// Try DERIV_CONFIG environment variable
	if envPath := getenv("DERIV_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("DERIV_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	// Try ./deriv.yaml
	if _, err := os.Stat("deriv.yaml"); err == nil {
		return "deriv.yaml", nil
	}

	// Try ~/.config/deriv/deriv.yaml
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "deriv", "deriv.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// Validate checks the configuration, reporting every problem at once.
// Call it again after applying CLI overrides.
func Validate(cfg *Config) error {
	var errs []string

	if utf8.RuneCountInString(cfg.Variable) != 1 || !isASCIILetter(cfg.Variable[0]) {
		errs = append(errs, fmt.Sprintf("invalid variable: %q (must be a single letter)", cfg.Variable))
	}

	if cfg.Order < 0 || cfg.Order > diff.MaxOrder {
		errs = append(errs, fmt.Sprintf("invalid order: %d (must be 0 to %d)", cfg.Order, diff.MaxOrder))
	}

	validOutputs := map[string]bool{"text": true, "json": true}
	if !validOutputs[cfg.Output] {
		errs = append(errs, fmt.Sprintf("invalid output: %s (must be text or json)", cfg.Output))
	}

	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[cfg.Color] {
		errs = append(errs, fmt.Sprintf("invalid color: %s (must be auto, always, or never)", cfg.Color))
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Sprintf("invalid watch.debounce: %s (must not be negative)", cfg.Watch.Debounce.Std()))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
