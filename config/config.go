package config

import (
	"fmt"
	"time"
)

// Config represents the complete deriv configuration
type Config struct {
	BaseDir  string      `yaml:"-"`        // Directory containing config file, for resolving relative paths
	Variable string      `yaml:"variable"` // Default variable to differentiate by
	Order    int         `yaml:"order"`    // Default derivative order
	Output   string      `yaml:"output"`   // "text" or "json"
	Trace    bool        `yaml:"trace"`    // Log every pipeline stage
	Color    string      `yaml:"color"`    // "auto", "always" or "never"
	REPL     REPLConfig  `yaml:"repl"`
	Watch    WatchConfig `yaml:"watch"`
}

// REPLConfig holds interactive session settings
type REPLConfig struct {
	Prompt     string `yaml:"prompt"`     // {var} is replaced by the current variable
	History    string `yaml:"history"`    // History file (default: in the temp dir)
	Completion bool   `yaml:"completion"` // Tab completion of functions and commands
}

// WatchConfig holds --watch settings
type WatchConfig struct {
	Debounce Duration `yaml:"debounce"` // Quiet period before re-running (default: 100ms)
}

// Duration is a time.Duration that reads from YAML as either a Go duration
// string ("250ms", "1s") or a whole number of milliseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler to handle both strings and integers
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var ms int64
	if err := unmarshal(&ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Defaults returns a Config with sensible default values
func Defaults() *Config {
	return &Config{
		Variable: "x",
		Order:    1,
		Output:   "text",
		Color:    "auto",
		REPL: REPLConfig{
			Prompt:     "d/d{var} >> ",
			Completion: true,
		},
		Watch: WatchConfig{
			Debounce: Duration(100 * time.Millisecond),
		},
	}
}

// UseColor reports whether output should be coloured given whether the
// destination is a terminal.
func (c *Config) UseColor(isTerminal bool) bool {
	switch c.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return isTerminal
	}
}
