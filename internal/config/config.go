package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KhanhRomVN/termi-tool/internal/errclass"
	"github.com/KhanhRomVN/termi-tool/internal/logging"
)

// DefaultPath is where termi-tool looks for its configuration when
// --config is not given. A missing file is not an error; defaults apply.
const DefaultPath = "termi-tool.yaml"

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Definition     *Definition
}

// Definition represents the termi-tool.yaml structure
type Definition struct {
	Version  int            `yaml:"version"`
	Accounts AccountsConfig `yaml:"accounts,omitempty"`
	Gemini   GeminiConfig   `yaml:"gemini,omitempty"`
	Rotation RotationConfig `yaml:"rotation,omitempty"`
}

// AccountsConfig controls where accounts live and how keys are stored
type AccountsConfig struct {
	Dir        string `yaml:"dir,omitempty"`
	UseKeyring bool   `yaml:"use_keyring,omitempty"`
}

// GeminiConfig holds the vision API settings
type GeminiConfig struct {
	Model string `yaml:"model,omitempty"`
}

// RotationConfig tunes the credential failover behavior. Zero values
// mean "use the built-in default"; MaxCycles zero means retry forever.
type RotationConfig struct {
	CooldownSeconds int `yaml:"cooldown_seconds,omitempty"`
	PauseSeconds    int `yaml:"pause_seconds,omitempty"`
	MaxCycles       int `yaml:"max_cycles,omitempty"`
}

// Load reads and parses the termi-tool.yaml file. When the file does
// not exist at the default path, an empty definition is used.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			if c.Path == DefaultPath {
				c.Definition = &Definition{}
				return nil
			}
			return errclass.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Check the path passed to --config",
			}
		}
		return errclass.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return errclass.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	if def.Version != 0 {
		return errclass.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your termi-tool.yaml file",
		}
	}

	if def.Rotation.CooldownSeconds < 0 || def.Rotation.PauseSeconds < 0 || def.Rotation.MaxCycles < 0 {
		return errclass.ConfigError{
			Field:      "rotation",
			Message:    "rotation settings must not be negative",
			Suggestion: "Use positive values, or omit a setting to keep its default",
		}
	}

	c.Definition = &def
	return nil
}

// Model returns the configured Gemini model name, or empty when the
// built-in default should be used.
func (c *Config) Model() string {
	if c.Definition == nil {
		return ""
	}
	return c.Definition.Gemini.Model
}

// AccountsDir returns the configured accounts directory, or empty when
// the default location should be used.
func (c *Config) AccountsDir() string {
	if c.Definition == nil {
		return ""
	}
	return c.Definition.Accounts.Dir
}

// UseKeyring reports whether API keys should go to the OS keyring
// instead of the accounts file.
func (c *Config) UseKeyring() bool {
	return c.Definition != nil && c.Definition.Accounts.UseKeyring
}

// Cooldown returns the configured cool-down between rotation cycles,
// or zero when the default should be used.
func (c *Config) Cooldown() time.Duration {
	if c.Definition == nil {
		return 0
	}
	return time.Duration(c.Definition.Rotation.CooldownSeconds) * time.Second
}

// Pause returns the configured pause between credential switches, or
// zero when the default should be used.
func (c *Config) Pause() time.Duration {
	if c.Definition == nil {
		return 0
	}
	return time.Duration(c.Definition.Rotation.PauseSeconds) * time.Second
}

// MaxCycles returns the configured rotation cycle bound. Zero means
// unbounded.
func (c *Config) MaxCycles() int {
	if c.Definition == nil {
		return 0
	}
	return c.Definition.Rotation.MaxCycles
}

// Describe returns a short human-readable summary for doctor output.
func (c *Config) Describe() string {
	if c.Definition == nil {
		return "not loaded"
	}
	model := c.Model()
	if model == "" {
		model = "(default)"
	}
	return fmt.Sprintf("model=%s keyring=%t max_cycles=%d", model, c.UseKeyring(), c.MaxCycles())
}
