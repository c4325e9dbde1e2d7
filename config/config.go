package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"go-pianoroll/geometry"
	"go-pianoroll/note"
	"go-pianoroll/pianoroll"
)

// GridConfig holds the editor zoom and note defaults
type GridConfig struct {
	PixelsPerBar    float64 `json:"pixelsPerBar"`
	RowHeight       float64 `json:"rowHeight"`
	Quantize        string  `json:"quantize"`
	DefaultLength   int     `json:"defaultLength"` // ticks
	DefaultVelocity int     `json:"defaultVelocity"`
}

// Validate checks zoom and note defaults
func (c *GridConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PixelsPerBar, validation.Required, validation.Min(geometry.MinPixelsPerBar)),
		validation.Field(&c.RowHeight, validation.Required, validation.Min(geometry.MinRowHeight)),
		validation.Field(&c.Quantize, validation.Required, validation.By(validUnit)),
		validation.Field(&c.DefaultLength, validation.Required, validation.Min(note.MinLength)),
		validation.Field(&c.DefaultVelocity, validation.Required, validation.Min(note.MinVelocity), validation.Max(note.MaxVelocity)),
	)
}

func validUnit(value interface{}) error {
	id, _ := value.(string)
	if _, err := note.ParseUnit(id); err != nil {
		return errors.New("must be a known quantize unit")
	}
	return nil
}

// Editor builds the grid settings
func (c *GridConfig) Editor() (pianoroll.Config, error) {
	u, err := note.ParseUnit(c.Quantize)
	if err != nil {
		return pianoroll.Config{}, err
	}
	return pianoroll.Config{
		PixelsPerBar:    c.PixelsPerBar,
		RowHeight:       c.RowHeight,
		Quantize:        u,
		DefaultLength:   c.DefaultLength,
		DefaultVelocity: c.DefaultVelocity,
	}, nil
}

// ViewConfig maps terminal cells to grid pixels
type ViewConfig struct {
	CellWidth float64 `json:"cellWidth"` // pixels per terminal column
	Palette   string  `json:"palette,omitempty"`
}

// Validate checks the terminal mapping
func (c *ViewConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CellWidth, validation.Required, validation.Min(1.0)),
	)
}

// AuditionConfig defines the MIDI output for note previews
type AuditionConfig struct {
	PortName string `json:"portName,omitempty"`
	Channel  int    `json:"channel,omitempty"`
}

// Validate checks the channel when a port is set
func (c *AuditionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Channel, validation.When(c.PortName != "", validation.Required, validation.Min(1), validation.Max(16))),
	)
}

// Config is the main configuration structure
type Config struct {
	Grid     GridConfig     `json:"grid"`
	View     ViewConfig     `json:"view"`
	Audition AuditionConfig `json:"audition,omitempty"`
}

// Validate validates every section
func (c *Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	if err := c.View.Validate(); err != nil {
		return fmt.Errorf("view: %w", err)
	}
	if err := c.Audition.Validate(); err != nil {
		return fmt.Errorf("audition: %w", err)
	}
	return nil
}

// DefaultConfig returns a config with sensible defaults: one terminal
// column per sixteenth note and one line per pitch row.
func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			PixelsPerBar:    192,
			RowHeight:       20,
			Quantize:        note.Sixteenth.String(),
			DefaultLength:   geometry.TicksPerQuarter,
			DefaultVelocity: 100,
		},
		View: ViewConfig{
			CellWidth: 12,
		},
		Audition: AuditionConfig{
			Channel: 1,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-pianoroll"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from path (ConfigPath when empty), or returns
// defaults if the file does not exist. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to path (ConfigPath when empty)
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
