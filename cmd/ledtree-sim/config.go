package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ledtree-go/services/leds"
	"ledtree-go/x/ramp"
)

// Config is the simulator's YAML file. The breathing limits themselves come
// from the INI settings file named by Settings, as on the device.
type Config struct {
	Channels  int    `yaml:"channels"`
	Backend   string `yaml:"backend"` // "fake" or "pca9685"
	TickUS    int    `yaml:"tick_us"`
	FreqHz    uint64 `yaml:"freq_hz"`
	Top       uint16 `yaml:"top"`
	Gamma     string `yaml:"gamma"`     // "cubic" or "linear"
	Shape     string `yaml:"shape"`     // "linear" or "parabolic"
	Amplitude string `yaml:"amplitude"` // "random" or "fixed"
	QueueLen  int    `yaml:"queue_len"`
	PollMS    int    `yaml:"poll_ms"` // >0 selects the polled worker
	Seed      int64  `yaml:"seed"`    // 0 seeds from the clock
	Settings  string `yaml:"settings"`
	Knob      int    `yaml:"knob"` // initial potentiometer reading, -1 disables
	Shell     bool   `yaml:"shell"`

	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

type PreviewConfig struct {
	Addr       string `yaml:"addr"` // empty disables
	IntervalMS int    `yaml:"interval_ms"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() Config {
	return Config{
		Channels:  5,
		Backend:   "fake",
		TickUS:    1000,
		FreqHz:    630,
		Top:       4095,
		Gamma:     "cubic",
		Shape:     "linear",
		Amplitude: "random",
		QueueLen:  18,
		Knob:      -1,
		Shell:     true,
		Preview:   PreviewConfig{Addr: "127.0.0.1:8630", IntervalMS: 40},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// LoadConfigFile reads a YAML file over the defaults. Unknown keys are
// rejected.
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and enum values.
func (c Config) Validate() error {
	if c.Channels < 1 || c.Channels > leds.MaxChannels {
		return fmt.Errorf("channels must be 1..%d, got %d", leds.MaxChannels, c.Channels)
	}
	switch c.Backend {
	case "fake", "pca9685":
	default:
		return fmt.Errorf("backend must be fake or pca9685, got %q", c.Backend)
	}
	if c.TickUS <= 0 {
		return fmt.Errorf("tick_us must be > 0")
	}
	if c.Knob > 65535 {
		return fmt.Errorf("knob must be <= 65535")
	}
	if _, err := parseGamma(c.Gamma); err != nil {
		return err
	}
	if _, err := parseShape(c.Shape); err != nil {
		return err
	}
	if _, err := parseAmplitude(c.Amplitude); err != nil {
		return err
	}
	if _, err := parseLogLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

func parseGamma(s string) (leds.GammaCurve, error) {
	switch s {
	case "", "cubic":
		return leds.GammaCubic, nil
	case "linear":
		return leds.GammaLinear, nil
	}
	return 0, fmt.Errorf("gamma must be cubic or linear, got %q", s)
}

func parseShape(s string) (ramp.Shape, error) {
	switch s {
	case "", "linear":
		return ramp.Linear, nil
	case "parabolic":
		return ramp.Parabolic, nil
	}
	return 0, fmt.Errorf("shape must be linear or parabolic, got %q", s)
}

func parseAmplitude(s string) (leds.Amplitude, error) {
	switch s {
	case "", "random":
		return leds.AmplitudeRandom, nil
	case "fixed":
		return leds.AmplitudeFixed, nil
	}
	return 0, fmt.Errorf("amplitude must be random or fixed, got %q", s)
}
