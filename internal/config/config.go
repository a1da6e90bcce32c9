// Package config loads the runtime tuning knobs. Everything here changes
// when and how fast the loop runs or how patient the resend logic is; none
// of it feeds the simulation arithmetic, so peers may differ safely.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Runtime holds the deployable knobs with their defaults.
type Runtime struct {
	TickRate        int    `mapstructure:"tick_rate"`
	InputDelay      int    `mapstructure:"input_delay"`
	ResendThreshold int    `mapstructure:"resend_threshold"`
	CatchUpMax      int    `mapstructure:"catch_up_max"`
	ListenAddr      string `mapstructure:"listen_addr"`
	DataDir         string `mapstructure:"data_dir"`
	LogLevel        string `mapstructure:"log_level"`
}

// Default is the shipped tuning.
func Default() Runtime {
	return Runtime{
		TickRate:        60,
		InputDelay:      3,
		ResendThreshold: 60,
		CatchUpMax:      5,
		ListenAddr:      ":9470",
		DataDir:         "data/characters",
		LogLevel:        "info",
	}
}

// Load reads the optional config file and RINGSIDE_* environment overrides
// on top of the defaults. An empty path skips the file entirely; a named
// file must exist and parse.
func Load(path string) (Runtime, error) {
	def := Default()

	v := viper.New()
	v.SetDefault("tick_rate", def.TickRate)
	v.SetDefault("input_delay", def.InputDelay)
	v.SetDefault("resend_threshold", def.ResendThreshold)
	v.SetDefault("catch_up_max", def.CatchUpMax)
	v.SetDefault("listen_addr", def.ListenAddr)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix("ringside")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Runtime{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var rt Runtime
	if err := v.Unmarshal(&rt); err != nil {
		return Runtime{}, fmt.Errorf("parse config: %w", err)
	}
	if err := rt.Validate(); err != nil {
		return Runtime{}, err
	}
	return rt, nil
}

// Validate rejects values the loop cannot run with.
func (r Runtime) Validate() error {
	if r.TickRate < 1 || r.TickRate > 240 {
		return fmt.Errorf("tick_rate %d outside [1,240]", r.TickRate)
	}
	if r.InputDelay < 0 || r.InputDelay > 30 {
		return fmt.Errorf("input_delay %d outside [0,30]", r.InputDelay)
	}
	if r.ResendThreshold < 1 {
		return fmt.Errorf("resend_threshold %d must be positive", r.ResendThreshold)
	}
	if r.CatchUpMax < 1 {
		return fmt.Errorf("catch_up_max %d must be positive", r.CatchUpMax)
	}
	return nil
}
