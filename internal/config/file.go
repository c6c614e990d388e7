package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// LoadFile overlays the TOML file at path onto cfg. Only keys present in
// the file are touched; unknown keys are rejected so a typo cannot
// silently fall back to a default.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	md, err := toml.NewDecoder(f).Decode(cfg)
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return fmt.Errorf("unknown config key %q in %s", undec[0].String(), path)
	}
	return nil
}
