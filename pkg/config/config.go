// Package config loads optional host settings for the CLI from a TOML
// file: values fall back to sane defaults when no file is present or a
// key is absent.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config holds host-level settings that sit above the language core:
// where to look for importable modules and what prompt the REPL shows.
// DefaultProtect and HistoryFile are decoded from the file but nothing in
// the host or the interpreter reads them.
type Config struct {
	SDKPath        string `toml:"sdk_path"`
	Prompt         string `toml:"prompt"`
	DefaultProtect string `toml:"default_protection"`
	HistoryFile    string `toml:"history_file"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		SDKPath:        "",
		Prompt:         ">>> ",
		DefaultProtect: "mutable",
		HistoryFile:    "",
	}
}

// Load reads a TOML config file at path, overlaying it on Default(). A
// missing file is not an error; it just yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: decoding %s", path)
	}
	return cfg, nil
}
