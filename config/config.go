// Copyright (c) 2026 The Tacc Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package config carries the handful of knobs the driver owns: which OS's
// section/symbol convention to emit, whether to keep frame pointers, and
// the default IR dump format for the `--print-*` flags. A struct of nested,
// toml-tagged sections with a DefaultConfig fallback, loaded with
// github.com/BurntSushi/toml. The compiler runs with zero config; the file
// only overrides defaults.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full set of optional compiler knobs.
type Config struct {
	// Target controls assembly emission.
	Target struct {
		OS               string `toml:"os"`                  // "linux" or "darwin"
		KeepFramePointer bool   `toml:"keep_frame_pointer"` // always true today; reserved for a future leaf-function omission pass
	} `toml:"target"`

	// Dump controls the `--print-*` IR dumps.
	Dump struct {
		Format string `toml:"format"` // "text" (only format implemented today)
	} `toml:"dump"`
}

// DefaultConfig returns the configuration the compiler runs with when no
// tacc.toml is present: Linux section conventions, frame pointers retained,
// plain-text IR dumps.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Target.OS = "linux"
	cfg.Target.KeepFramePointer = true
	cfg.Dump.Format = "text"
	return cfg
}

// Load reads path into a Config seeded with DefaultConfig, so a partial
// tacc.toml only overrides the sections/fields it mentions. A missing file
// is not an error: the default configuration is returned as-is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
