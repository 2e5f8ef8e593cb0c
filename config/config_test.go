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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Target.OS != "linux" {
		t.Errorf("expected Target.OS=linux, got %s", cfg.Target.OS)
	}
	if !cfg.Target.KeepFramePointer {
		t.Error("expected Target.KeepFramePointer=true")
	}
	if cfg.Dump.Format != "text" {
		t.Errorf("expected Dump.Format=text, got %s", cfg.Dump.Format)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Target.OS != "linux" {
		t.Errorf("expected defaults when file is missing, got Target.OS=%s", cfg.Target.OS)
	}
}

func TestLoadOverridesOnlyMentionedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tacc.toml")
	body := "[target]\nos = \"darwin\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Target.OS != "darwin" {
		t.Errorf("expected Target.OS=darwin, got %s", cfg.Target.OS)
	}
	if !cfg.Target.KeepFramePointer {
		t.Error("KeepFramePointer should keep its default when the file doesn't mention it")
	}
	if cfg.Dump.Format != "text" {
		t.Errorf("Dump.Format should keep its default when the file doesn't mention it, got %s", cfg.Dump.Format)
	}
}
