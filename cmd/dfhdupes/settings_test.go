package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	dupfilehash "github.com/mattkeenan/dupfilehash/pkg"
)

// clearEnv keeps the caller's DFH_* variables out of a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"DFH_WORKERS", "DFH_MIN_SIZE", "DFH_FORMAT", "DFH_VERBOSE"} {
		t.Setenv(name, "")
	}
}

func resetLogging(t *testing.T) {
	t.Cleanup(func() {
		dupfilehash.SetVerboseLevel(0)
		dupfilehash.SetDebugFlags("")
	})
}

func parseSettings(t *testing.T, args ...string) *settings {
	t.Helper()
	s := &settings{}
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	s.register(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("Failed to parse %v: %v", args, err)
	}
	return s
}

func TestSettingsPrecedence(t *testing.T) {
	clearEnv(t)
	resetLogging(t)

	configDir := t.TempDir()
	content := "[scan]\nmin_size = 2K\nsample_size = 32K\n\n[output]\nformat = json\n\n[verbose]\nlevel = 1\ndebug = scan\n"
	if err := os.WriteFile(filepath.Join(configDir, "config"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("DFH_FORMAT", "yaml")
	t.Setenv("DFH_MIN_SIZE", "4K")
	t.Setenv("DFH_VERBOSE", "2")

	s := parseSettings(t, "-config", configDir, "-set", "format:fdupes", "-v", "3", "-debug", "hash")
	cfg, err := s.load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	all := cfg.GetAllConfig()
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"file only", all.Scan.SampleSize, "32K"},
		{"env over file", all.Scan.MinSize, "4K"},
		{"-set over env", all.Output.Format, dupfilehash.FormatFdupes},
		{"-debug over file", all.Verbose.Debug, "hash"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}

	if all.Verbose.Level != 3 {
		t.Errorf("-v over env: got level %d, want 3", all.Verbose.Level)
	}
	if dupfilehash.GetVerbose() != 3 {
		t.Errorf("Expected logging configured at level 3, got %d", dupfilehash.GetVerbose())
	}
	if !dupfilehash.GetDebugEnabled("hash") || dupfilehash.GetDebugEnabled("scan") {
		t.Error("Expected only the hash debug flag to be enabled")
	}
}

func TestSettingsDefaultsWithoutFlags(t *testing.T) {
	clearEnv(t)
	resetLogging(t)

	s := parseSettings(t, "-config", t.TempDir())
	cfg, err := s.load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := cfg.GetOutputConfig().Format; got != dupfilehash.FormatHuman {
		t.Errorf("Expected default format human, got %s", got)
	}
	if got := cfg.GetVerboseConfig().Level; got != 0 {
		t.Errorf("Expected default level 0, got %d", got)
	}
}

func TestSettingsRejectsInvalidConfig(t *testing.T) {
	clearEnv(t)
	resetLogging(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"-set", "format:xml"}},
		{"bad key", []string{"-set", "colour:red"}},
		{"bad level", []string{"-v", "9"}},
		{"zero threshold", []string{"-set", "large_threshold:0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-config", t.TempDir()}, tt.args...)
			if _, err := parseSettings(t, args...).load(); err == nil {
				t.Errorf("Expected error for %v", tt.args)
			}
		})
	}
}

func TestStringList(t *testing.T) {
	var list stringList
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	f.Var(&list, "ignore", "")
	if err := f.Parse([]string{"-ignore", `\.tmp$`, "-ignore", "^cache/"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(list) != 2 || list[0] != `\.tmp$` || list[1] != "^cache/" {
		t.Errorf("Unexpected list %v", list)
	}
	if list.String() != `\.tmp$,^cache/` {
		t.Errorf("Unexpected String() %q", list.String())
	}
}
