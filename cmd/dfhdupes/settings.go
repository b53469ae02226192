package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	dupfilehash "github.com/mattkeenan/dupfilehash/pkg"
)

// stringList collects a repeatable string flag
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// settings holds the flags shared by every command that reads the config
type settings struct {
	configDir string
	overrides stringList
	verbose   int
	debug     string
}

func defaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "dfh")
	}
	return ".dfh"
}

func (s *settings) register(f *flag.FlagSet) {
	f.StringVar(&s.configDir, "config", defaultConfigDir(), "configuration directory (holds config and ignore)")
	f.Var(&s.overrides, "set", "override a config key, as key:value (repeatable)")
	f.IntVar(&s.verbose, "v", -1, "verbose level 0-3 (default from config)")
	f.StringVar(&s.debug, "debug", "", "comma-separated debug flags: scan,filter,hash,group")
}

// load reads the config file, then environment, then -set, then -v/-debug
func (s *settings) load() (*dupfilehash.Config, error) {
	cfg, err := dupfilehash.LoadConfig(s.configDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	overrides := append([]string(nil), s.overrides...)
	if s.verbose >= 0 {
		overrides = append(overrides, fmt.Sprintf("level:%d", s.verbose))
	}
	if s.debug != "" {
		overrides = append(overrides, "debug:"+s.debug)
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dupfilehash.ConfigureLogging(cfg.GetVerboseConfig())
	return cfg, nil
}

// ignoreManager loads the config ignore file and adds extra patterns
func (s *settings) ignoreManager(extra []string) (*dupfilehash.IgnoreManager, error) {
	im := dupfilehash.NewIgnoreManager(s.configDir)
	if err := im.LoadIgnorePatterns(); err != nil {
		return nil, err
	}
	for _, pattern := range extra {
		if err := im.AddPattern(pattern); err != nil {
			return nil, err
		}
	}
	return im, nil
}
