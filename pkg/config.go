package dupfilehash

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the dfh configuration file
type Config struct {
	configPath string
	ini        *ini.File
}

// ScanConfig represents the engine settings
type ScanConfig struct {
	MinSize         string // Smallest file considered, human size (default: "1K")
	LargeThreshold  string // Size at which sampling starts (default: "1M")
	SampleSize      string // Bytes sampled from each end (default: "64K")
	MtimeBucket     string // mtime bucket width, seconds or duration (default: "0", off)
	FollowFileLinks bool   // Hash targets of file symlinks (default: false)
	SkipHardlinks   bool   // Collapse hard links to one path (default: false)
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	HashWorkers int    // Number of concurrent hash workers (default: 0, one per CPU)
	HashBuffer  string // Read size for full-content hashing (default: "16K")
}

// OutputConfig represents output format configuration
type OutputConfig struct {
	Format string // Default output format: human, json, yaml, fdupes
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// AllConfig represents all configuration options
type AllConfig struct {
	Scan        *ScanConfig
	Performance *PerformanceConfig
	Output      *OutputConfig
	Verbose     *VerboseConfig
}

// envOverrides are read from DFH_* environment variables
type envOverrides struct {
	Workers string `envconfig:"WORKERS"`
	MinSize string `envconfig:"MIN_SIZE"`
	Format  string `envconfig:"FORMAT"`
	Verbose string `envconfig:"VERBOSE"`
}

// LoadConfig loads configuration from configDir/config. A missing file gives
// the defaults; nothing is written until Save is called.
func LoadConfig(configDir string) (*Config, error) {
	configPath := filepath.Join(configDir, ConfigFile)

	cfg := &Config{
		configPath: configPath,
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg.ini = ini.Empty()
		if err := cfg.setDefaults(); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
	} else {
		iniFile, err := ini.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg.ini = iniFile
	}

	return cfg, nil
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	defaults := []struct {
		section, key, value string
	}{
		{"scan", "min_size", "1K"},
		{"scan", "large_threshold", "1M"},
		{"scan", "sample_size", "64K"},
		{"scan", "mtime_bucket", "0"},
		{"scan", "follow_file_links", "false"},
		{"scan", "skip_hardlinks", "false"},
		{"performance", "hash_workers", "0"},
		{"performance", "hash_buffer", "16K"},
		{"output", "format", FormatHuman},
		{"verbose", "level", "0"},
		{"verbose", "debug", ""},
	}

	for _, d := range defaults {
		section := c.ini.Section(d.section)
		if _, err := section.NewKey(d.key, d.value); err != nil {
			return fmt.Errorf("failed to set default %s.%s: %w", d.section, d.key, err)
		}
	}
	return nil
}

// GetScanConfig returns the scan configuration
func (c *Config) GetScanConfig() *ScanConfig {
	scanConfig := &ScanConfig{
		MinSize:        "1K",
		LargeThreshold: "1M",
		SampleSize:     "64K",
		MtimeBucket:    "0",
	}

	if c.ini.HasSection("scan") {
		section := c.ini.Section("scan")
		if section.HasKey("min_size") {
			scanConfig.MinSize = section.Key("min_size").String()
		}
		if section.HasKey("large_threshold") {
			scanConfig.LargeThreshold = section.Key("large_threshold").String()
		}
		if section.HasKey("sample_size") {
			scanConfig.SampleSize = section.Key("sample_size").String()
		}
		if section.HasKey("mtime_bucket") {
			scanConfig.MtimeBucket = section.Key("mtime_bucket").String()
		}
		if section.HasKey("follow_file_links") {
			if follow, err := section.Key("follow_file_links").Bool(); err == nil {
				scanConfig.FollowFileLinks = follow
			}
		}
		if section.HasKey("skip_hardlinks") {
			if skip, err := section.Key("skip_hardlinks").Bool(); err == nil {
				scanConfig.SkipHardlinks = skip
			}
		}
	}

	return scanConfig
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	performanceConfig := &PerformanceConfig{
		HashWorkers: 0,
		HashBuffer:  "16K",
	}

	if c.ini.HasSection("performance") {
		section := c.ini.Section("performance")
		if section.HasKey("hash_workers") {
			if workers, err := section.Key("hash_workers").Int(); err == nil {
				performanceConfig.HashWorkers = workers
			}
		}
		if section.HasKey("hash_buffer") {
			if bufferSize := section.Key("hash_buffer").String(); bufferSize != "" {
				performanceConfig.HashBuffer = bufferSize
			}
		}
	}

	return performanceConfig
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	outputConfig := &OutputConfig{
		Format: FormatHuman,
	}

	if c.ini.HasSection("output") {
		section := c.ini.Section("output")
		if section.HasKey("format") {
			outputConfig.Format = section.Key("format").String()
		}
	}

	return outputConfig
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
		if section.HasKey("debug") {
			verboseConfig.Debug = section.Key("debug").String()
		}
	}

	return verboseConfig
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Scan:        c.GetScanConfig(),
		Performance: c.GetPerformanceConfig(),
		Output:      c.GetOutputConfig(),
		Verbose:     c.GetVerboseConfig(),
	}
}

// Path returns the file the configuration is saved to
func (c *Config) Path() string {
	return c.configPath
}

// Save saves the configuration to disk, creating its directory if needed
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return c.ini.SaveTo(c.configPath)
}

// overrideKeys maps override keys to their section
var overrideKeys = map[string]string{
	"min_size":          "scan",
	"large_threshold":   "scan",
	"sample_size":       "scan",
	"mtime_bucket":      "scan",
	"follow_file_links": "scan",
	"skip_hardlinks":    "scan",
	"hash_workers":      "performance",
	"hash_buffer":       "performance",
	"format":            "output",
	"level":             "verbose",
	"debug":             "verbose",
}

// ApplyOverrides applies command-line overrides to the configuration
// Accepts strings like "min_size:4K", "format:json", "level:2", "debug:scan"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		sectionName, ok := overrideKeys[key]
		if !ok {
			return fmt.Errorf("unsupported override key '%s'", key)
		}
		c.ini.Section(sectionName).Key(key).SetValue(value)
	}

	return nil
}

// ApplyEnv applies DFH_WORKERS, DFH_MIN_SIZE, DFH_FORMAT and DFH_VERBOSE
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process("dfh", &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	var overrides []string
	if env.Workers != "" {
		overrides = append(overrides, "hash_workers:"+env.Workers)
	}
	if env.MinSize != "" {
		overrides = append(overrides, "min_size:"+env.MinSize)
	}
	if env.Format != "" {
		overrides = append(overrides, "format:"+env.Format)
	}
	if env.Verbose != "" {
		overrides = append(overrides, "level:"+env.Verbose)
	}
	return c.ApplyOverrides(overrides)
}

// Validate checks every section
func (c *Config) Validate() error {
	all := c.GetAllConfig()

	if err := ValidateOutputFormat(all.Output.Format); err != nil {
		return err
	}
	if err := ValidateVerboseLevel(all.Verbose.Level); err != nil {
		return err
	}
	if all.Performance.HashWorkers != 0 {
		if err := ValidateHashWorkers(all.Performance.HashWorkers); err != nil {
			return err
		}
	}
	_, err := c.ScanOptions()
	return err
}

// ScanOptions converts the configuration into engine options
func (c *Config) ScanOptions() (Options, error) {
	sc := c.GetScanConfig()
	pc := c.GetPerformanceConfig()
	opts := DefaultOptions()

	sizes := []struct {
		name  string
		value string
		dest  *int64
	}{
		{"min_size", sc.MinSize, &opts.MinSize},
		{"large_threshold", sc.LargeThreshold, &opts.LargeThreshold},
		{"sample_size", sc.SampleSize, &opts.SampleSize},
	}
	for _, s := range sizes {
		n, err := ParseHumanSize(s.value)
		if err != nil {
			return opts, fmt.Errorf("invalid %s: %w", s.name, err)
		}
		*s.dest = n
	}
	if opts.LargeThreshold == 0 {
		return opts, fmt.Errorf("invalid large_threshold: must be positive")
	}
	if opts.SampleSize == 0 || opts.SampleSize > MaxSampleSize {
		return opts, fmt.Errorf("invalid sample_size: %s (must be 1 to %d bytes)", sc.SampleSize, int64(MaxSampleSize))
	}

	buffer, err := ParseHumanSize(pc.HashBuffer)
	if err != nil {
		return opts, fmt.Errorf("invalid hash_buffer: %w", err)
	}
	if buffer <= 0 || buffer > MaxHashBuffer {
		return opts, fmt.Errorf("invalid hash_buffer: %s", pc.HashBuffer)
	}
	opts.BufferSize = int(buffer)

	if opts.MtimeBucket, err = ParseBucket(sc.MtimeBucket); err != nil {
		return opts, err
	}
	opts.FollowFileLinks = sc.FollowFileLinks
	opts.SkipHardlinks = sc.SkipHardlinks

	if pc.HashWorkers != 0 {
		if err := ValidateHashWorkers(pc.HashWorkers); err != nil {
			return opts, err
		}
		opts.Workers = pc.HashWorkers
	}
	return opts, nil
}

// ValidateOutputFormat validates that an output format is supported
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatHuman, FormatJSON, FormatYAML, FormatFdupes:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, json, yaml, fdupes)", format)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-3)", level)
	}
	return nil
}

// ValidateHashWorkers validates that the hash worker count is reasonable
func ValidateHashWorkers(workers int) error {
	if workers < 1 {
		return fmt.Errorf("hash workers must be at least 1, got: %d", workers)
	}
	if workers > MaxHashWorkers {
		return fmt.Errorf("hash workers should not exceed %d, got: %d", MaxHashWorkers, workers)
	}
	return nil
}

