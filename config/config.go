// Package config loads the rigrun configuration. Settings come from an
// optional rigrun.yaml in the working directory, with environment variables
// taking priority over the file and the file over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rigrun/rigrun/marker"
	"github.com/rigrun/rigrun/model"
)

// DefaultFileName is looked up in the working directory when RIGRUN_CONFIG
// is not set.
const DefaultFileName = "rigrun.yaml"

// Duration wraps time.Duration so YAML values like "30s" parse directly.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Build configures the external build tool. Command elements may contain
// the {test} placeholder; profile flags are appended. Artifact is the path
// template of the produced binary, with {test} and {profile} placeholders.
type Build struct {
	Command  []string `yaml:"command"`
	Artifact string   `yaml:"artifact"`
}

// Flash configures the device flash/execute tool. Command elements may
// contain the {artifact} placeholder; if none is present the artifact path
// is appended. Detect is run to decide whether a probe is locally attached:
// it must exit non-zero or print nothing when no probe is present.
type Flash struct {
	Command []string `yaml:"command"`
	Detect  []string `yaml:"detect"`
	Timeout Duration `yaml:"timeout"`
}

// Markers configures the sentinel tokens scanned for in device output.
type Markers struct {
	Success []string `yaml:"success"`
	Failure []string `yaml:"failure"`
}

// Profile is one build configuration entry.
type Profile struct {
	Name    string   `yaml:"name"`
	Flags   []string `yaml:"flags"`
	Timeout Duration `yaml:"timeout"`
}

// Rig configures the remote rig controller used when no probe is attached.
type Rig struct {
	// Host is the SSH target, "[user@]host[:port]".
	Host string `yaml:"host"`
	// KeyFile is the path to the SSH private key.
	KeyFile string `yaml:"key_file"`
	// Domain is the rig VM name in the virtualization layer.
	Domain string `yaml:"domain"`
	// Snapshot is the named baseline snapshot to restore.
	Snapshot string `yaml:"snapshot"`
	// RestoreCommand overrides the default virsh snapshot-revert invocation.
	RestoreCommand string `yaml:"restore_command"`
	// Restore selects when the snapshot is restored: before, after, or both.
	Restore string `yaml:"restore"`
	// SettleDelay is waited after a restore so the rig can reconnect/boot.
	SettleDelay Duration `yaml:"settle_delay"`
	// RunCommand is executed on the rig controller to run the full session.
	RunCommand string `yaml:"run_command"`
}

// Config is the full rigrun configuration.
type Config struct {
	TestsDir string    `yaml:"tests_dir"`
	TestExt  string    `yaml:"test_ext"`
	Build    Build     `yaml:"build"`
	Flash    Flash     `yaml:"flash"`
	Markers  Markers   `yaml:"markers"`
	Profiles []Profile `yaml:"profiles"`
	Rig      Rig       `yaml:"rig"`
}

// Default returns the built-in configuration: cargo-built test binaries
// flashed with probe-rs, debug and release profiles, default sentinels.
func Default() *Config {
	return &Config{
		TestsDir: "tests",
		TestExt:  ".rs",
		Build: Build{
			Command:  []string{"cargo", "build", "--test", "{test}"},
			Artifact: filepath.Join("target", "{profile}", "{test}"),
		},
		Flash: Flash{
			Command: []string{"probe-rs", "run", "{artifact}"},
			Detect:  []string{"probe-rs", "list"},
			Timeout: Duration(2 * time.Minute),
		},
		Markers: Markers{
			Success: []string{marker.DefaultSuccessMarker},
			Failure: []string{marker.DefaultFailureMarker},
		},
		Profiles: []Profile{
			{Name: "debug", Timeout: Duration(5 * time.Minute)},
			{Name: "release", Flags: []string{"--release"}, Timeout: Duration(5 * time.Minute)},
		},
		Rig: Rig{
			Snapshot:    "baseline",
			Restore:     "both",
			SettleDelay: Duration(30 * time.Second),
			RunCommand:  "rigrun",
		},
	}
}

// Load reads the configuration for a session run in dir.
// Priority: environment variables > config file > defaults.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := os.Getenv("RIGRUN_CONFIG")
	if path == "" {
		path = filepath.Join(dir, DefaultFileName)
	}

	if err := loadFromFile(cfg, path); err != nil {
		// The config file is optional; only a malformed one is fatal.
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if host := os.Getenv("RIGRUN_RIG_HOST"); host != "" {
		cfg.Rig.Host = host
	}
	if keyFile := os.Getenv("RIGRUN_RIG_KEY_FILE"); keyFile != "" {
		cfg.Rig.KeyFile = keyFile
	}
	if testsDir := os.Getenv("RIGRUN_TESTS_DIR"); testsDir != "" {
		cfg.TestsDir = testsDir
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if len(c.Markers.Success) == 0 || len(c.Markers.Failure) == 0 {
		return fmt.Errorf("markers.success and markers.failure must be non-empty")
	}
	for _, s := range c.Markers.Success {
		for _, f := range c.Markers.Failure {
			if s == f {
				return fmt.Errorf("marker %q is listed as both success and failure", s)
			}
		}
	}
	if len(c.Profiles) == 0 {
		return fmt.Errorf("at least one build profile is required")
	}
	if len(c.Build.Command) == 0 {
		return fmt.Errorf("build.command must not be empty")
	}
	if len(c.Flash.Command) == 0 {
		return fmt.Errorf("flash.command must not be empty")
	}
	switch c.Rig.Restore {
	case "before", "after", "both":
	default:
		return fmt.Errorf("rig.restore must be one of before, after, both; got %q", c.Rig.Restore)
	}
	return nil
}

// BuildProfiles converts the configured profile entries to model profiles,
// preserving their order.
func (c *Config) BuildProfiles() []model.Profile {
	profiles := make([]model.Profile, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		profiles = append(profiles, model.Profile{
			Name:    p.Name,
			Flags:   p.Flags,
			Timeout: time.Duration(p.Timeout),
		})
	}
	return profiles
}

// MarkerConfig returns the marker scan configuration with the run timeout.
func (c *Config) MarkerConfig() marker.Config {
	return marker.Config{
		Success: c.Markers.Success,
		Failure: c.Markers.Failure,
		Timeout: time.Duration(c.Flash.Timeout),
	}
}

// Expand substitutes {test} and {profile} placeholders in a template.
func Expand(template, test, profile string) string {
	out := strings.ReplaceAll(template, "{test}", test)
	return strings.ReplaceAll(out, "{profile}", profile)
}
