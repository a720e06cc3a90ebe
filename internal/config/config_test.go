package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/Faultbox/webgl-export/pkg/webgl"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Export.Precision != 2 {
		t.Errorf("expected precision 2, got %d", cfg.Export.Precision)
	}
	if cfg.Export.Rounding != "half-even" {
		t.Errorf("expected rounding 'half-even', got %s", cfg.Export.Rounding)
	}
	if cfg.Export.TexturePrefix != "img/" {
		t.Errorf("expected texture prefix 'img/', got %s", cfg.Export.TexturePrefix)
	}
	if cfg.Export.Indent != 4 {
		t.Errorf("expected indent 4, got %d", cfg.Export.Indent)
	}
	if cfg.Export.OutputPath != "scene.json" {
		t.Errorf("expected output 'scene.json', got %s", cfg.Export.OutputPath)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.Options() != webgl.DefaultOptions() {
		t.Errorf("Options() = %+v, want %+v", cfg.Options(), webgl.DefaultOptions())
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
export:
  precision: 4
  rounding: half-away
  texture_prefix: "assets/"
  indent: 2
  output: "out/model.json"

data:
  grf_paths:
    - "data.grf"
    - "rdata.grf"

logging:
  level: "debug"
  log_file: "export.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Export.Precision != 4 {
		t.Errorf("expected precision 4, got %d", cfg.Export.Precision)
	}
	if cfg.Export.Rounding != "half-away" {
		t.Errorf("expected rounding 'half-away', got %s", cfg.Export.Rounding)
	}
	if cfg.Export.TexturePrefix != "assets/" {
		t.Errorf("expected prefix 'assets/', got %s", cfg.Export.TexturePrefix)
	}
	if cfg.Export.Indent != 2 {
		t.Errorf("expected indent 2, got %d", cfg.Export.Indent)
	}
	if cfg.Export.OutputPath != "out/model.json" {
		t.Errorf("expected output 'out/model.json', got %s", cfg.Export.OutputPath)
	}
	if len(cfg.Data.GRFPaths) != 2 || cfg.Data.GRFPaths[1] != "rdata.grf" {
		t.Errorf("expected two GRF paths, got %v", cfg.Data.GRFPaths)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "export.log" {
		t.Errorf("expected log file 'export.log', got %s", cfg.Logging.LogFile)
	}

	opts := cfg.Options()
	if opts.Rounding != webgl.RoundHalfAway || opts.Precision != 4 {
		t.Errorf("Options() = %+v", opts)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("export:\n  precision: 3\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Export.Precision != 3 {
		t.Errorf("expected precision 3, got %d", cfg.Export.Precision)
	}
	// Keys absent from the file keep their defaults
	if cfg.Export.TexturePrefix != "img/" || cfg.Export.Indent != 4 {
		t.Errorf("defaults lost: %+v", cfg.Export)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
export:
  precision: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if runtime.GOOS != "windows" && !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte("export:\n  indent: 0\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Errorf("expected to find %s in current directory", FileName)
	}
}

func TestFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "no flags",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if !reflect.DeepEqual(cfg, Default()) {
					t.Errorf("config changed without flags: %+v", cfg)
				}
			},
		},
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "output flag",
			args: []string{"-o", "house.json"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.OutputPath != "house.json" {
					t.Errorf("expected output house.json, got %s", cfg.Export.OutputPath)
				}
			},
		},
		{
			name: "zero precision",
			args: []string{"-precision", "0"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Precision != 0 {
					t.Errorf("expected precision 0, got %d", cfg.Export.Precision)
				}
			},
		},
		{
			name: "repeated grf flag",
			args: []string{"-grf", "data.grf", "-grf", "patch.grf"},
			verify: func(t *testing.T, cfg *Config) {
				want := []string{"data.grf", "patch.grf"}
				if !reflect.DeepEqual(cfg.Data.GRFPaths, want) {
					t.Errorf("expected GRF paths %v, got %v", want, cfg.Data.GRFPaths)
				}
			},
		},
		{
			name: "rounding and compact",
			args: []string{"-rounding", "half-away", "-compact"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Rounding != "half-away" {
					t.Errorf("expected rounding half-away, got %s", cfg.Export.Rounding)
				}
				if cfg.Export.Indent != 0 {
					t.Errorf("expected compact output, got indent %d", cfg.Export.Indent)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var flags Flags
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			flags.Register(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parse failed: %v", err)
			}

			cfg := Default()
			flags.apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	configPath := filepath.Join(tmpDir, "custom.yaml")
	if err := os.WriteFile(configPath, []byte("export:\n  precision: 5\n  output: file.json\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(&Flags{Config: configPath, Precision: -1, Output: "flag.json"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Export.Precision != 5 {
		t.Errorf("file should override default precision, got %d", cfg.Export.Precision)
	}
	if cfg.Export.OutputPath != "flag.json" {
		t.Errorf("flag should override file output, got %s", cfg.Export.OutputPath)
	}

	cfg, err = Load(nil)
	if err != nil {
		t.Fatalf("Load(nil) failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(nil) without files should return defaults, got %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := Load(&Flags{Config: "/nonexistent/config.yaml", Precision: -1})
	if err == nil {
		t.Error("expected error for missing explicit config")
	}

	_, err = Load(&Flags{Precision: -1, Rounding: "banker"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"max precision", func(c *Config) { c.Export.Precision = webgl.MaxPrecision }, true},
		{"precision too high", func(c *Config) { c.Export.Precision = webgl.MaxPrecision + 1 }, false},
		{"negative precision", func(c *Config) { c.Export.Precision = -1 }, false},
		{"unknown rounding", func(c *Config) { c.Export.Rounding = "up" }, false},
		{"negative indent", func(c *Config) { c.Export.Indent = -2 }, false},
		{"unknown level", func(c *Config) { c.Logging.Level = "verbose" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Export.Precision = 6
	cfg.Logging.LogFile = "x.log"
	cfg.Data.GRFPaths = []string{"data.grf", "custom.grf"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("reloaded config = %+v, want %+v", loaded, cfg)
	}
}

func TestSave(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("config dir override only via XDG_CONFIG_HOME")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	if err := Default().Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(xdg, "webgl-export", "config.yaml")); err != nil {
		t.Errorf("config not written to config dir: %v", err)
	}
}
