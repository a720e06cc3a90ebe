package config

import (
	"flag"
	"strings"
)

// listFlag collects every occurrence of a repeatable flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// Flags holds command-line overrides. Zero values leave the config alone.
type Flags struct {
	Config    string
	Debug     bool
	Output    string
	Precision int
	Rounding  string
	Compact   bool
	GRF       listFlag
}

// Register adds the override flags to fs. Precision defaults to -1 so that
// an explicit 0 can be told apart from "not set".
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Output, "o", "", "Output file")
	fs.IntVar(&f.Precision, "precision", -1, "Decimal digits per attribute component")
	fs.StringVar(&f.Rounding, "rounding", "", "Rounding mode: half-even or half-away")
	fs.BoolVar(&f.Compact, "compact", false, "Write JSON without indentation")
	fs.Var(&f.GRF, "grf", "GRF archive to read models from (repeatable)")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Output != "" {
		cfg.Export.OutputPath = f.Output
	}
	if f.Precision >= 0 {
		cfg.Export.Precision = f.Precision
	}
	if f.Rounding != "" {
		cfg.Export.Rounding = f.Rounding
	}
	if f.Compact {
		cfg.Export.Indent = 0
	}
	if len(f.GRF) > 0 {
		cfg.Data.GRFPaths = f.GRF
	}
}
