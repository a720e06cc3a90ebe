// webglexport converts 3D models into the JSON geometry documents read by
// the WebGL client.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/webgl-export/internal/assets"
	"github.com/Faultbox/webgl-export/internal/config"
	"github.com/Faultbox/webgl-export/internal/exporter"
	"github.com/Faultbox/webgl-export/internal/logger"
	"github.com/Faultbox/webgl-export/internal/plugin"
	"github.com/Faultbox/webgl-export/pkg/formats"
	"github.com/Faultbox/webgl-export/pkg/mesh"
	"github.com/Faultbox/webgl-export/pkg/webgl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "export", "x":
		err = cmdExport(args, os.Stdout)
	case "info":
		err = cmdInfo(args, os.Stdout)
	case "models", "ls":
		err = cmdModels(args, os.Stdout)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `webglexport - WebGL geometry exporter

Usage:
  webglexport <command> [options]

Commands:
  export [options] <model>           Convert .obj, .gltf, .glb or .rsm to JSON
  export -grf <file.grf> <entry>     Convert an RSM model stored in an archive
  info <document.json>               Validate a document and show statistics
  models -grf <file.grf> [pattern]   List RSM models in archives
  config [-user] [-force] [options]  Write the effective settings to a config file

Export options:
  -o <path>          Output file, "-" for stdout (default scene.json)
  -precision <n>     Decimal digits per component (default 2)
  -rounding <mode>   half-even or half-away (default half-even)
  -compact           Write JSON without indentation
  -grf <file.grf>    Archive to read models from, repeatable (later wins)
  -config <path>     Config file (default ./webglexport.yaml)
  -debug             Enable debug logging

Examples:
  webglexport export -o house.json house.obj
  webglexport export -grf data.grf -o fountain.json data/model/prontera/fountain.rsm
  webglexport info house.json
  webglexport models -grf data.grf "*fountain*"
  webglexport config -precision 3 -grf data.grf`)
}

func cmdExport(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var flags config.Flags
	flags.Register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: webglexport export [options] <model>")
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	exp := exporter.New(cfg)
	source := func() (mesh.Source, error) {
		return loadModel(cfg, fs.Arg(0))
	}

	out := cfg.Export.OutputPath
	if out == "-" {
		m, err := source()
		if err != nil {
			return err
		}
		_, err = exp.Export(m, stdout)
		return err
	}

	// The CLI hosts the export operator the same way an editor would
	var ops plugin.Table
	if err := plugin.Register(&ops, exp, source, out); err != nil {
		return err
	}
	defer plugin.Unregister(&ops)

	op, _ := ops.Get(plugin.ExportID)
	if err := op.Run(); err != nil {
		return err
	}
	logger.Info("export finished", zap.String("model", fs.Arg(0)), zap.String("output", out))
	return nil
}

// loadModel reads a model from disk. When the file does not exist and GRF
// archives are configured, name is looked up inside the archives instead.
func loadModel(cfg *config.Config, name string) (*mesh.Mesh, error) {
	var m *mesh.Mesh
	var err error
	if _, statErr := os.Stat(name); statErr == nil || len(cfg.Data.GRFPaths) == 0 {
		m, err = formats.Load(name)
	} else {
		var manager *assets.Manager
		manager, err = openArchives(cfg.Data.GRFPaths)
		if err != nil {
			return nil, err
		}
		defer manager.Close()
		m, err = manager.Mesh(name)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("loaded model",
		zap.String("name", m.Name),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("faces", len(m.Polygons)),
		zap.Int("corners", m.CornerCount()),
		zap.Bool("uvs", m.HasUVs()),
		zap.Int("materials", len(m.MaterialList)),
	)
	return m, nil
}

// openArchives opens every archive in order; later ones take priority.
func openArchives(paths []string) (*assets.Manager, error) {
	manager := assets.NewManager()
	for _, path := range paths {
		if err := manager.AddArchive(path); err != nil {
			manager.Close()
			return nil, err
		}
		logger.Debug("opened archive", zap.String("path", path))
	}
	return manager, nil
}

func cmdInfo(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: webglexport info <document.json>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := webgl.Decode(f)
	if err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Document:  %s\n", args[0])
	fmt.Fprintf(stdout, "Vertices:  %d\n", doc.VertexCount())
	fmt.Fprintf(stdout, "Triangles: %d\n", doc.TriangleCount())
	fmt.Fprintf(stdout, "Texture:   %s\n", doc.Texture)
	if doc.VertexCount() > 0 {
		lo, hi := bounds(doc.Vertices())
		fmt.Fprintf(stdout, "Bounds:    (%g, %g, %g) - (%g, %g, %g)\n", lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	}
	return nil
}

// bounds returns the axis-aligned box around the positions in a flat vertex
// buffer.
func bounds(vertices []float64) (lo, hi mgl64.Vec3) {
	for i := 0; i < len(vertices); i += webgl.FloatsPerVertex {
		p := mgl64.Vec3{vertices[i], vertices[i+1], vertices[i+2]}
		if i == 0 {
			lo, hi = p, p
			continue
		}
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

func cmdModels(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	var flags config.Flags
	flags.Register(fs)
	limit := fs.Int("n", 0, "Limit output to N models (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()
	if len(cfg.Data.GRFPaths) == 0 {
		return errors.New("usage: webglexport models -grf <file.grf> [pattern]")
	}

	manager, err := openArchives(cfg.Data.GRFPaths)
	if err != nil {
		return err
	}
	defer manager.Close()

	models := manager.Models(fs.Arg(0))
	if *limit > 0 && len(models) > *limit {
		models = models[:*limit]
	}
	for _, name := range models {
		fmt.Fprintln(stdout, name)
	}

	if len(models) == 0 {
		logger.Warn("no models matched", zap.String("pattern", fs.Arg(0)), zap.Strings("archives", cfg.Data.GRFPaths))
		return nil
	}
	logger.Sugar.Infof("listed %d models", len(models))
	return nil
}

// cmdConfig writes the merged defaults, config file and flag overrides to
// ./webglexport.yaml, or to the user config directory with -user.
func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var flags config.Flags
	flags.Register(fs)
	user := fs.Bool("user", false, "Write to the user config directory")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return errors.New("usage: webglexport config [-user] [-force] [options]")
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	path := config.FileName
	if *user {
		path = config.UserFile()
	}
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}

	if *user {
		err = cfg.Save()
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	logger.Info("wrote config", zap.String("path", path))
	return nil
}
