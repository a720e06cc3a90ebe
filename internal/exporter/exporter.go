// Package exporter runs the geometry pipeline for the command line and host
// integrations. It adds logging and safe file output around pkg/webgl.
package exporter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/webgl-export/internal/config"
	"github.com/Faultbox/webgl-export/internal/logger"
	"github.com/Faultbox/webgl-export/pkg/mesh"
	"github.com/Faultbox/webgl-export/pkg/webgl"
)

// Stats summarizes one export.
type Stats struct {
	Faces     int
	Triangles int
	Vertices  int // Deduplicated table entries
	Indices   int
	Texture   string // As written to the document
	Elapsed   time.Duration
}

// Exporter converts meshes into geometry documents.
type Exporter struct {
	opts   webgl.Options
	indent string
	log    *zap.Logger
}

// New creates an exporter from a validated config.
func New(cfg *config.Config) *Exporter {
	return &Exporter{
		opts:   cfg.Options(),
		indent: webgl.Indent(cfg.Export.Indent),
		log:    logger.Named("exporter"),
	}
}

// Options returns the pipeline options in use.
func (e *Exporter) Options() webgl.Options {
	return e.opts
}

// Export converts src and writes the document to w. Nothing is written when
// the pipeline fails.
func (e *Exporter) Export(src mesh.Source, w io.Writer) (*Stats, error) {
	start := time.Now()

	res, err := webgl.Export(src, e.opts)
	if err != nil {
		e.log.Warn("export failed", zap.Error(err))
		return nil, err
	}
	doc := res.Document()

	bw := bufio.NewWriter(w)
	if err := webgl.Encode(bw, doc, e.indent); err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("writing geometry: %w", err)
	}

	stats := &Stats{
		Faces:     len(src.Faces()),
		Triangles: res.Triangles,
		Vertices:  res.Table.Len(),
		Indices:   len(res.Indices),
		Texture:   doc.Texture,
		Elapsed:   time.Since(start),
	}
	e.log.Debug("export complete",
		zap.Int("faces", stats.Faces),
		zap.Int("triangles", stats.Triangles),
		zap.Int("vertices", stats.Vertices),
		zap.Int("corners", stats.Indices),
		zap.String("texture", stats.Texture),
		zap.Duration("elapsed", stats.Elapsed),
	)
	if res.Texture == "" {
		e.log.Warn("mesh has no image texture", zap.String("texture", stats.Texture))
	}
	return stats, nil
}

// ExportFile writes the document to path. Output goes to a temporary file in
// the same directory first and is renamed into place once complete, so a
// failed export never leaves a partial document behind.
func (e *Exporter) ExportFile(src mesh.Source, path string) (*Stats, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	stats, err := e.Export(src, tmp)
	if err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return nil, fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("replacing %s: %w", path, err)
	}

	e.log.Debug("wrote geometry",
		zap.String("path", path),
		zap.Int("vertices", stats.Vertices),
		zap.Int("triangles", stats.Triangles),
	)
	return stats, nil
}
