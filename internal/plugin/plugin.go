// Package plugin exposes the export as a zero-argument operation that a host
// application can list in its command table.
package plugin

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/webgl-export/internal/exporter"
	"github.com/Faultbox/webgl-export/internal/logger"
	"github.com/Faultbox/webgl-export/pkg/mesh"
)

// ExportID identifies the export operation in a host registry.
const ExportID = "export.webgl"

// ErrDuplicateOperator is returned by registries when an ID is taken.
var ErrDuplicateOperator = errors.New("operator already registered")

// Operator is a named action a host can invoke without arguments.
type Operator struct {
	ID    string
	Label string
	Run   func() error
}

// Registry is the host side of the integration.
type Registry interface {
	Add(op Operator) error
	Remove(id string)
}

// SourceFunc yields the mesh to export, typically the host's active object.
type SourceFunc func() (mesh.Source, error)

// Register adds the export operation to reg. Running it pulls the current
// mesh from src and writes the document to out.
func Register(reg Registry, exp *exporter.Exporter, src SourceFunc, out string) error {
	log := logger.Named("plugin")

	op := Operator{
		ID:    ExportID,
		Label: "Export WebGL geometry (.json)",
		Run: func() error {
			m, err := src()
			if err != nil {
				return fmt.Errorf("getting mesh: %w", err)
			}
			_, err = exp.ExportFile(m, out)
			return err
		},
	}
	if err := reg.Add(op); err != nil {
		return fmt.Errorf("registering %s: %w", ExportID, err)
	}
	log.Debug("registered operator", zap.String("id", op.ID), zap.String("output", out))
	return nil
}

// Unregister removes the export operation from reg.
func Unregister(reg Registry) {
	reg.Remove(ExportID)
}

// Table is a simple ordered Registry.
type Table struct {
	ops []Operator
}

// Add appends op, rejecting duplicate IDs.
func (t *Table) Add(op Operator) error {
	if _, ok := t.Get(op.ID); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateOperator, op.ID)
	}
	t.ops = append(t.ops, op)
	return nil
}

// Remove deletes the operator with the given ID, if present.
func (t *Table) Remove(id string) {
	t.ops = slices.DeleteFunc(t.ops, func(op Operator) bool { return op.ID == id })
}

// Get looks up an operator by ID.
func (t *Table) Get(id string) (Operator, bool) {
	for _, op := range t.ops {
		if op.ID == id {
			return op, true
		}
	}
	return Operator{}, false
}

// List returns the registered operators in insertion order.
func (t *Table) List() []Operator {
	return slices.Clone(t.ops)
}
