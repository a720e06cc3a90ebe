package webgl

// VertexTable is the ordered, duplicate-free list of vertex records built
// during one export. Entries keep the order of their first insertion.
type VertexTable struct {
	records []AttributeRecord
	slots   map[AttributeRecord]uint32
}

// NewVertexTable creates an empty table.
func NewVertexTable() *VertexTable {
	return &VertexTable{
		slots: make(map[AttributeRecord]uint32),
	}
}

// Insert returns the slot of rec, appending it when no equal record exists.
// A record containing NaN never equals anything and always gets a new slot.
func (t *VertexTable) Insert(rec AttributeRecord) uint32 {
	if slot, ok := t.slots[rec]; ok {
		return slot
	}
	slot := uint32(len(t.records))
	t.records = append(t.records, rec)
	t.slots[rec] = slot
	return slot
}

// Len returns the number of unique records.
func (t *VertexTable) Len() int {
	return len(t.records)
}

// Records returns the table entries in slot order. The slice must not be
// modified.
func (t *VertexTable) Records() []AttributeRecord {
	return t.records
}

// Flatten returns every record as FloatsPerVertex consecutive floats.
func (t *VertexTable) Flatten() []float64 {
	out := make([]float64, 0, len(t.records)*FloatsPerVertex)
	for _, r := range t.records {
		out = r.AppendFloats(out)
	}
	return out
}
