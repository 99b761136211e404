package width

// Batch holds the (a, c) vectors for one width, per spec §3's "SP pair
// batch (per width W)" entity: two parallel vectors of width-W values.
type Batch struct {
	Width Width
	A     [][]byte
	C     [][]byte
}

// NewBatch allocates a Batch of n zeroed pairs for width w.
func NewBatch(w Width, n int) *Batch {
	a := make([][]byte, n)
	c := make([][]byte, n)
	for i := range a {
		a[i] = Zero(w)
		c[i] = Zero(w)
	}
	return &Batch{Width: w, A: a, C: c}
}

// Len returns the number of pairs in the batch.
func (b *Batch) Len() int { return len(b.A) }

// Batches is the width-tag -> Batch map spec §9's Design Notes recommend in
// place of five duplicated per-width fields.
type Batches map[Width]*Batch

// NewBatches allocates one Batch per width with a positive count in counts.
func NewBatches(counts map[Width]int) Batches {
	out := make(Batches, len(counts))
	for _, w := range All {
		n := counts[w]
		if n <= 0 {
			continue
		}
		out[w] = NewBatch(w, n)
	}
	return out
}
