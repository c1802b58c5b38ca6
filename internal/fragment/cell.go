package fragment

import (
	"math"
	"sync/atomic"
)

// Cell is a shared float32 input. One editor goroutine writes it and one
// audio goroutine reads it.
type Cell struct {
	bits atomic.Uint32
}

// NewCell returns a cell holding v.
func NewCell(v float32) *Cell {
	c := &Cell{}
	c.Set(v)
	return c
}

// Set stores v.
func (c *Cell) Set(v float32) {
	c.bits.Store(math.Float32bits(v))
}

// Value loads the current value.
func (c *Cell) Value() float32 {
	return math.Float32frombits(c.bits.Load())
}

// Cells returns one cell per value, in order.
func Cells(values []float32) []*Cell {
	if len(values) == 0 {
		return nil
	}
	cells := make([]*Cell, len(values))
	for i, v := range values {
		cells[i] = NewCell(v)
	}
	return cells
}
