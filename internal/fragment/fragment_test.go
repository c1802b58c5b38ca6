package fragment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_SetAndValue(t *testing.T) {
	c := NewCell(1.5)
	assert.Equal(t, float32(1.5), c.Value())

	c.Set(-0.25)
	assert.Equal(t, float32(-0.25), c.Value())
}

func TestCell_SingleWriterSingleReader(t *testing.T) {
	c := NewCell(0)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.Set(float32(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			v := c.Value()
			assert.True(t, v >= 0 && v < 1000)
		}
	}()
	wg.Wait()
	assert.Equal(t, float32(999), c.Value())
}

func TestCells(t *testing.T) {
	assert.Nil(t, Cells(nil))

	cells := Cells([]float32{1, 2, 3})
	require.Len(t, cells, 3)
	for i, c := range cells {
		assert.Equal(t, float32(i+1), c.Value())
	}
}

func TestBuilt_PushScalar(t *testing.T) {
	scalarBound := Built{Fragment: Zero{}, Live: Cells([]float32{0}), Binding: BindScalar}
	assert.True(t, scalarBound.PushScalar(4))
	assert.Equal(t, float32(4), scalarBound.Live[0].Value())

	unbound := Built{Fragment: Zero{}}
	assert.False(t, unbound.PushScalar(4))

	arrayBound := Built{Fragment: Zero{}, Live: Cells([]float32{0}), Binding: BindArray}
	assert.False(t, arrayBound.PushScalar(4))
	assert.Equal(t, float32(0), arrayBound.Live[0].Value())
}

func TestBuilt_PushArray(t *testing.T) {
	b := Built{Fragment: Zero{}, Live: Cells([]float32{0, 0}), Binding: BindArray}

	assert.True(t, b.PushArray([]float32{7, 8}))
	assert.Equal(t, float32(7), b.Live[0].Value())
	assert.Equal(t, float32(8), b.Live[1].Value())

	assert.False(t, b.PushArray([]float32{1, 2, 3}), "shape change needs a rebuild")
	assert.Equal(t, float32(7), b.Live[0].Value())
}

func TestBuiltinShapes(t *testing.T) {
	z := Zero{}
	assert.Equal(t, 0, z.Inputs())
	assert.Equal(t, 1, z.Outputs())
	out := []float32{9}
	z.Tick(nil, out)
	assert.Equal(t, []float32{0}, out)

	p := Placeholder{Out: 3}
	assert.Equal(t, 0, p.Inputs())
	assert.Equal(t, 3, p.Outputs())

	fb := Fallback()
	assert.Equal(t, 1, fb.Fragment.Outputs())
	assert.Nil(t, fb.Live)
	assert.Equal(t, BindNone, fb.Binding)
}
