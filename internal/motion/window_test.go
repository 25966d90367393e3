package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowAppendAndAverage(t *testing.T) {
	w := NewSlidingWindow(5)

	_, ok := w.Average()
	assert.False(t, ok, "janela vazia não deve ter média")

	w.Append(10)
	w.Append(20)
	w.Append(30)

	avg, ok := w.Average()
	require.True(t, ok)
	assert.Equal(t, float64(20), avg)
	assert.Equal(t, 3, w.Len())
}

func TestSlidingWindowEvictsOldest(t *testing.T) {
	w := NewSlidingWindow(3)

	w.Append(1)
	w.Append(2)
	w.Append(3)
	w.Append(4) // descarta o 1

	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []int64{2, 3, 4}, w.Values())

	avg, ok := w.Average()
	require.True(t, ok)
	assert.Equal(t, float64(3), avg)
}

func TestSlidingWindowClear(t *testing.T) {
	w := NewSlidingWindow(4)
	w.Append(100)
	w.Append(200)

	w.Clear()

	assert.Equal(t, 0, w.Len())
	_, ok := w.Average()
	assert.False(t, ok)

	// A capacidade sobrevive ao esvaziamento
	assert.Equal(t, 4, w.Capacity())
}

func TestSlidingWindowDefaultCapacity(t *testing.T) {
	w := NewSlidingWindow(0)
	assert.Equal(t, defaultWindowCapacity, w.Capacity())

	w = NewSlidingWindow(-3)
	assert.Equal(t, defaultWindowCapacity, w.Capacity())
}

func TestSlidingWindowValuesIsCopy(t *testing.T) {
	w := NewSlidingWindow(3)
	w.Append(7)

	values := w.Values()
	values[0] = 99

	assert.Equal(t, []int64{7}, w.Values())
}
