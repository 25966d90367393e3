package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinect_go/internal/models"
)

func makeFrame(width, height int, fill uint8) *models.DepthFrame {
	samples := make([]uint8, width*height)
	for i := range samples {
		samples[i] = fill
	}
	return &models.DepthFrame{Width: width, Height: height, Samples: samples}
}

func TestDifferFirstFrameProducesNothing(t *testing.T) {
	d := NewDiffer(testMotionConfig())

	_, _, ok := d.Observe(makeFrame(4, 4, 100))
	assert.False(t, ok, "primeiro quadro não tem par para comparar")
	assert.Equal(t, 0, d.Window().Len())
}

func TestDifferIdenticalFramesYieldZeroMetric(t *testing.T) {
	d := NewDiffer(testMotionConfig())

	d.Observe(makeFrame(4, 4, 100))
	metric, mask, ok := d.Observe(makeFrame(4, 4, 100))

	require.True(t, ok)
	assert.Equal(t, int64(0), metric)
	assert.Equal(t, int64(0), mask.Mass)
	assert.Equal(t, 1, d.Window().Len())
}

func TestDifferCountsChangedPixels(t *testing.T) {
	d := NewDiffer(testMotionConfig())

	d.Observe(makeFrame(4, 4, 100))

	// Dois pixels mudam acima do limiar de intensidade (15), um abaixo
	next := makeFrame(4, 4, 100)
	next.Samples[0] = 200 // linha 0
	next.Samples[13] = 10 // linha 3
	next.Samples[5] = 110 // diferença 10: abaixo do limiar, ignorado

	metric, mask, ok := d.Observe(next)
	require.True(t, ok)

	// Cada pixel marcado contribui com 255 para a métrica
	assert.Equal(t, int64(2*255), metric)
	assert.Equal(t, int64(255), mask.RowMass[0])
	assert.Equal(t, int64(0), mask.RowMass[1])
	assert.Equal(t, int64(255), mask.RowMass[3])
}

func TestDifferSymmetricDifference(t *testing.T) {
	d := NewDiffer(testMotionConfig())

	// A diferença é absoluta: escurecer conta igual a clarear
	d.Observe(makeFrame(2, 2, 200))
	metric, _, ok := d.Observe(makeFrame(2, 2, 50))

	require.True(t, ok)
	assert.Equal(t, int64(4*255), metric)
}

func TestDifferDimensionMismatchSkipsPair(t *testing.T) {
	d := NewDiffer(testMotionConfig())

	d.Observe(makeFrame(4, 4, 100))
	_, _, ok := d.Observe(makeFrame(8, 8, 100))
	assert.False(t, ok, "mudança de modo invalida o par")

	// O quadro novo vira a nova referência
	metric, _, ok := d.Observe(makeFrame(8, 8, 100))
	require.True(t, ok)
	assert.Equal(t, int64(0), metric)
}

func TestDifferRejectsInvalidFrames(t *testing.T) {
	d := NewDiffer(testMotionConfig())

	_, _, ok := d.Observe(nil)
	assert.False(t, ok)

	// Amostras inconsistentes com as dimensões
	bad := &models.DepthFrame{Width: 4, Height: 4, Samples: make([]uint8, 3)}
	_, _, ok = d.Observe(bad)
	assert.False(t, ok)
}

func TestDifferResetDiscardsReference(t *testing.T) {
	d := NewDiffer(testMotionConfig())

	d.Observe(makeFrame(4, 4, 100))
	d.Reset()

	_, _, ok := d.Observe(makeFrame(4, 4, 0))
	assert.False(t, ok, "após reset a primeira observação não tem par")
}

func TestDifferFeedsWindow(t *testing.T) {
	d := NewDiffer(testMotionConfig())

	d.Observe(makeFrame(2, 2, 0))
	d.Observe(makeFrame(2, 2, 100)) // 4 pixels mudam
	d.Observe(makeFrame(2, 2, 100)) // nada muda

	assert.Equal(t, []int64{4 * 255, 0}, d.Window().Values())
}
