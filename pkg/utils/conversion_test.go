package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapRangeLinear(t *testing.T) {
	assert.Equal(t, 50.0, MapRange(5, 0, 10, 0, 100))
	assert.Equal(t, 25.0, MapRange(2.5, 0, 10, 0, 100))
	assert.Equal(t, 0.0, MapRange(0, 0, 10, 0, 100))
	assert.Equal(t, 100.0, MapRange(10, 0, 10, 0, 100))
}

func TestMapRangeInvertedOutput(t *testing.T) {
	// Linha 0 do quadro -> ângulo máximo; última linha -> mínimo
	assert.Equal(t, 30.0, MapRange(0, 0, 480, 30, -30))
	assert.Equal(t, -30.0, MapRange(480, 0, 480, 30, -30))
	assert.Equal(t, 0.0, MapRange(240, 0, 480, 30, -30))
}

func TestMapRangeSaturatesAtEdges(t *testing.T) {
	assert.Equal(t, 0.0, MapRange(-5, 0, 10, 0, 100))
	assert.Equal(t, 100.0, MapRange(15, 0, 10, 0, 100))
	assert.Equal(t, 30.0, MapRange(-100, 0, 480, 30, -30))
	assert.Equal(t, -30.0, MapRange(900, 0, 480, 30, -30))
}

func TestMapRangeDegenerateInput(t *testing.T) {
	assert.Equal(t, 7.0, MapRange(3, 5, 5, 7, 9))
}

func TestClampFloat(t *testing.T) {
	assert.Equal(t, -30.0, ClampFloat(-45, -30, 30))
	assert.Equal(t, 30.0, ClampFloat(99, -30, 30))
	assert.Equal(t, 12.5, ClampFloat(12.5, -30, 30))
}

func TestUint16RoundTrip(t *testing.T) {
	b := Uint16ToBytes(0x4B44)
	assert.Equal(t, []byte{0x4B, 0x44}, b)
	assert.Equal(t, uint16(0x4B44), BytesToUint16(b))
}

func TestUint64RoundTrip(t *testing.T) {
	val := uint64(1_717_171_717_000)
	assert.Equal(t, val, BytesToUint64(Uint64ToBytes(val)))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "-15", FormatFloat(-15.0, 1))
	assert.Equal(t, "12.5", FormatFloat(12.5, 1))
	assert.Equal(t, "0", FormatFloat(0.0, 2))
}
