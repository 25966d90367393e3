package kinect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinect_go/pkg/utils"
)

func TestDecodeFrameHeaderRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	header := encodeFrameHeader(640, 480, ts)
	require.Len(t, header, frameHeaderSize)

	width, height, decoded, err := decodeFrameHeader(header)
	require.NoError(t, err)
	assert.Equal(t, 640, width)
	assert.Equal(t, 480, height)
	assert.Equal(t, ts.UnixMilli(), decoded.UnixMilli())
}

func TestDecodeFrameHeaderNoFrame(t *testing.T) {
	header := make([]byte, frameHeaderSize)
	copy(header, utils.Uint16ToBytes(noFrameMagic))

	_, _, _, err := decodeFrameHeader(header)
	assert.ErrorIs(t, err, ErrNoFrame)
}

func TestDecodeFrameHeaderRejectsBadMagic(t *testing.T) {
	header := make([]byte, frameHeaderSize)
	copy(header, utils.Uint16ToBytes(0xDEAD))

	_, _, _, err := decodeFrameHeader(header)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFrame)
}

func TestDecodeFrameHeaderRejectsTruncated(t *testing.T) {
	_, _, _, err := decodeFrameHeader(make([]byte, 5))
	assert.Error(t, err)
}

func TestDecodeFrameHeaderRejectsBadDimensions(t *testing.T) {
	// Largura zero
	header := encodeFrameHeader(0, 480, time.Now())
	_, _, _, err := decodeFrameHeader(header)
	assert.Error(t, err)

	// Dimensão acima do máximo aceito
	header = encodeFrameHeader(maxFrameDimension+1, 480, time.Now())
	_, _, _, err = decodeFrameHeader(header)
	assert.Error(t, err)
}
