package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinect_go/internal/models"
)

// TestNewErrorMessage verifica a construção de mensagens de erro
func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage("algo deu errado", "internal_error")

	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "algo deu errado", msg.Error)
	assert.False(t, msg.Timestamp.IsZero())

	data, ok := msg.Data.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "internal_error", data["code"])
}

// TestSerializeMessage verifica a serialização de mensagens para JSON
func TestSerializeMessage(t *testing.T) {
	msg := models.MotionEventMessage{
		WebSocketMessage: models.WebSocketMessage{Type: "motion"},
		Motion:           true,
		Average:          1234567,
	}

	raw, err := SerializeMessage(msg)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "motion", decoded["type"])
	assert.Equal(t, true, decoded["motion"])
	assert.Equal(t, float64(1234567), decoded["average"])
}

// TestParseClientCommand verifica a análise de comandos dos clientes
func TestParseClientCommand(t *testing.T) {
	cmd, err := ParseClientCommand([]byte(`{"type":"ping","params":{"time":42}}`))
	require.NoError(t, err)
	assert.Equal(t, "ping", cmd.Type)

	params, ok := cmd.Params.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(42), params["time"])

	_, err = ParseClientCommand([]byte(`{nope}`))
	assert.Error(t, err)
}
