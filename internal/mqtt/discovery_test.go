package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoveryPayloadShape(t *testing.T) {
	payload := NewDiscoveryPayload("kinect/motion")

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Campos que o Home Assistant espera no payload de autodescoberta
	assert.Equal(t, "Kinect Motion", decoded["name"])
	assert.Equal(t, "kinect/motion", decoded["state_topic"])
	assert.Equal(t, "motion", decoded["device_class"])
	assert.Equal(t, "true", decoded["payload_on"])
	assert.Equal(t, "false", decoded["payload_off"])
	assert.Equal(t, "kinect_motion_01", decoded["unique_id"])

	device, ok := decoded["device"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "OpenKinect", device["manufacturer"])
	assert.Equal(t, "Xbox 360 Kinect", device["model"])

	identifiers, ok := device["identifiers"].([]interface{})
	require.True(t, ok)
	require.Len(t, identifiers, 1)
	assert.Equal(t, "kinect_hamonitor", identifiers[0])
}

func TestDiscoveryTopicUsesPrefix(t *testing.T) {
	assert.Equal(t,
		"homeassistant/binary_sensor/kinect_motion/config",
		discoveryTopic("homeassistant"))

	assert.Equal(t,
		"custom/binary_sensor/kinect_motion/config",
		discoveryTopic("custom"))
}
