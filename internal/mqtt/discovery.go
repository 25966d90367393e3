package mqtt

import (
	"encoding/json"
	"fmt"

	"kinect_go/pkg/logger"
)

// DiscoveryDevice descreve o dispositivo físico no payload de autodescoberta
type DiscoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
}

// DiscoveryPayload é o payload retido de autodescoberta do Home Assistant
// para o sensor binário de movimento
type DiscoveryPayload struct {
	Name        string          `json:"name"`
	StateTopic  string          `json:"state_topic"`
	DeviceClass string          `json:"device_class"`
	PayloadOn   string          `json:"payload_on"`
	PayloadOff  string          `json:"payload_off"`
	UniqueID    string          `json:"unique_id"`
	Device      DiscoveryDevice `json:"device"`
}

// NewDiscoveryPayload monta o payload de autodescoberta para o tópico de
// estado dado
func NewDiscoveryPayload(stateTopic string) DiscoveryPayload {
	return DiscoveryPayload{
		Name:        "Kinect Motion",
		StateTopic:  stateTopic,
		DeviceClass: "motion",
		PayloadOn:   "true",
		PayloadOff:  "false",
		UniqueID:    "kinect_motion_01",
		Device: DiscoveryDevice{
			Identifiers:  []string{"kinect_hamonitor"},
			Name:         "Kinect HAMonitor",
			Manufacturer: "OpenKinect",
			Model:        "Xbox 360 Kinect",
		},
	}
}

// discoveryTopic monta o tópico de configuração de autodescoberta
func discoveryTopic(prefix string) string {
	return fmt.Sprintf("%s/binary_sensor/kinect_motion/config", prefix)
}

// PublishDiscovery publica (retido) a configuração de autodescoberta, uma vez
// na inicialização
func (c *Client) PublishDiscovery() error {
	if !c.cfg.Discovery {
		return nil
	}

	topic := discoveryTopic(c.cfg.DiscoveryPrefix)
	payload := NewDiscoveryPayload(c.cfg.Topic)

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao serializar payload de autodescoberta: %w", err)
	}

	if err := c.Publish(topic, data, true); err != nil {
		return err
	}

	logger.Infof("Autodescoberta publicada em %s", topic)
	return nil
}
