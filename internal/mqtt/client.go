package mqtt

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"

	"kinect_go/internal/config"
	"kinect_go/internal/models"
	"kinect_go/pkg/logger"
)

const (
	// dialTimeout é o tempo limite para abrir a conexão TCP com o broker
	dialTimeout = 10 * time.Second

	// publishTimeout é o tempo limite de cada publicação
	publishTimeout = 10 * time.Second
)

// Client encapsula a conexão e as publicações MQTT. A conexão tem tentativas
// limitadas com backoff fixo; esgotá-las é fatal para o processo (o chamador
// decide encerrar). As publicações de estado são QoS 0 não retidas; a mensagem
// de última vontade (LWT) publica "false" se o processo morrer sem despedida
type Client struct {
	cfg       config.MQTTConfig
	clientID  string
	paho      *paho.Client
	conn      net.Conn
	connected bool
	mutex     sync.Mutex
}

// NewClient cria um novo cliente MQTT com um sufixo de instância único
func NewClient(cfg config.MQTTConfig) *Client {
	return &Client{
		cfg:      cfg,
		clientID: fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8]),
	}
}

// Connect tenta estabelecer conexão com o broker, com tentativas limitadas e
// backoff fixo. Retorna erro depois de esgotar as tentativas
func (c *Client) Connect(ctx context.Context) error {
	attempts := c.cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.connectOnce(ctx); err != nil {
			lastErr = err
			logger.Warnf("Falha ao conectar ao broker MQTT (%v); nova tentativa em %v |!| tentativa (%d/%d)",
				err, c.cfg.ConnectBackoff, attempt, attempts)

			if attempt < attempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(c.cfg.ConnectBackoff):
				}
			}
			continue
		}

		logger.Infof("Conectado ao broker MQTT em %s:%d", c.cfg.Broker, c.cfg.Port)
		return nil
	}

	return fmt.Errorf("conexão com o broker MQTT esgotou %d tentativas: %w", attempts, lastErr)
}

// connectOnce realiza uma única tentativa de conexão
func (c *Client) connectOnce(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	addr := fmt.Sprintf("%s:%d", c.cfg.Broker, c.cfg.Port)
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("erro ao abrir conexão com %s: %w", addr, err)
	}

	client := paho.NewClient(paho.ClientConfig{
		Conn:     conn,
		ClientID: c.clientID,
		OnClientError: func(err error) {
			logger.Errorf("Erro no cliente MQTT: %v", err)
			c.SetConnected(false)
		},
		OnServerDisconnect: func(d *paho.Disconnect) {
			logger.Warnf("Broker MQTT desconectou o cliente (código %d)", d.ReasonCode)
			c.SetConnected(false)
		},
	})

	connack, err := client.Connect(ctx, c.buildConnectPacket())
	if err != nil {
		conn.Close()
		return fmt.Errorf("erro no handshake MQTT: %w", err)
	}
	if connack != nil && connack.ReasonCode != 0 {
		conn.Close()
		return fmt.Errorf("broker recusou conexão: código %d", connack.ReasonCode)
	}

	c.paho = client
	c.conn = conn
	c.connected = true
	return nil
}

// buildConnectPacket monta o pacote CONNECT com credenciais opcionais e LWT
func (c *Client) buildConnectPacket() *paho.Connect {
	cp := &paho.Connect{
		ClientID:   c.clientID,
		CleanStart: true,
		KeepAlive:  uint16(c.cfg.KeepAlive.Seconds()),
		WillMessage: &paho.WillMessage{
			Retain:  false,
			QoS:     0,
			Topic:   c.cfg.Topic,
			Payload: []byte("false"),
		},
	}

	if c.cfg.Username != "" {
		cp.Username = c.cfg.Username
		cp.UsernameFlag = true
	}
	if c.cfg.Password != "" {
		cp.Password = []byte(c.cfg.Password)
		cp.PasswordFlag = true
	}

	return cp
}

// Publish publica um payload em um tópico
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	c.mutex.Lock()
	client := c.paho
	connected := c.connected
	c.mutex.Unlock()

	if !connected || client == nil {
		return fmt.Errorf("cliente MQTT não conectado")
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	pub := &paho.Publish{
		QoS:     0,
		Retain:  retained,
		Topic:   topic,
		Payload: payload,
	}

	// QoS 0 não espera resposta do broker
	if _, err := client.Publish(ctx, pub); err != nil {
		return fmt.Errorf("erro ao publicar em %s: %w", topic, err)
	}

	return nil
}

// PublishMotion publica um evento de movimento no tópico de estado
func (c *Client) PublishMotion(event models.MotionEvent) error {
	if err := c.Publish(c.cfg.Topic, []byte(event.Payload()), false); err != nil {
		return err
	}

	logger.Debugf("Publicado %s em %s", event.Payload(), c.cfg.Topic)
	return nil
}

// IsConnected verifica se o cliente está conectado
func (c *Client) IsConnected() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.connected
}

// SetConnected define o estado de conexão
func (c *Client) SetConnected(connected bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.connected = connected
}

// ClientID retorna o identificador de instância usado na conexão
func (c *Client) ClientID() string {
	return c.clientID
}

// Close encerra a conexão com o broker de forma graciosa
func (c *Client) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.paho != nil && c.connected {
		c.paho.Disconnect(&paho.Disconnect{ReasonCode: 0})
	}
	if c.conn != nil {
		c.conn.Close()
	}

	c.connected = false
	logger.Info("Conexão com o broker MQTT fechada")
}
