package kinect

import (
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"kinect_go/internal/config"
	"kinect_go/internal/models"
	"kinect_go/pkg/logger"
	"kinect_go/pkg/utils"
)

// Client gerencia a comunicação com o daemon de quadros do Kinect.
// O daemon expõe o sensor físico (libfreenect) via TCP: comandos ASCII
// delimitados por STX/ETX e quadros de profundidade em formato binário
type Client struct {
	conn        net.Conn
	host        string
	port        int
	readTimeout time.Duration
	connected   bool
	mutex       sync.Mutex
}

// NewClient cria uma nova instância do cliente do Kinect
func NewClient(cfg config.KinectConfig) *Client {
	return &Client{
		host:        cfg.Host,
		port:        cfg.Port,
		readTimeout: cfg.ReadTimeout,
	}
}

// Connect estabelece conexão com o daemon
func (c *Client) Connect() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.connectLocked()
}

// connectLocked estabelece a conexão; requer mutex
func (c *Client) connectLocked() error {
	if c.connected {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	logger.Infof("Tentando conectar ao daemon do Kinect em %s...", addr)

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("erro ao conectar ao daemon do Kinect: %w", err)
	}

	c.conn = conn
	c.connected = true
	logger.Infof("Conectado ao daemon do Kinect em %s", addr)
	return nil
}

// NextFrame solicita o quadro de profundidade mais recente. Retorna
// ErrNoFrame quando o daemon não tem quadro disponível
func (c *Client) NextFrame() (*models.DepthFrame, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.connected {
		if err := c.connectLocked(); err != nil {
			return nil, err
		}
	}

	if err := c.writeCommandLocked("DEPTH"); err != nil {
		return nil, err
	}

	c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))

	// Cabeçalho binário: magic(2) largura(2) altura(2) timestamp_ms(8)
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(c.conn, header); err != nil {
		c.connected = false
		return nil, fmt.Errorf("erro ao ler cabeçalho do quadro: %w", err)
	}

	width, height, timestamp, err := decodeFrameHeader(header)
	if err != nil {
		if err == ErrNoFrame {
			return nil, ErrNoFrame
		}
		c.connected = false
		return nil, err
	}

	samples := make([]uint8, width*height)
	if _, err := io.ReadFull(c.conn, samples); err != nil {
		c.connected = false
		return nil, fmt.Errorf("erro ao ler amostras do quadro: %w", err)
	}

	return &models.DepthFrame{
		Width:     width,
		Height:    height,
		Timestamp: timestamp,
		Samples:   samples,
	}, nil
}

// SetTilt envia um comando de inclinação absoluta ao motor do sensor
func (c *Client) SetTilt(degrees float64) error {
	return c.sendControl(fmt.Sprintf("TILT %s", utils.FormatFloat(degrees, 1)))
}

// SetLED define o valor do indicador luminoso do sensor
func (c *Client) SetLED(value models.LEDValue) error {
	return c.sendControl(fmt.Sprintf("LED %d", value))
}

// sendControl envia um comando de controle e valida a resposta OK/ERR
func (c *Client) sendControl(cmd string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.connected {
		if err := c.connectLocked(); err != nil {
			return err
		}
	}

	if err := c.writeCommandLocked(cmd); err != nil {
		return err
	}

	reply, err := c.readReplyLocked()
	if err != nil {
		return err
	}

	if !strings.HasPrefix(reply, "OK") {
		return fmt.Errorf("daemon recusou comando %q: %s", cmd, reply)
	}

	return nil
}

// writeCommandLocked envia um comando delimitado por STX/ETX; requer mutex
func (c *Client) writeCommandLocked(cmd string) error {
	command := fmt.Sprintf("\x02%s\x03", cmd)
	if _, err := c.conn.Write([]byte(command)); err != nil {
		c.connected = false
		return fmt.Errorf("erro ao enviar comando: %w", err)
	}
	return nil
}

// readReplyLocked lê uma resposta ASCII delimitada por STX/ETX; requer mutex
func (c *Client) readReplyLocked() (string, error) {
	buffer := make([]byte, 256)
	c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	n, err := c.conn.Read(buffer)
	if err != nil {
		c.connected = false
		return "", fmt.Errorf("erro ao ler resposta: %w", err)
	}

	reply := strings.Trim(string(buffer[:n]), "\x02\x03")
	return reply, nil
}

// SetConnected define o estado de conexão
func (c *Client) SetConnected(connected bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.connected = connected
}

// IsConnected verifica se o cliente está conectado
func (c *Client) IsConnected() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.connected
}

// Close fecha a conexão com o daemon
func (c *Client) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.connected = false
		logger.Info("Conexão com o daemon do Kinect fechada")
	}
}
