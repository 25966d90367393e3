package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"
)

// Config representa a configuração completa da aplicação
type Config struct {
	Server ServerConfig `json:"server"`
	Kinect KinectConfig `json:"kinect"`
	Motion MotionConfig `json:"motion"`
	Tilt   TiltConfig   `json:"tilt"`
	MQTT   MQTTConfig   `json:"mqtt"`
	Redis  RedisConfig  `json:"redis"`
}

// ServerConfig contém configurações do servidor HTTP/WebSocket
type ServerConfig struct {
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"readTimeout"`
	WriteTimeout    time.Duration `json:"writeTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout"`
}

// KinectConfig contém configurações do daemon de quadros de profundidade
type KinectConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	SampleInterval  time.Duration `json:"sampleInterval"`
	FrameRetryDelay time.Duration `json:"frameRetryDelay"`
	ReadTimeout     time.Duration `json:"readTimeout"`
}

// MotionConfig contém os parâmetros da detecção de movimento
type MotionConfig struct {
	Threshold          int64         `json:"threshold"`          // Soma de pixels que conta como movimento
	DiffThreshold      uint8         `json:"diffThreshold"`      // Limiar de intensidade por pixel na diferença
	WindowCapacity     int           `json:"windowCapacity"`     // Capacidade da janela deslizante
	EvalInterval       time.Duration `json:"evalInterval"`       // Cadência de avaliação
	DebounceInterval   time.Duration `json:"debounceInterval"`   // Intervalo mínimo entre republicações de "true"
	IdleTimeout        time.Duration `json:"idleTimeout"`        // Teto máximo de atividade sem reconfirmação
	GraceEvaluations   int           `json:"graceEvaluations"`   // Avaliações consecutivas abaixo do limiar para encerrar
	DoubleFalsePublish bool          `json:"doubleFalsePublish"` // Republicação de "false" (compensação de perda)
	RedundantDelay     time.Duration `json:"redundantDelay"`     // Atraso da segunda publicação de "false"
	Quiet              bool          `json:"quiet"`
	DisplayStats       bool          `json:"displayStats"` // Eleva as estatísticas periódicas para nível INFO
}

// TiltConfig contém os parâmetros do atuador de inclinação
type TiltConfig struct {
	Enabled        bool          `json:"enabled"`
	Policy         string        `json:"policy"` // "direct" ou "jog"
	MinAngle       float64       `json:"minAngle"`
	MaxAngle       float64       `json:"maxAngle"`
	InitialAngle   float64       `json:"initialAngle"`
	JogStep        float64       `json:"jogStep"`
	Cooldown       time.Duration `json:"cooldown"`
	UpperZoneRatio float64       `json:"upperZoneRatio"` // Fração superior do quadro que aciona jog para cima
	LowerZoneRatio float64       `json:"lowerZoneRatio"` // Fração a partir da qual aciona jog para baixo
}

// MQTTConfig contém configurações do broker MQTT
type MQTTConfig struct {
	Broker          string        `json:"broker"`
	Port            int           `json:"port"`
	Topic           string        `json:"topic"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	ClientID        string        `json:"clientId"`
	ConnectAttempts int           `json:"connectAttempts"`
	ConnectBackoff  time.Duration `json:"connectBackoff"`
	KeepAlive       time.Duration `json:"keepAlive"`
	Discovery       bool          `json:"discovery"` // Publicar autodescoberta Home Assistant
	DiscoveryPrefix string        `json:"discoveryPrefix"`
}

// RedisConfig contém configurações do espelho Redis (opcional)
type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
	Channel  string `json:"channel"`
	Enabled  bool   `json:"enabled"`
}

// Load carrega a configuração do arquivo ou usa valores padrão
func Load() (*Config, error) {
	config := getDefaultConfig()

	// Verificar se existe um arquivo de configuração
	if _, err := os.Stat("config.json"); err == nil {
		file, err := os.Open("config.json")
		if err != nil {
			return nil, err
		}
		defer file.Close()

		decoder := json.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			return nil, err
		}
	}

	// Sobrescrever com variáveis de ambiente, se existirem
	applyEnvironmentOverrides(&config)

	return &config, nil
}

// applyEnvironmentOverrides sobrescreve configurações com variáveis de ambiente
func applyEnvironmentOverrides(config *Config) {
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		config.MQTT.Broker = v
	}
	if v := os.Getenv("MQTT_USER"); v != "" {
		config.MQTT.Username = v
	}
	if v := os.Getenv("MQTT_PASS"); v != "" {
		config.MQTT.Password = v
	}
	if v := os.Getenv("MQTT_TOPIC"); v != "" {
		config.MQTT.Topic = v
	}
	if v := os.Getenv("KINECT_HOST"); v != "" {
		config.Kinect.Host = v
	}
	if v := os.Getenv("KINECT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Kinect.Port = port
		}
	}
	if v := os.Getenv("MOTION_THRESHOLD"); v != "" {
		if threshold, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Motion.Threshold = threshold
		}
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		config.Redis.Host = v
	}
}
