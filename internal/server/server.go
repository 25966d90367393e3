package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"kinect_go/internal/config"
	"kinect_go/internal/discovery"
	"kinect_go/internal/kinect"
	"kinect_go/internal/motion"
	"kinect_go/internal/mqtt"
	"kinect_go/internal/redis"
	"kinect_go/internal/websocket"
	"kinect_go/pkg/logger"
)

// Server encapsula o servidor HTTP com todos os componentes do monitor
type Server struct {
	config           *config.Config
	httpServer       *http.Server
	router           *http.ServeMux
	motionService    *motion.Service
	redisService     *redis.Service
	mqttClient       *mqtt.Client
	kinectClient     *kinect.Client
	wsHub            *websocket.Hub
	discoveryService *discovery.DiscoveryService
	serverInfo       ServerInfo
}

// ServerInfo contém informações sobre o servidor
type ServerInfo struct {
	IP           string
	Port         int
	StartTime    time.Time
	Connections  int
	Version      string
	WebSocketURL string
	APIURL       string
}

// NewServer cria uma nova instância do servidor. O cliente MQTT já chega
// conectado: a resolução do broker e o esgotamento de tentativas acontecem
// antes, no processo principal
func NewServer(cfg *config.Config, mqttClient *mqtt.Client) (*Server, error) {
	// Criar instância do servidor
	server := &Server{
		config:     cfg,
		mqttClient: mqttClient,
		router:     http.NewServeMux(),
		serverInfo: ServerInfo{
			StartTime: time.Now(),
			Version:   "1.0.0",
			Port:      cfg.Server.Port,
		},
	}

	// Determinar IP do servidor
	ip, err := server.getLocalIP()
	if err != nil {
		return nil, fmt.Errorf("erro ao obter IP local: %w", err)
	}
	server.serverInfo.IP = ip

	// Configurar URLs
	server.serverInfo.WebSocketURL = fmt.Sprintf("ws://%s:%d/ws", ip, cfg.Server.Port)
	server.serverInfo.APIURL = fmt.Sprintf("http://%s:%d/api", ip, cfg.Server.Port)

	// Inicializar componentes
	if err := server.initComponents(); err != nil {
		return nil, err
	}

	// Configurar rotas
	server.setupRoutes()

	// Configurar servidor HTTP
	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return server, nil
}

// initComponents inicializa todos os componentes do servidor
func (s *Server) initComponents() error {
	// Inicializar hub WebSocket
	s.wsHub = websocket.NewHub()
	go s.wsHub.Run()

	// Inicializar serviço Redis
	redisService, err := redis.NewService(s.config.Redis)
	if err != nil {
		return fmt.Errorf("erro ao inicializar serviço Redis: %w", err)
	}
	s.redisService = redisService

	// Inicializar cliente do daemon de quadros
	s.kinectClient = kinect.NewClient(s.config.Kinect)

	// Inicializar serviço de movimento
	motionService, err := motion.NewService(
		s.config.Kinect,
		s.config.Motion,
		s.config.Tilt,
		s.kinectClient,
		s.mqttClient,
		s.redisService,
		s.wsHub,
	)
	if err != nil {
		return fmt.Errorf("erro ao inicializar serviço de movimento: %w", err)
	}
	s.motionService = motionService

	// Inicializar serviço de descoberta
	s.discoveryService = discovery.NewDiscoveryService(s.config.Server.Port)

	return nil
}

// Start inicia o servidor e todos os serviços
func (s *Server) Start() error {
	// Iniciar serviço de descoberta
	if err := s.discoveryService.Start(); err != nil {
		logger.Warnf("Erro ao iniciar serviço de descoberta: %v", err)
		// Não abortar operação se falhar
	}

	// Conectar ao daemon de quadros
	if err := s.kinectClient.Connect(); err != nil {
		logger.Warnf("Erro na conexão inicial com o daemon de quadros: %v. Tentando novamente no laço de amostragem.", err)
	}

	// Iniciar serviço de movimento
	if err := s.motionService.Start(); err != nil {
		return fmt.Errorf("erro ao iniciar serviço de movimento: %w", err)
	}

	// Mostrar informações do servidor
	s.logServerInfo()

	// Iniciar servidor HTTP
	logger.Infof("Iniciando servidor HTTP na porta %d", s.config.Server.Port)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("erro ao iniciar servidor HTTP: %w", err)
	}

	return nil
}

// Shutdown encerra graciosamente o servidor e todos os serviços
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Iniciando shutdown do servidor")

	// Encerrar o servidor HTTP
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("Erro ao encerrar servidor HTTP: %v", err)
	}

	// Encerrar serviço de descoberta
	if s.discoveryService != nil {
		s.discoveryService.Stop()
	}

	// Encerrar o monitor: publica o estado final antes de fechar o sensor
	if s.motionService != nil {
		s.motionService.Stop()
	}

	if s.wsHub != nil {
		s.wsHub.Shutdown()
	}

	if s.redisService != nil {
		s.redisService.Shutdown()
	}

	if s.mqttClient != nil {
		s.mqttClient.Close()
	}

	logger.Info("Shutdown completo")
	return nil
}

// MotionService retorna o serviço de movimento do servidor
func (s *Server) MotionService() *motion.Service {
	return s.motionService
}

// getLocalIP obtém o endereço IP local
func (s *Server) getLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}

	for _, addr := range addrs {
		// Verificar se é um endereço IP
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}

	return "localhost", nil
}

// GetServerInfo retorna informações sobre o servidor
func (s *Server) GetServerInfo() ServerInfo {
	info := s.serverInfo
	info.Connections = s.wsHub.ClientCount()
	return info
}

// logServerInfo exibe informações do servidor no log
func (s *Server) logServerInfo() {
	logger.Info("===============================================")
	logger.Info("           Kinect Motion Monitor               ")
	logger.Info("===============================================")
	logger.Infof("Versão: %s", s.serverInfo.Version)
	logger.Infof("Endereço IP: %s", s.serverInfo.IP)
	logger.Infof("Porta HTTP: %d", s.serverInfo.Port)
	logger.Infof("WebSocket URL: %s", s.serverInfo.WebSocketURL)
	logger.Infof("API URL: %s", s.serverInfo.APIURL)
	logger.Infof("Broker MQTT: %s:%d (tópico %s)",
		s.config.MQTT.Broker, s.config.MQTT.Port, s.config.MQTT.Topic)
	logger.Infof("mDNS: %s.%s.%s",
		s.discoveryService.GetInstanceName(),
		discovery.ServiceType,
		discovery.ServiceDomain)
	logger.Info("===============================================")
	logger.Info("Monitor pronto!")
}
