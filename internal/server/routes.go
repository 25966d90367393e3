package server

import (
	"encoding/json"
	"net/http"
	"time"

	"kinect_go/internal/api"
	"kinect_go/internal/websocket"
	"kinect_go/pkg/logger"
	"kinect_go/pkg/utils"
)

// setupRoutes configura todas as rotas do servidor
func (s *Server) setupRoutes() {
	// Criar handlers
	wsHandler := websocket.NewHandler(s.wsHub)

	// Router da API REST com a cadeia de middlewares (logging, recovery, CORS)
	apiRouter := api.NewRouter(s.motionService, s.redisService, "/api")
	apiRouter.Setup()

	// Endpoint de saúde
	s.router.HandleFunc("/health", s.healthHandler)

	// Endpoint de informações do servidor
	s.router.HandleFunc("/info", s.infoHandler)

	// Endpoint de descoberta manual
	s.router.HandleFunc("/api/discover", s.discoverHandler)

	// WebSocket
	s.router.Handle("/ws", wsHandler)
	s.router.HandleFunc("/ws/health", wsHandler.GetHealthHandler())

	// API REST (/api/status, /api/state, /api/evaluations, /api/tilt)
	s.router.Handle("/api/", apiRouter)
	s.router.HandleFunc("/api/server-info", s.serverInfoHandler)

	// Middleware para logging e CORS
	s.wrapWithMiddleware()
}

// healthHandler responde com o status de saúde do servidor
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Verificar status dos serviços
	monitorStatus := "ok"
	if s.motionService != nil && !s.motionService.IsRunning() {
		monitorStatus = "offline"
	}

	mqttStatus := "ok"
	if s.mqttClient != nil && !s.mqttClient.IsConnected() {
		mqttStatus = "offline"
	}

	redisStatus := "disabled"
	if s.config.Redis.Enabled {
		if s.redisService != nil && s.redisService.IsConnected() {
			redisStatus = "ok"
		} else {
			redisStatus = "offline"
		}
	}

	discoveryStatus := "ok"
	if s.discoveryService != nil && !s.discoveryService.IsRunning() {
		discoveryStatus = "offline"
	}

	// Construir resposta
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"services": map[string]string{
			"monitor":   monitorStatus,
			"mqtt":      mqttStatus,
			"redis":     redisStatus,
			"websocket": "ok",
			"discovery": discoveryStatus,
		},
	}

	// Se algum serviço crítico estiver offline, alterar status geral
	if monitorStatus == "offline" || mqttStatus == "offline" {
		response["status"] = "degraded"
	}

	// Enviar resposta
	json.NewEncoder(w).Encode(response)
}

// infoHandler retorna informações básicas sobre o servidor
func (s *Server) infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Obter informações do servidor
	info := s.GetServerInfo()

	// Calcular tempo online
	uptime := time.Since(info.StartTime).Round(time.Second)

	// Construir resposta
	response := map[string]interface{}{
		"name":        "Kinect Motion Monitor",
		"version":     info.Version,
		"ip":          info.IP,
		"port":        info.Port,
		"websocket":   info.WebSocketURL,
		"api":         info.APIURL,
		"startTime":   info.StartTime,
		"uptime":      utils.FormatDuration(uptime),
		"connections": info.Connections,
	}

	// Enviar resposta
	json.NewEncoder(w).Encode(response)
}

// serverInfoHandler retorna informações completas sobre o servidor
func (s *Server) serverInfoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Obter informações do servidor
	info := s.GetServerInfo()

	// Adicionar informações do serviço de descoberta
	discoveryInfo := map[string]interface{}{
		"enabled":      s.discoveryService != nil,
		"running":      s.discoveryService != nil && s.discoveryService.IsRunning(),
		"instanceName": s.discoveryService.GetInstanceName(),
		"serviceType":  "kinect-motion-monitor",
	}

	// Calcular tempo online
	uptime := time.Since(info.StartTime).Round(time.Second)

	// Construir resposta
	response := map[string]interface{}{
		"server": map[string]interface{}{
			"name":        "Kinect Motion Monitor",
			"version":     info.Version,
			"ip":          info.IP,
			"port":        info.Port,
			"websocket":   info.WebSocketURL,
			"api":         info.APIURL,
			"startTime":   info.StartTime,
			"uptime":      utils.FormatDuration(uptime),
			"connections": info.Connections,
		},
		"discovery": discoveryInfo,
		"services": map[string]interface{}{
			"monitor": map[string]interface{}{
				"running": s.motionService != nil && s.motionService.IsRunning(),
				"state":   s.motionService.State().String(),
				"daemon":  s.config.Kinect.Host,
				"port":    s.config.Kinect.Port,
			},
			"mqtt": map[string]interface{}{
				"connected": s.mqttClient != nil && s.mqttClient.IsConnected(),
				"broker":    s.config.MQTT.Broker,
				"port":      s.config.MQTT.Port,
				"topic":     s.config.MQTT.Topic,
			},
			"redis": map[string]interface{}{
				"enabled":   s.config.Redis.Enabled,
				"connected": s.redisService != nil && s.redisService.IsConnected(),
				"host":      s.config.Redis.Host,
				"port":      s.config.Redis.Port,
			},
		},
	}

	// Enviar resposta
	json.NewEncoder(w).Encode(response)
}

// discoverHandler fornece informações para descoberta manual
func (s *Server) discoverHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Obter informações do servidor
	info := s.GetServerInfo()

	// Construir resposta
	response := map[string]interface{}{
		"name":        "Kinect Motion Monitor",
		"ip":          info.IP,
		"port":        info.Port,
		"wsUrl":       info.WebSocketURL,
		"apiUrl":      info.APIURL,
		"version":     info.Version,
		"wsEndpoint":  "/ws",
		"apiEndpoint": "/api",
	}

	// Enviar resposta
	json.NewEncoder(w).Encode(response)
}

// wrapWithMiddleware adiciona middleware às rotas
func (s *Server) wrapWithMiddleware() {
	originalHandler := s.router

	s.router = http.NewServeMux()

	// Adicionar middleware a todas as rotas
	s.router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Adicionar cabeçalhos CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Se for uma requisição OPTIONS, retornar imediatamente
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		// Logging da requisição
		logger.Debugf("%s %s %s", r.Method, r.URL.Path, r.RemoteAddr)

		// Processar requisição pelo handler original
		originalHandler.ServeHTTP(w, r)

		// Logging do tempo de resposta
		duration := time.Since(start)
		logger.Debugf("Requisição %s %s completada em %v", r.Method, r.URL.Path, duration)
	})
}
