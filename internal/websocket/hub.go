package websocket

import (
	"context"
	"sync"
	"time"

	"kinect_go/internal/models"
	"kinect_go/pkg/logger"
)

// Hub gerencia todas as conexões WebSocket e distribuição de mensagens de
// telemetria do monitor (avaliações, eventos de movimento, inclinação, status)
type Hub struct {
	// Clientes registrados
	clients map[*Client]bool

	// Canal para registrar clientes
	register chan *Client

	// Canal para desregistrar clientes
	unregister chan *Client

	// Canal para mensagens de broadcast
	broadcast chan []byte

	// Comando recebido dos clientes
	commands chan models.ClientCommand

	// Mutex para operações concorrentes no mapa de clientes
	mu sync.RWMutex

	// Últimos dados enviados, para dados iniciais de novos clientes
	lastEvaluation *models.EvaluationResult
	lastStatus     *models.MonitorStatus
	snapshotLock   sync.RWMutex

	// Estatísticas
	stats struct {
		totalMessages      int64
		totalClients       int64
		messagesPerSecond  float64
		lastStatsReset     time.Time
		messagesSinceReset int64
	}
	statsLock sync.Mutex

	// Sinal para encerramento do hub
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub cria uma nova instância do Hub
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256), // Buffer para evitar bloqueios do loop de controle
		commands:   make(chan models.ClientCommand, 100),
		ctx:        ctx,
		cancel:     cancel,
	}

	h.stats.lastStatsReset = time.Now()

	return h
}

// Run inicia o loop principal do hub para gerenciar clientes e mensagens
func (h *Hub) Run() {
	logger.Info("Iniciando WebSocket Hub")

	// Ticker para estatísticas periódicas
	statsTicker := time.NewTicker(30 * time.Second)
	defer statsTicker.Stop()

	// Ticker para manter conexões ativas
	keepAliveTicker := time.NewTicker(5 * time.Second)
	defer keepAliveTicker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			// Contexto cancelado, encerrar o hub
			logger.Info("Encerrando WebSocket Hub")
			h.closeAllClients()
			return

		case client := <-h.register:
			// Registrar novo cliente
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()

			logger.Infof("Novo cliente WebSocket conectado. ID: %s. Total: %d", client.id, clientCount)

			// Atualizar estatísticas
			h.statsLock.Lock()
			h.stats.totalClients++
			h.statsLock.Unlock()

			// Enviar dados iniciais para o cliente
			go h.sendInitialDataToClient(client)

		case client := <-h.unregister:
			// Desregistrar cliente
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				logger.Infof("Cliente WebSocket desconectado. ID: %s. Total: %d", client.id, len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			// Enviar mensagem para todos os clientes
			h.mu.RLock()
			clientCount := len(h.clients)

			// Atualizar estatísticas
			h.statsLock.Lock()
			h.stats.totalMessages++
			h.stats.messagesSinceReset++
			h.statsLock.Unlock()

			if clientCount == 0 {
				h.mu.RUnlock()
				continue // Nenhum cliente conectado, pular broadcast
			}

			deadClients := make([]*Client, 0, 4)

			for client := range h.clients {
				select {
				case client.send <- message:
					// Mensagem enviada com sucesso
				default:
					// Canal do cliente está cheio, marcar para desconexão
					deadClients = append(deadClients, client)
				}
			}
			h.mu.RUnlock()

			// Remover clientes mortos diretamente; reenviar em h.unregister
			// bloquearia o próprio loop de controle
			for _, client := range deadClients {
				h.mu.Lock()
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					close(client.send)
					logger.Infof("Cliente WebSocket removido por fila cheia. ID: %s. Total: %d", client.id, len(h.clients))
				}
				h.mu.Unlock()
			}

		case cmd := <-h.commands:
			// Processar comando de um cliente
			go h.handleClientCommand(cmd)

		case <-statsTicker.C:
			h.logStats()

		case <-keepAliveTicker.C:
			// Enviar ping para todos os clientes para manter conexões ativas
			h.sendPingToAllClients()
		}
	}
}

// BroadcastEvaluation envia o resultado de um ciclo de avaliação
func (h *Hub) BroadcastEvaluation(result models.EvaluationResult) {
	h.snapshotLock.Lock()
	resultCopy := result
	h.lastEvaluation = &resultCopy
	h.snapshotLock.Unlock()

	message := models.EvaluationMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "evaluation",
			Timestamp: time.Now(),
		},
		Average:    result.Average,
		Samples:    result.Samples,
		Threshold:  result.Threshold,
		State:      result.State.String(),
		BelowCount: result.BelowCount,
	}

	if jsonMessage, err := SerializeMessage(message); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem de avaliação", err)
	}
}

// BroadcastMotionEvent envia um evento de movimento para todos os clientes
func (h *Hub) BroadcastMotionEvent(event models.MotionEvent) {
	message := models.MotionEventMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "motion",
			Timestamp: time.Now(),
		},
		Motion:  event.Motion,
		Average: event.Average,
	}

	if jsonMessage, err := SerializeMessage(message); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem de movimento", err)
	}
}

// BroadcastTilt envia o ângulo atual do atuador para todos os clientes
func (h *Hub) BroadcastTilt(angle float64, centroidY int) {
	message := models.TiltMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "tilt",
			Timestamp: time.Now(),
		},
		Angle:     angle,
		CentroidY: centroidY,
	}

	if jsonMessage, err := SerializeMessage(message); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem de inclinação", err)
	}
}

// BroadcastStatus envia atualização de status para todos os clientes
func (h *Hub) BroadcastStatus(status models.MonitorStatus) {
	h.snapshotLock.Lock()
	statusCopy := status
	h.lastStatus = &statusCopy
	h.snapshotLock.Unlock()

	message := models.StatusMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "status",
			Timestamp: time.Now(),
		},
		Status:     status.Status,
		State:      status.State.String(),
		LastError:  status.LastError,
		ErrorCount: status.ErrorCount,
	}

	if jsonMessage, err := SerializeMessage(message); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem de status", err)
	}
}

// handleClientCommand processa comandos recebidos dos clientes
func (h *Hub) handleClientCommand(cmd models.ClientCommand) {
	logger.Debugf("Comando recebido do cliente %s: %s", cmd.ClientID, cmd.Command)

	switch cmd.Command {
	case "get_status":
		h.sendCurrentStatus(cmd.ClientID)
	case "ping":
		h.sendPong(cmd.ClientID, cmd.Params)
	default:
		logger.Warnf("Comando desconhecido: %s", cmd.Command)
	}
}

// sendCurrentStatus envia o status atual para um cliente específico
func (h *Hub) sendCurrentStatus(clientID string) {
	client := h.getClientByID(clientID)
	if client == nil {
		return
	}

	h.snapshotLock.RLock()
	status := h.lastStatus
	h.snapshotLock.RUnlock()

	if status == nil {
		return
	}

	message := models.StatusMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "status",
			Timestamp: time.Now(),
		},
		Status:     status.Status,
		State:      status.State.String(),
		LastError:  status.LastError,
		ErrorCount: status.ErrorCount,
	}

	if jsonMsg, err := SerializeMessage(message); err == nil {
		client.send <- jsonMsg
	}
}

// sendPong envia resposta de pong para um cliente específico
func (h *Hub) sendPong(clientID string, params interface{}) {
	client := h.getClientByID(clientID)
	if client == nil {
		return
	}

	// Extrair timestamp do ping
	var pingTime int64
	if paramsMap, ok := params.(map[string]interface{}); ok {
		if timeVal, ok := paramsMap["time"].(float64); ok {
			pingTime = int64(timeVal)
		}
	}

	pong := models.PongMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "pong",
			Timestamp: time.Now(),
		},
		Time:       pingTime,
		ServerTime: time.Now().UnixNano() / int64(time.Millisecond),
	}

	if jsonMsg, err := SerializeMessage(pong); err == nil {
		client.send <- jsonMsg
	}
}

// sendInitialDataToClient envia dados iniciais para um novo cliente
func (h *Hub) sendInitialDataToClient(client *Client) {
	welcome := models.WebSocketMessage{
		Type:      "welcome",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message":  "Conectado ao Kinect Motion Monitor",
			"clientId": client.id,
		},
	}

	if jsonMsg, err := SerializeMessage(welcome); err == nil {
		client.send <- jsonMsg
	}

	// Status e última avaliação, se já houver
	h.snapshotLock.RLock()
	status := h.lastStatus
	evaluation := h.lastEvaluation
	h.snapshotLock.RUnlock()

	if status != nil {
		h.sendCurrentStatus(client.id)
	}

	if evaluation != nil {
		message := models.EvaluationMessage{
			WebSocketMessage: models.WebSocketMessage{
				Type:      "evaluation",
				Timestamp: time.Now(),
			},
			Average:    evaluation.Average,
			Samples:    evaluation.Samples,
			Threshold:  evaluation.Threshold,
			State:      evaluation.State.String(),
			BelowCount: evaluation.BelowCount,
		}
		if jsonMsg, err := SerializeMessage(message); err == nil {
			client.send <- jsonMsg
		}
	}
}

// logStats calcula e registra a taxa de mensagens por segundo
func (h *Hub) logStats() {
	h.statsLock.Lock()
	elapsed := time.Since(h.stats.lastStatsReset).Seconds()
	if elapsed > 0 {
		h.stats.messagesPerSecond = float64(h.stats.messagesSinceReset) / elapsed
	}

	h.stats.messagesSinceReset = 0
	h.stats.lastStatsReset = time.Now()

	mps := h.stats.messagesPerSecond
	total := h.stats.totalMessages
	h.statsLock.Unlock()

	h.mu.RLock()
	clientCount := len(h.clients)
	h.mu.RUnlock()

	logger.Debugf("Estatísticas WebSocket: %d clientes, %.2f msgs/seg, total: %d mensagens",
		clientCount, mps, total)
}

// Shutdown encerra graciosamente o hub
func (h *Hub) Shutdown() {
	h.cancel()
	// Aguardar um pequeno tempo para processamento finalizar
	time.Sleep(100 * time.Millisecond)
}

// closeAllClients fecha todas as conexões dos clientes
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("Fechando todas as conexões de clientes WebSocket")
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// ClientCount retorna o número atual de clientes conectados
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// getClientByID retorna um cliente pelo seu ID
func (h *Hub) getClientByID(clientID string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.id == clientID {
			return client
		}
	}
	return nil
}

// sendPingToAllClients envia ping para todos os clientes
func (h *Hub) sendPingToAllClients() {
	ping := models.PingMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "ping",
			Timestamp: time.Now(),
		},
		Time: time.Now().UnixNano() / int64(time.Millisecond),
	}

	jsonMsg, err := SerializeMessage(ping)
	if err != nil {
		return
	}

	// Envio direto e não bloqueante; clientes com fila cheia serão
	// removidos pelo próprio ciclo de broadcast
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- jsonMsg:
		default:
		}
	}
}
