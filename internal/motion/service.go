package motion

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"kinect_go/internal/config"
	"kinect_go/internal/indicator"
	"kinect_go/internal/kinect"
	"kinect_go/internal/models"
	"kinect_go/internal/mqtt"
	"kinect_go/internal/redis"
	"kinect_go/internal/tilt"
	"kinect_go/internal/websocket"
	"kinect_go/pkg/logger"
)

const (
	// maxConsecutiveErrors é o número de falhas de comunicação consecutivas
	// que rebaixa o status do monitor para falha
	maxConsecutiveErrors = 5

	// maxRecentEvaluations é o tamanho do anel de avaliações recentes
	// exposto pela API
	maxRecentEvaluations = 50
)

// EventHandler é um tipo de função para receber eventos de movimento
type EventHandler func(event models.MotionEvent)

// Service é o laço de controle do monitor: adquire quadros do sensor na
// cadência de amostragem, alimenta o motor de diferenciação, avalia a janela
// na cadência de avaliação e despacha os eventos resultantes para o broker
// MQTT, o espelho Redis, o hub WebSocket e os controladores de inclinação e
// indicador
type Service struct {
	device       kinect.Device
	kinectCfg    config.KinectConfig
	motionCfg    config.MotionConfig
	differ       *Differ
	machine      *StateMachine
	tiltCtl      *tilt.Controller
	indicatorCtl *indicator.Controller
	publisher    *mqtt.Client
	redisService *redis.Service
	wsHub        *websocket.Hub

	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	mutex   sync.RWMutex

	status            models.MonitorStatus
	lastEvaluation    *models.EvaluationResult
	recentEvaluations []models.EvaluationResult
	lastEvalTime      time.Time
	consecutiveErrors int
	lastErrorMsg      string

	eventHandlers []EventHandler
	handlersLock  sync.RWMutex

	// Estatísticas de desempenho
	stats struct {
		totalFrames      int64
		totalEvaluations int64
		totalEvents      int64
		cycleDurations   []time.Duration
		cycleStartTime   time.Time
		avgCycleDuration time.Duration
	}
	statsLock sync.Mutex
}

// NewService cria o serviço de monitoramento de movimento
func NewService(
	kinectCfg config.KinectConfig,
	motionCfg config.MotionConfig,
	tiltCfg config.TiltConfig,
	device kinect.Device,
	publisher *mqtt.Client,
	redisService *redis.Service,
	wsHub *websocket.Hub,
) (*Service, error) {
	// Criar contexto cancelável
	ctx, cancel := context.WithCancel(context.Background())

	service := &Service{
		device:            device,
		kinectCfg:         kinectCfg,
		motionCfg:         motionCfg,
		differ:            NewDiffer(motionCfg),
		machine:           NewStateMachine(motionCfg),
		tiltCtl:           tilt.NewController(tiltCfg, device),
		indicatorCtl:      indicator.NewController(device),
		publisher:         publisher,
		redisService:      redisService,
		wsHub:             wsHub,
		ctx:               ctx,
		cancel:            cancel,
		recentEvaluations: make([]models.EvaluationResult, 0, maxRecentEvaluations),
		status: models.MonitorStatus{
			Status:    "initializing",
			State:     models.StateIdle,
			Timestamp: time.Now(),
		},
	}

	service.stats.cycleDurations = make([]time.Duration, 0, 100)

	return service, nil
}

// Start inicia o laço de controle do monitor
func (s *Service) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return nil
	}

	logger.Infof("Iniciando monitor de movimento (daemon: %s:%d, limiar: %d, janela: %d)",
		s.kinectCfg.Host, s.kinectCfg.Port, s.motionCfg.Threshold, s.motionCfg.WindowCapacity)

	// Posicionar o atuador no ângulo inicial e acender o indicador quiescente
	if applied := s.tiltCtl.Apply(time.Now()); applied {
		logger.Infof("Atuador posicionado no ângulo inicial: %.1f°", s.tiltCtl.Angle())
	}
	if err := s.indicatorCtl.Update(models.StateIdle); err != nil {
		logger.Warnf("Erro ao inicializar indicador: %v", err)
	}

	s.lastEvalTime = time.Now()

	// Iniciar goroutine do laço de amostragem
	go s.sampleLoop()

	// Iniciar goroutine para monitorar estatísticas
	go s.monitorStats()

	s.running = true
	return nil
}

// Stop para o monitor, publicando o estado final antes de encerrar
func (s *Service) Stop() {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return
	}

	logger.Info("Parando monitor de movimento")
	s.cancel()
	s.running = false
	state := s.machine.State()
	s.mutex.Unlock()

	// Publicação final de estado: deixa o consumidor com o valor correto
	// mesmo que a mensagem anterior tenha se perdido
	if s.publisher != nil && s.publisher.IsConnected() {
		finalEvent := models.MotionEvent{
			Type:      models.EventMotionEnded,
			Motion:    state == models.StateActive,
			Timestamp: time.Now(),
		}
		if err := s.publisher.PublishMotion(finalEvent); err != nil {
			logger.Warnf("Erro na publicação final de estado: %v", err)
		} else {
			logger.Infof("Estado final publicado: %s", finalEvent.Payload())
		}
	}

	s.device.Close()
}

// IsRunning verifica se o serviço está em execução
func (s *Service) IsRunning() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.running
}

// RegisterEventHandler registra uma função para receber eventos de movimento
func (s *Service) RegisterEventHandler(handler EventHandler) {
	s.handlersLock.Lock()
	defer s.handlersLock.Unlock()
	s.eventHandlers = append(s.eventHandlers, handler)
}

// GetStatus retorna o status atual do monitor
func (s *Service) GetStatus() models.MonitorStatus {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	status := s.status
	status.State = s.machine.State()
	status.Motion = status.State == models.StateActive
	status.TiltAngle = s.tiltCtl.Angle()
	return status
}

// GetLastEvaluation retorna o resultado da última avaliação
func (s *Service) GetLastEvaluation() *models.EvaluationResult {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastEvaluation
}

// GetRecentEvaluations retorna uma cópia das avaliações recentes, da mais
// antiga para a mais nova
func (s *Service) GetRecentEvaluations() []models.EvaluationResult {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]models.EvaluationResult, len(s.recentEvaluations))
	copy(out, s.recentEvaluations)
	return out
}

// State retorna o estado atual da máquina de movimento
func (s *Service) State() models.MotionState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.machine.State()
}

// TiltAngle retorna o último ângulo aplicado ao atuador
func (s *Service) TiltAngle() float64 {
	return s.tiltCtl.Angle()
}

// TiltTarget retorna o ângulo alvo atual do atuador
func (s *Service) TiltTarget() float64 {
	return s.tiltCtl.Target()
}

// LastCentroid retorna a última linha de centróide observada
func (s *Service) LastCentroid() int {
	return s.tiltCtl.LastCentroid()
}

// sampleLoop executa o laço principal de amostragem de quadros
func (s *Service) sampleLoop() {
	ticker := time.NewTicker(s.kinectCfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.statsLock.Lock()
			s.stats.cycleStartTime = time.Now()
			s.statsLock.Unlock()

			s.processTick()

			cycleDuration := time.Since(s.stats.cycleStartTime)
			s.statsLock.Lock()
			s.stats.cycleDurations = append(s.stats.cycleDurations, cycleDuration)
			if len(s.stats.cycleDurations) > 100 {
				s.stats.cycleDurations = s.stats.cycleDurations[1:]
			}
			s.statsLock.Unlock()
		}
	}
}

// processTick processa um ciclo de amostragem: adquire um quadro, atualiza a
// janela e, na cadência de avaliação, avalia a máquina de estados
func (s *Service) processTick() {
	frame, err := s.device.NextFrame()
	if err != nil {
		if errors.Is(err, kinect.ErrNoFrame) {
			// Falha transitória do daemon: aguardar sem avançar a janela
			logger.Debugf("Nenhum quadro disponível; aguardando %v", s.kinectCfg.FrameRetryDelay)
			select {
			case <-s.ctx.Done():
			case <-time.After(s.kinectCfg.FrameRetryDelay):
			}
			return
		}

		s.handleConnectionError(err)
		return
	}

	// Resetar contador de erros se comunicação bem sucedida
	if s.consecutiveErrors > 0 {
		logger.Infof("Comunicação com o daemon restaurada após %d tentativas", s.consecutiveErrors)
		s.consecutiveErrors = 0
		s.updateStatus("ok", "")
	}

	atomic.AddInt64(&s.stats.totalFrames, 1)

	metric, mask, ok := s.differ.Observe(frame)
	if !ok {
		// Primeiro quadro ou mudança de modo: nada a avaliar ainda
		return
	}

	// Atualizar o alvo do atuador apenas com movimento em andamento;
	// em repouso o sensor fica parado
	if s.State() == models.StateActive {
		s.tiltCtl.Update(mask, metric, s.motionCfg.Threshold)
		if applied := s.tiltCtl.Apply(time.Now()); applied && s.wsHub != nil {
			s.wsHub.BroadcastTilt(s.tiltCtl.Angle(), s.tiltCtl.LastCentroid())
		}
	}

	// Avaliação em cadência própria, independente da taxa de quadros
	now := time.Now()
	s.mutex.RLock()
	due := now.Sub(s.lastEvalTime) >= s.motionCfg.EvalInterval
	s.mutex.RUnlock()

	if due {
		s.evaluate(now)
	}
}

// evaluate executa um ciclo de avaliação: calcula a média da janela, passa-a
// pela máquina de estados, despacha os eventos e esvazia a janela
func (s *Service) evaluate(now time.Time) {
	window := s.differ.Window()

	avg, ok := window.Average()
	if !ok {
		// Janela vazia (sensor sem quadros desde a última avaliação):
		// ciclo sem efeito, nem o contador de quietude avança
		s.mutex.Lock()
		s.lastEvalTime = now
		s.mutex.Unlock()
		return
	}

	samples := window.Len()
	window.Clear()

	// A máquina de estados só é mutada aqui, sob o mutex do serviço
	s.mutex.Lock()
	events := s.machine.Evaluate(avg, now)
	state := s.machine.State()

	result := models.EvaluationResult{
		Average:    avg,
		Samples:    samples,
		Threshold:  s.motionCfg.Threshold,
		State:      state,
		BelowCount: s.machine.BelowCount(),
		Timestamp:  now,
	}

	s.lastEvalTime = now
	resultCopy := result
	s.lastEvaluation = &resultCopy
	if len(s.recentEvaluations) >= maxRecentEvaluations {
		s.recentEvaluations = s.recentEvaluations[1:]
	}
	s.recentEvaluations = append(s.recentEvaluations, result)
	s.mutex.Unlock()

	atomic.AddInt64(&s.stats.totalEvaluations, 1)

	logger.Eventf("Média da janela: %.0f (%d amostras, limiar %d, estado %s)",
		avg, samples, s.motionCfg.Threshold, result.State)

	// PRIORIDADE 1: broadcast imediato via WebSocket
	if s.wsHub != nil {
		s.wsHub.BroadcastEvaluation(result)
	}

	// PRIORIDADE 2: despachar eventos da máquina de estados
	for _, event := range events {
		s.dispatchEvent(event)
	}

	// PRIORIDADE 3: indicador e espelho Redis
	if err := s.indicatorCtl.Update(state); err != nil {
		logger.Warnf("Erro ao atualizar indicador: %v", err)
	}

	if s.redisService != nil && s.redisService.IsConnected() {
		// Goroutine para não bloquear o laço de amostragem
		go func(r models.EvaluationResult) {
			if err := s.redisService.WriteEvaluation(r); err != nil {
				logger.Errorf("Erro ao espelhar avaliação no Redis: %v", err)
			}
		}(result)
	}
}

// dispatchEvent publica um evento de movimento em todos os destinos
func (s *Service) dispatchEvent(event models.MotionEvent) {
	atomic.AddInt64(&s.stats.totalEvents, 1)

	switch event.Type {
	case models.EventMotionStarted:
		logger.Infof("Movimento detectado (média %.0f) -> publicando true", event.Average)
	case models.EventMotionRedundant:
		logger.Debugf("Republicação de movimento (média %.0f)", event.Average)
	case models.EventMotionEnded:
		logger.Infof("Movimento encerrado (média %.0f) -> publicando false", event.Average)
	}

	// Publicação MQTT síncrona para preservar a ordem dos eventos
	if s.publisher != nil {
		if err := s.publisher.PublishMotion(event); err != nil {
			logger.Errorf("Erro ao publicar evento de movimento: %v", err)
		}
	}

	if s.wsHub != nil {
		s.wsHub.BroadcastMotionEvent(event)
	}

	if s.redisService != nil && s.redisService.IsConnected() {
		go func(e models.MotionEvent) {
			if err := s.redisService.PublishEvent(e); err != nil {
				logger.Errorf("Erro ao publicar evento no Redis: %v", err)
			}
		}(event)
	}

	s.notifyEventHandlers(event)

	// Compensação de perda: republica o "false" após um atraso, caso a
	// primeira mensagem tenha se perdido no transporte
	if event.Type == models.EventMotionEnded && s.motionCfg.DoubleFalsePublish {
		go s.publishRedundantFalse()
	}
}

// publishRedundantFalse publica um segundo "false" após o atraso configurado,
// desde que o estado continue Idle
func (s *Service) publishRedundantFalse() {
	select {
	case <-s.ctx.Done():
		return
	case <-time.After(s.motionCfg.RedundantDelay):
	}

	if s.State() != models.StateIdle {
		// Movimento recomeçou nesse meio tempo; o "false" ficaria obsoleto
		return
	}

	event := models.MotionEvent{
		Type:      models.EventMotionEnded,
		Motion:    false,
		Timestamp: time.Now(),
	}

	if s.publisher != nil {
		if err := s.publisher.PublishMotion(event); err != nil {
			logger.Errorf("Erro na republicação de false: %v", err)
			return
		}
	}

	logger.Debugf("Republicação de false após %v", s.motionCfg.RedundantDelay)
}

// notifyEventHandlers notifica todos os handlers registrados
func (s *Service) notifyEventHandlers(event models.MotionEvent) {
	s.handlersLock.RLock()
	handlers := s.eventHandlers
	s.handlersLock.RUnlock()

	for _, handler := range handlers {
		handler(event) // Chamada síncrona
	}
}

// handleConnectionError trata erros de comunicação com o daemon
func (s *Service) handleConnectionError(err error) {
	s.consecutiveErrors++
	s.lastErrorMsg = err.Error()

	logger.Errorf("Erro ao comunicar com o daemon de quadros: %v. Tentativa %d",
		err, s.consecutiveErrors)

	// O par de quadros foi quebrado: a próxima observação recomeça do zero
	s.differ.Reset()

	// Se exceder o número máximo de tentativas, atualizar status
	if s.consecutiveErrors > maxConsecutiveErrors {
		s.updateStatus("falha_comunicacao", s.lastErrorMsg)

		// Esperar antes da próxima tentativa
		select {
		case <-s.ctx.Done():
		case <-time.After(s.kinectCfg.FrameRetryDelay):
		}
	}
}

// updateStatus atualiza o status do monitor e propaga para os destinos
func (s *Service) updateStatus(status string, errorMsg string) {
	s.mutex.Lock()
	s.status = models.MonitorStatus{
		Status:     status,
		State:      s.machine.State(),
		Motion:     s.machine.State() == models.StateActive,
		TiltAngle:  s.tiltCtl.Angle(),
		Timestamp:  time.Now(),
		LastError:  errorMsg,
		ErrorCount: s.consecutiveErrors,
	}
	statusCopy := s.status
	s.mutex.Unlock()

	// Espelhar status no Redis
	if s.redisService != nil && s.redisService.IsConnected() {
		s.redisService.WriteStatus(statusCopy)
	}

	// Enviar atualização de status via WebSocket
	if s.wsHub != nil {
		s.wsHub.BroadcastStatus(statusCopy)
	}

	if status != "ok" {
		logger.Warnf("Status do monitor alterado para %s: %s", status, errorMsg)
	} else {
		logger.Info("Status do monitor restaurado para 'ok'")
	}
}

// monitorStats monitora estatísticas de desempenho
func (s *Service) monitorStats() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.logPerformanceStats()
		}
	}
}

// logPerformanceStats registra estatísticas de desempenho
func (s *Service) logPerformanceStats() {
	s.statsLock.Lock()
	var avgDuration time.Duration
	if len(s.stats.cycleDurations) > 0 {
		var sum time.Duration
		for _, d := range s.stats.cycleDurations {
			sum += d
		}
		avgDuration = sum / time.Duration(len(s.stats.cycleDurations))
		s.stats.avgCycleDuration = avgDuration
	}
	s.statsLock.Unlock()

	totalFrames := atomic.LoadInt64(&s.stats.totalFrames)
	totalEvaluations := atomic.LoadInt64(&s.stats.totalEvaluations)
	totalEvents := atomic.LoadInt64(&s.stats.totalEvents)

	if s.motionCfg.DisplayStats {
		logger.Infof("Estatísticas: %d quadros, %d avaliações, %d eventos, ciclo médio: %v",
			totalFrames, totalEvaluations, totalEvents, avgDuration)
	} else {
		logger.Debugf("Estatísticas: %d quadros, %d avaliações, %d eventos, ciclo médio: %v",
			totalFrames, totalEvaluations, totalEvents, avgDuration)
	}
}
