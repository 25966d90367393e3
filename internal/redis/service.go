package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"kinect_go/internal/config"
	"kinect_go/internal/models"
	"kinect_go/pkg/logger"
)

// Service espelha o estado corrente do monitor no Redis e publica eventos de
// movimento em um canal pub/sub. Apenas o estado atual é mantido: nenhuma
// série histórica é gravada. O serviço é tolerante a falhas: sem conexão,
// as escritas viram no-ops e o monitor segue operando
type Service struct {
	client    *redis.Client
	ctx       context.Context
	cancel    context.CancelFunc
	prefix    string
	channel   string
	config    config.RedisConfig
	connected bool
	mutex     sync.RWMutex
}

// NewService cria um novo serviço Redis
func NewService(cfg config.RedisConfig) (*Service, error) {
	if !cfg.Enabled {
		logger.Info("Serviço Redis desabilitado por configuração")
		return &Service{
			config:    cfg,
			connected: false,
		}, nil
	}

	// Criar contexto cancelável
	ctx, cancel := context.WithCancel(context.Background())

	// Configurar endereço
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	// Criar cliente Redis
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	service := &Service{
		client:  client,
		ctx:     ctx,
		cancel:  cancel,
		prefix:  cfg.Prefix,
		channel: cfg.Channel,
		config:  cfg,
	}

	// Testar conexão
	if err := service.TestConnection(); err != nil {
		logger.Warnf("Aviso: %v. O Redis será utilizado em modo offline.", err)
		service.connected = false
		return service, nil
	}

	service.connected = true
	return service, nil
}

// TestConnection testa a conexão com o Redis
func (s *Service) TestConnection() error {
	if !s.config.Enabled {
		return fmt.Errorf("serviço Redis desabilitado")
	}

	result, err := s.client.Ping(s.ctx).Result()
	if err != nil {
		return fmt.Errorf("erro ao conectar ao Redis: %w", err)
	}

	logger.Infof("Conexão com o Redis estabelecida. Resposta: %s", result)
	s.connected = true
	return nil
}

// IsConnected verifica se o serviço está conectado
func (s *Service) IsConnected() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.connected && s.config.Enabled
}

// WriteEvaluation espelha o resultado de um ciclo de avaliação
func (s *Service) WriteEvaluation(result models.EvaluationResult) error {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil
	}
	s.mutex.RUnlock()

	pipe := s.client.Pipeline()
	timestamp := result.Timestamp.UnixNano() / int64(time.Millisecond)

	pipe.Set(s.ctx, fmt.Sprintf("%s:average", s.prefix), result.Average, 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:samples", s.prefix), result.Samples, 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:state", s.prefix), result.State.String(), 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:timestamp", s.prefix), timestamp, 0)

	if _, err := pipe.Exec(s.ctx); err != nil {
		s.markDisconnected()
		return fmt.Errorf("erro ao escrever avaliação no Redis: %w", err)
	}

	return nil
}

// WriteStatus espelha o status do monitor
func (s *Service) WriteStatus(status models.MonitorStatus) error {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil
	}
	s.mutex.RUnlock()

	pipe := s.client.Pipeline()

	pipe.Set(s.ctx, fmt.Sprintf("%s:status", s.prefix), status.Status, 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:state", s.prefix), status.State.String(), 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:tilt_angle", s.prefix), status.TiltAngle, 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:timestamp", s.prefix),
		status.Timestamp.UnixNano()/int64(time.Millisecond), 0)

	// Armazenar informações de erro, se houver
	if status.LastError != "" {
		pipe.Set(s.ctx, fmt.Sprintf("%s:ultimo_erro", s.prefix), status.LastError, 0)
	}

	if status.ErrorCount > 0 {
		pipe.Set(s.ctx, fmt.Sprintf("%s:erros_consecutivos", s.prefix), status.ErrorCount, 0)
	}

	if _, err := pipe.Exec(s.ctx); err != nil {
		s.markDisconnected()
		return fmt.Errorf("erro ao escrever status no Redis: %w", err)
	}

	return nil
}

// PublishEvent publica um evento de movimento no canal pub/sub e atualiza a
// chave de estado corrente
func (s *Service) PublishEvent(event models.MotionEvent) error {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil
	}
	s.mutex.RUnlock()

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("erro ao serializar evento de movimento: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(s.ctx, fmt.Sprintf("%s:motion", s.prefix), event.Payload(), 0)
	pipe.Publish(s.ctx, s.channel, jsonData)

	if _, err := pipe.Exec(s.ctx); err != nil {
		s.markDisconnected()
		return fmt.Errorf("erro ao publicar evento no Redis: %w", err)
	}

	logger.Debugf("Evento de movimento publicado no canal %s", s.channel)
	return nil
}

// GetStatus obtém o status corrente espelhado no Redis
func (s *Service) GetStatus() (*models.MonitorStatus, error) {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil, fmt.Errorf("Redis não conectado ou desabilitado")
	}
	s.mutex.RUnlock()

	statusCmd := s.client.Get(s.ctx, fmt.Sprintf("%s:status", s.prefix))
	if statusCmd.Err() != nil {
		return nil, fmt.Errorf("erro ao obter status: %w", statusCmd.Err())
	}

	status := &models.MonitorStatus{
		Status:    statusCmd.Val(),
		Timestamp: time.Now(),
	}

	if stateCmd := s.client.Get(s.ctx, fmt.Sprintf("%s:state", s.prefix)); stateCmd.Err() == nil {
		if stateCmd.Val() == "active" {
			status.State = models.StateActive
			status.Motion = true
		}
	}

	if tiltCmd := s.client.Get(s.ctx, fmt.Sprintf("%s:tilt_angle", s.prefix)); tiltCmd.Err() == nil {
		if angle, err := tiltCmd.Float64(); err == nil {
			status.TiltAngle = angle
		}
	}

	if tsCmd := s.client.Get(s.ctx, fmt.Sprintf("%s:timestamp", s.prefix)); tsCmd.Err() == nil {
		if ts, err := tsCmd.Int64(); err == nil {
			status.Timestamp = time.Unix(0, ts*int64(time.Millisecond))
		}
	}

	if errCmd := s.client.Get(s.ctx, fmt.Sprintf("%s:ultimo_erro", s.prefix)); errCmd.Err() == nil {
		status.LastError = errCmd.Val()
	}

	if countCmd := s.client.Get(s.ctx, fmt.Sprintf("%s:erros_consecutivos", s.prefix)); countCmd.Err() == nil {
		if count, err := countCmd.Int(); err == nil {
			status.ErrorCount = count
		}
	}

	return status, nil
}

// markDisconnected marca o serviço como desconectado após erro de escrita
func (s *Service) markDisconnected() {
	s.mutex.Lock()
	s.connected = false
	s.mutex.Unlock()
}

// Shutdown encerra graciosamente o serviço Redis
func (s *Service) Shutdown() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	if s.client != nil {
		if err := s.client.Close(); err != nil {
			logger.Errorf("Erro ao fechar conexão com Redis: %v", err)
		} else {
			logger.Info("Conexão com o Redis fechada")
		}
	}

	s.connected = false
}
