package tilt

import (
	"sync"
	"time"

	"kinect_go/internal/config"
	"kinect_go/internal/models"
	"kinect_go/pkg/logger"
	"kinect_go/pkg/utils"
)

// Actuator é a saída física do controlador: o motor de inclinação do sensor
type Actuator interface {
	SetTilt(degrees float64) error
}

// Controller aponta o atuador para o centróide do movimento detectado.
// Duas políticas intercambiáveis:
//
//   - "direct": interpola a linha do centróide para um ângulo absoluto e o
//     aplica quando o cooldown permite
//   - "jog": move em passos fixos quando o centróide cai na zona superior ou
//     inferior do quadro e a métrica do ciclo excede o limiar; troca precisão
//     por menos desgaste mecânico
//
// O ângulo é sempre limitado ao intervalo mecânico antes de ser aplicado,
// inclusive sob acúmulo de jogs
type Controller struct {
	cfg      config.TiltConfig
	actuator Actuator

	mutex        sync.RWMutex
	targetAngle  float64
	appliedAngle float64
	applied      bool
	lastApply    time.Time
	lastCentroid int
}

// NewController cria um controlador de inclinação apontando para o ângulo
// inicial configurado
func NewController(cfg config.TiltConfig, actuator Actuator) *Controller {
	return &Controller{
		cfg:          cfg,
		actuator:     actuator,
		targetAngle:  utils.ClampFloat(cfg.InitialAngle, cfg.MinAngle, cfg.MaxAngle),
		appliedAngle: utils.ClampFloat(cfg.InitialAngle, cfg.MinAngle, cfg.MaxAngle),
		lastCentroid: -1,
	}
}

// Update recalcula o ângulo alvo a partir da máscara de mudança do ciclo.
// Máscara com massa zero (centróide indefinido) não altera o alvo nem o
// cooldown
func (c *Controller) Update(mask *models.ChangeMask, metric, threshold int64) {
	if !c.cfg.Enabled || mask == nil {
		return
	}

	centroidY, ok := mask.CentroidY()
	if !ok {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.lastCentroid = centroidY

	switch c.cfg.Policy {
	case "jog":
		height := float64(mask.Height)
		cy := float64(centroidY)

		if cy < height*c.cfg.UpperZoneRatio && metric > threshold {
			// Jog para cima
			c.targetAngle = utils.ClampFloat(c.targetAngle+c.cfg.JogStep, c.cfg.MinAngle, c.cfg.MaxAngle)
			logger.Debugf("[JOG] para cima -> %.1f° (centróide y=%d, métrica=%d)", c.targetAngle, centroidY, metric)
		} else if cy > height*c.cfg.LowerZoneRatio && metric > threshold {
			// Jog para baixo
			c.targetAngle = utils.ClampFloat(c.targetAngle-c.cfg.JogStep, c.cfg.MinAngle, c.cfg.MaxAngle)
			logger.Debugf("[JOG] para baixo -> %.1f° (centróide y=%d, métrica=%d)", c.targetAngle, centroidY, metric)
		}
		// Fora das zonas: mantém posição

	default:
		// Política direta: linha 0 -> ângulo máximo, última linha -> mínimo
		angle := utils.MapRange(float64(centroidY), 0, float64(mask.Height), c.cfg.MaxAngle, c.cfg.MinAngle)
		c.targetAngle = utils.ClampFloat(angle, c.cfg.MinAngle, c.cfg.MaxAngle)
	}
}

// Apply envia o ângulo alvo ao atuador quando o cooldown já passou desde a
// última atuação. Retorna true quando o atuador foi efetivamente movido
func (c *Controller) Apply(now time.Time) bool {
	if !c.cfg.Enabled {
		return false
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.lastApply.IsZero() && now.Sub(c.lastApply) < c.cfg.Cooldown {
		return false
	}

	if c.applied && c.targetAngle == c.appliedAngle {
		return false
	}

	if err := c.actuator.SetTilt(c.targetAngle); err != nil {
		logger.Errorf("Erro ao aplicar inclinação %.1f°: %v", c.targetAngle, err)
		return false
	}

	logger.Debugf("[TILT] ajustado para %.1f° (centróide y=%d)", c.targetAngle, c.lastCentroid)

	c.appliedAngle = c.targetAngle
	c.applied = true
	c.lastApply = now
	return true
}

// Target retorna o ângulo alvo atual
func (c *Controller) Target() float64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.targetAngle
}

// Angle retorna o último ângulo efetivamente aplicado ao atuador
func (c *Controller) Angle() float64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.appliedAngle
}

// LastCentroid retorna a última linha de centróide observada (-1 se nenhuma)
func (c *Controller) LastCentroid() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.lastCentroid
}
