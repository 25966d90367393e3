package indicator

import (
	"sync"

	"kinect_go/internal/models"
	"kinect_go/pkg/logger"
)

// Indicator é a saída física do controlador: o LED de status do sensor
type Indicator interface {
	SetLED(value models.LEDValue) error
}

// Controller mapeia o estado de movimento para o indicador visual. A escrita
// física só acontece quando o valor desejado difere do último aplicado;
// diferente do atuador de inclinação, não há cooldown — a atualização do
// indicador é barata
type Controller struct {
	indicator Indicator

	mutex       sync.RWMutex
	lastApplied models.LEDValue
	applied     bool
}

// NewController cria um controlador de indicador
func NewController(indicator Indicator) *Controller {
	return &Controller{indicator: indicator}
}

// Desired retorna o valor de indicador correspondente a um estado
func Desired(state models.MotionState) models.LEDValue {
	if state == models.StateActive {
		return models.LEDRed
	}
	return models.LEDGreen
}

// Update aplica o indicador correspondente ao estado, apenas na mudança
func (c *Controller) Update(state models.MotionState) error {
	desired := Desired(state)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.applied && desired == c.lastApplied {
		return nil
	}

	if err := c.indicator.SetLED(desired); err != nil {
		logger.Errorf("Erro ao aplicar indicador %d: %v", desired, err)
		return err
	}

	c.lastApplied = desired
	c.applied = true
	return nil
}

// Current retorna o último valor aplicado e se algum já foi aplicado
func (c *Controller) Current() (models.LEDValue, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.lastApplied, c.applied
}
