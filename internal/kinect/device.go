package kinect

import (
	"errors"

	"kinect_go/internal/models"
)

// ErrNoFrame indica que o daemon não tem um quadro disponível no momento.
// Falha transitória: o chamador aguarda um curto intervalo e tenta novamente,
// sem avançar o estado da janela
var ErrNoFrame = errors.New("nenhum quadro de profundidade disponível")

// Device é a interface do sensor consumida pelo serviço de movimento:
// aquisição de quadros, atuador de inclinação e indicador luminoso
type Device interface {
	NextFrame() (*models.DepthFrame, error)
	SetTilt(degrees float64) error
	SetLED(value models.LEDValue) error
	Close()
}
