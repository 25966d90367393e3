package models

import "time"

// MotionState enumera os estados da máquina de movimento
type MotionState int

const (
	// StateIdle indica ausência de movimento
	StateIdle MotionState = iota
	// StateActive indica movimento em andamento
	StateActive
)

// String retorna o nome do estado
func (s MotionState) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

// MotionEventType enumera os tipos de evento emitidos pela máquina de estados
type MotionEventType int

const (
	// EventMotionStarted transição Idle -> Active
	EventMotionStarted MotionEventType = iota
	// EventMotionRedundant republicação de "motion=true" durante Active
	EventMotionRedundant
	// EventMotionEnded transição Active -> Idle
	EventMotionEnded
)

// MotionEvent representa um evento de movimento a ser publicado
type MotionEvent struct {
	Type      MotionEventType `json:"type"`
	Motion    bool            `json:"motion"`
	Average   float64         `json:"average"`
	Timestamp time.Time       `json:"timestamp"`
}

// Payload retorna o payload publicado no tópico de estado ("true"/"false")
func (e MotionEvent) Payload() string {
	if e.Motion {
		return "true"
	}
	return "false"
}

// EvaluationResult é o resultado de um ciclo de avaliação: a média móvel da
// janela deslizante no instante da avaliação
type EvaluationResult struct {
	Average    float64     `json:"average"`
	Samples    int         `json:"samples"`
	Threshold  int64       `json:"threshold"`
	State      MotionState `json:"state"`
	BelowCount int         `json:"belowCount"`
	Timestamp  time.Time   `json:"timestamp"`
}

// MonitorStatus representa o status atual do monitor
type MonitorStatus struct {
	Status     string      `json:"status"`
	State      MotionState `json:"state"`
	Motion     bool        `json:"motion"`
	TiltAngle  float64     `json:"tiltAngle"`
	Timestamp  time.Time   `json:"timestamp"`
	LastError  string      `json:"lastError,omitempty"`
	ErrorCount int         `json:"errorCount,omitempty"`
}

// LEDValue enumera os valores do indicador luminoso do sensor
type LEDValue int

const (
	// LEDOff indicador apagado
	LEDOff LEDValue = 0
	// LEDGreen estado quiescente (sem movimento)
	LEDGreen LEDValue = 1
	// LEDRed estado de alerta (movimento detectado)
	LEDRed LEDValue = 2
)
