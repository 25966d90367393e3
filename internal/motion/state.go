package motion

import (
	"time"

	"kinect_go/internal/config"
	"kinect_go/internal/models"
)

// StateMachine é a máquina de estados Idle/Active do movimento. O estado é
// mutado exclusivamente em fronteiras de avaliação, pelo dono da máquina;
// a saída é a lista de eventos a publicar naquele ciclo.
//
// A máquina é assimétrica de propósito: a entrada em Active tem uma única
// guarda (média acima do limiar), enquanto a saída exige quietude sustentada
// (graceEvaluations abaixo do limiar) ou o teto de idleTimeout desde o último
// movimento confirmado — o que ocorrer primeiro
type StateMachine struct {
	threshold        float64
	debounceInterval time.Duration
	idleTimeout      time.Duration
	graceEvaluations int

	state       models.MotionState
	lastMotion  time.Time
	lastPublish time.Time
	belowCount  int
}

// NewStateMachine cria a máquina de estados no estado Idle
func NewStateMachine(cfg config.MotionConfig) *StateMachine {
	return &StateMachine{
		threshold:        float64(cfg.Threshold),
		debounceInterval: cfg.DebounceInterval,
		idleTimeout:      cfg.IdleTimeout,
		graceEvaluations: cfg.GraceEvaluations,
		state:            models.StateIdle,
	}
}

// Evaluate processa o resultado de um ciclo de avaliação (a média da janela)
// e retorna os eventos de movimento a publicar. Deve ser chamada uma vez por
// cadência de avaliação, independente da taxa de quadros
func (m *StateMachine) Evaluate(average float64, now time.Time) []models.MotionEvent {
	var events []models.MotionEvent

	if average > m.threshold {
		// Uma única avaliação acima do limiar zera o contador de quietude
		m.belowCount = 0

		if m.state == models.StateIdle {
			// Idle -> Active: publica "motion=true" exatamente uma vez
			m.state = models.StateActive
			m.lastMotion = now
			m.lastPublish = now
			events = append(events, models.MotionEvent{
				Type:      models.EventMotionStarted,
				Motion:    true,
				Average:   average,
				Timestamp: now,
			})
		} else {
			// Permanece Active; republicação redundante compensa perda de
			// mensagens no transporte, respeitando o debounce
			m.lastMotion = now
			if now.Sub(m.lastPublish) > m.debounceInterval {
				m.lastPublish = now
				events = append(events, models.MotionEvent{
					Type:      models.EventMotionRedundant,
					Motion:    true,
					Average:   average,
					Timestamp: now,
				})
			}
		}

		return events
	}

	// Média abaixo ou igual ao limiar
	if m.state == models.StateActive {
		m.belowCount++

		graceExpired := m.belowCount >= m.graceEvaluations
		idleExpired := !m.lastMotion.IsZero() && now.Sub(m.lastMotion) >= m.idleTimeout

		if graceExpired || idleExpired {
			// Active -> Idle: publica "motion=false" exatamente uma vez
			m.state = models.StateIdle
			m.belowCount = 0
			events = append(events, models.MotionEvent{
				Type:      models.EventMotionEnded,
				Motion:    false,
				Average:   average,
				Timestamp: now,
			})
		}
	} else {
		m.belowCount = 0
	}

	return events
}

// State retorna o estado atual
func (m *StateMachine) State() models.MotionState {
	return m.state
}

// BelowCount retorna o número de avaliações consecutivas abaixo do limiar
func (m *StateMachine) BelowCount() int {
	return m.belowCount
}

// LastMotion retorna o timestamp do último movimento confirmado
func (m *StateMachine) LastMotion() time.Time {
	return m.lastMotion
}

// LastPublish retorna o timestamp da última publicação de "motion=true"
func (m *StateMachine) LastPublish() time.Time {
	return m.lastPublish
}
