package motion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinect_go/internal/config"
	"kinect_go/internal/models"
)

func testMotionConfig() config.MotionConfig {
	return config.MotionConfig{
		Threshold:        1_000_000,
		DiffThreshold:    15,
		WindowCapacity:   30,
		EvalInterval:     5 * time.Second,
		DebounceInterval: 5 * time.Second,
		IdleTimeout:      4 * time.Minute,
		GraceEvaluations: 30,
	}
}

func TestStateMachineStaysIdleBelowThreshold(t *testing.T) {
	m := NewStateMachine(testMotionConfig())
	now := time.Now()

	for i := 0; i < 30; i++ {
		events := m.Evaluate(0, now.Add(time.Duration(i)*5*time.Second))
		assert.Empty(t, events)
	}

	assert.Equal(t, models.StateIdle, m.State())
	assert.Equal(t, 0, m.BelowCount())
}

func TestStateMachineSingleTruePublishOnEntry(t *testing.T) {
	m := NewStateMachine(testMotionConfig())
	now := time.Now()

	events := m.Evaluate(2_000_000, now)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventMotionStarted, events[0].Type)
	assert.True(t, events[0].Motion)
	assert.Equal(t, "true", events[0].Payload())
	assert.Equal(t, models.StateActive, m.State())

	// Avaliação imediatamente seguinte acima do limiar: debounce segura a
	// republicação
	events = m.Evaluate(2_000_000, now.Add(time.Second))
	assert.Empty(t, events)
}

func TestStateMachineRedundantPublishRespectsDebounce(t *testing.T) {
	m := NewStateMachine(testMotionConfig())
	start := time.Now()

	// Avaliações a cada 1s com movimento contínuo por 10s e debounce de 5s:
	// a entrada publica uma vez e sobra exatamente uma republicação
	var redundant int
	for i := 0; i <= 10; i++ {
		events := m.Evaluate(3_000_000, start.Add(time.Duration(i)*time.Second))
		for _, e := range events {
			if e.Type == models.EventMotionRedundant {
				redundant++
			}
		}
	}

	assert.Equal(t, 1, redundant)
	assert.Equal(t, models.StateActive, m.State())
}

func TestStateMachineExitsAfterGraceEvaluations(t *testing.T) {
	m := NewStateMachine(testMotionConfig())
	now := time.Now()

	events := m.Evaluate(2_000_000, now)
	require.Len(t, events, 1)

	// 29 avaliações em silêncio: ainda Active
	for i := 1; i <= 29; i++ {
		events = m.Evaluate(0, now.Add(time.Duration(i)*time.Second))
		assert.Empty(t, events, "avaliação %d não deve emitir evento", i)
		assert.Equal(t, models.StateActive, m.State())
	}

	// A trigésima encerra
	events = m.Evaluate(0, now.Add(30*time.Second))
	require.Len(t, events, 1)
	assert.Equal(t, models.EventMotionEnded, events[0].Type)
	assert.Equal(t, "false", events[0].Payload())
	assert.Equal(t, models.StateIdle, m.State())
	assert.Equal(t, 0, m.BelowCount())
}

func TestStateMachineBelowCountResetsOnMotion(t *testing.T) {
	m := NewStateMachine(testMotionConfig())
	now := time.Now()

	m.Evaluate(2_000_000, now)

	// 29 em silêncio, depois uma acima do limiar: o contador zera
	for i := 1; i <= 29; i++ {
		m.Evaluate(0, now.Add(time.Duration(i)*time.Second))
	}
	assert.Equal(t, 29, m.BelowCount())

	m.Evaluate(2_000_000, now.Add(30*time.Second))
	assert.Equal(t, 0, m.BelowCount())
	assert.Equal(t, models.StateActive, m.State())
}

func TestStateMachineIdleTimeoutForcesExit(t *testing.T) {
	cfg := testMotionConfig()
	cfg.GraceEvaluations = 1000 // tão alto que só o teto de tempo dispara
	m := NewStateMachine(cfg)
	now := time.Now()

	m.Evaluate(2_000_000, now)
	require.Equal(t, models.StateActive, m.State())

	// Ainda dentro do teto: permanece Active
	events := m.Evaluate(0, now.Add(cfg.IdleTimeout-time.Second))
	assert.Empty(t, events)
	assert.Equal(t, models.StateActive, m.State())

	// Teto atingido desde o último movimento confirmado
	events = m.Evaluate(0, now.Add(cfg.IdleTimeout))
	require.Len(t, events, 1)
	assert.Equal(t, models.EventMotionEnded, events[0].Type)
	assert.Equal(t, models.StateIdle, m.State())
}

func TestStateMachineReentersAfterExit(t *testing.T) {
	cfg := testMotionConfig()
	cfg.GraceEvaluations = 2
	m := NewStateMachine(cfg)
	now := time.Now()

	m.Evaluate(2_000_000, now)
	m.Evaluate(0, now.Add(1*time.Second))
	events := m.Evaluate(0, now.Add(2*time.Second))
	require.Len(t, events, 1)
	require.Equal(t, models.StateIdle, m.State())

	// Novo movimento publica true de novo
	events = m.Evaluate(2_000_000, now.Add(3*time.Second))
	require.Len(t, events, 1)
	assert.Equal(t, models.EventMotionStarted, events[0].Type)
}
