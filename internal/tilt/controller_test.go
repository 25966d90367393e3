package tilt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinect_go/internal/config"
	"kinect_go/internal/models"
)

// fakeActuator registra os ângulos aplicados
type fakeActuator struct {
	angles []float64
}

func (f *fakeActuator) SetTilt(degrees float64) error {
	f.angles = append(f.angles, degrees)
	return nil
}

func testTiltConfig() config.TiltConfig {
	return config.TiltConfig{
		Enabled:        true,
		Policy:         "direct",
		MinAngle:       -30,
		MaxAngle:       30,
		InitialAngle:   -15,
		JogStep:        5,
		Cooldown:       2 * time.Second,
		UpperZoneRatio: 0.30,
		LowerZoneRatio: 0.70,
	}
}

// maskAtRow monta uma máscara com toda a massa concentrada em uma linha
func maskAtRow(width, height, row int) *models.ChangeMask {
	mask := &models.ChangeMask{
		Width:   width,
		Height:  height,
		RowMass: make([]int64, height),
	}
	mask.RowMass[row] = 255 * int64(width)
	mask.Mass = mask.RowMass[row]
	return mask
}

func TestDirectPolicyMapsCentroidToAngle(t *testing.T) {
	actuator := &fakeActuator{}
	c := NewController(testTiltConfig(), actuator)

	// Centróide no topo do quadro -> ângulo máximo
	c.Update(maskAtRow(640, 480, 0), 2_000_000, 1_000_000)
	assert.InDelta(t, 30.0, c.Target(), 0.01)

	// Centróide no meio -> aproximadamente nivelado
	c.Update(maskAtRow(640, 480, 240), 2_000_000, 1_000_000)
	assert.InDelta(t, 0.0, c.Target(), 0.2)

	// Centróide na base -> perto do ângulo mínimo
	c.Update(maskAtRow(640, 480, 479), 2_000_000, 1_000_000)
	assert.InDelta(t, -30.0, c.Target(), 0.5)
}

func TestZeroMassMaskKeepsTarget(t *testing.T) {
	actuator := &fakeActuator{}
	c := NewController(testTiltConfig(), actuator)

	before := c.Target()

	empty := &models.ChangeMask{Width: 640, Height: 480, RowMass: make([]int64, 480)}
	c.Update(empty, 0, 1_000_000)
	assert.Equal(t, before, c.Target())

	c.Update(nil, 0, 1_000_000)
	assert.Equal(t, before, c.Target())
}

func TestApplyRespectsCooldown(t *testing.T) {
	actuator := &fakeActuator{}
	c := NewController(testTiltConfig(), actuator)
	now := time.Now()

	c.Update(maskAtRow(640, 480, 0), 2_000_000, 1_000_000)
	require.True(t, c.Apply(now))
	require.Len(t, actuator.angles, 1)

	// Novo alvo dentro do cooldown: não aplica
	c.Update(maskAtRow(640, 480, 479), 2_000_000, 1_000_000)
	assert.False(t, c.Apply(now.Add(time.Second)))
	assert.Len(t, actuator.angles, 1)

	// Após o cooldown
	assert.True(t, c.Apply(now.Add(3*time.Second)))
	assert.Len(t, actuator.angles, 2)
}

func TestApplySkipsWhenTargetUnchanged(t *testing.T) {
	actuator := &fakeActuator{}
	c := NewController(testTiltConfig(), actuator)
	now := time.Now()

	c.Update(maskAtRow(640, 480, 240), 2_000_000, 1_000_000)
	require.True(t, c.Apply(now))

	// Mesmo alvo depois do cooldown: o atuador não é tocado
	assert.False(t, c.Apply(now.Add(5*time.Second)))
	assert.Len(t, actuator.angles, 1)
}

func TestJogPolicyStepsWithinZones(t *testing.T) {
	cfg := testTiltConfig()
	cfg.Policy = "jog"
	cfg.InitialAngle = 0
	actuator := &fakeActuator{}
	c := NewController(cfg, actuator)

	// Centróide na zona superior (y < 144 para altura 480) com métrica acima
	// do limiar: um passo para cima
	c.Update(maskAtRow(640, 480, 50), 2_000_000, 1_000_000)
	assert.InDelta(t, 5.0, c.Target(), 0.01)

	// Zona inferior: um passo para baixo
	c.Update(maskAtRow(640, 480, 400), 2_000_000, 1_000_000)
	assert.InDelta(t, 0.0, c.Target(), 0.01)

	// Zona central: mantém posição
	c.Update(maskAtRow(640, 480, 240), 2_000_000, 1_000_000)
	assert.InDelta(t, 0.0, c.Target(), 0.01)
}

func TestJogPolicyIgnoresWeakMetric(t *testing.T) {
	cfg := testTiltConfig()
	cfg.Policy = "jog"
	cfg.InitialAngle = 0
	c := NewController(cfg, &fakeActuator{})

	// Métrica abaixo do limiar não move, mesmo na zona superior
	c.Update(maskAtRow(640, 480, 50), 500_000, 1_000_000)
	assert.InDelta(t, 0.0, c.Target(), 0.01)
}

func TestJogPolicyClampsAtMechanicalLimits(t *testing.T) {
	cfg := testTiltConfig()
	cfg.Policy = "jog"
	cfg.InitialAngle = 25
	c := NewController(cfg, &fakeActuator{})

	// Dois jogs para cima a partir de 25°: satura em 30°
	c.Update(maskAtRow(640, 480, 10), 2_000_000, 1_000_000)
	c.Update(maskAtRow(640, 480, 10), 2_000_000, 1_000_000)
	assert.InDelta(t, 30.0, c.Target(), 0.01)
}

func TestInitialAngleIsClamped(t *testing.T) {
	cfg := testTiltConfig()
	cfg.InitialAngle = -90
	c := NewController(cfg, &fakeActuator{})

	assert.InDelta(t, -30.0, c.Target(), 0.01)
}

func TestDisabledControllerNeverActuates(t *testing.T) {
	cfg := testTiltConfig()
	cfg.Enabled = false
	actuator := &fakeActuator{}
	c := NewController(cfg, actuator)

	c.Update(maskAtRow(640, 480, 0), 2_000_000, 1_000_000)
	applied := c.Apply(time.Now())

	require.False(t, applied)
	assert.Empty(t, actuator.angles)
	assert.InDelta(t, -15.0, c.Target(), 0.01)
}
