package motion

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinect_go/internal/config"
	"kinect_go/internal/kinect"
	"kinect_go/internal/models"
)

// fakeDevice simula o sensor: entrega quadros alternando ou não o conteúdo
type fakeDevice struct {
	mu      sync.Mutex
	moving  bool
	noFrame bool
	counter uint8

	tilts []float64
	leds  []models.LEDValue
}

func (d *fakeDevice) NextFrame() (*models.DepthFrame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.noFrame {
		return nil, kinect.ErrNoFrame
	}

	fill := uint8(100)
	if d.moving {
		// Cada quadro difere do anterior em todos os pixels
		d.counter += 50
		fill = d.counter
	}

	samples := make([]uint8, 8*8)
	for i := range samples {
		samples[i] = fill
	}

	return &models.DepthFrame{
		Width:     8,
		Height:    8,
		Timestamp: time.Now(),
		Samples:   samples,
	}, nil
}

func (d *fakeDevice) SetTilt(degrees float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tilts = append(d.tilts, degrees)
	return nil
}

func (d *fakeDevice) SetLED(value models.LEDValue) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.leds = append(d.leds, value)
	return nil
}

func (d *fakeDevice) Close() {}

func (d *fakeDevice) setMoving(moving bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.moving = moving
}

func (d *fakeDevice) lastLED() (models.LEDValue, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.leds) == 0 {
		return 0, false
	}
	return d.leds[len(d.leds)-1], true
}

// eventCollector acumula eventos emitidos pelo serviço
type eventCollector struct {
	mu     sync.Mutex
	events []models.MotionEvent
}

func (c *eventCollector) handle(event models.MotionEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *eventCollector) byType(eventType models.MotionEventType) []models.MotionEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []models.MotionEvent
	for _, e := range c.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func fastServiceConfigs() (config.KinectConfig, config.MotionConfig, config.TiltConfig) {
	kinectCfg := config.KinectConfig{
		Host:            "127.0.0.1",
		Port:            5045,
		SampleInterval:  5 * time.Millisecond,
		FrameRetryDelay: 5 * time.Millisecond,
		ReadTimeout:     time.Second,
	}
	motionCfg := config.MotionConfig{
		Threshold:        1000, // 8x8 pixels todos mudando = 16320
		DiffThreshold:    15,
		WindowCapacity:   30,
		EvalInterval:     25 * time.Millisecond,
		DebounceInterval: time.Hour, // sem republicações no teste
		IdleTimeout:      time.Hour,
		GraceEvaluations: 2,
		Quiet:            true,
	}
	tiltCfg := config.TiltConfig{
		Enabled:        true,
		Policy:         "direct",
		MinAngle:       -30,
		MaxAngle:       30,
		InitialAngle:   -15,
		Cooldown:       time.Millisecond,
		UpperZoneRatio: 0.30,
		LowerZoneRatio: 0.70,
	}
	return kinectCfg, motionCfg, tiltCfg
}

func TestServiceDetectsMotionAndRecovers(t *testing.T) {
	device := &fakeDevice{}
	kinectCfg, motionCfg, tiltCfg := fastServiceConfigs()

	svc, err := NewService(kinectCfg, motionCfg, tiltCfg, device, nil, nil, nil)
	require.NoError(t, err)

	collector := &eventCollector{}
	svc.RegisterEventHandler(collector.handle)

	require.NoError(t, svc.Start())
	defer svc.Stop()

	// Fase 1: quadros estáticos mantêm Idle
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, models.StateIdle, svc.State())
	assert.Empty(t, collector.byType(models.EventMotionStarted))

	// Fase 2: quadros mudando disparam a transição para Active
	device.setMoving(true)
	require.Eventually(t, func() bool {
		return svc.State() == models.StateActive
	}, 2*time.Second, 10*time.Millisecond)

	started := collector.byType(models.EventMotionStarted)
	require.Len(t, started, 1)
	assert.Equal(t, "true", started[0].Payload())

	// O indicador acompanha o estado
	require.Eventually(t, func() bool {
		led, ok := device.lastLED()
		return ok && led == models.LEDRed
	}, time.Second, 10*time.Millisecond)

	// Fase 3: silêncio sustentado encerra o movimento
	device.setMoving(false)
	require.Eventually(t, func() bool {
		return svc.State() == models.StateIdle
	}, 2*time.Second, 10*time.Millisecond)

	ended := collector.byType(models.EventMotionEnded)
	require.NotEmpty(t, ended)
	assert.Equal(t, "false", ended[0].Payload())

	require.Eventually(t, func() bool {
		led, ok := device.lastLED()
		return ok && led == models.LEDGreen
	}, time.Second, 10*time.Millisecond)
}

func TestServiceNoFrameDoesNotAdvanceWindow(t *testing.T) {
	device := &fakeDevice{noFrame: true}
	kinectCfg, motionCfg, tiltCfg := fastServiceConfigs()

	svc, err := NewService(kinectCfg, motionCfg, tiltCfg, device, nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Start())
	defer svc.Stop()

	time.Sleep(150 * time.Millisecond)

	// Sem quadros nenhuma avaliação acontece e o status segue saudável
	assert.Nil(t, svc.GetLastEvaluation())
	assert.Equal(t, models.StateIdle, svc.State())
	assert.Empty(t, svc.GetRecentEvaluations())
}

func TestServiceExposesEvaluations(t *testing.T) {
	device := &fakeDevice{}
	kinectCfg, motionCfg, tiltCfg := fastServiceConfigs()

	svc, err := NewService(kinectCfg, motionCfg, tiltCfg, device, nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Start())
	defer svc.Stop()

	require.Eventually(t, func() bool {
		return svc.GetLastEvaluation() != nil
	}, 2*time.Second, 10*time.Millisecond)

	eval := svc.GetLastEvaluation()
	assert.Equal(t, motionCfg.Threshold, eval.Threshold)
	assert.GreaterOrEqual(t, eval.Samples, 1)
	assert.NotEmpty(t, svc.GetRecentEvaluations())
}
