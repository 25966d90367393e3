package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestFormatDuration verifica a formatação amigável de durações
func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "3m 5s", FormatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "2h 0m 7s", FormatDuration(2*time.Hour+7*time.Second))
	assert.Equal(t, "0s", FormatDuration(0))

	// Frações de segundo são arredondadas
	assert.Equal(t, "2s", FormatDuration(1500*time.Millisecond))
}

// TestTimeAgo verifica a descrição de tempo decorrido
func TestTimeAgo(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "30 segundos atrás", TimeAgo(now.Add(-30*time.Second)))
	assert.Equal(t, "5 minutos atrás", TimeAgo(now.Add(-5*time.Minute)))
	assert.Equal(t, "3 horas atrás", TimeAgo(now.Add(-3*time.Hour)))
	assert.Equal(t, "2 dias atrás", TimeAgo(now.Add(-48*time.Hour)))
}
