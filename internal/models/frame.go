package models

import "time"

// DepthFrame representa um quadro de profundidade capturado pelo sensor.
// As amostras são intensidades de 8 bits (profundidade truncada), varridas
// linha a linha
type DepthFrame struct {
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Timestamp time.Time `json:"timestamp"`
	Samples   []uint8   `json:"-"`
}

// At retorna a amostra na posição (x, y)
func (f *DepthFrame) At(x, y int) uint8 {
	return f.Samples[y*f.Width+x]
}

// Valid verifica se as dimensões do quadro são consistentes com as amostras
func (f *DepthFrame) Valid() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Samples) == f.Width*f.Height
}

// ChangeMask é a máscara binária de mudança entre dois quadros consecutivos.
// Guarda apenas os momentos necessários para o centróide vertical: a massa
// por linha (m01 em partes) e a massa total (m00)
type ChangeMask struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	RowMass []int64 `json:"-"`
	Mass    int64   `json:"mass"`
}

// CentroidY retorna a linha do centróide vertical da máscara. Retorna false
// quando a máscara tem massa zero (centróide indefinido)
func (m *ChangeMask) CentroidY() (int, bool) {
	if m.Mass == 0 {
		return 0, false
	}

	var weighted int64
	for y, mass := range m.RowMass {
		weighted += int64(y) * mass
	}

	return int(weighted / m.Mass), true
}
