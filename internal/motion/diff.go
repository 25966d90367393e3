package motion

import (
	"kinect_go/internal/config"
	"kinect_go/internal/models"
)

// maskValue é o valor atribuído a cada pixel marcado na máscara binária.
// A métrica de mudança é a soma da máscara, então um pixel alterado
// contribui com 255 — mesma escala dos limiares herdados (baixos milhões)
const maskValue = 255

// Differ converte pares de quadros consecutivos em uma métrica escalar de
// mudança e uma máscara espacial, alimentando a janela deslizante. Mantém
// apenas o quadro anterior; o anterior é descartado a cada observação
type Differ struct {
	diffThreshold uint8
	window        *SlidingWindow
	prev          *models.DepthFrame
}

// NewDiffer cria um novo motor de diferenciação de quadros
func NewDiffer(cfg config.MotionConfig) *Differ {
	return &Differ{
		diffThreshold: cfg.DiffThreshold,
		window:        NewSlidingWindow(cfg.WindowCapacity),
	}
}

// Observe consome um quadro. Na primeira chamada apenas armazena o quadro e
// retorna ok=false. Nas seguintes, calcula a diferença absoluta por amostra
// contra o quadro anterior, aplica o limiar de intensidade para obter a
// máscara binária, soma a máscara como métrica e a anexa à janela
func (d *Differ) Observe(frame *models.DepthFrame) (int64, *models.ChangeMask, bool) {
	if frame == nil || !frame.Valid() {
		return 0, nil, false
	}

	prev := d.prev
	d.prev = frame

	if prev == nil {
		return 0, nil, false
	}

	// Mudança de modo do sensor: dimensões diferentes invalidam o par
	if prev.Width != frame.Width || prev.Height != frame.Height {
		return 0, nil, false
	}

	mask := &models.ChangeMask{
		Width:   frame.Width,
		Height:  frame.Height,
		RowMass: make([]int64, frame.Height),
	}

	for y := 0; y < frame.Height; y++ {
		row := y * frame.Width
		var rowMass int64
		for x := 0; x < frame.Width; x++ {
			cur := frame.Samples[row+x]
			old := prev.Samples[row+x]

			var diff uint8
			if cur >= old {
				diff = cur - old
			} else {
				diff = old - cur
			}

			if diff > d.diffThreshold {
				rowMass += maskValue
			}
		}
		mask.RowMass[y] = rowMass
		mask.Mass += rowMass
	}

	metric := mask.Mass
	d.window.Append(metric)

	return metric, mask, true
}

// Window retorna a janela deslizante alimentada pelo motor
func (d *Differ) Window() *SlidingWindow {
	return d.window
}

// Reset descarta o quadro anterior; a próxima observação volta a ser
// tratada como primeira
func (d *Differ) Reset() {
	d.prev = nil
}
