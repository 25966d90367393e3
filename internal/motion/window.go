package motion

// defaultWindowCapacity é a capacidade usada quando a configuração não define
const defaultWindowCapacity = 30

// SlidingWindow é uma sequência ordenada de métricas de mudança com
// capacidade fixa e descarte FIFO: quando cheia, a amostra mais antiga é
// removida. Invariante: len ≤ capacidade
type SlidingWindow struct {
	capacity int
	values   []int64
}

// NewSlidingWindow cria uma janela deslizante com a capacidade dada
func NewSlidingWindow(capacity int) *SlidingWindow {
	if capacity <= 0 {
		capacity = defaultWindowCapacity
	}
	return &SlidingWindow{
		capacity: capacity,
		values:   make([]int64, 0, capacity),
	}
}

// Append adiciona uma métrica à janela, descartando a mais antiga se a
// capacidade for excedida
func (w *SlidingWindow) Append(value int64) {
	if len(w.values) >= w.capacity {
		w.values = w.values[1:]
	}
	w.values = append(w.values, value)
}

// Average retorna a média das métricas atuais; false quando a janela está
// vazia
func (w *SlidingWindow) Average() (float64, bool) {
	if len(w.values) == 0 {
		return 0, false
	}

	var sum int64
	for _, v := range w.values {
		sum += v
	}

	return float64(sum) / float64(len(w.values)), true
}

// Len retorna o número de métricas na janela
func (w *SlidingWindow) Len() int {
	return len(w.values)
}

// Capacity retorna a capacidade configurada
func (w *SlidingWindow) Capacity() int {
	return w.capacity
}

// Values retorna uma cópia das métricas em ordem de chegada
func (w *SlidingWindow) Values() []int64 {
	out := make([]int64, len(w.values))
	copy(out, w.values)
	return out
}

// Clear esvazia a janela; cada ciclo de avaliação é auto-contido e não
// reaproveita amostras de ciclos anteriores
func (w *SlidingWindow) Clear() {
	w.values = w.values[:0]
}
