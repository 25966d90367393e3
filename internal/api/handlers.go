package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kinect_go/internal/models"
	"kinect_go/internal/motion"
	"kinect_go/internal/redis"
	"kinect_go/pkg/logger"
	"kinect_go/pkg/utils"
)

// Handler contém os handlers HTTP para a API
type Handler struct {
	motionService *motion.Service
	redisService  *redis.Service
}

// NewHandler cria um novo handler de API
func NewHandler(motionService *motion.Service, redisService *redis.Service) *Handler {
	return &Handler{
		motionService: motionService,
		redisService:  redisService,
	}
}

// GetStatus retorna o status atual do monitor
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	var status models.MonitorStatus

	// Se o Redis estiver disponível, tentar obter status de lá
	if h.redisService != nil && h.redisService.IsConnected() {
		redisStatus, err := h.redisService.GetStatus()
		if err == nil && redisStatus != nil {
			status = *redisStatus
		} else {
			// Fallback para o serviço de movimento
			status = h.motionService.GetStatus()
		}
	} else {
		// Usar serviço de movimento diretamente
		status = h.motionService.GetStatus()
	}

	// Formatar resposta
	response := map[string]interface{}{
		"status":    status.Status,
		"state":     status.State.String(),
		"motion":    status.Motion,
		"tiltAngle": status.TiltAngle,
		"timestamp": status.Timestamp.UnixNano() / int64(time.Millisecond),
	}

	// Adicionar informações de erro, se houver
	if status.LastError != "" {
		response["lastError"] = status.LastError
	}
	if status.ErrorCount > 0 {
		response["errorCount"] = status.ErrorCount
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// GetState retorna o estado atual da máquina de movimento
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	state := h.motionService.State()

	response := map[string]interface{}{
		"state":     state.String(),
		"motion":    state == models.StateActive,
		"timestamp": time.Now().UnixNano() / int64(time.Millisecond),
	}

	// Anexar a última avaliação, se houver
	if eval := h.motionService.GetLastEvaluation(); eval != nil {
		response["average"] = eval.Average
		response["threshold"] = eval.Threshold
		response["belowCount"] = eval.BelowCount
		response["lastEvaluation"] = utils.TimeAgo(eval.Timestamp)
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// GetEvaluations retorna as avaliações recentes
func (h *Handler) GetEvaluations(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	evaluations := h.motionService.GetRecentEvaluations()
	if evaluations == nil {
		evaluations = []models.EvaluationResult{}
	}

	h.respondWithJSON(w, http.StatusOK, evaluations)
}

// GetTilt retorna o estado atual do atuador de inclinação
func (h *Handler) GetTilt(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	response := map[string]interface{}{
		"angle":     h.motionService.TiltAngle(),
		"target":    h.motionService.TiltTarget(),
		"centroidY": h.motionService.LastCentroid(),
		"timestamp": time.Now().UnixNano() / int64(time.Millisecond),
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// respondWithError responde com erro em formato JSON
func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON responde com JSON
func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Errorf("Erro ao codificar resposta JSON: %v", err)
		// Se falhar ao codificar JSON, tentar responder com erro simples
		fmt.Fprintf(w, `{"error":"Erro interno ao processar resposta"}`)
	}
}
