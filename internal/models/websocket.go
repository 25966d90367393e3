package models

import "time"

// WebSocketMessage representa a estrutura base de todas as mensagens WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"`            // Tipo da mensagem: "evaluation", "motion", "tilt", etc.
	Timestamp time.Time   `json:"timestamp"`       // Timestamp da mensagem
	Data      interface{} `json:"data,omitempty"`  // Dados adicionais específicos do tipo
	Error     string      `json:"error,omitempty"` // Mensagem de erro, se houver
}

// EvaluationMessage é uma mensagem específica para resultados de avaliação
type EvaluationMessage struct {
	WebSocketMessage
	Average    float64 `json:"average"`
	Samples    int     `json:"samples"`
	Threshold  int64   `json:"threshold"`
	State      string  `json:"state"`
	BelowCount int     `json:"belowCount"`
}

// MotionEventMessage é uma mensagem específica para eventos de movimento
type MotionEventMessage struct {
	WebSocketMessage
	Motion  bool    `json:"motion"`
	Average float64 `json:"average"`
}

// TiltMessage é uma mensagem específica para o ângulo do atuador
type TiltMessage struct {
	WebSocketMessage
	Angle     float64 `json:"angle"`
	CentroidY int     `json:"centroidY"`
}

// StatusMessage é uma mensagem específica para atualizações de status
type StatusMessage struct {
	WebSocketMessage
	Status     string `json:"status"`
	State      string `json:"state"`
	LastError  string `json:"lastError,omitempty"`
	ErrorCount int    `json:"errorCount,omitempty"`
}

// CommandMessage é uma mensagem de comando do cliente para o servidor
type CommandMessage struct {
	Type   string      `json:"type"`             // Tipo de comando: "get_status", "ping", etc.
	Params interface{} `json:"params,omitempty"` // Parâmetros adicionais
	ID     string      `json:"id,omitempty"`     // ID opcional para correlacionar solicitações/respostas
}

// ClientCommand representa um comando enviado pelo cliente
type ClientCommand struct {
	Command  string      `json:"command"`
	Params   interface{} `json:"params,omitempty"`
	ClientID string      `json:"-"` // Usado internamente, não enviado no JSON
}

// PingMessage representa um ping enviado pelo cliente
type PingMessage struct {
	WebSocketMessage
	Time int64 `json:"time"` // Timestamp em milissegundos
}

// PongMessage representa um pong enviado pelo servidor
type PongMessage struct {
	WebSocketMessage
	Time       int64 `json:"time"`       // Timestamp original do ping
	ServerTime int64 `json:"serverTime"` // Timestamp do servidor em milissegundos
}
