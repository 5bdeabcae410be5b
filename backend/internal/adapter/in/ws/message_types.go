package ws

import (
	"encoding/json"
	"time"

	"vehprop/backend/internal/core/domain/entity"
	"vehprop/backend/internal/core/port/in/overlay"
)

// Типы сообщений, которые адаптер отправляет представлению
const (
	MessageTypeState = "state" // Снимок состояния оверлея
	MessageTypePing  = "ping"  // Пинг от клиента
	MessageTypePong  = "pong"  // Ответ на пинг
)

// GetCurrentServerTime возвращает текущее серверное время в миллисекундах
func GetCurrentServerTime() int64 {
	return time.Now().UnixMilli()
}

// StateMessage - снимок состояния, поля ViewState лежат на верхнем уровне
type StateMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	overlay.ViewState
}

// NewStateMessage создает сообщение со снимком
func NewStateMessage(v overlay.ViewState) StateMessage {
	if v.Props == nil {
		v.Props = []entity.Prop{}
	}
	return StateMessage{Type: MessageTypeState, ServerTime: GetCurrentServerTime(), ViewState: v}
}

// PongMessage - ответ на пинг
type PongMessage struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"clientTime"`
	ServerTime int64   `json:"serverTime"`
}

// NewPongMessage создает новое сообщение-ответ на пинг
func NewPongMessage(clientTime float64) PongMessage {
	return PongMessage{Type: MessageTypePong, ClientTime: clientTime, ServerTime: GetCurrentServerTime()}
}

type pingProbe struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"clientTime"`
}

// parsePing проверяет, является ли кадр пингом
func parsePing(data []byte) (float64, bool) {
	var p pingProbe
	if err := json.Unmarshal(data, &p); err != nil || p.Type != MessageTypePing {
		return 0, false
	}
	return p.ClientTime, true
}
