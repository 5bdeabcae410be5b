package host

import (
	"context"

	"vehprop/backend/internal/core/domain/entity"
)

// Port определяет интерфейс для отправки вызовов игровому хосту.
// Реализация может блокироваться; асинхронность обеспечивает шлюз сервиса.
type Port interface {
	// Send отправляет одно действие с полезной нагрузкой
	Send(ctx context.Context, action Action, payload any) error

	// Close закрывает соединение с хостом
	Close() error
}

// Action - имя исходящего вызова
type Action string

// Исходящие вызовы оверлея
const (
	ActionClose           Action = "close"
	ActionAddProp         Action = "addProp"
	ActionRemoveProp      Action = "removeProp"
	ActionSelectProp      Action = "selectProp"
	ActionClearAll        Action = "clearAll"
	ActionSaveExport      Action = "saveExport"
	ActionSetGizmoMode    Action = "setGizmoMode"
	ActionCheckGizmoClick Action = "checkGizmoClick"
	ActionCheckGizmoHover Action = "checkGizmoHover"
	ActionMoveProp        Action = "moveProp"
	ActionResetAxis       Action = "resetAxis"
	ActionGizmoDragStart  Action = "gizmoDragStart"
	ActionGizmoDrag       Action = "gizmoDrag"
	ActionGizmoDragEnd    Action = "gizmoDragEnd"
	ActionToggleFreecam   Action = "toggleFreecam"
	ActionFreecamKey      Action = "freecamKey"
)

// Empty - пустая полезная нагрузка, сериализуется как {}
type Empty struct{}

// AddPropRequest представляет запрос на добавление пропа
type AddPropRequest struct {
	Model string `json:"model"`
	Label string `json:"label"`
}

// HandleRequest - запрос с одним handle (removeProp, selectProp)
type HandleRequest struct {
	Handle entity.Handle `json:"handle"`
}

// SetGizmoModeRequest представляет смену режима гизмо
type SetGizmoModeRequest struct {
	Mode entity.GizmoMode `json:"mode"`
}

// GizmoProbeRequest - проба попадания для checkGizmoClick и checkGizmoHover
type GizmoProbeRequest struct {
	MouseX  float64 `json:"mouseX"`
	MouseY  float64 `json:"mouseY"`
	ScreenW int     `json:"screenW"`
	ScreenH int     `json:"screenH"`
}

// MovePropRequest представляет пошаговое смещение по оси
type MovePropRequest struct {
	Type      entity.GizmoMode `json:"type"`
	Axis      entity.Axis      `json:"axis"`
	Direction int              `json:"direction"`
}

// ResetAxisRequest представляет сброс значения по оси
type ResetAxisRequest struct {
	Type entity.GizmoMode `json:"type"`
	Axis entity.Axis      `json:"axis"`
}

// GizmoDragStartRequest представляет начало перетаскивания
type GizmoDragStartRequest struct {
	Axis entity.Axis      `json:"axis"`
	Mode entity.GizmoMode `json:"mode"`
}

// GizmoDragRequest - накопленное смещение от начала перетаскивания
type GizmoDragRequest struct {
	Axis   entity.Axis      `json:"axis"`
	DeltaX float64          `json:"deltaX"`
	DeltaY float64          `json:"deltaY"`
	Mode   entity.GizmoMode `json:"mode"`
}

// FreecamKeyRequest представляет нажатие или отпускание клавиши свободной камеры
type FreecamKeyRequest struct {
	Key     string `json:"key"`
	Pressed bool   `json:"pressed"`
}
