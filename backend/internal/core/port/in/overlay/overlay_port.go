package overlay

import (
	"context"

	"vehprop/backend/internal/core/domain/entity"
)

// Port определяет интерфейс, через который адаптеры управляют оверлеем
type Port interface {
	// PostHost ставит сообщение хоста в очередь обработки
	PostHost(ctx context.Context, msg HostMessage) error

	// PostInput ставит событие ввода в очередь обработки
	PostInput(ctx context.Context, ev InputEvent) error

	// Snapshot возвращает последнее опубликованное состояние
	Snapshot() ViewState

	// Subscribe регистрирует наблюдателя; возвращаемая функция отменяет подписку
	Subscribe(fn func(ViewState)) (unsubscribe func())
}

// DragKind - источник перетаскивания
type DragKind string

const (
	DragKind2D DragKind = "2d"
	DragKind3D DragKind = "3d"
)

// DragView - описание активного перетаскивания для представления
type DragView struct {
	ID     string           `json:"id"`
	Kind   DragKind         `json:"kind"`
	Axis   entity.Axis      `json:"axis"`
	Mode   entity.GizmoMode `json:"mode"`
	Origin entity.Point2D   `json:"origin"`
}

// ViewState - неизменяемый снимок состояния оверлея
type ViewState struct {
	IsOpen             bool             `json:"isOpen"`
	Detached           bool             `json:"detached"`
	Props              []entity.Prop    `json:"props"`
	SelectedProp       *entity.Handle   `json:"selectedProp"`
	SelectionConfirmed bool             `json:"selectionConfirmed"`
	GizmoMode          entity.GizmoMode `json:"gizmoMode"`
	ModeConfirmed      bool             `json:"modeConfirmed"`
	HoveredAxis        *entity.Axis     `json:"hoveredAxis"`
	FreecamActive      bool             `json:"freecamActive"`
	GizmoVisible       bool             `json:"gizmoVisible"`
	Drag               *DragView        `json:"drag"`
}

// SelectedPropData возвращает данные выбранного пропа
func (v ViewState) SelectedPropData() (entity.Prop, bool) {
	if v.SelectedProp == nil {
		return entity.Prop{}, false
	}
	for _, p := range v.Props {
		if p.Handle == *v.SelectedProp {
			return p, true
		}
	}
	return entity.Prop{}, false
}
