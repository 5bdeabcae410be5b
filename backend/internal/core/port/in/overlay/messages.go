package overlay

import (
	"encoding/json"
	"errors"
	"fmt"

	"vehprop/backend/internal/core/domain/entity"
)

var (
	ErrUnknownAction    = errors.New("unknown action")
	ErrMalformedMessage = errors.New("malformed message")
)

// Входящие действия хоста
const (
	ActionOpen               = "open"
	ActionClose              = "close"
	ActionUpdateProps        = "updateProps"
	ActionUpdatePropPosition = "updatePropPosition"
	ActionShowFreecamHint    = "showFreecamHint"
	ActionStartDrag          = "startDrag"
	ActionStopDrag           = "stopDrag"
	ActionSetHoveredAxis     = "setHoveredAxis"
	ActionStart3DDrag        = "start3DDrag"
	ActionStop3DDrag         = "stop3DDrag"
)

// HostMessage - сообщение, присланное хостом.
// Набор реализаций закрыт: каждое действие таблицы имеет свой тип.
type HostMessage interface {
	Action() string
	hostMessage()
}

// OpenMessage показывает оверлей
type OpenMessage struct {
	GizmoMode entity.GizmoMode
}

// CloseMessage скрывает оверлей
type CloseMessage struct{}

// UpdatePropsMessage заменяет список пропов и выделение
type UpdatePropsMessage struct {
	Props        []entity.Prop
	SelectedProp *entity.Handle
}

// UpdatePropPositionMessage обновляет трансформацию одного пропа
type UpdatePropPositionMessage struct {
	Handle   entity.Handle
	Offset   entity.Vector3
	Rotation entity.Vector3
}

// ShowFreecamHintMessage устанавливает флаг свободной камеры
type ShowFreecamHintMessage struct {
	Active bool
}

// StartDragMessage начинает 2D перетаскивание по инициативе хоста
type StartDragMessage struct {
	Axis entity.Axis
}

// StopDragMessage завершает активное перетаскивание
type StopDragMessage struct{}

// SetHoveredAxisMessage устанавливает подсветку оси; nil снимает её
type SetHoveredAxisMessage struct {
	Axis *entity.Axis
}

// Start3DDragMessage начинает 3D перетаскивание с указанной точки
type Start3DDragMessage struct {
	Axis   entity.Axis
	Origin entity.Point2D
}

// Stop3DDragMessage завершает 3D перетаскивание
type Stop3DDragMessage struct{}

func (OpenMessage) Action() string               { return ActionOpen }
func (CloseMessage) Action() string              { return ActionClose }
func (UpdatePropsMessage) Action() string        { return ActionUpdateProps }
func (UpdatePropPositionMessage) Action() string { return ActionUpdatePropPosition }
func (ShowFreecamHintMessage) Action() string    { return ActionShowFreecamHint }
func (StartDragMessage) Action() string          { return ActionStartDrag }
func (StopDragMessage) Action() string           { return ActionStopDrag }
func (SetHoveredAxisMessage) Action() string     { return ActionSetHoveredAxis }
func (Start3DDragMessage) Action() string        { return ActionStart3DDrag }
func (Stop3DDragMessage) Action() string         { return ActionStop3DDrag }

func (OpenMessage) hostMessage()               {}
func (CloseMessage) hostMessage()              {}
func (UpdatePropsMessage) hostMessage()        {}
func (UpdatePropPositionMessage) hostMessage() {}
func (ShowFreecamHintMessage) hostMessage()    {}
func (StartDragMessage) hostMessage()          {}
func (StopDragMessage) hostMessage()           {}
func (SetHoveredAxisMessage) hostMessage()     {}
func (Start3DDragMessage) hostMessage()        {}
func (Stop3DDragMessage) hostMessage()         {}

// hostEnvelope - общая часть входящих сообщений
type hostEnvelope struct {
	Action string `json:"action"`
}

// Поля конкретных действий. Разбираются только после определения action,
// поэтому чужие поля сообщения не влияют на результат.
type (
	openFields struct {
		GizmoMode string `json:"gizmoMode"`
	}
	updatePropsFields struct {
		Props        []entity.Prop  `json:"props"`
		SelectedProp *entity.Handle `json:"selectedProp"`
	}
	propPositionFields struct {
		Handle   entity.Handle  `json:"handle"`
		Offset   entity.Vector3 `json:"offset"`
		Rotation entity.Vector3 `json:"rotation"`
	}
	freecamHintFields struct {
		Active bool `json:"active"`
	}
	axisFields struct {
		Axis *string `json:"axis"`
	}
	drag3DFields struct {
		Axis   *string `json:"axis"`
		MouseX float64 `json:"mouseX"`
		MouseY float64 `json:"mouseY"`
	}
)

func decodeFields(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return nil
}

// DecodeHostMessage разбирает входящее сообщение хоста по полю action
func DecodeHostMessage(data []byte) (HostMessage, error) {
	var env hostEnvelope
	if err := decodeFields(data, &env); err != nil {
		return nil, err
	}

	switch env.Action {
	case ActionOpen:
		var f openFields
		if err := decodeFields(data, &f); err != nil {
			return nil, err
		}
		mode, err := entity.ParseGizmoMode(f.GizmoMode)
		if err != nil {
			mode = entity.ModeTranslate
		}
		return OpenMessage{GizmoMode: mode}, nil

	case ActionClose:
		return CloseMessage{}, nil

	case ActionUpdateProps:
		var f updatePropsFields
		if err := decodeFields(data, &f); err != nil {
			return nil, err
		}
		props := f.Props
		if props == nil {
			props = []entity.Prop{}
		}
		return UpdatePropsMessage{Props: props, SelectedProp: f.SelectedProp}, nil

	case ActionUpdatePropPosition:
		var f propPositionFields
		if err := decodeFields(data, &f); err != nil {
			return nil, err
		}
		return UpdatePropPositionMessage{
			Handle:   f.Handle,
			Offset:   f.Offset,
			Rotation: f.Rotation,
		}, nil

	case ActionShowFreecamHint:
		var f freecamHintFields
		if err := decodeFields(data, &f); err != nil {
			return nil, err
		}
		return ShowFreecamHintMessage{Active: f.Active}, nil

	case ActionStartDrag:
		var f axisFields
		if err := decodeFields(data, &f); err != nil {
			return nil, err
		}
		axis, err := requireAxis(f.Axis)
		if err != nil {
			return nil, err
		}
		return StartDragMessage{Axis: axis}, nil

	case ActionStopDrag:
		return StopDragMessage{}, nil

	case ActionSetHoveredAxis:
		var f axisFields
		if err := decodeFields(data, &f); err != nil {
			return nil, err
		}
		if f.Axis == nil || *f.Axis == "" {
			return SetHoveredAxisMessage{}, nil
		}
		axis, err := requireAxis(f.Axis)
		if err != nil {
			return nil, err
		}
		return SetHoveredAxisMessage{Axis: &axis}, nil

	case ActionStart3DDrag:
		var f drag3DFields
		if err := decodeFields(data, &f); err != nil {
			return nil, err
		}
		axis, err := requireAxis(f.Axis)
		if err != nil {
			return nil, err
		}
		return Start3DDragMessage{
			Axis:   axis,
			Origin: entity.Point2D{X: f.MouseX, Y: f.MouseY},
		}, nil

	case ActionStop3DDrag:
		return Stop3DDragMessage{}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Action)
}

func requireAxis(s *string) (entity.Axis, error) {
	if s == nil {
		return "", fmt.Errorf("%w: missing axis", ErrMalformedMessage)
	}
	axis, err := entity.ParseAxis(*s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return axis, nil
}
