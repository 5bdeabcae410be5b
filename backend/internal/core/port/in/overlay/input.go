package overlay

import (
	"fmt"
	"strings"

	"vehprop/backend/internal/core/domain/entity"
)

// Типы событий ввода от представления
const (
	InputPointerDown = "pointerDown"
	InputPointerMove = "pointerMove"
	InputPointerUp   = "pointerUp"
	InputKeyDown     = "keyDown"
	InputKeyUp       = "keyUp"
	InputAddProp     = "addProp"
	InputRemoveProp  = "removeProp"
	InputSelectProp  = "selectProp"
	InputClearAll    = "clearAll"
	InputSaveExport  = "saveExport"
	InputSetMode     = "setGizmoMode"
	InputMoveProp    = "moveProp"
	InputResetAxis   = "resetAxis"
	InputClose       = "close"
)

// PointerTarget - элемент, над которым находится указатель
type PointerTarget string

const (
	// TargetSurface - поверхность гизмо поверх мира
	TargetSurface PointerTarget = "surface"
	// TargetAxisZone - зона перетаскивания оси на панели
	TargetAxisZone PointerTarget = "axisZone"
	// TargetPanel - любой другой элемент панели
	TargetPanel PointerTarget = "panel"
)

// ScreenSize - размер окна представления в пикселях
type ScreenSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

// InputEvent - событие ввода или действие пользователя на панели
type InputEvent interface {
	InputType() string
	inputEvent()
}

// PointerDown - нажатие кнопки указателя
type PointerDown struct {
	Pos    entity.Point2D
	Target PointerTarget
	Axis   entity.Axis // только для TargetAxisZone
	Screen ScreenSize
}

// PointerMove - перемещение указателя
type PointerMove struct {
	Pos    entity.Point2D
	Target PointerTarget
	Screen ScreenSize
}

// PointerUp - отпускание кнопки указателя в любом месте окна
type PointerUp struct {
	Pos entity.Point2D
}

// KeyDown - нажатие клавиши, Key в формате KeyboardEvent.key
type KeyDown struct {
	Key string
}

// KeyUp - отпускание клавиши
type KeyUp struct {
	Key string
}

// AddProp - запрос на добавление пропа по имени модели
type AddProp struct {
	Model string
}

// RemoveProp - удаление пропа
type RemoveProp struct {
	Handle entity.Handle
}

// SelectProp - выбор пропа в списке
type SelectProp struct {
	Handle entity.Handle
}

// ClearAll - удаление всех пропов
type ClearAll struct{}

// SaveExport - сохранение в JSON на стороне хоста
type SaveExport struct{}

// SetMode - переключение режима гизмо
type SetMode struct {
	Mode entity.GizmoMode
}

// MoveProp - пошаговое смещение кнопками -/+
type MoveProp struct {
	Axis      entity.Axis
	Direction int
}

// ResetAxis - сброс значения по оси
type ResetAxis struct {
	Axis entity.Axis
}

// CloseRequest - закрытие кнопкой на панели
type CloseRequest struct{}

func (PointerDown) InputType() string  { return InputPointerDown }
func (PointerMove) InputType() string  { return InputPointerMove }
func (PointerUp) InputType() string    { return InputPointerUp }
func (KeyDown) InputType() string      { return InputKeyDown }
func (KeyUp) InputType() string        { return InputKeyUp }
func (AddProp) InputType() string      { return InputAddProp }
func (RemoveProp) InputType() string   { return InputRemoveProp }
func (SelectProp) InputType() string   { return InputSelectProp }
func (ClearAll) InputType() string     { return InputClearAll }
func (SaveExport) InputType() string   { return InputSaveExport }
func (SetMode) InputType() string      { return InputSetMode }
func (MoveProp) InputType() string     { return InputMoveProp }
func (ResetAxis) InputType() string    { return InputResetAxis }
func (CloseRequest) InputType() string { return InputClose }

func (PointerDown) inputEvent()  {}
func (PointerMove) inputEvent()  {}
func (PointerUp) inputEvent()    {}
func (KeyDown) inputEvent()      {}
func (KeyUp) inputEvent()        {}
func (AddProp) inputEvent()      {}
func (RemoveProp) inputEvent()   {}
func (SelectProp) inputEvent()   {}
func (ClearAll) inputEvent()     {}
func (SaveExport) inputEvent()   {}
func (SetMode) inputEvent()      {}
func (MoveProp) inputEvent()     {}
func (ResetAxis) inputEvent()    {}
func (CloseRequest) inputEvent() {}

type inputEnvelope struct {
	Type string `json:"type"`
}

type (
	pointerFields struct {
		X       float64 `json:"x"`
		Y       float64 `json:"y"`
		Target  string  `json:"target"`
		Axis    string  `json:"axis"`
		ScreenW int     `json:"screenW"`
		ScreenH int     `json:"screenH"`
	}
	keyFields struct {
		Key string `json:"key"`
	}
	modelFields struct {
		Model string `json:"model"`
	}
	handleFields struct {
		Handle entity.Handle `json:"handle"`
	}
	modeFields struct {
		Mode string `json:"mode"`
	}
	axisStepFields struct {
		Axis      string `json:"axis"`
		Direction int    `json:"direction"`
	}
)

func (f pointerFields) pos() entity.Point2D {
	return entity.Point2D{X: f.X, Y: f.Y}
}

func (f pointerFields) screen() ScreenSize {
	return ScreenSize{W: f.ScreenW, H: f.ScreenH}
}

func parseAxisField(s string) (entity.Axis, error) {
	axis, err := entity.ParseAxis(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return axis, nil
}

// DecodeInputEvent разбирает событие, присланное представлением
func DecodeInputEvent(data []byte) (InputEvent, error) {
	var env inputEnvelope
	if err := decodeFields(data, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case InputPointerDown, InputPointerMove, InputPointerUp:
		var f pointerFields
		if err := decodeFields(data, &f); err != nil {
			return nil, err
		}
		switch env.Type {
		case InputPointerDown:
			ev := PointerDown{Pos: f.pos(), Target: parseTarget(f.Target), Screen: f.screen()}
			if ev.Target == TargetAxisZone {
				axis, err := parseAxisField(f.Axis)
				if err != nil {
					return nil, err
				}
				ev.Axis = axis
			}
			return ev, nil
		case InputPointerMove:
			return PointerMove{Pos: f.pos(), Target: parseTarget(f.Target), Screen: f.screen()}, nil
		default:
			return PointerUp{Pos: f.pos()}, nil
		}

	case InputKeyDown, InputKeyUp:
		var f keyFields
		if err := decodeFields(data, &f); err != nil {
			return nil, err
		}
		if env.Type == InputKeyDown {
			return KeyDown{Key: f.Key}, nil
		}
		return KeyUp{Key: f.Key}, nil

	case InputAddProp:
		var f modelFields
		if err := decodeFields(data, &f); err != nil {
			return nil, err
		}
		return AddProp{Model: f.Model}, nil

	case InputRemoveProp, InputSelectProp:
		var f handleFields
		if err := decodeFields(data, &f); err != nil {
			return nil, err
		}
		if env.Type == InputRemoveProp {
			return RemoveProp{Handle: f.Handle}, nil
		}
		return SelectProp{Handle: f.Handle}, nil

	case InputClearAll:
		return ClearAll{}, nil

	case InputSaveExport:
		return SaveExport{}, nil

	case InputSetMode:
		var f modeFields
		if err := decodeFields(data, &f); err != nil {
			return nil, err
		}
		mode, err := entity.ParseGizmoMode(f.Mode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return SetMode{Mode: mode}, nil

	case InputMoveProp, InputResetAxis:
		var f axisStepFields
		if err := decodeFields(data, &f); err != nil {
			return nil, err
		}
		axis, err := parseAxisField(f.Axis)
		if err != nil {
			return nil, err
		}
		if env.Type == InputResetAxis {
			return ResetAxis{Axis: axis}, nil
		}
		if f.Direction != 1 && f.Direction != -1 {
			return nil, fmt.Errorf("%w: direction %d", ErrMalformedMessage, f.Direction)
		}
		return MoveProp{Axis: axis, Direction: f.Direction}, nil

	case InputClose:
		return CloseRequest{}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
}

func parseTarget(s string) PointerTarget {
	switch PointerTarget(strings.TrimSpace(s)) {
	case TargetSurface:
		return TargetSurface
	case TargetAxisZone:
		return TargetAxisZone
	}
	return TargetPanel
}
