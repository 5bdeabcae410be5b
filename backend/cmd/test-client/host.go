package main

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"vehprop/backend/internal/core/domain/entity"
	portHost "vehprop/backend/internal/core/port/out/host"
	"vehprop/backend/internal/logging"
)

// dragScale - сколько метров или градусов дает один пиксель перетаскивания
const dragScale = 0.01

// fakeHost имитирует игровой клиент: хранит пропы, отвечает на вызовы
// оверлея и присылает сообщения обратно через emit
type fakeHost struct {
	mu       sync.Mutex
	props    []entity.Prop
	selected *entity.Handle
	mode     entity.GizmoMode
	freecam  bool
	nextID   entity.Handle

	// Трансформация пропа в момент начала перетаскивания
	dragBase *entity.Prop

	emit func(msg map[string]any) error
	log  logging.Logger
}

func newFakeHost(emit func(map[string]any) error, log logging.Logger) *fakeHost {
	first := entity.Handle(1)
	props := entity.SampleProps()
	return &fakeHost{
		props:    props,
		selected: &first,
		mode:     entity.ModeTranslate,
		nextID:   entity.Handle(len(props) + 1),
		emit:     emit,
		log:      logging.OrNop(log),
	}
}

// Open присылает оверлею open и текущий список пропов
func (h *fakeHost) Open() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.emit(map[string]any{"action": "open", "gizmoMode": h.mode}); err != nil {
		return err
	}
	return h.pushPropsLocked()
}

func (h *fakeHost) pushPropsLocked() error {
	return h.emit(map[string]any{
		"action":       "updateProps",
		"props":        append([]entity.Prop{}, h.props...),
		"selectedProp": h.selected,
	})
}

func (h *fakeHost) findLocked(handle entity.Handle) int {
	for i, p := range h.props {
		if p.Handle == handle {
			return i
		}
	}
	return -1
}

// Handle обрабатывает один вызов оверлея
func (h *fakeHost) Handle(action portHost.Action, payload json.RawMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.log.Infof("<- %s %s", action, payload)

	switch action {
	case portHost.ActionAddProp:
		var req portHost.AddPropRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decode %s: %w", action, err)
		}
		p := entity.NewProp(h.nextID, req.Model)
		if req.Label != "" {
			p.Label = req.Label
		}
		h.nextID++
		h.props = append(h.props, p)
		h.selected = &p.Handle
		return h.pushPropsLocked()

	case portHost.ActionRemoveProp:
		var req portHost.HandleRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decode %s: %w", action, err)
		}
		if i := h.findLocked(req.Handle); i >= 0 {
			h.props = append(h.props[:i], h.props[i+1:]...)
		}
		if h.selected != nil && *h.selected == req.Handle {
			h.selected = nil
		}
		return h.pushPropsLocked()

	case portHost.ActionSelectProp:
		var req portHost.HandleRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decode %s: %w", action, err)
		}
		if h.findLocked(req.Handle) >= 0 {
			sel := req.Handle
			h.selected = &sel
		}
		return h.pushPropsLocked()

	case portHost.ActionClearAll:
		h.props = nil
		h.selected = nil
		return h.pushPropsLocked()

	case portHost.ActionSetGizmoMode:
		var req portHost.SetGizmoModeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decode %s: %w", action, err)
		}
		h.mode = req.Mode
		return h.emit(map[string]any{"action": "open", "gizmoMode": h.mode})

	case portHost.ActionCheckGizmoClick:
		var req portHost.GizmoProbeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decode %s: %w", action, err)
		}
		// Любой клик по миру считается попаданием в ось X
		if h.selected == nil {
			return nil
		}
		return h.emit(map[string]any{
			"action": "start3DDrag", "axis": entity.AxisX,
			"mouseX": req.MouseX, "mouseY": req.MouseY,
		})

	case portHost.ActionCheckGizmoHover:
		var req portHost.GizmoProbeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decode %s: %w", action, err)
		}
		var axis *entity.Axis
		if req.ScreenW > 0 && req.MouseX > float64(req.ScreenW)/2 {
			x := entity.AxisX
			axis = &x
		}
		return h.emit(map[string]any{"action": "setHoveredAxis", "axis": axis})

	case portHost.ActionMoveProp:
		var req portHost.MovePropRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decode %s: %w", action, err)
		}
		step := 0.1
		if req.Type == entity.ModeRotate {
			step = 15
		}
		return h.nudgeLocked(req.Type, req.Axis, step*float64(req.Direction), false)

	case portHost.ActionResetAxis:
		var req portHost.ResetAxisRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decode %s: %w", action, err)
		}
		return h.nudgeLocked(req.Type, req.Axis, 0, true)

	case portHost.ActionGizmoDragStart:
		if h.selected != nil {
			if i := h.findLocked(*h.selected); i >= 0 {
				base := h.props[i]
				h.dragBase = &base
			}
		}
		return nil

	case portHost.ActionGizmoDrag:
		var req portHost.GizmoDragRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decode %s: %w", action, err)
		}
		return h.dragLocked(req)

	case portHost.ActionGizmoDragEnd:
		h.dragBase = nil
		return nil

	case portHost.ActionToggleFreecam:
		h.freecam = !h.freecam
		return h.emit(map[string]any{"action": "showFreecamHint", "active": h.freecam})

	case portHost.ActionClose:
		h.freecam = false
		return nil

	case portHost.ActionSaveExport, portHost.ActionFreecamKey:
		return nil
	}

	return fmt.Errorf("unsupported action %s", action)
}

// dragLocked применяет накопленное смещение к трансформации начала перетаскивания
func (h *fakeHost) dragLocked(req portHost.GizmoDragRequest) error {
	if h.dragBase == nil {
		if h.selected == nil {
			return nil
		}
		i := h.findLocked(*h.selected)
		if i < 0 {
			return nil
		}
		base := h.props[i]
		h.dragBase = &base
	}
	i := h.findLocked(h.dragBase.Handle)
	if i < 0 {
		return nil
	}

	amount := (req.DeltaX - req.DeltaY) * dragScale
	dir := axisVec(req.Axis).Mul(amount)
	p := &h.props[i]
	if req.Mode == entity.ModeRotate {
		p.Rotation = entity.Vector3FromVec3(h.dragBase.Rotation.Vec3().Add(dir.Mul(100)))
	} else {
		p.Offset = entity.Vector3FromVec3(h.dragBase.Offset.Vec3().Add(dir))
	}
	return h.pushPositionLocked(*p)
}

func (h *fakeHost) nudgeLocked(mode entity.GizmoMode, axis entity.Axis, amount float64, reset bool) error {
	if h.selected == nil {
		return nil
	}
	i := h.findLocked(*h.selected)
	if i < 0 {
		return nil
	}
	p := &h.props[i]
	target := &p.Offset
	if mode == entity.ModeRotate {
		target = &p.Rotation
	}
	v := target.Vec3()
	if reset {
		// Обнуляем только выбранную компоненту
		mask := mgl64.Vec3{1, 1, 1}.Sub(axisVec(axis))
		v = mgl64.Vec3{v.X() * mask.X(), v.Y() * mask.Y(), v.Z() * mask.Z()}
	} else {
		v = v.Add(axisVec(axis).Mul(amount))
	}
	*target = entity.Vector3FromVec3(v)
	return h.pushPositionLocked(*p)
}

func (h *fakeHost) pushPositionLocked(p entity.Prop) error {
	return h.emit(map[string]any{
		"action":   "updatePropPosition",
		"handle":   p.Handle,
		"offset":   p.Offset,
		"rotation": p.Rotation,
	})
}

func axisVec(axis entity.Axis) mgl64.Vec3 {
	switch axis {
	case entity.AxisX:
		return mgl64.Vec3{1, 0, 0}
	case entity.AxisY:
		return mgl64.Vec3{0, 1, 0}
	case entity.AxisZ:
		return mgl64.Vec3{0, 0, 1}
	}
	return mgl64.Vec3{}
}
