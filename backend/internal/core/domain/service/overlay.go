package service

import (
	"strings"

	"vehprop/backend/internal/core/domain/entity"
	"vehprop/backend/internal/core/port/in/overlay"
	"vehprop/backend/internal/core/port/out/host"
	"vehprop/backend/internal/logging"
)

// Options - параметры оверлея
type Options struct {
	Detached      bool
	DragThreshold float64
	ToggleKey     string
	CloseKey      string
	DefaultScreen overlay.ScreenSize
	Logger        logging.Logger
}

// Overlay - автомат состояния оверлея.
// Не потокобезопасен: все вызовы выполняются из одного цикла событий.
type Overlay struct {
	opts   Options
	log    logging.Logger
	sender Sender

	isOpen      bool
	props       *entity.PropList
	selection   Selection
	mode        ModeState
	hoveredAxis *entity.Axis
	lastPointer entity.Point2D

	listeners *Listeners
	drag      *DragMachine
	freecam   *Freecam
}

// NewOverlay создает оверлей. В автономном режиме он сразу открыт
// и заполнен демонстрационными пропами.
func NewOverlay(sender Sender, opts Options) *Overlay {
	log := logging.OrNop(opts.Logger)
	listeners := NewListeners()

	o := &Overlay{
		opts:      opts,
		log:       log,
		sender:    sender,
		props:     entity.NewPropList(nil),
		mode:      NewModeState(),
		listeners: listeners,
		drag:      NewDragMachine(sender, listeners, opts.DragThreshold, log),
	}
	o.freecam = NewFreecam(sender, listeners, opts.ToggleKey, opts.CloseKey, o.hide)

	if opts.Detached {
		o.props.Replace(entity.SampleProps())
		first := entity.Handle(1)
		o.selection.Confirm(&first)
		o.show()
	}
	return o
}

// ActiveListeners возвращает число активных глобальных подписок
func (o *Overlay) ActiveListeners() int {
	return o.listeners.Count()
}

// Dragging сообщает, активно ли перетаскивание
func (o *Overlay) Dragging() bool {
	return o.drag.Active()
}

func (o *Overlay) show() {
	o.isOpen = true
	o.freecam.Attach()
}

// hide закрывает оверлей, сбрасывает перетаскивание и все подписки
func (o *Overlay) hide() {
	o.drag.Cancel()
	o.freecam.Detach()
	o.hoveredAxis = nil
	o.isOpen = false
}

func (o *Overlay) selected() (*entity.Handle, bool) {
	return o.selection.Effective(o.props)
}

// HandleInput обрабатывает событие ввода от представления
func (o *Overlay) HandleInput(ev overlay.InputEvent) {
	switch e := ev.(type) {
	case overlay.PointerDown:
		o.lastPointer = e.Pos
		o.pointerDown(e)
	case overlay.PointerMove:
		o.lastPointer = e.Pos
		if o.listeners.Dispatch(overlay.InputPointerMove, e) {
			return
		}
		if e.Target == overlay.TargetSurface {
			o.probe(host.ActionCheckGizmoHover, e.Pos, e.Screen)
		}
	case overlay.PointerUp:
		o.lastPointer = e.Pos
		o.listeners.Dispatch(overlay.InputPointerUp, e)
	case overlay.KeyDown:
		o.listeners.Dispatch(overlay.InputKeyDown, e)
	case overlay.KeyUp:
		o.listeners.Dispatch(overlay.InputKeyUp, e)
	default:
		if !o.isOpen {
			o.log.Debugf("%s ignored: overlay closed", ev.InputType())
			return
		}
		o.panelAction(ev)
	}
}

func (o *Overlay) pointerDown(e overlay.PointerDown) {
	if !o.isOpen {
		return
	}
	switch e.Target {
	case overlay.TargetAxisZone:
		if _, ok := o.selected(); !ok {
			return
		}
		o.drag.BeginLocal(e.Axis, o.mode.Current(), e.Pos)
	case overlay.TargetSurface:
		o.probe(host.ActionCheckGizmoClick, e.Pos, e.Screen)
	}
}

// probe отправляет хосту проверку попадания в гизмо
func (o *Overlay) probe(action host.Action, pos entity.Point2D, screen overlay.ScreenSize) {
	if !o.isOpen || o.drag.Active() || o.freecam.Active() {
		return
	}
	if _, ok := o.selected(); !ok {
		return
	}
	if screen.W <= 0 || screen.H <= 0 {
		screen = o.opts.DefaultScreen
	}
	o.sender.Send(action, host.GizmoProbeRequest{
		MouseX:  pos.X,
		MouseY:  pos.Y,
		ScreenW: screen.W,
		ScreenH: screen.H,
	})
}

func (o *Overlay) panelAction(ev overlay.InputEvent) {
	switch e := ev.(type) {
	case overlay.AddProp:
		model := strings.TrimSpace(e.Model)
		if model == "" {
			return
		}
		o.sender.Send(host.ActionAddProp, host.AddPropRequest{Model: model, Label: model})

	case overlay.RemoveProp:
		o.sender.Send(host.ActionRemoveProp, host.HandleRequest{Handle: e.Handle})
		if o.opts.Detached {
			o.props.Remove(e.Handle)
			o.selection.Forget(e.Handle)
		}

	case overlay.SelectProp:
		o.sender.Send(host.ActionSelectProp, host.HandleRequest{Handle: e.Handle})
		o.selection.Propose(e.Handle)

	case overlay.ClearAll:
		o.sender.Send(host.ActionClearAll, host.Empty{})
		if o.opts.Detached {
			o.props.Clear()
			o.selection.Clear()
		}

	case overlay.SaveExport:
		o.sender.Send(host.ActionSaveExport, host.Empty{})

	case overlay.SetMode:
		o.sender.Send(host.ActionSetGizmoMode, host.SetGizmoModeRequest{Mode: e.Mode})
		o.mode.Propose(e.Mode)

	case overlay.MoveProp:
		if _, ok := o.selected(); !ok {
			return
		}
		o.sender.Send(host.ActionMoveProp, host.MovePropRequest{
			Type:      o.mode.Current(),
			Axis:      e.Axis,
			Direction: e.Direction,
		})

	case overlay.ResetAxis:
		if _, ok := o.selected(); !ok {
			return
		}
		o.sender.Send(host.ActionResetAxis, host.ResetAxisRequest{Type: o.mode.Current(), Axis: e.Axis})

	case overlay.CloseRequest:
		o.sender.Send(host.ActionClose, host.Empty{})
		o.hide()
	}
}

// Snapshot строит неизменяемый снимок текущего состояния
func (o *Overlay) Snapshot() overlay.ViewState {
	selected, selConfirmed := o.selected()
	mode, modeConfirmed := o.mode.Effective()

	var hovered *entity.Axis
	if o.hoveredAxis != nil {
		a := *o.hoveredAxis
		hovered = &a
	}

	return overlay.ViewState{
		IsOpen:             o.isOpen,
		Detached:           o.opts.Detached,
		Props:              o.props.All(),
		SelectedProp:       selected,
		SelectionConfirmed: selConfirmed,
		GizmoMode:          mode,
		ModeConfirmed:      modeConfirmed,
		HoveredAxis:        hovered,
		FreecamActive:      o.freecam.Active(),
		GizmoVisible:       o.isOpen && selected != nil && !o.freecam.Active(),
		Drag:               o.drag.View(),
	}
}
