package service

import (
	"time"

	"github.com/google/uuid"

	"vehprop/backend/internal/core/domain/entity"
	"vehprop/backend/internal/core/port/in/overlay"
	"vehprop/backend/internal/core/port/out/host"
	"vehprop/backend/internal/logging"
)

// DefaultDragThreshold - порог срабатывания в пикселях
const DefaultDragThreshold = 2.0

// DragSession - активное перетаскивание. Одновременно существует не больше одной.
type DragSession struct {
	ID        uuid.UUID
	Kind      overlay.DragKind
	Axis      entity.Axis
	Mode      entity.GizmoMode
	Origin    entity.Point2D
	LastSent  entity.Point2D
	StartedAt time.Time
}

// DragMachine владеет единственным слотом перетаскивания.
// nil в слоте означает состояние Idle.
type DragMachine struct {
	session   *DragSession
	scope     *Scope
	threshold float64

	sender    Sender
	listeners *Listeners
	log       logging.Logger
	now       func() time.Time
}

// NewDragMachine создает автомат в состоянии Idle
func NewDragMachine(sender Sender, listeners *Listeners, threshold float64, log logging.Logger) *DragMachine {
	if threshold <= 0 {
		threshold = DefaultDragThreshold
	}
	return &DragMachine{
		threshold: threshold,
		sender:    sender,
		listeners: listeners,
		log:       logging.OrNop(log),
		now:       time.Now,
	}
}

// Active сообщает, занят ли слот
func (d *DragMachine) Active() bool {
	return d.session != nil
}

// Session возвращает копию текущей сессии
func (d *DragMachine) Session() (DragSession, bool) {
	if d.session == nil {
		return DragSession{}, false
	}
	return *d.session, true
}

// View возвращает описание сессии для снимка состояния
func (d *DragMachine) View() *overlay.DragView {
	if d.session == nil {
		return nil
	}
	return &overlay.DragView{
		ID:     d.session.ID.String(),
		Kind:   d.session.Kind,
		Axis:   d.session.Axis,
		Mode:   d.session.Mode,
		Origin: d.session.Origin,
	}
}

// BeginLocal начинает 2D перетаскивание из зоны оси.
// Если слот занят, запрос игнорируется.
func (d *DragMachine) BeginLocal(axis entity.Axis, mode entity.GizmoMode, pos entity.Point2D) bool {
	if d.session != nil {
		d.log.Debugf("drag start on %s ignored: %s drag on %s in progress", axis, d.session.Kind, d.session.Axis)
		return false
	}

	d.start(overlay.DragKind2D, axis, mode, pos)
	d.sender.Send(host.ActionGizmoDragStart, host.GizmoDragStartRequest{Axis: axis, Mode: mode})
	return true
}

// BeginHost начинает перетаскивание по команде хоста.
// Повтор той же команды ничего не меняет, другая сессия заменяется.
func (d *DragMachine) BeginHost(kind overlay.DragKind, axis entity.Axis, mode entity.GizmoMode, origin entity.Point2D) {
	if s := d.session; s != nil {
		if s.Kind == kind && s.Axis == axis {
			return
		}
		d.log.Warnf("host %s drag on %s replaces %s drag on %s (session %s)", kind, axis, s.Kind, s.Axis, s.ID)
		d.end()
	}
	d.start(kind, axis, mode, origin)
}

func (d *DragMachine) start(kind overlay.DragKind, axis entity.Axis, mode entity.GizmoMode, origin entity.Point2D) {
	d.session = &DragSession{
		ID:        uuid.New(),
		Kind:      kind,
		Axis:      axis,
		Mode:      mode,
		Origin:    origin,
		LastSent:  origin,
		StartedAt: d.now(),
	}
	d.scope = d.listeners.NewScope("drag").
		On(overlay.InputPointerMove, d.onPointerMove).
		On(overlay.InputPointerUp, d.onPointerUp)

	d.log.Debugf("drag %s started: %s %s in %s at (%.0f, %.0f)", d.session.ID, kind, axis, mode, origin.X, origin.Y)
}

func (d *DragMachine) end() {
	if d.session == nil {
		return
	}
	d.log.Debugf("drag %s ended after %v", d.session.ID, d.now().Sub(d.session.StartedAt))
	d.scope.Release()
	d.scope = nil
	d.session = nil
}

func (d *DragMachine) onPointerMove(ev overlay.InputEvent) {
	if m, ok := ev.(overlay.PointerMove); ok {
		d.Move(m.Pos)
	}
}

func (d *DragMachine) onPointerUp(ev overlay.InputEvent) {
	if u, ok := ev.(overlay.PointerUp); ok {
		d.Release(u.Pos)
	}
}

// Move отправляет накопленное смещение, если шаг превысил порог
func (d *DragMachine) Move(pos entity.Point2D) {
	s := d.session
	if s == nil {
		return
	}
	if !pos.Sub(s.LastSent).Exceeds(d.threshold) {
		return
	}

	total := pos.Sub(s.Origin)
	s.LastSent = pos
	d.sender.Send(host.ActionGizmoDrag, host.GizmoDragRequest{
		Axis:   s.Axis,
		DeltaX: total.X,
		DeltaY: total.Y,
		Mode:   s.Mode,
	})
}

// Release завершает сессию по отпусканию указателя и уведомляет хост
func (d *DragMachine) Release(pos entity.Point2D) {
	if d.session == nil {
		return
	}
	d.end()
	d.sender.Send(host.ActionGizmoDragEnd, host.Empty{})
}

// StopHost завершает сессию по команде хоста без уведомления.
// only ограничивает остановку сессиями указанного типа; пустое значение - любая.
func (d *DragMachine) StopHost(only overlay.DragKind) {
	if d.session == nil {
		return
	}
	if only != "" && d.session.Kind != only {
		d.log.Debugf("stop for %s drag ignored: active drag is %s", only, d.session.Kind)
		return
	}
	d.end()
}

// Cancel принудительно возвращает автомат в Idle
func (d *DragMachine) Cancel() {
	d.end()
}
