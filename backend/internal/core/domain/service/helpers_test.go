package service

import (
	"sync"

	"vehprop/backend/internal/core/domain/entity"
	"vehprop/backend/internal/core/port/in/overlay"
	"vehprop/backend/internal/core/port/out/host"
)

type sentCall struct {
	Action  host.Action
	Payload any
}

// recordingSender запоминает вызовы и сразу их завершает
type recordingSender struct {
	mu    sync.Mutex
	calls []sentCall
}

func (r *recordingSender) Send(action host.Action, payload any) <-chan struct{} {
	r.mu.Lock()
	r.calls = append(r.calls, sentCall{Action: action, Payload: payload})
	r.mu.Unlock()
	done := make(chan struct{})
	close(done)
	return done
}

func (r *recordingSender) all() []sentCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentCall(nil), r.calls...)
}

func (r *recordingSender) actions() []host.Action {
	var out []host.Action
	for _, c := range r.all() {
		out = append(out, c.Action)
	}
	return out
}

func (r *recordingSender) count(action host.Action) int {
	n := 0
	for _, c := range r.all() {
		if c.Action == action {
			n++
		}
	}
	return n
}

func (r *recordingSender) reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

var testScreen = overlay.ScreenSize{W: 1920, H: 1080}

func handle(h entity.Handle) *entity.Handle { return &h }

func pt(x, y float64) entity.Point2D { return entity.Point2D{X: x, Y: y} }

// newOpenOverlay возвращает открытый оверлей с выбранным первым пропом
func newOpenOverlay() (*Overlay, *recordingSender) {
	rec := &recordingSender{}
	ov := NewOverlay(rec, Options{DefaultScreen: testScreen})
	ov.HandleHost(overlay.OpenMessage{GizmoMode: entity.ModeTranslate})
	ov.HandleHost(overlay.UpdatePropsMessage{Props: entity.SampleProps(), SelectedProp: handle(1)})
	return ov, rec
}

func move(x, y float64) overlay.PointerMove {
	return overlay.PointerMove{Pos: pt(x, y), Target: overlay.TargetPanel}
}
