package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehprop/backend/internal/core/domain/entity"
	"vehprop/backend/internal/core/port/in/overlay"
	"vehprop/backend/internal/core/port/out/host"
)

func TestDrag3D_ThresholdScenario(t *testing.T) {
	ov, rec := newOpenOverlay()

	ov.HandleHost(overlay.Start3DDragMessage{Axis: entity.AxisX, Origin: pt(100, 200)})
	require.True(t, ov.Dragging())
	assert.Empty(t, rec.all(), "host-started drag must not notify the host")

	ov.HandleInput(move(102, 200))
	assert.Empty(t, rec.all())

	ov.HandleInput(move(106, 200))
	require.Len(t, rec.all(), 1)
	assert.Equal(t, sentCall{
		Action: host.ActionGizmoDrag,
		Payload: host.GizmoDragRequest{
			Axis: entity.AxisX, DeltaX: 6, DeltaY: 0, Mode: entity.ModeTranslate,
		},
	}, rec.all()[0])
}

func TestDrag_CumulativeDeltaAndHysteresis(t *testing.T) {
	ov, rec := newOpenOverlay()

	origin := pt(50, 50)
	ov.HandleInput(overlay.PointerDown{Pos: origin, Target: overlay.TargetAxisZone, Axis: entity.AxisY})
	require.Equal(t, []host.Action{host.ActionGizmoDragStart}, rec.actions())
	rec.reset()

	path := []entity.Point2D{
		pt(51, 50), pt(52, 51), pt(53, 50), pt(53, 54), pt(52, 55),
		pt(40, 55), pt(41, 56), pt(42, 57), pt(42, 60), pt(45, 60.5),
	}

	lastSent := origin
	var want []host.GizmoDragRequest
	for _, p := range path {
		ov.HandleInput(move(p.X, p.Y))
		step := p.Sub(lastSent)
		if step.Exceeds(DefaultDragThreshold) {
			total := p.Sub(origin)
			want = append(want, host.GizmoDragRequest{
				Axis: entity.AxisY, DeltaX: total.X, DeltaY: total.Y, Mode: entity.ModeTranslate,
			})
			lastSent = p
		}
	}

	var got []host.GizmoDragRequest
	for _, c := range rec.all() {
		require.Equal(t, host.ActionGizmoDrag, c.Action)
		got = append(got, c.Payload.(host.GizmoDragRequest))
	}
	assert.Equal(t, want, got)
	assert.NotEmpty(t, got)
}

func TestDrag_ExactlyThresholdIsNotSent(t *testing.T) {
	ov, rec := newOpenOverlay()
	ov.HandleHost(overlay.Start3DDragMessage{Axis: entity.AxisZ, Origin: pt(0, 0)})

	ov.HandleInput(move(2, -2))
	assert.Empty(t, rec.all())

	ov.HandleInput(move(2, -2.01))
	assert.Equal(t, 1, rec.count(host.ActionGizmoDrag))
}

func TestDrag_NoAxisSwapOnSecondLocalStart(t *testing.T) {
	ov, rec := newOpenOverlay()

	ov.HandleInput(overlay.PointerDown{Pos: pt(10, 10), Target: overlay.TargetAxisZone, Axis: entity.AxisX})
	first, ok := ov.drag.Session()
	require.True(t, ok)

	ov.HandleInput(overlay.PointerDown{Pos: pt(20, 20), Target: overlay.TargetAxisZone, Axis: entity.AxisZ})

	second, ok := ov.drag.Session()
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, entity.AxisX, second.Axis)
	assert.Equal(t, 1, rec.count(host.ActionGizmoDragStart))
}

func TestDrag_HostStartReplayIsNoop(t *testing.T) {
	ov, _ := newOpenOverlay()

	ov.HandleHost(overlay.Start3DDragMessage{Axis: entity.AxisY, Origin: pt(5, 5)})
	first, _ := ov.drag.Session()

	ov.HandleHost(overlay.Start3DDragMessage{Axis: entity.AxisY, Origin: pt(9, 9)})
	second, _ := ov.drag.Session()

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, pt(5, 5), second.Origin)
}

func TestDrag_HostStartReplacesDifferentSession(t *testing.T) {
	ov, rec := newOpenOverlay()

	ov.HandleInput(overlay.PointerDown{Pos: pt(10, 10), Target: overlay.TargetAxisZone, Axis: entity.AxisX})
	local, _ := ov.drag.Session()

	ov.HandleHost(overlay.Start3DDragMessage{Axis: entity.AxisZ, Origin: pt(300, 300)})
	replaced, ok := ov.drag.Session()
	require.True(t, ok)

	assert.NotEqual(t, local.ID, replaced.ID)
	assert.Equal(t, overlay.DragKind3D, replaced.Kind)
	assert.Equal(t, entity.AxisZ, replaced.Axis)
	// клавиатура (2) + одна сессия перетаскивания (2)
	assert.Equal(t, 4, ov.ActiveListeners())
	assert.Equal(t, 1, rec.count(host.ActionGizmoDragStart))
}

func TestDrag_HostStartUsesLastPointer(t *testing.T) {
	ov, rec := newOpenOverlay()
	ov.HandleInput(move(400, 300))

	ov.HandleHost(overlay.StartDragMessage{Axis: entity.AxisX})
	s, ok := ov.drag.Session()
	require.True(t, ok)
	assert.Equal(t, pt(400, 300), s.Origin)
	assert.Equal(t, overlay.DragKind2D, s.Kind)
	assert.Empty(t, rec.all())
}

func TestDrag_PointerUpEndsAndNotifies(t *testing.T) {
	ov, rec := newOpenOverlay()

	ov.HandleInput(overlay.PointerDown{Pos: pt(0, 0), Target: overlay.TargetAxisZone, Axis: entity.AxisX})
	ov.HandleInput(overlay.PointerUp{Pos: pt(30, 0)})

	assert.False(t, ov.Dragging())
	assert.Equal(t, []host.Action{host.ActionGizmoDragStart, host.ActionGizmoDragEnd}, rec.actions())
	assert.Equal(t, 2, ov.ActiveListeners())

	ov.HandleInput(overlay.PointerUp{Pos: pt(30, 0)})
	assert.Equal(t, 1, rec.count(host.ActionGizmoDragEnd))
}

func TestDrag_HostStopsAreSilent(t *testing.T) {
	ov, rec := newOpenOverlay()

	ov.HandleHost(overlay.StartDragMessage{Axis: entity.AxisY})
	ov.HandleHost(overlay.Stop3DDragMessage{})
	assert.True(t, ov.Dragging(), "stop3DDrag must not end a 2D drag")

	ov.HandleHost(overlay.StopDragMessage{})
	assert.False(t, ov.Dragging())

	ov.HandleHost(overlay.Start3DDragMessage{Axis: entity.AxisX, Origin: pt(1, 1)})
	ov.HandleHost(overlay.Stop3DDragMessage{})
	assert.False(t, ov.Dragging())

	ov.HandleInput(overlay.PointerMove{Pos: pt(100, 100), Target: overlay.TargetSurface})
	assert.Equal(t, []host.Action{host.ActionCheckGizmoHover}, rec.actions())
}

func TestDrag_ModeCapturedAtStart(t *testing.T) {
	ov, rec := newOpenOverlay()

	ov.HandleInput(overlay.PointerDown{Pos: pt(0, 0), Target: overlay.TargetAxisZone, Axis: entity.AxisZ})
	ov.HandleInput(overlay.SetMode{Mode: entity.ModeRotate})
	ov.HandleInput(move(0, 10))

	calls := rec.all()
	require.Len(t, calls, 3)
	assert.Equal(t, host.GizmoDragStartRequest{Axis: entity.AxisZ, Mode: entity.ModeTranslate}, calls[0].Payload)
	assert.Equal(t, host.ActionSetGizmoMode, calls[1].Action)
	assert.Equal(t, entity.ModeTranslate, calls[2].Payload.(host.GizmoDragRequest).Mode)
}

func TestDrag_AxisZoneNeedsSelection(t *testing.T) {
	rec := &recordingSender{}
	ov := NewOverlay(rec, Options{})
	ov.HandleHost(overlay.OpenMessage{})
	ov.HandleHost(overlay.UpdatePropsMessage{Props: entity.SampleProps()})

	ov.HandleInput(overlay.PointerDown{Pos: pt(0, 0), Target: overlay.TargetAxisZone, Axis: entity.AxisX})
	assert.False(t, ov.Dragging())
	assert.Empty(t, rec.all())
}

func TestCloseMidDrag(t *testing.T) {
	tests := []struct {
		name  string
		close func(ov *Overlay)
		sent  []host.Action
	}{
		{
			name:  "host close",
			close: func(ov *Overlay) { ov.HandleHost(overlay.CloseMessage{}) },
		},
		{
			name:  "close button",
			close: func(ov *Overlay) { ov.HandleInput(overlay.CloseRequest{}) },
			sent:  []host.Action{host.ActionClose},
		},
		{
			name:  "escape key",
			close: func(ov *Overlay) { ov.HandleInput(overlay.KeyDown{Key: "Escape"}) },
			sent:  []host.Action{host.ActionClose},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ov, rec := newOpenOverlay()
			ov.HandleInput(overlay.PointerDown{Pos: pt(0, 0), Target: overlay.TargetAxisZone, Axis: entity.AxisX})
			ov.HandleInput(move(10, 0))
			rec.reset()

			tt.close(ov)

			assert.False(t, ov.Dragging())
			assert.False(t, ov.Snapshot().IsOpen)
			assert.Equal(t, 0, ov.ActiveListeners())

			ov.HandleInput(move(50, 0))
			ov.HandleInput(overlay.PointerUp{Pos: pt(50, 0)})
			ov.HandleInput(overlay.KeyDown{Key: "w"})
			assert.Equal(t, tt.sent, rec.actions())
		})
	}
}

func TestHostDragWhileClosed_EndedByClose(t *testing.T) {
	ov, rec := newOpenOverlay()
	ov.HandleHost(overlay.CloseMessage{})
	require.Equal(t, 0, ov.ActiveListeners())

	ov.HandleHost(overlay.Start3DDragMessage{Axis: entity.AxisX, Origin: pt(0, 0)})
	require.True(t, ov.Dragging())

	ov.HandleHost(overlay.CloseMessage{})
	assert.False(t, ov.Dragging())
	assert.False(t, ov.Snapshot().IsOpen)
	assert.Equal(t, 0, ov.ActiveListeners())

	ov.HandleInput(move(50, 0))
	ov.HandleInput(overlay.PointerUp{Pos: pt(50, 0)})
	assert.Empty(t, rec.actions())

	// Следующий цикл открытия начинается с чистыми подписками
	ov.HandleHost(overlay.OpenMessage{GizmoMode: entity.ModeTranslate})
	assert.Equal(t, 2, ov.ActiveListeners())
	assert.False(t, ov.Dragging())
}

func TestDrag_ListenersBoundToSession(t *testing.T) {
	ov, _ := newOpenOverlay()
	assert.Equal(t, 2, ov.ActiveListeners())

	ov.HandleHost(overlay.Start3DDragMessage{Axis: entity.AxisX, Origin: pt(0, 0)})
	assert.Equal(t, 4, ov.ActiveListeners())
	assert.True(t, ov.listeners.Has(overlay.InputPointerUp))

	ov.HandleHost(overlay.Stop3DDragMessage{})
	assert.Equal(t, 2, ov.ActiveListeners())
	assert.False(t, ov.listeners.Has(overlay.InputPointerMove))
}
