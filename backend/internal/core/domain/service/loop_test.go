package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehprop/backend/internal/core/domain/entity"
	"vehprop/backend/internal/core/port/in/overlay"
	"vehprop/backend/internal/core/port/out/host"
)

func TestLoop_ProcessesInOrderAndPublishes(t *testing.T) {
	rec := &recordingSender{}
	loop := NewLoop(NewOverlay(rec, Options{}), 8, nil)
	assert.False(t, loop.Snapshot().IsOpen)

	var (
		mu    sync.Mutex
		snaps []overlay.ViewState
	)
	unsubscribe := loop.Subscribe(func(v overlay.ViewState) {
		mu.Lock()
		snaps = append(snaps, v)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	require.NoError(t, loop.PostHost(ctx, overlay.OpenMessage{GizmoMode: entity.ModeRotate}))
	require.NoError(t, loop.PostHost(ctx, overlay.UpdatePropsMessage{Props: entity.SampleProps(), SelectedProp: handle(2)}))
	require.NoError(t, loop.PostHost(ctx, overlay.Start3DDragMessage{Axis: entity.AxisX, Origin: pt(100, 200)}))
	require.NoError(t, loop.PostInput(ctx, move(102, 200)))
	require.NoError(t, loop.PostInput(ctx, move(106, 200)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snaps) == 5
	}, time.Second, time.Millisecond)

	snap := loop.Snapshot()
	assert.True(t, snap.IsOpen)
	assert.Equal(t, entity.ModeRotate, snap.GizmoMode)
	require.NotNil(t, snap.Drag)
	assert.Equal(t, overlay.DragKind3D, snap.Drag.Kind)
	assert.Equal(t, []sentCall{{
		Action:  host.ActionGizmoDrag,
		Payload: host.GizmoDragRequest{Axis: entity.AxisX, DeltaX: 6, Mode: entity.ModeRotate},
	}}, rec.all())

	unsubscribe()
	require.NoError(t, loop.PostHost(ctx, overlay.CloseMessage{}))
	require.Eventually(t, func() bool { return !loop.Snapshot().IsOpen }, time.Second, time.Millisecond)
	mu.Lock()
	assert.Len(t, snaps, 5)
	mu.Unlock()

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	<-loop.Done()
	assert.ErrorIs(t, loop.PostInput(context.Background(), overlay.ClearAll{}), ErrLoopStopped)
	assert.ErrorIs(t, loop.Run(context.Background()), ErrLoopStopped)
}

func TestLoop_PostRespectsContext(t *testing.T) {
	loop := NewLoop(NewOverlay(&recordingSender{}, Options{}), 1, nil)
	require.NoError(t, loop.PostHost(context.Background(), overlay.CloseMessage{}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, loop.PostHost(ctx, overlay.CloseMessage{}), context.DeadlineExceeded)
	assert.NoError(t, loop.PostHost(ctx, nil))
}
