package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"vehprop/backend/internal/core/port/in/overlay"
	"vehprop/backend/internal/logging"
)

var ErrLoopStopped = errors.New("event loop stopped")

type loopEvent struct {
	host  overlay.HostMessage
	input overlay.InputEvent
}

// Loop - цикл событий оверлея. Единственная горутина обрабатывает сообщения
// хоста и ввод в порядке поступления и публикует снимок после каждого события.
type Loop struct {
	ov  *Overlay
	log logging.Logger

	events  chan loopEvent
	stopped chan struct{}
	state   atomic.Pointer[overlay.ViewState]

	mu      sync.Mutex
	nextSub int
	subs    map[int]func(overlay.ViewState)

	runOnce sync.Once
}

var _ overlay.Port = (*Loop)(nil)

// NewLoop создает цикл для оверлея с очередью заданной длины
func NewLoop(ov *Overlay, queueSize int, log logging.Logger) *Loop {
	if queueSize <= 0 {
		queueSize = 64
	}
	l := &Loop{
		ov:      ov,
		log:     logging.OrNop(log),
		events:  make(chan loopEvent, queueSize),
		stopped: make(chan struct{}),
		subs:    make(map[int]func(overlay.ViewState)),
	}
	snap := ov.Snapshot()
	l.state.Store(&snap)
	return l
}

// Run обрабатывает события до отмены контекста
func (l *Loop) Run(ctx context.Context) error {
	err := ErrLoopStopped
	l.runOnce.Do(func() {
		defer close(l.stopped)
		err = l.run(ctx)
	})
	return err
}

func (l *Loop) run(ctx context.Context) error {
	l.log.Infof("event loop started")
	for {
		select {
		case <-ctx.Done():
			l.log.Infof("event loop stopped: %v", ctx.Err())
			return ctx.Err()
		case ev := <-l.events:
			l.process(ev)
		}
	}
}

func (l *Loop) process(ev loopEvent) {
	switch {
	case ev.host != nil:
		l.log.Debugf("host: %s", ev.host.Action())
		l.ov.HandleHost(ev.host)
	case ev.input != nil:
		l.ov.HandleInput(ev.input)
	default:
		return
	}
	l.publish()
}

func (l *Loop) publish() {
	snap := l.ov.Snapshot()
	l.state.Store(&snap)

	l.mu.Lock()
	subs := make([]func(overlay.ViewState), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (l *Loop) post(ctx context.Context, ev loopEvent) error {
	select {
	case <-l.stopped:
		return ErrLoopStopped
	default:
	}

	select {
	case l.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrLoopStopped
	}
}

// PostHost ставит сообщение хоста в очередь
func (l *Loop) PostHost(ctx context.Context, msg overlay.HostMessage) error {
	if msg == nil {
		return nil
	}
	return l.post(ctx, loopEvent{host: msg})
}

// PostInput ставит событие ввода в очередь
func (l *Loop) PostInput(ctx context.Context, ev overlay.InputEvent) error {
	if ev == nil {
		return nil
	}
	return l.post(ctx, loopEvent{input: ev})
}

// Snapshot возвращает последний опубликованный снимок
func (l *Loop) Snapshot() overlay.ViewState {
	return *l.state.Load()
}

// Subscribe регистрирует наблюдателя, вызываемого из горутины цикла
func (l *Loop) Subscribe(fn func(overlay.ViewState)) func() {
	l.mu.Lock()
	l.nextSub++
	id := l.nextSub
	l.subs[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// Done закрывается после остановки цикла
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}
