package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vehprop/backend/internal/core/port/out/host"
	"vehprop/backend/internal/logging"
)

var (
	ErrQueueFull     = errors.New("outbound queue full")
	ErrGatewayClosed = errors.New("gateway closed")
)

// Sender отправляет вызов хосту, не блокируя вызывающего.
// Возвращаемый канал закрывается, когда вызов завершен (успешно или нет).
type Sender interface {
	Send(action host.Action, payload any) <-chan struct{}
}

// CallObserver получает результаты исходящих вызовов
type CallObserver interface {
	CallSent(action host.Action, took time.Duration)
	CallFailed(action host.Action, err error)
	CallDropped(action host.Action)
}

// GatewayConfig - параметры асинхронного шлюза
type GatewayConfig struct {
	QueueSize int
	Timeout   time.Duration
}

// DefaultGatewayConfig возвращает параметры по умолчанию
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		QueueSize: 256,
		Timeout:   2 * time.Second,
	}
}

type call struct {
	action  host.Action
	payload any
	done    chan struct{}
}

// AsyncGateway - очередь исходящих вызовов с одним воркером.
// Порядок отправки сохраняется, ошибки транспорта логируются и поглощаются.
type AsyncGateway struct {
	port     host.Port
	cfg      GatewayConfig
	log      logging.Logger
	observer CallObserver

	mu     sync.RWMutex
	closed bool
	queue  chan call
	done   chan struct{}
}

// NewAsyncGateway создает шлюз и запускает воркер
func NewAsyncGateway(port host.Port, cfg GatewayConfig, log logging.Logger, observer CallObserver) *AsyncGateway {
	def := DefaultGatewayConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	g := &AsyncGateway{
		port:     port,
		cfg:      cfg,
		log:      logging.OrNop(log),
		observer: observer,
		queue:    make(chan call, cfg.QueueSize),
		done:     make(chan struct{}),
	}
	go g.worker()
	return g
}

// Send ставит вызов в очередь. При переполнении вызов отбрасывается.
func (g *AsyncGateway) Send(action host.Action, payload any) <-chan struct{} {
	c := call{action: action, payload: payload, done: make(chan struct{})}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.closed {
		g.drop(c, ErrGatewayClosed)
		return c.done
	}

	select {
	case g.queue <- c:
	default:
		g.drop(c, ErrQueueFull)
	}
	return c.done
}

func (g *AsyncGateway) drop(c call, reason error) {
	g.log.Warnf("dropping %s: %v", c.action, reason)
	if g.observer != nil {
		g.observer.CallDropped(c.action)
	}
	close(c.done)
}

func (g *AsyncGateway) worker() {
	defer close(g.done)

	for c := range g.queue {
		g.deliver(c)
	}
}

func (g *AsyncGateway) deliver(c call) {
	defer close(c.done)

	ctx, cancel := context.WithTimeout(context.Background(), g.cfg.Timeout)
	defer cancel()

	start := time.Now()
	if err := g.port.Send(ctx, c.action, c.payload); err != nil {
		g.log.Debugf("call %s failed: %v", c.action, err)
		if g.observer != nil {
			g.observer.CallFailed(c.action, err)
		}
		return
	}

	took := time.Since(start)
	g.log.Debugf("call %s done in %v", c.action, took)
	if g.observer != nil {
		g.observer.CallSent(c.action, took)
	}
}

// Close перестает принимать вызовы, дожидается отправки очереди и закрывает порт
func (g *AsyncGateway) Close(ctx context.Context) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	close(g.queue)
	g.mu.Unlock()

	select {
	case <-g.done:
	case <-ctx.Done():
		return fmt.Errorf("drain outbound queue: %w", ctx.Err())
	}

	return g.port.Close()
}
