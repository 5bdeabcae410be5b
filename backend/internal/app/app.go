package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	hostAdapter "vehprop/backend/internal/adapter/out/host"
	"vehprop/backend/internal/config"
	"vehprop/backend/internal/core/domain/service"
	"vehprop/backend/internal/core/port/in/overlay"
	portHost "vehprop/backend/internal/core/port/out/host"
	"vehprop/backend/internal/logging"
	"vehprop/backend/internal/telemetry"
)

// App связывает транспорт хоста, шлюз, оверлей и цикл событий
type App struct {
	Config    *config.Config
	Host      portHost.Port
	Gateway   *service.AsyncGateway
	Overlay   *service.Overlay
	Loop      *service.Loop
	Telemetry *telemetry.Manager

	log logging.Logger
}

// NewHostPort выбирает транспорт по конфигурации
func NewHostPort(cfg *config.Config, log logging.Logger) (portHost.Port, error) {
	switch cfg.Transport {
	case config.TransportHTTP:
		client := &http.Client{Timeout: cfg.RequestTimeout}
		return hostAdapter.NewHTTPAdapter(cfg.HostBaseURL, client), nil
	case config.TransportGRPC:
		return hostAdapter.NewGRPCAdapter(cfg.GRPCAddr)
	case config.TransportDetached:
		return hostAdapter.NewDetachedAdapter(log), nil
	}
	return nil, fmt.Errorf("%w: unknown transport %q", config.ErrInvalidConfig, cfg.Transport)
}

// New собирает приложение. Цикл событий не запущен, см. Run.
func New(cfg *config.Config, log logging.Logger) (*App, error) {
	log = logging.OrNop(log)

	port, err := NewHostPort(cfg, scoped(log, "Host"))
	if err != nil {
		return nil, err
	}
	return NewWithPort(cfg, port, log), nil
}

// NewWithPort собирает приложение поверх готового транспорта
func NewWithPort(cfg *config.Config, port portHost.Port, log logging.Logger) *App {
	log = logging.OrNop(log)

	tm := telemetry.NewManager(cfg.TelemetryBuffer, scoped(log, "Telemetry"))
	gw := service.NewAsyncGateway(port, service.GatewayConfig{
		QueueSize: cfg.QueueSize,
		Timeout:   cfg.RequestTimeout,
	}, scoped(log, "Gateway"), tm)

	ov := service.NewOverlay(gw, service.Options{
		Detached:      cfg.Detached(),
		DragThreshold: cfg.DragThreshold,
		ToggleKey:     cfg.ToggleKey,
		CloseKey:      cfg.CloseKey,
		DefaultScreen: overlay.ScreenSize{W: cfg.DefaultScreen.Width, H: cfg.DefaultScreen.Height},
		Logger:        scoped(log, "Overlay"),
	})

	return &App{
		Config:    cfg,
		Host:      port,
		Gateway:   gw,
		Overlay:   ov,
		Loop:      service.NewLoop(ov, cfg.QueueSize, scoped(log, "Loop")),
		Telemetry: tm,
		log:       log,
	}
}

// Run запускает цикл событий и блокируется до отмены контекста
func (a *App) Run(ctx context.Context) error {
	a.log.Infof("Оверлей запущен, транспорт: %s", a.Config.Transport)
	err := a.Loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Shutdown дожидается отправки вызовов из очереди и закрывает транспорт
func (a *App) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.Gateway.Close(ctx); err != nil {
		return fmt.Errorf("close gateway: %w", err)
	}
	a.Telemetry.PrintSummary()
	return nil
}

func scoped(log logging.Logger, prefix string) logging.Logger {
	if std, ok := log.(*logging.StdLogger); ok {
		return std.With(prefix)
	}
	return log
}
