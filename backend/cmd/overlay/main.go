package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vehprop/backend/internal/adapter/in/ws"
	"vehprop/backend/internal/app"
	"vehprop/backend/internal/config"
	"vehprop/backend/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации")
	listenAddr := flag.String("listen", "", "адрес HTTP сервера (переопределяет конфигурацию)")
	transport := flag.String("transport", "", "транспорт до хоста: http, grpc или detached")
	detached := flag.Bool("detached", false, "работать без хоста с демонстрационными пропами")
	debug := flag.Bool("debug", false, "подробное логирование")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		log.Fatalf("Ошибка переменных окружения: %v", err)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *transport != "" {
		cfg.Transport = *transport
	}
	if *detached {
		cfg.Transport = config.TransportDetached
	}
	if *debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Неверная конфигурация: %v", err)
	}
	config.Set(cfg)

	logger := logging.New("VehProp", cfg.Debug)

	application, err := app.New(cfg, logger)
	if err != nil {
		log.Fatalf("Ошибка создания транспорта хоста: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopDone := make(chan error, 1)
	go func() { loopDone <- application.Run(ctx) }()

	adapter := ws.NewWSAdapter(ctx, application.Loop, application.Telemetry, logger.With("WS"))
	mux := http.NewServeMux()
	adapter.Routes(mux)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Периодическая сводка телеметрии
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				application.Telemetry.PrintSummary()
			}
		}
	}()

	go func() {
		logger.Infof("Сервер запущен на %s (host: /host, view: /input)", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка HTTP сервера: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("Получен сигнал завершения, останавливаем сервер")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Ошибка остановки HTTP сервера: %v", err)
	}
	adapter.Close()

	if err := <-loopDone; err != nil {
		logger.Errorf("Цикл событий завершился с ошибкой: %v", err)
	}
	if err := application.Shutdown(cfg.RequestTimeout + time.Second); err != nil {
		logger.Errorf("Ошибка завершения: %v", err)
	}
}
