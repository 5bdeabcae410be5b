package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"vehprop/backend/internal/adapter/in/ws"
	hostAdapter "vehprop/backend/internal/adapter/out/host"
	"vehprop/backend/internal/logging"
)

// Тестовый хост: подключается к каналу /host оверлея и принимает
// исходящие вызовы по HTTP или gRPC
func main() {
	server := flag.String("server", "ws://localhost:8090/host", "адрес канала хоста")
	serve := flag.String("serve", "http", "как принимать вызовы оверлея: http, grpc или none")
	addr := flag.String("addr", "", "адрес приема вызовов (по умолчанию :8091 для http и :50061 для grpc)")
	debug := flag.Bool("debug", false, "подробное логирование")
	flag.Parse()

	logger := logging.New("FakeHost", *debug)

	u, err := url.Parse(*server)
	if err != nil {
		log.Fatalf("Неверный URL: %v", err)
	}

	log.Printf("Подключение к %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Ошибка подключения: %v", err)
	}
	defer conn.Close()

	writer := ws.NewSafeWriter(conn)
	host := newFakeHost(func(msg map[string]any) error {
		logger.Debugf("-> %v", msg["action"])
		return writer.WriteJSON(msg)
	}, logger)

	stopServing, err := startCallServer(*serve, *addr, host, logger)
	if err != nil {
		log.Fatalf("Ошибка запуска приема вызовов: %v", err)
	}
	defer stopServing()

	if err := host.Open(); err != nil {
		log.Fatalf("Ошибка отправки open: %v", err)
	}
	log.Printf("Успешно подключен, оверлей открыт")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Канал хоста односторонний, чтение нужно только для обнаружения разрыва
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Infof("Соединение закрыто: %v", err)
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		_ = writer.WriteJSON(map[string]any{"action": "close"})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	case <-disconnected:
	}

	log.Printf("Тест завершен")
}

// startCallServer поднимает прием вызовов выбранного транспорта
func startCallServer(kind, addr string, host *fakeHost, log logging.Logger) (func(), error) {
	switch kind {
	case "http":
		if addr == "" {
			addr = ":8091"
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           hostAdapter.NewHTTPHostHandler(host.Handle),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Infof("Прием вызовов по HTTP на %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("HTTP сервер: %v", err)
			}
		}()
		return func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}, nil

	case "grpc":
		if addr == "" {
			addr = ":50061"
		}
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		srv := hostAdapter.NewGRPCHostServer(host.Handle)
		go func() {
			log.Infof("Прием вызовов по gRPC на %s", addr)
			if err := srv.Serve(lis); err != nil {
				log.Errorf("gRPC сервер: %v", err)
			}
		}()
		return srv.GracefulStop, nil

	case "none":
		return func() {}, nil
	}
	return nil, errors.New("unknown serve mode " + kind)
}
