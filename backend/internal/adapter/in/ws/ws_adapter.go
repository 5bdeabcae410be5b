package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"vehprop/backend/internal/core/port/in/overlay"
	"vehprop/backend/internal/logging"
)

var ErrHostBusy = errors.New("host already connected")

// TelemetrySource отдает отладочную телеметрию в JSON
type TelemetrySource interface {
	GetTelemetryJSON() (string, error)
}

// WSAdapter адаптер для WebSocket соединений хоста и представления
type WSAdapter struct {
	upgrader  websocket.Upgrader
	port      overlay.Port
	telemetry TelemetrySource
	log       logging.Logger

	// ctx живет дольше отдельных запросов: после Upgrade контекст запроса не используется
	ctx context.Context

	hostMu   sync.Mutex
	hostBusy bool
	hostConn *websocket.Conn

	clients   map[*SafeWriter]bool // Для хранения активных клиентов
	clientsMu sync.Mutex           // Мьютекс для безопасного доступа к списку клиентов

	unsubscribe func()
}

// NewWSAdapter создает адаптер и подписывает его на снимки состояния
func NewWSAdapter(ctx context.Context, port overlay.Port, telemetry TelemetrySource, log logging.Logger) *WSAdapter {
	a := &WSAdapter{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		port:      port,
		telemetry: telemetry,
		log:       logging.OrNop(log),
		ctx:       ctx,
		clients:   make(map[*SafeWriter]bool),
	}
	a.unsubscribe = port.Subscribe(a.Broadcast)
	return a
}

// Routes регистрирует обработчики адаптера
func (a *WSAdapter) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/host", a.HandleHost)
	mux.HandleFunc("/input", a.HandleInput)
	mux.HandleFunc("/debug/state", a.HandleState)
	mux.HandleFunc("/debug/telemetry", a.HandleTelemetry)
}

func (a *WSAdapter) claimHost() bool {
	a.hostMu.Lock()
	defer a.hostMu.Unlock()
	// место занимается до Upgrade, чтобы второй хост получил 409
	if a.hostBusy {
		return false
	}
	a.hostBusy = true
	return true
}

func (a *WSAdapter) releaseHost() {
	a.hostMu.Lock()
	a.hostBusy = false
	a.hostConn = nil
	a.hostMu.Unlock()
}

// HostConnected сообщает, подключен ли хост
func (a *WSAdapter) HostConnected() bool {
	a.hostMu.Lock()
	defer a.hostMu.Unlock()
	return a.hostBusy
}

// HandleHost принимает канал сообщений хоста. Одновременно допускается один хост.
func (a *WSAdapter) HandleHost(w http.ResponseWriter, r *http.Request) {
	if !a.claimHost() {
		a.log.Warnf("refusing host connection from %s: %v", r.RemoteAddr, ErrHostBusy)
		http.Error(w, ErrHostBusy.Error(), http.StatusConflict)
		return
	}
	defer a.releaseHost()

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Errorf("host upgrade failed: %v", err)
		return
	}
	a.hostMu.Lock()
	a.hostConn = conn
	a.hostMu.Unlock()
	defer conn.Close()

	a.log.Infof("host connected from %s", r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			a.log.Infof("host disconnected: %v", err)
			return
		}

		msg, err := overlay.DecodeHostMessage(data)
		if err != nil {
			a.log.Debugf("host message dropped: %v", err)
			continue
		}

		if err := a.port.PostHost(a.ctx, msg); err != nil {
			a.log.Warnf("host message %s not queued: %v", msg.Action(), err)
			return
		}
	}
}

// HandleInput принимает события представления и рассылает ему снимки
func (a *WSAdapter) HandleInput(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Errorf("view upgrade failed: %v", err)
		return
	}

	writer := NewSafeWriter(conn)

	a.clientsMu.Lock()
	a.clients[writer] = true
	a.clientsMu.Unlock()

	defer func() {
		a.clientsMu.Lock()
		delete(a.clients, writer)
		a.clientsMu.Unlock()
		conn.Close()
	}()

	a.log.Infof("view connected from %s", r.RemoteAddr)
	if err := writer.WriteJSON(NewStateMessage(a.port.Snapshot())); err != nil {
		a.log.Warnf("initial state not sent: %v", err)
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			a.log.Infof("view disconnected: %v", err)
			return
		}

		if clientTime, ok := parsePing(data); ok {
			if err := writer.WriteJSON(NewPongMessage(clientTime)); err != nil {
				a.log.Warnf("pong not sent: %v", err)
			}
			continue
		}

		ev, err := overlay.DecodeInputEvent(data)
		if err != nil {
			a.log.Debugf("view event dropped: %v", err)
			continue
		}

		if err := a.port.PostInput(a.ctx, ev); err != nil {
			a.log.Warnf("view event %s not queued: %v", ev.InputType(), err)
			return
		}
	}
}

// Broadcast отправляет снимок всем подключенным представлениям
func (a *WSAdapter) Broadcast(v overlay.ViewState) {
	data, err := json.Marshal(NewStateMessage(v))
	if err != nil {
		a.log.Errorf("state not encoded: %v", err)
		return
	}

	a.clientsMu.Lock()
	clients := make([]*SafeWriter, 0, len(a.clients))
	for c := range a.clients {
		clients = append(clients, c)
	}
	a.clientsMu.Unlock()

	for _, c := range clients {
		if err := c.WriteText(data); err != nil {
			a.log.Debugf("state not delivered: %v", err)
		}
	}
}

// ClientCount возвращает число подключенных представлений
func (a *WSAdapter) ClientCount() int {
	a.clientsMu.Lock()
	defer a.clientsMu.Unlock()
	return len(a.clients)
}

// HandleState отдает текущий снимок
func (a *WSAdapter) HandleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(NewStateMessage(a.port.Snapshot())); err != nil {
		a.log.Warnf("state response failed: %v", err)
	}
}

// HandleTelemetry отдает телеметрию исходящих вызовов
func (a *WSAdapter) HandleTelemetry(w http.ResponseWriter, r *http.Request) {
	if a.telemetry == nil {
		http.Error(w, "telemetry disabled", http.StatusNotFound)
		return
	}
	data, err := a.telemetry.GetTelemetryJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(data))
}

// Close отписывает адаптер и закрывает все соединения
func (a *WSAdapter) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}

	a.clientsMu.Lock()
	for c := range a.clients {
		_ = c.Close()
	}
	a.clientsMu.Unlock()

	a.hostMu.Lock()
	if a.hostConn != nil {
		_ = a.hostConn.Close()
	}
	a.hostMu.Unlock()
}
