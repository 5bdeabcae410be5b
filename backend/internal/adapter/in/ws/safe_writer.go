package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWriteTimeout - сколько ждать медленного клиента при записи
const DefaultWriteTimeout = time.Second

// SafeWriter обеспечивает потокобезопасную запись в WebSocket
type SafeWriter struct {
	conn    *websocket.Conn
	mutex   sync.Mutex
	timeout time.Duration
}

// NewSafeWriter создает новый экземпляр SafeWriter
func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{
		conn:    conn,
		timeout: DefaultWriteTimeout,
	}
}

// WriteJSON потокобезопасно отправляет JSON данные через WebSocket
func (w *SafeWriter) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteText(data)
}

// WriteText отправляет готовый текстовый кадр
func (w *SafeWriter) WriteText(data []byte) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.timeout > 0 {
		_ = w.conn.SetWriteDeadline(time.Now().Add(w.timeout))
	}
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// Close закрывает соединение WebSocket
func (w *SafeWriter) Close() error {
	return w.conn.Close()
}
