package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	portHost "vehprop/backend/internal/core/port/out/host"
)

// DefaultBaseURL - адрес ресурса хоста внутри игрового клиента
const DefaultBaseURL = "https://srp-vehprop"

var ErrHostStatus = errors.New("unexpected host status")

// HTTPAdapter отправляет вызовы POST-запросами на {base}/{action}
type HTTPAdapter struct {
	base   string
	client *http.Client
}

var _ portHost.Port = (*HTTPAdapter)(nil)

// NewHTTPAdapter создает адаптер. Пустой base заменяется адресом по умолчанию.
func NewHTTPAdapter(base string, client *http.Client) *HTTPAdapter {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPAdapter{base: base, client: client}
}

// Send выполняет один вызов хоста
func (a *HTTPAdapter) Send(ctx context.Context, action portHost.Action, payload any) error {
	body, err := encodePayload(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/"+string(action), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", action, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %d", ErrHostStatus, action, resp.StatusCode)
	}
	return nil
}

// Close освобождает простаивающие соединения
func (a *HTTPAdapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

// encodePayload сериализует нагрузку; nil отправляется как {}
func encodePayload(payload any) ([]byte, error) {
	if payload == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(payload)
}

// CallHandler обрабатывает вызов на стороне хоста
type CallHandler func(action portHost.Action, payload json.RawMessage) error

// NewHTTPHostHandler возвращает обработчик, принимающий вызовы оверлея.
// Используется тестовым хостом.
func NewHTTPHostHandler(fn CallHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		action := strings.Trim(r.URL.Path, "/")
		if action == "" {
			http.Error(w, "missing action", http.StatusNotFound)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil || !json.Valid(body) {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		if err := fn(portHost.Action(action), body); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
}
