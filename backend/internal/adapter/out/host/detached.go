package host

import (
	"context"
	"encoding/json"

	portHost "vehprop/backend/internal/core/port/out/host"
	"vehprop/backend/internal/logging"
)

// DetachedAdapter используется без хоста: вызовы только логируются
type DetachedAdapter struct {
	log logging.Logger
}

var _ portHost.Port = (*DetachedAdapter)(nil)

// NewDetachedAdapter создает заглушку хоста
func NewDetachedAdapter(log logging.Logger) *DetachedAdapter {
	return &DetachedAdapter{log: logging.OrNop(log)}
}

func (a *DetachedAdapter) Send(_ context.Context, action portHost.Action, payload any) error {
	data, err := encodePayload(payload)
	if err != nil {
		data, _ = json.Marshal(err.Error())
	}
	a.log.Infof("[VehProp DEV] call: %s %s", action, data)
	return nil
}

func (a *DetachedAdapter) Close() error { return nil }
