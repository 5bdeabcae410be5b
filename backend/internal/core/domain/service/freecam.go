package service

import (
	"strings"

	"vehprop/backend/internal/core/port/in/overlay"
	"vehprop/backend/internal/core/port/out/host"
)

// Клавиши по умолчанию
const (
	DefaultToggleKey = "Shift"
	DefaultCloseKey  = "Escape"
)

// movementKeys - клавиши, передаваемые хосту в режиме свободной камеры
var movementKeys = map[string]bool{
	"w": true, "a": true, "s": true, "d": true, "q": true, "e": true,
}

// Freecam отслеживает флаг свободной камеры и обрабатывает клавиатуру.
// Флаг меняется только по сообщению хоста.
type Freecam struct {
	active    bool
	toggleKey string
	closeKey  string

	sender    Sender
	listeners *Listeners
	scope     *Scope
	onClose   func()
}

// NewFreecam создает контроллер клавиатуры
func NewFreecam(sender Sender, listeners *Listeners, toggleKey, closeKey string, onClose func()) *Freecam {
	if toggleKey == "" {
		toggleKey = DefaultToggleKey
	}
	if closeKey == "" {
		closeKey = DefaultCloseKey
	}
	return &Freecam{
		toggleKey: toggleKey,
		closeKey:  closeKey,
		sender:    sender,
		listeners: listeners,
		onClose:   onClose,
	}
}

// Active возвращает флаг свободной камеры
func (f *Freecam) Active() bool {
	return f.active
}

// SetActive применяет состояние, присланное хостом
func (f *Freecam) SetActive(active bool) {
	f.active = active
}

// Attach подписывается на клавиатуру на время, пока оверлей открыт
func (f *Freecam) Attach() {
	if f.scope != nil {
		return
	}
	f.scope = f.listeners.NewScope("keyboard").
		On(overlay.InputKeyDown, f.onKeyDown).
		On(overlay.InputKeyUp, f.onKeyUp)
}

// Detach снимает подписки клавиатуры
func (f *Freecam) Detach() {
	f.scope.Release()
	f.scope = nil
}

// Attached сообщает, подписан ли контроллер
func (f *Freecam) Attached() bool {
	return f.scope != nil
}

func (f *Freecam) onKeyDown(ev overlay.InputEvent) {
	k, ok := ev.(overlay.KeyDown)
	if !ok {
		return
	}

	switch {
	case strings.EqualFold(k.Key, f.closeKey):
		f.sender.Send(host.ActionClose, host.Empty{})
		if f.onClose != nil {
			f.onClose()
		}
		return
	case strings.EqualFold(k.Key, f.toggleKey):
		f.sender.Send(host.ActionToggleFreecam, host.Empty{})
		return
	}

	f.forward(k.Key, true)
}

func (f *Freecam) onKeyUp(ev overlay.InputEvent) {
	if k, ok := ev.(overlay.KeyUp); ok {
		f.forward(k.Key, false)
	}
}

func (f *Freecam) forward(key string, pressed bool) {
	if !f.active {
		return
	}
	key = strings.ToLower(key)
	if !movementKeys[key] {
		return
	}
	f.sender.Send(host.ActionFreecamKey, host.FreecamKeyRequest{Key: key, Pressed: pressed})
}
