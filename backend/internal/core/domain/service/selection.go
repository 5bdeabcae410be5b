package service

import "vehprop/backend/internal/core/domain/entity"

// Selection хранит подтвержденное хостом выделение отдельно от локального.
// Локальное значение временное и сбрасывается каждым обновлением от хоста.
type Selection struct {
	confirmed   *entity.Handle
	provisional *entity.Handle
}

// Confirm принимает выделение от хоста и отбрасывает локальное
func (s *Selection) Confirm(h *entity.Handle) {
	s.confirmed = copyHandle(h)
	s.provisional = nil
}

// Propose запоминает локальный выбор до подтверждения хостом
func (s *Selection) Propose(h entity.Handle) {
	s.provisional = &h
}

// Forget снимает выделение, если оно указывает на h
func (s *Selection) Forget(h entity.Handle) {
	if s.confirmed != nil && *s.confirmed == h {
		s.confirmed = nil
	}
	if s.provisional != nil && *s.provisional == h {
		s.provisional = nil
	}
}

// Clear снимает оба значения
func (s *Selection) Clear() {
	s.confirmed = nil
	s.provisional = nil
}

// Effective возвращает действующее выделение, если проп есть в списке.
// confirmed равен true, когда значение совпадает с присланным хостом.
func (s *Selection) Effective(props *entity.PropList) (h *entity.Handle, confirmed bool) {
	cur := s.confirmed
	if s.provisional != nil {
		cur = s.provisional
	}
	if cur == nil || !props.Contains(*cur) {
		return nil, false
	}
	confirmed = s.confirmed != nil && *s.confirmed == *cur
	return copyHandle(cur), confirmed
}

func copyHandle(h *entity.Handle) *entity.Handle {
	if h == nil {
		return nil
	}
	v := *h
	return &v
}

// ModeState хранит режим гизмо по тому же принципу, что и Selection
type ModeState struct {
	confirmed   entity.GizmoMode
	provisional *entity.GizmoMode
}

// NewModeState создает состояние с подтвержденным режимом перемещения
func NewModeState() ModeState {
	return ModeState{confirmed: entity.ModeTranslate}
}

// Confirm принимает режим от хоста
func (m *ModeState) Confirm(mode entity.GizmoMode) {
	m.confirmed = mode
	m.provisional = nil
}

// Propose запоминает локально выбранный режим
func (m *ModeState) Propose(mode entity.GizmoMode) {
	m.provisional = &mode
}

// Effective возвращает действующий режим
func (m *ModeState) Effective() (mode entity.GizmoMode, confirmed bool) {
	if m.provisional != nil {
		return *m.provisional, *m.provisional == m.confirmed
	}
	return m.confirmed, true
}

// Current возвращает действующий режим без признака подтверждения
func (m *ModeState) Current() entity.GizmoMode {
	mode, _ := m.Effective()
	return mode
}
