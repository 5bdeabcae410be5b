package service

import "vehprop/backend/internal/core/port/in/overlay"

// Handler обрабатывает событие ввода, доставленное подписчику
type Handler func(ev overlay.InputEvent)

type listener struct {
	id int
	fn Handler
}

// Listeners - реестр глобальных подписок на события ввода.
// Подписки живут только внутри Scope и снимаются вместе с ним.
type Listeners struct {
	nextID  int
	byEvent map[string][]listener
}

// NewListeners создает пустой реестр
func NewListeners() *Listeners {
	return &Listeners{byEvent: make(map[string][]listener)}
}

// Scope - набор подписок с общим временем жизни
type Scope struct {
	name     string
	owner    *Listeners
	ids      map[string][]int
	released bool
}

// NewScope открывает новую область подписок
func (l *Listeners) NewScope(name string) *Scope {
	return &Scope{name: name, owner: l, ids: make(map[string][]int)}
}

// On добавляет обработчик события в область
func (s *Scope) On(event string, fn Handler) *Scope {
	if s.released {
		return s
	}
	l := s.owner
	l.nextID++
	l.byEvent[event] = append(l.byEvent[event], listener{id: l.nextID, fn: fn})
	s.ids[event] = append(s.ids[event], l.nextID)
	return s
}

// Release снимает все подписки области. Повторный вызов ничего не делает.
func (s *Scope) Release() {
	if s == nil || s.released {
		return
	}
	s.released = true
	for event, ids := range s.ids {
		s.owner.remove(event, ids)
	}
	s.ids = nil
}

// Name возвращает имя области
func (s *Scope) Name() string { return s.name }

func (l *Listeners) remove(event string, ids []int) {
	kept := l.byEvent[event][:0]
	for _, ln := range l.byEvent[event] {
		if !containsID(ids, ln.id) {
			kept = append(kept, ln)
		}
	}
	if len(kept) == 0 {
		delete(l.byEvent, event)
		return
	}
	l.byEvent[event] = kept
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Dispatch вызывает подписчиков события. Возвращает false, если их нет.
func (l *Listeners) Dispatch(event string, ev overlay.InputEvent) bool {
	current := l.byEvent[event]
	if len(current) == 0 {
		return false
	}
	// обработчик может снять подписки, поэтому идем по копии
	snapshot := append([]listener(nil), current...)
	for _, ln := range snapshot {
		ln.fn(ev)
	}
	return true
}

// Count возвращает число активных подписок
func (l *Listeners) Count() int {
	n := 0
	for _, ls := range l.byEvent {
		n += len(ls)
	}
	return n
}

// Has проверяет наличие подписчиков события
func (l *Listeners) Has(event string) bool {
	return len(l.byEvent[event]) > 0
}
