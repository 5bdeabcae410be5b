package entity

// PropList - упорядоченный список пропов текущего транспорта.
// Порядок совпадает с порядком, присланным хостом.
type PropList struct {
	props []Prop
}

// NewPropList создает список из копии переданных пропов
func NewPropList(props []Prop) *PropList {
	l := &PropList{}
	l.Replace(props)
	return l
}

// Replace полностью заменяет список
func (l *PropList) Replace(props []Prop) {
	l.props = append(make([]Prop, 0, len(props)), props...)
}

// Patch обновляет трансформацию одного пропа.
// Возвращает false, если проп с таким handle не найден.
func (l *PropList) Patch(handle Handle, offset, rotation Vector3) bool {
	for i := range l.props {
		if l.props[i].Handle == handle {
			l.props[i].Offset = offset
			l.props[i].Rotation = rotation
			return true
		}
	}
	return false
}

// Find возвращает проп по handle
func (l *PropList) Find(handle Handle) (Prop, bool) {
	for _, p := range l.props {
		if p.Handle == handle {
			return p, true
		}
	}
	return Prop{}, false
}

// Contains проверяет наличие пропа в списке
func (l *PropList) Contains(handle Handle) bool {
	_, ok := l.Find(handle)
	return ok
}

// Remove удаляет проп из списка
func (l *PropList) Remove(handle Handle) bool {
	for i := range l.props {
		if l.props[i].Handle == handle {
			l.props = append(l.props[:i], l.props[i+1:]...)
			return true
		}
	}
	return false
}

// Clear очищает список
func (l *PropList) Clear() {
	l.props = nil
}

// Len возвращает количество пропов
func (l *PropList) Len() int {
	return len(l.props)
}

// All возвращает копию списка для безопасного доступа
func (l *PropList) All() []Prop {
	return append([]Prop(nil), l.props...)
}

// SampleProps возвращает демонстрационные пропы для автономного режима
func SampleProps() []Prop {
	return []Prop{
		{
			Handle: 1, Model: "prop_lightbar_01", Label: "prop_lightbar_01",
			Offset: Vector3{X: 0, Y: 0, Z: 0.5},
		},
		{
			Handle: 2, Model: "prop_roadcone01a", Label: "prop_roadcone01a",
			Offset:   Vector3{X: 0.5, Y: 0, Z: 0.3},
			Rotation: Vector3{X: 0, Y: 0, Z: 45},
		},
	}
}
