package service

import (
	"vehprop/backend/internal/core/port/in/overlay"
)

// HandleHost применяет сообщение хоста. Каждое действие выполняет ровно
// один переход состояния, повтор сообщения ничего не меняет.
func (o *Overlay) HandleHost(msg overlay.HostMessage) {
	switch m := msg.(type) {
	case overlay.OpenMessage:
		o.mode.Confirm(m.GizmoMode)
		if !o.isOpen {
			o.show()
		}

	case overlay.CloseMessage:
		// Закрытый оверлей тоже мог получить перетаскивание от хоста
		o.hide()

	case overlay.UpdatePropsMessage:
		o.props.Replace(m.Props)
		if m.SelectedProp != nil && !o.props.Contains(*m.SelectedProp) {
			o.log.Debugf("pushed selection %d is not in the prop list", *m.SelectedProp)
			o.selection.Confirm(nil)
			return
		}
		o.selection.Confirm(m.SelectedProp)

	case overlay.UpdatePropPositionMessage:
		if !o.props.Patch(m.Handle, m.Offset, m.Rotation) {
			o.log.Debugf("position update for unknown prop %d", m.Handle)
		}

	case overlay.ShowFreecamHintMessage:
		o.freecam.SetActive(m.Active)
		if m.Active {
			o.hoveredAxis = nil
		}

	case overlay.StartDragMessage:
		o.drag.BeginHost(overlay.DragKind2D, m.Axis, o.mode.Current(), o.lastPointer)

	case overlay.StopDragMessage:
		o.drag.StopHost("")

	case overlay.SetHoveredAxisMessage:
		o.hoveredAxis = m.Axis

	case overlay.Start3DDragMessage:
		o.lastPointer = m.Origin
		o.drag.BeginHost(overlay.DragKind3D, m.Axis, o.mode.Current(), m.Origin)

	case overlay.Stop3DDragMessage:
		o.drag.StopHost(overlay.DragKind3D)

	default:
		o.log.Debugf("unhandled host message %T", msg)
	}
}
