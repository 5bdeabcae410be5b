package main

import (
	"image"

	"vehprop/backend/internal/core/domain/entity"
	"vehprop/backend/internal/core/port/in/overlay"
)

const (
	screenW = 1280
	screenH = 720

	panelW    = 300
	rowH      = 20
	listTop   = 40
	zoneTop   = 400
	zoneH     = 36
	buttonTop = 560
	buttonH   = 28
)

var axes = []entity.Axis{entity.AxisX, entity.AxisY, entity.AxisZ}

// button - кнопка панели и действие, которое она порождает
type button struct {
	label string
	rect  image.Rectangle
	event overlay.InputEvent
}

// hit - результат проверки попадания указателя
type hit struct {
	target overlay.PointerTarget
	axis   entity.Axis
	prop   *entity.Handle
	button *button
}

// layout - раскладка панели управления в окне песочницы
type layout struct {
	buttons []button
}

func newLayout() *layout {
	mk := func(i, row int, label string, ev overlay.InputEvent) button {
		x := 10 + i*95
		y := buttonTop + row*(buttonH+8)
		return button{label: label, rect: image.Rect(x, y, x+88, y+buttonH), event: ev}
	}
	return &layout{buttons: []button{
		mk(0, 0, "translate", overlay.SetMode{Mode: entity.ModeTranslate}),
		mk(1, 0, "rotate", overlay.SetMode{Mode: entity.ModeRotate}),
		mk(2, 0, "close", overlay.CloseRequest{}),
		mk(0, 1, "add cone", overlay.AddProp{Model: "prop_roadcone01a"}),
		mk(1, 1, "clear all", overlay.ClearAll{}),
		mk(2, 1, "save", overlay.SaveExport{}),
		mk(0, 2, "x -", overlay.MoveProp{Axis: entity.AxisX, Direction: -1}),
		mk(1, 2, "x +", overlay.MoveProp{Axis: entity.AxisX, Direction: 1}),
		mk(2, 2, "reset x", overlay.ResetAxis{Axis: entity.AxisX}),
	}}
}

func propRow(i int) image.Rectangle {
	y := listTop + i*rowH
	return image.Rect(10, y, panelW-10, y+rowH)
}

func axisZone(i int) image.Rectangle {
	y := zoneTop + i*(zoneH+8)
	return image.Rect(10, y, panelW-10, y+zoneH)
}

// hitTest определяет, над каким элементом находится точка
func (l *layout) hitTest(x, y int, props []entity.Prop) hit {
	p := image.Pt(x, y)
	if x >= panelW {
		return hit{target: overlay.TargetSurface}
	}
	for i, axis := range axes {
		if p.In(axisZone(i)) {
			return hit{target: overlay.TargetAxisZone, axis: axis}
		}
	}
	for i := range props {
		if p.In(propRow(i)) {
			h := props[i].Handle
			return hit{target: overlay.TargetPanel, prop: &h}
		}
	}
	for i := range l.buttons {
		if p.In(l.buttons[i].rect) {
			return hit{target: overlay.TargetPanel, button: &l.buttons[i]}
		}
	}
	return hit{target: overlay.TargetPanel}
}
