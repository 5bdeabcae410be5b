package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrInvalidAxis = errors.New("invalid axis")
	ErrInvalidMode = errors.New("invalid gizmo mode")
)

// Handle - идентификатор пропа, выдается хостом
type Handle int64

// Axis представляет ось манипуляции
type Axis string

// Константы осей
const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// Axes - все оси в порядке отображения
var Axes = []Axis{AxisX, AxisY, AxisZ}

// ParseAxis разбирает строку в ось
func ParseAxis(s string) (Axis, error) {
	switch Axis(strings.ToLower(s)) {
	case AxisX:
		return AxisX, nil
	case AxisY:
		return AxisY, nil
	case AxisZ:
		return AxisZ, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAxis, s)
}

// Valid проверяет, что ось одна из x, y, z
func (a Axis) Valid() bool {
	return a == AxisX || a == AxisY || a == AxisZ
}

// GizmoMode представляет режим манипуляции
type GizmoMode string

// Константы режимов
const (
	ModeTranslate GizmoMode = "translate"
	ModeRotate    GizmoMode = "rotate"
)

// ParseGizmoMode разбирает строку в режим
func ParseGizmoMode(s string) (GizmoMode, error) {
	switch GizmoMode(s) {
	case ModeTranslate:
		return ModeTranslate, nil
	case ModeRotate:
		return ModeRotate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Vector3 представляет трехмерный вектор
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec3 возвращает вектор в формате mathgl
func (v Vector3) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Vector3FromVec3 создает Vector3 из mathgl вектора
func Vector3FromVec3(v mgl64.Vec3) Vector3 {
	return Vector3{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// Component возвращает компоненту вектора по оси
func (v Vector3) Component(axis Axis) float64 {
	switch axis {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	}
	return 0
}

// Point2D - координаты указателя в пикселях оверлея
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point2D) vec() mgl64.Vec2 {
	return mgl64.Vec2{p.X, p.Y}
}

// Sub возвращает разность p - o
func (p Point2D) Sub(o Point2D) Point2D {
	d := p.vec().Sub(o.vec())
	return Point2D{X: d.X(), Y: d.Y()}
}

// Exceeds сообщает, превышает ли смещение порог по X или Y
func (p Point2D) Exceeds(threshold float64) bool {
	d := p.vec()
	return mgl64.Abs(d.X()) > threshold || mgl64.Abs(d.Y()) > threshold
}

// Prop представляет проп, прикрепленный к транспорту
type Prop struct {
	Handle   Handle  `json:"handle"`
	Model    string  `json:"model"`
	Label    string  `json:"label"`
	Offset   Vector3 `json:"offset"`
	Rotation Vector3 `json:"rotation"`
}

// NewProp создает новый проп с нулевым смещением и вращением
func NewProp(handle Handle, model string) Prop {
	return Prop{
		Handle: handle,
		Model:  model,
		Label:  model,
	}
}
