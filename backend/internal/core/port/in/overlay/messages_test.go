package overlay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehprop/backend/internal/core/domain/entity"
)

func handlePtr(h entity.Handle) *entity.Handle { return &h }
func axisPtr(a entity.Axis) *entity.Axis       { return &a }

func TestDecodeHostMessage(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected HostMessage
		err      error
	}{
		{
			name:     "open with mode",
			json:     `{"action":"open","gizmoMode":"rotate"}`,
			expected: OpenMessage{GizmoMode: entity.ModeRotate},
		},
		{
			name:     "open without mode defaults to translate",
			json:     `{"action":"open"}`,
			expected: OpenMessage{GizmoMode: entity.ModeTranslate},
		},
		{
			name:     "open with unknown mode defaults to translate",
			json:     `{"action":"open","gizmoMode":"scale"}`,
			expected: OpenMessage{GizmoMode: entity.ModeTranslate},
		},
		{
			name:     "close",
			json:     `{"action":"close"}`,
			expected: CloseMessage{},
		},
		{
			name: "updateProps",
			json: `{"action":"updateProps","props":[{"handle":7,"model":"prop_a","label":"A","offset":{"x":1,"y":2,"z":3},"rotation":{"x":0,"y":0,"z":90}}],"selectedProp":7}`,
			expected: UpdatePropsMessage{
				Props: []entity.Prop{{
					Handle: 7, Model: "prop_a", Label: "A",
					Offset:   entity.Vector3{X: 1, Y: 2, Z: 3},
					Rotation: entity.Vector3{Z: 90},
				}},
				SelectedProp: handlePtr(7),
			},
		},
		{
			name:     "updateProps with null selection and no props",
			json:     `{"action":"updateProps","selectedProp":null}`,
			expected: UpdatePropsMessage{Props: []entity.Prop{}},
		},
		{
			name: "updatePropPosition",
			json: `{"action":"updatePropPosition","handle":3,"offset":{"x":0.5,"y":0,"z":0},"rotation":{"x":0,"y":10,"z":0}}`,
			expected: UpdatePropPositionMessage{
				Handle:   3,
				Offset:   entity.Vector3{X: 0.5},
				Rotation: entity.Vector3{Y: 10},
			},
		},
		{
			name:     "showFreecamHint",
			json:     `{"action":"showFreecamHint","active":true}`,
			expected: ShowFreecamHintMessage{Active: true},
		},
		{
			name:     "startDrag",
			json:     `{"action":"startDrag","axis":"y"}`,
			expected: StartDragMessage{Axis: entity.AxisY},
		},
		{
			name:     "stopDrag",
			json:     `{"action":"stopDrag"}`,
			expected: StopDragMessage{},
		},
		{
			name:     "setHoveredAxis",
			json:     `{"action":"setHoveredAxis","axis":"z"}`,
			expected: SetHoveredAxisMessage{Axis: axisPtr(entity.AxisZ)},
		},
		{
			name:     "setHoveredAxis null clears",
			json:     `{"action":"setHoveredAxis","axis":null}`,
			expected: SetHoveredAxisMessage{},
		},
		{
			name:     "start3DDrag",
			json:     `{"action":"start3DDrag","axis":"x","mouseX":100,"mouseY":200}`,
			expected: Start3DDragMessage{Axis: entity.AxisX, Origin: entity.Point2D{X: 100, Y: 200}},
		},
		{
			name:     "stop3DDrag",
			json:     `{"action":"stop3DDrag"}`,
			expected: Stop3DDragMessage{},
		},
		{
			name:     "close ignores foreign fields",
			json:     `{"action":"close","handle":"abc","axis":7}`,
			expected: CloseMessage{},
		},
		{
			name:     "showFreecamHint ignores foreign fields",
			json:     `{"action":"showFreecamHint","active":true,"props":"none","mouseX":"left"}`,
			expected: ShowFreecamHintMessage{Active: true},
		},
		{
			name: "updatePropPosition with wrong-typed handle",
			json: `{"action":"updatePropPosition","handle":"abc"}`,
			err:  ErrMalformedMessage,
		},
		{
			name: "startDrag without axis",
			json: `{"action":"startDrag"}`,
			err:  ErrMalformedMessage,
		},
		{
			name: "start3DDrag with bad axis",
			json: `{"action":"start3DDrag","axis":"w"}`,
			err:  ErrMalformedMessage,
		},
		{
			name: "invalid JSON",
			json: `{"action":`,
			err:  ErrMalformedMessage,
		},
		{
			name: "unknown action",
			json: `{"action":"spawnVehicle"}`,
			err:  ErrUnknownAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeHostMessage([]byte(tt.json))
			if tt.err != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, msg)
		})
	}
}

func TestDecodeInputEvent(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected InputEvent
		err      error
	}{
		{
			name: "pointerDown on axis zone",
			json: `{"type":"pointerDown","x":10,"y":20,"target":"axisZone","axis":"z"}`,
			expected: PointerDown{
				Pos: entity.Point2D{X: 10, Y: 20}, Target: TargetAxisZone, Axis: entity.AxisZ,
			},
		},
		{
			name: "pointerMove over surface",
			json: `{"type":"pointerMove","x":1,"y":2,"target":"surface","screenW":1920,"screenH":1080}`,
			expected: PointerMove{
				Pos: entity.Point2D{X: 1, Y: 2}, Target: TargetSurface, Screen: ScreenSize{W: 1920, H: 1080},
			},
		},
		{
			name:     "pointerMove with unknown target is panel",
			json:     `{"type":"pointerMove","x":1,"y":2,"target":"button"}`,
			expected: PointerMove{Pos: entity.Point2D{X: 1, Y: 2}, Target: TargetPanel},
		},
		{
			name:     "keyDown",
			json:     `{"type":"keyDown","key":"W"}`,
			expected: KeyDown{Key: "W"},
		},
		{
			name:     "moveProp",
			json:     `{"type":"moveProp","axis":"x","direction":-1}`,
			expected: MoveProp{Axis: entity.AxisX, Direction: -1},
		},
		{
			name:     "setGizmoMode",
			json:     `{"type":"setGizmoMode","mode":"rotate"}`,
			expected: SetMode{Mode: entity.ModeRotate},
		},
		{
			name:     "keyDown ignores foreign fields",
			json:     `{"type":"keyDown","key":"w","x":"left","handle":"abc"}`,
			expected: KeyDown{Key: "w"},
		},
		{
			name: "moveProp with bad direction",
			json: `{"type":"moveProp","axis":"x","direction":3}`,
			err:  ErrMalformedMessage,
		},
		{
			name: "axis zone without axis",
			json: `{"type":"pointerDown","target":"axisZone"}`,
			err:  ErrMalformedMessage,
		},
		{
			name: "unknown type",
			json: `{"type":"wheel"}`,
			err:  ErrUnknownAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeInputEvent([]byte(tt.json))
			if tt.err != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ev)
		})
	}
}

func TestViewState_SelectedPropData(t *testing.T) {
	v := ViewState{Props: entity.SampleProps(), SelectedProp: handlePtr(2)}
	p, ok := v.SelectedPropData()
	require.True(t, ok)
	assert.Equal(t, "prop_roadcone01a", p.Model)

	v.SelectedProp = handlePtr(9)
	_, ok = v.SelectedPropData()
	assert.False(t, ok)
}
