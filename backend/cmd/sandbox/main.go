package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"vehprop/backend/internal/app"
	"vehprop/backend/internal/config"
	"vehprop/backend/internal/core/domain/entity"
	"vehprop/backend/internal/core/port/in/overlay"
	"vehprop/backend/internal/logging"
)

// trackedKeys сопоставляет клавиши ebiten значениям KeyboardEvent.key
var trackedKeys = map[ebiten.Key]string{
	ebiten.KeyW:          "w",
	ebiten.KeyA:          "a",
	ebiten.KeyS:          "s",
	ebiten.KeyD:          "d",
	ebiten.KeyQ:          "q",
	ebiten.KeyE:          "e",
	ebiten.KeyShiftLeft:  "Shift",
	ebiten.KeyShiftRight: "Shift",
	ebiten.KeyEscape:     "Escape",
}

var (
	colorPanel    = color.RGBA{30, 30, 36, 230}
	colorRow      = color.RGBA{50, 50, 60, 255}
	colorSelected = color.RGBA{60, 110, 200, 255}
	colorButton   = color.RGBA{70, 70, 80, 255}
	colorSurface  = color.RGBA{16, 20, 24, 255}
	axisColors    = map[entity.Axis]color.NRGBA{
		entity.AxisX: {200, 60, 60, 255},
		entity.AxisY: {60, 200, 60, 255},
		entity.AxisZ: {60, 90, 220, 255},
	}
)

// Game - окно песочницы: рисует снимок состояния и передает ввод в цикл
type Game struct {
	ctx    context.Context
	port   overlay.Port
	layout *layout
	log    logging.Logger

	lastX, lastY int
}

func (g *Game) post(ev overlay.InputEvent) {
	ctx, cancel := context.WithTimeout(g.ctx, 100*time.Millisecond)
	defer cancel()
	if err := g.port.PostInput(ctx, ev); err != nil {
		g.log.Warnf("input %s dropped: %v", ev.InputType(), err)
	}
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	state := g.port.Snapshot()
	mx, my := ebiten.CursorPosition()
	pos := entity.Point2D{X: float64(mx), Y: float64(my)}
	h := g.layout.hitTest(mx, my, state.Props)
	screen := overlay.ScreenSize{W: screenW, H: screenH}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.post(overlay.PointerDown{Pos: pos, Target: h.target, Axis: h.axis, Screen: screen})
		switch {
		case h.prop != nil:
			g.post(overlay.SelectProp{Handle: *h.prop})
		case h.button != nil:
			g.post(h.button.event)
		}
	}
	if mx != g.lastX || my != g.lastY {
		g.lastX, g.lastY = mx, my
		g.post(overlay.PointerMove{Pos: pos, Target: h.target, Screen: screen})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.post(overlay.PointerUp{Pos: pos})
	}

	for key, name := range trackedKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.post(overlay.KeyDown{Key: name})
		}
		if inpututil.IsKeyJustReleased(key) {
			g.post(overlay.KeyUp{Key: name})
		}
	}

	// В автономном режиме открыть заново можно клавишей O
	if !state.IsOpen && inpututil.IsKeyJustPressed(ebiten.KeyO) {
		ctx, cancel := context.WithTimeout(g.ctx, 100*time.Millisecond)
		defer cancel()
		if err := g.port.PostHost(ctx, overlay.OpenMessage{GizmoMode: state.GizmoMode}); err != nil {
			g.log.Warnf("open dropped: %v", err)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	state := g.port.Snapshot()
	screen.Fill(colorSurface)

	if !state.IsOpen {
		ebitenutil.DebugPrintAt(screen, "overlay closed, press O to open", screenW/2-100, screenH/2)
		return
	}

	if state.GizmoVisible {
		if p, ok := state.SelectedPropData(); ok {
			drawGizmo(screen, p, state)
		}
	}

	vector.DrawFilledRect(screen, 0, 0, panelW, screenH, colorPanel, false)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Props (%d)  mode: %s", len(state.Props), state.GizmoMode), 10, 16)

	for i, p := range state.Props {
		r := propRow(i)
		c := colorRow
		if state.SelectedProp != nil && *state.SelectedProp == p.Handle {
			c = colorSelected
		}
		vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()-2), c, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("#%d %s", p.Handle, p.Label), r.Min.X+4, r.Min.Y+2)
	}

	for i, axis := range axes {
		r := axisZone(i)
		c := axisColors[axis]
		if state.HoveredAxis == nil || *state.HoveredAxis != axis {
			c.A = 140
		}
		vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), c, false)
		ebitenutil.DebugPrintAt(screen, "drag "+string(axis), r.Min.X+8, r.Min.Y+10)
	}

	for _, b := range g.layout.buttons {
		r := b.rect
		vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), colorButton, false)
		ebitenutil.DebugPrintAt(screen, b.label, r.Min.X+6, r.Min.Y+6)
	}

	status := "freecam: off (Shift)"
	if state.FreecamActive {
		status = "freecam: ON (WASD QE, Shift to exit)"
	}
	if state.Drag != nil {
		status += fmt.Sprintf("\ndrag %s %s axis %s", state.Drag.Kind, state.Drag.Mode, state.Drag.Axis)
	}
	ebitenutil.DebugPrintAt(screen, status, 10, screenH-40)
}

// drawGizmo рисует оси выбранного пропа в условной проекции
func drawGizmo(screen *ebiten.Image, p entity.Prop, state overlay.ViewState) {
	cx := float32(panelW + (screenW-panelW)/2)
	cy := float32(screenH / 2)
	cx += float32(p.Offset.X * 40)
	cy -= float32(p.Offset.Z * 40)

	ends := map[entity.Axis]mgl64.Vec2{
		entity.AxisX: {80, 0},
		entity.AxisY: {50, 50},
		entity.AxisZ: {0, -80},
	}
	// Поворот вокруг вертикали виден как поворот осей X и Y на экране
	yaw := mgl64.Rotate2D(mgl64.DegToRad(p.Rotation.Z))
	for _, axis := range axes {
		c := axisColors[axis]
		w := float32(3)
		if state.HoveredAxis != nil && *state.HoveredAxis == axis {
			w = 6
		}
		d := ends[axis]
		if axis != entity.AxisZ {
			d = yaw.Mul2x1(d)
		}
		vector.StrokeLine(screen, cx, cy, cx+float32(d.X()), cy+float32(d.Y()), w, c, true)
	}
	ebitenutil.DebugPrintAt(screen, p.Model, int(cx)+6, int(cy)+6)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return screenW, screenH
}

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации")
	debug := flag.Bool("debug", false, "подробное логирование")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		log.Fatalf("Ошибка переменных окружения: %v", err)
	}
	cfg.Transport = config.TransportDetached
	cfg.Debug = cfg.Debug || *debug
	cfg.DefaultScreen = config.ScreenConfig{Width: screenW, Height: screenH}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Неверная конфигурация: %v", err)
	}
	config.Set(cfg)

	logger := logging.New("VehProp", cfg.Debug)
	application, err := app.New(cfg, logger)
	if err != nil {
		log.Fatalf("Ошибка создания оверлея: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	loopDone := make(chan error, 1)
	go func() { loopDone <- application.Run(ctx) }()

	g := &Game{
		ctx:    ctx,
		port:   application.Loop,
		layout: newLayout(),
		log:    logger.With("Sandbox"),
		lastX:  -1,
		lastY:  -1,
	}

	ebiten.SetWindowTitle("VehProp sandbox")
	ebiten.SetWindowSize(screenW, screenH)
	runErr := ebiten.RunGame(g)

	cancel()
	if err := <-loopDone; err != nil {
		logger.Errorf("Цикл событий завершился с ошибкой: %v", err)
	}
	if err := application.Shutdown(time.Second); err != nil {
		logger.Errorf("Ошибка завершения: %v", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
