// Package renderer draws published frame snapshots with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/camera"
	"github.com/pthm-cable/drift/game"
)

// Renderer draws frames through a pannable, zoomable camera.
type Renderer struct {
	cam *camera.Camera

	// View options
	ShowTargets bool
	ShowNames   bool
}

// New creates a renderer for the given screen and world dimensions.
func New(screenW, screenH int, worldW, worldH float64) *Renderer {
	return &Renderer{
		cam:         camera.New(float32(screenW), float32(screenH), float32(worldW), float32(worldH)),
		ShowTargets: true,
	}
}

// Camera exposes the view camera for input handling.
func (r *Renderer) Camera() *camera.Camera {
	return r.cam
}

// HandleInput applies mouse and keyboard camera controls: drag to pan,
// wheel to zoom, R to reset.
func (r *Renderer) HandleInput() {
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		r.cam.Pan(-delta.X, -delta.Y)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		r.cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyR) {
		r.cam.Reset()
	}
}

// Draw renders one frame snapshot. Safe to call with nil before the
// first frame is published.
func (r *Renderer) Draw(frame *game.FrameSnapshot) {
	if frame == nil {
		return
	}

	for i := range frame.Entities {
		r.drawEntity(&frame.Entities[i])
	}
}

func (r *Renderer) drawEntity(v *game.EntityView) {
	if !r.cam.IsVisible(float32(v.X), float32(v.Y), 24) {
		return
	}
	x, y := r.cam.WorldToScreen(float32(v.X), float32(v.Y))

	if r.ShowTargets && v.HasTarget {
		tx, ty := r.cam.WorldToScreen(float32(v.TargetX), float32(v.TargetY))
		rl.DrawLineV(rl.Vector2{X: x, Y: y}, rl.Vector2{X: tx, Y: ty}, rl.Fade(rl.SkyBlue, 0.3))
		rl.DrawCircleLines(int32(tx), int32(ty), 4, rl.Fade(rl.SkyBlue, 0.5))
	}

	switch v.Type {
	case "star":
		rl.DrawCircle(int32(x), int32(y), 18, rl.Fade(rl.Yellow, 0.3))
		rl.DrawCircle(int32(x), int32(y), 12, rl.Gold)
	case "planet":
		rl.DrawCircle(int32(x), int32(y), 8, rl.Blue)
		rl.DrawCircleLines(int32(x), int32(y), 8, rl.SkyBlue)
	case "asteroid":
		rl.DrawCircle(int32(x), int32(y), 3, rl.Gray)
	case "space_station":
		rl.DrawRectangle(int32(x)-6, int32(y)-6, 12, 12, rl.Purple)
		rl.DrawRectangleLines(int32(x)-6, int32(y)-6, 12, 12, rl.Violet)
	default:
		r.drawShip(v, x, y)
	}

	if r.ShowNames && v.Name != "" {
		rl.DrawText(v.Name, int32(x)+8, int32(y)-8, 10, rl.Fade(rl.White, 0.6))
	}
}

// drawShip renders a ship as an oriented triangle pointing along its
// heading, colored by type.
func (r *Renderer) drawShip(v *game.EntityView, x, y float32) {
	color := rl.White
	switch v.Type {
	case "fighter":
		color = rl.Red
	case "cargo_ship":
		color = rl.Green
	case "mining_ship":
		color = rl.Orange
	}

	heading := float32(v.Rotation)
	if v.VelX != 0 || v.VelY != 0 {
		heading = float32(math.Atan2(v.VelY, v.VelX))
	}

	drawOrientedTriangle(x, y, heading, 6, color)
}

// drawOrientedTriangle draws a triangle pointing in the heading direction.
func drawOrientedTriangle(x, y, heading, radius float32, color rl.Color) {
	cos := float32(math.Cos(float64(heading)))
	sin := float32(math.Sin(float64(heading)))

	frontX := x + cos*radius*1.5
	frontY := y + sin*radius*1.5

	backAngle := heading + math.Pi*0.8
	backLeftX := x + float32(math.Cos(float64(backAngle)))*radius
	backLeftY := y + float32(math.Sin(float64(backAngle)))*radius

	backAngle = heading - math.Pi*0.8
	backRightX := x + float32(math.Cos(float64(backAngle)))*radius
	backRightY := y + float32(math.Sin(float64(backAngle)))*radius

	v1 := rl.Vector2{X: frontX, Y: frontY}
	v2 := rl.Vector2{X: backLeftX, Y: backLeftY}
	v3 := rl.Vector2{X: backRightX, Y: backRightY}

	// DrawTriangle requires counter-clockwise winding (v1, v3, v2)
	rl.DrawTriangle(v1, v3, v2, color)
	rl.DrawTriangleLines(v1, v2, v3, rl.Fade(rl.White, 0.4))
}
