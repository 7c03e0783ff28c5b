package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/loop"
)

// Action is what the control panel asks of the simulation this frame.
type Action struct {
	TogglePause  bool
	Step         bool
	Speed        float64
	SpeedChanged bool
}

// Controls is the bottom-left simulation control panel.
type Controls struct {
	x, y  int32
	width int32
}

// NewControls places the control panel at the given position.
func NewControls(x, y int32) *Controls {
	return &Controls{x: x, y: y, width: 220}
}

// Draw renders the panel and returns the requested actions. Keyboard
// shortcuts: space toggles pause, N steps while paused.
func (c *Controls) Draw(paused bool, speed float64) Action {
	var action Action

	x := float32(c.x)
	y := float32(c.y)

	pauseLabel := "Pause"
	if paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 100, Height: 28}, pauseLabel) {
		action.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + 110, Y: y, Width: 100, Height: 28}, "Step") {
		action.Step = true
	}

	y += 38
	rl.DrawText("Speed", int32(x), int32(y), 14, rl.Gray)
	newSpeed := gui.SliderBar(
		rl.Rectangle{X: x + 50, Y: y, Width: float32(c.width - 100), Height: 20},
		"0.1", "10",
		float32(speed), float32(loop.MinSpeed), float32(loop.MaxSpeed),
	)
	rl.DrawText(fmt.Sprintf("%.1fx", speed), int32(x)+int32(c.width)-40, int32(y)+2, 16, rl.White)
	if float64(newSpeed) != speed {
		action.Speed = float64(newSpeed)
		action.SpeedChanged = true
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		action.TogglePause = true
	}
	if rl.IsKeyPressed(rl.KeyN) {
		action.Step = true
	}

	return action
}
