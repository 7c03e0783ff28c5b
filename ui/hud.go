// Package ui renders the HUD and simulation control widgets.
package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/loop"
)

// DrawHUD renders scheduler statistics in the top-left corner.
func DrawHUD(stats loop.Stats, entityCount int) {
	rl.DrawText(fmt.Sprintf("Tick: %d  Sim: %.1fs", stats.Tick, stats.SimTime), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Entities: %d", entityCount), 10, 35, 20, rl.White)
	rl.DrawText(fmt.Sprintf("TPS: %.1f / %.0f  FPS: %.1f / %.0f",
		stats.ActualTPS, stats.TargetTPS, stats.ActualFPS, stats.TargetFPS), 10, 60, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Speed: %.1fx", stats.Speed), 10, 85, 20, rl.White)

	if stats.Paused {
		rl.DrawText("PAUSED", 10, 110, 20, rl.Yellow)
	}
}
