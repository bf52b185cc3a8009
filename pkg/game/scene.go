package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents one screen of the simulator (currently the bowling view).
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update advances the scene by one fixed step.
	// deltaTime is the step length in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)
}
