// Package ballistics provides the closed-form flight math for a delivered
// cricket ball: the inverse launch solve under gravity plus a constant
// lateral swing force, and the one-shot bounce transform applied on first
// ground contact.
//
// Coordinates follow the pitch convention used across the game:
//   - X: lateral (positive to the bowler's right)
//   - Y: vertical (positive up)
//   - Z: forward, from the bowler toward the batter
//
// Everything here is pure; the ECS systems own state and call into it.
package ballistics

import (
	"errors"

	"github.com/decker502/cricket/pkg/types"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInvalidDeliverySpeed is returned when the forward delivery speed is not positive.
	ErrInvalidDeliverySpeed = errors.New("delivery speed must be positive")

	// ErrZeroForwardOffset is returned when origin and target share the same forward coordinate,
	// which leaves the time of flight undefined.
	ErrZeroForwardOffset = errors.New("target has zero forward offset from origin")

	// ErrInvalidMass is returned when a swing delivery is solved for a body without positive mass.
	ErrInvalidMass = errors.New("ball mass must be positive")
)

// LaunchParams holds every input of the launch velocity solve.
type LaunchParams struct {
	Origin r3.Vec // release point
	Target r3.Vec // aim point on the pitch

	Kind     types.DeliveryKind
	Accuracy float64 // 1.0 = perfect timing; never clamped here
	Side     types.BowlingSide

	DeliverySpeed float64 // forward speed (m/s), authoritative for timing
	Gravity       float64 // gravity; only the magnitude is used
	SwingStrength float64 // lateral force (N) at accuracy 1.0
	Mass          float64 // ball mass (kg), required for swing
}

// BounceParams holds the inputs of the bounce transform.
type BounceParams struct {
	Kind     types.DeliveryKind
	Accuracy float64
	Side     types.BowlingSide

	Bounciness   float64 // fraction of vertical speed reflected, [0.1, 1.0]
	GripLoss     float64 // fraction of horizontal speed removed, [0, 1]
	SpinStrength float64 // deflection (degrees) at accuracy 1.0
}

// Up is the vertical axis the spin deflection rotates about.
var Up = r3.Vec{Y: 1}
