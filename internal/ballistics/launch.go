package ballistics

import (
	"fmt"
	"math"

	"github.com/decker502/cricket/pkg/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// TimeOfFlight returns the time the ball needs to cover the forward distance
// between origin and target at the given forward speed.
//
// Forward speed alone decides the timing. Lateral and vertical motion never
// feed back into it, so a growing swing drift cannot stretch the flight.
//
// Returns:
//   - float64: time of flight in seconds (negative when the target lies behind the origin)
//   - error: ErrInvalidDeliverySpeed or ErrZeroForwardOffset
func TimeOfFlight(origin, target r3.Vec, deliverySpeed float64) (float64, error) {
	if !(deliverySpeed > 0) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidDeliverySpeed, deliverySpeed)
	}
	dz := target.Z - origin.Z
	if dz == 0 {
		return 0, ErrZeroForwardOffset
	}
	return dz / deliverySpeed, nil
}

// SwingAcceleration returns the signed lateral acceleration produced by the
// swing force of a delivery.
//
// The force magnitude is swingStrength * accuracy; its direction is fixed by
// the bowling side (right-arm deliveries drift toward -X).
func SwingAcceleration(swingStrength, accuracy, mass float64, side types.BowlingSide) float64 {
	return swingStrength * accuracy / mass * side.LateralSign()
}

// SwingForce returns the continuous lateral force vector applied each step
// while a swing delivery is airborne. It is the force counterpart of
// SwingAcceleration and shares its sign convention.
func SwingForce(swingStrength, accuracy float64, side types.BowlingSide) r3.Vec {
	return r3.Vec{X: swingStrength * accuracy * side.LateralSign()}
}

// SwingDrift returns the lateral displacement caused by a constant lateral
// acceleration over t seconds: ½·a·t².
func SwingDrift(accel, t float64) float64 {
	return 0.5 * accel * t * t
}

// SolveLaunch computes the initial velocity that carries the ball from
// p.Origin to p.Target in exactly (target.z - origin.z) / DeliverySpeed seconds.
//
// Vertical speed comes from Δy = vy·t − ½·g·t². For a spin delivery the lateral
// speed is a straight aim. For a swing delivery the known drift of the constant
// swing force is subtracted first, so the curved path still ends on target.
// The forward component is always exactly DeliverySpeed.
//
// Parameters:
//   - p: launch parameters; Accuracy is used as given, out-of-range values included
//
// Returns:
//   - r3.Vec: launch velocity
//   - error: a wrapped ErrInvalidDeliverySpeed, ErrZeroForwardOffset or ErrInvalidMass
func SolveLaunch(p LaunchParams) (r3.Vec, error) {
	t, err := TimeOfFlight(p.Origin, p.Target, p.DeliverySpeed)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("failed to solve launch velocity: %w", err)
	}

	g := math.Abs(p.Gravity)
	dy := p.Target.Y - p.Origin.Y
	vy := (dy + 0.5*g*t*t) / t

	dx := p.Target.X - p.Origin.X
	var vx float64
	switch p.Kind {
	case types.DeliverySwing:
		if !(p.Mass > 0) {
			return r3.Vec{}, fmt.Errorf("failed to solve launch velocity: %w: got %v", ErrInvalidMass, p.Mass)
		}
		accel := SwingAcceleration(p.SwingStrength, p.Accuracy, p.Mass, p.Side)
		vx = (dx - SwingDrift(accel, t)) / t
	default:
		vx = dx / t
	}

	return r3.Vec{X: vx, Y: vy, Z: p.DeliverySpeed}, nil
}

// PositionAt evaluates the constant-acceleration trajectory
// p(t) = p0 + v0·t + ½·a·t².
//
// Used to check a solved launch against its target without stepping an integrator.
func PositionAt(p0, v0, accel r3.Vec, t float64) r3.Vec {
	return r3.Add(r3.Add(p0, r3.Scale(t, v0)), r3.Scale(0.5*t*t, accel))
}

// FlightAcceleration returns the constant acceleration acting on an airborne
// delivery: gravity plus, for swing, the lateral swing acceleration.
func FlightAcceleration(p LaunchParams) r3.Vec {
	a := r3.Vec{Y: -math.Abs(p.Gravity)}
	if p.Kind == types.DeliverySwing && p.Mass > 0 {
		a.X = SwingAcceleration(p.SwingStrength, p.Accuracy, p.Mass, p.Side)
	}
	return a
}
