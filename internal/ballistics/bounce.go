package ballistics

import (
	"math"

	"github.com/decker502/cricket/pkg/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// SpinDeflectionDegrees returns the signed yaw (degrees) a spin delivery
// applies to the horizontal velocity at the bounce. Zero for every other kind.
func SpinDeflectionDegrees(p BounceParams) float64 {
	if p.Kind != types.DeliverySpin {
		return 0
	}
	angle := p.SpinStrength * p.Accuracy
	if p.Side == types.SideLeft {
		angle = -angle
	}
	return angle
}

// ApplyBounce transforms the pre-impact velocity into the post-bounce velocity.
//
// Steps, in order:
//  1. restitution: vy' = -vy · Bounciness
//  2. friction: vx, vz scaled by (1 - GripLoss)
//  3. spin only: horizontal velocity rotated about +Y by SpinDeflectionDegrees
//
// A swing delivery gets no rotation; the lateral velocity built up in the air
// survives the friction scaling and keeps carrying the ball sideways.
//
// Parameters:
//   - incoming: velocity sampled on the last step before contact
//   - p: bounce parameters
//
// Returns:
//   - r3.Vec: velocity to write back to the body
func ApplyBounce(incoming r3.Vec, p BounceParams) r3.Vec {
	out := incoming
	out.Y = -incoming.Y * p.Bounciness

	keep := 1 - p.GripLoss
	out.X *= keep
	out.Z *= keep

	if angle := SpinDeflectionDegrees(p); angle != 0 {
		out = rotateHorizontal(out, angle)
	}
	return out
}

// rotateHorizontal yaws v about the vertical axis; the vertical component is untouched.
func rotateHorizontal(v r3.Vec, degrees float64) r3.Vec {
	rot := r3.NewRotation(degrees*math.Pi/180, Up)
	return rot.Rotate(v)
}
