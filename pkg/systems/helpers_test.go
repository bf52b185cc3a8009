package systems

import (
	"math"
	"testing"

	"github.com/decker502/cricket/pkg/components"
	"github.com/decker502/cricket/pkg/config"
	"github.com/decker502/cricket/pkg/ecs"
	"github.com/decker502/cricket/pkg/entities"
	"gonum.org/v1/gonum/spatial/r3"
)

const testDt = 1.0 / 60.0

// testWorld 测试用的最小物理世界：一个球 + 刚体系统 + 弹道系统
type testWorld struct {
	em         *ecs.EntityManager
	rigid      *RigidBodySystem
	trajectory *TrajectorySystem
	trail      *TrailSystem
	ball       ecs.EntityID
	physics    *config.DeliveryPhysicsConfig
}

// newTestWorld 创建测试世界
// withPitch 为 true 时额外创建默认的球场地面与三柱门
func newTestWorld(t *testing.T, withPitch bool) *testWorld {
	t.Helper()

	em := ecs.NewEntityManager()
	physics := config.DefaultDeliveryPhysicsConfig()
	rigid := NewRigidBodySystem(em, physics.Gravity)
	trajectory := NewTrajectorySystem(em, rigid, physics)

	ball, err := entities.NewBallEntity(em, physics, 0, r3.Vec{})
	if err != nil {
		t.Fatalf("failed to create ball: %v", err)
	}
	if withPitch {
		entities.NewPitchEntities(em, config.DefaultBowlingControlsConfig())
	}

	return &testWorld{
		em:         em,
		rigid:      rigid,
		trajectory: trajectory,
		trail:      NewTrailSystem(em),
		ball:       ball,
		physics:    physics,
	}
}

// step 按场景中的顺序推进一个固定步
func (w *testWorld) step() {
	w.trajectory.Update(testDt)
	w.rigid.Update(testDt)
	w.trail.Update(testDt)
}

func (w *testWorld) position() r3.Vec {
	p, _ := ecs.GetComponent[*components.PositionComponent](w.em, w.ball)
	return p.Position
}

func (w *testWorld) body() *components.RigidBodyComponent {
	rb, _ := ecs.GetComponent[*components.RigidBodyComponent](w.em, w.ball)
	return rb
}

func (w *testWorld) flight() *components.FlightComponent {
	f, _ := ecs.GetComponent[*components.FlightComponent](w.em, w.ball)
	return f
}

func vecNear(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}
