package systems

import (
	"math"
	"testing"

	"github.com/decker502/cricket/internal/ballistics"
	"github.com/decker502/cricket/pkg/components"
	"github.com/decker502/cricket/pkg/config"
	"github.com/decker502/cricket/pkg/ecs"
	"github.com/decker502/cricket/pkg/entities"
	"gonum.org/v1/gonum/spatial/r3"
)

// TestRigidBodySystem_FreeFlightMatchesClosedForm 无接触时逐步积分与解析解一致
func TestRigidBodySystem_FreeFlightMatchesClosedForm(t *testing.T) {
	w := newTestWorld(t, false)

	p0 := r3.Vec{X: 0.6, Y: 2, Z: 0}
	v0 := r3.Vec{X: -1, Y: 3, Z: 25}
	w.rigid.Teleport(w.ball, p0)
	w.rigid.SetLinearVelocity(w.ball, v0)

	const steps = 30
	for i := 0; i < steps; i++ {
		w.rigid.Update(testDt)
	}

	want := ballistics.PositionAt(p0, v0, r3.Vec{Y: -w.physics.Gravity}, steps*testDt)
	if got := w.position(); !vecNear(got, want, 1e-9) {
		t.Errorf("position = %v, want %v", got, want)
	}
}

// TestRigidBodySystem_ForceAccumulatorCleared 外力只作用于一步
func TestRigidBodySystem_ForceAccumulatorCleared(t *testing.T) {
	w := newTestWorld(t, false)
	w.body().UseGravity = false
	w.rigid.SetLinearVelocity(w.ball, r3.Vec{})

	w.rigid.AddForce(w.ball, r3.Vec{X: 2})
	w.rigid.AddForce(w.ball, r3.Vec{X: 1})
	w.rigid.Update(testDt)

	rb := w.body()
	if rb.Force != (r3.Vec{}) {
		t.Errorf("Force = %v, want zero after step", rb.Force)
	}
	wantVx := 3.0 / w.physics.BallMass * testDt
	if math.Abs(rb.LinearVelocity.X-wantVx) > 1e-12 {
		t.Errorf("vx = %v, want %v", rb.LinearVelocity.X, wantVx)
	}

	w.rigid.Update(testDt)
	if math.Abs(rb.LinearVelocity.X-wantVx) > 1e-12 {
		t.Errorf("vx changed without force: %v", rb.LinearVelocity.X)
	}
}

// TestRigidBodySystem_ContactEnterOnce 持续接触只派发一次事件
func TestRigidBodySystem_ContactEnterOnce(t *testing.T) {
	w := newTestWorld(t, true)

	var events []ContactEvent
	w.rigid.OnContact(func(ev ContactEvent) { events = append(events, ev) })

	// 贴着地面滚动
	w.rigid.Teleport(w.ball, r3.Vec{Y: w.physics.BallRadius * 0.5, Z: 5})
	w.rigid.SetLinearVelocity(w.ball, r3.Vec{Z: 3})

	for i := 0; i < 10; i++ {
		w.rigid.Update(testDt)
	}

	if len(events) != 1 {
		t.Fatalf("got %d contact events, want 1", len(events))
	}
	if events[0].Surface != "Pitch" || events[0].Body != w.ball {
		t.Errorf("event = %+v", events[0])
	}
	if events[0].Normal != (r3.Vec{Y: 1}) {
		t.Errorf("normal = %v, want +Y", events[0].Normal)
	}

	// 滚动时角速度满足 v = ω × (r·n)
	rb := w.body()
	if rb.AngularVelocity.X <= 0 {
		t.Errorf("rolling forward should spin about +X, got %v", rb.AngularVelocity)
	}
}

// TestRigidBodySystem_HardReset 硬重置后行为与新刚体一致
func TestRigidBodySystem_HardReset(t *testing.T) {
	w := newTestWorld(t, true)

	var count int
	w.rigid.OnContact(func(ContactEvent) { count++ })

	w.rigid.Teleport(w.ball, r3.Vec{Y: 0.01, Z: 5})
	w.rigid.SetLinearVelocity(w.ball, r3.Vec{Z: 3})
	w.rigid.Update(testDt)
	w.rigid.AddForce(w.ball, r3.Vec{X: 5})
	if count != 1 {
		t.Fatalf("setup: got %d events, want 1", count)
	}

	w.rigid.HardReset(w.ball)

	rb := w.body()
	if rb.LinearVelocity != (r3.Vec{}) || rb.AngularVelocity != (r3.Vec{}) || rb.Force != (r3.Vec{}) {
		t.Errorf("kinematics not cleared: v=%v w=%v f=%v", rb.LinearVelocity, rb.AngularVelocity, rb.Force)
	}
	if len(rb.Contacts) != 0 {
		t.Error("contact cache not cleared")
	}
	if rb.Sleeping {
		t.Error("body should be awake after HardReset")
	}

	// 接触缓存已清空，仍在地面上的球会重新触发“开始接触”
	w.rigid.Update(testDt)
	if count != 2 {
		t.Errorf("got %d events after reset, want 2", count)
	}
}

// TestRigidBodySystem_Sleep 静止在地面上的刚体进入休眠
func TestRigidBodySystem_Sleep(t *testing.T) {
	w := newTestWorld(t, true)
	w.rigid.Teleport(w.ball, r3.Vec{Y: w.physics.BallRadius, Z: 5})
	w.rigid.SetLinearVelocity(w.ball, r3.Vec{})

	for i := 0; i < 120; i++ {
		w.rigid.Update(testDt)
	}

	rb := w.body()
	if !rb.Sleeping {
		t.Fatal("resting body should fall asleep")
	}
	before := w.position()
	w.rigid.Update(testDt)
	if w.position() != before {
		t.Error("sleeping body should not move")
	}

	w.rigid.AddForce(w.ball, r3.Vec{Z: 1})
	if rb.Sleeping {
		t.Error("AddForce should wake the body")
	}
}

// TestRigidBodySystem_Surfaces 表面几何检测
func TestRigidBodySystem_Surfaces(t *testing.T) {
	controls := config.DefaultBowlingControlsConfig()
	pitch := &components.SurfaceComponent{
		Tag:         "Pitch",
		Shape:       components.SurfacePlane,
		Center:      controls.Pitch.Center,
		HalfExtents: controls.Pitch.HalfExtents,
	}
	stumps := &components.SurfaceComponent{
		Tag:         "Stumps",
		Shape:       components.SurfaceBox,
		Center:      controls.Stumps.Center,
		HalfExtents: controls.Stumps.HalfExtents,
	}
	const r = 0.036

	tests := []struct {
		name       string
		surface    *components.SurfaceComponent
		center     r3.Vec
		wantHit    bool
		wantNormal r3.Vec
	}{
		{"地面上方", pitch, r3.Vec{Y: 0.5, Z: 10}, false, r3.Vec{}},
		{"接触地面", pitch, r3.Vec{Y: 0.02, Z: 10}, true, r3.Vec{Y: 1}},
		{"穿透地面", pitch, r3.Vec{Y: -0.05, Z: 10}, true, r3.Vec{Y: 1}},
		{"超出地面横向范围", pitch, r3.Vec{X: 4, Y: 0, Z: 10}, false, r3.Vec{}},
		{"撞到三柱门正面", stumps, r3.Vec{Y: 0.3, Z: 20.12 - 0.1 - 0.02}, true, r3.Vec{Z: -1}},
		{"从三柱门上方越过", stumps, r3.Vec{Y: 0.9, Z: 20.12}, false, r3.Vec{}},
		{"球心在三柱门内部", stumps, r3.Vec{X: 0.1, Y: 0.36, Z: 20.12}, true, r3.Vec{X: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, hit := overlap(tt.center, r, tt.surface)
			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if hit && !vecNear(c.normal, tt.wantNormal, 1e-9) {
				t.Errorf("normal = %v, want %v", c.normal, tt.wantNormal)
			}
			if hit && c.depth <= 0 {
				t.Errorf("depth = %v, want > 0", c.depth)
			}
		})
	}
}

// TestRigidBodySystem_EngineResponse 引擎自身的碰撞响应会反弹并推出穿透
func TestRigidBodySystem_EngineResponse(t *testing.T) {
	em := ecs.NewEntityManager()
	physics := config.DefaultDeliveryPhysicsConfig()
	rigid := NewRigidBodySystem(em, physics.Gravity)
	ball, _ := entities.NewBallEntity(em, physics, 0, r3.Vec{})
	entities.NewSurfaceEntity(em, components.SurfacePlane, config.SurfaceConfig{
		Tag:         "Floor",
		Restitution: 0.5,
	})

	rigid.Teleport(ball, r3.Vec{Y: 0.05})
	rigid.SetLinearVelocity(ball, r3.Vec{Y: -5})
	rigid.Update(testDt)

	v, _ := rigid.LinearVelocity(ball)
	if v.Y <= 0 {
		t.Errorf("vy = %v, want upward after impact", v.Y)
	}
	p, _ := ecs.GetComponent[*components.PositionComponent](em, ball)
	if p.Position.Y < physics.BallRadius-1e-9 {
		t.Errorf("y = %v, want >= radius after push-out", p.Position.Y)
	}
}

func TestRigidBodySystem_MissingEntity(t *testing.T) {
	em := ecs.NewEntityManager()
	rigid := NewRigidBodySystem(em, -9.81)

	if rigid.Gravity() != 9.81 {
		t.Errorf("Gravity() = %v, want magnitude 9.81", rigid.Gravity())
	}
	if _, ok := rigid.LinearVelocity(ecs.EntityID(7)); ok {
		t.Error("LinearVelocity should report missing body")
	}
	if _, ok := rigid.Mass(ecs.EntityID(7)); ok {
		t.Error("Mass should report missing body")
	}
	// 对不存在的实体操作不应 panic
	rigid.SetLinearVelocity(ecs.EntityID(7), r3.Vec{X: 1})
	rigid.AddForce(ecs.EntityID(7), r3.Vec{X: 1})
	rigid.HardReset(ecs.EntityID(7))
	rigid.Teleport(ecs.EntityID(7), r3.Vec{})
}

// TestRigidBodySystem_PlaneContactPointIsExactTouchdown 平面接触点取步内精确触地位置，而不是步末位置
func TestRigidBodySystem_PlaneContactPointIsExactTouchdown(t *testing.T) {
	w := newTestWorld(t, true)

	p0 := r3.Vec{X: 0.2, Y: 1, Z: 3}
	v0 := r3.Vec{X: 0.5, Z: 5}
	w.rigid.Teleport(w.ball, p0)
	w.rigid.SetLinearVelocity(w.ball, v0)

	var events []ContactEvent
	w.rigid.OnContact(func(ev ContactEvent) { events = append(events, ev) })

	for i := 0; i < 40 && len(events) == 0; i++ {
		w.rigid.Update(testDt)
	}
	if len(events) == 0 {
		t.Fatal("no contact event")
	}

	// 球心下降到半径高度的时刻
	touch := math.Sqrt(2 * (p0.Y - w.physics.BallRadius) / w.physics.Gravity)
	if math.Mod(touch, testDt) < 1e-3 {
		t.Fatalf("touchdown %v should fall inside a step for this check to mean anything", touch)
	}
	want := r3.Vec{X: p0.X + v0.X*touch, Y: 0, Z: p0.Z + v0.Z*touch}
	if !vecNear(events[0].Position, want, 1e-9) {
		t.Errorf("contact point = %v, want %v", events[0].Position, want)
	}
}

func TestTouchdownTime(t *testing.T) {
	const dt = 0.1
	tests := []struct {
		name      string
		h, vy, ay float64
		want      float64
	}{
		{"匀速下落", 0.05, -1, 0, 0.05},
		{"自由落体", 0.5 * 9.81 * 0.04 * 0.04, 0, -9.81, 0.04},
		{"已经接触", 0, -1, -9.81, 0},
		{"本步内不会触地", 1, -1, 0, dt},
		{"向上运动且无加速度", 0.01, 1, 0, dt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := touchdownTime(tt.h, tt.vy, tt.ay, dt); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("touchdownTime(%v, %v, %v) = %v, want %v", tt.h, tt.vy, tt.ay, got, tt.want)
			}
		})
	}
}
