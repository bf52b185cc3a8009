package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/decker502/cricket/internal/ballistics"
	"github.com/decker502/cricket/pkg/components"
	"github.com/decker502/cricket/pkg/ecs"
	"github.com/decker502/cricket/pkg/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// TestTrajectorySystem_BowlSetsLaunchState 投球后球位于出手点并带有求解速度
func TestTrajectorySystem_BowlSetsLaunchState(t *testing.T) {
	w := newTestWorld(t, false)
	d := components.Delivery{
		Origin:   r3.Vec{X: 0.6, Y: 2, Z: 0},
		Target:   r3.Vec{X: 0, Y: 0, Z: 16},
		Kind:     types.DeliverySwing,
		Accuracy: 1,
		Side:     types.SideRight,
	}

	if err := w.trajectory.Bowl(w.ball, d); err != nil {
		t.Fatalf("Bowl() error = %v", err)
	}

	if w.position() != d.Origin {
		t.Errorf("position = %v, want origin %v", w.position(), d.Origin)
	}

	// t = 16 / 25 = 0.64；右侧摇摆漂移 = ½·(-2)·0.64² = -0.4096
	tFlight := 0.64
	wantVx := (-0.6 - (-0.4096)) / tFlight
	wantVy := (-2 + 0.5*9.81*tFlight*tFlight) / tFlight
	v, _ := w.rigid.LinearVelocity(w.ball)
	if !vecNear(v, r3.Vec{X: wantVx, Y: wantVy, Z: 25}, 1e-9) {
		t.Errorf("launch velocity = %v, want (%v, %v, 25)", v, wantVx, wantVy)
	}

	f := w.flight()
	if f.Phase != components.PhaseAirborne {
		t.Errorf("Phase = %s, want airborne", f.Phase)
	}
	if f.Delivery != d || f.LaunchVelocity != v {
		t.Error("delivery and launch velocity should be recorded")
	}
}

// TestTrajectorySystem_ValidationBeforeMutation 校验失败时球的状态保持不变
func TestTrajectorySystem_ValidationBeforeMutation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(w *testWorld, d *components.Delivery)
		wantErr error
	}{
		{
			name: "前进距离为零",
			mutate: func(w *testWorld, d *components.Delivery) {
				d.Target.Z = d.Origin.Z
			},
			wantErr: ballistics.ErrZeroForwardOffset,
		},
		{
			name: "出手速度为零",
			mutate: func(w *testWorld, d *components.Delivery) {
				w.physics.DeliverySpeed = 0
			},
			wantErr: ballistics.ErrInvalidDeliverySpeed,
		},
		{
			name: "摇摆球质量为零",
			mutate: func(w *testWorld, d *components.Delivery) {
				w.body().Mass = 0
			},
			wantErr: ballistics.ErrInvalidMass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t, false)
			first := components.Delivery{
				Origin: r3.Vec{X: 0.6, Y: 2}, Target: r3.Vec{Z: 12},
				Kind: types.DeliverySwing, Accuracy: 1, Side: types.SideRight,
			}
			if err := w.trajectory.Bowl(w.ball, first); err != nil {
				t.Fatalf("setup Bowl() error = %v", err)
			}
			for i := 0; i < 5; i++ {
				w.step()
			}

			posBefore := w.position()
			velBefore, _ := w.rigid.LinearVelocity(w.ball)
			flightBefore := *w.flight()
			trail, _ := ecs.GetComponent[*components.TrailComponent](w.em, w.ball)
			trailBefore := len(trail.Points)

			d := first
			tt.mutate(w, &d)
			err := w.trajectory.Bowl(w.ball, d)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Bowl() error = %v, want %v", err, tt.wantErr)
			}

			velAfter, _ := w.rigid.LinearVelocity(w.ball)
			if w.position() != posBefore || velAfter != velBefore {
				t.Error("rigid body state changed by a rejected Bowl")
			}
			if *w.flight() != flightBefore {
				t.Error("flight state changed by a rejected Bowl")
			}
			if len(trail.Points) != trailBefore {
				t.Error("trail cleared by a rejected Bowl")
			}
		})
	}
}

func TestTrajectorySystem_BowlMissingComponents(t *testing.T) {
	w := newTestWorld(t, false)
	d := components.Delivery{Target: r3.Vec{Z: 10}}

	bare := w.em.CreateEntity()
	if err := w.trajectory.Bowl(bare, d); err == nil {
		t.Error("expected error for entity without FlightComponent")
	}

	flightOnly := w.em.CreateEntity()
	ecs.AddComponent(w.em, flightOnly, &components.FlightComponent{})
	if err := w.trajectory.Bowl(flightOnly, d); err == nil {
		t.Error("expected error for entity without rigid body")
	}
}

// TestTrajectorySystem_SteppedRoundTrip 逐步积分后准确到达目标
// 起点到目标 10 米、速度 25 米/秒，飞行时间 0.4 秒正好是 24 个固定步
func TestTrajectorySystem_SteppedRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		kind     types.DeliveryKind
		side     types.BowlingSide
		accuracy float64
		origin   r3.Vec
		target   r3.Vec
	}{
		{"右侧摇摆", types.DeliverySwing, types.SideRight, 1.0, r3.Vec{X: 0.6, Y: 2}, r3.Vec{X: 0.2, Z: 10}},
		{"左侧摇摆", types.DeliverySwing, types.SideLeft, 1.0, r3.Vec{X: -0.6, Y: 2}, r3.Vec{X: -0.2, Z: 10}},
		{"低精度摇摆", types.DeliverySwing, types.SideRight, 0.5, r3.Vec{X: 0.6, Y: 2}, r3.Vec{X: -1, Z: 10}},
		{"右侧旋转", types.DeliverySpin, types.SideRight, 1.0, r3.Vec{X: 0.6, Y: 2}, r3.Vec{X: 0.5, Z: 10}},
		{"左侧旋转", types.DeliverySpin, types.SideLeft, 0.75, r3.Vec{X: -0.6, Y: 2}, r3.Vec{X: 1, Z: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t, false)
			d := components.Delivery{
				Origin: tt.origin, Target: tt.target,
				Kind: tt.kind, Accuracy: tt.accuracy, Side: tt.side,
			}
			if err := w.trajectory.Bowl(w.ball, d); err != nil {
				t.Fatalf("Bowl() error = %v", err)
			}

			for i := 0; i < 24; i++ {
				w.step()
			}

			if got := w.position(); !vecNear(got, tt.target, 1e-6) {
				t.Errorf("position after 0.4s = %v, want %v", got, tt.target)
			}
			if math.Abs(w.flight().FlightTime-0.4) > 1e-9 {
				t.Errorf("FlightTime = %v, want 0.4", w.flight().FlightTime)
			}
		})
	}
}

// TestTrajectorySystem_SwingForceOnlyWhileAirborne 摇摆力只在空中施加
func TestTrajectorySystem_SwingForceOnlyWhileAirborne(t *testing.T) {
	w := newTestWorld(t, false)
	d := components.Delivery{
		Origin: r3.Vec{X: 0.6, Y: 2}, Target: r3.Vec{Z: 12},
		Kind: types.DeliverySwing, Accuracy: 0.8, Side: types.SideLeft,
	}
	if err := w.trajectory.Bowl(w.ball, d); err != nil {
		t.Fatalf("Bowl() error = %v", err)
	}

	w.trajectory.Update(testDt)
	if got := w.body().Force; got != (r3.Vec{X: 2 * 0.8}) {
		t.Errorf("swing force = %v, want (1.6, 0, 0) for left side", got)
	}
	w.rigid.Update(testDt)

	w.trajectory.HandleContact(ContactEvent{Body: w.ball, Surface: "Pitch"})
	w.trajectory.Update(testDt)
	if got := w.body().Force; got != (r3.Vec{}) {
		t.Errorf("force after bounce = %v, want zero", got)
	}
}

// TestTrajectorySystem_SpinAppliesNoForce 旋转球空中不受侧向力
func TestTrajectorySystem_SpinAppliesNoForce(t *testing.T) {
	w := newTestWorld(t, false)
	d := components.Delivery{
		Origin: r3.Vec{Y: 2}, Target: r3.Vec{Z: 12},
		Kind: types.DeliverySpin, Accuracy: 1, Side: types.SideRight,
	}
	if err := w.trajectory.Bowl(w.ball, d); err != nil {
		t.Fatalf("Bowl() error = %v", err)
	}
	w.trajectory.Update(testDt)
	if got := w.body().Force; got != (r3.Vec{}) {
		t.Errorf("spin force = %v, want zero", got)
	}
}

// TestTrajectorySystem_BounceUsesSampledVelocity 反弹以采样速度为入射速度，且只执行一次
func TestTrajectorySystem_BounceUsesSampledVelocity(t *testing.T) {
	w := newTestWorld(t, false)
	d := components.Delivery{
		Origin: r3.Vec{Y: 2}, Target: r3.Vec{Z: 12},
		Kind: types.DeliverySpin, Accuracy: 1, Side: types.SideRight,
	}
	if err := w.trajectory.Bowl(w.ball, d); err != nil {
		t.Fatalf("Bowl() error = %v", err)
	}

	var bounces []BounceEvent
	w.trajectory.SetBounceListener(func(ev BounceEvent) { bounces = append(bounces, ev) })

	sampled := r3.Vec{X: 0, Y: -10, Z: 20}
	w.rigid.SetLinearVelocity(w.ball, sampled)
	w.trajectory.Update(testDt)
	// 引擎的碰撞响应已经改写了速度
	w.rigid.SetLinearVelocity(w.ball, r3.Vec{Y: 3, Z: 15})

	w.trajectory.HandleContact(ContactEvent{Body: w.ball, Surface: "Pitch", Position: r3.Vec{Z: 11.9}})

	// 竖直：10 × 0.5 = 5；水平：20 × 0.85 = 17，再绕 +Y 转 4°
	rad := 4 * math.Pi / 180
	want := r3.Vec{X: 17 * math.Sin(rad), Y: 5, Z: 17 * math.Cos(rad)}
	v, _ := w.rigid.LinearVelocity(w.ball)
	if !vecNear(v, want, 1e-9) {
		t.Errorf("bounce velocity = %v, want %v", v, want)
	}

	f := w.flight()
	if !f.HasBounced() || f.BouncePosition != (r3.Vec{Z: 11.9}) || f.BounceVelocity != v {
		t.Errorf("bounce not recorded: %+v", f)
	}

	// 第二次触地不再变换
	w.rigid.SetLinearVelocity(w.ball, r3.Vec{Y: -2, Z: 10})
	w.trajectory.HandleContact(ContactEvent{Body: w.ball, Surface: "Pitch"})
	if v2, _ := w.rigid.LinearVelocity(w.ball); v2 != (r3.Vec{Y: -2, Z: 10}) {
		t.Errorf("second contact changed velocity to %v", v2)
	}
	if len(bounces) != 1 {
		t.Errorf("bounce listener called %d times, want 1", len(bounces))
	}
	if bounces[0].Incoming != sampled {
		t.Errorf("listener incoming = %v, want %v", bounces[0].Incoming, sampled)
	}
}

// TestTrajectorySystem_IgnoresOtherContacts 非地面接触与未投出的球都被忽略
func TestTrajectorySystem_IgnoresOtherContacts(t *testing.T) {
	w := newTestWorld(t, false)

	// 未投出
	w.rigid.SetLinearVelocity(w.ball, r3.Vec{Y: -1})
	w.trajectory.HandleContact(ContactEvent{Body: w.ball, Surface: "Pitch"})
	if w.flight().Phase != components.PhaseIdle {
		t.Error("idle ball should not bounce")
	}

	d := components.Delivery{
		Origin: r3.Vec{Y: 2}, Target: r3.Vec{Z: 20},
		Kind: types.DeliverySwing, Accuracy: 1, Side: types.SideRight,
	}
	if err := w.trajectory.Bowl(w.ball, d); err != nil {
		t.Fatalf("Bowl() error = %v", err)
	}
	w.trajectory.Update(testDt)
	before, _ := w.rigid.LinearVelocity(w.ball)

	w.trajectory.HandleContact(ContactEvent{Body: w.ball, Surface: "Stumps"})
	after, _ := w.rigid.LinearVelocity(w.ball)
	if after != before || w.flight().Phase != components.PhaseAirborne {
		t.Error("stumps contact should be ignored")
	}

	// 其他实体的接触
	w.trajectory.HandleContact(ContactEvent{Body: ecs.EntityID(999), Surface: "Pitch"})
	if w.flight().Phase != components.PhaseAirborne {
		t.Error("contact of another entity should not affect this ball")
	}
}

// TestTrajectorySystem_BowlMidFlightHardResets 空中再次投球不残留任何运动状态
func TestTrajectorySystem_BowlMidFlightHardResets(t *testing.T) {
	w := newTestWorld(t, true)
	first := components.Delivery{
		Origin: r3.Vec{X: 0.6, Y: 2}, Target: r3.Vec{X: -1, Z: 15},
		Kind: types.DeliverySwing, Accuracy: 1, Side: types.SideRight,
	}
	if err := w.trajectory.Bowl(w.ball, first); err != nil {
		t.Fatalf("Bowl() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		w.step()
	}
	// 残留的力与角速度
	w.trajectory.Update(testDt)
	w.body().AngularVelocity = r3.Vec{X: 30}

	second := components.Delivery{
		Origin: r3.Vec{X: -0.6, Y: 2}, Target: r3.Vec{X: 0.3, Y: 0.5, Z: 10},
		Kind: types.DeliverySpin, Accuracy: 0.5, Side: types.SideLeft,
	}
	if err := w.trajectory.Bowl(w.ball, second); err != nil {
		t.Fatalf("second Bowl() error = %v", err)
	}

	rb := w.body()
	if rb.Force != (r3.Vec{}) || rb.AngularVelocity != (r3.Vec{}) || len(rb.Contacts) != 0 {
		t.Errorf("residual state: force=%v angular=%v contacts=%v", rb.Force, rb.AngularVelocity, rb.Contacts)
	}
	f := w.flight()
	if f.LastObservedVelocity != (r3.Vec{}) || f.FlightTime != 0 || f.Delivery != second {
		t.Errorf("flight not reset: %+v", f)
	}
	trail, _ := ecs.GetComponent[*components.TrailComponent](w.em, w.ball)
	if len(trail.Points) != 0 {
		t.Errorf("trail has %d points, want 0", len(trail.Points))
	}

	// 新的一球与从未投过的球行为一致：24 步后到达目标
	for i := 0; i < 24; i++ {
		w.step()
	}
	if got := w.position(); !vecNear(got, second.Target, 1e-6) {
		t.Errorf("position = %v, want %v", got, second.Target)
	}
}

// TestTrajectorySystem_FullDeliveryOnPitch 在球场上完整投一球
func TestTrajectorySystem_FullDeliveryOnPitch(t *testing.T) {
	for _, side := range []types.BowlingSide{types.SideRight, types.SideLeft} {
		t.Run(side.String(), func(t *testing.T) {
			w := newTestWorld(t, true)
			var bounces int
			w.trajectory.SetBounceListener(func(BounceEvent) { bounces++ })

			d := components.Delivery{
				Origin:   r3.Vec{X: 0.6 * -side.LateralSign(), Y: 2},
				// 球心在半径高度触地，目标点抬高一个半径
				Target:   r3.Vec{X: 0.3, Y: w.physics.BallRadius, Z: 12},
				Kind:     types.DeliverySwing,
				Accuracy: 1,
				Side:     side,
			}
			if err := w.trajectory.Bowl(w.ball, d); err != nil {
				t.Fatalf("Bowl() error = %v", err)
			}

			for i := 0; i < 120; i++ {
				w.step()
			}

			f := w.flight()
			if !f.HasBounced() {
				t.Fatal("ball should have bounced")
			}
			if bounces != 1 {
				t.Errorf("bounced %d times, want 1", bounces)
			}
			// 触地点与目标重合，与步长无关
			if math.Abs(f.BouncePosition.X-d.Target.X) > 1e-6 {
				t.Errorf("bounce x = %v, want ≈ %v", f.BouncePosition.X, d.Target.X)
			}
			if math.Abs(f.BouncePosition.Z-d.Target.Z) > 1e-6 {
				t.Errorf("bounce z = %v, want ≈ %v", f.BouncePosition.Z, d.Target.Z)
			}
			if f.BounceVelocity.Y <= 0 {
				t.Errorf("bounce vy = %v, want upward", f.BounceVelocity.Y)
			}
		})
	}
}

func TestTrajectorySystem_Reset(t *testing.T) {
	w := newTestWorld(t, false)
	d := components.Delivery{Origin: r3.Vec{Y: 2}, Target: r3.Vec{Z: 12}, Kind: types.DeliverySpin, Accuracy: 1}
	if err := w.trajectory.Bowl(w.ball, d); err != nil {
		t.Fatalf("Bowl() error = %v", err)
	}
	w.step()

	w.trajectory.Reset(w.ball)
	if w.flight().Phase != components.PhaseIdle || w.flight().FlightTime != 0 {
		t.Errorf("flight after Reset = %+v", w.flight())
	}
	// 空闲的球不再采样
	w.flight().LastObservedVelocity = r3.Vec{}
	w.trajectory.Update(testDt)
	if w.flight().LastObservedVelocity != (r3.Vec{}) {
		t.Error("idle ball should not be sampled")
	}
}
