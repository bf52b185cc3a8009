package systems

import (
	"log"
	"math"

	"github.com/decker502/cricket/internal/ballistics"
	"github.com/decker502/cricket/pkg/components"
	"github.com/decker502/cricket/pkg/ecs"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// restingSpeed 低于此法向速度的撞击不再反弹，直接贴合表面
	restingSpeed = 0.5
	// sleepSpeed 低于此速度且保持接触的刚体开始计时休眠
	sleepSpeed = 0.05
	// sleepDelay 低速持续多久后进入休眠（秒）
	sleepDelay = 0.5
)

// ContactEvent 刚体开始接触某个静态表面时派发的事件
// 每次“开始接触”只派发一次，持续接触不会重复派发
type ContactEvent struct {
	Body          ecs.EntityID // 发生接触的刚体
	SurfaceEntity ecs.EntityID // 被接触的表面实体
	Surface       string       // 表面标签
	Position      r3.Vec       // 接触点（平面为步内精确触地点）
	Normal        r3.Vec       // 表面法线（指向刚体）
}

// RigidBodyEngine 弹道系统依赖的刚体引擎能力
// RigidBodySystem 是仓库内的参考实现，也可以替换为其他引擎的适配器
type RigidBodyEngine interface {
	LinearVelocity(id ecs.EntityID) (r3.Vec, bool)
	SetLinearVelocity(id ecs.EntityID, v r3.Vec)
	// AddForce 累积一个作用于下一步积分的持续力
	AddForce(id ecs.EntityID, f r3.Vec)
	// HardReset 清零线速度、角速度、力累积和接触缓存，并唤醒刚体
	HardReset(id ecs.EntityID)
	Teleport(id ecs.EntityID, pos r3.Vec)
	Mass(id ecs.EntityID) (float64, bool)
	// Gravity 返回重力加速度大小
	Gravity() float64
	// OnContact 注册接触事件监听器，在 Update 内同步调用
	OnContact(listener func(ContactEvent))
}

// RigidBodySystem 参考刚体积分系统
//
// 职责：
//   - 对所有未休眠的刚体做恒定加速度积分（重力 + 本步累积的外力）
//   - 检测球体与水平面 / 轴对齐盒子的接触，并做简单的恢复与摩擦响应
//   - 在刚体开始接触表面时同步派发 ContactEvent
//
// 非并发安全，只能在游戏主循环中调用。
type RigidBodySystem struct {
	entityManager *ecs.EntityManager
	gravity       float64
	listeners     []func(ContactEvent)

	// Verbose 为 true 时输出每次接触的调试日志
	Verbose bool
}

// NewRigidBodySystem 创建刚体系统
//
// 参数:
//   - em: 实体管理器
//   - gravity: 重力加速度大小（米/秒²），符号被忽略
//
// 返回:
//   - *RigidBodySystem: 刚体系统实例
func NewRigidBodySystem(em *ecs.EntityManager, gravity float64) *RigidBodySystem {
	return &RigidBodySystem{
		entityManager: em,
		gravity:       math.Abs(gravity),
	}
}

// Gravity 返回重力加速度大小
func (s *RigidBodySystem) Gravity() float64 {
	return s.gravity
}

// OnContact 注册接触事件监听器
func (s *RigidBodySystem) OnContact(listener func(ContactEvent)) {
	s.listeners = append(s.listeners, listener)
}

func (s *RigidBodySystem) body(id ecs.EntityID) (*components.RigidBodyComponent, bool) {
	rb, ok := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, id)
	return rb, ok && rb != nil
}

func wake(rb *components.RigidBodyComponent) {
	rb.Sleeping = false
	rb.SleepTimer = 0
}

// LinearVelocity 返回刚体当前线速度
func (s *RigidBodySystem) LinearVelocity(id ecs.EntityID) (r3.Vec, bool) {
	rb, ok := s.body(id)
	if !ok {
		return r3.Vec{}, false
	}
	return rb.LinearVelocity, true
}

// SetLinearVelocity 直接写入线速度并唤醒刚体
func (s *RigidBodySystem) SetLinearVelocity(id ecs.EntityID, v r3.Vec) {
	rb, ok := s.body(id)
	if !ok {
		return
	}
	rb.LinearVelocity = v
	wake(rb)
}

// AddForce 累积一个持续力，下一次 Update 积分后清零
func (s *RigidBodySystem) AddForce(id ecs.EntityID, f r3.Vec) {
	rb, ok := s.body(id)
	if !ok {
		return
	}
	rb.Force = r3.Add(rb.Force, f)
	wake(rb)
}

// HardReset 清除刚体的全部运动状态
// 之后的行为与一个刚创建的刚体完全一致
func (s *RigidBodySystem) HardReset(id ecs.EntityID) {
	rb, ok := s.body(id)
	if !ok {
		return
	}
	rb.LinearVelocity = r3.Vec{}
	rb.AngularVelocity = r3.Vec{}
	rb.Force = r3.Vec{}
	rb.Contacts = nil
	wake(rb)
}

// Teleport 把刚体移动到指定位置，不改变速度
func (s *RigidBodySystem) Teleport(id ecs.EntityID, pos r3.Vec) {
	p, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
	if !ok {
		return
	}
	p.Position = pos
	if rb, ok := s.body(id); ok {
		wake(rb)
	}
}

// Mass 返回刚体质量
func (s *RigidBodySystem) Mass(id ecs.EntityID) (float64, bool) {
	rb, ok := s.body(id)
	if !ok {
		return 0, false
	}
	return rb.Mass, true
}

// contact 一次球体与表面的重叠
type contact struct {
	surface ecs.EntityID
	comp    *components.SurfaceComponent
	point   r3.Vec
	normal  r3.Vec
	depth   float64
}

// Update 推进一个固定步
//
// 积分使用恒定加速度的精确形式 p += v·dt + ½·a·dt²，
// 因此在无接触时与解析轨迹逐步一致。
// 接触事件在所有刚体积分完成后按注册顺序同步派发。
//
// 参数:
//   - dt: 步长（秒）
func (s *RigidBodySystem) Update(dt float64) {
	if dt <= 0 {
		return
	}

	surfaces := ecs.GetEntitiesWith1[*components.SurfaceComponent](s.entityManager)
	bodies := ecs.GetEntitiesWith3[
		*components.RigidBodyComponent,
		*components.PositionComponent,
		*components.SphereColliderComponent,
	](s.entityManager)

	var events []ContactEvent

	for _, id := range bodies {
		rb, _ := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		sphere, _ := ecs.GetComponent[*components.SphereColliderComponent](s.entityManager, id)
		if rb.Sleeping {
			continue
		}

		accel := r3.Vec{}
		if rb.Mass > 0 {
			accel = r3.Scale(1/rb.Mass, rb.Force)
		}
		if rb.UseGravity {
			accel.Y -= s.gravity
		}

		prevPos, prevVel := pos.Position, rb.LinearVelocity
		pos.Position = ballistics.PositionAt(prevPos, prevVel, accel, dt)
		rb.LinearVelocity = r3.Add(rb.LinearVelocity, r3.Scale(dt, accel))
		rb.Force = r3.Vec{}

		touching := make(map[ecs.EntityID]bool)
		for _, sid := range surfaces {
			surface, _ := ecs.GetComponent[*components.SurfaceComponent](s.entityManager, sid)
			c, ok := overlap(pos.Position, sphere.Radius, surface)
			if !ok {
				continue
			}
			c.surface = sid
			if surface.Shape == components.SurfacePlane {
				c.point = planeTouchdown(prevPos, prevVel, accel, sphere.Radius, surface.Center.Y, dt, c.point)
			}
			s.resolve(rb, pos, sphere.Radius, c, dt)
			touching[sid] = true

			if !rb.Contacts[sid] {
				events = append(events, ContactEvent{
					Body:          id,
					SurfaceEntity: sid,
					Surface:       surface.Tag,
					Position:      c.point,
					Normal:        c.normal,
				})
			}
		}
		rb.Contacts = touching

		if len(touching) > 0 && r3.Norm(rb.LinearVelocity) < sleepSpeed {
			rb.SleepTimer += dt
			if rb.SleepTimer >= sleepDelay {
				rb.Sleeping = true
				rb.LinearVelocity = r3.Vec{}
				rb.AngularVelocity = r3.Vec{}
			}
		} else {
			rb.SleepTimer = 0
		}
	}

	for _, ev := range events {
		if s.Verbose {
			log.Printf("[RigidBodySystem] Body %d hit %q at (%.3f, %.3f, %.3f)",
				ev.Body, ev.Surface, ev.Position.X, ev.Position.Y, ev.Position.Z)
		}
		for _, listener := range s.listeners {
			listener(ev)
		}
	}
}

// resolve 推出穿透并应用表面的恢复与摩擦
func (s *RigidBodySystem) resolve(rb *components.RigidBodyComponent, pos *components.PositionComponent, radius float64, c contact, dt float64) {
	pos.Position = r3.Add(pos.Position, r3.Scale(c.depth, c.normal))

	v := rb.LinearVelocity
	vn := r3.Dot(v, c.normal)
	if vn < 0 {
		if -vn > restingSpeed {
			v = r3.Sub(v, r3.Scale((1+c.comp.Restitution)*vn, c.normal))
		} else {
			v = r3.Sub(v, r3.Scale(vn, c.normal))
		}
	}

	vn = r3.Dot(v, c.normal)
	tangent := r3.Sub(v, r3.Scale(vn, c.normal))
	keep := math.Max(0, 1-c.comp.Friction*dt)
	tangent = r3.Scale(keep, tangent)
	rb.LinearVelocity = r3.Add(r3.Scale(vn, c.normal), tangent)

	// 贴地滚动：v = ω × (r·n)
	if radius > 0 {
		rb.AngularVelocity = r3.Scale(1/radius, r3.Cross(c.normal, tangent))
	}
}

// planeTouchdown 返回本步内球体首次触及平面的地面点
// 步初已经穿透时返回 fallback
func planeTouchdown(p0, v0, accel r3.Vec, radius, planeY, dt float64, fallback r3.Vec) r3.Vec {
	h := p0.Y - planeY - radius
	if h < 0 {
		return fallback
	}
	tau := touchdownTime(h, v0.Y, accel.Y, dt)
	p := ballistics.PositionAt(p0, v0, accel, tau)
	return r3.Vec{X: p.X, Y: planeY, Z: p.Z}
}

// touchdownTime 求 h + vy·τ + ½·ay·τ² = 0 在 [0, dt] 内的最小根，无解时返回 dt
func touchdownTime(h, vy, ay, dt float64) float64 {
	if h <= 0 {
		return 0
	}
	best := dt
	consider := func(tau float64) {
		if tau >= 0 && tau < best {
			best = tau
		}
	}

	if math.Abs(ay) < 1e-12 {
		if vy < 0 {
			consider(-h / vy)
		}
		return best
	}

	disc := vy*vy - 2*ay*h
	if disc < 0 {
		return best
	}
	sq := math.Sqrt(disc)
	consider((-vy - sq) / ay)
	consider((-vy + sq) / ay)
	return best
}

// overlap 检测球体与表面是否重叠
func overlap(center r3.Vec, radius float64, surface *components.SurfaceComponent) (contact, bool) {
	switch surface.Shape {
	case components.SurfacePlane:
		return overlapPlane(center, radius, surface)
	case components.SurfaceBox:
		return overlapBox(center, radius, surface)
	}
	return contact{}, false
}

func overlapPlane(center r3.Vec, radius float64, surface *components.SurfaceComponent) (contact, bool) {
	half := surface.HalfExtents
	if half.X > 0 && math.Abs(center.X-surface.Center.X) > half.X {
		return contact{}, false
	}
	if half.Z > 0 && math.Abs(center.Z-surface.Center.Z) > half.Z {
		return contact{}, false
	}

	dist := center.Y - surface.Center.Y
	if dist >= radius {
		return contact{}, false
	}
	return contact{
		comp:   surface,
		point:  r3.Vec{X: center.X, Y: surface.Center.Y, Z: center.Z},
		normal: r3.Vec{Y: 1},
		depth:  radius - dist,
	}, true
}

func overlapBox(center r3.Vec, radius float64, surface *components.SurfaceComponent) (contact, bool) {
	lo := r3.Sub(surface.Center, surface.HalfExtents)
	hi := r3.Add(surface.Center, surface.HalfExtents)
	closest := r3.Vec{
		X: math.Max(lo.X, math.Min(center.X, hi.X)),
		Y: math.Max(lo.Y, math.Min(center.Y, hi.Y)),
		Z: math.Max(lo.Z, math.Min(center.Z, hi.Z)),
	}

	d := r3.Sub(center, closest)
	dist := r3.Norm(d)
	if dist >= radius {
		return contact{}, false
	}
	if dist > 1e-9 {
		return contact{
			comp:   surface,
			point:  closest,
			normal: r3.Scale(1/dist, d),
			depth:  radius - dist,
		}, true
	}

	// 球心已经进入盒子：沿穿透最浅的轴推出
	type axis struct {
		depth  float64
		normal r3.Vec
	}
	candidates := []axis{
		{center.X - lo.X, r3.Vec{X: -1}},
		{hi.X - center.X, r3.Vec{X: 1}},
		{center.Y - lo.Y, r3.Vec{Y: -1}},
		{hi.Y - center.Y, r3.Vec{Y: 1}},
		{center.Z - lo.Z, r3.Vec{Z: -1}},
		{hi.Z - center.Z, r3.Vec{Z: 1}},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.depth < best.depth {
			best = c
		}
	}
	return contact{
		comp:   surface,
		point:  center,
		normal: best.normal,
		depth:  best.depth + radius,
	}, true
}
