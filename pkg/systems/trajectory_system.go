package systems

import (
	"fmt"
	"log"

	"github.com/decker502/cricket/internal/ballistics"
	"github.com/decker502/cricket/pkg/components"
	"github.com/decker502/cricket/pkg/config"
	"github.com/decker502/cricket/pkg/ecs"
	"github.com/decker502/cricket/pkg/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// BounceEvent 反弹变换完成后通知监听器
type BounceEvent struct {
	Ball     ecs.EntityID
	Kind     types.DeliveryKind
	Position r3.Vec
	Incoming r3.Vec // 触地前一步采样的速度
	Outgoing r3.Vec // 变换后写回引擎的速度
}

// TrajectorySystem 投球弹道系统
//
// 职责：
//   - Bowl: 硬重置球、求解出手速度并发射
//   - Update: 每个固定步采样速度，摇摆球施加侧向力
//   - HandleContact: 首次触地时执行一次反弹变换
//
// Update 必须在同一帧的 RigidBodySystem.Update 之前调用，
// 这样采样到的是施力与碰撞响应之前的速度。
type TrajectorySystem struct {
	entityManager *ecs.EntityManager
	engine        RigidBodyEngine
	config        *config.DeliveryPhysicsConfig

	onBounce func(BounceEvent)

	// Verbose 为 true 时输出每步的调试日志
	Verbose bool
}

// NewTrajectorySystem 创建弹道系统，并向引擎注册接触监听
//
// 参数:
//   - em: 实体管理器
//   - engine: 刚体引擎
//   - cfg: 投球物理配置
//
// 返回:
//   - *TrajectorySystem: 弹道系统实例
func NewTrajectorySystem(em *ecs.EntityManager, engine RigidBodyEngine, cfg *config.DeliveryPhysicsConfig) *TrajectorySystem {
	s := &TrajectorySystem{
		entityManager: em,
		engine:        engine,
		config:        cfg,
	}
	engine.OnContact(s.HandleContact)
	return s
}

// SetBounceListener 设置反弹回调（例如播放触地音效）
func (s *TrajectorySystem) SetBounceListener(listener func(BounceEvent)) {
	s.onBounce = listener
}

// Bowl 发射一次投球
//
// 所有校验都在修改任何状态之前完成：校验失败时球保持原状。
// 球还在空中时再次投球是允许的，上一球直接作废。
//
// 参数:
//   - ball: 球实体，需要 FlightComponent 并由引擎管理
//   - d: 投球请求
//
// 返回:
//   - error: 实体缺少组件，或出手速度无法求解
func (s *TrajectorySystem) Bowl(ball ecs.EntityID, d components.Delivery) error {
	flight, ok := ecs.GetComponent[*components.FlightComponent](s.entityManager, ball)
	if !ok {
		return fmt.Errorf("failed to bowl: entity %d has no FlightComponent", ball)
	}
	mass, ok := s.engine.Mass(ball)
	if !ok {
		return fmt.Errorf("failed to bowl: entity %d has no rigid body", ball)
	}

	v0, err := ballistics.SolveLaunch(s.launchParams(d, mass))
	if err != nil {
		return fmt.Errorf("failed to bowl: %w", err)
	}

	if flight.Phase == components.PhaseAirborne {
		log.Printf("[TrajectorySystem] Bowl while airborne, aborting previous delivery")
	}

	s.engine.HardReset(ball)
	if trail, ok := ecs.GetComponent[*components.TrailComponent](s.entityManager, ball); ok {
		trail.Clear()
	}
	s.engine.Teleport(ball, d.Origin)

	*flight = components.FlightComponent{
		Phase:          components.PhaseAirborne,
		Delivery:       d,
		LaunchVelocity: v0,
	}
	s.engine.SetLinearVelocity(ball, v0)

	log.Printf("[TrajectorySystem] Bowled %s (%s), accuracy %.2f, launch velocity (%.3f, %.3f, %.3f)",
		d.Kind, d.Side, d.Accuracy, v0.X, v0.Y, v0.Z)
	return nil
}

// Reset 把球的飞行状态恢复为空闲，不改变球的运动
func (s *TrajectorySystem) Reset(ball ecs.EntityID) {
	flight, ok := ecs.GetComponent[*components.FlightComponent](s.entityManager, ball)
	if !ok {
		return
	}
	flight.Phase = components.PhaseIdle
	flight.FlightTime = 0
}

// Update 推进所有空中的球
//
// 先采样速度，再对摇摆球施加 swingStrength·accuracy 的侧向力。
// 已反弹或空闲的球不受影响。
func (s *TrajectorySystem) Update(deltaTime float64) {
	balls := ecs.GetEntitiesWith1[*components.FlightComponent](s.entityManager)

	for _, id := range balls {
		flight, _ := ecs.GetComponent[*components.FlightComponent](s.entityManager, id)
		if flight.Phase != components.PhaseAirborne {
			continue
		}

		v, ok := s.engine.LinearVelocity(id)
		if !ok {
			continue
		}
		flight.LastObservedVelocity = v

		if flight.Delivery.Kind == types.DeliverySwing {
			s.engine.AddForce(id, ballistics.SwingForce(s.config.SwingStrength, flight.Delivery.Accuracy, flight.Delivery.Side))
		}
		flight.FlightTime += deltaTime

		if s.Verbose {
			log.Printf("[TrajectorySystem] t=%.3f v=(%.3f, %.3f, %.3f)", flight.FlightTime, v.X, v.Y, v.Z)
		}
	}
}

// HandleContact 处理引擎的接触事件
//
// 只有空中的球碰到地面标签的表面才会触发反弹变换；
// 其他接触（三柱门、反弹后的再次触地）一律忽略。
func (s *TrajectorySystem) HandleContact(ev ContactEvent) {
	flight, ok := ecs.GetComponent[*components.FlightComponent](s.entityManager, ev.Body)
	if !ok || flight.Phase != components.PhaseAirborne {
		return
	}
	if ev.Surface != s.config.GroundSurfaceTag {
		if s.Verbose {
			log.Printf("[TrajectorySystem] Ignored contact with %q", ev.Surface)
		}
		return
	}

	d := flight.Delivery
	incoming := flight.LastObservedVelocity
	outgoing := ballistics.ApplyBounce(incoming, ballistics.BounceParams{
		Kind:         d.Kind,
		Accuracy:     d.Accuracy,
		Side:         d.Side,
		Bounciness:   s.config.Bounciness,
		GripLoss:     s.config.GripLoss,
		SpinStrength: s.config.SpinStrength,
	})
	s.engine.SetLinearVelocity(ev.Body, outgoing)

	flight.Phase = components.PhaseBounced
	flight.BounceVelocity = outgoing
	flight.BouncePosition = ev.Position

	log.Printf("[TrajectorySystem] Bounce at (%.3f, %.3f, %.3f) after %.3fs",
		ev.Position.X, ev.Position.Y, ev.Position.Z, flight.FlightTime)

	if s.onBounce != nil {
		s.onBounce(BounceEvent{
			Ball:     ev.Body,
			Kind:     d.Kind,
			Position: ev.Position,
			Incoming: incoming,
			Outgoing: outgoing,
		})
	}
}

func (s *TrajectorySystem) launchParams(d components.Delivery, mass float64) ballistics.LaunchParams {
	return ballistics.LaunchParams{
		Origin:        d.Origin,
		Target:        d.Target,
		Kind:          d.Kind,
		Accuracy:      d.Accuracy,
		Side:          d.Side,
		DeliverySpeed: s.config.DeliverySpeed,
		Gravity:       s.engine.Gravity(),
		SwingStrength: s.config.SwingStrength,
		Mass:          mass,
	}
}
