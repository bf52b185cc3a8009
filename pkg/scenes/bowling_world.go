package scenes

import (
	"fmt"

	"github.com/decker502/cricket/pkg/components"
	"github.com/decker502/cricket/pkg/config"
	"github.com/decker502/cricket/pkg/ecs"
	"github.com/decker502/cricket/pkg/entities"
	"github.com/decker502/cricket/pkg/systems"
	"gonum.org/v1/gonum/spatial/r3"
)

// BowlingWorld 投球模拟世界
// 持有实体管理器、所有系统以及球、投手、场地实体
// 交互场景与命令行验证工具共用同一套装配与步进顺序
type BowlingWorld struct {
	EntityManager *ecs.EntityManager

	RigidBody  *systems.RigidBodySystem
	Trajectory *systems.TrajectorySystem
	Trail      *systems.TrailSystem
	Selector   *systems.DeliverySelectorSystem // 无头运行时为 nil

	Ball   ecs.EntityID
	Bowler ecs.EntityID
	Pitch  ecs.EntityID
	Stumps ecs.EntityID

	Physics  *config.DeliveryPhysicsConfig
	Controls *config.BowlingControlsConfig
}

// NewBowlingWorld 装配投球世界
//
// 参数:
//   - physics: 投球物理配置
//   - controls: 投球操作配置
//   - input: 键盘输入；为 nil 时不创建投球选择系统（无头运行）
//
// 返回:
//   - *BowlingWorld: 装配完成的世界
//   - error: 配置无效时返回错误
func NewBowlingWorld(physics *config.DeliveryPhysicsConfig, controls *config.BowlingControlsConfig, input systems.DeliveryInput) (*BowlingWorld, error) {
	if err := physics.Validate(); err != nil {
		return nil, fmt.Errorf("invalid delivery physics config: %w", err)
	}
	if err := controls.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bowling controls config: %w", err)
	}

	em := ecs.NewEntityManager()
	w := &BowlingWorld{
		EntityManager: em,
		Physics:       physics,
		Controls:      controls,
	}

	w.RigidBody = systems.NewRigidBodySystem(em, physics.Gravity)
	w.Trajectory = systems.NewTrajectorySystem(em, w.RigidBody, physics)
	w.Trail = systems.NewTrailSystem(em)

	release := r3.Vec{X: controls.WicketOffset, Y: controls.ReleaseHeight}
	ball, err := entities.NewBallEntity(em, physics, controls.TrailMaxPoints, release)
	if err != nil {
		return nil, fmt.Errorf("failed to create bowling world: %w", err)
	}
	w.Ball = ball
	w.Pitch, w.Stumps = entities.NewPitchEntities(em, controls)
	w.Bowler = entities.NewBowlerEntity(em, controls, ball)

	if input != nil {
		w.Selector = systems.NewDeliverySelectorSystemWithInput(em, w, controls, input)
	}

	return w, nil
}

// Step 推进一个固定步
// 顺序固定为：选择 → 弹道（采样、施力）→ 刚体（积分、接触）→ 轨迹
func (w *BowlingWorld) Step(dt float64) {
	if w.Selector != nil {
		w.Selector.Update(dt)
	}
	w.Trajectory.Update(dt)
	w.RigidBody.Update(dt)
	w.Trail.Update(dt)
	w.EntityManager.RemoveMarkedEntities()
}

// Bowl 投出一球
//
// Delivery.Target 是地面上的瞄准点；球心在离地一个球半径时触地，
// 因此求解时把目标抬高 BallRadius，触地点正好落在瞄准点上。
//
// 参数:
//   - ball: 球实体
//   - d: 投球参数，Target.Y 为地面高度
//
// 返回:
//   - error: 参数无效时返回错误，球的状态不变
func (w *BowlingWorld) Bowl(ball ecs.EntityID, d components.Delivery) error {
	d.Target.Y += w.Physics.BallRadius
	return w.Trajectory.Bowl(ball, d)
}

// Reset 让球回到待投状态
func (w *BowlingWorld) Reset(ball ecs.EntityID) {
	w.Trajectory.Reset(ball)
}

// SetVerbose 开关各系统的逐步调试日志
func (w *BowlingWorld) SetVerbose(verbose bool) {
	w.Trajectory.Verbose = verbose
	w.RigidBody.Verbose = verbose
}

// Flight 返回球的飞行状态
func (w *BowlingWorld) Flight() *components.FlightComponent {
	f, _ := ecs.GetComponent[*components.FlightComponent](w.EntityManager, w.Ball)
	return f
}

// BallPosition 返回球的当前位置
func (w *BowlingWorld) BallPosition() r3.Vec {
	p, _ := ecs.GetComponent[*components.PositionComponent](w.EntityManager, w.Ball)
	return p.Position
}

// TrailPoints 返回球的轨迹采样点
func (w *BowlingWorld) TrailPoints() []r3.Vec {
	t, _ := ecs.GetComponent[*components.TrailComponent](w.EntityManager, w.Ball)
	return t.Points
}

// BowlerState 返回投手、落点标记与时机条组件
func (w *BowlingWorld) BowlerState() (*components.BowlerComponent, *components.AimMarkerComponent, *components.PowerMeterComponent) {
	b, _ := ecs.GetComponent[*components.BowlerComponent](w.EntityManager, w.Bowler)
	m, _ := ecs.GetComponent[*components.AimMarkerComponent](w.EntityManager, w.Bowler)
	p, _ := ecs.GetComponent[*components.PowerMeterComponent](w.EntityManager, w.Bowler)
	return b, m, p
}
