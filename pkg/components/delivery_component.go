package components

import (
	"github.com/decker502/cricket/pkg/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// Delivery 一次投球请求
// 由投球选择系统在按下投球键时生成，发射时整体复制进飞行组件
type Delivery struct {
	Origin   r3.Vec             // 出手点（世界坐标，米）
	Target   r3.Vec             // 瞄准的落点
	Kind     types.DeliveryKind // 摇摆球 / 旋转球
	Accuracy float64            // 出手精度，1.0 为完美；不做截断
	Side     types.BowlingSide  // 投手所在的三柱门一侧
}

// FlightPhase 球的飞行阶段
type FlightPhase int

const (
	// PhaseIdle 尚未投出（或冷却结束后复位）
	PhaseIdle FlightPhase = iota
	// PhaseAirborne 已投出，尚未触地
	PhaseAirborne
	// PhaseBounced 已完成唯一一次触地反弹，之后由刚体引擎自由运动
	PhaseBounced
)

// String 返回飞行阶段名称（用于调试输出）
func (p FlightPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAirborne:
		return "airborne"
	case PhaseBounced:
		return "bounced"
	default:
		return "unknown"
	}
}

// FlightComponent 球的飞行状态组件
// 每个球实体持有一份，由 TrajectorySystem 独占写入
//
// 不变式：
//   - 新一次投球会完全覆盖上一次的状态
//   - 反弹变换最多执行一次（Phase 进入 PhaseBounced 后不再响应地面接触）
type FlightComponent struct {
	Phase    FlightPhase
	Delivery Delivery

	// LastObservedVelocity 每个固定步在施力之前采样的速度
	// 反弹时以它作为入射速度，而不是碰撞响应之后的速度
	LastObservedVelocity r3.Vec

	// LaunchVelocity 求解出的出手速度（HUD / 调试用）
	LaunchVelocity r3.Vec

	// FlightTime 出手后经过的时间（秒）
	FlightTime float64

	// BounceVelocity 反弹变换后的速度
	BounceVelocity r3.Vec

	// BouncePosition 触地点
	BouncePosition r3.Vec
}

// HasBounced 是否已经完成反弹
func (f *FlightComponent) HasBounced() bool {
	return f.Phase == PhaseBounced
}
