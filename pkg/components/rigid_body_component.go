package components

import (
	"github.com/decker502/cricket/pkg/ecs"
	"gonum.org/v1/gonum/spatial/r3"
)

// RigidBodyComponent 动态刚体组件
// 由 RigidBodySystem 积分；其他系统只能通过 RigidBodyEngine 接口读写
type RigidBodyComponent struct {
	Mass float64 // 质量（千克），必须为正

	LinearVelocity  r3.Vec // 线速度（米/秒）
	AngularVelocity r3.Vec // 角速度（弧度/秒），仅用于表现滚动

	// Force 本步累积的外力（牛顿），积分后清零
	Force r3.Vec

	// UseGravity 是否受重力影响
	UseGravity bool

	// Sleeping 休眠的刚体跳过积分，直到被唤醒
	Sleeping   bool
	SleepTimer float64 // 低速持续时间（秒）

	// Contacts 上一步仍在接触的静态表面
	// 用于只在“开始接触”时派发碰撞事件
	Contacts map[ecs.EntityID]bool
}

// SphereColliderComponent 球形碰撞体
type SphereColliderComponent struct {
	Radius float64 // 半径（米）
}
