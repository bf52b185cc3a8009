package components

import (
	"github.com/decker502/cricket/pkg/ecs"
	"github.com/decker502/cricket/pkg/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// BowlerComponent 投手组件
// 记录当前选择的投球方式、出手点以及冷却状态
type BowlerComponent struct {
	Kind types.DeliveryKind
	Side types.BowlingSide

	// ReleasePoint 出手点，X 随投球侧在 ±WicketOffset 之间切换
	ReleasePoint r3.Vec

	// Ball 被投出的球实体
	Ball ecs.EntityID

	// IsBowling 投出后为 true，冷却结束前忽略所有输入
	IsBowling bool
	// CooldownRemaining 剩余冷却时间（秒）
	CooldownRemaining float64

	// LastAccuracy 最近一次投球的精度（HUD 显示）
	LastAccuracy float64
}

// AimMarkerComponent 落点标记
type AimMarkerComponent struct {
	Position r3.Vec
}

// PowerMeterComponent 出手时机条
// Value 在 [0,1] 之间往返，0.5 处为完美出手
type PowerMeterComponent struct {
	Timer float64
	Value float64
}
