// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

import (
	"fmt"
	"strings"
)

// DeliveryKind 定义投球类型
// 决定空中施加的侧向力以及落地时的偏转规则
type DeliveryKind int

const (
	// DeliverySwing 摇摆球：空中持续受到恒定侧向力，落地不额外偏转
	DeliverySwing DeliveryKind = iota
	// DeliverySpin 旋转球：空中无侧向力，落地时水平速度绕竖直轴偏转
	DeliverySpin
)

// String 返回投球类型的字符串表示（用于 HUD 显示）
func (k DeliveryKind) String() string {
	switch k {
	case DeliverySwing:
		return "SWING"
	case DeliverySpin:
		return "SPIN"
	default:
		return "UNKNOWN"
	}
}

// ParseDeliveryKind 从字符串解析投球类型（大小写不敏感）
//
// 参数:
//   - s: "swing" / "spin"
//
// 返回:
//   - DeliveryKind: 解析结果
//   - error: 无法识别时返回错误
func ParseDeliveryKind(s string) (DeliveryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "swing":
		return DeliverySwing, nil
	case "spin":
		return DeliverySpin, nil
	}
	return DeliverySwing, fmt.Errorf("unknown delivery kind %q", s)
}

// BowlingSide 定义投手所在的三柱门一侧
// 所有侧向效果（摇摆方向、旋转偏转方向、漂移补偿方向）都随之翻转符号
type BowlingSide int

const (
	// SideRight 右侧（Over Wicket）
	SideRight BowlingSide = iota
	// SideLeft 左侧（Round Wicket）
	SideLeft
)

// LateralSign 返回侧向效果的方向符号
// 右侧投球向左漂移（-1），左侧投球向右漂移（+1），这是固定的物理约定
func (s BowlingSide) LateralSign() float64 {
	if s == SideLeft {
		return 1
	}
	return -1
}

// String 返回投球侧的显示名称
func (s BowlingSide) String() string {
	if s == SideLeft {
		return "Round Wicket"
	}
	return "Over Wicket"
}

// ParseBowlingSide 从字符串解析投球侧（大小写不敏感）
//
// 参数:
//   - s: "right" / "left"
//
// 返回:
//   - BowlingSide: 解析结果
//   - error: 无法识别时返回错误
func ParseBowlingSide(s string) (BowlingSide, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "right", "over":
		return SideRight, nil
	case "left", "round":
		return SideLeft, nil
	}
	return SideRight, fmt.Errorf("unknown bowling side %q", s)
}
