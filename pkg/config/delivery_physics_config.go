package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// DeliveryPhysicsConfigPath 投球物理配置文件的默认路径
const DeliveryPhysicsConfigPath = "data/delivery_physics.yaml"

// DeliveryPhysicsConfig 投球物理配置
//
// 包含出手速度、摇摆/旋转强度、反弹参数以及球与重力的物理常量。
//
// 配置文件位置: data/delivery_physics.yaml
type DeliveryPhysicsConfig struct {
	// DeliverySpeed 前进方向速度（米/秒），决定飞行时间
	DeliverySpeed float64 `yaml:"deliverySpeed"`

	// SwingStrength 精度为 1.0 时的侧向摇摆力（牛顿）
	SwingStrength float64 `yaml:"swingStrength"`

	// SpinStrength 精度为 1.0 时落地的偏转角（度）
	SpinStrength float64 `yaml:"spinStrength"`

	// Bounciness 反弹时保留的竖直速度比例，范围 [0.1, 1.0]
	Bounciness float64 `yaml:"bounciness"`

	// GripLoss 反弹时损失的水平速度比例，范围 [0, 1]
	GripLoss float64 `yaml:"gripLoss"`

	// GroundSurfaceTag 触发反弹的地面标签
	GroundSurfaceTag string `yaml:"groundSurfaceTag"`

	// BallMass 球的质量（千克）
	BallMass float64 `yaml:"ballMass"`

	// BallRadius 球的半径（米）
	BallRadius float64 `yaml:"ballRadius"`

	// Gravity 重力加速度大小（米/秒²）
	Gravity float64 `yaml:"gravity"`

	// FixedTimestep 物理固定步长（秒）
	FixedTimestep float64 `yaml:"fixedTimestep"`
}

// DefaultDeliveryPhysicsConfig 返回与 data/delivery_physics.yaml 一致的默认配置
func DefaultDeliveryPhysicsConfig() *DeliveryPhysicsConfig {
	return &DeliveryPhysicsConfig{
		DeliverySpeed:    25,
		SwingStrength:    2.0,
		SpinStrength:     4.0,
		Bounciness:       0.5,
		GripLoss:         0.15,
		GroundSurfaceTag: "Pitch",
		BallMass:         1.0,
		BallRadius:       0.036,
		Gravity:          9.81,
		FixedTimestep:    1.0 / 60.0,
	}
}

// LoadDeliveryPhysicsConfig 从文件加载投球物理配置
//
// 参数:
//   - path: 配置文件路径（如 "data/delivery_physics.yaml"）
//
// 返回:
//   - *DeliveryPhysicsConfig: 加载并验证后的配置
//   - error: 读取、解析或验证失败时返回错误
func LoadDeliveryPhysicsConfig(path string) (*DeliveryPhysicsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read delivery physics config: %w", err)
	}
	return LoadDeliveryPhysicsConfigFromBytes(data)
}

// LoadDeliveryPhysicsConfigFromBytes 从字节数据加载投球物理配置（用于 embed.FS）
//
// 未出现在 YAML 中的字段保留默认值。
func LoadDeliveryPhysicsConfigFromBytes(data []byte) (*DeliveryPhysicsConfig, error) {
	config := DefaultDeliveryPhysicsConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse delivery physics config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid delivery physics config: %w", err)
	}

	return config, nil
}

// Validate 验证配置有效性
//
// 检查规则：
//   - deliverySpeed、ballMass、ballRadius、fixedTimestep 必须为正
//   - bounciness 在 [0.1, 1.0]，gripLoss 在 [0, 1]
//   - swingStrength、spinStrength、gravity 不能为负或无穷
//   - 任何字段为 NaN 都视为无效
//   - groundSurfaceTag 不能为空
//
// 返回:
//   - error: 第一个不满足的规则
func (c *DeliveryPhysicsConfig) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"deliverySpeed", c.DeliverySpeed},
		{"ballMass", c.BallMass},
		{"ballRadius", c.BallRadius},
		{"fixedTimestep", c.FixedTimestep},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%s must be positive, got %v", p.name, p.value)
		}
	}

	if !(c.Bounciness >= 0.1 && c.Bounciness <= 1.0) {
		return fmt.Errorf("bounciness must be within [0.1, 1.0], got %v", c.Bounciness)
	}
	if !(c.GripLoss >= 0 && c.GripLoss <= 1.0) {
		return fmt.Errorf("gripLoss must be within [0, 1], got %v", c.GripLoss)
	}

	if !(c.SwingStrength >= 0) || math.IsInf(c.SwingStrength, 0) {
		return fmt.Errorf("swingStrength should be >= 0, got %v", c.SwingStrength)
	}
	if !(c.SpinStrength >= 0) || math.IsInf(c.SpinStrength, 0) {
		return fmt.Errorf("spinStrength should be >= 0, got %v", c.SpinStrength)
	}
	if !(c.Gravity >= 0) || math.IsInf(c.Gravity, 0) {
		return fmt.Errorf("gravity should be >= 0 (magnitude only), got %v", c.Gravity)
	}

	if c.GroundSurfaceTag == "" {
		return fmt.Errorf("groundSurfaceTag must not be empty")
	}

	return nil
}
