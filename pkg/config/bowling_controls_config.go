package config

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// BowlingControlsConfigPath 投球操作配置文件的默认路径
const BowlingControlsConfigPath = "data/bowling_controls.yaml"

// BowlingControlsConfig 投球操作与场地配置
//
// 包含瞄准标记、时机条、冷却时间，以及参考刚体引擎使用的场地表面。
//
// 配置文件位置: data/bowling_controls.yaml
type BowlingControlsConfig struct {
	// MarkerSpeed 落点标记移动速度（米/秒）
	MarkerSpeed float64 `yaml:"markerSpeed"`

	// SliderSpeed 时机条往返速度
	SliderSpeed float64 `yaml:"sliderSpeed"`

	// WicketOffset 出手点相对中线的横向偏移（米）
	WicketOffset float64 `yaml:"wicketOffset"`

	// ReleaseHeight 出手高度（米）
	ReleaseHeight float64 `yaml:"releaseHeight"`

	// CooldownSeconds 投出后到允许下一球的时间（秒）
	CooldownSeconds float64 `yaml:"cooldownSeconds"`

	// InitialMarker 落点标记初始位置
	InitialMarker r3.Vec `yaml:"initialMarker"`

	// MarkerBounds 落点标记可移动范围
	MarkerBounds MarkerBounds `yaml:"markerBounds"`

	// Pitch 球场表面
	Pitch SurfaceConfig `yaml:"pitch"`

	// Stumps 击球端三柱门
	Stumps SurfaceConfig `yaml:"stumps"`

	// TrailMaxPoints 轨迹最多保留的采样点数
	TrailMaxPoints int `yaml:"trailMaxPoints"`
}

// MarkerBounds 落点标记的 X/Z 范围
type MarkerBounds struct {
	MinX float64 `yaml:"minX"`
	MaxX float64 `yaml:"maxX"`
	MinZ float64 `yaml:"minZ"`
	MaxZ float64 `yaml:"maxZ"`
}

// Clamp 将位置限制在范围内，Y 保持不变
func (b MarkerBounds) Clamp(p r3.Vec) r3.Vec {
	p.X = clamp(p.X, b.MinX, b.MaxX)
	p.Z = clamp(p.Z, b.MinZ, b.MaxZ)
	return p
}

// SurfaceConfig 静态表面配置
type SurfaceConfig struct {
	Tag         string  `yaml:"tag"`
	Center      r3.Vec  `yaml:"center"`
	HalfExtents r3.Vec  `yaml:"halfExtents"`
	Restitution float64 `yaml:"restitution"`
	Friction    float64 `yaml:"friction"`
}

// DefaultBowlingControlsConfig 返回与 data/bowling_controls.yaml 一致的默认配置
func DefaultBowlingControlsConfig() *BowlingControlsConfig {
	return &BowlingControlsConfig{
		MarkerSpeed:     5,
		SliderSpeed:     2.5,
		WicketOffset:    0.6,
		ReleaseHeight:   2.0,
		CooldownSeconds: 4,
		InitialMarker:   r3.Vec{X: 0, Y: 0, Z: 12},
		MarkerBounds:    MarkerBounds{MinX: -1.5, MaxX: 1.5, MinZ: 2, MaxZ: 18},
		Pitch: SurfaceConfig{
			Tag:         "Pitch",
			HalfExtents: r3.Vec{X: 3, Z: 12},
			Center:      r3.Vec{Z: 10},
			Restitution: 0.3,
			Friction:    0.4,
		},
		Stumps: SurfaceConfig{
			Tag:         "Stumps",
			Center:      r3.Vec{Y: 0.36, Z: 20.12},
			HalfExtents: r3.Vec{X: 0.115, Y: 0.36, Z: 0.1},
			Restitution: 0.2,
			Friction:    0.5,
		},
		TrailMaxPoints: 600,
	}
}

// LoadBowlingControlsConfig 从文件加载投球操作配置
//
// 参数:
//   - path: 配置文件路径（如 "data/bowling_controls.yaml"）
//
// 返回:
//   - *BowlingControlsConfig: 加载并验证后的配置
//   - error: 读取、解析或验证失败时返回错误
func LoadBowlingControlsConfig(path string) (*BowlingControlsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bowling controls config: %w", err)
	}
	return LoadBowlingControlsConfigFromBytes(data)
}

// LoadBowlingControlsConfigFromBytes 从字节数据加载投球操作配置（用于 embed.FS）
func LoadBowlingControlsConfigFromBytes(data []byte) (*BowlingControlsConfig, error) {
	config := DefaultBowlingControlsConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse bowling controls config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bowling controls config: %w", err)
	}

	return config, nil
}

// Validate 验证配置有效性
func (c *BowlingControlsConfig) Validate() error {
	if c.MarkerSpeed < 0 {
		return fmt.Errorf("markerSpeed should be >= 0, got %v", c.MarkerSpeed)
	}
	if !(c.SliderSpeed > 0) {
		return fmt.Errorf("sliderSpeed must be positive, got %v", c.SliderSpeed)
	}
	if c.CooldownSeconds < 0 {
		return fmt.Errorf("cooldownSeconds should be >= 0, got %v", c.CooldownSeconds)
	}
	if c.ReleaseHeight < 0 {
		return fmt.Errorf("releaseHeight should be >= 0, got %v", c.ReleaseHeight)
	}

	b := c.MarkerBounds
	if b.MinX > b.MaxX {
		return fmt.Errorf("markerBounds x range invalid: min(%.2f) > max(%.2f)", b.MinX, b.MaxX)
	}
	if b.MinZ > b.MaxZ {
		return fmt.Errorf("markerBounds z range invalid: min(%.2f) > max(%.2f)", b.MinZ, b.MaxZ)
	}

	if c.Pitch.Tag == "" {
		return fmt.Errorf("pitch tag must not be empty")
	}
	if c.TrailMaxPoints < 0 {
		return fmt.Errorf("trailMaxPoints should be >= 0, got %d", c.TrailMaxPoints)
	}

	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
