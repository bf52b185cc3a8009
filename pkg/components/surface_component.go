package components

import "gonum.org/v1/gonum/spatial/r3"

// SurfaceShape 静态表面的几何形状
type SurfaceShape int

const (
	// SurfacePlane 水平面：高度为 Center.Y，HalfExtents 的 X/Z 限定范围（0 表示无限延伸）
	SurfacePlane SurfaceShape = iota
	// SurfaceBox 轴对齐盒子：以 Center 为中心，半尺寸为 HalfExtents
	SurfaceBox
)

// SurfaceComponent 静态碰撞表面（球场、三柱门等）
type SurfaceComponent struct {
	Tag   string // 表面标签，地面反弹只响应配置中的地面标签
	Shape SurfaceShape

	Center      r3.Vec
	HalfExtents r3.Vec

	// Restitution 引擎自身碰撞响应的法向恢复系数
	Restitution float64
	// Friction 接触期间切向速度每秒衰减的比例
	Friction float64
}
