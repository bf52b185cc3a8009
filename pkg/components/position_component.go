package components

import "gonum.org/v1/gonum/spatial/r3"

// PositionComponent 实体在球场中的三维位置（米）
// X 为横向，Y 为竖直向上，Z 为从投手指向击球手的方向
type PositionComponent struct {
	Position r3.Vec
}
