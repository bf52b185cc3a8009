package components

import "gonum.org/v1/gonum/spatial/r3"

// TrailComponent 球的飞行轨迹
// 每步追加一个采样点，新一次投球时清空
type TrailComponent struct {
	Points    []r3.Vec
	MaxPoints int // 超出后丢弃最早的点；0 表示不限制
}

// Clear 清空轨迹
func (t *TrailComponent) Clear() {
	t.Points = t.Points[:0]
}
