package systems

import (
	"github.com/decker502/cricket/pkg/components"
	"github.com/decker502/cricket/pkg/ecs"
)

// TrailSystem 记录球的飞行轨迹
// 每帧在刚体积分之后运行，只记录已经投出的球
type TrailSystem struct {
	entityManager *ecs.EntityManager
}

// NewTrailSystem 创建轨迹系统
func NewTrailSystem(em *ecs.EntityManager) *TrailSystem {
	return &TrailSystem{entityManager: em}
}

// Update 追加当前位置到轨迹
func (s *TrailSystem) Update(deltaTime float64) {
	ids := ecs.GetEntitiesWith3[
		*components.TrailComponent,
		*components.PositionComponent,
		*components.FlightComponent,
	](s.entityManager)

	for _, id := range ids {
		flight, _ := ecs.GetComponent[*components.FlightComponent](s.entityManager, id)
		if flight.Phase == components.PhaseIdle {
			continue
		}
		trail, _ := ecs.GetComponent[*components.TrailComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)

		// 静止的球不再追加重复点
		if n := len(trail.Points); n > 0 && trail.Points[n-1] == pos.Position {
			continue
		}

		trail.Points = append(trail.Points, pos.Position)
		if trail.MaxPoints > 0 && len(trail.Points) > trail.MaxPoints {
			drop := len(trail.Points) - trail.MaxPoints
			trail.Points = append(trail.Points[:0], trail.Points[drop:]...)
		}
	}
}
