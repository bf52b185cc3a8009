package entities

import (
	"fmt"

	"github.com/decker502/cricket/pkg/components"
	"github.com/decker502/cricket/pkg/config"
	"github.com/decker502/cricket/pkg/ecs"
	"gonum.org/v1/gonum/spatial/r3"
)

// NewBallEntity 创建球实体
// 球由刚体系统积分，由弹道系统控制发射与反弹
//
// 参数:
//   - em: 实体管理器
//   - physics: 投球物理配置（质量、半径）
//   - trailMaxPoints: 轨迹最多保留的点数，0 表示不限制
//   - spawn: 初始位置
//
// 返回:
//   - ecs.EntityID: 创建的球实体ID
//   - error: 配置无效时返回错误
func NewBallEntity(em *ecs.EntityManager, physics *config.DeliveryPhysicsConfig, trailMaxPoints int, spawn r3.Vec) (ecs.EntityID, error) {
	if physics == nil {
		return ecs.InvalidEntity, fmt.Errorf("failed to create ball: nil physics config")
	}
	if !(physics.BallMass > 0) {
		return ecs.InvalidEntity, fmt.Errorf("failed to create ball: mass must be positive, got %v", physics.BallMass)
	}

	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PositionComponent{Position: spawn})
	ecs.AddComponent(em, id, &components.RigidBodyComponent{
		Mass:       physics.BallMass,
		UseGravity: true,
		// 投出之前静止在出手点
		Sleeping: true,
	})
	ecs.AddComponent(em, id, &components.SphereColliderComponent{Radius: physics.BallRadius})
	ecs.AddComponent(em, id, &components.FlightComponent{})
	ecs.AddComponent(em, id, &components.TrailComponent{MaxPoints: trailMaxPoints})

	return id, nil
}

// NewSurfaceEntity 创建静态表面实体
//
// 参数:
//   - em: 实体管理器
//   - shape: 平面或盒子
//   - sc: 表面配置
//
// 返回:
//   - ecs.EntityID: 创建的表面实体ID
func NewSurfaceEntity(em *ecs.EntityManager, shape components.SurfaceShape, sc config.SurfaceConfig) ecs.EntityID {
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.SurfaceComponent{
		Tag:         sc.Tag,
		Shape:       shape,
		Center:      sc.Center,
		HalfExtents: sc.HalfExtents,
		Restitution: sc.Restitution,
		Friction:    sc.Friction,
	})
	return id
}

// NewPitchEntities 创建球场地面与击球端三柱门
//
// 返回:
//   - pitch: 地面实体ID
//   - stumps: 三柱门实体ID
func NewPitchEntities(em *ecs.EntityManager, controls *config.BowlingControlsConfig) (pitch, stumps ecs.EntityID) {
	pitch = NewSurfaceEntity(em, components.SurfacePlane, controls.Pitch)
	stumps = NewSurfaceEntity(em, components.SurfaceBox, controls.Stumps)
	return pitch, stumps
}

// NewBowlerEntity 创建投手实体（包含落点标记和时机条）
// 初始为右侧（Over Wicket）摇摆球
//
// 参数:
//   - em: 实体管理器
//   - controls: 投球操作配置
//   - ball: 该投手投出的球
//
// 返回:
//   - ecs.EntityID: 创建的投手实体ID
func NewBowlerEntity(em *ecs.EntityManager, controls *config.BowlingControlsConfig, ball ecs.EntityID) ecs.EntityID {
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.BowlerComponent{
		ReleasePoint: r3.Vec{X: controls.WicketOffset, Y: controls.ReleaseHeight},
		Ball:         ball,
	})
	ecs.AddComponent(em, id, &components.AimMarkerComponent{
		Position: controls.MarkerBounds.Clamp(controls.InitialMarker),
	})
	ecs.AddComponent(em, id, &components.PowerMeterComponent{})
	return id
}
