package systems

import (
	"log"
	"math"

	"github.com/decker502/cricket/pkg/components"
	"github.com/decker502/cricket/pkg/config"
	"github.com/decker502/cricket/pkg/ecs"
	"github.com/decker502/cricket/pkg/types"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// DeliveryInput 投球选择系统键盘输入接口
// 用于依赖注入，支持测试时 mock
type DeliveryInput interface {
	IsKeyPressed(key ebiten.Key) bool
	IsKeyJustPressed(key ebiten.Key) bool
}

// ebitenDeliveryInput Ebitengine 默认实现
type ebitenDeliveryInput struct{}

func (e *ebitenDeliveryInput) IsKeyPressed(key ebiten.Key) bool {
	return ebiten.IsKeyPressed(key)
}

func (e *ebitenDeliveryInput) IsKeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}

// NewEbitenDeliveryInput 返回读取真实键盘的输入实现
func NewEbitenDeliveryInput() DeliveryInput {
	return &ebitenDeliveryInput{}
}

// DeliveryLauncher 接收投球请求的一方（通常是 TrajectorySystem）
type DeliveryLauncher interface {
	Bowl(ball ecs.EntityID, d components.Delivery) error
	Reset(ball ecs.EntityID)
}

// DeliverySelectorSystem 投球选择系统
//
// 职责：
//   - WASD 移动落点标记，并限制在球场范围内
//   - ←/→ 切换投球侧，1/2 切换摇摆/旋转
//   - 时机条在 [0,1] 往返，按空格时根据时机计算精度并投球
//   - 投出后进入冷却，冷却期间忽略所有输入
type DeliverySelectorSystem struct {
	entityManager *ecs.EntityManager
	launcher      DeliveryLauncher
	config        *config.BowlingControlsConfig
	input         DeliveryInput

	onRelease func(components.Delivery)
}

// NewDeliverySelectorSystemWithInput 创建投球选择系统
// 交互运行时传入 NewEbitenDeliveryInput()，测试时传入 mock
func NewDeliverySelectorSystemWithInput(em *ecs.EntityManager, launcher DeliveryLauncher, cfg *config.BowlingControlsConfig, input DeliveryInput) *DeliverySelectorSystem {
	return &DeliverySelectorSystem{
		entityManager: em,
		launcher:      launcher,
		config:        cfg,
		input:         input,
	}
}

// SetReleaseListener 设置出手回调（例如播放出手音效）
func (s *DeliverySelectorSystem) SetReleaseListener(listener func(components.Delivery)) {
	s.onRelease = listener
}

// Update 处理输入、推进时机条与冷却
func (s *DeliverySelectorSystem) Update(deltaTime float64) {
	ids := ecs.GetEntitiesWith3[
		*components.BowlerComponent,
		*components.AimMarkerComponent,
		*components.PowerMeterComponent,
	](s.entityManager)

	for _, id := range ids {
		bowler, _ := ecs.GetComponent[*components.BowlerComponent](s.entityManager, id)
		marker, _ := ecs.GetComponent[*components.AimMarkerComponent](s.entityManager, id)
		meter, _ := ecs.GetComponent[*components.PowerMeterComponent](s.entityManager, id)

		if bowler.IsBowling {
			s.updateCooldown(bowler, meter, deltaTime)
			continue
		}

		s.handleMarkerMovement(marker, deltaTime)
		s.handleSideSelection(bowler)
		s.handleTypeSelection(bowler)

		meter.Timer += deltaTime * s.config.SliderSpeed
		meter.Value = PingPong(meter.Timer, 1.0)

		if s.input.IsKeyJustPressed(ebiten.KeySpace) {
			s.performBowl(bowler, marker, meter)
		}
	}
}

func (s *DeliverySelectorSystem) updateCooldown(bowler *components.BowlerComponent, meter *components.PowerMeterComponent, dt float64) {
	bowler.CooldownRemaining -= dt
	if bowler.CooldownRemaining > 0 {
		return
	}
	bowler.CooldownRemaining = 0
	bowler.IsBowling = false
	meter.Timer = 0
	meter.Value = 0
	s.launcher.Reset(bowler.Ball)
}

func (s *DeliverySelectorSystem) performBowl(bowler *components.BowlerComponent, marker *components.AimMarkerComponent, meter *components.PowerMeterComponent) {
	d := components.Delivery{
		Origin:   bowler.ReleasePoint,
		Target:   marker.Position,
		Kind:     bowler.Kind,
		Accuracy: AccuracyFromMeter(meter.Value),
		Side:     bowler.Side,
	}

	if err := s.launcher.Bowl(bowler.Ball, d); err != nil {
		log.Printf("[DeliverySelectorSystem] %v", err)
		return
	}

	bowler.IsBowling = true
	bowler.CooldownRemaining = s.config.CooldownSeconds
	bowler.LastAccuracy = d.Accuracy

	if s.onRelease != nil {
		s.onRelease(d)
	}
}

func (s *DeliverySelectorSystem) handleMarkerMovement(marker *components.AimMarkerComponent, dt float64) {
	var dx, dz float64
	if s.input.IsKeyPressed(ebiten.KeyA) {
		dx--
	}
	if s.input.IsKeyPressed(ebiten.KeyD) {
		dx++
	}
	if s.input.IsKeyPressed(ebiten.KeyW) {
		dz++
	}
	if s.input.IsKeyPressed(ebiten.KeyS) {
		dz--
	}
	if dx == 0 && dz == 0 {
		return
	}

	step := s.config.MarkerSpeed * dt
	p := marker.Position
	p.X += dx * step
	p.Z += dz * step
	marker.Position = s.config.MarkerBounds.Clamp(p)
}

func (s *DeliverySelectorSystem) handleSideSelection(bowler *components.BowlerComponent) {
	if s.input.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		bowler.Side = types.SideLeft
		s.updateReleasePoint(bowler)
	}
	if s.input.IsKeyJustPressed(ebiten.KeyArrowRight) {
		bowler.Side = types.SideRight
		s.updateReleasePoint(bowler)
	}
}

func (s *DeliverySelectorSystem) handleTypeSelection(bowler *components.BowlerComponent) {
	if s.input.IsKeyJustPressed(ebiten.Key1) {
		bowler.Kind = types.DeliverySwing
	}
	if s.input.IsKeyJustPressed(ebiten.Key2) {
		bowler.Kind = types.DeliverySpin
	}
}

// updateReleasePoint 右侧出手点在 +X，左侧在 -X
func (s *DeliverySelectorSystem) updateReleasePoint(bowler *components.BowlerComponent) {
	if bowler.Side == types.SideRight {
		bowler.ReleasePoint.X = s.config.WicketOffset
	} else {
		bowler.ReleasePoint.X = -s.config.WicketOffset
	}
}

// HUDText 返回投手当前选择的提示文字
func HUDText(bowler *components.BowlerComponent) string {
	return bowler.Side.String() + " | " + bowler.Kind.String() + "\n[WASD] Aim   [Space] Bowl"
}

// AccuracyFromMeter 把时机条的值映射为出手精度
// 0.5 为完美（1.0），两端为 0.5
func AccuracyFromMeter(value float64) float64 {
	return 1.0 - math.Abs(value-0.5)
}

// PingPong 让 t 在 [0, length] 之间来回往返
func PingPong(t, length float64) float64 {
	if length <= 0 {
		return 0
	}
	t = math.Mod(math.Abs(t), 2*length)
	if t > length {
		return 2*length - t
	}
	return t
}
