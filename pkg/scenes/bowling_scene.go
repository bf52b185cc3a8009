package scenes

import (
	"fmt"
	"image/color"
	"math"

	"github.com/decker502/cricket/pkg/components"
	"github.com/decker502/cricket/pkg/game"
	"github.com/decker502/cricket/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"gonum.org/v1/gonum/spatial/r3"
)

// 屏幕布局（逻辑像素）
const (
	ScreenWidth  = 960
	ScreenHeight = 540

	topPanelWidth = 320
	viewMinZ      = -1.0
	viewMaxZ      = 22.0

	// 俯视图：Z 向上，X 向右
	topOriginX = topPanelWidth / 2
	topBottomY = 520.0
	topScale   = 500.0 / (viewMaxZ - viewMinZ)

	// 侧视图：Z 向右，Y 向上（竖直方向放大两倍）
	sideLeftX   = topPanelWidth + 20.0
	sideGroundY = 460.0
	sideScale   = 600.0 / (viewMaxZ - viewMinZ)
	sideYScale  = sideScale * 2
)

var (
	colorBackground = color.RGBA{R: 34, G: 92, B: 48, A: 255}
	colorPitch      = color.RGBA{R: 196, G: 170, B: 118, A: 255}
	colorCrease     = color.RGBA{R: 245, G: 245, B: 245, A: 255}
	colorStumps     = color.RGBA{R: 230, G: 210, B: 160, A: 255}
	colorBall       = color.RGBA{R: 200, G: 20, B: 30, A: 255}
	colorTrail      = color.RGBA{R: 255, G: 230, B: 120, A: 200}
	colorMarker     = color.RGBA{R: 40, G: 160, B: 255, A: 255}
	colorBounce     = color.RGBA{R: 255, G: 90, B: 60, A: 255}
	colorMeterBack  = color.RGBA{R: 20, G: 20, B: 20, A: 200}
	colorMeterFill  = color.RGBA{R: 80, G: 220, B: 100, A: 255}
)

// TopViewPoint 把球场坐标投影到俯视图
func TopViewPoint(p r3.Vec) (float32, float32) {
	x := topOriginX + p.X*topScale
	y := topBottomY - (p.Z-viewMinZ)*topScale
	return float32(x), float32(y)
}

// SideViewPoint 把球场坐标投影到侧视图
func SideViewPoint(p r3.Vec) (float32, float32) {
	x := sideLeftX + (p.Z-viewMinZ)*sideScale
	y := sideGroundY - p.Y*sideYScale
	return float32(x), float32(y)
}

// BowlingScene 交互投球场景
// WASD 移动落点，←/→ 切换投球侧，1/2 切换类型，空格出手
type BowlingScene struct {
	world *BowlingWorld
	audio *game.AudioManager

	deliveries int
	stumpsHits int
}

// NewBowlingScene 创建投球场景，并把音效接到出手、落地与击中三柱门事件上
//
// 参数:
//   - world: 已装配（含投球选择系统）的投球世界
//   - audio: 音频管理器，可为 nil
//
// 返回:
//   - *BowlingScene: 场景实例
func NewBowlingScene(world *BowlingWorld, audio *game.AudioManager) *BowlingScene {
	s := &BowlingScene{world: world, audio: audio}

	if world.Selector != nil {
		world.Selector.SetReleaseListener(func(components.Delivery) {
			s.deliveries++
			s.play(game.SoundRelease)
		})
	}
	world.Trajectory.SetBounceListener(func(ev systems.BounceEvent) {
		// 落地越重声音越大
		s.playAt(game.SoundBounce, math.Abs(ev.Incoming.Y)/8)
	})
	stumpsTag := world.Controls.Stumps.Tag
	world.RigidBody.OnContact(func(ev systems.ContactEvent) {
		if ev.Body == world.Ball && ev.Surface == stumpsTag {
			s.stumpsHits++
			s.play(game.SoundStumps)
		}
	})

	return s
}

func (s *BowlingScene) play(id string) {
	if s.audio != nil {
		s.audio.PlaySound(id)
	}
}

func (s *BowlingScene) playAt(id string, gain float64) {
	if s.audio != nil {
		s.audio.PlaySoundAt(id, gain)
	}
}

// Update 推进一个固定步
func (s *BowlingScene) Update(deltaTime float64) {
	s.world.Step(deltaTime)
}

// Draw 绘制俯视图、侧视图与 HUD
func (s *BowlingScene) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	s.drawTopView(screen)
	s.drawSideView(screen)
	s.drawHUD(screen)
}

func (s *BowlingScene) drawTopView(screen *ebiten.Image) {
	pitch := s.world.Controls.Pitch
	x0, y0 := TopViewPoint(r3.Vec{X: pitch.Center.X - pitch.HalfExtents.X, Z: pitch.Center.Z + pitch.HalfExtents.Z})
	x1, y1 := TopViewPoint(r3.Vec{X: pitch.Center.X + pitch.HalfExtents.X, Z: pitch.Center.Z - pitch.HalfExtents.Z})
	vector.DrawFilledRect(screen, x0, y0, x1-x0, y1-y0, colorPitch, false)

	// 投球端与击球端的折线
	for _, z := range []float64{0, s.world.Controls.Stumps.Center.Z} {
		lx, ly := TopViewPoint(r3.Vec{X: -1.3, Z: z})
		rx, _ := TopViewPoint(r3.Vec{X: 1.3, Z: z})
		vector.StrokeLine(screen, lx, ly, rx, ly, 1, colorCrease, false)
	}

	stumps := s.world.Controls.Stumps
	sx0, sy0 := TopViewPoint(r3.Vec{X: stumps.Center.X - stumps.HalfExtents.X, Z: stumps.Center.Z + stumps.HalfExtents.Z})
	sx1, sy1 := TopViewPoint(r3.Vec{X: stumps.Center.X + stumps.HalfExtents.X, Z: stumps.Center.Z - stumps.HalfExtents.Z})
	vector.DrawFilledRect(screen, sx0, sy0, sx1-sx0, sy1-sy0, colorStumps, false)

	bowler, marker, _ := s.world.BowlerState()
	mx, my := TopViewPoint(marker.Position)
	vector.StrokeCircle(screen, mx, my, 6, 2, colorMarker, true)

	bx, by := TopViewPoint(bowler.ReleasePoint)
	vector.DrawFilledCircle(screen, bx, by, 4, colorCrease, true)

	s.drawPolyline(screen, TopViewPoint)

	if f := s.world.Flight(); f.HasBounced() {
		px, py := TopViewPoint(f.BouncePosition)
		vector.DrawFilledCircle(screen, px, py, 4, colorBounce, true)
	}

	cx, cy := TopViewPoint(s.world.BallPosition())
	vector.DrawFilledCircle(screen, cx, cy, 4, colorBall, true)
}

func (s *BowlingScene) drawSideView(screen *ebiten.Image) {
	gx0, gy := SideViewPoint(r3.Vec{Z: viewMinZ})
	gx1, _ := SideViewPoint(r3.Vec{Z: viewMaxZ})
	vector.StrokeLine(screen, gx0, gy, gx1, gy, 2, colorPitch, false)

	stumps := s.world.Controls.Stumps
	tx, ty := SideViewPoint(r3.Vec{Y: stumps.Center.Y + stumps.HalfExtents.Y, Z: stumps.Center.Z - stumps.HalfExtents.Z})
	bx, by := SideViewPoint(r3.Vec{Y: 0, Z: stumps.Center.Z + stumps.HalfExtents.Z})
	vector.DrawFilledRect(screen, tx, ty, bx-tx, by-ty, colorStumps, false)

	s.drawPolyline(screen, SideViewPoint)

	if f := s.world.Flight(); f.HasBounced() {
		px, py := SideViewPoint(f.BouncePosition)
		vector.DrawFilledCircle(screen, px, py, 4, colorBounce, true)
	}

	cx, cy := SideViewPoint(s.world.BallPosition())
	vector.DrawFilledCircle(screen, cx, cy, 5, colorBall, true)
}

func (s *BowlingScene) drawPolyline(screen *ebiten.Image, project func(r3.Vec) (float32, float32)) {
	points := s.world.TrailPoints()
	for i := 1; i < len(points); i++ {
		x0, y0 := project(points[i-1])
		x1, y1 := project(points[i])
		vector.StrokeLine(screen, x0, y0, x1, y1, 1.5, colorTrail, true)
	}
}

func (s *BowlingScene) drawHUD(screen *ebiten.Image) {
	bowler, marker, meter := s.world.BowlerState()

	ebitenutil.DebugPrintAt(screen, systems.HUDText(bowler), topPanelWidth+20, 10)
	ebitenutil.DebugPrintAt(screen, "[←/→] Side   [1/2] Type", topPanelWidth+20, 42)
	ebitenutil.DebugPrintAt(screen, "[P] Pause  [M] Sound  [-/=] Volume", topPanelWidth+20, 90)

	// 时机条：中间为完美出手
	const barX, barY, barW, barH = topPanelWidth + 20, 70, 300, 14
	vector.DrawFilledRect(screen, barX, barY, barW, barH, colorMeterBack, false)
	vector.DrawFilledRect(screen, barX, barY, float32(meter.Value)*barW, barH, colorMeterFill, false)
	vector.StrokeLine(screen, barX+barW/2, barY-3, barX+barW/2, barY+barH+3, 2, colorCrease, false)

	f := s.world.Flight()
	lines := []string{
		fmt.Sprintf("Target  (%.2f, %.2f)", marker.Position.X, marker.Position.Z),
		fmt.Sprintf("Phase   %s   t=%.2fs", f.Phase, f.FlightTime),
		fmt.Sprintf("Launch  (%.2f, %.2f, %.2f)", f.LaunchVelocity.X, f.LaunchVelocity.Y, f.LaunchVelocity.Z),
		fmt.Sprintf("Accuracy %.2f", bowler.LastAccuracy),
	}
	if f.HasBounced() {
		lines = append(lines, fmt.Sprintf("Bounce  (%.2f, %.2f)  miss %.2fm",
			f.BouncePosition.X, f.BouncePosition.Z,
			math.Hypot(f.BouncePosition.X-f.Delivery.Target.X, f.BouncePosition.Z-f.Delivery.Target.Z)))
	}
	if bowler.IsBowling {
		lines = append(lines, fmt.Sprintf("Next ball in %.1fs", bowler.CooldownRemaining))
	}
	lines = append(lines, fmt.Sprintf("Deliveries %d   Stumps hit %d", s.deliveries, s.stumpsHits))

	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, ScreenWidth-300, 10+i*16)
	}
}
