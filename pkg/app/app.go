// Package app 提供投球模拟器的应用包装器
//
// 该包把配置加载、音频初始化与场景装配从 main 包提取出来，
// main.go 只负责解析命令行并调用 NewApp()。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"math"

	"github.com/decker502/cricket/pkg/config"
	"github.com/decker502/cricket/pkg/embedded"
	"github.com/decker502/cricket/pkg/game"
	"github.com/decker502/cricket/pkg/scenes"
	"github.com/decker502/cricket/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// PhysicsConfigPath 投球物理配置文件路径，为空则读取嵌入的默认文件
	PhysicsConfigPath string
	// ControlsConfigPath 投球操作配置文件路径，为空则读取嵌入的默认文件
	ControlsConfigPath string
	// Mute 不创建音频上下文
	Mute bool
	// Volume 初始音效音量 [0,1]
	Volume float64
}

// 音量调节步长（-/= 键）
const volumeStep = 0.1

// App 是模拟器的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager             *game.SceneManager
	audio                    *game.AudioManager
	fixedTimestep            float64
	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化应用
//
// 未指定配置文件路径时，调用此函数前必须先调用 embedded.Init()。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	physics, controls, err := LoadConfigs(cfg)
	if err != nil {
		return nil, err
	}

	world, err := scenes.NewBowlingWorld(physics, controls, systems.NewEbitenDeliveryInput())
	if err != nil {
		return nil, fmt.Errorf("投球世界创建失败: %w", err)
	}
	world.SetVerbose(cfg.Verbose)

	var audioContext *audio.Context
	if !cfg.Mute {
		audioContext = audio.NewContext(game.SampleRate)
	}
	audioManager := game.NewAudioManager(audioContext)
	audioManager.SetSoundVolume(cfg.Volume)
	log.Printf("[App] AudioManager initialized (mute=%v, volume=%.2f)", cfg.Mute, audioManager.GetSoundVolume())

	// 每个 tick 推进一个 fixedTimestep，TPS 必须与之对应才能和真实时间同步
	tps := TicksPerSecond(physics.FixedTimestep)
	ebiten.SetTPS(tps)
	log.Printf("[App] fixedTimestep=%.4fs, TPS=%d", physics.FixedTimestep, tps)

	sceneManager := game.NewSceneManager()
	sceneManager.SwitchTo(scenes.NewBowlingScene(world, audioManager))

	return &App{
		sceneManager:  sceneManager,
		audio:         audioManager,
		fixedTimestep: physics.FixedTimestep,
	}, nil
}

// TicksPerSecond 返回与固定步长对应的 ebiten TPS
// 步长不是整数分之一秒时取最接近的整数
func TicksPerSecond(fixedTimestep float64) int {
	return max(1, int(math.Round(1/fixedTimestep)))
}

// LoadConfigs 加载投球物理与操作配置
//
// 路径非空时从磁盘读取；否则读取嵌入的数据文件；
// 嵌入资源中没有该文件时退回到默认值。
//
// 返回:
//   - *config.DeliveryPhysicsConfig: 物理配置
//   - *config.BowlingControlsConfig: 操作配置
//   - error: 读取或校验失败时返回错误
func LoadConfigs(cfg Config) (*config.DeliveryPhysicsConfig, *config.BowlingControlsConfig, error) {
	var physics *config.DeliveryPhysicsConfig
	var err error
	switch {
	case cfg.PhysicsConfigPath != "":
		physics, err = config.LoadDeliveryPhysicsConfig(cfg.PhysicsConfigPath)
	case embedded.Exists(config.DeliveryPhysicsConfigPath):
		physics, err = loadEmbedded(config.DeliveryPhysicsConfigPath, config.LoadDeliveryPhysicsConfigFromBytes)
	default:
		physics = config.DefaultDeliveryPhysicsConfig()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("投球物理配置加载失败: %w", err)
	}

	var controls *config.BowlingControlsConfig
	switch {
	case cfg.ControlsConfigPath != "":
		controls, err = config.LoadBowlingControlsConfig(cfg.ControlsConfigPath)
	case embedded.Exists(config.BowlingControlsConfigPath):
		controls, err = loadEmbedded(config.BowlingControlsConfigPath, config.LoadBowlingControlsConfigFromBytes)
	default:
		controls = config.DefaultBowlingControlsConfig()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("投球操作配置加载失败: %w", err)
	}

	log.Printf("[Config] speed=%.1f swing=%.1f spin=%.1f bounciness=%.2f gripLoss=%.2f",
		physics.DeliverySpeed, physics.SwingStrength, physics.SpinStrength, physics.Bounciness, physics.GripLoss)
	return physics, controls, nil
}

func loadEmbedded[T any](path string, parse func([]byte) (T, error)) (T, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		var zero T
		return zero, err
	}
	return parse(data)
}

// Update 更新模拟逻辑
// 每个 tick 调用一次，步长固定为配置中的 fixedTimestep
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(scenes.ScreenWidth, scenes.ScreenHeight)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", scenes.ScreenWidth, scenes.ScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	// P 暂停
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.sceneManager.SetPaused(!a.sceneManager.IsPaused())
	}

	// M 开关音效
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.toggleSound()
	}

	// -/= 调节音量
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		a.adjustVolume(-volumeStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		a.adjustVolume(volumeStep)
	}

	a.sceneManager.Update(a.fixedTimestep)
	return nil
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return scenes.ScreenWidth, scenes.ScreenHeight
}

// toggleSound 开关所有音效
func (a *App) toggleSound() {
	a.audio.SetEnabled(!a.audio.IsEnabled())
	log.Printf("[App] sound enabled = %v", a.audio.IsEnabled())
}

// adjustVolume 按步长调节音效音量，结果限制在 [0,1]
func (a *App) adjustVolume(delta float64) {
	a.audio.SetSoundVolume(a.audio.GetSoundVolume() + delta)
	log.Printf("[App] sound volume = %.1f", a.audio.GetSoundVolume())
}
