package main

import (
	"flag"
	"log"

	"github.com/decker502/cricket/pkg/app"
	"github.com/decker502/cricket/pkg/embedded"
	"github.com/decker502/cricket/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	verbose := flag.Bool("verbose", false, "启用详细日志输出")
	physicsPath := flag.String("physics", "", "投球物理配置文件路径（默认使用内置配置）")
	controlsPath := flag.String("controls", "", "投球操作配置文件路径（默认使用内置配置）")
	mute := flag.Bool("mute", false, "关闭音效")
	volume := flag.Float64("volume", 0.8, "音效音量 [0,1]，运行中可用 -/= 调节")
	flag.Parse()

	// dataFS 在 embed.go 中声明
	embedded.Init(dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose:            *verbose,
		PhysicsConfigPath:  *physicsPath,
		ControlsConfigPath: *controlsPath,
		Mute:               *mute,
		Volume:             *volume,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	ebiten.SetWindowSize(scenes.ScreenWidth, scenes.ScreenHeight)
	ebiten.SetWindowTitle("板球投球模拟")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(gameApp); err != nil {
		log.Fatal(err)
	}
}
