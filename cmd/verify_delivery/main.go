// verify_delivery 无头投球验证工具
//
// 在不打开窗口的情况下投出一个球，逐步推进物理，打印出手速度、
// 落地点以及落地点与目标的偏差；可选输出侧视图与俯视图轨迹 PNG。
//
// 用法:
//
//	go run ./cmd/verify_delivery -kind spin -side left -accuracy 0.9 -tz 15
//	go run ./cmd/verify_delivery -kind swing -plot swing.png
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/decker502/cricket/internal/ballistics"
	"github.com/decker502/cricket/pkg/app"
	"github.com/decker502/cricket/pkg/components"
	"github.com/decker502/cricket/pkg/scenes"
	"github.com/decker502/cricket/pkg/types"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	verbose      = flag.Bool("verbose", false, "显示详细调试信息")
	kindFlag     = flag.String("kind", "swing", "投球类型: swing 或 spin")
	sideFlag     = flag.String("side", "right", "投球侧: right 或 left")
	accuracy     = flag.Float64("accuracy", 1.0, "出手精度（1.0 为完美时机）")
	targetX      = flag.Float64("tx", 0, "目标点 X（横向，米）")
	targetZ      = flag.Float64("tz", 14, "目标点 Z（前向，米）")
	maxSteps     = flag.Int("steps", 240, "最多推进的固定步数")
	physicsPath  = flag.String("physics", "", "投球物理配置文件路径（默认使用内置默认值）")
	controlsPath = flag.String("controls", "", "投球操作配置文件路径（默认使用内置默认值）")
	plotPath     = flag.String("plot", "", "轨迹图输出路径（PNG），为空则不输出")
)

func main() {
	flag.Parse()

	if !*verbose {
		log.SetFlags(0)
	}

	kind, err := types.ParseDeliveryKind(*kindFlag)
	if err != nil {
		fail(err)
	}
	side, err := types.ParseBowlingSide(*sideFlag)
	if err != nil {
		fail(err)
	}

	physics, controls, err := app.LoadConfigs(app.Config{
		Verbose:            *verbose,
		PhysicsConfigPath:  *physicsPath,
		ControlsConfigPath: *controlsPath,
	})
	if err != nil {
		fail(err)
	}

	world, err := scenes.NewBowlingWorld(physics, controls, nil)
	if err != nil {
		fail(err)
	}
	world.SetVerbose(*verbose)

	origin := r3.Vec{X: -side.LateralSign() * controls.WicketOffset, Y: controls.ReleaseHeight}
	delivery := components.Delivery{
		Origin:   origin,
		Target:   r3.Vec{X: *targetX, Z: *targetZ},
		Kind:     kind,
		Accuracy: *accuracy,
		Side:     side,
	}

	if err := world.Bowl(world.Ball, delivery); err != nil {
		fail(err)
	}

	flight := world.Flight()
	fmt.Printf("Delivery   %s / %s  accuracy %.2f\n", side, strings.ToUpper(kind.String()), delivery.Accuracy)
	fmt.Printf("Origin     (%.3f, %.3f, %.3f)\n", origin.X, origin.Y, origin.Z)
	fmt.Printf("Target     (%.3f, %.3f, %.3f)\n", delivery.Target.X, delivery.Target.Y, delivery.Target.Z)
	fmt.Printf("Launch v   (%.3f, %.3f, %.3f)\n", flight.LaunchVelocity.X, flight.LaunchVelocity.Y, flight.LaunchVelocity.Z)

	if t, err := ballistics.TimeOfFlight(origin, delivery.Target, physics.DeliverySpeed); err == nil {
		fmt.Printf("Predicted  t=%.3fs\n", t)
	}

	steps := 0
	for ; steps < *maxSteps; steps++ {
		world.Step(physics.FixedTimestep)
	}

	if !flight.HasBounced() {
		fmt.Printf("No bounce within %d steps, ball at %v\n", steps, world.BallPosition())
		writePlot(world.TrailPoints(), delivery, nil)
		os.Exit(1)
	}

	bp := flight.BouncePosition
	miss := math.Hypot(bp.X-delivery.Target.X, bp.Z-delivery.Target.Z)
	fmt.Printf("Bounce at  (%.3f, %.3f, %.3f)  miss %.3fm\n", bp.X, bp.Y, bp.Z, miss)
	fmt.Printf("Incoming v (%.3f, %.3f, %.3f)\n", flight.LastObservedVelocity.X, flight.LastObservedVelocity.Y, flight.LastObservedVelocity.Z)
	fmt.Printf("Outgoing v (%.3f, %.3f, %.3f)\n", flight.BounceVelocity.X, flight.BounceVelocity.Y, flight.BounceVelocity.Z)

	turn := yawDegrees(flight.BounceVelocity) - yawDegrees(flight.LastObservedVelocity)
	fmt.Printf("Deflection %.2f°\n", turn)

	end := world.BallPosition()
	fmt.Printf("Final pos  (%.3f, %.3f, %.3f) after %d steps\n", end.X, end.Y, end.Z, steps)

	writePlot(world.TrailPoints(), delivery, &bp)
}

func yawDegrees(v r3.Vec) float64 {
	return math.Atan2(v.X, v.Z) * 180 / math.Pi
}

// writePlot 输出侧视图（Z-Y）和俯视图（Z-X）两张轨迹图
func writePlot(points []r3.Vec, d components.Delivery, bounce *r3.Vec) {
	if *plotPath == "" {
		return
	}

	ext := filepath.Ext(*plotPath)
	topPath := strings.TrimSuffix(*plotPath, ext) + "_top" + ext

	side := plotter.XYs{}
	top := plotter.XYs{}
	for _, p := range points {
		side = append(side, plotter.XY{X: p.Z, Y: p.Y})
		top = append(top, plotter.XY{X: p.Z, Y: p.X})
	}

	if err := savePlot(*plotPath, "Side view", "Z (m)", "Y (m)", side, plotter.XY{X: d.Target.Z, Y: d.Target.Y}, bounceXY(bounce, false)); err != nil {
		fail(err)
	}
	if err := savePlot(topPath, "Top view", "Z (m)", "X (m)", top, plotter.XY{X: d.Target.Z, Y: d.Target.X}, bounceXY(bounce, true)); err != nil {
		fail(err)
	}
	fmt.Printf("Plots      %s, %s\n", *plotPath, topPath)
}

func bounceXY(bounce *r3.Vec, topView bool) *plotter.XY {
	if bounce == nil {
		return nil
	}
	if topView {
		return &plotter.XY{X: bounce.Z, Y: bounce.X}
	}
	return &plotter.XY{X: bounce.Z, Y: bounce.Y}
}

func savePlot(path, title, xLabel, yLabel string, trajectory plotter.XYs, target plotter.XY, bounce *plotter.XY) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	if len(trajectory) > 0 {
		line, err := plotter.NewLine(trajectory)
		if err != nil {
			return fmt.Errorf("failed to build trajectory line: %w", err)
		}
		line.Color = color.RGBA{R: 30, G: 90, B: 200, A: 255}
		p.Add(line)
		p.Legend.Add("trajectory", line)
	}

	targetPts, err := plotter.NewScatter(plotter.XYs{target})
	if err != nil {
		return fmt.Errorf("failed to build target marker: %w", err)
	}
	targetPts.Color = color.RGBA{G: 160, A: 255}
	p.Add(targetPts)
	p.Legend.Add("target", targetPts)

	if bounce != nil {
		bouncePts, err := plotter.NewScatter(plotter.XYs{*bounce})
		if err != nil {
			return fmt.Errorf("failed to build bounce marker: %w", err)
		}
		bouncePts.Color = color.RGBA{R: 220, A: 255}
		p.Add(bouncePts)
		p.Legend.Add("bounce", bouncePts)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "verify_delivery: %v\n", err)
	os.Exit(1)
}
