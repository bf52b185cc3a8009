package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneManager controls which scene is active.
// Only the active scene's Update and Draw are called.
type SceneManager struct {
	currentScene Scene
	paused       bool
}

// NewSceneManager creates a SceneManager with no active scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SwitchTo changes the active scene.
func (sm *SceneManager) SwitchTo(scene Scene) {
	sm.currentScene = scene
}

// SetPaused 暂停或恢复场景更新
// 暂停期间仍然绘制，便于查看静止的轨迹
func (sm *SceneManager) SetPaused(paused bool) {
	if sm.paused != paused {
		log.Printf("[SceneManager] paused = %v", paused)
	}
	sm.paused = paused
}

// IsPaused 返回是否处于暂停状态
func (sm *SceneManager) IsPaused() bool {
	return sm.paused
}

// Update updates the currently active scene.
// Does nothing when no scene is active or the manager is paused.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil && !sm.paused {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the currently active scene.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
