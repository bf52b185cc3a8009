package game

import (
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// 音效ID
const (
	SoundBounce  = "SOUND_BOUNCE"
	SoundRelease = "SOUND_RELEASE"
	SoundStumps  = "SOUND_STUMPS"
)

// AudioManager 音频管理器
// 职责：
//   - 启动时合成所有音效并缓存 PCM 数据
//   - 统一控制音效开关与音量
//   - 提供按ID播放的便捷接口
//
// audio.Context 为 nil 时所有播放请求都会被忽略（无头运行与测试）。
type AudioManager struct {
	context      *audio.Context
	sounds       map[string][]byte        // 音效ID -> PCM
	soundPlayers map[string]*audio.Player // 音效播放器缓存
	soundVolume  float64
	enabled      bool
}

// NewAudioManager 创建新的音频管理器
//
// 参数：
//   - ctx: 音频上下文（采样率必须为 SampleRate），可为 nil
//
// 返回：
//   - *AudioManager: 音频管理器实例
func NewAudioManager(ctx *audio.Context) *AudioManager {
	am := &AudioManager{
		context:      ctx,
		sounds:       make(map[string][]byte),
		soundPlayers: make(map[string]*audio.Player),
		soundVolume:  0.8,
		enabled:      true,
	}
	am.sounds[SoundBounce] = SynthesizePCM(bounceTone)
	am.sounds[SoundRelease] = SynthesizePCM(releaseTone)
	am.sounds[SoundStumps] = SynthesizePCM(stumpsTone)
	return am
}

// PlaySound 以当前音量播放音效
//
// 参数：
//   - soundID: 音效ID（如 SoundBounce）
//
// 返回：
//   - bool: 是否成功播放
func (am *AudioManager) PlaySound(soundID string) bool {
	return am.PlaySoundAt(soundID, 1)
}

// PlaySoundAt 以相对音量播放音效
// 例如按落地速度调整落地声的响度
//
// 参数：
//   - soundID: 音效ID
//   - gain: 相对音量 [0,1]，与全局音效音量相乘
//
// 返回：
//   - bool: 是否成功播放
func (am *AudioManager) PlaySoundAt(soundID string, gain float64) bool {
	if !am.enabled || am.context == nil {
		return false
	}

	player := am.getSoundPlayer(soundID)
	if player == nil {
		return false
	}

	player.SetVolume(am.soundVolume * math.Max(0, math.Min(1, gain)))
	if err := player.Rewind(); err != nil {
		log.Printf("[AudioManager] Warning: Failed to rewind sound %s: %v", soundID, err)
	}
	player.Play()
	return true
}

// SetSoundVolume 设置音效音量 (0.0 ~ 1.0)
func (am *AudioManager) SetSoundVolume(volume float64) {
	am.soundVolume = math.Max(0, math.Min(1, volume))
}

// GetSoundVolume 获取当前音效音量
func (am *AudioManager) GetSoundVolume() float64 {
	return am.soundVolume
}

// SetEnabled 开关所有音效
func (am *AudioManager) SetEnabled(enabled bool) {
	am.enabled = enabled
}

// IsEnabled 返回音效是否开启
func (am *AudioManager) IsEnabled() bool {
	return am.enabled
}

// getSoundPlayer 获取或创建音效播放器
func (am *AudioManager) getSoundPlayer(soundID string) *audio.Player {
	if player, exists := am.soundPlayers[soundID]; exists {
		return player
	}

	pcm, ok := am.sounds[soundID]
	if !ok {
		log.Printf("[AudioManager] Warning: Sound not found: %s", soundID)
		return nil
	}

	player := am.context.NewPlayerFromBytes(pcm)
	am.soundPlayers[soundID] = player
	return player
}
