package game

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
)

// SampleRate 音频上下文与合成音效使用的采样率
const SampleRate = 48000

// ToneSpec 合成音效参数
// 音效由一个指数衰减的正弦音与一段白噪声混合而成
type ToneSpec struct {
	Duration  float64 // 时长（秒）
	Frequency float64 // 正弦频率（赫兹），0 表示无音调
	Decay     float64 // 衰减速率（1/秒）
	Noise     float64 // 噪声占比 [0,1]
	Attack    float64 // 起音时间（秒）
	Seed      uint64  // 噪声种子，保证同一音效每次一致
}

var (
	// bounceTone 球落地的闷响
	bounceTone = ToneSpec{Duration: 0.09, Frequency: 170, Decay: 45, Noise: 0.35, Attack: 0.002, Seed: 1}
	// releaseTone 出手时的破风声
	releaseTone = ToneSpec{Duration: 0.16, Frequency: 0, Decay: 18, Noise: 1, Attack: 0.04, Seed: 2}
	// stumpsTone 击中三柱门的脆响
	stumpsTone = ToneSpec{Duration: 0.05, Frequency: 1250, Decay: 70, Noise: 0.2, Attack: 0.001, Seed: 3}
)

// SynthesizePCM 生成 16 位小端双声道 PCM 数据
// 可直接交给 audio.Context.NewPlayerFromBytes 播放
//
// 参数:
//   - tone: 音效参数
//
// 返回:
//   - []byte: PCM 数据，每帧 4 字节
func SynthesizePCM(tone ToneSpec) []byte {
	frames := int(tone.Duration * SampleRate)
	if frames <= 0 {
		return nil
	}

	rng := rand.New(rand.NewPCG(tone.Seed, tone.Seed^0x9e3779b97f4a7c15))
	buf := make([]byte, frames*4)

	// 单极点低通，让噪声不那么刺耳
	var lp float64
	for i := 0; i < frames; i++ {
		t := float64(i) / SampleRate

		env := math.Exp(-tone.Decay * t)
		if tone.Attack > 0 && t < tone.Attack {
			env *= t / tone.Attack
		}

		var s float64
		if tone.Frequency > 0 {
			s = math.Sin(2 * math.Pi * tone.Frequency * t)
		}
		lp += 0.25 * (rng.Float64()*2 - 1 - lp)
		s = (1-tone.Noise)*s + tone.Noise*lp*2

		v := int16(clampUnit(s*env) * 0.8 * math.MaxInt16)
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(v))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(v))
	}
	return buf
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
