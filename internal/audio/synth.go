package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Wave - форма сигнала генератора
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator генерирует сигнал заданной длины
type oscillator struct {
	freq     float64
	phase    float64
	total    int
	position int
	wave     Wave
	rate     beep.SampleRate
	rng      *rand.Rand
}

// NewOscillator создает генератор. Шум детерминирован для одного seed.
func NewOscillator(freq float64, d time.Duration, wave Wave, rate beep.SampleRate, seed uint64) beep.Streamer {
	return &oscillator{
		freq:  freq,
		total: rate.N(d),
		wave:  wave,
		rate:  rate,
		rng:   rand.New(rand.NewPCG(seed, 0x5851f42d4c957f2d)),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.total {
			return i, i > 0
		}
		var v float64
		switch o.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case WaveSaw:
			v = 2 * (o.phase - 0.5)
		case WaveNoise:
			v = o.rng.Float64()*2 - 1
		}
		samples[i][0], samples[i][1] = v, v

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope - линейная атака и затухание
type envelope struct {
	s        beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

// NewEnvelope накладывает огибающую на поток длиной d
func NewEnvelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{s: s, attack: rate.N(attack), release: rate.N(release), total: rate.N(d)}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.s.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		vol := 1.0
		if e.position < e.attack && e.attack > 0 {
			vol = float64(e.position) / float64(e.attack)
		}
		if left := e.total - e.position; left < e.release && e.release > 0 {
			vol = math.Min(vol, float64(left)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

// withGain оборачивает поток в effects.Volume. Нулевая громкость - тишина.
func withGain(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// tone - генератор с огибающей
func tone(freq float64, d time.Duration, wave Wave, rate beep.SampleRate, seed uint64) beep.Streamer {
	osc := NewOscillator(freq, d, wave, rate, seed)
	return NewEnvelope(osc, d, d/10, d/3, rate)
}

// Cue - звуковой сигнал игры
type Cue int

const (
	CueHeartbeat Cue = iota
	CueFootstep
	CueScare
	CueAttack
	CuePickup
	CueWhisper
	CueClick
	CueGrowl
)

var cueNames = map[Cue]string{
	CueHeartbeat: "heartbeat",
	CueFootstep:  "footstep",
	CueScare:     "scare",
	CueAttack:    "attack",
	CuePickup:    "pickup",
	CueWhisper:   "whisper",
	CueClick:     "click",
	CueGrowl:     "growl",
}

func (c Cue) String() string { return cueNames[c] }

// Synthesize строит поток для сигнала с единичной громкостью
func Synthesize(c Cue, rate beep.SampleRate, seed uint64) beep.Streamer {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	switch c {
	case CueHeartbeat:
		// Два глухих удара: "тук-тук"
		return beep.Seq(
			tone(55, ms(90), WaveSine, rate, seed),
			beep.Silence(rate.N(ms(120))),
			tone(50, ms(110), WaveSine, rate, seed),
		)
	case CueFootstep:
		return tone(0, ms(60), WaveNoise, rate, seed)
	case CueScare:
		return beep.Mix(
			withGain(tone(110, ms(400), WaveSaw, rate, seed), 0.6),
			withGain(tone(0, ms(400), WaveNoise, rate, seed+1), 0.4),
		)
	case CueAttack:
		return beep.Mix(
			withGain(tone(70, ms(300), WaveSquare, rate, seed), 0.7),
			withGain(tone(0, ms(250), WaveNoise, rate, seed+1), 0.5),
		)
	case CuePickup:
		return beep.Seq(
			tone(660, ms(90), WaveSine, rate, seed),
			tone(990, ms(160), WaveSine, rate, seed),
		)
	case CueWhisper:
		osc := NewOscillator(0, ms(1200), WaveNoise, rate, seed)
		return NewEnvelope(osc, ms(1200), ms(500), ms(500), rate)
	case CueClick:
		return tone(2000, ms(20), WaveSquare, rate, seed)
	case CueGrowl:
		return beep.Mix(
			withGain(tone(45, ms(700), WaveSaw, rate, seed), 0.8),
			withGain(tone(47, ms(700), WaveSaw, rate, seed), 0.5),
		)
	}
	return beep.Silence(0)
}
