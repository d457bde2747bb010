package audio

import (
	"math"
	"math/rand/v2"

	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"

	"fear-maze/internal/ai/fear"
	"fear-maze/internal/config"
	"fear-maze/internal/events"
	"fear-maze/internal/logger"
)

// Sink проигрывает готовые потоки. Хост передает сюда динамик; без него
// менеджер молчит.
type Sink interface {
	Play(s ...beep.Streamer)
}

// State - то, что звуку нужно знать об игроке в текущем кадре
type State struct {
	Stress         float64
	Moving         bool
	NearestMonster float64 // расстояние до ближайшего активного монстра
}

// базовая громкость сигналов
var cueGain = map[Cue]float64{
	CueHeartbeat: 0.3,
	CueFootstep:  0.3,
	CueScare:     0.5,
	CueAttack:    0.8,
	CuePickup:    0.5,
	CueWhisper:   0.2,
	CueClick:     0.2,
	CueGrowl:     0.4,
}

// сигналы, громкость которых растет с усилителем звуков
var fearCues = map[Cue]bool{
	CueHeartbeat: true,
	CueScare:     true,
	CueWhisper:   true,
	CueGrowl:     true,
	CueAttack:    true,
}

// Manager отвечает за аудио в игре
type Manager struct {
	sink   Sink
	rate   beep.SampleRate
	volume float64
	muted  bool
	amps   fear.Amplifiers
	rng    *rand.Rand
	seed   uint64

	heartbeatTimer float64
	stepTimer      float64
	growlTimer     float64

	played map[Cue]int
}

// NewManager создает новый аудио менеджер. sink может быть nil.
func NewManager(cfg config.AudioConfig, sink Sink) *Manager {
	if !cfg.Enabled {
		sink = nil
	}
	return &Manager{
		sink:   sink,
		rate:   beep.SampleRate(cfg.SampleRate),
		volume: math.Max(0, math.Min(1, cfg.Volume)),
		amps:   fear.Neutral(),
		rng:    rand.New(rand.NewPCG(1, 2)),
		played: make(map[Cue]int),
	}
}

// SampleRate возвращает частоту дискретизации
func (m *Manager) SampleRate() beep.SampleRate { return m.rate }

// Silent сообщает, что звук некуда выводить
func (m *Manager) Silent() bool { return m.sink == nil }

// SetVolume устанавливает общую громкость
func (m *Manager) SetVolume(volume float64) {
	m.volume = math.Max(0, math.Min(1, volume))
}

// Mute выключает звук
func (m *Manager) Mute() { m.muted = true }

// Unmute включает звук
func (m *Manager) Unmute() { m.muted = false }

// Played возвращает, сколько раз проигрывался сигнал
func (m *Manager) Played(c Cue) int { return m.played[c] }

// Gain считает итоговую громкость сигнала с учетом интенсивности
func (m *Manager) Gain(c Cue, intensity float64) float64 {
	if m.muted {
		return 0
	}
	g := cueGain[c] * m.volume * (0.5 + 0.5*math.Max(0, math.Min(1, intensity)))
	if fearCues[c] {
		g *= m.amps.Sounds
	}
	return math.Min(1, g)
}

// Stream возвращает поток сигнала с примененной громкостью
func (m *Manager) Stream(c Cue, intensity float64) beep.Streamer {
	m.seed++
	return withGain(Synthesize(c, m.rate, m.seed), m.Gain(c, intensity))
}

// Play проигрывает сигнал
func (m *Manager) Play(c Cue, intensity float64) {
	m.played[c]++
	if m.sink == nil || m.muted {
		return
	}
	m.sink.Play(m.Stream(c, intensity))
}

// Attach подписывает менеджер на события уровня
func (m *Manager) Attach(bus *events.Bus) {
	bus.Subscribe(m.Handle)
}

// Handle превращает событие в звуковой сигнал
func (m *Manager) Handle(e events.Event) {
	switch e.Kind {
	case events.AmplifiersUpdated:
		m.amps = e.Amplifiers
	case events.MonsterAttack:
		m.Play(CueAttack, e.Intensity)
	case events.ObjectiveCollected:
		m.Play(CuePickup, 1)
	case events.FlashlightChanged:
		m.Play(CueClick, 1)
	case events.ScareTriggered:
		switch e.Scare.Kind {
		case fear.ScareWhisper:
			m.Play(CueWhisper, e.Intensity)
		case fear.ScareSuddenSound:
			m.Play(CueScare, e.Intensity)
		case fear.ScareQuake:
			m.Play(CueGrowl, e.Intensity)
		}
	case events.LevelFinished:
		logger.Log.WithFields(logrus.Fields{
			"outcome": e.Outcome,
			"cues":    len(m.played),
		}).Debug("audio: level finished")
	}
}

// Update проигрывает фоновые сигналы: сердцебиение, шаги, рычание
func (m *Manager) Update(deltaTime float64, s State) {
	// Сердцебиение учащается со стрессом
	if s.Stress > 60 {
		m.heartbeatTimer += deltaTime
		interval := math.Max(0.1, 1.0-(s.Stress-60)/100)
		if m.heartbeatTimer > interval {
			m.heartbeatTimer = 0
			m.Play(CueHeartbeat, (s.Stress-60)/40)
		}
	} else {
		m.heartbeatTimer = 0
	}

	if s.Moving {
		m.stepTimer += deltaTime
		if m.stepTimer > 0.45 {
			m.stepTimer = 0
			m.Play(CueFootstep, m.rng.Float64()*0.3)
		}
	}

	m.growlTimer += deltaTime
	if m.growlTimer > 2 {
		m.growlTimer = 0
		if s.NearestMonster > 0 && s.NearestMonster < 6 && m.rng.Float64() < 0.3 {
			m.Play(CueGrowl, 1-s.NearestMonster/6)
		}
	}
}
