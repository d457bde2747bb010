package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
)

// Config содержит все настройки игры
type Config struct {
	Window  WindowConfig  `mapstructure:"window"`
	Level   LevelConfig   `mapstructure:"level"`
	Player  PlayerConfig  `mapstructure:"player"`
	Monster MonsterConfig `mapstructure:"monster"`
	Fear    FearConfig    `mapstructure:"fear"`
	Render  RenderConfig  `mapstructure:"render"`
	Audio   AudioConfig   `mapstructure:"audio"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

// WindowConfig - настройки окна и частоты обновления
type WindowConfig struct {
	Width       int    `mapstructure:"width"`
	Height      int    `mapstructure:"height"`
	Fullscreen  bool   `mapstructure:"fullscreen"`
	Title       string `mapstructure:"title"`
	TargetTPS   int    `mapstructure:"target_tps"`
	EnableVSync bool   `mapstructure:"enable_vsync"`
}

// LevelConfig описывает один уровень лабиринта
type LevelConfig struct {
	Width        int     `mapstructure:"width"`
	Height       int     `mapstructure:"height"`
	Keys         int     `mapstructure:"keys"`
	Monsters     int     `mapstructure:"monsters"`
	TimeBudget   float64 `mapstructure:"time_budget"` // секунды
	Seed         int64   `mapstructure:"seed"`        // 0 означает случайный сид
	PickupRadius float64 `mapstructure:"pickup_radius"`

	// Параметры генератора
	ChamberRadius   int     `mapstructure:"chamber_radius"`
	LoopChance      float64 `mapstructure:"loop_chance"`
	DeadEndThinning float64 `mapstructure:"dead_end_thinning"`
	MinKeyDistance  float64 `mapstructure:"min_key_distance"`
}

// PlayerConfig - движение, жизненные показатели и фонарик игрока
type PlayerConfig struct {
	MoveSpeed        float64 `mapstructure:"move_speed"` // единиц в секунду
	TurnSpeed        float64 `mapstructure:"turn_speed"` // радиан в секунду
	MouseSensitivity float64 `mapstructure:"mouse_sensitivity"`
	Radius           float64 `mapstructure:"radius"`

	StartHealth float64 `mapstructure:"start_health"`
	StartSanity float64 `mapstructure:"start_sanity"`
	StartStress float64 `mapstructure:"start_stress"`

	BatteryMax       float64 `mapstructure:"battery_max"`
	BatteryDrain     float64 `mapstructure:"battery_drain"`
	BatteryRecharge  float64 `mapstructure:"battery_recharge"`
	FlickerThreshold float64 `mapstructure:"flicker_threshold"`
	EmptyStress      float64 `mapstructure:"empty_stress"`

	DarkMoveStress    float64 `mapstructure:"dark_move_stress"`
	DarkMoveSanity    float64 `mapstructure:"dark_move_sanity"`
	StressBaseline    float64 `mapstructure:"stress_baseline"`
	StressRecovery    float64 `mapstructure:"stress_recovery"`
	StressRecoveryLit float64 `mapstructure:"stress_recovery_lit"`
	SanityRegen       float64 `mapstructure:"sanity_regen"`

	ScreamStress float64 `mapstructure:"scream_stress"`
	ScreamRadius float64 `mapstructure:"scream_radius"`
	KeyStress    float64 `mapstructure:"key_stress"`
	ExitStress   float64 `mapstructure:"exit_stress"`
}

// MonsterConfig - параметры монстров, в том числе урон и перезарядка атаки
type MonsterConfig struct {
	BaseSpeed       float64 `mapstructure:"base_speed"`
	DetectionRange  float64 `mapstructure:"detection_range"`
	AttackRange     float64 `mapstructure:"attack_range"`
	AttackDamage    float64 `mapstructure:"attack_damage"`
	AttackStress    float64 `mapstructure:"attack_stress"`
	AttackSanity    float64 `mapstructure:"attack_sanity"`
	AttackCooldown  float64 `mapstructure:"attack_cooldown"`
	JumpScareStress float64 `mapstructure:"jump_scare_stress"`
	JumpScareSanity float64 `mapstructure:"jump_scare_sanity"`

	SightSamples     int     `mapstructure:"sight_samples"`
	LostSightAfter   float64 `mapstructure:"lost_sight_after"`
	MinStartDistance float64 `mapstructure:"min_start_distance"`

	WanderRadius  float64 `mapstructure:"wander_radius"`
	WanderTimeout float64 `mapstructure:"wander_timeout"`
	IdleMin       float64 `mapstructure:"idle_min"`
	IdleMax       float64 `mapstructure:"idle_max"`
	JumpInterval  float64 `mapstructure:"jump_interval"`
	JumpChance    float64 `mapstructure:"jump_chance"`
	JumpRadius    float64 `mapstructure:"jump_radius"`

	RepelChance   float64 `mapstructure:"repel_chance"`
	RepelCooldown float64 `mapstructure:"repel_cooldown"`
	EnrageFactor  float64 `mapstructure:"enrage_factor"`
}

// FearConfig - параметры адаптивного анализатора страха
type FearConfig struct {
	AnalysisInterval float64 `mapstructure:"analysis_interval"`
	Smoothing        float64 `mapstructure:"smoothing"`
	Decay            float64 `mapstructure:"decay"`
	WindowCapacity   int     `mapstructure:"window_capacity"`
	InactivityMin    float64 `mapstructure:"inactivity_min"`
	LogCapacity      int     `mapstructure:"log_capacity"`
}

// RenderConfig - параметры рейкастера
type RenderConfig struct {
	Columns     int     `mapstructure:"columns"`
	FOV         float64 `mapstructure:"fov"`
	StepSize    float64 `mapstructure:"step_size"`
	MaxDistance float64 `mapstructure:"max_distance"`
	HeightCap   float64 `mapstructure:"height_cap"`
}

// AudioConfig - настройки синтеза звуковых сигналов
type AudioConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate int     `mapstructure:"sample_rate"`
	Volume     float64 `mapstructure:"volume"`
}

// StorageConfig - путь к архиву забегов
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig - уровень и формат логов
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:       960,
			Height:      600,
			Title:       "Fear Maze",
			TargetTPS:   60,
			EnableVSync: true,
		},
		Level: LevelConfig{
			Width:           31,
			Height:          31,
			Keys:            3,
			Monsters:        3,
			TimeBudget:      600,
			PickupRadius:    1.0,
			ChamberRadius:   2,
			LoopChance:      0.5,
			DeadEndThinning: 0.3,
			MinKeyDistance:  3,
		},
		Player: PlayerConfig{
			MoveSpeed:         2.8 * 0.8,
			TurnSpeed:         1.8,
			MouseSensitivity:  0.002,
			Radius:            0.2,
			StartHealth:       100,
			StartSanity:       100,
			StartStress:       30,
			BatteryMax:        150,
			BatteryDrain:      0.6,
			BatteryRecharge:   0.1,
			FlickerThreshold:  30,
			EmptyStress:       25,
			DarkMoveStress:    3,
			DarkMoveSanity:    2,
			StressBaseline:    30,
			StressRecovery:    2,
			StressRecoveryLit: 5,
			SanityRegen:       1,
			ScreamStress:      15,
			ScreamRadius:      10,
			KeyStress:         10,
			ExitStress:        20,
		},
		Monster: MonsterConfig{
			BaseSpeed:        0.004 * 60,
			DetectionRange:   2.5,
			AttackRange:      1.5,
			AttackDamage:     15,
			AttackStress:     25,
			AttackSanity:     10,
			AttackCooldown:   3,
			JumpScareStress:  30,
			JumpScareSanity:  20,
			SightSamples:     20,
			LostSightAfter:   5,
			MinStartDistance: 4,
			WanderRadius:     4,
			WanderTimeout:    8,
			IdleMin:          1,
			IdleMax:          3,
			JumpInterval:     1,
			JumpChance:       0.02,
			JumpRadius:       2,
			RepelChance:      0.7,
			RepelCooldown:    5,
			EnrageFactor:     1.5,
		},
		Fear: FearConfig{
			AnalysisInterval: 5,
			Smoothing:        0.6,
			Decay:            0.1,
			WindowCapacity:   100,
			InactivityMin:    1,
			LogCapacity:      64,
		},
		Render: RenderConfig{
			Columns:     120,
			FOV:         math.Pi / 1.8,
			StepSize:    0.05,
			MaxDistance: 25,
			HeightCap:   600,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			Volume:     0.6,
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    "fear-maze.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate проверяет, что уровень можно построить
func (c *Config) Validate() error {
	if c.Level.Width < 5 || c.Level.Height < 5 {
		return fmt.Errorf("level size %dx%d is below 5x5", c.Level.Width, c.Level.Height)
	}
	if c.Level.Keys < 0 || c.Level.Monsters < 0 {
		return errors.New("negative key or monster count")
	}
	if c.Level.TimeBudget <= 0 {
		return errors.New("time budget must be positive")
	}
	if c.Render.StepSize <= 0 || c.Render.MaxDistance <= 0 {
		return errors.New("ray step and max distance must be positive")
	}
	if c.Fear.AnalysisInterval <= 0 {
		return errors.New("fear analysis interval must be positive")
	}
	return nil
}

// Load загружает конфигурацию. Пустой путь означает поиск fear-maze.{yaml,toml,json}
// в текущем каталоге; отсутствие файла не является ошибкой.
// Переменные окружения FEARMAZE_* перекрывают значения из файла.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("FEARMAZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fear-maze")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save сохраняет конфигурацию в файл (формат по расширению)
func (c *Config) Save(path string) error {
	v := viper.New()
	setDefaults(v, c)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// setDefaults регистрирует каждое поле как значение по умолчанию,
// иначе AutomaticEnv не увидит ключи, которых нет в файле
func setDefaults(v *viper.Viper, c *Config) {
	w, l, p, m := c.Window, c.Level, c.Player, c.Monster

	v.SetDefault("window.width", w.Width)
	v.SetDefault("window.height", w.Height)
	v.SetDefault("window.fullscreen", w.Fullscreen)
	v.SetDefault("window.title", w.Title)
	v.SetDefault("window.target_tps", w.TargetTPS)
	v.SetDefault("window.enable_vsync", w.EnableVSync)

	v.SetDefault("level.width", l.Width)
	v.SetDefault("level.height", l.Height)
	v.SetDefault("level.keys", l.Keys)
	v.SetDefault("level.monsters", l.Monsters)
	v.SetDefault("level.time_budget", l.TimeBudget)
	v.SetDefault("level.seed", l.Seed)
	v.SetDefault("level.pickup_radius", l.PickupRadius)
	v.SetDefault("level.chamber_radius", l.ChamberRadius)
	v.SetDefault("level.loop_chance", l.LoopChance)
	v.SetDefault("level.dead_end_thinning", l.DeadEndThinning)
	v.SetDefault("level.min_key_distance", l.MinKeyDistance)

	v.SetDefault("player.move_speed", p.MoveSpeed)
	v.SetDefault("player.turn_speed", p.TurnSpeed)
	v.SetDefault("player.mouse_sensitivity", p.MouseSensitivity)
	v.SetDefault("player.radius", p.Radius)
	v.SetDefault("player.start_health", p.StartHealth)
	v.SetDefault("player.start_sanity", p.StartSanity)
	v.SetDefault("player.start_stress", p.StartStress)
	v.SetDefault("player.battery_max", p.BatteryMax)
	v.SetDefault("player.battery_drain", p.BatteryDrain)
	v.SetDefault("player.battery_recharge", p.BatteryRecharge)
	v.SetDefault("player.flicker_threshold", p.FlickerThreshold)
	v.SetDefault("player.empty_stress", p.EmptyStress)
	v.SetDefault("player.dark_move_stress", p.DarkMoveStress)
	v.SetDefault("player.dark_move_sanity", p.DarkMoveSanity)
	v.SetDefault("player.stress_baseline", p.StressBaseline)
	v.SetDefault("player.stress_recovery", p.StressRecovery)
	v.SetDefault("player.stress_recovery_lit", p.StressRecoveryLit)
	v.SetDefault("player.sanity_regen", p.SanityRegen)
	v.SetDefault("player.scream_stress", p.ScreamStress)
	v.SetDefault("player.scream_radius", p.ScreamRadius)
	v.SetDefault("player.key_stress", p.KeyStress)
	v.SetDefault("player.exit_stress", p.ExitStress)

	v.SetDefault("monster.base_speed", m.BaseSpeed)
	v.SetDefault("monster.detection_range", m.DetectionRange)
	v.SetDefault("monster.attack_range", m.AttackRange)
	v.SetDefault("monster.attack_damage", m.AttackDamage)
	v.SetDefault("monster.attack_stress", m.AttackStress)
	v.SetDefault("monster.attack_sanity", m.AttackSanity)
	v.SetDefault("monster.attack_cooldown", m.AttackCooldown)
	v.SetDefault("monster.jump_scare_stress", m.JumpScareStress)
	v.SetDefault("monster.jump_scare_sanity", m.JumpScareSanity)
	v.SetDefault("monster.sight_samples", m.SightSamples)
	v.SetDefault("monster.lost_sight_after", m.LostSightAfter)
	v.SetDefault("monster.min_start_distance", m.MinStartDistance)
	v.SetDefault("monster.wander_radius", m.WanderRadius)
	v.SetDefault("monster.wander_timeout", m.WanderTimeout)
	v.SetDefault("monster.idle_min", m.IdleMin)
	v.SetDefault("monster.idle_max", m.IdleMax)
	v.SetDefault("monster.jump_interval", m.JumpInterval)
	v.SetDefault("monster.jump_chance", m.JumpChance)
	v.SetDefault("monster.jump_radius", m.JumpRadius)
	v.SetDefault("monster.repel_chance", m.RepelChance)
	v.SetDefault("monster.repel_cooldown", m.RepelCooldown)
	v.SetDefault("monster.enrage_factor", m.EnrageFactor)

	v.SetDefault("fear.analysis_interval", c.Fear.AnalysisInterval)
	v.SetDefault("fear.smoothing", c.Fear.Smoothing)
	v.SetDefault("fear.decay", c.Fear.Decay)
	v.SetDefault("fear.window_capacity", c.Fear.WindowCapacity)
	v.SetDefault("fear.inactivity_min", c.Fear.InactivityMin)
	v.SetDefault("fear.log_capacity", c.Fear.LogCapacity)

	v.SetDefault("render.columns", c.Render.Columns)
	v.SetDefault("render.fov", c.Render.FOV)
	v.SetDefault("render.step_size", c.Render.StepSize)
	v.SetDefault("render.max_distance", c.Render.MaxDistance)
	v.SetDefault("render.height_cap", c.Render.HeightCap)

	v.SetDefault("audio.enabled", c.Audio.Enabled)
	v.SetDefault("audio.sample_rate", c.Audio.SampleRate)
	v.SetDefault("audio.volume", c.Audio.Volume)

	v.SetDefault("storage.enabled", c.Storage.Enabled)
	v.SetDefault("storage.path", c.Storage.Path)

	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
}
