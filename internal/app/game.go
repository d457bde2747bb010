package app

import (
	"errors"
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"fear-maze/internal/audio"
	"fear-maze/internal/config"
	"fear-maze/internal/core"
	"fear-maze/internal/logger"
	"fear-maze/internal/persistence"
	"fear-maze/internal/render"
	"fear-maze/internal/stage"
)

// Game связывает стадии игры с окном Ebiten
type Game struct {
	config   *config.Config
	flow     *stage.Flow
	orch     *stage.Orchestrator
	renderer *render.Renderer
	audioMgr *audio.Manager
	store    *persistence.DB
	recorder *persistence.Recorder
	input    *Input
	intent   core.Intent
}

// NewGame создает новый экземпляр игры. Отсутствие звука или архива не
// мешает запуску.
func NewGame(cfg *config.Config, calibrate bool) (*Game, error) {
	g := &Game{
		config:   cfg,
		renderer: render.NewRenderer(cfg),
		input:    &Input{},
	}

	// Звук: при ошибке устройства играем молча
	var sink audio.Sink
	if cfg.Audio.Enabled {
		s, err := openSpeaker(cfg.Audio)
		if err != nil {
			logger.Log.WithError(err).Warn("audio device unavailable, running silent")
		} else {
			sink = s
		}
	}
	g.audioMgr = audio.NewManager(cfg.Audio, sink)

	// Архив забегов
	if cfg.Storage.Enabled {
		db, err := persistence.Open(cfg.Storage.Path)
		if err != nil {
			logger.Log.WithError(err).WithField("path", cfg.Storage.Path).Warn("run archive unavailable")
		} else {
			g.store = db
		}
	}
	g.recorder = persistence.NewRecorder(g.store)

	g.flow = &stage.Flow{
		Config:  cfg,
		Context: core.NewContext(),
		Input:   func() core.Intent { return g.intent },
		OnStart: g.levelStarted,
	}
	orch, err := stage.NewOrchestrator(g.flow.First(calibrate), g.flow.Next)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("start session: %w", err)
	}
	g.orch = orch

	return g, nil
}

// levelStarted подписывает звук и архив на события нового уровня
func (g *Game) levelStarted(level *core.Level) {
	g.audioMgr.Attach(level.Bus())
	g.recorder.Attach(level.Bus(), level.AdaptationLog)
	g.input.Reset()
	logger.Log.WithFields(logrus.Fields{
		"level": level.ID(),
		"seed":  level.Seed(),
	}).Info("level started")
}

// Update обновляет состояние игры
func (g *Game) Update() error {
	deltaTime := 1.0 / float64(ebiten.TPS())

	switch s := g.orch.Current().(type) {
	case *stage.Calibration:
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
			s.Skip()
		case inpututil.IsKeyJustPressed(ebiten.KeySpace):
			s.Press()
		case inpututil.IsKeyJustReleased(ebiten.KeySpace):
			s.Release()
		}
	case *stage.Play:
		g.intent = g.input.Poll()
	case *stage.Results:
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
			s.Quit()
		case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
			s.Continue()
		}
	}

	if err := g.orch.Update(deltaTime); err != nil {
		return fmt.Errorf("update %s: %w", g.stageName(), err)
	}
	if g.orch.Done() {
		return ebiten.Termination
	}

	if play, ok := g.orch.Current().(*stage.Play); ok {
		g.audioMgr.Update(deltaTime, audioState(play.Snapshot(), g.intent))
	}
	return nil
}

// Draw отрисовывает текущую стадию
func (g *Game) Draw(screen *ebiten.Image) {
	switch s := g.orch.Current().(type) {
	case *stage.Play:
		g.renderer.Render(screen, s.Level().World(), s.Snapshot())
	case *stage.Calibration:
		n, of := s.Progress()
		lines := []string{
			"Calibration",
			"",
			"Press and release SPACE as fast as you can",
			fmt.Sprintf("%d / %d", n, of),
			"",
			"Esc: skip",
		}
		if s.Pressed() {
			lines[3] = "HOLD"
		}
		g.renderer.RenderText(screen, lines)
	case *stage.Results:
		g.renderer.RenderText(screen, s.Lines())
	}
}

// Layout определяет размер экрана
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.config.Window.Width, g.config.Window.Height
}

// Run запускает основной цикл игры
func (g *Game) Run() error {
	defer g.Close()

	ebiten.SetWindowSize(g.config.Window.Width, g.config.Window.Height)
	ebiten.SetWindowTitle(g.config.Window.Title)
	ebiten.SetTPS(g.config.Window.TargetTPS)
	ebiten.SetVsyncEnabled(g.config.Window.EnableVSync)
	ebiten.SetFullscreen(g.config.Window.Fullscreen)
	ebiten.SetCursorMode(ebiten.CursorModeCaptured)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("game loop error: %w", err)
	}

	logger.Log.WithField("levels", g.flow.Context.Levels()).Info("session finished")
	return nil
}

// Close освобождает архив
func (g *Game) Close() {
	if g.store == nil {
		return
	}
	if err := g.store.Close(); err != nil {
		logger.Log.WithError(err).Warn("close run archive")
	}
	g.store = nil
}

func (g *Game) stageName() string {
	if s := g.orch.Current(); s != nil {
		return s.Name()
	}
	return "none"
}

// audioState собирает то, что нужно звуку, из снимка уровня
func audioState(snap core.Snapshot, in core.Intent) audio.State {
	nearest := 0.0
	for _, m := range snap.Monsters {
		if !m.Active {
			continue
		}
		d := math.Hypot(m.Position.X-snap.Player.Position.X, m.Position.Y-snap.Player.Position.Y)
		if nearest == 0 || d < nearest {
			nearest = d
		}
	}
	return audio.State{
		Stress:         snap.Player.Stress,
		Moving:         in.Forward || in.Back || in.StrafeLeft || in.StrafeRight,
		NearestMonster: nearest,
	}
}
