// Command fearterm plays the maze in a terminal. Terminals report presses but
// not releases, so a movement key counts as held for a short window after its
// last repeat.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"fear-maze/internal/config"
	"fear-maze/internal/core"
	"fear-maze/internal/logger"
	"fear-maze/internal/persistence"
	"fear-maze/internal/render/ascii"
	"fear-maze/internal/render/minimap"
	"fear-maze/internal/render/raycast"
	"fear-maze/internal/stage"
)

const holdWindow = 0.2 // seconds a key stays held after its last event

var (
	configPath = flag.String("config", "", "config file path")
	seed       = flag.Int64("seed", 0, "first level seed, 0 for random")
	logPath    = flag.String("log", "fearterm.log", "log file; the terminal is busy drawing")
)

type term struct {
	screen tcell.Screen
	cfg    *config.Config
	orch   *stage.Orchestrator
	march  *raycast.Marcher

	now     float64
	held    map[string]float64 // action -> release time
	pending core.Intent        // edge-triggered actions for the next tick
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}
	if *seed != 0 {
		cfg.Level.Seed = *seed
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger.Init(cfg.Log.Level, cfg.Log.Format, logFile)

	if err := run(cfg); err != nil {
		logger.Log.WithError(err).Error("fearterm stopped")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	var store *persistence.DB
	if cfg.Storage.Enabled {
		if store, err = persistence.Open(cfg.Storage.Path); err != nil {
			logger.Log.WithError(err).Warn("run archive unavailable")
			store = nil
		} else {
			defer store.Close()
		}
	}
	recorder := persistence.NewRecorder(store)

	t := &term{
		screen: screen,
		cfg:    cfg,
		march:  raycast.NewMarcher(cfg.Render.StepSize, cfg.Render.MaxDistance),
		held:   make(map[string]float64),
	}
	flow := &stage.Flow{
		Config:  cfg,
		Context: core.NewContext(),
		Input:   t.intent,
		OnStart: func(l *core.Level) {
			recorder.Attach(l.Bus(), l.AdaptationLog)
		},
	}
	t.orch, err = stage.NewOrchestrator(flow.First(false), flow.Next)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go pump(screen.PollEvent, events, done)

	tps := max(cfg.Window.TargetTPS, 1)
	dt := 1.0 / float64(tps)
	ticker := time.NewTicker(time.Second / time.Duration(tps))
	defer ticker.Stop()

	for !t.orch.Done() {
		select {
		case ev := <-events:
			if t.handle(ev) {
				return nil
			}
		case <-ticker.C:
			t.now += dt
			if err := t.orch.Update(dt); err != nil {
				return fmt.Errorf("update: %w", err)
			}
			t.draw()
		}
	}
	return nil
}

// pump forwards polled events until poll returns nil or done is closed
func pump(poll func() tcell.Event, out chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := poll()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-done:
			return
		}
	}
}

// handle applies one terminal event. It reports whether to exit at once.
func (t *term) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return true
		}
		switch s := t.orch.Current().(type) {
		case *stage.Results:
			switch ev.Key() {
			case tcell.KeyEnter:
				s.Continue()
			case tcell.KeyEscape:
				s.Quit()
			}
		case *stage.Play:
			t.key(ev)
		}
	}
	return false
}

func (t *term) key(ev *tcell.EventKey) {
	hold := func(action string) { t.held[action] = t.now + holdWindow }
	switch ev.Key() {
	case tcell.KeyEscape:
		t.pending.Quit = true
	case tcell.KeyUp:
		hold("forward")
	case tcell.KeyDown:
		hold("back")
	case tcell.KeyLeft:
		hold("turn_left")
	case tcell.KeyRight:
		hold("turn_right")
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w':
			hold("forward")
		case 's':
			hold("back")
		case 'a':
			hold("strafe_left")
		case 'd':
			hold("strafe_right")
		case 'q':
			hold("turn_left")
		case 'e':
			hold("turn_right")
		case 'f':
			t.pending.ToggleLight = true
		case 'm':
			t.pending.ToggleMap = true
		case ' ':
			t.pending.Scream = true
		}
	}
}

// intent builds the intent for the next tick and clears edge actions
func (t *term) intent() core.Intent {
	held := func(action string) bool { return t.held[action] > t.now }
	in := t.pending
	in.Forward = held("forward")
	in.Back = held("back")
	in.StrafeLeft = held("strafe_left")
	in.StrafeRight = held("strafe_right")
	in.TurnLeft = held("turn_left")
	in.TurnRight = held("turn_right")
	t.pending = core.Intent{}
	return in
}

func (t *term) draw() {
	t.screen.Clear()
	w, h := t.screen.Size()
	if w <= 0 || h <= 1 {
		return
	}
	frame := ascii.NewFrame(w, h)

	switch s := t.orch.Current().(type) {
	case *stage.Play:
		t.drawLevel(frame, s)
	case *stage.Results:
		lines := s.Lines()
		y := h/2 - len(lines)/2
		for i, line := range lines {
			frame.Text(max(0, w/2-len(line)/2), y+i, line, color.RGBA{R: 57, G: 255, B: 20, A: 255})
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := frame.At(x, y)
			if c.Rune == 0 {
				continue
			}
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.Color.R), int32(c.Color.G), int32(c.Color.B)))
			t.screen.SetContent(x, y, c.Rune, nil, style)
		}
	}
	t.screen.Show()
}

func (t *term) drawLevel(frame *ascii.Frame, play *stage.Play) {
	snap := play.Snapshot()
	p := snap.Player
	rc := t.cfg.Render

	// Cells are about twice as tall as wide, so doubling darkness halves wall heights
	vp := raycast.Viewport{Width: float64(frame.Width), Height: float64(frame.Height - 1)}
	hits := t.march.Cast(play.Level().World(), p.Position.X, p.Position.Y, p.Angle, rc.FOV, frame.Width)
	cols := raycast.Project(hits, vp, snap.Darkness*2)

	var bs []raycast.Billboard
	for _, o := range snap.Objectives {
		if !o.Collected {
			bs = append(bs, raycast.Billboard{X: o.Position.X, Y: o.Position.Y, Size: 0.4, Color: color.RGBA{R: 230, G: 200, B: 60, A: 255}})
		}
	}
	for _, m := range snap.Monsters {
		if m.Active {
			bs = append(bs, raycast.Billboard{X: m.Position.X, Y: m.Position.Y, Size: 0.9, Color: color.RGBA{R: 200, G: 30, B: 30, A: 255}})
		}
	}
	sprites := raycast.ProjectSprites(bs, p.Position.X, p.Position.Y, p.Angle, rc.FOV, hits, vp, snap.Darkness*2)

	frame.Draw(hits, cols, sprites, func(s raycast.Sprite) rune {
		// shading keeps hue, monsters are the only red billboards
		if s.Color.G < s.Color.R/2 {
			return 'M'
		}
		return '*'
	})

	if snap.ShowMap {
		m := minimap.Build(play.Level().Grid(), snap)
		frame.Map(m, max(0, frame.Width-m.Width-1), 0, minimap.Blink(snap.Time))
	}

	light := "off"
	if p.FlashlightOn {
		light = fmt.Sprintf("%.0f%%", 100*p.Battery/math.Max(1, p.BatteryMax))
	}
	hud := fmt.Sprintf(" HP %3.0f  SAN %3.0f  STR %3.0f  light %s  keys %d/%d  %3.0fs  %s  %s ",
		p.Health, p.Sanity, p.Stress, light, snap.KeysFound, snap.KeysRequired, snap.TimeLeft, snap.Stage, snap.TensionName)
	frame.Text(0, frame.Height-1, hud, color.RGBA{R: 220, G: 220, B: 220, A: 255})
}
