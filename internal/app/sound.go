package app

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"fear-maze/internal/config"
)

// speakerSink выводит потоки в системный динамик
type speakerSink struct{}

func (speakerSink) Play(s ...beep.Streamer) { speaker.Play(s...) }

// openSpeaker инициализирует динамик с буфером на 100 мс
func openSpeaker(cfg config.AudioConfig) (speakerSink, error) {
	sr := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return speakerSink{}, fmt.Errorf("init speaker: %w", err)
	}
	return speakerSink{}, nil
}
