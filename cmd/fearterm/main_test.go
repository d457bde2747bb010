package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

type stamp struct{}

func (stamp) When() time.Time { return time.Time{} }

func TestPumpStopsWhenDone(t *testing.T) {
	tests := []struct {
		name  string
		poll  func() tcell.Event
		close bool
	}{
		{"blocked on a full channel", func() tcell.Event { return stamp{} }, true},
		{"poll reports shutdown", func() tcell.Event { return nil }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := make(chan tcell.Event, 1)
			done := make(chan struct{})
			finished := make(chan struct{})
			go func() {
				pump(tt.poll, out, done)
				close(finished)
			}()
			if tt.close {
				close(done)
			}
			select {
			case <-finished:
			case <-time.After(time.Second):
				t.Fatal("pump still running")
			}
		})
	}
}
