// Package timer drives the simulation clock. While started it fires every
// interval; each tick steps the whole fleet once.
package timer

import (
	"context"
	"time"

	"liftbank/src/logger"
)

var Log = logger.GetLogger()

type TimerAction int

const (
	Start TimerAction = iota
	Stop
)

func (a TimerAction) String() string {
	switch a {
	case Start:
		return "Start"
	case Stop:
		return "Stop"
	default:
		return "Unknown"
	}
}

// Init starts a stopped timer and returns its tick and action channels.
func Init(ctx context.Context, interval time.Duration) (<-chan time.Time, chan<- TimerAction) {
	timeout := make(chan time.Time)
	action := make(chan TimerAction, 1)
	go Timer(ctx, interval, timeout, action)
	return timeout, action
}

// Timer sends on timeout every interval between a Start and a Stop action.
// It returns when ctx is done.
func Timer(ctx context.Context, interval time.Duration, timeout chan<- time.Time, action <-chan TimerAction) {
	t := time.NewTimer(interval)
	t.Stop()
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-action:
			Log.Debug().Stringer("action", a).Dur("interval", interval).Msg("Simulation clock")
			switch a {
			case Start:
				resetTimer(t, interval)
			case Stop:
				t.Stop()
			}
		case now := <-t.C:
			t.Reset(interval)
			select {
			case timeout <- now:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Stops the timer and resets it.
func resetTimer(t *time.Timer, interval time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(interval)
}
