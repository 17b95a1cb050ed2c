package server

import (
	"log/slog"
	"time"
)

const defaultJanitorInterval = time.Minute

// janitor periodically evicts idle sessions.
type janitor struct {
	ticker *time.Ticker
	done   chan struct{}
	exited chan struct{}
}

func startJanitor(sc *ServerContext, timeout, interval time.Duration) *janitor {
	if interval <= 0 {
		interval = defaultJanitorInterval
	}
	j := &janitor{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go j.run(sc, timeout)
	return j
}

func (j *janitor) run(sc *ServerContext, timeout time.Duration) {
	defer close(j.exited)
	for {
		select {
		case <-j.ticker.C:
			if n := sc.EvictIdle(timeout); n > 0 {
				sc.logger.Info("Cleaned up idle sessions", slog.Int("count", n))
			}
		case <-j.done:
			return
		case <-sc.ctx.Done():
			return
		}
	}
}

func (j *janitor) stop() {
	j.ticker.Stop()
	select {
	case <-j.done:
	default:
		close(j.done)
	}
	<-j.exited
}
