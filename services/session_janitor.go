package services

import (
	"sync"
	"time"

	"nba-predictions-go/logging"
)

// SessionJanitor periodically drops idle view sessions, closing their wizards
type SessionJanitor struct {
	sessions *ViewSessions
	interval time.Duration
	maxIdle  time.Duration
	ticker   *time.Ticker
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	logger   *logging.Logger
}

// NewSessionJanitor sweeps every interval, dropping sessions idle longer than maxIdle
func NewSessionJanitor(sessions *ViewSessions, interval, maxIdle time.Duration) *SessionJanitor {
	return &SessionJanitor{
		sessions: sessions,
		interval: interval,
		maxIdle:  maxIdle,
		logger:   logging.WithPrefix("Janitor"),
	}
}

// Start begins sweeping; calling it twice is a no-op
func (j *SessionJanitor) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.ticker != nil {
		j.logger.Warn("Already running")
		return
	}

	j.ticker = time.NewTicker(j.interval)
	j.stopChan = make(chan struct{})
	j.wg.Add(1)
	go j.run(j.ticker, j.stopChan)
	j.logger.Debugf("Sweeping idle view sessions every %s", j.interval)
}

// Stop halts sweeping and waits for the loop to exit
func (j *SessionJanitor) Stop() {
	j.mu.Lock()
	if j.ticker == nil {
		j.mu.Unlock()
		return
	}
	j.ticker.Stop()
	close(j.stopChan)
	j.ticker = nil
	j.mu.Unlock()

	j.wg.Wait()
}

func (j *SessionJanitor) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer j.wg.Done()
	for {
		select {
		case <-ticker.C:
			if n := j.sessions.Sweep(j.maxIdle); n > 0 {
				j.logger.Debugf("Dropped %d idle view sessions", n)
			}
		case <-stop:
			return
		}
	}
}
