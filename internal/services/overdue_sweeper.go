package services

import (
	"context"
	"log"
	"sync"
	"time"
)

// OverdueSweeper periodically flips long-ACTIVE visitors to OVERDUE.
// Start launches the loop; Stop shuts it down and waits for the
// in-flight sweep to finish.
type OverdueSweeper struct {
	visitors *VisitorService
	interval time.Duration
	cutoff   time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewOverdueSweeper(visitors *VisitorService, interval, cutoff time.Duration) *OverdueSweeper {
	return &OverdueSweeper{
		visitors: visitors,
		interval: interval,
		cutoff:   cutoff,
	}
}

func (s *OverdueSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx)
	log.Printf("→ Overdue sweeper started (every %s, cutoff %s)", s.interval, s.cutoff)
}

func (s *OverdueSweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *OverdueSweeper) run(ctx context.Context) {
	defer close(s.done)
	s.Sweep(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. Safe to call concurrently with live exits: the
// conditional UPDATE underneath means each visitor is transitioned at
// most once.
func (s *OverdueSweeper) Sweep(ctx context.Context) {
	n, err := s.visitors.MarkOverdue(ctx, s.cutoff)
	if err != nil {
		log.Printf("overdue sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("✓ Overdue sweep marked %d visitor(s)", n)
	}
}
