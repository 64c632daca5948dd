package services

import (
	"context"
	"testing"
	"time"

	"vms-backend/internal/models"
)

func TestSweeperSweepMarksOverdue(t *testing.T) {
	f := newVisitorFixture(t)
	v := f.checkIn(t)
	f.visitors.visitors[v.ID].EntryTime = time.Now().Add(-4 * time.Hour)

	sweeper := NewOverdueSweeper(f.svc, time.Hour, 3*time.Hour)
	sweeper.Sweep(context.Background())

	got, _ := f.visitors.Get(context.Background(), v.ID)
	if got.Status != models.StatusOverdue {
		t.Errorf("status = %s, want OVERDUE", got.Status)
	}
}

func TestSweeperSweepsImmediatelyOnStart(t *testing.T) {
	f := newVisitorFixture(t)
	v := f.checkIn(t)
	f.visitors.visitors[v.ID].EntryTime = time.Now().Add(-4 * time.Hour)

	// The interval is far longer than the test; only the startup
	// sweep can mark the visitor.
	sweeper := NewOverdueSweeper(f.svc, time.Hour, 3*time.Hour)
	sweeper.Start()
	defer sweeper.Stop()

	deadline := time.Now().Add(time.Second)
	for {
		got, _ := f.visitors.Get(context.Background(), v.ID)
		if got.Status == models.StatusOverdue {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("startup sweep never marked the visitor overdue")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSweeperStartStop(t *testing.T) {
	f := newVisitorFixture(t)
	sweeper := NewOverdueSweeper(f.svc, 10*time.Millisecond, 3*time.Hour)

	sweeper.Start()
	// Second Start is a no-op.
	sweeper.Start()
	time.Sleep(30 * time.Millisecond)
	sweeper.Stop()
	// Stop after Stop must not panic or block.
	sweeper.Stop()
}

func TestSweeperPeriodicallySweeps(t *testing.T) {
	f := newVisitorFixture(t)
	v := f.checkIn(t)
	f.visitors.visitors[v.ID].EntryTime = time.Now().Add(-4 * time.Hour)

	sweeper := NewOverdueSweeper(f.svc, 10*time.Millisecond, 3*time.Hour)
	sweeper.Start()
	defer sweeper.Stop()

	deadline := time.Now().Add(time.Second)
	for {
		got, _ := f.visitors.Get(context.Background(), v.ID)
		if got.Status == models.StatusOverdue {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("sweeper never marked the visitor overdue")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
