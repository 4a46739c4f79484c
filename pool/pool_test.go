// ABOUTME: Tests for the worker pool and task groups
// ABOUTME: Verifies groups wait only for their own tasks

package pool

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestGroupWaitsForAllTasks(t *testing.T) {
	p := NewWorkerPool(4, 8)
	defer p.Close()

	var done atomic.Int32

	g := p.Group()
	for range 20 {
		g.Submit(func() {
			time.Sleep(time.Millisecond)
			done.Add(1)
		})
	}

	g.Wait()

	if got := done.Load(); got != 20 {
		t.Errorf("Expected 20 completed tasks, got %d", got)
	}
}

func TestGroupsAreIndependent(t *testing.T) {
	p := NewWorkerPool(2, 4)
	defer p.Close()

	release := make(chan struct{})

	slow := p.Group()
	slow.Submit(func() { <-release })

	fast := p.Group()
	ran := false
	fast.Submit(func() { ran = true })

	finished := make(chan struct{})
	go func() {
		fast.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("fast group blocked on an unrelated slow task")
	}

	if !ran {
		t.Error("Expected fast task to run")
	}

	close(release)
	slow.Wait()
}

func TestDefaultWorkerCount(t *testing.T) {
	p := NewWorkerPool(0, 1)
	defer p.Close()

	if p.Workers() < 1 {
		t.Errorf("Expected at least one worker, got %d", p.Workers())
	}
}

func TestSubmitAfterCloseRunsInline(t *testing.T) {
	p := NewWorkerPool(2, 0)
	p.Close()

	ran := false

	g := p.Group()
	g.Submit(func() { ran = true })
	g.Wait()

	if !ran {
		t.Error("Expected task to run after Close")
	}
}
