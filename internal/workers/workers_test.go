// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"testing"
)

// fakeWorker records Start and Stop calls.
type fakeWorker struct {
	id     int
	starts *[]int
	stops  *[]int
}

func (f *fakeWorker) Start(context.Context) { *f.starts = append(*f.starts, f.id) }
func (f *fakeWorker) Stop()                 { *f.stops = append(*f.stops, f.id) }

func TestWorkers_StartOrder(t *testing.T) {
	var starts, stops []int
	ws := NewWorkers(
		&fakeWorker{id: 1, starts: &starts, stops: &stops},
		&fakeWorker{id: 2, starts: &starts, stops: &stops},
		&fakeWorker{id: 3, starts: &starts, stops: &stops},
	)

	ws.Start(context.Background())

	expected := []int{1, 2, 3}
	for i, v := range expected {
		if starts[i] != v {
			t.Errorf("expected starts[%d]=%d, got %d", i, v, starts[i])
		}
	}
}

func TestWorkers_StopReverseOrder(t *testing.T) {
	var starts, stops []int
	ws := NewWorkers(
		&fakeWorker{id: 1, starts: &starts, stops: &stops},
		&fakeWorker{id: 2, starts: &starts, stops: &stops},
	)

	ws.Start(context.Background())
	ws.Stop()

	expected := []int{2, 1}
	for i, v := range expected {
		if stops[i] != v {
			t.Errorf("expected stops[%d]=%d, got %d", i, v, stops[i])
		}
	}
}

func TestWorkers_Empty(t *testing.T) {
	ws := NewWorkers()

	// Should not panic with no workers
	ws.Start(context.Background())
	ws.Stop()
}
