package lavalink_test

import (
	"sync"
	"testing"

	"github.com/glizzus/sound-panel/internal/lavalink"
)

func TestQueueOrder(t *testing.T) {
	var q lavalink.Queue
	if !q.IsEmpty() {
		t.Fatal("expected a new queue to be empty")
	}

	for _, encoded := range []string{"a", "b", "c"} {
		q.Put(lavalink.Track{Encoded: encoded})
	}
	if q.Len() != 3 {
		t.Fatalf("expected 3 tracks, got %d", q.Len())
	}

	for _, want := range []string{"a", "b", "c"} {
		track, ok := q.Get()
		if !ok {
			t.Fatalf("expected track %s, queue was empty", want)
		}
		if track.Encoded != want {
			t.Errorf("expected %s, got %s", want, track.Encoded)
		}
	}

	if _, ok := q.Get(); ok {
		t.Error("expected the queue to be drained")
	}
}

func TestQueueClear(t *testing.T) {
	var q lavalink.Queue
	q.Put(lavalink.Track{Encoded: "a"})
	q.Put(lavalink.Track{Encoded: "b"})
	q.Clear()
	if !q.IsEmpty() {
		t.Errorf("expected an empty queue, got %d tracks", q.Len())
	}
}

func TestQueueConcurrentPut(t *testing.T) {
	var q lavalink.Queue
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Put(lavalink.Track{Encoded: "x"})
		}()
	}
	wg.Wait()
	if q.Len() != 50 {
		t.Errorf("expected 50 tracks, got %d", q.Len())
	}
}
