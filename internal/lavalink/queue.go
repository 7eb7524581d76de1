package lavalink

import "sync"

// Queue is a FIFO of tracks waiting to be played. It is safe for
// concurrent use.
type Queue struct {
	mu     sync.Mutex
	tracks []Track
}

func (q *Queue) Put(track Track) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tracks = append(q.tracks, track)
}

// Get pops the oldest track. ok is false when the queue is empty.
func (q *Queue) Get() (track Track, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tracks) == 0 {
		return Track{}, false
	}
	track = q.tracks[0]
	q.tracks[0] = Track{}
	q.tracks = q.tracks[1:]
	return track, true
}

func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tracks = nil
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tracks)
}

func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}
