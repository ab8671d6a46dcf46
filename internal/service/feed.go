package service

import (
	"sync"

	"marketplace/internal/models"
)

// feedBuffer bounds each subscriber channel; a slow consumer drops events
// rather than blocking mutations.
const feedBuffer = 16

// FeedService is an in-process fan-out of item mutation events to WebSocket
// subscribers.
type FeedService struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan models.Event
}

func NewFeedService() *FeedService {
	return &FeedService{subs: make(map[int]chan models.Event)}
}

var _ Feed = (*FeedService)(nil)

// Publish delivers e to every live subscriber without blocking.
func (f *FeedService) Publish(e models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- e:
		default: // subscriber is not keeping up
		}
	}
}

// Subscribe registers a new consumer. The returned cancel func unregisters it
// and closes the channel; calling cancel more than once is safe.
func (f *FeedService) Subscribe() (<-chan models.Event, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	ch := make(chan models.Event, feedBuffer)
	f.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}
