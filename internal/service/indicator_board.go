package service

import (
	"maps"
	"sync"

	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/models"
)

const subscriberBuffer = 64

// IndicatorBoard holds the current indicator of every store touched by a
// push or pull and fans changes out to subscribers. States live in memory
// only.
type IndicatorBoard struct {
	mu     sync.RWMutex
	states map[schema.StoreName]models.IndicatorState
	subs   map[int]chan models.IndicatorEvent
	nextID int
}

func NewIndicatorBoard() *IndicatorBoard {
	return &IndicatorBoard{
		states: make(map[schema.StoreName]models.IndicatorState),
		subs:   make(map[int]chan models.IndicatorEvent),
	}
}

// Set implements [Indicator]. Slow subscribers miss events rather than block
// the sync run.
func (b *IndicatorBoard) Set(store schema.StoreName, state models.IndicatorState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.states[store] = state
	ev := models.IndicatorEvent{Store: store, State: state}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// State returns the indicator of store, neutral when it was never set.
func (b *IndicatorBoard) State(store schema.StoreName) models.IndicatorState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.states[store]
}

// Snapshot returns a copy of every indicator set so far.
func (b *IndicatorBoard) Snapshot() map[schema.StoreName]models.IndicatorState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.states)
}

// Reset returns every indicator to neutral.
func (b *IndicatorBoard) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.states)
}

// Subscribe returns a channel receiving every later change and a function
// that cancels the subscription and closes the channel.
func (b *IndicatorBoard) Subscribe() (<-chan models.IndicatorEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan models.IndicatorEvent, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}
