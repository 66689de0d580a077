package events

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/raksetu/bloodhub/internal/domain/entities"
)

const subscriberBuffer = 100

// fanout tracks local subscriber channels per bus channel. Slow subscribers
// drop events instead of blocking delivery to the others.
type fanout struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.EmergencyEvent]struct{}
}

func newFanout() *fanout {
	return &fanout{subscribers: make(map[string]map[chan *entities.EmergencyEvent]struct{})}
}

// add registers a new subscriber and reports how many the channel now has
func (f *fanout) add(channel string) (chan *entities.EmergencyEvent, int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subscribers[channel] == nil {
		f.subscribers[channel] = make(map[chan *entities.EmergencyEvent]struct{})
	}
	ch := make(chan *entities.EmergencyEvent, subscriberBuffer)
	f.subscribers[channel][ch] = struct{}{}
	return ch, len(f.subscribers[channel])
}

// remove closes one subscriber and reports how many are left
func (f *fanout) remove(channel string, ch chan *entities.EmergencyEvent) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	subscribers, ok := f.subscribers[channel]
	if !ok {
		return 0
	}
	if _, ok := subscribers[ch]; !ok {
		return len(subscribers)
	}
	delete(subscribers, ch)
	close(ch)
	if len(subscribers) == 0 {
		delete(f.subscribers, channel)
	}
	return len(subscribers)
}

func (f *fanout) broadcast(channel string, event *entities.EmergencyEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for subscriber := range f.subscribers[channel] {
		select {
		case subscriber <- event:
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("Subscriber channel full, skipping event")
		}
	}
}

// closeChannel closes every subscriber of channel
func (f *fanout) closeChannel(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for subscriber := range f.subscribers[channel] {
		close(subscriber)
	}
	delete(f.subscribers, channel)
}

func (f *fanout) channels() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]string, 0, len(f.subscribers))
	for channel := range f.subscribers {
		out = append(out, channel)
	}
	return out
}
