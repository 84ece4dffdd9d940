package listener

import (
	"sync"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// StatePublisher fans campaign state snapshots out to subscribed observers
// through a bounded buffer. Publish never blocks the pipeline: when the
// buffer is full the snapshot is dropped and counted, and a later snapshot
// supersedes it.
type StatePublisher struct {
	mu        sync.Mutex
	observers []StateObserver
	ch        chan *model.CampaignState
	closed    bool
	dropped   int64
	loopDone  chan struct{}
}

// NewStatePublisher creates a publisher with the given buffer size and starts
// its delivery loop.
func NewStatePublisher(bufferSize int) *StatePublisher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	p := &StatePublisher{
		ch:       make(chan *model.CampaignState, bufferSize),
		loopDone: make(chan struct{}),
	}
	go p.deliverLoop()
	return p
}

// Subscribe registers an observer for all future snapshots.
func (p *StatePublisher) Subscribe(observer StateObserver) {
	if observer == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Publish enqueues a snapshot for delivery. It never blocks; when the buffer
// is full the snapshot is dropped with a warning. Publishing to a closed
// publisher is a silent no-op.
func (p *StatePublisher) Publish(state *model.CampaignState) {
	if state == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.ch <- state:
	default:
		p.dropped++
		logger.Warnf("StatePublisher: observer buffer full, dropped snapshot for session '%s' (%d dropped so far).", state.SessionID, p.dropped)
	}
}

// DroppedCount returns the number of snapshots dropped because of a full buffer.
func (p *StatePublisher) DroppedCount() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Close stops the delivery loop and waits for snapshots already buffered to
// be delivered.
func (p *StatePublisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()
	<-p.loopDone
}

func (p *StatePublisher) deliverLoop() {
	defer close(p.loopDone)
	for state := range p.ch {
		p.mu.Lock()
		observers := make([]StateObserver, len(p.observers))
		copy(observers, p.observers)
		p.mu.Unlock()

		for _, observer := range observers {
			p.deliverOne(observer, state)
		}
	}
}

// deliverOne isolates observer faults; a panicking observer is logged, not
// allowed to kill the delivery loop.
func (p *StatePublisher) deliverOne(observer StateObserver, state *model.CampaignState) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("StatePublisher: observer panicked on session '%s': %v", state.SessionID, rec)
		}
	}()
	observer.OnStateChanged(state)
}
