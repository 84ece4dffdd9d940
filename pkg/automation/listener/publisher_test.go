package listener_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	listener "github.com/creatorbridge/maestro/pkg/automation/listener"
)

type collectingObserver struct {
	mu     sync.Mutex
	states []*model.CampaignState
}

func (o *collectingObserver) OnStateChanged(state *model.CampaignState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, state)
}

func (o *collectingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.states)
}

func TestStatePublisher_DeliversToSubscribers(t *testing.T) {
	publisher := listener.NewStatePublisher(8)
	observer := &collectingObserver{}
	publisher.Subscribe(observer)

	publisher.Publish(model.NewCampaignState("sess_1", "cmp_1"))
	publisher.Publish(model.NewCampaignState("sess_1", "cmp_1"))
	publisher.Close()

	assert.Equal(t, 2, observer.count())
}

func TestStatePublisher_PublishNeverBlocks(t *testing.T) {
	publisher := listener.NewStatePublisher(1)
	blocked := make(chan struct{})
	publisher.Subscribe(listener.StateObserverFunc(func(state *model.CampaignState) {
		<-blocked
	}))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			publisher.Publish(model.NewCampaignState("sess_1", "cmp_1"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow observer")
	}

	assert.Greater(t, publisher.DroppedCount(), int64(0))
	close(blocked)
	publisher.Close()
}

func TestStatePublisher_PanickingObserverDoesNotStopDelivery(t *testing.T) {
	publisher := listener.NewStatePublisher(8)
	publisher.Subscribe(listener.StateObserverFunc(func(state *model.CampaignState) {
		panic("observer bug")
	}))
	healthy := &collectingObserver{}
	publisher.Subscribe(healthy)

	publisher.Publish(model.NewCampaignState("sess_1", "cmp_1"))
	publisher.Close()

	assert.Equal(t, 1, healthy.count())
}

func TestStatePublisher_PublishAfterCloseIsNoOp(t *testing.T) {
	publisher := listener.NewStatePublisher(4)
	publisher.Close()
	assert.NotPanics(t, func() {
		publisher.Publish(model.NewCampaignState("sess_1", "cmp_1"))
	})
}
