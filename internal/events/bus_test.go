package events

import (
	"testing"

	"github.com/rs/zerolog"
)

func newTestBus() *Bus {
	return NewBus(zerolog.Nop())
}

func TestPublishInvokesInRegistrationOrder(t *testing.T) {
	t.Parallel()
	bus := newTestBus()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		bus.Subscribe(ClaimCreated, func(args ...interface{}) {
			order = append(order, i)
		})
	}

	bus.Publish(ClaimCreated)
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("order = %v, want [0 1 2]", order)
	}
}

func TestPublishPassesArguments(t *testing.T) {
	t.Parallel()
	bus := newTestBus()

	var got []interface{}
	bus.Subscribe(ClaimStatusChanged, func(args ...interface{}) {
		got = args
	})

	bus.Publish(ClaimStatusChanged, "claim-1", "draft", "submitted")
	if len(got) != 3 || got[0] != "claim-1" || got[2] != "submitted" {
		t.Errorf("args = %v", got)
	}
}

func TestDuplicateRegistrationsFireOncePerRegistration(t *testing.T) {
	t.Parallel()
	bus := newTestBus()

	calls := 0
	fn := func(args ...interface{}) { calls++ }
	bus.Subscribe(DataChanged, fn)
	bus.Subscribe(DataChanged, fn)

	bus.Publish(DataChanged)
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if bus.SubscriberCount(DataChanged) != 2 {
		t.Errorf("SubscriberCount = %d", bus.SubscriberCount(DataChanged))
	}
}

func TestUnsubscribeRemovesOnlyThatRegistration(t *testing.T) {
	t.Parallel()
	bus := newTestBus()

	var first, second int
	sub := bus.Subscribe(PersonMerged, func(args ...interface{}) { first++ })
	bus.Subscribe(PersonMerged, func(args ...interface{}) { second++ })

	sub.Unsubscribe()
	bus.Publish(PersonMerged)

	if first != 0 {
		t.Errorf("unsubscribed callback ran %d times", first)
	}
	if second != 1 {
		t.Errorf("remaining callback ran %d times, want 1", second)
	}

	// Unsubscribing twice is harmless.
	sub.Unsubscribe()
	if bus.SubscriberCount(PersonMerged) != 1 {
		t.Errorf("SubscriberCount = %d, want 1", bus.SubscriberCount(PersonMerged))
	}
}

func TestPanickingCallbackDoesNotStopOthers(t *testing.T) {
	t.Parallel()
	bus := newTestBus()

	var after int
	bus.Subscribe(OperationError, func(args ...interface{}) {
		panic("listener bug")
	})
	bus.Subscribe(OperationError, func(args ...interface{}) { after++ })

	bus.Publish(OperationError, "claims", "create", "boom")
	if after != 1 {
		t.Errorf("callback after panic ran %d times, want 1", after)
	}
}

func TestPublishWithNoSubscribersIsNoop(t *testing.T) {
	t.Parallel()
	bus := newTestBus()
	bus.Publish(SurveyLoaded, "survey-1")

	if bus.SubscriberCount(SurveyLoaded) != 0 {
		t.Errorf("SubscriberCount = %d", bus.SubscriberCount(SurveyLoaded))
	}
}
