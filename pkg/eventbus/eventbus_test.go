package eventbus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type createdEvent struct {
	Name string
}

type updatedEvent struct {
	Name string
}

func newTestBus() EventBus {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewEventPublisher(logger)
}

func TestPublish_DispatchesToMatchingHandler(t *testing.T) {
	bus := newTestBus()

	var got []string
	bus.Subscribe(func(ev createdEvent) {
		got = append(got, ev.Name)
	})
	bus.Subscribe(func(ev updatedEvent) {
		t.Error("updated handler must not receive created events")
	})

	bus.Publish(createdEvent{Name: "engineering"})

	require.Equal(t, []string{"engineering"}, got)
}

func TestPublish_MultipleSubscribersAllCalled(t *testing.T) {
	bus := newTestBus()

	calls := 0
	bus.Subscribe(func(ev createdEvent) { calls++ })
	bus.Subscribe(func(ev createdEvent) { calls++ })

	bus.Publish(createdEvent{})

	require.Equal(t, 2, calls)
}

func TestPublish_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := newTestBus()

	called := false
	bus.Subscribe(func(ev createdEvent) { panic("boom") })
	bus.Subscribe(func(ev createdEvent) { called = true })

	require.NotPanics(t, func() {
		bus.Publish(createdEvent{})
	})
	require.True(t, called)
}

func TestUnsubscribe_RemovesHandler(t *testing.T) {
	bus := newTestBus()

	handler := func(ev createdEvent) {
		t.Error("handler should have been unsubscribed")
	}
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Unsubscribe(handler)
	require.Equal(t, 0, bus.SubscribersCount())

	bus.Publish(createdEvent{})
}

func TestUnsubscribe_KeepsOtherHandlers(t *testing.T) {
	bus := newTestBus()

	removed := func(ev createdEvent) {
		t.Error("handler should have been unsubscribed")
	}
	kept := 0
	bus.Subscribe(removed)
	bus.Subscribe(func(ev createdEvent) { kept++ })

	require.NotPanics(t, func() {
		bus.Unsubscribe(removed)
	})
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Publish(createdEvent{})
	require.Equal(t, 1, kept)
}

func TestMatchSignature(t *testing.T) {
	tests := []struct {
		name    string
		handler interface{}
		args    []interface{}
		want    bool
	}{
		{
			name:    "exact struct match",
			handler: func(ev createdEvent) {},
			args:    []interface{}{createdEvent{}},
			want:    true,
		},
		{
			name:    "wrong struct type",
			handler: func(ev createdEvent) {},
			args:    []interface{}{updatedEvent{}},
			want:    false,
		},
		{
			name:    "arity mismatch",
			handler: func(a, b createdEvent) {},
			args:    []interface{}{createdEvent{}},
			want:    false,
		},
		{
			name:    "not a function",
			handler: "nope",
			args:    []interface{}{createdEvent{}},
			want:    false,
		},
		{
			name:    "nil arg against pointer param",
			handler: func(ev *createdEvent) {},
			args:    []interface{}{nil},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, MatchSignature(tt.handler, tt.args))
		})
	}
}
