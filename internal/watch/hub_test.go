package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeNotify(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(TopicOrders)
	defer cancel()

	h.Notify(TopicOrders)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestNotify_OtherTopicNotDelivered(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(TopicOrders)
	defer cancel()

	h.Notify(TopicInvoices)

	select {
	case <-ch:
		t.Fatal("unexpected notification")
	default:
	}
}

func TestNotify_Coalesces(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(TopicProducts)
	defer cancel()

	// 未消化のまま連打しても1件にまとまる
	h.Notify(TopicProducts)
	h.Notify(TopicProducts)
	h.Notify(TopicProducts)

	<-ch
	select {
	case <-ch:
		t.Fatal("notifications were not coalesced")
	default:
	}
}

func TestCancel_ClosesChannel(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(TopicUsers)

	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// 解除後の通知はpanicしない
	require.NotPanics(t, func() { h.Notify(TopicUsers) })

	// 二重解除も安全
	require.NotPanics(t, cancel)
}

func TestMultipleSubscribers(t *testing.T) {
	h := NewHub()
	ch1, cancel1 := h.Subscribe(TopicOrders)
	ch2, cancel2 := h.Subscribe(TopicOrders)
	defer cancel1()
	defer cancel2()

	h.Notify(TopicOrders)

	for _, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("notification not delivered to all subscribers")
		}
	}
}
