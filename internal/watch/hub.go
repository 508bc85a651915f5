package watch

import "sync"

type Topic string

const (
	TopicOrders   Topic = "orders"
	TopicInvoices Topic = "invoices"
	TopicProducts Topic = "products"
	TopicUsers    Topic = "users"
)

// Hub は変更通知のファンアウト。差分は流さず「変わった」事実だけ流して、
// 受け手が全量スナップショットを引き直す。
type Hub struct {
	mu     sync.Mutex
	nextID int64
	subs   map[Topic]map[int64]chan struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[Topic]map[int64]chan struct{})}
}

// Subscribe は通知チャネルと解除関数を返す。
// チャネルはバッファ1。未消化のうちに来た通知は1件にまとまる。
// 解除はチャネルのcloseで伝わる。
func (h *Hub) Subscribe(t Topic) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[t] == nil {
		h.subs[t] = make(map[int64]chan struct{})
	}
	h.nextID++
	id := h.nextID
	ch := make(chan struct{}, 1)
	h.subs[t][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[t][id]; ok {
			delete(h.subs[t], id)
			close(c)
		}
	}
	return ch, cancel
}

func (h *Hub) Notify(t Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[t] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
