package broker

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ShayCichocki/scaffold/pkg/models"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestBroker_DeliversInPublicationOrder(t *testing.T) {
	b := New(nil)
	defer b.Close()

	var mu sync.Mutex
	var got []string
	b.Subscribe("worker-1", func(msg models.Message) {
		mu.Lock()
		got = append(got, msg.Content["seq"].(string))
		mu.Unlock()
	})

	const n = 100
	for i := 0; i < n; i++ {
		b.Publish(models.NewMessage("orch", "worker-1",
			map[string]any{"seq": fmt.Sprintf("%03d", i)}, models.MessageTypeRequest, ""))
	}

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == n
	})

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Fatalf("out-of-order delivery: %s before %s", got[i-1], got[i])
		}
	}
}

func TestBroker_NoSubscriberDropsSilently(t *testing.T) {
	b := New(nil)
	defer b.Close()

	// Must not panic or error; the message is simply dropped.
	b.Publish(models.NewMessage("orch", "nobody", nil, models.MessageTypeRequest, ""))

	if len(b.History("")) != 1 {
		t.Error("dropped messages should still appear in history")
	}
}

func TestBroker_LastSubscriptionWins(t *testing.T) {
	b := New(nil)
	defer b.Close()

	firstCalled := make(chan struct{}, 1)
	secondCalled := make(chan struct{}, 1)

	b.Subscribe("worker-1", func(models.Message) {
		select {
		case firstCalled <- struct{}{}:
		default:
		}
	})
	b.Subscribe("worker-1", func(models.Message) {
		select {
		case secondCalled <- struct{}{}:
		default:
		}
	})

	b.Publish(models.NewMessage("orch", "worker-1", nil, models.MessageTypeRequest, ""))

	select {
	case <-secondCalled:
	case <-time.After(time.Second):
		t.Fatal("replacement handler was not invoked")
	}
	select {
	case <-firstCalled:
		t.Fatal("replaced handler should not receive messages")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := New(nil)
	defer b.Close()

	called := make(chan struct{}, 1)
	b.Subscribe("worker-1", func(models.Message) { called <- struct{}{} })
	b.Unsubscribe("worker-1")

	b.Publish(models.NewMessage("orch", "worker-1", nil, models.MessageTypeRequest, ""))

	select {
	case <-called:
		t.Fatal("unsubscribed handler should not receive messages")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_HistoryFilterByConversation(t *testing.T) {
	b := New(nil)
	defer b.Close()

	b.Publish(models.NewMessage("a", "b", nil, models.MessageTypeRequest, "conv-1"))
	b.Publish(models.NewMessage("b", "a", nil, models.MessageTypeResponse, "conv-1"))
	b.Publish(models.NewMessage("a", "c", nil, models.MessageTypeRequest, "conv-2"))

	if got := len(b.History("conv-1")); got != 2 {
		t.Errorf("History(conv-1) returned %d messages, want 2", got)
	}
	if got := len(b.History("")); got != 3 {
		t.Errorf("History() returned %d messages, want 3", got)
	}
}

func TestBroker_RequestResponseCorrelation(t *testing.T) {
	b := New(nil)
	defer b.Close()

	// A worker-style handler: respond to requests on the same conversation.
	b.Subscribe("worker-1", func(msg models.Message) {
		if msg.IsRequest() {
			b.Publish(models.NewMessage("worker-1", msg.SenderID,
				map[string]any{"ok": true}, models.MessageTypeResponse, msg.ConversationID))
		}
	})

	responses := make(chan models.Message, 1)
	b.Subscribe("orch", func(msg models.Message) {
		if msg.Type == models.MessageTypeResponse {
			responses <- msg
		}
	})

	req := models.NewMessage("orch", "worker-1", map[string]any{"task_id": "t-1"}, models.MessageTypeTaskExecution, "")
	b.Publish(req)

	select {
	case resp := <-responses:
		if resp.ConversationID != req.ConversationID {
			t.Errorf("response conversation = %q, want %q", resp.ConversationID, req.ConversationID)
		}
	case <-time.After(time.Second):
		t.Fatal("no correlated response received")
	}
}

func TestBroker_PublishAfterCloseIsNoOp(t *testing.T) {
	b := New(nil)
	b.Subscribe("worker-1", func(models.Message) {})
	b.Close()

	b.Publish(models.NewMessage("orch", "worker-1", nil, models.MessageTypeRequest, ""))
	b.Subscribe("worker-2", func(models.Message) {})

	if len(b.History("")) != 0 {
		t.Error("publish after close should not record history")
	}
}
