package realtime

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// loopbackFeed is an in-process Publisher/Subscriber pair: a publish is
// delivered straight to the subscribed handler, the way the Redis channel
// echoes a published message back to every subscriber.
type loopbackFeed struct {
	handler    func(payload []byte)
	publishErr error
}

func (l *loopbackFeed) PublishFeed(payload []byte) error {
	if l.publishErr != nil {
		return l.publishErr
	}
	if l.handler != nil {
		l.handler(payload)
	}
	return nil
}

func (l *loopbackFeed) SubscribeFeed(handler func(payload []byte)) (func(), error) {
	l.handler = handler
	return func() { l.handler = nil }, nil
}

func newTestClient() *Client {
	return &Client{ID: uuid.New().String(), send: make(chan WSMessage, 8)}
}

func drain(c *Client) []WSMessage {
	var msgs []WSMessage
	for {
		select {
		case m := <-c.send:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func testEvent() SubmissionEvent {
	return SubmissionEvent{
		QuizSlug:    "technokraft",
		UserID:      uuid.New(),
		Score:       7,
		TabSwitches: 1,
		SubmittedAt: time.Date(2026, 2, 7, 20, 25, 0, 0, time.UTC),
	}
}

func TestPublishSubmissionDeliversOnce(t *testing.T) {
	feed := &loopbackFeed{}
	hub := NewHub(nil, feed, feed)
	client := newTestClient()
	hub.register(client)
	defer hub.unregister(client)

	hub.PublishSubmission(testEvent())

	msgs := drain(client)
	if len(msgs) != 1 {
		t.Fatalf("client received %d copies of one submission event, want 1", len(msgs))
	}
	if msgs[0].Event != "submission_scored" {
		t.Errorf("event = %q, want submission_scored", msgs[0].Event)
	}
	var got SubmissionEvent
	if err := json.Unmarshal(msgs[0].Data, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got.QuizSlug != "technokraft" || got.Score != 7 {
		t.Errorf("payload = %+v, want published event fields", got)
	}
}

func TestPublishSubmissionWithoutFeedBroadcastsLocally(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	client := newTestClient()
	hub.register(client)
	defer hub.unregister(client)

	hub.PublishSubmission(testEvent())

	if msgs := drain(client); len(msgs) != 1 {
		t.Fatalf("client received %d messages, want 1 local broadcast", len(msgs))
	}
}

func TestPublishSubmissionFallsBackOnPublishError(t *testing.T) {
	feed := &loopbackFeed{publishErr: errors.New("redis down")}
	hub := NewHub(nil, feed, feed)
	client := newTestClient()
	hub.register(client)
	defer hub.unregister(client)

	hub.PublishSubmission(testEvent())

	if msgs := drain(client); len(msgs) != 1 {
		t.Fatalf("client received %d messages, want 1 fallback broadcast", len(msgs))
	}
}
