package websock

import (
	"testing"
	"time"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send:   make(chan []byte, 10),
		Topics: []string{TopicForAuthor("a1")},
	}

	hub.Register(client)

	data := []byte(`{"type":"reservation-made"}`)
	hub.Publish(TopicForAuthor("a1"), data)

	select {
	case got := <-client.Send:
		if string(got) != string(data) {
			t.Fatalf("expected %s, got %s", data, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	hub.Unregister(client)
}

func TestHubTopicIsolation(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := &Client{Send: make(chan []byte, 10), Topics: []string{TopicForAuthor("a1")}}
	b := &Client{Send: make(chan []byte, 10), Topics: []string{TopicForAuthor("b2")}}
	hub.Register(a)
	hub.Register(b)

	hub.Publish(TopicForAuthor("a1"), []byte("for-a"))

	select {
	case got := <-a.Send:
		if string(got) != "for-a" {
			t.Fatalf("unexpected payload %s", got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	select {
	case got := <-b.Send:
		t.Fatalf("b received %s on someone else's topic", got)
	case <-time.After(50 * time.Millisecond):
	}
}

// An authenticated connection listens on both its private topic and the
// shared changes topic.
func TestHubSharedChangesTopic(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := &Client{
		Send:   make(chan []byte, 10),
		Topics: []string{ChangesTopic, TopicForAuthor("a1")},
	}
	hub.Register(c)

	hub.Publish(ChangesTopic, []byte("listing-created"))
	hub.Publish(TopicForAuthor("a1"), []byte("private"))

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case msg := <-c.Send:
			got[string(msg)] = true
		case <-time.After(1 * time.Second):
			t.Fatal("timeout waiting for message")
		}
	}
	if !got["listing-created"] || !got["private"] {
		t.Fatalf("expected both topics delivered, got %v", got)
	}
}

func TestHubUnregisterClosesSendOnce(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := &Client{
		Send:   make(chan []byte, 1),
		Topics: []string{ChangesTopic, TopicForAuthor("a1")},
	}
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c) // second detach must be harmless

	select {
	case _, open := <-c.Send:
		if open {
			t.Fatal("expected send channel closed after unregister")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for channel close")
	}
}
