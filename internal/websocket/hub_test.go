package websocket

import (
	"encoding/json"
	"testing"
)

func newTestClient() *Client {
	return &Client{send: make(chan []byte, 10)}
}

func TestBroadcastEventDeliversToRegisteredClients(t *testing.T) {
	hub := NewHub()
	first := newTestClient()
	second := newTestClient()
	hub.Register("user-1", first)
	hub.Register("user-1", second)

	hub.BroadcastEvent("user-1", Event{Type: EventBalance, Payload: map[string]any{"wallet_id": "wallet-1"}})

	for _, client := range []*Client{first, second} {
		select {
		case raw := <-client.send:
			var event Event
			if err := json.Unmarshal(raw, &event); err != nil {
				t.Fatalf("failed to decode event: %v", err)
			}
			if event.Type != EventBalance || event.Payload["wallet_id"] != "wallet-1" {
				t.Fatalf("unexpected event: %#v", event)
			}
		default:
			t.Fatalf("expected event to be delivered")
		}
	}
}

func TestBroadcastEventSkipsOtherUsers(t *testing.T) {
	hub := NewHub()
	client := newTestClient()
	hub.Register("user-2", client)

	hub.BroadcastEvent("user-1", Event{Type: EventTrade})

	select {
	case <-client.send:
		t.Fatalf("expected no event for another user")
	default:
	}
}

func TestBroadcastEventSkipsFullBuffers(t *testing.T) {
	hub := NewHub()
	client := &Client{send: make(chan []byte)}
	hub.Register("user-1", client)

	// Nobody is draining the channel; the send must not block.
	hub.BroadcastEvent("user-1", Event{Type: EventNotification})
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	client := newTestClient()
	hub.Register("user-1", client)
	hub.Unregister("user-1", client)

	hub.BroadcastEvent("user-1", Event{Type: EventWithdrawal})

	select {
	case <-client.send:
		t.Fatalf("expected no event after unregister")
	default:
	}
}
