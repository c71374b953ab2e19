package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/p2p-wager-backend/internal/notification-worker/consumer"
	"github.com/radieske/p2p-wager-backend/internal/notification-worker/pubsub"
	"github.com/radieske/p2p-wager-backend/pkg/contracts/events"
)

type fakeCache struct {
	invalidated []string
	err         error
}

func (f *fakeCache) InvalidateFeed(_ context.Context, userID string) error {
	f.invalidated = append(f.invalidated, userID)
	return f.err
}

type fakeBroadcaster struct {
	channels []string
	payloads [][]byte
	err      error
}

func (f *fakeBroadcaster) Publish(_ context.Context, channel string, payload []byte) error {
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, payload)
	return f.err
}

func TestProcessInvalidatesAndBroadcastsPerUser(t *testing.T) {
	cache := &fakeCache{}
	bc := &fakeBroadcaster{}
	var broadcasts int
	p := &consumer.Processor{
		Log:         zap.NewNop(),
		Cache:       cache,
		Broadcaster: bc,
		Channel:     "bet_activity_broadcast",
		OnBroadcast: func() { broadcasts++ },
	}

	ev := events.BetActivity{
		Action:          events.ActionAccepted,
		BetID:           "bet-1",
		ActorID:         "bob",
		AffectedUserIDs: []string{"bob", "alice"},
	}
	b, _ := json.Marshal(ev)
	p.Process(context.Background(), b)

	if len(cache.invalidated) != 2 || cache.invalidated[0] != "bob" || cache.invalidated[1] != "alice" {
		t.Errorf("invalidated = %v, want [bob alice]", cache.invalidated)
	}
	if broadcasts != 2 || len(bc.payloads) != 2 {
		t.Fatalf("broadcasts = %d (payloads %d), want 2", broadcasts, len(bc.payloads))
	}
	for i, want := range []string{"bob", "alice"} {
		if bc.channels[i] != "bet_activity_broadcast" {
			t.Errorf("channel = %q", bc.channels[i])
		}
		var upd pubsub.WSUpdate
		if err := json.Unmarshal(bc.payloads[i], &upd); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if upd.UserID != want {
			t.Errorf("payload userId = %q, want %q", upd.UserID, want)
		}
	}
}

func TestProcessSkipsBlankUserIDs(t *testing.T) {
	cache := &fakeCache{}
	bc := &fakeBroadcaster{}
	p := &consumer.Processor{Log: zap.NewNop(), Cache: cache, Broadcaster: bc, Channel: "c"}

	ev := events.BetActivity{Action: events.ActionRejected, AffectedUserIDs: []string{"", "bob"}}
	b, _ := json.Marshal(ev)
	p.Process(context.Background(), b)

	if len(cache.invalidated) != 1 || cache.invalidated[0] != "bob" {
		t.Errorf("invalidated = %v, want [bob]", cache.invalidated)
	}
}

func TestProcessCountsDecodeError(t *testing.T) {
	cache := &fakeCache{}
	bc := &fakeBroadcaster{}
	var stages []string
	p := &consumer.Processor{
		Log:         zap.NewNop(),
		Cache:       cache,
		Broadcaster: bc,
		Channel:     "c",
		OnError:     func(stage string) { stages = append(stages, stage) },
	}

	p.Process(context.Background(), []byte("not json"))

	if len(stages) != 1 || stages[0] != "decode" {
		t.Errorf("error stages = %v, want [decode]", stages)
	}
	if len(cache.invalidated) != 0 || len(bc.payloads) != 0 {
		t.Error("decode failure must not touch cache or broadcast")
	}
}

func TestProcessBroadcastsEvenWhenInvalidationFails(t *testing.T) {
	cache := &fakeCache{err: errors.New("redis down")}
	bc := &fakeBroadcaster{}
	var stages []string
	p := &consumer.Processor{
		Log:         zap.NewNop(),
		Cache:       cache,
		Broadcaster: bc,
		Channel:     "c",
		OnError:     func(stage string) { stages = append(stages, stage) },
	}

	ev := events.BetActivity{Action: events.ActionAccepted, AffectedUserIDs: []string{"bob"}}
	b, _ := json.Marshal(ev)
	p.Process(context.Background(), b)

	if len(stages) != 1 || stages[0] != "invalidate" {
		t.Errorf("error stages = %v, want [invalidate]", stages)
	}
	if len(bc.payloads) != 1 {
		t.Errorf("broadcasts = %d, want 1 (broadcast independe da invalidação)", len(bc.payloads))
	}
}
