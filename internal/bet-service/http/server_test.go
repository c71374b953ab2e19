package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/p2p-wager-backend/internal/bet-service/engine"
	bhttp "github.com/radieske/p2p-wager-backend/internal/bet-service/http"
	"github.com/radieske/p2p-wager-backend/internal/bet-service/repo"
	"github.com/radieske/p2p-wager-backend/pkg/contracts/events"
)

type fakeEngine struct {
	result engine.Result
	caller string
	rowID  string
}

func (f *fakeEngine) AcceptBet(_ context.Context, callerID, rowID string) engine.Result {
	f.caller, f.rowID = callerID, rowID
	return f.result
}
func (f *fakeEngine) RejectBet(_ context.Context, callerID, rowID string) engine.Result {
	f.caller, f.rowID = callerID, rowID
	return f.result
}
func (f *fakeEngine) DeclareOutcome(_ context.Context, callerID, rowID, _ string) engine.Result {
	f.caller, f.rowID = callerID, rowID
	return f.result
}

type fakeRepo struct {
	betID     string
	createErr error
}

func (f *fakeRepo) CreateBet(_ context.Context, _ string, _ *repo.Bet, _ []string) (string, error) {
	return f.betID, f.createErr
}
func (f *fakeRepo) GetBet(_ context.Context, _, _ string) (*repo.Bet, error) {
	return nil, repo.ErrNotFound
}
func (f *fakeRepo) ListBets(_ context.Context, _ string) ([]repo.Bet, error) { return nil, nil }
func (f *fakeRepo) ListBetRecipients(_ context.Context, _, _ string) ([]repo.BetRecipient, error) {
	return nil, nil
}
func (f *fakeRepo) CancelBet(_ context.Context, _, _ string) error { return nil }
func (f *fakeRepo) DeleteBet(_ context.Context, _, _ string) error { return nil }

type fakeFriends struct{}

func (fakeFriends) List(_ context.Context, _ string) ([]repo.Friend, error) { return nil, nil }
func (fakeFriends) Add(_ context.Context, _, _ string) error                { return nil }

type fakePublisher struct {
	published []events.BetActivity
}

func (f *fakePublisher) PublishBetActivity(_ context.Context, e events.BetActivity) error {
	f.published = append(f.published, e)
	return nil
}

func newTestServer(eng *fakeEngine, r *fakeRepo, p *fakePublisher) http.Handler {
	return bhttp.NewServer(zap.NewNop(), eng, r, fakeFriends{}, p).Router()
}

func TestLifecycleRequiresIdentity(t *testing.T) {
	srv := newTestServer(&fakeEngine{}, &fakeRepo{}, &fakePublisher{})

	req := httptest.NewRequest(http.MethodPost, "/v1/recipients/row-1/accept", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAcceptReturnsEnvelopeAndPublishes(t *testing.T) {
	eng := &fakeEngine{result: engine.Result{
		Success:      true,
		BetID:        "bet-1",
		RecipientID:  "bob",
		BetCreatorID: "alice",
		Message:      "bet accepted",
	}}
	pub := &fakePublisher{}
	srv := newTestServer(eng, &fakeRepo{}, pub)

	req := httptest.NewRequest(http.MethodPost, "/v1/recipients/row-1/accept", nil)
	req.Header.Set("X-User-ID", "bob")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res engine.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !res.Success || res.BetID != "bet-1" {
		t.Errorf("envelope = %+v", res)
	}
	if eng.caller != "bob" || eng.rowID != "row-1" {
		t.Errorf("engine called with (%q, %q)", eng.caller, eng.rowID)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.published))
	}
	ev := pub.published[0]
	if ev.Action != events.ActionAccepted || ev.BetID != "bet-1" || ev.ActorID != "bob" {
		t.Errorf("event = %+v", ev)
	}
	if len(ev.AffectedUserIDs) != 2 || ev.AffectedUserIDs[0] != "bob" || ev.AffectedUserIDs[1] != "alice" {
		t.Errorf("affected = %v, want [bob alice]", ev.AffectedUserIDs)
	}
}

func TestFailedLifecycleDoesNotPublish(t *testing.T) {
	eng := &fakeEngine{result: engine.Result{
		Success: false,
		Error:   "recipient row not found or not owned by caller",
	}}
	pub := &fakePublisher{}
	srv := newTestServer(eng, &fakeRepo{}, pub)

	req := httptest.NewRequest(http.MethodPost, "/v1/recipients/row-9/reject", nil)
	req.Header.Set("X-User-ID", "eve")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	// falha vem no envelope, não em status HTTP de erro
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res engine.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if res.Success || res.Error == "" {
		t.Errorf("envelope = %+v, want failure with message", res)
	}
	if len(pub.published) != 0 {
		t.Errorf("published %d events, want 0", len(pub.published))
	}
}

func TestDeclareOutcomeFansOutToOpponents(t *testing.T) {
	eng := &fakeEngine{result: engine.Result{
		Success:      true,
		BetID:        "bet-1",
		RecipientID:  "bob",
		BetCreatorID: "alice",
		OpponentIDs:  []string{"carol"},
	}}
	pub := &fakePublisher{}
	srv := newTestServer(eng, &fakeRepo{}, pub)

	body := bytes.NewBufferString(`{"outcome":"lost"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/recipients/row-1/outcome", body)
	req.Header.Set("X-User-ID", "bob")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(pub.published) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.published))
	}
	ev := pub.published[0]
	if ev.Action != events.ActionOutcomeDeclared || ev.Outcome != "lost" {
		t.Errorf("event = %+v", ev)
	}
	want := []string{"bob", "alice", "carol"}
	if len(ev.AffectedUserIDs) != len(want) {
		t.Fatalf("affected = %v, want %v", ev.AffectedUserIDs, want)
	}
	for i := range want {
		if ev.AffectedUserIDs[i] != want[i] {
			t.Errorf("affected = %v, want %v", ev.AffectedUserIDs, want)
			break
		}
	}
}

func TestCreateBetValidatesPayload(t *testing.T) {
	pub := &fakePublisher{}
	srv := newTestServer(&fakeEngine{}, &fakeRepo{betID: "bet-1"}, pub)

	cases := []string{
		`{"description":"","stake_cents":100,"recipient_ids":["bob"]}`,
		`{"description":"x","stake_cents":0,"recipient_ids":["bob"]}`,
		`{"description":"x","stake_cents":100,"recipient_ids":[]}`,
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/bets", bytes.NewBufferString(c))
		req.Header.Set("X-User-ID", "alice")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %s: status = %d, want 400", c, rec.Code)
		}
	}
	if len(pub.published) != 0 {
		t.Errorf("published %d events, want 0", len(pub.published))
	}
}

func TestCreateBetPublishesInvites(t *testing.T) {
	pub := &fakePublisher{}
	srv := newTestServer(&fakeEngine{}, &fakeRepo{betID: "bet-7"}, pub)

	body := bytes.NewBufferString(`{"description":"poker night","stake_cents":2500,"recipient_ids":["bob","carol"]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/bets", body)
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if len(pub.published) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.published))
	}
	ev := pub.published[0]
	if ev.Action != events.ActionInvited || ev.BetID != "bet-7" {
		t.Errorf("event = %+v", ev)
	}
	if len(ev.AffectedUserIDs) != 3 {
		t.Errorf("affected = %v, want creator plus both recipients", ev.AffectedUserIDs)
	}
}
