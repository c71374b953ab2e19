package repo_test

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	betrepo "github.com/radieske/p2p-wager-backend/internal/bet-service/repo"
	"github.com/radieske/p2p-wager-backend/internal/notification/repo"
	"github.com/radieske/p2p-wager-backend/migrations"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping Postgres integration test")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}
	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *sql.DB, displayName string) (id, username string) {
	t.Helper()
	id = uuid.NewString()
	username = "u_" + strings.ReplaceAll(id, "-", "")[:12]
	var dn sql.NullString
	if displayName != "" {
		dn = sql.NullString{String: displayName, Valid: true}
	}
	if _, err := db.Exec(`INSERT INTO users (id, username, display_name, email) VALUES ($1, $2, $3, $4)`,
		id, username, dn, username+"@example.com"); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id, username
}

func TestFeedShowsEachPartyExactlyOnce(t *testing.T) {
	db := setupDB(t)
	w := betrepo.NewPostgres(db)
	r := &repo.ReadRepo{DB: db}

	alice, _ := createUser(t, db, "Alice Silva")
	bob, bobUsername := createUser(t, db, "") // sem display_name: cai pro username

	betID, err := w.CreateBet(context.Background(), alice,
		&betrepo.Bet{Description: "marathon challenge", StakeCents: 5000, CreatorID: alice}, []string{bob})
	if err != nil {
		t.Fatalf("create bet: %v", err)
	}

	// feed do criador: uma entrada por convite, nome da outra parte
	aliceFeed, err := r.ListForUser(context.Background(), alice)
	if err != nil {
		t.Fatalf("alice feed: %v", err)
	}
	if len(aliceFeed) != 1 {
		t.Fatalf("alice feed has %d entries, want 1", len(aliceFeed))
	}
	got := aliceFeed[0]
	if got.Type != "creator" {
		t.Errorf("alice entry type = %q, want creator", got.Type)
	}
	if got.DisplayName != bobUsername {
		t.Errorf("alice sees display_name %q, want bob's username %q", got.DisplayName, bobUsername)
	}
	if got.BetID != betID || got.RecipientID != bob || got.BetCreatorID != alice {
		t.Errorf("unexpected entry: %+v", got)
	}
	if got.BetDescription != "marathon challenge" || got.BetStakeCents != 5000 {
		t.Errorf("bet fields not denormalized: %+v", got)
	}

	// feed do convidado: mesma linha, papel e nome invertidos
	bobFeed, err := r.ListForUser(context.Background(), bob)
	if err != nil {
		t.Fatalf("bob feed: %v", err)
	}
	if len(bobFeed) != 1 {
		t.Fatalf("bob feed has %d entries, want 1", len(bobFeed))
	}
	if bobFeed[0].Type != "recipient" {
		t.Errorf("bob entry type = %q, want recipient", bobFeed[0].Type)
	}
	if bobFeed[0].DisplayName != "Alice Silva" {
		t.Errorf("bob sees display_name %q, want Alice Silva", bobFeed[0].DisplayName)
	}

	// quem não participa não vê nada
	eve, _ := createUser(t, db, "Eve")
	eveFeed, err := r.ListForUser(context.Background(), eve)
	if err != nil {
		t.Fatalf("eve feed: %v", err)
	}
	if len(eveFeed) != 0 {
		t.Errorf("eve feed has %d entries, want 0", len(eveFeed))
	}
}

func TestFeedIsNewestFirst(t *testing.T) {
	db := setupDB(t)
	w := betrepo.NewPostgres(db)
	r := &repo.ReadRepo{DB: db}

	alice, _ := createUser(t, db, "Alice")
	bob, _ := createUser(t, db, "Bob")
	carol, _ := createUser(t, db, "Carol")

	first, err := w.CreateBet(context.Background(), alice,
		&betrepo.Bet{Description: "older", StakeCents: 100, CreatorID: alice}, []string{bob})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	second, err := w.CreateBet(context.Background(), alice,
		&betrepo.Bet{Description: "newer", StakeCents: 200, CreatorID: alice}, []string{carol})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	feed, err := r.ListForUser(context.Background(), alice)
	if err != nil {
		t.Fatalf("alice feed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("alice feed has %d entries, want 2", len(feed))
	}
	if feed[0].BetID != second || feed[1].BetID != first {
		t.Errorf("feed order = [%s %s], want newest first", feed[0].BetID, feed[1].BetID)
	}
	if !feed[0].CreatedAt.After(feed[1].CreatedAt) {
		t.Errorf("created_at not descending: %v then %v", feed[0].CreatedAt, feed[1].CreatedAt)
	}
}
