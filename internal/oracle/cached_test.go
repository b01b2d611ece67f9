package oracle

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/datmedevil17/magic-market/internal/models"
)

type memOracleRepo struct {
	history []models.OraclePrice
	latest  map[string]models.OracleLatest
}

func newMemOracleRepo() *memOracleRepo {
	return &memOracleRepo{latest: map[string]models.OracleLatest{}}
}

func (r *memOracleRepo) InsertOraclePrice(ctx context.Context, item *models.OraclePrice) error {
	r.history = append(r.history, *item)
	return nil
}

func (r *memOracleRepo) UpsertOracleLatest(ctx context.Context, item *models.OracleLatest) error {
	r.latest[item.FeedID] = *item
	return nil
}

func (r *memOracleRepo) GetOracleLatest(ctx context.Context, feedID string) (*models.OracleLatest, error) {
	row, ok := r.latest[feedID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func TestCachedSourceFreshHit(t *testing.T) {
	repo := newMemOracleRepo()
	now := time.Now().UTC()
	repo.latest["feed"] = models.OracleLatest{
		FeedID:      "feed",
		Price:       51_000_000,
		Confidence:  100_000,
		PublishedAt: now.Add(-time.Minute),
	}

	src := &CachedSource{Repo: repo}
	p, err := src.GetPrice(context.Background(), "feed", now, 5*time.Minute)
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if p.Price != 51_000_000 || p.Confidence != 100_000 {
		t.Fatalf("got %+v", p)
	}
}

func TestCachedSourceMissWithoutClient(t *testing.T) {
	src := &CachedSource{Repo: newMemOracleRepo()}
	_, err := src.GetPrice(context.Background(), "feed", time.Now(), time.Minute)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestCachedSourceStaleWithoutClient(t *testing.T) {
	repo := newMemOracleRepo()
	now := time.Now().UTC()
	repo.latest["feed"] = models.OracleLatest{
		FeedID:      "feed",
		Price:       51_000_000,
		PublishedAt: now.Add(-time.Hour),
	}

	src := &CachedSource{Repo: repo}
	_, err := src.GetPrice(context.Background(), "feed", now, 5*time.Minute)
	if !errors.Is(err, ErrStalePrice) {
		t.Fatalf("err = %v, want ErrStalePrice", err)
	}
}

func TestCachedSourceRESTFallbackWritesBack(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(hermesHandler(t, now.Unix()))
	defer srv.Close()

	repo := newMemOracleRepo()
	src := &CachedSource{Repo: repo, Client: NewRESTClient(srv.Client(), srv.URL)}

	p, err := src.GetPrice(context.Background(), "feedbeef", now, 5*time.Minute)
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if p.Price != 5_100_000_000 {
		t.Fatalf("price = %d, want 5100000000", p.Price)
	}
	if len(repo.history) != 1 {
		t.Fatalf("history rows = %d, want 1", len(repo.history))
	}
	row, ok := repo.latest["feedbeef"]
	if !ok {
		t.Fatal("latest row missing after fallback")
	}
	if row.Source != models.OracleSourceREST {
		t.Fatalf("source = %q, want %q", row.Source, models.OracleSourceREST)
	}

	// Second lookup is served from the cache; kill the server to prove it.
	srv.Close()
	if _, err := src.GetPrice(context.Background(), "feedbeef", now, 5*time.Minute); err != nil {
		t.Fatalf("cached lookup after fallback: %v", err)
	}
}

func TestCachedSourceRecord(t *testing.T) {
	repo := newMemOracleRepo()
	src := &CachedSource{Repo: repo}
	p := &Price{FeedID: "feed", Price: 42, Confidence: 7, PublishedAt: time.Now().UTC()}

	if err := src.Record(context.Background(), p, models.OracleSourceStream, []byte(`{"raw":true}`)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(repo.history) != 1 {
		t.Fatalf("history rows = %d, want 1", len(repo.history))
	}
	if len(repo.history[0].Payload) == 0 {
		t.Fatal("payload not persisted on history row")
	}
	if repo.latest["feed"].Price != 42 {
		t.Fatalf("latest price = %d, want 42", repo.latest["feed"].Price)
	}
}
