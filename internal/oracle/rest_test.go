package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func hermesHandler(t *testing.T, publishTime int64) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/updates/price/latest" {
			http.NotFound(w, r)
			return
		}
		ids := r.URL.Query()["ids[]"]
		if len(ids) == 0 {
			http.Error(w, "missing ids", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"parsed":[{"id":"feedbeef","price":{"price":"5100000000","conf":"10000000","expo":-8,"publish_time":%d}}]}`, publishTime)
	}
}

func TestRESTClientLatestPrice(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(hermesHandler(t, now.Unix()))
	defer srv.Close()

	client := NewRESTClient(srv.Client(), srv.URL)
	p, err := client.LatestPrice(context.Background(), "0xFEEDBEEF")
	if err != nil {
		t.Fatalf("LatestPrice: %v", err)
	}
	if p.Price != 5_100_000_000 {
		t.Fatalf("price = %d, want 5100000000", p.Price)
	}
	if p.Confidence != 10_000_000 {
		t.Fatalf("confidence = %d, want 10000000", p.Confidence)
	}
	if !p.PublishedAt.Equal(now) {
		t.Fatalf("published at = %v, want %v", p.PublishedAt, now)
	}
}

func TestRESTClientUnknownFeed(t *testing.T) {
	srv := httptest.NewServer(hermesHandler(t, time.Now().Unix()))
	defer srv.Close()

	client := NewRESTClient(srv.Client(), srv.URL)
	_, err := client.LatestPrice(context.Background(), "cafecafe")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestRESTClientStaleness(t *testing.T) {
	old := time.Now().Add(-10 * time.Minute)
	srv := httptest.NewServer(hermesHandler(t, old.Unix()))
	defer srv.Close()

	client := NewRESTClient(srv.Client(), srv.URL)
	_, err := client.GetPrice(context.Background(), "feedbeef", time.Now(), 5*time.Minute)
	if !errors.Is(err, ErrStalePrice) {
		t.Fatalf("err = %v, want ErrStalePrice", err)
	}

	// Zero staleness disables the check.
	if _, err := client.GetPrice(context.Background(), "feedbeef", time.Now(), 0); err != nil {
		t.Fatalf("GetPrice without staleness bound: %v", err)
	}
}

func TestRESTClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewRESTClient(srv.Client(), srv.URL)
	_, err := client.LatestPrice(context.Background(), "feedbeef")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", apiErr.Status)
	}
}

func TestNormalizeExponents(t *testing.T) {
	cases := []struct {
		name     string
		price    string
		conf     string
		expo     int32
		want     int64
		wantConf uint64
	}{
		{"native scale", "5100000000", "200", -8, 5_100_000_000, 200},
		{"coarser scale", "51000", "2", -3, 5_100_000_000, 200_000},
		{"finer scale", "510000000000", "20000", -10, 5_100_000_000, 200},
		{"positive exponent", "51", "1", 0, 5_100_000_000, 100_000_000},
	}
	for _, tc := range cases {
		u := feedUpdate{
			ID: "f",
			Price: feedPrice{
				Price:       tc.price,
				Conf:        tc.conf,
				Expo:        tc.expo,
				PublishTime: 1700000000,
			},
		}
		p, err := u.normalize()
		if err != nil {
			t.Fatalf("%s: normalize: %v", tc.name, err)
		}
		if p.Price != tc.want {
			t.Fatalf("%s: price = %d, want %d", tc.name, p.Price, tc.want)
		}
		if p.Confidence != tc.wantConf {
			t.Fatalf("%s: conf = %d, want %d", tc.name, p.Confidence, tc.wantConf)
		}
	}
}

func TestNormalizeOverflow(t *testing.T) {
	u := feedUpdate{
		ID: "f",
		Price: feedPrice{
			Price:       "9223372036854775807",
			Conf:        "1",
			Expo:        0,
			PublishTime: 1700000000,
		},
	}
	if _, err := u.normalize(); err == nil {
		t.Fatal("expected overflow error scaling MaxInt64 by 10^8")
	}
}
