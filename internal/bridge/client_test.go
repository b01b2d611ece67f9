package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type bridgeStub struct {
	t          *testing.T
	token      string
	logins     int32
	delegates  []DelegateRequest
	commits    []CommitRequest
	audits     []AuditRequest
	tokenTTL   time.Duration
	rejectAuth bool
}

func (s *bridgeStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/login":
			atomic.AddInt32(&s.logins, 1)
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["api_key"] == "" {
				http.Error(w, "missing api key", http.StatusUnauthorized)
				return
			}
			ttl := s.tokenTTL
			if ttl == 0 {
				ttl = time.Hour
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"token":      s.token,
				"expires_at": time.Now().Add(ttl).UTC().Format(time.RFC3339),
			})
		case "/v1/delegations":
			if !s.authorized(r) {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			var req DelegateRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			s.delegates = append(s.delegates, req)
			_ = json.NewEncoder(w).Encode(map[string]string{"ref": "del-1"})
		case "/v1/commits":
			if !s.authorized(r) {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			var req CommitRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			s.commits = append(s.commits, req)
			_ = json.NewEncoder(w).Encode(map[string]string{"ref": "com-1"})
		case "/v1/audit":
			var req AuditRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			s.audits = append(s.audits, req)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}
}

func (s *bridgeStub) authorized(r *http.Request) bool {
	if s.rejectAuth {
		return false
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") == s.token
}

func TestClientEnabled(t *testing.T) {
	if (&Client{}).Enabled() {
		t.Fatal("client with no base url must not be enabled")
	}
	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatal("nil client must not be enabled")
	}
	if !(&Client{BaseURL: "http://bridge"}).Enabled() {
		t.Fatal("client with a base url must be enabled")
	}
}

func TestClientLoginAndDelegate(t *testing.T) {
	stub := &bridgeStub{t: t, token: "tok-1"}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, APIKey: "key", HTTP: srv.Client()}
	ref, err := c.Delegate(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("Delegate: %v", err)
	}
	if ref != "del-1" {
		t.Fatalf("ref = %q, want del-1", ref)
	}
	if got := atomic.LoadInt32(&stub.logins); got != 1 {
		t.Fatalf("logins = %d, want 1 (token login before first call)", got)
	}
	if len(stub.delegates) != 1 || stub.delegates[0].MarketID != "m-1" {
		t.Fatalf("delegates = %+v", stub.delegates)
	}

	// A second call reuses the token.
	if _, err := c.Delegate(context.Background(), "m-2"); err != nil {
		t.Fatalf("second Delegate: %v", err)
	}
	if got := atomic.LoadInt32(&stub.logins); got != 1 {
		t.Fatalf("logins = %d after second call, want 1", got)
	}
}

func TestClientReloginOnExpiry(t *testing.T) {
	stub := &bridgeStub{t: t, token: "tok-1", tokenTTL: time.Minute}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, APIKey: "key", HTTP: srv.Client()}
	if _, err := c.Delegate(context.Background(), "m-1"); err != nil {
		t.Fatalf("Delegate: %v", err)
	}
	// The one-minute token is within the renewal window, so the next call
	// logs in again.
	if _, err := c.Delegate(context.Background(), "m-2"); err != nil {
		t.Fatalf("second Delegate: %v", err)
	}
	if got := atomic.LoadInt32(&stub.logins); got != 2 {
		t.Fatalf("logins = %d, want 2", got)
	}
}

func TestClientCommitAndRelease(t *testing.T) {
	stub := &bridgeStub{t: t, token: "tok-1"}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, APIKey: "key", HTTP: srv.Client()}
	state := json.RawMessage(`{"yes_reserve":10000,"no_reserve":10000}`)

	if _, err := c.Commit(context.Background(), "m-1", state); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := c.CommitAndRelease(context.Background(), "m-1", state); err != nil {
		t.Fatalf("CommitAndRelease: %v", err)
	}
	if len(stub.commits) != 2 {
		t.Fatalf("commits = %d, want 2", len(stub.commits))
	}
	if stub.commits[0].Release {
		t.Fatal("plain commit must not set release")
	}
	if !stub.commits[1].Release {
		t.Fatal("commit-and-release must set release")
	}
	if string(stub.commits[1].State) != string(state) {
		t.Fatalf("state = %s", stub.commits[1].State)
	}
}

func TestClientErrorBubbles(t *testing.T) {
	stub := &bridgeStub{t: t, token: "tok-1", rejectAuth: true}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, APIKey: "key", HTTP: srv.Client()}
	if _, err := c.Delegate(context.Background(), "m-1"); err == nil {
		t.Fatal("expected error from rejected call")
	}
}

func TestClientAudit(t *testing.T) {
	stub := &bridgeStub{t: t, token: "tok-1"}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, APIKey: "key", HTTP: srv.Client()}
	err := c.Audit(context.Background(), AuditRequest{
		Agent:  "magic-market",
		Action: "engine_http_write",
		Level:  "info",
	})
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(stub.audits) != 1 || stub.audits[0].Action != "engine_http_write" {
		t.Fatalf("audits = %+v", stub.audits)
	}
}
