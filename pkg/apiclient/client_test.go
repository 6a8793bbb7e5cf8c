package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCallInjectsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok-123")
	if err := c.call(context.Background(), http.MethodGet, "/api/v1/roles", nil, nil, true); err != nil {
		t.Fatalf("call: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
}

func TestCallWithoutTokenFailsFast(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.call(context.Background(), http.MethodGet, "/api/v1/roles", nil, nil, true)
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("request was sent despite missing token")
	}
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json message field", 422, `{"message":"policy_number is required"}`, "policy_number is required"},
		{"json error field", 400, `{"error":"bad request"}`, "bad request"},
		{"plain text", 500, "database unavailable\n", "database unavailable"},
		{"empty body", 503, "", "HTTP 503"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := New(srv.URL)
			c.SetToken("tok")
			err := c.call(context.Background(), http.MethodGet, "/x", nil, nil, true)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestUnauthorizedHookFiresOnce(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var fired int32
	c := New(srv.URL, WithUnauthorizedHandler(func() {
		atomic.AddInt32(&fired, 1)
	}))
	c.SetToken("expired")

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = c.call(context.Background(), http.MethodGet, "/api/v1/intimation/claims", nil, nil, true)
		}()
	}
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("hook fired %d times for concurrent 401s, want exactly 1", got)
	}
	if c.Token() != "" {
		t.Error("token should be cleared after forced logout")
	}
}

func TestUnauthorizedHookRearmsOnNewToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	var fired int32
	c := New(srv.URL, WithUnauthorizedHandler(func() {
		atomic.AddInt32(&fired, 1)
	}))

	c.SetToken("first")
	_ = c.call(context.Background(), http.MethodGet, "/x", nil, nil, true)
	c.SetToken("second")
	_ = c.call(context.Background(), http.MethodGet, "/x", nil, nil, true)

	if got := atomic.LoadInt32(&fired); got != 2 {
		t.Errorf("hook fired %d times across two sessions, want 2", got)
	}
}

func TestAuthEndpointsSkipUnauthorizedHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	var fired int32
	c := New(srv.URL, WithUnauthorizedHandler(func() {
		atomic.AddInt32(&fired, 1)
	}))

	_, err := c.Login(context.Background(), "user@example.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 *APIError", err)
	}
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("a failed login must not trigger the forced-logout hook")
	}
}

func TestLoginOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantOutcome LoginOutcome
		wantToken   string
	}{
		{
			"approved with role",
			`{"token":"tok-ok","user":{"id":"u1","role":"intimation_staff","userStatus":"Approved"}}`,
			LoginOK, "tok-ok",
		},
		{
			"no role yet",
			`{"token":"tok-limited","needs_profile_completion":true,"user":{"id":"u2"}}`,
			LoginNeedsProfile, "tok-limited",
		},
		{
			"awaiting approval",
			`{"pending_approval":true,"user":{"id":"u3","role":"auditor"}}`,
			LoginPending, "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := New(srv.URL)
			res, err := c.Login(context.Background(), "user@example.com", "pw")
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if res.Outcome != tt.wantOutcome {
				t.Errorf("outcome = %v, want %v", res.Outcome, tt.wantOutcome)
			}
			if c.Token() != tt.wantToken {
				t.Errorf("stored token = %q, want %q", c.Token(), tt.wantToken)
			}
		})
	}
}

func TestLoginMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"user":{"id":"u1"}}`) // 200 but no token
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Login(context.Background(), "user@example.com", "pw"); err == nil {
		t.Fatal("a 200 login without a token must be an error")
	}
	if c.Token() != "" {
		t.Error("no token should be stored from a malformed response")
	}
}

func TestClaimFilterQuery(t *testing.T) {
	if got := (ClaimFilter{}).query(); got != "" {
		t.Errorf("empty filter query = %q, want empty", got)
	}
	f := ClaimFilter{Status: "submitted", Search: "CLM-2025", Page: 2, Limit: 25}
	want := "?limit=25&page=2&search=CLM-2025&status=submitted"
	if got := f.query(); got != want {
		t.Errorf("query = %q, want %q", got, want)
	}
}
