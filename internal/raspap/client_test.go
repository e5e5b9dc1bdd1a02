package raspap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ajanata/apstatus"
)

var _ apstatus.ManagementAPI = (*Client)(nil)

func newTestServer(t *testing.T, routes map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("access_token") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "secret", "wlan1", time.Second, zap.NewNop())
}

func TestAPActive(t *testing.T) {
	tests := []struct {
		body    string
		want    bool
		wantErr bool
	}{
		{`{"hostapdStatus": 1}`, true, false},
		{`{"hostapdStatus": 0}`, false, false},
		{`{}`, false, true},
		{`not json`, false, true},
	}
	for _, tt := range tests {
		c := newTestServer(t, map[string]string{"/system": tt.body})
		got, err := c.APActive(context.Background())
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Fatalf("%s: expected %t/%t, got %t/%v", tt.body, tt.want, tt.wantErr, got, err)
		}
	}
}

func TestAPSSID(t *testing.T) {
	c := newTestServer(t, map[string]string{"/ap": `{"interface": "wlan0", "ssid": "raspi-webgui"}`})
	got, err := c.APSSID(context.Background())
	if err != nil || got != "raspi-webgui" {
		t.Fatalf("expected raspi-webgui, got %q/%v", got, err)
	}

	c = newTestServer(t, map[string]string{"/ap": `{"interface": "wlan1"}`})
	if _, err := c.APSSID(context.Background()); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestAPClientCount(t *testing.T) {
	tests := []struct {
		body    string
		want    int
		wantErr bool
	}{
		{`{"active_clients_amount": 5, "active_clients": [{"mac": "a"}, {"mac": "b"}]}`, 2, false},
		{`{"active_clients_amount": 3}`, 3, false},
		{`{"active_clients": []}`, 0, false},
		{`{"other": true}`, 0, true},
	}
	for _, tt := range tests {
		c := newTestServer(t, map[string]string{"/clients/wlan1": tt.body})
		got, err := c.APClientCount(context.Background())
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Fatalf("%s: expected %d/%t, got %d/%v", tt.body, tt.want, tt.wantErr, got, err)
		}
	}
}

func TestNon2xxIsError(t *testing.T) {
	c := newTestServer(t, nil)
	if _, err := c.APActive(context.Background()); err == nil {
		t.Fatal("expected error on 404")
	}

	c = New(c.baseURL, "wrong", "wlan1", time.Second, zap.NewNop())
	if _, err := c.APSSID(context.Background()); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestTimeoutIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()
	c := New(srv.URL, "secret", "wlan1", 50*time.Millisecond, zap.NewNop())
	if _, err := c.APActive(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}
