// Package raspap is a client for the RaspAP management REST API.
package raspap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMalformed is returned when a response decodes but lacks the expected fields.
var ErrMalformed = errors.New("malformed response")

// Client reads access point state through the API. Every failure, including a non-2xx status or a body missing the
// expected fields, is returned as an error so callers can fall back to local introspection.
type Client struct {
	baseURL string
	key     string
	iface   string
	client  *http.Client
	log     *zap.Logger
}

// New returns a client for the API at baseURL, authenticating with key. iface is the AP interface whose clients are
// counted.
func New(baseURL, key, iface string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		iface:   iface,
		log:     log,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
	}
}

type systemResponse struct {
	HostapdStatus *int `json:"hostapdStatus"`
}

type apResponse struct {
	Interface string `json:"interface"`
	SSID      string `json:"ssid"`
}

type clientsResponse struct {
	ActiveClientsAmount *int                  `json:"active_clients_amount"`
	ActiveClients       []jsoniter.RawMessage `json:"active_clients"`
}

// APActive reports whether hostapd is running.
func (c *Client) APActive(ctx context.Context) (bool, error) {
	var r systemResponse
	if err := c.get(ctx, "system", &r); err != nil {
		return false, err
	}
	if r.HostapdStatus == nil {
		return false, fmt.Errorf("system: %w: no hostapdStatus", ErrMalformed)
	}
	return *r.HostapdStatus == 1, nil
}

// APSSID returns the broadcast SSID.
func (c *Client) APSSID(ctx context.Context) (string, error) {
	var r apResponse
	if err := c.get(ctx, "ap", &r); err != nil {
		return "", err
	}
	if r.SSID == "" {
		return "", fmt.Errorf("ap: %w: no ssid", ErrMalformed)
	}
	if r.Interface != "" && r.Interface != c.iface {
		c.log.Debug("API reports a different AP interface", zap.String("api", r.Interface), zap.String("configured", c.iface))
	}
	return r.SSID, nil
}

// APClientCount returns the number of associated clients. The client list is authoritative; the reported amount is
// only used when the list is missing.
func (c *Client) APClientCount(ctx context.Context) (int, error) {
	var r clientsResponse
	if err := c.get(ctx, "clients/"+url.PathEscape(c.iface), &r); err != nil {
		return 0, err
	}
	switch {
	case r.ActiveClients != nil:
		if r.ActiveClientsAmount != nil && *r.ActiveClientsAmount != len(r.ActiveClients) {
			c.log.Debug("client amount disagrees with list",
				zap.Int("amount", *r.ActiveClientsAmount), zap.Int("list", len(r.ActiveClients)))
		}
		return len(r.ActiveClients), nil
	case r.ActiveClientsAmount != nil:
		return *r.ActiveClientsAmount, nil
	default:
		return 0, fmt.Errorf("clients: %w: no client data", ErrMalformed)
	}
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	u := c.baseURL + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("access_token", c.key)

	c.log.Debug("API call", zap.String("url", u))
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: unexpected status %s", endpoint, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: %w: %w", endpoint, ErrMalformed, err)
	}
	return nil
}
