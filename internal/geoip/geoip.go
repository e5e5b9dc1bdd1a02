// Package geoip resolves the host's external address to a city and country using an ipapi.co compatible HTTP
// endpoint.
package geoip

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/ajanata/apstatus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultURL looks up the caller's own address.
const DefaultURL = "https://ipapi.co/json/"

type Client struct {
	url    string
	client *http.Client
}

func New(lookupURL string, timeout time.Duration) *Client {
	if lookupURL == "" {
		lookupURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		url:    lookupURL,
		client: &http.Client{Timeout: timeout},
	}
}

type response struct {
	City        string `json:"city"`
	CountryName string `json:"country_name"`
	// ipapi.co reports quota and lookup problems with a 200 and these fields.
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Lookup resolves ip, or the caller's own external address when ip is empty.
func (c *Client) Lookup(ctx context.Context, ip string) (apstatus.GeoLocation, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return apstatus.GeoLocation{}, err
	}
	if ip != "" {
		// https://ipapi.co/json/ -> https://ipapi.co/<ip>/json/
		u.Path = "/" + url.PathEscape(ip) + "/" + strings.TrimLeft(u.Path, "/")
	}
	q := u.Query()
	q.Set("fields", "city,country_name")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return apstatus.GeoLocation{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return apstatus.GeoLocation{}, fmt.Errorf("geoip lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return apstatus.GeoLocation{}, fmt.Errorf("geoip lookup: unexpected status %s", resp.Status)
	}

	var r response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&r); err != nil {
		return apstatus.GeoLocation{}, fmt.Errorf("geoip lookup: %w", err)
	}
	if r.Error {
		return apstatus.GeoLocation{}, fmt.Errorf("geoip lookup: %s", r.Reason)
	}
	if r.City == "" && r.CountryName == "" {
		return apstatus.GeoLocation{}, fmt.Errorf("geoip lookup: empty location")
	}
	return apstatus.GeoLocation{City: r.City, Country: r.CountryName}, nil
}
