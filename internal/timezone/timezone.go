// Package timezone resolves a device's configured IANA timezone.
package timezone

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnknownTimezone is returned for names missing from the tz database.
var ErrUnknownTimezone = errors.New("unknown timezone")

// Device identifies the device to look up and the credentials the platform
// issued for this request.
type Device struct {
	ID          string
	APIEndpoint string
	AccessToken string
}

// Resolver looks up the timezone configured on a device.
type Resolver interface {
	Resolve(ctx context.Context, device Device) (string, error)
}

// Static resolves every device to the same zone.
type Static struct {
	Zone string
}

// Resolve returns the configured zone.
func (s Static) Resolve(context.Context, Device) (string, error) {
	if err := Validate(s.Zone); err != nil {
		return "", err
	}
	return s.Zone, nil
}

// HTTPResolver reads the device timezone from the platform settings API:
// GET {endpoint}/v2/devices/{deviceID}/settings/System.timeZone
//
// The endpoint and bearer token come from the request envelope. BaseURL and
// Token override them when set. Requests without any endpoint resolve to
// Fallback.
type HTTPResolver struct {
	BaseURL  string
	Token    string
	Fallback string
	Client   *http.Client
}

// NewHTTPResolver creates a settings API resolver. baseURL and token may be
// empty to use the per-request values.
func NewHTTPResolver(baseURL, token, fallback string, timeout time.Duration) *HTTPResolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPResolver{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Token:    token,
		Fallback: fallback,
		Client:   &http.Client{Timeout: timeout},
	}
}

// Resolve fetches and validates the device timezone.
func (r *HTTPResolver) Resolve(ctx context.Context, device Device) (string, error) {
	base := r.BaseURL
	if base == "" {
		base = strings.TrimRight(device.APIEndpoint, "/")
	}
	if base == "" {
		return Static{Zone: r.Fallback}.Resolve(ctx, device)
	}
	if device.ID == "" {
		return "", fmt.Errorf("resolve timezone: missing device id")
	}
	token := r.Token
	if token == "" {
		token = device.AccessToken
	}
	endpoint := fmt.Sprintf("%s/v2/devices/%s/settings/System.timeZone", base, url.PathEscape(device.ID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create timezone request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send timezone request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("read timezone response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timezone API error: %s - %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var zone string
	if err := json.Unmarshal(body, &zone); err != nil {
		return "", fmt.Errorf("decode timezone response: %w", err)
	}
	if err := Validate(zone); err != nil {
		return "", err
	}
	return zone, nil
}

// Validate checks that name is a loadable IANA zone.
func Validate(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownTimezone)
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownTimezone, name)
	}
	return nil
}

// Now returns the current time in zone, falling back to UTC when the zone is
// empty or unknown.
func Now(zone string, now time.Time) time.Time {
	if zone == "" {
		return now.UTC()
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return now.UTC()
	}
	return now.In(loc)
}
