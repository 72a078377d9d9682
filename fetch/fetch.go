// Package fetch retrieves book resources directly from their source, bypassing
// any local storage. Supported schemes are http, https and file.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
)

// ErrUnsupportedScheme is returned for addresses fetch does not know how to
// retrieve.
var ErrUnsupportedScheme = errors.New("unsupported address scheme")

// StatusError reports unsuccessful HTTP response.
type StatusError struct {
	Address string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d (%s)", e.Address, e.Code, http.StatusText(e.Code))
}

// Client fetches resources by absolute address.
type Client struct {
	http *http.Client
	log  *zap.Logger
}

// New returns client using provided http client, nil means default one with
// reasonable timeout.
func New(hc *http.Client, log *zap.Logger) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{http: hc, log: log.Named("fetch")}
}

// Fetch returns content found at address.
func (c *Client) Fetch(ctx context.Context, addr string) ([]byte, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse address %q: %w", addr, err)
	}

	c.log.Debug("Fetching", zap.String("address", addr))

	switch u.Scheme {
	case "file":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(u.Path)
		if err != nil {
			return nil, fmt.Errorf("unable to read %q: %w", addr, err)
		}
		return data, nil
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
		if err != nil {
			return nil, fmt.Errorf("unable to create request for %q: %w", addr, err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("unable to fetch %q: %w", addr, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			// drain body so connection could be reused
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, &StatusError{Address: addr, Code: resp.StatusCode}
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("unable to read response for %q: %w", addr, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%q: %w", u.Scheme, ErrUnsupportedScheme)
	}
}

// Reachable reports whether address can be retrieved right now. It is used to
// detect connectivity changes, so any failure simply means "offline".
func (c *Client) Reachable(ctx context.Context, addr string) bool {
	u, err := url.Parse(addr)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "file":
		_, err := os.Stat(u.Path)
		return err == nil
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, addr, nil)
		if err != nil {
			return false
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode < http.StatusInternalServerError
	default:
		return false
	}
}
