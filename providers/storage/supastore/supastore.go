// Package supastore implements storage.Store against the Supabase Storage
// REST API. One Client serves one bucket; object paths are bucket-relative.
package supastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/edlowe/flatsheet/providers/storage"
)

const (
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second
	// MaxBodySize caps a downloaded blob (20MB).
	MaxBodySize = 20 * 1024 * 1024
	// listPageSize is the page size used for folder listings.
	listPageSize = 100

	dialTimeout           = 10 * time.Second
	tlsHandshakeTimeout   = 10 * time.Second
	responseHeaderTimeout = 10 * time.Second
	idleConnTimeout       = 90 * time.Second
)

// Config configures a Client.
type Config struct {
	// URL is the project base URL, e.g. https://xyz.supabase.co.
	URL string
	// ServiceKey is the service-role key used for both Authorization and
	// apikey headers.
	ServiceKey string
	// Bucket is the storage bucket all paths are relative to.
	Bucket string
	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration
}

// Client talks to one Supabase Storage bucket.
type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

var _ storage.Store = (*Client)(nil)

// New validates cfg and returns a ready Client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supastore: URL is required")
	}
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("supastore: service key is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("supastore: bucket is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.Bucket,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: dialTimeout}).DialContext,
				TLSHandshakeTimeout:   tlsHandshakeTimeout,
				ResponseHeaderTimeout: responseHeaderTimeout,
				IdleConnTimeout:       idleConnTimeout,
			},
		},
	}, nil
}

// Download fetches the object at path.
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("supastore download: %w", err)
	}
	c.auth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supastore download %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("supastore download %s: %w", path, storage.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("download", path, resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("supastore download %s: read body: %w", path, err)
	}
	if len(data) > MaxBodySize {
		return nil, fmt.Errorf("supastore download %s: blob exceeds %d bytes", path, MaxBodySize)
	}
	return data, nil
}

// Upload writes data at path, upserting over any existing object.
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("supastore upload: %w", err)
	}
	c.auth(req)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supastore upload %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("upload", path, resp)
	}
	return nil
}

type listRequest struct {
	Prefix string     `json:"prefix"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
	SortBy listSortBy `json:"sortBy"`
}

type listSortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

type listEntry struct {
	Name     string `json:"name"`
	Metadata *struct {
		Size int64 `json:"size"`
	} `json:"metadata"`
}

// List returns the objects under prefix, paging until the backend returns a
// short page.
func (c *Client) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	url := fmt.Sprintf("%s/storage/v1/object/list/%s", c.baseURL, c.bucket)

	var out []storage.Object
	for offset := 0; ; offset += listPageSize {
		body, err := json.Marshal(listRequest{
			Prefix: prefix,
			Limit:  listPageSize,
			Offset: offset,
			SortBy: listSortBy{Column: "name", Order: "asc"},
		})
		if err != nil {
			return nil, fmt.Errorf("supastore list: encode request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("supastore list: %w", err)
		}
		c.auth(req)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("supastore list %s: %w", prefix, err)
		}
		if resp.StatusCode != http.StatusOK {
			err := statusError("list", prefix, resp)
			resp.Body.Close()
			return nil, err
		}

		var entries []listEntry
		err = json.NewDecoder(resp.Body).Decode(&entries)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("supastore list %s: decode response: %w", prefix, err)
		}

		for _, e := range entries {
			if e.Name == "" {
				continue
			}
			obj := storage.Object{Name: e.Name}
			if e.Metadata != nil {
				obj.Size = e.Metadata.Size
			}
			out = append(out, obj)
		}
		if len(entries) < listPageSize {
			return out, nil
		}
	}
}

type removeRequest struct {
	Prefixes []string `json:"prefixes"`
}

// Remove deletes the given bucket-relative paths in one batch.
func (c *Client) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	body, err := json.Marshal(removeRequest{Prefixes: paths})
	if err != nil {
		return fmt.Errorf("supastore remove: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s", c.baseURL, c.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("supastore remove: %w", err)
	}
	c.auth(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supastore remove: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("remove", strings.Join(paths, ","), resp)
	}
	return nil
}

func (c *Client) auth(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
}

func statusError(op, path string, resp *http.Response) error {
	preview, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
	return fmt.Errorf("supastore %s %s: HTTP %d: %s", op, path, resp.StatusCode, string(preview))
}
