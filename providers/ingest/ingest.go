// Package ingest turns a Typeform webhook submission into a stored input
// document. It locates the uploaded file among the submission answers,
// downloads it with bounded retries, normalises the content to plain text
// (HTML uploads are converted to Markdown), and writes it to the input
// folder of the blob store.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/edlowe/flatsheet/providers/storage"
)

const (
	// InputFolder is where ingested documents land in the store.
	InputFolder = "JSON_Input_File"

	// DefaultMaxRetries bounds the download attempts after the first failure.
	DefaultMaxRetries = 2
	// DefaultRetryDelay is the wait between download attempts.
	DefaultRetryDelay = 2 * time.Second
	// maxDownloadSize caps an uploaded document (10MB).
	maxDownloadSize = 10 * 1024 * 1024

	typeformFileHost = "api.typeform.com/responses/files"
	inputDateLayout  = "02-01-2006"
)

// ErrMissingFileField reports that the submission carries no file upload for
// the configured field.
var ErrMissingFileField = errors.New("submission has no file upload for the configured field")

// Config configures an Ingestor.
type Config struct {
	// FileFieldID is the Typeform field id holding the uploaded document.
	FileFieldID string
	// TypeformToken authenticates downloads from the Typeform file API.
	// Only attached for that host.
	TypeformToken string
	// MaxRetries overrides DefaultMaxRetries when positive.
	MaxRetries int
	// RetryDelay overrides DefaultRetryDelay when positive.
	RetryDelay time.Duration
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// Ingestor processes webhook submissions into stored documents.
type Ingestor struct {
	store      storage.Store
	fieldID    string
	token      string
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
	now        func() time.Time
}

// New returns an Ingestor writing to store.
func New(store storage.Store, cfg Config) (*Ingestor, error) {
	if cfg.FileFieldID == "" {
		return nil, fmt.Errorf("ingest: file field id is required")
	}

	ing := &Ingestor{
		store:      store,
		fieldID:    cfg.FileFieldID,
		token:      cfg.TypeformToken,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		httpClient: cfg.HTTPClient,
		now:        cfg.Now,
	}
	if ing.maxRetries <= 0 {
		ing.maxRetries = DefaultMaxRetries
	}
	if ing.retryDelay <= 0 {
		ing.retryDelay = DefaultRetryDelay
	}
	if ing.httpClient == nil {
		ing.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if ing.now == nil {
		ing.now = time.Now
	}
	return ing, nil
}

type webhookPayload struct {
	FormResponse struct {
		SubmittedAt string          `json:"submitted_at"`
		Answers     []webhookAnswer `json:"answers"`
	} `json:"form_response"`
}

type webhookAnswer struct {
	Type    string `json:"type"`
	FileURL string `json:"file_url"`
	Field   struct {
		ID string `json:"id"`
	} `json:"field"`
}

// Process handles one webhook submission body and returns the stored path.
func (ing *Ingestor) Process(ctx context.Context, body []byte) (string, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode webhook payload: %w", err)
	}

	fileURL := ""
	for _, a := range payload.FormResponse.Answers {
		if a.Field.ID == ing.fieldID && a.FileURL != "" {
			fileURL = a.FileURL
			break
		}
	}
	if fileURL == "" {
		return "", ErrMissingFileField
	}

	data, err := ing.download(ctx, fileURL)
	if err != nil {
		return "", fmt.Errorf("download submission file: %w", err)
	}

	text, err := normalizeText(data)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("%s/JSON_input_file_%s.txt", InputFolder, ing.now().UTC().Format(inputDateLayout))
	if err := ing.store.Upload(ctx, path, []byte(text), "text/plain"); err != nil {
		return "", fmt.Errorf("store submission file: %w", err)
	}
	return path, nil
}

// download fetches url, retrying transient failures a bounded number of
// times with a fixed delay. Context cancellation is honoured between
// attempts.
func (ing *Ingestor) download(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= ing.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(ing.retryDelay):
			}
		}

		data, err := ing.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %w", ing.maxRetries+1, lastErr)
}

func (ing *Ingestor) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if ing.token != "" && strings.Contains(url, typeformFileHost) {
		req.Header.Set("Authorization", "Bearer "+ing.token)
	}

	resp, err := ing.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(preview))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("file exceeds %d bytes", maxDownloadSize)
	}
	return data, nil
}

// normalizeText decodes the downloaded bytes to the plain text the converter
// consumes. HTML uploads are converted to Markdown; anything else must be
// valid UTF-8.
func normalizeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("uploaded file is not valid UTF-8")
	}
	text := string(data)

	if looksLikeHTML(text) {
		md, err := htmltomarkdown.ConvertString(text)
		if err != nil {
			return "", fmt.Errorf("convert HTML upload to markdown: %w", err)
		}
		return md, nil
	}
	return text, nil
}

func looksLikeHTML(text string) bool {
	head := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
