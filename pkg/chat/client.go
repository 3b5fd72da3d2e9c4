package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rescp17/previewsender/pkg/media"
)

var ErrNoPeer = errors.New("no chat peer configured")

// serviceIDInjector is a custom http.RoundTripper that injects a service ID into each request.
type serviceIDInjector struct {
	serviceID string
	next      http.RoundTripper
}

func (t *serviceIDInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set(serviceIDHeader, t.serviceID)
	return t.next.RoundTrip(req)
}

// Client delivers messages to a chat peer over HTTP.
type Client struct {
	HttpClient *http.Client
	peerURL    string
	now        func() time.Time
}

// NewClient creates a client for peerURL that tags every request with serviceID.
func NewClient(serviceID, peerURL string) *Client {
	return &Client{
		HttpClient: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &serviceIDInjector{
				serviceID: serviceID,
				next:      http.DefaultTransport,
			},
		},
		peerURL: strings.TrimRight(peerURL, "/"),
		now:     time.Now,
	}
}

func (c *Client) PeerURL() string { return c.peerURL }

// SendText posts a standalone text message.
func (c *Client) SendText(ctx context.Context, text string) error {
	msg := TextMessage{ID: uuid.NewString(), Text: text, SentAt: c.now()}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal text message: %w", err)
	}
	return c.post(ctx, textPath, "application/json", bytes.NewReader(body))
}

// SendMedia uploads items with an optional caption. grouped asks the peer to
// show them as one album.
func (c *Client) SendMedia(ctx context.Context, items []media.Media, caption string, grouped bool) error {
	manifest := MediaManifest{
		ID:      uuid.NewString(),
		Caption: caption,
		Grouped: grouped,
		Items:   make([]MediaItem, len(items)),
		SentAt:  c.now(),
	}
	for i, m := range items {
		manifest.Items[i] = itemOf(m)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, manifest, items))
	}()

	slog.Info("Uploading media", "id", manifest.ID, "count", len(items), "grouped", grouped)
	err := c.post(ctx, mediaPath, mw.FormDataContentType(), pr)
	// Unblock the writer if the request ended before reading the whole body.
	pr.CloseWithError(io.ErrClosedPipe)
	return err
}

func writeUpload(mw *multipart.Writer, manifest MediaManifest, items []media.Media) error {
	data, err := json.Marshal(manifest)
	if err != nil {
		return err
	}
	if err := mw.WriteField(manifestField, string(data)); err != nil {
		return err
	}
	for i, m := range items {
		if err := writeFilePart(mw, filePrefix+strconv.Itoa(i), m); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writeFilePart(mw *multipart.Writer, field string, m media.Media) error {
	f, err := os.Open(m.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", m.Name, err)
	}
	defer f.Close()
	part, err := mw.CreateFormFile(field, m.Name)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) error {
	if c.peerURL == "" {
		return ErrNoPeer
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.peerURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s responded with non-OK status: %s", path, resp.Status)
	}
	return nil
}
