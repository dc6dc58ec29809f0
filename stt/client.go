package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"vox.town/transcript"
)

const DefaultBaseURL = "http://localhost:8001"

// Client talks to the transcription backend: POST /transcribe with a
// multipart audio upload, and POST /generate-pdf for the PDF rendition of a
// transcript.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *log.Logger

	// ServedOverTLS marks that the user-facing page came over HTTPS. A
	// plain-HTTP non-localhost backend is unreachable from such a page,
	// which is the single most common deployment pitfall, so the failure
	// message names it outright.
	ServedOverTLS bool
}

func NewClient(baseURL string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
		Logger:     logger,
	}
}

type segmentsResponse struct {
	Segments *[]transcript.Segment `json:"segments"`
}

// Transcribe uploads one source and returns the backend's timed segments.
// There is no retry: a failed submission stays failed until the user
// triggers it again.
func (c *Client) Transcribe(
	ctx context.Context,
	src Source,
) ([]transcript.Segment, error) {
	if err := ValidateSource(src); err != nil {
		return nil, err
	}

	job := uuid.NewString()
	c.Logger.Info("uploading", "job", job, "file", src.Name, "bytes", len(src.Data))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", src.Name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(src.Data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.BaseURL+"/transcribe",
		body,
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, c.unreachable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf(
			"%w: status %d: %s",
			ErrBackendRejected,
			resp.StatusCode,
			strings.TrimSpace(string(detail)),
		)
	}

	var parsed segmentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if parsed.Segments == nil {
		return nil, fmt.Errorf("%w: missing segments", ErrMalformedResponse)
	}

	c.Logger.Info("transcribed", "job", job, "segments", len(*parsed.Segments))
	return *parsed.Segments, nil
}

// GeneratePDF asks the backend to render the given text and returns the PDF
// bytes verbatim.
func (c *Client) GeneratePDF(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.BaseURL+"/generate-pdf",
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, c.unreachable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf(
			"%w: status %d",
			ErrBackendRejected,
			resp.StatusCode,
		)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) unreachable(err error) error {
	if c.ServedOverTLS && c.insecureRemoteBackend() {
		return fmt.Errorf(
			"%w: the page is served over HTTPS but the backend at %s is plain HTTP; browsers block that mix, so use a localhost or HTTPS backend (%v)",
			ErrNetworkUnreachable,
			c.BaseURL,
			err,
		)
	}
	return fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
}

func (c *Client) insecureRemoteBackend() bool {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return u.Scheme == "http" && host != "localhost" && host != "127.0.0.1"
}
