package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"datanexus/internal/config"
)

// gatewayStore talks to an external pinning gateway over HTTP: a multipart
// POST uploads a blob, a GET lists stored blobs. The gateway assigns CIDs.
type gatewayStore struct {
	client    *http.Client
	endpoint  string
	maxUpload int64
}

// NewGateway creates a content-store client for an HTTP pinning gateway.
func NewGateway(cfg config.StoreGatewayConfig) (Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("store gateway endpoint is required")
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &gatewayStore{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		endpoint:  cfg.Endpoint,
		maxUpload: cfg.MaxUploadBytes,
	}, nil
}

// uploadResponse mirrors the gateway's upload reply. fileSize arrives as a
// number or a numeric string depending on the gateway version.
type uploadResponse struct {
	CID      string      `json:"cid"`
	FileName string      `json:"fileName"`
	FileSize json.Number `json:"fileSize"`
}

// listResponse mirrors the gateway's listing reply.
type listResponse struct {
	FileList   []StoredObject `json:"fileList"`
	TotalFiles int            `json:"totalFiles"`
}

// Upload streams the blob to the gateway as multipart/form-data (field name:
// file) and returns the assigned CID. The request body is piped, never
// buffered in full.
func (g *gatewayStore) Upload(ctx context.Context, r io.Reader, fileName string, size int64) (UploadResult, error) {
	if r == nil {
		return UploadResult{}, &UploadError{Reason: ReasonRejected, Err: fmt.Errorf("no payload")}
	}
	if g.maxUpload > 0 && size > g.maxUpload {
		return UploadResult{}, &UploadError{
			Reason: ReasonTooLarge,
			Err:    fmt.Errorf("payload is %d bytes, limit is %d", size, g.maxUpload),
		}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", fileName)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, pr)
	if err != nil {
		return UploadResult{}, &UploadError{Reason: ReasonInternal, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return UploadResult{}, &UploadError{Reason: ReasonUnreachable, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return UploadResult{}, &UploadError{Reason: ReasonTooLarge, Err: fmt.Errorf("gateway refused payload: %s", resp.Status)}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return UploadResult{}, &UploadError{Reason: ReasonRejected, Err: fmt.Errorf("gateway rejected upload: %s", resp.Status)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return UploadResult{}, &UploadError{Reason: ReasonInternal, Err: fmt.Errorf("unexpected gateway status: %s", resp.Status)}
	}

	var body uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return UploadResult{}, &UploadError{Reason: ReasonInternal, Err: fmt.Errorf("decode gateway response: %w", err)}
	}
	if body.CID == "" {
		return UploadResult{}, &UploadError{Reason: ReasonInternal, Err: fmt.Errorf("gateway response missing cid")}
	}

	sizeBytes, err := body.FileSize.Int64()
	if err != nil {
		sizeBytes = size
	}
	storedName := body.FileName
	if storedName == "" {
		storedName = fileName
	}

	return UploadResult{CID: body.CID, FileName: storedName, FileSizeBytes: sizeBytes}, nil
}

// List fetches the gateway's blob listing. An empty list is a valid result.
func (g *gatewayStore) List(ctx context.Context) ([]StoredObject, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("list from gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, 0, fmt.Errorf("unexpected gateway status: %s", resp.Status)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, 0, fmt.Errorf("decode gateway listing: %w", err)
	}
	if body.FileList == nil {
		body.FileList = []StoredObject{}
	}
	return body.FileList, body.TotalFiles, nil
}
