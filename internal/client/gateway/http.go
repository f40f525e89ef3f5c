package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/daylighthq/daylight-client/internal/client/models"
	"github.com/daylighthq/daylight-client/internal/common"
)

// HTTPGateway implements Gateway against the remote HTTP/JSON API.
type HTTPGateway struct {
	baseURL string
	hc      *http.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPGateway returns a gateway for the API at baseURL. The timeout
// bounds every request, including the attachment upload.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// SetSessionToken installs (or clears, with "") the bearer token attached to
// subsequent requests.
func (g *HTTPGateway) SetSessionToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
}

func (g *HTTPGateway) sessionToken() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// doJSON issues a JSON request and decodes the response into out (when out
// is non-nil and the server returned a body). Transport and status failures
// come back already mapped onto the shared taxonomy.
func (g *HTTPGateway) doJSON(ctx context.Context, method, path string, body any, out any, token string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthHeaderName, common.BearerPrefix+token)
	}

	resp, err := g.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapStatus converts a non-2xx response into the error taxonomy, keeping a
// slice of the body for diagnostics.
func mapStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, strings.TrimSpace(string(body)))
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s: %s", common.ErrUnavailable, resp.Status, strings.TrimSpace(string(body)))
	default:
		return fmt.Errorf("%w: %s: %s", common.ErrRejected, resp.Status, strings.TrimSpace(string(body)))
	}
}

func (g *HTTPGateway) CreateApplication(ctx context.Context) (*models.Draft, error) {
	var d models.Draft
	if err := g.doJSON(ctx, http.MethodPost, "/applications", nil, &d, g.sessionToken()); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	return &d, nil
}

func (g *HTTPGateway) UpdateApplication(ctx context.Context, id string, payload models.DraftPayload) (*models.Draft, error) {
	var d models.Draft
	path := "/applications/" + url.PathEscape(id)
	if err := g.doJSON(ctx, http.MethodPut, path, payload, &d, g.sessionToken()); err != nil {
		return nil, fmt.Errorf("update application %s: %w", id, err)
	}
	return &d, nil
}

func (g *HTTPGateway) RequestUploadCredential(ctx context.Context, applicationID, fileName, contentType string) (*models.UploadCredential, error) {
	body := map[string]string{
		"applicationId": applicationID,
		"fileName":      fileName,
		"contentType":   contentType,
	}
	var cred models.UploadCredential
	if err := g.doJSON(ctx, http.MethodPost, "/upload-url", body, &cred, g.sessionToken()); err != nil {
		return nil, fmt.Errorf("request upload credential: %w", err)
	}
	return &cred, nil
}

// UploadAttachment PUTs the bytes against the presigned URL from the
// credential. The URL is absolute and outside the API base.
func (g *HTTPGateway) UploadAttachment(ctx context.Context, cred *models.UploadCredential, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, cred.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := g.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: upload failed: %s: %s", common.ErrUnavailable, resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

func (g *HTTPGateway) RequestMagicLink(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := g.doJSON(ctx, http.MethodPost, "/magic-link", body, nil, g.sessionToken()); err != nil {
		return fmt.Errorf("request magic link: %w", err)
	}
	return nil
}

// ValidateSession authenticates with the candidate token itself, not the
// currently installed one.
func (g *HTTPGateway) ValidateSession(ctx context.Context, token string) (*models.SessionInfo, error) {
	var info models.SessionInfo
	if err := g.doJSON(ctx, http.MethodPost, "/magic-link/validate", nil, &info, token); err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}
	return &info, nil
}

// Ping reports reachability. Any HTTP response counts as reachable; only a
// transport-level failure does not.
func (g *HTTPGateway) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := g.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	_ = resp.Body.Close()
	return nil
}
