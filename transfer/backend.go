package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/moyoez/claimdesk/metrics"
	"github.com/moyoez/claimdesk/tool"
	"github.com/moyoez/claimdesk/types"
)

const (
	FieldLabelFile        = "file"
	FieldDamageFiles      = "files"
	FieldDateVerification = "date_verification"
)

// Backend talks to the claim backend's verify-date and claimability routes.
type Backend struct {
	client    *http.Client
	verifyURL string
	assessURL string
}

// NewBackend resolves both endpoint URLs against baseURL. A nil client uses
// the shared tool client.
func NewBackend(client *http.Client, baseURL, verifyPath, assessPath string) (*Backend, error) {
	verifyURL, err := tool.BuildBackendURL(baseURL, verifyPath)
	if err != nil {
		return nil, err
	}
	assessURL, err := tool.BuildBackendURL(baseURL, assessPath)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = tool.GetHttpClient()
	}
	return &Backend{client: client, verifyURL: verifyURL, assessURL: assessURL}, nil
}

// NewBackendFromConfig builds a Backend for cfg using the shared client.
func NewBackendFromConfig(cfg *types.AppConfig) (*Backend, error) {
	return NewBackend(tool.GetHttpClient(), cfg.BackendURL, cfg.VerifyPath, cfg.AssessPath)
}

func (b *Backend) VerifyURL() string { return b.verifyURL }
func (b *Backend) AssessURL() string { return b.assessURL }

// post sends a finished form and returns status and body. Transport errors
// come back as err with status 0.
func (b *Backend) post(ctx context.Context, endpoint, url string, form *formBody) (int, []byte, error) {
	body, contentType, err := form.finish()
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		metrics.ObserveBackend(endpoint, 0, time.Since(start))
		return 0, nil, fmt.Errorf("failed to send %s request: %w", endpoint, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	metrics.ObserveBackend(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}
	if len(data) > 0 {
		tool.DefaultLogger.Debugf("[Backend] %s %d: %s", endpoint, resp.StatusCode, string(data))
	}
	return resp.StatusCode, data, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// VerifyDate posts the label image to the verify-date endpoint. The raw body
// is kept on the result so it can be forwarded without re-encoding.
func (b *Backend) VerifyDate(ctx context.Context, label types.MediaFile) (*types.VerificationResult, error) {
	form := newFormBody()
	if err := form.addFile(FieldLabelFile, label); err != nil {
		return nil, err
	}
	status, body, err := b.post(ctx, EndpointVerify, b.verifyURL, form)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, newBackendError(EndpointVerify, status, body, DefaultVerifyErrorMessage,
			[]any{"english", "message"}, []any{"detail"})
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("verify-date: %w", ErrEmptyResponse)
	}
	var result types.VerificationResult
	if err := sonic.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse verify-date response: %w", err)
	}
	result.Raw = body
	tool.DefaultLogger.Infof("[Backend] Date verification for %s: %s", label.Name, result.English.Status)
	return &result, nil
}

// AssessDamage posts every damage file plus the verification body.
func (b *Backend) AssessDamage(ctx context.Context, files []types.MediaFile, verification *types.VerificationResult) (*types.ClaimResult, error) {
	if verification == nil {
		return nil, fmt.Errorf("assess: verification result is required")
	}
	form := newFormBody()
	for _, f := range files {
		if err := form.addFile(FieldDamageFiles, f); err != nil {
			return nil, err
		}
	}
	raw := verification.Raw
	if len(raw) == 0 {
		encoded, err := sonic.Marshal(verification)
		if err != nil {
			return nil, fmt.Errorf("failed to encode verification result: %w", err)
		}
		raw = encoded
	}
	if err := form.addField(FieldDateVerification, raw); err != nil {
		return nil, err
	}

	status, body, err := b.post(ctx, EndpointAssess, b.assessURL, form)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, newBackendError(EndpointAssess, status, body, DefaultAssessErrorMessage, []any{"detail"})
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("claimability: %w", ErrEmptyResponse)
	}
	var result types.ClaimResult
	if err := sonic.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse claimability response: %w", err)
	}
	tool.DefaultLogger.Infof("[Backend] Damage assessment over %d file(s): claimable=%t", len(files), result.Claimable)
	return &result, nil
}
