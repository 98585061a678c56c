package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/bt-bridge/openai-realtime-cli/shared"
	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

const DefaultRestBaseURL = "https://api.openai.com/v1"

// ClientSecret is a short-lived credential minted for handing to a browser
// or embedded client, so the long-lived API key never leaves the machine.
type ClientSecret struct {
	Value     string         `json:"value"`
	ExpiresAt int64          `json:"expires_at"`
	Session   map[string]any `json:"session,omitempty"`
}

// CreateClientSecret mints an ephemeral realtime credential via the REST
// API. ttlSeconds <= 0 leaves the expiry to the server default.
func CreateClientSecret(ctx context.Context, logger shared.LoggerAdapter, apiKey, baseURL string, ttlSeconds int) (*ClientSecret, error) {
	if logger == nil {
		return nil, shared.ErrNoLogger
	}
	if apiKey == "" {
		return nil, shared.ErrNoAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultRestBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	payload := map[string]any{}
	if ttlSeconds > 0 {
		payload["expires_after"] = map[string]any{
			"anchor":  "created_at",
			"seconds": ttlSeconds,
		}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(base.JoinPath("/realtime/client_secrets").String())
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	errC := make(chan error)
	go func() {
		defer close(errC)
		errC <- fasthttp.Do(req, resp)
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errC:
		if err != nil {
			return nil, fmt.Errorf("performing HTTP request: %w", err)
		}
	}
	if resp.StatusCode() != fasthttp.StatusOK && resp.StatusCode() != fasthttp.StatusCreated {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode(), string(resp.Body()))
	}
	secret, err := parseClientSecret(resp.Body())
	if err != nil {
		return nil, err
	}
	logger.Info("minted ephemeral client secret")
	return secret, nil
}

func parseClientSecret(body []byte) (*ClientSecret, error) {
	secret := new(ClientSecret)
	if err := sonic.Unmarshal(body, secret); err != nil {
		return nil, fmt.Errorf("unmarshaling client secret: %w", err)
	}
	if secret.Value == "" {
		return nil, errors.New("client secret response has no value")
	}
	return secret, nil
}
