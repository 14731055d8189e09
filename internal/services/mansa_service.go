package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// ErrAuthenticationFailed covers a missing token in the provider's
// authenticate response as well as transport-level failures of that call.
var ErrAuthenticationFailed = errors.New("mansa: authentication failed")

// tokenExpiryMargin is subtracted from the provider-declared lifetime so a
// token is never used right at its edge (provider-side clock skew).
const tokenExpiryMargin = time.Minute

// defaultTokenLifetime applies when the provider omits expiresIn.
const defaultTokenLifetime = 50 * time.Minute

type MansaConfig struct {
	// Base of the Mansa payin API, e.g. https://api.mansa.example
	BaseURL      string
	ClientKey    string
	ClientSecret string

	Client *http.Client
	Logger *slog.Logger
}

// MansaService talks to the external mobile-money provider. It is stateless
// apart from the shared credential cache: a single bearer token with an
// absolute expiry, guarded by a mutex so concurrent requests refresh it at
// most once.
type MansaService struct {
	baseURL      *url.URL
	clientKey    string
	clientSecret string

	httpClient *http.Client
	logger     *slog.Logger
	breaker    *gobreaker.CircuitBreaker

	// token cache
	mu          sync.Mutex
	accessToken string
	tokenExp    time.Time
}

func NewMansaService(cfg MansaConfig) (*MansaService, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" ||
		strings.TrimSpace(cfg.ClientKey) == "" ||
		strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, fmt.Errorf("mansa: base_url/client_key/client_secret are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	s := &MansaService{
		baseURL:      u,
		clientKey:    cfg.ClientKey,
		clientSecret: cfg.ClientSecret,
		httpClient:   client,
		logger:       logger,
		breaker:      gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "mansa-initiate"}),
	}
	logger.Info("Mansa client initialized", "baseURL", u.String())
	return s, nil
}

// ------- AUTH (cached bearer token) -------

func (s *MansaService) ensureToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.tokenExp) {
		return s.accessToken, nil
	}
	return s.authenticateLocked(ctx)
}

// authenticateLocked performs the sign-in call. Callers must hold s.mu;
// holding it across the request is what makes the refresh single-flight.
func (s *MansaService) authenticateLocked(ctx context.Context) (string, error) {
	type authResp struct {
		AccessToken string `json:"accessToken"`
		ExpiresIn   int    `json:"expiresIn"`
	}

	endpoint := *s.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/v1/xyz/authenticate")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader([]byte("{}")))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("client-key", s.clientKey)
	req.Header.Set("client-secret", s.clientSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: %s %s", ErrAuthenticationFailed, resp.Status, strings.TrimSpace(string(b)))
	}
	var out authResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrAuthenticationFailed, err)
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return "", fmt.Errorf("%w: empty accessToken", ErrAuthenticationFailed)
	}

	lifetime := time.Duration(out.ExpiresIn) * time.Second
	if lifetime <= tokenExpiryMargin {
		lifetime = defaultTokenLifetime
	}
	s.accessToken = out.AccessToken
	s.tokenExp = time.Now().Add(lifetime - tokenExpiryMargin)
	return s.accessToken, nil
}

// Invalidate unconditionally drops the cached token.
func (s *MansaService) Invalidate() {
	s.mu.Lock()
	s.accessToken = ""
	s.tokenExp = time.Time{}
	s.mu.Unlock()
}

// ------- INITIATE (payin) -------

type MansaInitiateRequest struct {
	PhoneNumber  string
	Amount       float64
	FullName     string
	EmailAddress string
	// Provider selects the payment mode: MOMO or OM.
	Provider string
	// ExternalReference correlates the provider-side transaction with the
	// internal payment record.
	ExternalReference string
}

type MansaInitiateResponse struct {
	TransactionReference string          `json:"transactionReference"`
	Status               string          `json:"status"`
	Raw                  json.RawMessage `json:"-"`
}

// InitiatePayment obtains a token and calls the provider's initiate
// endpoint. On a rejected token it invalidates the cache, re-authenticates
// and retries exactly once; any further failure surfaces as *MansaError.
// The call runs through a circuit breaker so a misbehaving provider stops
// consuming outbound capacity.
func (s *MansaService) InitiatePayment(ctx context.Context, req MansaInitiateRequest) (*MansaInitiateResponse, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.initiateWithRetry(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*MansaInitiateResponse), nil
}

func (s *MansaService) initiateWithRetry(ctx context.Context, req MansaInitiateRequest) (*MansaInitiateResponse, error) {
	token, err := s.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.sendInitiate(ctx, req, token)
	if err == nil {
		return resp, nil
	}

	var apiErr *MansaError
	if errors.As(err, &apiErr) && apiErr.AuthRejected() {
		s.logger.Warn("mansa token rejected, re-authenticating",
			"externalReference", req.ExternalReference)
		s.Invalidate()
		token, err = s.ensureToken(ctx)
		if err != nil {
			return nil, err
		}
		return s.sendInitiate(ctx, req, token)
	}
	return nil, err
}

func (s *MansaService) sendInitiate(ctx context.Context, req MansaInitiateRequest, token string) (*MansaInitiateResponse, error) {
	type initiateReq struct {
		PaymentMode     string  `json:"paymentMode"`
		PhoneNumber     string  `json:"phoneNumber"`
		TransactionType string  `json:"transactionType"`
		Amount          float64 `json:"amount"`
		FullName        string  `json:"fullName"`
		EmailAddress    string  `json:"emailAddress"`
	}

	endpoint := *s.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/v1/xyz/initiate")

	body, _ := json.Marshal(initiateReq{
		PaymentMode:     req.Provider,
		PhoneNumber:     req.PhoneNumber,
		TransactionType: "payin",
		Amount:          req.Amount,
		FullName:        req.FullName,
		EmailAddress:    req.EmailAddress,
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("initiate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("client-key", s.clientKey)
	httpReq.Header.Set("client-secret", s.clientSecret)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("initiate request: %w", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	s.logger.Debug("mansa initiate raw", "status", resp.Status, "body", trimBody(string(b), 2000))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &MansaError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}

	var out MansaInitiateResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode initiate: %w", err)
	}
	out.Raw = json.RawMessage(b)
	return &out, nil
}

// ---------- helpers ----------

func trimBody(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// MansaError carries the provider's status and error payload for failed
// initiate calls.
type MansaError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *MansaError) Error() string {
	if e == nil {
		return "<nil>"
	}
	bt := strings.TrimSpace(e.Body)
	if bt == "" {
		return fmt.Sprintf("mansa error: %s", e.Status)
	}
	return fmt.Sprintf("mansa error: %s: %s", e.Status, bt)
}

// AuthRejected reports whether the provider signalled an invalid or expired
// token, as opposed to any other failure.
func (e *MansaError) AuthRejected() bool {
	if e == nil || e.StatusCode != http.StatusUnauthorized {
		return false
	}
	var payload struct {
		ErrorCode string `json:"errorCode"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err != nil {
		return false
	}
	return payload.ErrorCode == "INVALID_AUTH_TOKEN"
}
