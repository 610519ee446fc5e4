package soundtrack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zonetune/zonetune/internal/domain/models"
)

// DefaultExpiryMargin is how close to expiry a token may get before it is
// refreshed ahead of use.
const DefaultExpiryMargin = time.Minute

// TokenStore persists the single user-mode token record. GetToken returns
// (nil, nil) when no record exists.
type TokenStore interface {
	GetToken(ctx context.Context) (*models.AuthToken, error)
	SaveToken(ctx context.Context, token *models.AuthToken) error
	DeleteToken(ctx context.Context) error
}

// TokenManager owns the user-mode credential lifecycle. A capacity-1 slot
// serializes every read and refresh so two concurrent callers cannot both
// exchange the same refresh token and invalidate each other's result.
type TokenManager struct {
	store  TokenStore
	url    string
	http   *http.Client
	margin time.Duration
	slot   chan struct{}
}

func NewTokenManager(store TokenStore, url string, httpClient *http.Client) *TokenManager {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &TokenManager{
		store:  store,
		url:    url,
		http:   httpClient,
		margin: DefaultExpiryMargin,
		slot:   make(chan struct{}, 1),
	}
}

func (m *TokenManager) acquire(ctx context.Context) error {
	select {
	case m.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *TokenManager) release() {
	<-m.slot
}

// Token returns a bearer token that is valid for at least the expiry
// margin, refreshing the persisted record first when needed. It returns
// ("", nil) when no credential exists; the caller must re-authenticate.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if err := m.acquire(ctx); err != nil {
		return "", err
	}
	defer m.release()

	record, err := m.store.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	if record != nil && time.Until(record.ExpiresAt) > m.margin {
		return record.Token, nil
	}

	var refreshToken string
	if record != nil {
		log.Info().
			Time("expires_at", record.ExpiresAt).
			Msg("Token is expired or about to expire")
		refreshToken = record.RefreshToken
	}
	if refreshToken == "" {
		return "", nil
	}

	// A stale refresh token should fail fast, so the exchange is a single
	// unauthenticated call with no retry.
	login, err := m.exchange(ctx, refreshMutation, map[string]any{
		"refreshToken": refreshToken,
	}, "refreshLogin")
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	if err := m.persist(ctx, login); err != nil {
		return "", err
	}
	return login.Token, nil
}

// Login exchanges credentials for a token triple and persists it.
func (m *TokenManager) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}
	defer m.release()

	login, err := m.exchange(ctx, loginMutation, map[string]any{
		"email":    email,
		"password": password,
	}, "loginUser")
	if err != nil {
		return nil, err
	}

	if err := m.persist(ctx, login); err != nil {
		return nil, err
	}
	return login, nil
}

// Logout deletes the persisted token record, leaving the manager with no
// credential.
func (m *TokenManager) Logout(ctx context.Context) error {
	if err := m.acquire(ctx); err != nil {
		return err
	}
	defer m.release()

	log.Info().Msg("Logging out")
	return m.store.DeleteToken(ctx)
}

func (m *TokenManager) persist(ctx context.Context, login *LoginResponse) error {
	log.Info().Time("expires_at", login.ExpiresAt).Msg("Updating token")
	record := &models.AuthToken{
		Key:          models.AuthTokenKey,
		Token:        login.Token,
		RefreshToken: login.RefreshToken,
		ExpiresAt:    login.ExpiresAt,
	}
	if err := m.store.SaveToken(ctx, record); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// exchange runs one unauthenticated operation against the remote API and
// decodes the named field of its data object.
func (m *TokenManager) exchange(ctx context.Context, document string, variables map[string]any, field string) (*LoginResponse, error) {
	body, err := json.Marshal(map[string]any{
		"query":     document,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &AuthError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}

	var parsed Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, &ResponseError{Errors: parsed.Errors}
	}

	var data map[string]*LoginResponse
	if err := json.Unmarshal(parsed.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse login response: %w", err)
	}
	login := data[field]
	if login == nil || login.Token == "" {
		return nil, fmt.Errorf("login response missing %s token", field)
	}
	return login, nil
}
