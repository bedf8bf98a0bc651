package myinvois

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const tokenPath = "/connect/token"

// Token access token de MyInvois y su vencimiento absoluto
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// ValidAt indica si el token sigue vigente en el instante dado
func (t *Token) ValidAt(now time.Time) bool {
	return t != nil && t.Value != "" && now.Before(t.ExpiresAt)
}

type tokenResponse struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   float64 `json:"expires_in"`
	TokenType   string  `json:"token_type"`
}

// TokenManager mantiene el access token compartido por todas las peticiones.
// El token se reemplaza completo con atomic.Pointer; nunca se modifica en sitio.
type TokenManager struct {
	creds   Credentials
	http    *resty.Client
	timeout time.Duration
	now     func() time.Time
	logger  *logrus.Logger

	current atomic.Pointer[Token]
}

// NewTokenManager crea un TokenManager sin token inicial
func NewTokenManager(creds Credentials, httpClient *resty.Client, timeout time.Duration, logger *logrus.Logger) *TokenManager {
	return &TokenManager{
		creds:   creds,
		http:    httpClient,
		timeout: timeout,
		now:     time.Now,
		logger:  logger,
	}
}

// GetValidToken retorna un token vigente, autenticando de nuevo si no hay o venció
func (m *TokenManager) GetValidToken(ctx context.Context) (Token, error) {
	if tok := m.current.Load(); tok.ValidAt(m.now()) {
		return *tok, nil
	}
	return m.Authenticate(ctx)
}

// Invalidate descarta el token actual
func (m *TokenManager) Invalidate() {
	m.current.Store(nil)
}

// Authenticate ejecuta el grant client_credentials y reemplaza el token actual
func (m *TokenManager) Authenticate(ctx context.Context) (Token, error) {
	if !m.creds.HasClientCredentials() {
		return Token{}, &AuthError{Message: "credentials missing", Err: ErrMissingCredentials}
	}

	m.logger.Debug("Attempting MyInvois authentication")

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	resp, err := m.http.R().
		SetContext(ctx).
		SetBasicAuth(m.creds.ClientID, m.creds.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		Post(tokenPath)
	if err != nil {
		m.logger.WithError(err).Error("MyInvois authentication endpoint unreachable")
		return Token{}, &AuthError{
			Message: "endpoint unreachable",
			Err:     &TransportError{Op: "authenticate", Err: err},
		}
	}

	body := resp.Body()
	switch {
	case resp.StatusCode() == http.StatusUnauthorized:
		m.logger.WithField("status", resp.StatusCode()).Error("MyInvois rejected client credentials")
		return Token{}, &AuthError{Message: "invalid credentials", StatusCode: resp.StatusCode(), Body: body}
	case !resp.IsSuccess():
		message := remoteErrorMessage(body)
		if message == "" {
			message = fmt.Sprintf("token endpoint returned HTTP %d", resp.StatusCode())
		}
		m.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode(),
			"error":  message,
		}).Error("MyInvois authentication failed")
		return Token{}, &AuthError{Message: message, StatusCode: resp.StatusCode(), Body: body}
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil || payload.AccessToken == "" || payload.ExpiresIn <= 0 {
		return Token{}, &AuthError{Message: "malformed token response", StatusCode: resp.StatusCode(), Body: body, Err: err}
	}

	tok := &Token{
		Value:     payload.AccessToken,
		ExpiresAt: m.now().Add(time.Duration(payload.ExpiresIn * float64(time.Second))),
	}
	m.current.Store(tok)

	m.logger.WithField("expires_at", tok.ExpiresAt).Info("MyInvois authentication successful")
	return *tok, nil
}
