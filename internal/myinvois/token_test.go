package myinvois

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_ValidUntilExpiry(t *testing.T) {
	fake := newFakeMyInvois()
	fake.expiresIn = 3600

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	client, _ := newTestClient(t, fake, Options{Now: func() time.Time { return now }})
	tokens := client.Tokens()
	ctx := context.Background()

	first, err := tokens.GetValidToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-1", first.Value)
	assert.Equal(t, start.Add(time.Hour), first.ExpiresAt)
	assert.EqualValues(t, 1, fake.tokenCalls.Load())

	now = start.Add(time.Hour - time.Nanosecond)
	again, err := tokens.GetValidToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.EqualValues(t, 1, fake.tokenCalls.Load())

	now = start.Add(time.Hour)
	renewed, err := tokens.GetValidToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", renewed.Value)
	assert.Equal(t, now.Add(time.Hour), renewed.ExpiresAt)
	assert.EqualValues(t, 2, fake.tokenCalls.Load())
}

func TestTokenManager_MissingCredentials(t *testing.T) {
	fake := newFakeMyInvois()
	client, srv := newTestClient(t, fake, Options{})
	manager := NewTokenManager(Credentials{BaseURL: srv.URL, ClientID: "client-id"}, client.http, time.Second, testLogger())

	_, err := manager.GetValidToken(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.EqualValues(t, 0, fake.totalCalls())
}

func TestTokenManager_InvalidCredentials(t *testing.T) {
	fake := newFakeMyInvois()
	client, srv := newTestClient(t, fake, Options{})
	manager := NewTokenManager(Credentials{
		BaseURL:      srv.URL,
		ClientID:     "client-id",
		ClientSecret: "wrong",
	}, client.http, time.Second, testLogger())

	_, err := manager.Authenticate(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "invalid credentials", authErr.Message)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.JSONEq(t, `{"error":"invalid_client"}`, string(authErr.Body))
}

func TestTokenManager_RemoteErrorPayload(t *testing.T) {
	fake := newFakeMyInvois()
	fake.tokenStatus = http.StatusBadRequest
	fake.tokenBody = `{"error":"invalid_scope","error_description":"scope not allowed"}`
	client, _ := newTestClient(t, fake, Options{})

	_, err := client.Tokens().Authenticate(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "scope not allowed", authErr.Message)
	assert.Equal(t, http.StatusBadRequest, authErr.StatusCode)
}

func TestTokenManager_MalformedResponse(t *testing.T) {
	fake := newFakeMyInvois()
	fake.tokenStatus = http.StatusCreated
	fake.tokenBody = `{"token_type":"Bearer"}`
	client, _ := newTestClient(t, fake, Options{})

	_, err := client.Tokens().Authenticate(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "malformed token response", authErr.Message)
}

func TestTokenManager_RejectsNonPositiveExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, expiresIn := range []int{0, -60} {
		fake := newFakeMyInvois()
		fake.expiresIn = expiresIn
		client, _ := newTestClient(t, fake, Options{Now: func() time.Time { return now }})

		tok, err := client.Tokens().GetValidToken(context.Background())

		var authErr *AuthError
		require.ErrorAs(t, err, &authErr, "expires_in=%d", expiresIn)
		assert.Equal(t, "malformed token response", authErr.Message)
		assert.Empty(t, tok.Value)
		assert.Nil(t, client.Tokens().current.Load())
	}

	fake := newFakeMyInvois()
	fake.tokenStatus = http.StatusCreated
	fake.tokenBody = `{"access_token":"abc","token_type":"Bearer"}`
	client, _ := newTestClient(t, fake, Options{Now: func() time.Time { return now }})

	_, err := client.Tokens().GetValidToken(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "malformed token response", authErr.Message)
}

func TestTokenManager_EndpointUnreachable(t *testing.T) {
	fake := newFakeMyInvois()
	client, srv := newTestClient(t, fake, Options{})
	srv.Close()

	_, err := client.Tokens().GetValidToken(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "endpoint unreachable", authErr.Message)

	var transport *TransportError
	assert.True(t, errors.As(err, &transport))
}

func TestTokenManager_InvalidateForcesReauthentication(t *testing.T) {
	fake := newFakeMyInvois()
	client, _ := newTestClient(t, fake, Options{})
	ctx := context.Background()

	_, err := client.Tokens().GetValidToken(ctx)
	require.NoError(t, err)
	client.Tokens().Invalidate()
	tok, err := client.Tokens().GetValidToken(ctx)
	require.NoError(t, err)

	assert.Equal(t, "token-2", tok.Value)
	assert.EqualValues(t, 2, fake.tokenCalls.Load())
}

func TestTokenManager_ConcurrentReadersSeeWholeTokens(t *testing.T) {
	fake := newFakeMyInvois()
	client, _ := newTestClient(t, fake, Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := client.Tokens().GetValidToken(ctx)
			if err != nil {
				errs <- err
				return
			}
			if tok.Value == "" || tok.ExpiresAt.IsZero() {
				errs <- errors.New("observed partial token")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestToken_ValidAt(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var missing *Token
	assert.False(t, missing.ValidAt(now))
	assert.False(t, (&Token{ExpiresAt: now.Add(time.Minute)}).ValidAt(now))
	assert.True(t, (&Token{Value: "t", ExpiresAt: now.Add(time.Second)}).ValidAt(now))
	assert.False(t, (&Token{Value: "t", ExpiresAt: now}).ValidAt(now))
}
