package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenInfoServer(t *testing.T, status int, payload map[string]string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.NotEmpty(t, r.URL.Query().Get("id_token"))
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGoogleVerifier_Verify(t *testing.T) {
	server := tokenInfoServer(t, http.StatusOK, map[string]string{
		"aud":            "tindahan-client-id",
		"sub":            "108310831083",
		"email":          "maria@example.com",
		"email_verified": "true",
		"name":           "Maria Clara",
		"picture":        "https://example.com/maria.png",
	})

	verifier := NewGoogleVerifier(GoogleConfig{
		ClientID:     "tindahan-client-id",
		TokenInfoURL: server.URL,
	})

	identity, err := verifier.Verify(context.Background(), "some-id-token")
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", identity.Email)
	assert.Equal(t, "Maria Clara", identity.Name)
}

func TestGoogleVerifier_RejectedToken(t *testing.T) {
	server := tokenInfoServer(t, http.StatusBadRequest, map[string]string{
		"error": "invalid_token",
	})

	verifier := NewGoogleVerifier(GoogleConfig{
		ClientID:     "tindahan-client-id",
		TokenInfoURL: server.URL,
	})

	_, err := verifier.Verify(context.Background(), "expired-token")
	assert.ErrorIs(t, err, ErrInvalidIDToken)
}

func TestGoogleVerifier_AudienceMismatch(t *testing.T) {
	server := tokenInfoServer(t, http.StatusOK, map[string]string{
		"aud":            "someone-elses-client-id",
		"sub":            "1083",
		"email":          "maria@example.com",
		"email_verified": "true",
	})

	verifier := NewGoogleVerifier(GoogleConfig{
		ClientID:     "tindahan-client-id",
		TokenInfoURL: server.URL,
	})

	_, err := verifier.Verify(context.Background(), "some-id-token")
	assert.ErrorIs(t, err, ErrAudienceMismatch)
}

func TestGoogleVerifier_UnverifiedEmail(t *testing.T) {
	server := tokenInfoServer(t, http.StatusOK, map[string]string{
		"aud":            "tindahan-client-id",
		"sub":            "1083",
		"email":          "maria@example.com",
		"email_verified": "false",
	})

	verifier := NewGoogleVerifier(GoogleConfig{
		ClientID:     "tindahan-client-id",
		TokenInfoURL: server.URL,
	})

	_, err := verifier.Verify(context.Background(), "some-id-token")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}
