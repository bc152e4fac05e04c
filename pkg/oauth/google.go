package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrInvalidIDToken is returned when the provider rejects the token
	ErrInvalidIDToken = errors.New("invalid ID token")

	// ErrAudienceMismatch is returned when the token was issued for a
	// different OAuth client
	ErrAudienceMismatch = errors.New("token audience does not match client ID")

	// ErrEmailNotVerified is returned when the provider has not verified
	// the account email
	ErrEmailNotVerified = errors.New("provider email is not verified")
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// Identity is the provider-confirmed identity behind an ID token.
type Identity struct {
	Subject string // stable provider user ID
	Email   string
	Name    string
	Picture string
}

// GoogleConfig configures the Google ID token verifier.
type GoogleConfig struct {
	// ClientID is the OAuth client the mobile app signs in with. Tokens
	// minted for any other client are rejected.
	ClientID string

	// TokenInfoURL overrides the Google endpoint, used by tests.
	TokenInfoURL string
}

// GoogleVerifier validates Google-issued ID tokens against the
// tokeninfo endpoint.
type GoogleVerifier struct {
	config     GoogleConfig
	httpClient *http.Client
}

func NewGoogleVerifier(config GoogleConfig) *GoogleVerifier {
	if config.TokenInfoURL == "" {
		config.TokenInfoURL = googleTokenInfoURL
	}
	return &GoogleVerifier{
		config: config,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// tokenInfoResponse is the subset of Google's tokeninfo payload we use.
// https://developers.google.com/identity/sign-in/web/backend-auth
type tokenInfoResponse struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Verify confirms the ID token with Google and returns the identity it
// asserts. The endpoint itself checks the signature and expiry; we
// additionally pin the audience to our own client ID.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	params := url.Values{}
	params.Add("id_token", idToken)
	requestURL := fmt.Sprintf("%s?%s", v.config.TokenInfoURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call tokeninfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokeninfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Google answers 400 for malformed, expired or revoked tokens
		return nil, ErrInvalidIDToken
	}

	var info tokenInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse tokeninfo response: %w", err)
	}

	if v.config.ClientID != "" && info.Aud != v.config.ClientID {
		return nil, ErrAudienceMismatch
	}
	if info.EmailVerified != "true" {
		return nil, ErrEmailNotVerified
	}

	return &Identity{
		Subject: info.Sub,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
