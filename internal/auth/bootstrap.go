// Package auth exchanges a Roblox session cookie for a scoped Open Cloud API key.
//
// The exchange is three sequential calls with no retries:
//  1. POST /v2/logout, which is rejected with 403 and hands back an x-csrf-token header
//  2. GET /v1/users/authenticated for the account id
//  3. POST /cloud-authentication/v1/apiKey carrying the token
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"

	"decalup/internal/models"
	"decalup/pkg/utils"

	"github.com/rs/zerolog/log"
)

const (
	cookieName       = ".ROBLOSECURITY"
	csrfHeader       = "X-CSRF-TOKEN"
	labelWords       = 3
	descriptionWords = 5
	maxBodyLog       = 200
)

// Words is the fixed vocabulary used for key labels and descriptions.
var Words = []string{
	"sky", "blue", "cloud", "star", "moon", "sun", "rainbow", "tree",
	"flower", "river", "mountain", "ocean", "forest", "meadow", "bird",
	"dolphin", "panda", "robot", "rocket", "planet", "galaxy", "comet",
}

// Bootstrapper performs the cookie to access key exchange.
type Bootstrapper struct {
	httpClient   *http.Client
	authURL      string
	usersURL     string
	openCloudURL string
	pick         func(n int) int
}

// NewBootstrapper creates a Bootstrapper against the given service base URLs.
func NewBootstrapper(httpClient *http.Client, authURL, usersURL, openCloudURL string) *Bootstrapper {
	return &Bootstrapper{
		httpClient:   httpClient,
		authURL:      strings.TrimSuffix(authURL, "/"),
		usersURL:     strings.TrimSuffix(usersURL, "/"),
		openCloudURL: strings.TrimSuffix(openCloudURL, "/"),
		pick:         rand.Intn,
	}
}

type apiKeyScope struct {
	ScopeType   string   `json:"scopeType"`
	TargetParts []string `json:"targetParts"`
	Operations  []string `json:"operations"`
}

type apiKeyProperties struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	IsEnabled    bool          `json:"isEnabled"`
	AllowedCidrs []string      `json:"allowedCidrs"`
	Scopes       []apiKeyScope `json:"scopes"`
}

type apiKeyRequest struct {
	Properties apiKeyProperties `json:"cloudAuthUserConfiguredProperties"`
}

type apiKeyResponse struct {
	Secret string `json:"apikeySecret"`
}

// DeriveAccessKey turns a session cookie into a new asset read/write key.
// Any failure is an *AuthError and no partial key is returned.
func (b *Bootstrapper) DeriveAccessKey(ctx context.Context, cookie string) (*models.AccessKey, error) {
	log.Info().Msg("Starting API key creation")

	token, err := b.fetchCSRFToken(ctx, cookie)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("tokenLength", len(token)).Msg("CSRF token acquired")

	identity, err := b.FetchIdentity(ctx, cookie)
	if err != nil {
		return nil, err
	}
	log.Info().Int64("userId", identity.ID).Str("userName", identity.Name).Msg("Authenticated user resolved")

	name := b.randomWords(labelWords)
	description := b.randomWords(descriptionWords)

	secret, err := b.createAPIKey(ctx, cookie, token, name, description)
	if err != nil {
		return nil, err
	}
	log.Info().Str("keyName", name).Msg("API key created")

	return &models.AccessKey{
		Secret:      secret,
		Name:        name,
		Description: description,
		OwnerID:     strconv.FormatInt(identity.ID, 10),
	}, nil
}

// fetchCSRFToken elicits the anti-forgery token. The logout call is expected to be rejected.
func (b *Bootstrapper) fetchCSRFToken(ctx context.Context, cookie string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.authURL+"/v2/logout", nil)
	if err != nil {
		return "", &AuthError{Reason: ReasonTokenUnavailable, Err: fmt.Errorf("build request: %w", err)}
	}
	setCookie(req, cookie)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Reason: ReasonTokenUnavailable, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	token := resp.Header.Get(csrfHeader)
	if resp.StatusCode != http.StatusForbidden || token == "" {
		log.Error().Int("statusCode", resp.StatusCode).Bool("hasToken", token != "").Msg("CSRF token unavailable")
		return "", &AuthError{Reason: ReasonTokenUnavailable, StatusCode: resp.StatusCode}
	}
	return token, nil
}

// FetchIdentity returns the account that owns the cookie.
func (b *Bootstrapper) FetchIdentity(ctx context.Context, cookie string) (*models.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.usersURL+"/v1/users/authenticated", nil)
	if err != nil {
		return nil, &AuthError{Reason: ReasonIdentityUnavailable, Err: fmt.Errorf("build request: %w", err)}
	}
	setCookie(req, cookie)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Reason: ReasonIdentityUnavailable, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AuthError{Reason: ReasonIdentityUnavailable, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{
			Reason:     ReasonIdentityUnavailable,
			StatusCode: resp.StatusCode,
			Body:       utils.Truncate(string(body), maxBodyLog),
		}
	}

	var identity models.Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, &AuthError{Reason: ReasonIdentityUnavailable, StatusCode: resp.StatusCode, Err: fmt.Errorf("parse response: %w", err)}
	}
	if identity.ID == 0 {
		return nil, &AuthError{
			Reason:     ReasonIdentityUnavailable,
			StatusCode: resp.StatusCode,
			Body:       utils.Truncate(string(body), maxBodyLog),
		}
	}
	return &identity, nil
}

func (b *Bootstrapper) createAPIKey(ctx context.Context, cookie, token, name, description string) (string, error) {
	payload := apiKeyRequest{
		Properties: apiKeyProperties{
			Name:         name,
			Description:  description,
			IsEnabled:    true,
			AllowedCidrs: []string{"0.0.0.0/0"},
			Scopes: []apiKeyScope{{
				ScopeType:   "asset",
				TargetParts: []string{"U"},
				Operations:  []string{"read", "write"},
			}},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", &AuthError{Reason: ReasonKeyCreationFailed, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.openCloudURL+"/cloud-authentication/v1/apiKey", bytes.NewReader(data))
	if err != nil {
		return "", &AuthError{Reason: ReasonKeyCreationFailed, Err: fmt.Errorf("build request: %w", err)}
	}
	setCookie(req, cookie)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(csrfHeader, token)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Reason: ReasonKeyCreationFailed, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AuthError{Reason: ReasonKeyCreationFailed, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	log.Debug().Int("statusCode", resp.StatusCode).Msg("API key response")

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("statusCode", resp.StatusCode).Str("body", utils.Truncate(string(body), maxBodyLog)).Msg("Error creating API key")
		return "", &AuthError{
			Reason:     ReasonKeyCreationFailed,
			StatusCode: resp.StatusCode,
			Body:       utils.Truncate(string(body), maxBodyLog),
		}
	}

	var keyResp apiKeyResponse
	if err := json.Unmarshal(body, &keyResp); err != nil {
		return "", &AuthError{Reason: ReasonKeyCreationFailed, StatusCode: resp.StatusCode, Err: fmt.Errorf("parse response: %w", err)}
	}
	if keyResp.Secret == "" {
		return "", &AuthError{Reason: ReasonKeyCreationFailed, StatusCode: resp.StatusCode, Body: "response has no apikeySecret"}
	}
	return keyResp.Secret, nil
}

// randomWords joins n words drawn uniformly, with replacement, from Words.
func (b *Bootstrapper) randomWords(n int) string {
	picked := make([]string, n)
	for i := range picked {
		picked[i] = Words[b.pick(len(Words))]
	}
	return strings.Join(picked, " ")
}

func setCookie(req *http.Request, cookie string) {
	req.Header.Set("Cookie", cookieName+"="+cookie)
}
