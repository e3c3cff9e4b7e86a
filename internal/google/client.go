package google

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/fveldev/blog-auth/internal/domain"
)

// Issuer strings Google is allowed to use in verified ID tokens.
var allowedIssuers = map[string]struct{}{
	"https://accounts.google.com": {},
	"accounts.google.com":         {},
}

type TokenResponse struct {
	AccessToken string
	IDToken     string
}

// Client performs the authorization-code exchange against Google's fixed
// token endpoint and verifies Google-issued ID tokens. Client credentials
// come from configuration, never from request input.
type Client struct {
	conf    *oauth2.Config
	timeout time.Duration

	// validate is idtoken.Validate in production; tests swap it out.
	validate func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

func NewClient(clientID, clientSecret string, timeout time.Duration) *Client {
	return &Client{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			// Server-side exchange of a code obtained by the SPA.
			RedirectURL: "postmessage",
			Scopes:      []string{"openid", "email", "profile"},
		},
		timeout:  timeout,
		validate: idtoken.Validate,
	}
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchanging code: %w", domain.ErrExternalService, err)
	}

	idTok, _ := tok.Extra("id_token").(string)
	if idTok == "" {
		return nil, fmt.Errorf("%w: no id_token in token response", domain.ErrAuthentication)
	}
	return &TokenResponse{AccessToken: tok.AccessToken, IDToken: idTok}, nil
}

// VerifyAssertion checks the ID token's signature against Google's published
// keys, its audience against our client ID and its issuer against the
// canonical Google issuers. Any mismatch fails; there is no trust-anyway path.
func (c *Client) VerifyAssertion(ctx context.Context, idTok string) (*domain.ExternalIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := c.validate(ctx, idTok, c.conf.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: id token validation: %v", domain.ErrAuthentication, err)
	}
	if _, ok := allowedIssuers[payload.Issuer]; !ok {
		return nil, fmt.Errorf("%w: unexpected issuer", domain.ErrAuthentication)
	}

	email := claimString(payload.Claims, "email")
	if email == "" {
		return nil, fmt.Errorf("%w: id token has no email", domain.ErrAuthentication)
	}

	return &domain.ExternalIdentity{
		Issuer:     payload.Issuer,
		Subject:    payload.Subject,
		Email:      email,
		GivenName:  claimString(payload.Claims, "given_name"),
		FamilyName: claimString(payload.Claims, "family_name"),
		Picture:    claimString(payload.Claims, "picture"),
		Provider:   domain.RegisterGoogle,
		ExpiresAt:  time.Unix(payload.Expires, 0),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
