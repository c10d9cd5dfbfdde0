package user

import (
	"context"

	"google.golang.org/api/idtoken"

	"skillswap/tools/errs"
)

// GoogleVerifier checks a Google ID token and returns the profile it carries.
type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (*GoogleProfile, error)
}

type GoogleProfile struct {
	Name    string
	Email   string
	Picture string
}

// googleVerifier validates against Google's public keys for our client id.
type googleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (g *googleVerifier) Verify(ctx context.Context, token string) (*GoogleProfile, error) {
	payload, err := idtoken.Validate(ctx, token, g.clientID)
	if err != nil {
		return nil, errs.WrapMsg(err, "google token validate")
	}
	p := &GoogleProfile{}
	if v, ok := payload.Claims["name"].(string); ok {
		p.Name = v
	}
	if v, ok := payload.Claims["email"].(string); ok {
		p.Email = v
	}
	if v, ok := payload.Claims["picture"].(string); ok {
		p.Picture = v
	}
	if p.Email == "" {
		return nil, errs.New("google token has no email claim")
	}
	return p, nil
}
