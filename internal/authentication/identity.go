package authentication

import (
	"context"
	"errors"
	"fmt"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

var ErrInvalidIDToken = errors.New("invalid id token")

// Identity is the authenticated principal of the identity provider.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// GoogleVerifier verifies Google sign-in ID tokens issued for clientID.
type GoogleVerifier struct {
	clientID string
	verifier googleAuthIDTokenVerifier.Verifier
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
	}
}

func (v *GoogleVerifier) Verify(_ context.Context, idToken string) (*Identity, error) {
	if err := v.verifier.VerifyIDToken(idToken, []string{v.clientID}); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidIDToken, err)
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, fmt.Errorf("decode id token: %w", err)
	}
	if claimSet.Email == "" {
		return nil, fmt.Errorf("%w: email claim missing", ErrInvalidIDToken)
	}
	return &Identity{
		Subject: claimSet.Sub,
		Email:   claimSet.Email,
		Name:    claimSet.Name,
	}, nil
}
