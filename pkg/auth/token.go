// Package auth verifies bearer tokens on the prediction API. The service
// never issues tokens; it only checks tokens minted by an external issuer.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds token verification settings.
type Config struct {
	// Secret is an HMAC-SHA256 shared key.
	Secret string

	// PublicKeyPEM is a PEM-encoded RSA public key for RS256 tokens.
	PublicKeyPEM []byte

	// Issuer and Audience are checked when non-empty.
	Issuer   string
	Audience string

	// Leeway tolerates clock skew on exp and nbf.
	Leeway time.Duration
}

// Enabled reports whether any verification key is configured.
func (c Config) Enabled() bool {
	return c.Secret != "" || len(c.PublicKeyPEM) > 0
}

// Claims are the token claims the service reads.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
}

// Verifier validates bearer tokens against one key.
type Verifier struct {
	key    any
	parser *jwt.Parser
}

// NewVerifier creates a verifier. Exactly one of Secret or PublicKeyPEM
// must be set.
func NewVerifier(cfg Config) (*Verifier, error) {
	var (
		key    any
		method string
	)
	switch {
	case cfg.Secret != "" && len(cfg.PublicKeyPEM) > 0:
		return nil, errors.New("auth: set either a secret or a public key, not both")
	case len(cfg.PublicKeyPEM) > 0:
		pub, err := jwt.ParseRSAPublicKeyFromPEM(cfg.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
		}
		key, method = pub, jwt.SigningMethodRS256.Alg()
	case cfg.Secret != "":
		key, method = []byte(cfg.Secret), jwt.SigningMethodHS256.Alg()
	default:
		return nil, errors.New("auth: no verification key configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &Verifier{key: key, parser: jwt.NewParser(opts...)}, nil
}

// Verify parses token and checks its signature and registered claims.
func (v *Verifier) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// Algorithm returns the signing algorithm the verifier accepts.
func (v *Verifier) Algorithm() string {
	if _, ok := v.key.(*rsa.PublicKey); ok {
		return jwt.SigningMethodRS256.Alg()
	}
	return jwt.SigningMethodHS256.Alg()
}

// LoadKeyFile reads a PEM-encoded key from path.
func LoadKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	return data, nil
}
