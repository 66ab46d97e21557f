package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs access-token claims into compact JWTs.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
}

// Verifier validates a JWT and returns the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// EdDSAKeyPair holds an Ed25519 keypair used for token signing. EduPredict
// runs with a single ephemeral key generated at startup: access tokens are
// short-lived and sessions survive restarts via refresh tokens, so losing
// the signing key on restart only costs in-flight access tokens.
type EdDSAKeyPair struct {
	kid  string
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// GenerateEdDSAKeyPair creates a fresh Ed25519 keypair with the given kid.
func GenerateEdDSAKeyPair(kid string) (*EdDSAKeyPair, error) {
	if kid == "" {
		return nil, errors.New("jwtx: kid must not be empty")
	}
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate ed25519 key: %w", err)
	}
	return &EdDSAKeyPair{kid: kid, priv: priv, pub: pub}, nil
}

func (k *EdDSAKeyPair) Alg() string { return jwt.SigningMethodEdDSA.Alg() }
func (k *EdDSAKeyPair) KID() string { return k.kid }

// Sign turns claims into a signed JWT string.
func (k *EdDSAKeyPair) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = k.kid
	return t.SignedString(k.priv)
}

// EdDSAVerifier validates JWTs signed by an EdDSAKeyPair.
type EdDSAVerifier struct {
	keys   map[string]ed25519.PublicKey
	issuer string
	aud    []string
}

// NewEdDSAVerifier creates a verifier trusting the given keypairs.
func NewEdDSAVerifier(issuer string, aud []string, pairs ...*EdDSAKeyPair) *EdDSAVerifier {
	keys := make(map[string]ed25519.PublicKey, len(pairs))
	for _, p := range pairs {
		keys[p.kid] = p.pub
	}
	return &EdDSAVerifier{keys: keys, issuer: issuer, aud: aud}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("jwtx: missing kid")
		}
		pub, ok := v.keys[kid]
		if !ok {
			return nil, fmt.Errorf("jwtx: unknown kid %q", kid)
		}
		return pub, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, errors.New("jwtx: invalid token claims")
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.aud); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
