package identity

import (
	"context"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/config"
)

// Challenger hands out the nonce the server expects to see signed.
type Challenger interface {
	Challenge(ctx context.Context) (string, error)
}

// Ed25519Source signs a server challenge with a local private key.
// The credential is "<challenge>.<signature>", both standard base64.
type Ed25519Source struct {
	key        ed25519.PrivateKey
	challenger Challenger
}

func NewEd25519Source(key ed25519.PrivateKey, challenger Challenger) *Ed25519Source {
	return &Ed25519Source{key: key, challenger: challenger}
}

func (s *Ed25519Source) Name() string { return config.ProviderEd25519 }

func (s *Ed25519Source) Credential(ctx context.Context) (Credential, error) {
	challengeB64, err := s.challenger.Challenge(ctx)
	if err != nil {
		return Credential{}, declined(ctx, "ed25519 challenge", fmt.Errorf("failed to get challenge: %w", err))
	}

	sig, err := Sign(s.key, challengeB64)
	if err != nil {
		return Credential{}, err
	}

	return Credential{Provider: s.Name(), Value: challengeB64 + "." + sig}, nil
}

// Sign decodes a base64 challenge and returns the base64 signature over it.
func Sign(key ed25519.PrivateKey, challengeB64 string) (string, error) {
	challenge, err := base64.StdEncoding.DecodeString(challengeB64)
	if err != nil {
		return "", fmt.Errorf("invalid challenge encoding: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ed25519.Sign(key, challenge)), nil
}

func LoadPrivateKey(filename string) (ed25519.PrivateKey, error) {
	privKeyBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKey(privKeyBytes)
}

// ParsePrivateKey reads a PKCS#8 PEM Ed25519 private key.
func ParsePrivateKey(pemBytes []byte) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}
	privKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	edPriv, ok := privKey.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("not an Ed25519 private key")
	}
	return edPriv, nil
}
