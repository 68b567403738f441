package jwtx

import (
	"fmt"

	"github.com/aussiebroadwan/hubsignup/pkg/cryptox"
	"github.com/aussiebroadwan/hubsignup/pkg/idx"
)

// SessionKeys bundles the signer, its published key set and a verifier for
// the sessions it mints.
type SessionKeys struct {
	Signer   Signer
	KeySet   *KeySet
	Verifier Verifier
}

// NewEphemeralSessionKeys generates an in-memory Ed25519 key. Every session
// signed with it becomes invalid when the process restarts.
func NewEphemeralSessionKeys(issuer string, audience []string) (*SessionKeys, error) {
	if issuer == "" {
		return nil, fmt.Errorf("jwtx: issuer is required")
	}

	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	signer, err := NewSignerEdDSA(idx.New().String(), pemKey)
	if err != nil {
		return nil, err
	}
	if err := signer.Validate(); err != nil {
		return nil, err
	}

	keys := NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, err
	}

	return &SessionKeys{
		Signer:   signer,
		KeySet:   keys,
		Verifier: NewCommonEdDSA(keys, issuer, audience),
	}, nil
}
