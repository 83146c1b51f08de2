/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustresolver

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/walletid/oid4vc/pkg/doc/token"
)

// TypVerifierAttestationJWT is the media subtype both the request object and
// the attestation it carries must declare in their typ header.
const TypVerifierAttestationJWT = "verifier-attestation+jwt"

// validateVerifierAttestation consumes the attestation token nested in the
// outer token's jwt header and returns the attested key as a JWKVerifier.
//
// Trust in the attestation's issuer is NOT established here. The caller must
// verify the attestation signature against a trusted issuer out-of-band
// before accepting the result.
func (s *Service) validateVerifierAttestation(req *ResolveRequest) (TrustVerifier, error) {
	attestationJWT := stringClaim(req.Header, "jwt")
	if attestationJWT == "" {
		return nil, fmt.Errorf("%w: jwt header is required", ErrMissingAttestationJWT)
	}

	if stringClaim(req.Header, "typ") != TypVerifierAttestationJWT {
		return nil, fmt.Errorf("%w: typ header must be %q", ErrAttestationTypMismatch, TypVerifierAttestationJWT)
	}

	nested, err := token.Parse(attestationJWT)
	if err != nil {
		return nil, fmt.Errorf("%w: parse attestation: %v", ErrBadVerifierAttestation, err)
	}

	if nested.HeaderValue("typ").String() != TypVerifierAttestationJWT {
		return nil, fmt.Errorf("%w: attestation typ must be %q", ErrBadVerifierAttestation, TypVerifierAttestationJWT)
	}

	clientID := stringClaim(req.Payload, "client_id")
	if nested.PayloadValue("sub").String() != clientID {
		return nil, fmt.Errorf("%w: sub must equal the client_id", ErrBadVerifierAttestation)
	}

	if nested.PayloadValue("iss").Type != gjson.String {
		return nil, fmt.Errorf("%w: iss must be a string", ErrBadVerifierAttestation)
	}

	if nested.PayloadValue("exp").Type != gjson.Number {
		return nil, fmt.Errorf("%w: exp must be a number", ErrBadVerifierAttestation)
	}

	attestedJWK := nested.PayloadValue("cnf.jwk")
	if !attestedJWK.IsObject() {
		return nil, fmt.Errorf("%w: cnf.jwk must be an object", ErrBadVerifierAttestation)
	}

	if err = checkAttestedRedirectURIs(nested, req); err != nil {
		return nil, err
	}

	key, err := parseJWKJSON([]byte(attestedJWK.Raw))
	if err != nil {
		return nil, fmt.Errorf("%w: parse cnf.jwk: %v", ErrBadVerifierAttestation, err)
	}

	return &JWKVerifier{JWK: key, TokenType: TokenTypeRequestObject}, nil
}

// checkAttestedRedirectURIs enforces the attestation's redirect_uris
// allowlist, when declared: the outer payload's redirect_uri must be one of
// its string entries.
func checkAttestedRedirectURIs(nested *token.Token, req *ResolveRequest) error {
	declared := nested.PayloadValue("redirect_uris")
	if !declared.Exists() {
		return nil
	}

	if !declared.IsArray() {
		return fmt.Errorf("%w: redirect_uris must be an array", ErrBadAttestationRedirectURIs)
	}

	allowed := make([]string, 0)

	for _, entry := range declared.Array() {
		if entry.Type != gjson.String {
			return fmt.Errorf("%w: redirect_uris entries must be strings", ErrBadAttestationRedirectURIs)
		}

		allowed = append(allowed, entry.String())
	}

	redirectURI := stringClaim(req.Payload, "redirect_uri")
	if redirectURI == "" || !lo.Contains(allowed, redirectURI) {
		return fmt.Errorf("%w: redirect_uri %q is not allowlisted", ErrBadAttestationRedirectURIs, redirectURI)
	}

	return nil
}
