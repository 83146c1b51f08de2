/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustresolver

import (
	"crypto"
	_ "crypto/sha256" // hashes for jwk thumbprints
	_ "crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	jose "github.com/go-jose/go-jose/v3"
)

const thumbprintURIPrefix = "urn:ietf:params:oauth:jwk-thumbprint:"

// Service resolves a token's trust-verification method. It is stateless and
// safe for concurrent use.
type Service struct{}

// NewService returns a new Service instance.
func NewService() *Service {
	return &Service{}
}

// Resolve maps the token's header/payload and an optionally declared
// client_id_scheme to the TrustVerifier the caller must check the signature
// against. A declared scheme is dispatched strictly; absence of one falls
// through to auto-detection over the header contents.
func (s *Service) Resolve(req *ResolveRequest) (TrustVerifier, error) {
	if req.Scheme != "" {
		return s.resolveDeclaredScheme(req)
	}

	return s.autoDetect(req)
}

func (s *Service) resolveDeclaredScheme(req *ResolveRequest) (TrustVerifier, error) {
	switch req.Scheme {
	case ClientIDSchemeDID:
		return s.resolveDID(req)
	case ClientIDSchemePreRegistered:
		// Trust is established out-of-band; the key material is still
		// auto-detected from the header.
		return s.autoDetect(req)
	case ClientIDSchemeX509SanDNS, ClientIDSchemeX509SanURI:
		return s.resolveX5C(req)
	case ClientIDSchemeRedirectURI:
		if err := checkRedirectURIScheme(req); err != nil {
			return nil, err
		}

		return s.autoDetect(req)
	case ClientIDSchemeVerifierAttestation:
		return s.validateVerifierAttestation(req)
	case ClientIDSchemeEntityID:
		clientID := stringClaim(req.Payload, "client_id")
		if !strings.HasPrefix(clientID, "http") {
			return nil, fmt.Errorf("%w: client_id %q", ErrInvalidEntityIDScheme, clientID)
		}

		return &FederationVerifier{EntityID: clientID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownClientIDScheme, req.Scheme)
	}
}

// autoDetect picks the trust method from the header contents, first match
// wins: did-prefixed kid, then x5c, then jwk, then custom.
func (s *Service) autoDetect(req *ResolveRequest) (TrustVerifier, error) {
	if strings.HasPrefix(stringClaim(req.Header, "kid"), "did:") {
		return s.resolveDID(req)
	}

	if _, ok := req.Header["x5c"]; ok {
		return s.resolveX5C(req)
	}

	if _, ok := req.Header["jwk"]; ok {
		return s.resolveJWK(req)
	}

	return &CustomVerifier{}, nil
}

func (s *Service) resolveDID(req *ResolveRequest) (TrustVerifier, error) {
	kid := stringClaim(req.Header, "kid")

	if !strings.Contains(kid, "#") {
		return nil, fmt.Errorf(
			"%w: kid header must be a DID URL with a verification method fragment", ErrInvalidToken)
	}

	return &DIDVerifier{DIDURL: kid}, nil
}

func (s *Service) resolveX5C(req *ResolveRequest) (TrustVerifier, error) {
	raw, ok := req.Header["x5c"]
	if !ok {
		return nil, fmt.Errorf("%w: x5c header is missing", ErrInvalidToken)
	}

	chain, err := certificateChain(raw)
	if err != nil {
		return nil, err
	}

	return &X5CVerifier{
		Chain:  chain,
		Issuer: stringClaim(req.Payload, "iss"),
	}, nil
}

func certificateChain(raw interface{}) ([]string, error) {
	switch entries := raw.(type) {
	case []string:
		if len(entries) == 0 {
			return nil, fmt.Errorf("%w: x5c header is empty", ErrInvalidToken)
		}

		return entries, nil
	case []interface{}:
		if len(entries) == 0 {
			return nil, fmt.Errorf("%w: x5c header is empty", ErrInvalidToken)
		}

		chain := make([]string, 0, len(entries))

		for _, entry := range entries {
			cert, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("%w: x5c entries must be base64-encoded DER strings", ErrInvalidToken)
			}

			chain = append(chain, cert)
		}

		return chain, nil
	default:
		return nil, fmt.Errorf("%w: x5c header must be an array", ErrInvalidToken)
	}
}

func (s *Service) resolveJWK(req *ResolveRequest) (TrustVerifier, error) {
	raw, ok := req.Header["jwk"]
	if !ok {
		return nil, fmt.Errorf("%w: jwk header is missing", ErrInvalidToken)
	}

	jwkObject, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: jwk header must be a JSON object", ErrInvalidToken)
	}

	key, err := parseJWKObject(jwkObject)
	if err != nil {
		return nil, fmt.Errorf("%w: parse jwk header: %v", ErrInvalidToken, err)
	}

	if req.TokenType != TokenTypeIDToken {
		// Request objects and verifier attestations carry no self-binding
		// proof; the caller establishes issuer trust out-of-band.
		return &JWKVerifier{JWK: key, TokenType: req.TokenType}, nil
	}

	thumbprintURI := stringClaim(req.Payload, "sub_jwk")
	if thumbprintURI == "" {
		return nil, fmt.Errorf(
			"%w: identity assertion must carry a sub_jwk thumbprint URI", ErrInvalidToken)
	}

	if err = verifyThumbprint(key, thumbprintURI); err != nil {
		return nil, err
	}

	return &JWKVerifier{JWK: key, Thumbprint: thumbprintURI, TokenType: req.TokenType}, nil
}

// verifyThumbprint recomputes the thumbprint of key with the digest algorithm
// named by the RFC 9278 thumbprint URI and compares it against the URI's
// digest part.
func verifyThumbprint(key *jose.JSONWebKey, thumbprintURI string) error {
	hash, digest, err := parseThumbprintURI(thumbprintURI)
	if err != nil {
		return err
	}

	computed, err := key.Thumbprint(hash)
	if err != nil {
		return fmt.Errorf("%w: compute jwk thumbprint: %v", ErrInvalidToken, err)
	}

	if base64.RawURLEncoding.EncodeToString(computed) != digest {
		return fmt.Errorf("%w: sub_jwk does not match the presented jwk", ErrThumbprintMismatch)
	}

	return nil
}

func parseThumbprintURI(uri string) (crypto.Hash, string, error) {
	if !strings.HasPrefix(uri, thumbprintURIPrefix) {
		return 0, "", fmt.Errorf("%w: sub_jwk must be a jwk-thumbprint URI", ErrInvalidToken)
	}

	alg, digest, found := strings.Cut(strings.TrimPrefix(uri, thumbprintURIPrefix), ":")
	if !found || digest == "" {
		return 0, "", fmt.Errorf("%w: malformed jwk-thumbprint URI", ErrInvalidToken)
	}

	switch alg {
	case "sha-256":
		return crypto.SHA256, digest, nil
	case "sha-384":
		return crypto.SHA384, digest, nil
	case "sha-512":
		return crypto.SHA512, digest, nil
	default:
		return 0, "", fmt.Errorf("%w: unsupported thumbprint digest algorithm %q", ErrInvalidToken, alg)
	}
}

// checkRedirectURIScheme enforces the redirect_uri client_id_scheme: the
// redirect_uri claim must equal client_id and the token must be unsigned.
func checkRedirectURIScheme(req *ResolveRequest) error {
	clientID := stringClaim(req.Payload, "client_id")
	redirectURI := stringClaim(req.Payload, "redirect_uri")

	if redirectURI == "" || redirectURI != clientID {
		return fmt.Errorf("%w: redirect_uri %q, client_id %q", ErrClientIDMismatch, redirectURI, clientID)
	}

	if req.RawToken == "" {
		return fmt.Errorf("%w: raw token is required for the redirect_uri scheme", ErrInvalidToken)
	}

	if parts := strings.Split(req.RawToken, "."); len(parts) > 2 && parts[2] != "" {
		return fmt.Errorf("%w: redirect_uri scheme requires an unsigned token", ErrMustNotBeSigned)
	}

	return nil
}

func parseJWKObject(jwkObject map[string]interface{}) (*jose.JSONWebKey, error) {
	b, err := json.Marshal(jwkObject)
	if err != nil {
		return nil, err
	}

	return parseJWKJSON(b)
}

func parseJWKJSON(b []byte) (*jose.JSONWebKey, error) {
	key := &jose.JSONWebKey{}
	if err := key.UnmarshalJSON(b); err != nil {
		return nil, err
	}

	return key, nil
}

func stringClaim(claims map[string]interface{}, name string) string {
	v, ok := claims[name].(string)
	if !ok {
		return ""
	}

	return v
}
