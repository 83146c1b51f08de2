/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustresolver

import (
	jose "github.com/go-jose/go-jose/v3"
)

// TokenType identifies which protocol artifact a token represents. The JWK
// resolution path behaves differently for identity assertions (self-issued
// id_tokens), which must self-bind their key via a thumbprint claim.
type TokenType string

const (
	TokenTypeIDToken             TokenType = "id-token"
	TokenTypeRequestObject       TokenType = "request-object"
	TokenTypeVerifierAttestation TokenType = "verifier-attestation"
)

// ClientIDScheme is the client_id_scheme declared in an authorization request
// payload, as defined by OpenID4VP.
type ClientIDScheme string

const (
	ClientIDSchemeDID                 ClientIDScheme = "did"
	ClientIDSchemePreRegistered       ClientIDScheme = "pre-registered"
	ClientIDSchemeX509SanDNS          ClientIDScheme = "x509_san_dns"
	ClientIDSchemeX509SanURI          ClientIDScheme = "x509_san_uri"
	ClientIDSchemeRedirectURI         ClientIDScheme = "redirect_uri"
	ClientIDSchemeVerifierAttestation ClientIDScheme = "verifier_attestation"
	ClientIDSchemeEntityID            ClientIDScheme = "entity_id"
)

// TrustVerifier tells the caller which trust-establishment method applies to
// a token and carries the method-specific material needed to verify its
// signature. It is a closed union: exactly one variant exists per resolution,
// and each variant only carries fields that are valid for its method.
//
// Callers are expected to switch over the concrete type and hand the variant
// to their signature-verification callback.
type TrustVerifier interface {
	trustMethod() string
}

// DIDVerifier identifies the signer by a DID URL taken from the token's kid
// header. The DID URL always contains a fragment naming the verification
// method.
type DIDVerifier struct {
	DIDURL string
}

// X5CVerifier identifies the signer by an X.509 certificate chain from the
// token's x5c header. Chain is ordered: the first element is the signer's
// leaf certificate, base64-encoded DER.
type X5CVerifier struct {
	Chain  []string
	Issuer string
}

// JWKVerifier identifies the signer by a raw JWK from the token's header.
// Thumbprint is the RFC 9278 thumbprint URI the key was checked against; it
// is only set for identity assertions, where the check is mandatory. For
// other token types issuer trust must be established out-of-band.
type JWKVerifier struct {
	JWK        *jose.JSONWebKey
	Thumbprint string
	TokenType  TokenType
}

// CustomVerifier carries no trust material. The caller must verify the token
// entirely out-of-band.
type CustomVerifier struct{}

// FederationVerifier identifies the signer by an HTTPS entity identifier to
// be resolved through OpenID Federation.
type FederationVerifier struct {
	EntityID string
}

func (DIDVerifier) trustMethod() string        { return "did" }
func (X5CVerifier) trustMethod() string        { return "x5c" }
func (JWKVerifier) trustMethod() string        { return "jwk" }
func (CustomVerifier) trustMethod() string     { return "custom" }
func (FederationVerifier) trustMethod() string { return "openid-federation" }

// ResolveRequest carries the parsed parts of the token under resolution.
type ResolveRequest struct {
	// Header and Payload are the token's decoded claim sets.
	Header  map[string]interface{}
	Payload map[string]interface{}
	// Scheme is the client_id_scheme declared in the payload, if any. When
	// empty, resolution falls through to auto-detection.
	Scheme ClientIDScheme
	// RawToken is the original compact serialization. Required by schemes
	// that inspect the signature segment.
	RawToken string
	// TokenType steers the JWK thumbprint check.
	TokenType TokenType
}
