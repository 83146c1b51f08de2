/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustresolver_test

import (
	"crypto"
	"encoding/base64"
	"encoding/json"
	"testing"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"

	"github.com/walletid/oid4vc/pkg/service/trustresolver"
)

// RFC 8037 appendix A.2 Ed25519 public key.
const testJWKJSON = `{"kty":"OKP","crv":"Ed25519","x":"11qYAYKxCrfVS_7TyWQHOg7hcvPapiMlrwIaaPcHURo"}`

func jwkHeaderValue(t *testing.T, jwkJSON string) map[string]interface{} {
	t.Helper()

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(jwkJSON), &m))

	return m
}

func thumbprintURI(t *testing.T, jwkJSON string) string {
	t.Helper()

	key := &jose.JSONWebKey{}
	require.NoError(t, key.UnmarshalJSON([]byte(jwkJSON)))

	tp, err := key.Thumbprint(crypto.SHA256)
	require.NoError(t, err)

	return "urn:ietf:params:oauth:jwk-thumbprint:sha-256:" + base64.RawURLEncoding.EncodeToString(tp)
}

func TestService_Resolve_AutoDetect(t *testing.T) {
	svc := trustresolver.NewService()

	t.Run("did kid with fragment", func(t *testing.T) {
		verifier, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:    map[string]interface{}{"kid": "did:example:123#key-1"},
			Payload:   map[string]interface{}{},
			TokenType: trustresolver.TokenTypeRequestObject,
		})
		require.NoError(t, err)

		did, ok := verifier.(*trustresolver.DIDVerifier)
		require.True(t, ok)
		assert.Equal(t, "did:example:123#key-1", did.DIDURL)
	})

	t.Run("did kid without fragment", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{"kid": "did:example:123"},
			Payload: map[string]interface{}{},
		})
		assert.ErrorIs(t, err, trustresolver.ErrInvalidToken)
	})

	t.Run("x5c chain", func(t *testing.T) {
		verifier, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header: map[string]interface{}{
				"x5c": []interface{}{"leaf-cert", "intermediate-cert"},
			},
			Payload:   map[string]interface{}{"iss": "https://rp.example.com"},
			TokenType: trustresolver.TokenTypeRequestObject,
		})
		require.NoError(t, err)

		x5c, ok := verifier.(*trustresolver.X5CVerifier)
		require.True(t, ok)
		assert.Equal(t, []string{"leaf-cert", "intermediate-cert"}, x5c.Chain)
		assert.Equal(t, "https://rp.example.com", x5c.Issuer)
	})

	t.Run("x5c chain as string slice", func(t *testing.T) {
		verifier, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{"x5c": []string{"leaf-cert"}},
			Payload: map[string]interface{}{},
		})
		require.NoError(t, err)

		x5c, ok := verifier.(*trustresolver.X5CVerifier)
		require.True(t, ok)
		assert.Equal(t, []string{"leaf-cert"}, x5c.Chain)
	})

	t.Run("empty x5c", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{"x5c": []interface{}{}},
			Payload: map[string]interface{}{},
		})
		assert.ErrorIs(t, err, trustresolver.ErrInvalidToken)
	})

	t.Run("x5c with non-string entry", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{"x5c": []interface{}{"leaf-cert", 42}},
			Payload: map[string]interface{}{},
		})
		assert.ErrorIs(t, err, trustresolver.ErrInvalidToken)
	})

	t.Run("jwk for request object skips thumbprint check", func(t *testing.T) {
		verifier, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:    map[string]interface{}{"jwk": jwkHeaderValue(t, testJWKJSON)},
			Payload:   map[string]interface{}{},
			TokenType: trustresolver.TokenTypeRequestObject,
		})
		require.NoError(t, err)

		jwk, ok := verifier.(*trustresolver.JWKVerifier)
		require.True(t, ok)
		require.NotNil(t, jwk.JWK)
		assert.Empty(t, jwk.Thumbprint)
		assert.Equal(t, trustresolver.TokenTypeRequestObject, jwk.TokenType)
	})

	t.Run("jwk header not an object", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{"jwk": "not-an-object"},
			Payload: map[string]interface{}{},
		})
		assert.ErrorIs(t, err, trustresolver.ErrInvalidToken)
	})

	t.Run("no recognized header falls back to custom", func(t *testing.T) {
		verifier, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{"alg": "ES256", "kid": "key-1"},
			Payload: map[string]interface{}{},
		})
		require.NoError(t, err)

		_, ok := verifier.(*trustresolver.CustomVerifier)
		assert.True(t, ok)
	})
}

func TestService_Resolve_IdentityAssertionThumbprint(t *testing.T) {
	svc := trustresolver.NewService()

	t.Run("matching thumbprint", func(t *testing.T) {
		verifier, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header: map[string]interface{}{"jwk": jwkHeaderValue(t, testJWKJSON)},
			Payload: map[string]interface{}{
				"sub_jwk": thumbprintURI(t, testJWKJSON),
			},
			TokenType: trustresolver.TokenTypeIDToken,
		})
		require.NoError(t, err)

		jwk, ok := verifier.(*trustresolver.JWKVerifier)
		require.True(t, ok)
		assert.Equal(t, thumbprintURI(t, testJWKJSON), jwk.Thumbprint)
	})

	t.Run("mutated jwk flips the outcome", func(t *testing.T) {
		// Flip one character of the x coordinate while keeping the sub_jwk
		// computed over the original key.
		mutated, err := sjson.Set(testJWKJSON, "x", "21qYAYKxCrfVS_7TyWQHOg7hcvPapiMlrwIaaPcHURo")
		require.NoError(t, err)

		_, err = svc.Resolve(&trustresolver.ResolveRequest{
			Header: map[string]interface{}{"jwk": jwkHeaderValue(t, mutated)},
			Payload: map[string]interface{}{
				"sub_jwk": thumbprintURI(t, testJWKJSON),
			},
			TokenType: trustresolver.TokenTypeIDToken,
		})
		assert.ErrorIs(t, err, trustresolver.ErrThumbprintMismatch)
	})

	t.Run("missing sub_jwk", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:    map[string]interface{}{"jwk": jwkHeaderValue(t, testJWKJSON)},
			Payload:   map[string]interface{}{},
			TokenType: trustresolver.TokenTypeIDToken,
		})
		assert.ErrorIs(t, err, trustresolver.ErrInvalidToken)
	})

	t.Run("sub_jwk is not a thumbprint URI", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:    map[string]interface{}{"jwk": jwkHeaderValue(t, testJWKJSON)},
			Payload:   map[string]interface{}{"sub_jwk": "plain-string"},
			TokenType: trustresolver.TokenTypeIDToken,
		})
		assert.ErrorIs(t, err, trustresolver.ErrInvalidToken)
	})

	t.Run("unsupported digest algorithm", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header: map[string]interface{}{"jwk": jwkHeaderValue(t, testJWKJSON)},
			Payload: map[string]interface{}{
				"sub_jwk": "urn:ietf:params:oauth:jwk-thumbprint:md5:AAAA",
			},
			TokenType: trustresolver.TokenTypeIDToken,
		})
		assert.ErrorIs(t, err, trustresolver.ErrInvalidToken)
	})
}

func TestService_Resolve_DeclaredScheme(t *testing.T) {
	svc := trustresolver.NewService()

	t.Run("did scheme forces DID resolution", func(t *testing.T) {
		verifier, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{"kid": "did:web:rp.example.com#key-2"},
			Payload: map[string]interface{}{},
			Scheme:  trustresolver.ClientIDSchemeDID,
		})
		require.NoError(t, err)

		did, ok := verifier.(*trustresolver.DIDVerifier)
		require.True(t, ok)
		assert.Equal(t, "did:web:rp.example.com#key-2", did.DIDURL)
	})

	t.Run("did scheme without fragment fails", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{"kid": "did:web:rp.example.com"},
			Payload: map[string]interface{}{},
			Scheme:  trustresolver.ClientIDSchemeDID,
		})
		assert.ErrorIs(t, err, trustresolver.ErrInvalidToken)
	})

	t.Run("pre-registered defers to auto-detection", func(t *testing.T) {
		verifier, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{"alg": "ES256"},
			Payload: map[string]interface{}{},
			Scheme:  trustresolver.ClientIDSchemePreRegistered,
		})
		require.NoError(t, err)

		_, ok := verifier.(*trustresolver.CustomVerifier)
		assert.True(t, ok)
	})

	t.Run("x509_san_dns without x5c header fails", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{"kid": "key-1"},
			Payload: map[string]interface{}{},
			Scheme:  trustresolver.ClientIDSchemeX509SanDNS,
		})
		assert.ErrorIs(t, err, trustresolver.ErrInvalidToken)
	})

	t.Run("x509_san_uri forces x5c resolution", func(t *testing.T) {
		verifier, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{"x5c": []interface{}{"leaf-cert"}},
			Payload: map[string]interface{}{"iss": "https://rp.example.com"},
			Scheme:  trustresolver.ClientIDSchemeX509SanURI,
		})
		require.NoError(t, err)

		_, ok := verifier.(*trustresolver.X5CVerifier)
		assert.True(t, ok)
	})

	t.Run("redirect_uri scheme with matching claims and unsigned token", func(t *testing.T) {
		verifier, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header: map[string]interface{}{"alg": "none"},
			Payload: map[string]interface{}{
				"client_id":    "https://rp.example.com/cb",
				"redirect_uri": "https://rp.example.com/cb",
			},
			Scheme:   trustresolver.ClientIDSchemeRedirectURI,
			RawToken: "eyJhbGciOiJub25lIn0.eyJzdWIiOiJhYmMifQ.",
		})
		require.NoError(t, err)

		_, ok := verifier.(*trustresolver.CustomVerifier)
		assert.True(t, ok)
	})

	t.Run("redirect_uri scheme with claim mismatch", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header: map[string]interface{}{},
			Payload: map[string]interface{}{
				"client_id":    "https://rp.example.com/cb",
				"redirect_uri": "https://attacker.example.com/cb",
			},
			Scheme:   trustresolver.ClientIDSchemeRedirectURI,
			RawToken: "eyJhbGciOiJub25lIn0.eyJzdWIiOiJhYmMifQ",
		})
		assert.ErrorIs(t, err, trustresolver.ErrClientIDMismatch)
	})

	t.Run("redirect_uri scheme with signed token", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header: map[string]interface{}{},
			Payload: map[string]interface{}{
				"client_id":    "https://rp.example.com/cb",
				"redirect_uri": "https://rp.example.com/cb",
			},
			Scheme:   trustresolver.ClientIDSchemeRedirectURI,
			RawToken: "eyJhbGciOiJFUzI1NiJ9.eyJzdWIiOiJhYmMifQ.c2ln",
		})
		assert.ErrorIs(t, err, trustresolver.ErrMustNotBeSigned)
	})

	t.Run("redirect_uri scheme without raw token", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header: map[string]interface{}{},
			Payload: map[string]interface{}{
				"client_id":    "https://rp.example.com/cb",
				"redirect_uri": "https://rp.example.com/cb",
			},
			Scheme: trustresolver.ClientIDSchemeRedirectURI,
		})
		assert.ErrorIs(t, err, trustresolver.ErrInvalidToken)
	})

	t.Run("entity_id scheme", func(t *testing.T) {
		verifier, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{},
			Payload: map[string]interface{}{"client_id": "https://federation.example.com/rp"},
			Scheme:  trustresolver.ClientIDSchemeEntityID,
		})
		require.NoError(t, err)

		fed, ok := verifier.(*trustresolver.FederationVerifier)
		require.True(t, ok)
		assert.Equal(t, "https://federation.example.com/rp", fed.EntityID)
	})

	t.Run("entity_id scheme with non-HTTP client_id", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{},
			Payload: map[string]interface{}{"client_id": "did:example:123"},
			Scheme:  trustresolver.ClientIDSchemeEntityID,
		})
		assert.ErrorIs(t, err, trustresolver.ErrInvalidEntityIDScheme)
	})

	t.Run("unknown scheme", func(t *testing.T) {
		_, err := svc.Resolve(&trustresolver.ResolveRequest{
			Header:  map[string]interface{}{},
			Payload: map[string]interface{}{},
			Scheme:  "made-up-scheme",
		})
		assert.ErrorIs(t, err, trustresolver.ErrUnknownClientIDScheme)
	})
}
