/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustresolver

import "errors"

var (
	ErrInvalidToken               = errors.New("invalid token")
	ErrUnknownClientIDScheme      = errors.New("unknown client_id_scheme")
	ErrClientIDMismatch           = errors.New("redirect_uri does not match client_id")
	ErrMustNotBeSigned            = errors.New("token must not be signed")
	ErrInvalidEntityIDScheme      = errors.New("entity_id scheme requires an HTTP client_id")
	ErrThumbprintMismatch         = errors.New("jwk thumbprint mismatch")
	ErrMissingAttestationJWT      = errors.New("verifier attestation jwt is missing")
	ErrAttestationTypMismatch     = errors.New("verifier attestation typ mismatch")
	ErrBadVerifierAttestation     = errors.New("bad verifier attestation")
	ErrBadAttestationRedirectURIs = errors.New("bad verifier attestation redirect_uris")
)
