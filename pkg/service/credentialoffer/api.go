/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credentialoffer

import (
	"context"
	"time"
)

const (
	// DefaultScheme is the deep-link scheme used when the caller supplies
	// neither a scheme nor a base URI it can be derived from.
	DefaultScheme = "openid-credential-offer"

	// GrantTypeAuthorizationCode is the grants key of the authorization code
	// flow.
	GrantTypeAuthorizationCode = "authorization_code"

	// GrantTypePreAuthorizedCode is the grants key of the pre-authorized code
	// flow.
	GrantTypePreAuthorizedCode = "urn:ietf:params:oauth:grant-type:pre-authorized_code"
)

// AuthorizationCodeGrant correlates an authorization request with a stored
// offer session through issuer_state.
type AuthorizationCodeGrant struct {
	IssuerState string `json:"issuer_state,omitempty"`
}

// PreAuthorizedCodeGrant carries a single-use code granting issuance without
// interactive authorization.
type PreAuthorizedCodeGrant struct {
	PreAuthorizedCode string  `json:"pre-authorized_code"`
	TxCode            *TxCode `json:"tx_code,omitempty"`
}

// TxCode describes the transaction code the wallet must collect from the
// user alongside a pre-authorized code.
type TxCode struct {
	InputMode   string `json:"input_mode,omitempty"`
	Length      int    `json:"length,omitempty"`
	Description string `json:"description,omitempty"`
}

// Grants holds the offer's grants. At most one of the two is meaningfully
// populated per offer: a supplied pre-authorized code always displaces the
// authorization code grant.
type Grants struct {
	AuthorizationCode *AuthorizationCodeGrant `json:"authorization_code,omitempty"`
	PreAuthorizedCode *PreAuthorizedCodeGrant `json:"urn:ietf:params:oauth:grant-type:pre-authorized_code,omitempty"`
}

// CredentialOffer is the issuance offer payload handed to the wallet, either
// by value or by reference through a hosted offer URI.
type CredentialOffer struct {
	CredentialIssuer           string   `json:"credential_issuer,omitempty"`
	CredentialConfigurationIDs []string `json:"credential_configuration_ids,omitempty"`
	Grants                     *Grants  `json:"grants,omitempty"`
}

// Clone returns a deep copy of the offer.
func (o *CredentialOffer) Clone() *CredentialOffer {
	if o == nil {
		return nil
	}

	clone := *o

	if o.CredentialConfigurationIDs != nil {
		clone.CredentialConfigurationIDs = append([]string(nil), o.CredentialConfigurationIDs...)
	}

	if o.Grants != nil {
		grants := *o.Grants

		if o.Grants.AuthorizationCode != nil {
			authCode := *o.Grants.AuthorizationCode
			grants.AuthorizationCode = &authCode
		}

		if o.Grants.PreAuthorizedCode != nil {
			preAuth := *o.Grants.PreAuthorizedCode

			if o.Grants.PreAuthorizedCode.TxCode != nil {
				txCode := *o.Grants.PreAuthorizedCode.TxCode
				preAuth.TxCode = &txCode
			}

			grants.PreAuthorizedCode = &preAuth
		}

		clone.Grants = &grants
	}

	return &clone
}

// IssuerMetadata is the slice of the issuer's published metadata the offer
// factory consumes.
type IssuerMetadata struct {
	CredentialIssuer                  string                 `json:"credential_issuer"`
	CredentialConfigurationsSupported map[string]interface{} `json:"credential_configurations_supported"`
}

// BuildRequest are the caller-supplied options for building an offer.
type BuildRequest struct {
	// CredentialOffer, when set, is used verbatim instead of synthesizing a
	// payload from issuer metadata.
	CredentialOffer *CredentialOffer
	// CredentialOfferURI is a pre-built URI the offer is referenced by.
	CredentialOfferURI string
	Scheme             string
	BaseURI            string
	PreAuthorizedCode  string
	TxCode             *TxCode
	IssuerState        string
}

// BuildResult is a built offer plus the derived addressing parts.
type BuildResult struct {
	Payload            *CredentialOffer
	CredentialOfferURI string
	// URI is the final deep link handed to the wallet.
	URI     string
	Scheme  string
	BaseURI string
	Grants  *Grants
}

// Session is a stored issuance-offer session.
type Session struct {
	// ID is the opaque caller-chosen key, unique within the store.
	ID string `json:"id"`
	// Offer is the issuance-offer payload.
	Offer *CredentialOffer `json:"offer"`
	// CreatedAt is set by the caller at insertion, in milliseconds since
	// epoch, and is immutable thereafter. Stores never re-stamp it.
	CreatedAt int64 `json:"createdAt"`
	// UserPin is the transaction code the wallet user must present to redeem
	// a pre-authorized code, when one was required.
	UserPin string `json:"userPin,omitempty"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	clone := *s
	clone.Offer = s.Offer.Clone()

	return &clone
}

// ExpiresAt returns the session's expiry deadline for the given ttl.
func (s *Session) ExpiresAt(ttl time.Duration) time.Time {
	return time.UnixMilli(s.CreatedAt).Add(ttl)
}

// SessionStore is the keyed, time-aware store of issuance-offer sessions.
// Implementations own their entries exclusively: callers only ever hold
// copies returned by read operations. Expiry is evaluated lazily; callers
// sweep with ClearExpired rather than relying on background timers.
type SessionStore interface {
	// Set inserts or replaces the session stored under id.
	Set(ctx context.Context, id string, session *Session) error
	// Get returns the session stored under id, or resterr.ErrDataNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Has reports whether a session is stored under id.
	Has(ctx context.Context, id string) (bool, error)
	// Delete removes the session stored under id and reports whether an
	// entry existed.
	Delete(ctx context.Context, id string) (bool, error)
	// Take atomically removes and returns a live session, enforcing
	// single-use consumption. Expired or absent sessions yield
	// resterr.ErrDataNotFound.
	Take(ctx context.Context, id string) (*Session, error)
	// ClearExpired removes every session whose creation time plus the store
	// ttl is at or before now.
	ClearExpired(ctx context.Context, now time.Time) error
	// ClearAll empties the store unconditionally.
	ClearAll(ctx context.Context) error
}
