/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credentialoffer

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const schemeSeparator = "://"

// Factory builds issuance-offer payloads and their deep-link URIs. It is
// stateless and safe for concurrent use.
type Factory struct{}

// NewFactory returns a new Factory instance.
func NewFactory() *Factory {
	return &Factory{}
}

// Build assembles an offer from issuer metadata or a caller-supplied payload
// or offer URI, applies the grant precedence rules, and serializes the
// deep-link URI. Reapplying Build to its own output does not change the
// grants.
func (f *Factory) Build(metadata *IssuerMetadata, req *BuildRequest) (*BuildResult, error) {
	if metadata == nil && req.CredentialOffer == nil && req.CredentialOfferURI == "" {
		return nil, ErrMissingSource
	}

	scheme := resolveScheme(req)

	baseURI, err := resolveBaseURI(scheme, req, metadata)
	if err != nil {
		return nil, err
	}

	payload, err := buildPayload(metadata, req)
	if err != nil {
		return nil, err
	}

	applyGrants(payload, req)

	uri, err := serializeURI(scheme, baseURI, req.CredentialOfferURI, payload)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		Payload:            payload,
		CredentialOfferURI: req.CredentialOfferURI,
		URI:                uri,
		Scheme:             scheme,
		BaseURI:            baseURI,
	}

	if payload != nil {
		result.Grants = payload.Grants
	}

	return result, nil
}

// resolveScheme picks the deep-link scheme: an explicit option wins, else the
// base URI's scheme segment, else the fixed default.
func resolveScheme(req *BuildRequest) string {
	if req.Scheme != "" {
		return strings.TrimSuffix(req.Scheme, schemeSeparator)
	}

	if scheme, _, found := strings.Cut(req.BaseURI, schemeSeparator); found {
		return scheme
	}

	return DefaultScheme
}

func resolveBaseURI(scheme string, req *BuildRequest, metadata *IssuerMetadata) (string, error) {
	baseURI := req.BaseURI

	if baseURI == "" && strings.HasPrefix(scheme, "http") {
		if metadata == nil || metadata.CredentialIssuer == "" {
			return "", fmt.Errorf("%w: scheme %q requires a base URI", ErrSchemeBaseURIMismatch, scheme)
		}

		if !strings.HasPrefix(metadata.CredentialIssuer, scheme+schemeSeparator) {
			return "", fmt.Errorf("%w: issuer %q does not start with %q",
				ErrSchemeBaseURIMismatch, metadata.CredentialIssuer, scheme+schemeSeparator)
		}

		baseURI = metadata.CredentialIssuer
	}

	// The scheme prefix is never stored as part of the base URI.
	if _, rest, found := strings.Cut(baseURI, schemeSeparator); found {
		baseURI = rest
	}

	return baseURI, nil
}

func buildPayload(metadata *IssuerMetadata, req *BuildRequest) (*CredentialOffer, error) {
	if req.CredentialOffer != nil {
		return req.CredentialOffer.Clone(), nil
	}

	if metadata == nil {
		// Offer referenced purely by URI; there is no payload to synthesize.
		return nil, nil
	}

	if metadata.CredentialConfigurationsSupported == nil {
		return nil, ErrMissingConfigurations
	}

	ids := lo.Keys(metadata.CredentialConfigurationsSupported)
	sort.Strings(ids)

	return &CredentialOffer{
		CredentialIssuer:           metadata.CredentialIssuer,
		CredentialConfigurationIDs: ids,
	}, nil
}

// applyGrants applies the grant precedence rules: a supplied pre-authorized
// code replaces the pre-authorized-code grant outright, while the
// authorization-code grant is only populated when no pre-authorized code is
// given and no issuer_state exists yet.
func applyGrants(payload *CredentialOffer, req *BuildRequest) {
	if payload == nil {
		return
	}

	if payload.Grants == nil {
		payload.Grants = &Grants{}
	}

	if req.PreAuthorizedCode != "" {
		payload.Grants.PreAuthorizedCode = &PreAuthorizedCodeGrant{
			PreAuthorizedCode: req.PreAuthorizedCode,
			TxCode:            req.TxCode,
		}

		return
	}

	if payload.Grants.AuthorizationCode != nil && payload.Grants.AuthorizationCode.IssuerState != "" {
		return
	}

	issuerState := req.IssuerState
	if issuerState == "" {
		issuerState = uuid.NewString()
	}

	payload.Grants.AuthorizationCode = &AuthorizationCodeGrant{IssuerState: issuerState}
}

func serializeURI(scheme, baseURI, offerURI string, payload *CredentialOffer) (string, error) {
	// A pre-built redirecting link is passed through untouched.
	if strings.Contains(offerURI, "credential_offer_uri=") {
		return offerURI, nil
	}

	q := url.Values{}

	if offerURI != "" {
		q.Set("credential_offer_uri", offerURI)
	} else {
		b, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("marshal credential offer: %w", err)
		}

		q.Set("credential_offer", string(b))
	}

	return fmt.Sprintf("%s%s%s?%s", scheme, schemeSeparator, baseURI, q.Encode()), nil
}
