/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package token parses compact-serialized JWTs into their header and payload
// claim sets without verifying the signature. Every value it returns is
// untrusted wire input until the caller has run an external signature check.
package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	segmentsUnsigned = 2
	segmentsSigned   = 3
)

// Token is a parsed but unverified JWT.
type Token struct {
	Header  map[string]interface{}
	Payload map[string]interface{}

	headerJSON  []byte
	payloadJSON []byte
	raw         string
	signed      bool
}

// Parse splits raw compact serialization into header and payload claim sets.
// Two segments describe an unsigned token, three a signed one. No signature
// verification is performed.
func Parse(raw string) (*Token, error) {
	parts := strings.Split(raw, ".")

	if len(parts) != segmentsUnsigned && len(parts) != segmentsSigned {
		return nil, fmt.Errorf("invalid compact serialization: %d segments", len(parts))
	}

	headerJSON, err := decodeSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("decode header segment: %w", err)
	}

	payloadJSON, err := decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode payload segment: %w", err)
	}

	var header map[string]interface{}

	if err = json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("unmarshal header: %w", err)
	}

	var payload map[string]interface{}

	if err = json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	return &Token{
		Header:      header,
		Payload:     payload,
		headerJSON:  headerJSON,
		payloadJSON: payloadJSON,
		raw:         raw,
		signed:      len(parts) == segmentsSigned && parts[2] != "",
	}, nil
}

// Signed reports whether the token carries a non-empty signature segment.
func (t *Token) Signed() bool {
	return t.signed
}

// Raw returns the original compact serialization.
func (t *Token) Raw() string {
	return t.raw
}

// HeaderValue returns the header claim at the given gjson path.
func (t *Token) HeaderValue(path string) gjson.Result {
	return gjson.GetBytes(t.headerJSON, path)
}

// PayloadValue returns the payload claim at the given gjson path, e.g.
// "cnf.jwk" or "redirect_uris".
func (t *Token) PayloadValue(path string) gjson.Result {
	return gjson.GetBytes(t.payloadJSON, path)
}

func decodeSegment(segment string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
}
