/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination credentialoffer_service_mocks_test.go -package credentialoffer_test -source=credentialoffer_service.go -mock_names sessionStore=MockSessionStore,pinGenerator=MockPinGenerator

package credentialoffer

import (
	"context"
	"fmt"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"
)

var logger = log.New("credentialoffer")

type sessionStore interface {
	Set(ctx context.Context, id string, session *Session) error
	Take(ctx context.Context, id string) (*Session, error)
}

type pinGenerator interface {
	Generate() string
	Validate(otpKey string, got string) bool
}

// Config defines configuration for Service.
type Config struct {
	SessionStore sessionStore
	PinGenerator pinGenerator
}

// Service builds issuance offers and owns their session lifecycle: an offer
// is stored keyed by its state identifier at creation and consumed exactly
// once at redemption.
type Service struct {
	factory      *Factory
	store        sessionStore
	pinGenerator pinGenerator
}

// NewService returns a new Service instance.
func NewService(config *Config) *Service {
	return &Service{
		factory:      NewFactory(),
		store:        config.SessionStore,
		pinGenerator: config.PinGenerator,
	}
}

// CreateOfferRequest is the request to create and store an issuance offer.
type CreateOfferRequest struct {
	BuildRequest

	UserPinRequired bool
}

// CreateOfferResponse is the built offer plus the session key it was stored
// under.
type CreateOfferResponse struct {
	*BuildResult

	StateID string
	UserPin string
}

// CreateOffer builds the offer and stores its session under the offer's
// state identifier: the pre-authorized code when one is set, the
// authorization-code issuer_state otherwise.
func (s *Service) CreateOffer(
	ctx context.Context,
	metadata *IssuerMetadata,
	req *CreateOfferRequest,
) (*CreateOfferResponse, error) {
	result, err := s.factory.Build(metadata, &req.BuildRequest)
	if err != nil {
		return nil, err
	}

	stateID := offerStateID(result)
	if stateID == "" {
		return nil, fmt.Errorf("built offer carries no state identifier")
	}

	var userPin string

	if req.UserPinRequired {
		userPin = s.pinGenerator.Generate()
	}

	session := &Session{
		ID:        stateID,
		Offer:     result.Payload,
		CreatedAt: time.Now().UnixMilli(),
		UserPin:   userPin,
	}

	if err = s.store.Set(ctx, stateID, session); err != nil {
		return nil, fmt.Errorf("store offer session: %w", err)
	}

	logger.Debugc(ctx, "Created credential offer session", log.WithState(stateID))

	return &CreateOfferResponse{
		BuildResult: result,
		StateID:     stateID,
		UserPin:     userPin,
	}, nil
}

// RedeemPreAuthorizedCode consumes the offer session stored under
// preAuthCode. The session is removed atomically before any check so that
// two concurrent redemptions can never both succeed.
func (s *Service) RedeemPreAuthorizedCode(
	ctx context.Context,
	preAuthCode string,
	userPin string,
) (*Session, error) {
	session, err := s.store.Take(ctx, preAuthCode)
	if err != nil {
		return nil, fmt.Errorf("take offer session: %w", err)
	}

	grant := preAuthorizedCodeGrant(session)
	if grant == nil || grant.PreAuthorizedCode != preAuthCode {
		return nil, ErrInvalidPreAuthorizedCode
	}

	if session.UserPin != "" {
		if err = ValidateTxCode(userPin); err != nil {
			return nil, err
		}

		if !s.pinGenerator.Validate(session.UserPin, userPin) {
			return nil, ErrInvalidUserPin
		}
	}

	return session, nil
}

func offerStateID(result *BuildResult) string {
	if result.Grants == nil {
		return ""
	}

	if result.Grants.PreAuthorizedCode != nil {
		return result.Grants.PreAuthorizedCode.PreAuthorizedCode
	}

	if result.Grants.AuthorizationCode != nil {
		return result.Grants.AuthorizationCode.IssuerState
	}

	return ""
}

func preAuthorizedCodeGrant(session *Session) *PreAuthorizedCodeGrant {
	if session.Offer == nil || session.Offer.Grants == nil {
		return nil
	}

	return session.Offer.Grants.PreAuthorizedCode
}
