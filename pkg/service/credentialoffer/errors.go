/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credentialoffer

import "errors"

var (
	ErrMissingSource            = errors.New("issuer metadata, credential offer, or offer URI required")
	ErrMissingConfigurations    = errors.New("issuer metadata missing credential_configurations_supported")
	ErrSchemeBaseURIMismatch    = errors.New("scheme does not match base URI")
	ErrInvalidTxCode            = errors.New("invalid tx_code")
	ErrInvalidPreAuthorizedCode = errors.New("invalid pre-authorized code")
	ErrInvalidUserPin           = errors.New("invalid user pin")
)
