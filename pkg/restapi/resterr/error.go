/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resterr

import (
	"errors"
)

var (
	// ErrDataNotFound is returned by storage lookups when no entry exists for
	// the given key. Absence is an expected outcome, not a failure.
	ErrDataNotFound = errors.New("data not found")
)
