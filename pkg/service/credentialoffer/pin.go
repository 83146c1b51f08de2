/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credentialoffer

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

const (
	maxNumber = 10
	pinLength = 6
)

// Transaction codes are numeric strings of at most 8 digits.
var txCodePattern = regexp.MustCompile(`^[0-9]{1,8}$`)

// ValidateTxCode checks that code is a well-formed transaction code before it
// is compared against the stored one.
func ValidateTxCode(code string) error {
	if !txCodePattern.MatchString(code) {
		return fmt.Errorf("%w: must be 1 to 8 digits", ErrInvalidTxCode)
	}

	return nil
}

type PinGenerator struct {
}

func NewPinGenerator() *PinGenerator {
	return &PinGenerator{}
}

func (p *PinGenerator) Generate() string {
	var finalPin strings.Builder

	for i := 0; i < pinLength; i++ {
		finalPin.WriteString(fmt.Sprint(rand.Int31n(maxNumber))) //nolint:gosec
	}

	return finalPin.String()
}

func (p *PinGenerator) Validate(otpKey string, got string) bool { // in future there will be more implementations
	return otpKey == got
}
