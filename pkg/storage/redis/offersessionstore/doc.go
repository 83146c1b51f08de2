/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package offersessionstore

import (
	"encoding/json"
	"time"

	"github.com/walletid/oid4vc/pkg/service/credentialoffer"
)

type redisDocument struct {
	ExpireAt time.Time                `json:"expireAt"`
	Session  *credentialoffer.Session `json:"session"`
}

func (d *redisDocument) MarshalBinary() ([]byte, error) {
	return json.Marshal(d)
}

func (d *redisDocument) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, d)
}
