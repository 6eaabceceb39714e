// Package fees holds the platform fee policy applied when the provider does
// not report a fee breakdown of its own.
package fees

import (
	"taskmarket/internal/money"
)

type Policy struct {
	PlatformFeeBps int64
}

type Snapshot struct {
	PlatformFeeBps int64  `json:"platform_fee_bps"`
	Source         string `json:"source"`
}

func (p Policy) CurrentSnapshot() Snapshot {
	return Snapshot{PlatformFeeBps: p.PlatformFeeBps, Source: "fixed"}
}

// PlatformFee computes the fee in base units for a given gross amount.
func (p Policy) PlatformFee(amount string) (string, error) {
	return money.BpsOf(amount, p.PlatformFeeBps)
}
