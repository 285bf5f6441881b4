// Package trade holds the intake rules for gift-card trade submissions: rate
// resolution, payout computation, and draft validation. Everything here is
// pure; persistence and review live in the services layer.
package trade

import (
	"github.com/shopspring/decimal"

	"giftswap/internal/models"
)

type Variant string

const (
	VariantPhysical   Variant = "physical"
	VariantElectronic Variant = "electronic"
)

func (v Variant) Valid() bool {
	return v == VariantPhysical || v == VariantElectronic
}

// ResolveRate picks the catalog rate for the requested variant. A missing or
// unparseable rate resolves to zero, which marks the variant as not tradable.
func ResolveRate(card models.GiftCard, variant Variant) decimal.Decimal {
	var raw *string
	switch variant {
	case VariantPhysical:
		raw = card.PhysicalRate
	case VariantElectronic:
		raw = card.ElectronicRate
	default:
		return decimal.Zero
	}
	if raw == nil {
		return decimal.Zero
	}
	rate, err := decimal.NewFromString(*raw)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// ComputePayout returns faceValueUSD multiplied by rate, exactly. Non-positive
// inputs yield zero. No rounding happens here; callers round only when
// converting to stored minor units.
func ComputePayout(faceValueUSD, rate decimal.Decimal) decimal.Decimal {
	if faceValueUSD.LessThanOrEqual(decimal.Zero) || rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return faceValueUSD.Mul(rate)
}

// PayoutMinor converts a face value in USD cents to a payout in NGN kobo at
// the given rate, banker-rounded at the kobo boundary.
func PayoutMinor(faceValueMinor int64, rate decimal.Decimal) int64 {
	if faceValueMinor <= 0 || rate.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	return decimal.NewFromInt(faceValueMinor).Mul(rate).RoundBank(0).IntPart()
}
