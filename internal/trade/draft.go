package trade

import (
	"strings"

	"github.com/shopspring/decimal"

	"giftswap/internal/models"
)

// Rule identifies a violated submission requirement.
type Rule string

const (
	RuleMissingVariant  Rule = "missing_variant"
	RuleMissingCard     Rule = "missing_card"
	RuleInvalidAmount   Rule = "invalid_amount"
	RuleRateUnavailable Rule = "rate_unavailable"
	RuleImagesRequired  Rule = "images_required"
	RuleCodeRequired    Rule = "code_required"
)

// Draft is the not-yet-persisted trade a user is composing. Amount carries the
// raw user input so that "abc" fails validation rather than a parse further up.
type Draft struct {
	Variant Variant
	Card    *models.GiftCard
	Amount  string
	Code    string
	Images  []string
}

// Validate checks a draft in a fixed order and stops at the first violated
// rule. Physical trades need at least one evidence image and treat the code as
// optional; electronic trades need a non-blank code. The result is nil when
// the draft is submittable.
func Validate(d Draft) []Rule {
	if !d.Variant.Valid() {
		return []Rule{RuleMissingVariant}
	}
	if d.Card == nil {
		return []Rule{RuleMissingCard}
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(d.Amount))
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return []Rule{RuleInvalidAmount}
	}
	if ResolveRate(*d.Card, d.Variant).LessThanOrEqual(decimal.Zero) {
		return []Rule{RuleRateUnavailable}
	}
	if d.Variant == VariantPhysical && len(d.Images) == 0 {
		return []Rule{RuleImagesRequired}
	}
	if d.Variant == VariantElectronic && strings.TrimSpace(d.Code) == "" {
		return []Rule{RuleCodeRequired}
	}
	return nil
}
