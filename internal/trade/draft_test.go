package trade

import (
	"reflect"
	"testing"

	"giftswap/internal/models"
)

func cardWithRates(physical, electronic string) *models.GiftCard {
	card := models.GiftCard{ID: "card-1", Name: "Amazon"}
	if physical != "" {
		card.PhysicalRate = strPtr(physical)
	}
	if electronic != "" {
		card.ElectronicRate = strPtr(electronic)
	}
	return &card
}

func TestValidatePhysicalOK(t *testing.T) {
	rules := Validate(Draft{
		Variant: VariantPhysical,
		Card:    cardWithRates("1500", ""),
		Amount:  "50",
		Images:  []string{"upload-1"},
	})
	if rules != nil {
		t.Fatalf("expected no rules, got %v", rules)
	}
}

func TestValidateElectronicOK(t *testing.T) {
	rules := Validate(Draft{
		Variant: VariantElectronic,
		Card:    cardWithRates("", "1450"),
		Amount:  "25.50",
		Code:    "XXXX-YYYY",
	})
	if rules != nil {
		t.Fatalf("expected no rules, got %v", rules)
	}
}

func TestValidateMissingVariant(t *testing.T) {
	rules := Validate(Draft{Card: cardWithRates("1500", ""), Amount: "50"})
	if !reflect.DeepEqual(rules, []Rule{RuleMissingVariant}) {
		t.Fatalf("unexpected rules: %v", rules)
	}
}

func TestValidateMissingCard(t *testing.T) {
	rules := Validate(Draft{Variant: VariantPhysical, Amount: "50", Images: []string{"u"}})
	if !reflect.DeepEqual(rules, []Rule{RuleMissingCard}) {
		t.Fatalf("unexpected rules: %v", rules)
	}
}

func TestValidateInvalidAmount(t *testing.T) {
	for _, amount := range []string{"abc", "", "0", "-5", "  "} {
		rules := Validate(Draft{
			Variant: VariantPhysical,
			Card:    cardWithRates("1500", ""),
			Amount:  amount,
			Images:  []string{"upload-1"},
		})
		if !reflect.DeepEqual(rules, []Rule{RuleInvalidAmount}) {
			t.Fatalf("amount %q: unexpected rules: %v", amount, rules)
		}
	}
}

func TestValidateRateUnavailable(t *testing.T) {
	// Physical rate missing entirely.
	rules := Validate(Draft{
		Variant: VariantPhysical,
		Card:    cardWithRates("", "1450"),
		Amount:  "50",
		Images:  []string{"upload-1"},
	})
	if !reflect.DeepEqual(rules, []Rule{RuleRateUnavailable}) {
		t.Fatalf("unexpected rules: %v", rules)
	}
	// Zero rate disables the variant just as a missing one does.
	rules = Validate(Draft{
		Variant: VariantPhysical,
		Card:    cardWithRates("0", ""),
		Amount:  "50",
		Images:  []string{"upload-1"},
	})
	if !reflect.DeepEqual(rules, []Rule{RuleRateUnavailable}) {
		t.Fatalf("unexpected rules for zero rate: %v", rules)
	}
}

func TestValidatePhysicalNeedsImages(t *testing.T) {
	rules := Validate(Draft{
		Variant: VariantPhysical,
		Card:    cardWithRates("1500", ""),
		Amount:  "50",
	})
	if !reflect.DeepEqual(rules, []Rule{RuleImagesRequired}) {
		t.Fatalf("unexpected rules: %v", rules)
	}
}

func TestValidateElectronicNeedsCode(t *testing.T) {
	rules := Validate(Draft{
		Variant: VariantElectronic,
		Card:    cardWithRates("", "1450"),
		Amount:  "50",
		Code:    "   ",
	})
	if !reflect.DeepEqual(rules, []Rule{RuleCodeRequired}) {
		t.Fatalf("unexpected rules: %v", rules)
	}
}

func TestValidatePhysicalCodeOptional(t *testing.T) {
	rules := Validate(Draft{
		Variant: VariantPhysical,
		Card:    cardWithRates("1500", ""),
		Amount:  "50",
		Images:  []string{"upload-1"},
	})
	if rules != nil {
		t.Fatalf("expected no rules without a code, got %v", rules)
	}
}

func TestValidateStopsAtFirstRule(t *testing.T) {
	// A draft missing everything still reports only the earliest violation.
	rules := Validate(Draft{})
	if !reflect.DeepEqual(rules, []Rule{RuleMissingVariant}) {
		t.Fatalf("unexpected rules: %v", rules)
	}
}

func TestValidateIdempotent(t *testing.T) {
	draft := Draft{
		Variant: VariantElectronic,
		Card:    cardWithRates("", "1450"),
		Amount:  "50",
	}
	first := Validate(draft)
	second := Validate(draft)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("validation not stable: %v vs %v", first, second)
	}
}
