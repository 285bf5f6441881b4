package validator

import "testing"

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("ada@example.com"); err != nil {
		t.Fatalf("expected valid email, got %v", err)
	}
	for _, email := range []string{"", "not-an-email", "a@b", "a b@c.com"} {
		if err := ValidateEmail(email); err != ErrInvalidEmail {
			t.Fatalf("email %q: expected ErrInvalidEmail, got %v", email, err)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	for _, username := range []string{"ada", "trader_99", "ABC"} {
		if err := ValidateUsername(username); err != nil {
			t.Fatalf("username %q: expected valid, got %v", username, err)
		}
	}
	for _, username := range []string{"", "ab", "has space", "way_too_long_for_a_username_field_here"} {
		if err := ValidateUsername(username); err != ErrInvalidUsername {
			t.Fatalf("username %q: expected ErrInvalidUsername, got %v", username, err)
		}
	}
}

func TestValidateAccountNumber(t *testing.T) {
	if err := ValidateAccountNumber("0123456789"); err != nil {
		t.Fatalf("expected valid account number, got %v", err)
	}
	for _, number := range []string{"", "12345", "12345678901", "12345abcde"} {
		if err := ValidateAccountNumber(number); err != ErrInvalidAccountNumber {
			t.Fatalf("number %q: expected ErrInvalidAccountNumber, got %v", number, err)
		}
	}
}
