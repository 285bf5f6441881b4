package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"giftswap/internal/models"
)

func TestBankAccountStoreCreate(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO bank_accounts") || !strings.Contains(query, "TRUE") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 5 || args[0] != "bank-1" || args[1] != "user-1" || args[3] != "0123456789" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewBankAccountStore(stubDB{})
	err := store.Create(ctx, execer, "bank-1", "user-1", "GTBank", "0123456789", "Ada Obi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBankAccountStoreListVisible(t *testing.T) {
	ctx := context.Background()
	store := NewBankAccountStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "visible = TRUE") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 1 || args[0] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*[]models.BankAccount) = []models.BankAccount{{ID: "bank-1", Visible: true}}
			return nil
		},
	})
	rows, err := store.ListVisible(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "bank-1" {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestBankAccountStoreHide(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "SET visible = FALSE") || !strings.Contains(query, "user_id = $2") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != "bank-1" || args[1] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewBankAccountStore(stubDB{})
	rows, err := store.Hide(ctx, execer, "bank-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}
}

func TestBankAccountStoreHideForeignAccount(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(context.Context, string, ...any) (sql.Result, error) {
			return stubResult{rows: 0}, nil
		},
	}
	store := NewBankAccountStore(stubDB{})
	rows, err := store.Hide(ctx, execer, "bank-1", "someone-else")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows affected, got %d", rows)
	}
}
