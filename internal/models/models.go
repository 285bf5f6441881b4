package models

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// GiftCard is a catalog entry. Rates are NGN per USD of face value; a NULL or
// zero rate means the variant is not currently tradable.
type GiftCard struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	ImageURL       *string   `db:"image_url" json:"image_url,omitempty"`
	PhysicalRate   *string   `db:"physical_rate" json:"physical_rate,omitempty"`
	ElectronicRate *string   `db:"electronic_rate" json:"electronic_rate,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type Trade struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	CardID         string     `db:"card_id" json:"card_id"`
	Variant        string     `db:"variant" json:"variant"`
	FaceValueMinor int64      `db:"face_value_minor" json:"face_value_minor"`
	Rate           string     `db:"rate" json:"rate"`
	PayoutMinor    int64      `db:"payout_minor" json:"payout_minor"`
	Code           *string    `db:"code" json:"code,omitempty"`
	Status         string     `db:"status" json:"status"`
	ReviewerID     *string    `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewReason   *string    `db:"review_reason" json:"review_reason,omitempty"`
	ReviewedAt     *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

type EvidenceUpload struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Path      string    `db:"path" json:"-"`
	URL       string    `db:"url" json:"url"`
	TradeID   *string   `db:"trade_id" json:"trade_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Wallet struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	Currency  string    `db:"currency" json:"currency"`
	Balance   int64     `db:"balance" json:"balance"`
	IsSystem  bool      `db:"is_system" json:"is_system"`
	Purpose   string    `db:"purpose" json:"purpose"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type LedgerEntry struct {
	ID          string    `db:"id" json:"id"`
	ReferenceID string    `db:"reference_id" json:"reference_id"`
	WalletID    string    `db:"wallet_id" json:"wallet_id"`
	Amount      int64     `db:"amount" json:"amount"`
	Currency    string    `db:"currency" json:"currency"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type Withdrawal struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"user_id"`
	BankAccountID string     `db:"bank_account_id" json:"bank_account_id"`
	AmountMinor   int64      `db:"amount_minor" json:"amount_minor"`
	Status        string     `db:"status" json:"status"`
	ReviewerID    *string    `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewReason  *string    `db:"review_reason" json:"review_reason,omitempty"`
	ReviewedAt    *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

type BankAccount struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	BankName      string    `db:"bank_name" json:"bank_name"`
	AccountNumber string    `db:"account_number" json:"account_number"`
	HolderName    string    `db:"holder_name" json:"holder_name"`
	Visible       bool      `db:"visible" json:"visible"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type SupportMessage struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Sender    string    `db:"sender" json:"sender"`
	AgentID   *string   `db:"agent_id" json:"agent_id,omitempty"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
