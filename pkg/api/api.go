// Package api provides the request and response bodies of the HTTP API.
//
// Amounts cross the wire as decimal currency values ("12.50" or 12.5) and are
// converted to cents by the handlers.
package api

import (
	"encoding/json"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// Error is the body of every failed request.
type Error struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Ok is the body of a successful command with nothing else to report.
type Ok struct {
	Ok bool `json:"ok"`
}

// NewGroupVault defines model for NewGroupVault.
type NewGroupVault struct {
	Title           string  `json:"title"`
	ReleaseDate     string  `json:"release_date"`
	DestinationType *string `json:"destination_type,omitempty"`
	DestinationName *string `json:"destination_name,omitempty"`
	InvitePerson    *string `json:"invite_person,omitempty"`
}

// CreatedGroupVault defines model for CreatedGroupVault.
type CreatedGroupVault struct {
	Ok           bool   `json:"ok"`
	GroupVaultId string `json:"group_vault_id"`
}

// GroupVaultMovement is the body of a contribution or a withdrawal.
type GroupVaultMovement struct {
	GroupVaultId openapi_types.UUID `json:"group_vault_id"`
	MemberName   string             `json:"member_name"`
	Amount       decimal.Decimal    `json:"amount"`
}

// SetLeader defines model for SetLeader.
type SetLeader struct {
	GroupVaultId       openapi_types.UUID `json:"group_vault_id"`
	LeaderName         string             `json:"leader_name"`
	AllMembersApproved *bool              `json:"all_members_approved,omitempty"`
}

// SettleGroupVault defines model for SettleGroupVault.
type SettleGroupVault struct {
	GroupVaultId openapi_types.UUID `json:"group_vault_id"`
}

// Disbursement defines model for Disbursement.
type Disbursement struct {
	MemberName string          `json:"member_name"`
	Amount     decimal.Decimal `json:"amount"`
}

// Settlement defines model for Settlement.
type Settlement struct {
	Ok            bool            `json:"ok"`
	Note          string          `json:"note"`
	Amount        decimal.Decimal `json:"amount"`
	Disbursements []Disbursement  `json:"disbursements"`
}

// GroupVault defines model for GroupVault.
type GroupVault struct {
	Id                 string             `json:"id"`
	Title              string             `json:"title"`
	ReleaseDate        openapi_types.Date `json:"release_date"`
	DestinationType    string             `json:"destination_type"`
	DestinationName    *string            `json:"destination_name"`
	LeaderName         *string            `json:"leader_name"`
	AllMembersApproved bool               `json:"all_members_approved"`
	TotalBalance       decimal.Decimal    `json:"total_balance"`
	SettledAt          *time.Time         `json:"settled_at"`
	CreatedAt          time.Time          `json:"created_at"`
}

// GroupVaultMember defines model for GroupVaultMember.
type GroupVaultMember struct {
	MemberName          string          `json:"member_name"`
	ContributionBalance decimal.Decimal `json:"contribution_balance"`
	IsLeader            bool            `json:"is_leader"`
	CreatedAt           time.Time       `json:"created_at"`
}

// GroupVaultDetail defines model for GroupVaultDetail.
type GroupVaultDetail struct {
	GroupVault
	Members []GroupVaultMember `json:"members"`
}

// Wallet defines model for Wallet.
type Wallet struct {
	UserId      string          `json:"user_id"`
	CashBalance decimal.Decimal `json:"cash_balance"`
}

// Activity defines model for Activity.
type Activity struct {
	Id           string          `json:"id"`
	ActivityType string          `json:"activity_type"`
	Direction    string          `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	Counterparty *string         `json:"counterparty"`
	Note         string          `json:"note"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// ListActivityParams defines parameters for ListActivity.
type ListActivityParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// NewVault defines model for NewVault.
type NewVault struct {
	Name            string  `json:"name"`
	ReleaseDate     string  `json:"release_date"`
	DestinationType string  `json:"destination_type"`
	DestinationName *string `json:"destination_name,omitempty"`
	RoutingNumber   *string `json:"routing_number,omitempty"`
	AccountNumber   *string `json:"account_number,omitempty"`
}

// FundVault defines model for FundVault.
type FundVault struct {
	VaultId   string          `json:"vault_id"`
	Amount    decimal.Decimal `json:"amount"`
	Frequency *string         `json:"frequency,omitempty"`
	NextRunAt *string         `json:"next_run_at,omitempty"`
}

// WithdrawVault defines model for WithdrawVault.
type WithdrawVault struct {
	VaultId      string          `json:"vault_id"`
	Amount       decimal.Decimal `json:"amount"`
	Destination  string          `json:"destination"`
	Counterparty *string         `json:"counterparty,omitempty"`
}

// VaultWithdrawal is the result of a personal vault withdrawal.
type VaultWithdrawal struct {
	Ok     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
}

// TopUp defines model for TopUp.
type TopUp struct {
	Amount decimal.Decimal `json:"amount"`
}

// NewTransfer defines model for NewTransfer.
type NewTransfer struct {
	FromAccountId   string          `json:"from_account_id"`
	ToAccountId     string          `json:"to_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transaction_type"`
}

// PaymentRequest defines model for PaymentRequest.
type PaymentRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	Counterparty string          `json:"counterparty"`
}

// NewPool defines model for NewPool.
type NewPool struct {
	Amount decimal.Decimal `json:"amount"`
	Title  string          `json:"title"`
}

// NewLinkedBank defines model for NewLinkedBank.
type NewLinkedBank struct {
	BankName     string `json:"bank_name"`
	AccountLast4 string `json:"account_last4"`
	IsPrimary    *bool  `json:"is_primary,omitempty"`
}

// LinkedBank defines model for LinkedBank.
type LinkedBank struct {
	Id           string    `json:"id"`
	BankName     string    `json:"bank_name"`
	AccountLast4 string    `json:"account_last4"`
	IsPrimary    bool      `json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileSettings is both the settings patch accepted by the API and the
// settings it returns. Unknown keys are ignored.
type ProfileSettings struct {
	FullName           *string          `json:"full_name,omitempty"`
	BusinessName       *string          `json:"business_name,omitempty"`
	Phone              *string          `json:"phone,omitempty"`
	DailySendLimit     *decimal.Decimal `json:"daily_send_limit,omitempty"`
	TwoFactorEnabled   *bool            `json:"two_factor_enabled,omitempty"`
	BiometricLock      *bool            `json:"biometric_lock,omitempty"`
	PrivacyMode        *bool            `json:"privacy_mode,omitempty"`
	PromosEnabled      *bool            `json:"promos_enabled,omitempty"`
	ShoppingEnabled    *bool            `json:"shopping_enabled,omitempty"`
	PushNotifications  *bool            `json:"push_notifications,omitempty"`
	EmailNotifications *bool            `json:"email_notifications,omitempty"`
	FavoritePayee      *string          `json:"favorite_payee,omitempty"`
	Theme              *string          `json:"theme,omitempty"`
	UpdatedAt          *time.Time       `json:"updated_at,omitempty"`
}
