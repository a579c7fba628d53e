package models

import (
	"time"
)

// Cents is a currency amount in minor units.
type Cents int64

// DateLayout is the calendar date format used for release dates.
const DateLayout = "2006-01-02"

// DestinationType is where a group vault pays out to.
type DestinationType string

const (
	DestinationBank   DestinationType = "bank"
	DestinationVendor DestinationType = "vendor"
)

// Valid reports whether d is a known destination type.
func (d DestinationType) Valid() bool {
	return d == DestinationBank || d == DestinationVendor
}

// CreatorMemberName is the member every group vault is created with.
const CreatorMemberName = "You"

// Leadership is the payout leader of a group vault. A nil *Leadership means no leader.
type Leadership struct {
	Name     string `json:"name" dynamodbav:"name"`
	Approved bool   `json:"approved" dynamodbav:"approved"`
}

// GroupVault represents a shared savings target owned by one user account.
type GroupVault struct {
	Id              string          `dynamodbav:"id"`
	UserId          string          `dynamodbav:"user_id"`
	Title           string          `dynamodbav:"title"`
	ReleaseDate     string          `dynamodbav:"release_date"`
	DestinationType DestinationType `dynamodbav:"destination_type"`
	DestinationName *string         `dynamodbav:"destination_name,omitempty"`
	Leader          *Leadership     `dynamodbav:"leader,omitempty"`
	TotalBalance    Cents           `dynamodbav:"total_balance"`
	Version         int64           `dynamodbav:"version"`
	SettledAt       *time.Time      `dynamodbav:"settled_at,omitempty"`
	CreatedAt       time.Time       `dynamodbav:"created_at"`
}

// LeaderName returns the leader's name, or "" when the vault has no leader.
func (v *GroupVault) LeaderName() string {
	if v.Leader == nil {
		return ""
	}
	return v.Leader.Name
}

// AllMembersApproved reports whether the members approved the current leader.
func (v *GroupVault) AllMembersApproved() bool {
	return v.Leader != nil && v.Leader.Approved
}

// Releasable reports whether the vault may settle at the given instant.
// The release date is an inclusive lower bound compared in UTC.
func (v *GroupVault) Releasable(now time.Time) bool {
	return now.UTC().Format(DateLayout) >= v.ReleaseDate
}

// GroupVaultMember is one contributor to a group vault, keyed by display name.
type GroupVaultMember struct {
	GroupVaultId        string    `dynamodbav:"group_vault_id"`
	MemberName          string    `dynamodbav:"member_name"`
	ContributionBalance Cents     `dynamodbav:"contribution_balance"`
	IsLeader            bool      `dynamodbav:"is_leader"`
	CreatedAt           time.Time `dynamodbav:"created_at"`
}

// Wallet is a user's cash wallet as reported by the ledger.
type Wallet struct {
	UserId      string `json:"user_id"`
	CashBalance Cents  `json:"cash_balance"`
}

// Direction describes which way money moved for an activity record.
type Direction string

const (
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
	DirectionInfo Direction = "info"
)

// ActivityType classifies activity records.
type ActivityType string

const (
	ActivityGroupVaultCreate       ActivityType = "group_vault_create"
	ActivityGroupVaultContribution ActivityType = "group_vault_contribution"
	ActivityGroupVaultWithdraw     ActivityType = "group_vault_withdraw"
	ActivityGroupVaultLeader       ActivityType = "group_vault_leader"
	ActivityGroupVaultSettle       ActivityType = "group_vault_settle"
	ActivityBankLinked             ActivityType = "bank_linked"
	ActivityWalletTopUp            ActivityType = "wallet_top_up"
	ActivityDemoCash               ActivityType = "demo_cash"
)

// ActivityRecord is an append-only log entry shown on the activity page.
type ActivityRecord struct {
	UserId       string       `dynamodbav:"user_id"`
	SortKey      string       `dynamodbav:"sk"`
	Id           string       `dynamodbav:"id"`
	ActivityType ActivityType `dynamodbav:"activity_type"`
	Direction    Direction    `dynamodbav:"direction"`
	Amount       Cents        `dynamodbav:"amount"`
	Counterparty *string      `dynamodbav:"counterparty,omitempty"`
	Note         string       `dynamodbav:"note"`
	OccurredAt   time.Time    `dynamodbav:"occurred_at"`
}

// ActivitySortKey orders activity records by time within a user's partition.
func ActivitySortKey(occurredAt time.Time, id string) string {
	return occurredAt.UTC().Format(time.RFC3339Nano) + "#" + id
}

// IntentKind names the workflow an intent belongs to.
type IntentKind string

const (
	IntentContribute IntentKind = "CONTRIBUTE"
	IntentWithdraw   IntentKind = "WITHDRAW"
	IntentSettle     IntentKind = "SETTLE"
)

// IntentStatus defines the possible states of a workflow intent.
type IntentStatus string

const (
	// PENDING: written before any mutation.
	PENDING IntentStatus = "PENDING"
	// LOCAL_APPLIED: the store step committed; the ledger credit is outstanding.
	LOCAL_APPLIED IntentStatus = "LOCAL_APPLIED"
	APPLIED       IntentStatus = "APPLIED"
	FAILED        IntentStatus = "FAILED"
)

// Intent is a write-ahead record of a money-moving group vault workflow.
type Intent struct {
	Id           string       `json:"id" dynamodbav:"id"`
	Kind         IntentKind   `json:"kind" dynamodbav:"kind"`
	Status       IntentStatus `json:"status" dynamodbav:"status"`
	UserId       string       `json:"user_id" dynamodbav:"user_id"`
	GroupVaultId string       `json:"group_vault_id" dynamodbav:"group_vault_id"`
	MemberName   string       `json:"member_name,omitempty" dynamodbav:"member_name,omitempty"`
	Amount       Cents        `json:"amount" dynamodbav:"amount"`
	Note         string       `json:"note,omitempty" dynamodbav:"note,omitempty"`
	Error        string       `json:"error,omitempty" dynamodbav:"error,omitempty"`
	CreatedAt    time.Time    `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" dynamodbav:"updated_at"`
}

// Terminal reports whether the intent needs no further processing.
func (i *Intent) Terminal() bool {
	return i.Status == APPLIED || i.Status == FAILED
}

// LinkedBank is an external bank account linked to a user's profile.
type LinkedBank struct {
	UserId       string    `dynamodbav:"user_id"`
	Id           string    `dynamodbav:"id"`
	BankName     string    `dynamodbav:"bank_name"`
	AccountLast4 string    `dynamodbav:"account_last4"`
	IsPrimary    bool      `dynamodbav:"is_primary"`
	CreatedAt    time.Time `dynamodbav:"created_at"`
}

// ProfileSettings holds the user-editable profile options. Every option is a
// pointer so a partial update can tell "unset" from "set to the zero value".
type ProfileSettings struct {
	UserId             string     `dynamodbav:"user_id"`
	FullName           *string    `dynamodbav:"full_name,omitempty"`
	BusinessName       *string    `dynamodbav:"business_name,omitempty"`
	Phone              *string    `dynamodbav:"phone,omitempty"`
	DailySendLimit     *Cents     `dynamodbav:"daily_send_limit,omitempty"`
	TwoFactorEnabled   *bool      `dynamodbav:"two_factor_enabled,omitempty"`
	BiometricLock      *bool      `dynamodbav:"biometric_lock,omitempty"`
	PrivacyMode        *bool      `dynamodbav:"privacy_mode,omitempty"`
	PromosEnabled      *bool      `dynamodbav:"promos_enabled,omitempty"`
	ShoppingEnabled    *bool      `dynamodbav:"shopping_enabled,omitempty"`
	PushNotifications  *bool      `dynamodbav:"push_notifications,omitempty"`
	EmailNotifications *bool      `dynamodbav:"email_notifications,omitempty"`
	FavoritePayee      *string    `dynamodbav:"favorite_payee,omitempty"`
	Theme              *string    `dynamodbav:"theme,omitempty"`
	UpdatedAt          *time.Time `dynamodbav:"updated_at,omitempty"`
}

// SettingField is one option present in a settings patch.
type SettingField struct {
	Name  string
	Value any
}

// Fields lists the options set in s, in a fixed order.
func (s *ProfileSettings) Fields() []SettingField {
	var fields []SettingField
	add := func(name string, set bool, value any) {
		if set {
			fields = append(fields, SettingField{Name: name, Value: value})
		}
	}
	add("full_name", s.FullName != nil, deref(s.FullName))
	add("business_name", s.BusinessName != nil, deref(s.BusinessName))
	add("phone", s.Phone != nil, deref(s.Phone))
	add("daily_send_limit", s.DailySendLimit != nil, deref(s.DailySendLimit))
	add("two_factor_enabled", s.TwoFactorEnabled != nil, deref(s.TwoFactorEnabled))
	add("biometric_lock", s.BiometricLock != nil, deref(s.BiometricLock))
	add("privacy_mode", s.PrivacyMode != nil, deref(s.PrivacyMode))
	add("promos_enabled", s.PromosEnabled != nil, deref(s.PromosEnabled))
	add("shopping_enabled", s.ShoppingEnabled != nil, deref(s.ShoppingEnabled))
	add("push_notifications", s.PushNotifications != nil, deref(s.PushNotifications))
	add("email_notifications", s.EmailNotifications != nil, deref(s.EmailNotifications))
	add("favorite_payee", s.FavoritePayee != nil, deref(s.FavoritePayee))
	add("theme", s.Theme != nil, deref(s.Theme))
	return fields
}

// Merge copies every option set in patch onto s.
func (s *ProfileSettings) Merge(patch *ProfileSettings) {
	if patch.FullName != nil {
		s.FullName = patch.FullName
	}
	if patch.BusinessName != nil {
		s.BusinessName = patch.BusinessName
	}
	if patch.Phone != nil {
		s.Phone = patch.Phone
	}
	if patch.DailySendLimit != nil {
		s.DailySendLimit = patch.DailySendLimit
	}
	if patch.TwoFactorEnabled != nil {
		s.TwoFactorEnabled = patch.TwoFactorEnabled
	}
	if patch.BiometricLock != nil {
		s.BiometricLock = patch.BiometricLock
	}
	if patch.PrivacyMode != nil {
		s.PrivacyMode = patch.PrivacyMode
	}
	if patch.PromosEnabled != nil {
		s.PromosEnabled = patch.PromosEnabled
	}
	if patch.ShoppingEnabled != nil {
		s.ShoppingEnabled = patch.ShoppingEnabled
	}
	if patch.PushNotifications != nil {
		s.PushNotifications = patch.PushNotifications
	}
	if patch.EmailNotifications != nil {
		s.EmailNotifications = patch.EmailNotifications
	}
	if patch.FavoritePayee != nil {
		s.FavoritePayee = patch.FavoritePayee
	}
	if patch.Theme != nil {
		s.Theme = patch.Theme
	}
	if patch.UpdatedAt != nil {
		s.UpdatedAt = patch.UpdatedAt
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
