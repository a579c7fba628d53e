package mapping

import (
	"time"

	"github.com/chris/vault-wallet/pkg/api"
	"github.com/chris/vault-wallet/pkg/groupvault"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/money"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ToApiGroupVault converts a domain GroupVault model to an API GroupVault model.
func ToApiGroupVault(v *models.GroupVault) api.GroupVault {
	out := api.GroupVault{
		Id:                 v.Id,
		Title:              v.Title,
		DestinationType:    string(v.DestinationType),
		DestinationName:    v.DestinationName,
		AllMembersApproved: v.AllMembersApproved(),
		TotalBalance:       money.FromCents(v.TotalBalance),
		SettledAt:          v.SettledAt,
		CreatedAt:          v.CreatedAt,
	}
	if d, err := time.Parse(models.DateLayout, v.ReleaseDate); err == nil {
		out.ReleaseDate = openapi_types.Date{Time: d}
	}
	if name := v.LeaderName(); name != "" {
		out.LeaderName = &name
	}
	return out
}

// ToApiGroupVaults converts a list of domain group vaults.
func ToApiGroupVaults(vaults []models.GroupVault) []api.GroupVault {
	out := make([]api.GroupVault, len(vaults))
	for i := range vaults {
		out[i] = ToApiGroupVault(&vaults[i])
	}
	return out
}

// ToApiGroupVaultDetail converts a vault and its members.
func ToApiGroupVaultDetail(d *groupvault.Detail) api.GroupVaultDetail {
	members := make([]api.GroupVaultMember, len(d.Members))
	for i, m := range d.Members {
		members[i] = api.GroupVaultMember{
			MemberName:          m.MemberName,
			ContributionBalance: money.FromCents(m.ContributionBalance),
			IsLeader:            m.IsLeader,
			CreatedAt:           m.CreatedAt,
		}
	}
	return api.GroupVaultDetail{GroupVault: ToApiGroupVault(d.Vault), Members: members}
}

// ToApiSettlement converts a settlement result.
func ToApiSettlement(r *groupvault.SettleResult) api.Settlement {
	disbursements := make([]api.Disbursement, len(r.Disbursements))
	for i, d := range r.Disbursements {
		disbursements[i] = api.Disbursement{MemberName: d.MemberName, Amount: money.FromCents(d.Amount)}
	}
	return api.Settlement{
		Ok:            true,
		Note:          r.Note,
		Amount:        money.FromCents(r.Amount),
		Disbursements: disbursements,
	}
}

// ToApiWallet converts a domain Wallet model to an API Wallet model.
func ToApiWallet(w *models.Wallet) api.Wallet {
	return api.Wallet{UserId: w.UserId, CashBalance: money.FromCents(w.CashBalance)}
}

// ToApiActivity converts a domain ActivityRecord to an API Activity model.
func ToApiActivity(a *models.ActivityRecord) api.Activity {
	return api.Activity{
		Id:           a.Id,
		ActivityType: string(a.ActivityType),
		Direction:    string(a.Direction),
		Amount:       money.FromCents(a.Amount),
		Counterparty: a.Counterparty,
		Note:         a.Note,
		OccurredAt:   a.OccurredAt,
	}
}

func ToApiLinkedBank(b *models.LinkedBank) api.LinkedBank {
	return api.LinkedBank{
		Id:           b.Id,
		BankName:     b.BankName,
		AccountLast4: b.AccountLast4,
		IsPrimary:    b.IsPrimary,
		CreatedAt:    b.CreatedAt,
	}
}

func ToApiProfileSettings(s *models.ProfileSettings) api.ProfileSettings {
	out := api.ProfileSettings{
		FullName:           s.FullName,
		BusinessName:       s.BusinessName,
		Phone:              s.Phone,
		TwoFactorEnabled:   s.TwoFactorEnabled,
		BiometricLock:      s.BiometricLock,
		PrivacyMode:        s.PrivacyMode,
		PromosEnabled:      s.PromosEnabled,
		ShoppingEnabled:    s.ShoppingEnabled,
		PushNotifications:  s.PushNotifications,
		EmailNotifications: s.EmailNotifications,
		FavoritePayee:      s.FavoritePayee,
		Theme:              s.Theme,
		UpdatedAt:          s.UpdatedAt,
	}
	if s.DailySendLimit != nil {
		limit := money.FromCents(*s.DailySendLimit)
		out.DailySendLimit = &limit
	}
	return out
}

// ToDomainSettingsPatch converts an API settings patch. A daily send limit must
// be zero or a positive amount with at most two decimal places.
func ToDomainSettingsPatch(userID string, p *api.ProfileSettings) (*models.ProfileSettings, error) {
	patch := &models.ProfileSettings{
		UserId:             userID,
		FullName:           p.FullName,
		BusinessName:       p.BusinessName,
		Phone:              p.Phone,
		TwoFactorEnabled:   p.TwoFactorEnabled,
		BiometricLock:      p.BiometricLock,
		PrivacyMode:        p.PrivacyMode,
		PromosEnabled:      p.PromosEnabled,
		ShoppingEnabled:    p.ShoppingEnabled,
		PushNotifications:  p.PushNotifications,
		EmailNotifications: p.EmailNotifications,
		FavoritePayee:      p.FavoritePayee,
		Theme:              p.Theme,
	}
	if p.DailySendLimit != nil {
		var limit models.Cents
		if !p.DailySendLimit.IsZero() {
			c, err := money.ToCents(*p.DailySendLimit)
			if err != nil {
				return nil, err
			}
			limit = c
		}
		patch.DailySendLimit = &limit
	}
	return patch, nil
}
