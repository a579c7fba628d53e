package groupvault

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/money"
	"github.com/shopspring/decimal"
)

// Disbursement is one member's share of a settled vault.
type Disbursement struct {
	MemberName string       `json:"member_name"`
	Amount     models.Cents `json:"amount"`
}

// Plan is how a settlement pays out.
type Plan struct {
	Note          string
	Leader        *string
	Disbursements []Disbursement
}

// PlanSettlement pays everything to an approved leader. Without one, the total is
// split in proportion to contributions, rounding by largest remainder so the
// shares sum exactly to total.
func PlanSettlement(vault *models.GroupVault, members []models.GroupVaultMember) Plan {
	if vault.AllMembersApproved() {
		name := vault.Leader.Name
		return Plan{
			Note:          fmt.Sprintf("Leader %s assigned to receive payout at release.", name),
			Leader:        &name,
			Disbursements: []Disbursement{{MemberName: name, Amount: vault.TotalBalance}},
		}
	}

	shares := Proportional(vault.TotalBalance, orderMembers(members))
	parts := make([]string, 0, len(shares))
	for _, d := range shares {
		if d.Amount > 0 {
			parts = append(parts, d.MemberName+" "+money.Format(d.Amount))
		}
	}

	note := "No approved leader. No funds to disburse."
	if len(parts) > 0 {
		note = "No approved leader. Funds disbursed back by contribution to members: " + strings.Join(parts, ", ") + "."
	}
	return Plan{Note: note, Leader: leaderName(vault), Disbursements: shares}
}

func leaderName(vault *models.GroupVault) *string {
	if vault.Leader == nil {
		return nil
	}
	name := vault.Leader.Name
	return &name
}

// Proportional splits total across members weighted by contribution.
func Proportional(total models.Cents, members []models.GroupVaultMember) []Disbursement {
	out := make([]Disbursement, len(members))
	var weight models.Cents
	for i, m := range members {
		out[i].MemberName = m.MemberName
		weight += m.ContributionBalance
	}
	if total <= 0 || weight <= 0 {
		return out
	}

	type remainder struct {
		index int
		value decimal.Decimal
	}
	totalD := decimal.NewFromInt(int64(total))
	weightD := decimal.NewFromInt(int64(weight))
	rems := make([]remainder, 0, len(members))
	var assigned models.Cents
	for i, m := range members {
		if m.ContributionBalance <= 0 {
			continue
		}
		q, r := totalD.Mul(decimal.NewFromInt(int64(m.ContributionBalance))).QuoRem(weightD, 0)
		out[i].Amount = models.Cents(q.IntPart())
		assigned += out[i].Amount
		rems = append(rems, remainder{index: i, value: r})
	}

	sort.SliceStable(rems, func(a, b int) bool { return rems[a].value.GreaterThan(rems[b].value) })
	for k := 0; assigned < total; k++ {
		out[rems[k%len(rems)].index].Amount++
		assigned++
	}
	return out
}

// orderMembers puts the creator first, then members in joining order.
func orderMembers(members []models.GroupVaultMember) []models.GroupVaultMember {
	sorted := append([]models.GroupVaultMember(nil), members...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if (a.MemberName == models.CreatorMemberName) != (b.MemberName == models.CreatorMemberName) {
			return a.MemberName == models.CreatorMemberName
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.MemberName < b.MemberName
	})
	return sorted
}
