package groupvaults

import (
	"context"
	"net/http"

	"github.com/chris/vault-wallet/pkg/api"
	"github.com/chris/vault-wallet/pkg/groupvault"
	"github.com/chris/vault-wallet/pkg/handlers/respond"
	"github.com/chris/vault-wallet/pkg/mapping"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/go-chi/chi/v5"
)

// Service is the set of group vault workflows the handlers call.
type Service interface {
	Create(ctx context.Context, in groupvault.CreateInput) (string, error)
	Contribute(ctx context.Context, in groupvault.Movement) error
	Withdraw(ctx context.Context, in groupvault.Movement) error
	AssignLeader(ctx context.Context, in groupvault.LeaderInput) error
	Settle(ctx context.Context, userID, groupVaultID string) (*groupvault.SettleResult, error)
	Get(ctx context.Context, userID, groupVaultID string) (*groupvault.Detail, error)
	List(ctx context.Context, userID string) ([]models.GroupVault, error)
}

var _ Service = (*groupvault.Service)(nil)

// GroupVaultsHandler holds the dependencies for group vault handlers.
type GroupVaultsHandler struct {
	Service Service
}

// NewGroupVaultsHandler creates a new GroupVaultsHandler.
func NewGroupVaultsHandler(service Service) *GroupVaultsHandler {
	return &GroupVaultsHandler{Service: service}
}

// CreateGroupVault handles POST /api/group-vault/create.
func (h *GroupVaultsHandler) CreateGroupVault(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var body api.NewGroupVault
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	in := groupvault.CreateInput{
		UserID:          userID,
		Title:           respond.Text(body.Title),
		ReleaseDate:     respond.Text(body.ReleaseDate),
		DestinationName: respond.OptionalText(body.DestinationName),
	}
	if body.DestinationType != nil {
		in.DestinationType = models.DestinationType(respond.Text(*body.DestinationType))
	}
	if invitee := respond.OptionalText(body.InvitePerson); invitee != nil {
		in.InvitePerson = *invitee
	}

	id, err := h.Service.Create(r.Context(), in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, api.CreatedGroupVault{Ok: true, GroupVaultId: id})
}

// Contribute handles POST /api/group-vault/contribute.
func (h *GroupVaultsHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.Service.Contribute)
}

// Withdraw handles POST /api/group-vault/withdraw.
func (h *GroupVaultsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.Service.Withdraw)
}

func (h *GroupVaultsHandler) move(w http.ResponseWriter, r *http.Request, workflow func(context.Context, groupvault.Movement) error) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var body api.GroupVaultMovement
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	amount, err := respond.Cents(body.Amount, "Invalid payload")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	err = workflow(r.Context(), groupvault.Movement{
		UserID:       userID,
		GroupVaultID: respond.ID(body.GroupVaultId),
		MemberName:   respond.Text(body.MemberName),
		Amount:       amount,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w)
}

// SetLeader handles POST /api/group-vault/set-leader.
func (h *GroupVaultsHandler) SetLeader(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var body api.SetLeader
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	err := h.Service.AssignLeader(r.Context(), groupvault.LeaderInput{
		UserID:             userID,
		GroupVaultID:       respond.ID(body.GroupVaultId),
		LeaderName:         respond.Text(body.LeaderName),
		AllMembersApproved: body.AllMembersApproved != nil && *body.AllMembersApproved,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w)
}

// Settle handles POST /api/group-vault/settle.
func (h *GroupVaultsHandler) Settle(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var body api.SettleGroupVault
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	result, err := h.Service.Settle(r.Context(), userID, respond.ID(body.GroupVaultId))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiSettlement(result))
}

// ListGroupVaults handles GET /api/group-vaults.
func (h *GroupVaultsHandler) ListGroupVaults(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	vaults, err := h.Service.List(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiGroupVaults(vaults))
}

// GetGroupVault handles GET /api/group-vaults/{id}.
func (h *GroupVaultsHandler) GetGroupVault(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	detail, err := h.Service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiGroupVaultDetail(detail))
}

// Routes mounts the group vault endpoints.
func (h *GroupVaultsHandler) Routes(r chi.Router) {
	r.Post("/group-vault/create", h.CreateGroupVault)
	r.Post("/group-vault/contribute", h.Contribute)
	r.Post("/group-vault/withdraw", h.Withdraw)
	r.Post("/group-vault/set-leader", h.SetLeader)
	r.Post("/group-vault/settle", h.Settle)
	r.Get("/group-vaults", h.ListGroupVaults)
	r.Get("/group-vaults/{id}", h.GetGroupVault)
}
