package groupvault

import (
	"context"
	"strings"
	"time"

	"github.com/chris/vault-wallet/pkg/apperrors"
	"github.com/chris/vault-wallet/pkg/models"
)

// CreateInput describes a new group vault.
type CreateInput struct {
	UserID          string
	Title           string
	ReleaseDate     string
	DestinationType models.DestinationType
	DestinationName *string
	InvitePerson    string
}

// Create opens a group vault with the caller as member "You" and, optionally,
// one invited member. It returns the new vault's id.
func (s *Service) Create(ctx context.Context, in CreateInput) (id string, err error) {
	defer func() { s.record("create", err) }()

	title := strings.TrimSpace(in.Title)
	releaseDate := strings.TrimSpace(in.ReleaseDate)
	if title == "" || releaseDate == "" {
		return "", apperrors.Invalid("Title and release date are required")
	}
	if _, err := time.Parse(models.DateLayout, releaseDate); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidPayload, "Release date must be YYYY-MM-DD", err)
	}
	destType := in.DestinationType
	if destType == "" {
		destType = models.DestinationVendor
	}
	if !destType.Valid() {
		return "", apperrors.Invalid("Invalid destination type")
	}
	var destName *string
	if in.DestinationName != nil {
		if name := strings.TrimSpace(*in.DestinationName); name != "" {
			destName = &name
		}
	}

	now := s.now()
	vault := &models.GroupVault{
		Id:              s.newID(),
		UserId:          in.UserID,
		Title:           title,
		ReleaseDate:     releaseDate,
		DestinationType: destType,
		DestinationName: destName,
		CreatedAt:       now,
	}

	members := []models.GroupVaultMember{
		{GroupVaultId: vault.Id, MemberName: models.CreatorMemberName, CreatedAt: now},
	}
	var invitee *string
	if name := strings.TrimSpace(in.InvitePerson); name != "" && name != models.CreatorMemberName {
		invitee = &name
		members = append(members, models.GroupVaultMember{GroupVaultId: vault.Id, MemberName: name, CreatedAt: now})
	}

	activity := s.newActivity(in.UserID, models.ActivityGroupVaultCreate, models.DirectionInfo, 0, invitee,
		"Created group vault: "+title)

	if err := s.Store.CreateGroupVault(ctx, vault, members, activity); err != nil {
		return "", apperrors.Persistence(err)
	}
	return vault.Id, nil
}
