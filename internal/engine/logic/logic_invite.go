package logic

import (
	"errors"
	"math/rand"
	"strings"

	"github.com/go-pledge/pledge/internal/engine/consts"
	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/internal/engine/repo"
	"github.com/go-pledge/pledge/pkg/ctx"
	"github.com/go-pledge/pledge/pkg/id"
	"github.com/go-pledge/pledge/pkg/log"
	"gorm.io/gorm"
)

// createCodeRetries bounds the regeneration attempts when a freshly drawn
// code collides with an existing one.
const createCodeRetries = 3

type InviteLogic struct {
	ctx        *ctx.Context
	inviteRepo repo.IInviteRepository
	userRepo   repo.IUserRepository
	isDev      bool
}

func NewInviteLogic(ctx *ctx.Context, inviteRepo repo.IInviteRepository, userRepo repo.IUserRepository, isDev bool) *InviteLogic {
	return &InviteLogic{
		ctx:        ctx,
		inviteRepo: inviteRepo,
		userRepo:   userRepo,
		isDev:      isDev,
	}
}

// List returns the 100 most recent invites, newest first, with their creator
// and claimer resolved. Users are fetched in one batched query and attached
// in application code.
func (il *InviteLogic) List() ([]model.InviteDetail, error) {
	invites, err := il.inviteRepo.List(consts.InviteListLimit)
	if err != nil {
		return nil, err
	}

	userIds := make([]string, 0, len(invites)*2)
	for _, invite := range invites {
		userIds = append(userIds, invite.CreatedBy)
		if invite.ClaimedBy != nil {
			userIds = append(userIds, *invite.ClaimedBy)
		}
	}

	users, err := il.userRepo.GetByUserIds(userIds)
	if err != nil {
		return nil, err
	}

	details := make([]model.InviteDetail, 0, len(invites))
	for _, invite := range invites {
		detail := model.InviteDetail{Invite: invite}
		if u, ok := users[invite.CreatedBy]; ok {
			detail.CreatedByUser = userInfo(u)
		}
		if invite.ClaimedBy != nil {
			if u, ok := users[*invite.ClaimedBy]; ok {
				detail.ClaimedByUser = userInfo(u)
			}
		}
		details = append(details, detail)
	}
	return details, nil
}

// CreateCode generates a new invite code owned by byUser. A duplicate-key
// collision on the generated code triggers regeneration.
func (il *InviteLogic) CreateCode(byUser *model.User, note string) (*model.InviteDetail, error) {
	var invite *model.Invite
	for attempt := 0; ; attempt++ {
		invite = &model.Invite{
			InviteId:  id.GetUUIDWithoutDashes(),
			Code:      genInviteCode(),
			CreatedBy: byUser.UserId,
			Note:      note,
		}
		err := il.inviteRepo.Create(invite)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt >= createCodeRetries {
			return nil, err
		}
		log.Warnw("invite code collision, regenerating", "attempt", attempt+1)
	}

	return &model.InviteDetail{
		Invite:        *invite,
		CreatedByUser: userInfo(byUser),
	}, nil
}

// ClaimCode claims an invite code for user. Business failures are reported
// via the boolean, not an error: callers branch, they do not inspect a
// taxonomy.
//
//   - unknown code: false, no mutation
//   - already claimed by user: true, no mutation (idempotent)
//   - claimed by someone else: false, no mutation
//   - unclaimed: claimed_by is set and true returned
//
// The bypass literal succeeds unconditionally, but only in development mode.
func (il *InviteLogic) ClaimCode(user *model.User, code string) (bool, error) {
	if il.isDev && code == consts.DevBypassInviteCode {
		return true, nil
	}

	invite, err := il.inviteRepo.GetByCode(code)
	if err != nil {
		return false, err
	}
	if invite == nil {
		return false, nil
	}

	if invite.ClaimedBy != nil {
		if *invite.ClaimedBy == user.UserId {
			// already claimed by this user
			return true, nil
		}
		return false, nil // claimed by someone else
	}

	if err := il.inviteRepo.SetClaimedBy(invite.InviteId, user.UserId); err != nil {
		return false, err
	}
	return true, nil
}

// VerifyAndClaimCode composes ClaimCode and, on success, marks the user as
// invite-approved. This is the only path by which a user becomes approved.
func (il *InviteLogic) VerifyAndClaimCode(user *model.User, code string) (bool, error) {
	ok, err := il.ClaimCode(user, code)
	if err != nil || !ok {
		return false, err
	}

	if err := il.userRepo.SetInviteOnlyApproved(user.UserId); err != nil {
		return false, err
	}
	user.InviteOnlyApproved = true
	return true, nil
}

// genInviteCode draws InviteCodeLength characters uniformly from the invite
// alphabet. Uniqueness is enforced by the unique index, not here.
func genInviteCode() string {
	var sb strings.Builder
	sb.Grow(consts.InviteCodeLength)
	for i := 0; i < consts.InviteCodeLength; i++ {
		sb.WriteByte(consts.InviteCodeCharset[rand.Intn(len(consts.InviteCodeCharset))])
	}
	return sb.String()
}

func userInfo(u *model.User) *model.UserInfo {
	if u == nil {
		return nil
	}
	return &model.UserInfo{
		UserId:   u.UserId,
		Username: u.Username,
		Avatar:   u.Avatar,
		Email:    u.Email,
	}
}
