package repo

import (
	"errors"

	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/pkg/database"
	"gorm.io/gorm"
)

type IInviteRepository interface {
	List(limit int) ([]model.Invite, error)
	Create(invite *model.Invite) error
	GetByCode(code string) (*model.Invite, error)
	SetClaimedBy(inviteId, userId string) error
}

type InviteRepo struct {
	db          database.IDatabase
	inviteModel *model.Invite
}

func NewInviteRepo(db database.IDatabase) IInviteRepository {
	return &InviteRepo{
		db:          db,
		inviteModel: &model.Invite{},
	}
}

// List returns the most recently created invites, newest first.
func (ir *InviteRepo) List(limit int) ([]model.Invite, error) {
	var invites []model.Invite
	err := ir.db.Database().
		Order("created_at DESC").
		Limit(limit).
		Find(&invites).Error
	return invites, err
}

func (ir *InviteRepo) Create(invite *model.Invite) error {
	return ir.db.Database().Create(invite).Error
}

// GetByCode returns nil without an error when no invite matches.
func (ir *InviteRepo) GetByCode(code string) (*model.Invite, error) {
	var invite model.Invite
	err := ir.db.Database().Where("code = ?", code).First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (ir *InviteRepo) SetClaimedBy(inviteId, userId string) error {
	return ir.db.Database().Model(ir.inviteModel).
		Where("invite_id = ?", inviteId).
		Update("claimed_by", userId).Error
}
