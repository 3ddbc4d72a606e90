package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-pledge/pledge/internal/engine/consts"
	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/pkg/database"
	"github.com/go-pledge/pledge/pkg/log"
	"github.com/redis/go-redis/v9"
)

type IUserRepository interface {
	AddUser(user *model.User) error
	GetByUserId(userId string) (*model.User, error)
	GetByUserIds(userIds []string) (map[string]*model.User, error)
	GetByUsername(username string) (*model.User, error)
	SetInviteOnlyApproved(userId string) error
	FetchUserInfo(userId string) (*model.UserInfo, error)
}

type UserRepo struct {
	db        database.IDatabase
	cache     *redis.Client
	userModel *model.User
}

func NewUserRepo(db database.IDatabase, cache *redis.Client) IUserRepository {
	return &UserRepo{
		db:        db,
		cache:     cache,
		userModel: &model.User{},
	}
}

func (ur *UserRepo) AddUser(user *model.User) error {
	return ur.db.Database().Create(user).Error
}

func (ur *UserRepo) GetByUserId(userId string) (*model.User, error) {
	var u model.User
	err := ur.db.Database().Where("user_id = ?", userId).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *UserRepo) GetByUserIds(userIds []string) (map[string]*model.User, error) {
	users := make(map[string]*model.User, len(userIds))
	if len(userIds) == 0 {
		return users, nil
	}

	var rows []model.User
	if err := ur.db.Database().Where("user_id IN ?", userIds).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		users[rows[i].UserId] = &rows[i]
	}
	return users, nil
}

func (ur *UserRepo) GetByUsername(username string) (*model.User, error) {
	var u model.User
	err := ur.db.Database().Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetInviteOnlyApproved flips the approval flag; the invite claim flow is the
// only caller.
func (ur *UserRepo) SetInviteOnlyApproved(userId string) error {
	return ur.db.Database().Model(ur.userModel).
		Where("user_id = ?", userId).
		Update("invite_only_approved", true).Error
}

func (ur *UserRepo) FetchUserInfo(userId string) (*model.UserInfo, error) {
	ctx := context.Background()
	key := consts.UserInfoKey + userId
	u := &model.UserInfo{UserId: userId}

	if ur.cache != nil {
		userInfoStr, err := ur.cache.Get(ctx, key).Result()
		if err == nil && userInfoStr != "" {
			if err := sonic.UnmarshalString(userInfoStr, u); err != nil {
				log.Errorw("failed to unmarshal user info from redis", "userId", userId, "error", err)
			} else {
				return u, nil
			}
		}
	}

	// fetch from database
	err := ur.db.Database().Table(ur.userModel.TableName()).
		Select("user_id, username, avatar, email").
		Where("user_id = ?", userId).First(u).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	// cache to redis
	if ur.cache != nil {
		userInfoJson, err := sonic.MarshalString(u)
		if err != nil {
			log.Errorw("failed to marshal user info", "userId", userId, "error", err)
		} else {
			if err := ur.cache.Set(ctx, key, userInfoJson, time.Hour).Err(); err != nil {
				log.Errorw("failed to cache user info", "userId", userId, "error", err)
			}
		}
	}

	return u, nil
}
