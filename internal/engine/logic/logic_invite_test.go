// Copyright 2025 Pledge Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logic

import (
	"sort"
	"testing"
	"time"

	"github.com/go-pledge/pledge/internal/engine/consts"
	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeInviteRepo is an in-memory IInviteRepository.
type fakeInviteRepo struct {
	invites    []model.Invite
	createErrs []error // popped on each Create call before storing
}

func (f *fakeInviteRepo) List(limit int) ([]model.Invite, error) {
	out := make([]model.Invite, len(f.invites))
	copy(out, f.invites)
	// newest first, same as the created_at DESC query
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		return out[:limit], nil
	}
	return out, nil
}

func (f *fakeInviteRepo) Create(invite *model.Invite) error {
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = time.Now()
	}
	f.invites = append(f.invites, *invite)
	return nil
}

func (f *fakeInviteRepo) GetByCode(code string) (*model.Invite, error) {
	for i := range f.invites {
		if f.invites[i].Code == code {
			return &f.invites[i], nil
		}
	}
	return nil, nil
}

func (f *fakeInviteRepo) SetClaimedBy(inviteId, userId string) error {
	for i := range f.invites {
		if f.invites[i].InviteId == inviteId {
			f.invites[i].ClaimedBy = &userId
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// fakeUserRepo is an in-memory IUserRepository.
type fakeUserRepo struct {
	users    map[string]*model.User
	approved []string
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		f.users[u.UserId] = u
	}
	return f
}

func (f *fakeUserRepo) AddUser(user *model.User) error {
	f.users[user.UserId] = user
	return nil
}

func (f *fakeUserRepo) GetByUserId(userId string) (*model.User, error) {
	u, ok := f.users[userId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUserIds(userIds []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User)
	for _, uid := range userIds {
		if u, ok := f.users[uid]; ok {
			out[uid] = u
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByUsername(username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) SetInviteOnlyApproved(userId string) error {
	f.approved = append(f.approved, userId)
	return nil
}

func (f *fakeUserRepo) FetchUserInfo(userId string) (*model.UserInfo, error) {
	u, err := f.GetByUserId(userId)
	if err != nil {
		return nil, err
	}
	return &model.UserInfo{UserId: u.UserId, Username: u.Username}, nil
}

func testUser(userId string) *model.User {
	return &model.User{UserId: userId, Username: "user-" + userId}
}

func newInviteLogic(inviteRepo *fakeInviteRepo, userRepo *fakeUserRepo, isDev bool) *InviteLogic {
	return NewInviteLogic(nil, inviteRepo, userRepo, isDev)
}

func TestClaimCode(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")

	tests := []struct {
		name      string
		claimedBy *string
		code      string
		claimCode string
		user      *model.User
		isDev     bool
		want      bool
	}{
		{
			name:      "unknown code",
			code:      "AAAA1111",
			claimCode: "NOPE0000",
			user:      alice,
			want:      false,
		},
		{
			name:      "unclaimed code",
			code:      "AAAA1111",
			claimCode: "AAAA1111",
			user:      alice,
			want:      true,
		},
		{
			name:      "already claimed by same user",
			code:      "AAAA1111",
			claimCode: "AAAA1111",
			claimedBy: &alice.UserId,
			user:      alice,
			want:      true,
		},
		{
			name:      "claimed by someone else",
			code:      "AAAA1111",
			claimCode: "AAAA1111",
			claimedBy: &alice.UserId,
			user:      bob,
			want:      false,
		},
		{
			name:      "bypass code in development",
			code:      "AAAA1111",
			claimCode: consts.DevBypassInviteCode,
			user:      alice,
			isDev:     true,
			want:      true,
		},
		{
			name:      "bypass code in production is an unknown code",
			code:      "AAAA1111",
			claimCode: consts.DevBypassInviteCode,
			user:      alice,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inviteRepo := &fakeInviteRepo{invites: []model.Invite{{
				InviteId:  "inv1",
				Code:      tt.code,
				CreatedBy: "admin",
				ClaimedBy: tt.claimedBy,
			}}}

			il := newInviteLogic(inviteRepo, newFakeUserRepo(alice, bob), tt.isDev)

			got, err := il.ClaimCode(tt.user, tt.claimCode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClaimCodeSetsClaimer(t *testing.T) {
	alice := testUser("alice")
	inviteRepo := &fakeInviteRepo{invites: []model.Invite{{
		InviteId:  "inv1",
		Code:      "AAAA1111",
		CreatedBy: "admin",
	}}}

	il := newInviteLogic(inviteRepo, newFakeUserRepo(alice), false)

	ok, err := il.ClaimCode(alice, "AAAA1111")
	require.NoError(t, err)
	require.True(t, ok)

	require.NotNil(t, inviteRepo.invites[0].ClaimedBy)
	assert.Equal(t, alice.UserId, *inviteRepo.invites[0].ClaimedBy)

	// claiming again is idempotent
	ok, err = il.ClaimCode(alice, "AAAA1111")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClaimCodeDoesNotOverwriteClaimer(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	inviteRepo := &fakeInviteRepo{invites: []model.Invite{{
		InviteId:  "inv1",
		Code:      "AAAA1111",
		CreatedBy: "admin",
		ClaimedBy: &alice.UserId,
	}}}

	il := newInviteLogic(inviteRepo, newFakeUserRepo(alice, bob), false)

	ok, err := il.ClaimCode(bob, "AAAA1111")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, alice.UserId, *inviteRepo.invites[0].ClaimedBy)
}

func TestVerifyAndClaimCode(t *testing.T) {
	alice := testUser("alice")
	inviteRepo := &fakeInviteRepo{invites: []model.Invite{{
		InviteId:  "inv1",
		Code:      "AAAA1111",
		CreatedBy: "admin",
	}}}
	userRepo := newFakeUserRepo(alice)

	il := newInviteLogic(inviteRepo, userRepo, false)

	ok, err := il.VerifyAndClaimCode(alice, "AAAA1111")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, alice.InviteOnlyApproved)
	assert.Equal(t, []string{alice.UserId}, userRepo.approved)
}

func TestVerifyAndClaimCodeFailureLeavesApproval(t *testing.T) {
	alice := testUser("alice")
	userRepo := newFakeUserRepo(alice)

	il := newInviteLogic(&fakeInviteRepo{}, userRepo, false)

	ok, err := il.VerifyAndClaimCode(alice, "NOPE0000")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, alice.InviteOnlyApproved)
	assert.Empty(t, userRepo.approved)
}

func TestCreateCode(t *testing.T) {
	alice := testUser("alice")
	inviteRepo := &fakeInviteRepo{}

	il := newInviteLogic(inviteRepo, newFakeUserRepo(alice), false)

	detail, err := il.CreateCode(alice, "friend of the project")
	require.NoError(t, err)

	assert.Len(t, detail.Code, consts.InviteCodeLength)
	for _, ch := range detail.Code {
		assert.Contains(t, consts.InviteCodeCharset, string(ch))
	}
	assert.Equal(t, alice.UserId, detail.CreatedBy)
	assert.Equal(t, "friend of the project", detail.Note)
	require.NotNil(t, detail.CreatedByUser)
	assert.Equal(t, alice.UserId, detail.CreatedByUser.UserId)
	assert.Nil(t, detail.ClaimedBy)
}

func TestCreateCodeRetriesOnCollision(t *testing.T) {
	alice := testUser("alice")
	inviteRepo := &fakeInviteRepo{
		createErrs: []error{gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey},
	}

	il := newInviteLogic(inviteRepo, newFakeUserRepo(alice), false)

	detail, err := il.CreateCode(alice, "")
	require.NoError(t, err)
	assert.Len(t, detail.Code, consts.InviteCodeLength)
	assert.Len(t, inviteRepo.invites, 1)
}

func TestListResolvesUsers(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	inviteRepo := &fakeInviteRepo{invites: []model.Invite{
		{InviteId: "inv1", Code: "AAAA1111", CreatedBy: alice.UserId, ClaimedBy: &bob.UserId},
		{InviteId: "inv2", Code: "BBBB2222", CreatedBy: alice.UserId},
	}}

	il := newInviteLogic(inviteRepo, newFakeUserRepo(alice, bob), false)

	details, err := il.List()
	require.NoError(t, err)
	require.Len(t, details, 2)

	require.NotNil(t, details[0].CreatedByUser)
	assert.Equal(t, alice.UserId, details[0].CreatedByUser.UserId)
	require.NotNil(t, details[0].ClaimedByUser)
	assert.Equal(t, bob.UserId, details[0].ClaimedByUser.UserId)

	assert.Nil(t, details[1].ClaimedByUser)
}

func TestListShowsNewestCodeFirst(t *testing.T) {
	alice := testUser("alice")
	now := time.Now()
	inviteRepo := &fakeInviteRepo{invites: []model.Invite{
		{
			BaseModel: model.BaseModel{CreatedAt: now.Add(-2 * time.Hour)},
			InviteId:  "inv1", Code: "AAAA1111", CreatedBy: alice.UserId,
		},
		{
			BaseModel: model.BaseModel{CreatedAt: now.Add(-time.Hour)},
			InviteId:  "inv2", Code: "BBBB2222", CreatedBy: alice.UserId,
		},
	}}

	il := newInviteLogic(inviteRepo, newFakeUserRepo(alice), false)

	created, err := il.CreateCode(alice, "")
	require.NoError(t, err)

	details, err := il.List()
	require.NoError(t, err)
	require.Len(t, details, 3)

	// the code we just created leads, the rest keep newest first order
	assert.Equal(t, created.Code, details[0].Code)
	assert.Equal(t, "BBBB2222", details[1].Code)
	assert.Equal(t, "AAAA1111", details[2].Code)
}
