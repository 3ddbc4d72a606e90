package router

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-pledge/pledge/internal/engine/consts"
	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/internal/engine/repo"
	httpx "github.com/go-pledge/pledge/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubUserRepo overrides only the methods a handler touches.
type stubUserRepo struct {
	repo.IUserRepository
	info *model.UserInfo
	err  error
}

func (s *stubUserRepo) FetchUserInfo(userId string) (*model.UserInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.info != nil && s.info.UserId == userId {
		return s.info, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubRepositoryRepo struct {
	repo.IRepositoryRepository
	repos map[string]*model.Repository
}

func (s *stubRepositoryRepo) GetByRepoId(repoId string) (*model.Repository, error) {
	return s.repos[repoId], nil
}

type stubOrgRepo struct {
	repo.IOrganizationRepository
	members map[string]map[string]bool
}

func (s *stubOrgRepo) GetMember(orgId, userId string) (*model.UserOrganization, error) {
	if _, ok := s.members[orgId][userId]; !ok {
		return nil, nil
	}
	return &model.UserOrganization{OrgId: orgId, UserId: userId}, nil
}

func newTestContext(t *testing.T, userId string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Set("userId", userId)
	return c, rec
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var rep httpx.ResponseErr
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	return rep.ErrCode
}

func TestGetUserInfo(t *testing.T) {
	rt := &Router{Repos: &repo.Repositories{
		User: &stubUserRepo{info: &model.UserInfo{UserId: "alice", Username: "alice"}},
	}}

	c, _ := newTestContext(t, "alice")
	rt.getUserInfo(c)

	detail, ok := c.Get(consts.DETAIL)
	require.True(t, ok)
	info, ok := detail.(*model.UserInfo)
	require.True(t, ok)
	assert.Equal(t, "alice", info.UserId)
}

func TestGetUserInfoUnknownUser(t *testing.T) {
	rt := &Router{Repos: &repo.Repositories{User: &stubUserRepo{}}}

	c, rec := newTestContext(t, "ghost")
	rt.getUserInfo(c)

	_, ok := c.Get(consts.DETAIL)
	assert.False(t, ok)
	assert.Equal(t, httpx.UserNotExist.Code, errCode(t, rec))
}

func TestGetRepository(t *testing.T) {
	rt := &Router{Repos: &repo.Repositories{
		Repository: &stubRepositoryRepo{repos: map[string]*model.Repository{
			"repo1": {RepoId: "repo1", OrgId: "org1", Name: "widget"},
		}},
		Organization: &stubOrgRepo{members: map[string]map[string]bool{
			"org1": {"alice": false},
		}},
	}}

	c, _ := newTestContext(t, "alice")
	c.Params = gin.Params{{Key: "repoId", Value: "repo1"}}
	rt.getRepository(c)

	detail, ok := c.Get(consts.DETAIL)
	require.True(t, ok)
	repository, ok := detail.(*model.Repository)
	require.True(t, ok)
	assert.Equal(t, "widget", repository.Name)
}

func TestGetRepositoryHiddenFromNonMembers(t *testing.T) {
	rt := &Router{Repos: &repo.Repositories{
		Repository: &stubRepositoryRepo{repos: map[string]*model.Repository{
			"repo1": {RepoId: "repo1", OrgId: "org1", Name: "widget"},
		}},
		Organization: &stubOrgRepo{members: map[string]map[string]bool{}},
	}}

	tests := []struct {
		name   string
		repoId string
	}{
		{name: "non-member", repoId: "repo1"},
		{name: "unknown repository", repoId: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(t, "mallory")
			c.Params = gin.Params{{Key: "repoId", Value: tt.repoId}}
			rt.getRepository(c)

			_, ok := c.Get(consts.DETAIL)
			assert.False(t, ok)
			// both cases are indistinguishable to the caller
			assert.Equal(t, httpx.NotFound.Code, errCode(t, rec))
		})
	}
}
