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

package router

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-pledge/pledge/internal/engine/consts"
	"github.com/go-pledge/pledge/internal/engine/github"
	"github.com/go-pledge/pledge/internal/engine/logic"
	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/pkg/http"
	"github.com/go-pledge/pledge/pkg/log"
)

func (rt *Router) organizationRouter(r *gin.RouterGroup, auth gin.HandlerFunc) {
	orgGroup := r.Group("/organization", auth)
	{
		orgGroup.GET("/list", rt.listOrganizations)
		orgGroup.GET("/installed", rt.listInstalledOrganizations)
		orgGroup.GET("/lookup", rt.lookupOrganization)
		orgGroup.GET("/:orgName", rt.getOrganization)
		orgGroup.GET("/:orgName/badge_settings", rt.getBadgeSettings)
		orgGroup.POST("/:orgName/badge_settings", rt.updateBadgeSettings)
		orgGroup.PUT("/:orgName/settings", rt.updateSettings)
		orgGroup.POST("/:orgName/members", rt.addOrganizationMember)
		orgGroup.POST("/sync", rt.syncOrganization)
	}
}

type lookupOrganizationRep struct {
	Organization *model.Organization `json:"organization"`
	Repository   *model.Repository   `json:"repository,omitempty"`
	Issue        *model.Issue        `json:"issue,omitempty"`
}

type addMemberReq struct {
	Username string `json:"username" binding:"required"`
	IsAdmin  bool   `json:"isAdmin"`
}

type syncOrganizationReq struct {
	Name         string   `json:"name" binding:"required"`
	Repositories []string `json:"repositories"`
}

func (rt *Router) organizationLogic() *logic.OrganizationLogic {
	return logic.NewOrganizationLogic(rt.Ctx, rt.Repos.Organization, rt.Repos.Repository, rt.Repos.Issue)
}

// resolveOrganization resolves the :orgName path parameter to one of the
// caller's organizations. A nil result means the response was already
// written.
func (rt *Router) resolveOrganization(c *gin.Context) *model.Organization {
	orgName := c.Param("orgName")
	if orgName == "" {
		http.WithRepErrMsg(c, http.OrgNameIsEmpty.Code, http.OrgNameIsEmpty.Msg, c.Request.URL.Path)
		return nil
	}

	org, err := rt.organizationLogic().GetForUser(consts.PlatformGitHub, orgName, c.GetString("userId"))
	if err != nil {
		log.Errorf("resolve organization failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return nil
	}
	if org == nil {
		http.WithRepErrMsg(c, http.NotFound.Code, http.NotFound.Msg, c.Request.URL.Path)
		return nil
	}
	return org
}

// getOrganization returns an organization's public profile by name.
func (rt *Router) getOrganization(c *gin.Context) {
	orgName := c.Param("orgName")
	if orgName == "" {
		http.WithRepErrMsg(c, http.OrgNameIsEmpty.Code, http.OrgNameIsEmpty.Msg, c.Request.URL.Path)
		return
	}

	org, err := rt.Repos.Organization.GetByName(consts.PlatformGitHub, orgName)
	if err != nil {
		log.Errorf("get organization failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}
	if org == nil {
		http.WithRepErrMsg(c, http.NotFound.Code, http.NotFound.Msg, c.Request.URL.Path)
		return
	}

	c.Set(consts.DETAIL, org)
}

// listInstalledOrganizations lists organizations with an active platform
// installation.
func (rt *Router) listInstalledOrganizations(c *gin.Context) {
	orgs, err := rt.Repos.Organization.ListInstalled()
	if err != nil {
		log.Errorf("list installed organizations failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}

	c.Set(consts.DETAIL, orgs)
}

// listOrganizations lists the caller's organizations with their
// repositories.
func (rt *Router) listOrganizations(c *gin.Context) {
	orgs, err := rt.organizationLogic().ListWithRepositoriesForUser(c.GetString("userId"))
	if err != nil {
		log.Errorf("list organizations failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}

	c.Set(consts.DETAIL, orgs)
}

// lookupOrganization resolves an organization by id, name or platform
// external id, optionally together with one of its repositories and an
// issue by number. The caller's membership is the implicit scope unless a
// repository name is given.
func (rt *Router) lookupOrganization(c *gin.Context) {
	orgId := c.Query("orgId")
	orgName := c.Query("orgName")
	repoName := c.Query("repoName")
	externalId := c.Query("externalId")
	issueNumber := c.Query("issueNumber")

	if orgId == "" && orgName == "" && externalId == "" {
		http.WithRepErrMsg(c, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Request.URL.Path)
		return
	}

	orgLogic := rt.organizationLogic()
	userId := c.GetString("userId")

	var (
		org        *model.Organization
		repository *model.Repository
		issue      *model.Issue
		err        error
	)
	switch {
	case issueNumber != "":
		if orgName == "" || repoName == "" {
			http.WithRepErrMsg(c, http.OrgNameIsEmpty.Code, http.OrgNameIsEmpty.Msg, c.Request.URL.Path)
			return
		}
		var number int64
		number, err = strconv.ParseInt(issueNumber, 10, 64)
		if err != nil {
			http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Request.URL.Path)
			return
		}
		org, repository, issue, err = orgLogic.GetWithRepoAndIssue(consts.PlatformGitHub, orgName, repoName, number)
	case repoName != "":
		if orgName == "" {
			http.WithRepErrMsg(c, http.OrgNameIsEmpty.Code, http.OrgNameIsEmpty.Msg, c.Request.URL.Path)
			return
		}
		org, repository, err = orgLogic.GetWithRepoForUser(consts.PlatformGitHub, orgName, repoName, userId)
	case externalId != "":
		var extId int64
		extId, err = strconv.ParseInt(externalId, 10, 64)
		if err != nil {
			http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Request.URL.Path)
			return
		}
		org, err = orgLogic.GetByExternalId(consts.PlatformGitHub, extId)
	case orgId != "":
		org, err = orgLogic.GetByIdForUser(consts.PlatformGitHub, orgId, userId)
	default:
		org, err = orgLogic.GetForUser(consts.PlatformGitHub, orgName, userId)
	}

	if errors.Is(err, logic.ErrResourceNotFound) {
		http.WithRepErrMsg(c, http.NotFound.Code, http.NotFound.Msg, c.Request.URL.Path)
		return
	}
	if err != nil {
		log.Errorf("lookup organization failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}
	if org == nil {
		http.WithRepErrMsg(c, http.NotFound.Code, http.NotFound.Msg, c.Request.URL.Path)
		return
	}

	c.Set(consts.DETAIL, lookupOrganizationRep{
		Organization: org,
		Repository:   repository,
		Issue:        issue,
	})
}

// getBadgeSettings returns the organization badge settings view.
func (rt *Router) getBadgeSettings(c *gin.Context) {
	org := rt.resolveOrganization(c)
	if org == nil {
		return
	}

	result, err := rt.organizationLogic().GetBadgeSettings(org)
	if err != nil {
		log.Errorf("get badge settings failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}

	c.Set(consts.DETAIL, result)
}

// updateBadgeSettings applies a partial badge settings update and returns the
// refreshed view.
func (rt *Router) updateBadgeSettings(c *gin.Context) {
	org := rt.resolveOrganization(c)
	if org == nil {
		return
	}

	var req model.OrganizationBadgeSettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorf("update badge settings failed: %v", err)
		http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Request.URL.Path)
		return
	}

	orgLogic := rt.organizationLogic()
	if err := orgLogic.UpdateBadgeSettings(org, &req); err != nil {
		log.Errorf("update badge settings failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}

	result, err := orgLogic.GetBadgeSettings(org)
	if err != nil {
		log.Errorf("update badge settings failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}

	c.Set(consts.DETAIL, result)
}

// updateSettings applies a partial organization settings update.
func (rt *Router) updateSettings(c *gin.Context) {
	org := rt.resolveOrganization(c)
	if org == nil {
		return
	}

	var req model.OrganizationSettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorf("update settings failed: %v", err)
		http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Request.URL.Path)
		return
	}

	if err := rt.organizationLogic().UpdateSettings(org, &req); err != nil {
		log.Errorf("update settings failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}

	c.Set(consts.DETAIL, org)
}

// addOrganizationMember adds a user to the organization. Adding an existing
// member updates their admin flag instead of failing.
func (rt *Router) addOrganizationMember(c *gin.Context) {
	org := rt.resolveOrganization(c)
	if org == nil {
		return
	}

	var req addMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorf("add organization member failed: %v", err)
		http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Request.URL.Path)
		return
	}

	user, err := rt.Repos.User.GetByUsername(req.Username)
	if err != nil {
		http.WithRepErrMsg(c, http.UserNotExist.Code, http.UserNotExist.Msg, c.Request.URL.Path)
		return
	}

	if err := rt.organizationLogic().AddUser(org, user, req.IsAdmin); err != nil {
		log.Errorf("add organization member failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}

	c.Set(consts.OPERATION, user.UserId)
}

// syncOrganization mirrors an organization and selected repositories from
// the platform API into the local store.
func (rt *Router) syncOrganization(c *gin.Context) {
	var req syncOrganizationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorf("sync organization failed: %v", err)
		http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Request.URL.Path)
		return
	}

	client := github.NewClient(rt.Conf.Github.BaseURL, rt.Conf.Github.Token)
	syncer := github.NewSyncer(client, rt.Repos.Organization, rt.Repos.Repository)

	org, err := syncer.SyncOrganization(c.Request.Context(), req.Name)
	if err != nil {
		log.Errorf("sync organization failed: %v", err)
		http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
		return
	}

	for _, repoName := range req.Repositories {
		if _, err := syncer.SyncRepository(c.Request.Context(), org, repoName); err != nil {
			log.Errorf("sync repository %s failed: %v", repoName, err)
			http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Request.URL.Path)
			return
		}
	}

	c.Set(consts.DETAIL, org)
}
