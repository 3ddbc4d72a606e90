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

// Package github talks to the GitHub REST API and mirrors organizations and
// repositories into the local store, keyed on (platform, external_id).
package github

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pledge/pledge/internal/engine/consts"
	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/internal/engine/repo"
	"github.com/go-pledge/pledge/pkg/id"
	"github.com/go-pledge/pledge/pkg/log"
	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.github.com"

type Client struct {
	rest *resty.Client
}

// NewClient builds a REST client. token may be empty for anonymous access,
// at GitHub's much lower rate limit.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetHeader("Accept", "application/vnd.github+json")
	if token != "" {
		rest.SetAuthToken(token)
	}

	return &Client{rest: rest}
}

// OrganizationRep is the subset of the organization payload this service keeps.
type OrganizationRep struct {
	Id        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarUrl string `json:"avatar_url"`
	Type      string `json:"type"`
}

type RepositoryRep struct {
	Id              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Private         bool   `json:"private"`
	OpenIssuesCount int64  `json:"open_issues_count"`
}

func (gc *Client) FetchOrganization(ctx context.Context, name string) (*OrganizationRep, error) {
	var rep OrganizationRep
	resp, err := gc.rest.R().
		SetContext(ctx).
		SetResult(&rep).
		SetPathParam("org", name).
		Get("/orgs/{org}")
	if err != nil {
		return nil, fmt.Errorf("fetch organization %s: %w", name, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch organization %s: status %d", name, resp.StatusCode())
	}
	return &rep, nil
}

func (gc *Client) FetchRepository(ctx context.Context, owner, name string) (*RepositoryRep, error) {
	var rep RepositoryRep
	resp, err := gc.rest.R().
		SetContext(ctx).
		SetResult(&rep).
		SetPathParams(map[string]string{"owner": owner, "repo": name}).
		Get("/repos/{owner}/{repo}")
	if err != nil {
		return nil, fmt.Errorf("fetch repository %s/%s: %w", owner, name, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch repository %s/%s: status %d", owner, name, resp.StatusCode())
	}
	return &rep, nil
}

// Syncer mirrors fetched platform entities into the local store.
type Syncer struct {
	client   *Client
	orgRepo  repo.IOrganizationRepository
	repoRepo repo.IRepositoryRepository
}

func NewSyncer(client *Client, orgRepo repo.IOrganizationRepository, repoRepo repo.IRepositoryRepository) *Syncer {
	return &Syncer{
		client:   client,
		orgRepo:  orgRepo,
		repoRepo: repoRepo,
	}
}

// SyncOrganization fetches an organization and upserts it. Re-syncing an
// already known organization refreshes its mutable fields and keeps its
// org_id stable.
func (s *Syncer) SyncOrganization(ctx context.Context, name string) (*model.Organization, error) {
	rep, err := s.client.FetchOrganization(ctx, name)
	if err != nil {
		return nil, err
	}

	org, err := s.orgRepo.Upsert(&model.Organization{
		OrgId:      id.GetUUIDWithoutDashes(),
		Platform:   consts.PlatformGitHub,
		ExternalId: rep.Id,
		Name:       rep.Login,
		AvatarUrl:  rep.AvatarUrl,
		IsPersonal: rep.Type == "User",
	})
	if err != nil {
		return nil, err
	}

	log.Infow("github.sync_organization",
		"name", rep.Login,
		"externalId", rep.Id,
	)
	return org, nil
}

// SyncRepository fetches a repository and upserts it under org.
func (s *Syncer) SyncRepository(ctx context.Context, org *model.Organization, name string) (*model.Repository, error) {
	rep, err := s.client.FetchRepository(ctx, org.Name, name)
	if err != nil {
		return nil, err
	}

	repository, err := s.repoRepo.Upsert(&model.Repository{
		RepoId:      id.GetUUIDWithoutDashes(),
		OrgId:       org.OrgId,
		Platform:    consts.PlatformGitHub,
		ExternalId:  rep.Id,
		Name:        rep.Name,
		Description: rep.Description,
		IsPrivate:   rep.Private,
		OpenIssues:  rep.OpenIssuesCount,
	})
	if err != nil {
		return nil, err
	}

	log.Infow("github.sync_repository",
		"org", org.Name,
		"name", rep.Name,
		"externalId", rep.Id,
	)
	return repository, nil
}
