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

package repo

import (
	"github.com/go-pledge/pledge/pkg/database"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// ProviderSet is the Wire provider set for the repo package.
var ProviderSet = wire.NewSet(NewRepositories)

// Repositories manages all repository instances.
type Repositories struct {
	User         IUserRepository
	Invite       IInviteRepository
	Organization IOrganizationRepository
	Repository   IRepositoryRepository
	Issue        IIssueRepository
}

// NewRepositories initializes all repositories.
func NewRepositories(db database.IDatabase, cache *redis.Client) *Repositories {
	return &Repositories{
		User:         NewUserRepo(db, cache),
		Invite:       NewInviteRepo(db),
		Organization: NewOrganizationRepo(db),
		Repository:   NewRepositoryRepo(db),
		Issue:        NewIssueRepo(db),
	}
}
