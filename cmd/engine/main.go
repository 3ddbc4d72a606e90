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

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/go-pledge/pledge/internal/engine/conf"
	"github.com/go-pledge/pledge/internal/engine/fixture"
	"github.com/go-pledge/pledge/internal/engine/migrate"
	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/internal/engine/repo"
	"github.com/go-pledge/pledge/internal/engine/router"
	"github.com/go-pledge/pledge/pkg/cache"
	"github.com/go-pledge/pledge/pkg/ctx"
	"github.com/go-pledge/pledge/pkg/database"
	"github.com/go-pledge/pledge/pkg/http"
	"github.com/go-pledge/pledge/pkg/log"
	"github.com/go-pledge/pledge/pkg/runner"
	"gorm.io/gorm"
)

var (
	configFile string
	seed       bool
)

func init() {
	flag.StringVar(&configFile, "conf", "conf.d/config.toml", "conf file path, e.g. -conf ./conf.d/config.toml")
	flag.BoolVar(&seed, "seed", false, "seed deterministic development data, development only")
}

func main() {
	flag.Parse()
	printRunner()

	appConf := conf.NewConf(configFile)

	logger, err := log.NewLog(&appConf.Log)
	if err != nil {
		panic(err)
	}

	redis, err := cache.NewRedis(appConf.Redis)
	if err != nil {
		panic(err)
	}

	db, err := database.NewDatabase(appConf.Database)
	if err != nil {
		panic(err)
	}

	// versioned upgrades run first so pre-existing rows are grandfathered,
	// then AutoMigrate settles the final schema
	if err := migrate.Run(db); err != nil {
		panic(err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Invite{},
		&model.Organization{},
		&model.UserOrganization{},
		&model.Repository{},
		&model.Issue{},
		&model.PullRequest{},
		&model.Pledge{},
		&model.Reward{},
	); err != nil {
		panic(err)
	}

	appCtx := ctx.NewContext(context.Background(), redis, db, logger.Sugar())
	repos := repo.NewRepositories(database.NewGormDB(db), redis)

	if seed && appConf.IsDevelopment() {
		if err := seedFixtures(db, repos); err != nil {
			panic(err)
		}
	}

	route := router.NewRouter(&appConf.Http, appCtx, repos, &appConf)

	httpClean := http.NewHttp(appConf.Http, route.Router())
	httpClean()
}

// seedFixtures creates the deterministic development dataset: one
// organization with one repository, an open issue, an open pull request and
// a paid pledge by a test user. Reseeding is idempotent.
func seedFixtures(db *gorm.DB, repos *repo.Repositories) error {
	f := fixture.NewFixture(db, repos)

	org, err := f.Organization("testorg", 123456)
	if err != nil {
		return err
	}
	repository, err := f.Repository(org, "testrepo", 654321)
	if err != nil {
		return err
	}
	issue, err := f.Issue(org, repository, 1)
	if err != nil {
		return err
	}
	if _, err := f.PullRequest(org, repository, 2); err != nil {
		return err
	}
	user, err := f.User("testuser")
	if err != nil {
		return err
	}
	if _, err := f.Pledge(org, repository, issue, user); err != nil {
		return err
	}

	log.Infof("development fixtures seeded")
	return nil
}

func printRunner() {
	fmt.Println("runner.pwd:", runner.Pwd)
	fmt.Println("runner.hostname:", runner.Hostname)
}
