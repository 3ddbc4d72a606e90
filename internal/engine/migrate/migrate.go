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

// Package migrate runs versioned schema upgrades that AutoMigrate cannot
// express: adding a NOT NULL column to a populated table needs an
// add-nullable, backfill, enforce sequence. Run must execute before
// AutoMigrate so that pre-existing rows are grandfathered; on a fresh
// database every step is a no-op and AutoMigrate creates the final schema
// directly.
package migrate

import (
	"time"

	"github.com/go-pledge/pledge/pkg/log"
	"gorm.io/gorm"
)

// RewardEmailSentinel marks reward rows that predate the email column.
const RewardEmailSentinel = "unknown@example.com"

type migration struct {
	Version string
	Apply   func(db *gorm.DB) error
}

// SchemaMigration records an applied migration version.
type SchemaMigration struct {
	ID        int64     `gorm:"column:id;primarykey;autoIncrement"`
	Version   string    `gorm:"column:version;uniqueIndex"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

func (SchemaMigration) TableName() string {
	return "t_schema_migration"
}

var migrations = []migration{
	{Version: "2023-03-16_add_rewards_email", Apply: addRewardsEmail},
	{Version: "2023-04-25_invites", Apply: addInvites},
}

// Run applies all pending migrations in order.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return err
	}

	for _, m := range migrations {
		var count int64
		if err := db.Model(&SchemaMigration{}).
			Where("version = ?", m.Version).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		if err := m.Apply(db); err != nil {
			log.Errorf("migration %s failed: %v", m.Version, err)
			return err
		}

		if err := db.Create(&SchemaMigration{
			Version:   m.Version,
			AppliedAt: time.Now().UTC(),
		}).Error; err != nil {
			return err
		}
		log.Infof("migration applied: %s", m.Version)
	}
	return nil
}

// addRewardsEmail introduces a mandatory email on rewards. Existing rows
// cannot satisfy NOT NULL, so the column arrives nullable, gets backfilled
// with a sentinel, then the constraint is enforced.
func addRewardsEmail(db *gorm.DB) error {
	migrator := db.Migrator()
	if !migrator.HasTable("t_reward") {
		// fresh database, AutoMigrate creates the final schema
		return nil
	}
	if migrator.HasColumn("t_reward", "email") {
		return nil
	}

	if err := db.Exec("ALTER TABLE t_reward ADD COLUMN email VARCHAR(255) NULL").Error; err != nil {
		return err
	}
	if err := db.Exec("UPDATE t_reward SET email = ? WHERE email IS NULL", RewardEmailSentinel).Error; err != nil {
		return err
	}
	if err := db.Exec("ALTER TABLE t_reward MODIFY COLUMN email VARCHAR(255) NOT NULL").Error; err != nil {
		return err
	}
	return db.Exec("CREATE INDEX idx_t_reward_email ON t_reward (email)").Error
}

// addInvites creates the invite table and gates signup behind invite
// approval. Accounts that predate the gate are approved wholesale; only
// users created afterwards have to claim a code.
func addInvites(db *gorm.DB) error {
	migrator := db.Migrator()

	if !migrator.HasTable("t_invite") {
		err := db.Exec(`CREATE TABLE t_invite (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			created_at DATETIME(3) NULL,
			updated_at DATETIME(3) NULL,
			deleted_at DATETIME(3) NULL,
			invite_id VARCHAR(64) NOT NULL,
			code VARCHAR(16) NOT NULL,
			created_by VARCHAR(64) NOT NULL,
			claimed_by VARCHAR(64) NULL,
			sent_to_email VARCHAR(255) NULL,
			note VARCHAR(255) NULL,
			UNIQUE KEY uk_t_invite_invite_id (invite_id),
			UNIQUE KEY uk_t_invite_code (code)
		)`).Error
		if err != nil {
			return err
		}
	}

	if !migrator.HasTable("t_user") {
		return nil
	}
	if migrator.HasColumn("t_user", "invite_only_approved") {
		return nil
	}

	if err := db.Exec("ALTER TABLE t_user ADD COLUMN invite_only_approved BOOLEAN NULL").Error; err != nil {
		return err
	}
	if err := db.Exec("UPDATE t_user SET invite_only_approved = TRUE WHERE invite_only_approved IS NULL").Error; err != nil {
		return err
	}
	return db.Exec("ALTER TABLE t_user MODIFY COLUMN invite_only_approved BOOLEAN NOT NULL DEFAULT FALSE").Error
}
