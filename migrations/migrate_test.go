// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package migrations

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMigrate_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	_ = mock // не используем напрямую, goose сам будет ходить в DB

	err = Migrate(db)
	if err == nil {
		t.Fatal("expected error from Migrate, got nil")
	}

	if !strings.Contains(err.Error(), "migration error") {
		t.Errorf("expected wrapped migration error, got: %v", err)
	}
}

// TestSchema_UniqueConstraints pins the named uniqueness constraints the
// store layer maps to its duplicate-taken sentinels.
func TestSchema_UniqueConstraints(t *testing.T) {
	constraints := map[string][]string{
		"00003_create_users.sql":       {"users_username_key", "users_email_key"},
		"00002_create_permissions.sql": {"permissions_name_key", "permissions_slug_key"},
	}
	for file, names := range constraints {
		content, err := embedMigrations.ReadFile(file)
		if err != nil {
			t.Fatalf("failed to read %s: %v", file, err)
		}
		for _, name := range names {
			if !strings.Contains(string(content), name) {
				t.Errorf("%s: missing constraint %s", file, name)
			}
		}
	}
}

func TestMigrate_NilDB(t *testing.T) {
	var db *sql.DB

	err := Migrate(db)
	if err == nil {
		t.Fatal("expected error when db is nil, got nil")
	}

	if !strings.Contains(err.Error(), "db is nil") {
		t.Errorf("expected 'db is nil' error, got: %v", err)
	}
}
