package utils

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-access-gate/models"
)

func TestGetUserIDFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDCtxKey, int64(42))

	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		t.Fatal("expected user ID to be present")
	}
	if userID != 42 {
		t.Errorf("expected 42, got %d", userID)
	}
}

func TestGetUserIDFromContext_Missing(t *testing.T) {
	if _, ok := GetUserIDFromContext(context.Background()); ok {
		t.Error("expected ok=false for empty context")
	}
}

func TestGetUserIDFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDCtxKey, "42")

	if _, ok := GetUserIDFromContext(ctx); ok {
		t.Error("expected ok=false for wrong value type")
	}
}

func TestGetSessionFromContext(t *testing.T) {
	session := models.Session{UserID: 7, RoleSlug: "support", LoggedIn: true}
	ctx := context.WithValue(context.Background(), SessionCtxKey, session)

	got, ok := GetSessionFromContext(ctx)
	if !ok {
		t.Fatal("expected session to be present")
	}
	if got.UserID != 7 || got.RoleSlug != "support" {
		t.Errorf("unexpected session: %+v", got)
	}
}

func TestGetSessionFromContext_Missing(t *testing.T) {
	if _, ok := GetSessionFromContext(context.Background()); ok {
		t.Error("expected ok=false for empty context")
	}
}
