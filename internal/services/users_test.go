package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"granaia/internal/core"
	"granaia/internal/storage"
)

func newTestStorage(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"), core.SystemClock{})
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestUserServiceCreateValidates(t *testing.T) {
	svc := NewUserService(newTestStorage(t), nil)

	_, err := svc.Create(context.Background(), core.User{Name: "", RemoteJID: "x@s.whatsapp.net"})
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "name" {
		t.Fatalf("expected field name, got %q", ve.Field)
	}
}

func TestUserServicePartialUpdate(t *testing.T) {
	svc := NewUserService(newTestStorage(t), nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, core.User{Name: "Ana", Phone: "5511", RemoteJID: "u@s.whatsapp.net"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Ana Paula"
	got, err := svc.Update(ctx, u.ID, UserUpdate{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Ana Paula" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	// Omitted fields keep their stored value
	if got.Phone != "5511" {
		t.Fatalf("phone clobbered: %q", got.Phone)
	}

	empty := ""
	if _, err := svc.Update(ctx, u.ID, UserUpdate{Name: &empty}); err == nil {
		t.Fatal("expected validation error for empty name")
	}
}

func TestUserServiceUpdatePremium(t *testing.T) {
	svc := NewUserService(newTestStorage(t), nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, core.User{Name: "Ana", RemoteJID: "p@s.whatsapp.net"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	until := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	plan := core.PlanIADashboard
	got, err := svc.UpdatePremium(ctx, u.ID, PremiumUpdate{PremiumUntil: &until, PlanType: &plan})
	if err != nil {
		t.Fatalf("update premium: %v", err)
	}
	if got.PremiumUntil == nil || !got.PremiumUntil.Equal(until) {
		t.Fatalf("premium_until not set: %v", got.PremiumUntil)
	}
	if got.PlanType != core.PlanIADashboard {
		t.Fatalf("plan not set: %q", got.PlanType)
	}

	// An update without an expiration must not clear the active one.
	_, err = svc.UpdatePremium(ctx, u.ID, PremiumUpdate{PlanType: &plan})
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "premium_until" {
		t.Fatalf("expected validation error on premium_until, got %v", err)
	}
	kept, err := svc.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if kept.PremiumUntil == nil || !kept.PremiumUntil.Equal(until) {
		t.Fatalf("premium_until lost after rejected update: %v", kept.PremiumUntil)
	}

	bogus := core.PlanType("gold")
	if _, err := svc.UpdatePremium(ctx, u.ID, PremiumUpdate{PremiumUntil: &until, PlanType: &bogus}); err == nil {
		t.Fatal("expected validation error for unknown plan")
	}
}

func TestUserServiceUpdateLastMessage(t *testing.T) {
	svc := NewUserService(newTestStorage(t), nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, core.User{Name: "Ana", RemoteJID: "m@s.whatsapp.net"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.UpdateLastMessage(ctx, u.ID, "gastei 50 no mercado")
	if err != nil {
		t.Fatalf("update last message: %v", err)
	}
	if got.LastMessage != "gastei 50 no mercado" {
		t.Fatalf("last_message not stored: %q", got.LastMessage)
	}

	if _, err := svc.UpdateLastMessage(ctx, uuid.New(), "oi"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserServiceListMeta(t *testing.T) {
	svc := NewUserService(newTestStorage(t), nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := svc.Create(ctx, core.User{
			Name:      "Pessoa",
			RemoteJID: uuid.NewString() + "@s.whatsapp.net",
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	users, meta, err := svc.List(ctx, core.UserFilter{}, core.NewPage(2, 10))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 10 {
		t.Fatalf("expected 10 users, got %d", len(users))
	}
	if meta.TotalItems != 25 || meta.TotalPages != 3 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if !meta.HasNext || !meta.HasPrevious {
		t.Fatalf("expected middle page flags, got %+v", meta)
	}
}
