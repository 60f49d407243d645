//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"teachshare/internal/domain"
	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
	"teachshare/internal/usecase"
)

func seedResource(t *testing.T, repo *MockResourceRepo, access model.AccessLevel) *model.Resource {
	t.Helper()
	res, err := model.NewResource("Fractions worksheet", "math", access, "admin-1")
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	if err := repo.Save(context.Background(), repository.NoTX, res); err != nil {
		t.Fatal(err)
	}
	return res
}

func TestResourceDownloadGate(t *testing.T) {
	ctx := context.Background()

	freeUser := &model.User{ID: "u1", Membership: model.FreeMembership()}
	exp := time.Now().AddDate(0, 0, 10)
	memberUser := &model.User{ID: "u2", Membership: model.Membership{Type: model.MembershipMonthly, ExpiresAt: &exp}}
	lapsed := time.Now().AddDate(0, 0, -1)
	lapsedUser := &model.User{ID: "u3", Membership: model.Membership{Type: model.MembershipMonthly, ExpiresAt: &lapsed}}

	t.Run("free resource is open to everyone", func(t *testing.T) {
		repo := NewMockResourceRepo()
		res := seedResource(t, repo, model.AccessFree)
		uc := usecase.NewResourceUseCase(repo, testLogger())

		if _, err := uc.Download(ctx, freeUser, res.ID); err != nil {
			t.Fatalf("Download: %v", err)
		}
		if repo.Downloads[res.ID] != 1 {
			t.Fatalf("download count = %d", repo.Downloads[res.ID])
		}
	})

	t.Run("member resource requires an active membership", func(t *testing.T) {
		repo := NewMockResourceRepo()
		res := seedResource(t, repo, model.AccessMember)
		uc := usecase.NewResourceUseCase(repo, testLogger())

		if _, err := uc.Download(ctx, freeUser, res.ID); !errors.Is(err, domain.ErrMembershipRequired) {
			t.Fatalf("free user: want ErrMembershipRequired, got %v", err)
		}
		if _, err := uc.Download(ctx, lapsedUser, res.ID); !errors.Is(err, domain.ErrMembershipRequired) {
			t.Fatalf("lapsed member: want ErrMembershipRequired, got %v", err)
		}
		if _, err := uc.Download(ctx, memberUser, res.ID); err != nil {
			t.Fatalf("active member: %v", err)
		}
		if repo.Downloads[res.ID] != 1 {
			t.Fatalf("denied downloads must not count, got %d", repo.Downloads[res.ID])
		}
	})

	t.Run("unknown resource", func(t *testing.T) {
		uc := usecase.NewResourceUseCase(NewMockResourceRepo(), testLogger())
		if _, err := uc.Download(ctx, memberUser, "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})
}

func TestResourceGetBumpsViews(t *testing.T) {
	ctx := context.Background()
	repo := NewMockResourceRepo()
	res := seedResource(t, repo, model.AccessFree)
	uc := usecase.NewResourceUseCase(repo, testLogger())

	for i := 0; i < 3; i++ {
		if _, err := uc.Get(ctx, res.ID); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if repo.Views[res.ID] != 3 {
		t.Fatalf("view count = %d, want 3", repo.Views[res.ID])
	}
}
