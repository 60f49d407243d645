//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"teachshare/internal/domain"
	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
	"teachshare/internal/usecase"
)

func seedUser(t *testing.T, users *MockUserRepo) *model.User {
	t.Helper()
	u, err := model.NewUser("", "student1", "student1@example.com", "hash", "")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if err := users.Save(context.Background(), repository.NoTX, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedCode(t *testing.T, codes *MockCodeRepo, mt model.MembershipType, issuedAt time.Time) *model.ActivationCode {
	t.Helper()
	ac, err := model.NewActivationCode(mt, 0, "B1", "", "admin-1", issuedAt)
	if err != nil {
		t.Fatalf("NewActivationCode: %v", err)
	}
	if err := codes.Save(context.Background(), repository.NoTX, ac); err != nil {
		t.Fatalf("seed code: %v", err)
	}
	return ac
}

func TestMembershipRedeem(t *testing.T) {
	ctx := context.Background()

	t.Run("empty code is rejected", func(t *testing.T) {
		uc := usecase.NewMembershipUseCase(NewMockUserRepo(), NewMockCodeRepo(), NewMockTxManager(), testLogger())
		if _, err := uc.Redeem(ctx, "u1", "   "); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("want ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		users, codes := NewMockUserRepo(), NewMockCodeRepo()
		u := seedUser(t, users)
		uc := usecase.NewMembershipUseCase(users, codes, NewMockTxManager(), testLogger())
		if _, err := uc.Redeem(ctx, u.ID, "NOPE"); !errors.Is(err, domain.ErrCodeNotFoundOrUsed) {
			t.Fatalf("want ErrCodeNotFoundOrUsed, got %v", err)
		}
	})

	t.Run("monthly grant sets a 30 day clock", func(t *testing.T) {
		users, codes := NewMockUserRepo(), NewMockCodeRepo()
		u := seedUser(t, users)
		ac := seedCode(t, codes, model.MembershipMonthly, time.Now())
		uc := usecase.NewMembershipUseCase(users, codes, NewMockTxManager(), testLogger())

		granted, err := uc.Redeem(ctx, u.ID, ac.Code)
		if err != nil {
			t.Fatalf("Redeem: %v", err)
		}
		if granted.Type != model.MembershipMonthly || granted.ExpiresAt == nil {
			t.Fatalf("unexpected grant %+v", granted)
		}
		if got := codes.StatusOf(ac.Code); got != model.CodeStatusUsed {
			t.Fatalf("code status = %q, want used", got)
		}

		status, err := uc.Status(ctx, u.ID)
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if !status.Active {
			t.Fatal("membership should be active after redemption")
		}
		if status.DaysLeft == nil || *status.DaysLeft != 30 {
			t.Fatalf("DaysLeft = %v, want 30", status.DaysLeft)
		}

		hist, err := uc.History(ctx, u.ID)
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		if len(hist) != 1 || hist[0].Code != ac.Code {
			t.Fatalf("unexpected history %+v", hist)
		}
	})

	t.Run("code input is normalized", func(t *testing.T) {
		users, codes := NewMockUserRepo(), NewMockCodeRepo()
		u := seedUser(t, users)
		ac := seedCode(t, codes, model.MembershipMonthly, time.Now())
		uc := usecase.NewMembershipUseCase(users, codes, NewMockTxManager(), testLogger())

		padded := "  " + strings.ToLower(ac.Code) + "  "
		if _, err := uc.Redeem(ctx, u.ID, padded); err != nil {
			t.Fatalf("Redeem with padded lowercase input: %v", err)
		}
	})

	t.Run("second redemption of the same code fails", func(t *testing.T) {
		users, codes := NewMockUserRepo(), NewMockCodeRepo()
		u := seedUser(t, users)
		other := seedUser(t, users)
		ac := seedCode(t, codes, model.MembershipMonthly, time.Now())
		uc := usecase.NewMembershipUseCase(users, codes, NewMockTxManager(), testLogger())

		if _, err := uc.Redeem(ctx, u.ID, ac.Code); err != nil {
			t.Fatalf("first Redeem: %v", err)
		}
		if _, err := uc.Redeem(ctx, other.ID, ac.Code); !errors.Is(err, domain.ErrCodeNotFoundOrUsed) {
			t.Fatalf("want ErrCodeNotFoundOrUsed, got %v", err)
		}
	})

	t.Run("lifetime grant overwrites an existing monthly clock", func(t *testing.T) {
		users, codes := NewMockUserRepo(), NewMockCodeRepo()
		u := seedUser(t, users)
		exp := time.Now().AddDate(0, 0, 10)
		u.Membership = model.Membership{Type: model.MembershipMonthly, ExpiresAt: &exp}
		if err := users.Save(ctx, repository.NoTX, u); err != nil {
			t.Fatal(err)
		}
		ac := seedCode(t, codes, model.MembershipLifetime, time.Now())
		uc := usecase.NewMembershipUseCase(users, codes, NewMockTxManager(), testLogger())

		granted, err := uc.Redeem(ctx, u.ID, ac.Code)
		if err != nil {
			t.Fatalf("Redeem: %v", err)
		}
		if granted.Type != model.MembershipLifetime || granted.ExpiresAt != nil {
			t.Fatalf("lifetime grant should clear the expiry, got %+v", granted)
		}

		status, err := uc.Status(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !status.Active || status.DaysLeft != nil {
			t.Fatalf("lifetime status = %+v", status)
		}
	})

	t.Run("monthly grant resets, it does not stack", func(t *testing.T) {
		users, codes := NewMockUserRepo(), NewMockCodeRepo()
		u := seedUser(t, users)
		exp := time.Now().AddDate(0, 0, 300)
		u.Membership = model.Membership{Type: model.MembershipMonthly, ExpiresAt: &exp}
		if err := users.Save(ctx, repository.NoTX, u); err != nil {
			t.Fatal(err)
		}
		ac := seedCode(t, codes, model.MembershipMonthly, time.Now())
		uc := usecase.NewMembershipUseCase(users, codes, NewMockTxManager(), testLogger())

		granted, err := uc.Redeem(ctx, u.ID, ac.Code)
		if err != nil {
			t.Fatalf("Redeem: %v", err)
		}
		if granted.ExpiresAt == nil || granted.ExpiresAt.After(time.Now().AddDate(0, 0, 31)) {
			t.Fatalf("redeeming must reset the clock to 30 days, got %v", granted.ExpiresAt)
		}
	})

	t.Run("lapsed code is consumed by the failed attempt", func(t *testing.T) {
		users, codes := NewMockUserRepo(), NewMockCodeRepo()
		u := seedUser(t, users)
		ac := seedCode(t, codes, model.MembershipMonthly, time.Now().AddDate(0, 0, -60))
		uc := usecase.NewMembershipUseCase(users, codes, NewMockTxManager(), testLogger())

		if _, err := uc.Redeem(ctx, u.ID, ac.Code); !errors.Is(err, domain.ErrCodeExpired) {
			t.Fatalf("want ErrCodeExpired, got %v", err)
		}
		if got := codes.StatusOf(ac.Code); got != model.CodeStatusExpired {
			t.Fatalf("code status = %q, want expired", got)
		}

		// Retrying hits the consumed code, not the expiry path again.
		if _, err := uc.Redeem(ctx, u.ID, ac.Code); !errors.Is(err, domain.ErrCodeNotFoundOrUsed) {
			t.Fatalf("want ErrCodeNotFoundOrUsed on retry, got %v", err)
		}

		status, err := uc.Status(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if status.Active {
			t.Fatal("failed redemption must not grant membership")
		}
	})

	t.Run("losing the conditional update aborts the grant", func(t *testing.T) {
		users, codes := NewMockUserRepo(), NewMockCodeRepo()
		u := seedUser(t, users)
		ac := seedCode(t, codes, model.MembershipMonthly, time.Now())
		codes.MarkUsedFunc = func(ctx context.Context, tx repository.Tx, codeID, userID string, at time.Time) (bool, error) {
			return false, nil
		}
		uc := usecase.NewMembershipUseCase(users, codes, NewMockTxManager(), testLogger())

		if _, err := uc.Redeem(ctx, u.ID, ac.Code); !errors.Is(err, domain.ErrCodeNotFoundOrUsed) {
			t.Fatalf("want ErrCodeNotFoundOrUsed, got %v", err)
		}
		status, err := uc.Status(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if status.Active {
			t.Fatal("losing redeemer must not receive the grant")
		}
		if hist, _ := uc.History(ctx, u.ID); len(hist) != 0 {
			t.Fatalf("losing redeemer must not get an audit entry, got %+v", hist)
		}
	})

	t.Run("save failure surfaces the repo error", func(t *testing.T) {
		users, codes := NewMockUserRepo(), NewMockCodeRepo()
		u := seedUser(t, users)
		ac := seedCode(t, codes, model.MembershipMonthly, time.Now())
		boom := errors.New("write failed")
		users.SaveFunc = func(ctx context.Context, tx repository.Tx, usr *model.User) error { return boom }
		uc := usecase.NewMembershipUseCase(users, codes, NewMockTxManager(), testLogger())

		if _, err := uc.Redeem(ctx, u.ID, ac.Code); !errors.Is(err, boom) {
			t.Fatalf("want wrapped save error, got %v", err)
		}
	})
}

func TestMembershipStatusFreeUser(t *testing.T) {
	users := NewMockUserRepo()
	u := seedUser(t, users)
	uc := usecase.NewMembershipUseCase(users, NewMockCodeRepo(), NewMockTxManager(), testLogger())

	status, err := uc.Status(context.Background(), u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Active || status.DaysLeft != nil || status.Membership.Type != model.MembershipFree {
		t.Fatalf("fresh user status = %+v", status)
	}
}
