//go:build !integration

package usecase_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"teachshare/internal/domain"
	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu          sync.Mutex
	byID        map[string]*model.User
	redemptions map[string][]model.CodeRedemption

	SaveFunc             func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc         func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
	FindByEmailFunc      func(ctx context.Context, tx repository.Tx, email string) (*model.User, error)
	AppendRedemptionFunc func(ctx context.Context, tx repository.Tx, userID string, entry model.CodeRedemption) error
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{
		byID:        map[string]*model.User{},
		redemptions: map[string][]model.CodeRedemption{},
	}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	if r.FindByEmailFunc != nil {
		return r.FindByEmailFunc(ctx, tx, email)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) ExistsByEmailOrUsername(ctx context.Context, tx repository.Tx, email, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.byID {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *MockUserRepo) AppendRedemption(ctx context.Context, tx repository.Tx, userID string, entry model.CodeRedemption) error {
	if r.AppendRedemptionFunc != nil {
		return r.AppendRedemptionFunc(ctx, tx, userID, entry)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redemptions[userID] = append(r.redemptions[userID], entry)
	return nil
}

func (r *MockUserRepo) ListRedemptions(ctx context.Context, tx repository.Tx, userID string) ([]model.CodeRedemption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.CodeRedemption, len(r.redemptions[userID]))
	copy(out, r.redemptions[userID])
	return out, nil
}

func (r *MockUserRepo) List(ctx context.Context, tx repository.Tx, f repository.UserFilter, limit, offset int) ([]*model.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*model.User
	for _, u := range r.byID {
		if f.Role != "" && string(u.Role) != f.Role {
			continue
		}
		if f.MembershipType != "" && string(u.Membership.Type) != f.MembershipType {
			continue
		}
		if f.Status == "active" && !u.IsActive {
			continue
		}
		if f.Status == "inactive" && u.IsActive {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(u.Username+u.Email), strings.ToLower(f.Search)) {
			continue
		}
		cp := *u
		all = append(all, &cp)
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

// ---- Mock ActivationCodeRepository ----

type MockCodeRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.ActivationCode
	byCode map[string]string // token -> id

	// Usernames resolves used_by IDs for export rows.
	Usernames map[string]string

	SaveFunc        func(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error
	MarkUsedFunc    func(ctx context.Context, tx repository.Tx, codeID, userID string, at time.Time) (bool, error)
	MarkExpiredFunc func(ctx context.Context, tx repository.Tx, codeID string) (bool, error)
}

var _ repository.ActivationCodeRepository = (*MockCodeRepo)(nil)

func NewMockCodeRepo() *MockCodeRepo {
	return &MockCodeRepo{
		byID:      map[string]*model.ActivationCode{},
		byCode:    map[string]string{},
		Usernames: map[string]string{},
	}
}

func (r *MockCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byCode[code.Code]; dup {
		return domain.ErrAlreadyExists
	}
	cp := *code
	r.byID[cp.ID] = &cp
	r.byCode[cp.Code] = cp.ID
	return nil
}

func (r *MockCodeRepo) FindUnusedByCode(ctx context.Context, tx repository.Tx, code string) (*model.ActivationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	ac := r.byID[id]
	if ac.Status != model.CodeStatusUnused {
		return nil, domain.ErrNotFound
	}
	cp := *ac
	return &cp, nil
}

func (r *MockCodeRepo) MarkUsed(ctx context.Context, tx repository.Tx, codeID, userID string, at time.Time) (bool, error) {
	if r.MarkUsedFunc != nil {
		return r.MarkUsedFunc(ctx, tx, codeID, userID, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ac, ok := r.byID[codeID]
	if !ok || ac.Status != model.CodeStatusUnused {
		return false, nil
	}
	ac.Status = model.CodeStatusUsed
	ac.UsedBy = &userID
	usedAt := at
	ac.UsedAt = &usedAt
	return true, nil
}

func (r *MockCodeRepo) MarkExpired(ctx context.Context, tx repository.Tx, codeID string) (bool, error) {
	if r.MarkExpiredFunc != nil {
		return r.MarkExpiredFunc(ctx, tx, codeID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ac, ok := r.byID[codeID]
	if !ok || ac.Status != model.CodeStatusUnused {
		return false, nil
	}
	ac.Status = model.CodeStatusExpired
	return true, nil
}

func (r *MockCodeRepo) List(ctx context.Context, tx repository.Tx, f repository.CodeFilter, limit, offset int) ([]*model.ActivationCode, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*model.ActivationCode
	for _, ac := range r.byID {
		if f.Status != "" && string(ac.Status) != f.Status {
			continue
		}
		if f.Batch != "" && ac.Batch != f.Batch {
			continue
		}
		if f.Search != "" && !strings.Contains(ac.Code, strings.ToUpper(f.Search)) {
			continue
		}
		cp := *ac
		all = append(all, &cp)
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *MockCodeRepo) FindForExport(ctx context.Context, tx repository.Tx, codes []string, batch string) ([]model.ActivationCodeExport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := map[string]bool{}
	for _, c := range codes {
		wanted[c] = true
	}
	var out []model.ActivationCodeExport
	for _, ac := range r.byID {
		if len(wanted) > 0 {
			if !wanted[ac.Code] {
				continue
			}
		} else if ac.Batch != batch {
			continue
		}
		row := model.ActivationCodeExport{ActivationCode: *ac}
		if ac.UsedBy != nil {
			row.RedeemerUsername = r.Usernames[*ac.UsedBy]
		}
		out = append(out, row)
	}
	return out, nil
}

// StatusOf reports the stored status of a code token.
func (r *MockCodeRepo) StatusOf(token string) model.CodeStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byCode[token]; ok {
		return r.byID[id].Status
	}
	return ""
}

// ---- Mock ResourceRepository ----

type MockResourceRepo struct {
	mu        sync.Mutex
	byID      map[string]*model.Resource
	Downloads map[string]int
	Views     map[string]int
}

var _ repository.ResourceRepository = (*MockResourceRepo)(nil)

func NewMockResourceRepo() *MockResourceRepo {
	return &MockResourceRepo{
		byID:      map[string]*model.Resource{},
		Downloads: map[string]int{},
		Views:     map[string]int{},
	}
}

func (r *MockResourceRepo) Save(ctx context.Context, tx repository.Tx, res *model.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *res
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MockResourceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok || res.Status != model.ResourceActive {
		return nil, domain.ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *MockResourceRepo) List(ctx context.Context, tx repository.Tx, f repository.ResourceFilter, limit, offset int) ([]*model.Resource, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*model.Resource
	for _, res := range r.byID {
		if res.Status != model.ResourceActive {
			continue
		}
		if f.Category != "" && res.Category != f.Category {
			continue
		}
		if f.Access != "" && string(res.Access) != f.Access {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(res.Title), strings.ToLower(f.Search)) {
			continue
		}
		cp := *res
		all = append(all, &cp)
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *MockResourceRepo) IncrementDownloads(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Downloads[id]++
	return nil
}

func (r *MockResourceRepo) IncrementViews(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Views[id]++
	return nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

// WithTx runs the function immediately without a real transaction. Assign
// WithTxFunc to verify transactional behavior in a specific test.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- fixed clock helpers ----

type fixedSigner struct{ token string }

func (s fixedSigner) Sign(userID string) (string, error) { return s.token + userID, nil }
