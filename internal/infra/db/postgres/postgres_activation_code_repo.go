package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"teachshare/internal/domain"
	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.ActivationCodeRepository = (*activationCodeRepo)(nil)

type activationCodeRepo struct {
	pool *pgxpool.Pool
}

func NewActivationCodeRepo(pool *pgxpool.Pool) repository.ActivationCodeRepository {
	return &activationCodeRepo{pool: pool}
}

const codeColumns = `id, code, membership_type, duration_days, batch, description,
       status, used_by, used_at, created_by, created_at, expires_at`

func (r *activationCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error {
	const q = `
INSERT INTO activation_codes (
  id, code, membership_type, duration_days, batch, description,
  status, used_by, used_at, created_by, created_at, expires_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		code.ID, code.Code, string(code.MembershipType), code.DurationDays, code.Batch, code.Description,
		string(code.Status), code.UsedBy, code.UsedAt, code.CreatedBy, code.CreatedAt, code.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindUnusedByCode finds a single unused activation code. It deliberately does
// not distinguish "no such code" from "already consumed".
func (r *activationCodeRepo) FindUnusedByCode(ctx context.Context, tx repository.Tx, code string) (*model.ActivationCode, error) {
	const q = `
SELECT ` + codeColumns + `
  FROM activation_codes
 WHERE code = $1 AND status = 'unused';
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	ac, err := scanCode(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return ac, nil
}

// MarkUsed is the redemption compare-and-swap: only one caller can move a code
// out of 'unused'. A false return means somebody else got there first.
func (r *activationCodeRepo) MarkUsed(ctx context.Context, tx repository.Tx, codeID, userID string, at time.Time) (bool, error) {
	const q = `
UPDATE activation_codes
   SET status = 'used', used_by = $2, used_at = $3
 WHERE id = $1 AND status = 'unused';
`
	tag, err := execSQL(ctx, r.pool, tx, q, codeID, userID, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *activationCodeRepo) MarkExpired(ctx context.Context, tx repository.Tx, codeID string) (bool, error) {
	const q = `
UPDATE activation_codes
   SET status = 'expired'
 WHERE id = $1 AND status = 'unused';
`
	tag, err := execSQL(ctx, r.pool, tx, q, codeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanCode(row pgx.Row) (*model.ActivationCode, error) {
	var ac model.ActivationCode
	var mt, status string
	if err := row.Scan(
		&ac.ID, &ac.Code, &mt, &ac.DurationDays, &ac.Batch, &ac.Description,
		&status, &ac.UsedBy, &ac.UsedAt, &ac.CreatedBy, &ac.CreatedAt, &ac.ExpiresAt,
	); err != nil {
		return nil, err
	}
	ac.MembershipType = model.MembershipType(mt)
	ac.Status = model.CodeStatus(status)
	return &ac, nil
}

func (r *activationCodeRepo) List(ctx context.Context, tx repository.Tx, f repository.CodeFilter, limit, offset int) ([]*model.ActivationCode, int, error) {
	where := "TRUE"
	args := []interface{}{}
	n := 0
	add := func(cond string, arg interface{}) {
		n++
		args = append(args, arg)
		where += fmt.Sprintf(" AND "+cond, n)
	}

	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Batch != "" {
		add("batch ILIKE '%%' || $%d || '%%'", f.Batch)
	}
	if f.Search != "" {
		add("code ILIKE '%%' || $%d || '%%'", f.Search)
	}

	countRow, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM activation_codes WHERE `+where+`;`, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := countRow.Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + codeColumns + ` FROM activation_codes WHERE ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := pickRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var codes []*model.ActivationCode
	for rows.Next() {
		ac, err := scanCode(rows)
		if err != nil {
			return nil, 0, domain.ErrReadDatabaseRow
		}
		codes = append(codes, ac)
	}
	return codes, total, rows.Err()
}

func (r *activationCodeRepo) FindForExport(ctx context.Context, tx repository.Tx, codes []string, batch string) ([]model.ActivationCodeExport, error) {
	q := `
SELECT c.id, c.code, c.membership_type, c.duration_days, c.batch, c.description,
       c.status, c.used_by, c.used_at, c.created_by, c.created_at, c.expires_at,
       COALESCE(u.username, '')
  FROM activation_codes c
  LEFT JOIN users u ON u.id = c.used_by
`
	var args []interface{}
	if len(codes) > 0 {
		q += ` WHERE c.code = ANY($1)`
		args = append(args, codes)
	} else {
		q += ` WHERE c.batch = $1`
		args = append(args, batch)
	}
	q += ` ORDER BY c.created_at ASC;`

	rows, err := pickRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ActivationCodeExport
	for rows.Next() {
		var e model.ActivationCodeExport
		var mt, status string
		if err := rows.Scan(
			&e.ID, &e.Code, &mt, &e.DurationDays, &e.Batch, &e.Description,
			&status, &e.UsedBy, &e.UsedAt, &e.CreatedBy, &e.CreatedAt, &e.ExpiresAt,
			&e.RedeemerUsername,
		); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		e.MembershipType = model.MembershipType(mt)
		e.Status = model.CodeStatus(status)
		out = append(out, e)
	}
	return out, rows.Err()
}
