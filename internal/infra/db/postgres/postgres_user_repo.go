package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"teachshare/internal/domain"
	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

const userColumns = `id, username, email, phone, password_hash, role,
       membership_type, membership_expires_at, is_active, last_login_at,
       created_at, updated_at`

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (
  id, username, email, phone, password_hash, role,
  membership_type, membership_expires_at, is_active, last_login_at,
  created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (id) DO UPDATE SET
  username=$2, email=$3, phone=$4, password_hash=$5, role=$6,
  membership_type=$7, membership_expires_at=$8, is_active=$9,
  last_login_at=$10, updated_at=$12;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		u.ID, u.Username, u.Email, u.Phone, u.PasswordHash, string(u.Role),
		string(u.Membership.Type), u.Membership.ExpiresAt, u.IsActive, u.LastLoginAt,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return r.findOne(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id=$1;`, id)
}

func (r *PostgresUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return r.findOne(ctx, tx, `SELECT `+userColumns+` FROM users WHERE email=$1;`, email)
}

func (r *PostgresUserRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var role, mtype string
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &role,
		&mtype, &u.Membership.ExpiresAt, &u.IsActive, &u.LastLoginAt,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	u.Membership.Type = model.MembershipType(mtype)
	return &u, nil
}

func (r *PostgresUserRepo) ExistsByEmailOrUsername(ctx context.Context, tx repository.Tx, email, username string) (bool, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email=$1 OR username=$2);`, email, username)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresUserRepo) AppendRedemption(ctx context.Context, tx repository.Tx, userID string, entry model.CodeRedemption) error {
	const q = `
INSERT INTO user_activation_log (user_id, code, membership_type, used_at)
VALUES ($1, $2, $3, $4);
`
	_, err := execSQL(ctx, r.pool, tx, q, userID, entry.Code, string(entry.MembershipType), entry.UsedAt)
	return err
}

func (r *PostgresUserRepo) ListRedemptions(ctx context.Context, tx repository.Tx, userID string) ([]model.CodeRedemption, error) {
	const q = `
SELECT code, membership_type, used_at
  FROM user_activation_log
 WHERE user_id=$1
 ORDER BY used_at ASC, id ASC;
`
	rows, err := pickRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CodeRedemption
	for rows.Next() {
		var e model.CodeRedemption
		var mt string
		if err := rows.Scan(&e.Code, &mt, &e.UsedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		e.MembershipType = model.MembershipType(mt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresUserRepo) List(ctx context.Context, tx repository.Tx, f repository.UserFilter, limit, offset int) ([]*model.User, int, error) {
	where := "TRUE"
	args := []interface{}{}
	n := 0
	add := func(cond string, arg interface{}) {
		n++
		args = append(args, arg)
		where += fmt.Sprintf(" AND "+cond, n)
	}

	if f.Search != "" {
		add("(username ILIKE '%%' || $%d || '%%' OR email ILIKE '%%' || $%[1]d || '%%')", f.Search)
	}
	switch f.Status {
	case "active":
		where += " AND is_active = TRUE"
	case "inactive":
		where += " AND is_active = FALSE"
	}
	if f.MembershipType != "" {
		add("membership_type = $%d", f.MembershipType)
	}
	if f.Role != "" {
		add("role = $%d", f.Role)
	}

	countRow, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users WHERE `+where+`;`, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := countRow.Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + userColumns + ` FROM users WHERE ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := pickRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, domain.ErrReadDatabaseRow
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}
