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

var _ repository.ResourceRepository = (*resourceRepo)(nil)

type resourceRepo struct {
	pool *pgxpool.Pool
}

func NewResourceRepo(pool *pgxpool.Pool) repository.ResourceRepository {
	return &resourceRepo{pool: pool}
}

const resourceColumns = `id, title, description, category, access_level, file_name,
       file_size, download_count, view_count, uploaded_by, status, created_at`

func (r *resourceRepo) Save(ctx context.Context, tx repository.Tx, res *model.Resource) error {
	const q = `
INSERT INTO resources (
  id, title, description, category, access_level, file_name,
  file_size, download_count, view_count, uploaded_by, status, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  title=$2, description=$3, category=$4, access_level=$5, file_name=$6,
  file_size=$7, status=$11;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		res.ID, res.Title, res.Description, res.Category, string(res.Access), res.FileName,
		res.FileSize, res.DownloadCount, res.ViewCount, res.UploadedBy, string(res.Status), res.CreatedAt,
	)
	return err
}

func (r *resourceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Resource, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT `+resourceColumns+` FROM resources WHERE id=$1 AND status='active';`, id)
	if err != nil {
		return nil, err
	}
	res, err := scanResource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func scanResource(row pgx.Row) (*model.Resource, error) {
	var res model.Resource
	var access, status string
	if err := row.Scan(
		&res.ID, &res.Title, &res.Description, &res.Category, &access, &res.FileName,
		&res.FileSize, &res.DownloadCount, &res.ViewCount, &res.UploadedBy, &status, &res.CreatedAt,
	); err != nil {
		return nil, err
	}
	res.Access = model.AccessLevel(access)
	res.Status = model.ResourceStatus(status)
	return &res, nil
}

func (r *resourceRepo) List(ctx context.Context, tx repository.Tx, f repository.ResourceFilter, limit, offset int) ([]*model.Resource, int, error) {
	where := "status = 'active'"
	args := []interface{}{}
	n := 0
	add := func(cond string, arg interface{}) {
		n++
		args = append(args, arg)
		where += fmt.Sprintf(" AND "+cond, n)
	}

	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Access != "" {
		add("access_level = $%d", f.Access)
	}
	if f.Search != "" {
		add("title ILIKE '%%' || $%d || '%%'", f.Search)
	}

	countRow, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM resources WHERE `+where+`;`, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := countRow.Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + resourceColumns + ` FROM resources WHERE ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := pickRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, 0, domain.ErrReadDatabaseRow
		}
		out = append(out, res)
	}
	return out, total, rows.Err()
}

func (r *resourceRepo) IncrementDownloads(ctx context.Context, tx repository.Tx, id string) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE resources SET download_count = download_count + 1 WHERE id=$1;`, id)
	return err
}

func (r *resourceRepo) IncrementViews(ctx context.Context, tx repository.Tx, id string) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE resources SET view_count = view_count + 1 WHERE id=$1;`, id)
	return err
}
