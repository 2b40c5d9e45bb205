package repos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"barter/internal/domain"
)

type AdRepo struct{ q sqlx.ExtContext }

func NewAdRepo(db *sqlx.DB) *AdRepo { return &AdRepo{q: db} }

// WithTx returns a repo whose statements run inside tx.
func (r *AdRepo) WithTx(tx *sqlx.Tx) *AdRepo { return &AdRepo{q: tx} }

const adColumns = `
    a.ad_id, a.user_id, u.username, a.title, a.description, a.image_url,
    a.category, a.condition, a.created_at
  FROM ads a
  JOIN users u ON u.id = a.user_id`

func (r *AdRepo) Create(ctx context.Context, userID int64, in domain.AdInput, createdAt string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
	  INSERT INTO ads(user_id, title, description, image_url, category, condition, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?)
	`, userID, in.Title, in.Description, in.ImageURL, in.Category, in.Condition, createdAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *AdRepo) Get(ctx context.Context, id int64) (domain.Ad, error) {
	var a domain.Ad
	err := sqlx.GetContext(ctx, r.q, &a, `SELECT`+adColumns+` WHERE a.ad_id = ?`, id)
	if err != nil {
		return domain.Ad{}, notFound(err, "ad", id)
	}
	return a, nil
}

// Update applies the non-nil fields of p. Owner, id and created_at are not
// updatable through this path.
func (r *AdRepo) Update(ctx context.Context, id int64, p domain.AdPatch) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.ImageURL != nil {
		if *p.ImageURL == "" {
			add("image_url", nil)
		} else {
			add("image_url", *p.ImageURL)
		}
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Condition != nil {
		add("condition", *p.Condition)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.q.ExecContext(ctx, `UPDATE ads SET `+strings.Join(sets, ", ")+` WHERE ad_id = ?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ad %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the ad without any ownership check. Callers authorize first;
// the proposal coordinator calls it inside its acceptance transaction.
func (r *AdRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM ads WHERE ad_id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ad %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func likePrefix(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s) + "%"
}

func adWhere(f domain.AdFilter) (string, []any) {
	where := `1 = 1`
	args := []any{}
	if f.Search != "" {
		where += ` AND (a.title LIKE ? ESCAPE '\' OR a.description LIKE ? ESCAPE '\')`
		args = append(args, likePrefix(f.Search), likePrefix(f.Search))
	}
	if f.Category != "" {
		where += ` AND a.category = ?`
		args = append(args, f.Category)
	}
	if f.Condition != "" {
		where += ` AND a.condition = ?`
		args = append(args, f.Condition)
	}
	return where, args
}

func (r *AdRepo) Count(ctx context.Context, f domain.AdFilter) (int, error) {
	where, args := adWhere(f)
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM ads a WHERE `+where, args...)
	return n, err
}

// Search returns one page of ads, newest first.
func (r *AdRepo) Search(ctx context.Context, f domain.AdFilter, limit, offset int) ([]domain.Ad, error) {
	where, args := adWhere(f)
	args = append(args, limit, offset)
	out := []domain.Ad{}
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT`+adColumns+`
	  WHERE `+where+`
	  ORDER BY a.created_at DESC, a.ad_id DESC
	  LIMIT ? OFFSET ?`, args...)
	return out, err
}
