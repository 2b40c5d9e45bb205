package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"barter/internal/domain"
)

type ProposalRepo struct{ q sqlx.ExtContext }

func NewProposalRepo(db *sqlx.DB) *ProposalRepo { return &ProposalRepo{q: db} }

func (r *ProposalRepo) WithTx(tx *sqlx.Tx) *ProposalRepo { return &ProposalRepo{q: tx} }

const proposalColumns = `
    exchange_id, ad_sender_id, ad_receiver_id, sender_user_id, receiver_user_id,
    comment, status, created_at
  FROM exchange_proposals`

// Create inserts a pending proposal and returns its id.
func (r *ProposalRepo) Create(ctx context.Context, p domain.Proposal) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
	  INSERT INTO exchange_proposals
	    (ad_sender_id, ad_receiver_id, sender_user_id, receiver_user_id, comment, status, created_at)
	  VALUES
	    (?,            ?,              ?,              ?,                ?,       'pending', ?)
	`, p.SenderAdID, p.ReceiverAdID, p.SenderUserID, p.ReceiverUserID, p.Comment, p.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *ProposalRepo) Get(ctx context.Context, id int64) (domain.Proposal, error) {
	var p domain.Proposal
	err := sqlx.GetContext(ctx, r.q, &p, `SELECT`+proposalColumns+` WHERE exchange_id = ?`, id)
	if err != nil {
		return domain.Proposal{}, notFound(err, "proposal", id)
	}
	return p, nil
}

// Transition moves the proposal from one status to another. It only touches
// the row while it still has status from, so two racing decisions cannot both
// win; changed is false when the row was already moved on.
func (r *ProposalRepo) Transition(ctx context.Context, id int64, from, to domain.ProposalStatus) (changed bool, err error) {
	res, err := r.q.ExecContext(ctx, `
	  UPDATE exchange_proposals SET status = ?
	  WHERE exchange_id = ? AND status = ?
	`, string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *ProposalRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM exchange_proposals WHERE exchange_id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("proposal %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListByUser returns proposals where the user owns the sending or the
// receiving ad, newest first.
func (r *ProposalRepo) ListByUser(ctx context.Context, userID int64, f domain.ProposalFilter) ([]domain.Proposal, error) {
	query := `SELECT` + proposalColumns + `
	  WHERE (sender_user_id = ? OR receiver_user_id = ?)`
	args := []any{userID, userID}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY created_at DESC, exchange_id DESC`

	out := []domain.Proposal{}
	err := sqlx.SelectContext(ctx, r.q, &out, query, args...)
	return out, err
}
