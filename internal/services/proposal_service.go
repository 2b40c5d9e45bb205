package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"barter/internal/domain"
	"barter/internal/events"
	applog "barter/internal/log"
	"barter/internal/metrics"
	"barter/internal/repos"
)

// ProposalService coordinates the proposal lifecycle:
//
//	pending -> accepted (terminal, consumes both ads)
//	pending -> rejected (terminal)
//
// Only the receiving ad's owner decides; only the sending ad's owner
// withdraws.
type ProposalService struct {
	DB        *sqlx.DB
	Ads       *repos.AdRepo
	Proposals *repos.ProposalRepo
	Events    events.Publisher
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

func NewProposalService(db *sqlx.DB, ads *repos.AdRepo, proposals *repos.ProposalRepo, pub events.Publisher, m *metrics.Metrics) *ProposalService {
	if pub == nil {
		pub = events.Nop{}
	}
	if m == nil {
		m = metrics.New("barter")
	}
	return &ProposalService{DB: db, Ads: ads, Proposals: proposals, Events: pub, Metrics: m, Now: time.Now}
}

// Create records a pending offer of the sender ad for the receiver ad.
// The caller must own the sender ad; the receiver ad belongs to the
// counterparty.
func (s *ProposalService) Create(ctx context.Context, p domain.Principal, senderAdID, receiverAdID int64, comment string) (domain.Proposal, error) {
	if p.IsAnonymous() {
		return domain.Proposal{}, domain.ErrUnauthenticated
	}
	sender, err := s.Ads.Get(ctx, senderAdID)
	if err != nil {
		return domain.Proposal{}, err
	}
	receiver, err := s.Ads.Get(ctx, receiverAdID)
	if err != nil {
		return domain.Proposal{}, err
	}
	if sender.ID == receiver.ID {
		return domain.Proposal{}, domain.NewValidationError("", "an ad cannot be exchanged with itself")
	}
	if !p.Is(sender.UserID) {
		return domain.Proposal{}, domain.NewValidationError("ad_sender_id", "you can only offer your own ads")
	}

	pr := domain.Proposal{
		SenderAdID:     sender.ID,
		ReceiverAdID:   receiver.ID,
		SenderUserID:   sender.UserID,
		ReceiverUserID: receiver.UserID,
		Comment:        comment,
		Status:         domain.StatusPending,
		CreatedAt:      stamp(s.Now),
	}
	id, err := s.Proposals.Create(ctx, pr)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("create proposal: %w", err)
	}
	pr.ID = id

	s.Metrics.ProposalsCreated.Inc()
	s.publish(ctx, events.SubjectProposalCreated, pr, p)
	return pr, nil
}

// Get returns a proposal p takes part in. Other callers get ErrNotFound, the
// same as for a proposal that does not exist.
func (s *ProposalService) Get(ctx context.Context, p domain.Principal, id int64) (domain.Proposal, error) {
	pr, err := s.Proposals.Get(ctx, id)
	if err != nil {
		return domain.Proposal{}, err
	}
	if err := domain.Authorize(p, domain.ActionView, domain.ProposalResource(&pr)); err != nil {
		return domain.Proposal{}, fmt.Errorf("proposal %d: %w", id, domain.ErrNotFound)
	}
	return pr, nil
}

// Update applies a requested field set to a proposal. Exactly one field,
// status, may be present, and it must name a terminal status.
func (s *ProposalService) Update(ctx context.Context, p domain.Principal, id int64, fields map[string]any) (domain.Proposal, error) {
	if p.IsAnonymous() {
		return domain.Proposal{}, domain.ErrUnauthenticated
	}
	pr, err := s.Proposals.Get(ctx, id)
	if err != nil {
		return domain.Proposal{}, err
	}
	if err := domain.Authorize(p, domain.ActionUpdate, domain.ProposalResource(&pr)); err != nil {
		return domain.Proposal{}, err
	}
	raw, ok := fields["status"]
	if !ok || len(fields) != 1 {
		return domain.Proposal{}, domain.Forbidden("only the status field can be updated")
	}
	str, ok := raw.(string)
	to := domain.ProposalStatus(str)
	if !ok || (to != domain.StatusAccepted && to != domain.StatusRejected) {
		return domain.Proposal{}, domain.NewValidationError("status", `must be "accepted" or "rejected"`)
	}
	if pr.Status != domain.StatusPending {
		return domain.Proposal{}, fmt.Errorf("proposal %d is %s: %w", id, pr.Status, domain.ErrInvalidTransition)
	}

	if err := s.decide(ctx, pr, to); err != nil {
		return domain.Proposal{}, err
	}
	pr.Status = to

	s.Metrics.ProposalDecisions.WithLabelValues(string(to)).Inc()
	if to == domain.StatusAccepted {
		s.Metrics.ListingsDeleted.WithLabelValues("exchange").Add(2)
		s.publish(ctx, events.SubjectProposalAccepted, pr, p)
	} else {
		s.publish(ctx, events.SubjectProposalRejected, pr, p)
	}
	return pr, nil
}

// UpdateStatus is Update with a status-only field set.
func (s *ProposalService) UpdateStatus(ctx context.Context, p domain.Principal, id int64, status domain.ProposalStatus) (domain.Proposal, error) {
	return s.Update(ctx, p, id, map[string]any{"status": string(status)})
}

// decide records the outcome in one transaction. Accepting also deletes both
// ads; if either deletion fails nothing is committed and the proposal stays
// pending.
func (s *ProposalService) decide(ctx context.Context, pr domain.Proposal, to domain.ProposalStatus) error {
	return repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		changed, err := s.Proposals.WithTx(tx).Transition(ctx, pr.ID, domain.StatusPending, to)
		if err != nil {
			return fmt.Errorf("set proposal %d %s: %w", pr.ID, to, err)
		}
		if !changed {
			return fmt.Errorf("proposal %d: %w", pr.ID, domain.ErrInvalidTransition)
		}
		if to != domain.StatusAccepted {
			return nil
		}
		ads := s.Ads.WithTx(tx)
		if err := ads.Delete(ctx, pr.SenderAdID); err != nil {
			return fmt.Errorf("consume sender ad: %w", err)
		}
		if err := ads.Delete(ctx, pr.ReceiverAdID); err != nil {
			return fmt.Errorf("consume receiver ad: %w", err)
		}
		return nil
	})
}

// Delete withdraws a proposal regardless of its status. Ads are untouched.
func (s *ProposalService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	if p.IsAnonymous() {
		return domain.ErrUnauthenticated
	}
	pr, err := s.Proposals.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.Authorize(p, domain.ActionDelete, domain.ProposalResource(&pr)); err != nil {
		return err
	}
	if err := s.Proposals.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete proposal %d: %w", id, err)
	}
	s.Metrics.ProposalsDeleted.Inc()
	s.publish(ctx, events.SubjectProposalDeleted, pr, p)
	return nil
}

// ListForPrincipal returns the proposals p sent or received. The anonymous
// principal gets an empty list.
func (s *ProposalService) ListForPrincipal(ctx context.Context, p domain.Principal, f domain.ProposalFilter) ([]domain.Proposal, error) {
	if p.IsAnonymous() {
		return []domain.Proposal{}, nil
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of pending, accepted, rejected")
	}
	return s.Proposals.ListByUser(ctx, p.UserID, f)
}

func (s *ProposalService) publish(ctx context.Context, subject string, pr domain.Proposal, actor domain.Principal) {
	ev := events.ProposalEvent{
		ExchangeID:     pr.ID,
		Status:         string(pr.Status),
		SenderAdID:     pr.SenderAdID,
		ReceiverAdID:   pr.ReceiverAdID,
		SenderUserID:   pr.SenderUserID,
		ReceiverUserID: pr.ReceiverUserID,
		ActorUserID:    actor.UserID,
		At:             stamp(s.Now),
	}
	if err := s.Events.Publish(ctx, subject, ev); err != nil && !errors.Is(err, context.Canceled) {
		applog.L().Warn("proposal.event.fail",
			zap.String("subject", subject), zap.Int64("exchange_id", pr.ID), zap.Error(err))
	}
}
