package domain

type Action int

const (
	ActionView Action = iota
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionView:
		return "view"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

type ResourceKind int

const (
	KindAd ResourceKind = iota + 1
	KindProposal
)

// Resource is a tagged variant over the entity kinds that carry ownership.
// Build it with AdResource or ProposalResource.
type Resource struct {
	Kind     ResourceKind
	ad       *Ad
	proposal *Proposal
}

func AdResource(a *Ad) Resource { return Resource{Kind: KindAd, ad: a} }

func ProposalResource(p *Proposal) Resource { return Resource{Kind: KindProposal, proposal: p} }

// Authorize is the single ownership check used by every mutation.
func Authorize(p Principal, act Action, r Resource) error {
	switch r.Kind {
	case KindAd:
		return authorizeAd(p, act, r.ad)
	case KindProposal:
		return authorizeProposal(p, act, r.proposal)
	}
	return Forbidden("unknown resource")
}

func authorizeAd(p Principal, act Action, a *Ad) error {
	if a == nil {
		return ErrNotFound
	}
	switch act {
	case ActionView:
		return nil
	case ActionUpdate:
		if p.Is(a.UserID) {
			return nil
		}
		return Forbidden("only the owner can edit this ad")
	case ActionDelete:
		if p.Is(a.UserID) {
			return nil
		}
		return Forbidden("only the owner can delete this ad")
	}
	return Forbidden("unsupported action")
}

func authorizeProposal(p Principal, act Action, pr *Proposal) error {
	if pr == nil {
		return ErrNotFound
	}
	switch act {
	case ActionView:
		if p.Is(pr.SenderUserID) || p.Is(pr.ReceiverUserID) {
			return nil
		}
		return Forbidden("not a participant of this proposal")
	case ActionUpdate:
		if p.Is(pr.ReceiverUserID) {
			return nil
		}
		return Forbidden("only the receiving ad's owner can decide this proposal")
	case ActionDelete:
		if p.Is(pr.SenderUserID) {
			return nil
		}
		return Forbidden("only the sending ad's owner can withdraw this proposal")
	}
	return Forbidden("unsupported action")
}
