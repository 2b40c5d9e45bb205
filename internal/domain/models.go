package domain

// TimeLayout is the fixed-width UTC layout used for every stored timestamp,
// so that string ordering matches chronological ordering.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Ad is a listing a user offers for exchange.
type Ad struct {
	ID          int64   `db:"ad_id" json:"ad_id"`
	UserID      int64   `db:"user_id" json:"user_id"`
	Username    string  `db:"username" json:"user"`
	Title       string  `db:"title" json:"title"`
	Description string  `db:"description" json:"description"`
	ImageURL    *string `db:"image_url" json:"image_url"`
	Category    string  `db:"category" json:"category"`
	Condition   string  `db:"condition" json:"condition"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
}

// AdInput carries the caller-supplied fields of a new listing. The owner is
// never part of it; it comes from the principal.
type AdInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url"`
	Category    string  `json:"category"`
	Condition   string  `json:"condition"`
}

// AdPatch is a partial update; nil fields are left untouched.
type AdPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Category    *string `json:"category"`
	Condition   *string `json:"condition"`
}

func (p AdPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.ImageURL == nil && p.Category == nil && p.Condition == nil
}

type AdFilter struct {
	Category  string
	Condition string
	Search    string
	Page      int
	PageSize  int
}

type AdPage struct {
	Count    int  `json:"count"`
	Next     *int `json:"next"`
	Previous *int `json:"previous"`
	Results  []Ad `json:"results"`
}

type ProposalStatus string

const (
	StatusPending  ProposalStatus = "pending"
	StatusAccepted ProposalStatus = "accepted"
	StatusRejected ProposalStatus = "rejected"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined out of s.
func (s ProposalStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Proposal is an offer to swap the sender listing for the receiver listing.
// The owners of both listings are recorded at creation so the proposal stays
// meaningful after an acceptance has removed the listings.
type Proposal struct {
	ID             int64          `db:"exchange_id" json:"exchange_id"`
	SenderAdID     int64          `db:"ad_sender_id" json:"ad_sender_id"`
	ReceiverAdID   int64          `db:"ad_receiver_id" json:"ad_receiver_id"`
	SenderUserID   int64          `db:"sender_user_id" json:"sender_user_id"`
	ReceiverUserID int64          `db:"receiver_user_id" json:"receiver_user_id"`
	Comment        string         `db:"comment" json:"comment"`
	Status         ProposalStatus `db:"status" json:"status"`
	CreatedAt      string         `db:"created_at" json:"created_at"`
}

type ProposalFilter struct {
	Status ProposalStatus
}
