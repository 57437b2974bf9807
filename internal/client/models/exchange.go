package models

import "time"

// ExchangeStatus is the lifecycle state of an exchange proposal. The backend
// may send values outside the known set; they are kept verbatim.
type ExchangeStatus string

const (
	StatusRequested       ExchangeStatus = "REQUESTED"
	StatusWaitingApproval ExchangeStatus = "WAITING_APPROVAL"
	StatusAccepted        ExchangeStatus = "ACCEPTED"
	StatusRefused         ExchangeStatus = "REFUSED"
	StatusCompleted       ExchangeStatus = "COMPLETED"
	StatusCanceled        ExchangeStatus = "CANCELED"
)

// KnownStatuses lists the statuses in lifecycle order.
func KnownStatuses() []ExchangeStatus {
	return []ExchangeStatus{
		StatusRequested,
		StatusWaitingApproval,
		StatusAccepted,
		StatusRefused,
		StatusCompleted,
		StatusCanceled,
	}
}

func (s ExchangeStatus) Known() bool {
	for _, k := range KnownStatuses() {
		if s == k {
			return true
		}
	}
	return false
}

// BookRef is the short form of a book inside an exchange. Owner is only
// present in the nested shape served to moderators.
type BookRef struct {
	ID    int64    `json:"id"`
	Title string   `json:"title"`
	Owner *UserRef `json:"owner,omitempty"`
}

// Exchange pairs one offered book (RequesterBook) with one requested book
// (ProviderBook) between two users.
type Exchange struct {
	ID             int64          `json:"id"`
	Status         ExchangeStatus `json:"status"`
	RequesterID    int64          `json:"requesterId"`
	ProviderID     int64          `json:"providerId"`
	RequesterBook  BookRef        `json:"requesterBook"`
	ProviderBook   BookRef        `json:"providerBook"`
	RequestDate    Timestamp      `json:"requestDate"`
	CompletionDate Timestamp      `json:"completionDate"`
}

// Normalize fills the participant ids from the nested book owners when the
// backend omitted the flat fields.
func (e *Exchange) Normalize() {
	if e.RequesterID == 0 && e.RequesterBook.Owner != nil {
		e.RequesterID = e.RequesterBook.Owner.ID
	}
	if e.ProviderID == 0 && e.ProviderBook.Owner != nil {
		e.ProviderID = e.ProviderBook.Owner.ID
	}
}

// ProposalRequest is the body of POST /exchanges. One request is sent per
// offered book.
type ProposalRequest struct {
	RequesterID     int64     `json:"requesterId"`
	ProviderID      int64     `json:"providerId"`
	RequesterBookID int64     `json:"requesterBookId"`
	ProviderBookID  int64     `json:"providerBookId"`
	CompletionDate  time.Time `json:"completionDate"`
}
