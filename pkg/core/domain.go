// Package core holds the domain model of the library catalog and the
// contracts that storage adapters implement. It is agnostic to the
// storage format (JSON files, SQLite).
package core

// CopyStatus tracks where a physical copy currently is in its lifecycle.
type CopyStatus string

const (
	CopyAvailable CopyStatus = "AVAILABLE"
	CopyLoaned    CopyStatus = "LOANED"
	CopyReserved  CopyStatus = "RESERVED"
	CopyLost      CopyStatus = "LOST"
)

// ReservationStatus tracks a reservation through the queue.
type ReservationStatus string

const (
	ReservationQueued    ReservationStatus = "QUEUED"
	ReservationReady     ReservationStatus = "READY"
	ReservationFulfilled ReservationStatus = "FULFILLED"
)

// MemberCategory selects which loan policy applies to a member.
type MemberCategory string

const (
	MemberStudent MemberCategory = "STUDENT"
	MemberAdult   MemberCategory = "ADULT"
)

// Book is a catalog entry, keyed by its normalized ISBN.
// BookID is an optional human-friendly alias; empty means unset.
type Book struct {
	ISBN       string `json:"isbn"`
	BookID     string `json:"bookId,omitempty"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Year       int    `json:"year"`
	Genre      string `json:"genre"`
	TotalLoans int    `json:"totalLoans"`
}

// EntityID implements Entity.
func (b Book) EntityID() string { return b.ISBN }

// Copy is an individually tracked circulating unit of a book.
type Copy struct {
	CopyID string     `json:"copyId"`
	ISBN   string     `json:"isbn"`
	Status CopyStatus `json:"status"`
}

// EntityID implements Entity.
func (c Copy) EntityID() string { return c.CopyID }

// Member is a registered borrower.
type Member struct {
	MemberID string         `json:"memberId"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Category MemberCategory `json:"category"`
}

// EntityID implements Entity.
func (m Member) EntityID() string { return m.MemberID }

// Loan records one lending of a copy to a member. A loan is active
// while ReturnDate is unset; loans are never deleted.
type Loan struct {
	LoanID     string `json:"loanId"`
	CopyID     string `json:"copyId"`
	MemberID   string `json:"memberId"`
	LoanDate   Date   `json:"loanDate"`
	DueDate    Date   `json:"dueDate"`
	ReturnDate Date   `json:"returnDate"`
}

// EntityID implements Entity.
func (l Loan) EntityID() string { return l.LoanID }

// Returned reports whether the copy has come back.
func (l Loan) Returned() bool { return !l.ReturnDate.IsZero() }

// Overdue reports whether the loan is active and past its due date as of the given day.
func (l Loan) Overdue(asOf Date) bool {
	return !l.Returned() && !l.DueDate.IsZero() && asOf.After(l.DueDate)
}

// Reservation is a member's place in the queue for a fully checked-out book.
type Reservation struct {
	ReservationID string            `json:"reservationId"`
	ISBN          string            `json:"isbn"`
	MemberID      string            `json:"memberId"`
	CreatedAt     Date              `json:"createdAt"`
	Status        ReservationStatus `json:"status"`
}

// EntityID implements Entity.
func (r Reservation) EntityID() string { return r.ReservationID }

// Active reports whether the reservation still holds a place in the queue.
func (r Reservation) Active() bool {
	return r.Status == ReservationQueued || r.Status == ReservationReady
}
