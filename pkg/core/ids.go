package core

import (
	"strings"

	"github.com/google/uuid"
)

// Identifier prefixes per entity type.
const (
	BookIDPrefix        = "BOOK"
	CopyIDPrefix        = "COPY"
	MemberIDPrefix      = "MEM"
	LoanIDPrefix        = "LOAN"
	ReservationIDPrefix = "RES"
)

// NewID mints an identifier of the form PREFIX-XXXXXXXX, where the
// suffix is the first 8 hex characters of a random UUID.
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(raw[:8])
}
