// Package policy provides the loan-duration, loan-limit, and fine
// rules consumed by the domain engine. Policies are read-only lookups;
// the engine decides when to apply them.
package policy

import "github.com/librum-dev/librum/pkg/core"

// LoanPolicy answers how long and how much a member may borrow.
type LoanPolicy interface {
	LoanDays(member core.Member) int
	MaxLoans(member core.Member) int
}

// Student borrows longer and more at once.
type Student struct{}

func (Student) LoanDays(core.Member) int { return 30 }
func (Student) MaxLoans(core.Member) int { return 5 }

// Adult is the default policy.
type Adult struct{}

func (Adult) LoanDays(core.Member) int { return 21 }
func (Adult) MaxLoans(core.Member) int { return 3 }

// Resolver maps a member's category to its loan policy. Unknown
// categories fall back to Adult.
type Resolver struct {
	policies map[core.MemberCategory]LoanPolicy
}

// NewResolver builds the default category mapping.
func NewResolver() *Resolver {
	return &Resolver{policies: map[core.MemberCategory]LoanPolicy{
		core.MemberStudent: Student{},
		core.MemberAdult:   Adult{},
	}}
}

// NewResolverWith builds a resolver from an explicit mapping.
func NewResolverWith(policies map[core.MemberCategory]LoanPolicy) *Resolver {
	copied := make(map[core.MemberCategory]LoanPolicy, len(policies))
	for category, p := range policies {
		copied[category] = p
	}
	return &Resolver{policies: copied}
}

// ForMember returns the policy for the member's category.
func (r *Resolver) ForMember(member core.Member) LoanPolicy {
	if p, ok := r.policies[member.Category]; ok {
		return p
	}
	return Adult{}
}
