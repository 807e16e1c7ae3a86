package library

import (
	"context"

	"github.com/librum-dev/librum/pkg/core"
)

// AddMember validates and stores a new member. The identifier is
// generated when blank.
func (s *Service) AddMember(ctx context.Context, member core.Member) (core.Member, error) {
	if member.MemberID == "" {
		member.MemberID = core.NewID(core.MemberIDPrefix)
	}
	var err error
	if member.Name, err = core.RequireNonBlank(member.Name, "name"); err != nil {
		return core.Member{}, err
	}
	if member.Email, err = core.ValidateEmail(member.Email); err != nil {
		return core.Member{}, err
	}
	if member.Category == "" {
		return core.Member{}, core.Invalidf("member category is required")
	}
	exists, err := s.storage.Members().ExistsByID(ctx, member.MemberID)
	if err != nil {
		return core.Member{}, err
	}
	if exists {
		return core.Member{}, core.Violationf("member already exists: %s", member.MemberID)
	}
	if err := s.storage.Members().Save(ctx, member); err != nil {
		return core.Member{}, err
	}
	s.logger.Debug("member added", "member", member.MemberID)
	return member, nil
}

// UpdateMember replaces the mutable fields of a member.
func (s *Service) UpdateMember(ctx context.Context, memberID, name, email string, category core.MemberCategory) (core.Member, error) {
	cleaned, err := core.RequireNonBlank(memberID, "member ID")
	if err != nil {
		return core.Member{}, err
	}
	member, found, err := s.storage.Members().FindByID(ctx, cleaned)
	if err != nil {
		return core.Member{}, err
	}
	if !found {
		return core.Member{}, core.NotFound("member", cleaned)
	}
	if member.Name, err = core.RequireNonBlank(name, "name"); err != nil {
		return core.Member{}, err
	}
	if member.Email, err = core.ValidateEmail(email); err != nil {
		return core.Member{}, err
	}
	if category == "" {
		return core.Member{}, core.Invalidf("member category is required")
	}
	member.Category = category
	if err := s.storage.Members().Save(ctx, member); err != nil {
		return core.Member{}, err
	}
	return member, nil
}

// ListMembers returns every member.
func (s *Service) ListMembers(ctx context.Context) ([]core.Member, error) {
	return s.storage.Members().FindAll(ctx)
}

// RemoveMember deletes a member. Members with an active loan or an
// active reservation cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, memberID string) error {
	cleaned, err := core.RequireNonBlank(memberID, "member ID")
	if err != nil {
		return err
	}
	exists, err := s.storage.Members().ExistsByID(ctx, cleaned)
	if err != nil {
		return err
	}
	if !exists {
		return core.NotFound("member", cleaned)
	}
	loans, err := s.storage.Loans().FindAll(ctx)
	if err != nil {
		return err
	}
	for _, loan := range loans {
		if loan.MemberID == cleaned && !loan.Returned() {
			return core.Violationf("cannot remove member with active loans")
		}
	}
	reservations, err := s.storage.Reservations().FindAll(ctx)
	if err != nil {
		return err
	}
	for _, res := range reservations {
		if res.MemberID == cleaned && res.Active() {
			return core.Violationf("cannot remove member with active reservations")
		}
	}
	return s.storage.Members().DeleteByID(ctx, cleaned)
}
