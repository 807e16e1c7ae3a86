package library

import (
	"context"
	"sort"

	"github.com/librum-dev/librum/pkg/core"
)

// Reserve queues a member for a fully checked-out book. Reserving is
// rejected while the member already holds an active reservation for
// the book, or while any copy is still AVAILABLE.
func (s *Service) Reserve(ctx context.Context, key, memberID string) (core.Reservation, error) {
	isbn, err := s.resolveISBN(ctx, s.storage, key)
	if err != nil {
		return core.Reservation{}, err
	}
	cleanedMemberID, err := core.RequireNonBlank(memberID, "member ID")
	if err != nil {
		return core.Reservation{}, err
	}
	exists, err := s.storage.Members().ExistsByID(ctx, cleanedMemberID)
	if err != nil {
		return core.Reservation{}, err
	}
	if !exists {
		return core.Reservation{}, core.NotFound("member", cleanedMemberID)
	}
	reservations, err := s.storage.Reservations().FindAll(ctx)
	if err != nil {
		return core.Reservation{}, err
	}
	for _, res := range reservations {
		if res.ISBN == isbn && res.MemberID == cleanedMemberID && res.Active() {
			return core.Reservation{}, core.Violationf("member already has a reservation for this book")
		}
	}
	if _, ok, err := s.findFirstCopy(ctx, s.storage, isbn, core.CopyAvailable); err != nil {
		return core.Reservation{}, err
	} else if ok {
		return core.Reservation{}, core.Violationf("copy is available, use loan instead of reservation")
	}
	reservation := core.Reservation{
		ReservationID: core.NewID(core.ReservationIDPrefix),
		ISBN:          isbn,
		MemberID:      cleanedMemberID,
		CreatedAt:     s.clock.Now(),
		Status:        core.ReservationQueued,
	}
	if err := s.storage.Reservations().Save(ctx, reservation); err != nil {
		return core.Reservation{}, err
	}
	s.logger.Info("reservation queued", "reservation", reservation.ReservationID, "isbn", isbn)
	return reservation, nil
}

// promoteNext flips the oldest QUEUED reservation for the book to
// READY. It is a no-op when a READY reservation already exists or the
// queue is empty; the bool reports whether a promotion happened.
func (s *Service) promoteNext(ctx context.Context, tx core.StoreSet, isbn string) (core.Reservation, bool, error) {
	reservations, err := tx.Reservations().FindAll(ctx)
	if err != nil {
		return core.Reservation{}, false, err
	}
	var queued []core.Reservation
	for _, res := range reservations {
		if res.ISBN != isbn {
			continue
		}
		if res.Status == core.ReservationReady {
			return core.Reservation{}, false, nil
		}
		if res.Status == core.ReservationQueued {
			queued = append(queued, res)
		}
	}
	if len(queued) == 0 {
		return core.Reservation{}, false, nil
	}
	sort.SliceStable(queued, func(i, j int) bool {
		return queued[i].CreatedAt.Before(queued[j].CreatedAt)
	})
	next := queued[0]
	next.Status = core.ReservationReady
	if err := tx.Reservations().Save(ctx, next); err != nil {
		return core.Reservation{}, false, err
	}
	s.logger.Info("reservation promoted", "reservation", next.ReservationID, "isbn", isbn)
	return next, true, nil
}

// UpdateReservation reassigns a reservation and/or moves it through
// the status machine. Empty arguments keep the current value. READY
// back to QUEUED is forbidden; moving to READY claims an AVAILABLE
// copy, and leaving READY releases the held copy or hands it to the
// next promoted reservation.
func (s *Service) UpdateReservation(ctx context.Context, reservationID, memberID string, status core.ReservationStatus) (core.Reservation, error) {
	cleaned, err := core.RequireNonBlank(reservationID, "reservation ID")
	if err != nil {
		return core.Reservation{}, err
	}
	var updated core.Reservation
	err = s.storage.RunInTransaction(ctx, func(ctx context.Context, tx core.StoreSet) error {
		reservation, found, err := tx.Reservations().FindByID(ctx, cleaned)
		if err != nil {
			return err
		}
		if !found {
			return core.NotFound("reservation", cleaned)
		}
		updatedMemberID := reservation.MemberID
		if memberID != "" {
			updatedMemberID = memberID
		}
		exists, err := tx.Members().ExistsByID(ctx, updatedMemberID)
		if err != nil {
			return err
		}
		if !exists {
			return core.NotFound("member", updatedMemberID)
		}
		oldStatus := reservation.Status
		newStatus := oldStatus
		if status != "" {
			newStatus = status
		}
		if oldStatus == core.ReservationReady && newStatus == core.ReservationQueued {
			return core.Violationf("cannot move READY reservation back to QUEUED")
		}

		becomingReady := newStatus == core.ReservationReady && oldStatus != core.ReservationReady
		var claimed core.Copy
		if becomingReady {
			others, err := tx.Reservations().FindAll(ctx)
			if err != nil {
				return err
			}
			for _, other := range others {
				if other.ISBN == reservation.ISBN && other.Status == core.ReservationReady && other.ReservationID != reservation.ReservationID {
					return core.Violationf("another reservation is already READY for this book")
				}
			}
			var ok bool
			claimed, ok, err = s.findFirstCopy(ctx, tx, reservation.ISBN, core.CopyAvailable)
			if err != nil {
				return err
			}
			if !ok {
				return core.Violationf("no available copy to reserve")
			}
		}

		reservation.MemberID = updatedMemberID
		reservation.Status = newStatus
		if err := tx.Reservations().Save(ctx, reservation); err != nil {
			return err
		}

		if becomingReady {
			claimed.Status = core.CopyReserved
			if err := tx.Copies().Save(ctx, claimed); err != nil {
				return err
			}
		}

		if oldStatus == core.ReservationReady && newStatus != core.ReservationReady {
			held, hasHeld, err := s.findFirstCopy(ctx, tx, reservation.ISBN, core.CopyReserved)
			if err != nil {
				return err
			}
			_, promoted, err := s.promoteNext(ctx, tx, reservation.ISBN)
			if err != nil {
				return err
			}
			if !promoted {
				if hasHeld {
					held.Status = core.CopyAvailable
					if err := tx.Copies().Save(ctx, held); err != nil {
						return err
					}
				}
			} else if !hasHeld {
				fallback, ok, err := s.findFirstCopy(ctx, tx, reservation.ISBN, core.CopyAvailable)
				if err != nil {
					return err
				}
				if !ok {
					return core.Violationf("no copy available to reserve for next reservation")
				}
				fallback.Status = core.CopyReserved
				if err := tx.Copies().Save(ctx, fallback); err != nil {
					return err
				}
			}
		}
		updated = reservation
		return nil
	})
	if err != nil {
		return core.Reservation{}, err
	}
	return updated, nil
}

// RemoveReservation deletes a reservation. Removing a READY one
// promotes the next in queue into the held copy, or releases the copy
// when the queue is empty.
func (s *Service) RemoveReservation(ctx context.Context, reservationID string) error {
	cleaned, err := core.RequireNonBlank(reservationID, "reservation ID")
	if err != nil {
		return err
	}
	return s.storage.RunInTransaction(ctx, func(ctx context.Context, tx core.StoreSet) error {
		reservation, found, err := tx.Reservations().FindByID(ctx, cleaned)
		if err != nil {
			return err
		}
		if !found {
			return core.NotFound("reservation", cleaned)
		}
		if err := tx.Reservations().DeleteByID(ctx, cleaned); err != nil {
			return err
		}
		if reservation.Status == core.ReservationReady {
			held, hasHeld, err := s.findFirstCopy(ctx, tx, reservation.ISBN, core.CopyReserved)
			if err != nil {
				return err
			}
			_, promoted, err := s.promoteNext(ctx, tx, reservation.ISBN)
			if err != nil {
				return err
			}
			if !promoted && hasHeld {
				held.Status = core.CopyAvailable
				if err := tx.Copies().Save(ctx, held); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ReservationsByISBN lists the reservations for one book.
func (s *Service) ReservationsByISBN(ctx context.Context, key string) ([]core.Reservation, error) {
	isbn, err := s.resolveISBN(ctx, s.storage, key)
	if err != nil {
		return nil, err
	}
	all, err := s.storage.Reservations().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Reservation
	for _, res := range all {
		if res.ISBN == isbn {
			out = append(out, res)
		}
	}
	return out, nil
}

// ListReservations returns every reservation.
func (s *Service) ListReservations(ctx context.Context) ([]core.Reservation, error) {
	return s.storage.Reservations().FindAll(ctx)
}
