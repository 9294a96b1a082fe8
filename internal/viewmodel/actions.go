package viewmodel

import (
	"context"
	"fmt"
	"log"
	"strings"

	"fitprime-classes/internal/apperror"
	"fitprime-classes/internal/model"
	"fitprime-classes/internal/schedule"
)

// CancelPrompt is the question put to the user before a cancellation.
const CancelPrompt = "¿Seguro que deseas cancelar la reserva?"

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Reserve books the signed-in user on a session of the current list. Sold
// out sessions and sessions the user already holds are refused before any
// request is sent. On success the list is refreshed.
func (vm *ViewModel) Reserve(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	record := &model.ActionRecord{Action: model.ActionReserve, ClassID: sessionID}

	err := vm.reserve(ctx, sessionID, record)
	vm.record(ctx, record, err)
	if err != nil {
		return err
	}

	vm.refreshAfterAction(ctx)
	return nil
}

func (vm *ViewModel) reserve(ctx context.Context, sessionID string, record *model.ActionRecord) error {
	if sessionID == "" {
		return apperror.Validation("classId", "falta el id de la clase")
	}
	user := vm.users.Current()
	if user == nil {
		return apperror.ErrLoginRequired
	}
	record.UserID = user.ID

	p, ok := vm.projection(sessionID, user)
	if !ok {
		return apperror.Validation("classId", "la clase no está en la lista actual")
	}
	switch p.Action {
	case schedule.ActionSoldOut:
		return apperror.ErrSoldOut
	case schedule.ActionCancel:
		return apperror.ErrAlreadyReserved
	}

	record.Outcome = model.OutcomeFailed
	created, err := vm.backend.CreateReservation(ctx, user.ID, sessionID, vm.now())
	if err != nil {
		return fmt.Errorf("reserve class %s: %w", sessionID, err)
	}
	if created != nil {
		record.ReservationID = vm.norm.ReservationEntry(*created).Reservation.ID
	}
	if err := vm.backend.RecomputeCapacity(ctx, sessionID); err != nil {
		return fmt.Errorf("update capacity of class %s: %w", sessionID, err)
	}
	return nil
}

// Cancel cancels one of the signed-in user's reservations once confirmer
// agrees. On success the list is refreshed; on failure nothing changes.
func (vm *ViewModel) Cancel(ctx context.Context, reservationID string, confirmer Confirmer) error {
	reservationID = strings.TrimSpace(reservationID)
	record := &model.ActionRecord{Action: model.ActionCancel, ReservationID: reservationID}

	err := vm.cancel(ctx, reservationID, confirmer, record)
	vm.record(ctx, record, err)
	if err != nil {
		return err
	}

	vm.refreshAfterAction(ctx)
	return nil
}

func (vm *ViewModel) cancel(ctx context.Context, reservationID string, confirmer Confirmer, record *model.ActionRecord) error {
	if reservationID == "" {
		return apperror.Validation("reservationId", "falta el id de la reserva")
	}
	user := vm.users.Current()
	if user == nil {
		return apperror.ErrLoginRequired
	}
	record.UserID = user.ID
	record.ClassID = vm.classOfReservation(reservationID, user)

	if confirmer == nil || !confirmer.Confirm(CancelPrompt) {
		return apperror.ErrNotConfirmed
	}

	record.Outcome = model.OutcomeFailed
	if err := vm.backend.CancelReservation(ctx, reservationID); err != nil {
		return fmt.Errorf("cancel reservation %s: %w", reservationID, err)
	}
	return nil
}

// classOfReservation finds the session in the current list where user
// holds the pending reservation.
func (vm *ViewModel) classOfReservation(reservationID string, user *schedule.User) string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, p := range vm.state.Items {
		mine := schedule.Project(p.Session, user).MyPending
		if mine != nil && mine.ID == reservationID {
			return p.Session.ID
		}
	}
	return ""
}

// record writes the attempt to the journal. Journal failures are logged only.
func (vm *ViewModel) record(ctx context.Context, record *model.ActionRecord, err error) {
	switch {
	case err == nil:
		record.Outcome = model.OutcomeSucceeded
	case record.Outcome == "":
		record.Outcome = model.OutcomeRejected
	}
	if err != nil {
		record.Error = err.Error()
	}
	if vm.journal == nil {
		return
	}
	if jerr := vm.journal.RecordAction(ctx, record); jerr != nil {
		log.Printf("Warning: could not journal %s attempt: %v", record.Action, jerr)
	}
}

// MyReservations returns the signed-in user's reservation history.
func (vm *ViewModel) MyReservations(ctx context.Context) (schedule.MyReservationsView, error) {
	user := vm.users.Current()
	if user == nil {
		return schedule.MyReservationsView{}, apperror.ErrLoginRequired
	}

	ctx, cancel := context.WithTimeout(ctx, vm.timeout)
	defer cancel()

	raws, err := vm.backend.FetchUserReservations(ctx, user.ID)
	if err != nil {
		return schedule.MyReservationsView{}, fmt.Errorf("load reservations of %s: %w", user.ID, err)
	}
	return schedule.MyReservations(vm.norm.ReservationEntries(raws), vm.now(), vm.lead), nil
}
