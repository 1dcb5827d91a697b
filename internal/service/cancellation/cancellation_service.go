package cancellation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airticket/internal/clock"
	"github.com/Domenick1991/airticket/internal/domain"
	"github.com/Domenick1991/airticket/internal/gateway"
	"github.com/Domenick1991/airticket/internal/log"
	"github.com/Domenick1991/airticket/internal/metrics"
	"github.com/Domenick1991/airticket/internal/repository"
	"github.com/sirupsen/logrus"
)

type Outcome string

const (
	OutcomeCancelled        Outcome = "cancelled"
	OutcomeAlreadyCancelled Outcome = "already_cancelled"
)

const DefaultCutoff = 24 * time.Hour

type CancellationUseCase interface {
	Cancel(ctx context.Context, ticketID int64) (Outcome, error)
}

type Notifier interface {
	TicketCancelled(ctx context.Context, ticket domain.Ticket)
}

type CancellationService struct {
	tickets   repository.TicketRepository
	inventory gateway.Inventory
	notifier  Notifier
	clock     clock.Clock
	cutoff    time.Duration
}

type CancellationServiceOption func(*CancellationService)

func WithClock(c clock.Clock) CancellationServiceOption {
	return func(s *CancellationService) {
		s.clock = c
	}
}

// WithCutoff sets how long before departure cancellation stops being allowed.
func WithCutoff(d time.Duration) CancellationServiceOption {
	return func(s *CancellationService) {
		if d > 0 {
			s.cutoff = d
		}
	}
}

func WithNotifier(n Notifier) CancellationServiceOption {
	return func(s *CancellationService) {
		s.notifier = n
	}
}

func NewCancellationService(
	tickets repository.TicketRepository,
	inventory gateway.Inventory,
	opts ...CancellationServiceOption,
) *CancellationService {
	service := &CancellationService{
		tickets:   tickets,
		inventory: inventory,
		clock:     clock.NewSystem(),
		cutoff:    DefaultCutoff,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Cancel releases the ticket's seats and marks it cancelled. Cancelling an
// already cancelled ticket succeeds without touching inventory, including
// when a concurrent cancel commits first.
func (s *CancellationService) Cancel(ctx context.Context, ticketID int64) (outcome Outcome, err error) {
	defer func() { metrics.ObserveCancellation(err) }()

	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return "", err
	}
	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"ticket_id": ticket.ID,
		"pnr":       ticket.PNR,
		"flight_id": ticket.FlightID,
	})

	if !ticket.Booked {
		logger.Info("ticket already cancelled")
		return OutcomeAlreadyCancelled, nil
	}

	flight, err := s.inventory.GetFlight(ctx, ticket.FlightID).Unwrap()
	if err != nil {
		// the ticket exists, so a missing flight means inventory cannot confirm it
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: flight %d of ticket %d could not be confirmed: %v",
				domain.ErrUpstreamUnavailable, ticket.FlightID, ticket.ID, err)
		}
		return "", err
	}

	if s.clock.Now().Add(s.cutoff).After(flight.DepartureTime) {
		return "", fmt.Errorf("%w: ticket cannot be cancelled within %s of departure",
			domain.ErrDomainRule, formatCutoff(s.cutoff))
	}

	released := false
	cancelled, changed, err := s.tickets.CancelBooked(ctx, ticket.ID, func(ctx context.Context, locked domain.Ticket) error {
		if _, err := s.inventory.ReleaseSeats(ctx, locked.FlightID, locked.NumberOfSeats).Unwrap(); err != nil {
			if !errors.Is(err, domain.ErrUpstreamUnavailable) {
				err = fmt.Errorf("%w: release seats: %v", domain.ErrUpstreamUnavailable, err)
			}
			return err
		}
		released = true
		return nil
	})
	switch {
	case err != nil && released:
		logger.WithError(err).WithField("seat_count", ticket.NumberOfSeats).
			Error("seats released but ticket not marked cancelled; manual reconciliation required")
		return "", fmt.Errorf("mark ticket %d cancelled: %w", ticket.ID, err)
	case err != nil:
		logger.WithError(err).Warn("seat release failed, ticket left booked")
		return "", err
	case !changed:
		// a concurrent cancellation won the row lock
		logger.Info("ticket already cancelled")
		return OutcomeAlreadyCancelled, nil
	}

	logger.Info("ticket cancelled")
	if s.notifier != nil {
		s.notifier.TicketCancelled(ctx, *cancelled)
	}
	return OutcomeCancelled, nil
}

func formatCutoff(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return d.String()
}

var _ CancellationUseCase = (*CancellationService)(nil)
