package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/airticket/internal/domain"
	"github.com/Domenick1991/airticket/internal/gateway"
	"github.com/Domenick1991/airticket/internal/log"
	"github.com/Domenick1991/airticket/internal/metrics"
	"github.com/Domenick1991/airticket/internal/repository"
	"github.com/Domenick1991/airticket/internal/resilience"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	Book(ctx context.Context, input BookInput) (string, error)
}

// SeatHolds is an optional cross-process hold on individual seats for the
// lifetime of one booking attempt.
type SeatHolds interface {
	AcquireSeatHold(ctx context.Context, flightID int64, seat, owner string, ttl time.Duration) (bool, error)
	ReleaseSeatHold(ctx context.Context, flightID int64, seat, owner string) error
}

type Notifier interface {
	TicketBooked(ctx context.Context, ticket domain.Ticket)
}

type BookInput struct {
	FlightID     int64    `json:"flight_id"`
	PassengerIDs []int64  `json:"passenger_ids"`
	SeatNumbers  []string `json:"seat_numbers"`
}

const (
	defaultHoldTTL       = 30 * time.Second
	defaultCommitTimeout = 30 * time.Second
	maxPNRAttempts       = 3
)

type BookingService struct {
	tickets   repository.TicketRepository
	inventory gateway.Inventory
	notifier  Notifier
	holds     SeatHolds
	holdTTL   time.Duration
	// commitTimeout bounds reserve, save and compensation, which run
	// detached from the caller once started.
	commitTimeout time.Duration
	newPNR        func() string
}

type BookingServiceOption func(*BookingService)

func WithSeatHolds(holds SeatHolds, ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.holds = holds
		if ttl > 0 {
			s.holdTTL = ttl
		}
	}
}

func WithPNRGenerator(gen func() string) BookingServiceOption {
	return func(s *BookingService) {
		s.newPNR = gen
	}
}

func WithCommitTimeout(timeout time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if timeout > 0 {
			s.commitTimeout = timeout
		}
	}
}

func NewBookingService(
	tickets repository.TicketRepository,
	inventory gateway.Inventory,
	notifier Notifier,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		tickets:   tickets,
		inventory: inventory,
		notifier:  notifier,
		holdTTL:       defaultHoldTTL,
		commitTimeout: defaultCommitTimeout,
		newPNR:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book validates the request, reserves seats in inventory and persists the
// ticket. It returns the new PNR.
func (s *BookingService) Book(ctx context.Context, input BookInput) (pnr string, err error) {
	defer func() { metrics.ObserveBooking(err) }()

	if len(input.PassengerIDs) == 0 {
		return "", fmt.Errorf("%w: passenger list cannot be empty", domain.ErrInvalidRequest)
	}
	if len(input.SeatNumbers) == 0 {
		return "", fmt.Errorf("%w: please select at least one seat", domain.ErrInvalidRequest)
	}
	if len(input.PassengerIDs) != len(input.SeatNumbers) {
		return "", fmt.Errorf("%w: passengers and seats count must match", domain.ErrInvalidRequest)
	}

	seats, err := domain.NormalizeSeats(input.SeatNumbers)
	if err != nil {
		return "", err
	}

	flight, err := s.inventory.GetFlight(ctx, input.FlightID).Unwrap()
	if err != nil {
		return "", err
	}

	seats, err = domain.ValidateSeatNumbers(seats, flight.TotalSeats)
	if err != nil {
		return "", err
	}
	if flight.AvailableSeats < len(seats) {
		return "", fmt.Errorf("%w: not enough seats available: requested %d, available %d",
			domain.ErrInvalidRequest, len(seats), flight.AvailableSeats)
	}

	booked, err := s.tickets.FindBookedSeatTokens(ctx, input.FlightID)
	if err != nil {
		return "", fmt.Errorf("load booked seats for flight %d: %w", input.FlightID, err)
	}
	if conflicts := domain.SeatConflicts(seats, domain.CanonicalSeats(booked)); len(conflicts) > 0 {
		return "", fmt.Errorf("%w: seats already booked: %s", domain.ErrConflict, strings.Join(conflicts, ", "))
	}

	owner := uuid.NewString()
	release, err := s.holdSeats(ctx, input.FlightID, seats, owner)
	if err != nil {
		return "", err
	}
	defer release()

	return s.commit(ctx, input.FlightID, seats, input.PassengerIDs)
}

// commit reserves seats and persists the ticket. It runs detached from the
// caller's cancellation, bounded by commitTimeout, so seats are never left
// reserved without a ticket or a compensation attempt.
func (s *BookingService) commit(ctx context.Context, flightID int64, seats []string, passengerIDs []int64) (string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.commitTimeout)
	defer cancel()

	// Inventory is the authoritative counter; its refusal wins over the
	// checks above.
	reserved := s.inventory.ReserveSeats(ctx, flightID, len(seats))
	switch reserved.Kind {
	case resilience.KindOK:
	case resilience.KindRejected:
		log.FromContext(ctx).WithError(reserved.Err).WithField("flight_id", flightID).Info("inventory rejected reservation")
		return "", fmt.Errorf("%w: inventory rejected reservation of %d seats on flight %d",
			domain.ErrConflict, len(seats), flightID)
	default:
		_, err := reserved.Unwrap()
		return "", err
	}

	var err error
	ticket := domain.NewTicket("", flightID, seats, passengerIDs)
	ticket.PNR, err = s.generatePNR(ctx)
	if err != nil {
		return "", s.compensate(ctx, ticket, err)
	}
	if err := s.tickets.Save(ctx, &ticket); err != nil {
		return "", s.compensate(ctx, ticket, fmt.Errorf("save ticket: %w", err))
	}

	log.FromContext(ctx).WithFields(logrus.Fields{
		"pnr":       ticket.PNR,
		"ticket_id": ticket.ID,
		"flight_id": ticket.FlightID,
		"seats":     ticket.SeatNumbers,
	}).Info("ticket booked")

	if s.notifier != nil {
		s.notifier.TicketBooked(ctx, ticket)
	}
	return ticket.PNR, nil
}

// compensate gives back reserved seats after a failure that happened before
// the ticket was committed.
func (s *BookingService) compensate(ctx context.Context, ticket domain.Ticket, cause error) error {
	ctx = context.WithoutCancel(ctx)
	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"flight_id":  ticket.FlightID,
		"seat_count": ticket.NumberOfSeats,
		"seats":      ticket.SeatNumbers,
		"pnr":        ticket.PNR,
	})

	if err := s.inventory.CompensateSeats(ctx, ticket.FlightID, ticket.NumberOfSeats); err != nil {
		metrics.CompensationFailures.Inc()
		logger.WithError(err).WithField("cause", cause.Error()).
			Error("seat release failed after booking failure; manual reconciliation required")
		return fmt.Errorf("%w: booking failed (%v) and %d seats on flight %d could not be released: %v",
			domain.ErrUpstreamUnavailable, cause, ticket.NumberOfSeats, ticket.FlightID, err)
	}

	logger.WithError(cause).Warn("booking failed after reservation; seats released")
	return cause
}

func (s *BookingService) generatePNR(ctx context.Context) (string, error) {
	for i := 0; i < maxPNRAttempts; i++ {
		pnr := s.newPNR()
		_, err := s.tickets.FindByPNR(ctx, pnr)
		if errors.Is(err, domain.ErrNotFound) {
			return pnr, nil
		}
		if err != nil {
			return "", fmt.Errorf("check pnr uniqueness: %w", err)
		}
	}
	return "", fmt.Errorf("could not generate a unique pnr after %d attempts", maxPNRAttempts)
}

// holdSeats takes a hold on every seat or none. A hold store outage is
// logged and booking continues on the inventory check alone.
func (s *BookingService) holdSeats(ctx context.Context, flightID int64, seats []string, owner string) (func(), error) {
	if s.holds == nil {
		return func() {}, nil
	}

	held := make([]string, 0, len(seats))
	release := func() {
		rctx := context.WithoutCancel(ctx)
		for _, seat := range held {
			if err := s.holds.ReleaseSeatHold(rctx, flightID, seat, owner); err != nil {
				log.FromContext(ctx).WithError(err).WithField("seat", seat).Warn("release seat hold")
			}
		}
	}

	var contended []string
	for _, seat := range seats {
		ok, err := s.holds.AcquireSeatHold(ctx, flightID, seat, owner, s.holdTTL)
		if err != nil {
			log.FromContext(ctx).WithError(err).WithField("flight_id", flightID).Warn("seat holds unavailable, relying on inventory")
			return release, nil
		}
		if !ok {
			contended = append(contended, seat)
			continue
		}
		held = append(held, seat)
	}
	if len(contended) > 0 {
		release()
		return nil, fmt.Errorf("%w: seats are being booked by another request: %s", domain.ErrConflict, strings.Join(contended, ", "))
	}
	return release, nil
}

var _ BookingUseCase = (*BookingService)(nil)
