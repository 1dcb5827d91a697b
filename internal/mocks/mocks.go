// Package mocks holds testify mocks for the service dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/Domenick1991/airticket/internal/domain"
	"github.com/Domenick1991/airticket/internal/repository"
	"github.com/Domenick1991/airticket/internal/resilience"
	"github.com/stretchr/testify/mock"
)

type TicketRepository struct {
	mock.Mock
}

func (m *TicketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *TicketRepository) FindByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *TicketRepository) FindByPNR(ctx context.Context, pnr string) (*domain.Ticket, error) {
	args := m.Called(ctx, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *TicketRepository) FindAllByPassengerID(ctx context.Context, passengerID int64) ([]domain.Ticket, error) {
	args := m.Called(ctx, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *TicketRepository) FindBookedSeatTokens(ctx context.Context, flightID int64) ([]string, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// CancelBooked returns the locked row from the expectation as (ticket,
// error[, commit error]) and runs release when that row is still booked.
func (m *TicketRepository) CancelBooked(ctx context.Context, id int64, release repository.ReleaseFunc) (*domain.Ticket, bool, error) {
	args := m.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return nil, false, err
	}
	current := *args.Get(0).(*domain.Ticket)
	if !current.Booked {
		return &current, false, nil
	}
	if err := release(ctx, current); err != nil {
		return nil, false, err
	}
	if len(args) > 2 {
		if err := args.Error(2); err != nil {
			return nil, false, err
		}
	}
	current.Booked = false
	return &current, true, nil
}

// Inventory mocks gateway.Inventory; expectations return resilience results.
type Inventory struct {
	mock.Mock
}

func (m *Inventory) GetFlight(ctx context.Context, flightID int64) resilience.Result[domain.FlightSnapshot] {
	args := m.Called(ctx, flightID)
	return args.Get(0).(resilience.Result[domain.FlightSnapshot])
}

func (m *Inventory) ReserveSeats(ctx context.Context, flightID int64, count int) resilience.Result[struct{}] {
	args := m.Called(ctx, flightID, count)
	return args.Get(0).(resilience.Result[struct{}])
}

func (m *Inventory) ReleaseSeats(ctx context.Context, flightID int64, count int) resilience.Result[struct{}] {
	args := m.Called(ctx, flightID, count)
	return args.Get(0).(resilience.Result[struct{}])
}

func (m *Inventory) CompensateSeats(ctx context.Context, flightID int64, count int) error {
	args := m.Called(ctx, flightID, count)
	return args.Error(0)
}

type Directory struct {
	mock.Mock
}

func (m *Directory) GetPassengerDetails(ctx context.Context, passengerID int64) resilience.Result[domain.PassengerDetails] {
	args := m.Called(ctx, passengerID)
	return args.Get(0).(resilience.Result[domain.PassengerDetails])
}

func (m *Directory) GetIDByEmail(ctx context.Context, email string) resilience.Result[int64] {
	args := m.Called(ctx, email)
	return args.Get(0).(resilience.Result[int64])
}

// InventoryClient mocks the raw, unguarded inventory client.
type InventoryClient struct {
	mock.Mock
}

func (m *InventoryClient) GetFlight(ctx context.Context, flightID int64) (*domain.FlightSnapshot, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightSnapshot), args.Error(1)
}

func (m *InventoryClient) ReserveSeats(ctx context.Context, flightID int64, count int) error {
	args := m.Called(ctx, flightID, count)
	return args.Error(0)
}

func (m *InventoryClient) ReleaseSeats(ctx context.Context, flightID int64, count int) error {
	args := m.Called(ctx, flightID, count)
	return args.Error(0)
}

type Producer struct {
	mock.Mock
}

func (m *Producer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type Notifier struct {
	mock.Mock
}

func (m *Notifier) TicketBooked(ctx context.Context, ticket domain.Ticket) {
	m.Called(ctx, ticket)
}

func (m *Notifier) TicketCancelled(ctx context.Context, ticket domain.Ticket) {
	m.Called(ctx, ticket)
}

type SeatHolds struct {
	mock.Mock
}

func (m *SeatHolds) AcquireSeatHold(ctx context.Context, flightID int64, seat, owner string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, flightID, seat, owner, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *SeatHolds) ReleaseSeatHold(ctx context.Context, flightID int64, seat, owner string) error {
	args := m.Called(ctx, flightID, seat, owner)
	return args.Error(0)
}

// Unavailable builds a failed result the way an open breaker reports it.
func Unavailable[T any](err error) resilience.Result[T] {
	return resilience.Result[T]{Kind: resilience.KindUnavailable, Err: err}
}

func NotFound[T any](err error) resilience.Result[T] {
	return resilience.Result[T]{Kind: resilience.KindNotFound, Err: err}
}

func Rejected[T any](err error) resilience.Result[T] {
	return resilience.Result[T]{Kind: resilience.KindRejected, Err: err}
}
