package gateway

import (
	"context"
	"time"

	"github.com/Domenick1991/airticket/internal/domain"
	"github.com/Domenick1991/airticket/internal/resilience"
)

// Inventory is the breaker-guarded view of the inventory service.
type Inventory interface {
	GetFlight(ctx context.Context, flightID int64) resilience.Result[domain.FlightSnapshot]
	ReserveSeats(ctx context.Context, flightID int64, count int) resilience.Result[struct{}]
	ReleaseSeats(ctx context.Context, flightID int64, count int) resilience.Result[struct{}]
	// CompensateSeats releases seats even while the breaker is open so a
	// failed booking never leaves inventory debited.
	CompensateSeats(ctx context.Context, flightID int64, count int) error
}

// Directory is the breaker-guarded view of the passenger directory.
type Directory interface {
	GetPassengerDetails(ctx context.Context, passengerID int64) resilience.Result[domain.PassengerDetails]
	GetIDByEmail(ctx context.Context, email string) resilience.Result[int64]
}

type GuardedInventory struct {
	client  InventoryClient
	breaker *resilience.Breaker
	timeout time.Duration
}

func NewGuardedInventory(client InventoryClient, breaker *resilience.Breaker, timeout time.Duration) *GuardedInventory {
	return &GuardedInventory{client: client, breaker: breaker, timeout: timeout}
}

func (g *GuardedInventory) GetFlight(ctx context.Context, flightID int64) resilience.Result[domain.FlightSnapshot] {
	return resilience.Do(ctx, g.breaker, g.timeout, func(ctx context.Context) (domain.FlightSnapshot, error) {
		flight, err := g.client.GetFlight(ctx, flightID)
		if err != nil {
			return domain.FlightSnapshot{}, err
		}
		return *flight, nil
	})
}

func (g *GuardedInventory) ReserveSeats(ctx context.Context, flightID int64, count int) resilience.Result[struct{}] {
	return resilience.Do(ctx, g.breaker, g.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.client.ReserveSeats(ctx, flightID, count)
	})
}

func (g *GuardedInventory) ReleaseSeats(ctx context.Context, flightID int64, count int) resilience.Result[struct{}] {
	return resilience.Do(ctx, g.breaker, g.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.client.ReleaseSeats(ctx, flightID, count)
	})
}

func (g *GuardedInventory) CompensateSeats(ctx context.Context, flightID int64, count int) error {
	_, err := resilience.Call(ctx, g.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.client.ReleaseSeats(ctx, flightID, count)
	})
	return err
}

type GuardedDirectory struct {
	client  DirectoryClient
	breaker *resilience.Breaker
	timeout time.Duration
}

func NewGuardedDirectory(client DirectoryClient, breaker *resilience.Breaker, timeout time.Duration) *GuardedDirectory {
	return &GuardedDirectory{client: client, breaker: breaker, timeout: timeout}
}

func (g *GuardedDirectory) GetPassengerDetails(ctx context.Context, passengerID int64) resilience.Result[domain.PassengerDetails] {
	return resilience.Do(ctx, g.breaker, g.timeout, func(ctx context.Context) (domain.PassengerDetails, error) {
		details, err := g.client.GetPassengerDetails(ctx, passengerID)
		if err != nil {
			return domain.PassengerDetails{}, err
		}
		return *details, nil
	})
}

func (g *GuardedDirectory) GetIDByEmail(ctx context.Context, email string) resilience.Result[int64] {
	return resilience.Do(ctx, g.breaker, g.timeout, func(ctx context.Context) (int64, error) {
		return g.client.GetIDByEmail(ctx, email)
	})
}

var (
	_ Inventory = (*GuardedInventory)(nil)
	_ Directory = (*GuardedDirectory)(nil)
)
