package lookup

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Domenick1991/airticket/internal/domain"
	"github.com/Domenick1991/airticket/internal/gateway"
	"github.com/Domenick1991/airticket/internal/repository"
	"github.com/samber/lo"
)

type LookupUseCase interface {
	GetByPNR(ctx context.Context, pnr string) (domain.TicketView, error)
	GetTicketsByEmail(ctx context.Context, email string) ([]domain.TicketView, error)
	SeatMap(ctx context.Context, flightID int64) (domain.SeatMap, error)
}

// LookupService merges stored tickets with live flight and passenger data.
// It never mutates anything.
type LookupService struct {
	tickets   repository.TicketRepository
	inventory gateway.Inventory
	directory gateway.Directory
}

func NewLookupService(tickets repository.TicketRepository, inventory gateway.Inventory, directory gateway.Directory) *LookupService {
	return &LookupService{
		tickets:   tickets,
		inventory: inventory,
		directory: directory,
	}
}

func (s *LookupService) GetByPNR(ctx context.Context, pnr string) (domain.TicketView, error) {
	if pnr == "" {
		return domain.TicketView{}, fmt.Errorf("%w: pnr is required", domain.ErrInvalidRequest)
	}
	ticket, err := s.tickets.FindByPNR(ctx, pnr)
	if err != nil {
		return domain.TicketView{}, err
	}
	return s.view(ctx, *ticket)
}

// GetTicketsByEmail returns every ticket the passenger travels on. An empty
// list is a valid answer.
func (s *LookupService) GetTicketsByEmail(ctx context.Context, email string) ([]domain.TicketView, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidRequest)
	}
	passengerID, err := s.directory.GetIDByEmail(ctx, email).Unwrap()
	if err != nil {
		return nil, err
	}

	tickets, err := s.tickets.FindAllByPassengerID(ctx, passengerID)
	if err != nil {
		return nil, fmt.Errorf("load tickets of passenger %d: %w", passengerID, err)
	}

	views := make([]domain.TicketView, 0, len(tickets))
	for _, ticket := range tickets {
		view, err := s.view(ctx, ticket)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// SeatMap lists the booked seats of a flight in canonical form, ascending.
func (s *LookupService) SeatMap(ctx context.Context, flightID int64) (domain.SeatMap, error) {
	flight, err := s.inventory.GetFlight(ctx, flightID).Unwrap()
	if err != nil {
		return domain.SeatMap{}, err
	}
	tokens, err := s.tickets.FindBookedSeatTokens(ctx, flightID)
	if err != nil {
		return domain.SeatMap{}, fmt.Errorf("load booked seats for flight %d: %w", flightID, err)
	}

	booked := lo.Uniq(domain.CanonicalSeats(tokens))
	slices.SortFunc(booked, compareSeats)

	return domain.SeatMap{
		FlightID:       flight.ID,
		TotalSeats:     flight.TotalSeats,
		AvailableSeats: flight.AvailableSeats,
		BookedSeats:    booked,
	}, nil
}

func (s *LookupService) view(ctx context.Context, ticket domain.Ticket) (domain.TicketView, error) {
	flight, err := s.inventory.GetFlight(ctx, ticket.FlightID).Unwrap()
	if err != nil {
		return domain.TicketView{}, err
	}

	passengers := make([]domain.PassengerDetails, 0, len(ticket.PassengerIDs))
	for _, id := range ticket.PassengerIDs {
		details, err := s.directory.GetPassengerDetails(ctx, id).Unwrap()
		if err != nil {
			return domain.TicketView{}, err
		}
		passengers = append(passengers, details)
	}
	return domain.NewTicketView(ticket, flight, passengers), nil
}

// compareSeats orders numeric tokens by value and anything else after them.
func compareSeats(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na - nb
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

var _ LookupUseCase = (*LookupService)(nil)
