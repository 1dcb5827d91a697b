package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airticket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	Save(ctx context.Context, ticket *domain.Ticket) error
	FindByID(ctx context.Context, id int64) (*domain.Ticket, error)
	FindByPNR(ctx context.Context, pnr string) (*domain.Ticket, error)
	FindAllByPassengerID(ctx context.Context, passengerID int64) ([]domain.Ticket, error)
	// FindBookedSeatTokens returns the seat tokens of every active ticket on the flight.
	FindBookedSeatTokens(ctx context.Context, flightID int64) ([]string, error)
	// CancelBooked locks the ticket row, runs release while the lock is held
	// and flips booked to false. It reports false without calling release
	// when the ticket is no longer booked.
	CancelBooked(ctx context.Context, id int64, release ReleaseFunc) (*domain.Ticket, bool, error)
}

// ReleaseFunc gives back the seats of a ticket that is about to be cancelled.
// An error aborts the cancellation and leaves the ticket booked.
type ReleaseFunc func(ctx context.Context, ticket domain.Ticket) error

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

const ticketColumns = `id, pnr, flight_id, seat_numbers, passenger_ids, number_of_seats, booked, created_at, updated_at`

// Save inserts a new ticket and fills in its id and timestamps.
func (r *PGTicketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	if err := ticket.Validate(); err != nil {
		return err
	}
	return r.db.QueryRow(ctx, `INSERT INTO tickets (pnr, flight_id, seat_numbers, passenger_ids, number_of_seats, booked)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		ticket.PNR, ticket.FlightID, ticket.SeatNumbers, ticket.PassengerIDs, ticket.NumberOfSeats, ticket.Booked).
		Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *PGTicketRepository) FindByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	row := r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
	t, err := scanTicket(row)
	if err != nil {
		return nil, notFound(err, "ticket %d", id)
	}
	return t, nil
}

func (r *PGTicketRepository) FindByPNR(ctx context.Context, pnr string) (*domain.Ticket, error) {
	row := r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE pnr=$1`, pnr)
	t, err := scanTicket(row)
	if err != nil {
		return nil, notFound(err, "ticket with pnr %q", pnr)
	}
	return t, nil
}

func (r *PGTicketRepository) FindAllByPassengerID(ctx context.Context, passengerID int64) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE $1 = ANY(passenger_ids) ORDER BY id`, passengerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func (r *PGTicketRepository) FindBookedSeatTokens(ctx context.Context, flightID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT unnest(seat_numbers) FROM tickets WHERE flight_id=$1 AND booked`, flightID)
	if err != nil {
		return nil, err
	}
	seats, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	return seats, nil
}

// CancelBooked serializes concurrent cancellations of one ticket on its row
// lock, so seats are released at most once.
func (r *PGTicketRepository) CancelBooked(ctx context.Context, id int64, release ReleaseFunc) (*domain.Ticket, bool, error) {
	var (
		ticket  *domain.Ticket
		changed bool
	)
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		current, err := scanTicket(tx.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return notFound(err, "ticket %d", id)
		}
		ticket = current
		if !current.Booked {
			return nil
		}
		if err := release(ctx, *current); err != nil {
			return err
		}
		ticket, err = scanTicket(tx.QueryRow(ctx,
			`UPDATE tickets SET booked=false, updated_at=now() WHERE id=$1 RETURNING `+ticketColumns, id))
		if err != nil {
			return fmt.Errorf("mark ticket %d cancelled: %w", id, err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return ticket, changed, nil
}

func withTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(&t.ID, &t.PNR, &t.FlightID, &t.SeatNumbers, &t.PassengerIDs, &t.NumberOfSeats, &t.Booked, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf(format+": %w", append(args, domain.ErrNotFound)...)
	}
	return err
}

var _ TicketRepository = (*PGTicketRepository)(nil)
