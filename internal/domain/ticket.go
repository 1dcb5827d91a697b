package domain

import (
	"fmt"
	"time"
)

type Ticket struct {
	ID            int64
	PNR           string
	FlightID      int64
	SeatNumbers   []string
	PassengerIDs  []int64
	NumberOfSeats int
	Booked        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewTicket builds an active ticket; NumberOfSeats is derived from seats.
func NewTicket(pnr string, flightID int64, seats []string, passengerIDs []int64) Ticket {
	return Ticket{
		PNR:           pnr,
		FlightID:      flightID,
		SeatNumbers:   append([]string(nil), seats...),
		PassengerIDs:  append([]int64(nil), passengerIDs...),
		NumberOfSeats: len(seats),
		Booked:        true,
	}
}

// Validate checks that seats, passengers and the seat count agree.
func (t Ticket) Validate() error {
	if len(t.SeatNumbers) != t.NumberOfSeats || len(t.PassengerIDs) != t.NumberOfSeats {
		return fmt.Errorf("%w: ticket %q has %d seats, %d passengers, number_of_seats=%d",
			ErrInvalidRequest, t.PNR, len(t.SeatNumbers), len(t.PassengerIDs), t.NumberOfSeats)
	}
	if t.NumberOfSeats == 0 {
		return fmt.Errorf("%w: ticket %q has no seats", ErrInvalidRequest, t.PNR)
	}
	return nil
}

// TicketView is a stored ticket merged with live flight and passenger data.
type TicketView struct {
	ID            int64              `json:"id"`
	PNR           string             `json:"pnr"`
	FlightID      int64              `json:"flight_id"`
	Origin        string             `json:"origin"`
	Destination   string             `json:"destination"`
	DepartureTime time.Time          `json:"departure_time"`
	ArrivalTime   time.Time          `json:"arrival_time"`
	SeatNumbers   []string           `json:"seat_numbers"`
	NumberOfSeats int                `json:"number_of_seats"`
	Booked        bool               `json:"booked"`
	Passengers    []PassengerDetails `json:"passengers"`
}

func NewTicketView(t Ticket, f FlightSnapshot, passengers []PassengerDetails) TicketView {
	return TicketView{
		ID:            t.ID,
		PNR:           t.PNR,
		FlightID:      t.FlightID,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
		ArrivalTime:   f.ArrivalTime,
		SeatNumbers:   t.SeatNumbers,
		NumberOfSeats: t.NumberOfSeats,
		Booked:        t.Booked,
		Passengers:    passengers,
	}
}
