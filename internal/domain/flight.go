package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FlightSnapshot is the inventory service's read-only view of a flight.
type FlightSnapshot struct {
	ID             int64     `json:"flightId"`
	Airline        string    `json:"airline,omitempty"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	Price          float64   `json:"price,omitempty"`
	DepartureTime  time.Time `json:"departureTime"`
	ArrivalTime    time.Time `json:"arrivalTime"`
	TotalSeats     int       `json:"totalSeats"`
	AvailableSeats int       `json:"availableSeats"`
}

// UnmarshalJSON accepts departure and arrival times with or without an
// offset. Zone-less local date-times are read as UTC.
func (f *FlightSnapshot) UnmarshalJSON(data []byte) error {
	type plain FlightSnapshot
	aux := struct {
		*plain
		DepartureTime flightTime `json:"departureTime"`
		ArrivalTime   flightTime `json:"arrivalTime"`
	}{plain: (*plain)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f.DepartureTime = time.Time(aux.DepartureTime)
	f.ArrivalTime = time.Time(aux.ArrivalTime)
	return nil
}

var flightTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

type flightTime time.Time

func (t *flightTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*t = flightTime{}
		return nil
	}
	for _, layout := range flightTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			*t = flightTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("unsupported flight time %q", raw)
}

type PassengerDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phoneNum"`
}

type SeatMap struct {
	FlightID       int64    `json:"flight_id"`
	TotalSeats     int      `json:"total_seats"`
	AvailableSeats int      `json:"available_seats"`
	BookedSeats    []string `json:"booked_seats"`
}
