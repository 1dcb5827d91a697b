package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlightSnapshot_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "rfc3339", raw: `"2026-12-01T10:00:00Z"`, want: time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)},
		{name: "with offset", raw: `"2026-12-01T13:00:00+03:00"`, want: time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)},
		{name: "local date-time", raw: `"2026-12-01T10:00:00"`, want: time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)},
		{name: "local with fraction", raw: `"2026-12-01T10:00:00.123"`, want: time.Date(2026, 12, 1, 10, 0, 0, 123_000_000, time.UTC)},
		{name: "minutes only", raw: `"2026-12-01T10:00"`, want: time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)},
		{name: "null", raw: `null`, want: time.Time{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var flight FlightSnapshot
			err := json.Unmarshal([]byte(`{"flightId":1,"origin":"SVO","departureTime":`+tc.raw+`,"totalSeats":10}`), &flight)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(flight.DepartureTime), "got %s", flight.DepartureTime)
			assert.Equal(t, int64(1), flight.ID)
			assert.Equal(t, "SVO", flight.Origin)
			assert.Equal(t, 10, flight.TotalSeats)
		})
	}
}

func TestFlightSnapshot_UnmarshalJSON_BadTime(t *testing.T) {
	var flight FlightSnapshot
	err := json.Unmarshal([]byte(`{"flightId":1,"departureTime":"01.12.2026 10:00"}`), &flight)
	assert.Error(t, err)
}

func TestFlightSnapshot_RoundTrip(t *testing.T) {
	in := FlightSnapshot{ID: 3, DepartureTime: time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out FlightSnapshot
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, in.DepartureTime.Equal(out.DepartureTime))
}
