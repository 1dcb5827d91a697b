package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Domenick1991/airticket/internal/domain"
)

// InventoryClient talks to the flight/seat-inventory service.
type InventoryClient interface {
	GetFlight(ctx context.Context, flightID int64) (*domain.FlightSnapshot, error)
	ReserveSeats(ctx context.Context, flightID int64, count int) error
	ReleaseSeats(ctx context.Context, flightID int64, count int) error
}

type HTTPInventoryClient struct {
	api apiClient
}

func NewInventoryClient(baseURL string, httpClient *http.Client) *HTTPInventoryClient {
	return &HTTPInventoryClient{api: newAPIClient(baseURL, httpClient)}
}

func (c *HTTPInventoryClient) GetFlight(ctx context.Context, flightID int64) (*domain.FlightSnapshot, error) {
	var flight domain.FlightSnapshot
	status, err := c.api.do(ctx, http.MethodGet, flightPath(flightID), nil, &flight)
	if err != nil {
		return nil, fmt.Errorf("get flight %d: %w", flightID, err)
	}
	switch status {
	case http.StatusOK:
		return &flight, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("flight %d: %w", flightID, domain.ErrNotFound)
	default:
		return nil, fmt.Errorf("unexpected status code while getting flight %d: %d", flightID, status)
	}
}

func (c *HTTPInventoryClient) ReserveSeats(ctx context.Context, flightID int64, count int) error {
	return c.adjustSeats(ctx, "reserve", flightID, count)
}

func (c *HTTPInventoryClient) ReleaseSeats(ctx context.Context, flightID int64, count int) error {
	return c.adjustSeats(ctx, "release", flightID, count)
}

func (c *HTTPInventoryClient) adjustSeats(ctx context.Context, action string, flightID int64, count int) error {
	path := flightPath(flightID) + "/" + action + "?seats=" + strconv.Itoa(count)
	status, err := c.api.do(ctx, http.MethodPut, path, nil, nil)
	if err != nil {
		return fmt.Errorf("%s %d seats on flight %d: %w", action, count, flightID, err)
	}
	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("flight %d: %w", flightID, domain.ErrNotFound)
	case http.StatusConflict, http.StatusBadRequest:
		return fmt.Errorf("inventory refused to %s %d seats on flight %d: %w", action, count, flightID, domain.ErrConflict)
	default:
		return fmt.Errorf("unexpected status code while trying to %s seats on flight %d: %d", action, flightID, status)
	}
}

func flightPath(flightID int64) string {
	return "/flights/" + strconv.FormatInt(flightID, 10)
}

var _ InventoryClient = (*HTTPInventoryClient)(nil)
