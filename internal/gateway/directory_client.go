package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Domenick1991/airticket/internal/domain"
)

// DirectoryClient talks to the passenger-directory service.
type DirectoryClient interface {
	GetPassengerDetails(ctx context.Context, passengerID int64) (*domain.PassengerDetails, error)
	GetIDByEmail(ctx context.Context, email string) (int64, error)
}

type HTTPDirectoryClient struct {
	api apiClient
}

func NewDirectoryClient(baseURL string, httpClient *http.Client) *HTTPDirectoryClient {
	return &HTTPDirectoryClient{api: newAPIClient(baseURL, httpClient)}
}

func (c *HTTPDirectoryClient) GetPassengerDetails(ctx context.Context, passengerID int64) (*domain.PassengerDetails, error) {
	var details domain.PassengerDetails
	status, err := c.api.do(ctx, http.MethodGet, "/passengers/"+strconv.FormatInt(passengerID, 10), nil, &details)
	if err != nil {
		return nil, fmt.Errorf("get passenger %d: %w", passengerID, err)
	}
	switch status {
	case http.StatusOK:
		return &details, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("passenger %d: %w", passengerID, domain.ErrNotFound)
	default:
		return nil, fmt.Errorf("unexpected status code while getting passenger %d: %d", passengerID, status)
	}
}

func (c *HTTPDirectoryClient) GetIDByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	status, err := c.api.do(ctx, http.MethodGet, "/passengers/email/"+url.PathEscape(email), nil, &id)
	if err != nil {
		return 0, fmt.Errorf("get passenger id by email: %w", err)
	}
	switch status {
	case http.StatusOK:
		return id, nil
	case http.StatusNotFound:
		return 0, fmt.Errorf("passenger with email %q: %w", email, domain.ErrNotFound)
	default:
		return 0, fmt.Errorf("unexpected status code while getting passenger by email: %d", status)
	}
}

var _ DirectoryClient = (*HTTPDirectoryClient)(nil)
