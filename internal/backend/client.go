package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fitprime-classes/config"
	"fitprime-classes/internal/apperror"
)

// Client talks to the Fitness Prime REST API. It never retries; callers
// decide whether to offer a retry.
type Client struct {
	baseURL    string
	headers    map[string]string
	adminToken string
	client     *http.Client
}

// NewClient creates a backend client from configuration.
func NewClient(cfg *config.BackendConfig) *Client {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Backend client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		headers:    cfg.Headers,
		adminToken: cfg.AdminToken,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// BaseURL returns the backend origin, used to resolve relative image paths.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchClasses returns the raw class list for the given query.
func (c *Client) FetchClasses(ctx context.Context, q ClassQuery) ([]RawClass, error) {
	path := "/api/clases"
	params := url.Values{}
	switch {
	case q.ForUser != "":
		path = "/api/clases/con-reservas-usuario"
		params.Set("usuarioId", q.ForUser)
	case q.AllOrdered:
		path = "/api/clases/todas-ordenadas"
	}
	if q.ActivityID != "" {
		params.Set("actividadId", q.ActivityID)
	}
	if !q.Date.IsZero() {
		params.Set("fecha", q.Date.Format("2006-01-02"))
	}

	var env Envelope[[]RawClass]
	if err := c.do(ctx, http.MethodGet, path, params, nil, q.AllOrdered, &env); err != nil {
		return nil, err
	}
	if q.ForUser != "" {
		for i := range env.Data {
			env.Data[i].RequestedFor = q.ForUser
		}
	}
	return env.Data, nil
}

// FetchActivities returns the activity list used by the filter dropdown.
func (c *Client) FetchActivities(ctx context.Context) ([]RawActivity, error) {
	var env Envelope[[]RawActivity]
	if err := c.do(ctx, http.MethodGet, "/api/actividad", nil, nil, false, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// FetchUserReservations returns every reservation of a user, each with its class embedded.
func (c *Client) FetchUserReservations(ctx context.Context, userID string) ([]RawReservation, error) {
	var env Envelope[[]RawReservation]
	params := url.Values{"usuario": {userID}}
	if err := c.do(ctx, http.MethodGet, "/api/Reservas", params, nil, false, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// FetchClassReservations returns the admin report of reservations for one class.
func (c *Client) FetchClassReservations(ctx context.Context, classID string) ([]ClassReservationRow, error) {
	var env Envelope[[]ClassReservationRow]
	params := url.Values{"claseId": {classID}}
	if err := c.do(ctx, http.MethodGet, "/api/Reservas/filtrado", params, nil, true, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// FetchContractsByStatus returns the admin report of users by contract status.
func (c *Client) FetchContractsByStatus(ctx context.Context, status string) (json.RawMessage, error) {
	var env Envelope[json.RawMessage]
	params := url.Values{"estado": {status}}
	if err := c.do(ctx, http.MethodGet, "/api/contratos/filtrado", params, nil, true, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateReservation registers a pending reservation for a user on a class.
func (c *Client) CreateReservation(ctx context.Context, userID, classID string, at time.Time) (*RawReservation, error) {
	body := NewReservation{
		ReservedAt: at.UTC(),
		Status:     wireStatusPending,
		UserID:     userID,
		ClassID:    classID,
	}
	var env Envelope[RawReservation]
	if err := c.do(ctx, http.MethodPost, "/api/Reservas", nil, body, false, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// RecomputeCapacity asks the backend to recompute a class's booked capacity.
func (c *Client) RecomputeCapacity(ctx context.Context, classID string) error {
	return c.do(ctx, http.MethodPatch, "/api/clases/"+url.PathEscape(classID)+"/actualizar-cupo", nil, nil, false, nil)
}

// CancelReservation sets a reservation's status to cancelled.
func (c *Client) CancelReservation(ctx context.Context, reservationID string) error {
	body := map[string]string{"estado": wireStatusCancelled}
	return c.do(ctx, http.MethodPatch, "/api/Reservas/"+url.PathEscape(reservationID), nil, body, false, nil)
}

// FetchMemberships returns the memberships on offer.
func (c *Client) FetchMemberships(ctx context.Context) (json.RawMessage, error) {
	var env Envelope[json.RawMessage]
	if err := c.do(ctx, http.MethodGet, "/api/membresias", nil, nil, false, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// FetchUserContracts returns every contract of a user.
func (c *Client) FetchUserContracts(ctx context.Context, userID string) (json.RawMessage, error) {
	var env Envelope[json.RawMessage]
	if err := c.do(ctx, http.MethodGet, "/api/contratos/usuario/"+url.PathEscape(userID), nil, nil, false, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// HireMembership contracts or renews a membership. The raw backend
// response is returned untouched.
func (c *Client) HireMembership(ctx context.Context, req HireRequest) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/contratos/contratar", nil, req, false, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SimulatePayment pays a pending contract through the backend's payment simulation.
func (c *Client) SimulatePayment(ctx context.Context, req PaymentRequest) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/contratos/simular-pago", nil, req, false, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelContract cancels a contract.
func (c *Client) CancelContract(ctx context.Context, contractID string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPatch, "/api/contratos/cancelar/"+url.PathEscape(contractID), nil, nil, false, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do performs one request. Transport failures become *apperror.NetworkError,
// non-2xx responses become *apperror.HTTPError.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, admin bool, out any) error {
	op := method + " " + path

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request body: %w", op, err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if admin && c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &apperror.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperror.NetworkError{Op: op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(respBody, &errBody)
		return &apperror.HTTPError{Op: op, Status: resp.StatusCode, Message: errBody.Message}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: failed to unmarshal response: %w", op, err)
	}
	return nil
}
