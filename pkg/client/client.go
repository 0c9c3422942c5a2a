package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/smartcommhub/commhub/pkg/auth"
	"github.com/smartcommhub/commhub/pkg/domain"
)

// Client is the CommHub API client for the domain endpoints. Every call
// goes through the session manager's authenticated pipeline, so any 401
// participates in the refresh-and-retry protocol before it surfaces here.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client bound to the manager's session.
func New(m *auth.Manager) *Client {
	return &Client{
		baseURL:    m.BaseURL(),
		httpClient: m.Client(),
	}
}

// --- Notices ---

// CreateNoticeRequest is the payload for publishing a community notice.
type CreateNoticeRequest struct {
	CommunityID string `json:"community_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	TargetGroup string `json:"target_group"`
}

// ListNotices returns community notices, newest first.
func (c *Client) ListNotices(ctx context.Context, limit, offset int) ([]domain.Notice, error) {
	var notices []domain.Notice
	if err := c.get(ctx, "/api/notices/?"+pageParams(limit, offset), &notices); err != nil {
		return nil, fmt.Errorf("client.ListNotices: %w", err)
	}
	return notices, nil
}

// CreateNotice publishes a notice. Admin only on the backend side.
func (c *Client) CreateNotice(ctx context.Context, req CreateNoticeRequest) (*domain.Notice, error) {
	var created domain.Notice
	if err := c.post(ctx, "/api/notices/", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateNotice: %w", err)
	}
	return &created, nil
}

// --- Elders ---

// ListElders returns the resident directory.
func (c *Client) ListElders(ctx context.Context, limit, offset int) ([]domain.Elder, error) {
	var elders []domain.Elder
	if err := c.get(ctx, "/api/elders/?"+pageParams(limit, offset), &elders); err != nil {
		return nil, fmt.Errorf("client.ListElders: %w", err)
	}
	return elders, nil
}

// GetElder fetches a single resident by ID.
func (c *Client) GetElder(ctx context.Context, elderlyID int64) (*domain.Elder, error) {
	var elder domain.Elder
	if err := c.get(ctx, "/api/elders/"+strconv.FormatInt(elderlyID, 10), &elder); err != nil {
		return nil, fmt.Errorf("client.GetElder: %w", err)
	}
	return &elder, nil
}

// ListHealthRecords returns monitoring samples for an elder.
func (c *Client) ListHealthRecords(ctx context.Context, elderlyID int64, limit, offset int) ([]domain.HealthRecord, error) {
	params := url.Values{}
	params.Set("elderly_id", strconv.FormatInt(elderlyID, 10))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var records []domain.HealthRecord
	if err := c.get(ctx, "/api/health-records/?"+params.Encode(), &records); err != nil {
		return nil, fmt.Errorf("client.ListHealthRecords: %w", err)
	}
	return records, nil
}

// ListAccessRecords returns gate events for an elder.
func (c *Client) ListAccessRecords(ctx context.Context, elderlyID int64, limit, offset int) ([]domain.AccessRecord, error) {
	params := url.Values{}
	params.Set("elderly_id", strconv.FormatInt(elderlyID, 10))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var records []domain.AccessRecord
	if err := c.get(ctx, "/api/access/?"+params.Encode(), &records); err != nil {
		return nil, fmt.Errorf("client.ListAccessRecords: %w", err)
	}
	return records, nil
}

// --- Alerts ---

// ListAlerts returns monitoring alerts, optionally filtered by elder and
// acknowledgement state ("" for all).
func (c *Client) ListAlerts(ctx context.Context, elderlyID int64, ackStatus string, limit, offset int) ([]domain.Alert, error) {
	params := url.Values{}
	if elderlyID > 0 {
		params.Set("elderly_id", strconv.FormatInt(elderlyID, 10))
	}
	if ackStatus != "" {
		params.Set("ack_status", ackStatus)
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var alerts []domain.Alert
	if err := c.get(ctx, "/api/alerts/?"+params.Encode(), &alerts); err != nil {
		return nil, fmt.Errorf("client.ListAlerts: %w", err)
	}
	return alerts, nil
}

// AckAlert acknowledges an alert.
func (c *Client) AckAlert(ctx context.Context, alertID int64) (*domain.Alert, error) {
	var updated domain.Alert
	path := "/api/alerts/" + strconv.FormatInt(alertID, 10) + "/ack"
	if err := c.doRequest(ctx, http.MethodPatch, path, nil, &updated); err != nil {
		return nil, fmt.Errorf("client.AckAlert: %w", err)
	}
	return &updated, nil
}

// SilenceAlert silences an alert until the given time.
func (c *Client) SilenceAlert(ctx context.Context, alertID int64, until time.Time) (*domain.Alert, error) {
	var updated domain.Alert
	path := "/api/alerts/" + strconv.FormatInt(alertID, 10) + "/silence"
	body := map[string]string{"until": until.Format(time.RFC3339)}
	if err := c.doRequest(ctx, http.MethodPatch, path, body, &updated); err != nil {
		return nil, fmt.Errorf("client.SilenceAlert: %w", err)
	}
	return &updated, nil
}

// --- Orders ---

// CreateOrderRequest is the payload for booking a service.
type CreateOrderRequest struct {
	ElderlyID   int64     `json:"elderly_id"`
	ServiceID   int64     `json:"service_id"`
	ServiceTime time.Time `json:"service_time"`
}

// ListOrders returns service orders, optionally filtered by elder and
// status ("" for all).
func (c *Client) ListOrders(ctx context.Context, elderlyID int64, status string, limit, offset int) ([]domain.ServiceOrder, error) {
	params := url.Values{}
	if elderlyID > 0 {
		params.Set("elderly_id", strconv.FormatInt(elderlyID, 10))
	}
	if status != "" {
		params.Set("status", status)
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var orders []domain.ServiceOrder
	if err := c.get(ctx, "/api/orders/?"+params.Encode(), &orders); err != nil {
		return nil, fmt.Errorf("client.ListOrders: %w", err)
	}
	return orders, nil
}

// CreateOrder books a service for an elder.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.ServiceOrder, error) {
	var created domain.ServiceOrder
	if err := c.post(ctx, "/api/orders/", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateOrder: %w", err)
	}
	return &created, nil
}

// ConfirmOrder moves an order to CONFIRMED.
func (c *Client) ConfirmOrder(ctx context.Context, orderID int64) error {
	path := "/api/orders/" + strconv.FormatInt(orderID, 10) + "/confirm"
	if err := c.doRequest(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("client.ConfirmOrder: %w", err)
	}
	return nil
}

// CompleteOrder moves an order to COMPLETED.
func (c *Client) CompleteOrder(ctx context.Context, orderID int64) error {
	path := "/api/orders/" + strconv.FormatInt(orderID, 10) + "/complete"
	if err := c.doRequest(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("client.CompleteOrder: %w", err)
	}
	return nil
}

// RateOrder leaves a score (1-5) and optional comment on a completed order.
func (c *Client) RateOrder(ctx context.Context, orderID int64, score int, content string) error {
	path := "/api/orders/" + strconv.FormatInt(orderID, 10) + "/rate"
	body := map[string]any{"eval_score": score, "eval_content": content}
	if err := c.doRequest(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("client.RateOrder: %w", err)
	}
	return nil
}

// --- Services ---

// ListServices returns the service catalogue.
func (c *Client) ListServices(ctx context.Context, limit, offset int) ([]domain.ServiceItem, error) {
	var items []domain.ServiceItem
	if err := c.get(ctx, "/api/services/?"+pageParams(limit, offset), &items); err != nil {
		return nil, fmt.Errorf("client.ListServices: %w", err)
	}
	return items, nil
}

func pageParams(limit, offset int) string {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	return params.Encode()
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Detail != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Detail}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
