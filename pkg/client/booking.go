package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"roomdesk/internal/scheduling/grid"
	"roomdesk/pkg/model"
)

// BookingClient talks to the roomdesk bookings API.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// Session mirrors the dialog snapshot returned by the session endpoints.
type Session struct {
	ID        string          `json:"id"`
	Date      string          `json:"date"`
	Resource  *model.Resource `json:"resource,omitempty"`
	Selection struct {
		Kind   string         `json:"kind"`
		Anchor grid.TimeOfDay `json:"anchor"`
		Start  grid.TimeOfDay `json:"start"`
		End    grid.TimeOfDay `json:"end"`
	} `json:"selection"`
	InviteText string   `json:"invite_text"`
	Invitees   []string `json:"invitees"`
}

type ClickResult struct {
	Outcome string         `json:"outcome"`
	Booking *model.Booking `json:"booking,omitempty"`
	Session Session        `json:"session"`
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string         `json:"code"`
	Message    string         `json:"error"`
	Details    map[string]any `json:"details"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("roomdesk api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (c *BookingClient) Grid(ctx context.Context, date string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/grid?date="+url.QueryEscape(date))
}

func (c *BookingClient) Resources(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/resources")
}

func (c *BookingClient) ListByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/bookings?date="+url.QueryEscape(date))
	if err != nil {
		return nil, err
	}
	var bookings []*model.Booking
	if err := decodeData(resp, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/bookings/id/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := decodeData(resp, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// OpenSession starts a booking dialog. An empty resource opens it without an
// active room.
func (c *BookingClient) OpenSession(ctx context.Context, date string, resource model.Resource) (*Session, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/sessions", map[string]string{
		"date":   date,
		"branch": resource.Branch,
		"room":   resource.Room,
	})
	if err != nil {
		return nil, err
	}
	return decodeSession(resp)
}

func (c *BookingClient) Click(ctx context.Context, sessionID string, slot grid.TimeOfDay) (*ClickResult, error) {
	resp, err := c.httpClient.POST(ctx, sessionPath(sessionID, "/clicks"), map[string]string{"slot": slot.String()})
	if err != nil {
		return nil, err
	}
	var result ClickResult
	if err := decodeData(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *BookingClient) SetResource(ctx context.Context, sessionID string, resource model.Resource) (*Session, error) {
	resp, err := c.httpClient.PUT(ctx, sessionPath(sessionID, "/resource"), resource)
	if err != nil {
		return nil, err
	}
	return decodeSession(resp)
}

func (c *BookingClient) SetInviteText(ctx context.Context, sessionID, text string) (*Session, error) {
	resp, err := c.httpClient.PUT(ctx, sessionPath(sessionID, "/invite-text"), map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	return decodeSession(resp)
}

func (c *BookingClient) AddInvitee(ctx context.Context, sessionID, invitee string) (*Session, error) {
	resp, err := c.httpClient.POST(ctx, sessionPath(sessionID, "/invitees"), map[string]string{"invitee": invitee})
	if err != nil {
		return nil, err
	}
	return decodeSession(resp)
}

// Commit books the session's range. A non-empty idempotencyKey makes retries
// return the first result.
func (c *BookingClient) Commit(ctx context.Context, sessionID string, form model.BookingForm, idempotencyKey string) (*model.Booking, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	resp, err := c.httpClient.POSTWithHeaders(ctx, sessionPath(sessionID, "/commit"), form, headers)
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := decodeData(resp, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) CloseSession(ctx context.Context, sessionID string) error {
	resp, err := c.httpClient.DELETE(ctx, sessionPath(sessionID, ""))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return decodeAPIError(resp)
	}
	return nil
}

// SearchContacts returns invitee strings for contacts matching query.
func (c *BookingClient) SearchContacts(ctx context.Context, query string, limit int) ([]string, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	resp, err := c.httpClient.GET(ctx, "/api/v1/contacts?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var suggestions []struct {
		Invitee string `json:"invitee"`
	}
	if err := decodeData(resp, &suggestions); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.Invitee)
	}
	return out, nil
}

func sessionPath(id, suffix string) string {
	return "/api/v1/sessions/" + url.PathEscape(id) + suffix
}

func decodeSession(resp *Response) (*Session, error) {
	var session Session
	if err := decodeData(resp, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func decodeData(resp *Response, target any) error {
	if !resp.IsSuccess() {
		return decodeAPIError(resp)
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return fmt.Errorf("could not decode response wrapper: %s: %w", resp.ToString(), err)
	}
	if err := json.Unmarshal(wrapper.Data, target); err != nil {
		return fmt.Errorf("could not decode response data: %s: %w", resp.ToString(), err)
	}
	return nil
}

func decodeAPIError(resp *Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := resp.DecodeJSON(apiErr); err != nil {
		apiErr.Message = string(resp.Body)
	}
	return apiErr
}
