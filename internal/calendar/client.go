package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/appointly/appointment-backend/internal/employee"
)

// Client talks to the external calendar service over HTTP. The wire protocol
// is a thin free/busy API; everything beyond "is this employee busy at this
// instant" stays opaque to us.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient builds a calendar client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)

	return &Client{
		http:   httpClient,
		logger: logger,
	}
}

type freeBusyRequest struct {
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	EmployeeEmails []string  `json:"employee_emails"`
}

type freeBusyEntry struct {
	EmployeeEmail string `json:"employee_email"`
	EventID       string `json:"event_id"`
}

type freeBusyResponse struct {
	Bookings map[string][]freeBusyEntry `json:"bookings"`
}

func (c *Client) GetBookedSlots(ctx context.Context, from, to time.Time, employees []*employee.Employee) (map[string][]Entry, error) {
	emails := make([]string, len(employees))
	byEmail := make(map[string]string, len(employees))
	for i, e := range employees {
		emails[i] = e.Email
		byEmail[e.Email] = e.ID
	}

	var result freeBusyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(freeBusyRequest{From: from.UTC(), To: to.UTC(), EmployeeEmails: emails}).
		SetResult(&result).
		Post("/free-busy")
	if err != nil {
		c.logger.Warn("calendar free/busy request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		c.logger.Warn("calendar free/busy request rejected",
			zap.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}

	booked := make(map[string][]Entry, len(result.Bookings))
	for slotKey, entries := range result.Bookings {
		for _, entry := range entries {
			booked[slotKey] = append(booked[slotKey], Entry{
				EmployeeID:    byEmail[entry.EmployeeEmail],
				EmployeeEmail: entry.EmployeeEmail,
				EventID:       entry.EventID,
			})
		}
	}
	return booked, nil
}

func (c *Client) GetAvailableEmployeesAtTime(ctx context.Context, slot time.Time, employees []*employee.Employee) ([]*employee.Employee, error) {
	booked, err := c.GetBookedSlots(ctx, slot, slot, employees)
	if err != nil {
		return nil, err
	}

	busy := make(map[string]struct{})
	for _, entry := range booked[SlotKey(slot)] {
		busy[entry.EmployeeID] = struct{}{}
	}

	free := make([]*employee.Employee, 0, len(employees))
	for _, e := range employees {
		if _, isBusy := busy[e.ID]; !isBusy {
			free = append(free, e)
		}
	}
	return free, nil
}
