package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// maxPages bounds pagination for a single month window.
const maxPages = 20

// Client wraps the Google Calendar service for one account.
type Client struct {
	svc     *calendar.Service
	account string
}

// NewClient creates a Calendar client that sends requests through httpClient.
// Extra options (e.g. option.WithEndpoint) are passed to the service.
func NewClient(ctx context.Context, account string, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc, account: account}, nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// ListEvents lists all event instances in [timeMin, timeMax) ordered by
// start time. Recurring events are expanded into single instances.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	var (
		items     []*calendar.Event
		pageToken string
	)

	for page := 0; page < maxPages; page++ {
		call := c.svc.Events.List(calendarID).
			Context(ctx).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			ShowDeleted(false).
			MaxResults(250)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		items = append(items, events.Items...)

		if events.NextPageToken == "" {
			return items, nil
		}
		pageToken = events.NextPageToken
	}

	return items, fmt.Errorf("failed to list events: more than %d pages", maxPages)
}
