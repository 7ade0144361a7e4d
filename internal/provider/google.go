package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/GabeCabrera/aisle-board-sub002/internal/models"
)

const (
	listPageSize       = 250
	defaultEventLength = time.Hour
)

// GoogleFactory builds Google Calendar clients from a tenant's stored OAuth
// token. One factory is shared process-wide; clients are cheap per pass.
type GoogleFactory struct {
	clientID     string
	clientSecret string
	timeout      time.Duration
	logger       *slog.Logger
}

func NewGoogleFactory(clientID, clientSecret string, timeout time.Duration, logger *slog.Logger) *GoogleFactory {
	return &GoogleFactory{
		clientID:     clientID,
		clientSecret: clientSecret,
		timeout:      timeout,
		logger:       logger,
	}
}

func (f *GoogleFactory) ForConnection(ctx context.Context, conn *models.CalendarConnection) (Calendar, error) {
	config := &oauth2.Config{
		ClientID:     f.clientID,
		ClientSecret: f.clientSecret,
		Scopes:       []string{calendar.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
	token := &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.TokenExpiresAt,
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &googleCalendar{service: service, timeout: f.timeout, logger: f.logger}, nil
}

type googleCalendar struct {
	service *calendar.Service
	timeout time.Duration
	logger  *slog.Logger
}

// List walks every result page before returning, so the Delta's NextCursor
// is only handed out once the full window has been read.
func (g *googleCalendar) List(ctx context.Context, calendarID, cursor string) (*Delta, error) {
	delta := &Delta{}
	pageToken := ""

	for {
		cctx, cancel := context.WithTimeout(ctx, g.timeout)
		call := g.service.Events.List(calendarID).
			ShowDeleted(true).
			MaxResults(listPageSize).
			Context(cctx)
		if cursor != "" {
			call = call.SyncToken(cursor)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		cancel()
		if err != nil {
			if statusCode(err) == http.StatusGone {
				// The sync token has been invalidated server-side; the
				// caller must re-list without a cursor.
				return nil, ErrCursorExpired
			}
			return nil, fmt.Errorf("failed to list events: %w", err)
		}

		for _, item := range resp.Items {
			delta.Events = append(delta.Events, fromGoogleEvent(item))
		}

		if resp.NextPageToken != "" {
			pageToken = resp.NextPageToken
			continue
		}
		delta.NextCursor = resp.NextSyncToken
		g.logger.Debug("listed provider events", "calendar_id", calendarID, "count", len(delta.Events))
		return delta, nil
	}
}

func (g *googleCalendar) Create(ctx context.Context, calendarID string, event *models.CalendarEvent) (*CreateResult, error) {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	created, err := g.service.Events.Insert(calendarID, toGoogleEvent(event)).Context(cctx).Do()
	if err != nil {
		return nil, classifyError(err)
	}

	return &CreateResult{ProviderID: created.Id, Etag: created.Etag}, nil
}

func (g *googleCalendar) Update(ctx context.Context, calendarID, providerID, etag string, event *models.CalendarEvent) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	call := g.service.Events.Update(calendarID, providerID, toGoogleEvent(event)).Context(cctx)
	if etag != "" {
		call.Header().Set("If-Match", etag)
	}

	updated, err := call.Do()
	if err != nil {
		return "", classifyError(err)
	}
	return updated.Etag, nil
}

func (g *googleCalendar) Delete(ctx context.Context, calendarID, providerID string) error {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err := g.service.Events.Delete(calendarID, providerID).Context(cctx).Do()
	if err != nil {
		return classifyError(err)
	}
	return nil
}

// classifyError maps provider HTTP status codes onto the package error
// taxonomy. Anything unrecognised stays wrapped as-is and is treated as
// transient by callers.
func classifyError(err error) error {
	switch statusCode(err) {
	case http.StatusPreconditionFailed, http.StatusConflict:
		return ErrConflict
	case http.StatusNotFound, http.StatusGone:
		return ErrNotFound
	}
	return fmt.Errorf("provider request failed: %w", err)
}

func statusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

func toGoogleEvent(event *models.CalendarEvent) *calendar.Event {
	out := &calendar.Event{Summary: event.Title}
	if event.Description != nil {
		out.Description = *event.Description
	}
	if event.Location != nil {
		out.Location = *event.Location
	}

	end := event.StartTime.Add(defaultEventLength)
	if event.EndTime != nil {
		end = *event.EndTime
	}

	if event.AllDay {
		out.Start = &calendar.EventDateTime{Date: event.StartTime.Format("2006-01-02")}
		if event.EndTime == nil {
			end = event.StartTime.AddDate(0, 0, 1)
		}
		out.End = &calendar.EventDateTime{Date: end.Format("2006-01-02")}
	} else {
		out.Start = &calendar.EventDateTime{DateTime: event.StartTime.Format(time.RFC3339)}
		out.End = &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)}
	}
	return out
}

func fromGoogleEvent(item *calendar.Event) Event {
	event := Event{
		ProviderID:  item.Id,
		Etag:        item.Etag,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Cancelled:   item.Status == "cancelled",
	}

	// Cancelled tombstones carry little more than an id; skip time parsing.
	if item.Start != nil {
		if item.Start.Date != "" {
			event.AllDay = true
			event.StartTime, _ = time.Parse("2006-01-02", item.Start.Date)
		} else {
			event.StartTime, _ = time.Parse(time.RFC3339, item.Start.DateTime)
		}
	}
	if item.End != nil {
		if item.End.Date != "" {
			event.EndTime, _ = time.Parse("2006-01-02", item.End.Date)
		} else {
			event.EndTime, _ = time.Parse(time.RFC3339, item.End.DateTime)
		}
	}
	return event
}
