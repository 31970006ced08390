package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MKhiriev/nota-sync/internal/adapter"
	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/internal/store"
	"github.com/MKhiriev/nota-sync/models"
)

// importWindow bounds how far ahead events are imported.
const importWindow = 3 // months

// taskIDPrefix marks tasks created from external calendar events. The
// derived ID makes re-importing the same event idempotent.
const taskIDPrefix = "gcal-"

type calendarImporter struct {
	store    Storage
	calendar adapter.CalendarClient
	logger   *logger.Logger

	now func() time.Time
}

func NewCalendarImporter(localStore Storage, calendar adapter.CalendarClient, log *logger.Logger) CalendarImporter {
	return &calendarImporter{
		store:    localStore,
		calendar: calendar,
		logger:   log,
		now:      time.Now,
	}
}

// Connect implements [CalendarImporter]. The expiry is persisted as unix
// milliseconds, the format earlier releases wrote.
func (c *calendarImporter) Connect(token string, expiry time.Time) error {
	if err := c.store.SetSetting(store.SettingGoogleAccessToken, token); err != nil {
		return fmt.Errorf("failed to persist calendar token: %w", err)
	}
	if err := c.store.SetSetting(store.SettingGoogleTokenExpiry, strconv.FormatInt(expiry.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("failed to persist calendar token expiry: %w", err)
	}
	if err := c.store.SetSetting(store.SettingCalendarEnabled, "true"); err != nil {
		return fmt.Errorf("failed to enable calendar integration: %w", err)
	}

	c.calendar.SetAccessToken(token)
	return nil
}

// Disconnect implements [CalendarImporter].
func (c *calendarImporter) Disconnect() error {
	c.clearToken()
	c.calendar.SetAccessToken("")

	if err := c.store.SetSetting(store.SettingCalendarEnabled, "false"); err != nil {
		return fmt.Errorf("failed to disable calendar integration: %w", err)
	}
	return nil
}

// IsEnabled implements [CalendarImporter].
func (c *calendarImporter) IsEnabled() bool {
	value, _ := c.store.Setting(store.SettingCalendarEnabled)
	return value == "true"
}

// ListCalendars implements [CalendarImporter].
func (c *calendarImporter) ListCalendars(ctx context.Context) ([]models.Calendar, error) {
	token, err := c.validToken()
	if err != nil {
		return nil, err
	}
	c.calendar.SetAccessToken(token)

	calendars, err := c.calendar.FetchCalendars(ctx)
	if errors.Is(err, adapter.ErrCalendarAuthExpired) {
		c.clearToken()
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	return calendars, nil
}

// ImportEventsAsTasks implements [CalendarImporter]. Events land as tasks
// with a derived gcal- ID; events already imported (by external event ID)
// and events without a title are skipped. A rejected token aborts the
// batch and discards the stored credentials; any other per-calendar
// failure only shrinks the result.
func (c *calendarImporter) ImportEventsAsTasks(ctx context.Context, calendarIDs []string) (models.ImportResult, error) {
	log := logger.FromContext(ctx)

	token, err := c.validToken()
	if err != nil {
		return models.ImportResult{}, err
	}
	c.calendar.SetAccessToken(token)

	from := c.now()
	to := from.AddDate(0, importWindow, 0)

	existing, err := c.importedEventIDs(ctx)
	if err != nil {
		return models.ImportResult{}, err
	}

	var tasks []models.TodoItem

	for _, calendarID := range calendarIDs {
		events, fetchErr := c.calendar.FetchEvents(ctx, calendarID, from, to)
		if errors.Is(fetchErr, adapter.ErrCalendarAuthExpired) {
			c.clearToken()
			return models.ImportResult{}, fetchErr
		}
		if fetchErr != nil {
			log.Err(fetchErr).
				Str("func", "calendarImporter.ImportEventsAsTasks").
				Str("calendar_id", calendarID).
				Msg("failed to fetch events, skipping calendar")
			continue
		}

		for _, event := range events {
			if event.Summary == "" || existing[event.ID] {
				continue
			}

			todo := models.TodoItem{
				ID:                    taskIDPrefix + event.ID,
				Text:                  event.Summary,
				Description:           event.Description,
				Location:              event.Location,
				DueDate:               eventDueDate(event.Start),
				GoogleCalendarEventID: event.ID,
			}

			saved, saveErr := c.store.SaveTodo(ctx, todo)
			if saveErr != nil {
				log.Err(saveErr).
					Str("func", "calendarImporter.ImportEventsAsTasks").
					Str("event_id", event.ID).
					Msg("failed to save imported task")
				continue
			}

			existing[event.ID] = true
			tasks = append(tasks, saved)
		}
	}

	return models.ImportResult{Tasks: tasks, Count: len(tasks)}, nil
}

// validToken returns the stored access token, discarding it first when
// its recorded expiry has passed.
func (c *calendarImporter) validToken() (string, error) {
	token, ok := c.store.Setting(store.SettingGoogleAccessToken)
	if !ok || token == "" {
		return "", ErrCalendarNotConnected
	}

	if raw, ok := c.store.Setting(store.SettingGoogleTokenExpiry); ok {
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err == nil && c.now().After(time.UnixMilli(millis)) {
			c.clearToken()
			return "", adapter.ErrCalendarAuthExpired
		}
	}

	return token, nil
}

func (c *calendarImporter) importedEventIDs(ctx context.Context) (map[string]bool, error) {
	todos, err := c.store.GetAllTodos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks for import dedup: %w", err)
	}

	ids := make(map[string]bool, len(todos))
	for _, todo := range todos {
		if todo.GoogleCalendarEventID != "" {
			ids[todo.GoogleCalendarEventID] = true
		}
	}
	return ids, nil
}

func (c *calendarImporter) clearToken() {
	if err := c.store.DeleteSetting(store.SettingGoogleAccessToken); err != nil {
		c.logger.Err(err).Str("func", "calendarImporter.clearToken").Msg("failed to discard calendar token")
	}
	if err := c.store.DeleteSetting(store.SettingGoogleTokenExpiry); err != nil {
		c.logger.Err(err).Str("func", "calendarImporter.clearToken").Msg("failed to discard calendar token expiry")
	}
}

// eventDueDate converts the provider's start time into a task due date.
// Timed events parse as RFC 3339; all-day events pin to local midnight.
func eventDueDate(start models.EventTime) *time.Time {
	if start.DateTime != "" {
		at, err := time.Parse(time.RFC3339, start.DateTime)
		if err == nil {
			return &at
		}
		return nil
	}
	if start.Date != "" {
		at, err := time.ParseInLocation("2006-01-02", start.Date, time.Local)
		if err == nil {
			return &at
		}
	}
	return nil
}
