// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/nota-sync/internal/config"
	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/models"
)

type httpCalendarClient struct {
	client *resty.Client

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPCalendarClient constructs the calendar provider client. The
// access token is injected later via SetAccessToken, once the user
// connects their calendar.
func NewHTTPCalendarClient(cfg config.Calendar, log *logger.Logger) (CalendarClient, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar base url: %w", err)
	}

	client := resty.New().SetBaseURL(baseURL)

	return &httpCalendarClient{client: client, logger: log}, nil
}

// SetAccessToken implements [CalendarClient].
func (c *httpCalendarClient) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

func (c *httpCalendarClient) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type calendarListResponse struct {
	Items []models.Calendar `json:"items"`
}

type eventListResponse struct {
	Items []models.CalendarEvent `json:"items"`
}

// FetchCalendars implements [CalendarClient]. It GETs the user's calendar
// list. A 401 maps to [ErrCalendarAuthExpired] so the caller can discard
// the stored token.
func (c *httpCalendarClient) FetchCalendars(ctx context.Context) ([]models.Calendar, error) {
	var list calendarListResponse

	resp, err := c.authedRequest(ctx).
		SetResult(&list).
		Get("/users/me/calendarList")
	if err != nil {
		return nil, fmt.Errorf("fetch calendars request: %w", err)
	}
	if err = c.mapCalendarError(resp); err != nil {
		return nil, err
	}

	return list.Items, nil
}

// FetchEvents implements [CalendarClient]. It GETs the events of one
// calendar within [from, to), expanded to single instances and ordered by
// start time. A 401 maps to [ErrCalendarAuthExpired].
func (c *httpCalendarClient) FetchEvents(ctx context.Context, calendarID string, from, to time.Time) ([]models.CalendarEvent, error) {
	var list eventListResponse

	resp, err := c.authedRequest(ctx).
		SetQueryParams(map[string]string{
			"timeMin":      from.Format(time.RFC3339),
			"timeMax":      to.Format(time.RFC3339),
			"singleEvents": "true",
			"orderBy":      "startTime",
		}).
		SetResult(&list).
		Get("/calendars/" + url.PathEscape(calendarID) + "/events")
	if err != nil {
		return nil, fmt.Errorf("fetch events request: %w", err)
	}
	if err = c.mapCalendarError(resp); err != nil {
		return nil, err
	}

	return list.Items, nil
}

func (c *httpCalendarClient) authedRequest(ctx context.Context) *resty.Request {
	req := c.client.R().SetContext(ctx)
	if token := c.accessToken(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func (c *httpCalendarClient) mapCalendarError(resp *resty.Response) error {
	if resp.StatusCode() == http.StatusUnauthorized {
		return ErrCalendarAuthExpired
	}
	return mapHTTPError(resp)
}
