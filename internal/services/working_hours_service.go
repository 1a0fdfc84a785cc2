package services

import (
	"context"
	"fmt"
	"strconv"

	"backoffice/internal/apiclient"
	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
	"backoffice/internal/validation"
)

var weekdays = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// DayResult is the outcome of saving one day.
type DayResult struct {
	Day   int    `json:"day"`
	Name  string `json:"name"`
	Saved bool   `json:"saved"`
	Error string `json:"error,omitempty"`
}

// WorkingHoursService saves a salon's weekly schedule, one request per day.
type WorkingHoursService struct {
	Client      *apiclient.Client
	Audit       AuditService
	RequestID   string
	Concurrency int
}

// WorkingHoursEndpoint is where one day of a salon's schedule is stored.
func WorkingHoursEndpoint(salonID int64, day int) string {
	return apiclient.ItemPath("salons", salonID) + "/working-hours/" + strconv.Itoa(day)
}

// Save validates every day before sending anything, then writes the days
// concurrently. Each day succeeds or fails on its own; the returned results
// are in submission order and the error joins the failed days.
func (s WorkingHoursService) Save(ctx context.Context, salonID int64, payload models.WorkingHoursPayload) ([]DayResult, error) {
	if salonID <= 0 {
		return nil, domain.ValidationError{Field: "salon_id", Msg: "must be a positive id"}
	}
	if err := validation.Struct(payload); err != nil {
		return nil, err
	}
	seen := map[int]bool{}
	for i, d := range payload.Days {
		if seen[d.Day] {
			return nil, domain.ValidationError{Field: fmt.Sprintf("days[%d].day", i), Msg: "appears more than once"}
		}
		seen[d.Day] = true
	}

	items := make([]apiclient.BatchItem, 0, len(payload.Days))
	for _, d := range payload.Days {
		day := d
		if day.Closed {
			day.Opening, day.Closing = "", ""
		}
		items = append(items, apiclient.BatchItem{
			Key: weekdays[day.Day],
			Run: func(ctx context.Context) error {
				_, err := apiclient.Create[models.WorkingHours](ctx, s.Client, WorkingHoursEndpoint(salonID, day.Day), day)
				return err
			},
		})
	}

	limit := s.Concurrency
	if limit <= 0 {
		limit = len(items)
	}
	batch := apiclient.RunBatch(ctx, limit, items)

	out := make([]DayResult, len(batch.Items))
	for i, it := range batch.Items {
		out[i] = DayResult{Day: payload.Days[i].Day, Name: it.Key, Saved: it.OK()}
		if it.Err != nil {
			out[i].Error = it.Err.Error()
		}
	}
	err := batch.Err()
	s.Audit.Record(ctx, "salons", "working_hours", salonID, err)
	return out, err
}
