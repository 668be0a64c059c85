package process

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "process-entry-app/backend/internal/domain/process"
	"process-entry-app/backend/internal/infra/bus"
	"process-entry-app/backend/internal/infra/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"

	minLotNumber = 1
)

var clockLayouts = []string{"15:04:05", "15:04"}

// RecordStore persists records atomically.
type RecordStore interface {
	Create(ctx context.Context, record *domain.Record) error
}

// Options tunes a Service. Zero values fall back to local time, time.Now,
// uuid.NewString and a no-op logger.
type Options struct {
	Location *time.Location
	Now      func() time.Time
	NewID    func() string
	Logger   *zap.SugaredLogger
}

// Service runs the process entry workflow: validate, store, publish.
type Service struct {
	store     RecordStore
	publisher bus.Publisher
	loc       *time.Location
	now       func() time.Time
	newID     func() string
	log       *zap.SugaredLogger
}

// NewService wires the workflow to its store and bus.
func NewService(store RecordStore, publisher bus.Publisher, opts Options) *Service {
	s := &Service{
		store:     store,
		publisher: publisher,
		loc:       opts.Location,
		now:       opts.Now,
		newID:     opts.NewID,
		log:       opts.Logger,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	return s
}

// Location is the zone submitted dates and times are interpreted in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now is the service clock in Location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// SubmitParams carries the raw form values. Dates are YYYY-MM-DD, times are
// HH:MM or HH:MM:SS.
type SubmitParams struct {
	LotNumber int
	StartDate string
	StartTime string
	EndDate   string
	EndTime   string
}

// Result is a stored record plus any field messages that failed to publish.
type Result struct {
	Record          domain.Record
	Published       int
	PublishFailures []PublishError
}

// Submit validates the window, stores one record in a single transaction and
// then publishes each field once. Publishing is best-effort and at-most-once:
// failures are logged, counted and reported in Result but never undo the
// stored row and are never retried.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (Result, error) {
	start, end, err := s.window(params)
	if err != nil {
		metrics.RecordSubmission(metrics.ResultInvalid)
		return Result{}, err
	}

	record := domain.Record{
		ID:               s.newID(),
		LotNumber:        params.LotNumber,
		RecordCreatedAt:  s.now().UTC(),
		ProcessStartTime: start,
		ProcessEndTime:   end,
		ProcessDuration:  int64(end.Sub(start) / time.Second),
	}

	if err := s.store.Create(ctx, &record); err != nil {
		metrics.RecordSubmission(metrics.ResultStoreError)
		s.log.Errorw("store process record failed", "error", err, "lot_number", record.LotNumber)
		return Result{}, &PersistenceError{Err: err}
	}

	metrics.RecordSubmission(metrics.ResultCreated)
	metrics.ObserveProcessDuration(record.Duration())
	s.log.Infow("process record stored",
		"id", record.ID,
		"lot_number", record.LotNumber,
		"process_duration", record.ProcessDuration,
	)

	result := Result{Record: record}
	result.Published, result.PublishFailures = s.publish(ctx, record)
	return result, nil
}

func (s *Service) publish(ctx context.Context, record domain.Record) (int, []PublishError) {
	messages, err := FieldMessages(record)
	if err != nil {
		s.log.Errorw("encode field messages failed", "error", err, "id", record.ID)
		failures := make([]PublishError, 0, len(domain.Fields))
		for _, field := range domain.Fields {
			failures = append(failures, PublishError{Topic: domain.Topic(field), Err: err})
		}
		return 0, failures
	}

	var (
		published int
		failures  []PublishError
	)
	for _, msg := range messages {
		if err := s.publisher.Publish(ctx, msg.Topic, msg.Payload); err != nil {
			metrics.RecordPublish(msg.Topic, metrics.PublishFailed)
			s.log.Warnw("publish field message failed; dropping",
				"error", err,
				"topic", msg.Topic,
				"id", record.ID,
			)
			failures = append(failures, PublishError{Topic: msg.Topic, Err: err})
			continue
		}
		metrics.RecordPublish(msg.Topic, metrics.PublishOK)
		published++
	}
	return published, failures
}

func (s *Service) window(params SubmitParams) (time.Time, time.Time, error) {
	if params.LotNumber < minLotNumber {
		return time.Time{}, time.Time{}, &ValidationError{
			Field:   domain.FieldLotNumber,
			Message: fmt.Sprintf("lot number must be at least %d", minLotNumber),
		}
	}

	start, err := combine(params.StartDate, params.StartTime, "start", s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := combine(params.EndDate, params.EndTime, "end", s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, &ValidationError{
			Field:   domain.FieldProcessEndTime,
			Message: "process end time must be after process start time",
			Err:     ErrEndNotAfterStart,
		}
	}
	return start, end, nil
}

// combine joins a calendar date and a clock time in loc.
func combine(date, clock, prefix string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, &ValidationError{
			Field:   prefix + "_date",
			Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date),
			Err:     err,
		}
	}

	for _, layout := range clockLayouts {
		tod, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, loc), nil
	}
	return time.Time{}, &ValidationError{
		Field:   prefix + "_time",
		Message: fmt.Sprintf("invalid time %q, expected HH:MM or HH:MM:SS", clock),
	}
}
