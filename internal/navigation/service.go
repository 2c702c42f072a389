package navigation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/domain"
	"github.com/MrSnakeDoc/navsite/internal/logger"
)

// Table is the record backend: the remote table service or a local stand-in.
type Table interface {
	Name() string
	ListRecords(ctx context.Context) ([]domain.RawRecord, error)
	CreateRecord(ctx context.Context, fields domain.Fields) (domain.RawRecord, error)
	DeleteRecord(ctx context.Context, id string) error
}

// Response is the payload of the navigation read endpoint.
type Response struct {
	Success    bool                  `json:"success"`
	Data       *domain.NavigationMap `json:"data"`
	Categories []string              `json:"categories"`
	Timestamp  string                `json:"timestamp"`
	DateInfo   domain.DateInfo       `json:"dateInfo"`
	IsMockData bool                  `json:"isMockData,omitempty"`
}

// Options configures a Service.
type Options struct {
	Location *time.Location        // dateInfo time zone (nil = Local)
	Now      func() time.Time      // optional clock
	Lunar    domain.LunarFormatter // optional, defaults to domain.LunarDate
}

// Service reads and mutates links through a Table and degrades to the
// fallback dataset when reads fail.
type Service struct {
	table    Table
	fallback *domain.NavigationMap
	loc      *time.Location
	now      func() time.Time
	lunar    domain.LunarFormatter
	logger   logger.Logger
}

// NewService wires a Service. fallback must not be nil.
func NewService(table Table, fallback *domain.NavigationMap, opts Options, log logger.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Lunar == nil {
		opts.Lunar = domain.LunarDate
	}
	return &Service{
		table:    table,
		fallback: fallback,
		loc:      opts.Location,
		now:      opts.Now,
		lunar:    opts.Lunar,
		logger:   log,
	}
}

// Backend returns the table backend name.
func (s *Service) Backend() string { return s.table.Name() }

// Navigation fetches and reshapes every record. Any backend failure is
// logged and answered with the fallback dataset flagged as mock data.
// TODO: surface backend outages to operators once product decides whether
// the silent fallback should stay.
func (s *Service) Navigation(ctx context.Context) Response {
	now := s.now().In(s.loc)
	resp := Response{
		Success:   true,
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		DateInfo:  domain.BuildDateInfo(now, s.lunar),
	}

	records, err := s.table.ListRecords(ctx)
	if err != nil {
		s.logger.Warn("table backend unavailable, serving fallback dataset",
			logger.String("backend", s.table.Name()),
			logger.Error(err))
		resp.Data = s.fallback
		resp.Categories = s.fallback.Categories()
		resp.IsMockData = true
		return resp
	}

	nav := domain.Reshape(records)
	resp.Data = nav
	resp.Categories = nav.Categories()
	return resp
}

// AddLink validates and creates a link. Validation failures come back as
// *domain.ValidationError, backend failures as returned by the table.
func (s *Service) AddLink(ctx context.Context, link *domain.NewLink) (domain.RawRecord, error) {
	if err := link.Validate(); err != nil {
		return domain.RawRecord{}, err
	}

	rec, err := s.table.CreateRecord(ctx, link.Fields())
	if err != nil {
		s.logger.Error("failed to create link",
			logger.String("name", link.Name),
			logger.Error(err))
		return domain.RawRecord{}, fmt.Errorf("add link: %w", err)
	}

	s.logger.Info("link created",
		logger.String("id", rec.ID),
		logger.String("name", link.Name),
		logger.String("category", link.Category))
	return rec, nil
}

// DeleteLink removes a link by id.
func (s *Service) DeleteLink(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &domain.ValidationError{Field: "id", Message: "record id is required"}
	}

	if err := s.table.DeleteRecord(ctx, id); err != nil {
		s.logger.Error("failed to delete link",
			logger.String("id", id),
			logger.Bool("mock", domain.IsMockID(id)),
			logger.Error(err))
		return fmt.Errorf("delete link: %w", err)
	}

	s.logger.Info("link deleted", logger.String("id", id))
	return nil
}

// IsValidation reports whether err is a client payload error.
func IsValidation(err error) bool {
	var v *domain.ValidationError
	return errors.As(err, &v)
}
