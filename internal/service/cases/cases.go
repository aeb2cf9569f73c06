// Package cases implements the tenant-scoped case operations. Every method
// takes the caller's lab id and never touches a case of another lab.
package cases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Alijeyrad/caseservice/config"
	"github.com/Alijeyrad/caseservice/internal/repo"
	"github.com/Alijeyrad/caseservice/internal/service/reference"
	"github.com/Alijeyrad/caseservice/pkg/events"
)

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Create validates the body and the doctor/product references, then
	// stores a pending case owned by caller.LabID.
	Create(ctx context.Context, caller Caller, req CreateCaseRequest) (*repo.Case, error)
	Get(ctx context.Context, labID string, id int64) (*repo.Case, error)
	List(ctx context.Context, labID string, req ListCasesRequest) (*ListResult, error)
	Update(ctx context.Context, labID string, id int64, req UpdateCaseRequest) (*repo.Case, error)
	SetStatus(ctx context.Context, labID string, id int64, req SetStatusRequest) (*repo.Case, error)
	Delete(ctx context.Context, labID string, id int64) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type caseService struct {
	store      repo.CaseStore
	refs       reference.Service
	events     events.Publisher
	pagination config.PaginationConfig
	validate   *validator.Validate
	logger     *slog.Logger
}

func New(
	store repo.CaseStore,
	refs reference.Service,
	publisher events.Publisher,
	pagination config.PaginationConfig,
	logger *slog.Logger,
) Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &caseService{
		store:      store,
		refs:       refs,
		events:     publisher,
		pagination: pagination,
		validate:   newValidator(),
		logger:     logger.With("service", "cases"),
	}
}

func storeError(op string, err error) error {
	if repo.IsNotFound(err) {
		return ErrCaseNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *caseService) publish(ctx context.Context, t events.Type, c *repo.Case) {
	s.events.Publish(ctx, events.Event{
		Type:   t,
		CaseID: c.ID,
		LabID:  c.LabID,
		Status: string(c.Status),
	})
}

func (s *caseService) Create(ctx context.Context, caller Caller, req CreateCaseRequest) (*repo.Case, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	c, err := req.toCase(caller)
	if err != nil {
		return nil, err
	}

	if err := s.refs.ValidateCaseReferences(ctx, req.DoctorID, req.ProductID, caller.LabID, caller.Token); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, c); err != nil {
		s.logger.ErrorContext(ctx, "creating case", "lab_id", caller.LabID, "error", err)
		return nil, fmt.Errorf("creating case: %w", err)
	}

	s.logger.InfoContext(ctx, "case created", "case_id", c.ID, "lab_id", c.LabID)
	s.events.Publish(ctx, events.Event{
		Type:    events.CaseCreated,
		CaseID:  c.ID,
		LabID:   c.LabID,
		Status:  string(c.Status),
		ActorID: caller.UserID,
	})
	return c, nil
}

func (s *caseService) Get(ctx context.Context, labID string, id int64) (*repo.Case, error) {
	c, err := s.store.Get(ctx, labID, id)
	if err != nil {
		return nil, storeError("getting case", err)
	}
	return c, nil
}

// page applies the defaults and the configured maximum page size.
func (s *caseService) page(number, size int) repo.Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = s.pagination.DefaultPageSize
	}
	if size > s.pagination.MaxPageSize {
		size = s.pagination.MaxPageSize
	}
	// keep (number-1)*size inside int
	if size > 0 && number > math.MaxInt/size {
		number = math.MaxInt / size
	}
	return repo.Page{Number: number, Size: size}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *caseService) List(ctx context.Context, labID string, req ListCasesRequest) (*ListResult, error) {
	var f repo.Filter
	if req.Status != "" {
		st, err := repo.ParseStatus(req.Status)
		if err != nil {
			return nil, invalidf("Invalid status: %s", req.Status)
		}
		f.Status = &st
	}
	if req.Priority != "" {
		pr := repo.Priority(req.Priority)
		f.Priority = &pr
	}
	f.DoctorID = optional(req.DoctorID)
	f.ProductID = optional(req.ProductID)
	f.CaseType = optional(req.CaseType)
	f.RushOrder = req.RushOrder

	p := s.page(req.Page, req.PerPage)
	items, total, err := s.store.List(ctx, labID, f, p)
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	return &ListResult{Cases: items, Pagination: repo.NewPageInfo(p, total)}, nil
}

func (s *caseService) Update(ctx context.Context, labID string, id int64, req UpdateCaseRequest) (*repo.Case, error) {
	p, err := req.validate()
	if err != nil {
		return nil, err
	}

	c, err := s.store.Update(ctx, labID, id, func(c *repo.Case) error {
		p.apply(c)
		return nil
	})
	if err != nil {
		return nil, storeError("updating case", err)
	}

	s.logger.InfoContext(ctx, "case updated", "case_id", id, "lab_id", labID)
	s.publish(ctx, events.CaseUpdated, c)
	return c, nil
}

func (s *caseService) SetStatus(ctx context.Context, labID string, id int64, req SetStatusRequest) (*repo.Case, error) {
	status, err := repo.ParseStatus(strings.TrimSpace(req.Status))
	if err != nil {
		return nil, invalidf("Invalid status: %s", req.Status)
	}

	c, err := s.store.Update(ctx, labID, id, func(c *repo.Case) error {
		c.Status = status
		return nil
	})
	if err != nil {
		return nil, storeError("updating case status", err)
	}

	s.logger.InfoContext(ctx, "case status updated", "case_id", id, "lab_id", labID, "status", status)
	s.publish(ctx, events.CaseStatusChanged, c)
	return c, nil
}

func (s *caseService) Delete(ctx context.Context, labID string, id int64) error {
	if err := s.store.Delete(ctx, labID, id); err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			s.logger.ErrorContext(ctx, "deleting case", "case_id", id, "lab_id", labID, "error", err)
		}
		return storeError("deleting case", err)
	}

	s.logger.InfoContext(ctx, "case deleted", "case_id", id, "lab_id", labID)
	s.events.Publish(ctx, events.Event{Type: events.CaseDeleted, CaseID: id, LabID: labID})
	return nil
}
