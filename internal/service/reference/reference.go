// Package reference validates doctor and product ids against the directory
// service before they are written into a case.
package reference

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Alijeyrad/caseservice/pkg/httpclient"
	"github.com/Alijeyrad/caseservice/pkg/linkshub"
)

// Directory is the subset of the directory service used here.
type Directory interface {
	GetDoctor(ctx context.Context, doctorID, token string) (linkshub.Doctor, error)
	GetProduct(ctx context.Context, productID, token string) (linkshub.Product, error)
	GetRelation(ctx context.Context, doctorID, labID, token string) (*linkshub.Relation, error)
	GetLabProducts(ctx context.Context, labID, token string) ([]linkshub.Product, error)
}

type Service interface {
	// DoctorExists and ProductExists report false on any upstream failure.
	DoctorExists(ctx context.Context, doctorID, token string) (linkshub.Doctor, bool)
	ProductExists(ctx context.Context, productID, token string) (linkshub.Product, bool)

	// DoctorBelongsToLab is true only for an active relation.
	DoctorBelongsToLab(ctx context.Context, doctorID, labID, token string) bool

	// ValidateCaseReferences checks doctor, relation and product in that
	// order and returns the first failure.
	ValidateCaseReferences(ctx context.Context, doctorID, productID, labID, token string) error

	// Doctor returns the directory record, distinguishing a missing doctor
	// from an unreachable directory.
	Doctor(ctx context.Context, doctorID, token string) (linkshub.Doctor, error)

	LabProducts(ctx context.Context, labID, token string) ([]linkshub.Product, error)
}

type referenceService struct {
	dir    Directory
	logger *slog.Logger
}

func New(dir Directory, logger *slog.Logger) Service {
	return &referenceService{
		dir:    dir,
		logger: logger.With("service", "reference"),
	}
}

func (s *referenceService) DoctorExists(ctx context.Context, doctorID, token string) (linkshub.Doctor, bool) {
	d, err := s.dir.GetDoctor(ctx, doctorID, token)
	if err != nil || len(d) == 0 {
		return nil, false
	}
	return d, true
}

func (s *referenceService) ProductExists(ctx context.Context, productID, token string) (linkshub.Product, bool) {
	p, err := s.dir.GetProduct(ctx, productID, token)
	if err != nil || len(p) == 0 {
		return nil, false
	}
	return p, true
}

func (s *referenceService) DoctorBelongsToLab(ctx context.Context, doctorID, labID, token string) bool {
	rel, err := s.dir.GetRelation(ctx, doctorID, labID, token)
	if err != nil {
		return false
	}
	return rel != nil && rel.IsActive
}

func (s *referenceService) ValidateCaseReferences(ctx context.Context, doctorID, productID, labID, token string) error {
	if _, ok := s.DoctorExists(ctx, doctorID, token); !ok {
		return ErrDoctorNotFound
	}
	if !s.DoctorBelongsToLab(ctx, doctorID, labID, token) {
		s.logger.InfoContext(ctx, "doctor not associated with lab", "doctor_id", doctorID, "lab_id", labID)
		return ErrDoctorNotInLab
	}
	if _, ok := s.ProductExists(ctx, productID, token); !ok {
		return ErrProductNotFound
	}
	return nil
}

func (s *referenceService) Doctor(ctx context.Context, doctorID, token string) (linkshub.Doctor, error) {
	d, err := s.dir.GetDoctor(ctx, doctorID, token)
	if err != nil {
		return nil, mapDirectoryError(err, ErrDoctorNotFound)
	}
	// an empty record (null or {}) is a missing doctor
	if len(d) == 0 {
		return nil, ErrDoctorNotFound
	}
	return d, nil
}

func (s *referenceService) LabProducts(ctx context.Context, labID, token string) ([]linkshub.Product, error) {
	products, err := s.dir.GetLabProducts(ctx, labID, token)
	if err != nil {
		return nil, mapDirectoryError(err, ErrDirectoryDown)
	}
	return products, nil
}

func mapDirectoryError(err, notFound error) error {
	switch {
	case errors.Is(err, httpclient.ErrNotFound):
		return notFound
	case errors.Is(err, httpclient.ErrUnauthorized):
		return ErrDirectoryRejected
	default:
		return ErrDirectoryDown
	}
}
