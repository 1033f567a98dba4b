package ports

import (
	"context"

	"github.com/hospital/pharmacy-api/internal/core/domain"
)

// MedicineFilter carries optional list filters. Empty fields are ignored.
type MedicineFilter struct {
	Category             string
	StockStatuses        []domain.StockStatus
	PrescriptionRequired *bool
	Keyword              string // case-insensitive match on name, category or description
}

type MedicineRepository interface {
	Create(ctx context.Context, m *domain.Medicine) error
	FindByMedicineID(ctx context.Context, medicineID string) (*domain.Medicine, error)
	Update(ctx context.Context, m *domain.Medicine) error
	Delete(ctx context.Context, medicineID string) error
	List(ctx context.Context, filter MedicineFilter) ([]*domain.Medicine, error)
	Count(ctx context.Context, filter MedicineFilter) (int64, error)
	// DecrementStock removes qty units when at least qty are available and
	// refreshes the derived stock status. It returns domain.ErrInsufficientStock
	// otherwise.
	DecrementStock(ctx context.Context, medicineID string, qty int) error
	// IncrementStock returns qty units taken by DecrementStock.
	IncrementStock(ctx context.Context, medicineID string, qty int) error
}

// PartnerFilter filters companies and distributors.
type PartnerFilter struct {
	Name   string // partial, case-insensitive
	Region string
	Status string
}

type CompanyRepository interface {
	Create(ctx context.Context, c *domain.Company) error
	FindByID(ctx context.Context, id string) (*domain.Company, error)
	Update(ctx context.Context, c *domain.Company) error
	List(ctx context.Context, filter PartnerFilter) ([]*domain.Company, error)
	Count(ctx context.Context) (int64, error)
}

type DistributorRepository interface {
	Create(ctx context.Context, d *domain.Distributor) error
	FindByID(ctx context.Context, id string) (*domain.Distributor, error)
	Update(ctx context.Context, d *domain.Distributor) error
	List(ctx context.Context, filter PartnerFilter) ([]*domain.Distributor, error)
	Count(ctx context.Context) (int64, error)
}

type PrescriptionRepository interface {
	Create(ctx context.Context, p *domain.Prescription) error
	FindByID(ctx context.Context, id string) (*domain.Prescription, error)
	ListByStatus(ctx context.Context, status domain.PrescriptionStatus) ([]*domain.Prescription, error)
	CountByStatus(ctx context.Context, status domain.PrescriptionStatus) (int64, error)
	// MarkFilled moves an ACTIVE prescription to COMPLETED. It returns
	// domain.ErrPrescriptionNotActive when the prescription is no longer active.
	MarkFilled(ctx context.Context, p *domain.Prescription) error
	// Reopen moves a COMPLETED prescription back to ACTIVE and clears the
	// fill details.
	Reopen(ctx context.Context, prescriptionID string) error
}
