package ports

import (
	"context"
	"time"

	"github.com/hospital/pharmacy-api/internal/core/domain"
)

// MedicineInput carries the writable fields of a medicine.
type MedicineInput struct {
	Name                 string
	Description          string
	Category             string
	CompanyID            string
	Price                float64
	Stock                int
	Dosage               string
	SideEffects          string
	ExpiryDate           time.Time
	BatchNumber          string
	PrescriptionRequired bool
}

// MedicineQuery carries the list filters accepted by the medicines endpoint.
type MedicineQuery struct {
	Category           string
	StockStatus        string
	PrescriptionFilter string // "required", "otc" or empty
}

// CompanyInput carries the writable fields of a company.
type CompanyInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	Status        string
}

// DistributorInput carries the writable fields of a distributor.
type DistributorInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Region        string
	Status        string
}

// PrescriptionInput carries a new prescription issued by a doctor.
type PrescriptionInput struct {
	PatientName string
	DoctorID    string
	Items       []domain.PrescriptionItem
	Notes       string
}

// DashboardStats summarises the pharmacy for the pharmacist dashboard.
type DashboardStats struct {
	TotalMedicines       int64
	LowStockMedicines    int64
	TotalCompanies       int64
	TotalDistributors    int64
	PendingPrescriptions int64
}

// PharmacyService defines the pharmacist and doctor use cases.
type PharmacyService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)

	ListMedicines(ctx context.Context, q MedicineQuery) ([]*domain.Medicine, error)
	SearchMedicines(ctx context.Context, keyword string) ([]*domain.Medicine, error)
	LowStockMedicines(ctx context.Context) ([]*domain.Medicine, error)
	CreateMedicine(ctx context.Context, in MedicineInput) (*domain.Medicine, error)
	UpdateMedicine(ctx context.Context, medicineID string, in MedicineInput) (*domain.Medicine, error)
	DeleteMedicine(ctx context.Context, medicineID string) error

	ListCompanies(ctx context.Context, name, status string) ([]*domain.Company, error)
	GetCompany(ctx context.Context, id string) (*domain.Company, error)
	CreateCompany(ctx context.Context, in CompanyInput) (*domain.Company, error)
	UpdateCompany(ctx context.Context, id string, in CompanyInput) (*domain.Company, error)

	ListDistributors(ctx context.Context, region, status string) ([]*domain.Distributor, error)
	GetDistributor(ctx context.Context, id string) (*domain.Distributor, error)
	CreateDistributor(ctx context.Context, in DistributorInput) (*domain.Distributor, error)
	UpdateDistributor(ctx context.Context, id string, in DistributorInput) (*domain.Distributor, error)

	ActivePrescriptions(ctx context.Context) ([]*domain.Prescription, error)
	GetPrescription(ctx context.Context, id string) (*domain.Prescription, error)
	IssuePrescription(ctx context.Context, in PrescriptionInput) (*domain.Prescription, error)
	FillPrescription(ctx context.Context, id, pharmacistID string) (*domain.Prescription, error)
}
