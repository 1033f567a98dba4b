package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hospital/pharmacy-api/internal/core/domain"
	"github.com/hospital/pharmacy-api/internal/core/ports"
)

const (
	medicineIDPrefix     = "MED"
	prescriptionIDPrefix = "RX"
)

// PharmacyService implements the pharmacist and doctor use cases.
type PharmacyService struct {
	medicines     ports.MedicineRepository
	companies     ports.CompanyRepository
	distributors  ports.DistributorRepository
	prescriptions ports.PrescriptionRepository
	logger        zerolog.Logger
	now           func() time.Time
}

func NewPharmacyService(
	medicines ports.MedicineRepository,
	companies ports.CompanyRepository,
	distributors ports.DistributorRepository,
	prescriptions ports.PrescriptionRepository,
	logger zerolog.Logger,
) *PharmacyService {
	return &PharmacyService{
		medicines:     medicines,
		companies:     companies,
		distributors:  distributors,
		prescriptions: prescriptions,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

var lowStock = []domain.StockStatus{domain.StockLow, domain.StockCritical}

// Dashboard gathers the counters shown on the pharmacist landing page.
func (s *PharmacyService) Dashboard(ctx context.Context) (*ports.DashboardStats, error) {
	var (
		stats ports.DashboardStats
		err   error
	)
	if stats.TotalMedicines, err = s.medicines.Count(ctx, ports.MedicineFilter{}); err != nil {
		return nil, fmt.Errorf("dashboard: medicines: %w", err)
	}
	if stats.LowStockMedicines, err = s.medicines.Count(ctx, ports.MedicineFilter{StockStatuses: lowStock}); err != nil {
		return nil, fmt.Errorf("dashboard: low stock: %w", err)
	}
	if stats.TotalCompanies, err = s.companies.Count(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: companies: %w", err)
	}
	if stats.TotalDistributors, err = s.distributors.Count(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: distributors: %w", err)
	}
	if stats.PendingPrescriptions, err = s.prescriptions.CountByStatus(ctx, domain.PrescriptionActive); err != nil {
		return nil, fmt.Errorf("dashboard: prescriptions: %w", err)
	}
	return &stats, nil
}

// ListMedicines applies the optional category, stock status and
// prescription filters.
func (s *PharmacyService) ListMedicines(ctx context.Context, q ports.MedicineQuery) ([]*domain.Medicine, error) {
	filter := ports.MedicineFilter{Category: q.Category}
	if q.StockStatus != "" {
		status, ok := domain.ParseStockStatus(q.StockStatus)
		if !ok {
			return nil, fmt.Errorf("%w: stockStatus must be one of: Critical Low Adequate", domain.ErrInvalidInput)
		}
		filter.StockStatuses = []domain.StockStatus{status}
	}
	switch strings.ToLower(q.PrescriptionFilter) {
	case "":
	case "required":
		required := true
		filter.PrescriptionRequired = &required
	case "otc":
		required := false
		filter.PrescriptionRequired = &required
	default:
		return nil, fmt.Errorf("%w: prescriptionFilter must be one of: required otc", domain.ErrInvalidInput)
	}
	return s.medicines.List(ctx, filter)
}

func (s *PharmacyService) SearchMedicines(ctx context.Context, keyword string) ([]*domain.Medicine, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword is required", domain.ErrInvalidInput)
	}
	return s.medicines.List(ctx, ports.MedicineFilter{Keyword: keyword})
}

func (s *PharmacyService) LowStockMedicines(ctx context.Context) ([]*domain.Medicine, error) {
	return s.medicines.List(ctx, ports.MedicineFilter{StockStatuses: lowStock})
}

func (s *PharmacyService) CreateMedicine(ctx context.Context, in ports.MedicineInput) (*domain.Medicine, error) {
	now := s.now()
	m := &domain.Medicine{MedicineID: newBusinessID(medicineIDPrefix), CreatedAt: now}
	applyMedicineInput(m, in, now)

	if err := s.medicines.Create(ctx, m); err != nil {
		s.logger.Error().Err(err).Msg("failed to create medicine")
		return nil, err
	}

	s.logger.Info().Str("medicine_id", m.MedicineID).Str("name", m.Name).Msg("medicine created")
	return m, nil
}

func (s *PharmacyService) UpdateMedicine(ctx context.Context, medicineID string, in ports.MedicineInput) (*domain.Medicine, error) {
	m, err := s.medicines.FindByMedicineID(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	applyMedicineInput(m, in, s.now())

	if err := s.medicines.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update medicine: %w", err)
	}
	return m, nil
}

func (s *PharmacyService) DeleteMedicine(ctx context.Context, medicineID string) error {
	if err := s.medicines.Delete(ctx, medicineID); err != nil {
		return err
	}
	s.logger.Info().Str("medicine_id", medicineID).Msg("medicine deleted")
	return nil
}

func applyMedicineInput(m *domain.Medicine, in ports.MedicineInput, now time.Time) {
	m.Name = in.Name
	m.Description = in.Description
	m.Category = in.Category
	m.CompanyID = in.CompanyID
	m.Price = in.Price
	m.Stock = in.Stock
	m.StockStatus = domain.StockStatusFor(in.Stock)
	m.Dosage = in.Dosage
	m.SideEffects = in.SideEffects
	m.ExpiryDate = in.ExpiryDate
	m.BatchNumber = in.BatchNumber
	m.PrescriptionRequired = in.PrescriptionRequired
	m.UpdatedAt = now
}

func (s *PharmacyService) ListCompanies(ctx context.Context, name, status string) ([]*domain.Company, error) {
	return s.companies.List(ctx, ports.PartnerFilter{Name: name, Status: strings.ToUpper(status)})
}

func (s *PharmacyService) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	return s.companies.FindByID(ctx, id)
}

func (s *PharmacyService) CreateCompany(ctx context.Context, in ports.CompanyInput) (*domain.Company, error) {
	now := s.now()
	c := &domain.Company{CreatedAt: now}
	applyCompanyInput(c, in, now)

	if err := s.companies.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	s.logger.Info().Str("company_id", c.ID).Str("name", c.Name).Msg("company created")
	return c, nil
}

func (s *PharmacyService) UpdateCompany(ctx context.Context, id string, in ports.CompanyInput) (*domain.Company, error) {
	c, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCompanyInput(c, in, s.now())

	if err := s.companies.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update company: %w", err)
	}
	return c, nil
}

func applyCompanyInput(c *domain.Company, in ports.CompanyInput, now time.Time) {
	c.Name = in.Name
	c.ContactPerson = in.ContactPerson
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	c.Status = partnerStatus(in.Status)
	c.UpdatedAt = now
}

func (s *PharmacyService) ListDistributors(ctx context.Context, region, status string) ([]*domain.Distributor, error) {
	return s.distributors.List(ctx, ports.PartnerFilter{Region: region, Status: strings.ToUpper(status)})
}

func (s *PharmacyService) GetDistributor(ctx context.Context, id string) (*domain.Distributor, error) {
	return s.distributors.FindByID(ctx, id)
}

func (s *PharmacyService) CreateDistributor(ctx context.Context, in ports.DistributorInput) (*domain.Distributor, error) {
	now := s.now()
	d := &domain.Distributor{CreatedAt: now}
	applyDistributorInput(d, in, now)

	if err := s.distributors.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create distributor: %w", err)
	}
	s.logger.Info().Str("distributor_id", d.ID).Str("region", d.Region).Msg("distributor created")
	return d, nil
}

func (s *PharmacyService) UpdateDistributor(ctx context.Context, id string, in ports.DistributorInput) (*domain.Distributor, error) {
	d, err := s.distributors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyDistributorInput(d, in, s.now())

	if err := s.distributors.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("update distributor: %w", err)
	}
	return d, nil
}

func applyDistributorInput(d *domain.Distributor, in ports.DistributorInput, now time.Time) {
	d.Name = in.Name
	d.ContactPerson = in.ContactPerson
	d.Email = in.Email
	d.Phone = in.Phone
	d.Region = in.Region
	d.Status = partnerStatus(in.Status)
	d.UpdatedAt = now
}

// partnerStatus defaults an unset status to ACTIVE.
func partnerStatus(status string) string {
	if status == "" {
		return domain.PartnerActive
	}
	return strings.ToUpper(status)
}

func (s *PharmacyService) ActivePrescriptions(ctx context.Context) ([]*domain.Prescription, error) {
	return s.prescriptions.ListByStatus(ctx, domain.PrescriptionActive)
}

func (s *PharmacyService) GetPrescription(ctx context.Context, id string) (*domain.Prescription, error) {
	return s.prescriptions.FindByID(ctx, id)
}

// IssuePrescription records a new ACTIVE prescription. Every item must
// reference an existing medicine.
func (s *PharmacyService) IssuePrescription(ctx context.Context, in ports.PrescriptionInput) (*domain.Prescription, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: a prescription needs at least one item", domain.ErrInvalidInput)
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for %s must be greater than 0", domain.ErrInvalidInput, item.MedicineID)
		}
		if _, err := s.medicines.FindByMedicineID(ctx, item.MedicineID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	p := &domain.Prescription{
		PrescriptionID: newBusinessID(prescriptionIDPrefix),
		PatientName:    in.PatientName,
		DoctorID:       in.DoctorID,
		Items:          in.Items,
		Notes:          in.Notes,
		Status:         domain.PrescriptionActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("issue prescription: %w", err)
	}

	s.logger.Info().Str("prescription_id", p.PrescriptionID).Str("doctor_id", in.DoctorID).Msg("prescription issued")
	return p, nil
}

// FillPrescription dispenses an ACTIVE prescription. The prescription is
// claimed first with a conditional ACTIVE to COMPLETED update, then each
// item's stock is taken. When an item cannot be taken, the items already
// taken are returned and the prescription is reopened.
func (s *PharmacyService) FillPrescription(ctx context.Context, id, pharmacistID string) (*domain.Prescription, error) {
	p, err := s.prescriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Status.CanFill() {
		return nil, domain.ErrPrescriptionNotActive
	}

	now := s.now()
	p.Status = domain.PrescriptionCompleted
	p.FilledBy = pharmacistID
	p.FilledAt = &now
	p.UpdatedAt = now

	if err := s.prescriptions.MarkFilled(ctx, p); err != nil {
		return nil, fmt.Errorf("fill prescription %s: %w", p.PrescriptionID, err)
	}

	taken := make([]domain.PrescriptionItem, 0, len(p.Items))
	for _, item := range p.Items {
		if err := s.medicines.DecrementStock(ctx, item.MedicineID, item.Quantity); err != nil {
			s.logger.Warn().Err(err).
				Str("prescription_id", p.PrescriptionID).
				Str("medicine_id", item.MedicineID).
				Msg("cannot dispense item")
			s.releaseFill(ctx, p.PrescriptionID, taken)
			return nil, fmt.Errorf("fill prescription %s: %w", p.PrescriptionID, err)
		}
		taken = append(taken, item)
	}

	s.logger.Info().Str("prescription_id", p.PrescriptionID).Str("filled_by", pharmacistID).Msg("prescription filled")
	return p, nil
}

// releaseFill returns the taken items and reopens the prescription. It
// ignores cancellation of ctx.
func (s *PharmacyService) releaseFill(ctx context.Context, prescriptionID string, taken []domain.PrescriptionItem) {
	ctx = context.WithoutCancel(ctx)
	for _, item := range taken {
		if err := s.medicines.IncrementStock(ctx, item.MedicineID, item.Quantity); err != nil {
			s.logger.Error().Err(err).
				Str("prescription_id", prescriptionID).
				Str("medicine_id", item.MedicineID).
				Int("quantity", item.Quantity).
				Msg("failed to return stock after aborted fill")
		}
	}
	if err := s.prescriptions.Reopen(ctx, prescriptionID); err != nil {
		s.logger.Error().Err(err).Str("prescription_id", prescriptionID).Msg("failed to reopen prescription after aborted fill")
	}
}
