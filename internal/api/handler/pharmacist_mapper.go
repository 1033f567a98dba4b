package handler

import (
	"time"

	"github.com/hospital/pharmacy-api/internal/core/domain"
	"github.com/hospital/pharmacy-api/internal/core/ports"
)

// --- Request → Service input ---

// toMedicineInput expects req to have passed validation, so the expiry date
// is either empty or well formed.
func toMedicineInput(req medicineRequest) ports.MedicineInput {
	var expiry time.Time
	if req.ExpiryDate != "" {
		expiry, _ = time.Parse(dateLayout, req.ExpiryDate)
	}
	return ports.MedicineInput{
		Name:                 req.Name,
		Description:          req.Description,
		Category:             req.Category,
		CompanyID:            req.CompanyID,
		Price:                req.Price,
		Stock:                req.Stock,
		Dosage:               req.Dosage,
		SideEffects:          req.SideEffects,
		ExpiryDate:           expiry,
		BatchNumber:          req.BatchNumber,
		PrescriptionRequired: req.PrescriptionRequired,
	}
}

func toCompanyInput(req companyRequest) ports.CompanyInput {
	return ports.CompanyInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		Status:        req.Status,
	}
}

func toDistributorInput(req distributorRequest) ports.DistributorInput {
	return ports.DistributorInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Region:        req.Region,
		Status:        req.Status,
	}
}

func toPrescriptionInput(req prescriptionRequest, doctorID string) ports.PrescriptionInput {
	items := make([]domain.PrescriptionItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.PrescriptionItem{
			MedicineID:   it.MedicineID,
			Quantity:     it.Quantity,
			Instructions: it.Instructions,
		})
	}
	return ports.PrescriptionInput{
		PatientName: req.PatientName,
		DoctorID:    doctorID,
		Items:       items,
		Notes:       req.Notes,
	}
}

// --- Domain → Response ---

func toMedicineResponse(m *domain.Medicine) medicineResponse {
	resp := medicineResponse{
		ID:                   m.ID,
		MedicineID:           m.MedicineID,
		Name:                 m.Name,
		Description:          m.Description,
		Category:             m.Category,
		CompanyID:            m.CompanyID,
		Price:                m.Price,
		Stock:                m.Stock,
		StockStatus:          string(m.StockStatus),
		Dosage:               m.Dosage,
		SideEffects:          m.SideEffects,
		BatchNumber:          m.BatchNumber,
		PrescriptionRequired: m.PrescriptionRequired,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
	if !m.ExpiryDate.IsZero() {
		resp.ExpiryDate = m.ExpiryDate.Format(dateLayout)
	}
	return resp
}

func toMedicineResponses(list []*domain.Medicine) []medicineResponse {
	out := make([]medicineResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMedicineResponse(m))
	}
	return out
}

func toDashboardResponse(s *ports.DashboardStats) dashboardResponse {
	return dashboardResponse{
		TotalMedicines:       s.TotalMedicines,
		LowStockMedicines:    s.LowStockMedicines,
		TotalCompanies:       s.TotalCompanies,
		TotalDistributors:    s.TotalDistributors,
		PendingPrescriptions: s.PendingPrescriptions,
	}
}
