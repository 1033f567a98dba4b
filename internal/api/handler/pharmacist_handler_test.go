package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hospital/pharmacy-api/internal/core/domain"
	"github.com/hospital/pharmacy-api/internal/core/ports"
)

// stubPharmacyService overrides the methods a test needs; calling any other
// method panics on the nil embedded interface.
type stubPharmacyService struct {
	ports.PharmacyService
	listMedicinesFn  func(ctx context.Context, q ports.MedicineQuery) ([]*domain.Medicine, error)
	createMedicineFn func(ctx context.Context, in ports.MedicineInput) (*domain.Medicine, error)
	deleteMedicineFn func(ctx context.Context, id string) error
	fillFn           func(ctx context.Context, id, pharmacistID string) (*domain.Prescription, error)
	issueFn          func(ctx context.Context, in ports.PrescriptionInput) (*domain.Prescription, error)
}

func (s *stubPharmacyService) ListMedicines(ctx context.Context, q ports.MedicineQuery) ([]*domain.Medicine, error) {
	return s.listMedicinesFn(ctx, q)
}

func (s *stubPharmacyService) CreateMedicine(ctx context.Context, in ports.MedicineInput) (*domain.Medicine, error) {
	return s.createMedicineFn(ctx, in)
}

func (s *stubPharmacyService) DeleteMedicine(ctx context.Context, id string) error {
	return s.deleteMedicineFn(ctx, id)
}

func (s *stubPharmacyService) FillPrescription(ctx context.Context, id, pharmacistID string) (*domain.Prescription, error) {
	return s.fillFn(ctx, id, pharmacistID)
}

func (s *stubPharmacyService) IssuePrescription(ctx context.Context, in ports.PrescriptionInput) (*domain.Prescription, error) {
	return s.issueFn(ctx, in)
}

func withIdentity(c echo.Context, userID, role string) {
	identity := &domain.Identity{User: &domain.User{UserID: userID, Role: role}, Role: role}
	c.SetRequest(c.Request().WithContext(domain.ContextWithIdentity(c.Request().Context(), identity)))
}

func TestPharmacistHandler_CreateMedicine(t *testing.T) {
	stub := &stubPharmacyService{
		createMedicineFn: func(_ context.Context, in ports.MedicineInput) (*domain.Medicine, error) {
			if in.Name != "Amoxicillin" || in.Stock != 40 || !in.PrescriptionRequired {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.ExpiryDate.Format(dateLayout) != "2027-03-31" {
				t.Fatalf("expiry not parsed: %v", in.ExpiryDate)
			}
			return &domain.Medicine{
				MedicineID:           "MED-0A1B2C3D",
				Name:                 in.Name,
				Category:             in.Category,
				Stock:                in.Stock,
				StockStatus:          domain.StockStatusFor(in.Stock),
				ExpiryDate:           in.ExpiryDate,
				PrescriptionRequired: true,
			}, nil
		},
	}
	body := `{"name":"Amoxicillin","category":"Antibiotic","price":12.5,"stock":40,"expiryDate":"2027-03-31","prescriptionRequired":true}`
	c, rec := newJSONContext(http.MethodPost, "/pharmacist/medicines", body)

	if err := NewPharmacistHandler(stub).CreateMedicine(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["medicineId"] != "MED-0A1B2C3D" || resp["stockStatus"] != "Low" || resp["expiryDate"] != "2027-03-31" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestPharmacistHandler_CreateMedicine_Invalid(t *testing.T) {
	h := NewPharmacistHandler(&stubPharmacyService{})
	c, _ := newJSONContext(http.MethodPost, "/pharmacist/medicines", `{"name":"","category":"x","stock":-1,"expiryDate":"31/03/2027"}`)

	err := h.CreateMedicine(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestPharmacistHandler_ListMedicines_PassesFilters(t *testing.T) {
	stub := &stubPharmacyService{
		listMedicinesFn: func(_ context.Context, q ports.MedicineQuery) ([]*domain.Medicine, error) {
			if q.Category != "Analgesic" || q.StockStatus != "Low" || q.PrescriptionFilter != "otc" {
				t.Fatalf("unexpected query: %+v", q)
			}
			return []*domain.Medicine{{MedicineID: "MED-00000001", ExpiryDate: time.Time{}}}, nil
		},
	}
	c, rec := newJSONContext(http.MethodGet, "/pharmacist/medicines?category=Analgesic&stockStatus=Low&prescriptionFilter=otc", "")

	if err := NewPharmacistHandler(stub).ListMedicines(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPharmacistHandler_DeleteMedicine(t *testing.T) {
	stub := &stubPharmacyService{
		deleteMedicineFn: func(_ context.Context, id string) error {
			if id != "MED-00000001" {
				return domain.ErrMedicineNotFound
			}
			return nil
		},
	}
	h := NewPharmacistHandler(stub)

	c, rec := newJSONContext(http.MethodDelete, "/pharmacist/medicines/MED-00000001", "")
	c.SetParamNames("medicineId")
	c.SetParamValues("MED-00000001")
	if err := h.DeleteMedicine(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if msg := decodeBody(t, rec)["message"]; msg != "Medicine deleted successfully" {
		t.Fatalf("unexpected message: %v", msg)
	}

	c, _ = newJSONContext(http.MethodDelete, "/pharmacist/medicines/MED-FFFFFFFF", "")
	c.SetParamNames("medicineId")
	c.SetParamValues("MED-FFFFFFFF")
	if err := h.DeleteMedicine(c); !errors.Is(err, domain.ErrMedicineNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPharmacistHandler_FillPrescription_UsesCaller(t *testing.T) {
	stub := &stubPharmacyService{
		fillFn: func(_ context.Context, id, pharmacistID string) (*domain.Prescription, error) {
			if id != "RX-0A1B2C3D" || pharmacistID != "PHM-00AA11BB" {
				t.Fatalf("unexpected args: %s %s", id, pharmacistID)
			}
			return &domain.Prescription{PrescriptionID: id, Status: domain.PrescriptionCompleted, FilledBy: pharmacistID}, nil
		},
	}
	c, rec := newJSONContext(http.MethodPut, "/pharmacist/prescriptions/RX-0A1B2C3D/fill", "")
	c.SetParamNames("id")
	c.SetParamValues("RX-0A1B2C3D")
	withIdentity(c, "PHM-00AA11BB", domain.RolePharmacist)

	if err := NewPharmacistHandler(stub).FillPrescription(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeBody(t, rec); resp["status"] != "COMPLETED" || resp["filledBy"] != "PHM-00AA11BB" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestPharmacistHandler_FillPrescription_NoIdentity(t *testing.T) {
	c, _ := newJSONContext(http.MethodPut, "/pharmacist/prescriptions/RX-0A1B2C3D/fill", "")

	if err := NewPharmacistHandler(&stubPharmacyService{}).FillPrescription(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestDoctorHandler_IssuePrescription(t *testing.T) {
	stub := &stubPharmacyService{
		issueFn: func(_ context.Context, in ports.PrescriptionInput) (*domain.Prescription, error) {
			if in.DoctorID != "DOC-1A2B3C4D" || len(in.Items) != 1 || in.Items[0].Quantity != 2 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Prescription{PrescriptionID: "RX-00000001", DoctorID: in.DoctorID, Status: domain.PrescriptionActive}, nil
		},
	}
	body := `{"patientName":"Jane Roe","items":[{"medicineId":"MED-00000001","quantity":2}]}`
	c, rec := newJSONContext(http.MethodPost, "/doctor/prescriptions", body)
	withIdentity(c, "DOC-1A2B3C4D", domain.RoleDoctor)

	if err := NewDoctorHandler(stub).IssuePrescription(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if resp := decodeBody(t, rec); resp["doctorId"] != "DOC-1A2B3C4D" || resp["status"] != "ACTIVE" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestDoctorHandler_IssuePrescription_EmptyItems(t *testing.T) {
	c, _ := newJSONContext(http.MethodPost, "/doctor/prescriptions", `{"patientName":"Jane Roe","items":[]}`)
	withIdentity(c, "DOC-1A2B3C4D", domain.RoleDoctor)

	err := NewDoctorHandler(&stubPharmacyService{}).IssuePrescription(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}
