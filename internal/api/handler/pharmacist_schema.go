package handler

import "time"

// dateLayout is the wire format of calendar dates such as expiry dates.
const dateLayout = "2006-01-02"

type medicineRequest struct {
	Name                 string  `json:"name"                 validate:"required"`
	Description          string  `json:"description"`
	Category             string  `json:"category"             validate:"required"`
	CompanyID            string  `json:"companyId"`
	Price                float64 `json:"price"                validate:"gte=0"`
	Stock                int     `json:"stock"                validate:"gte=0"`
	Dosage               string  `json:"dosage"`
	SideEffects          string  `json:"sideEffects"`
	ExpiryDate           string  `json:"expiryDate"           validate:"omitempty,datetime=2006-01-02"`
	BatchNumber          string  `json:"batchNumber"`
	PrescriptionRequired bool    `json:"prescriptionRequired"`
}

type companyRequest struct {
	Name          string `json:"name"          validate:"required"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"         validate:"omitempty,email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Status        string `json:"status"        validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type distributorRequest struct {
	Name          string `json:"name"          validate:"required"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"         validate:"omitempty,email"`
	Phone         string `json:"phone"`
	Region        string `json:"region"        validate:"required"`
	Status        string `json:"status"        validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type medicineResponse struct {
	ID                   string    `json:"id"`
	MedicineID           string    `json:"medicineId"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Category             string    `json:"category"`
	CompanyID            string    `json:"companyId"`
	Price                float64   `json:"price"`
	Stock                int       `json:"stock"`
	StockStatus          string    `json:"stockStatus"`
	Dosage               string    `json:"dosage"`
	SideEffects          string    `json:"sideEffects"`
	ExpiryDate           string    `json:"expiryDate,omitempty"`
	BatchNumber          string    `json:"batchNumber"`
	PrescriptionRequired bool      `json:"prescriptionRequired"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

type dashboardResponse struct {
	TotalMedicines       int64 `json:"totalMedicines"`
	LowStockMedicines    int64 `json:"lowStockMedicines"`
	TotalCompanies       int64 `json:"totalCompanies"`
	TotalDistributors    int64 `json:"totalDistributors"`
	PendingPrescriptions int64 `json:"pendingPrescriptions"`
}

type prescriptionItemRequest struct {
	MedicineID   string `json:"medicineId"   validate:"required"`
	Quantity     int    `json:"quantity"     validate:"gt=0"`
	Instructions string `json:"instructions"`
}

type prescriptionRequest struct {
	PatientName string                    `json:"patientName" validate:"required"`
	Items       []prescriptionItemRequest `json:"items"       validate:"required,min=1,dive"`
	Notes       string                    `json:"notes"`
}
