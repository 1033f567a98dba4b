package domain

import (
	"strings"
	"time"
)

// StockStatus buckets a medicine's stock level.
type StockStatus string

const (
	StockCritical StockStatus = "Critical"
	StockLow      StockStatus = "Low"
	StockAdequate StockStatus = "Adequate"
)

const (
	criticalStockThreshold = 10
	lowStockThreshold      = 50
)

// StockStatusFor derives the status shown to pharmacists from a raw count.
func StockStatusFor(stock int) StockStatus {
	switch {
	case stock <= criticalStockThreshold:
		return StockCritical
	case stock <= lowStockThreshold:
		return StockLow
	default:
		return StockAdequate
	}
}

// ParseStockStatus matches s case-insensitively against the known statuses.
func ParseStockStatus(s string) (StockStatus, bool) {
	for _, st := range []StockStatus{StockCritical, StockLow, StockAdequate} {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// Medicine is a catalog entry managed by pharmacists.
type Medicine struct {
	ID                   string      `json:"id" bson:"_id,omitempty"`
	MedicineID           string      `json:"medicineId" bson:"medicine_id"`
	Name                 string      `json:"name" bson:"name"`
	Description          string      `json:"description" bson:"description"`
	Category             string      `json:"category" bson:"category"`
	CompanyID            string      `json:"companyId" bson:"company_id"`
	Price                float64     `json:"price" bson:"price"`
	Stock                int         `json:"stock" bson:"stock"`
	StockStatus          StockStatus `json:"stockStatus" bson:"stock_status"`
	Dosage               string      `json:"dosage" bson:"dosage"`
	SideEffects          string      `json:"sideEffects" bson:"side_effects"`
	ExpiryDate           time.Time   `json:"expiryDate" bson:"expiry_date"`
	BatchNumber          string      `json:"batchNumber" bson:"batch_number"`
	PrescriptionRequired bool        `json:"prescriptionRequired" bson:"prescription_required"`
	CreatedAt            time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt            time.Time   `json:"updatedAt" bson:"updated_at"`
}
