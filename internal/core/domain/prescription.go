package domain

import "time"

// PrescriptionStatus represents the lifecycle state of a prescription.
type PrescriptionStatus string

const (
	PrescriptionActive    PrescriptionStatus = "ACTIVE"
	PrescriptionCompleted PrescriptionStatus = "COMPLETED"
)

// CanFill reports whether a prescription in status s may be filled.
func (s PrescriptionStatus) CanFill() bool {
	return s == PrescriptionActive
}

// PrescriptionItem is one medicine line on a prescription.
type PrescriptionItem struct {
	MedicineID   string `json:"medicineId" bson:"medicine_id"`
	Quantity     int    `json:"quantity" bson:"quantity"`
	Instructions string `json:"instructions,omitempty" bson:"instructions,omitempty"`
}

// Prescription is issued by a doctor and filled by a pharmacist.
type Prescription struct {
	ID             string             `json:"id" bson:"_id,omitempty"`
	PrescriptionID string             `json:"prescriptionId" bson:"prescription_id"`
	PatientName    string             `json:"patientName" bson:"patient_name"`
	DoctorID       string             `json:"doctorId" bson:"doctor_id"`
	Items          []PrescriptionItem `json:"items" bson:"items"`
	Notes          string             `json:"notes,omitempty" bson:"notes,omitempty"`
	Status         PrescriptionStatus `json:"status" bson:"status"`
	FilledBy       string             `json:"filledBy,omitempty" bson:"filled_by,omitempty"`
	FilledAt       *time.Time         `json:"filledAt,omitempty" bson:"filled_at,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updated_at"`
}
