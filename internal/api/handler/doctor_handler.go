package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospital/pharmacy-api/internal/api/metrics"
	"github.com/hospital/pharmacy-api/internal/core/ports"
)

// DoctorHandler serves the /doctor resource group.
type DoctorHandler struct {
	service ports.PharmacyService
}

func NewDoctorHandler(service ports.PharmacyService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

// IssuePrescription handles POST /doctor/prescriptions. The prescribing
// doctor is the authenticated caller.
//
// @Summary      Issue a prescription
// @Tags         doctor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      prescriptionRequest  true  "Prescription"
// @Success      201   {object}  domain.Prescription
// @Failure      400   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /doctor/prescriptions [post]
func (h *DoctorHandler) IssuePrescription(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req prescriptionRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	p, err := h.service.IssuePrescription(c.Request().Context(), toPrescriptionInput(req, identity.User.UserID))
	if err != nil {
		return err
	}
	metrics.PrescriptionsTotal.WithLabelValues("issued").Inc()
	return c.JSON(http.StatusCreated, p)
}
