package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospital/pharmacy-api/internal/api/metrics"
	"github.com/hospital/pharmacy-api/internal/core/ports"
)

// PharmacistHandler serves the /pharmacist resource group. Every route sits
// behind the PHARMACIST role guard; domain errors are rendered by the
// central error handler.
type PharmacistHandler struct {
	service ports.PharmacyService
}

func NewPharmacistHandler(service ports.PharmacyService) *PharmacistHandler {
	return &PharmacistHandler{service: service}
}

// bindValid binds the request body into dst and validates it.
func bindValid(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Dashboard handles GET /pharmacist/dashboard.
//
// @Summary      Pharmacy dashboard counters
// @Tags         pharmacist
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      403  {object}  messageResponse
// @Router       /pharmacist/dashboard [get]
func (h *PharmacistHandler) Dashboard(c echo.Context) error {
	stats, err := h.service.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDashboardResponse(stats))
}

// ListMedicines handles GET /pharmacist/medicines.
//
// @Summary      List medicines
// @Tags         pharmacist
// @Produce      json
// @Security     BearerAuth
// @Param        category            query     string  false  "Category"
// @Param        stockStatus         query     string  false  "Critical, Low or Adequate"
// @Param        prescriptionFilter  query     string  false  "required or otc"
// @Success      200  {array}   medicineResponse
// @Failure      400  {object}  messageResponse
// @Router       /pharmacist/medicines [get]
func (h *PharmacistHandler) ListMedicines(c echo.Context) error {
	list, err := h.service.ListMedicines(c.Request().Context(), ports.MedicineQuery{
		Category:           c.QueryParam("category"),
		StockStatus:        c.QueryParam("stockStatus"),
		PrescriptionFilter: c.QueryParam("prescriptionFilter"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMedicineResponses(list))
}

// SearchMedicines handles GET /pharmacist/medicines/search.
//
// @Summary      Search medicines by keyword
// @Tags         pharmacist
// @Produce      json
// @Security     BearerAuth
// @Param        keyword  query     string  true  "Matched against name, category and description"
// @Success      200      {array}   medicineResponse
// @Failure      400      {object}  messageResponse
// @Router       /pharmacist/medicines/search [get]
func (h *PharmacistHandler) SearchMedicines(c echo.Context) error {
	list, err := h.service.SearchMedicines(c.Request().Context(), c.QueryParam("keyword"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMedicineResponses(list))
}

// LowStockMedicines handles GET /pharmacist/medicines/low-stock.
//
// @Summary      Medicines at Low or Critical stock
// @Tags         pharmacist
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  medicineResponse
// @Router       /pharmacist/medicines/low-stock [get]
func (h *PharmacistHandler) LowStockMedicines(c echo.Context) error {
	list, err := h.service.LowStockMedicines(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMedicineResponses(list))
}

// CreateMedicine handles POST /pharmacist/medicines.
//
// @Summary      Add a medicine
// @Tags         pharmacist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      medicineRequest  true  "Medicine"
// @Success      201   {object}  medicineResponse
// @Failure      400   {object}  messageResponse
// @Router       /pharmacist/medicines [post]
func (h *PharmacistHandler) CreateMedicine(c echo.Context) error {
	var req medicineRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	m, err := h.service.CreateMedicine(c.Request().Context(), toMedicineInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toMedicineResponse(m))
}

// UpdateMedicine handles PUT /pharmacist/medicines/:medicineId.
//
// @Summary      Update a medicine
// @Tags         pharmacist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        medicineId  path      string           true  "Medicine identifier (e.g. MED-1A2B3C4D)"
// @Param        body        body      medicineRequest  true  "Medicine"
// @Success      200         {object}  medicineResponse
// @Failure      404         {object}  messageResponse
// @Router       /pharmacist/medicines/{medicineId} [put]
func (h *PharmacistHandler) UpdateMedicine(c echo.Context) error {
	var req medicineRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	m, err := h.service.UpdateMedicine(c.Request().Context(), c.Param("medicineId"), toMedicineInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMedicineResponse(m))
}

// DeleteMedicine handles DELETE /pharmacist/medicines/:medicineId.
//
// @Summary      Delete a medicine
// @Tags         pharmacist
// @Produce      json
// @Security     BearerAuth
// @Param        medicineId  path      string  true  "Medicine identifier"
// @Success      200         {object}  messageResponse
// @Failure      404         {object}  messageResponse
// @Router       /pharmacist/medicines/{medicineId} [delete]
func (h *PharmacistHandler) DeleteMedicine(c echo.Context) error {
	if err := h.service.DeleteMedicine(c.Request().Context(), c.Param("medicineId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Medicine deleted successfully"})
}

// ListCompanies handles GET /pharmacist/companies.
//
// @Summary      List companies
// @Tags         pharmacist
// @Produce      json
// @Security     BearerAuth
// @Param        name    query  string  false  "Partial name"
// @Param        status  query  string  false  "ACTIVE or INACTIVE"
// @Success      200     {array}  domain.Company
// @Router       /pharmacist/companies [get]
func (h *PharmacistHandler) ListCompanies(c echo.Context) error {
	list, err := h.service.ListCompanies(c.Request().Context(), c.QueryParam("name"), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// GetCompany handles GET /pharmacist/companies/:id.
//
// @Summary      Get a company
// @Tags         pharmacist
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Company id"
// @Success      200  {object}  domain.Company
// @Failure      404  {object}  messageResponse
// @Router       /pharmacist/companies/{id} [get]
func (h *PharmacistHandler) GetCompany(c echo.Context) error {
	company, err := h.service.GetCompany(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, company)
}

// CreateCompany handles POST /pharmacist/companies.
//
// @Summary      Add a company
// @Tags         pharmacist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      companyRequest  true  "Company"
// @Success      201   {object}  domain.Company
// @Failure      400   {object}  messageResponse
// @Router       /pharmacist/companies [post]
func (h *PharmacistHandler) CreateCompany(c echo.Context) error {
	var req companyRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	company, err := h.service.CreateCompany(c.Request().Context(), toCompanyInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, company)
}

// UpdateCompany handles PUT /pharmacist/companies/:id.
//
// @Summary      Update a company
// @Tags         pharmacist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Company id"
// @Param        body  body      companyRequest  true  "Company"
// @Success      200   {object}  domain.Company
// @Failure      404   {object}  messageResponse
// @Router       /pharmacist/companies/{id} [put]
func (h *PharmacistHandler) UpdateCompany(c echo.Context) error {
	var req companyRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	company, err := h.service.UpdateCompany(c.Request().Context(), c.Param("id"), toCompanyInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, company)
}

// ListDistributors handles GET /pharmacist/distributors.
//
// @Summary      List distributors
// @Tags         pharmacist
// @Produce      json
// @Security     BearerAuth
// @Param        region  query  string  false  "Region"
// @Param        status  query  string  false  "ACTIVE or INACTIVE"
// @Success      200     {array}  domain.Distributor
// @Router       /pharmacist/distributors [get]
func (h *PharmacistHandler) ListDistributors(c echo.Context) error {
	list, err := h.service.ListDistributors(c.Request().Context(), c.QueryParam("region"), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// GetDistributor handles GET /pharmacist/distributors/:id.
//
// @Summary      Get a distributor
// @Tags         pharmacist
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Distributor id"
// @Success      200  {object}  domain.Distributor
// @Failure      404  {object}  messageResponse
// @Router       /pharmacist/distributors/{id} [get]
func (h *PharmacistHandler) GetDistributor(c echo.Context) error {
	d, err := h.service.GetDistributor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// CreateDistributor handles POST /pharmacist/distributors.
//
// @Summary      Add a distributor
// @Tags         pharmacist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      distributorRequest  true  "Distributor"
// @Success      201   {object}  domain.Distributor
// @Failure      400   {object}  messageResponse
// @Router       /pharmacist/distributors [post]
func (h *PharmacistHandler) CreateDistributor(c echo.Context) error {
	var req distributorRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	d, err := h.service.CreateDistributor(c.Request().Context(), toDistributorInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

// UpdateDistributor handles PUT /pharmacist/distributors/:id.
//
// @Summary      Update a distributor
// @Tags         pharmacist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Distributor id"
// @Param        body  body      distributorRequest  true  "Distributor"
// @Success      200   {object}  domain.Distributor
// @Failure      404   {object}  messageResponse
// @Router       /pharmacist/distributors/{id} [put]
func (h *PharmacistHandler) UpdateDistributor(c echo.Context) error {
	var req distributorRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	d, err := h.service.UpdateDistributor(c.Request().Context(), c.Param("id"), toDistributorInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// ListPrescriptions handles GET /pharmacist/prescriptions.
//
// @Summary      Active prescriptions awaiting dispensing
// @Tags         pharmacist
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Prescription
// @Router       /pharmacist/prescriptions [get]
func (h *PharmacistHandler) ListPrescriptions(c echo.Context) error {
	list, err := h.service.ActivePrescriptions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// GetPrescription handles GET /pharmacist/prescriptions/:id.
//
// @Summary      Get a prescription
// @Tags         pharmacist
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Prescription identifier (e.g. RX-1A2B3C4D)"
// @Success      200  {object}  domain.Prescription
// @Failure      404  {object}  messageResponse
// @Router       /pharmacist/prescriptions/{id} [get]
func (h *PharmacistHandler) GetPrescription(c echo.Context) error {
	p, err := h.service.GetPrescription(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// FillPrescription handles PUT /pharmacist/prescriptions/:id/fill.
//
// @Summary      Fill a prescription
// @Tags         pharmacist
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Prescription identifier"
// @Success      200  {object}  domain.Prescription
// @Failure      400  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Failure      409  {object}  messageResponse
// @Router       /pharmacist/prescriptions/{id}/fill [put]
func (h *PharmacistHandler) FillPrescription(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	p, err := h.service.FillPrescription(c.Request().Context(), c.Param("id"), identity.User.UserID)
	if err != nil {
		return err
	}
	metrics.PrescriptionsTotal.WithLabelValues("filled").Inc()
	return c.JSON(http.StatusOK, p)
}
