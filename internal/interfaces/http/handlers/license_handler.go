package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/embedpro/pids-licensing/internal/application/dto"
	appservice "github.com/embedpro/pids-licensing/internal/application/service"
	apperrors "github.com/embedpro/pids-licensing/pkg/errors"
)

// LicenseHandler serves the license lifecycle endpoints.
type LicenseHandler struct {
	licenses *appservice.LicenseAppService
}

// NewLicenseHandler creates the license handler.
func NewLicenseHandler(licenses *appservice.LicenseAppService) *LicenseHandler {
	return &LicenseHandler{licenses: licenses}
}

// Create handles POST /createLicence.
func (h *LicenseHandler) Create(c *gin.Context) {
	var req dto.CreateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ErrValidation("Invalid request body").WithError(err))
		return
	}
	result, err := h.licenses.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Licence created", result))
}

// Update handles PUT /updateLicence?customer_name&system_id with the patch
// fields in the body.
func (h *LicenseHandler) Update(c *gin.Context) {
	var req dto.UpdateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ErrValidation("Invalid request body").WithError(err))
		return
	}
	req.CustomerName = c.Query("customer_name")
	req.SystemID = c.Query("system_id")

	record, err := h.licenses.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Licence updated", gin.H{"license_data": record}))
}

// Delete handles DELETE /deleteLicence?customer_name&system_id.
func (h *LicenseHandler) Delete(c *gin.Context) {
	req := dto.DeleteLicenseRequest{
		CustomerName: c.Query("customer_name"),
		SystemID:     c.Query("system_id"),
	}
	if err := h.licenses.Delete(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Licence deleted", nil))
}

// Activate handles POST /activateLicence.
func (h *LicenseHandler) Activate(c *gin.Context) {
	var req dto.ActivateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ErrValidation("Invalid request body").WithError(err))
		return
	}
	projection, err := h.licenses.Activate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Licence activated", projection))
}

// Info handles GET /getLicenceInfo: the aggregate dashboard statistics.
func (h *LicenseHandler) Info(c *gin.Context) {
	stats, err := h.licenses.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Licence statistics", stats))
}

// ListAll handles GET /getAllLicenses.
func (h *LicenseHandler) ListAll(c *gin.Context) {
	records, err := h.licenses.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Licences", gin.H{"licenses": records, "count": len(records)}))
}
