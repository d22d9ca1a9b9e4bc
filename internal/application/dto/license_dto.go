package dto

import (
	"github.com/embedpro/pids-licensing/internal/domain/models"
	"github.com/embedpro/pids-licensing/pkg/seal"
)

// CreateLicenseRequest is the license generation input.
type CreateLicenseRequest struct {
	CustomerName string `json:"customer_name" validate:"required,min=1,max=128"`
	SiteName     string `json:"site_name" validate:"required,min=1,max=128"`
	DeviceCount  int    `json:"device_count" validate:"required,gt=0"`
	Validity     int    `json:"validity" validate:"required,gt=0"`
	Email        string `json:"email" validate:"required,email"`
	Description  string `json:"description" validate:"max=512"`
	FileURL      string `json:"file_url" validate:"omitempty,url"`
}

// CreateLicenseResult pairs the persisted record with both sealed-payload
// wire forms, built from exactly the data that was stored.
type CreateLicenseResult struct {
	Record           *models.LicenseRecord `json:"license_data"`
	EncryptedPayload *seal.Envelope        `json:"encrypted_payload"`
	SealedPayload    string                `json:"sealed_payload"`
}

// UpdateLicenseRequest is a partial update. Nil pointers leave the stored
// field untouched; identity fields are immutable.
type UpdateLicenseRequest struct {
	CustomerName string  `json:"customer_name" validate:"required"`
	SystemID     string  `json:"system_id" validate:"required"`
	DeviceCount  *int    `json:"device_count" validate:"omitempty,gt=0"`
	Validity     *int    `json:"validity" validate:"omitempty,gt=0"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Description  *string `json:"description" validate:"omitempty,max=512"`
	FileURL      *string `json:"file_url" validate:"omitempty,url"`
}

// DeleteLicenseRequest identifies the record to remove.
type DeleteLicenseRequest struct {
	CustomerName string `json:"customer_name" validate:"required"`
	SystemID     string `json:"system_id" validate:"required"`
}

// ActivateLicenseRequest is the activation input from an installed system.
type ActivateLicenseRequest struct {
	SystemID    string `json:"system_id" validate:"required"`
	Password    string `json:"password" validate:"required"`
	FrontendMAC string `json:"fe_mac" validate:"required"`
	BackendMAC  string `json:"be_mac" validate:"required"`
}
