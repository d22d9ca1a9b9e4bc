// Package models holds the domain records of the licensing service.
package models

import "time"

// LicenseState encodes the lifecycle position of a license.
type LicenseState int

const (
	// LicenseStateInactive is the state of a freshly created license.
	LicenseStateInactive LicenseState = 0

	// LicenseStateActive is the state after successful activation.
	LicenseStateActive LicenseState = 1
)

// String returns the human-readable state name.
func (s LicenseState) String() string {
	switch s {
	case LicenseStateActive:
		return "active"
	case LicenseStateInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// LicenseRecord is the stored license item. CustomerName + SystemID form the
// primary identity; SystemID alone is unique across customers.
type LicenseRecord struct {
	CustomerName  string       `json:"customer_name"`
	SystemID      string       `json:"system_id"`
	SiteName      string       `json:"site_name"`
	DeviceCount   int          `json:"device_count"`
	GeneratedDate string       `json:"generated_date"`
	Validity      int          `json:"validity"`
	ActivatedDate string       `json:"activated_date,omitempty"`
	Email         string       `json:"email"`
	LicenceState  LicenseState `json:"licence_state"`
	Password      string       `json:"password"`
	Description   string       `json:"description,omitempty"`
	FileURL       string       `json:"file_url,omitempty"`
	FrontendMAC   string       `json:"fe_mac,omitempty"`
	BackendMAC    string       `json:"be_mac,omitempty"`
}

// IsActive reports whether the license has been activated.
func (r *LicenseRecord) IsActive() bool {
	return r.LicenceState == LicenseStateActive
}

// ValidTill computes the expiry date: activation date plus the validity
// period in months. Zero time when the license was never activated.
func (r *LicenseRecord) ValidTill() time.Time {
	if r.ActivatedDate == "" {
		return time.Time{}
	}
	activated, err := time.Parse("2006-01-02", r.ActivatedDate)
	if err != nil {
		return time.Time{}
	}
	return activated.AddDate(0, r.Validity, 0)
}

// IsExpired reports whether an activated license has passed its expiry.
// Never-activated licenses are not expired.
func (r *LicenseRecord) IsExpired(now time.Time) bool {
	till := r.ValidTill()
	return !till.IsZero() && now.After(till)
}

// Projection returns a copy safe for post-activation responses: delivery
// secrets and lifecycle bookkeeping fields are stripped.
func (r *LicenseRecord) Projection() map[string]interface{} {
	out := map[string]interface{}{
		"customer_name": r.CustomerName,
		"system_id":     r.SystemID,
		"site_name":     r.SiteName,
		"device_count":  r.DeviceCount,
	}
	if r.Description != "" {
		out["description"] = r.Description
	}
	if r.FileURL != "" {
		out["file_url"] = r.FileURL
	}
	if r.FrontendMAC != "" {
		out["fe_mac"] = r.FrontendMAC
	}
	if r.BackendMAC != "" {
		out["be_mac"] = r.BackendMAC
	}
	return out
}

// AggregateStats is the dashboard summary computed over the full store.
type AggregateStats struct {
	TotalLicenses       int             `json:"totalLicenses"`
	ActiveLicenses      int             `json:"activeLicenses"`
	InactiveLicenses    int             `json:"inactiveLicenses"`
	ExpiredLicenses     int             `json:"expiredLicenses"`
	ActivatedLast30Days int             `json:"activatedLast30Days"`
	TotalCustomers      int             `json:"totalCustomers"`
	TopCustomers        []CustomerCount `json:"topCustomers"`
}

// CustomerCount pairs a customer with its license count.
type CustomerCount struct {
	CustomerName string `json:"customer_name"`
	Count        int    `json:"count"`
}
