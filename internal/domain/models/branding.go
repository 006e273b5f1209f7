// internal/domain/models/branding.go
package models

// DefaultSiteName is the console's display name when no override is
// configured.
const DefaultSiteName = "InsightHub"

// LicenseVersion is the terms-of-use revision new accounts accept.
const LicenseVersion = "2025-07"
