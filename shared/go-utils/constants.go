package utils

const (
	OrganizationName = "gestion-locative"

	// Dev front-end origin allowed when CORS high security is off.
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:3000"
)
