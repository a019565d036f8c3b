package config

import (
	"net/http"
	"strings"
	"time"
)

const defaultAPITimeout = 15 * time.Second

// APIConfig describes the remote profile service. Path templates may use the
// {role} and {type} placeholders.
type APIConfig struct {
	// BaseURL is the root every path below is joined onto.
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"15s"`

	SignInPath      string `env:"SIGNIN_PATH"       envDefault:"/api/auth/login"`
	ProfilePath     string `env:"PROFILE_PATH"      envDefault:"/api/{role}/profile"`
	DocumentPath    string `env:"DOCUMENT_PATH"     envDefault:"/api/{role}/documents/{type}"`
	BankConfirmPath string `env:"BANK_CONFIRM_PATH" envDefault:"/api/{role}/bank/confirm"`

	// SubmitMethod is PUT or PATCH.
	SubmitMethod string `env:"SUBMIT_METHOD" envDefault:"PUT"`

	// ProfileExtract is a JMESPath expression locating the profile object in
	// a fetch response. {role} is replaced before compiling.
	ProfileExtract string `env:"PROFILE_EXTRACT" envDefault:"{role} || data.{role} || data || @"`

	// Document types fetched for each role when none are named explicitly.
	EmployeeDocuments []string `env:"EMPLOYEE_DOCUMENTS" envDefault:"aadhaar_front,aadhaar_back,pan_card,profile_photo" envSeparator:","`
	RetailerDocuments []string `env:"RETAILER_DOCUMENTS" envDefault:"shop_photo,owner_photo,gst_certificate"             envSeparator:","`
}

// Sanitize trims values and restores defaults for unusable ones.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.Timeout <= 0 {
		c.Timeout = defaultAPITimeout
	}
	c.SubmitMethod = strings.ToUpper(strings.TrimSpace(c.SubmitMethod))
	if c.SubmitMethod != http.MethodPatch {
		c.SubmitMethod = http.MethodPut
	}
	c.ProfileExtract = strings.TrimSpace(c.ProfileExtract)
	c.EmployeeDocuments = compact(c.EmployeeDocuments)
	c.RetailerDocuments = compact(c.RetailerDocuments)
}

// DocumentsFor returns the default document types for a normalized role.
func (c *APIConfig) DocumentsFor(role string) []string {
	switch role {
	case "employee":
		return c.EmployeeDocuments
	case "retailer":
		return c.RetailerDocuments
	default:
		return nil
	}
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
