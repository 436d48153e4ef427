package domain

import "strings"

// Tenant identifies the storefront a chat message belongs to
type Tenant string

const (
	TenantSabi  Tenant = "sabi"
	TenantTrace Tenant = "trace"
	TenantKatsu Tenant = "katsu"
)

// Tenants lists every known tenant in a stable order
var Tenants = []Tenant{TenantSabi, TenantTrace, TenantKatsu}

// ParseTenant resolves a tenant name case-insensitively
func ParseTenant(name string) (Tenant, error) {
	t := Tenant(strings.ToLower(strings.TrimSpace(name)))
	if !isValidTenant(t) {
		return "", ErrInvalidTenant
	}
	return t, nil
}

// HasStructuredIntents reports whether messages for the tenant go through intent classification.
// Other tenants are answered from their knowledge base only.
func (t Tenant) HasStructuredIntents() bool {
	return t == TenantSabi
}

// DocumentFolder is the folder name used for the tenant's knowledge base documents
func (t Tenant) DocumentFolder() string {
	if t == TenantSabi {
		return "sabiMarket"
	}
	return string(t)
}

func isValidTenant(t Tenant) bool {
	switch t {
	case TenantSabi, TenantTrace, TenantKatsu:
		return true
	}
	return false
}
