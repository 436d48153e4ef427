package jobs

import (
	"context"

	"github.com/cloo-solutions/shopdesk/internal/domain"
)

// IndexBuilder brings tenant indexes up to date
type IndexBuilder interface {
	Warm(ctx context.Context, tenants []domain.Tenant) error
}

// IndexWarmer rebuilds stale knowledge base indexes ahead of the first
// question that would need them.
type IndexWarmer struct {
	indexes IndexBuilder
	tenants []domain.Tenant
}

// NewIndexWarmer creates an IndexWarmer for tenants, or every tenant when none are given
func NewIndexWarmer(indexes IndexBuilder, tenants ...domain.Tenant) *IndexWarmer {
	if len(tenants) == 0 {
		tenants = domain.Tenants
	}
	return &IndexWarmer{indexes: indexes, tenants: tenants}
}

// Run warms every configured tenant's index
func (w *IndexWarmer) Run(ctx context.Context) error {
	return w.indexes.Warm(ctx, w.tenants)
}
