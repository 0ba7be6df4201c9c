package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/GBurchell27/Dynamic-subdomains/internal/model"
)

// MemoryTenantDirectory is an in-memory TenantDirectory used for demo
// mode and tests. Safe for concurrent use.
type MemoryTenantDirectory struct {
	mu      sync.RWMutex
	tenants map[string]*model.Tenant // keyed by id
}

// NewMemoryTenantDirectory creates an empty in-memory tenant directory.
func NewMemoryTenantDirectory(tenants ...*model.Tenant) *MemoryTenantDirectory {
	d := &MemoryTenantDirectory{tenants: make(map[string]*model.Tenant)}
	for _, t := range tenants {
		d.tenants[t.ID] = t
	}
	return d
}

func (d *MemoryTenantDirectory) FindBySubdomain(_ context.Context, subdomain string) (*model.Tenant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	subdomain = strings.ToLower(subdomain)
	for _, t := range d.tenants {
		if t.Subdomain == subdomain && t.Active {
			copied := *t
			return &copied, nil
		}
	}
	return nil, ErrTenantNotFound
}

func (d *MemoryTenantDirectory) FindByID(_ context.Context, id string) (*model.Tenant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if t, ok := d.tenants[id]; ok && t.Active {
		copied := *t
		return &copied, nil
	}
	return nil, ErrTenantNotFound
}

func (d *MemoryTenantDirectory) List(_ context.Context) ([]model.Tenant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tenants := make([]model.Tenant, 0, len(d.tenants))
	for _, t := range d.tenants {
		tenants = append(tenants, *t)
	}
	return tenants, nil
}

func (d *MemoryTenantDirectory) Create(_ context.Context, tenant *model.Tenant) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	tenant.Subdomain = strings.ToLower(tenant.Subdomain)
	for _, t := range d.tenants {
		if t.Subdomain == tenant.Subdomain {
			return ErrConflict
		}
	}
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	copied := *tenant
	d.tenants[tenant.ID] = &copied
	return nil
}

func (d *MemoryTenantDirectory) Stats(_ context.Context) (*TenantStats, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	stats := &TenantStats{}
	for _, t := range d.tenants {
		stats.TotalTenants++
		if t.Active {
			stats.ActiveTenants++
		}
		if len(t.Features) >= enterpriseFeatureCount {
			stats.EnterpriseTenants++
		}
	}
	return stats, nil
}

// MemoryUserStore is an in-memory UserStore used for demo mode and
// tests. Safe for concurrent use.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*model.User // keyed by username
}

// NewMemoryUserStore creates an in-memory user store.
func NewMemoryUserStore(users ...*model.User) *MemoryUserStore {
	s := &MemoryUserStore{users: make(map[string]*model.User)}
	for _, u := range users {
		s.users[u.Username] = u
	}
	return s
}

func (s *MemoryUserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[username]; ok && u.Active {
		copied := *u
		return &copied, nil
	}
	return nil, ErrUserNotFound
}

func (s *MemoryUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrConflict
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	copied := *user
	s.users[user.Username] = &copied
	return nil
}

// MemoryMarketingStore is an in-memory MarketingStore used for demo mode
// and tests. Rows for different tenants live in separate buckets, so
// concurrent writes for different tenants never observe each other.
type MemoryMarketingStore struct {
	mu       sync.RWMutex
	rows     map[string][]model.MarketingData // keyed by tenant id
	analyses map[string]*model.Analysis       // keyed by analysis id
}

// NewMemoryMarketingStore creates an in-memory marketing store.
func NewMemoryMarketingStore() *MemoryMarketingStore {
	return &MemoryMarketingStore{
		rows:     make(map[string][]model.MarketingData),
		analyses: make(map[string]*model.Analysis),
	}
}

func (s *MemoryMarketingStore) ChannelData(_ context.Context, tenantID string) ([]model.MarketingData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]model.MarketingData, len(s.rows[tenantID]))
	copy(rows, s.rows[tenantID])
	return rows, nil
}

func (s *MemoryMarketingStore) InsertRows(_ context.Context, tenantID string, rows []model.MarketingData) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range rows {
		rows[i].TenantID = tenantID
		if rows[i].ID == "" {
			rows[i].ID = uuid.New().String()
		}
	}
	s.rows[tenantID] = append(s.rows[tenantID], rows...)
	return len(rows), nil
}

func (s *MemoryMarketingStore) SaveAnalysis(_ context.Context, analysis *model.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if analysis.ID == "" {
		analysis.ID = uuid.New().String()
	}
	copied := *analysis
	s.analyses[analysis.ID] = &copied
	return nil
}

func (s *MemoryMarketingStore) FindAnalysis(_ context.Context, tenantID, analysisID string) (*model.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.analyses[analysisID]; ok && a.TenantID == tenantID {
		copied := *a
		return &copied, nil
	}
	return nil, ErrAnalysisNotFound
}
