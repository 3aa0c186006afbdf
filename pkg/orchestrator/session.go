package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cloudpilot-ai/discoverctl/pkg/credentials"
	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/ratelimit"
	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
)

// Session is the orchestrator's exclusively-owned record of one discovery
// run. Its single worker goroutine is the only writer; readers see
// consistent snapshots via atomic pointer loads, per spec.md §5's
// shared-resource policy.
type Session struct {
	ID        string
	Config    DiscoveryConfig
	StartedAt time.Time

	progress atomic.Pointer[inventory.Progress]
	inv      atomic.Pointer[inventory.Inventory]

	cancel context.CancelFunc
}

func newSession(id string, cfg DiscoveryConfig, totalRegions, totalServices int, cancel context.CancelFunc) *Session {
	now := time.Now()
	s := &Session{ID: id, Config: cfg, StartedAt: now, cancel: cancel}
	s.publishProgress(inventory.Progress{
		Status:        inventory.StatusPending,
		TotalRegions:  totalRegions,
		TotalServices: totalServices,
		StartedAt:     now,
		UpdatedAt:     now,
	})
	return s
}

func (s *Session) publishProgress(p inventory.Progress) {
	clone := p.Clone()
	s.progress.Store(&clone)
}

// Progress returns a read-only snapshot of the session's current progress.
func (s *Session) Progress() inventory.Progress {
	return s.progress.Load().Clone()
}

// Inventory returns the session's inventory, or nil if not yet populated.
func (s *Session) Inventory() *inventory.Inventory {
	return s.inv.Load()
}

// Manager owns every in-memory discovery session for one provider registry.
// Grounded on nebula's internal/registry session bookkeeping, flattened to
// the single concurrent map spec.md §9 calls for.
type Manager struct {
	registry *scanner.Registry
	creds    credentials.Provider
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager constructs a Manager driving scans against registry using
// creds for credential resolution.
func NewManager(registry *scanner.Registry, creds credentials.Provider, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		creds:    creds,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// StartDiscovery validates credentials, resolves the effective region and
// service lists, creates a session in the pending state, and kicks off the
// scan worker asynchronously. It returns the new session id, or a setup
// error if credentials are invalid or no regions remain after exclusion.
func (m *Manager) StartDiscovery(ctx context.Context, cfg DiscoveryConfig, onProgress inventory.ProgressFunc) (string, error) {
	validation := m.creds.ValidateCredentials(ctx)
	if !validation.Valid {
		if validation.Err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, validation.Err)
		}
		return "", ErrInvalidCredentials
	}

	regions, err := m.resolveRegions(ctx, cfg)
	if err != nil {
		return "", err
	}
	if len(regions) == 0 {
		return "", ErrNoRegions
	}

	services := m.resolveServices(cfg)

	accountID := cfg.AccountID
	if accountID == "" {
		accountID, _ = m.creds.GetDefaultAccountID(ctx)
	}
	subscriptionID := cfg.SubscriptionID
	if subscriptionID == "" {
		subscriptionID, _ = m.creds.GetDefaultSubscriptionID(ctx)
	}
	if accountID == "" && subscriptionID == "" {
		return "", ErrNoAccountOrSubscription
	}

	cred, err := m.creds.GetCredential(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	sessionCtx, cancel := context.WithCancel(context.Background())
	if cfg.Timeout > 0 {
		var timeoutCancel context.CancelFunc
		sessionCtx, timeoutCancel = context.WithTimeout(sessionCtx, cfg.Timeout)
		outerCancel := cancel
		cancel = func() {
			timeoutCancel()
			outerCancel()
		}
	}

	id := uuid.NewString()
	session := newSession(id, cfg, len(regions), len(services), cancel)

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	limiterCfg := ratelimit.DefaultConfig()
	if cfg.Concurrency > 0 {
		limiterCfg.MaxConcurrent = cfg.Concurrency
	}
	limiter := ratelimit.New(limiterCfg)

	w := &worker{
		manager:        m,
		session:        session,
		regions:        regions,
		services:       services,
		accountID:      accountID,
		subscriptionID: subscriptionID,
		credential:     cred,
		limiter:        limiter,
		onProgress:     onProgress,
		logger:         m.logger.With("sessionId", id),
	}
	go w.run(sessionCtx)

	return id, nil
}

func (m *Manager) resolveRegions(ctx context.Context, cfg DiscoveryConfig) ([]string, error) {
	var regions []string
	if cfg.isRegionsAll() {
		all, err := m.creds.ListRegions(ctx)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: listing regions: %w", err)
		}
		regions = all
	} else {
		regions = cfg.Regions
	}
	return subtract(regions, cfg.ExcludeRegions), nil
}

func (m *Manager) resolveServices(cfg DiscoveryConfig) []string {
	registered := m.registry.ServiceNames()
	wanted := cfg.Services
	if wanted == nil {
		wanted = registered
	}
	services := intersectPreservingOrder(wanted, registered)
	services = subtract(services, cfg.ExcludeServices)
	return taggingFirst(services)
}

func (m *Manager) get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// GetSession returns the session record for sessionID.
func (m *Manager) GetSession(sessionID string) (*Session, error) {
	s, ok := m.get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// ListSessions returns every session the Manager currently holds, most
// recently started first. Callers that embed a Manager as a long-running
// service (rather than driving it through the one-shot scan CLI) use this
// to enumerate in-flight and completed sessions without tracking ids
// themselves.
func (m *Manager) ListSessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// GetProgress returns a read-only snapshot of sessionID's progress.
func (m *Manager) GetProgress(sessionID string) (inventory.Progress, error) {
	s, ok := m.get(sessionID)
	if !ok {
		return inventory.Progress{}, ErrSessionNotFound
	}
	return s.Progress(), nil
}

// GetInventory returns sessionID's inventory. It is nil until the session
// completes successfully.
func (m *Manager) GetInventory(sessionID string) (*inventory.Inventory, error) {
	s, ok := m.get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Inventory(), nil
}

// CancelDiscovery signals cancellation for an in-progress session. Pending
// and completed sessions are unaffected, per spec.md §4.5.
func (m *Manager) CancelDiscovery(sessionID string) error {
	s, ok := m.get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	if s.Progress().Status != inventory.StatusInProgress {
		return nil
	}
	s.cancel()
	return nil
}

// CleanupSessions removes every session whose StartedAt predates maxAge,
// returning the count removed.
func (m *Manager) CleanupSessions(maxAge time.Duration) int {
	if maxAge <= 0 {
		maxAge = DefaultMaxSessionAge
	}
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.StartedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
