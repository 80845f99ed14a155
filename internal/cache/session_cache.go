package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/hanjob/resume-api/internal/draft"
	"github.com/hanjob/resume-api/pkg/logger"
	"github.com/hanjob/resume-api/pkg/metrics"
)

const (
	sessionCacheName   = "draft_sessions"
	sessionCleanupTick = time.Minute
)

// SessionCache keeps live draft sessions in memory. Entries expire after the
// idle TTL; every Get extends it. Expired and removed sessions are closed.
type SessionCache struct {
	cache *gocache.Cache
	ttl   time.Duration

	mu sync.Mutex
}

// NewSessionCache creates a cache evicting sessions idle for longer than ttl.
func NewSessionCache(ttl time.Duration) *SessionCache {
	return newSessionCache(ttl, sessionCleanupTick)
}

func newSessionCache(ttl, cleanup time.Duration) *SessionCache {
	sc := &SessionCache{
		cache: gocache.New(ttl, cleanup),
		ttl:   ttl,
	}
	sc.cache.OnEvicted(func(draftID string, v interface{}) {
		if s, ok := v.(*draft.Session); ok {
			s.Close()
		}
		metrics.ActiveSessions.Dec()
		metrics.CacheSize.WithLabelValues(sessionCacheName).Set(float64(sc.cache.ItemCount()))
		logger.Debug("Draft session evicted", zap.String("draft_id", draftID))
	})
	return sc
}

// Put stores s under its draft id. A session already stored under that id is
// closed.
func (sc *SessionCache) Put(s *draft.Session) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if old, found := sc.cache.Get(s.DraftID()); found {
		if prev, ok := old.(*draft.Session); ok && prev == s {
			sc.cache.Set(s.DraftID(), s, sc.ttl)
			return
		}
		// Delete fires OnEvicted, which closes the previous session.
		sc.cache.Delete(s.DraftID())
	}
	sc.cache.Set(s.DraftID(), s, sc.ttl)
	metrics.ActiveSessions.Inc()
	metrics.CacheSize.WithLabelValues(sessionCacheName).Set(float64(sc.cache.ItemCount()))
}

// Get returns the session for draftID and extends its idle TTL.
func (sc *SessionCache) Get(draftID string) (*draft.Session, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	v, found := sc.cache.Get(draftID)
	if !found {
		metrics.CacheMisses.WithLabelValues(sessionCacheName).Inc()
		return nil, false
	}
	s, ok := v.(*draft.Session)
	if !ok {
		logger.Error("Invalid session cache data type", zap.String("draft_id", draftID))
		sc.cache.Delete(draftID)
		return nil, false
	}
	metrics.CacheHits.WithLabelValues(sessionCacheName).Inc()
	sc.cache.Set(draftID, s, sc.ttl)
	return s, true
}

// Remove closes and drops the session for draftID. Unknown ids are ignored.
func (sc *SessionCache) Remove(draftID string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cache.Delete(draftID)
}

// Count returns the number of live sessions.
func (sc *SessionCache) Count() int {
	return sc.cache.ItemCount()
}

// Close closes every session. Used on shutdown.
func (sc *SessionCache) Close() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for id := range sc.cache.Items() {
		sc.cache.Delete(id)
	}
}
