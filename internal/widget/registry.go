package widget

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Factory builds the widget stored under id.
type Factory func(id string) *Widget

type InstanceObserver interface {
	SetInstances(n int)
}

type registryItem struct {
	widget   *Widget
	lastSeen time.Time
}

// Registry keeps widget instances by id. Instances idle for longer than
// idleTTL are dropped by Sweep or on access; when maxSize is reached the
// least recently seen instance is evicted.
type Registry struct {
	mu       sync.RWMutex
	widgets  map[string]registryItem
	factory  Factory
	observer InstanceObserver
	logger   *zap.Logger
	idleTTL  time.Duration
	maxSize  int
	now      func() time.Time
}

func NewRegistry(factory Factory, idleTTL time.Duration, maxSize int, observer InstanceObserver, logger *zap.Logger) *Registry {
	return &Registry{
		widgets:  make(map[string]registryItem),
		factory:  factory,
		observer: observer,
		logger:   logger,
		idleTTL:  idleTTL,
		maxSize:  maxSize,
		now:      time.Now,
	}
}

func (r *Registry) Create() *Widget {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxSize > 0 && len(r.widgets) >= r.maxSize {
		r.evictOldest()
	}

	id := uuid.NewString()
	w := r.factory(id)
	r.widgets[id] = registryItem{widget: w, lastSeen: r.now()}
	r.report()

	r.logger.Debug("Widget created", zap.String("widget_id", id))
	return w
}

// Get returns the widget and marks it as seen.
func (r *Registry) Get(id string) (*Widget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.widgets[id]
	if !exists {
		return nil, false
	}

	now := r.now()
	if r.expired(item, now) {
		delete(r.widgets, id)
		r.report()
		return nil, false
	}

	item.lastSeen = now
	r.widgets[id] = item
	return item.widget, true
}

func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.widgets[id]; !exists {
		return false
	}
	delete(r.widgets, id)
	r.report()
	return true
}

// Sweep drops idle instances and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	expiredCount := 0
	for id, item := range r.widgets {
		if r.expired(item, now) {
			delete(r.widgets, id)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		r.report()
		r.logger.Debug("Swept idle widgets", zap.Int("count", expiredCount))
	}
	return expiredCount
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.widgets)
}

func (r *Registry) Stats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]interface{}{
		"instances":     len(r.widgets),
		"max_instances": r.maxSize,
		"idle_ttl":      r.idleTTL.String(),
	}
}

func (r *Registry) expired(item registryItem, now time.Time) bool {
	return r.idleTTL > 0 && now.Sub(item.lastSeen) > r.idleTTL
}

func (r *Registry) evictOldest() {
	var oldestID string
	var oldestTime time.Time

	for id, item := range r.widgets {
		if oldestID == "" || item.lastSeen.Before(oldestTime) {
			oldestID = id
			oldestTime = item.lastSeen
		}
	}

	if oldestID != "" {
		delete(r.widgets, oldestID)
		r.logger.Debug("Evicted least recently seen widget", zap.String("widget_id", oldestID))
	}
}

func (r *Registry) report() {
	if r.observer != nil {
		r.observer.SetInstances(len(r.widgets))
	}
}
