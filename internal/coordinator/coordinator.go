// Package coordinator owns the Febos polling lifecycle: one topology setup
// per session, then periodic refreshes of realtime and slave values.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"febos_exporter/internal/api"
	"febos_exporter/internal/entity"
	"febos_exporter/internal/types"
)

var (
	// ErrReauthRequired reports credentials or a session the webapp keeps
	// refusing. The host should ask for new credentials.
	ErrReauthRequired = errors.New("re-authentication required")
	// ErrSetupFailed reports a non-authentication failure while building
	// the topology. Setup may be retried.
	ErrSetupFailed = errors.New("setup failed")
	// ErrUpdateFailed reports a refresh cycle aborted by a non-authentication
	// failure. Cached values are kept.
	ErrUpdateFailed = errors.New("update failed")
	// ErrNotReady is returned by Refresh before Setup succeeded.
	ErrNotReady = errors.New("coordinator not set up")
)

// Vendor is the Febos webapp as seen by the coordinator. Implementations
// return errors wrapping api.ErrAuthentication when the session is refused.
type Vendor interface {
	Login(ctx context.Context) (*types.LoginData, error)
	PageConfig(ctx context.Context, installationID int64) (*types.PageConfig, error)
	Slaves(ctx context.Context, installationID, deviceID int64) ([]types.Slave, error)
	RealtimeData(ctx context.Context, installationID int64, groupCodes []string) ([]types.RealtimeEntry, error)
}

// Listener is notified with every populated record after each successful
// refresh.
type Listener interface {
	OnRefresh(ctx context.Context, records []entity.Record) error
}

// Observer receives the outcome of every refresh cycle.
type Observer interface {
	ObserveRefresh(d time.Duration, err error)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithListener adds a refresh listener.
func WithListener(l Listener) Option {
	return func(c *Coordinator) { c.listeners = append(c.listeners, l) }
}

// WithObserver sets the refresh observer.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) { c.observer = o }
}

// WithRequestTimeout bounds each scheduled setup or refresh.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

// Coordinator builds the entity store and keeps its values current.
type Coordinator struct {
	vendor    Vendor
	logger    *slog.Logger
	listeners []Listener
	observer  Observer
	timeout   time.Duration

	// mu serializes Setup and Refresh. Listeners run outside of it.
	mu    sync.Mutex
	store atomic.Pointer[entity.Store]
	ready atomic.Bool

	// notifyMu is held while listeners run.
	notifyMu sync.Mutex

	stateMu     sync.RWMutex
	lastErr     error
	lastSuccess time.Time
}

// New creates a coordinator over vendor.
func New(vendor Vendor, opts ...Option) *Coordinator {
	c := &Coordinator{
		vendor:  vendor,
		logger:  slog.Default(),
		timeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.store.Store(entity.NewStore())
	return c
}

// Setup logs in and builds the topology of every installation. It does
// nothing once it has succeeded.
func (c *Coordinator) Setup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setup(ctx)
}

func (c *Coordinator) setup(ctx context.Context) error {
	if c.ready.Load() {
		return nil
	}

	store, err := c.build(ctx)
	if err != nil {
		if errors.Is(err, api.ErrAuthentication) {
			err = fmt.Errorf("%w: %w", ErrReauthRequired, err)
		} else {
			err = fmt.Errorf("%w: %w", ErrSetupFailed, err)
		}
		c.setLastError(err)
		c.logger.Error("Setup failed", "error", err)
		return err
	}

	c.store.Store(store)
	c.ready.Store(true)
	c.setLastError(nil)
	c.logger.Info("Setup complete",
		"installations", len(store.Installations()),
		"resources", store.Len())
	return nil
}

// build fetches the full topology into a fresh store.
func (c *Coordinator) build(ctx context.Context) (*entity.Store, error) {
	login, err := c.vendor.Login(ctx)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	b := &builder{
		vendor: c.vendor,
		parser: entity.NewParser(c.logger),
		store:  entity.NewStore(),
		logger: c.logger,
	}
	for _, id := range login.InstallationIDList {
		if err := b.installation(ctx, id); err != nil {
			return nil, fmt.Errorf("installation %d: %w", id, err)
		}
	}
	return b.store, nil
}

// Refresh fetches current values and commits them. An authentication
// failure triggers one re-login and one retry of the whole pass. A failed
// cycle leaves every cached value unchanged. Listeners are notified after
// the values are committed and the next refresh may already start.
func (c *Coordinator) Refresh(ctx context.Context) (*entity.Store, error) {
	c.mu.Lock()
	store, err := c.refresh(ctx)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	c.notify(ctx, store)
	return store, nil
}

func (c *Coordinator) refresh(ctx context.Context) (*entity.Store, error) {
	if !c.ready.Load() {
		return nil, ErrNotReady
	}

	start := time.Now()
	store := c.store.Load()
	values, err := c.refreshWithRetry(ctx, store)
	if c.observer != nil {
		c.observer.ObserveRefresh(time.Since(start), err)
	}
	if err != nil {
		c.setLastError(err)
		c.logger.Error("Refresh failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	n := store.Apply(values)
	c.stateMu.Lock()
	c.lastErr = nil
	c.lastSuccess = time.Now()
	c.stateMu.Unlock()
	c.logger.Debug("Refresh complete", "updated", n, "duration", time.Since(start))
	return store, nil
}

func (c *Coordinator) refreshWithRetry(ctx context.Context, store *entity.Store) (map[string]any, error) {
	values, err := c.fetch(ctx, store)
	if err == nil {
		return values, nil
	}
	if !errors.Is(err, api.ErrAuthentication) {
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	c.logger.Info("Session refused, re-authenticating", "error", err)
	if _, err := c.vendor.Login(ctx); err != nil {
		return nil, classify(fmt.Errorf("login: %w", err))
	}

	values, err = c.fetch(ctx, store)
	if err != nil {
		return nil, classify(err)
	}
	return values, nil
}

func classify(err error) error {
	if errors.Is(err, api.ErrAuthentication) {
		return fmt.Errorf("%w: %w", ErrReauthRequired, err)
	}
	return fmt.Errorf("%w: %w", ErrUpdateFailed, err)
}

// notify hands the populated records to every listener. While a previous
// notification is still running the cycle is skipped; listeners receive the
// full record set each time, so the next cycle catches them up.
func (c *Coordinator) notify(ctx context.Context, store *entity.Store) {
	if len(c.listeners) == 0 {
		return
	}
	if !c.notifyMu.TryLock() {
		c.logger.Warn("Refresh listeners still busy, skipping notification")
		return
	}
	defer c.notifyMu.Unlock()

	records := append(store.Records(entity.KindSensor), store.Records(entity.KindBinarySensor)...)
	for _, l := range c.listeners {
		if err := l.OnRefresh(ctx, records); err != nil {
			c.logger.Warn("Refresh listener failed", "listener", fmt.Sprintf("%T", l), "error", err)
		}
	}
}

// Sensors lists populated sensors. Each iteration reads a fresh snapshot.
func (c *Coordinator) Sensors() iter.Seq[entity.Triple] {
	return c.triples(entity.KindSensor)
}

// BinarySensors lists populated binary sensors.
func (c *Coordinator) BinarySensors() iter.Seq[entity.Triple] {
	return c.triples(entity.KindBinarySensor)
}

func (c *Coordinator) triples(kind entity.Kind) iter.Seq[entity.Triple] {
	return func(yield func(entity.Triple) bool) {
		for _, t := range c.store.Load().Triples(kind) {
			if !yield(t) {
				return
			}
		}
	}
}

// Records returns the consumer records of kind.
func (c *Coordinator) Records(kind entity.Kind) []entity.Record {
	return c.store.Load().Records(kind)
}

// Store returns the current entity store.
func (c *Coordinator) Store() *entity.Store {
	return c.store.Load()
}

// Ready reports whether Setup has succeeded.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// LastError returns the error of the last setup or refresh, nil after a
// success.
func (c *Coordinator) LastError() error {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.lastErr
}

// LastSuccess returns the time of the last successful refresh.
func (c *Coordinator) LastSuccess() time.Time {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.lastSuccess
}

func (c *Coordinator) setLastError(err error) {
	c.stateMu.Lock()
	c.lastErr = err
	c.stateMu.Unlock()
}
