// Package clinicsync keeps the device replica of the clinic snapshot in sync
// with the remote record of the signed-in account.
//
// Every edit goes through the mutation funnel (Apply, ApplyAndWait): the
// transform result is stamped, saved locally before the call returns, and
// handed to the push path, which writes to the remote with bounded
// exponential backoff. Pull loads the remote record, merges it with the local
// snapshot and stores the result.
package clinicsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/harentsoaR/dentist-sync/internal/models"
)

var (
	// ErrOffline means the push or pull preconditions were not met: no
	// connectivity or no signed-in account.
	ErrOffline = errors.New("offline or signed out")
	// ErrPushFailed wraps the last remote error after all attempts failed.
	ErrPushFailed = errors.New("push failed")
	// ErrPullFailed wraps a remote load error.
	ErrPullFailed = errors.New("pull failed")
	// ErrClosed is returned by pushes offered after Close.
	ErrClosed = errors.New("orchestrator closed")
)

// Defaults for Options.
const (
	DefaultMaxAttempts = 5
	DefaultBaseBackoff = time.Second
)

// LocalStore is the device replica.
type LocalStore interface {
	Save(ctx context.Context, snap *models.Snapshot) error
	Load(ctx context.Context) (*models.Snapshot, error)
	DevicePrefs(ctx context.Context) (models.DevicePrefs, error)
}

// RemoteStore is the shared record of the signed-in account.
type RemoteStore interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap *models.Snapshot) error
}

// Authenticator reports whether an account is signed in.
type Authenticator interface {
	Authenticated(ctx context.Context) bool
}

// Options tune an Orchestrator. Zero values select the defaults.
type Options struct {
	MaxAttempts  int
	BaseBackoff  time.Duration
	PullInterval time.Duration // 0 disables periodic pulls
	Clock        Clock
	Logger       *log.Logger
	Metrics      *Metrics
}

// Orchestrator owns the in-memory snapshot and the sync status.
type Orchestrator struct {
	local  LocalStore
	remote RemoteStore
	auth   Authenticator
	conn   Connectivity

	maxAttempts  int
	baseBackoff  time.Duration
	pullInterval time.Duration
	clock        Clock
	logger       *log.Logger
	metrics      *Metrics

	// mu serializes transforms and merges and guards snap.
	mu   sync.Mutex
	snap *models.Snapshot

	statusMu sync.Mutex
	status   StatusEvent
	subs     map[chan StatusEvent]struct{}

	pushMu  sync.Mutex
	pushing bool
	pending *pushRequest

	pulls singleflight.Group

	// bg outlives callers: remote writes and backoff waits run on it.
	bg     context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	closed sync.Once
}

// New returns an Orchestrator. Call Start to load the local snapshot.
func New(local LocalStore, remote RemoteStore, auth Authenticator, conn Connectivity, opts Options) *Orchestrator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = DefaultBaseBackoff
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if conn == nil {
		conn = AlwaysOnline{}
	}
	bg, stop := context.WithCancel(context.Background())
	o := &Orchestrator{
		local:        local,
		remote:       remote,
		auth:         auth,
		conn:         conn,
		maxAttempts:  opts.MaxAttempts,
		baseBackoff:  opts.BaseBackoff,
		pullInterval: opts.PullInterval,
		clock:        opts.Clock,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		subs:         make(map[chan StatusEvent]struct{}),
		bg:           bg,
		stop:         stop,
	}
	o.status = StatusEvent{Status: StatusIdle, At: o.clock.Now()}
	o.metrics.setStatus(StatusIdle)
	return o
}

// Snapshot returns the current snapshot. It may be nil before the clinic is
// set up. Callers must treat it as read-only.
func (o *Orchestrator) Snapshot() *models.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// Start loads the local snapshot, stamps the device preferences on it and
// runs a forced pull. With a pull interval it then keeps pulling in the
// background until ctx is done or Close is called.
func (o *Orchestrator) Start(ctx context.Context) error {
	snap, err := o.local.Load(ctx)
	if err != nil {
		return fmt.Errorf("load local snapshot: %w", err)
	}
	prefs, err := o.local.DevicePrefs(ctx)
	if err != nil {
		o.logger.Printf("WARNING: could not read device preferences: %v", err)
	}

	o.mu.Lock()
	o.snap = prefs.ApplyTo(snap)
	o.mu.Unlock()
	if snap != nil {
		o.logger.Printf("Loaded local snapshot of %q (lastUpdated=%d)", snap.ClinicName, snap.LastUpdated)
	}

	if err := o.Pull(ctx, true); err != nil {
		o.logger.Printf("Initial pull failed: %v", err)
	}

	if o.pullInterval > 0 {
		o.wg.Add(1)
		go o.pullLoop(ctx)
	}
	return nil
}

func (o *Orchestrator) pullLoop(ctx context.Context) {
	defer o.wg.Done()
	ticker := time.NewTicker(o.pullInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-o.bg.Done():
			return
		case <-ticker.C:
			if err := o.Pull(ctx, false); err != nil {
				o.logger.Printf("Periodic pull failed: %v", err)
			}
		}
	}
}

// Close stops periodic pulls and pending backoff waits and waits for
// background work to finish. A remote write already in progress completes.
func (o *Orchestrator) Close() error {
	o.closed.Do(func() {
		o.pushMu.Lock()
		o.stop()
		o.pushMu.Unlock()
		o.wg.Wait()
	})
	return nil
}

// ready reports whether remote calls may be made.
func (o *Orchestrator) ready(ctx context.Context) bool {
	return o.conn.Online(ctx) && o.auth.Authenticated(ctx)
}
