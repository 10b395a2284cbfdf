// Package console performs the operator's resource intents against the
// Kestrel backend: listing, creating and deleting indicators, feeds and API
// keys, and changing feed access tiers. Every outcome is reported through one
// Notifier; collections are replaced wholesale on each list and emptied on
// failure.
package console

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pigeonsec/kestrel-admin/pkg/client"
	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

// Backend is the REST surface the orchestrator drives. *client.Client
// satisfies it.
type Backend interface {
	ListIndicators(ctx context.Context, feed string) (*client.IndicatorList, error)
	CreateIndicator(ctx context.Context, req client.CreateIndicatorRequest) error
	DeleteIndicator(ctx context.Context, value, feed string) error
	ListFeeds(ctx context.Context) ([]domain.Feed, error)
	SetFeedAccessLevel(ctx context.Context, name string, level domain.AccessLevel) error
	ListAPIKeys(ctx context.Context) ([]domain.APIKey, error)
	CreateAPIKey(ctx context.Context, name string, role domain.Role) (*domain.APIKey, error)
	DeleteAPIKey(ctx context.Context, id string) error
}

// Session is the part of the session manager the orchestrator consults.
// *session.Manager satisfies it.
type Session interface {
	Credential() (string, bool)
	Epoch() uint64
	Expire(epoch uint64, cause error) bool
}

// Kind names one of the cached resource collections.
type Kind int

const (
	KindIndicators Kind = iota
	KindFeeds
	KindAPIKeys
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindIndicators:
		return "indicators"
	case KindFeeds:
		return "feeds"
	case KindAPIKeys:
		return "api keys"
	}
	return "unknown"
}

// Orchestrator is safe for concurrent use.
type Orchestrator struct {
	backend  Backend
	sess     Session
	notifier Notifier
	log      zerolog.Logger

	mu         sync.Mutex
	gen        [kindCount]uint64
	indicators []domain.Indicator
	feeds      []domain.Feed
	keys       []domain.APIKey
	feedFilter string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithNotifier sets where operation outcomes are reported.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// New returns an orchestrator with empty caches.
func New(backend Backend, sess Session, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:    backend,
		sess:       sess,
		notifier:   discard{},
		log:        zerolog.Nop(),
		indicators: []domain.Indicator{},
		feeds:      []domain.Feed{},
		keys:       []domain.APIKey{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Indicators returns the last published indicator list.
func (o *Orchestrator) Indicators() []domain.Indicator {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.indicators)
}

// Feeds returns the last published feed list.
func (o *Orchestrator) Feeds() []domain.Feed {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.feeds)
}

// APIKeys returns the last published API key list.
func (o *Orchestrator) APIKeys() []domain.APIKey {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.keys)
}

// SetIndicatorFeedFilter restricts subsequent indicator listings to one feed.
// An empty name lists every feed.
func (o *Orchestrator) SetIndicatorFeedFilter(feed string) {
	o.mu.Lock()
	o.feedFilter = feed
	o.mu.Unlock()
}

// IndicatorFeedFilter returns the active indicator feed filter.
func (o *Orchestrator) IndicatorFeedFilter() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.feedFilter
}

// Release discards any list call for kind still in flight. Views call it
// when they stop showing the collection.
func (o *Orchestrator) Release(kind Kind) {
	o.mu.Lock()
	o.gen[kind]++
	o.mu.Unlock()
}

// ticket identifies one list call: the generation it was issued under for
// its kind and the credential epoch it was dispatched with.
type ticket struct {
	kind  Kind
	op    string
	gen   uint64
	epoch uint64
}

func (o *Orchestrator) begin(kind Kind, op string) ticket {
	epoch := o.sess.Epoch()
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen[kind]++
	return ticket{kind: kind, op: op, gen: o.gen[kind], epoch: epoch}
}

// settle reports whether t may still touch the cache. A result from a
// replaced credential empties the cache for its kind. Callers hold o.mu.
func (o *Orchestrator) settle(t ticket) bool {
	if t.gen != o.gen[t.kind] {
		return false
	}
	if t.epoch != o.sess.Epoch() {
		o.clearLocked(t.kind)
		return false
	}
	return true
}

func (o *Orchestrator) publish(t ticket, apply func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.settle(t) {
		o.log.Debug().Str("op", t.op).Msg("dropping stale result")
		return ErrStale
	}
	apply()
	return nil
}

// listFailed empties the kind's cache and reports f, unless the call is stale.
// An auth failure ends the credential it was sent with even when a newer
// list of the same kind has replaced the call.
func (o *Orchestrator) listFailed(t ticket, f *Failure, sev Severity) error {
	if f.Kind == FailureAuth {
		if !o.expire(t.epoch, f) {
			return ErrStale
		}
		o.report(f, sev)
		return f
	}

	o.mu.Lock()
	if !o.settle(t) {
		o.mu.Unlock()
		return ErrStale
	}
	o.clearLocked(t.kind)
	o.mu.Unlock()

	o.report(f, sev)
	return f
}

func (o *Orchestrator) clearLocked(kind Kind) {
	switch kind {
	case KindIndicators:
		o.indicators = []domain.Indicator{}
	case KindFeeds:
		o.feeds = []domain.Feed{}
	case KindAPIKeys:
		o.keys = []domain.APIKey{}
	}
}

// expire hands an auth failure to the session and drops every cache along
// with any list still in flight. It reports whether the session ended.
func (o *Orchestrator) expire(epoch uint64, f *Failure) bool {
	ended := o.sess.Expire(epoch, f)
	o.Reset()
	return ended
}

// Reset empties every cache and discards every list call in flight. The
// console calls it on logout.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	for k := Kind(0); k < kindCount; k++ {
		o.gen[k]++
		o.clearLocked(k)
	}
	o.mu.Unlock()
}

// signedOut is the local auth failure for a call attempted without a credential.
func (o *Orchestrator) signedOut(epoch uint64, op string) *Failure {
	f := &Failure{Kind: FailureAuth, Op: op, Message: msgSignedOut}
	o.expire(epoch, f)
	o.report(f, SeverityError)
	return f
}

// mutate runs one create, update or delete call. A result that comes back
// under a different credential than it was sent with is dropped unreported.
func (o *Orchestrator) mutate(ctx context.Context, op, generic string, call func(context.Context) error) error {
	epoch := o.sess.Epoch()
	if _, ok := o.sess.Credential(); !ok {
		return o.signedOut(epoch, op)
	}
	err := call(ctx)
	if epoch != o.sess.Epoch() {
		o.log.Debug().Str("op", op).Msg("session changed while in flight")
		return ErrStale
	}
	if err != nil {
		f := classify(op, generic, err)
		if f.Kind == FailureAuth {
			o.expire(epoch, f)
		}
		o.report(f, SeverityError)
		return f
	}
	return nil
}

// reject reports a local failure and returns it.
func (o *Orchestrator) reject(f *Failure) error {
	o.report(f, SeverityError)
	return f
}

func (o *Orchestrator) report(f *Failure, sev Severity) {
	ev := o.log.Warn()
	if sev == SeverityInfo {
		ev = o.log.Info()
	}
	var httpErr *client.HTTPError
	if errors.As(f.Err, &httpErr) {
		ev = ev.Int("status", httpErr.StatusCode)
	}
	ev.Str("op", f.Op).Stringer("failure", f.Kind).Err(f.Err).Msg(f.Message)
	o.notifier.Notify(newNotice(sev, f.Message))
}

func (o *Orchestrator) succeed(msg string) {
	o.notifier.Notify(newNotice(SeveritySuccess, msg))
}
