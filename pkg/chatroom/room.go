// Package chatroom keeps a chat group's message list approximately fresh
// without a push channel. Each open room polls on a fixed interval and
// supports one in-flight send at a time with immediate local feedback.
package chatroom

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/campuslink/portal-api/internal/models"
	appErrors "github.com/campuslink/portal-api/pkg/errors"
)

// DefaultPollInterval is how often an open room refetches its messages.
const DefaultPollInterval = 5 * time.Second

// Fetcher supplies chat data for a room. Implementations must be safe for
// concurrent use; the portal HTTP client satisfies this interface.
type Fetcher interface {
	ChatGroup(ctx context.Context, id string) (*models.ChatGroup, error)
	Messages(ctx context.Context, chatGroupID string) ([]models.Message, error)
	SendMessage(ctx context.Context, chatGroupID, senderID, content string) (*models.Message, error)
}

// Options tunes room behaviour.
type Options struct {
	PollInterval time.Duration
	Logger       *zap.Logger
	// OnError is invoked for swallowed polling failures so a caller may
	// surface a transient indicator. Polling always continues.
	OnError func(error)
}

// Room is a single open chat room. Create with Open; the room polls until
// Close is called. All exported methods are safe for concurrent use.
type Room struct {
	groupID  string
	senderID string
	fetcher  Fetcher
	interval time.Duration
	logger   *zap.Logger
	onError  func(error)

	runCtx context.Context
	cancel context.CancelFunc
	seq    uint64

	mu          sync.Mutex
	group       models.ChatGroup
	messages    []models.Message
	lastApplied uint64
	sending     bool
	closed      bool
}

// Open fetches the chat group record once and starts the polling loop.
// A missing group is terminal: the room is not started and the NotFound
// error is returned as-is, never retried.
func Open(ctx context.Context, fetcher Fetcher, groupID, senderID string, opts Options) (*Room, error) {
	group, err := fetcher.ChatGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r := &Room{
		groupID:  groupID,
		senderID: senderID,
		fetcher:  fetcher,
		interval: opts.PollInterval,
		logger:   opts.Logger,
		onError:  opts.OnError,
		runCtx:   runCtx,
		cancel:   cancel,
		group:    *group,
	}

	// Initial load, then the steady loop takes over.
	r.fetchOnce(runCtx)
	go r.poll()

	return r, nil
}

// Group returns the chat group record fetched at open time.
func (r *Room) Group() models.ChatGroup {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.group
}

// Messages returns a copy of the held message list, in fetch order. The
// copy is taken under the room lock so a render never observes a
// half-replaced list.
func (r *Room) Messages() []models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([]models.Message, len(r.messages))
	copy(snapshot, r.messages)
	return snapshot
}

// Send transmits a composed message. While one send is in flight further
// sends are rejected, not queued. On failure the caller keeps the composed
// content and may resubmit; nothing retries automatically. On success the
// message list is refreshed immediately so the send appears without
// waiting for the next tick.
func (r *Room) Send(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "message content is required")
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return appErrors.Clone(appErrors.ErrConflict, "chat room is closed")
	}
	if r.sending {
		r.mu.Unlock()
		return appErrors.Clone(appErrors.ErrConflict, "a send is already in flight")
	}
	r.sending = true
	r.mu.Unlock()

	_, err := r.fetcher.SendMessage(ctx, r.groupID, r.senderID, content)

	r.mu.Lock()
	r.sending = false
	r.mu.Unlock()

	if err != nil {
		return err
	}

	r.fetchOnce(r.runCtx)
	return nil
}

// Refresh forces an immediate refetch outside the steady cadence.
func (r *Room) Refresh(ctx context.Context) {
	r.fetchOnce(ctx)
}

// Close stops the polling timer deterministically. Fetches already in
// flight are discarded on completion; no state mutation is observable
// after Close returns.
func (r *Room) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()
}

func (r *Room) poll() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.runCtx.Done():
			return
		case <-ticker.C:
			// Fetching synchronously means a slow round-trip simply
			// skips ticks instead of piling up concurrent requests.
			r.fetchOnce(r.runCtx)
		}
	}
}

// fetchOnce fetches the message list and replaces the held list wholesale.
// Every fetch carries a monotonically increasing sequence number; a
// completion that is not newer than the last applied one is discarded, so
// the later-started fetch wins regardless of arrival order.
func (r *Room) fetchOnce(ctx context.Context) {
	seq := atomic.AddUint64(&r.seq, 1)

	messages, err := r.fetcher.Messages(ctx, r.groupID)
	if err != nil {
		r.logger.Warn("message fetch failed",
			zap.String("chat_group_id", r.groupID),
			zap.Error(err),
		)
		if r.onError != nil {
			r.onError(err)
		}
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || seq <= r.lastApplied {
		return
	}
	r.messages = messages
	r.lastApplied = seq
}
