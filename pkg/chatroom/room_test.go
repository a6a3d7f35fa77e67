package chatroom

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/portal-api/internal/models"
	appErrors "github.com/campuslink/portal-api/pkg/errors"
)

type fakeFetcher struct {
	mu           sync.Mutex
	group        models.ChatGroup
	groupErr     error
	messageCalls int
	messagesFn   func(call int) ([]models.Message, error)
	sendCalls    int
	sendFn       func(content string) (*models.Message, error)
}

func (f *fakeFetcher) ChatGroup(ctx context.Context, id string) (*models.ChatGroup, error) {
	if f.groupErr != nil {
		return nil, f.groupErr
	}
	group := f.group
	return &group, nil
}

func (f *fakeFetcher) Messages(ctx context.Context, chatGroupID string) ([]models.Message, error) {
	f.mu.Lock()
	f.messageCalls++
	call := f.messageCalls
	fn := f.messagesFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(call)
}

func (f *fakeFetcher) SendMessage(ctx context.Context, chatGroupID, senderID, content string) (*models.Message, error) {
	f.mu.Lock()
	f.sendCalls++
	fn := f.sendFn
	f.mu.Unlock()
	if fn == nil {
		return &models.Message{ID: "sent", Content: content, SenderID: senderID, ChatGroupID: chatGroupID}, nil
	}
	return fn(content)
}

func (f *fakeFetcher) totalMessageCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messageCalls
}

func (f *fakeFetcher) totalSendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendCalls
}

func messageIDs(messages []models.Message) []string {
	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestOpenGroupNotFoundIsTerminal(t *testing.T) {
	fetcher := &fakeFetcher{groupErr: appErrors.Clone(appErrors.ErrNotFound, "chat group not found")}

	room, err := Open(context.Background(), fetcher, "missing", "stu-1", Options{})
	require.Error(t, err)
	assert.Nil(t, room)
	assert.True(t, appErrors.IsNotFound(err))
	// Open never retries a missing group.
	assert.Equal(t, 0, fetcher.totalMessageCalls())
}

func TestPollReplacesListWholesale(t *testing.T) {
	old := []models.Message{{ID: "m1", Content: "hi"}}
	updated := []models.Message{{ID: "m1", Content: "hi"}, {ID: "m2", Content: "hello"}}
	fetcher := &fakeFetcher{
		group: models.ChatGroup{ID: "g1", Name: "Networks"},
		messagesFn: func(call int) ([]models.Message, error) {
			if call == 1 {
				return old, nil
			}
			return updated, nil
		},
	}

	room, err := Open(context.Background(), fetcher, "g1", "stu-1", Options{PollInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	defer room.Close()

	assert.Equal(t, []string{"m1"}, messageIDs(room.Messages()))
	assert.Eventually(t, func() bool {
		return len(room.Messages()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"m1", "m2"}, messageIDs(room.Messages()))
}

func TestPollingContinuesAfterFetchFailure(t *testing.T) {
	var errCount int
	var errMu sync.Mutex
	fetcher := &fakeFetcher{
		group: models.ChatGroup{ID: "g1"},
		messagesFn: func(call int) ([]models.Message, error) {
			if call <= 2 {
				return nil, appErrors.Clone(appErrors.ErrUnavailable, "backend down")
			}
			return []models.Message{{ID: "m1"}}, nil
		},
	}

	room, err := Open(context.Background(), fetcher, "g1", "stu-1", Options{
		PollInterval: 10 * time.Millisecond,
		OnError: func(error) {
			errMu.Lock()
			errCount++
			errMu.Unlock()
		},
	})
	require.NoError(t, err)
	defer room.Close()

	assert.Eventually(t, func() bool {
		return len(room.Messages()) == 1
	}, time.Second, 5*time.Millisecond)

	errMu.Lock()
	defer errMu.Unlock()
	assert.GreaterOrEqual(t, errCount, 1)
}

func TestCloseStopsStateMutation(t *testing.T) {
	initial := []models.Message{{ID: "m1"}}
	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := &fakeFetcher{
		group: models.ChatGroup{ID: "g1"},
		messagesFn: func(call int) ([]models.Message, error) {
			if call == 1 {
				return initial, nil
			}
			close(started)
			<-release
			return []models.Message{{ID: "m1"}, {ID: "stale"}}, nil
		},
	}

	room, err := Open(context.Background(), fetcher, "g1", "stu-1", Options{PollInterval: time.Hour})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		room.Refresh(context.Background())
		close(done)
	}()
	<-started

	// The fetch is in flight when the room closes; its completion must be
	// discarded.
	room.Close()
	close(release)
	<-done

	assert.Equal(t, []string{"m1"}, messageIDs(room.Messages()))
}

func TestStaleCompletionDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	earlier := []models.Message{{ID: "old"}}
	later := []models.Message{{ID: "old"}, {ID: "new"}}
	fetcher := &fakeFetcher{
		group: models.ChatGroup{ID: "g1"},
		messagesFn: func(call int) ([]models.Message, error) {
			switch call {
			case 1:
				return nil, nil
			case 2:
				close(started)
				<-release
				return earlier, nil
			default:
				return later, nil
			}
		},
	}

	room, err := Open(context.Background(), fetcher, "g1", "stu-1", Options{PollInterval: time.Hour})
	require.NoError(t, err)
	defer room.Close()

	// Start a fetch that will complete late.
	done := make(chan struct{})
	go func() {
		room.Refresh(context.Background())
		close(done)
	}()
	<-started

	// A logically newer fetch starts and completes while the first is
	// still in flight.
	room.Refresh(context.Background())
	assert.Equal(t, []string{"old", "new"}, messageIDs(room.Messages()))

	// The earlier-started fetch completes last; the newer result stays.
	close(release)
	<-done
	assert.Equal(t, []string{"old", "new"}, messageIDs(room.Messages()))
}

func TestSendRejectedWhileInFlight(t *testing.T) {
	sendStarted := make(chan struct{})
	sendRelease := make(chan struct{})
	fetcher := &fakeFetcher{
		group: models.ChatGroup{ID: "g1"},
		sendFn: func(content string) (*models.Message, error) {
			close(sendStarted)
			<-sendRelease
			return &models.Message{ID: "sent", Content: content}, nil
		},
	}

	room, err := Open(context.Background(), fetcher, "g1", "stu-1", Options{PollInterval: time.Hour})
	require.NoError(t, err)
	defer room.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- room.Send(context.Background(), "first")
	}()
	<-sendStarted

	// Input is suspended while a send is outstanding, not queued.
	err = room.Send(context.Background(), "second")
	require.Error(t, err)
	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrConflict.Code, typed.Code)

	close(sendRelease)
	require.NoError(t, <-errCh)
	assert.Equal(t, 1, fetcher.totalSendCalls())
}

func TestSendFailureIsRecoverable(t *testing.T) {
	var fail bool
	fetcher := &fakeFetcher{
		group: models.ChatGroup{ID: "g1"},
		sendFn: func(content string) (*models.Message, error) {
			if fail {
				return nil, appErrors.Clone(appErrors.ErrUnavailable, "send failed")
			}
			return &models.Message{ID: "sent", Content: content}, nil
		},
	}

	room, err := Open(context.Background(), fetcher, "g1", "stu-1", Options{PollInterval: time.Hour})
	require.NoError(t, err)
	defer room.Close()

	fail = true
	err = room.Send(context.Background(), "will fail")
	require.Error(t, err)
	assert.True(t, appErrors.IsTransient(err))

	// Nothing retries automatically; the user resubmits.
	fail = false
	require.NoError(t, room.Send(context.Background(), "will fail"))
	assert.Equal(t, 2, fetcher.totalSendCalls())
}

func TestSendSuccessRefreshesImmediately(t *testing.T) {
	var mu sync.Mutex
	messages := []models.Message{}
	fetcher := &fakeFetcher{group: models.ChatGroup{ID: "g1"}}
	fetcher.messagesFn = func(call int) ([]models.Message, error) {
		mu.Lock()
		defer mu.Unlock()
		snapshot := make([]models.Message, len(messages))
		copy(snapshot, messages)
		return snapshot, nil
	}
	fetcher.sendFn = func(content string) (*models.Message, error) {
		msg := models.Message{ID: "m-new", Content: content, SenderID: "stu-1", ChatGroupID: "g1"}
		mu.Lock()
		messages = append(messages, msg)
		mu.Unlock()
		return &msg, nil
	}

	room, err := Open(context.Background(), fetcher, "g1", "stu-1", Options{PollInterval: time.Hour})
	require.NoError(t, err)
	defer room.Close()

	require.NoError(t, room.Send(context.Background(), "round trip"))

	// The sent message appears in the next successful fetch with identical
	// content and sender, without waiting for a tick.
	held := room.Messages()
	require.Len(t, held, 1)
	assert.Equal(t, "round trip", held[0].Content)
	assert.Equal(t, "stu-1", held[0].SenderID)
}

func TestEmptyContentRejectedBeforeNetwork(t *testing.T) {
	fetcher := &fakeFetcher{group: models.ChatGroup{ID: "g1"}}

	room, err := Open(context.Background(), fetcher, "g1", "stu-1", Options{PollInterval: time.Hour})
	require.NoError(t, err)
	defer room.Close()

	err = room.Send(context.Background(), "   ")
	require.Error(t, err)
	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrValidation.Code, typed.Code)
	assert.Equal(t, 0, fetcher.totalSendCalls())
}
