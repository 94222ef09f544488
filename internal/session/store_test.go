package session

import (
	"sync"
	"testing"
	"time"

	"digistore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSetClear(t *testing.T) {
	store := NewStore()

	_, ok := store.Get(1)
	assert.False(t, ok)

	store.Set(1, domain.Session{
		Step:  domain.StepAwaitQuantity,
		Draft: domain.Draft{Kind: domain.KindStars, Recipient: "alice"},
	})

	sess, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, domain.StepAwaitQuantity, sess.Step)
	assert.Equal(t, "alice", sess.Draft.Recipient)
	assert.False(t, sess.UpdatedAt.IsZero())

	_, ok = store.Get(2)
	assert.False(t, ok, "sessions are keyed per user")

	store.Clear(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Set(1, domain.Session{Step: domain.StepAwaitRecipient, Draft: domain.Draft{Kind: domain.KindStars}})

	sess, _ := store.Get(1)
	sess.Draft.Recipient = "mallory"

	stored, _ := store.Get(1)
	assert.Empty(t, stored.Draft.Recipient)
}

func TestStore_Sweep(t *testing.T) {
	store := NewStore()
	base := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base }
	store.Set(1, domain.Session{Step: domain.StepAwaitAmount})

	store.now = func() time.Time { return base.Add(20 * time.Minute) }
	store.Set(2, domain.Session{Step: domain.StepAwaitAmount})

	store.now = func() time.Time { return base.Add(35 * time.Minute) }
	removed := store.Sweep(30 * time.Minute)

	assert.Equal(t, 1, removed)
	_, ok := store.Get(1)
	assert.False(t, ok)
	_, ok = store.Get(2)
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestStore_LockSerializesSameUser(t *testing.T) {
	store := NewStore()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := store.Lock(42)
			defer unlock()

			sess, _ := store.Get(42)
			sess.Draft.Quantity++
			store.Set(42, sess)
		}()
	}
	wg.Wait()

	sess, ok := store.Get(42)
	require.True(t, ok)
	assert.Equal(t, workers, sess.Draft.Quantity)
}

func TestStore_LockDoesNotBlockOtherUsers(t *testing.T) {
	store := NewStore()

	unlock := store.Lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		release := store.Lock(2)
		release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for user 2 blocked on user 1")
	}
}
