package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotMailbox_PutNeverBlocksAndKeepsLatest(t *testing.T) {
	m := newSnapshotMailbox()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, s := range []string{"one", "two", "three"} {
			m.put([]byte(s))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("put blocked without a reader")
	}

	select {
	case data := <-m.ch:
		assert.Equal(t, "three", string(data))
	default:
		t.Fatal("mailbox is empty")
	}
	assert.Empty(t, m.ch)
}
