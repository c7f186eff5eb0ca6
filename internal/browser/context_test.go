package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey string

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled in time")
	}
}

func TestCombineContextCancelPrimary(t *testing.T) {
	ctx1, cancel1 := context.WithCancel(context.Background())
	combined, cancel := CombineContext(ctx1, context.Background())
	defer cancel()

	cancel1()
	waitDone(t, combined)
}

func TestCombineContextCancelSecondary(t *testing.T) {
	ctx2, cancel2 := context.WithCancel(context.Background())
	combined, cancel := CombineContext(context.Background(), ctx2)
	defer cancel()

	cancel2()
	waitDone(t, combined)
}

func TestCombineContextInheritsValues(t *testing.T) {
	ctx1 := context.WithValue(context.Background(), ctxKey("tab"), "primary")
	ctx2 := context.WithValue(context.Background(), ctxKey("op"), "secondary")

	combined, cancel := CombineContext(ctx1, ctx2)
	defer cancel()

	// Values come from the primary context only.
	assert.Equal(t, "primary", combined.Value(ctxKey("tab")))
	assert.Nil(t, combined.Value(ctxKey("op")))
}

func TestDetachIgnoresCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(
		context.WithValue(context.Background(), ctxKey("tab"), "kept"))
	cancel()

	detached := Detach(parent)
	require.NoError(t, detached.Err())
	assert.Nil(t, detached.Done())
	assert.Equal(t, "kept", detached.Value(ctxKey("tab")))

	_, hasDeadline := detached.Deadline()
	assert.False(t, hasDeadline)
}
