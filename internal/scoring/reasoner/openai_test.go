package reasoner

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadpulse_backend/internal/scoring/engine"
	"leadpulse_backend/platform/ai/chatapi"
)

type fakeChat struct {
	calls   int
	results []fakeResult
}

type fakeResult struct {
	content string
	err     error
}

func (f *fakeChat) Complete(ctx context.Context, req chatapi.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	r := f.results[i]
	return r.content, r.err
}

func testPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, Timeout: time.Second, Backoff: time.Millisecond}
}

func TestOpenAISucceedsFirstAttempt(t *testing.T) {
	chat := &fakeChat{results: []fakeResult{{content: `{"score": 70}`}}}
	adapter := &OpenAI{client: chat, policy: testPolicy(3)}

	raw, err := adapter.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if string(raw) != `{"score": 70}` {
		t.Errorf("raw = %q", raw)
	}
	if chat.calls != 1 {
		t.Errorf("calls = %d, want 1", chat.calls)
	}
}

func TestOpenAIRetriesThenSucceeds(t *testing.T) {
	chat := &fakeChat{results: []fakeResult{
		{err: errors.New("status 500")},
		{err: errors.New("status 503")},
		{content: `{"ok": true}`},
	}}
	adapter := &OpenAI{client: chat, policy: testPolicy(3)}

	raw, err := adapter.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if string(raw) != `{"ok": true}` {
		t.Errorf("raw = %q", raw)
	}
	if chat.calls != 3 {
		t.Errorf("calls = %d, want 3", chat.calls)
	}
}

func TestOpenAIExhaustedRetriesWrapsUnavailable(t *testing.T) {
	chat := &fakeChat{results: []fakeResult{{err: errors.New("status 502")}}}
	adapter := &OpenAI{client: chat, policy: testPolicy(3)}

	_, err := adapter.Complete(context.Background(), "system", "user")
	if !errors.Is(err, engine.ErrUnavailable) {
		t.Fatalf("err = %v, want engine.ErrUnavailable", err)
	}
	if chat.calls != 3 {
		t.Errorf("calls = %d, want 3", chat.calls)
	}
}

func TestOpenAIDeadlineWrapsTimeout(t *testing.T) {
	chat := &fakeChat{results: []fakeResult{{err: context.DeadlineExceeded}}}
	adapter := &OpenAI{client: chat, policy: testPolicy(2)}

	_, err := adapter.Complete(context.Background(), "system", "user")
	if !errors.Is(err, engine.ErrTimeout) {
		t.Fatalf("err = %v, want engine.ErrTimeout", err)
	}
}

func TestOpenAIStopsOnCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	chat := &fakeChat{results: []fakeResult{{content: `{}`}}}
	adapter := &OpenAI{client: chat, policy: testPolicy(3)}

	_, err := adapter.Complete(ctx, "system", "user")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if chat.calls > 1 {
		t.Errorf("calls = %d, want at most 1 after cancellation", chat.calls)
	}
}
