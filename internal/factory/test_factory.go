package factory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/typerace/internal/dependencies/mocks"
	"github.com/mcoot/typerace/internal/dependencies/random"
	"github.com/mcoot/typerace/internal/services/paragraph"
	"github.com/mcoot/typerace/internal/services/session"
	"github.com/mcoot/typerace/internal/storage/memory"
	"github.com/mcoot/typerace/internal/testutil"
	"github.com/mcoot/typerace/internal/web/ws"
)

// TestParagraph is the paragraph served by a TestApp until changed
const TestParagraph = "the quick brown fox jumps over the lazy dog"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	mu           sync.Mutex
	paragraph    string
	paragraphErr error
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Random values fall back to real randomness once the queue is empty so
// connection ids stay unique.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockRandom.Fallback = random.New()

	t := &TestApp{
		MockClock:  mockClock,
		MockRandom: mockRandom,
		paragraph:  TestParagraph,
	}

	provider := paragraph.ProviderFunc(func(context.Context) (string, error) {
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.paragraph, t.paragraphErr
	})

	t.App = newWithDependencies(store, mockClock, mockRandom, provider,
		session.DefaultConfig(), ws.DefaultConfig(), testutil.NopLogger())
	return t
}

// SetParagraph changes the paragraph served for later rounds
func (t *TestApp) SetParagraph(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paragraph = text
	t.paragraphErr = nil
}

// FailParagraphs makes paragraph fetches fail with err
func (t *TestApp) FailParagraphs(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paragraphErr = err
}
