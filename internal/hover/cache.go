// Package hover implements the per-word translation popups shown while a
// pointer rests on a word of the source text.
//
// Every rendered word instance owns one entry with a small state machine:
//
//	Idle --enter--> Loading --ok--> Loaded
//	                Loading --err--> Failed --enter--> Loading
//
// An entry that is Loading or Loaded ignores further pointer-enter events, so
// each instance has at most one request in flight and a successful
// translation is never fetched twice. Failures are logged and swallowed.
//
// Only Idle and Failed entries live in the size-bounded store. Loading and
// Loaded entries are pinned outside it, so eviction never restarts a lookup.
package hover

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"horse.fit/shloka/internal/language"
)

const DefaultMaxEntries = 1024

// WordTranslator resolves one word. Implementations may block; the cache
// always calls them from their own goroutine.
type WordTranslator interface {
	TranslateWord(ctx context.Context, word, sourceLang, targetLang string) (string, error)
}

type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Options struct {
	SourceLang string
	TargetLang string

	// RequestTimeout bounds each lookup; zero leaves it unbounded.
	RequestTimeout time.Duration
	// MaxEntries bounds how many Idle or Failed instances are remembered.
	// Evicted instances come back as Idle.
	MaxEntries int
	// CancelOnLeave aborts an in-flight lookup when the pointer leaves.
	CancelOnLeave bool

	Logger zerolog.Logger
}

// Entry is a snapshot of one word instance.
type Entry struct {
	Word        string
	State       State
	Translation string
	Hovered     bool
}

// View is what the front-end should draw next to the word.
type View struct {
	Visible bool
	Loading bool
	Text    string
}

type entry struct {
	word        string
	state       State
	translation string
	hovered     bool
	cancel      context.CancelFunc
	// generation changes whenever a lookup is started or abandoned, so a
	// late result from an abandoned lookup is ignored.
	generation uint64
}

// Cache holds the entries of one rendered text in one target language.
type Cache struct {
	mu         sync.Mutex
	entries    *lru.Cache[InstanceID, *entry]
	pinned     map[InstanceID]*entry // Loading and Loaded entries
	closed     bool
	translator WordTranslator
	opts       Options
	logger     zerolog.Logger

	ctx      context.Context
	stop     context.CancelFunc
	inflight sync.WaitGroup
}

func New(translator WordTranslator, opts Options) (*Cache, error) {
	if translator == nil {
		return nil, fmt.Errorf("word translator is nil")
	}
	if strings.TrimSpace(opts.TargetLang) == "" {
		return nil, fmt.Errorf("target language is required")
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	opts.SourceLang = language.SourceOrDefault(opts.SourceLang)

	entries, err := lru.New[InstanceID, *entry](opts.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("create hover entry store: %w", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	return &Cache{
		entries:    entries,
		pinned:     make(map[InstanceID]*entry),
		translator: translator,
		opts:       opts,
		logger: opts.Logger.With().
			Str("hover_session", uuid.NewString()).
			Str("target_lang", opts.TargetLang).
			Logger(),
		ctx:  ctx,
		stop: stop,
	}, nil
}

// Render registers the word instances of text and returns them in order.
// Instances already known (same word at the same position) keep their state.
func (c *Cache) Render(text string) []InstanceID {
	ids := Tokenize(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.entryLocked(id)
	}
	return ids
}

// PointerEnter shows the popup and starts a lookup when the instance is Idle
// or Failed. It reports whether a lookup was started.
func (c *Cache) PointerEnter(id InstanceID) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	e := c.entryLocked(id)
	e.hovered = true
	if e.state == Loading || e.state == Loaded {
		c.mu.Unlock()
		return false
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.opts.RequestTimeout > 0 {
		ctx, cancel = context.WithTimeout(c.ctx, c.opts.RequestTimeout)
	} else {
		ctx, cancel = context.WithCancel(c.ctx)
	}
	c.pinLocked(id, e)
	e.state = Loading
	e.cancel = cancel
	e.generation++
	generation := e.generation
	c.inflight.Add(1)
	c.mu.Unlock()

	go c.lookup(ctx, cancel, id, e, generation)
	return true
}

// PointerLeave hides the popup. The lookup keeps running unless the cache
// was built with CancelOnLeave.
func (c *Cache) PointerLeave(id InstanceID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.peekLocked(id)
	if !ok {
		return
	}
	e.hovered = false
	if !c.opts.CancelOnLeave || e.state != Loading {
		return
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.generation++
	e.state = Failed
	c.unpinLocked(id, e)
	c.logger.Debug().Str("word", e.word).Int("index", id.Index).Msg("hover lookup cancelled on leave")
}

// View describes the popup for id.
func (c *Cache) View(id InstanceID) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.peekLocked(id)
	if !ok {
		return View{}
	}
	switch e.state {
	case Loading:
		return View{Visible: e.hovered, Loading: true}
	case Loaded:
		return View{Visible: e.hovered, Text: e.translation}
	default:
		return View{}
	}
}

// Entry returns a snapshot of id.
func (c *Cache) Entry(id InstanceID) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.peekLocked(id)
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Word:        e.word,
		State:       e.state,
		Translation: e.translation,
		Hovered:     e.hovered,
	}, true
}

// Len reports how many instances are remembered.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len() + len(c.pinned)
}

// Wait blocks until every started lookup has settled.
func (c *Cache) Wait() {
	c.inflight.Wait()
}

// Close aborts outstanding lookups and waits for them to settle. Later
// pointer-enter events start nothing. Close may be called from any goroutine.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.stop()
	c.inflight.Wait()
}

func (c *Cache) entryLocked(id InstanceID) *entry {
	if e, ok := c.pinned[id]; ok {
		return e
	}
	if e, ok := c.entries.Get(id); ok {
		return e
	}
	e := &entry{word: id.Word, state: Idle}
	c.entries.Add(id, e)
	return e
}

func (c *Cache) peekLocked(id InstanceID) (*entry, bool) {
	if e, ok := c.pinned[id]; ok {
		return e, true
	}
	return c.entries.Peek(id)
}

func (c *Cache) pinLocked(id InstanceID, e *entry) {
	c.entries.Remove(id)
	c.pinned[id] = e
}

// unpinLocked returns a Failed entry to the bounded store.
func (c *Cache) unpinLocked(id InstanceID, e *entry) {
	if c.pinned[id] != e {
		return
	}
	delete(c.pinned, id)
	c.entries.Add(id, e)
}

func (c *Cache) lookup(ctx context.Context, cancel context.CancelFunc, id InstanceID, e *entry, generation uint64) {
	defer c.inflight.Done()
	defer cancel()

	translated, err := c.translate(ctx, id.Word)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e.generation != generation || e.state != Loading {
		return
	}
	e.cancel = nil

	translated = strings.TrimSpace(translated)
	if err == nil && translated == "" {
		err = fmt.Errorf("empty translation")
	}
	if err != nil {
		e.state = Failed
		c.unpinLocked(id, e)
		c.logger.Warn().Err(err).Str("word", id.Word).Int("index", id.Index).Msg("word translation error")
		return
	}
	e.state = Loaded
	e.translation = translated
}

// translate shields the cache from panicking translators.
func (c *Cache) translate(ctx context.Context, word string) (translated string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("word translator panicked: %v", r)
		}
	}()
	return c.translator.TranslateWord(ctx, word, c.opts.SourceLang, c.opts.TargetLang)
}
