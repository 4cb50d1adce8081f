package catalog

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// DefaultDebounce matches the storefront's search-as-you-type interval.
const DefaultDebounce = 300 * time.Millisecond

// Searcher is the remote search dependency of the typeahead.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) (Page, error)
}

// Result is one delivered typeahead outcome. Products is nil when the query
// was too short to search.
type Result struct {
	Query    string
	Products []Product
}

// typeahead fetch outcome, tagged with the generation that produced it.
type fetched struct {
	gen      uint64
	query    string
	products []Product
}

// Typeahead debounces search-as-you-type input against the remote catalog.
// Input events reset the debounce timer; once input has been stable for the
// configured interval, a search fires. Every fired search carries a
// monotonically increasing generation, and a response whose generation is no
// longer current is discarded, so a superseded search can never overwrite a
// newer one's results.
//
// The caller must drain Results and must not call Input after Close.
type Typeahead struct {
	search   Searcher
	delay    time.Duration
	limit    int
	minRunes int
	lg       *zap.Logger

	input   chan string
	fetched chan fetched
	results chan Result
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewTypeahead starts a typeahead loop over the given searcher. A delay or
// limit of zero falls back to the storefront defaults (300ms, 8 results).
func NewTypeahead(search Searcher, delay time.Duration, limit int, lg *zap.Logger) *Typeahead {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if limit <= 0 {
		limit = 8
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	t := &Typeahead{
		search:   search,
		delay:    delay,
		limit:    limit,
		minRunes: 2,
		lg:       lg,
		input:    make(chan string),
		fetched:  make(chan fetched),
		results:  make(chan Result),
		done:     make(chan struct{}),
	}
	t.wg.Add(1)
	go t.run()
	return t
}

// Input feeds one keystroke's worth of query text. It is a no-op after Close.
func (t *Typeahead) Input(query string) {
	select {
	case t.input <- query:
	case <-t.done:
	}
}

// Results delivers search outcomes, newest generation only.
func (t *Typeahead) Results() <-chan Result {
	return t.results
}

// Close stops the loop and waits for any in-flight search to finish.
func (t *Typeahead) Close() {
	t.once.Do(func() { close(t.done) })
	t.wg.Wait()
}

func (t *Typeahead) run() {
	defer t.wg.Done()

	timer := time.NewTimer(t.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var (
		pending string
		gen     uint64
	)
	for {
		select {
		case <-t.done:
			return

		case q := <-t.input:
			pending = q
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(t.delay)

		case <-timer.C:
			gen++
			if utf8.RuneCountInString(pending) < t.minRunes {
				// Too short to search: clear any previous suggestions.
				t.deliver(Result{Query: pending})
				continue
			}
			t.fire(gen, pending)

		case f := <-t.fetched:
			if f.gen != gen {
				// Superseded while in flight.
				continue
			}
			t.deliver(Result{Query: f.query, Products: f.products})
		}
	}
}

// fire runs one remote search in its own goroutine so typing stays
// responsive while a slow search is in flight.
func (t *Typeahead) fire(gen uint64, query string) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		page, err := t.search.Search(ctx, query, t.limit)
		if err != nil {
			t.lg.Warn("Typeahead search failed", zap.String("query", query), zap.Error(err))
			page = Page{}
		}
		select {
		case t.fetched <- fetched{gen: gen, query: query, products: page.Products}:
		case <-t.done:
		}
	}()
}

func (t *Typeahead) deliver(r Result) {
	select {
	case t.results <- r:
	case <-t.done:
	}
}
