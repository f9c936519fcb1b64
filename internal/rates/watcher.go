package rates

import (
	"context"
	"sync"
	"time"

	"shipgate/internal/model"
)

// DefaultDebounce is the minimum quiet period between an input change and
// the rate request it triggers.
const DefaultDebounce = 500 * time.Millisecond

// Watcher turns input changes into debounced rate requests. Every Update
// resets the timer, so a user still typing never produces a call; once the
// inputs settle and are complete, exactly one request fires. Stale results
// are discarded: only the response to the most recent trigger is delivered.
type Watcher struct {
	resolver *Resolver
	delay    time.Duration

	onClear  func()
	onResult func([]model.RateQuote, error)

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

func NewWatcher(resolver *Resolver, delay time.Duration, onClear func(), onResult func([]model.RateQuote, error)) *Watcher {
	if delay < DefaultDebounce {
		delay = DefaultDebounce
	}
	return &Watcher{
		resolver: resolver,
		delay:    delay,
		onClear:  onClear,
		onResult: onResult,
	}
}

// Update notes a change to any constituent input. Incomplete inputs cancel
// any pending request; complete inputs (re)arm the debounce timer.
func (w *Watcher) Update(ctx context.Context, in Input) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if !in.Ready() {
		return
	}

	seq := w.seq
	w.timer = time.AfterFunc(w.delay, func() {
		w.fire(ctx, in, seq)
	})
}

// Stop cancels any pending request. Call on teardown.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.seq++
}

func (w *Watcher) stale(seq uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return seq != w.seq
}

func (w *Watcher) fire(ctx context.Context, in Input, seq uint64) {
	if w.stale(seq) {
		return
	}

	// Stale quotes must never be shown against new inputs.
	if w.onClear != nil {
		w.onClear()
	}

	quotes, err := w.resolver.Resolve(ctx, in)
	if w.stale(seq) {
		return
	}
	w.onResult(quotes, err)
}
