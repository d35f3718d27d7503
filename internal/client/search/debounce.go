// Package search provides debounced query input and listing filters.
package search

import (
	"sync"
	"time"
)

// DefaultDelay is the settle time before a typed query is applied
const DefaultDelay = 500 * time.Millisecond

// Debouncer emits a value only after it stopped changing for the delay.
// Each Set restarts the timer; only the latest value is emitted.
type Debouncer[T any] struct {
	timer   *time.Timer
	out     chan T
	value   T
	delay   time.Duration
	// gen растет при каждом Set; callback таймера с устаревшим gen игнорируется
	gen     uint64
	mu      sync.Mutex
	stopped bool
}

// NewDebouncer создает debouncer. delay <= 0 означает DefaultDelay.
func NewDebouncer[T any](delay time.Duration, initial T) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{
		delay: delay,
		value: initial,
		out:   make(chan T, 1),
	}
}

// Set schedules v to become the settled value after the delay
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		// Stop не отменяет callback, который уже ждет d.mu
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.settle(v, gen)
	})
}

func (d *Debouncer[T]) settle(v T, gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || gen != d.gen {
		return
	}
	d.value = v

	// Канал держит только последнее значение
	select {
	case <-d.out:
	default:
	}
	d.out <- v
}

// C returns the channel settled values are delivered on
func (d *Debouncer[T]) C() <-chan T {
	return d.out
}

// Value returns the last settled value
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Stop cancels a pending value. Set after Stop is ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
