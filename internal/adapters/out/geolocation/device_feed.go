// Package geolocation adapts the buyer's device position stream to the
// Geolocator port. Fixes arrive from the device over a websocket and fan out
// to every open watch.
package geolocation

import (
	"context"
	"sync"
	"time"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/ports"
)

const watchBuffer = 8

var (
	_ ports.Geolocator = (*DeviceFeed)(nil)
	_ ports.Geolocator = Unsupported{}
)

// DeviceFeed keeps the latest device fix and the set of live watches.
type DeviceFeed struct {
	now func() time.Time

	mu       sync.Mutex
	last     kernel.Location
	lastAt   time.Time
	hasFix   bool
	waiters  []chan ports.PositionUpdate
	watchers map[*watch]struct{}
}

func NewDeviceFeed() *DeviceFeed {
	return &DeviceFeed{
		now:      time.Now,
		watchers: make(map[*watch]struct{}),
	}
}

// Push records a fix from the device.
func (f *DeviceFeed) Push(loc kernel.Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	f.last = loc
	f.lastAt = f.now()
	f.hasFix = true
	f.mu.Unlock()

	f.broadcast(ports.PositionUpdate{Location: loc})
	return nil
}

// PushError forwards a device error, such as a denied permission, to watches
// and fails every pending CurrentPosition call with it.
func (f *DeviceFeed) PushError(err error) {
	f.broadcast(ports.PositionUpdate{Err: err})
}

// CurrentPosition returns the last fix when it is younger than opts.MaxAge,
// otherwise waits for the next one.
func (f *DeviceFeed) CurrentPosition(ctx context.Context, opts ports.PositionOptions) (kernel.Location, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	f.mu.Lock()
	if f.hasFix && f.now().Sub(f.lastAt) <= opts.MaxAge {
		loc := f.last
		f.mu.Unlock()
		return loc, nil
	}
	wait := make(chan ports.PositionUpdate, 1)
	f.waiters = append(f.waiters, wait)
	f.mu.Unlock()

	select {
	case u := <-wait:
		if u.Err != nil {
			return kernel.Location{}, u.Err
		}
		return u.Location, nil
	case <-ctx.Done():
		f.dropWaiter(wait)
		return kernel.Location{}, ctx.Err()
	}
}

// Watch subscribes to fixes until the watch is closed or ctx ends. A slow
// reader loses the oldest pending updates.
func (f *DeviceFeed) Watch(ctx context.Context, _ ports.PositionOptions) (ports.PositionWatch, error) {
	w := &watch{
		feed:    f,
		updates: make(chan ports.PositionUpdate, watchBuffer),
		done:    make(chan struct{}),
	}

	f.mu.Lock()
	f.watchers[w] = struct{}{}
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			w.Close()
		case <-w.done:
		}
	}()

	return w, nil
}

// Watchers returns the number of open watches.
func (f *DeviceFeed) Watchers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers)
}

func (f *DeviceFeed) broadcast(u ports.PositionUpdate) {
	f.mu.Lock()
	for _, w := range f.waiters {
		w <- u
	}
	f.waiters = nil
	watchers := make([]*watch, 0, len(f.watchers))
	for w := range f.watchers {
		watchers = append(watchers, w)
	}
	f.mu.Unlock()

	for _, w := range watchers {
		w.deliver(u)
	}
}

func (f *DeviceFeed) dropWaiter(wait chan ports.PositionUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, w := range f.waiters {
		if w == wait {
			f.waiters = append(f.waiters[:i], f.waiters[i+1:]...)
			return
		}
	}
}

func (f *DeviceFeed) remove(w *watch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.watchers, w)
}

type watch struct {
	feed    *DeviceFeed
	updates chan ports.PositionUpdate

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func (w *watch) Updates() <-chan ports.PositionUpdate {
	return w.updates
}

func (w *watch) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.done)
	close(w.updates)
	w.mu.Unlock()

	w.feed.remove(w)
}

func (w *watch) deliver(u ports.PositionUpdate) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	for {
		select {
		case w.updates <- u:
			return
		default:
		}
		select {
		case <-w.updates:
		default:
		}
	}
}

// Unsupported is a Geolocator for sessions without a position source.
type Unsupported struct{}

func (Unsupported) CurrentPosition(context.Context, ports.PositionOptions) (kernel.Location, error) {
	return kernel.Location{}, ports.ErrGeolocationUnsupported
}

func (Unsupported) Watch(context.Context, ports.PositionOptions) (ports.PositionWatch, error) {
	return nil, ports.ErrGeolocationUnsupported
}
