package queue

import "time"

// EventLoopProxy is an idempotent, coalescing wake signal into whichever
// event loop owns the UI thread (spec §4.4). Multiple wakes collapse into
// at most one pending wake (I2).
type EventLoopProxy interface {
	// Wake requests one more tick. Safe to call from any thread, any
	// number of times; excess calls before the tick runs are no-ops.
	Wake()
}

// ChannelProxy is an EventLoopProxy backed by a buffered channel, suitable
// for StandaloneBlocking/StandaloneThreaded modes where the runtime owns
// a select loop. The channel's capacity of 1 is the coalescing mechanism:
// a second Wake before the first is consumed is dropped.
type ChannelProxy struct {
	wakeCh chan struct{}
}

// NewChannelProxy constructs a ChannelProxy.
func NewChannelProxy() *ChannelProxy {
	return &ChannelProxy{wakeCh: make(chan struct{}, 1)}
}

// Wake implements EventLoopProxy.
func (p *ChannelProxy) Wake() {
	select {
	case p.wakeCh <- struct{}{}:
	default:
	}
}

// Chan returns the channel the owning event loop selects on.
func (p *ChannelProxy) Chan() <-chan struct{} { return p.wakeCh }

// NopProxy is the degraded proxy used in HostEmbedded mode: the host's own
// tick already polls the queue on a timer, so a wake signal has nothing to
// notify (spec §4.4, "the proxy degrades to a noop").
type NopProxy struct{}

// Wake implements EventLoopProxy as a no-op.
func (NopProxy) Wake() {}

// FuncProxy adapts an arbitrary wake callback (e.g. glib.IdleAdd on the
// WebKitGTK backend) to EventLoopProxy.
type FuncProxy struct {
	wake func()
}

// NewFuncProxy wraps fn as an EventLoopProxy.
func NewFuncProxy(fn func()) *FuncProxy {
	return &FuncProxy{wake: fn}
}

// Wake implements EventLoopProxy.
func (p *FuncProxy) Wake() {
	if p.wake != nil {
		p.wake()
	}
}

// WakeBatchTicker fires unconditionally every interval, independent of
// wake events. It exists because some platforms' wake mechanism can go
// quiescent (spec §4.4: "notably Windows ControlFlow::Poll quiescence").
type WakeBatchTicker struct {
	ticker *time.Ticker
}

// NewWakeBatchTicker starts a ticker at the given interval.
func NewWakeBatchTicker(interval time.Duration) *WakeBatchTicker {
	return &WakeBatchTicker{ticker: time.NewTicker(interval)}
}

// C returns the channel that fires on each interval.
func (t *WakeBatchTicker) C() <-chan time.Time { return t.ticker.C }

// Stop releases the underlying timer.
func (t *WakeBatchTicker) Stop() { t.ticker.Stop() }
