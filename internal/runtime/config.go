package runtime

import "sync"

// ParentMode selects parent-child vs owner-owned semantics for an embedded window.
type ParentMode int

const (
	// ParentOwner sets an owner relationship only: the window is top-level but
	// minimizes and closes with the host. Safer for cross-thread creation and
	// the default when a parent handle is supplied.
	ParentOwner ParentMode = iota
	// ParentChild parents the widget window as a true child of the host handle.
	ParentChild
)

// Config is the flat, caller-constructed record of recognized ConfigModel
// options (spec §4.1). It is frozen the moment Show returns or the first
// tick runs; every field below is read-only after that point.
type Config struct {
	Title             string
	Width             int
	Height            int
	Resizable         bool
	Decorations       bool
	Debug             bool
	ContextMenu       bool
	AssetRoot         string
	AllowFileProtocol bool
	ParentHandle      uintptr
	ParentMode        ParentMode
	Icon              []byte
	JSCallTimeoutMs   int
	MaxTasksPerTick   int
	WakeBatchMs       int

	// Wait selects StandaloneBlocking (true) vs StandaloneThreaded (false)
	// when ParentHandle is zero. Ignored otherwise.
	Wait bool
	// PackedHeadless forces IpcOnlyHeadless regardless of ParentHandle/Wait.
	PackedHeadless bool
}

// DefaultConfig returns platform-neutral defaults for fields a caller leaves zero.
func DefaultConfig() Config {
	return Config{
		Title:           "AuroraView",
		Width:           1024,
		Height:          768,
		Resizable:       true,
		Decorations:     true,
		ContextMenu:     true,
		JSCallTimeoutMs: 5000,
		MaxTasksPerTick: 64,
		WakeBatchMs:     250,
		Wait:            true,
	}
}

// DeferredContent holds last-writer-wins slots for the content a caller may
// set before the widget exists (spec §3, I6). Exactly one of the slots,
// whichever was written last, is applied when the widget is created.
type DeferredContent struct {
	mu       sync.Mutex
	kind     deferredKind
	url      string
	html     string
	baseURL  string
	hasValue bool
}

type deferredKind int

const (
	deferredNone deferredKind = iota
	deferredURL
	deferredHTML
)

// SetURL records a pending LoadUrl, discarding any previously pending
// LoadUrl or LoadHtml slot.
func (d *DeferredContent) SetURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kind = deferredURL
	d.url = url
	d.hasValue = true
}

// SetHTML records a pending LoadHtml, discarding any previously pending
// LoadUrl or LoadHtml slot.
func (d *DeferredContent) SetHTML(html, baseURL string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kind = deferredHTML
	d.html = html
	d.baseURL = baseURL
	d.hasValue = true
}

// Resolution is the single deferred write to apply at widget creation time.
type Resolution struct {
	IsHTML  bool
	URL     string
	HTML    string
	BaseURL string
}

// Take returns the last-written slot, if any, and clears it so a second
// widget creation (there should never be one) cannot replay it.
func (d *DeferredContent) Take() (Resolution, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasValue {
		return Resolution{}, false
	}
	r := Resolution{
		IsHTML:  d.kind == deferredHTML,
		URL:     d.url,
		HTML:    d.html,
		BaseURL: d.baseURL,
	}
	d.hasValue = false
	return r, true
}
