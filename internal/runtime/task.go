package runtime

// Reply is the one-shot channel a task with a correlated response carries.
// It is signalled exactly once, whether the task runs, times out, or is
// dropped on close (spec I4).
type Reply chan Result

// Result is what a Reply delivers: a JSON-encodable value on success, or a
// runtime Error on failure.
type Result struct {
	Value any
	Err   error
}

// NewReply constructs a buffered Reply channel so a send never blocks the
// UI thread on a slow or absent receiver.
func NewReply() Reply {
	return make(Reply, 1)
}

// Resolve signals r with a value. It never blocks: if r already holds an
// undelivered result, this later signal is dropped.
func (r Reply) Resolve(value any) {
	select {
	case r <- Result{Value: value}:
	default:
	}
}

// Reject signals r with an error. It never blocks: if r already holds an
// undelivered result, this later signal is dropped.
func (r Reply) Reject(err error) {
	select {
	case r <- Result{Err: err}:
	default:
	}
}

// TaskKind tags the variant carried by a Task (spec §3 UiTask).
type TaskKind int

const (
	TaskLoadURL TaskKind = iota
	TaskLoadHTML
	TaskEvalJS
	TaskEmitEvent
	TaskIpcRequest
	TaskIpcResponse
	TaskToolInvoke
	TaskResize
	TaskSetTitle
	TaskShow
	TaskHide
	TaskClose
	TaskCustom
)

func (k TaskKind) String() string {
	names := [...]string{
		"LoadUrl", "LoadHtml", "EvalJs", "EmitEvent", "IpcRequest",
		"IpcResponse", "ToolInvoke", "Resize", "SetTitle", "Show", "Hide",
		"Close", "Custom",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Task is the sum type accepted by the MessageQueue. Exactly one group of
// fields is meaningful, selected by Kind; this mirrors a tagged union
// without resorting to an interface-per-variant hierarchy (spec §9).
type Task struct {
	Kind TaskKind

	// LoadUrl / LoadHtml
	URL     string
	HTML    string
	BaseURL string

	// EvalJs
	Script string

	// EmitEvent / IpcRequest / IpcResponse / ToolInvoke
	Name       string
	PayloadRaw string

	// IpcRequest / ToolInvoke
	CorrelationID string
	Method        string
	ParamsRaw     string
	ToolName      string
	ArgsRaw       string
	ReplyTo       Reply

	// IpcResponse
	ResultRaw string
	ErrRaw    string

	// Resize
	Width  int
	Height int

	// SetTitle
	Title string

	// Custom
	Run func()
}

// LoadURLTask constructs a LoadUrl variant.
func LoadURLTask(url string) Task { return Task{Kind: TaskLoadURL, URL: url} }

// LoadHTMLTask constructs a LoadHtml variant.
func LoadHTMLTask(html, baseURL string) Task {
	return Task{Kind: TaskLoadHTML, HTML: html, BaseURL: baseURL}
}

// EvalJSTask constructs an EvalJs variant with a reply that is signalled
// once the script has been handed to the backend.
func EvalJSTask(script string, reply Reply) Task {
	return Task{Kind: TaskEvalJS, Script: script, ReplyTo: reply}
}

// EmitEventTask constructs a host-to-page EmitEvent variant.
func EmitEventTask(name, payloadJSON string) Task {
	return Task{Kind: TaskEmitEvent, Name: name, PayloadRaw: payloadJSON}
}

// IpcRequestTask constructs a page-to-host RPC call variant.
func IpcRequestTask(id, method, paramsJSON string, reply Reply) Task {
	return Task{Kind: TaskIpcRequest, CorrelationID: id, Method: method, ParamsRaw: paramsJSON, ReplyTo: reply}
}

// IpcResponseTask constructs a host-to-page RPC result variant.
func IpcResponseTask(id, resultJSON, errJSON string) Task {
	return Task{Kind: TaskIpcResponse, CorrelationID: id, ResultRaw: resultJSON, ErrRaw: errJSON}
}

// ToolInvokeTask constructs an external (e.g. MCP) tool-invocation variant
// that shares the host dispatch table with JS calls.
func ToolInvokeTask(id, toolName, argsJSON string, reply Reply) Task {
	return Task{Kind: TaskToolInvoke, CorrelationID: id, ToolName: toolName, ArgsRaw: argsJSON, ReplyTo: reply}
}

// ResizeTask constructs a Resize variant.
func ResizeTask(w, h int) Task { return Task{Kind: TaskResize, Width: w, Height: h} }

// SetTitleTask constructs a SetTitle variant.
func SetTitleTask(title string) Task { return Task{Kind: TaskSetTitle, Title: title} }

// ShowTask, HideTask, CloseTask construct their zero-payload variants.
func ShowTask() Task  { return Task{Kind: TaskShow} }
func HideTask() Task  { return Task{Kind: TaskHide} }
func CloseTask() Task { return Task{Kind: TaskClose} }

// CustomTask constructs an opaque closure variant executed on the UI thread.
func CustomTask(run func()) Task { return Task{Kind: TaskCustom, Run: run} }

// HasReply reports whether the task carries a reply channel that must be
// signalled exactly once before the task is dropped.
func (t Task) HasReply() bool { return t.ReplyTo != nil }
