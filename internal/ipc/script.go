package ipc

import "fmt"

// initScriptTemplate is injected into the page before every document load
// (spec §4.6). It defines exactly one object, window.auroraview, with
// call/send_event/on/off/trigger. trigger is deliberately page-local only:
// it never posts to the host, which is the point of having it separate
// from send_event.
const initScriptTemplate = `(() => {
  if (window.auroraview) return;

  const PAGE_TIMEOUT_MS = %d;
  const post = (type, body) => {
    try {
      window.webkit.messageHandlers.auroraview.postMessage(JSON.stringify(Object.assign({type}, body)));
    } catch (e) {
      console.error('[auroraview] postMessage failed', e);
    }
  };

  let nextId = 1;
  const pending = new Map();
  const listeners = new Map();

  function call(method, params) {
    const id = String(nextId++);
    return new Promise((resolve, reject) => {
      const timer = setTimeout(() => {
        pending.delete(id);
        reject({kind: 'Timeout', detail: method});
      }, PAGE_TIMEOUT_MS);
      pending.set(id, {resolve, reject, timer});
      post('ipc_request', {id, method, params: params === undefined ? null : params});
    });
  }

  function sendEvent(name, payload) {
    post('send_event', {name, payload: payload === undefined ? null : payload});
  }

  function on(name, handler) {
    if (!listeners.has(name)) listeners.set(name, new Set());
    listeners.get(name).add(handler);
  }

  function off(name, handler) {
    const set = listeners.get(name);
    if (!set) return;
    if (handler) set.delete(handler); else set.clear();
  }

  function trigger(name, payload) {
    const set = listeners.get(name);
    if (!set) return;
    for (const h of set) { try { h(payload); } catch (e) { console.error('[auroraview] handler threw', e); } }
  }

  window.__auroraview_resolve = function(id, result, err) {
    const entry = pending.get(id);
    if (!entry) return;
    pending.delete(id);
    clearTimeout(entry.timer);
    if (err) entry.reject(err); else entry.resolve(result);
  };

  window.__auroraview_dispatch_event = function(name, payload) {
    trigger(name, payload);
  };

  window.auroraview = {call, send_event: sendEvent, on, off, trigger};
})();`

// ComposeInitScript renders the init script with the single source of
// truth for the JS-side call timeout. pageTimeoutMs must be >= the host's
// own timeout by a small margin so the host can return Timeout before the
// page gives up (spec I7).
func ComposeInitScript(pageTimeoutMs int) string {
	return fmt.Sprintf(initScriptTemplate, pageTimeoutMs)
}

// PageTimeoutMargin is added to the host's js_call_timeout_ms when deriving
// the page-side timeout injected into the script.
const PageTimeoutMargin = 50
