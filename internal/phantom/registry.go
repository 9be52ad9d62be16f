package phantom

// ScriptRegistry remembers which scripts PhantomJS has wrapped in a function,
// shifting their source down by one line.
//
// The URL and ID indices are independent. Several live scripts can share a URL
// (every package's node_modules/<pkg>/index.js is reported as phantomjs://platform/index.js),
// so an ID is never forgotten when its URL is recorded again under a new ID.
//
// The registry belongs to a single debug session and is not safe for concurrent use.
type ScriptRegistry struct {
	byURL map[string]bool
	byID  map[string]bool
}

func NewScriptRegistry() *ScriptRegistry {
	return &ScriptRegistry{
		byURL: map[string]bool{},
		byID:  map[string]bool{},
	}
}

// RecordScript stores the wrapped status under both keys. Recording a key again overwrites its earlier status.
func (r *ScriptRegistry) RecordScript(url, id string, isWrapped bool) {
	r.byURL[url] = isWrapped
	r.byID[id] = isWrapped
}

// IsWrappedByURL returns false for unknown scripts.
func (r *ScriptRegistry) IsWrappedByURL(url string) bool {
	return r.byURL[url]
}

// IsWrappedByID returns false for unknown scripts.
func (r *ScriptRegistry) IsWrappedByID(id string) bool {
	return r.byID[id]
}
