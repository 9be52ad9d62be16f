package bridge

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/iradul/vscode-phantomjs-debug/internal/sourcemap"
	"github.com/iradul/vscode-phantomjs-debug/pkg/osutil"
)

type script struct {
	id  string
	url string

	// Local file for the script, empty if the script could not be mapped to one.
	clientPath string

	sourceMap *sourcemap.SourceMap

	// Reference the client can use to fetch the script source, for scripts without a local file.
	sourceRef int
}

// name returns a short display name for the script.
func (s *script) name() string {
	if s.clientPath != "" {
		return filepath.Base(s.clientPath)
	}
	if s.url == "" {
		return "<eval " + s.id + ">"
	}
	trimmed := strings.TrimRight(s.url, "/")
	if i := strings.LastIndex(trimmed, "://"); i >= 0 && !strings.Contains(trimmed[i+3:], "/") {
		return trimmed[i+3:]
	}
	return path.Base(trimmed)
}

// scriptTable tracks scripts reported by the target. Owned by the event loop.
type scriptTable struct {
	byID    map[string]*script
	ordered []*script
	refs    *handles[*script]
}

func newScriptTable() *scriptTable {
	return &scriptTable{
		byID: map[string]*script{},
		refs: newHandles[*script](),
	}
}

func (t *scriptTable) add(s *script) {
	if s.clientPath == "" {
		s.sourceRef = t.refs.create(s)
	}
	t.byID[s.id] = s
	t.ordered = append(t.ordered, s)
}

func (t *scriptTable) get(id string) (*script, bool) {
	s, found := t.byID[id]
	return s, found
}

func (t *scriptTable) bySourceRef(ref int) (*script, bool) {
	return t.refs.get(ref)
}

// forClientPath finds the most recently parsed script that corresponds to given local file.
// The file is either the script itself, or an authored source compiled into the script (authored == true).
func (t *scriptTable) forClientPath(p string) (s *script, authored bool) {
	for i := len(t.ordered) - 1; i >= 0; i-- {
		candidate := t.ordered[i]
		if candidate.clientPath != "" && osutil.SamePath(candidate.clientPath, p) {
			return candidate, false
		}
		if candidate.sourceMap != nil && candidate.sourceMap.SourceIndex(p) >= 0 {
			return candidate, true
		}
	}
	return nil, false
}

