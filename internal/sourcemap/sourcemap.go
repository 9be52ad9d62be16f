// Package sourcemap decodes version 3 source maps and translates positions
// between generated scripts and the authored sources they were compiled from.
// All line and column numbers are 0-based.
package sourcemap

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/iradul/vscode-phantomjs-debug/pkg/osutil"
)

var ErrUnsupportedVersion = errors.New("unsupported source map version")

// Mapping links one generated position to one authored position.
type Mapping struct {
	GeneratedLine   int
	GeneratedColumn int
	Source          int // Index into Sources()
	OriginalLine    int
	OriginalColumn  int
}

type rawSourceMap struct {
	Version    int      `json:"version"`
	File       string   `json:"file"`
	SourceRoot string   `json:"sourceRoot"`
	Sources    []string `json:"sources"`
	Names      []string `json:"names"`
	Mappings   string   `json:"mappings"`
}

type SourceMap struct {
	file    string
	sources []string

	// Sorted by generated position.
	mappings []Mapping
	// Per source index, sorted by original position.
	bySource map[int][]Mapping
}

// Parse decodes a source map. Relative source paths are resolved against baseDir.
func Parse(data []byte, baseDir string) (*SourceMap, error) {
	var raw rawSourceMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("could not parse source map: %w", err)
	}
	if raw.Version != 3 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, raw.Version)
	}

	sm := &SourceMap{
		file:     raw.File,
		sources:  make([]string, len(raw.Sources)),
		bySource: map[int][]Mapping{},
	}
	for i, s := range raw.Sources {
		sm.sources[i] = resolveSourcePath(baseDir, raw.SourceRoot, s)
	}

	if err := sm.decodeMappings(raw.Mappings); err != nil {
		return nil, err
	}
	return sm, nil
}

// Load reads the source map referenced by a script. sourceMapURL may be a data: URL,
// a file: URL, or a path relative to the directory of scriptPath.
func Load(scriptPath, sourceMapURL string) (*SourceMap, error) {
	if strings.HasPrefix(sourceMapURL, "data:") {
		data, err := decodeDataURL(sourceMapURL)
		if err != nil {
			return nil, err
		}
		return Parse(data, filepath.Dir(scriptPath))
	}

	mapPath := fileURLToPath(sourceMapURL)
	if !filepath.IsAbs(mapPath) {
		mapPath = filepath.Join(filepath.Dir(scriptPath), mapPath)
	}

	data, err := os.ReadFile(mapPath)
	if err != nil {
		return nil, fmt.Errorf("could not read source map: %w", err)
	}
	return Parse(data, filepath.Dir(mapPath))
}

// FindURL looks for a sourceMappingURL comment in a script file. The last such comment wins.
func FindURL(scriptPath string) (string, bool) {
	data, readErr := os.ReadFile(scriptPath)
	if readErr != nil {
		return "", false
	}

	lines := strings.Split(string(data), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		for _, prefix := range sourceMappingURLPrefixes {
			if rest, found := strings.CutPrefix(line, prefix); found {
				mapURL := strings.TrimSpace(rest)
				return mapURL, mapURL != ""
			}
		}
	}
	return "", false
}

var sourceMappingURLPrefixes = []string{"//# sourceMappingURL=", "//@ sourceMappingURL="}

// Sources returns the resolved paths of the authored sources.
func (sm *SourceMap) Sources() []string {
	return sm.sources
}

// SourceIndex returns the index of the authored source with given path, or -1.
func (sm *SourceMap) SourceIndex(path string) int {
	for i, s := range sm.sources {
		if osutil.SamePath(s, path) {
			return i
		}
	}
	return -1
}

// GeneratedToOriginal maps a generated position to the authored source position.
// The closest mapping at or before the column on the same line is used; if the column precedes
// every mapping of the line, the first mapping of the line is used.
func (sm *SourceMap) GeneratedToOriginal(line, column int) (source string, origLine, origColumn int, found bool) {
	start := sort.Search(len(sm.mappings), func(i int) bool {
		return sm.mappings[i].GeneratedLine >= line
	})
	if start == len(sm.mappings) || sm.mappings[start].GeneratedLine != line {
		return "", 0, 0, false
	}

	best := sm.mappings[start]
	for i := start + 1; i < len(sm.mappings) && sm.mappings[i].GeneratedLine == line; i++ {
		if sm.mappings[i].GeneratedColumn > column {
			break
		}
		best = sm.mappings[i]
	}

	return sm.sources[best.Source], best.OriginalLine, best.OriginalColumn, true
}

// OriginalToGenerated maps an authored source position to a generated position.
// The search runs forward: the first mapping at or after the requested position is used (least upper bound).
func (sm *SourceMap) OriginalToGenerated(source string, line, column int) (genLine, genColumn int, found bool) {
	idx := sm.SourceIndex(source)
	if idx < 0 {
		return 0, 0, false
	}

	ms := sm.bySource[idx]
	i := sort.Search(len(ms), func(i int) bool {
		return ms[i].OriginalLine > line || (ms[i].OriginalLine == line && ms[i].OriginalColumn >= column)
	})
	if i == len(ms) {
		return 0, 0, false
	}
	return ms[i].GeneratedLine, ms[i].GeneratedColumn, true
}

func (sm *SourceMap) decodeMappings(mappings string) error {
	var source, origLine, origColumn int

	for genLine, lineData := range strings.Split(mappings, ";") {
		genColumn := 0
		if lineData == "" {
			continue
		}

		for _, segment := range strings.Split(lineData, ",") {
			if segment == "" {
				continue
			}
			fields, err := decodeSegment(segment)
			if err != nil {
				return err
			}

			genColumn += fields[0]
			if len(fields) < 4 {
				// Generated code with no authored counterpart
				continue
			}

			source += fields[1]
			origLine += fields[2]
			origColumn += fields[3]
			if source < 0 || source >= len(sm.sources) || origLine < 0 || origColumn < 0 || genColumn < 0 {
				return fmt.Errorf("%w: mapping out of range at generated line %d", errInvalidVLQ, genLine)
			}

			m := Mapping{
				GeneratedLine:   genLine,
				GeneratedColumn: genColumn,
				Source:          source,
				OriginalLine:    origLine,
				OriginalColumn:  origColumn,
			}
			sm.mappings = append(sm.mappings, m)
			sm.bySource[source] = append(sm.bySource[source], m)
		}
	}

	sort.SliceStable(sm.mappings, func(i, j int) bool {
		a, b := sm.mappings[i], sm.mappings[j]
		return a.GeneratedLine < b.GeneratedLine || (a.GeneratedLine == b.GeneratedLine && a.GeneratedColumn < b.GeneratedColumn)
	})
	for idx := range sm.bySource {
		ms := sm.bySource[idx]
		sort.SliceStable(ms, func(i, j int) bool {
			a, b := ms[i], ms[j]
			if a.OriginalLine != b.OriginalLine {
				return a.OriginalLine < b.OriginalLine
			}
			if a.OriginalColumn != b.OriginalColumn {
				return a.OriginalColumn < b.OriginalColumn
			}
			return a.GeneratedLine < b.GeneratedLine || (a.GeneratedLine == b.GeneratedLine && a.GeneratedColumn < b.GeneratedColumn)
		})
	}
	return nil
}

func decodeDataURL(dataURL string) ([]byte, error) {
	comma := strings.IndexByte(dataURL, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URL")
	}
	meta, payload := dataURL[len("data:"):comma], dataURL[comma+1:]

	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("could not decode inline source map: %w", err)
		}
		return data, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("could not decode inline source map: %w", err)
	}
	return []byte(unescaped), nil
}

func resolveSourcePath(baseDir, sourceRoot, source string) string {
	p := fileURLToPath(source)
	if sourceRoot != "" && !filepath.IsAbs(p) {
		p = filepath.Join(fileURLToPath(sourceRoot), p)
	}
	if !filepath.IsAbs(p) && baseDir != "" {
		p = filepath.Join(baseDir, p)
	}
	return filepath.Clean(p)
}

func fileURLToPath(s string) string {
	if !strings.HasPrefix(s, "file://") {
		return filepath.FromSlash(s)
	}
	u, err := url.Parse(s)
	if err != nil {
		return filepath.FromSlash(strings.TrimPrefix(s, "file://"))
	}
	return filepath.FromSlash(u.Path)
}
