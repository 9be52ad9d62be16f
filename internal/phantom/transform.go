package phantom

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iradul/vscode-phantomjs-debug/internal/bridge"
)

// WrapperOffset is the number of lines PhantomJS inserts above the source of a wrapped script.
const WrapperOffset = 1

var higherLevelSourceExtensions = []string{".ts", ".tsx", ".coffee"}

// IsHigherLevelSource returns true if the authored file is compiled to JavaScript before PhantomJS runs it.
// PhantomJS does not resolve breakpoint columns in such scripts reliably.
func IsHigherLevelSource(authoredPath string) bool {
	if authoredPath == "" {
		return false
	}
	ext := strings.ToLower(filepath.Ext(authoredPath))
	for _, hl := range higherLevelSourceExtensions {
		if ext == hl {
			return true
		}
	}
	return false
}

// ToTarget converts client breakpoint positions to PhantomJS positions.
// The input slice is not modified.
func ToTarget(breakpoints []bridge.BreakpointLocation, isWrapped, isHigherLevelSource bool) []bridge.BreakpointLocation {
	result := make([]bridge.BreakpointLocation, len(breakpoints))
	for i, bp := range breakpoints {
		if isWrapped {
			bp.Line += WrapperOffset
		}
		if isHigherLevelSource {
			bp.Column = 0
		}
		result[i] = bp
	}
	return result
}

// FromTargetLine converts a line reported by PhantomJS back to the client line.
func FromTargetLine(line int, isWrapped bool) (int, error) {
	if !isWrapped {
		return line, nil
	}
	clientLine := line - WrapperOffset
	if clientLine < 0 {
		return 0, fmt.Errorf("%w: line %d of a wrapped script", ErrProtocolAnomaly, line)
	}
	return clientLine, nil
}

// FromTarget converts breakpoint acknowledgements from PhantomJS back to client positions.
// A verified breakpoint whose position cannot be mapped back is reported as unverified.
// The input slice is not modified.
func FromTarget(results []bridge.BreakpointResult, isWrapped bool) []bridge.BreakpointResult {
	converted := make([]bridge.BreakpointResult, len(results))
	for i, res := range results {
		if res.Verified {
			clientLine, lineErr := FromTargetLine(res.Line, isWrapped)
			if lineErr != nil {
				res.Verified = false
				res.Message = lineErr.Error()
			} else {
				res.Line = clientLine
			}
		}
		converted[i] = res
	}
	return converted
}
