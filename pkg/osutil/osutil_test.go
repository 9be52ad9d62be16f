package osutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithNewlineDoesNotAlias(t *testing.T) {
	t.Parallel()

	orig := make([]byte, 3, 16)
	copy(orig, "abc")
	got := WithNewline(orig)

	require.Equal(t, append([]byte("abc"), LineSep()...), got)
	got[0] = 'x'
	require.Equal(t, "abc", string(orig))
}

func TestSamePath(t *testing.T) {
	t.Parallel()

	root := string(filepath.Separator)
	require.True(t, SamePath(filepath.Join(root, "proj", "src", "..", "app.ts"), filepath.Join(root, "proj", "app.ts")))
	require.False(t, SamePath(filepath.Join(root, "proj", "a.ts"), filepath.Join(root, "proj", "b.ts")))
	require.Equal(t, IsWindows(), SamePath(filepath.Join(root, "Proj", "A.ts"), filepath.Join(root, "proj", "a.ts")))
}
