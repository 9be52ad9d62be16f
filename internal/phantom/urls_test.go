package phantom

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialScriptURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "phantomjs://code/app.js", InitialScriptURL(filepath.Join("proj", "src", "app.js")))
}

func TestScriptName(t *testing.T) {
	t.Parallel()

	name, isPlatform, ok := scriptName("phantomjs://code/app.js")
	assert.True(t, ok)
	assert.False(t, isPlatform)
	assert.Equal(t, "app.js", name)

	name, isPlatform, ok = scriptName("phantomjs://platform/lib/util.js")
	assert.True(t, ok)
	assert.True(t, isPlatform)
	assert.Equal(t, "lib/util.js", name)

	_, _, ok = scriptName("phantomjs://code/")
	assert.False(t, ok)
	_, _, ok = scriptName("file:///proj/app.js")
	assert.False(t, ok)

	assert.True(t, IsPhantomURL("phantomjs://platform/x.js"))
	assert.True(t, IsPlatformURL("phantomjs://platform/x.js"))
	assert.False(t, IsPlatformURL("phantomjs://code/x.js"))
	assert.False(t, IsPhantomURL("file:///x.js"))
}
