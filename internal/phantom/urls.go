package phantom

import (
	"path/filepath"
	"strings"
)

// PhantomJS addresses scripts with synthetic URLs:
//
//	phantomjs://code/<basename>          the script named on the command line
//	phantomjs://platform/<relative-path> a module loaded with require() from node_modules
const (
	urlScheme      = "phantomjs://"
	codeURLPrefix  = urlScheme + "code/"
	platformPrefix = urlScheme + "platform"
)

// InitialScriptURL returns the URL PhantomJS uses for the script it was started with.
func InitialScriptURL(scriptPath string) string {
	return codeURLPrefix + filepath.Base(scriptPath)
}

// IsPhantomURL returns true for URLs in the PhantomJS synthetic scheme.
func IsPhantomURL(url string) bool {
	return strings.HasPrefix(url, urlScheme)
}

// IsPlatformURL returns true for URLs of scripts loaded as modules.
func IsPlatformURL(url string) bool {
	return strings.HasPrefix(url, platformPrefix)
}

// scriptName extracts the script path from a synthetic URL. The second return value is true for module scripts.
func scriptName(url string) (name string, isPlatform bool, ok bool) {
	if rest, found := strings.CutPrefix(url, codeURLPrefix); found {
		return rest, false, rest != ""
	}
	if rest, found := strings.CutPrefix(url, platformPrefix+"/"); found {
		return rest, true, rest != ""
	}
	return "", false, false
}
