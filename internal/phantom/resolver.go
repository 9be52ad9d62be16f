package phantom

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/go-logr/logr"
)

const (
	dependencyDirName = "node_modules"

	// How many levels of subdirectories below the dependency root are searched for module scripts.
	// Together with the dependency root itself that makes three levels.
	dependencyScanDepth = 2
)

// FileProbe answers questions about the local file system.
type FileProbe interface {
	Exists(path string) bool

	// ListDirectories returns full paths of the immediate subdirectories of given directory, sorted by name.
	ListDirectories(path string) ([]string, error)
}

type OSFileProbe struct{}

func (OSFileProbe) Exists(path string) bool {
	_, statErr := os.Stat(path)
	return statErr == nil
}

func (OSFileProbe) ListDirectories(path string) ([]string, error) {
	entries, readErr := os.ReadDir(path)
	if readErr != nil {
		return nil, readErr
	}

	var dirs []string
	for _, entry := range entries {
		full := filepath.Join(path, entry.Name())
		if entry.IsDir() || (entry.Type()&fs.ModeSymlink != 0 && isDirectory(full)) {
			dirs = append(dirs, full)
		}
	}
	return dirs, nil
}

// isDirectory follows symlinks (linked packages).
func isDirectory(path string) bool {
	info, statErr := os.Stat(path)
	return statErr == nil && info.IsDir()
}

var _ FileProbe = OSFileProbe{}

// URLResolver maps PhantomJS script URLs to local files under a root directory.
//
// Module scripts are searched for in the dependency root (<root>/node_modules) and its subdirectories,
// breadth-first. The directory list is collected on first use and kept for the lifetime of the resolver.
type URLResolver struct {
	root  string
	probe FileProbe
	log   logr.Logger

	dependencyDirs []string
	scanned        bool
}

func NewURLResolver(root string, probe FileProbe, log logr.Logger) *URLResolver {
	if probe == nil {
		probe = OSFileProbe{}
	}
	return &URLResolver{
		root:  root,
		probe: probe,
		log:   log,
	}
}

// Resolve returns the local file for a PhantomJS script URL. The second return value is false
// if the URL is not a PhantomJS URL or no matching file exists.
func (r *URLResolver) Resolve(url string) (string, bool) {
	if r.root == "" || url == "" {
		return "", false
	}

	name, isPlatform, ok := scriptName(url)
	if !ok {
		return "", false
	}
	relPath := filepath.FromSlash(name)
	if !filepath.IsLocal(relPath) {
		r.log.V(1).Info("Script name points outside of the search directories", "URL", url)
		return "", false
	}

	if !isPlatform {
		candidate := filepath.Join(r.root, relPath)
		if r.probe.Exists(candidate) {
			return candidate, true
		}
		return "", false
	}

	for _, dir := range r.searchDirs() {
		candidate := filepath.Join(dir, relPath)
		if r.probe.Exists(candidate) {
			return candidate, true
		}
	}

	r.log.V(1).Info("No local file found for module script", "URL", url)
	return "", false
}

func (r *URLResolver) searchDirs() []string {
	if r.scanned {
		return r.dependencyDirs
	}
	r.scanned = true

	depRoot := filepath.Join(r.root, dependencyDirName)
	if !r.probe.Exists(depRoot) {
		return nil
	}

	type pendingDir struct {
		path  string
		depth int
	}
	queue := linkedlistqueue.New()
	queue.Enqueue(pendingDir{path: depRoot})

	for !queue.Empty() {
		v, _ := queue.Dequeue()
		dir := v.(pendingDir)
		r.dependencyDirs = append(r.dependencyDirs, dir.path)
		if dir.depth == dependencyScanDepth {
			continue
		}

		subdirs, listErr := r.probe.ListDirectories(dir.path)
		if listErr != nil {
			r.log.V(1).Info("Could not list directory", "Path", dir.path, "Error", listErr.Error())
			continue
		}
		for _, sub := range subdirs {
			queue.Enqueue(pendingDir{path: sub, depth: dir.depth + 1})
		}
	}

	return r.dependencyDirs
}
