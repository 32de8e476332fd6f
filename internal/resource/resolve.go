// Package resource implements the content-serving core: it maps request
// paths to filesystem entities, computes HTTP cache validators for them,
// evaluates conditional request headers and assembles transport-independent
// response descriptions.
package resource

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Kind classifies what a request path resolved to.
type Kind int

const (
	// KindAbsent means no servable entry exists at the path. This covers
	// missing entries, permission failures and special files (devices,
	// sockets) alike.
	KindAbsent Kind = iota
	// KindFile is a regular file.
	KindFile
	// KindDirectory is a directory.
	KindDirectory
)

// ErrInvalidPath reports a request path that would escape the document root.
// Callers map it to 400, distinct from an absent entity (404): attempted
// traversal is a client error, a missing file is not.
var ErrInvalidPath = errors.New("request path escapes document root")

// Entity is the result of resolving a request path against the document
// root. It is constructed per request and never cached; the filesystem is
// the single source of truth.
type Entity struct {
	Kind         Kind
	AbsolutePath string
	Info         os.FileInfo
}

// Resolver maps URL paths onto a fixed document root.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver for the given document root. The root must
// be an existing directory; it is made absolute and cleaned so that the
// containment check below can rely on simple prefix comparison.
func NewResolver(documentRoot string) (*Resolver, error) {
	abs, err := filepath.Abs(documentRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving document root %q: %w", documentRoot, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("document root %q: %w", abs, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("document root %q is not a directory", abs)
	}
	return &Resolver{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute document root.
func (r *Resolver) Root() string { return r.root }

// Resolve maps a URL path to an Entity. The path is normalized lexically
// before it touches the filesystem; any path that still climbs above the
// root after normalization yields ErrInvalidPath. The root path itself
// ("" or "/") resolves to the root directory. Stat failures other than
// not-exist/permission surface as wrapped errors for the caller to map
// to 500.
func (r *Resolver) Resolve(requestPath string) (Entity, error) {
	rel := path.Clean(strings.TrimPrefix(requestPath, "/"))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return Entity{}, ErrInvalidPath
	}
	if rel == "." {
		rel = ""
	}

	abs := filepath.Join(r.root, filepath.FromSlash(rel))

	// Belt and braces: Join plus the lexical check above should already
	// guarantee containment, but a prefix check keeps the invariant local.
	if abs != r.root && !strings.HasPrefix(abs, r.root+string(filepath.Separator)) {
		return Entity{}, ErrInvalidPath
	}

	fi, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return Entity{Kind: KindAbsent}, nil
		}
		return Entity{}, fmt.Errorf("stat %s: %w", abs, err)
	}

	switch {
	case fi.IsDir():
		return Entity{Kind: KindDirectory, AbsolutePath: abs, Info: fi}, nil
	case fi.Mode().IsRegular():
		return Entity{Kind: KindFile, AbsolutePath: abs, Info: fi}, nil
	default:
		// Devices, sockets, FIFOs and the like are not servable.
		return Entity{Kind: KindAbsent}, nil
	}
}
