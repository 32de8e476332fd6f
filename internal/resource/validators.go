package resource

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"time"
)

// Validators carries the cache-identity metadata for a resolved entity.
// Both values are computed per request and never persisted.
type Validators struct {
	// ETag is a quoted opaque tag. Tags are emitted without a weak prefix
	// but compared weakly (see Evaluate): content is not hashed, so the
	// size+mtime composite cannot guarantee byte-level strength.
	ETag string
	// LastModified has sub-second precision here; comparisons against
	// HTTP dates truncate to whole seconds.
	LastModified time.Time
}

// ComputeValidators derives the ETag and last-modified timestamp for a file
// or directory entity.
//
// File ETag formula: "<size_hex>-<mtime_unixnano_hex>", quoted. Equal
// content with untouched metadata yields an equal tag across requests; a
// rewrite that changes size or mtime changes it.
//
// Directory ETag formula: quoted hex MD5 over the directory's own mtime
// (UnixNano, big endian) followed by the sorted child names, each name
// suffixed with '/' when the child is a directory and NUL-terminated.
// Adding, removing or renaming an entry changes the tag. The directory's
// LastModified is the latest mtime among the directory itself and its
// direct children.
func ComputeValidators(e Entity) (Validators, error) {
	switch e.Kind {
	case KindFile:
		return Validators{
			ETag:         fileETag(e.Info),
			LastModified: e.Info.ModTime(),
		}, nil
	case KindDirectory:
		return directoryValidators(e)
	default:
		return Validators{}, fmt.Errorf("no validators for absent entity")
	}
}

func fileETag(fi os.FileInfo) string {
	return fmt.Sprintf("\"%x-%x\"", fi.Size(), fi.ModTime().UnixNano())
}

func directoryValidators(e Entity) (Validators, error) {
	entries, err := os.ReadDir(e.AbsolutePath)
	if err != nil {
		return Validators{}, fmt.Errorf("reading directory %s: %w", e.AbsolutePath, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	h := md5.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(e.Info.ModTime().UnixNano()))
	h.Write(buf[:])

	lastModified := e.Info.ModTime()
	for _, entry := range entries {
		h.Write([]byte(entry.Name()))
		if entry.IsDir() {
			h.Write([]byte{'/'})
		}
		h.Write([]byte{0})

		// A child vanishing between ReadDir and Info is a benign race;
		// its name still contributes to the tag.
		if fi, err := entry.Info(); err == nil && fi.ModTime().After(lastModified) {
			lastModified = fi.ModTime()
		}
	}

	return Validators{
		ETag:         fmt.Sprintf("\"%x\"", h.Sum(nil)),
		LastModified: lastModified,
	}, nil
}
