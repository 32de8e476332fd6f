package resource

import (
	"fmt"
	"html"
	"net/url"
	"os"
	"sort"
	"strings"
)

// ListEntry is one child of a listed directory.
type ListEntry struct {
	Name  string
	IsDir bool
}

// Listing is the ordered set of a directory's direct children, sorted
// lexicographically by name with directories and files interleaved. The
// ordering is fixed so that rendered output is deterministic.
type Listing struct {
	Entries []ListEntry
}

// ReadListing enumerates the direct children of a directory.
func ReadListing(dirPath string) (Listing, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return Listing{}, fmt.Errorf("reading directory %s: %w", dirPath, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	l := Listing{Entries: make([]ListEntry, 0, len(entries))}
	for _, entry := range entries {
		l.Entries = append(l.Entries, ListEntry{Name: entry.Name(), IsDir: entry.IsDir()})
	}
	return l, nil
}

// RenderListing produces the HTML index page for a listing: an unordered
// list of relative anchors, directory entries marked with a trailing slash,
// names HTML-escaped (hrefs additionally percent-escaped). Empty
// directories render a placeholder paragraph instead of an empty list.
//
// The output is a pure function of the entry sequence: no timestamps or
// sizes, so a directory's body only changes when its ETag does.
func RenderListing(l Listing) []byte {
	var sb strings.Builder
	sb.WriteString("<html><body>")

	if len(l.Entries) == 0 {
		sb.WriteString("<p>empty directory</p>")
	} else {
		sb.WriteString("<ul>")
		for _, entry := range l.Entries {
			marker := ""
			if entry.IsDir {
				marker = "/"
			}
			href := html.EscapeString(url.PathEscape(entry.Name))
			text := html.EscapeString(entry.Name)
			fmt.Fprintf(&sb, "<li><a href=\"./%s%s\">%s%s</a></li>", href, marker, text, marker)
		}
		sb.WriteString("</ul>")
	}

	sb.WriteString("</body></html>")
	return []byte(sb.String())
}
