package resource

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
)

// Response is a transport-independent description of the reply to send:
// status, headers and an optional body source. Bodies for files are lazy
// streams; directory listings are materialized eagerly (they are small).
type Response struct {
	Status        int
	Header        http.Header
	ContentLength int64
	// Body is nil when nothing is to be transmitted (HEAD, 304, 412).
	// The caller owns closing it.
	Body io.ReadCloser
}

// Builder assembles final responses from resolved entities and evaluated
// conditional outcomes.
type Builder struct {
	mimeTypes *MimeTypes
}

// NewBuilder creates a Builder using the given MIME type resolver.
func NewBuilder(m *MimeTypes) *Builder {
	return &Builder{mimeTypes: m}
}

// Build produces the response for a resolved entity. Status and headers are
// fully determined before any body byte can be read. The validators are
// included on every outcome, 304 and 412 included, so clients can refresh
// their cache metadata. For HEAD the body is suppressed but Content-Length
// still reflects what a GET would have transmitted.
//
// listing carries the rendered directory page and is only consulted for a
// Full outcome on a directory entity.
//
// An open failure after successful resolution is returned wrapped; callers
// can distinguish permission errors (serve 404) from genuine I/O failures
// (serve 500) with errors.Is against fs.ErrPermission.
func (b *Builder) Build(method string, e Entity, v Validators, outcome Outcome, listing []byte) (Response, error) {
	header := make(http.Header)
	header.Set("ETag", v.ETag)
	header.Set("Last-Modified", v.LastModified.UTC().Format(http.TimeFormat))

	switch outcome {
	case OutcomePreconditionFailed:
		return Response{Status: http.StatusPreconditionFailed, Header: header}, nil
	case OutcomeNotModified:
		return Response{Status: http.StatusNotModified, Header: header}, nil
	}

	if e.Kind == KindDirectory {
		header.Set("Content-Type", "text/html; charset=utf-8")
		header.Set("Content-Length", strconv.Itoa(len(listing)))
		resp := Response{Status: http.StatusOK, Header: header, ContentLength: int64(len(listing))}
		if method != http.MethodHead {
			resp.Body = io.NopCloser(bytes.NewReader(listing))
		}
		return resp, nil
	}

	size := e.Info.Size()
	header.Set("Content-Type", b.mimeTypes.ByPath(e.AbsolutePath))
	header.Set("Content-Length", strconv.FormatInt(size, 10))
	resp := Response{Status: http.StatusOK, Header: header, ContentLength: size}

	if method == http.MethodHead {
		return resp, nil
	}

	f, err := os.Open(e.AbsolutePath)
	if err != nil {
		return Response{}, fmt.Errorf("opening %s: %w", e.AbsolutePath, err)
	}
	resp.Body = f
	return resp, nil
}
