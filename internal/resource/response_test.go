package resource

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	m, err := NewMimeTypes("")
	require.NoError(t, err)
	return NewBuilder(m)
}

func TestBuildFullFileGet(t *testing.T) {
	root := newTestRoot(t)
	e := resolveEntity(t, root, "/example.txt")
	v, err := ComputeValidators(e)
	require.NoError(t, err)

	resp, err := newTestBuilder(t).Build(http.MethodGet, e, v, OutcomeFull, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Body)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "5", resp.Header.Get("Content-Length"))
	assert.Equal(t, v.ETag, resp.Header.Get("ETag"))
	assert.Equal(t, v.LastModified.UTC().Format(http.TimeFormat), resp.Header.Get("Last-Modified"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestBuildHeadMatchesGetHeaders(t *testing.T) {
	root := newTestRoot(t)
	e := resolveEntity(t, root, "/example.txt")
	v, err := ComputeValidators(e)
	require.NoError(t, err)
	b := newTestBuilder(t)

	getResp, err := b.Build(http.MethodGet, e, v, OutcomeFull, nil)
	require.NoError(t, err)
	defer getResp.Body.Close()

	headResp, err := b.Build(http.MethodHead, e, v, OutcomeFull, nil)
	require.NoError(t, err)

	assert.Equal(t, getResp.Status, headResp.Status)
	assert.Equal(t, getResp.Header, headResp.Header)
	assert.Nil(t, headResp.Body)
	assert.Equal(t, getResp.ContentLength, headResp.ContentLength)
}

func TestBuildNotModified(t *testing.T) {
	root := newTestRoot(t)
	e := resolveEntity(t, root, "/example.txt")
	v, err := ComputeValidators(e)
	require.NoError(t, err)

	resp, err := newTestBuilder(t).Build(http.MethodGet, e, v, OutcomeNotModified, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotModified, resp.Status)
	assert.Nil(t, resp.Body)
	assert.Equal(t, v.ETag, resp.Header.Get("ETag"))
	assert.NotEmpty(t, resp.Header.Get("Last-Modified"))
	assert.Empty(t, resp.Header.Get("Content-Length"))
	assert.Empty(t, resp.Header.Get("Content-Type"))
}

func TestBuildPreconditionFailed(t *testing.T) {
	root := newTestRoot(t)
	e := resolveEntity(t, root, "/example.txt")
	v, err := ComputeValidators(e)
	require.NoError(t, err)

	resp, err := newTestBuilder(t).Build(http.MethodGet, e, v, OutcomePreconditionFailed, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusPreconditionFailed, resp.Status)
	assert.Nil(t, resp.Body)
	assert.Equal(t, v.ETag, resp.Header.Get("ETag"))
}

func TestBuildFullDirectory(t *testing.T) {
	root := newTestRoot(t)
	e := resolveEntity(t, root, "/images/")
	v, err := ComputeValidators(e)
	require.NoError(t, err)

	l, err := ReadListing(e.AbsolutePath)
	require.NoError(t, err)
	listing := RenderListing(l)

	resp, err := newTestBuilder(t).Build(http.MethodGet, e, v, OutcomeFull, listing)
	require.NoError(t, err)
	require.NotNil(t, resp.Body)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.EqualValues(t, len(listing), resp.ContentLength)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `<a href="./logo.png">logo.png</a>`)
}

func TestBuildDirectoryHeadSuppressesBody(t *testing.T) {
	root := newTestRoot(t)
	e := resolveEntity(t, root, "/images/")
	v, err := ComputeValidators(e)
	require.NoError(t, err)

	listing := RenderListing(Listing{Entries: []ListEntry{{Name: "logo.png"}}})
	resp, err := newTestBuilder(t).Build(http.MethodHead, e, v, OutcomeFull, listing)
	require.NoError(t, err)

	assert.Nil(t, resp.Body)
	assert.EqualValues(t, len(listing), resp.ContentLength)
}

func TestBuildLastModifiedIsHTTPDate(t *testing.T) {
	root := newTestRoot(t)
	e := resolveEntity(t, root, "/example.txt")
	v, err := ComputeValidators(e)
	require.NoError(t, err)

	resp, err := newTestBuilder(t).Build(http.MethodHead, e, v, OutcomeFull, nil)
	require.NoError(t, err)

	parsed, err := http.ParseTime(resp.Header.Get("Last-Modified"))
	require.NoError(t, err)
	assert.Equal(t, v.LastModified.UTC().Truncate(time.Second), parsed)
}
