// Package handler connects the content-serving core to the HTTP transport.
package handler

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pkaul/serverchallenge/internal/config"
	"github.com/pkaul/serverchallenge/internal/logger"
	"github.com/pkaul/serverchallenge/internal/resource"
)

const allowedMethods = "GET, HEAD, OPTIONS"

// finish flushes a bodyless response immediately. Without this, gin's
// NoRoute path would append its default 404 body to unwritten responses.
func finish(c *gin.Context, status int) {
	c.Status(status)
	c.Writer.WriteHeaderNow()
}

// Static serves files and directory listings from the document root.
type Static struct {
	cfg      *config.StaticConfig
	log      *logger.Logger
	resolver *resource.Resolver
	builder  *resource.Builder
}

// NewStatic creates the static content handler.
func NewStatic(cfg *config.StaticConfig, lg *logger.Logger) (*Static, error) {
	resolver, err := resource.NewResolver(cfg.DocumentRoot)
	if err != nil {
		return nil, err
	}

	mimeTypesPath := ""
	if cfg.MimeTypesPath != nil {
		mimeTypesPath = *cfg.MimeTypesPath
	}
	mimeTypes, err := resource.NewMimeTypes(mimeTypesPath)
	if err != nil {
		return nil, err
	}

	return &Static{
		cfg:      cfg,
		log:      lg,
		resolver: resolver,
		builder:  resource.NewBuilder(mimeTypes),
	}, nil
}

// Handle runs the resolve -> validate -> evaluate -> build pipeline for one
// request. Error responses carry no body; internal paths are never echoed
// to the client.
func (s *Static) Handle(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodGet, http.MethodHead:
		// fall through
	case http.MethodOptions:
		c.Header("Allow", allowedMethods)
		finish(c, http.StatusNoContent)
		return
	default:
		c.Header("Allow", allowedMethods)
		finish(c, http.StatusMethodNotAllowed)
		return
	}

	reqPath := c.Request.URL.Path

	entity, err := s.resolver.Resolve(reqPath)
	if err != nil {
		if errors.Is(err, resource.ErrInvalidPath) {
			s.log.Warn("rejected path outside document root", logger.LogFields{"path": reqPath})
			finish(c, http.StatusBadRequest)
			return
		}
		s.log.Error("path resolution failed", logger.LogFields{"path": reqPath, "error": err.Error()})
		finish(c, http.StatusInternalServerError)
		return
	}

	if entity.Kind == resource.KindAbsent {
		finish(c, http.StatusNotFound)
		return
	}

	if entity.Kind == resource.KindDirectory {
		if !*s.cfg.ServeDirectoryListing {
			finish(c, http.StatusForbidden)
			return
		}
		// Listing links are relative, so the directory URL needs its
		// trailing slash.
		if !strings.HasSuffix(reqPath, "/") {
			c.Redirect(http.StatusMovedPermanently, reqPath+"/")
			return
		}
	}

	validators, err := resource.ComputeValidators(entity)
	if err != nil {
		s.log.Error("validator computation failed", logger.LogFields{"path": reqPath, "error": err.Error()})
		finish(c, http.StatusInternalServerError)
		return
	}

	outcome := resource.Evaluate(c.Request.Header, validators)

	var listing []byte
	if entity.Kind == resource.KindDirectory && outcome == resource.OutcomeFull {
		l, err := resource.ReadListing(entity.AbsolutePath)
		if err != nil {
			s.log.Error("directory listing failed", logger.LogFields{"path": reqPath, "error": err.Error()})
			finish(c, http.StatusInternalServerError)
			return
		}
		listing = resource.RenderListing(l)
	}

	resp, err := s.builder.Build(c.Request.Method, entity, validators, outcome, listing)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			finish(c, http.StatusNotFound)
			return
		}
		s.log.Error("response build failed", logger.LogFields{"path": reqPath, "error": err.Error()})
		finish(c, http.StatusInternalServerError)
		return
	}

	for name, values := range resp.Header {
		for _, v := range values {
			c.Writer.Header().Add(name, v)
		}
	}
	if resp.Body == nil {
		finish(c, resp.Status)
		return
	}
	c.Status(resp.Status)

	defer resp.Body.Close()
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		// Headers are out; nothing more can be sent on this
		// connection beyond logging the broken transfer.
		s.log.Warn("body transfer aborted", logger.LogFields{"path": reqPath, "error": err.Error()})
	}
}
