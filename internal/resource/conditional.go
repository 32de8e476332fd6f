package resource

import (
	"net/http"
	"strings"
	"time"
)

// Outcome is the decision of the conditional-request evaluation.
type Outcome int

const (
	// OutcomeFull means the full representation must be sent.
	OutcomeFull Outcome = iota
	// OutcomeNotModified means the client's cached copy is current (304).
	OutcomeNotModified
	// OutcomePreconditionFailed means a required If-Match condition did
	// not hold (412).
	OutcomePreconditionFailed
)

// Evaluate applies the conditional request headers against the current
// validators. Evaluation order follows RFC 7232 section 6:
//
//  1. If-Match: present and neither "*" nor any listed tag matches the
//     current ETag -> PreconditionFailed. Takes priority over all
//     freshness checks.
//  2. If-None-Match: "*" or a tag match -> NotModified; present without a
//     match -> Full. Either way If-Modified-Since is ignored, since
//     entity-tag comparison is authoritative when both are supplied.
//  3. If-Modified-Since: NotModified when the resource's mtime, truncated
//     to whole seconds (HTTP dates have no sub-second precision), is not
//     later than the header time. Malformed dates are ignored.
//  4. Otherwise Full.
func Evaluate(h http.Header, v Validators) Outcome {
	if ifMatch := h.Get("If-Match"); ifMatch != "" {
		if ifMatch != "*" && !anyTagMatches(ifMatch, v.ETag) {
			return OutcomePreconditionFailed
		}
	}

	if ifNoneMatch := h.Get("If-None-Match"); ifNoneMatch != "" {
		if ifNoneMatch == "*" || anyTagMatches(ifNoneMatch, v.ETag) {
			return OutcomeNotModified
		}
		return OutcomeFull
	}

	if ims := h.Get("If-Modified-Since"); ims != "" {
		if imsTime, err := http.ParseTime(ims); err == nil {
			modTime := v.LastModified.Truncate(time.Second)
			if !modTime.After(imsTime.Truncate(time.Second)) {
				return OutcomeNotModified
			}
		}
	}

	return OutcomeFull
}

// anyTagMatches reports whether any member of a comma-separated entity-tag
// list weakly matches the server tag. Weak comparison strips an optional
// "W/" prefix from either side and compares the opaque quoted values.
func anyTagMatches(headerValue, serverTag string) bool {
	serverOpaque := opaqueTag(serverTag)
	for _, candidate := range strings.Split(headerValue, ",") {
		if opaqueTag(strings.TrimSpace(candidate)) == serverOpaque {
			return true
		}
	}
	return false
}

func opaqueTag(tag string) string {
	tag = strings.TrimPrefix(tag, "W/")
	return strings.Trim(tag, "\"")
}
