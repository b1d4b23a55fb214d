// Package offline implements the offline asset cache: a worker that
// precaches a manifest of shell assets, garbage-collects superseded cache
// generations and answers GET requests network-first with a cache fallback.
package offline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotCached is returned for a failed network fetch that has no stored
	// response to fall back to.
	ErrNotCached = errors.New("offline: no cached response")

	// ErrInstallFailed wraps the first asset failure of an install.
	ErrInstallFailed = errors.New("offline: install failed")

	// ErrNoWaitingWorker is returned by Host.Promote when nothing is waiting.
	ErrNoWaitingWorker = errors.New("offline: no waiting worker")
)

// Key is the identity of a cached request.
type Key struct {
	Method string
	URL    string
}

func (k Key) String() string { return k.Method + " " + k.URL }

// KeyFor returns the cache identity of req. The URL fragment is ignored.
func KeyFor(req *http.Request) Key {
	u := *req.URL
	u.Fragment = ""
	u.RawFragment = ""
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	return Key{Method: strings.ToUpper(method), URL: u.String()}
}

// Entry is a stored response.
type Entry struct {
	Key      Key
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// NewEntry captures resp with an already-read body.
func NewEntry(key Key, resp *http.Response, body []byte) Entry {
	return Entry{
		Key:      key,
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     append([]byte(nil), body...),
		StoredAt: time.Now().UTC(),
	}
}

// Response rebuilds an *http.Response for req from the entry.
func (e Entry) Response(req *http.Request) *http.Response {
	return newResponse(req, e.Status, e.Header.Clone(), e.Body)
}

func newResponse(req *http.Request, status int, header http.Header, body []byte) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// cloneResponse returns a copy of resp whose body reads from body. The
// original body must already be consumed and closed.
func cloneResponse(resp *http.Response, body []byte) *http.Response {
	out := *resp
	out.Header = resp.Header.Clone()
	out.Body = io.NopCloser(bytes.NewReader(body))
	out.ContentLength = int64(len(body))
	return &out
}
