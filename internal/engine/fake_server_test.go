package engine

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

// fakeEngineServer answers the REST calls both client libraries make. Every
// response carries the product header the Elasticsearch client checks for.
type fakeEngineServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
	// replies maps an operation ("search", "delete", "index", "update") to a
	// status and body; unset operations get a sensible 200.
	replies map[string]fakeReply
}

type fakeReply struct {
	status int
	body   string
}

func newFakeEngineServer(t *testing.T) *fakeEngineServer {
	t.Helper()
	f := &fakeEngineServer{replies: map[string]fakeReply{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeEngineServer) reply(op string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[op] = fakeReply{status: status, body: body}
}

func (f *fakeEngineServer) last(op string) (recordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if opOf(f.requests[i].Method, f.requests[i].Path) == op {
			return f.requests[i], true
		}
	}
	return recordedRequest{}, false
}

func opOf(method, path string) string {
	switch {
	case path == "/" || path == "":
		return "info"
	case strings.HasSuffix(path, "/_search"):
		return "search"
	case strings.HasSuffix(path, "/_delete_by_query"):
		return "delete"
	case strings.Contains(path, "_update"):
		return "update"
	case method == http.MethodPost || method == http.MethodPut:
		return "index"
	}
	return "unknown"
}

func (f *fakeEngineServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	op := opOf(r.Method, r.URL.Path)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Body: string(body)})
	rep, ok := f.replies[op]
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		rep = fakeReply{status: http.StatusOK, body: defaultReply(op)}
	}
	w.WriteHeader(rep.status)
	if r.Method != http.MethodHead {
		_, _ = io.WriteString(w, rep.body)
	}
}

func defaultReply(op string) string {
	switch op {
	case "info":
		return `{"name":"fake","cluster_name":"fake","version":{"number":"7.17.0","build_flavor":"default"},"tagline":"You Know, for Search"}`
	case "search":
		return `{"took":1,"hits":{"total":{"value":0},"hits":[]}}`
	case "delete":
		return `{"took":1,"deleted":0,"failures":[]}`
	case "index":
		return `{"_index":"mydata","_type":"widgets","_id":"generated-1","result":"created"}`
	case "update":
		return `{"_index":"mydata","_type":"widgets","_id":"X","_version":2,"result":"updated","_shards":{"total":2,"successful":1,"failed":0},"_seq_no":5,"_primary_term":1}`
	}
	return `{}`
}
