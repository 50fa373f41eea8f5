package s3

import (
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

type fakeObject struct {
	data   []byte
	header http.Header
}

// fakeS3 is a path-style, single-bucket S3 stand-in.
type fakeS3 struct {
	mu         sync.Mutex
	bucket     string
	created    bool
	objects    map[string]fakeObject
	failMethod map[string]bool
	unsigned   int
}

func newFakeS3(t *testing.T, bucket string) (*fakeS3, *httptest.Server) {
	t.Helper()
	fake := &fakeS3{
		bucket:     bucket,
		objects:    map[string]fakeObject{},
		failMethod: map[string]bool{},
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv
}

func (f *fakeS3) failOn(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failMethod[method] = true
}

func (f *fakeS3) put(key string, data []byte, header http.Header) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = fakeObject{data: data, header: header}
}

func (f *fakeS3) state() (created bool, unsigned int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created, f.unsigned
}

func (f *fakeS3) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.objects))
	for key := range f.objects {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !strings.HasPrefix(r.Header.Get("Authorization"), "AWS4-HMAC-SHA256 Credential=") {
		f.unsigned++
		w.WriteHeader(http.StatusForbidden)
		return
	}

	trimmed := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(trimmed, "/")
	if bucket != f.bucket {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if key == "" {
		f.serveBucket(w, r)
		return
	}
	if !f.created {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if f.failMethod[r.Method] {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		obj, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		for name, values := range obj.header {
			w.Header()[name] = values
		}
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(obj.data)
		}
	case http.MethodPut:
		if r.Header.Get("If-None-Match") == "*" {
			if _, exists := f.objects[key]; exists {
				w.WriteHeader(http.StatusPreconditionFailed)
				return
			}
		}
		data, _ := io.ReadAll(r.Body)
		header := http.Header{}
		for name, values := range r.Header {
			if strings.HasPrefix(name, "X-Amz-Meta-") || name == "Content-Encoding" || name == "Content-Type" {
				header[name] = values
			}
		}
		f.objects[key] = fakeObject{data: data, header: header}
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) serveBucket(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		if !f.created {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		f.created = true
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		prefix := r.URL.Query().Get("prefix")
		var result listBucketResult
		for key := range f.objects {
			if strings.HasPrefix(key, prefix) {
				result.Contents = append(result.Contents, listBucketContent{Key: key})
			}
		}
		w.WriteHeader(http.StatusOK)
		_ = xml.NewEncoder(w).Encode(struct {
			XMLName xml.Name `xml:"ListBucketResult"`
			listBucketResult
		}{listBucketResult: result})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
