package memory

import (
	"context"
	"fmt"
	"io"
	"sync"
)

type object struct {
	data        []byte
	contentType string
}

// Files is an in-process object store. Its public URLs are served by the
// router's /files route.
type Files struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]object
}

// NewFiles creates a store whose public URLs start with baseURL.
func NewFiles(baseURL string) *Files {
	return &Files{baseURL: baseURL, objects: make(map[string]object)}
}

func (f *Files) Upload(ctx context.Context, bucket, name, contentType string, body io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.objects[bucket+"/"+name] = object{data: data, contentType: contentType}
	f.mu.Unlock()
	return nil
}

func (f *Files) PublicURL(bucket, name string) string {
	return fmt.Sprintf("%s/%s/%s", f.baseURL, bucket, name)
}

// Object returns a stored file and the content type it was uploaded with.
func (f *Files) Object(bucket, name string) ([]byte, string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	obj, ok := f.objects[bucket+"/"+name]
	return obj.data, obj.contentType, ok
}
