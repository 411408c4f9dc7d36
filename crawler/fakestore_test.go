package crawler

import (
	"context"
	"sync"

	"github.com/codepr/arachne/crawler/store"
)

// fakeStore is an in-memory store.Store used to exercise the worker and
// feeder loops without a real Postgres instance.
type fakeStore struct {
	mu      sync.Mutex
	queue   []store.QueueRow
	pages   []store.Page
	visited map[string]struct{}
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{visited: make(map[string]struct{})}
}

func (f *fakeStore) LoadVisitedURLs(ctx context.Context) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]struct{}, len(f.visited))
	for k := range f.visited {
		out[k] = struct{}{}
	}
	return out, nil
}

func (f *fakeStore) DequeueBatch(ctx context.Context, batchSize int) ([]store.QueueRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return nil, nil
	}
	n := batchSize
	if n > len(f.queue) {
		n = len(f.queue)
	}
	batch := f.queue[:n]
	f.queue = f.queue[n:]
	return batch, nil
}

func (f *fakeStore) SavePage(ctx context.Context, page store.Page, links map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, page)
	for url, domain := range links {
		f.enqueueLocked(domain, url)
	}
	return nil
}

func (f *fakeStore) SaveToQueue(ctx context.Context, domain, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueueLocked(domain, url)
	return nil
}

func (f *fakeStore) enqueueLocked(domain, url string) {
	for _, row := range f.queue {
		if row.URL == url {
			return
		}
	}
	f.nextID++
	f.queue = append(f.queue, store.QueueRow{ID: f.nextID, Domain: domain, URL: url, Timestamp: f.nextID})
}

func (f *fakeStore) Close() {}

func (f *fakeStore) seedQueue(rows ...store.QueueRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, rows...)
}

func (f *fakeStore) pageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pages)
}

func (f *fakeStore) queueLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
