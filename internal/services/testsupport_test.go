package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lamyda/lamyda-backend/internal/logger"
	"github.com/lamyda/lamyda-backend/internal/types"
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("logger.New: %v", err)
	}
	return log
}

// fakeBucket records uploads and deletes in memory. failUpload, when set, is
// consulted per key.
type fakeBucket struct {
	mu         sync.Mutex
	uploads    map[string][]byte
	deletes    []string
	failUpload func(key string) error
	failDelete error
	publicURL  func(key string) string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{uploads: map[string][]byte{}}
}

func (b *fakeBucket) UploadFile(_ context.Context, key string, file io.Reader) error {
	if b.failUpload != nil {
		if err := b.failUpload(key); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.uploads[key] = data
	b.mu.Unlock()
	return nil
}

func (b *fakeBucket) DeleteFile(_ context.Context, key string) error {
	if b.failDelete != nil {
		return b.failDelete
	}
	b.mu.Lock()
	b.deletes = append(b.deletes, key)
	delete(b.uploads, key)
	b.mu.Unlock()
	return nil
}

func (b *fakeBucket) GetPublicURL(key string) string {
	if b.publicURL != nil {
		return b.publicURL(key)
	}
	return "https://store/" + key
}

// fakeDocumentRepo keeps created rows in memory.
type fakeDocumentRepo struct {
	created    []*types.Document
	failCreate error
}

func (r *fakeDocumentRepo) Create(_ context.Context, _ *gorm.DB, document *types.Document) (*types.Document, error) {
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	r.created = append(r.created, document)
	return document, nil
}

func (r *fakeDocumentRepo) ListByProcessID(_ context.Context, _ *gorm.DB, processID uuid.UUID) ([]*types.Document, error) {
	var out []*types.Document
	for _, d := range r.created {
		if d.ProcessID == processID {
			out = append(out, d)
		}
	}
	return out, nil
}

// fakeProcessRepo keeps created rows and recorded field updates.
type fakeProcessRepo struct {
	created    []*types.Process
	updates    []map[string]interface{}
	listResult []*types.Process
	failCreate error
	failList   error
	failUpdate error
}

func (r *fakeProcessRepo) Create(_ context.Context, _ *gorm.DB, process *types.Process) (*types.Process, error) {
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	r.created = append(r.created, process)
	return process, nil
}

func (r *fakeProcessRepo) ListActiveByCompanyID(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.Process, error) {
	if r.failList != nil {
		return nil, r.failList
	}
	return r.listResult, nil
}

func (r *fakeProcessRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Process, error) {
	for _, p := range r.created {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProcessRepo) UpdateFields(_ context.Context, _ *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	recorded := map[string]interface{}{"_id": id}
	for k, v := range updates {
		recorded[k] = v
	}
	r.updates = append(r.updates, recorded)
	return nil
}

// scriptedDocumentService returns canned results per Promote call, in order.
type scriptedDocumentService struct {
	calls   []PromoteInput
	results []promoteResult
}

type promoteResult struct {
	doc *types.Document
	err error
}

func (s *scriptedDocumentService) Promote(_ context.Context, in PromoteInput) (*types.Document, error) {
	idx := len(s.calls)
	s.calls = append(s.calls, in)
	if idx >= len(s.results) {
		return nil, fmt.Errorf("unscripted promote call %d", idx)
	}
	res := s.results[idx]
	return res.doc, res.err
}

func (s *scriptedDocumentService) ListByProcess(_ context.Context, _ uuid.UUID) ([]*types.Document, error) {
	return nil, nil
}

func promoted(url string) promoteResult {
	return promoteResult{doc: &types.Document{ID: uuid.New(), FileURL: url}}
}

func promoteFailed(err error) promoteResult {
	return promoteResult{err: err}
}

// fakeListingCache counts invalidations and optionally serves a snapshot.
type fakeListingCache struct {
	snapshot      []*types.Process
	hasSnapshot   bool
	sets          int
	invalidations int
}

func (c *fakeListingCache) Get(_ context.Context, _ uuid.UUID) ([]*types.Process, bool) {
	return c.snapshot, c.hasSnapshot
}

func (c *fakeListingCache) Set(_ context.Context, _ uuid.UUID, snapshot []*types.Process) {
	c.sets++
	c.snapshot = snapshot
	c.hasSnapshot = true
}

func (c *fakeListingCache) Invalidate(_ context.Context, _ uuid.UUID) {
	c.invalidations++
	c.snapshot = nil
	c.hasSnapshot = false
}
