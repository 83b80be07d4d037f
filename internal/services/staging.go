package services

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lamyda/lamyda-backend/internal/logger"
)

// TempImage is a client-held binary referenced inline in a rich-text body
// that is still being composed. It never reaches durable storage directly;
// the assembly orchestrator promotes it once the owning process exists.
type TempImage struct {
	LocalID    string
	FileName   string
	MimeType   string
	Data       []byte
	PreviewURL string
}

// TempImageStore buffers pending inline images for one composing session.
// Insertion order is preserved; losing the session loses the pending set.
type TempImageStore struct {
	log      *logger.Logger
	mu       sync.Mutex
	images   []*TempImage
	onChange func(count int)
}

func NewTempImageStore(baseLog *logger.Logger) *TempImageStore {
	return &TempImageStore{log: baseLog.With("service", "TempImageStore")}
}

// SetOnChange registers the callback fired whenever the pending set changes,
// so the composing form knows there are assets to promote later.
func (s *TempImageStore) SetOnChange(fn func(count int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *TempImageStore) Add(fileName, mimeType string, file io.Reader) (*TempImage, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp image %q: %w", fileName, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("temp image %q is empty", fileName)
	}

	img := &TempImage{
		LocalID:    newLocalID(),
		FileName:   fileName,
		MimeType:   mimeType,
		Data:       data,
		PreviewURL: fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)),
	}

	s.mu.Lock()
	s.images = append(s.images, img)
	count := len(s.images)
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(count)
	}
	return img, nil
}

// Remove strikes the image with the given local id; absent ids are a no-op.
func (s *TempImageStore) Remove(localID string) {
	s.mu.Lock()
	var fn func(int)
	var count int
	for i, img := range s.images {
		if img.LocalID == localID {
			s.images = append(s.images[:i], s.images[i+1:]...)
			count = len(s.images)
			fn = s.onChange
			break
		}
	}
	s.mu.Unlock()

	if fn != nil {
		fn(count)
	}
}

// List returns the pending images in insertion order.
func (s *TempImageStore) List() []*TempImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*TempImage, len(s.images))
	copy(out, s.images)
	return out
}

func (s *TempImageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// newLocalID builds a session-unique id: millisecond timestamp plus a random
// suffix to avoid collision within a burst of adds.
func newLocalID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
