package preview

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phani41/brain-tumor-detection-cnn/internal/metrics"
	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

// Blob is a live preview resource.
type Blob struct {
	ID          string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// Store holds every live preview in the process. A preview lives until it is revoked.
type Store struct {
	mu    sync.RWMutex
	blobs map[string]*Blob
}

func NewStore() *Store {
	return &Store{
		blobs: make(map[string]*Blob),
	}
}

func (s *Store) Create(upload models.Upload) (string, error) {
	if err := upload.Validate(); err != nil {
		return "", err
	}

	contentType, data := thumbnail(upload)
	blob := &Blob{
		ID:          uuid.NewString(),
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.blobs[blob.ID] = blob
	live := len(s.blobs)
	s.mu.Unlock()

	metrics.PreviewLive(live)
	return blob.ID, nil
}

func (s *Store) Get(id string) (*Blob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[id]
	return blob, ok
}

// Revoke releases a preview. It reports whether the id was live.
func (s *Store) Revoke(id string) bool {
	s.mu.Lock()
	_, ok := s.blobs[id]
	delete(s.blobs, id)
	live := len(s.blobs)
	s.mu.Unlock()

	if ok {
		metrics.PreviewLive(live)
	}
	return ok
}

func (s *Store) Live() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
