package preview

import (
	"strings"
	"sync"

	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

const URIPrefix = "/previews/"

// Manager owns at most one preview for a page session.
type Manager struct {
	store *Store

	mu      sync.Mutex
	current string
	revoked int
}

func NewManager(store *Store) *Manager {
	return &Manager{store: store}
}

// SetPreview revokes the active preview, then allocates one for upload and returns its URI.
// An unusable upload leaves the active preview in place.
func (m *Manager) SetPreview(upload models.Upload) (string, error) {
	if err := upload.Validate(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.releaseLocked()

	id, err := m.store.Create(upload)
	if err != nil {
		return "", err
	}
	m.current = id
	return URI(id), nil
}

// Release revokes the active preview, if any.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked()
}

// Current returns the URI of the active preview or "".
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == "" {
		return ""
	}
	return URI(m.current)
}

// Revoked counts previews this manager has released.
func (m *Manager) Revoked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked
}

func (m *Manager) releaseLocked() {
	if m.current == "" {
		return
	}
	if m.store.Revoke(m.current) {
		m.revoked++
	}
	m.current = ""
}

func URI(id string) string {
	return URIPrefix + id
}

// IDFromURI is the inverse of URI.
func IDFromURI(uri string) (string, bool) {
	id, ok := strings.CutPrefix(uri, URIPrefix)
	return id, ok && id != ""
}
