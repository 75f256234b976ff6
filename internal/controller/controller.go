package controller

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/phani41/brain-tumor-detection-cnn/internal/inference"
	"github.com/phani41/brain-tumor-detection-cnn/internal/metrics"
	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
	"github.com/phani41/brain-tumor-detection-cnn/internal/preview"
)

type session struct {
	phase      Phase
	mode       Mode
	generation uint64
	prediction *models.PredictionResult
	comparison *models.ComparisonResult
	banner     *Banner
	preview    *preview.Manager
	pending    *models.Upload
	lastSeen   time.Time

	// stage orders preview allocation and Begin so the shown preview always belongs to the newest ticket.
	stage sync.Mutex
}

// Controller owns the UI state of every page session.
type Controller struct {
	logger        *zap.Logger
	store         *preview.Store
	bannerDismiss time.Duration
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func New(logger *zap.Logger, store *preview.Store, bannerDismiss time.Duration) *Controller {
	return &Controller{
		logger:        logger.Named("controller"),
		store:         store,
		bannerDismiss: bannerDismiss,
		now:           time.Now,
		sessions:      make(map[string]*session),
	}
}

// Begin starts an upload flow. Any earlier flow of the session becomes stale.
func (c *Controller) Begin(sessionID string, mode Mode) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.sessionLocked(sessionID)
	s.generation++
	s.phase = PhaseUploading
	s.mode = mode
	s.prediction = nil
	s.comparison = nil
	s.banner = nil
	s.pending = nil

	return Ticket{SessionID: sessionID, Generation: s.generation, Mode: mode}
}

// Complete records a successful response. It returns false and changes nothing if t is stale.
func (c *Controller) Complete(t Ticket, out Outcome) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.currentLocked(t)
	if !ok {
		return false
	}
	s.phase = PhaseSuccess
	switch t.Mode {
	case ModeCompare:
		s.comparison = out.Comparison
	default:
		s.prediction = out.Prediction
	}
	return true
}

// Fail records a failed request. It returns false and changes nothing if t is stale.
func (c *Controller) Fail(t Ticket, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.currentLocked(t)
	if !ok {
		return false
	}
	s.phase = PhaseError
	s.banner = c.bannerLocked(err)
	return true
}

// Notify raises a banner without touching the phase or the shown result.
func (c *Controller) Notify(sessionID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.sessionLocked(sessionID)
	s.banner = c.bannerLocked(err)
}

// Stage shows upload as the session's preview and begins a flow for it. The
// upload is held until Take hands it to the classification request.
// An unusable upload changes nothing.
func (c *Controller) Stage(sessionID string, mode Mode, upload models.Upload) (Ticket, error) {
	c.mu.Lock()
	s := c.sessionLocked(sessionID)
	c.mu.Unlock()

	s.stage.Lock()
	defer s.stage.Unlock()

	if _, err := s.preview.SetPreview(upload); err != nil {
		return Ticket{}, err
	}

	t := c.Begin(sessionID, mode)

	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.sessions[sessionID]; !ok || cur != s {
		// torn down while staging
		s.preview.Release()
		return t, nil
	}
	if s.generation == t.Generation {
		s.pending = &upload
	}
	return t, nil
}

// Take returns the staged upload of generation and forgets it. It reports false
// when generation is no longer the newest flow or was already taken.
func (c *Controller) Take(sessionID string, generation uint64) (Ticket, models.Upload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[sessionID]
	if !ok || s.generation != generation || s.pending == nil {
		return Ticket{}, models.Upload{}, false
	}
	upload := *s.pending
	s.pending = nil
	s.lastSeen = c.now()
	return Ticket{SessionID: sessionID, Generation: generation, Mode: s.mode}, upload, true
}

// Snapshot copies the session state. Expired banners are dropped and an expired error returns to idle.
func (c *Controller) Snapshot(sessionID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[sessionID]
	if !ok {
		return State{SessionID: sessionID, Phase: PhaseIdle, Mode: ModePredict}
	}
	s.lastSeen = c.now()

	if s.banner != nil && !s.banner.ExpiresAt.After(s.lastSeen) {
		s.banner = nil
		if s.phase == PhaseError {
			s.phase = PhaseIdle
		}
	}

	state := State{
		SessionID:  sessionID,
		Phase:      s.phase,
		Mode:       s.mode,
		Generation: s.generation,
		Prediction: s.prediction,
		Comparison: s.comparison,
		PreviewURI: s.preview.Current(),
	}
	if s.banner != nil {
		banner := *s.banner
		state.Banner = &banner
	}
	return state
}

// Teardown releases the session's preview and forgets it.
func (c *Controller) Teardown(sessionID string) {
	c.mu.Lock()
	s, ok := c.sessions[sessionID]
	delete(c.sessions, sessionID)
	c.mu.Unlock()

	if ok {
		s.preview.Release()
	}
}

// Sweep tears down sessions idle for longer than maxIdle and returns how many it removed.
func (c *Controller) Sweep(maxIdle time.Duration) int {
	cutoff := c.now().Add(-maxIdle)

	c.mu.Lock()
	var idle []*session
	for id, s := range c.sessions {
		if s.lastSeen.Before(cutoff) {
			idle = append(idle, s)
			delete(c.sessions, id)
		}
	}
	c.mu.Unlock()

	for _, s := range idle {
		s.preview.Release()
	}
	return len(idle)
}

// RunJanitor sweeps idle sessions on schedule until ctx is done.
func (c *Controller) RunJanitor(ctx context.Context, schedule cron.Schedule, maxIdle time.Duration) {
	for {
		now := time.Now()
		timer := time.NewTimer(schedule.Next(now).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if n := c.Sweep(maxIdle); n > 0 {
				c.logger.Info("released idle sessions", zap.Int("count", n), zap.Int("previews_live", c.store.Live()))
			}
		}
	}
}

func (c *Controller) Sessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *Controller) sessionLocked(sessionID string) *session {
	s, ok := c.sessions[sessionID]
	if !ok {
		s = &session{
			phase:   PhaseIdle,
			mode:    ModePredict,
			preview: preview.NewManager(c.store),
		}
		c.sessions[sessionID] = s
	}
	s.lastSeen = c.now()
	return s
}

func (c *Controller) currentLocked(t Ticket) (*session, bool) {
	s, ok := c.sessions[t.SessionID]
	if !ok || s.generation != t.Generation {
		metrics.StaleResponse(string(t.Mode))
		c.logger.Debug("dropped stale response",
			zap.String("session_id", t.SessionID),
			zap.Uint64("generation", t.Generation),
		)
		return nil, false
	}
	s.lastSeen = c.now()
	return s, true
}

func (c *Controller) bannerLocked(err error) *Banner {
	return &Banner{
		Kind:         inference.ClassifyError(err).String(),
		Message:      Message(err),
		DismissAfter: c.bannerDismiss,
		ExpiresAt:    c.now().Add(c.bannerDismiss),
	}
}
