package memory

import (
	"time"

	"incident-reporting-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository holds the active recording sessions. Entries expire
// after an hour as a leak guard; every autosave re-sets the key, so a
// genuinely live session never ages out.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.RecordingSession) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.RecordingSession, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.RecordingSession), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
