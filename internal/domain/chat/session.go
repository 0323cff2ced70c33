package chat

import (
	"math"
	"strings"
	"time"

	"skillswap/internal/domain/user"
)

type SessionID string

type StudySession struct {
	ID          SessionID
	StartTime   time.Time
	EndTime     time.Time
	Duration    int
	Topic       string
	Notes       string
	InitiatedBy user.ID
}

// Active reports whether the session has not been ended yet.
func (s StudySession) Active() bool {
	return s.EndTime.IsZero()
}

func (c *Chat) ActiveSession() (StudySession, bool) {
	for _, s := range c.StudySessions {
		if s.Active() {
			return s, true
		}
	}
	return StudySession{}, false
}

// StartStudySession opens a session. At most one session may be open per chat.
func (c *Chat) StartStudySession(id SessionID, initiatedBy user.ID, topic string, now time.Time) (StudySession, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return StudySession{}, ErrTopicRequired
	}
	if _, open := c.ActiveSession(); open {
		return StudySession{}, ErrSessionActive
	}
	c.touch(now)
	session := StudySession{
		ID:          id,
		StartTime:   c.UpdatedAt,
		Topic:       topic,
		InitiatedBy: initiatedBy,
	}
	c.StudySessions = append(c.StudySessions, session)
	return session, nil
}

// EndStudySession closes the session and adds its rounded minute count to the stats.
func (c *Chat) EndStudySession(id SessionID, notes string, now time.Time) (StudySession, error) {
	idx := -1
	for i := range c.StudySessions {
		if c.StudySessions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return StudySession{}, ErrSessionNotFound
	}
	session := &c.StudySessions[idx]
	if !session.Active() {
		return StudySession{}, ErrSessionEnded
	}
	c.touch(now)
	session.EndTime = c.UpdatedAt
	session.Duration = SessionMinutes(session.StartTime, session.EndTime)
	session.Notes = notes
	c.Stats.TotalStudyTime += session.Duration
	c.Record(StudySessionEnded{ChatID: c.ID, SessionID: id, Duration: session.Duration, At: c.UpdatedAt})
	return *session, nil
}

// SessionMinutes is round((end-start)/60000ms).
func SessionMinutes(start, end time.Time) int {
	ms := end.Sub(start).Milliseconds()
	return int(math.Round(float64(ms) / 60000))
}
