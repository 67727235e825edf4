package store

import "time"

// Message roles stored in session history
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn kept in the session window.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Intent    string    `json:"intent,omitempty"` // resolved intent for user turns
	Timestamp time.Time `json:"timestamp"`
}

// ProductRef is a bounded record of a product surfaced to the user.
type ProductRef struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price,omitempty"`
}

// FlowState tracks the guided product flow within a session.
type FlowState struct {
	CurrentTopic     string            `json:"current_topic,omitempty"`
	CollectedInfo    map[string]string `json:"collected_info,omitempty"`
	PendingQuestions []string          `json:"pending_questions,omitempty"`
}

// Session is the server-held multi-turn conversation state, keyed by the
// server-issued session id. History and RecentProducts are bounded windows;
// Preferences accumulate additively across turns (a partial preference update
// never erases fields it does not mention).
type Session struct {
	ID             string            `json:"id"`
	History        []Message         `json:"history"`
	Preferences    map[string]string `json:"preferences"`
	Flow           FlowState         `json:"flow"`
	RecentProducts []ProductRef      `json:"recent_products"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// HasContext reports whether the session carries prior conversation turns.
func (s *Session) HasContext() bool {
	return s != nil && len(s.History) > 0
}

// LastMessages returns up to n most recent turns, oldest first.
func (s *Session) LastMessages(n int) []Message {
	if s == nil || n <= 0 || len(s.History) == 0 {
		return nil
	}
	if len(s.History) <= n {
		out := make([]Message, len(s.History))
		copy(out, s.History)
		return out
	}
	out := make([]Message, n)
	copy(out, s.History[len(s.History)-n:])
	return out
}

// Clone returns a deep copy safe to read outside the store's locks.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := &Session{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Flow: FlowState{
			CurrentTopic: s.Flow.CurrentTopic,
		},
	}
	if len(s.History) > 0 {
		cp.History = make([]Message, len(s.History))
		copy(cp.History, s.History)
	}
	if len(s.RecentProducts) > 0 {
		cp.RecentProducts = make([]ProductRef, len(s.RecentProducts))
		copy(cp.RecentProducts, s.RecentProducts)
	}
	if s.Preferences != nil {
		cp.Preferences = make(map[string]string, len(s.Preferences))
		for k, v := range s.Preferences {
			cp.Preferences[k] = v
		}
	}
	if s.Flow.CollectedInfo != nil {
		cp.Flow.CollectedInfo = make(map[string]string, len(s.Flow.CollectedInfo))
		for k, v := range s.Flow.CollectedInfo {
			cp.Flow.CollectedInfo[k] = v
		}
	}
	if len(s.Flow.PendingQuestions) > 0 {
		cp.Flow.PendingQuestions = make([]string, len(s.Flow.PendingQuestions))
		copy(cp.Flow.PendingQuestions, s.Flow.PendingQuestions)
	}
	return cp
}

// SessionStore is the injected conversation-state backend. Implementations must
// serialize mutations per session id (no lost updates within one session) while
// letting distinct sessions proceed in parallel. A missing session id is never
// an error: mutating calls create the session, Snapshot returns nil.
type SessionStore interface {
	// Append adds a turn to the session history, trimming to the history
	// window, and returns a snapshot of the updated session.
	Append(sessionID string, msg Message) *Session

	// MergePreferences merges a partial preference set field-additively.
	MergePreferences(sessionID string, prefs map[string]string) *Session

	// RecordProducts appends surfaced products to the bounded interaction log.
	RecordProducts(sessionID string, refs []ProductRef) *Session

	// UpdateFlow replaces the session flow state.
	UpdateFlow(sessionID string, flow FlowState) *Session

	// Snapshot returns a deep copy for read access, or nil if absent.
	Snapshot(sessionID string) *Session

	// Delete removes the session.
	Delete(sessionID string)
}
