package dto

import "time"

// QueryRequest is one conversational turn. SessionId is optional: the first
// turn may omit it and the server mints one. Every response echoes the
// session id back, and the client must resend it to keep the conversation.
type QueryRequest struct {
	SessionId string `json:"session_id"`
	Query     string `json:"query" validate:"required,max=2000"`
	Debug     bool   `json:"debug,omitempty"`
}

type ProductResultDTO struct {
	Id       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category,omitempty"`
	Gender   string  `json:"gender,omitempty"`
	Brand    string  `json:"brand,omitempty"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
	URL      string  `json:"url,omitempty"`
	Score    float64 `json:"score"`
}

type SourceDTO struct {
	Id      string  `json:"id"`
	Title   string  `json:"title,omitempty"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// QueryDebug is only populated when the request sets debug=true.
type QueryDebug struct {
	Intent     string  `json:"intent"`
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
	ElapsedMs  int64   `json:"elapsed_ms"`
}

type QueryResponse struct {
	SessionId         string             `json:"session_id"`
	Answer            string             `json:"answer"`
	Products          []ProductResultDTO `json:"products"`
	Sources           []SourceDTO        `json:"sources"`
	FollowUpQuestions []string           `json:"follow_up_questions"`
	Debug             *QueryDebug        `json:"debug,omitempty"`
}

type ChatTurnDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Intent    string    `json:"intent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionHistoryResponse struct {
	SessionId   string            `json:"session_id"`
	Messages    []ChatTurnDTO     `json:"messages"`
	Preferences map[string]string `json:"preferences,omitempty"`
}
