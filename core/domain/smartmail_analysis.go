package domain

import (
	"strings"
	"time"
)

// Tone represents the emotional valence of a message
type Tone string

const (
	TonePositive Tone = "Positive"
	ToneNegative Tone = "Negative"
	ToneNeutral  Tone = "Neutral"
	ToneUrgent   Tone = "Urgent" // time-pressured without emotional charge
)

// Urgency represents how time-sensitive a message is
type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

// AnalysisRequest is the input to the analysis pipeline.
type AnalysisRequest struct {
	Text    string `json:"text"`
	Subject string `json:"subject,omitempty"`
	Source  string `json:"source,omitempty"` // e.g. "salesiq-bot", "zoho-mail", "api"
}

// FullText combines subject and body the way the inbox sync feeds the pipeline.
func (r AnalysisRequest) FullText() string {
	if r.Subject == "" {
		return strings.TrimSpace(r.Text)
	}
	return strings.TrimSpace(r.Subject + "\n\n" + r.Text)
}

// Classification is the combined tone/urgency verdict of the classifier stage.
// Confidence is only set when the remote sentiment model decided the tone.
type Classification struct {
	Tone       Tone     `json:"tone"`
	Urgency    Urgency  `json:"urgency"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Normalize applies the override policy: a highly urgent message with no
// emotional charge is reported as Urgent rather than Neutral.
func (c Classification) Normalize() Classification {
	if c.Tone == ToneNeutral && c.Urgency == UrgencyHigh {
		c.Tone = ToneUrgent
	}
	return c
}

// AnalysisResult is the immutable output of one pipeline run.
type AnalysisResult struct {
	Summary        string   `json:"summary"`
	Tone           Tone     `json:"tone"`
	Urgency        Urgency  `json:"urgency"`
	KeyPoints      []string `json:"key_points"`
	SuggestedReply string   `json:"suggested_reply"`
}

// AnalysisRecord is an AnalysisResult plus the metadata persisted for the
// dashboard. MessageID is empty for webhook/bot traffic.
type AnalysisRecord struct {
	ID             string    `json:"id" db:"id"`
	MessageID      string    `json:"message_id,omitempty" db:"message_id"`
	Subject        string    `json:"subject,omitempty" db:"subject"`
	FromAddress    string    `json:"from,omitempty" db:"from_address"`
	Source         string    `json:"source" db:"source"`
	Summary        string    `json:"summary" db:"summary"`
	Tone           Tone      `json:"tone" db:"tone"`
	Urgency        Urgency   `json:"urgency" db:"urgency"`
	KeyPoints      []string  `json:"key_points" db:"-"`
	SuggestedReply string    `json:"suggested_reply" db:"suggested_reply"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// AnalysisStats backs the dashboard overview card.
type AnalysisStats struct {
	Total       int               `json:"total"`
	HighUrgency int               `json:"high_urgency"`
	Negative    int               `json:"negative"`
	Positive    int               `json:"positive"`
	Neutral     int               `json:"neutral"`
	Recent      []*AnalysisRecord `json:"recent"`
}

// InboxMessage is a mailbox list entry as the mail provider reports it.
type InboxMessage struct {
	MessageID   string `json:"message_id"`
	Subject     string `json:"subject"`
	FromAddress string `json:"from,omitempty"`
}

// MessageContent is a fetched message body; Body has HTML already stripped.
type MessageContent struct {
	MessageID   string `json:"message_id"`
	Subject     string `json:"subject"`
	FromAddress string `json:"from"`
	Body        string `json:"body"`
	RawBody     string `json:"-"` // original (possibly HTML) body, archived as-is
}
