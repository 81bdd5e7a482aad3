package http

import (
	"context"
	"errors"

	"smartmail_server/core/domain"
)

// fixedPipeline returns a canned result for any input and records the last
// request it saw.
type fixedPipeline struct {
	lastReq domain.AnalysisRequest
	calls   int
}

func (p *fixedPipeline) Analyze(_ context.Context, req domain.AnalysisRequest) *domain.AnalysisResult {
	p.lastReq = req
	p.calls++
	return &domain.AnalysisResult{
		Summary:        "Server is down again.",
		Tone:           domain.ToneUrgent,
		Urgency:        domain.UrgencyHigh,
		KeyPoints:      []string{"Please restart the server."},
		SuggestedReply: "Thanks for flagging this, we are on it.",
	}
}

type fakeSync struct {
	rec     *domain.AnalysisRecord
	err     error
	lastID  string
	syncErr error
}

func (s *fakeSync) SyncInbox(context.Context, int) (int, int, error) {
	if s.syncErr != nil {
		return 0, 0, s.syncErr
	}
	return 3, 2, nil
}

func (s *fakeSync) AnalyzeMessage(_ context.Context, id string) (*domain.AnalysisRecord, error) {
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return s.rec, nil
}

type fakeMail struct {
	messages []domain.InboxMessage
	err      error
}

func (m *fakeMail) ListRecent(context.Context, int) ([]domain.InboxMessage, error) {
	return m.messages, m.err
}

func (m *fakeMail) GetContent(context.Context, string) (*domain.MessageContent, error) {
	return nil, errors.New("not used")
}

func (m *fakeMail) FindMessageIDBySubject(context.Context, string) (string, error) {
	return "", errors.New("not used")
}
