package mailsync

import (
	"context"
	"errors"
	"testing"

	"smartmail_server/core/domain"
	"smartmail_server/core/service/analysis"
)

type fakeMail struct {
	messages []domain.InboxMessage
	contents map[string]*domain.MessageContent
	listErr  error

	getCalls []string
}

func (f *fakeMail) ListRecent(_ context.Context, limit int) ([]domain.InboxMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.messages) > limit {
		return f.messages[:limit], nil
	}
	return f.messages, nil
}

func (f *fakeMail) GetContent(_ context.Context, messageID string) (*domain.MessageContent, error) {
	f.getCalls = append(f.getCalls, messageID)
	c, ok := f.contents[messageID]
	if !ok {
		return nil, errors.New("no such message")
	}
	return c, nil
}

func (f *fakeMail) FindMessageIDBySubject(_ context.Context, _ string) (string, error) {
	return "", nil
}

type fakeSeen struct {
	seen   map[string]bool
	marked []string
	err    error
}

func (f *fakeSeen) Seen(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.seen[id], nil
}

func (f *fakeSeen) MarkSeen(_ context.Context, id string) error {
	f.marked = append(f.marked, id)
	return nil
}

type fakeRepo struct {
	saved  []*domain.AnalysisRecord
	exists map[string]bool
}

func (f *fakeRepo) Save(_ context.Context, rec *domain.AnalysisRecord) error {
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, _ string) (*domain.AnalysisRecord, error) {
	return nil, nil
}

func (f *fakeRepo) List(_ context.Context, _ int) ([]*domain.AnalysisRecord, error) {
	return nil, nil
}

func (f *fakeRepo) Stats(_ context.Context, _ int) (*domain.AnalysisStats, error) {
	return nil, nil
}

func (f *fakeRepo) ExistsMessage(_ context.Context, id string) (bool, error) {
	return f.exists[id], nil
}

type fixedPipeline struct{}

func (fixedPipeline) Analyze(_ context.Context, _ domain.AnalysisRequest) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Summary:        "summary",
		Tone:           domain.ToneNeutral,
		Urgency:        domain.UrgencyLow,
		KeyPoints:      []string{},
		SuggestedReply: "reply",
	}
}

func newTestService(mail *fakeMail, repo *fakeRepo, seen *fakeSeen) *Service {
	return NewService(mail, fixedPipeline{}, analysis.NewRecorder(repo, nil), repo, seen)
}

func TestSyncInboxSkipsSeenMessages(t *testing.T) {
	mail := &fakeMail{
		messages: []domain.InboxMessage{
			{MessageID: "m1", Subject: "first"},
			{MessageID: "m2", Subject: "second"},
			{MessageID: "m3", Subject: "third"},
		},
		contents: map[string]*domain.MessageContent{
			"m1": {MessageID: "m1", Subject: "first", Body: "please review the plan"},
			"m3": {MessageID: "m3", Subject: "third", Body: "thanks for the update"},
		},
	}
	seen := &fakeSeen{seen: map[string]bool{"m2": true}}
	repo := &fakeRepo{exists: map[string]bool{}}

	s := newTestService(mail, repo, seen)
	processed, skipped, err := s.SyncInbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("SyncInbox error: %v", err)
	}
	if processed != 2 || skipped != 1 {
		t.Errorf("SyncInbox = (%d, %d), want (2, 1)", processed, skipped)
	}
	if len(repo.saved) != 2 {
		t.Errorf("saved %d records, want 2", len(repo.saved))
	}
	for _, id := range mail.getCalls {
		if id == "m2" {
			t.Error("fetched content for already-seen message m2")
		}
	}
}

func TestSyncInboxRepositoryFallbackDedupe(t *testing.T) {
	mail := &fakeMail{
		messages: []domain.InboxMessage{{MessageID: "m1", Subject: "first"}},
		contents: map[string]*domain.MessageContent{},
	}
	seen := &fakeSeen{err: errors.New("redis down")}
	repo := &fakeRepo{exists: map[string]bool{"m1": true}}

	s := newTestService(mail, repo, seen)
	processed, skipped, err := s.SyncInbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("SyncInbox error: %v", err)
	}
	if processed != 0 || skipped != 1 {
		t.Errorf("SyncInbox = (%d, %d), want (0, 1) via repository fallback", processed, skipped)
	}
}

func TestSyncInboxContinuesPastFailures(t *testing.T) {
	mail := &fakeMail{
		messages: []domain.InboxMessage{
			{MessageID: "bad"},
			{MessageID: "good"},
		},
		contents: map[string]*domain.MessageContent{
			"good": {MessageID: "good", Subject: "ok", Body: "all fine here"},
		},
	}
	repo := &fakeRepo{exists: map[string]bool{}}

	s := newTestService(mail, repo, &fakeSeen{seen: map[string]bool{}})
	processed, skipped, err := s.SyncInbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("SyncInbox error: %v", err)
	}
	if processed != 1 || skipped != 0 {
		t.Errorf("SyncInbox = (%d, %d), want (1, 0)", processed, skipped)
	}
}

func TestSyncInboxListFailure(t *testing.T) {
	mail := &fakeMail{listErr: errors.New("zoho unavailable")}
	s := newTestService(mail, &fakeRepo{}, &fakeSeen{seen: map[string]bool{}})

	if _, _, err := s.SyncInbox(context.Background(), 10); err == nil {
		t.Error("SyncInbox = nil error, want listing failure surfaced")
	}
}

func TestAnalyzeMessage(t *testing.T) {
	mail := &fakeMail{
		contents: map[string]*domain.MessageContent{
			"m9": {MessageID: "m9", Subject: "invoice", FromAddress: "a@b.c", Body: "please pay the invoice"},
		},
	}
	repo := &fakeRepo{exists: map[string]bool{}}
	seen := &fakeSeen{seen: map[string]bool{}}

	s := newTestService(mail, repo, seen)
	rec, err := s.AnalyzeMessage(context.Background(), "m9")
	if err != nil {
		t.Fatalf("AnalyzeMessage error: %v", err)
	}
	if rec.MessageID != "m9" || rec.Subject != "invoice" {
		t.Errorf("record metadata = (%s, %s), want (m9, invoice)", rec.MessageID, rec.Subject)
	}
	if rec.ID == "" {
		t.Error("record ID not assigned")
	}
	if len(seen.marked) != 1 || seen.marked[0] != "m9" {
		t.Errorf("marked = %v, want [m9]", seen.marked)
	}
}

func TestAnalyzeMessageEmptyID(t *testing.T) {
	s := newTestService(&fakeMail{}, &fakeRepo{}, &fakeSeen{})
	if _, err := s.AnalyzeMessage(context.Background(), ""); err == nil {
		t.Error("AnalyzeMessage(\"\") = nil error, want validation failure")
	}
}
