package analysis

import (
	"context"

	"smartmail_server/core/domain"
	"smartmail_server/core/port/out"
)

// fakeInference is a scripted InferenceClient for stage tests.
type fakeInference struct {
	summary      string
	summaryErr   error
	scores       []domain.SentimentScore
	sentimentErr error

	summarizeCalls int
	sentimentCalls int
}

func (f *fakeInference) Summarize(_ context.Context, _ string, _ out.SummaryParams) (string, error) {
	f.summarizeCalls++
	return f.summary, f.summaryErr
}

func (f *fakeInference) Sentiment(_ context.Context, _ string) ([]domain.SentimentScore, error) {
	f.sentimentCalls++
	return f.scores, f.sentimentErr
}

// fakeCompletion is a scripted CompletionClient.
type fakeCompletion struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompletion) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func timeoutErr() *domain.ModelCallError {
	return domain.NewModelCallError(domain.FailureTimeout, nil)
}
