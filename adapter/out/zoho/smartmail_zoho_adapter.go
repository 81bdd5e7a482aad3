// Package zoho implements the mailbox read boundary over the Zoho Mail REST
// API.
package zoho

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"

	"smartmail_server/core/domain"
	"smartmail_server/pkg/httputil"
	"smartmail_server/pkg/logger"
)

// Config configures the Zoho Mail adapter.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccountsURL  string // e.g. https://accounts.zoho.com
	BaseURL      string // e.g. https://mail.zoho.com/api
	AccountID    string // optional; auto-detected when empty
	CacheTTL     time.Duration
	ListLimit    int // default list size when callers pass none
}

// listEntry is one cached inbox row. Subject is display-truncated; FullSubject
// keeps the original so partial matches still resolve.
type listEntry struct {
	Subject     string
	FullSubject string
	MessageID   string
	FromAddress string
}

// Adapter implements out.MailProvider. All remote calls run through a circuit
// breaker so a flapping Zoho API degrades to cached data instead of hammering
// the endpoint.
type Adapter struct {
	config  Config
	http    *http.Client
	tokens  oauth2.TokenSource
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger

	mu          sync.Mutex
	accountID   string
	listCache   []listEntry
	listFetched time.Time
}

// NewAdapter creates the adapter. The refresh-token source is wrapped in
// ReuseTokenSource, which caches the access token until expiry and refreshes
// it concurrently-safely on demand.
func NewAdapter(cfg Config) *Adapter {
	if cfg.AccountsURL == "" {
		cfg.AccountsURL = "https://accounts.zoho.com"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://mail.zoho.com/api"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 10
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.AccountsURL + "/oauth/v2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httputil.ZohoClient())
	source := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "zoho-mail",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Adapter{
		config:  cfg,
		http:    httputil.ZohoClient(),
		tokens:  oauth2.ReuseTokenSource(nil, source),
		breaker: breaker,
		log:     logger.Default().WithField("adapter", "zoho"),
		accountID: cfg.AccountID,
	}
}

// ListRecent implements out.MailProvider. It refreshes the subject cache as a
// side effect.
func (a *Adapter) ListRecent(ctx context.Context, limit int) ([]domain.InboxMessage, error) {
	if limit <= 0 {
		limit = a.config.ListLimit
	}

	entries, err := a.fetchList(ctx, limit)
	if err != nil {
		return nil, err
	}

	messages := make([]domain.InboxMessage, len(entries))
	for i, e := range entries {
		messages[i] = domain.InboxMessage{
			MessageID:   e.MessageID,
			Subject:     e.FullSubject,
			FromAddress: e.FromAddress,
		}
	}
	return messages, nil
}

// GetContent implements out.MailProvider. Body field names vary across Zoho
// API versions, so content, body and contentText are all tried.
func (a *Adapter) GetContent(ctx context.Context, messageID string) (*domain.MessageContent, error) {
	accountID, err := a.resolveAccountID(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/accounts/%s/messages/%s/content", a.config.BaseURL, accountID, url.PathEscape(messageID))
	body, err := a.get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			Subject     string `json:"subject"`
			FromAddress string `json:"fromAddress"`
			Content     string `json:"content"`
			Body        string `json:"body"`
			ContentText string `json:"contentText"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode message content: %w", err)
	}

	raw := resp.Data.Content
	if raw == "" {
		raw = resp.Data.Body
	}
	if raw == "" {
		raw = resp.Data.ContentText
	}

	return &domain.MessageContent{
		MessageID:   messageID,
		Subject:     resp.Data.Subject,
		FromAddress: resp.Data.FromAddress,
		Body:        stripHTML(raw),
		RawBody:     raw,
	}, nil
}

// FindMessageIDBySubject implements out.MailProvider: cache match first
// (refetching when the cache is cold), remote subject search as the fallback.
func (a *Adapter) FindMessageIDBySubject(ctx context.Context, userText string) (string, error) {
	a.mu.Lock()
	stale := len(a.listCache) == 0 || time.Since(a.listFetched) > a.config.CacheTTL
	entries := a.listCache
	a.mu.Unlock()

	if stale {
		if fresh, err := a.fetchList(ctx, a.config.ListLimit); err == nil {
			entries = fresh
		} else {
			a.log.WithError(err).Debug("list refetch failed, matching against stale cache")
		}
	}

	if id := matchSubject(entries, userText); id != "" {
		return id, nil
	}

	accountID, err := a.resolveAccountID(ctx)
	if err != nil {
		return "", err
	}

	endpoint := a.config.BaseURL + "/accounts/" + accountID + "/messages/search"
	body, err := a.get(ctx, endpoint, url.Values{
		"searchKey":   {"subject"},
		"searchValue": {userText},
		"limit":       {"1"},
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		Data []struct {
			MessageID json.Number `json:"messageId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", nil
	}
	return resp.Data[0].MessageID.String(), nil
}

// fetchList loads the latest inbox rows and refreshes the subject cache.
func (a *Adapter) fetchList(ctx context.Context, limit int) ([]listEntry, error) {
	accountID, err := a.resolveAccountID(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := a.config.BaseURL + "/accounts/" + accountID + "/messages/view"
	body, err := a.get(ctx, endpoint, url.Values{
		"limit":     {fmt.Sprint(limit)},
		"sortorder": {"false"},
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			MessageID   json.Number `json:"messageId"`
			Subject     string      `json:"subject"`
			FromAddress string      `json:"fromAddress"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode message list: %w", err)
	}

	entries := make([]listEntry, 0, len(resp.Data))
	for _, m := range resp.Data {
		subject := m.Subject
		if subject == "" {
			subject = "No Subject"
		}
		entries = append(entries, listEntry{
			Subject:     truncateSubject(subject, 25),
			FullSubject: subject,
			MessageID:   m.MessageID.String(),
			FromAddress: m.FromAddress,
		})
	}

	a.mu.Lock()
	a.listCache = entries
	a.listFetched = time.Now()
	a.mu.Unlock()

	return entries, nil
}

// resolveAccountID returns the configured account ID or auto-detects it from
// the accounts endpoint, caching the answer.
func (a *Adapter) resolveAccountID(ctx context.Context) (string, error) {
	a.mu.Lock()
	cached := a.accountID
	a.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	body, err := a.get(ctx, a.config.BaseURL+"/accounts", nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		Data []struct {
			AccountID json.Number `json:"accountId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode accounts response: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", errors.New("no Zoho mail accounts visible to this token")
	}

	id := resp.Data[0].AccountID.String()
	a.mu.Lock()
	a.accountID = id
	a.mu.Unlock()
	return id, nil
}

// get performs an authorized GET through the circuit breaker.
func (a *Adapter) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	result, err := a.breaker.Execute(func() (interface{}, error) {
		token, err := a.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("zoho token refresh: %w", err)
		}

		reqURL := endpoint
		if len(query) > 0 {
			reqURL += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Zoho-oauthtoken "+token.AccessToken)

		resp, err := a.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			// A 400 usually means a stale auto-detected account ID.
			if resp.StatusCode == http.StatusBadRequest {
				a.mu.Lock()
				if a.config.AccountID == "" {
					a.accountID = ""
				}
				a.mu.Unlock()
			}
			return nil, fmt.Errorf("zoho API status %d: %s", resp.StatusCode, truncateSubject(string(body), 200))
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// matchSubject resolves user text against cached entries: exact truncated
// match first, then substring of the full subject.
func matchSubject(entries []listEntry, userText string) string {
	clean := strings.TrimRight(strings.ToLower(strings.TrimSpace(userText)), ".")
	if clean == "" {
		return ""
	}

	for _, e := range entries {
		truncated := strings.TrimRight(strings.ToLower(e.Subject), ".")
		full := strings.ToLower(e.FullSubject)
		if clean == truncated || strings.Contains(full, clean) {
			return e.MessageID
		}
	}
	return ""
}

// truncateSubject cuts s to max runes, appending ".." when cut.
func truncateSubject(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + ".."
}
