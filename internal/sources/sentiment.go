package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/coinscout/coinscout/internal/cache"
	"github.com/coinscout/coinscout/internal/domain"
	"github.com/coinscout/coinscout/internal/ratelimit"
)

// SentimentMinInterval is the global minimum spacing between outbound
// sentiment requests, shared across all concurrent scans.
const SentimentMinInterval = 2 * time.Second

// postWindow bounds how far back fetched posts count toward the aggregate.
const postWindow = 24 * time.Hour

// CryptoPanicClient implements SentimentAPI against a CryptoPanic-style
// posts endpoint. A missing auth token is a supported degraded mode.
type CryptoPanicClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewCryptoPanicClient creates a sentiment client. authToken may be empty.
func NewCryptoPanicClient(baseURL, authToken string, timeout time.Duration) *CryptoPanicClient {
	if baseURL == "" {
		baseURL = "https://cryptopanic.com/api/v1"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CryptoPanicClient{
		baseURL:    baseURL,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "cryptopanic",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

// HasCredential reports whether an auth token is configured.
func (c *CryptoPanicClient) HasCredential() bool {
	return c.authToken != ""
}

type panicResponse struct {
	Results []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Sentiment   string `json:"sentiment"`
		PublishedAt string `json:"published_at"`
		Votes       struct {
			Positive int `json:"positive"`
			Negative int `json:"negative"`
		} `json:"votes"`
	} `json:"results"`
}

// Posts fetches recent posts mentioning the given currency.
func (c *CryptoPanicClient) Posts(ctx context.Context, currency string) ([]Post, error) {
	endpoint := fmt.Sprintf("%s/posts/?auth_token=%s&currencies=%s&public=true",
		c.baseURL, url.QueryEscape(c.authToken), url.QueryEscape(currency))

	var resp panicResponse
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, getJSON(ctx, c.httpClient, endpoint, &resp)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, fmt.Errorf("%w: cryptopanic breaker open", domain.ErrUpstreamUnavailable)
	}
	if err != nil {
		return nil, err
	}

	out := make([]Post, 0, len(resp.Results))
	for _, r := range resp.Results {
		published, _ := time.Parse(time.RFC3339, r.PublishedAt)
		sentiment := strings.ToLower(r.Sentiment)
		if sentiment == "" {
			// Older API versions carry only votes; derive the label.
			switch {
			case r.Votes.Positive > r.Votes.Negative:
				sentiment = "positive"
			case r.Votes.Negative > r.Votes.Positive:
				sentiment = "negative"
			default:
				sentiment = "neutral"
			}
		}
		out = append(out, Post{
			Title:       r.Title,
			Description: r.Description,
			URL:         r.URL,
			Sentiment:   sentiment,
			VotesUp:     r.Votes.Positive,
			VotesDown:   r.Votes.Negative,
			PublishedAt: published,
		})
	}
	return out, nil
}

// SentimentSource aggregates posts into per-(symbol, timeframe) records.
// All outbound requests pass through one shared min-interval gate.
type SentimentSource struct {
	api     SentimentAPI
	gate    *ratelimit.Gate
	records *cache.TTL[domain.SocialSentimentRecord]
	now     func() time.Time
}

// NewSentimentSource creates the cached, gated sentiment facade.
func NewSentimentSource(api SentimentAPI, gate *ratelimit.Gate) *SentimentSource {
	if gate == nil {
		gate = ratelimit.NewGate(SentimentMinInterval)
	}
	return &SentimentSource{
		api:     api,
		gate:    gate,
		records: cache.NewTTL[domain.SocialSentimentRecord](SentimentTTL),
		now:     time.Now,
	}
}

// Sentiment returns the aggregate record for one (base asset, timeframe).
// Missing credential and upstream failures both degrade to a zeroed record
// flagged stale; they never fail the caller.
func (s *SentimentSource) Sentiment(ctx context.Context, ticker, name, timeframe string) domain.SocialSentimentRecord {
	key := strings.ToUpper(ticker) + "|" + timeframe
	if cached, ok := s.records.Get(key); ok {
		return cached
	}

	if !s.api.HasCredential() {
		rec := staleRecord(ticker, timeframe)
		s.records.Set(key, rec)
		return rec
	}

	if err := s.gate.Wait(ctx); err != nil {
		return staleRecord(ticker, timeframe)
	}

	posts, err := s.api.Posts(ctx, strings.ToUpper(ticker))
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("sentiment fetch failed")
		if stale, _, ok := s.records.Peek(key); ok {
			stale.Stale = true
			return stale
		}
		return staleRecord(ticker, timeframe)
	}

	rec := s.aggregate(ticker, name, timeframe, posts)
	s.records.Set(key, rec)
	return rec
}

func staleRecord(ticker, timeframe string) domain.SocialSentimentRecord {
	return domain.SocialSentimentRecord{
		Symbol:    strings.ToUpper(ticker),
		Timeframe: timeframe,
		Stale:     true,
	}
}

// aggregate windows, dedupes, alias-matches, and spam-filters posts, then
// buckets them into positive/negative/neutral counts. The average vote
// delta is computed over positive posts only.
func (s *SentimentSource) aggregate(ticker, name, timeframe string, posts []Post) domain.SocialSentimentRecord {
	rec := domain.SocialSentimentRecord{
		Symbol:    strings.ToUpper(ticker),
		Timeframe: timeframe,
	}
	aliases := buildAliases(ticker, name)
	cutoff := s.now().Add(-postWindow)
	seen := map[string]bool{}

	var voteDeltaSum float64
	for _, post := range posts {
		if post.PublishedAt.Before(cutoff) {
			continue
		}
		dedupeKey := normalizeURL(post.URL)
		if dedupeKey == "" {
			dedupeKey = normalizeTitle(post.Title)
		}
		if dedupeKey == "" || seen[dedupeKey] {
			continue
		}
		seen[dedupeKey] = true

		text := post.Title + " " + post.Description
		if !matchesAlias(text, aliases) || isSpam(text) {
			continue
		}

		switch post.Sentiment {
		case "positive":
			rec.Positive++
			voteDeltaSum += float64(post.VotesUp - post.VotesDown)
		case "negative":
			rec.Negative++
		default:
			rec.Neutral++
		}
	}

	if rec.Positive > 0 {
		rec.AvgVoteDelta = voteDeltaSum / float64(rec.Positive)
	}
	return rec
}

// normalizeURL strips scheme, www, query, and trailing slashes so syndicated
// duplicates collapse to one key.
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimRight(u.Path, "/")
	return host + path
}

// normalizeTitle lowercases and collapses whitespace and punctuation.
func normalizeTitle(title string) string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, " ")
}

// SetClock overrides the post-window time source. Test hook.
func (s *SentimentSource) SetClock(now func() time.Time) {
	s.now = now
}
