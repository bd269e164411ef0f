package sofascore

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
	"github.com/riskibarqy/matchday-ingest/internal/platform/logging"
	"github.com/riskibarqy/matchday-ingest/internal/platform/resilience"
	"github.com/riskibarqy/matchday-ingest/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL      = "https://api.sofascore.com/api/v1"
	defaultSport        = "football"
	defaultTimeout      = 15 * time.Second
	defaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultMaxBodyBytes = 8 << 20
	dateLayout          = "2006-01-02"
)

var (
	errSourceUnreachable = crerr.New("source unreachable")
	errSourceRejected    = crerr.New("source rejected request")
)

var detailPaths = map[document.Kind]string{
	document.KindGraphics:   "graph",
	document.KindStatistics: "statistics",
	document.KindIncidents:  "incidents",
}

type Config struct {
	BaseURL      string
	Sport        string
	Timeout      time.Duration
	UserAgent    string
	WarmupURL    string
	MaxBodyBytes int64
	// Transport is wrapped with otelhttp; nil uses http.DefaultTransport.
	Transport      http.RoundTripper
	CircuitBreaker resilience.CircuitBreakerConfig
}

// SessionFactory opens browser-like sessions against the source. All sessions
// share one circuit breaker so recreating a session does not reset it.
type SessionFactory struct {
	cfg            Config
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewSessionFactory(cfg Config, logger *logging.Logger) *SessionFactory {
	if logger == nil {
		logger = logging.Default()
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.Sport = strings.TrimSpace(cfg.Sport)
	if cfg.Sport == "" {
		cfg.Sport = defaultSport
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
		logger.Warn("source circuit breaker changed state", "from", from, "to", to)
	}

	return &SessionFactory{
		cfg:            cfg,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (f *SessionFactory) NewSession(ctx context.Context) (document.Fetcher, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	session := &Session{
		factory: f,
		client: &http.Client{
			Timeout:   f.cfg.Timeout,
			Jar:       jar,
			Transport: otelhttp.NewTransport(f.cfg.Transport),
		},
	}

	if warmup := strings.TrimSpace(f.cfg.WarmupURL); warmup != "" {
		if err := session.warmup(ctx, warmup); err != nil {
			session.client.CloseIdleConnections()
			return nil, err
		}
	}
	return session, nil
}

// Session holds the cookies and connections of one browsing session.
type Session struct {
	factory *SessionFactory
	client  *http.Client
	closed  bool
}

func (s *Session) FetchEventList(ctx context.Context, date time.Time) document.Result {
	path := "/sport/" + s.factory.cfg.Sport + "/scheduled-events/" + date.Format(dateLayout)
	return s.fetch(ctx, path)
}

func (s *Session) FetchMatchDocument(ctx context.Context, matchID int64, kind document.Kind) document.Result {
	suffix, ok := detailPaths[kind]
	if !ok {
		return document.Malformed(fmt.Errorf("%w: unknown document kind %q", usecase.ErrInvalidInput, kind))
	}
	return s.fetch(ctx, "/event/"+strconv.FormatInt(matchID, 10)+"/"+suffix)
}

func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.CloseIdleConnections()
	return nil
}

func (s *Session) warmup(ctx context.Context, target string) error {
	req, err := s.newRequest(ctx, target, "text/html,application/xhtml+xml")
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return crerr.Mark(fmt.Errorf("warm up source session: %w", err), document.ErrTransport)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, s.factory.cfg.MaxBodyBytes))
	_ = resp.Body.Close()
	if isTransientStatus(resp.StatusCode) {
		return crerr.Mark(fmt.Errorf("warm up source session: status=%d", resp.StatusCode), document.ErrTransport)
	}
	return nil
}

func (s *Session) fetch(ctx context.Context, path string) document.Result {
	if s.closed {
		return document.Transport(fmt.Errorf("fetch %s: session closed", path))
	}

	if !s.factory.circuitEnabled {
		return s.do(ctx, path)
	}

	var result document.Result
	err := s.factory.breaker.Execute(func() error {
		result = s.do(ctx, path)
		if result.Outcome == document.OutcomeTransport {
			return result.Err
		}
		return nil
	}, nil)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		s.factory.logger.WarnContext(ctx, "source circuit breaker rejected request", "path", path, "state", s.factory.breaker.State())
		return document.Transport(fmt.Errorf("%w: source is temporarily unavailable", usecase.ErrDependencyUnavailable))
	}
	return result
}

func (s *Session) do(ctx context.Context, path string) document.Result {
	req, err := s.newRequest(ctx, s.factory.cfg.BaseURL+path, "application/json")
	if err != nil {
		return document.Transport(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return document.Transport(crerr.Mark(fmt.Errorf("get %s: %w", path, err), errSourceUnreachable))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	limit := s.factory.cfg.MaxBodyBytes
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, limit+1)); err != nil {
		return document.Transport(fmt.Errorf("read %s body: %w", path, err))
	}
	if int64(buf.Len()) > limit {
		return document.Malformed(fmt.Errorf("%s body exceeds %d bytes", path, limit))
	}

	switch {
	case isTransientStatus(resp.StatusCode):
		return document.Transport(crerr.Mark(
			fmt.Errorf("get %s: status=%d body=%s", path, resp.StatusCode, abbreviateBody(buf.B)),
			errSourceRejected,
		))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return document.Malformed(fmt.Errorf("get %s: status=%d body=%s", path, resp.StatusCode, abbreviateBody(buf.B)))
	}

	payload, ok := extractJSON(buf.B)
	if !ok {
		return document.Malformed(fmt.Errorf("get %s: no JSON document in body=%s", path, abbreviateBody(buf.B)))
	}
	doc := document.New(payload)
	if doc.Has("error") {
		return document.Malformed(fmt.Errorf("get %s: source returned error body=%s", path, abbreviateBody(payload)))
	}
	return document.OK(doc)
}

func (s *Session) newRequest(ctx context.Context, target, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", s.factory.cfg.UserAgent)
	return req, nil
}

// extractJSON accepts a raw JSON body or a rendered page that wraps the JSON in
// its first <pre> block.
func extractJSON(body []byte) ([]byte, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed, sonic.Valid(trimmed)
	}

	lower := bytes.ToLower(trimmed)
	start := bytes.Index(lower, []byte("<pre"))
	if start < 0 {
		return nil, false
	}
	open := bytes.IndexByte(lower[start:], '>')
	if open < 0 {
		return nil, false
	}
	contentStart := start + open + 1
	end := bytes.Index(lower[contentStart:], []byte("</pre>"))
	if end < 0 {
		return nil, false
	}

	inner := html.UnescapeString(string(trimmed[contentStart : contentStart+end]))
	payload := bytes.TrimSpace([]byte(inner))
	if len(payload) == 0 || !sonic.Valid(payload) {
		return nil, false
	}
	return payload, true
}

func isTransientStatus(code int) bool {
	return code == http.StatusForbidden || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
