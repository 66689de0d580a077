package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/raksetu/bloodhub/internal/domain/providers"
	"github.com/raksetu/bloodhub/pkg/config"
)

// HTTPChecker decides connectivity by issuing a HEAD request to a known URL.
// Results are reused for the configured interval. Concurrent callers share
// one request, which outlives any single caller.
type HTTPChecker struct {
	url        string
	interval   time.Duration
	httpClient *http.Client
	now        func() time.Time
	inflight   singleflight.Group

	mu        sync.Mutex
	online    bool
	checkedAt time.Time
}

// New returns a checker for cfg, or an always-online provider when no check URL
// is configured.
func New(cfg *config.ConnectivityConfig) providers.Connectivity {
	if cfg.CheckURL == "" {
		return Static(true)
	}
	return NewHTTPChecker(cfg.CheckURL, cfg.CheckInterval, cfg.CheckTimeout)
}

// NewHTTPChecker creates a new HTTP connectivity checker
func NewHTTPChecker(url string, interval, timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		url:        url,
		interval:   interval,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Online reports the last result, checking again once it is stale. A
// caller whose ctx ends first gets the last known state (offline if none).
func (p *HTTPChecker) Online(ctx context.Context) bool {
	p.mu.Lock()
	online, checkedAt := p.online, p.checkedAt
	p.mu.Unlock()

	if !checkedAt.IsZero() && p.now().Sub(checkedAt) < p.interval {
		return online
	}

	result := p.inflight.DoChan("check", func() (interface{}, error) {
		return p.refresh(context.WithoutCancel(ctx)), nil
	})
	select {
	case r := <-result:
		return r.Val.(bool)
	case <-ctx.Done():
		return online
	}
}

// refresh checks and stores the result. The http client timeout bounds it.
func (p *HTTPChecker) refresh(ctx context.Context) bool {
	online := p.check(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if online != p.online || p.checkedAt.IsZero() {
		log.Info().Bool("online", online).Str("check_url", p.url).Msg("Connectivity changed")
	}
	p.online = online
	p.checkedAt = p.now()
	return online
}

func (p *HTTPChecker) check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// Static is a fixed connectivity state
type Static bool

// Online returns the fixed state
func (s Static) Online(context.Context) bool {
	return bool(s)
}
