// internal/scraper/scraper.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/linkedin-mcp/internal/browser"
	"github.com/xkilldash9x/linkedin-mcp/internal/config"
	"github.com/xkilldash9x/linkedin-mcp/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	baseURL = "https://www.linkedin.com"

	defaultRequestsPerMinute = 20
	fallbackReason           = "JavaScript extraction failed, fallback used"
)

// ErrEmptyIdentifier is returned when a username, company name or job id
// is blank.
var ErrEmptyIdentifier = errors.New("identifier must not be empty")

// PersonURL is the canonical profile URL for a username.
func PersonURL(username string) string {
	return baseURL + "/in/" + url.PathEscape(username) + "/"
}

// CompanyURL is the canonical company page URL.
func CompanyURL(name string) string {
	return baseURL + "/company/" + url.PathEscape(name) + "/"
}

// JobURL is the canonical job posting URL.
func JobURL(jobID string) string {
	return baseURL + "/jobs/view/" + url.PathEscape(jobID) + "/"
}

// Scraper extracts profile records from an open browser session. Bridge
// sessions run an in-page script; direct sessions parse the page source.
type Scraper struct {
	wait    time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
	metrics *metrics.Collector
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithMetrics counts extractions on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Scraper) { s.metrics = m }
}

// New creates a scraper. Page loads are paced to cfg.RequestsPerMinute.
func New(cfg config.ScraperConfig, logger *zap.Logger, opts ...Option) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}
	s := &Scraper{
		wait:    cfg.PageLoadWait,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		logger:  logger.Named("scraper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// recipe binds one record type to the generic extraction flow.
type recipe struct {
	kind   string
	target string
	script string
	// decode fills the record from a script result.
	decode func(raw []byte) error
	// parse fills the record from the page HTML.
	parse func(doc *goquery.Document)
	// fallback fills a placeholder record. cause is nil when the script ran
	// but produced nothing.
	fallback func(current string, cause error)
	// failed reports whether the finished record carries an error.
	failed func() bool
}

// Person scrapes the profile of username.
func (s *Scraper) Person(ctx context.Context, sess browser.Session, username string) (*Person, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("linkedin username: %w", ErrEmptyIdentifier)
	}
	p := &Person{LinkedInURL: PersonURL(username)}
	err := s.run(ctx, sess, recipe{
		kind:   KindPerson,
		target: p.LinkedInURL,
		script: personScript,
		decode: func(raw []byte) error { return json.Unmarshal(raw, p) },
		parse:  func(doc *goquery.Document) { extractPerson(doc, p) },
		fallback: func(current string, cause error) {
			*p = Person{LinkedInURL: p.LinkedInURL, URL: current, Error: fallbackReason,
				Name: "Profile extraction failed", Headline: "Could not extract profile data"}
			if cause != nil {
				p.Name, p.Headline, p.Error = "Unknown", "Profile extraction failed completely", cause.Error()
			}
		},
		failed: func() bool { return p.Error != "" },
	})
	if err != nil {
		return nil, err
	}
	p.ExtractionMethod = method(sess)
	p.normalize()
	return p, nil
}

// Company scrapes the company page for name.
func (s *Scraper) Company(ctx context.Context, sess browser.Session, name string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("company name: %w", ErrEmptyIdentifier)
	}
	c := &Company{LinkedInURL: CompanyURL(name)}
	err := s.run(ctx, sess, recipe{
		kind:   KindCompany,
		target: c.LinkedInURL,
		script: companyScript,
		decode: func(raw []byte) error { return json.Unmarshal(raw, c) },
		parse:  func(doc *goquery.Document) { extractCompany(doc, c) },
		fallback: func(current string, cause error) {
			*c = Company{LinkedInURL: c.LinkedInURL, URL: current, Error: fallbackReason,
				Name: "Company extraction failed", Tagline: "Could not extract company data"}
			if cause != nil {
				c.Name, c.Tagline, c.Error = "Unknown", "Company extraction failed completely", cause.Error()
			}
		},
		failed: func() bool { return c.Error != "" },
	})
	if err != nil {
		return nil, err
	}
	c.ExtractionMethod = method(sess)
	c.normalize()
	return c, nil
}

// Job scrapes the posting with jobID.
func (s *Scraper) Job(ctx context.Context, sess browser.Session, jobID string) (*Job, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, fmt.Errorf("job id: %w", ErrEmptyIdentifier)
	}
	j := &Job{LinkedInURL: JobURL(jobID)}
	err := s.run(ctx, sess, recipe{
		kind:   KindJob,
		target: j.LinkedInURL,
		script: jobScript,
		decode: func(raw []byte) error { return json.Unmarshal(raw, j) },
		parse:  func(doc *goquery.Document) { extractJob(doc, j) },
		fallback: func(current string, cause error) {
			*j = Job{LinkedInURL: j.LinkedInURL, URL: current, Error: fallbackReason,
				Title: "Job extraction failed", Company: "Could not extract job data"}
			if cause != nil {
				j.Title, j.Company, j.Error = "Unknown", "Job extraction failed completely", cause.Error()
			}
		},
		failed: func() bool { return j.Error != "" },
	})
	if err != nil {
		return nil, err
	}
	j.ExtractionMethod = method(sess)
	j.normalize()
	return j, nil
}

func (s *Scraper) run(ctx context.Context, sess browser.Session, r recipe) (err error) {
	logger := s.logger.With(zap.String("kind", r.kind), zap.String("url", r.target), zap.String("method", method(sess)))
	defer func() {
		if err != nil {
			logger.Error("Extraction failed.", zap.Error(err))
		}
		s.metrics.ExtractionFinished(r.kind, err != nil || r.failed())
	}()

	logger.Info("Scraping page.")
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := sess.Navigate(ctx, r.target); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", r.target, err)
	}
	if err := browser.Sleep(ctx, s.wait); err != nil {
		return err
	}

	if !sess.IsBridgeSession() {
		src, err := sess.GetPageSource(ctx)
		if err != nil {
			return fmt.Errorf("failed to read page source: %w", err)
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
		if err != nil {
			return fmt.Errorf("failed to parse page source: %w", err)
		}
		r.parse(doc)
		return nil
	}

	result, err := sess.ExecuteScript(ctx, r.script)
	if err != nil {
		return fmt.Errorf("failed to run %s extraction script: %w", r.kind, err)
	}
	if isEmpty(result) {
		logger.Warn("Extraction script returned nothing, using fallback record.")
		current, urlErr := sess.GetCurrentURL(ctx)
		if urlErr != nil {
			r.fallback(r.target, urlErr)
		} else {
			r.fallback(current, nil)
		}
		return nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode %s result: %w", r.kind, err)
	}
	if err := r.decode(raw); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", r.kind, err)
	}
	return nil
}

func method(sess browser.Session) string {
	if sess.IsBridgeSession() {
		return MethodBridge
	}
	return MethodWebDriver
}

// isEmpty treats a missing or zero-valued script result as no result.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	}
	return false
}
