package website

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/idna"
)

const (
	maxEmails           = 5
	maxPhones           = 3
	maxDescriptionRunes = 500
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
	nonDigit     = regexp.MustCompile(`\D`)

	facebookPattern  = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?facebook\.com/[a-zA-Z0-9._-]+/?`)
	instagramPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagram\.com/[a-zA-Z0-9._-]+/?`)
	linkedinPattern  = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/(?:company|in)/[a-zA-Z0-9._-]+/?`)

	metaDescriptionPattern = regexp.MustCompile(`(?i)<meta[^>]*name=["']description["'][^>]*content=["']([^"']+)["']`)

	emailBlacklist = []string{"example", "domain", "email@", "@sentry", ".png", ".jpg"}

	contactPagePaths = []string{"/contact", "/contact-us", "/about", "/about-us", "/team"}

	idnaProfile = idna.Lookup
)

// Result holds whatever a single scrape found. Slices are never nil.
type Result struct {
	IsReachable  bool
	Emails       []string
	Phones       []string
	ContactName  string
	ContactTitle string
	FacebookURL  string
	InstagramURL string
	LinkedInURL  string
	Description  string
}

func emptyResult() Result {
	return Result{Emails: []string{}, Phones: []string{}}
}

// Extractor fetches a page and pulls contact details out of the raw HTML.
type Extractor struct {
	httpClient    HTTPClient
	userAgent     string
	timeout       time.Duration
	probeTimeout  time.Duration
	probeContacts bool
	resolver      ContactNameResolver
}

// ExtractorOption configures optional dependencies.
type ExtractorOption func(*Extractor)

// WithExtractorHTTPClient overrides the default HTTP client.
func WithExtractorHTTPClient(client HTTPClient) ExtractorOption {
	return func(e *Extractor) {
		if client != nil {
			e.httpClient = client
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ExtractorOption {
	return func(e *Extractor) {
		if ua = strings.TrimSpace(ua); ua != "" {
			e.userAgent = ua
		}
	}
}

// WithFetchTimeout overrides the 10s page fetch timeout.
func WithFetchTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithContactPageProbe enables probing common contact pages when the home page
// has no email address.
func WithContactPageProbe(enabled bool) ExtractorOption {
	return func(e *Extractor) {
		e.probeContacts = enabled
	}
}

// WithContactNameResolver plugs in a contact lookup.
func WithContactNameResolver(r ContactNameResolver) ExtractorOption {
	return func(e *Extractor) {
		if r != nil {
			e.resolver = r
		}
	}
}

// NewExtractor builds an extractor with the default user agent and no contact lookup.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		httpClient:   NewHTTPClient(),
		userAgent:    DefaultUserAgent,
		timeout:      defaultFetchTimeout,
		probeTimeout: defaultProbeTimeout,
		resolver:     NoopContactResolver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches rawURL and scrapes it. Failures yield a zero result with
// IsReachable false.
func (e *Extractor) Extract(ctx context.Context, rawURL string) Result {
	target := withScheme(rawURL)
	log := zap.L().With(zap.String("url", target))

	body, err := e.fetch(ctx, target)
	if err != nil {
		log.Debug("website: extraction failed", zap.Error(err))
		return emptyResult()
	}

	result := parsePage(body)
	result.IsReachable = true

	if e.probeContacts && len(result.Emails) == 0 {
		e.fillFromContactPage(ctx, target, &result)
	}

	contact, found, err := e.resolver.ResolveContact(ctx, target)
	switch {
	case err != nil:
		log.Debug("website: contact lookup failed", zap.Error(err))
	case found:
		result.ContactName = strings.TrimSpace(contact.Name)
		result.ContactTitle = strings.TrimSpace(contact.Title)
	}
	return result
}

func (e *Extractor) fetch(ctx context.Context, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", eris.Wrap(err, "website: create request")
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "website: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		return "", eris.Errorf("website: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", eris.Wrap(err, "website: read body")
	}
	return string(body), nil
}

// fillFromContactPage scrapes the first contact-like page that answers a HEAD
// and fills only the fields the home page left empty.
func (e *Extractor) fillFromContactPage(ctx context.Context, base string, result *Result) {
	page := e.findContactPage(ctx, base)
	if page == "" {
		return
	}
	body, err := e.fetch(ctx, page)
	if err != nil {
		zap.L().Debug("website: contact page fetch failed", zap.String("url", page), zap.Error(err))
		return
	}
	extra := parsePage(body)
	if len(result.Emails) == 0 {
		result.Emails = extra.Emails
	}
	if len(result.Phones) == 0 {
		result.Phones = extra.Phones
	}
	if result.FacebookURL == "" {
		result.FacebookURL = extra.FacebookURL
	}
	if result.InstagramURL == "" {
		result.InstagramURL = extra.InstagramURL
	}
	if result.LinkedInURL == "" {
		result.LinkedInURL = extra.LinkedInURL
	}
	if result.Description == "" {
		result.Description = extra.Description
	}
}

func (e *Extractor) findContactPage(ctx context.Context, base string) string {
	base = strings.TrimSuffix(base, "/")
	for _, path := range contactPagePaths {
		if ctx.Err() != nil {
			return ""
		}
		candidate := base + path
		if e.probe(ctx, candidate) {
			return candidate
		}
	}
	return ""
}

func (e *Extractor) probe(ctx context.Context, target string) bool {
	ctx, cancel := context.WithTimeout(ctx, e.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", e.userAgent)
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close() //nolint:errcheck
	return isSuccess(resp.StatusCode)
}

func parsePage(html string) Result {
	result := emptyResult()
	result.Emails = extractEmails(html)
	result.Phones = extractPhones(html)
	result.FacebookURL = firstSocialLink(facebookPattern, html)
	result.InstagramURL = firstSocialLink(instagramPattern, html)
	result.LinkedInURL = firstSocialLink(linkedinPattern, html)
	result.Description = extractDescription(html)
	return result
}

func extractEmails(html string) []string {
	matches := emailPattern.FindAllString(html, -1)
	seen := make(map[string]struct{}, len(matches))
	emails := make([]string, 0, maxEmails)

	for _, email := range matches {
		if len(emails) == maxEmails {
			break
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		if isBlacklistedEmail(email) || !hasLookupDomain(email) {
			continue
		}
		emails = append(emails, email)
	}
	return emails
}

func isBlacklistedEmail(email string) bool {
	for _, marker := range emailBlacklist {
		if strings.Contains(email, marker) {
			return true
		}
	}
	return false
}

func hasLookupDomain(email string) bool {
	_, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" {
		return false
	}
	ascii, err := idnaProfile.ToASCII(domain)
	return err == nil && ascii != ""
}

func extractPhones(html string) []string {
	matches := phonePattern.FindAllString(html, -1)
	seen := make(map[string]struct{}, len(matches))
	phones := make([]string, 0, maxPhones)

	for _, raw := range matches {
		if len(phones) == maxPhones {
			break
		}
		formatted, ok := FormatUSPhone(raw)
		if !ok {
			continue
		}
		if _, dup := seen[formatted]; dup {
			continue
		}
		seen[formatted] = struct{}{}
		phones = append(phones, formatted)
	}
	return phones
}

// FormatUSPhone renders a 10-digit (or 1-prefixed 11-digit) number as (XXX) XXX-XXXX.
func FormatUSPhone(raw string) (string, bool) {
	digits := nonDigit.ReplaceAllString(raw, "")
	switch {
	case len(digits) == 11:
		digits = digits[1:]
	case len(digits) != 10:
		return "", false
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:]), true
}

func firstSocialLink(pattern *regexp.Regexp, html string) string {
	match := pattern.FindString(html)
	if match == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(match), "http") {
		match = "https://" + match
	}
	return match
}

func extractDescription(html string) string {
	m := metaDescriptionPattern.FindStringSubmatch(html)
	if len(m) < 2 {
		return ""
	}
	desc := []rune(m[1])
	if len(desc) > maxDescriptionRunes {
		desc = desc[:maxDescriptionRunes]
	}
	return string(desc)
}
