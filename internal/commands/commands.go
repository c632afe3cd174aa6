// Package commands resolves slash commands into message text by calling
// public HTTP APIs. A command only matches when it is the entire trimmed
// message; partial or prefixed input is never treated as a command.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultCatFactURL = "https://catfact.ninja/fact"
	defaultQuoteURL   = "https://zenquotes.io/api/random"
)

// Resolver turns supported slash commands into their fetched output. The
// zero-value endpoints point at the public APIs; both are overridable for
// deployment and for tests.
type Resolver struct {
	catFactURL string
	quoteURL   string
	client     *http.Client
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCatFactURL overrides the cat-fact endpoint.
func WithCatFactURL(url string) Option {
	return func(r *Resolver) { r.catFactURL = url }
}

// WithQuoteURL overrides the quote endpoint.
func WithQuoteURL(url string) Option {
	return func(r *Resolver) { r.quoteURL = url }
}

// WithHTTPClient overrides the HTTP client used for command fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) { r.client = client }
}

// New returns a Resolver with the default endpoints and a 10 second
// client timeout, adjusted by the given options.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		catFactURL: defaultCatFactURL,
		quoteURL:   defaultQuoteURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve reports whether input is exactly a supported command and, when
// it is, the text to send in its place. Fetch failures still resolve: the
// returned text is a human-readable fallback, never an error, so a typed
// command always produces a message.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, bool) {
	switch strings.TrimSpace(input) {
	case "/catfact":
		return r.catFact(ctx), true
	case "/quote":
		return r.quote(ctx), true
	default:
		return "", false
	}
}

func (r *Resolver) catFact(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.catFactURL, nil)
	if err != nil {
		return "Failed to load a cat fact."
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "Failed to load a cat fact."
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "Could not load a cat fact right now."
	}

	var body struct {
		Fact string `json:"fact"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "Failed to load a cat fact."
	}
	if body.Fact == "" {
		return "Could not load a cat fact right now."
	}
	return body.Fact
}

func (r *Resolver) quote(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.quoteURL, nil)
	if err != nil {
		return "Failed to load a quote."
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "Failed to load a quote."
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "Could not load a quote right now."
	}

	var body []struct {
		Q string `json:"q"`
		A string `json:"a"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "Failed to load a quote."
	}
	if len(body) == 0 || body[0].Q == "" || body[0].A == "" {
		return "Could not load a quote right now."
	}
	return fmt.Sprintf("%s — %s", body[0].Q, body[0].A)
}
