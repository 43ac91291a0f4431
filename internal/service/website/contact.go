package website

import (
	"context"
	"strings"
)

// Contact is a named person found for a website.
type Contact struct {
	Name  string
	Title string
}

// ContactNameResolver looks up a decision maker for a site, typically through a
// third-party people-search API. A false return means nothing was found.
type ContactNameResolver interface {
	ResolveContact(ctx context.Context, websiteURL string) (Contact, bool, error)
}

// NoopContactResolver never finds anyone.
type NoopContactResolver struct{}

// ResolveContact implements ContactNameResolver.
func (NoopContactResolver) ResolveContact(context.Context, string) (Contact, bool, error) {
	return Contact{}, false, nil
}

// SplitName splits a full name on the first space: "Ana Maria Lopez" becomes
// ("Ana", "Maria Lopez").
func SplitName(full string) (first, last string) {
	full = strings.Join(strings.Fields(full), " ")
	if full == "" {
		return "", ""
	}
	first, last, _ = strings.Cut(full, " ")
	return first, last
}
