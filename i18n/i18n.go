// Package i18n implements the locale-aware message lookup used by generated
// error catalogs.
//
// A Service holds an entry table and a current locale. Lookups fall back
// from the current locale to FallbackLocale and then to UnknownMessage:
//
//	svc := i18n.NewService(entries, "vi")
//	text, ok := svc.Message(ErrorCodeNetworkError)
package i18n

import (
	"maps"
	"slices"
	"sync"
)

const (
	// FallbackLocale is tried when the current locale has no translation.
	FallbackLocale = "en"
	// UnknownMessage is returned for a known code without a usable
	// translation.
	UnknownMessage = "Unknown error"
)

// Entry is one code of a catalog and its translations keyed by locale.
type Entry[C ~string] struct {
	Code         C
	Translations map[string]string
}

// Message is a code rendered in one locale.
type Message[C ~string] struct {
	Code C
	Text string
}

// Service resolves codes to localized texts. It is safe for concurrent use.
type Service[C ~string] struct {
	source []Entry[C]

	mu      sync.RWMutex
	entries []Entry[C]
	index   map[C]int
	locale  string
}

// NewService returns a service over entries, initialized with the given
// locale. An empty locale selects FallbackLocale.
func NewService[C ~string](entries []Entry[C], locale string) *Service[C] {
	s := &Service[C]{source: entries}
	s.Init(locale)
	return s
}

// Init reloads the entry table and resets the current locale. An empty
// locale selects FallbackLocale.
func (s *Service[C]) Init(locale string) {
	entries := make([]Entry[C], 0, len(s.source))
	index := make(map[C]int, len(s.source))
	for _, e := range s.source {
		tr := maps.Clone(e.Translations)
		if i, ok := index[e.Code]; ok {
			entries[i].Translations = tr
			continue
		}
		index[e.Code] = len(entries)
		entries = append(entries, Entry[C]{Code: e.Code, Translations: tr})
	}
	if locale == "" {
		locale = FallbackLocale
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries, s.index, s.locale = entries, index, locale
}

// SetLocale changes the current locale.
func (s *Service[C]) SetLocale(locale string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locale = locale
}

// Locale returns the current locale.
func (s *Service[C]) Locale() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locale
}

// Message returns the text of code in the current locale, falling back to
// FallbackLocale and then to UnknownMessage. The boolean is false, and the
// text empty, when the code is not part of the catalog.
func (s *Service[C]) Message(code C) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[code]
	if !ok {
		return "", false
	}
	return resolve(s.entries[i].Translations, s.locale), true
}

// ListAll returns every code with its text in the current locale, in
// catalog order.
func (s *Service[C]) ListAll() []Message[C] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message[C], len(s.entries))
	for i, e := range s.entries {
		out[i] = Message[C]{Code: e.Code, Text: resolve(e.Translations, s.locale)}
	}
	return out
}

// Codes returns every code in catalog order.
func (s *Service[C]) Codes() []C {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]C, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Code
	}
	return out
}

// HasCode reports whether code is part of the catalog.
func (s *Service[C]) HasCode(code C) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[code]
	return ok
}

// Locales returns every locale with at least one translation, sorted.
func (s *Service[C]) Locales() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, e := range s.entries {
		for l := range e.Translations {
			seen[l] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

func resolve(tr map[string]string, locale string) string {
	if text, ok := tr[locale]; ok {
		return text
	}
	if text, ok := tr[FallbackLocale]; ok {
		return text
	}
	return UnknownMessage
}
