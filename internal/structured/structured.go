// Package structured mines regex-derived facts (dates, phone numbers, names,
// addresses, vehicles) from extracted text. Pure functions, no I/O: every
// extractor output that contains text runs through Extract before the result
// is persisted or handed downstream.
package structured

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Entity types recognized downstream.
const (
	EntityPerson       = "person"
	EntityOrganization = "organization"
	EntityVehicle      = "vehicle"
	EntityWeapon       = "weapon"
	EntityEvidence     = "evidence"
	EntityUnknown      = "unknown"
)

// List caps keep the serialized payload bounded for storage and review UIs.
const (
	maxEntities = 50
	maxDates    = 50
	maxPhones   = 30

	maxContexts   = 3
	contextWindow = 50
)

// Table is one tabular unit recovered from a spreadsheet or CSV.
type Table struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Entity is a de-duplicated named mention with surrounding context snippets.
type Entity struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Mentions int      `json:"mentions"`
	Contexts []string `json:"contexts,omitempty"`
}

// DateMention keeps the original date text plus a context window for
// downstream disambiguation (a bare "3/4/21" is useless without it).
type DateMention struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

// Location is a place reference; currently only typed "address".
type Location struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Data is the derived, non-authoritative fact set attached to an
// ExtractionResult. Computed once per extraction, never persisted separately
// from its parent result.
type Data struct {
	Tables       []Table       `json:"tables,omitempty"`
	Entities     []Entity      `json:"entities"`
	Dates        []DateMention `json:"dates"`
	Locations    []Location    `json:"locations"`
	PhoneNumbers []string      `json:"phoneNumbers"`
	Emails       []string      `json:"emails"`
	Addresses    []string      `json:"addresses"`
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`),
	regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-.]?\d{4}`),
	regexp.MustCompile(`\b\d{10}\b`),
	regexp.MustCompile(`\+1[\s.-]?\d{3}[\s.-]?\d{3}[\s.-]?\d{4}`),
}

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

const monthsLong = `January|February|March|April|May|June|July|August|September|October|November|December`
const monthsAbbr = `Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec`

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{2,4}\b`),
	regexp.MustCompile(`\b(?:` + monthsLong + `)\s+\d{1,2},?\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}\s+(?:` + monthsLong + `)\s+\d{4}\b`),
	regexp.MustCompile(`\b(?:` + monthsAbbr + `)\.?\s+\d{1,2},?\s+\d{4}\b`),
}

// namePattern matches 2-3 consecutive capitalized words. Heuristic: catches
// most Western-style names, also catches sentence-leading phrases, hence the
// stoplist below.
var namePattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2}\b`)

var nameStopwords = map[string]struct{}{
	"The": {}, "A": {}, "An": {}, "In": {}, "On": {}, "At": {}, "He": {},
	"She": {}, "It": {}, "They": {}, "This": {}, "That": {}, "These": {},
	"When": {}, "Where": {}, "After": {}, "Before": {}, "During": {},
}

var addressPattern = regexp.MustCompile(
	`\b\d+\s+(?:[A-Z][A-Za-z]*\s+){0,3}(?:Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Lane|Ln|Boulevard|Blvd|Way|Court|Ct|Place|Pl)\b\.?(?:,?\s+(?:Apt|Unit|Suite|#)\.?\s*[A-Za-z0-9-]+)?`)

var vehiclePattern = regexp.MustCompile(
	`\b(Toyota|Honda|Ford|Chevrolet|Chevy|Nissan|Dodge|Jeep|BMW|Mercedes|Audi|Volkswagen|Hyundai|Kia|Subaru|Mazda|Tesla|Lexus|Acura|Cadillac|Buick|Chrysler|Pontiac|GMC|Volvo)\s+([A-Za-z0-9][A-Za-z0-9-]*)`)

// Extract mines structured facts from text. The regex families are
// independent except for the entity merge, which is order-sensitive (see
// below), and the final list capping.
func Extract(text string) *Data {
	d := &Data{
		Entities:     []Entity{},
		Dates:        []DateMention{},
		Locations:    []Location{},
		PhoneNumbers: []string{},
		Emails:       []string{},
		Addresses:    []string{},
	}
	if text == "" {
		return d
	}

	d.PhoneNumbers = extractPhones(text)
	d.Emails = extractEmails(text)
	d.Dates = extractDates(text)
	d.Addresses = extractAddresses(text)
	for _, a := range d.Addresses {
		d.Locations = append(d.Locations, Location{Name: a, Type: "address"})
	}

	// Vehicles first: a make-plus-model phrase also looks like a person name
	// to the name regex, and the merge keeps the first type assigned.
	merged := newEntitySet()
	extractVehicles(text, merged)
	extractPersonNames(text, merged)
	d.Entities = merged.sorted()

	// Cap payload size.
	if len(d.Entities) > maxEntities {
		d.Entities = d.Entities[:maxEntities]
	}
	if len(d.Dates) > maxDates {
		d.Dates = d.Dates[:maxDates]
	}
	if len(d.PhoneNumbers) > maxPhones {
		d.PhoneNumbers = d.PhoneNumbers[:maxPhones]
	}
	return d
}

func extractPhones(text string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, pat := range phonePatterns {
		for _, m := range pat.FindAllString(text, -1) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func extractEmails(text string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, m := range emailPattern.FindAllString(text, -1) {
		key := strings.ToLower(m)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func extractDates(text string) []DateMention {
	var out []DateMention
	seen := map[string]struct{}{}
	for _, pat := range datePatterns {
		for _, loc := range pat.FindAllStringIndex(text, -1) {
			match := text[loc[0]:loc[1]]
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			out = append(out, DateMention{
				Text:    match,
				Context: contextAround(text, loc[0], loc[1]),
			})
		}
	}
	if out == nil {
		out = []DateMention{}
	}
	return out
}

func extractAddresses(text string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, m := range addressPattern.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		key := strings.ToLower(m)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func extractPersonNames(text string, set *entitySet) {
	for _, loc := range namePattern.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		first := strings.Fields(match)[0]
		if _, stop := nameStopwords[first]; stop {
			continue
		}
		set.add(match, EntityPerson, contextAround(text, loc[0], loc[1]))
	}
}

func extractVehicles(text string, set *entitySet) {
	for _, loc := range vehiclePattern.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		set.add(match, EntityVehicle, contextAround(text, loc[0], loc[1]))
	}
}

// contextAround returns the match plus up to contextWindow bytes on either
// side, for human disambiguation downstream. The window edges are snapped to
// rune boundaries so a snippet never carries a split multi-byte sequence.
func contextAround(text string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	for lo < len(text) && !utf8.RuneStart(text[lo]) {
		lo++
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return strings.TrimSpace(text[lo:hi])
}

// entitySet merges entities case-insensitively by name.
type entitySet struct {
	byKey map[string]*Entity
	order []string
}

func newEntitySet() *entitySet {
	return &entitySet{byKey: map[string]*Entity{}}
}

func (s *entitySet) add(name, typ, context string) {
	key := strings.ToLower(name)
	e, ok := s.byKey[key]
	if !ok {
		e = &Entity{Name: name, Type: typ}
		s.byKey[key] = e
		s.order = append(s.order, key)
	}
	e.Mentions++
	if len(e.Contexts) < maxContexts {
		e.Contexts = append(e.Contexts, context)
	}
}

func (s *entitySet) sorted() []Entity {
	out := make([]Entity, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, *s.byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Mentions > out[j].Mentions
	})
	return out
}
