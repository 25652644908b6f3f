package structured

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractContactFacts(t *testing.T) {
	d := Extract("Call me at 555-123-4567 or jane@example.com before Friday.")

	if len(d.PhoneNumbers) != 1 || d.PhoneNumbers[0] != "555-123-4567" {
		t.Errorf("phones = %v", d.PhoneNumbers)
	}
	if len(d.Emails) != 1 || d.Emails[0] != "jane@example.com" {
		t.Errorf("emails = %v", d.Emails)
	}
}

func TestExtractPhoneFormats(t *testing.T) {
	text := "Dispatch: (212) 555-0100. Cell 646-555-0123. Pager 9175550199. Intl +1 718 555 0144."
	d := Extract(text)

	want := map[string]bool{
		"(212) 555-0100":  true,
		"646-555-0123":    true,
		"9175550199":      true,
		"+1 718 555 0144": true,
	}
	if len(d.PhoneNumbers) != len(want) {
		t.Fatalf("phones = %v", d.PhoneNumbers)
	}
	for _, p := range d.PhoneNumbers {
		if !want[p] {
			t.Errorf("unexpected phone %q", p)
		}
	}
}

func TestExtractDatesWithContext(t *testing.T) {
	text := "The burglary was reported on 3/14/2021 by the night clerk. " +
		"A follow-up interview took place March 20, 2021 at the precinct."
	d := Extract(text)

	if len(d.Dates) != 2 {
		t.Fatalf("dates = %+v", d.Dates)
	}
	if d.Dates[0].Text != "3/14/2021" {
		t.Errorf("first date = %q", d.Dates[0].Text)
	}
	if !strings.Contains(d.Dates[0].Context, "reported on 3/14/2021 by the night clerk") {
		t.Errorf("context = %q", d.Dates[0].Context)
	}
}

func TestExtractPersonNames(t *testing.T) {
	text := "Officer interviewed John Smith at the scene. John Smith denied " +
		"everything. Mary Jones corroborated the account."
	d := Extract(text)

	if len(d.Entities) != 2 {
		t.Fatalf("entities = %+v", d.Entities)
	}
	// Sorted by mention count, most mentioned first.
	if d.Entities[0].Name != "John Smith" || d.Entities[0].Mentions != 2 {
		t.Errorf("first entity = %+v", d.Entities[0])
	}
	if d.Entities[0].Type != EntityPerson {
		t.Errorf("type = %q", d.Entities[0].Type)
	}
	if len(d.Entities[0].Contexts) != 2 {
		t.Errorf("contexts = %v", d.Entities[0].Contexts)
	}
}

func TestNameStopwordsFiltered(t *testing.T) {
	d := Extract("The Main Office was closed. She Left Early that day.")
	for _, e := range d.Entities {
		first := strings.Fields(e.Name)[0]
		if first == "The" || first == "She" {
			t.Errorf("stopword-led phrase kept: %+v", e)
		}
	}
}

func TestEntityMergeIsCaseInsensitive(t *testing.T) {
	set := newEntitySet()
	set.add("John Smith", EntityPerson, "ctx1")
	set.add("john smith", EntityPerson, "ctx2")

	out := set.sorted()
	if len(out) != 1 {
		t.Fatalf("entities = %+v", out)
	}
	if out[0].Mentions != 2 {
		t.Errorf("mentions = %d", out[0].Mentions)
	}
	if out[0].Name != "John Smith" {
		t.Errorf("first-seen casing should win: %q", out[0].Name)
	}
}

func TestExtractVehicles(t *testing.T) {
	d := Extract("Witness saw a silver Toyota Camry speed off, followed by a Ford F-150.")

	var vehicles []string
	for _, e := range d.Entities {
		if e.Type == EntityVehicle {
			vehicles = append(vehicles, e.Name)
		}
	}
	if len(vehicles) != 2 {
		t.Fatalf("vehicles = %v", vehicles)
	}
	if vehicles[0] != "Toyota Camry" && vehicles[1] != "Toyota Camry" {
		t.Errorf("vehicles = %v", vehicles)
	}
}

func TestExtractAddresses(t *testing.T) {
	text := "Suspect resides at 123 Main Street in Queens. Package delivered to 456 Oak Avenue, Apt 2B."
	d := Extract(text)

	if len(d.Addresses) != 2 {
		t.Fatalf("addresses = %v", d.Addresses)
	}
	if d.Addresses[0] != "123 Main Street" {
		t.Errorf("first address = %q", d.Addresses[0])
	}
	if len(d.Locations) != 2 || d.Locations[0].Type != "address" {
		t.Errorf("locations = %+v", d.Locations)
	}
}

func TestContextWindowKeepsRunesIntact(t *testing.T) {
	// Multi-byte runes on both sides of the match; the byte window lands
	// mid-rune unless the edges are snapped.
	text := strings.Repeat("é", 31) + " 3/14/2021 " + strings.Repeat("日", 31)
	d := Extract(text)

	if len(d.Dates) != 1 {
		t.Fatalf("dates = %+v", d.Dates)
	}
	ctx := d.Dates[0].Context
	if !utf8.ValidString(ctx) {
		t.Fatalf("context is not valid UTF-8: %q", ctx)
	}
	if !strings.Contains(ctx, "3/14/2021") {
		t.Errorf("context lost the match: %q", ctx)
	}
}

func TestPhoneListCapped(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "line %d: 555-%03d-%04d\n", i, 100+i, 1000+i)
	}
	d := Extract(sb.String())
	if len(d.PhoneNumbers) != maxPhones {
		t.Errorf("phones = %d, want cap %d", len(d.PhoneNumbers), maxPhones)
	}
}

func TestEmptyTextYieldsEmptyCollections(t *testing.T) {
	d := Extract("")
	if d.Entities == nil || d.Dates == nil || d.Locations == nil ||
		d.PhoneNumbers == nil || d.Emails == nil || d.Addresses == nil {
		t.Errorf("collections must be empty, not nil: %+v", d)
	}
	if len(d.Entities)+len(d.Dates)+len(d.PhoneNumbers) != 0 {
		t.Errorf("expected nothing mined: %+v", d)
	}
}
