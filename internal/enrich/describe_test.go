package enrich

import (
	"strings"
	"testing"

	"github.com/lacite-app/eventfeed/internal/event"
)

func TestDescribe_Formatting(t *testing.T) {
	t.Parallel()

	t.Run("bold_italic_and_breaks", func(t *testing.T) {
		t.Parallel()
		in := "Join us!<br>A <b>special</b> and <em>festive</em> evening."
		got := Describe(in, event.LangEnglish).FormattedDescription
		if !strings.Contains(got, "Join us!\n") {
			t.Fatalf("expected break converted to newline, got %q", got)
		}
		if !strings.Contains(got, "*special*") {
			t.Fatalf("expected bold markers, got %q", got)
		}
		if !strings.Contains(got, "_festive_") {
			t.Fatalf("expected italic markers, got %q", got)
		}
	})

	t.Run("entities_decoded", func(t *testing.T) {
		t.Parallel()
		got := Describe("Caf&eacute; &amp; dessert", event.LangEnglish).FormattedDescription
		if got != "Café & dessert" {
			t.Fatalf("unexpected rendering: %q", got)
		}
	})

	t.Run("anchor_becomes_text_and_url", func(t *testing.T) {
		t.Parallel()
		got := Describe(`Visit <a href="https://example.com/page">our site</a> today`, event.LangEnglish)
		if !strings.Contains(got.FormattedDescription, "our site (https://example.com/page)") {
			t.Fatalf("unexpected rendering: %q", got.FormattedDescription)
		}
	})

	t.Run("list_items_become_bullets", func(t *testing.T) {
		t.Parallel()
		got := Describe("<ul><li>Worship</li><li>Potluck</li></ul>", event.LangEnglish).FormattedDescription
		if !strings.Contains(got, "• Worship") || !strings.Contains(got, "• Potluck") {
			t.Fatalf("unexpected rendering: %q", got)
		}
	})

	t.Run("table_becomes_pipe_rows", func(t *testing.T) {
		t.Parallel()
		in := "<table><tr><td>Date</td><td>Dec 24</td></tr><tr><td>Time</td><td>18h00</td></tr></table>"
		got := Describe(in, event.LangEnglish).FormattedDescription
		if !strings.Contains(got, "Date | Dec 24") || !strings.Contains(got, "Time | 18h00") {
			t.Fatalf("unexpected rendering: %q", got)
		}
	})

	t.Run("key_value_block_leads", func(t *testing.T) {
		t.Parallel()
		in := "Come early.<br><b>Speaker:</b> Jean Tremblay"
		got := Describe(in, event.LangEnglish).FormattedDescription
		if !strings.HasPrefix(got, "Speaker: Jean Tremblay") {
			t.Fatalf("expected key-value block to lead, got %q", got)
		}
	})

	t.Run("excess_newlines_collapse", func(t *testing.T) {
		t.Parallel()
		got := Describe("First<br><br><br><br>Second", event.LangEnglish).FormattedDescription
		if got != "First\n\nSecond" {
			t.Fatalf("unexpected rendering: %q", got)
		}
	})

	t.Run("empty_input", func(t *testing.T) {
		t.Parallel()
		got := Describe("   ", event.LangEnglish)
		if got.FormattedDescription != "" || got.DetailsURL != "" || got.Attachments != nil {
			t.Fatalf("expected zero result, got %+v", got)
		}
	})
}

func TestExtractAttachmentLinks(t *testing.T) {
	t.Parallel()

	t.Run("anchor_title_and_bare_url_fallback", func(t *testing.T) {
		t.Parallel()
		in := `<a href="https://example.com/flyer.pdf">Event flyer</a> and https://drive.google.com/file/d/abc123XYZ/view`
		got := ExtractAttachmentLinks(in)
		if len(got) != 2 {
			t.Fatalf("expected 2 attachments, got %d: %+v", len(got), got)
		}
		if got[0].Title != "Event flyer" || got[0].URL != "https://example.com/flyer.pdf" {
			t.Fatalf("unexpected first attachment: %+v", got[0])
		}
		if got[1].Title != "Link to drive.google.com" {
			t.Fatalf("unexpected fallback title: %+v", got[1])
		}
	})

	t.Run("dedup_by_exact_url", func(t *testing.T) {
		t.Parallel()
		in := `<a href="https://docs.google.com/document/d/xyz">Notes</a> https://docs.google.com/document/d/xyz`
		got := ExtractAttachmentLinks(in)
		if len(got) != 1 {
			t.Fatalf("expected 1 attachment after dedup, got %d: %+v", len(got), got)
		}
		if got[0].Title != "Notes" {
			t.Fatalf("expected anchor title to win, got %+v", got[0])
		}
	})

	t.Run("www_stripped_from_fallback_title", func(t *testing.T) {
		t.Parallel()
		got := ExtractAttachmentLinks("See https://www.example.org/info.")
		if len(got) != 1 {
			t.Fatalf("expected 1 attachment, got %d", len(got))
		}
		if got[0].Title != "Link to example.org" {
			t.Fatalf("unexpected title: %q", got[0].Title)
		}
		if got[0].URL != "https://www.example.org/info" {
			t.Fatalf("expected trailing punctuation trimmed, got %q", got[0].URL)
		}
	})

	t.Run("no_links", func(t *testing.T) {
		t.Parallel()
		if got := ExtractAttachmentLinks("plain text only"); got != nil {
			t.Fatalf("expected nil, got %+v", got)
		}
	})
}

func TestDescribe_DetailsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		lang event.Language
		out  string
	}{
		{
			name: "plain_details_line_rewritten",
			in:   "Plus d'infos<br>Details: https://www.egliselacite.com/event-details/fete-2024?src=app",
			lang: event.LangFrench,
			out:  "https://fr.egliselacite.com/event-details/fete-2024",
		},
		{
			name: "bold_wrapped_details",
			in:   "<b>Details:</b> https://www.egliselacite.com/event-details/noel",
			lang: event.LangEnglish,
			out:  "https://www.egliselacite.com/event-details/noel",
		},
		{
			name: "invalid_short_slug_goes_canonical",
			in:   "Details: https://www.egliselacite.com/kwAKJW1JYirM3u7y5",
			lang: event.LangFrench,
			out:  "https://fr.egliselacite.com/events2",
		},
		{
			name: "anchor_details",
			in:   `Details: <a href="https://www.egliselacite.com/event-details/picnic">here</a>`,
			lang: event.LangEnglish,
			out:  "https://www.egliselacite.com/event-details/picnic",
		},
		{
			name: "no_details_line",
			in:   "Just a description with https://example.com/link",
			lang: event.LangEnglish,
			out:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Describe(tc.in, tc.lang).DetailsURL
			if got != tc.out {
				t.Fatalf("DetailsURL = %q, want %q", got, tc.out)
			}
		})
	}
}
