package content

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeNil(t *testing.T) {
	if got := Normalize(nil); got.Kind != KindEmpty {
		t.Errorf("Normalize(nil).Kind = %q, want empty", got.Kind)
	}
}

func TestNormalizeSentinelString(t *testing.T) {
	for _, in := range []string{"map[]", "  map[]  "} {
		if got := Normalize(in); got.Kind != KindEmpty {
			t.Errorf("Normalize(%q).Kind = %q, want empty", in, got.Kind)
		}
	}
}

func TestNormalizeHTMLString(t *testing.T) {
	in := "<p>Wealth preservation is a <strong>marathon</strong>.</p>"
	got := Normalize(in)
	if got.Kind != KindHTML || got.HTML != in {
		t.Errorf("Normalize(html) = %+v", got)
	}
	if got.Render() != in {
		t.Errorf("Render() mutated trusted HTML: %q", got.Render())
	}
}

func TestNormalizePlainText(t *testing.T) {
	in := "Line one\n  indented line two"
	got := Normalize(in)
	if got.Kind != KindText || got.Text != in {
		t.Errorf("Normalize(text) = %+v", got)
	}
	rendered := got.Render()
	if !strings.Contains(rendered, "pre-wrap") {
		t.Errorf("text rendering should preserve whitespace, got %q", rendered)
	}
}

func TestNormalizeBlocks(t *testing.T) {
	raw := map[string]interface{}{
		"blocks": []interface{}{
			map[string]interface{}{"type": "header", "text": "Outlook", "level": float64(2)},
			map[string]interface{}{"type": "paragraph", "text": "Markets & cycles"},
			map[string]interface{}{
				"type":  "list",
				"style": "ordered",
				"items": []interface{}{"Equities", "Bonds"},
			},
		},
	}
	got := Normalize(raw)
	if got.Kind != KindBlocks || len(got.Blocks) != 3 {
		t.Fatalf("Normalize(blocks) = %+v", got)
	}

	rendered := got.Render()
	for _, want := range []string{"<h2>Outlook</h2>", "<p>Markets &amp; cycles</p>", "<ol>", "<li>Equities</li>"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered blocks missing %q:\n%s", want, rendered)
		}
	}
}

func TestNormalizeHeaderLevelClamped(t *testing.T) {
	raw := map[string]interface{}{
		"blocks": []interface{}{
			map[string]interface{}{"type": "header", "text": "Deep", "level": float64(9)},
			map[string]interface{}{"type": "header", "text": "Shallow", "level": float64(0)},
		},
	}
	got := Normalize(raw)
	if got.Blocks[0].Level != 6 {
		t.Errorf("level 9 clamped to %d, want 6", got.Blocks[0].Level)
	}
	if got.Blocks[1].Level != 1 {
		t.Errorf("level 0 clamped to %d, want 1", got.Blocks[1].Level)
	}
}

func TestNormalizeUnknownBlockDegradesToDump(t *testing.T) {
	raw := map[string]interface{}{
		"blocks": []interface{}{
			map[string]interface{}{"type": "embed", "service": "youtube"},
		},
	}
	got := Normalize(raw)
	if len(got.Blocks) != 1 || !got.Blocks[0].Unknown {
		t.Fatalf("unknown block not flagged: %+v", got.Blocks)
	}
	if !strings.Contains(got.Render(), "youtube") {
		t.Errorf("debug dump should include the raw block, got %q", got.Render())
	}
}

func TestNormalizeUnknownObjectShape(t *testing.T) {
	got := Normalize(map[string]interface{}{"paragraphs": []interface{}{"old"}})
	if got.Kind != KindRaw {
		t.Errorf("unrecognized object should become a raw dump, got %q", got.Kind)
	}
}

func TestSanitizeNestedSentinel(t *testing.T) {
	raw := map[string]interface{}{
		"blocks": []interface{}{
			map[string]interface{}{"type": "paragraph", "text": "kept"},
		},
		"zh": "map[]",
	}
	got := Normalize(raw)
	// The sentinel must be replaced by an empty object, never surface as the
	// literal string anywhere in the output.
	if strings.Contains(got.Render(), "map[]") {
		t.Errorf("sentinel leaked into rendered output: %q", got.Render())
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []interface{}{
		nil,
		"map[]",
		"<p>html</p>",
		"plain text",
		map[string]interface{}{
			"blocks": []interface{}{
				map[string]interface{}{"type": "paragraph", "text": "a"},
				map[string]interface{}{"type": "mystery"},
			},
		},
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize not idempotent for %v:\nonce:  %+v\ntwice: %+v", in, once, twice)
		}
	}
}

func TestNormalizeStored(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Kind
	}{
		{"empty", "", KindEmpty},
		{"sentinel", "map[]", KindEmpty},
		{"html", "<h1>Title</h1>", KindHTML},
		{"text", "just words", KindText},
		{"blocks json", `{"blocks":[{"type":"paragraph","text":"hi"}]}`, KindBlocks},
		{"other json", `{"version":"2.1"}`, KindRaw},
		{"broken json", `{"blocks": [`, KindText},
	}
	for _, tc := range cases {
		if got := NormalizeStored(tc.in); got.Kind != tc.want {
			t.Errorf("%s: NormalizeStored(%q).Kind = %q, want %q", tc.name, tc.in, got.Kind, tc.want)
		}
	}
}

func TestNormalizeStoredEditorDataShape(t *testing.T) {
	in := `{"blocks":[{"type":"header","data":{"text":"From the editor","level":3}}]}`
	got := NormalizeStored(in)
	if got.Kind != KindBlocks || len(got.Blocks) != 1 {
		t.Fatalf("NormalizeStored(editor shape) = %+v", got)
	}
	if got.Blocks[0].Text != "From the editor" || got.Blocks[0].Level != 3 {
		t.Errorf("editor data fields not read: %+v", got.Blocks[0])
	}
}
