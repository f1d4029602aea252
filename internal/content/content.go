// Package content normalizes the heterogeneous article content shapes that
// accumulated in storage over the years: trusted HTML strings, a legacy
// {"blocks": [...]} JSON document, plain text, and the PostgreSQL empty-map
// sentinel "map[]". Everything funnels into a single tagged union decided
// once at the data-access boundary, so renderers never type-sniff again.
//
// The normalizer is purely defensive: a malformed shape degrades to a debug
// dump instead of failing, and normalizing already-normalized content is the
// identity.
package content

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// EmptyMapSentinel is the literal PostgreSQL renders an empty hstore/map as.
// It shows up nested inside partially populated multilingual records.
const EmptyMapSentinel = "map[]"

// Kind discriminates the Content union.
type Kind string

const (
	KindEmpty  Kind = "empty"
	KindHTML   Kind = "html"
	KindText   Kind = "text"
	KindBlocks Kind = "blocks"
	KindRaw    Kind = "raw"
)

// Block types understood by the legacy block structure.
const (
	BlockParagraph = "paragraph"
	BlockHeader    = "header"
	BlockList      = "list"
)

// Block is one element of legacy block content. Unknown types keep their
// raw JSON in Raw and render as a debug dump.
type Block struct {
	Type    string   `json:"type"`
	Text    string   `json:"text,omitempty"`
	Level   int      `json:"level,omitempty"`
	Style   string   `json:"style,omitempty"` // "ordered" or "unordered"
	Items   []string `json:"items,omitempty"`
	Raw     string   `json:"raw,omitempty"`
	Unknown bool     `json:"unknown,omitempty"`
}

// Content is the normalized, renderable form of stored article content.
type Content struct {
	Kind   Kind    `json:"kind"`
	HTML   string  `json:"html,omitempty"`   // KindHTML: trusted fragment
	Text   string  `json:"text,omitempty"`   // KindText: literal, whitespace preserved
	Blocks []Block `json:"blocks,omitempty"` // KindBlocks
	Raw    string  `json:"raw,omitempty"`    // KindRaw: debug JSON dump
}

// Normalize converts any stored content value into its renderable form.
// Detection order follows the historical renderer: nil and the empty-map
// sentinel collapse to empty; strings with angle brackets are trusted HTML;
// other strings are literal text; objects with a "blocks" array are walked
// block by block; anything else becomes a debug dump.
func Normalize(raw interface{}) Content {
	raw = sanitize(raw)

	switch v := raw.(type) {
	case nil:
		return Content{Kind: KindEmpty}
	case string:
		return normalizeString(v)
	case Content:
		// Already normalized.
		return v
	case map[string]interface{}:
		if len(v) == 0 {
			return Content{Kind: KindEmpty}
		}
		if blocks, ok := v["blocks"].([]interface{}); ok {
			return Content{Kind: KindBlocks, Blocks: normalizeBlocks(blocks)}
		}
		return Content{Kind: KindRaw, Raw: debugDump(v)}
	default:
		return Content{Kind: KindRaw, Raw: debugDump(v)}
	}
}

// NormalizeStored parses a raw database column and normalizes it. Columns
// hold either plain HTML/text or a JSON document; JSON is tried first so the
// legacy block structure survives the round trip through a text column.
func NormalizeStored(column string) Content {
	trimmed := strings.TrimSpace(column)
	if trimmed == "" || trimmed == EmptyMapSentinel {
		return Content{Kind: KindEmpty}
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var decoded interface{}
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return Normalize(decoded)
		}
		// Not valid JSON after all, fall through to string handling.
	}
	return Normalize(column)
}

func normalizeString(s string) Content {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == EmptyMapSentinel {
		return Content{Kind: KindEmpty}
	}
	if strings.Contains(s, "<") && strings.Contains(s, ">") {
		return Content{Kind: KindHTML, HTML: s}
	}
	return Content{Kind: KindText, Text: s}
}

// sanitize replaces every nested occurrence of the empty-map sentinel with
// an empty object so partially populated multilingual records cannot crash
// the renderer downstream.
func sanitize(raw interface{}) interface{} {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == EmptyMapSentinel {
			return map[string]interface{}{}
		}
		return v
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = sanitize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = sanitize(val)
		}
		return out
	default:
		return raw
	}
}

func normalizeBlocks(raw []interface{}) []Block {
	blocks := make([]Block, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			blocks = append(blocks, Block{Unknown: true, Raw: debugDump(item)})
			continue
		}
		blockType, _ := m["type"].(string)
		switch blockType {
		case BlockParagraph:
			blocks = append(blocks, Block{Type: BlockParagraph, Text: blockText(m)})
		case BlockHeader:
			level := 2
			if f, ok := blockField(m, "level").(float64); ok {
				level = int(f)
			}
			if level < 1 {
				level = 1
			} else if level > 6 {
				level = 6
			}
			blocks = append(blocks, Block{Type: BlockHeader, Text: blockText(m), Level: level})
		case BlockList:
			style, _ := blockField(m, "style").(string)
			if style != "ordered" {
				style = "unordered"
			}
			var items []string
			if rawItems, ok := blockField(m, "items").([]interface{}); ok {
				for _, it := range rawItems {
					if s, ok := it.(string); ok {
						items = append(items, s)
					} else {
						items = append(items, debugDump(it))
					}
				}
			}
			blocks = append(blocks, Block{Type: BlockList, Style: style, Items: items})
		default:
			blocks = append(blocks, Block{Type: blockType, Unknown: true, Raw: debugDump(m)})
		}
	}
	return blocks
}

// blockText reads the block's text from either the flat legacy shape
// {"type":"paragraph","text":...} or the editor shape with a "data" object.
func blockText(m map[string]interface{}) string {
	if s, ok := blockField(m, "text").(string); ok {
		return s
	}
	return ""
}

func blockField(m map[string]interface{}, key string) interface{} {
	if data, ok := m["data"].(map[string]interface{}); ok {
		if v, present := data[key]; present {
			return v
		}
	}
	return m[key]
}

func debugDump(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// Render emits the HTML fragment for the content. Trusted HTML passes
// through unescaped; text and block content are escaped; raw dumps render
// inside a <pre> so a malformed shape is visible instead of fatal.
func (c Content) Render() string {
	switch c.Kind {
	case KindHTML:
		return c.HTML
	case KindText:
		return `<p style="white-space: pre-wrap;">` + html.EscapeString(c.Text) + `</p>`
	case KindBlocks:
		var b strings.Builder
		for _, block := range c.Blocks {
			renderBlock(&b, block)
		}
		return b.String()
	case KindRaw:
		return "<pre>" + html.EscapeString(c.Raw) + "</pre>"
	default:
		return ""
	}
}

func renderBlock(b *strings.Builder, block Block) {
	if block.Unknown {
		b.WriteString("<pre>")
		b.WriteString(html.EscapeString(block.Raw))
		b.WriteString("</pre>")
		return
	}
	switch block.Type {
	case BlockParagraph:
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(block.Text))
		b.WriteString("</p>")
	case BlockHeader:
		fmt.Fprintf(b, "<h%d>%s</h%d>", block.Level, html.EscapeString(block.Text), block.Level)
	case BlockList:
		tag := "ul"
		if block.Style == "ordered" {
			tag = "ol"
		}
		b.WriteString("<" + tag + ">")
		for _, item := range block.Items {
			b.WriteString("<li>")
			b.WriteString(html.EscapeString(item))
			b.WriteString("</li>")
		}
		b.WriteString("</" + tag + ">")
	}
}
