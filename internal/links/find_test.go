package links

import "testing"

func TestFind(t *testing.T) {
	content := "See [docs](docs.md \"Docs\") and [empty]().\n" +
		"Use [the ref][Ref] or [Ref][].\n" +
		"Mail <mailto:me@example.com> or visit <https://example.com>.\n" +
		"\n" +
		"[ref]: https://example.com/ref 'Title'"

	got := Find(content)

	want := []Link{
		{Type: TypeInline, Text: "docs", URL: "docs.md", Line: 1, Column: 5, Raw: `[docs](docs.md "Docs")`},
		{Type: TypeInline, Text: "empty", URL: "", Line: 1, Column: 32, Raw: "[empty]()"},
		{Type: TypeReference, Text: "the ref", URL: "https://example.com/ref", Reference: "Ref", Line: 2, Column: 5, Raw: "[the ref][Ref]"},
		{Type: TypeReference, Text: "Ref", URL: "https://example.com/ref", Reference: "Ref", Line: 2, Column: 23, Raw: "[Ref][]"},
		{Type: TypeAutolink, Text: "mailto:me@example.com", URL: "mailto:me@example.com", Line: 3, Column: 6, Raw: "<mailto:me@example.com>"},
		{Type: TypeAutolink, Text: "https://example.com", URL: "https://example.com", Line: 3, Column: 39, Raw: "<https://example.com>"},
	}

	if len(got) != len(want) {
		t.Fatalf("got %d links, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link %d:\n got %+v\nwant %+v", i, got[i], want[i])
		}
	}
}

func TestFind_Malformed(t *testing.T) {
	tests := []string{
		"[unclosed](link",
		"just [brackets] here",
		"<not a link>",
		"<https://unterminated",
		"",
	}
	for _, content := range tests {
		if got := Find(content); len(got) != 0 {
			t.Errorf("Find(%q) = %+v, want no links", content, got)
		}
	}
}

func TestFind_AngleBracketURL(t *testing.T) {
	got := Find("[x](<my file.md>)")
	if len(got) != 1 || got[0].URL != "my file.md" {
		t.Fatalf("got %+v", got)
	}
}

func TestDefinitions(t *testing.T) {
	content := "[A]: first.md\n" +
		"[b]: <second.md> \"Second\"\n" +
		"  [Multi  Word]: third.md (Third)\n" +
		"[a]: last.md\n" +
		"[not]: a definition because of trailing text here"

	defs := Definitions(content)

	want := map[string]string{
		"a":          "last.md",
		"b":          "second.md",
		"multi word": "third.md",
	}
	if len(defs) != len(want) {
		t.Fatalf("got %v, want %v", defs, want)
	}
	for k, v := range want {
		if defs[k] != v {
			t.Errorf("defs[%q] = %q, want %q", k, defs[k], v)
		}
	}
}

func TestFind_LineOrder(t *testing.T) {
	content := "<https://a.example> then [r][x]\n" +
		"[i](i.md)\n" +
		"[r2][x] and <https://b.example> and [i2](i2.md)\n" +
		"\n" +
		"[x]: x.md"

	got := Find(content)

	want := []struct {
		typ  Type
		line int
		col  int
	}{
		{TypeReference, 1, 26},
		{TypeAutolink, 1, 1},
		{TypeInline, 2, 1},
		{TypeInline, 3, 37},
		{TypeReference, 3, 1},
		{TypeAutolink, 3, 13},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d links, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Type != w.typ || got[i].Line != w.line || got[i].Column != w.col {
			t.Errorf("link %d: got %s at %d:%d, want %s at %d:%d",
				i, got[i].Type, got[i].Line, got[i].Column, w.typ, w.line, w.col)
		}
	}
}

func TestFind_SkipsFencedCode(t *testing.T) {
	content := "[before](a.md)\n" +
		"```markdown\n" +
		"[sample](nowhere.md) <https://example.com> [r][code]\n" +
		"[code]: inside.md\n" +
		"```\n" +
		"~~~~\n" +
		"[tilde](nowhere.md)\n" +
		"~~~~\n" +
		"[after][code]"

	got := Find(content)
	if len(got) != 2 {
		t.Fatalf("got %d links, want 2: %+v", len(got), got)
	}
	if got[0].URL != "a.md" || got[0].Line != 1 {
		t.Errorf("first link: got %+v", got[0])
	}
	// The definition inside the fence does not count.
	if got[1].Type != TypeReference || got[1].Line != 9 || got[1].URL != "" {
		t.Errorf("second link: got %+v", got[1])
	}
	if defs := Definitions(content); len(defs) != 0 {
		t.Errorf("definitions from a code block: %v", defs)
	}
}
