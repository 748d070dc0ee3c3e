package debug

import (
	"testing"
)

func TestTreeWriter_String(t *testing.T) {
	tw := NewTreeWriter()
	if tw.String() != "" {
		t.Error("Expected empty string from new TreeWriter")
	}
	tw.w.WriteString("test content")
	if tw.String() != "test content" {
		t.Errorf("String() = %q, want %q", tw.String(), "test content")
	}
}

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{"no depth", 0, "FRAME", nil, "FRAME\n"},
		{"depth 1", 1, "TEXT", nil, "  TEXT\n"},
		{"depth 2", 2, "RECTANGLE", nil, "    RECTANGLE\n"},
		{"with formatting", 1, "children: %d", []any{3}, "  children: 3\n"},
		{"multiple args", 0, "%s [%s]", []any{"INSTANCE", "12:7"}, "INSTANCE [12:7]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		label string
		value string
		want  string
	}{
		{"empty value", 0, "characters", "", "characters: \n"},
		{"with value", 0, "characters", "Price: {price}", "characters: \"Price: {price}\"\n"},
		{"nested", 2, "name", "title", "    name: \"title\"\n"},
		{"quotes", 0, "expr", `kind == "a"`, "expr: \"kind == \\\"a\\\"\"\n"},
		{"newline", 1, "text", "a\nb", "  text: \"a\\nb\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(tt.depth, tt.label, tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Field(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"empty string", "", ""},
		{"string", "ul", "  k: \"ul\"\n"},
		{"false", false, ""},
		{"true", true, "  k=true\n"},
		{"zero int", 0, ""},
		{"int", 8, "  k=8\n"},
		{"zero float", 0.0, ""},
		{"float", 16.5, "  k=16.5\n"},
		{"whole float", 32.0, "  k=32\n"},
		{"other", []string{"a"}, "  k=[a]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Field(1, "k", tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("Field() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_List(t *testing.T) {
	tw := NewTreeWriter()
	tw.List(0, "empty", nil)
	if tw.String() != "" {
		t.Errorf("empty list produced %q", tw.String())
	}

	tw.List(1, "bindings", []string{"src=heroImage", "alt=name"})
	want := "  bindings (2)\n    src=heroImage\n    alt=name\n"
	if got := tw.String(); got != want {
		t.Errorf("List() = %q, want %q", got, want)
	}
}

func TestEncodeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"hello", `"hello"`},
		{`say "hi"`, `"say \"hi\""`},
		{"col1\tcol2", `"col1\tcol2"`},
		{`path\to\file`, `"path\\to\\file"`},
	}
	for _, tt := range tests {
		if got := encodeText(tt.input); got != tt.want {
			t.Errorf("encodeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTreeWriter_Tree(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "FRAME body")
	tw.Field(1, "tag", "body")
	tw.Line(1, "TEXT")
	tw.TextBlock(2, "characters", "{title}")
	tw.List(2, "bindings", []string{"title"})

	want := "FRAME body\n  tag: \"body\"\n  TEXT\n    characters: \"{title}\"\n    bindings (1)\n      title\n"
	if got := tw.String(); got != want {
		t.Errorf("tree:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
