package split

import (
	"strings"
	"testing"
)

func TestIsSeparator(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"=====", true},
		{"=", true},
		{"--------", true},
		{"--", true},
		{"+", true},
		{"OU", true},
		{"ou", true},
		{"  OU  ", true},
		{"-", false},
		{"+ txs usd 66.00", false},
		{"OUTRA OPCAO", false},
		{"=== note ===", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsSeparator(c.line); got != c.want {
			t.Errorf("IsSeparator(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestSplitOnSeparatorLines(t *testing.T) {
	text := "AZ 679 25NOV GRUFCO HS2 2040 #1200\ntarifa usd 2529.00 + txs usd 66.00\n=====\nLA 8065 10DEC GRUFCO HS1 2150 0545\ntarifa usd 1890.00 + txs usd 70.00"

	blocks := Split(text)
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d: %v", len(blocks), blocks)
	}
	if !strings.HasPrefix(blocks[0], "AZ 679") {
		t.Errorf("Unexpected first block: %q", blocks[0])
	}
	if !strings.HasPrefix(blocks[1], "LA 8065") {
		t.Errorf("Unexpected second block: %q", blocks[1])
	}
}

func TestSplitSeparatorVariants(t *testing.T) {
	for _, sep := range []string{"=====", "----", "+", "OU", "ou"} {
		text := "block one\n" + sep + "\nblock two"
		blocks := Split(text)
		if len(blocks) != 2 {
			t.Errorf("Separator %q: expected 2 blocks, got %d", sep, len(blocks))
		}
	}
}

func TestSplitNSeparatorsAtMostNPlusOneBlocks(t *testing.T) {
	// Adjacent separators and empty runs must not create empty blocks.
	text := "one\n=====\n=====\ntwo\n----\nthree\n====="
	blocks := Split(text)
	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d: %v", len(blocks), blocks)
	}
	for i, b := range blocks {
		if strings.TrimSpace(b) == "" {
			t.Errorf("Block %d is empty", i)
		}
	}
}

func TestSplitBlankRunFallback(t *testing.T) {
	text := "AZ 679 25NOV GRUFCO HS2 2040 #1200\ntarifa usd 100.00 + txs usd 10.00\n\n\nLA 8065 10DEC GRUFCO HS1 2150 0545"

	blocks := Split(text)
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks from blank-run split, got %d: %v", len(blocks), blocks)
	}
}

func TestSplitSingleBlankLineStaysTogether(t *testing.T) {
	text := "line one\n\nline two"
	blocks := Split(text)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d: %v", len(blocks), blocks)
	}
}

func TestSplitWholeTextFallback(t *testing.T) {
	text := "just one option here"
	blocks := Split(text)
	if len(blocks) != 1 || blocks[0] != text {
		t.Fatalf("Expected the whole text as one block, got %v", blocks)
	}
}

func TestSplitBlankInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\n\n"} {
		if blocks := Split(in); len(blocks) != 0 {
			t.Errorf("Split(%q): expected no blocks, got %v", in, blocks)
		}
	}
}

func TestSplitStripMetadata(t *testing.T) {
	text := "CONFIDENTIAL - agency notice\nREF 12345/BR\nAZ 679 25NOV GRUFCO HS2 2040 #1200\ntarifa usd 2529.00 + txs usd 66.00"

	blocks := SplitWith(text, Config{StripMetadata: true})
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if strings.Contains(blocks[0], "CONFIDENTIAL") {
		t.Errorf("Metadata lines should have been stripped: %q", blocks[0])
	}
	if !strings.HasPrefix(blocks[0], "AZ 679") {
		t.Errorf("Unexpected block content: %q", blocks[0])
	}
}

func TestSplitStripMetadataKeepsShortBlocks(t *testing.T) {
	text := "AZ 679 25NOV GRUFCO HS2 2040 #1200\ntarifa usd 2529.00 + txs usd 66.00"

	blocks := SplitWith(text, Config{StripMetadata: true})
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if !strings.HasPrefix(blocks[0], "AZ 679") {
		t.Errorf("Two-line block should be untouched: %q", blocks[0])
	}
}

func TestSplitSeparatorsDisableMetadataStrip(t *testing.T) {
	text := "header line\nsecond header\nreal content\n=====\nother option with enough lines\nsecond line\nthird line"

	blocks := SplitWith(text, Config{StripMetadata: true})
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
	if !strings.HasPrefix(blocks[0], "header line") {
		t.Errorf("Separator-split blocks must keep their leading lines: %q", blocks[0])
	}
}

func TestSplitCRLFNormalised(t *testing.T) {
	text := "one\r\n=====\r\ntwo"
	blocks := Split(text)
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d: %v", len(blocks), blocks)
	}
	if blocks[0] != "one" || blocks[1] != "two" {
		t.Errorf("Unexpected blocks: %v", blocks)
	}
}
