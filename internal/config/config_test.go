package config

import "testing"

func TestDefaultHasSensibleZeroValues(t *testing.T) {
	ctx := Default()
	if ctx.Root != "." {
		t.Fatalf("Root = %q, want \".\"", ctx.Root)
	}
	if ctx.Threads <= 0 {
		t.Fatalf("Threads = %d, want > 0", ctx.Threads)
	}
	if ctx.Level != -1 {
		t.Fatalf("Level = %d, want -1 (unlimited)", ctx.Level)
	}
	if !ctx.SkipNames[".snapshot"] {
		t.Fatalf("expected .snapshot in default SkipNames")
	}
	if ctx.Human {
		t.Fatalf("Human should default to false at the library level")
	}
}

func TestParseTimeFormatUnknownFallsBackToISO(t *testing.T) {
	if got := ParseTimeFormat("garbage"); got != TimeISO {
		t.Fatalf("ParseTimeFormat(garbage) = %v, want TimeISO", got)
	}
	if ParseTimeFormat("short") != TimeShort {
		t.Fatalf("expected short to parse to TimeShort")
	}
	if ParseTimeFormat("relative") != TimeRelative {
		t.Fatalf("expected relative to parse to TimeRelative")
	}
}

func TestParseColorModeUnknownFallsBackToAuto(t *testing.T) {
	if got := ParseColorMode("nonsense"); got != ColorAuto {
		t.Fatalf("ParseColorMode(nonsense) = %v, want ColorAuto", got)
	}
	if ParseColorMode("always") != ColorAlways {
		t.Fatalf("expected always to parse to ColorAlways")
	}
	if ParseColorMode("never") != ColorNever {
		t.Fatalf("expected never to parse to ColorNever")
	}
}
