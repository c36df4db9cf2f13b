package saphint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInfer_ExactHintHit(t *testing.T) {
	inf := New(nil)
	got := inf.Infer(Input{SourceTable: "KNA1", SourceField: "KUNNR"})

	if got.TCode != "XD03" {
		t.Errorf("tcode = %q, want XD03", got.TCode)
	}
	if got.ScreenName != "Display Customer (General Data)" {
		t.Errorf("screen = %q", got.ScreenName)
	}
	if got.ScreenFieldName != "KUNNR" {
		t.Errorf("screen field = %q, want KUNNR", got.ScreenFieldName)
	}
	if !strings.Contains(got.Strategy, "hint_confident") {
		t.Errorf("strategy = %q, want confident hint", got.Strategy)
	}
	if !strings.Contains(got.Strategy, "source_field_field_inferred") {
		t.Errorf("strategy = %q, want field branch recorded", got.Strategy)
	}
}

func TestInfer_MaterialHint(t *testing.T) {
	inf := New(nil)
	got := inf.Infer(Input{SourceTable: "MARA", SourceField: "MARA-MATNR"})

	if got.TCode != "MM03" || got.ScreenName != "Display Material" {
		t.Errorf("inference = %+v, want MM03 / Display Material", got)
	}
	// The table token itself must not be chosen as the field.
	if got.ScreenFieldName != "MATNR" {
		t.Errorf("screen field = %q, want MATNR", got.ScreenFieldName)
	}
}

func TestInfer_FallbackTableLowConfidence(t *testing.T) {
	inf := New(nil)
	got := inf.Infer(Input{SourceTable: "ZCUSTOM", SourceField: "FIELD1"})

	if got.TCode != "" || got.ScreenName != "" {
		t.Errorf("unknown table must not resolve a tcode: %+v", got)
	}
	if strings.Contains(got.Strategy, "hint_confident") {
		t.Errorf("strategy = %q, fallback must not claim confidence", got.Strategy)
	}
	if !strings.Contains(got.Strategy, "_table_inferred") {
		t.Errorf("strategy = %q, want table branch recorded", got.Strategy)
	}
}

func TestInfer_MixedCaseRejected(t *testing.T) {
	inf := New(nil)
	// Title-case prose only; nothing qualifies as an identifier of uniform
	// casing except the real field token.
	got := inf.Infer(Input{SourceField: "See Kna1 notes KUNNR"})
	if got.ScreenFieldName != "KUNNR" {
		t.Errorf("screen field = %q, want KUNNR (mixed-case tokens are noise)", got.ScreenFieldName)
	}
	if got.TCode != "" {
		t.Errorf("mixed-case Kna1 must not hit the hint table, got tcode %q", got.TCode)
	}
}

func TestInfer_Insufficient(t *testing.T) {
	inf := New(nil)
	got := inf.Infer(Input{})
	if got.Strategy != StrategyInsufficient {
		t.Errorf("strategy = %q, want %q", got.Strategy, StrategyInsufficient)
	}
	if got.TCode != "" || got.ScreenFieldName != "" {
		t.Errorf("empty input produced metadata: %+v", got)
	}

	// Short fragments only: nothing passes identifier validation.
	got = inf.Infer(Input{SourceField: "a-b"})
	if got.Strategy != StrategyInsufficient {
		t.Errorf("strategy = %q, want %q", got.Strategy, StrategyInsufficient)
	}
}

func TestInfer_CrossValidationBoost(t *testing.T) {
	inf := New(nil)
	// Two lower-case candidates at the same position weight; the one echoed
	// by the canonical description wins through the +1 boost.
	withBoost := inf.Infer(Input{
		SourceField:          "aaa bbb",
		CanonicalDescription: "maps to BBB in the target",
	})
	if withBoost.ScreenFieldName != "BBB" {
		t.Errorf("screen field = %q, want cross-validated BBB", withBoost.ScreenFieldName)
	}
}

func TestHintTable_OverrideAndLookup(t *testing.T) {
	h := Defaults()
	if _, ok := h.Lookup("KNA1"); !ok {
		t.Fatal("default lookup should be case-insensitive")
	}

	h.Override("zmat1", Hint{TCode: "ZM03", ScreenName: "Display Custom Material"})
	hint, ok := h.Lookup("ZMAT1")
	if !ok || hint.TCode != "ZM03" {
		t.Fatalf("override lookup = %+v, %v", hint, ok)
	}

	h.Override("kna1", Hint{TCode: "XD02", ScreenName: "Change Customer"})
	hint, _ = h.Lookup("kna1")
	if hint.TCode != "XD02" {
		t.Errorf("override must shadow the built-in, got %+v", hint)
	}
}

func TestHintTable_LoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hints.yaml")
	content := "hints:\n  zmat1:\n    tcode: ZM03\n    screen_name: Display Custom Material\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if _, ok := h.Lookup("kna1"); !ok {
		t.Error("defaults should survive a YAML load")
	}
	if hint, ok := h.Lookup("zmat1"); !ok || hint.TCode != "ZM03" {
		t.Errorf("loaded hint = %+v, %v", hint, ok)
	}
}
