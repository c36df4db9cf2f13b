package saphint

import (
	"strings"

	"github.com/catrec/catrec/internal/token"
)

// StrategyInsufficient tags rows where nothing could be inferred. It is an
// auditable provenance value carried on the output, not a log message.
const StrategyInsufficient = "insufficient_source_metadata"

// Input carries the text sources inference draws from. The canonical
// (Maestro-side) values cross-validate ERP identifiers found in the raw
// source text.
type Input struct {
	SourceTable          string
	SourceField          string
	CanonicalField       string
	CanonicalDescription string
	CanonicalTable       string
}

// Inference is the inferred ERP origin of one mapping record.
type Inference struct {
	TCode           string
	ScreenName      string
	ScreenFieldName string
	Strategy        string
}

// Inferencer resolves ERP origin metadata against an injected hint table.
type Inferencer struct {
	Hints *HintTable
}

// New returns an Inferencer over the given hint table, falling back to the
// built-in defaults when nil.
func New(hints *HintTable) *Inferencer {
	if hints == nil {
		hints = Defaults()
	}
	return &Inferencer{Hints: hints}
}

// Infer derives the probable ERP transaction, screen, and screen field for
// one mapping record. The composed strategy label records which branches
// fired; StrategyInsufficient means no identifier survived validation.
func (inf *Inferencer) Infer(in Input) Inference {
	if strings.TrimSpace(in.SourceTable) == "" && strings.TrimSpace(in.SourceField) == "" {
		return Inference{Strategy: StrategyInsufficient}
	}

	var parts []string
	var result Inference

	tableToken, tableSource, confident := inf.selectTable(in)
	if tableToken != "" {
		if hint, ok := inf.Hints.Lookup(tableToken); ok {
			result.TCode = hint.TCode
			result.ScreenName = hint.ScreenName
		}
		parts = append(parts, tableSource+"_table_inferred")
		if confident {
			parts = append(parts, "hint_confident")
		}
	}

	if fieldToken := inf.selectField(in, tableToken); fieldToken != "" {
		result.ScreenFieldName = fieldToken
		parts = append(parts, "source_field_field_inferred")
	}

	if len(parts) == 0 {
		result.Strategy = StrategyInsufficient
	} else {
		result.Strategy = strings.Join(parts, "+")
	}
	return result
}

// selectTable scans candidate texts in priority order for a known ERP
// table mnemonic; the first hint-table hit wins. When no source mentions a
// known table, the first syntactically valid identifier is accepted as a
// low-confidence fallback.
func (inf *Inferencer) selectTable(in Input) (tok, source string, confident bool) {
	candidates := []struct {
		label string
		text  string
	}{
		{"canonical_field", in.CanonicalField},
		{"source_field", in.SourceField},
		{"canonical_description", in.CanonicalDescription},
		{"canonical_table", in.CanonicalTable},
		{"source_table", in.SourceTable},
	}

	tokenized := make([][]token.IdentifierPart, len(candidates))
	for i, c := range candidates {
		tokenized[i] = token.IdentifierParts(c.text)
	}

	for i, parts := range tokenized {
		for _, p := range parts {
			if !usableIdentifier(p) {
				continue
			}
			if _, ok := inf.Hints.Lookup(p.Upper); ok {
				return p.Upper, candidates[i].label, true
			}
		}
	}

	for i, parts := range tokenized {
		for _, p := range parts {
			if usableIdentifier(p) {
				return p.Upper, candidates[i].label, false
			}
		}
	}

	return "", "", false
}

// selectField scores the source-field identifier tokens and returns the
// best candidate screen field name. Fully upper-cased tokens score
// highest, earlier tokens get a positional bonus, and tokens echoed by the
// canonical metadata get a cross-validation boost. Ties keep the
// first-seen token.
func (inf *Inferencer) selectField(in Input, tableToken string) string {
	parts := token.IdentifierParts(in.SourceField)
	if len(parts) == 0 {
		return ""
	}

	canonical := inf.canonicalTokens(in)

	best := ""
	bestScore := 0
	for idx, p := range parts {
		if !usableIdentifier(p) {
			continue
		}
		if tableToken != "" && p.Upper == tableToken {
			continue
		}

		score := 0
		if token.IsUpper(p.Original) {
			score += 5
		} else if token.IsLower(p.Original) {
			score += 3
		}
		if strings.ContainsAny(p.Original, "0123456789") {
			score++
		}
		if bonus := 3 - idx; bonus > 0 {
			score += bonus
		}
		if _, ok := canonical[p.Upper]; ok {
			score++
		}

		if best == "" || score > bestScore {
			best = p.Upper
			bestScore = score
		}
	}
	return best
}

// canonicalTokens collects the valid identifiers appearing in the
// canonical field name, description, and table name.
func (inf *Inferencer) canonicalTokens(in Input) map[string]struct{} {
	out := make(map[string]struct{})
	for _, text := range []string{in.CanonicalField, in.CanonicalDescription, in.CanonicalTable} {
		for _, p := range token.IdentifierParts(text) {
			if token.ValidIdentifier(p.Upper) {
				out[p.Upper] = struct{}{}
			}
		}
	}
	return out
}

// usableIdentifier accepts tokens that are valid identifiers with uniform
// casing. Mixed-case tokens are prose, not ERP identifiers.
func usableIdentifier(p token.IdentifierPart) bool {
	if !token.ValidIdentifier(p.Upper) {
		return false
	}
	return token.IsUpper(p.Original) || token.IsLower(p.Original)
}
