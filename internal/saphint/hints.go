// Package saphint infers probable ERP transaction codes, screen names, and
// screen field names from the weakly structured source metadata carried on
// ETN mapping records.
package saphint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Hint maps a known ERP table mnemonic to its display transaction.
type Hint struct {
	TCode      string `yaml:"tcode"`
	ScreenName string `yaml:"screen_name"`
}

// HintTable holds the mnemonic lookup used during table identification.
// It is configuration data: the built-in set can be extended or replaced
// from a YAML file without touching inference logic.
type HintTable struct {
	Hints     map[string]Hint `yaml:"hints"`
	Overrides map[string]Hint `yaml:"overrides,omitempty"`
}

// Defaults returns the built-in hint set for the SAP ECC tables seen in
// the integration map.
func Defaults() *HintTable {
	return &HintTable{Hints: map[string]Hint{
		"kna1":  {TCode: "XD03", ScreenName: "Display Customer (General Data)"},
		"knvv":  {TCode: "XD03", ScreenName: "Display Customer (Sales Area Data)"},
		"mara":  {TCode: "MM03", ScreenName: "Display Material"},
		"marc":  {TCode: "MM03", ScreenName: "Display Material - Plant Data"},
		"mbew":  {TCode: "MM03", ScreenName: "Display Material Valuation"},
		"makt":  {TCode: "MM03", ScreenName: "Display Material Description"},
		"tvkot": {TCode: "VK01", ScreenName: "Maintain Sales Document Types"},
		"t438m": {TCode: "MD04", ScreenName: "Display Stock/Requirements List"},
	}}
}

// Lookup returns the hint for a table mnemonic, case-insensitively.
// Overrides shadow the built-in set.
func (h *HintTable) Lookup(mnemonic string) (Hint, bool) {
	key := strings.ToLower(strings.TrimSpace(mnemonic))
	if hint, ok := h.Overrides[key]; ok {
		return hint, true
	}
	hint, ok := h.Hints[key]
	return hint, ok
}

// Override adds or replaces a hint for the given mnemonic.
func (h *HintTable) Override(mnemonic string, hint Hint) {
	if h.Overrides == nil {
		h.Overrides = make(map[string]Hint)
	}
	h.Overrides[strings.ToLower(strings.TrimSpace(mnemonic))] = hint
}

// Mnemonics returns all known mnemonics in sorted order.
func (h *HintTable) Mnemonics() []string {
	seen := make(map[string]bool, len(h.Hints)+len(h.Overrides))
	for k := range h.Hints {
		seen[k] = true
	}
	for k := range h.Overrides {
		seen[k] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LoadYAML reads a hint table from a YAML file, layered over the defaults.
func LoadYAML(path string) (*HintTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hint file: %w", err)
	}
	loaded := &HintTable{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing hints: %w", err)
	}

	h := Defaults()
	for k, v := range loaded.Hints {
		h.Override(k, v)
	}
	for k, v := range loaded.Overrides {
		h.Override(k, v)
	}
	return h, nil
}

// WriteYAML writes the hint table to a YAML file at the given path.
func (h *HintTable) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshaling hints: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
