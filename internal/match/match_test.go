package match

import (
	"testing"

	"github.com/catrec/catrec/internal/catalog"
)

func leftFields(names ...string) []catalog.ExtendedField {
	out := make([]catalog.ExtendedField, len(names))
	for i, n := range names {
		out[i] = catalog.ExtendedField{FieldName: n, TableName: "Part"}
	}
	return out
}

func rightRecords(targets ...string) []catalog.MappingRecord {
	out := make([]catalog.MappingRecord, len(targets))
	for i, tf := range targets {
		out[i] = catalog.MappingRecord{KnxTable: "Part", TargetField: tf}
	}
	return out
}

func TestReconcile_ExactMatchWinsOverLooserTiers(t *testing.T) {
	// Tier-1 precedence: CustomerName binds to its exact counterpart even
	// though "Name" would also match on a looser tier.
	records := Reconcile("Customer",
		leftFields("CustomerName"),
		rightRecords("CustomerName", "Name"))

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	m := records[0]
	if m.Status != catalog.StatusMatched || m.Tier != TierExact {
		t.Fatalf("first record = %+v, want tier-1 match", m)
	}
	if m.Right.TargetField != "CustomerName" {
		t.Errorf("matched %q, want CustomerName", m.Right.TargetField)
	}
	residue := records[1]
	if residue.Status != catalog.StatusEtnOnly || residue.Right.TargetField != "Name" {
		t.Errorf("residue = %+v, want ETN_ONLY Name", residue)
	}
}

func TestReconcile_ExactMatchCaseAndSpace(t *testing.T) {
	records := Reconcile("Part",
		leftFields("  PartNumber  "),
		rightRecords("partnumber"))
	if records[0].Status != catalog.StatusMatched || records[0].Tier != TierExact {
		t.Fatalf("record = %+v, want exact match despite case and padding", records[0])
	}
}

func TestReconcile_SuffixKeyTier(t *testing.T) {
	records := Reconcile("Allocation",
		leftFields("    Part.Name"),
		rightRecords("Name"))

	if records[0].Status != catalog.StatusMatched {
		t.Fatalf("record = %+v, want match", records[0])
	}
	if records[0].Tier != TierSuffixKey {
		t.Errorf("tier = %d, want %d", records[0].Tier, TierSuffixKey)
	}
	if records[0].Rationale == "" {
		t.Error("suffix match should carry a rationale")
	}
}

func TestReconcile_SuffixKeyPrefersLongestChain(t *testing.T) {
	// "Supplier.Part.Name" shares "part.name" with the second candidate and
	// only "name" with the first; the longer chain must win.
	records := Reconcile("Supplier",
		leftFields("Supplier.Part.Name"),
		rightRecords("Customer Name", "Part Name"))

	m := records[0]
	if m.Status != catalog.StatusMatched || m.Right.TargetField != "Part Name" {
		t.Fatalf("matched %+v, want Part Name", m)
	}
}

func TestReconcile_TokenBagTier(t *testing.T) {
	records := Reconcile("Part",
		leftFields("Lead_Time_Offset"),
		rightRecords("Offset for Lead Time"))

	m := records[0]
	if m.Status != catalog.StatusMatched || m.Tier != TierTokenBag {
		t.Fatalf("record = %+v, want tier-3 match", m)
	}
}

func TestReconcile_TokenBagBelowThreshold(t *testing.T) {
	// A single shared token is noise, not a match.
	records := Reconcile("Part",
		leftFields("SafetyStock"),
		rightRecords("Safety Flag Indicator"))

	if records[0].Status == catalog.StatusMatched {
		t.Fatalf("spurious single-token match: %+v", records[0])
	}
}

func TestReconcile_ExclusivityAndCompleteness(t *testing.T) {
	left := leftFields("Name", "Site", "Quantity", "PlannerCode")
	right := rightRecords("Name", "Site", "Planner Code", "Unrelated Thing")

	records := Reconcile("Part", left, right)

	leftSeen := make(map[*catalog.ExtendedField]int)
	rightSeen := make(map[*catalog.MappingRecord]int)
	for i := range records {
		r := &records[i]
		if r.Left == nil && r.Right == nil {
			t.Fatal("record with both sides nil")
		}
		if r.Status == catalog.StatusMatched && (r.Left == nil || r.Right == nil) {
			t.Fatalf("MATCHED record missing a side: %+v", r)
		}
		if r.Left != nil {
			leftSeen[r.Left]++
		}
		if r.Right != nil {
			rightSeen[r.Right]++
		}
	}

	if len(leftSeen) != len(left) {
		t.Errorf("left appearances = %d, want %d", len(leftSeen), len(left))
	}
	if len(rightSeen) != len(right) {
		t.Errorf("right appearances = %d, want %d", len(rightSeen), len(right))
	}
	for f, n := range leftSeen {
		if n != 1 {
			t.Errorf("left field %q appeared %d times", f.FieldName, n)
		}
	}
	for r, n := range rightSeen {
		if n != 1 {
			t.Errorf("right record %q appeared %d times", r.TargetField, n)
		}
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	left := leftFields("Part.Name", "Site Name", "Description", "OnHandQty")
	right := rightRecords("Name", "Site", "On Hand Quantity", "Notes Field")

	first := Reconcile("OnHand", left, right)
	second := Reconcile("OnHand", left, right)

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Status != second[i].Status || first[i].Tier != second[i].Tier {
			t.Errorf("record %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestReconcile_EmptySides(t *testing.T) {
	records := Reconcile("Ghost", nil, rightRecords("Orphan Field"))
	if len(records) != 1 || records[0].Status != catalog.StatusEtnOnly {
		t.Fatalf("records = %+v, want single ETN_ONLY", records)
	}

	records = Reconcile("Ghost", leftFields("Orphan"), nil)
	if len(records) != 1 || records[0].Status != catalog.StatusKnxOnly {
		t.Fatalf("records = %+v, want single KNX_ONLY", records)
	}

	if got := Reconcile("Ghost", nil, nil); len(got) != 0 {
		t.Fatalf("records = %+v, want none", got)
	}
}
