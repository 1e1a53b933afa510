package models

import "testing"

func TestFilterSelectionHashIsOrderIndependent(t *testing.T) {
	a := FilterSelection{"period": "weekly", "batch": "B-1"}
	b := FilterSelection{"batch": "B-1", "period": "weekly"}
	c := FilterSelection{"batch": "B-2", "period": "weekly"}

	if a.Hash() != b.Hash() {
		t.Fatalf("expected equal hashes for equal selections")
	}
	if a.Hash() == c.Hash() {
		t.Fatalf("expected different hashes for different selections")
	}
	if len(FilterSelection{}.Hash()) != 16 {
		t.Fatalf("unexpected hash length")
	}
}

func TestDashboardLookups(t *testing.T) {
	d := Dashboard{
		Filters: []Filter{{Name: "period", Kind: FilterSelect, Options: []Option{{Value: ""}, {Value: "daily"}}}},
		Actions: []Action{{Key: "export", Label: "Export", Acknowledgement: "Exporting..."}},
	}

	f, ok := d.Filter("period")
	if !ok || len(f.OptionValues()) != 2 {
		t.Fatalf("unexpected filter lookup result %+v", f)
	}
	if _, ok := d.Filter("missing"); ok {
		t.Fatalf("expected missing filter")
	}
	if a, ok := d.Action("export"); !ok || a.Acknowledgement != "Exporting..." {
		t.Fatalf("unexpected action lookup %+v", a)
	}
}

func TestKindsValid(t *testing.T) {
	if !FilterDate.Valid() || FilterKind("range").Valid() {
		t.Fatalf("unexpected filter kind validity")
	}
	if !CardMetrics.Valid() || CardKind("pie").Valid() {
		t.Fatalf("unexpected card kind validity")
	}
}
