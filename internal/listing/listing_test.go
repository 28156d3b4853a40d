package listing

import (
	"reflect"
	"testing"
)

type row struct {
	ID       string
	Customer string
	Status   string
	Amount   int64
	Date     int64
}

var rows = []row{
	{ID: "t1", Customer: "Acme Corp", Status: "completed", Amount: 500, Date: 30},
	{ID: "t2", Customer: "Globex", Status: "pending", Amount: 1500, Date: 10},
	{ID: "t3", Customer: "acme labs", Status: "completed", Amount: 1500, Date: 20},
	{ID: "t4", Customer: "Initech", Status: "failed", Amount: 100, Date: 40},
}

func TestFilterByMissingStatusIsEmpty(t *testing.T) {
	got := Filter(rows, func(r row) bool { return EqualsFold("cancelled", r.Status) })
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(got))
	}
}

func TestFilterAllReturnsOriginalOrder(t *testing.T) {
	for _, wanted := range []string{"", "all", "ALL"} {
		got := Filter(rows, func(r row) bool { return EqualsFold(wanted, r.Status) })
		if !reflect.DeepEqual(got, rows) {
			t.Fatalf("filter %q changed the collection: %v", wanted, got)
		}
	}
}

func TestMatchesAcrossFields(t *testing.T) {
	got := Filter(rows, func(r row) bool { return Matches("acme", r.ID, r.Customer) })
	if len(got) != 2 || got[0].ID != "t1" || got[1].ID != "t3" {
		t.Fatalf("search result = %v", got)
	}
	if !Matches("", "anything") {
		t.Fatal("empty term must match")
	}
	if Matches("zzz", "Acme", "t1") {
		t.Fatal("unexpected match")
	}
}

func TestDateDescOrdering(t *testing.T) {
	got := SortBy(rows, DateDesc(func(r row) int64 { return r.Date }))
	for i := 1; i < len(got); i++ {
		if got[i-1].Date < got[i].Date {
			t.Fatalf("position %d: %d before %d", i, got[i-1].Date, got[i].Date)
		}
	}
	if len(rows) != 4 || rows[0].ID != "t1" {
		t.Fatal("input slice was mutated")
	}
}

func TestAmountDescStableOnTies(t *testing.T) {
	got := SortBy(rows, AmountDesc(func(r row) int64 { return r.Amount }))
	if got[0].ID != "t2" || got[1].ID != "t3" {
		t.Fatalf("ties must keep input order: %v", got)
	}
}

func TestStatusAscLexicographic(t *testing.T) {
	got := SortBy(rows, StatusAsc(func(r row) string { return r.Status }))
	want := []string{"completed", "completed", "failed", "pending"}
	for i, r := range got {
		if r.Status != want[i] {
			t.Fatalf("position %d = %s, want %s", i, r.Status, want[i])
		}
	}
}
