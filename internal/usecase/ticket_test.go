package usecase

import "testing"

func TestSelectionLastWriterWins(t *testing.T) {
	var s Selection
	if _, ok := s.Begin(); ok {
		t.Fatal("no ticket before a selection")
	}

	a := s.Select("SPY")
	b := s.Select("QQQ")
	if a.ID == b.ID || a.Seq >= b.Seq {
		t.Fatalf("tickets must be unique and ordered: %+v %+v", a, b)
	}
	if s.Commit(a) {
		t.Fatal("result for a deselected symbol must be discarded")
	}

	r1, _ := s.Begin()
	r2, _ := s.Begin()
	if r1.Symbol != "QQQ" {
		t.Fatalf("reload must target the active symbol, got %s", r1.Symbol)
	}
	if !s.Commit(r2) {
		t.Fatal("newest result must apply")
	}
	if s.Commit(r1) || s.Commit(b) {
		t.Fatal("older results must not overwrite a newer one")
	}
	if s.Commit(r2) {
		t.Fatal("a result applies once")
	}

	s.Select("SPY")
	back := s.Select("QQQ")
	if !s.Commit(back) {
		t.Fatal("reselecting issues fresh tickets")
	}
}
