package paging

import (
	"math"
	"net/http/httptest"
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"1", 1},
		{"2", 2},
		{" 3 ", 3},
		{"0", 1},
		{"-4", 1},
		{"abc", 1},
		{"2.5", 1},
		{"999", 999},
		{"99999999999999999999", math.MaxInt},
		{"+99999999999999999999", math.MaxInt},
		{"-99999999999999999999", 1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseNumber(tt.in); got != tt.want {
				t.Errorf("ParseNumber(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	req := httptest.NewRequest("GET", "/?page=3", nil)
	if got := ParsePage(req); got != 3 {
		t.Errorf("ParsePage() = %d, want 3", got)
	}

	req = httptest.NewRequest("GET", "/", nil)
	if got := ParsePage(req); got != 1 {
		t.Errorf("ParsePage() without param = %d, want 1", got)
	}
}

func TestNumPages(t *testing.T) {
	tests := []struct {
		total int64
		want  int
	}{
		{0, 1},
		{1, 1},
		{10, 1},
		{11, 2},
		{13, 2},
		{20, 2},
		{21, 3},
	}
	for _, tt := range tests {
		if got := NumPages(tt.total, PageSize); got != tt.want {
			t.Errorf("NumPages(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestCompute_ThirteenItems(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		wantNum   int
		wantStart int
		wantEnd   int
		wantPrev  bool
		wantNext  bool
	}{
		{"first page", 1, 1, 1, 10, false, true},
		{"second page", 2, 2, 11, 13, true, false},
		{"past the end clamps to last", 3, 2, 11, 13, true, false},
		{"far past the end clamps to last", 50, 2, 11, 13, true, false},
		{"zero clamps to first", 0, 1, 1, 10, false, true},
		{"negative clamps to first", -2, 1, 1, 10, false, true},
		{"overflowing number clamps to last", ParseNumber("99999999999999999999"), 2, 11, 13, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Compute(tt.requested, 13)
			if p.Number != tt.wantNum {
				t.Errorf("Number = %d, want %d", p.Number, tt.wantNum)
			}
			if p.NumPages != 2 {
				t.Errorf("NumPages = %d, want 2", p.NumPages)
			}
			if p.Start != tt.wantStart || p.End != tt.wantEnd {
				t.Errorf("range = %d-%d, want %d-%d", p.Start, p.End, tt.wantStart, tt.wantEnd)
			}
			if p.HasPrev != tt.wantPrev || p.HasNext != tt.wantNext {
				t.Errorf("HasPrev/HasNext = %v/%v, want %v/%v", p.HasPrev, p.HasNext, tt.wantPrev, tt.wantNext)
			}
		})
	}
}

func TestCompute_OffsetAndLimit(t *testing.T) {
	p := Compute(2, 13)
	if p.Offset() != 10 {
		t.Errorf("Offset() = %d, want 10", p.Offset())
	}
	if p.Limit() != PageSize {
		t.Errorf("Limit() = %d, want %d", p.Limit(), PageSize)
	}
	if p.PrevNumber != 1 || p.NextNumber != 0 {
		t.Errorf("PrevNumber/NextNumber = %d/%d, want 1/0", p.PrevNumber, p.NextNumber)
	}
}

func TestCompute_Empty(t *testing.T) {
	p := Compute(4, 0)
	if p.Number != 1 || p.NumPages != 1 {
		t.Errorf("empty set: Number=%d NumPages=%d, want 1/1", p.Number, p.NumPages)
	}
	if p.Start != 0 || p.End != 0 {
		t.Errorf("empty set: range = %d-%d, want 0-0", p.Start, p.End)
	}
	if p.HasPrev || p.HasNext {
		t.Error("empty set should have neither prev nor next")
	}
}

func TestComputeWithSize(t *testing.T) {
	p := ComputeWithSize(2, 5, 2)
	if p.Number != 2 || p.NumPages != 3 || p.Start != 3 || p.End != 4 {
		t.Errorf("got %+v", p)
	}
}
