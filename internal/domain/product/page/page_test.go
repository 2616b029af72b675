package page

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/prodsnap/internal/domain"
)

func TestNew_Bounds(t *testing.T) {
	tests := []struct {
		page, limit int
		wantErr     bool
	}{
		{1, 1, false},
		{1, MaxLimit, false},
		{7, 20, false},
		{0, 20, true},
		{-1, 20, true},
		{1, 0, true},
		{1, -5, true},
		{1, MaxLimit + 1, true},
	}
	for _, tc := range tests {
		_, err := New(tc.page, tc.limit)
		if (err != nil) != tc.wantErr {
			t.Errorf("New(%d, %d) err = %v, wantErr %v", tc.page, tc.limit, err, tc.wantErr)
		}
	}
}

func TestDefault(t *testing.T) {
	r := Default()
	if r.Page() != DefaultPage || r.Limit() != DefaultLimit {
		t.Errorf("Default() = (%d, %d)", r.Page(), r.Limit())
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{3, 1, 3},
		{3, 2, 2},
		{5, 0, 0},
	}
	for _, tc := range tests {
		if got := TotalPages(tc.total, tc.limit); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}

func TestSlice_PastEndIsEmpty(t *testing.T) {
	r, _ := New(5, 2)
	got := Slice([]int{1, 2, 3}, r)
	if len(got) != 0 {
		t.Errorf("Slice() = %v, want empty", got)
	}
}

func TestSlice_ConcatenationReconstructsSet(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}
	for limit := 1; limit <= 25; limit++ {
		total := TotalPages(len(items), limit)
		var all []int
		for p := 1; p <= total; p++ {
			r, err := New(p, limit)
			if err != nil {
				t.Fatalf("New(%d, %d): %v", p, limit, err)
			}
			all = append(all, Slice(items, r)...)
		}
		if len(all) != len(items) {
			t.Fatalf("limit %d: got %d items, want %d", limit, len(all), len(items))
		}
		for i, v := range all {
			if v != i {
				t.Fatalf("limit %d: position %d = %d", limit, i, v)
			}
		}
	}
}

func TestMetaFor(t *testing.T) {
	r, _ := New(2, 2)
	m := r.MetaFor(3)
	want := Meta{Page: 2, Limit: 2, Total: 3, TotalPages: 2}
	if m != want {
		t.Errorf("MetaFor() = %+v, want %+v", m, want)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestMeta_ValidateRejectsOutOfSchema(t *testing.T) {
	m := Meta{Page: 0, Limit: 101, Total: 0, TotalPages: 0}
	err := m.Validate()
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestBounds_HugePage(t *testing.T) {
	for _, pg := range []int{math.MaxInt, math.MaxInt/2 + 2, 1 << 62} {
		for _, limit := range []int{1, 2, 7, MaxLimit} {
			r, err := New(pg, limit)
			if err != nil {
				t.Fatalf("New(%d, %d): %v", pg, limit, err)
			}
			start, end := r.Bounds(3)
			if start != 3 || end != 3 {
				t.Errorf("Bounds(3) page=%d limit=%d = [%d, %d), want [3, 3)", pg, limit, start, end)
			}
			if got := Slice([]int{1, 2, 3}, r); len(got) != 0 {
				t.Errorf("Slice page=%d limit=%d = %v, want empty", pg, limit, got)
			}
		}
	}
}

func TestBounds_LastPartialPage(t *testing.T) {
	r, _ := New(2, 2)
	if start, end := r.Bounds(3); start != 2 || end != 3 {
		t.Errorf("Bounds(3) = [%d, %d), want [2, 3)", start, end)
	}
	r, _ = New(3, 2)
	if start, end := r.Bounds(4); start != 4 || end != 4 {
		t.Errorf("Bounds(4) = [%d, %d), want [4, 4)", start, end)
	}
}
