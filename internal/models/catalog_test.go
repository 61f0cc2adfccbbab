package models

import (
	"testing"
	"time"
)

func TestClampPageSize(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{10, 10},
		{20, 20},
		{50, 50},
		{100, 100},
		{0, DefaultPageSize},
		{7, DefaultPageSize},
		{-5, DefaultPageSize},
		{1000, DefaultPageSize},
	}

	for _, tt := range tests {
		if got := ClampPageSize(tt.size); got != tt.want {
			t.Errorf("ClampPageSize(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestFilterState_Normalize(t *testing.T) {
	f := FilterState{}.Normalize()

	if f.Series != FilterAll || f.Type != FilterAll || f.Character != FilterAll {
		t.Error("empty categorical filters should normalize to the all sentinel")
	}
	if f.Visibility != VisibilityAll {
		t.Errorf("visibility = %q, want %q", f.Visibility, VisibilityAll)
	}
	if f.SortKey != SortByName {
		t.Errorf("sort key = %q, want %q", f.SortKey, SortByName)
	}
	if f.Page != 1 {
		t.Errorf("page = %d, want 1", f.Page)
	}
	if f.PageSize != DefaultPageSize {
		t.Errorf("page size = %d, want %d", f.PageSize, DefaultPageSize)
	}
}

func TestFilterState_NormalizeKeepsValidValues(t *testing.T) {
	f := FilterState{
		Series:     "Super Mario",
		Visibility: VisibilityWishlist,
		SortKey:    SortByReleaseJP,
		Page:       3,
		PageSize:   50,
	}.Normalize()

	if f.Series != "Super Mario" {
		t.Errorf("series = %q, want untouched", f.Series)
	}
	if f.Visibility != VisibilityWishlist || f.SortKey != SortByReleaseJP {
		t.Error("valid visibility and sort key should be kept")
	}
	if f.Page != 3 || f.PageSize != 50 {
		t.Errorf("page/pageSize = %d/%d, want 3/50", f.Page, f.PageSize)
	}
}

func TestFilterState_NormalizeRejectsUnknown(t *testing.T) {
	f := FilterState{
		Visibility: "bogus",
		SortKey:    "price",
		Page:       -2,
	}.Normalize()

	if f.Visibility != VisibilityAll {
		t.Errorf("unknown visibility normalized to %q, want %q", f.Visibility, VisibilityAll)
	}
	if f.SortKey != SortByName {
		t.Errorf("unknown sort key normalized to %q, want %q", f.SortKey, SortByName)
	}
	if f.Page != 1 {
		t.Errorf("negative page normalized to %d, want 1", f.Page)
	}
}

func TestSortKey_Region(t *testing.T) {
	tests := []struct {
		key        SortKey
		wantRegion ReleaseRegion
		wantOK     bool
	}{
		{SortByReleaseNA, RegionNA, true},
		{SortByReleaseEU, RegionEU, true},
		{SortByReleaseJP, RegionJP, true},
		{SortByReleaseAU, RegionAU, true},
		{SortByName, "", false},
		{"bogus", "", false},
	}

	for _, tt := range tests {
		region, ok := tt.key.Region()
		if region != tt.wantRegion || ok != tt.wantOK {
			t.Errorf("SortKey(%q).Region() = (%q, %v), want (%q, %v)", tt.key, region, ok, tt.wantRegion, tt.wantOK)
		}
	}
}

func TestCatalogItem_ReleaseDate(t *testing.T) {
	na := time.Date(2014, 11, 21, 0, 0, 0, 0, time.UTC)
	item := CatalogItem{ReleaseNA: &na}

	if d := item.ReleaseDate(RegionNA); d == nil || !d.Equal(na) {
		t.Errorf("ReleaseDate(na) = %v, want %v", d, na)
	}
	if d := item.ReleaseDate(RegionJP); d != nil {
		t.Errorf("ReleaseDate(jp) = %v, want nil", d)
	}
	if d := item.ReleaseDate("mars"); d != nil {
		t.Errorf("ReleaseDate(unknown) = %v, want nil", d)
	}
}

func TestFoldSearchText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "MARIO", "mario"},
		{"passes through ascii", "link", "link"},
		{"composes decomposed accents", "cafe\u0301", "caf\u00e9"},
		{"lowercases accented", "CAF\u00c9", "caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FoldSearchText(tt.in); got != tt.want {
				t.Errorf("FoldSearchText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
