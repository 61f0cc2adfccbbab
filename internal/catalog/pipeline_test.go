package catalog

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"figurevault/internal/models"
)

func date(s string) *time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &d
}

func testItems() []models.CatalogItem {
	return []models.CatalogItem{
		{ID: "1", Name: "Mario", Series: "Super Mario", Type: "figure", Character: "Mario", ReleaseNA: date("2014-11-21"), ReleaseEU: date("2014-11-28")},
		{ID: "2", Name: "Link", Series: "The Legend of Zelda", Type: "figure", Character: "Link", ReleaseNA: date("2014-11-21")},
		{ID: "3", Name: "Pikachu", Series: "Pokemon", Type: "figure", Character: "Pikachu", ReleaseNA: date("2015-02-01"), ReleaseEU: date("2015-01-23")},
		{ID: "4", Name: "Mario - Gold Edition", Series: "Super Mario", Type: "figure", Character: "Mario", ReleaseNA: date("2015-03-20")},
		{ID: "5", Name: "Mystery Card", Type: "card", Character: "Unknown"},
	}
}

func TestBuildPage_QueryMatchesNameAndSeries(t *testing.T) {
	items := testItems()

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"matches name", "pikachu", []string{"3"}},
		{"matches series", "zelda", []string{"2"}},
		{"case insensitive", "MARIO", []string{"1", "4"}},
		{"substring", "gold", []string{"4"}},
		{"no match", "samus", nil},
		{"empty query matches all", "", []string{"2", "1", "4", "5", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := BuildPage(items, nil, nil, models.FilterState{Query: tt.query})
			assertItemIDs(t, page, tt.wantIDs)
		})
	}
}

func TestBuildPage_ItemWithoutSeriesDoesNotMatchSeriesQuery(t *testing.T) {
	// "Mystery Card" has no series; a query that misses its name must not
	// treat the missing series as a wildcard
	page := BuildPage(testItems(), nil, nil, models.FilterState{Query: "pokemon"})
	assertItemIDs(t, page, []string{"3"})
}

func TestBuildPage_CategoricalFilters(t *testing.T) {
	items := testItems()

	tests := []struct {
		name    string
		filter  models.FilterState
		wantIDs []string
	}{
		{"series", models.FilterState{Series: "Super Mario"}, []string{"1", "4"}},
		{"type", models.FilterState{Type: "card"}, []string{"5"}},
		{"character", models.FilterState{Character: "Link"}, []string{"2"}},
		{"all sentinel matches everything", models.FilterState{Series: "all"}, []string{"2", "1", "4", "5", "3"}},
		{"combined", models.FilterState{Series: "Super Mario", Character: "Mario"}, []string{"1", "4"}},
		{"no survivors", models.FilterState{Series: "Pokemon", Type: "card"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := BuildPage(items, nil, nil, tt.filter)
			assertItemIDs(t, page, tt.wantIDs)
		})
	}
}

func TestBuildPage_Visibility(t *testing.T) {
	items := testItems()
	owned := map[string]*models.OwnershipRecord{
		"1": {ID: "o1", ItemID: "1", Condition: models.ConditionNew},
		"3": {ID: "o3", ItemID: "3", Condition: models.ConditionUsed},
	}
	wished := map[string]bool{"2": true}

	tests := []struct {
		name       string
		visibility models.Visibility
		wantIDs    []string
	}{
		{"all", models.VisibilityAll, []string{"2", "1", "4", "5", "3"}},
		{"collected", models.VisibilityCollected, []string{"1", "3"}},
		{"missing", models.VisibilityMissing, []string{"2", "4", "5"}},
		{"wishlist", models.VisibilityWishlist, []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := BuildPage(items, owned, wished, models.FilterState{Visibility: tt.visibility})
			assertItemIDs(t, page, tt.wantIDs)
		})
	}
}

func TestBuildPage_AnnotatesOwnership(t *testing.T) {
	items := testItems()
	value := 39.99
	owned := map[string]*models.OwnershipRecord{
		"1": {ID: "o1", ItemID: "1", Boxed: true, Condition: models.ConditionNew, ValuePaid: &value},
	}
	wished := map[string]bool{"2": true}

	page := BuildPage(items, owned, wished, models.FilterState{})

	byID := make(map[string]models.DisplayItem)
	for _, item := range page.Items {
		byID[item.ID] = item
	}

	mario := byID["1"]
	if !mario.InCollection || mario.Ownership == nil {
		t.Fatal("owned item should be marked in collection with its record attached")
	}
	if !mario.Ownership.Boxed || mario.Ownership.ValuePaid == nil || *mario.Ownership.ValuePaid != 39.99 {
		t.Error("ownership record fields not carried through")
	}

	link := byID["2"]
	if link.InCollection || !link.InWishlist {
		t.Error("wishlisted item should be marked wished and not owned")
	}

	pikachu := byID["3"]
	if pikachu.InCollection || pikachu.InWishlist {
		t.Error("untouched item should be neither owned nor wished")
	}
}

func TestBuildPage_SortByName(t *testing.T) {
	page := BuildPage(testItems(), nil, nil, models.FilterState{SortKey: models.SortByName})
	assertItemIDs(t, page, []string{"2", "1", "4", "5", "3"})

	page = BuildPage(testItems(), nil, nil, models.FilterState{SortKey: models.SortByName, Descending: true})
	assertItemIDs(t, page, []string{"3", "5", "4", "1", "2"})
}

func TestBuildPage_SortByReleaseDate(t *testing.T) {
	// Ascending: undated items ("2" has no EU date, "4", "5") sort first,
	// keeping their relative input order
	page := BuildPage(testItems(), nil, nil, models.FilterState{SortKey: models.SortByReleaseEU})
	assertItemIDs(t, page, []string{"2", "4", "5", "1", "3"})

	// Descending: dated items first, newest to oldest, undated last
	page = BuildPage(testItems(), nil, nil, models.FilterState{SortKey: models.SortByReleaseEU, Descending: true})
	assertItemIDs(t, page, []string{"3", "1", "2", "4", "5"})
}

func TestBuildPage_SortIsStable(t *testing.T) {
	// Items 1 and 2 share the same NA release date; ascending order must
	// preserve their input order
	page := BuildPage(testItems(), nil, nil, models.FilterState{SortKey: models.SortByReleaseNA})
	assertItemIDs(t, page, []string{"5", "1", "2", "3", "4"})
}

func TestBuildPage_Pagination(t *testing.T) {
	items := make([]models.CatalogItem, 0, 25)
	for i := 0; i < 25; i++ {
		items = append(items, models.CatalogItem{
			ID:   string(rune('a' + i)),
			Name: string(rune('a' + i)),
		})
	}

	tests := []struct {
		name      string
		page      int
		pageSize  int
		wantLen   int
		wantPage  int
		wantCount int
	}{
		{"first page", 1, 10, 10, 1, 3},
		{"last partial page", 3, 10, 5, 3, 3},
		{"page past the end clamps to last", 9, 10, 5, 3, 3},
		{"invalid page size falls back to default", 1, 7, 20, 1, 2},
		{"exact fit", 1, 50, 25, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := BuildPage(items, nil, nil, models.FilterState{Page: tt.page, PageSize: tt.pageSize})
			if len(page.Items) != tt.wantLen {
				t.Errorf("len(items) = %d, want %d", len(page.Items), tt.wantLen)
			}
			if page.Page != tt.wantPage {
				t.Errorf("page = %d, want %d", page.Page, tt.wantPage)
			}
			if page.PageCount != tt.wantCount {
				t.Errorf("pageCount = %d, want %d", page.PageCount, tt.wantCount)
			}
			if page.TotalCount != 25 {
				t.Errorf("totalCount = %d, want 25", page.TotalCount)
			}
		})
	}
}

func TestBuildPage_EmptyCatalog(t *testing.T) {
	page := BuildPage(nil, nil, nil, models.FilterState{})
	if page.TotalCount != 0 || len(page.Items) != 0 {
		t.Error("empty catalog should produce an empty page")
	}
	if page.PageCount != 1 || page.Page != 1 {
		t.Errorf("empty catalog should report one empty page, got page=%d pageCount=%d", page.Page, page.PageCount)
	}
}

func TestBuildPage_FilterThenSortThenPaginate(t *testing.T) {
	// The page is cut after filtering, so totals reflect survivors only
	page := BuildPage(testItems(), nil, nil, models.FilterState{
		Series:   "Super Mario",
		SortKey:  models.SortByName,
		Page:     1,
		PageSize: 10,
	})

	if page.TotalCount != 2 {
		t.Fatalf("totalCount = %d, want 2", page.TotalCount)
	}
	assertItemIDs(t, page, []string{"1", "4"})
}

func TestBuildPage_UnicodeQueryFolding(t *testing.T) {
	items := []models.CatalogItem{
		{ID: "1", Name: "Pok\u00e9mon Caf\u00e9"},
	}

	// Decomposed "e" plus combining acute in the query must match the
	// composed form in the name
	page := BuildPage(items, nil, nil, models.FilterState{Query: "cafe\u0301"})
	assertItemIDs(t, page, []string{"1"})
}

func TestBuildPage_SortIdempotent(t *testing.T) {
	tests := []struct {
		name   string
		filter models.FilterState
	}{
		{"name ascending", models.FilterState{SortKey: models.SortByName, PageSize: 100}},
		{"name descending", models.FilterState{SortKey: models.SortByName, Descending: true, PageSize: 100}},
		{"release EU ascending", models.FilterState{SortKey: models.SortByReleaseEU, PageSize: 100}},
		{"release NA descending", models.FilterState{SortKey: models.SortByReleaseNA, Descending: true, PageSize: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := BuildPage(testItems(), nil, nil, tt.filter)

			// Feed the sorted order back in; re-sorting must not move anything
			resorted := make([]models.CatalogItem, 0, len(first.Items))
			for _, item := range first.Items {
				resorted = append(resorted, item.CatalogItem)
			}
			second := BuildPage(resorted, nil, nil, tt.filter)

			assertItemIDs(t, second, pageIDs(first))
		})
	}
}

func TestBuildPage_FilterOrderCommutative(t *testing.T) {
	owned := map[string]*models.OwnershipRecord{
		"1": {ID: "o1", ItemID: "1", Condition: models.ConditionNew},
		"3": {ID: "o3", ItemID: "3", Condition: models.ConditionUsed},
	}
	wished := map[string]bool{"2": true}

	combined := models.FilterState{
		Query:      "mario",
		Series:     "Super Mario",
		Visibility: models.VisibilityMissing,
	}

	base := annotate(testItems(), owned, wished)
	want := displayIDs(applyFilters(base, combined.Normalize()))
	if len(want) == 0 {
		t.Fatal("combined filter left no survivors, pick a less strict scenario")
	}

	// Applying the same stages one at a time must land on the same survivors
	// no matter the order
	orders := [][]models.FilterState{
		{{Query: "mario"}, {Series: "Super Mario"}, {Visibility: models.VisibilityMissing}},
		{{Visibility: models.VisibilityMissing}, {Query: "mario"}, {Series: "Super Mario"}},
		{{Series: "Super Mario"}, {Visibility: models.VisibilityMissing}, {Query: "mario"}},
	}

	for i, stages := range orders {
		survivors := annotate(testItems(), owned, wished)
		for _, stage := range stages {
			survivors = applyFilters(survivors, stage.Normalize())
		}
		if got := displayIDs(survivors); !reflect.DeepEqual(got, want) {
			t.Errorf("order %d: got %v, want %v", i, got, want)
		}
	}
}

func TestBuildPage_PaginationCoversFilteredSet(t *testing.T) {
	items := make([]models.CatalogItem, 0, 40)
	for i := 0; i < 40; i++ {
		itemType := "figure"
		if i%3 == 0 {
			itemType = "card"
		}
		items = append(items, models.CatalogItem{
			ID:   fmt.Sprintf("%02d", i),
			Name: fmt.Sprintf("Figure %02d", i),
			Type: itemType,
		})
	}

	full := BuildPage(items, nil, nil, models.FilterState{Type: "figure", SortKey: models.SortByName, PageSize: 100})
	want := pageIDs(full)
	if len(want) != 26 {
		t.Fatalf("filter kept %d items, want 26", len(want))
	}

	f := models.FilterState{Type: "figure", SortKey: models.SortByName, PageSize: 10, Page: 1}
	first := BuildPage(items, nil, nil, f)

	// Walking every page must reproduce the full sorted sequence with no
	// gaps or duplicates
	seen := make(map[string]bool)
	got := make([]string, 0, len(items))
	for p := 1; p <= first.PageCount; p++ {
		f.Page = p
		page := BuildPage(items, nil, nil, f)
		for _, item := range page.Items {
			if seen[item.ID] {
				t.Fatalf("item %s appears on more than one page", item.ID)
			}
			seen[item.ID] = true
			got = append(got, item.ID)
		}
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("concatenated pages = %v, want %v", got, want)
	}
}

func pageIDs(page models.DisplayPage) []string {
	ids := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func displayIDs(items []models.DisplayItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func assertItemIDs(t *testing.T, page models.DisplayPage, want []string) {
	t.Helper()

	if len(page.Items) != len(want) {
		got := make([]string, 0, len(page.Items))
		for _, item := range page.Items {
			got = append(got, item.ID)
		}
		t.Fatalf("got items %v, want %v", got, want)
	}
	for i, item := range page.Items {
		if item.ID != want[i] {
			got := make([]string, 0, len(page.Items))
			for _, it := range page.Items {
				got = append(got, it.ID)
			}
			t.Fatalf("got items %v, want %v", got, want)
		}
	}
}
