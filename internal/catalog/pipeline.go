package catalog

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"figurevault/internal/models"
)

// BuildPage runs the catalog view pipeline: filter the full catalog by the
// collector's settings, sort the survivors, then cut out the requested page.
// owned and wished may be nil for anonymous viewers.
func BuildPage(items []models.CatalogItem, owned map[string]*models.OwnershipRecord, wished map[string]bool, f models.FilterState) models.DisplayPage {
	f = f.Normalize()

	display := annotate(items, owned, wished)
	display = applyFilters(display, f)
	sortItems(display, f)

	return paginate(display, f)
}

func annotate(items []models.CatalogItem, owned map[string]*models.OwnershipRecord, wished map[string]bool) []models.DisplayItem {
	display := make([]models.DisplayItem, 0, len(items))
	for _, item := range items {
		d := models.DisplayItem{CatalogItem: item}
		if rec := owned[item.ID]; rec != nil {
			d.InCollection = true
			d.Ownership = rec
		}
		if wished[item.ID] {
			d.InWishlist = true
		}
		display = append(display, d)
	}
	return display
}

func applyFilters(items []models.DisplayItem, f models.FilterState) []models.DisplayItem {
	query := models.FoldSearchText(strings.TrimSpace(f.Query))

	filtered := items[:0:0]
	for _, item := range items {
		if query != "" && !matchesQuery(&item.CatalogItem, query) {
			continue
		}
		if !matchesFacet(f.Series, item.Series) {
			continue
		}
		if !matchesFacet(f.Type, item.Type) {
			continue
		}
		if !matchesFacet(f.Character, item.Character) {
			continue
		}
		if !matchesVisibility(&item, f.Visibility) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// matchesQuery checks the folded query against name and series. An item
// without a series cannot match on series; it is not treated as a wildcard.
func matchesQuery(item *models.CatalogItem, foldedQuery string) bool {
	if strings.Contains(models.FoldSearchText(item.Name), foldedQuery) {
		return true
	}
	return item.Series != "" && strings.Contains(models.FoldSearchText(item.Series), foldedQuery)
}

func matchesFacet(filter, value string) bool {
	return filter == models.FilterAll || filter == value
}

func matchesVisibility(item *models.DisplayItem, v models.Visibility) bool {
	switch v {
	case models.VisibilityCollected:
		return item.InCollection
	case models.VisibilityMissing:
		return !item.InCollection
	case models.VisibilityWishlist:
		return item.InWishlist
	default:
		return true
	}
}

func sortItems(items []models.DisplayItem, f models.FilterState) {
	if region, ok := f.SortKey.Region(); ok {
		sortByReleaseDate(items, region, f.Descending)
		return
	}
	sortByName(items, f.Locale, f.Descending)
}

func sortByName(items []models.DisplayItem, locale string, descending bool) {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.English
	}
	coll := collate.New(tag, collate.IgnoreCase)

	sort.SliceStable(items, func(i, j int) bool {
		cmp := coll.CompareString(items[i].Name, items[j].Name)
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

// sortByReleaseDate orders items by a regional release date. Items with no
// date for that region sort as the zero time, so they come first ascending
// and last descending.
func sortByReleaseDate(items []models.DisplayItem, region models.ReleaseRegion, descending bool) {
	dateOf := func(item *models.DisplayItem) time.Time {
		if d := item.ReleaseDate(region); d != nil {
			return *d
		}
		return time.Time{}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := dateOf(&items[i]), dateOf(&items[j])
		if descending {
			return a.After(b)
		}
		return a.Before(b)
	})
}

func paginate(items []models.DisplayItem, f models.FilterState) models.DisplayPage {
	total := len(items)
	pageCount := (total + f.PageSize - 1) / f.PageSize
	if pageCount < 1 {
		pageCount = 1
	}

	page := f.Page
	if page > pageCount {
		page = pageCount
	}

	start := (page - 1) * f.PageSize
	if start > total {
		start = total
	}
	end := start + f.PageSize
	if end > total {
		end = total
	}

	return models.DisplayPage{
		Items:      items[start:end],
		TotalCount: total,
		Page:       page,
		PageSize:   f.PageSize,
		PageCount:  pageCount,
	}
}
