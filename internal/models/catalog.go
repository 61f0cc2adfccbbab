package models

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ReleaseRegion identifies a regional release date on a catalog item
type ReleaseRegion string

const (
	RegionNA ReleaseRegion = "na"
	RegionEU ReleaseRegion = "eu"
	RegionJP ReleaseRegion = "jp"
	RegionAU ReleaseRegion = "au"
)

// CatalogItem represents a single collectible figure shared across all users.
// Items are immutable from a collector's perspective; only admins and the
// import job create or change them.
type CatalogItem struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Series    string     `json:"series,omitempty"`
	Type      string     `json:"type,omitempty"`
	Character string     `json:"character,omitempty"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	ReleaseNA *time.Time `json:"releaseNa,omitempty"`
	ReleaseEU *time.Time `json:"releaseEu,omitempty"`
	ReleaseJP *time.Time `json:"releaseJp,omitempty"`
	ReleaseAU *time.Time `json:"releaseAu,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ReleaseDate returns the release date for a region, or nil if unknown
func (c *CatalogItem) ReleaseDate(region ReleaseRegion) *time.Time {
	switch region {
	case RegionNA:
		return c.ReleaseNA
	case RegionEU:
		return c.ReleaseEU
	case RegionJP:
		return c.ReleaseJP
	case RegionAU:
		return c.ReleaseAU
	default:
		return nil
	}
}

// CreateCatalogItemParams represents the parameters for creating a catalog item
type CreateCatalogItemParams struct {
	Name      string `json:"name"`
	Series    string `json:"series,omitempty"`
	Type      string `json:"type,omitempty"`
	Character string `json:"character,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	ReleaseNA string `json:"releaseNa,omitempty"`
	ReleaseEU string `json:"releaseEu,omitempty"`
	ReleaseJP string `json:"releaseJp,omitempty"`
	ReleaseAU string `json:"releaseAu,omitempty"`
}

// UpdateCatalogItemParams represents admin-only update parameters
type UpdateCatalogItemParams struct {
	Name      *string `json:"name,omitempty"`
	Series    *string `json:"series,omitempty"`
	Type      *string `json:"type,omitempty"`
	Character *string `json:"character,omitempty"`
	ImageURL  *string `json:"imageUrl,omitempty"`
	ReleaseNA *string `json:"releaseNa,omitempty"`
	ReleaseEU *string `json:"releaseEu,omitempty"`
	ReleaseJP *string `json:"releaseJp,omitempty"`
	ReleaseAU *string `json:"releaseAu,omitempty"`
}

// CatalogFacets lists the distinct values available for the categorical filters
type CatalogFacets struct {
	Series     []string `json:"series"`
	Types      []string `json:"types"`
	Characters []string `json:"characters"`
}

// Visibility selects which slice of the catalog a collector wants to see
type Visibility string

const (
	VisibilityAll       Visibility = "all"
	VisibilityCollected Visibility = "collected"
	VisibilityMissing   Visibility = "missing"
	VisibilityWishlist  Visibility = "wishlist"
)

// IsValidVisibility reports whether v is a known visibility mode
func IsValidVisibility(v Visibility) bool {
	switch v {
	case VisibilityAll, VisibilityCollected, VisibilityMissing, VisibilityWishlist:
		return true
	default:
		return false
	}
}

// SortKey identifies the field a catalog page is ordered by
type SortKey string

const (
	SortByName      SortKey = "name"
	SortByReleaseNA SortKey = "release_na"
	SortByReleaseEU SortKey = "release_eu"
	SortByReleaseJP SortKey = "release_jp"
	SortByReleaseAU SortKey = "release_au"
)

// Region returns the release region a date sort key refers to, and whether
// the key is a date key at all
func (k SortKey) Region() (ReleaseRegion, bool) {
	switch k {
	case SortByReleaseNA:
		return RegionNA, true
	case SortByReleaseEU:
		return RegionEU, true
	case SortByReleaseJP:
		return RegionJP, true
	case SortByReleaseAU:
		return RegionAU, true
	default:
		return "", false
	}
}

// IsValidSortKey reports whether k is a known sort key
func IsValidSortKey(k SortKey) bool {
	if k == SortByName {
		return true
	}
	_, ok := k.Region()
	return ok
}

// FilterAll is the sentinel categorical filter value matching everything
const FilterAll = "all"

// AllowedPageSizes is the fixed set of page sizes the catalog view offers
var AllowedPageSizes = []int{10, 20, 50, 100}

// DefaultPageSize is used when a requested page size is not in the allowed set
const DefaultPageSize = 20

// ClampPageSize returns size if it is in the allowed set, DefaultPageSize otherwise
func ClampPageSize(size int) int {
	for _, s := range AllowedPageSizes {
		if size == s {
			return size
		}
	}
	return DefaultPageSize
}

// FilterState captures a collector's transient catalog view settings
type FilterState struct {
	Query      string     `json:"query"`
	Series     string     `json:"series"`
	Type       string     `json:"type"`
	Character  string     `json:"character"`
	Visibility Visibility `json:"visibility"`
	SortKey    SortKey    `json:"sortKey"`
	Descending bool       `json:"descending"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	// Locale drives locale-aware name collation; empty means English
	Locale string `json:"locale,omitempty"`
}

// Normalize fills in defaults and clamps fields to their allowed sets.
// Page clamping against the filtered count happens in the HTTP layer,
// which knows the page count.
func (f FilterState) Normalize() FilterState {
	if f.Series == "" {
		f.Series = FilterAll
	}
	if f.Type == "" {
		f.Type = FilterAll
	}
	if f.Character == "" {
		f.Character = FilterAll
	}
	if !IsValidVisibility(f.Visibility) {
		f.Visibility = VisibilityAll
	}
	if !IsValidSortKey(f.SortKey) {
		f.SortKey = SortByName
	}
	if f.Page < 1 {
		f.Page = 1
	}
	f.PageSize = ClampPageSize(f.PageSize)
	return f
}

// DisplayItem is a catalog item annotated with the viewing collector's state
type DisplayItem struct {
	CatalogItem
	InCollection bool             `json:"inCollection"`
	InWishlist   bool             `json:"inWishlist"`
	Ownership    *OwnershipRecord `json:"ownership,omitempty"`
}

// DisplayPage is the computed, filtered, sorted, paginated catalog view
type DisplayPage struct {
	Items      []DisplayItem `json:"items"`
	TotalCount int           `json:"totalCount"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	PageCount  int           `json:"pageCount"`
}

// FoldSearchText normalizes text for case-insensitive substring matching.
// Unicode is NFC-normalized first so composed and decomposed forms of the
// same name compare equal.
func FoldSearchText(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
