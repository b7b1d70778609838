// Package pagination turns page/per_page/sort/order request parameters into
// bounded, deterministically ordered queries and wraps results in a uniform
// page envelope.
package pagination

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidParams is wrapped by every validation failure returned from Parse.
var ErrInvalidParams = errors.New("invalid paging parameters")

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Params is a validated paging window.
type Params struct {
	Page    int
	PerPage int
}

// Offset is the number of items skipped before the window starts.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Limit is the maximum number of items in the window.
func (p Params) Limit() int {
	return p.PerPage
}

// Sorting is a validated sort field and direction.
type Sorting struct {
	Field string
	Order Order
}

// Query is what a repository needs to fetch one page. Column and TieBreak
// come from a SortFields allow-list and are safe to interpolate.
type Query struct {
	Offset   int
	Limit    int
	Column   string
	TieBreak string
	Order    Order
}

// Page is the envelope returned by every listing endpoint.
type Page[T any] struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Data    []T   `json:"data"`
}

// TotalPages reports ceil(total / per_page).
func (p Page[T]) TotalPages() int64 {
	if p.PerPage <= 0 {
		return 0
	}
	return (p.Total + int64(p.PerPage) - 1) / int64(p.PerPage)
}

// SortFields is the allow-list of sortable fields for one resource type.
type SortFields struct {
	columns  map[string]string
	fallback string
	tieBreak string
}

// NewSortFields maps public field names to storage columns. fallback is used
// when the caller does not ask for a field; tieBreak is a unique,
// creation-ordered column appended to every ordering.
func NewSortFields(fallback, tieBreak string, columns map[string]string) SortFields {
	if _, ok := columns[fallback]; !ok {
		panic(fmt.Sprintf("pagination: fallback sort field %q not in allow-list", fallback))
	}
	copied := make(map[string]string, len(columns))
	for k, v := range columns {
		copied[k] = v
	}
	return SortFields{columns: copied, fallback: fallback, tieBreak: tieBreak}
}

// Names lists the allowed field names in lexical order.
func (f SortFields) Names() []string {
	names := make([]string, 0, len(f.columns))
	for name := range f.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Policy holds the deployment-configured paging defaults. A per_page above
// MaxPerPage is rejected, never clamped.
type Policy struct {
	DefaultPerPage int
	MaxPerPage     int
}

// Parse validates raw query values. Empty strings select the defaults: page 1,
// the policy's default per_page, the allow-list fallback field, ascending.
func (p Policy) Parse(page, perPage, field, order string, fields SortFields) (Params, Sorting, error) {
	params := Params{Page: 1, PerPage: p.DefaultPerPage}

	if page = strings.TrimSpace(page); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return Params{}, Sorting{}, fmt.Errorf("%w: page must be an integer >= 1", ErrInvalidParams)
		}
		params.Page = n
	}

	if perPage = strings.TrimSpace(perPage); perPage != "" {
		n, err := strconv.Atoi(perPage)
		if err != nil || n < 1 || n > p.MaxPerPage {
			return Params{}, Sorting{}, fmt.Errorf("%w: per_page must be between 1 and %d", ErrInvalidParams, p.MaxPerPage)
		}
		params.PerPage = n
	}

	// the offset of the requested window must fit in an int
	if params.Page-1 > math.MaxInt/params.PerPage {
		return Params{}, Sorting{}, fmt.Errorf("%w: page is too large", ErrInvalidParams)
	}

	sorting := Sorting{Field: fields.fallback, Order: Asc}
	if field = strings.TrimSpace(field); field != "" {
		if _, ok := fields.columns[field]; !ok {
			return Params{}, Sorting{}, fmt.Errorf("%w: sort must be one of %s", ErrInvalidParams, strings.Join(fields.Names(), ", "))
		}
		sorting.Field = field
	}

	switch Order(strings.ToLower(strings.TrimSpace(order))) {
	case "", Asc:
		sorting.Order = Asc
	case Desc:
		sorting.Order = Desc
	default:
		return Params{}, Sorting{}, fmt.Errorf("%w: order must be asc or desc", ErrInvalidParams)
	}

	return params, sorting, nil
}

// Resolve builds the repository query for an already validated window.
func (f SortFields) Resolve(params Params, sorting Sorting) Query {
	column, ok := f.columns[sorting.Field]
	if !ok {
		column = f.columns[f.fallback]
	}
	order := sorting.Order
	if order != Desc {
		order = Asc
	}
	return Query{
		Offset:   params.Offset(),
		Limit:    params.Limit(),
		Column:   column,
		TieBreak: f.tieBreak,
		Order:    order,
	}
}

// Source is a filtered collection that can be counted and windowed.
type Source[T any] interface {
	Count(ctx context.Context) (int64, error)
	Find(ctx context.Context, q Query) ([]T, error)
}

// SourceFuncs adapts a pair of functions to Source.
type SourceFuncs[T any] struct {
	CountFunc func(ctx context.Context) (int64, error)
	FindFunc  func(ctx context.Context, q Query) ([]T, error)
}

func (s SourceFuncs[T]) Count(ctx context.Context) (int64, error) {
	return s.CountFunc(ctx)
}

func (s SourceFuncs[T]) Find(ctx context.Context, q Query) ([]T, error) {
	return s.FindFunc(ctx, q)
}

// Paginate counts the full matching set, then fetches one window of it.
func Paginate[T any](ctx context.Context, src Source[T], fields SortFields, params Params, sorting Sorting) (Page[T], error) {
	total, err := src.Count(ctx)
	if err != nil {
		return Page[T]{}, fmt.Errorf("count items: %w", err)
	}

	items := []T{}
	if params.Page >= 1 && params.PerPage >= 1 && windowStartsBefore(params, total) {
		found, err := src.Find(ctx, fields.Resolve(params, sorting))
		if err != nil {
			return Page[T]{}, fmt.Errorf("find items: %w", err)
		}
		if len(found) > params.PerPage {
			found = found[:params.PerPage]
		}
		items = append(items, found...)
	}

	return Page[T]{
		Page:    params.Page,
		PerPage: params.PerPage,
		Total:   total,
		Data:    items,
	}, nil
}

// windowStartsBefore reports whether offset < total without computing the
// offset, which can overflow for very large pages.
func windowStartsBefore(params Params, total int64) bool {
	perPage := int64(params.PerPage)
	pages := (total + perPage - 1) / perPage
	return int64(params.Page-1) < pages
}

// Map converts the items of a page, keeping the paging metadata.
func Map[T, U any](page Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(page.Data))
	for i := range page.Data {
		out[i] = fn(page.Data[i])
	}
	return Page[U]{
		Page:    page.Page,
		PerPage: page.PerPage,
		Total:   page.Total,
		Data:    out,
	}
}
