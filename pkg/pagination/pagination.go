// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// It standardizes how page-based navigation is requested via query parameters,
// how a page window is derived from a total count, and how the resulting
// metadata is delivered in the API response envelope.
package pagination

import (
	"net/http"

	"github.com/taibuivan/aula/pkg/convert"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page to prevent system abuse.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// # Page Descriptor

// Page describes one page of a result set of known size.
type Page struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	Offset      int  `json:"-"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
	StartItem   int  `json:"start_item"`
	EndItem     int  `json:"end_item"`
}

/*
Paginate computes the page window for totalItems.

Description: pageSize is clamped to [1, MaxLimit] and page to
[1, max(1, TotalPages)], so an out-of-range page lands on the last page.
An empty result has TotalPages 0, stays on page 1, and reports StartItem and
EndItem as 0.

Example: Paginate(95, 5, 20) is page 5 of 5, offset 80, items 81..95.
*/
func Paginate(totalItems, page, pageSize int) Page {
	if totalItems < 0 {
		totalItems = 0
	}

	pageSize = min(max(pageSize, 1), MaxLimit)
	totalPages := (totalItems + pageSize - 1) / pageSize
	page = min(max(page, 1), max(totalPages, 1))

	offset := (page - 1) * pageSize
	result := Page{
		Page:        page,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		Offset:      offset,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
	}

	if totalItems > 0 {
		result.StartItem = offset + 1
		result.EndItem = min(offset+pageSize, totalItems)
	}

	return result
}

// Params holds the parsed page and limit from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET value derived from [Page] and [Limit].
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta constructs pagination metadata for a response.
//
// It automatically calculates the TotalPages based on the total count and limit.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Meta converts a page descriptor into response metadata.
func (p Page) Meta() Meta {
	return Meta{
		Page:       p.Page,
		Limit:      p.PageSize,
		Total:      p.TotalItems,
		TotalPages: p.TotalPages,
	}
}

// FromRequest parses "page" and "limit" query parameters from an HTTP request.
//
// # Clamping
//
// Invalid, negative, or excessive values are automatically clamped to
// [DefaultPage], [DefaultLimit], or [MaxLimit].
func FromRequest(r *http.Request) Params {
	query := r.URL.Query()
	page := convert.ToIntD(query.Get("page"), DefaultPage)
	limit := convert.ToIntD(query.Get("limit"), DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}

	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit}
}
