// Package pagination implements offset pagination over page number and page size.
package pagination

import (
	"strconv"
	"strings"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// maxOffset keeps (page-1)*limit within a 32-bit skip on every platform.
	maxOffset = 1<<31 - 1
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// Offset is the number of records to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Meta is the pagination block returned next to list data.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// Parse reads raw page and limit query values. Empty values take defaults;
// anything non-numeric or below 1 is rejected.
func Parse(rawPage, rawLimit string) (Page, error) {
	page, err := parsePositive(rawPage, DefaultPage, "page")
	if err != nil {
		return Page{}, err
	}
	limit, err := parsePositive(rawLimit, DefaultLimit, "limit")
	if err != nil {
		return Page{}, err
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page-1 > maxOffset/limit {
		return Page{}, apperr.New(apperr.InvalidArgument, "page is out of range")
	}
	return Page{Number: page, Limit: limit}, nil
}

func parsePositive(raw string, def int, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperr.New(apperr.InvalidArgument, name+" must be a positive integer")
	}
	return n, nil
}

// NewMeta computes the meta block for total matching records.
func NewMeta(p Page, total int64) Meta {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Meta{Total: total, Page: p.Number, Limit: p.Limit, TotalPages: pages}
}
