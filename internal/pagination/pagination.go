package pagination

import (
	"errors"
	"math"
)

const (
	DefaultPage         = 1
	DefaultProductLimit = 12
	DefaultOrderLimit   = 10
	MaxLimit            = 100
)

var (
	ErrInvalidPage  = errors.New("invalid page")
	ErrInvalidLimit = errors.New("invalid limit")
)

// Params はページ番号と1ページの件数。
type Params struct {
	Page  int
	Limit int
}

// New は page/limit を検証して Params を返す。
func New(page, limit int) (Params, error) {
	if page < 1 {
		return Params{}, ErrInvalidPage
	}
	if limit < 1 || limit > MaxLimit {
		return Params{}, ErrInvalidLimit
	}
	// Rangeの終端 page*limit がintに収まること
	if page > math.MaxInt/limit {
		return Params{}, ErrInvalidPage
	}
	return Params{Page: page, Limit: limit}, nil
}

// Range は [from, to) の範囲を返す。
func (p Params) Range() (int, int) {
	from := (p.Page - 1) * p.Limit
	return from, from + p.Limit
}

func (p Params) Offset() int {
	from, _ := p.Range()
	return from
}

type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewMeta(p Params, total int64) Meta {
	pages := 0
	if p.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return Meta{Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}

// Page は一覧APIの共通レスポンス。
type Page[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

func NewPage[T any](data []T, p Params, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Meta: NewMeta(p, total)}
}
