// Package pagination pages through in-memory datasets.
//
// Three styles are supported:
//
//   - GetPage: plain 1-based page slicing.
//   - GetHyper: a page plus hypermedia metadata (next/prev page, total pages).
//   - Indexed.GetHyperIndex: index-based paging that stays consistent when
//     rows are deleted between requests.
//
// No external dependencies - uses only standard library.
package pagination

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidPage is returned when page or page size is not a positive integer.
	ErrInvalidPage = errors.New("pagination: page and page_size must be integers greater than 0")

	// ErrIndexOutOfRange is returned when a start index is outside the dataset.
	ErrIndexOutOfRange = errors.New("pagination: index out of range")
)

// IndexRange returns the start (inclusive) and end (exclusive) indexes of a
// 1-based page. It does no validation; GetPage and GetHyper reject pages whose
// end index would not fit in an int.
func IndexRange(page, pageSize int) (start, end int) {
	start = (page - 1) * pageSize
	end = start + pageSize
	return start, end
}

func validate(page, pageSize int) error {
	if page < 1 || pageSize < 1 {
		return fmt.Errorf("%w: page=%d page_size=%d", ErrInvalidPage, page, pageSize)
	}
	// The end index of the page must fit in an int.
	if page-1 > (math.MaxInt-pageSize)/pageSize {
		return fmt.Errorf("%w: page=%d page_size=%d overflows", ErrInvalidPage, page, pageSize)
	}
	return nil
}

// GetPage returns the requested page of data. A page past the end of the
// dataset is empty.
func GetPage[T any](data []T, page, pageSize int) ([]T, error) {
	if err := validate(page, pageSize); err != nil {
		return nil, err
	}

	start, end := IndexRange(page, pageSize)
	if start >= len(data) {
		return []T{}, nil
	}
	if end > len(data) {
		end = len(data)
	}
	return data[start:end], nil
}

// Hyper is a page with hypermedia metadata.
type Hyper[T any] struct {
	PageSize   int  `json:"page_size"`
	Page       int  `json:"page"`
	Data       []T  `json:"data"`
	NextPage   *int `json:"next_page"`
	PrevPage   *int `json:"prev_page"`
	TotalPages int  `json:"total_pages"`
}

// GetHyper returns the requested page and its navigation metadata.
// PageSize reports the number of rows actually returned.
func GetHyper[T any](data []T, page, pageSize int) (Hyper[T], error) {
	rows, err := GetPage(data, page, pageSize)
	if err != nil {
		return Hyper[T]{}, err
	}

	totalPages := len(data) / pageSize
	if len(data)%pageSize != 0 {
		totalPages++
	}

	h := Hyper[T]{
		PageSize:   len(rows),
		Page:       page,
		Data:       rows,
		TotalPages: totalPages,
	}
	if page < totalPages {
		next := page + 1
		h.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		h.PrevPage = &prev
	}
	return h, nil
}
