package pagination

import (
	"fmt"
	"sync"
)

// IndexPage is a page returned by Indexed.GetHyperIndex.
type IndexPage[T any] struct {
	Index     int `json:"index"`
	Data      []T `json:"data"`
	PageSize  int `json:"page_size"`
	NextIndex int `json:"next_index"`
}

// Indexed keeps rows under their original position so that deleting a row
// does not shift the rows after it. It is safe for concurrent use.
type Indexed[T any] struct {
	mu    sync.RWMutex
	rows  map[int]T
	bound int // one past the highest position ever assigned
}

// NewIndexed indexes data by position, starting at 0.
func NewIndexed[T any](data []T) *Indexed[T] {
	rows := make(map[int]T, len(data))
	for i, row := range data {
		rows[i] = row
	}
	return &Indexed[T]{rows: rows, bound: len(data)}
}

// Delete removes the row at position i. It reports whether a row was removed.
func (x *Indexed[T]) Delete(i int) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.rows[i]; !ok {
		return false
	}
	delete(x.rows, i)
	return true
}

// Len returns the number of rows still present.
func (x *Indexed[T]) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.rows)
}

// GetHyperIndex collects up to pageSize rows starting at index, skipping
// deleted positions. NextIndex is the position to request next.
func (x *Indexed[T]) GetHyperIndex(index, pageSize int) (IndexPage[T], error) {
	if pageSize < 1 {
		return IndexPage[T]{}, fmt.Errorf("%w: page_size=%d", ErrInvalidPage, pageSize)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if index < 0 || index >= x.bound {
		return IndexPage[T]{}, fmt.Errorf("%w: index=%d", ErrIndexOutOfRange, index)
	}

	data := make([]T, 0, pageSize)
	next := index
	for cur := index; cur < x.bound && len(data) < pageSize; cur++ {
		row, ok := x.rows[cur]
		if !ok {
			continue
		}
		data = append(data, row)
		next = cur + 1
	}

	return IndexPage[T]{
		Index:     index,
		Data:      data,
		PageSize:  len(data),
		NextIndex: next,
	}, nil
}
