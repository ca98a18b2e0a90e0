package service

import (
	"context"

	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/services/reports/domain"
)

// MaxPageSize is the largest page the spend API serves
const MaxPageSize = 300

// PageFunc fetches one page at offset
type PageFunc[T any] func(ctx context.Context, offset, size int) (domain.Page[T], error)

// ClampPageSize keeps size within [1, MaxPageSize]
func ClampPageSize(size int) int {
	return max(1, min(size, MaxPageSize))
}

// FetchAll walks every page in order and concatenates the rows
// an empty page after the first ends the walk early without error
// any page error discards what was fetched
func FetchAll[T any](ctx context.Context, pageSize int, fetch PageFunc[T]) ([]T, error) {
	size := ClampPageSize(pageSize)

	first, err := fetch(ctx, 0, size)
	if err != nil {
		return nil, pageErr(err, 0)
	}
	if first.Total <= 0 || len(first.Rows) == 0 {
		return []T{}, nil
	}

	pages := (first.Total + size - 1) / size
	all := append(make([]T, 0, first.Total), first.Rows...)
	for page := 1; page < pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, pageErr(err, page*size)
		}
		p, err := fetch(ctx, page*size, size)
		if err != nil {
			return nil, pageErr(err, page*size)
		}
		if len(p.Rows) == 0 {
			break
		}
		all = append(all, p.Rows...)
	}
	return all, nil
}

func pageErr(err error, offset int) error {
	return perr.Wrapf(err, perr.ErrorCodeRequestFailed, "page at offset %d failed", offset)
}
