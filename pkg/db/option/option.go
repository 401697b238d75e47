package option

import (
	"github.com/moimlab/moim/pkg/db/pagination"
	"gorm.io/gorm"
)

// Option mutates a gorm statement before execution.
type Option interface {
	Apply(*gorm.DB) *gorm.DB
}

type paginationOption struct {
	page pagination.Pagination
}

// ApplyPagination translates a cursor page request into keyset conditions.
// Ordering is (created_at desc, id desc); callers must keep that order.
func ApplyPagination(page pagination.Pagination) Option {
	return paginationOption{page: page}
}

func (o paginationOption) Apply(stmt *gorm.DB) *gorm.DB {
	size := o.page.PageSize
	if size <= 0 {
		size = 20
	}
	// Fetch one extra row so the caller can detect a next page.
	stmt = stmt.Limit(size + 1)

	if o.page.PageToken == "" {
		return stmt
	}
	cursor, err := pagination.DecodeCursor(o.page.PageToken)
	if err != nil || cursor == nil {
		return stmt
	}
	if cursor.CreatedAt != "" && cursor.ID != "" {
		stmt = stmt.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	return stmt
}
