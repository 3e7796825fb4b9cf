package service

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps 1-based paging parameters to sane bounds.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
