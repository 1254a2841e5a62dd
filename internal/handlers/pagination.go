package handlers

import (
	"fmt"
	"strconv"
)

const (
	defaultPage      = int64(1)
	defaultPageLimit = int64(20)
	maxPageLimit     = int64(100)
)

// parsePaginationParams reads ?page= and ?limit=, returning the skip and
// limit to hand to the find options.
func parsePaginationParams(pageStr, limitStr string) (skip int64, limit int64, err error) {
	page := defaultPage
	limit = defaultPageLimit

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, fmt.Errorf("invalid page parameter")
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 || l > maxPageLimit {
			return 0, 0, fmt.Errorf("invalid limit parameter")
		}
		limit = l
	}

	return (page - 1) * limit, limit, nil
}
