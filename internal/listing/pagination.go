package listing

import "shipgate/internal/model"

// PageSizes are the row-count choices the dashboard offers.
var PageSizes = []int{10, 20, 50, 100}

const DefaultPageSize = 20

func ValidPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// TotalPages is ceil(n / pageSize). An empty collection still has one page.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (n + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate slices one page out of the filtered collection. Page numbers are
// 1-based and clamped into range, so first/prev/next/last controls can pass
// whatever they like.
func Paginate(orders []model.Order, page, pageSize int) []model.Order {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	last := TotalPages(len(orders), pageSize)
	if page < 1 {
		page = 1
	}
	if page > last {
		page = last
	}
	start := (page - 1) * pageSize
	if start >= len(orders) {
		return nil
	}
	end := start + pageSize
	if end > len(orders) {
		end = len(orders)
	}
	return orders[start:end]
}
