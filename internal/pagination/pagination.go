package pagination

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type Request struct {
	Limit  int `json:"limit,omitempty" validate:"gte=0"`
	Offset int `json:"offset,omitempty" validate:"gte=0"`
}

type Response struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize applies the default and maximum page size.
func Normalize(req *Request) (limit, offset int) {
	limit = DefaultLimit
	if req == nil {
		return limit, 0
	}
	if req.Limit > 0 {
		limit = min(req.Limit, MaxLimit)
	}
	return limit, max(req.Offset, 0)
}

// Page returns items[offset:offset+limit], clamped to the slice bounds.
// A non-positive limit returns everything from offset on.
func Page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
