package common

import "math"

type Page struct {
	Message     string      `json:"message"`
	Data        interface{} `json:"data"`
	Count       int64       `json:"count"`
	CurrentPage int         `json:"currentPage"`
	NextPage    int         `json:"nextPage"`
	PrevPage    int         `json:"prevPage"`
	LastPage    int         `json:"lastPage"`
}

// Paginate wraps a result slice with page bookkeeping. Next/Prev are 0 when
// they would fall off either end.
func Paginate(data interface{}, total int64, page, limit int, message string) Page {
	if message == "" {
		message = "success"
	}
	if page < 1 {
		page = 1
	}

	lastPage := 0
	if limit > 0 {
		lastPage = int(math.Ceil(float64(total) / float64(limit)))
	}

	next := page + 1
	if next > lastPage {
		next = 0
	}
	prev := page - 1

	return Page{
		Message:     message,
		Data:        data,
		Count:       total,
		CurrentPage: page,
		NextPage:    next,
		PrevPage:    prev,
		LastPage:    lastPage,
	}
}
