package domain

type UserPage struct {
	Users       []User
	Total       int64
	CurrentPage int
	PerPage     int
}

func (p UserPage) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	last := int(p.Total / int64(p.PerPage))
	if p.Total%int64(p.PerPage) != 0 {
		last++
	}
	return last
}
