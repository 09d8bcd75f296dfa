package query

// UniqueID hands out increasing numbers for parameter names.
type UniqueID struct {
	id int
}

// Get 返回当前的值，然后自增
func (u *UniqueID) Get() int {
	id := u.id
	u.id++
	return id
}

func (u *UniqueID) Clear() {
	u.id = 0
}
