package entity

// Category is a named grouping for articles.
type Category struct {
	ID   string
	Name string
}

func (c *Category) Key() string { return c.ID }

func (c *Category) Clone() *Category {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
