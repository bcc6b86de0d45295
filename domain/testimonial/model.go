package testimonial

import "time"

// Kind names the record in messages ("Testimonial not found").
const Kind = "Testimonial"

// Testimonial is a customer quote with an optional organization logo.
type Testimonial struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	Organization string    `db:"organization" json:"organization"`
	Quote        string    `db:"quote" json:"quote"`
	Logo         *string   `db:"logo" json:"logo"`
	Order        int       `db:"sort_order" json:"order"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

func (t *Testimonial) logoPath() string {
	if t.Logo == nil {
		return ""
	}
	return *t.Logo
}
