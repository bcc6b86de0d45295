package client

import "time"

// Kind names the record in messages ("Client not found").
const Kind = "Client"

// Client is a customer logo shown on the marketing site.
type Client struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Logo      string    `db:"logo" json:"logo"`
	Order     int       `db:"sort_order" json:"order"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
