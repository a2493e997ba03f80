package domain

import "time"

type Client struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Document     string    `json:"document"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	Observations string    `json:"observations"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ClientFilter struct {
	Search     string
	ActiveOnly bool
}
