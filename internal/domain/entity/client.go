package entity

import "time"

// Client representa un cliente identificado en una venta (opcional en la venta).
type Client struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
