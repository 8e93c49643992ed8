package entity

import "time"

// Category agrupa productos para catálogo y reportes.
type Category struct {
	ID        string
	Name      string
	Color     string // color de la etiqueta en la caja (hex)
	CreatedAt time.Time
	UpdatedAt time.Time
}
