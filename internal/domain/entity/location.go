package entity

import "time"

// Location representa una carpeta/ubicación bajo la que se agrupan productos y movimientos.
type Location struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
