package entity

import "time"

// Almacen representa una bodega física perteneciente a un taller.
type Almacen struct {
	ID            string
	TallerID      string
	Nombre        string
	Ubicacion     string
	FechaCreacion time.Time
}
