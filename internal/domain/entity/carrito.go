package entity

import "time"

// CarritoItem es una línea del carrito: producto y cantidad.
type CarritoItem struct {
	ProductoID string `json:"productoId"`
	Cantidad   int    `json:"cantidad"`
}

// Carrito es un carrito de compras. UsuarioID vacío significa carrito anónimo,
// identificable solo por su propio ID hasta que se fusiona en un login.
type Carrito struct {
	ID           string
	UsuarioID    string // vacío = anónimo
	Items        []CarritoItem
	RealizadoPor string // actor opcional que creó el carrito
	CreadoEn     time.Time
}

// MergeItems suma las cantidades de b sobre a por producto, preservando el
// orden de a y añadiendo al final los productos nuevos de b.
func MergeItems(a, b []CarritoItem) []CarritoItem {
	merged := make([]CarritoItem, len(a))
	copy(merged, a)
	index := make(map[string]int, len(merged))
	for i, it := range merged {
		index[it.ProductoID] = i
	}
	for _, it := range b {
		if i, ok := index[it.ProductoID]; ok {
			merged[i].Cantidad += it.Cantidad
			continue
		}
		index[it.ProductoID] = len(merged)
		merged = append(merged, it)
	}
	return merged
}
