package reports

import "context"

// Cache guarda reportes ya calculados. Invalidate descarta todos de una vez
// (se llama al crear o anular una venta).
type Cache interface {
	// Get decodifica en dst el valor guardado; false si no hay entrada.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context) error
}

// NopCache no guarda nada; se usa cuando no hay Redis configurado.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (NopCache) Set(context.Context, string, any) error         { return nil }
func (NopCache) Invalidate(context.Context) error               { return nil }
