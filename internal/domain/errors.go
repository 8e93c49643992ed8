package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInvalidCredentials  = errors.New("credenciales inválidas")
	ErrInactiveUser        = errors.New("usuario inactivo")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidMovementKind = errors.New("tipo de movimiento inválido")
	ErrAlreadyVoided       = errors.New("la venta ya está anulada")
)

// Variantes de ErrNotFound por recurso; errors.Is(err, ErrNotFound) sigue siendo verdadero.
var (
	ErrProductNotFound  = fmt.Errorf("producto: %w", ErrNotFound)
	ErrSaleNotFound     = fmt.Errorf("venta: %w", ErrNotFound)
	ErrClientNotFound   = fmt.Errorf("cliente: %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("categoría: %w", ErrNotFound)
)
