// Package types tiene los tipos de dominio compartidos entre capas.
package types

import "strings"

// Permission es el bitmask de capacidades de un usuario. Se persiste
// como entero; los bits se combinan con OR (EVENTS|SELLER = 3).
type Permission int

const (
	PermNone       Permission = 0
	PermEvents     Permission = 1 << 0 // crear/editar eventos
	PermSeller     Permission = 1 << 1 // panel de ventas del store
	PermNewsletter Permission = 1 << 2 // gestionar y enviar el boletín
	PermMerchant   Permission = 1 << 3 // catálogo de productos
	PermAdmin      Permission = 1 << 4 // super-bit: habilita todo
)

// permNames en orden de bit, para String().
var permNames = []struct {
	bit  Permission
	name string
}{
	{PermEvents, "events"},
	{PermSeller, "seller"},
	{PermNewsletter, "newsletter"},
	{PermMerchant, "merchant"},
	{PermAdmin, "admin"},
}

// Has indica si el bitmask incluye la capacidad pedida.
// ADMIN satisface cualquier chequeo: es el super-bit.
func (p Permission) Has(bit Permission) bool {
	if p&PermAdmin != 0 {
		return true
	}
	return p&bit != 0
}

// HasAny indica si hay al menos un permiso seteado.
func (p Permission) HasAny() bool {
	return p != PermNone
}

// IsSuperAdmin indica si el bit ADMIN está presente.
func (p Permission) IsSuperAdmin() bool {
	return p&PermAdmin != 0
}

// String devuelve los bits activos separados por "|" (ej: "events|admin"),
// o "none" para el bitmask vacío.
func (p Permission) String() string {
	if p == PermNone {
		return "none"
	}
	var parts []string
	for _, pn := range permNames {
		if p&pn.bit != 0 {
			parts = append(parts, pn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
