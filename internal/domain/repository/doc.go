// Package repository define las entidades del dominio y los contratos de
// persistencia del sitio. Las implementaciones concretas viven en
// internal/store (Postgres) y los tests usan fakes in-memory.
//
// Las entidades acá NO conocen HTTP ni serialización: los DTOs JSON viven
// en los controllers.
package repository
