// Package cache provee un cache chico de bytes con dos backends:
// memoria (dev/tests, un solo proceso) y Redis (producción).
// Lo usan las sesiones y cualquier estado efímero con TTL.
package cache

import "time"

// Cache define las operaciones mínimas que necesita el sitio.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}
