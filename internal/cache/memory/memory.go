package memory

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/socis-ca/website/internal/cache"
)

type Mem struct{ c *gocache.Cache }

// New crea un cache in-memory con el TTL default dado.
// La limpieza de expirados corre cada un minuto.
func New(defaultTTL time.Duration) cache.Cache {
	return &Mem{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *Mem) Get(k string) ([]byte, bool) {
	v, ok := m.c.Get(k)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	return b, true
}

func (m *Mem) Set(k string, v []byte, ttl time.Duration) { m.c.Set(k, v, ttl) }
func (m *Mem) Delete(k string)                           { m.c.Delete(k) }
