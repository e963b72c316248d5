package asset

import "sync"

// keyedMutex hands out one mutex per string key. Keys are asset ids (and
// id+output-name pairs for trims), so the map stays small for the lifetime
// of a single-process deployment and entries are never evicted.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

func (k *keyedMutex) Lock(key string) {
	k.get(key).Lock()
}

func (k *keyedMutex) Unlock(key string) {
	k.get(key).Unlock()
}
