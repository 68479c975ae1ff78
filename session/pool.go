package session

import "sync"

// pool tracks the live transport sessions of one client. Every tracked
// session is open; a session is closed exactly once, either on rotation
// or on teardown. Mutations are serialized by the mutex; the transports
// themselves send concurrently without holding it.
type pool struct {
	mu      sync.Mutex
	conns   []Transport
	factory func() (Transport, error)
}

func newPool(factory func() (Transport, error)) *pool {
	return &pool{factory: factory}
}

// acquire returns the current transport session, creating one if the pool
// is empty.
func (p *pool) acquire() (Transport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.conns) == 0 {
		conn, err := p.factory()
		if err != nil {
			return nil, err
		}
		p.conns = append(p.conns, conn)
	}
	return p.conns[0], nil
}

// rotate closes and unregisters the given session, then creates and
// registers a fresh one. A closed session is never left registered:
// removal happens before the factory runs, so a factory failure leaves
// the pool smaller, not corrupt.
func (p *pool) rotate(old Transport) (Transport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, conn := range p.conns {
		if conn == old {
			p.conns = append(p.conns[:i], p.conns[i+1:]...)
			old.Close()
			break
		}
	}

	fresh, err := p.factory()
	if err != nil {
		return nil, err
	}
	p.conns = append(p.conns, fresh)
	return fresh, nil
}

// closeAll closes and unregisters every tracked session.
func (p *pool) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, conn := range p.conns {
		conn.Close()
	}
	p.conns = nil
}

func (p *pool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}
