package game

import "sync"

// sessionLocks выдает мьютекс на каждый sessionID. Ходы одной партии
// строго сериализуются, партии между собой не блокируются.
type sessionLocks struct {
	locks sync.Map // sessionID -> *sync.Mutex
}

// lock захватывает мьютекс сессии и возвращает функцию разблокировки.
func (l *sessionLocks) lock(sessionID string) func() {
	value, _ := l.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
