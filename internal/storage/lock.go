package storage

import (
	"os"
	"sync"
	"syscall"
)

// sessionLock guards the on-disk JSON document for one tree session ID
// against concurrent writers, via flock on a sibling ".lock" file.
// Adapted from the teacher's storage.FileLock, narrowed to the one shape
// Storage.Put actually needs: an exclusive, blocking lock per session
// document. TryLock is dropped -- nothing in koda ever probes a lock
// without being willing to wait for it.
type sessionLock struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func newSessionLock(path string) *sessionLock {
	return &sessionLock{path: path}
}

// Lock acquires an exclusive lock on the session document at path.
func (l *sessionLock) Lock() error {
	l.mu.Lock()

	var err error
	l.file, err = os.OpenFile(l.path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		l.mu.Unlock()
		return err
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_EX); err != nil {
		l.file.Close()
		l.mu.Unlock()
		return err
	}

	return nil
}

// Unlock releases the lock and removes the lock file.
func (l *sessionLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)

	l.file.Close()
	os.Remove(l.path + ".lock")

	l.file = nil
	l.mu.Unlock()

	return nil
}
