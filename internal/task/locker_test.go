package task

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockerSerializesPerTask(t *testing.T) {
	l := NewLocker()
	counter := 0
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("T1")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestLockerIndependentKeys(t *testing.T) {
	l := NewLocker()
	unlockA := l.Lock("A")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("B")
		unlock()
		close(done)
	}()
	<-done
}

func TestLockerReleasesIdleEntries(t *testing.T) {
	l := NewLocker()
	for _, id := range []string{"T1", "T2", "T3"} {
		l.Lock(id)()
	}
	assert.Equal(t, 0, l.Len())

	unlock := l.Lock("T1")
	acquired := make(chan struct{})
	go func() {
		release := l.Lock("T1")
		close(acquired)
		release()
	}()
	assert.Equal(t, 1, l.Len())
	unlock()
	<-acquired
	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, time.Millisecond)
}
