package kinstate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_ReadReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Update(func(st *State) { st.VelocityMps = 5.0 })

	snap := s.Read()
	snap.VelocityMps = 999.0

	assert.Equal(t, 5.0, s.Read().VelocityMps)
}

func TestStore_MotorDriving(t *testing.T) {
	s := NewStore()
	assert.False(t, s.MotorDriving())

	s.Update(func(st *State) { st.InputCurrentA = 1.5 })
	assert.True(t, s.MotorDriving())

	s.Update(func(st *State) { st.InputCurrentA = 0 })
	assert.False(t, s.MotorDriving())
}

func TestStore_UpdateIsAtomicAcrossConcurrentWriters(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(st *State) {
				st.ERPM++
				st.MotorCurrentA++
			})
		}()
	}
	wg.Wait()

	final := s.Read()
	assert.Equal(t, 100, final.ERPM)
	assert.Equal(t, 100.0, final.MotorCurrentA)
}
