package multiplexer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManyToOneCollects(t *testing.T) {
	plexer := NewManyToOne(make(chan int, 8))
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, plexer.Send(i))
		}(i)
	}
	wg.Wait()
	plexer.Close()

	sum := 0
	for v := range plexer.Receiver() {
		sum += v
	}
	assert.Equal(t, 0+1+2+3, sum)
}

func TestManyToOneFullAndClosed(t *testing.T) {
	plexer := NewManyToOne(make(chan string, 1))
	require.NoError(t, plexer.Send("a"))
	assert.ErrorIs(t, plexer.Send("b"), ErrFull)

	plexer.Close()
	plexer.Close()
	assert.ErrorIs(t, plexer.Send("c"), ErrClosed)
	assert.Equal(t, "a", <-plexer.Receiver())
}
