package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettle_KeepsOrderAndIndividualErrors(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	results := Settle(context.Background(), items, 3, func(ctx context.Context, n int) (int, error) {
		if n%3 == 0 {
			return 0, errors.New("divisible by three")
		}
		return n * 10, nil
	})

	require.Len(t, results, 7)
	for i, r := range results {
		if items[i]%3 == 0 {
			assert.Error(t, r.Err)
			continue
		}
		assert.NoError(t, r.Err)
		assert.Equal(t, items[i]*10, r.Value)
	}
}

func TestSettle_BoundsConcurrency(t *testing.T) {
	var running, peak int32

	Settle(context.Background(), make([]struct{}, 12), 5, func(ctx context.Context, _ struct{}) (bool, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return true, nil
	})

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(5))
}

func TestSettle_Empty(t *testing.T) {
	results := Settle(context.Background(), nil, 5, func(ctx context.Context, s string) (string, error) {
		return s, nil
	})
	assert.Empty(t, results)
}
