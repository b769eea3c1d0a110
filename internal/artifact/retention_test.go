package artifact

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetentionPolicyLimit(t *testing.T) {
	assert.Equal(t, DefaultKeepLatest, RetentionPolicy{}.Limit())
	assert.Equal(t, DefaultKeepLatest, RetentionPolicy{KeepLatest: -3}.Limit())
	assert.Equal(t, 7, RetentionPolicy{KeepLatest: 7}.Limit())
}

func TestEvictUnderBound(t *testing.T) {
	policy := RetentionPolicy{KeepLatest: 5}

	assert.Nil(t, policy.Evict(nil))
	assert.Nil(t, policy.Evict([]string{"a.png"}))
	assert.Nil(t, policy.Evict([]string{"a.png", "b.png", "c.png", "d.png", "e.png"}))
}

func TestEvictOldestBeyondBound(t *testing.T) {
	policy := RetentionPolicy{KeepLatest: 2}
	sorted := []string{"a.png", "b.png", "c.png", "d.png", "e.png"}

	victims := policy.Evict(sorted)

	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, victims)
}

func TestEvictCopiesInput(t *testing.T) {
	policy := RetentionPolicy{KeepLatest: 1}
	sorted := []string{"a.png", "b.png", "c.png"}

	victims := policy.Evict(sorted)
	sorted[0] = "mutated.png"

	assert.Equal(t, []string{"a.png", "b.png"}, victims)
}

func TestEvictArbitraryBounds(t *testing.T) {
	// For all keep = N and M writes with M > N, exactly the oldest M-N
	// names are selected.
	for _, n := range []int{1, 3, 10} {
		for _, m := range []int{n + 1, n + 5, n * 4} {
			t.Run(fmt.Sprintf("keep_%d_of_%d", n, m), func(t *testing.T) {
				names := make([]string, m)
				for i := range names {
					names[i] = fmt.Sprintf("t_%04d.png", i)
				}

				victims := RetentionPolicy{KeepLatest: n}.Evict(names)

				assert.Len(t, victims, m-n)
				assert.Equal(t, names[:m-n], victims)
			})
		}
	}
}
