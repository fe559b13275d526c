package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
)

func generateRandomInteger(min int, max int) int {
	return min + rand.Intn(max-min)
}

func TestPriorityQueue(t *testing.T) {
	pq := NewMinHeap[int32]()
	assert.NotNil(t, pq)

	for i := 0; i < 10000; i++ {
		pq.Insert(PriorityQueueNode[int32]{Rank: float64(generateRandomInteger(0, 10000)), Item: int32(i)})
	}
	assert.Equal(t, 10000, pq.Size())

	prevItem, err := pq.ExtractMin()
	assert.Nil(t, err)
	for i := 1; i < 10000; i++ {
		item, err := pq.ExtractMin()
		assert.Nil(t, err)
		if prevItem.Rank > item.Rank {
			t.Fatalf("PriorityQueue is not sorted: %f before %f", prevItem.Rank, item.Rank)
		}
		prevItem = item
	}

	_, err = pq.ExtractMin()
	assert.ErrorIs(t, err, ErrEmptyHeap)
}

func TestPriorityQueueGetMin(t *testing.T) {
	pq := NewMinHeap[string]()
	_, err := pq.GetMin()
	assert.ErrorIs(t, err, ErrEmptyHeap)

	pq.Insert(PriorityQueueNode[string]{Rank: 3, Item: "c"})
	pq.Insert(PriorityQueueNode[string]{Rank: 1, Item: "a"})
	pq.Insert(PriorityQueueNode[string]{Rank: 2, Item: "b"})

	min, err := pq.GetMin()
	assert.Nil(t, err)
	assert.Equal(t, "a", min.Item)
	assert.Equal(t, 3, pq.Size())

	order := []string{}
	for pq.Size() > 0 {
		item, _ := pq.ExtractMin()
		order = append(order, item.Item)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}
