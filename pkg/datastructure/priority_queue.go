package datastructure

import "errors"

var (
	ErrEmptyHeap = errors.New("heap is empty")
)

type PriorityQueueNode[T any] struct {
	Rank float64
	Item T
}

// MinHeap binary heap priorityqueue
type MinHeap[T any] struct {
	heap []PriorityQueueNode[T]
}

func NewMinHeap[T any]() *MinHeap[T] {
	return &MinHeap[T]{
		heap: make([]PriorityQueueNode[T], 0),
	}
}

func (h *MinHeap[T]) parent(index int) int {
	return (index - 1) / 2
}

func (h *MinHeap[T]) leftChild(index int) int {
	return 2*index + 1
}

func (h *MinHeap[T]) rightChild(index int) int {
	return 2*index + 2
}

// heapifyUp swaps the item at index with its parent until the parent rank is not greater. O(logN).
func (h *MinHeap[T]) heapifyUp(index int) {
	for index != 0 && h.heap[index].Rank < h.heap[h.parent(index)].Rank {
		h.heap[index], h.heap[h.parent(index)] = h.heap[h.parent(index)], h.heap[index]
		index = h.parent(index)
	}
}

// heapifyDown swaps the item at index with its smallest child until both children rank higher. O(logN).
func (h *MinHeap[T]) heapifyDown(index int) {
	for {
		smallest := index
		left := h.leftChild(index)
		right := h.rightChild(index)

		if left < len(h.heap) && h.heap[left].Rank < h.heap[smallest].Rank {
			smallest = left
		}
		if right < len(h.heap) && h.heap[right].Rank < h.heap[smallest].Rank {
			smallest = right
		}
		if smallest == index {
			return
		}
		h.heap[index], h.heap[smallest] = h.heap[smallest], h.heap[index]
		index = smallest
	}
}

func (h *MinHeap[T]) isEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

// GetMin returns the item with the lowest rank without removing it.
func (h *MinHeap[T]) GetMin() (PriorityQueueNode[T], error) {
	if h.isEmpty() {
		return PriorityQueueNode[T]{}, ErrEmptyHeap
	}
	return h.heap[0], nil
}

func (h *MinHeap[T]) Insert(key PriorityQueueNode[T]) {
	h.heap = append(h.heap, key)
	h.heapifyUp(h.Size() - 1)
}

// ExtractMin pops the item with the lowest rank. O(logN).
func (h *MinHeap[T]) ExtractMin() (PriorityQueueNode[T], error) {
	if h.isEmpty() {
		return PriorityQueueNode[T]{}, ErrEmptyHeap
	}
	root := h.heap[0]
	last := h.Size() - 1
	h.heap[0] = h.heap[last]
	h.heap = h.heap[:last]
	if !h.isEmpty() {
		h.heapifyDown(0)
	}
	return root, nil
}
