// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package catalog

import (
	"container/heap"
	"sort"
)

// FlatIndex is an exact inner-product index over row-major vectors. It does
// not own its data: the catalog hands it the snapshot's matrix.
type FlatIndex struct {
	dim   int
	count int
	data  []float32
}

func newFlatIndex(dim, count int, data []float32) *FlatIndex {
	return &FlatIndex{dim: dim, count: count, data: data[:dim*count]}
}

// Hit is one search result: a row number and its inner product with the query.
type Hit struct {
	Row   int
	Score float64
}

// Len returns the number of indexed rows.
func (ix *FlatIndex) Len() int { return ix.count }

// Search returns the k rows with the highest inner product, best first.
// Equal scores keep row order. q must already have length dim.
func (ix *FlatIndex) Search(q []float32, k int) []Hit {
	if k <= 0 || ix.count == 0 {
		return []Hit{}
	}
	if k > ix.count {
		k = ix.count
	}

	h := make(hitHeap, 0, k)
	for row := 0; row < ix.count; row++ {
		score := clampUnit(dot(ix.data[row*ix.dim:(row+1)*ix.dim], q))
		hit := Hit{Row: row, Score: score}
		if len(h) < k {
			heap.Push(&h, hit)
			continue
		}
		if better(hit, h[0]) {
			h[0] = hit
			heap.Fix(&h, 0)
		}
	}

	out := []Hit(h)
	sort.Slice(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out
}

// better orders hits by score, then by earlier insertion.
func better(a, b Hit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Row < b.Row
}

// clampUnit absorbs float rounding so inner products of unit vectors stay
// within [-1, 1].
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// hitHeap keeps the worst retained hit at the root.
type hitHeap []Hit

func (h hitHeap) Len() int            { return len(h) }
func (h hitHeap) Less(i, j int) bool  { return better(h[j], h[i]) }
func (h hitHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *hitHeap) Push(x interface{}) { *h = append(*h, x.(Hit)) }
func (h *hitHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
