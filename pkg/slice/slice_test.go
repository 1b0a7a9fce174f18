// Copyright (c) 2026 Katalog. All rights reserved.

package slice_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EarnestL/k-atalog/pkg/slice"
)

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, slice.Map([]int{1, 2}, strconv.Itoa))
	assert.Nil(t, slice.Map[int, string](nil, strconv.Itoa))
}

/*
TestFilter verifies a non-nil input never yields a nil result.
*/
func TestFilter(t *testing.T) {
	even := func(n int) bool { return n%2 == 0 }

	assert.Equal(t, []int{2, 4}, slice.Filter([]int{1, 2, 3, 4}, even))
	assert.Equal(t, []int{}, slice.Filter([]int{1, 3}, even))
	assert.Nil(t, slice.Filter(nil, even))
}

func TestReduce(t *testing.T) {
	sum := slice.Reduce([]int{1, 2, 3}, 10, func(total, n int) int { return total + n })
	assert.Equal(t, 16, sum)
}
