// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package randcore

// ShuffleInts 使用 Fisher-Yates (亦稱 Knuth Shuffle) 演算法
// 對[]int進行「就地 (In-place)」隨機重排。
//
// 演算法特性：
//
//  1. 公平性 (Unbiased)：
//     此算法保證所有可能的 N! 種排列組合出現的機率是嚴格相等的 (1/N!)。
//     這解決了傳統 "Naive Shuffle" (每個位置都隨機跟任意位置交換) 導致的機率偏差問題。
//     關鍵在 j 的抽取範圍是 [0, i] 而不是 [0, n)，且用無偏的 IntN。
//
//  2. 效能 (High Performance)：
//     - 時間複雜度：O(N)，只需要對陣列進行一次線性掃描。
//     - 空間複雜度：O(1)，直接在原記憶體位置交換，實現零配置 (Zero Allocation)。
func (c *Core) ShuffleInts(src []int) {
	if len(src) <= 1 {
		return
	}

	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}

// Shuffle 以 swap callback 重排 n 個元素，適用於非 slice 的資料結構。
func (c *Core) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		swap(i, j)
	}
}

// ShuffleSlice 是 ShuffleInts 的泛型版本。
func ShuffleSlice[T any](c *Core, src []T) {
	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}

// Perm 回傳 [0,n) 的隨機排列。
func (c *Core) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	c.ShuffleInts(p)
	return p
}

// PartialShuffle 就地執行前 k 步 Fisher-Yates，回傳被選中的 k 個元素
// 與未選中的其餘元素（兩者共用 src 的底層陣列）。
//
// 分布性質：完整洗牌的任何 k 個位置與此結果同分布，
// 因此這是「不重複抽 k 個」的 O(k) 寫法，不必洗完整個 slice。
// k 超出範圍時會被夾到 [0, len(src)]。
func PartialShuffle[T any](c *Core, src []T, k int) (picked, rest []T) {
	n := len(src)
	if k < 0 {
		k = 0
	}
	if k > n {
		k = n
	}
	for s, i := 0, n-1; s < k && i > 0; s, i = s+1, i-1 {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
	return src[n-k:], src[:n-k]
}

// SampleK 以水塘抽樣 (Reservoir Sampling) 從 src 均勻抽出 k 個元素，
// 不重複、不修改 src。k 超出範圍時會被夾到 [0, len(src)]。
//
// 與 PartialShuffle 的差別：src 保持原狀，代價是掃過整個 slice (O(n))。
func SampleK[T any](c *Core, src []T, k int) []T {
	n := len(src)
	if k < 0 {
		k = 0
	}
	if k > n {
		k = n
	}
	out := make([]T, k)
	copy(out, src[:k])
	for i := k; i < n; i++ {
		j := c.IntN(i + 1)
		if j < k {
			out[j] = src[i]
		}
	}
	return out
}
