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

// Package sampler 提供一系列高效能的加權抽樣演算法與工具。
//
// 本檔案 (aliasint.go) 實作 Alias Method 的整數權重特化版。
//
// 與 aliastable.go 的浮點版差異：
//   - 採用全整數運算 (Integer Scaling)，比較式是 prob[i] 與 total 的整數比較，
//     完全避開浮點誤差 (0.999... != 1.0)，殘留項目不需要補 1.0 的修正。
//   - 內建溢位檢查 (Safe Multiply)，確保 w*n 在大數權重下安全運作。
//
// 權重是整數（例如配置表裡的出現次數）時優先用這個版本。

package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/randcore"
	"github.com/zintix-labs/randcore/errs"
)

// AliasInt 是整數權重的 Alias 抽樣表。
//
// 結構欄位說明：
// - Prob: 每個槽位「調整後機率」的整數形式（權重乘以元素數量 n）。
// - Aliases: 別名索引，指向補足機率的元素。
// - Size: 槽位數量。
// - Total: 權重總和，抽樣時作為整數投票的分母。
type AliasInt struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// NewAliasInt 根據輸入的整數權重建立 AliasInt。
//
// - weights 為任意非負整數權重陣列，不需事先正規化。
// - 權重可為零；負權重、總和溢位、全零皆回傳 errs.Warn。
//
// 演算法流程條列：
// 1) 將每個權重 w 乘以 n（元素數量）做整數 scaling，得到 prob。
// 2) 分類索引到 small 或 large，依 prob[i] 與 total 比較。
// 3) 從 small 和 large 各取一個元素 s, l，將 l 指派為 s 的 alias，並調整 l 的 prob。
// 4) 重複直到 small 或 large 空。
func NewAliasInt(weights []int) (*AliasInt, error) {
	if len(weights) == 0 {
		return nil, errs.NewWarn("aliasint: empty weights")
	}

	n := len(weights)
	total := uint64(0)
	for i, w := range weights {
		if w < 0 {
			return nil, errs.Warnf("aliasint: negative weight %d at index %d", w, i)
		}
		if total > uint64(math.MaxInt)-uint64(w) {
			return nil, errs.NewWarn("aliasint: total weight overflow int range")
		}
		total += uint64(w)
	}

	if total == 0 {
		return nil, errs.NewWarn("aliasint: all weights are zero")
	}

	if !isSafeMultiply(int(total), n) {
		return nil, errs.NewWarn("aliasint: weights are too large, causing overflow")
	}

	prob := make([]int, n)
	aliases := make([]int, n)

	small := make([]int, 0)
	large := make([]int, 0)

	for i, w := range weights {
		prob[i] = w * n           // 整數 scaling: 將權重乘以元素數量 n，方便後續整數比較
		if prob[i] < int(total) { // 以 total 做 partition，分為 small 與 large 兩組
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		aliases[s] = l                           // 把 s 的剩餘機率補到 l，建立別名關係
		prob[l] = prob[l] + prob[s] - int(total) // 調整 l 的機率，維持 sum(prob) = total * n 的不變性

		if prob[l] < int(total) {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}

	return &AliasInt{
		Prob:    prob,
		Aliases: aliases,
		Size:    n,
		Total:   int(total),
	}, nil
}

// isSafeMultiply 使用 bits.Mul64 來檢查兩個 int 乘積是否會超過 math.MaxInt64。
//
// 此檢查用於建表階段，確保 w*n 的乘法不會溢位，避免後續整數計算錯誤。
func isSafeMultiply(a, b int) bool {
	a1 := uint64(a)
	b1 := uint64(b)
	hi, lo := bits.Mul64(a1, b1)
	return hi == 0 && (lo <= math.MaxInt64)
}

// Pick 從 AliasInt 中抽取一個索引，若表為空則回傳 -1。
//
// 抽樣步驟說明：
//
// 1) 使用 c.IntN(Size) 隨機選擇一個槽位 idx。
//
// 2) 使用 c.IntN(Total) 隨機投票，判斷條件為 IntN(Total) < Prob[idx]。
//
// 數學推導簡述：
//   - Prob[idx] = weight[idx] * Size，為整數 scaling 後的機率值。
//   - 浮點版本為 U < p[idx]，U 為 [0,1) 均勻隨機數，p[idx] 為機率。
//   - 將 U 與 p[idx] 放大為整數比較，避免浮點誤差。
func (at *AliasInt) Pick(c *randcore.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}
