// Package sampler 提供一系列高效能的加權抽樣演算法與工具。
//
// 本檔案 (aliastable.go) 實作了 Vose's Alias Method 加權抽樣演算法 (浮點權重版)。
//
// 演算法原理：
//   - 將任意離散分佈轉換為均勻分佈的組合。
//   - 每個槽位 (Bucket) 只存放「自己」和「別名 (Alias)」兩個選項。
//   - 抽樣時先選槽位，再根據機率決定是自己還是別名。
//
// 特性：
//   - 建表時間：O(N)，線性時間。
//   - 抽樣時間：O(1)，穩定且高效。
//   - 空間複雜度：O(N)，與選項數量成正比，**與權重總和無關**。
//
// 錯誤處理原則：
//   - 權重驗證（負數、NaN、Inf、全零）全部發生在建表階段，以 error 回報呼叫端。
//   - 建好的表抽樣永不失敗；權重異動需要整表重建。

package sampler

import (
	"math"

	"github.com/zintix-labs/randcore"
	"github.com/zintix-labs/randcore/errs"
)

// AliasTable 是 Vose Alias Method 的 O(1) 加權抽樣結構，權重為 float64。
//
// 建表時把平均權重正規化為 1：scaled[i] = w[i] * n / sum(w)。
// 每個槽位存一個接受門檻 prob[i] ∈ [0,1] 與一個別名索引。
// 抽樣固定消耗一次 IntN 選槽位、一次 Float64 投票。
//
// 建好之後抽樣是唯讀的，可以跨 goroutine 共用；
// Rebuild 會整表換新，不可與進行中的抽樣並行。
type AliasTable struct {
	prob  []float64 // 接受門檻，落在 [0,1]
	alias []int
}

// NewAliasTable 根據輸入的權重建立 AliasTable。
//
// 輸入 weights 說明：
// - weights 為任意非負有限浮點權重陣列，不需事先正規化。
// - 權重可為零；出現負數、NaN、Inf 或全零時回傳 errs.Warn。
//
// 演算法流程條列：
// 1) scaled[i] = w[i] * n / total，平均正規化為 1。
// 2) 分類索引到 small（< 1）或 large（>= 1）兩個 worklist。
// 3) 從兩邊各取一個 s, l：prob[s] = scaled[s]、alias[s] = l，
//    把 s 不足 1 的缺額捐給 l（scaled[l] -= 1 - scaled[s]），
//    l 依剩餘權重重新歸隊。
// 4) 任一 worklist 清空後，殘留的單邊項目門檻一律補 1.0
//    （浮點捨入會讓理論上恰好為 1 的項目落在任一邊）。
func NewAliasTable(weights []float64) (*AliasTable, error) {
	n := len(weights)
	if n == 0 {
		return nil, errs.NewWarn("aliastable: empty weights")
	}

	total := 0.0
	for i, w := range weights {
		// !(w >= 0) 同時攔下負數與 NaN
		if !(w >= 0) || math.IsInf(w, 1) {
			return nil, errs.Warnf("aliastable: invalid weight %v at index %d", w, i)
		}
		total += w
	}
	if !(total > 0) || math.IsInf(total, 1) {
		return nil, errs.Warnf("aliastable: weight total %v is not positive finite", total)
	}

	scaled := make([]float64, n)
	prob := make([]float64, n)
	alias := make([]int, n)

	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, w := range weights {
		scaled[i] = w * float64(n) / total
		if scaled[i] < 1 {
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

		prob[s] = scaled[s]
		alias[s] = l
		scaled[l] -= 1 - scaled[s] // 把 s 的缺額捐給 l，維持 sum(scaled) = n 的不變性

		if scaled[l] < 1 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}

	// 殘留項目理論值恰為 1，捨入誤差可能讓它留在任一邊
	for _, i := range large {
		prob[i] = 1
		alias[i] = i
	}
	for _, i := range small {
		prob[i] = 1
		alias[i] = i
	}

	return &AliasTable{prob: prob, alias: alias}, nil
}

// Rebuild 以新的權重整表重建，驗證規則與 NewAliasTable 完全相同。
//
// 權重異動後唯一的更新路徑就是 O(n) 重建；
// 驗證失敗時回傳 errs.Warn，舊表保持原狀可繼續抽樣。
func (at *AliasTable) Rebuild(weights []float64) error {
	nt, err := NewAliasTable(weights)
	if err != nil {
		return err
	}
	at.prob = nt.prob
	at.alias = nt.alias
	return nil
}

// Len 回傳表中元素數量。
func (at *AliasTable) Len() int { return len(at.prob) }

// Pick 從 AliasTable 中抽取一個索引。
//
// 抽樣步驟說明：
//
// 1) 使用 c.IntN(n) 無偏選擇一個槽位 idx。
//
// 2) 使用 c.Float64() 投票：U < prob[idx] 時直接選 idx，否則選其 alias。
//
// 抽樣固定消耗兩次亂數，永不失敗。
func (at *AliasTable) Pick(c *randcore.Core) int {
	idx := c.IntN(len(at.prob))
	if c.Float64() < at.prob[idx] {
		return idx
	}
	return at.alias[idx]
}
