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

// Core 封裝 PRNG，並提供常用取樣與工具方法。
//
// Core 本身不持有任何取樣狀態（Ziggurat 表為套件層唯讀常數），
// 因此同一個 PRNG 換裝到新 Core 不影響輸出序列。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
// 熱路徑中只使用哨兵值回傳
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	idx := c.IntN(len(src))
	return src[idx]
}

// PickIndex 回傳 [0,n) 的隨機索引，n <= 0 回傳 -1。
// 與 IntN 等價，保留此名稱讓取樣呼叫端語意清楚。
func (c *Core) PickIndex(n int) int {
	return c.IntN(n)
}

// Float32 回傳 [0,1) 的 float32 亂數，使用 24-bit mantissa。
func (c *Core) Float32() float32 {
	return float32(c.Uint32()<<8>>8) / (1 << 24)
}

// Float64Signed 回傳 (-1,1) 的 float64 亂數，兩端皆開區間。
//
// 取 54 bits 當有號定點數再正規化，得到 [-1,1) 的均勻格點；
// 撞到 -1（機率 2^-54）時重抽，確保區間兩端對稱開放。
func (c *Core) Float64Signed() float64 {
	for {
		v := float64(int64(c.Uint64())>>10) / (1 << 53)
		if v != -1 {
			return v
		}
	}
}

// Bool 回傳公平硬幣。
func (c *Core) Bool() bool {
	return c.Uint64()&1 == 1
}
