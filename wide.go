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

import (
	"math/bits"

	"github.com/zintix-labs/randcore/errs"
)

// 超過 64-bit 的 bounded 取樣不能再用 widening multiply（沒有 256-bit 乘法），
// 改走「遮罩最高 limb + 拒絕」：把最高有效 limb 遮到剛好蓋住 bound 的 bit 長度，
// 候選值 >= bound 就整組重抽。遮罩保證每輪接受率 > 1/2，期望重抽 < 1 次。
// 絕不使用 modulo 縮減，modulo 在寬整數上的偏差無法接受。

// Uint128 是 128-bit 無號整數，little-endian limb 排列（Lo 在前）。
type Uint128 struct {
	Lo, Hi uint64
}

// IsZero 回傳是否為零值。
func (u Uint128) IsZero() bool { return u.Hi == 0 && u.Lo == 0 }

// Less 回傳 u < v。
func (u Uint128) Less(v Uint128) bool {
	if u.Hi != v.Hi {
		return u.Hi < v.Hi
	}
	return u.Lo < v.Lo
}

// Uint128 回傳均勻分布的 128-bit 亂數，低 64 bits 先抽。
func (c *Core) Uint128() Uint128 {
	lo := c.Uint64()
	hi := c.Uint64()
	return Uint128{Lo: lo, Hi: hi}
}

// Uint128N 回傳 [0,n) 的無偏 128-bit 亂數，n 為零時回傳零值。
func (c *Core) Uint128N(n Uint128) Uint128 {
	if n.IsZero() {
		return Uint128{}
	}
	if n.Hi == 0 {
		return Uint128{Lo: Uint64N(c, n.Lo)}
	}
	maskHi := ^uint64(0) >> bits.LeadingZeros64(n.Hi)
	for {
		lo := c.Uint64()
		hi := c.Uint64() & maskHi
		v := Uint128{Lo: lo, Hi: hi}
		if v.Less(n) {
			return v
		}
	}
}

// BytesBelow 回傳 little-endian 表示下嚴格小於 bound 的均勻亂數，
// 與 bound 等長。bound 全零回傳 errs.Warn（空區間）。
//
// 任意位寬共用同一套遮罩拒絕法：只遮最高非零 byte，
// 更高位的 bytes 直接清零，不消耗亂數。
func (c *Core) BytesBelow(bound []byte) ([]byte, error) {
	top := -1
	for i := len(bound) - 1; i >= 0; i-- {
		if bound[i] != 0 {
			top = i
			break
		}
	}
	if top < 0 {
		return nil, errs.NewWarn("bytesbelow: bound is zero")
	}
	mask := byte(0xff >> bits.LeadingZeros8(bound[top]))

	out := make([]byte, len(bound))
	for {
		c.Fill(out[:top+1])
		out[top] &= mask
		if bytesLessLE(out[:top+1], bound[:top+1]) {
			return out, nil
		}
	}
}

// bytesLessLE 比較兩個等長 little-endian 整數，回傳 a < b。
func bytesLessLE(a, b []byte) bool {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
