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

// Integer 是 Range 可承載的整數型別集合。
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// ----------------------------------------------------------------------------
// 無偏 bounded 取樣（產生器無關的版本）
// ----------------------------------------------------------------------------

// Uint64N 回傳 [0,n) 的無偏 uint64，n == 0 回傳 0。
//
// 使用 widening multiply 法：hi,lo = n * Uint64()，hi 即為候選值；
// 只有 lo 落在 threshold（-n mod n）以下時才需要重抽，
// 期望重抽次數 < 1，且完全不用除法走 fast path。
// 2 的冪以 mask 直接取位，保證零重抽。
func Uint64N(r RAND, n uint64) uint64 {
	if n == 0 {
		return 0
	}
	if n&(n-1) == 0 {
		return r.Uint64() & (n - 1)
	}
	hi, lo := bits.Mul64(r.Uint64(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul64(r.Uint64(), n)
		}
	}
	return hi
}

// Uint32N 回傳 [0,n) 的無偏 uint32，n == 0 回傳 0。
// 32-bit 核心產生器走這條路徑能保持單 word 消耗。
func Uint32N(r RAND, n uint32) uint32 {
	if n == 0 {
		return 0
	}
	if n&(n-1) == 0 {
		return r.Uint32() & (n - 1)
	}
	hi, lo := bits.Mul32(r.Uint32(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul32(r.Uint32(), n)
		}
	}
	return hi
}

// ----------------------------------------------------------------------------
// 泛型整數區間
// ----------------------------------------------------------------------------

// Range 表示一個預先驗證過的整數取樣區間。
//
// 內部以「下界 + 無號跨度」表示：span 是 64-bit 模運算下的區間寬度，
// 帶正負號的型別經 two's complement 換算後同樣成立，
// 因此同一套抽樣程式碼涵蓋所有整數型別。
// span == 0 是滿射哨兵：代表整個型別值域（僅 64-bit 型別會出現）。
type Range[T Integer] struct {
	low  T
	span uint64
}

// NewRange 建立半開區間 [low, high) 的 Range。
// high <= low 回傳 errs.Warn（空區間無法取樣）。
func NewRange[T Integer](low, high T) (Range[T], error) {
	if high <= low {
		return Range[T]{}, errs.Warnf("range: empty interval [%v, %v)", low, high)
	}
	return Range[T]{low: low, span: uint64(high) - uint64(low)}, nil
}

// NewRangeInclusive 建立閉區間 [low, high] 的 Range。
// high < low 回傳 errs.Warn。low == high 是合法的單點區間。
func NewRangeInclusive[T Integer](low, high T) (Range[T], error) {
	if high < low {
		return Range[T]{}, errs.Warnf("range: inverted interval [%v, %v]", low, high)
	}
	// 滿域閉區間的 span 在 64-bit 型別上會溢位回 0，正好落在滿射哨兵。
	return Range[T]{low: low, span: uint64(high) - uint64(low) + 1}, nil
}

// FullRange 建立涵蓋 T 整個值域的 Range。
func FullRange[T Integer]() Range[T] {
	width := 1
	for v := T(1) << 1; v != 0; v <<= 1 {
		width++
	}
	var low T
	if ^T(0) < 0 {
		low = T(1) << (width - 1) // signed 的最小值
	}
	if width == 64 {
		return Range[T]{low: low, span: 0}
	}
	return Range[T]{low: low, span: uint64(1) << width}
}

// Draw 從區間中抽出一個值。區間在建構時已驗證，抽樣本身永不失敗。
func (rg Range[T]) Draw(r RAND) T {
	if rg.span == 0 {
		return rg.low + T(r.Uint64())
	}
	return rg.low + T(Uint64N(r, rg.span))
}

// Low 回傳區間下界。
func (rg Range[T]) Low() T { return rg.low }

// Span 回傳區間寬度（0 代表滿域）。
func (rg Range[T]) Span() uint64 { return rg.span }
