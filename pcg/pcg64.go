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

package pcg

import (
	"crypto/rand"
	"encoding/binary"
	"math/bits"

	"github.com/zintix-labs/randcore/errs"
)

// 128-bit LCG 常數（PCG 參考實作的預設值）。
const (
	pcg64MulHi = 2549297995355413924
	pcg64MulLo = 4865540595714422341

	// Seed64Size 為 PCG64 的 seed 長度（128-bit 初始狀態值，little-endian）。
	Seed64Size = 16
)

const is32bit = ^uint(0)>>32 == 0

// PCG64 為 128-bit 狀態、64-bit 輸出的 PCG (XSL RR) 產生器。
//
// 128-bit 狀態以兩個 uint64 表示，推進用 bits.Mul64/Add64 組合出
// state = state*MUL + inc；輸出為推進後狀態的 xor-fold（hi^lo）
// 再依最高 6 bits 旋轉，視覺輸出與內部線性結構脫鉤。
//
// stream 選擇子折入奇數 increment：相同 seed、不同 stream 的序列全週期不重疊。
type PCG64 struct {
	hi, lo uint64
	sHi    uint64
	sLo    uint64
	incHi  uint64
	incLo  uint64
}

// --------------------------------------
// 提供多種New方式
// --------------------------------------

// NewPCG64WithSeed 以指定 seed 建立新的 PCG64 實例（stream 0）。
func NewPCG64WithSeed(seed int64) *PCG64 {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	r := &PCG64{}
	r.init(splitmix64(x^0xDA942042E4DD58B5), splitmix64(x), 0, 0)
	return r
}

// NewPCG64Stream 以指定 seed 與 128-bit stream 選擇子建立 PCG64。
func NewPCG64Stream(seed int64, streamHi, streamLo uint64) *PCG64 {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	r := &PCG64{}
	r.init(splitmix64(x^0xDA942042E4DD58B5), splitmix64(x), streamHi, streamLo)
	return r
}

// NewPCG64FromSeed 以 16-byte little-endian seed 建立 PCG64。
func NewPCG64FromSeed(seed []byte, streamHi, streamLo uint64) (*PCG64, error) {
	if len(seed) != Seed64Size {
		return nil, errs.Warnf("pcg64: seed must be %d bytes (got %d)", Seed64Size, len(seed))
	}
	r := &PCG64{}
	r.init(binary.LittleEndian.Uint64(seed[0:]), binary.LittleEndian.Uint64(seed[8:]), streamHi, streamLo)
	return r, nil
}

// NewPCG64FromEntropy 以 crypto/rand 取得 seed 建立 PCG64。
//
// entropy 來源失敗時原樣上拋。
func NewPCG64FromEntropy() (*PCG64, error) {
	var seed [Seed64Size]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, errs.Wrap(err, "pcg64: entropy source failed")
	}
	return NewPCG64FromSeed(seed[:], 0, 0)
}

// init 依 PCG 建議流程導入 seed：以 stream 先步進一次，加 seed，再步進。
func (r *PCG64) init(seedLo, seedHi, streamHi, streamLo uint64) {
	r.sHi, r.sLo = streamHi, streamLo
	r.incLo = streamLo<<1 | 1
	r.incHi = streamHi<<1 | streamLo>>63
	r.hi, r.lo = 0, 0
	r.next()
	var c uint64
	r.lo, c = bits.Add64(r.lo, seedLo, 0)
	r.hi, _ = bits.Add64(r.hi, seedHi, c)
	r.next()
}

// Reseed 以 16-byte seed 重置產生器（stream 維持建構時的設定）。
func (r *PCG64) Reseed(seed []byte) error {
	if len(seed) != Seed64Size {
		return errs.Warnf("pcg64: seed must be %d bytes (got %d)", Seed64Size, len(seed))
	}
	r.init(binary.LittleEndian.Uint64(seed[0:]), binary.LittleEndian.Uint64(seed[8:]), r.sHi, r.sLo)
	return nil
}

// SeedLen 回傳 Reseed 所需的 seed 長度。
func (r *PCG64) SeedLen() int { return Seed64Size }

//---------------------------------------
// 回傳方法
//---------------------------------------

// Uint64 回傳非負整數uint64亂數
func (r *PCG64) Uint64() uint64 {
	r.next()
	return bits.RotateLeft64(r.hi^r.lo, -int(r.hi>>58))
}

// Uint32 回傳非負整數uint32亂數。
func (r *PCG64) Uint32() uint32 {
	return uint32(r.Uint64())
}

// Fill 以亂數填滿 p：連續 64-bit 輸出的 little-endian bytes，最後一個 word 截斷。
func (r *PCG64) Fill(p []byte) {
	for len(p) >= 8 {
		binary.LittleEndian.PutUint64(p, r.Uint64())
		p = p[8:]
	}
	if len(p) > 0 {
		var tail [8]byte
		binary.LittleEndian.PutUint64(tail[:], r.Uint64())
		copy(p, tail[:len(p)])
	}
}

// UintN 產出[0,n) 的uint整數，若 max == 0 回傳 0
func (r *PCG64) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	return uint(r.uint64n(uint64(max)))
}

// IntN 產出[0,n) 的整數，若 max <= 0 回傳 -1
func (r *PCG64) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	return int(r.uint64n(uint64(max)))
}

// Float64 產出float64(53bits精度)，範圍 [0,1)。
func (r *PCG64) Float64() float64 {
	return float64(r.Uint64()<<11>>11) / (1 << 53)
}

// Snapshot 取得當下內部狀態（state 與 stream，little-endian）。
func (r *PCG64) Snapshot() ([]byte, error) {
	b := make([]byte, 32)
	binary.LittleEndian.PutUint64(b[0:], r.lo)
	binary.LittleEndian.PutUint64(b[8:], r.hi)
	binary.LittleEndian.PutUint64(b[16:], r.sLo)
	binary.LittleEndian.PutUint64(b[24:], r.sHi)
	return b, nil
}

// Restore 恢復內部狀態
func (r *PCG64) Restore(data []byte) error {
	if len(data) != 32 {
		return errs.Warnf("pcg64: snapshot must be 32 bytes (got %d)", len(data))
	}
	r.lo = binary.LittleEndian.Uint64(data[0:])
	r.hi = binary.LittleEndian.Uint64(data[8:])
	r.sLo = binary.LittleEndian.Uint64(data[16:])
	r.sHi = binary.LittleEndian.Uint64(data[24:])
	r.incLo = r.sLo<<1 | 1
	r.incHi = r.sHi<<1 | r.sLo>>63
	return nil
}

//---------------------------------------
// 內部方法
//---------------------------------------

// next 推進 128-bit LCG：state = state*MUL + inc。
func (r *PCG64) next() {
	hi, lo := bits.Mul64(r.lo, pcg64MulLo)
	hi += r.hi*pcg64MulLo + r.lo*pcg64MulHi
	var c uint64
	lo, c = bits.Add64(lo, r.incLo, 0)
	hi, _ = bits.Add64(hi, r.incHi, c)
	r.lo, r.hi = lo, hi
}

// splitmix64 將輸入值混洗成新的 64-bit 狀態，用於種子展開。
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// uint64n 回傳 [0,n) 的無偏亂數（基於乘法高位與拒絕採樣）。
func (r *PCG64) uint64n(n uint64) uint64 {
	if is32bit && uint64(uint32(n)) == n {
		return uint64(r.uint32n(uint32(n)))
	}
	if n&(n-1) == 0 { // n is power of two, can mask
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

// uint32n 回傳 [0,n) 的無偏亂數（針對 32-bit 目標值，避免 64-bit 除法）。
func (r *PCG64) uint32n(n uint32) uint32 {
	if n&(n-1) == 0 { // n is power of two, can mask
		return uint32(r.Uint64()) & (n - 1)
	}
	x := r.Uint64()
	lo1a, lo0 := bits.Mul32(uint32(x), n)
	hi, lo1b := bits.Mul32(uint32(x>>32), n)
	lo1, c := bits.Add32(lo1a, lo1b, 0)
	hi += c
	if lo1 == 0 && lo0 < n {
		n64 := uint64(n)
		thresh := uint32(-n64 % n64)
		for lo1 == 0 && lo0 < thresh {
			x := r.Uint64()
			lo1a, lo0 = bits.Mul32(uint32(x), n)
			hi, lo1b = bits.Mul32(uint32(x>>32), n)
			lo1, c = bits.Add32(lo1a, lo1b, 0)
			hi += c
		}
	}
	return hi
}
