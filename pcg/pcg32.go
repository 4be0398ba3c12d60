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

// Package pcg 實作 PCG（Permuted Congruential Generator）家族產生器。
//
// The PCG algorithm is designed by Melissa O'Neill.
// Paper and details at http://www.pcg-random.org
// Portions of the bounded random generation logic (UintN/IntN) are
// adapted from the Go standard library (math/rand/v2), which is
// licensed under the BSD 3-Clause License.
package pcg

import (
	"crypto/rand"
	"encoding/binary"
	"math/bits"

	"github.com/zintix-labs/randcore/errs"
)

const (
	pcg32Multiplier = 6364136223846793005

	// Seed32Size 為 PCG32 的 seed 長度（64-bit 初始狀態值，little-endian）。
	Seed32Size = 8
)

// PCG32 為 64-bit 狀態、32-bit 輸出的 PCG (XSH RR) 產生器。
//
// 內部狀態每次取數依 state = state*MUL + inc 推進（inc 為奇數，保證全週期 2^64）；
// 輸出由「推進前」的狀態經 xorshift + data-dependent rotate 打散，
// 使可見輸出與低位的線性同餘結構脫鉤。
//
// stream 選擇：inc = (seq<<1)|1。相同 seed、不同 seq 的兩台產生器
// 在整個週期內走不重疊的輸出序列。
type PCG32 struct {
	state uint64
	inc   uint64
	seq   uint64
}

// --------------------------------------
// 提供多種New方式
// --------------------------------------

// NewPCG32WithSeed 以指定 seed 建立新的 PCG32（stream 0）。
func NewPCG32WithSeed(seed int64) *PCG32 {
	r := &PCG32{}
	r.init(uint64(seed), 0)
	return r
}

// NewPCG32Stream 以指定 seed 與 stream 選擇子建立 PCG32。
func NewPCG32Stream(seed int64, seq uint64) *PCG32 {
	r := &PCG32{}
	r.init(uint64(seed), seq)
	return r
}

// NewPCG32FromSeed 以 8-byte little-endian seed 建立 PCG32。
func NewPCG32FromSeed(seed []byte, seq uint64) (*PCG32, error) {
	if len(seed) != Seed32Size {
		return nil, errs.Warnf("pcg32: seed must be %d bytes (got %d)", Seed32Size, len(seed))
	}
	r := &PCG32{}
	r.init(binary.LittleEndian.Uint64(seed), seq)
	return r, nil
}

// NewPCG32FromEntropy 以 crypto/rand 取得 seed 建立 PCG32。
//
// entropy 來源失敗時原樣上拋。
func NewPCG32FromEntropy() (*PCG32, error) {
	var seed [Seed32Size]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, errs.Wrap(err, "pcg32: entropy source failed")
	}
	return NewPCG32FromSeed(seed[:], 0)
}

// init 依 PCG 建議的初始化流程導入 seed：先以 stream 步進一次，再加 seed、再步進。
func (r *PCG32) init(seed uint64, seq uint64) {
	r.seq = seq
	r.inc = (seq << 1) | 1
	r.state = 0
	r.nextUint32()
	r.state += seed
	r.nextUint32()
}

// Reseed 以 8-byte seed 重置產生器（stream 維持建構時的設定）。
//
// 合約：Reseed(s) 後的輸出與 NewPCG32FromSeed(s, seq) 完全一致。
func (r *PCG32) Reseed(seed []byte) error {
	if len(seed) != Seed32Size {
		return errs.Warnf("pcg32: seed must be %d bytes (got %d)", Seed32Size, len(seed))
	}
	r.init(binary.LittleEndian.Uint64(seed), r.seq)
	return nil
}

// SeedLen 回傳 Reseed 所需的 seed 長度。
func (r *PCG32) SeedLen() int { return Seed32Size }

//---------------------------------------
// 回傳介面方法
//---------------------------------------

// Uint32 回傳非負整數uint32亂數。
func (r *PCG32) Uint32() uint32 {
	return r.nextUint32()
}

// Uint64 回傳非負整數uint64亂數
//
// 消耗兩個連續 32-bit 輸出：先取的為低 32 bits（與 Fill 的 little-endian 串接一致）。
func (r *PCG32) Uint64() uint64 {
	lo := uint64(r.nextUint32())
	hi := uint64(r.nextUint32())
	return hi<<32 | lo
}

// Fill 以亂數填滿 p：連續 32-bit 輸出的 little-endian bytes，最後一個 word 截斷。
func (r *PCG32) Fill(p []byte) {
	for len(p) >= 4 {
		binary.LittleEndian.PutUint32(p, r.nextUint32())
		p = p[4:]
	}
	if len(p) > 0 {
		var tail [4]byte
		binary.LittleEndian.PutUint32(tail[:], r.nextUint32())
		copy(p, tail[:len(p)])
	}
}

// Float64 產出float64(53bits精度)，範圍 [0,1)。
func (r *PCG32) Float64() float64 {
	return float64(r.Uint64()<<11>>11) / (1 << 53)
}

// UintN 產出[0,n) 的uint整數，若 max == 0 回傳 0
func (r *PCG32) UintN(max uint) uint {
	if uint64(uint32(max)) == uint64(max) {
		return uint(r.uint32n(uint32(max)))
	}
	return uint(r.uint64n(uint64(max)))
}

// IntN 產出[0,n) 的整數，若 max <= 0 回傳 -1
func (r *PCG32) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	if uint64(uint32(max)) == uint64(max) {
		return int(r.uint32n(uint32(max)))
	}
	return int(r.uint64n(uint64(max)))
}

// Snapshot 匯出完整內部狀態（state、stream 選擇子，little-endian）。
func (r *PCG32) Snapshot() ([]byte, error) {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[0:], r.state)
	binary.LittleEndian.PutUint64(b[8:], r.seq)
	return b, nil
}

// Restore 依 Snapshot 格式還原內部狀態。
func (r *PCG32) Restore(data []byte) error {
	if len(data) != 16 {
		return errs.Warnf("pcg32: snapshot must be 16 bytes (got %d)", len(data))
	}
	r.state = binary.LittleEndian.Uint64(data[0:])
	r.seq = binary.LittleEndian.Uint64(data[8:])
	r.inc = (r.seq << 1) | 1
	return nil
}

//---------------------------------------
// 內部方法
//---------------------------------------

// nextUint32 推進 LCG 並以 XSH-RR（xorshift high + random rotate）產出輸出。
func (r *PCG32) nextUint32() uint32 {
	oldstate := r.state
	r.state = oldstate*pcg32Multiplier + r.inc
	xorshifted := uint32(((oldstate >> 18) ^ oldstate) >> 27)
	rot := uint32(oldstate >> 59)
	return bits.RotateLeft32(xorshifted, -int(rot))
}

// uint32n 回傳 [0,n) 的無偏亂數（乘法高位 + threshold 拒絕採樣，32-bit 路徑）。
//
// n 為 2 的冪時直接遮罩，不進入拒絕路徑。
func (r *PCG32) uint32n(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	if n&(n-1) == 0 { // n is power of two, can mask
		return r.nextUint32() & (n - 1)
	}
	prod := uint64(r.nextUint32()) * uint64(n)
	low := uint32(prod)
	if low < n {
		thresh := uint32(-n) % n
		for low < thresh {
			prod = uint64(r.nextUint32()) * uint64(n)
			low = uint32(prod)
		}
	}
	return uint32(prod >> 32)
}

// uint64n 與 uint32n 相同策略的 64-bit 路徑。
func (r *PCG32) uint64n(n uint64) uint64 {
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
