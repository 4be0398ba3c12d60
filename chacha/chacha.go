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

// Package chacha 實作以 ChaCha stream cipher 為核心的 PRNG。
//
// The ChaCha family is designed by D. J. Bernstein. Portions of the
// bounded random generation logic (UintN/IntN) are adapted from the Go
// standard library (math/rand/v2), which is licensed under the
// BSD 3-Clause License.
//
// 與 pcg 套件相比：
//   - ChaCha 的輸出無法反推內部 key（block function 單向），適合「不可預測性」有要求的場景。
//   - 速度較 PCG 慢（每 64 bytes 需要一次 block function），但仍是 bulk 輸出友善的設計。
//
// 輪數 8 / 12 / 20 在建構期決定：輪數越高安全餘裕越大、速度越慢。
// 統計品質三者皆遠超過一般模擬需求。
package chacha

import (
	"crypto/rand"
	"encoding/binary"
	"math/bits"

	"github.com/zintix-labs/randcore/errs"
)

const (
	// SeedSize 為完整 seed 長度：32-byte key + 8-byte stream id（皆 little-endian）。
	SeedSize = 40

	blockWords = 16
	snapLen    = 2 + 8 + 8 + 32 + 64
)

// ChaCha 亂數產生器。
//
// 狀態機：64-byte block buffer 配上 word 游標 used ∈ [0,16]。
//   - used == 16 : block 已耗盡（建構後的初始狀態，首次取數時觸發 block 生成）
//   - used <  16 : buf[used:] 為尚未消耗的 words
//
// 游標不變量：used 永遠等於目前 block 已消耗的 word 數，
// 因此同一個 counter 位置的輸出絕不會重複出現。
// counter 於 block 耗盡時恰好遞增一次，溢位時回繞（單一 stream 的週期為 2^70 bytes）。
//
// 同一實例不可被多 goroutine 併發取數（single-writer）。
type ChaCha struct {
	key     [8]uint32
	stream  uint64
	counter uint64
	rounds  int

	buf  [blockWords]uint32
	used int
}

// -----------------------------------------------------------------------------
// 建構
// -----------------------------------------------------------------------------

// New 以完整 seed（SeedSize bytes）建立指定輪數的 ChaCha。
//
// rounds 只接受 8 / 12 / 20；其他值回傳 errs.Warn。
// seed 一經導入即不再保存：之後的狀態無法還原出 seed 原文以外的資訊，
// 對外輸出亦無法反推 key。
func New(rounds int, seed []byte) (*ChaCha, error) {
	if rounds != 8 && rounds != 12 && rounds != 20 {
		return nil, errs.Warnf("chacha: rounds must be 8, 12 or 20 (got %d)", rounds)
	}
	if len(seed) != SeedSize {
		return nil, errs.Warnf("chacha: seed must be %d bytes (got %d)", SeedSize, len(seed))
	}
	c := &ChaCha{rounds: rounds}
	c.applySeed(seed)
	return c, nil
}

// NewWithSeed 以 int64 seed 建立 ChaCha（splitmix64 展開成完整 key）。
//
// 合約：相同 (rounds, seed) 必須產生相同輸出序列（決定性）。
// rounds 非法時退回 20 輪，確保此便利入口永不失敗。
func NewWithSeed(rounds int, seed int64) *ChaCha {
	if rounds != 8 && rounds != 12 && rounds != 20 {
		rounds = 20
	}
	var full [SeedSize]byte
	x := uint64(seed)
	for i := 0; i < 5; i++ {
		x = splitmix64(x)
		binary.LittleEndian.PutUint64(full[i*8:], x)
	}
	c, _ := New(rounds, full[:])
	return c
}

// NewFromEntropy 以 crypto/rand 取得 seed 建立 ChaCha。
//
// entropy 來源失敗時原樣上拋（不退化成弱亂數）。
func NewFromEntropy(rounds int) (*ChaCha, error) {
	var seed [SeedSize]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, errs.Wrap(err, "chacha: entropy source failed")
	}
	return New(rounds, seed[:])
}

// applySeed 導入 key 與 stream id，並把狀態機歸零（counter=0、buffer 耗盡）。
func (c *ChaCha) applySeed(seed []byte) {
	for i := 0; i < 8; i++ {
		c.key[i] = binary.LittleEndian.Uint32(seed[i*4:])
	}
	c.stream = binary.LittleEndian.Uint64(seed[32:])
	c.counter = 0
	c.used = blockWords
}

// Reseed 以新 seed 重置產生器。
//
// 合約：Reseed(s) 之後的輸出必須與 New(rounds, s) 的全新實例完全一致
// （無殘留狀態）。輪數維持建構時的設定。
func (c *ChaCha) Reseed(seed []byte) error {
	if len(seed) != SeedSize {
		return errs.Warnf("chacha: seed must be %d bytes (got %d)", SeedSize, len(seed))
	}
	c.applySeed(seed)
	return nil
}

// SeedLen 回傳 Reseed 所需的 seed 長度。
func (c *ChaCha) SeedLen() int { return SeedSize }

// Rounds 回傳建構時設定的輪數。
func (c *ChaCha) Rounds() int { return c.rounds }

// -----------------------------------------------------------------------------
// 取數（RAND 合約）
// -----------------------------------------------------------------------------

// refill 生成下一個 block 並推進 counter（耗盡時恰好一次）。
func (c *ChaCha) refill() {
	c.block(c.counter, &c.buf)
	c.counter++ // 溢位回繞
	c.used = 0
}

// nextWord 消耗 block 中的下一個 32-bit word。
//
// 所有公開取數入口（Uint32/Uint64/Fill）都建立在 nextWord 之上，
// 因此 word stream 是唯一的事實來源：Fill 的輸出逐 bit 等於
// word stream 的 little-endian 串接。
func (c *ChaCha) nextWord() uint32 {
	if c.used == blockWords {
		c.refill()
	}
	w := c.buf[c.used]
	c.used++
	return w
}

// Uint32 回傳非負整數uint32亂數。
func (c *ChaCha) Uint32() uint32 {
	return c.nextWord()
}

// Uint64 回傳非負整數uint64亂數。
//
// 消耗兩個連續 words：先取的 word 為低 32 bits（little-endian 一致性）。
// block 只剩一個 word 時，第二個 word 取自下一個 block，串接順序不變。
func (c *ChaCha) Uint64() uint64 {
	lo := uint64(c.nextWord())
	hi := uint64(c.nextWord())
	return hi<<32 | lo
}

// Fill 以亂數填滿 p。
//
// 等價於連續取 word 並複製其 little-endian bytes，最後一個 word 依長度截斷。
func (c *ChaCha) Fill(p []byte) {
	for len(p) >= 4 {
		binary.LittleEndian.PutUint32(p, c.nextWord())
		p = p[4:]
	}
	if len(p) > 0 {
		var tail [4]byte
		binary.LittleEndian.PutUint32(tail[:], c.nextWord())
		copy(p, tail[:len(p)])
	}
}

// Float64 產出float64(53bits精度)，範圍 [0,1)。
func (c *ChaCha) Float64() float64 {
	return float64(c.Uint64()<<11>>11) / (1 << 53)
}

// UintN 產出[0,max) 的uint整數，若 max == 0 回傳 0
func (c *ChaCha) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	return uint(c.uint64n(uint64(max)))
}

// IntN 產出[0,max) 的整數，若 max <= 0 回傳 -1
func (c *ChaCha) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	return int(c.uint64n(uint64(max)))
}

// uint64n 回傳 [0,n) 的無偏亂數（乘法高位 + threshold 拒絕採樣）。
//
// n 為 2 的冪時直接遮罩，不進入拒絕路徑。
func (c *ChaCha) uint64n(n uint64) uint64 {
	if n&(n-1) == 0 { // n is power of two, can mask
		return c.Uint64() & (n - 1)
	}
	hi, lo := bits.Mul64(c.Uint64(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul64(c.Uint64(), n)
		}
	}
	return hi
}

// -----------------------------------------------------------------------------
// 狀態保存 / 還原（Restorable 合約）
// -----------------------------------------------------------------------------

// Snapshot 匯出完整內部狀態：rounds、游標、counter、stream、key、暫存 block。
//
// 格式（little-endian）：
//
//	[0]    rounds
//	[1]    used
//	[2:10] counter
//	[10:18] stream
//	[18:50] key words
//	[50:114] block buffer words
func (c *ChaCha) Snapshot() ([]byte, error) {
	b := make([]byte, snapLen)
	b[0] = byte(c.rounds)
	b[1] = byte(c.used)
	binary.LittleEndian.PutUint64(b[2:], c.counter)
	binary.LittleEndian.PutUint64(b[10:], c.stream)
	for i, k := range c.key {
		binary.LittleEndian.PutUint32(b[18+i*4:], k)
	}
	for i, w := range c.buf {
		binary.LittleEndian.PutUint32(b[50+i*4:], w)
	}
	return b, nil
}

// Restore 依 Snapshot 匯出的格式還原內部狀態。
func (c *ChaCha) Restore(data []byte) error {
	if len(data) != snapLen {
		return errs.Warnf("chacha: snapshot must be %d bytes (got %d)", snapLen, len(data))
	}
	rounds := int(data[0])
	if rounds != 8 && rounds != 12 && rounds != 20 {
		return errs.Warnf("chacha: snapshot carries invalid rounds %d", rounds)
	}
	used := int(data[1])
	if used < 0 || used > blockWords {
		return errs.Warnf("chacha: snapshot carries invalid cursor %d", used)
	}
	c.rounds = rounds
	c.used = used
	c.counter = binary.LittleEndian.Uint64(data[2:])
	c.stream = binary.LittleEndian.Uint64(data[10:])
	for i := range c.key {
		c.key[i] = binary.LittleEndian.Uint32(data[18+i*4:])
	}
	for i := range c.buf {
		c.buf[i] = binary.LittleEndian.Uint32(data[50+i*4:])
	}
	return nil
}

// splitmix64 將輸入值混洗成新的 64-bit 狀態，用於種子展開。
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
