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

// Package randcore 提供可攜的亂數生成層（portable random-number generation layer）。
//
// 整個套件分成三層，依賴方向嚴格單向（下層不知道上層存在）：
//
//  1. Bit generator 抽象（本檔）：PRNG 合約 —— 產生 raw bits、可保存/還原、可重播種。
//  2. 具體產生器（chacha / pcg 子套件）：實作 PRNG 合約的演算法。
//  3. 取樣層（Core 與 sampler 子套件）：把 raw bits 轉成無偏的應用值 ——
//     任意整數區間、[0,1) 浮點、常態/指數分布、加權離散分布、洗牌。
//
// 取樣層只面向 PRNG 合約，不綁定任何具體產生器；
// 因此安全取向的 chacha 與速度取向的 pcg 共用同一套取樣演算法。
//
// 併發語意：單一 PRNG/Core 實例是 single-writer 的循序可變物件，
// 跨 goroutine 共用必須外部加鎖，或（建議）以 SeedMaker 派生獨立 seed、每個 worker 一台。
package randcore

import (
	"github.com/zintix-labs/randcore/chacha"
	"github.com/zintix-labs/randcore/pcg"
)

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣、狀態保存/還原與重播種。
type PRNG interface {
	RAND
	Restorable
	Reseeder
}

// Restorable 定義可快照與還原的狀態介面。
//
// Snapshot 匯出「完整」內部狀態（key/state words、counter、游標），
// Restore 後的輸出必須與快照當下完全銜接 —— 這是外部序列化元件的對接面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// Reseeder 定義可重播種的介面。
//
// 合約：Reseed(s) 之後的行為必須與「用 s 全新建構」完全一致，不得殘留舊狀態。
type Reseeder interface {
	// Reseed 以固定長度 seed（little-endian bytes）重置產生器。
	Reseed(seed []byte) error
	// SeedLen 回傳 Reseed 所需的 seed 長度（產生器各自定義）。
	SeedLen() int
}

// RAND 定義核心亂數取樣能力。
//
// 為什麼要求同時提供多個方法，而不是只要求 Uint64？
//
// 1) 允許實作針對原生輸出寬度做最佳化
//   - 32-bit 核心的產生器（如 pcg32、chacha 的 word stream）直接供應 Uint32 更自然；
//     若合約只有 Uint64，它們被迫走「湊兩個 word」的退化路徑。
//   - bounded 生成（UintN/IntN）各產生器有自己最快且正確的 fast path，
//     交由產生器實作能避免一層通用轉換。
//
// 2) Fill 的語意是合約的一部分
//   - Fill 必須逐 bit 等於產生器自身 word stream 的 little-endian 串接
//     （最後一個 word 依長度截斷）。這讓 byte 輸出與 word 輸出可互相驗證，
//     也是 32/64-bit 混用時位置追蹤正確性的試金石。
//
// 3) Float64 的精度與生成方式由產生器決定（53-bit mantissa 為準）。
//
// 所有方法都不會失敗：有限週期產生器的耗盡是邏輯性質，不是 runtime error。
type RAND interface {
	// Uint32 回傳非負 uint32 亂數。
	Uint32() uint32
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Fill 以亂數填滿 p（與 word stream 逐 bit 等價）。
	Fill(p []byte)
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(max uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(max int) int
}

// PRNGFactory 是產生器工廠。
type PRNGFactory interface {
	// New 以指定 seed 建立新的 PRNG。
	//
	// 合約（很重要）：在同一個實作與同一個版本下，New(seed) 必須是「決定性」的——
	// 相同的 seed 必須產生相同的初始內部狀態與輸出序列。
	//
	// seed 的生命週期由呼叫端統一管理：外部未提供時由呼叫端自產 baseSeed，
	// 後續所有實例由 baseSeed 以 SeedMaker 派生子 seed，確保可重現。
	New(int64) PRNG
}

// DefaultPRNG 實作預設的 PRNGFactory：速度取向，使用 PCG64。
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return pcg.NewPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Fast32PRNG 實作 32-bit 核心的 PRNGFactory：使用 PCG32，
// 適合 32-bit 平台或輸出以 uint32 為主的場景。
type Fast32PRNG struct{}

// New 滿足合約
func (f *Fast32PRNG) New(seed int64) PRNG {
	return pcg.NewPCG32WithSeed(seed)
}

func Fast32() *Fast32PRNG {
	return &Fast32PRNG{}
}

// CipherPRNG 實作串流加密取向的 PRNGFactory：使用 ChaCha，輪數可選（8/12/20）。
type CipherPRNG struct {
	Rounds int
}

// New 滿足合約。Rounds 非法時以 20 輪建立（此入口不失敗）。
func (cp *CipherPRNG) New(seed int64) PRNG {
	return chacha.NewWithSeed(cp.Rounds, seed)
}

func Cipher(rounds int) *CipherPRNG {
	return &CipherPRNG{Rounds: rounds}
}
