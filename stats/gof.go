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

package stats

import (
	"math"

	"github.com/zintix-labs/randcore/errs"
	"gonum.org/v1/gonum/stat/distuv"
)

// GofStat 卡方適合度檢定結果。
//
// PValue 是在虛無假設（觀測分布等於期望分布）成立下，
// 卡方統計量至少這麼極端的機率。亂數品質檢定的讀法：
// p 值長期落在極端（< 0.001 或 > 0.999）代表產生器或取樣層有偏。
type GofStat struct {
	Chi2   float64 `json:"Chi2"`
	Df     int     `json:"Df"`
	PValue float64 `json:"PValue"`
}

// ChiSquare 對觀測計數與期望機率做 Pearson 卡方檢定。
//
// 輸入驗證（全部在進入計算前回報 errs.Warn）：
//   - counts 與 probs 長度一致且至少 2 桶。
//   - probs 非負且總和接近 1。
//   - 每桶期望次數 >= 5，否則卡方近似不可靠（教科書門檻）。
func ChiSquare(counts []int64, probs []float64) (*GofStat, error) {
	k := len(counts)
	if k < 2 {
		return nil, errs.Warnf("gof: need at least 2 buckets (got %d)", k)
	}
	if len(probs) != k {
		return nil, errs.Warnf("gof: counts/probs length mismatch (%d vs %d)", k, len(probs))
	}

	total := int64(0)
	for _, c := range counts {
		if c < 0 {
			return nil, errs.NewWarn("gof: negative count")
		}
		total += c
	}
	if total == 0 {
		return nil, errs.NewWarn("gof: no observations")
	}

	psum := 0.0
	for _, p := range probs {
		if !(p >= 0) {
			return nil, errs.Warnf("gof: invalid probability %v", p)
		}
		psum += p
	}
	if math.Abs(psum-1) > 1e-9 {
		return nil, errs.Warnf("gof: probabilities sum to %v, want 1", psum)
	}

	chi2 := 0.0
	for i, c := range counts {
		exp := float64(total) * probs[i]
		if exp < 5 {
			return nil, errs.Warnf("gof: expected count %.2f in bucket %d below 5, need more samples", exp, i)
		}
		d := float64(c) - exp
		chi2 += d * d / exp
	}

	df := k - 1
	dist := distuv.ChiSquared{K: float64(df)}
	return &GofStat{
		Chi2:   chi2,
		Df:     df,
		PValue: dist.Survival(chi2),
	}, nil
}

// ChiSquareUniform 是 ChiSquare 的等機率特化：檢定所有桶出現機率相同。
func ChiSquareUniform(counts []int64) (*GofStat, error) {
	k := len(counts)
	if k < 2 {
		return nil, errs.Warnf("gof: need at least 2 buckets (got %d)", k)
	}
	probs := make([]float64, k)
	for i := range probs {
		probs[i] = 1 / float64(k)
	}
	return ChiSquare(counts, probs)
}

// NormalCheck 檢查樣本動差是否與標準常態一致，回傳平均與變異數的 z 分數。
//
// 在 N(0,1) 下樣本平均的標準誤是 1/sqrt(n)，
// 樣本變異數的標準誤近似 sqrt(2/(n-1))。|z| 長期大於 4 視為有偏。
func NormalCheck(m *Moments) (zMean, zVar float64) {
	n := float64(m.N())
	if n < 2 {
		return 0, 0
	}
	zMean = m.Mean() * math.Sqrt(n)
	zVar = (m.Variance() - 1) / math.Sqrt(2/(n-1))
	return zMean, zVar
}

// ProportionCI 回傳二項比例的 95% Jeffreys 信賴區間。
//
// 以 Beta(s+1/2, n-s+1/2) 的 2.5% / 97.5% 分位數為界，
// 小樣本與極端比例下都比常態近似穩定。
func ProportionCI(successes, n int64) (CI, error) {
	if n < 1 {
		return CI{}, errs.Warnf("gof: sample size must be >= 1 (got %d)", n)
	}
	if successes < 0 || successes > n {
		return CI{}, errs.Warnf("gof: successes %d out of [0, %d]", successes, n)
	}
	b := distuv.Beta{
		Alpha: float64(successes) + 0.5,
		Beta:  float64(n-successes) + 0.5,
	}
	return CI{Lo: b.Quantile(0.025), Hi: b.Quantile(0.975)}, nil
}

// ExpCheck 檢查樣本動差是否與 rate=1 指數分布一致（平均 1、變異數 1）。
func ExpCheck(m *Moments) (zMean, zVar float64) {
	n := float64(m.N())
	if n < 2 {
		return 0, 0
	}
	// Exp(1) 的樣本平均標準誤是 1/sqrt(n)（std = mean = 1）
	zMean = (m.Mean() - 1) * math.Sqrt(n)
	zVar = (m.Variance() - 1) / math.Sqrt(8/n) // Var(S^2) ~ (mu4 - sigma^4)/n = 8/n
	return zMean, zVar
}
