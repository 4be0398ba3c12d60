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

package recorder

import (
	"github.com/zintix-labs/randcore/errs"
	"github.com/zintix-labs/randcore/stats"
)

// DrawRecorder 產生器跑批紀錄員
//
// DrawRecorder 負責累積一條 [0,1) draw 序列的動差與落點分布，
// 並透過 Done 輸出品質報告。熱路徑只做整數與浮點累加，不配置記憶體。
type DrawRecorder struct {
	Name    string
	buckets int
	moments *stats.Moments
	freq    *stats.Freq
}

// NewDrawRecorder 建立紀錄員，buckets 是 [0,1) 的等寬分桶數（至少 2）。
func NewDrawRecorder(name string, buckets int) (*DrawRecorder, error) {
	if name == "" {
		return nil, errs.NewWarn("recorder: name must not be empty")
	}
	if buckets < 2 {
		return nil, errs.Warnf("recorder: buckets must be >= 2 (got %d)", buckets)
	}
	f, err := stats.NewFreq(buckets)
	if err != nil {
		return nil, err
	}
	return &DrawRecorder{
		Name:    name,
		buckets: buckets,
		moments: &stats.Moments{},
		freq:    f,
	}, nil
}

// Record 紀錄一筆 [0,1) 的 draw。
// 超出範圍的值會進動差但在分布檢定中列為離群。
func (r *DrawRecorder) Record(x float64) {
	r.moments.Add(x)
	r.freq.Observe(int(x * float64(r.buckets)))
}

// MergeDrawRecorder 把多個 worker 的紀錄合併成一份（baseline 取第一個）。
func MergeDrawRecorder(rs []*DrawRecorder) (*DrawRecorder, error) {
	if len(rs) == 0 {
		return nil, errs.NewWarn("recorder: nothing to merge")
	}
	r0 := rs[0]
	out, err := NewDrawRecorder(r0.Name, r0.buckets)
	if err != nil {
		return nil, err
	}
	for _, v := range rs {
		if v.Name != r0.Name {
			return nil, errs.NewFatal("merge draw record err : different name")
		}
		if v.buckets != r0.buckets {
			return nil, errs.NewFatal("merge draw record err : different buckets")
		}
		out.moments.Merge(v.moments)
		if err := out.freq.Merge(v.freq); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Done 結算：組出報告並附上均勻性卡方檢定。
// 樣本太少（桶期望 < 5）時檢定以 error 回報，報告仍可輸出動差。
func (r *DrawRecorder) Done() (*stats.GenReport, error) {
	gof, err := stats.ChiSquareUniform(r.freq.Counts())
	if err != nil {
		return stats.BuildReport(r.Name, r.moments, nil), err
	}
	return stats.BuildReport(r.Name, r.moments, gof), nil
}
