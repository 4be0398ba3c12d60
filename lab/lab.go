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

package lab

import (
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/randcore"
	"github.com/zintix-labs/randcore/errs"
	"github.com/zintix-labs/randcore/recorder"
	"github.com/zintix-labs/randcore/runcfg"
	"github.com/zintix-labs/randcore/stats"
)

const capPrepare int = 100

// Runner 依 RunProfile 建立多個生成器並平行紀錄取樣統計。
type Runner struct {
	Name      string                   // 報表名稱
	prof      *runcfg.RunProfile       // 方便重用建立 recorder
	factory   randcore.PRNGFactory     // 亂數生成器工廠
	initSeed  int64                    // 初始下的種子
	seedmaker *randcore.SeedMaker      // 種子生成器
	gBuf      []*randcore.Core         // 併發執行生成器實例
	rBuf      []*recorder.DrawRecorder // 併發取樣紀錄員
}

// New 建立 Runner；profile 未指定種子時由系統熵源決定。
func New(prof *runcfg.RunProfile) (*Runner, error) {
	if err := prof.Valid(); err != nil {
		return nil, err
	}
	seed := prof.Seed
	if seed == 0 {
		s, err := randcore.NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	factory, err := prof.Factory()
	if err != nil {
		return nil, err
	}
	r := &Runner{
		Name:      prof.Name,
		prof:      prof,
		factory:   factory,
		initSeed:  seed,
		seedmaker: randcore.NewSeedMaker(seed),
		gBuf:      make([]*randcore.Core, 1, capPrepare),
		rBuf:      make([]*recorder.DrawRecorder, 0, capPrepare),
	}
	r.gBuf[0] = randcore.New(factory.New(seed))
	return r, nil
}

// Seed 回傳本次執行的初始種子，便於重現。
func (r *Runner) Seed() int64 { return r.initSeed }

// Run 單線執行：以一個生成器連續取樣指定 round 並回傳統計結果與用時。
func (r *Runner) Run(round int, showpb bool) (*stats.GenReport, time.Duration, error) {
	defer r.reset()
	if round < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	if len(r.rBuf) == 0 {
		rec, err := recorder.NewDrawRecorder(r.Name, r.prof.Buckets)
		if err != nil {
			return nil, 0, err
		}
		r.rBuf = append(r.rBuf, rec)
	}
	rec := r.rBuf[0]
	g := r.gBuf[0]

	bar := pb.StartNew(round)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < round; i++ {
		rec.Record(g.Float64())
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()

	report, err := rec.Done()
	if err != nil {
		return report, used, err
	}
	return report, used, nil
}

// RunMP 平行執行多個生成器，總計 rounds*mp 次取樣，合併統計結果後回傳統計結果與用時。
func (r *Runner) RunMP(rounds int, mp int, showpb bool) (*stats.GenReport, time.Duration, error) {
	defer r.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	for len(r.gBuf) < mp {
		r.gBuf = append(r.gBuf, randcore.New(r.factory.New(r.seedmaker.Next())))
	}
	for len(r.rBuf) < mp {
		rec, err := recorder.NewDrawRecorder(r.Name, r.prof.Buckets)
		if err != nil {
			return nil, 0, err
		}
		r.rBuf = append(r.rBuf, rec)
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(rounds * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			g := r.gBuf[i]
			rec := r.rBuf[i]
			for n := 0; n < rounds; n++ {
				rec.Record(g.Float64())
				bar.Increment()
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	merged, err := recorder.MergeDrawRecorder(r.rBuf)
	if err != nil {
		return nil, 0, err
	}
	report, err := merged.Done()
	if err != nil {
		return report, used, err
	}
	return report, used, nil
}

// Trace 以初始種子重建生成器，擷取可重放的取樣軌跡；未設定 TracePath 時不落地。
func (r *Runner) Trace() (*recorder.Trace, error) {
	if r.prof.TraceLen < 1 {
		return nil, errs.NewWarn("trace length must > 0")
	}
	g := r.factory.New(r.initSeed)
	t, err := recorder.CaptureTrace(r.Name, g, r.prof.TraceLen)
	if err != nil {
		return nil, err
	}
	if r.prof.TracePath != "" {
		if err := recorder.SaveTrace(r.prof.TracePath, t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// reset 丟棄上一輪的紀錄員，生成器序列保留續用。
func (r *Runner) reset() {
	r.rBuf = r.rBuf[:0]
}
