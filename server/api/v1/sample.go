package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/randcore"
	"github.com/zintix-labs/randcore/errs"
	"github.com/zintix-labs/randcore/runcfg"
	"github.com/zintix-labs/randcore/sampler"
	"github.com/zintix-labs/randcore/server/httperr"
	"github.com/zintix-labs/randcore/server/svrcfg"
	"github.com/zintix-labs/randcore/stats"
)

type SampleHandler struct {
	cfg *svrcfg.SvrCfg
}

func NewSampleHandler(sCfg *svrcfg.SvrCfg) (*SampleHandler, error) {
	if sCfg == nil {
		return nil, errs.NewWarn("svrcfg is nil")
	}
	return &SampleHandler{cfg: sCfg}, nil
}

// Sample 依權重建立別名表並取樣 n 次，回傳各索引命中數與適合度檢定。
func (sh *SampleHandler) Sample(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type SampleRequestBody struct {
		Generator string    `json:"generator"`
		Weights   []float64 `json:"weights"`
		N         int       `json:"n"`
		Seed      *int64    `json:"seed,omitempty"`
	}
	// 內部結構 不影響外部 也不被外部使用
	type SampleResponse struct {
		Seed   int64          `json:"seed"`
		Counts []int64        `json:"counts"`
		Gof    *stats.GofStat `json:"gof,omitempty"`
	}
	// ---
	if q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req := new(SampleRequestBody)
	if err := json.NewDecoder(q.Body).Decode(req); err != nil {
		httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
		return
	}
	// 業務檢驗
	if req.N < 1 || req.N > sh.cfg.MaxRounds {
		httperr.Errs(w, errs.Warnf("n must be between 1 to %d", sh.cfg.MaxRounds))
		return
	}
	at, err := sampler.NewAliasTable(req.Weights)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	factory, err := runcfg.FactoryByName(req.Generator)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if req.Seed == nil {
		v := sh.cfg.Seeds.Next()
		req.Seed = &v
	}
	c := randcore.New(factory.New(*req.Seed))

	counts := make([]int64, at.Len())
	for i := 0; i < req.N; i++ {
		counts[at.Pick(c)]++
	}
	resp := SampleResponse{Seed: *req.Seed, Counts: counts}

	// 期望次數足夠時附帶卡方檢定，樣本太小就略過
	total := 0.0
	for _, wt := range req.Weights {
		total += wt
	}
	probs := make([]float64, len(req.Weights))
	for i, wt := range req.Weights {
		probs[i] = wt / total
	}
	if gof, err := stats.ChiSquare(counts, probs); err == nil {
		resp.Gof = gof
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
