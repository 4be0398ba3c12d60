package v1

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zintix-labs/randcore"
	"github.com/zintix-labs/randcore/errs"
	"github.com/zintix-labs/randcore/runcfg"
	"github.com/zintix-labs/randcore/server/httperr"
	"github.com/zintix-labs/randcore/server/svrcfg"
)

type DrawHandler struct {
	cfg *svrcfg.SvrCfg
}

func NewDrawHandler(sCfg *svrcfg.SvrCfg) (*DrawHandler, error) {
	if sCfg == nil {
		return nil, errs.NewWarn("svrcfg is nil")
	}
	return &DrawHandler{cfg: sCfg}, nil
}

func (dh *DrawHandler) Draw(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type DrawRequestBody struct {
		Generator string `json:"generator"`
		Kind      string `json:"kind"` // int / float / normal / exp
		N         int    `json:"n"`
		Low       int64  `json:"low"`
		High      int64  `json:"high"`
		Seed      *int64 `json:"seed,omitempty"`
	}
	// 內部結構 不影響外部 也不被外部使用
	type DrawResponse struct {
		Seed   int64     `json:"seed"`
		Ints   []int64   `json:"ints,omitempty"`
		Floats []float64 `json:"floats,omitempty"`
	}
	// ---
	req := new(DrawRequestBody)
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if q.Method == http.MethodGet {
		req.Generator = q.URL.Query().Get("generator")
		req.Kind = q.URL.Query().Get("kind")

		// n
		if s := q.URL.Query().Get("n"); s != "" {
			u, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("n must be integer"))
				return
			}
			req.N = int(u)
		} else {
			httperr.Errs(w, errs.NewWarn("n is required"))
			return
		}

		// low / high
		if s := q.URL.Query().Get("low"); s != "" {
			u, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("low must be int64"))
				return
			}
			req.Low = u
		}
		if s := q.URL.Query().Get("high"); s != "" {
			u, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("high must be int64"))
				return
			}
			req.High = u
		}

		// seed
		if s := q.URL.Query().Get("seed"); s != "" {
			u, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("seed must be int64"))
				return
			}
			v := u
			req.Seed = &v
		}
	}
	if q.Method == http.MethodPost {
		if err := json.NewDecoder(q.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
	}
	// 業務檢驗
	if req.N < 1 || req.N > dh.cfg.MaxDraws {
		httperr.Errs(w, errs.Warnf("n must be between 1 to %d", dh.cfg.MaxDraws))
		return
	}
	factory, err := runcfg.FactoryByName(req.Generator)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if req.Seed == nil {
		v := dh.cfg.Seeds.Next()
		req.Seed = &v
	}
	c := randcore.New(factory.New(*req.Seed))

	resp := DrawResponse{Seed: *req.Seed}
	switch req.Kind {
	case "", "int":
		resp.Ints = make([]int64, req.N)
		if req.High > req.Low {
			rg, err := randcore.NewRange(req.Low, req.High)
			if err != nil {
				httperr.Errs(w, err)
				return
			}
			for i := range resp.Ints {
				resp.Ints[i] = rg.Draw(c)
			}
		} else if req.Low != 0 || req.High != 0 {
			httperr.Errs(w, errs.NewWarn("high must > low"))
			return
		} else {
			for i := range resp.Ints {
				resp.Ints[i] = int64(c.Uint64())
			}
		}
	case "float":
		resp.Floats = make([]float64, req.N)
		for i := range resp.Floats {
			resp.Floats[i] = c.Float64()
		}
	case "normal":
		resp.Floats = make([]float64, req.N)
		for i := range resp.Floats {
			resp.Floats[i] = c.NormFloat64()
		}
	case "exp":
		resp.Floats = make([]float64, req.N)
		for i := range resp.Floats {
			resp.Floats[i] = c.ExpFloat64()
		}
	default:
		httperr.Errs(w, errs.Warnf("unknown kind %q", req.Kind))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
