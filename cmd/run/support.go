package main

import (
	"flag"
	"log"
	"os"

	"github.com/zintix-labs/randcore/lab"
	"github.com/zintix-labs/randcore/runcfg"
	"github.com/zintix-labs/randcore/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	cfgPath   string
	generator string
	worker    int
	rounds    int
	buckets   int
	seed      int64
	traceLen  int
	tracePath string
	out       string
	pprofmode string
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.StringVar(&cfg.cfgPath, "c", "", "path to run profile yaml (flags below are ignored when set)")
	flag.StringVar(&cfg.generator, "gen", "pcg64", "generator: pcg64, pcg32, chacha8, chacha12, chacha20")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.rounds, "rounds", 10000000, "draws per worker")
	flag.IntVar(&cfg.buckets, "buckets", 100, "histogram buckets for the uniform check")
	flag.Int64Var(&cfg.seed, "seed", 0, "int64 seed, 0 draws one from the system entropy")
	flag.IntVar(&cfg.traceLen, "tracelen", 0, "draws to capture into the replay trace")
	flag.StringVar(&cfg.tracePath, "trace", "", "path to write the replay trace, empty disables")
	flag.StringVar(&cfg.out, "o", "", "report output: '', json, yaml")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()
}

// 這裡解析並分支要執行的模擬
func executeRunner() {
	prof, err := buildProfile()
	if err != nil {
		log.Fatal(err)
	}
	runner, err := lab.New(prof)
	if err != nil {
		log.Fatal(err)
	}
	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)

	if prof.Workers == 1 { // 單線程
		p.Printf("%s[GEN:%s] [SEED:%d] [DRAWS:%d]%s\n", green, prof.Generator, runner.Seed(), prof.Rounds, reset)
		st, used, err := runner.Run(prof.Rounds, true)
		if err != nil {
			log.Fatal(err)
		}
		st.StdOut(used)
		writeReport(st)
	} else {
		p.Printf("%s[WORKERS:%d] [GEN:%s] [SEED:%d] [DRAWS:%d]%s\n", green, prof.Workers, prof.Generator, runner.Seed(), prof.Workers*prof.Rounds, reset)
		st, used, err := runner.RunMP(prof.Rounds, prof.Workers, true) // 併發
		if err != nil {
			log.Fatal(err)
		}
		st.StdOut(used)
		writeReport(st)
	}

	if prof.TracePath != "" {
		if _, err := runner.Trace(); err != nil {
			log.Fatal(err)
		}
		p.Printf("trace written to %s (%d draws)\n", prof.TracePath, prof.TraceLen)
	}
}

// buildProfile 以 -c 指定的設定檔為準，否則由 flag 組出 profile。
func buildProfile() (*runcfg.RunProfile, error) {
	if cfg.cfgPath != "" {
		return runcfg.Load(cfg.cfgPath)
	}
	prof := &runcfg.RunProfile{
		Generator: cfg.generator,
		Seed:      cfg.seed,
		Rounds:    cfg.rounds,
		Workers:   cfg.worker,
		Buckets:   cfg.buckets,
		TracePath: cfg.tracePath,
		TraceLen:  cfg.traceLen,
	}
	if err := prof.Valid(); err != nil {
		return nil, err
	}
	return prof, nil
}

func writeReport(st *stats.GenReport) {
	switch cfg.out {
	case "":
	case "json":
		if err := st.WriteWith(os.Stdout, &stats.JsonGenReportRender{}); err != nil {
			log.Fatal(err)
		}
	case "yaml":
		if err := st.WriteWith(os.Stdout, &stats.YAMLGenReportRender{}); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatal("value err : output must be '', json or yaml")
	}
}
