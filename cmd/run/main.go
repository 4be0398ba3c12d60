package main

import "github.com/zintix-labs/randcore/perf"

// makefile runner
func main() {
	bindVar()
	perf.RunPProf(executeRunner, cfg.pprofmode)
}
