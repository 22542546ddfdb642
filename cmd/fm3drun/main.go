package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"fm3drun/internal/config"
	"fm3drun/internal/distributor"
	"fm3drun/internal/store"

	"github.com/google/uuid"
)

func main() {
	var cfg config.Config
	flag.StringVar(&cfg.BinDir, "bin", os.Getenv("FMTOMO_BIN"), "directory containing the fm3d and frechgen binaries")
	flag.StringVar(&cfg.InputDir, "dir", ".", "directory containing the fmtomo input files")
	flag.StringVar(&cfg.ScratchDir, "scratch", ".tmp", "scratch directory name for per-chunk working dirs")
	flag.IntVar(&cfg.DefaultCores, "default-cores", config.DefaultCores, "core count used when the positional argument is omitted")
	flag.BoolVar(&cfg.KeepScratch, "keep", false, "keep per-chunk working directories after the merge")
	flag.StringVar(&cfg.DBPath, "db", "fm3drun.db", "run tracking database path (empty disables tracking)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [n_cores]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cores := cfg.DefaultCores
	if arg := flag.Arg(0); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			fmt.Fprintf(os.Stderr, "invalid core count %q: want a positive integer\n", arg)
			flag.Usage()
			os.Exit(2)
		}
		cores = n
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if cfg.DBPath != "" {
		if err := store.InitDB(cfg.DBPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to open tracking database: %v\n", err)
			os.Exit(1)
		}
	}

	runID := uuid.New().String()
	if err := store.SaveRun(runID, cfg.InputDir, cores); err != nil {
		fmt.Fprintf(os.Stderr, "failed to record run: %v\n", err)
		os.Exit(1)
	}

	if err := distributor.Run(context.Background(), runID, cfg, cores); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Run %s failed: %v\n", runID, err)
		os.Exit(1)
	}
}
