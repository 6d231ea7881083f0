package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"EmaPull/internal/domain/models"
	domrepo "EmaPull/internal/domain/repository"
	internalrepo "EmaPull/internal/repository"
	"EmaPull/internal/usecase"
	"EmaPull/pkg/cache"
	"EmaPull/pkg/config"
	"EmaPull/pkg/util"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	symbol := flag.String("symbol", "", "show a single symbol instead of all")
	since := flag.String("since", "", "only show snapshots updated after this time (RFC3339 or unix seconds)")
	clear := flag.Bool("clear", false, "delete all cached snapshots and exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	redis, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		log.Fatalf("redis connect failed: %v", err)
	}
	defer redis.Close()

	store := internalrepo.NewSnapshotStore(redis)
	reader := usecase.NewSnapshotReader(store, cfg.Pipeline.Symbols)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if *clear {
		n, err := store.Clear(ctx)
		if err != nil {
			log.Fatalf("clear failed: %v", err)
		}
		fmt.Printf("cleared %d keys\n", n)
		return
	}

	var cutoff time.Time
	if *since != "" {
		t, ok := util.ParseTime(*since)
		if !ok {
			log.Fatalf("invalid -since value %q", *since)
		}
		cutoff = t
	}

	if *symbol != "" {
		showOne(ctx, reader, *symbol)
		return
	}
	showAll(ctx, reader, cutoff)
}

func showOne(ctx context.Context, reader *usecase.SnapshotReader, symbol string) {
	snap, err := reader.GetSnapshot(ctx, usecase.GetSnapshotParams{Symbol: models.PairSymbol(symbol)})
	if errors.Is(err, domrepo.ErrSnapshotNotFound) {
		fmt.Printf("no snapshot for %s\n", symbol)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("read failed: %v", err)
	}

	ttl, _ := reader.SnapshotTTL(ctx, snap.Symbol)
	printSnapshot(snap, ttl)
}

func showAll(ctx context.Context, reader *usecase.SnapshotReader, cutoff time.Time) {
	res, err := reader.ListSnapshots(ctx)
	if err != nil {
		log.Fatalf("list failed: %v", err)
	}
	if res.Count == 0 {
		fmt.Println("no snapshots cached")
		return
	}

	symbols := make([]string, 0, res.Count)
	for s := range res.Snapshots {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	shown := 0
	for _, s := range symbols {
		snap := res.Snapshots[s]
		if !cutoff.IsZero() {
			updated := util.ParseTimeDefault(snap.Timestamp, time.Time{})
			if updated.Before(cutoff) {
				continue
			}
		}
		ttl, _ := reader.SnapshotTTL(ctx, s)
		printSnapshot(snap, ttl)
		fmt.Println()
		shown++
	}
	if shown == 0 {
		fmt.Println("no snapshots match the filter")
	}
}

func printSnapshot(snap *models.EmaSnapshot, ttl time.Duration) {
	source := "live"
	if snap.Synthetic {
		source = "synthetic"
	}
	fmt.Printf("%s  (%s, %s)\n", snap.Symbol, snap.Timeframe, source)
	fmt.Printf("  last price : %.4f\n", snap.LastPrice)
	fmt.Printf("  updated    : %s\n", snap.Timestamp)
	if ttl > 0 {
		fmt.Printf("  expires in : %s\n", ttl.Round(time.Second))
	}

	periods := make([]int, 0, len(snap.Emas))
	for p := range snap.Emas {
		periods = append(periods, p)
	}
	sort.Ints(periods)

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  PERIOD\tVALUE\tTREND\tDIST%")
	for _, p := range periods {
		point := snap.Emas[p]
		fmt.Fprintf(w, "  %d\t%.4f\t%s\t%+.2f\n", p, point.Value, point.Trend, point.PriceDistancePct)
	}
	w.Flush()

	names := make([]string, 0, len(snap.Signals))
	for name, on := range snap.Signals {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) > 0 {
		fmt.Printf("  signals    : %v\n", names)
	}
}
