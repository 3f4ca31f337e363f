package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coinscout/coinscout/internal/analyze"
	"github.com/coinscout/coinscout/internal/config"
	"github.com/coinscout/coinscout/internal/domain"
	"github.com/coinscout/coinscout/internal/ratelimit"
	"github.com/coinscout/coinscout/internal/scan"
	"github.com/coinscout/coinscout/internal/sources"
	"github.com/coinscout/coinscout/internal/telemetry"
	"github.com/coinscout/coinscout/internal/universe"
)

func scanCmd() *cobra.Command {
	var (
		tf     string
		minVol float64
		noLev  bool
		capMin float64
		capMax float64
		debug  bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the symbol universe for high-potential candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			filters, err := domain.Filters{
				Timeframe:        tf,
				MinVolUSD:        minVol,
				ExcludeLeveraged: noLev,
				CapRange:         domain.CapRange{Min: capMin, Max: capMax},
			}.Normalize()
			if err != nil {
				return err
			}

			scanner := buildScanner(cfg)
			result, err := scanner.Scan(cmd.Context(), filters, debug)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}
	cmd.Flags().StringVar(&tf, "tf", domain.DefaultTimeframe, "timeframe: 1h|4h|1d")
	cmd.Flags().Float64Var(&minVol, "min-vol", 0, "minimum 24h quote volume in USD")
	cmd.Flags().BoolVar(&noLev, "exclude-leveraged", true, "exclude leveraged products")
	cmd.Flags().Float64Var(&capMin, "cap-min", 0, "minimum market cap in USD (0 = unbounded)")
	cmd.Flags().Float64Var(&capMax, "cap-max", 0, "maximum market cap in USD (0 = unbounded)")
	cmd.Flags().BoolVar(&debug, "debug", false, "include stage counts and example exclusions")
	return cmd
}

func buildScanner(cfg config.Config) *scan.Scanner {
	exchange := sources.NewExchangeSource(
		sources.NewBinanceClient(cfg.Exchange.BaseURL, cfg.Exchange.Timeout))
	caps := sources.NewMarketCapSource(
		sources.NewCoinGeckoClient(cfg.MarketCap.BaseURL, cfg.MarketCap.Timeout))
	sentiment := sources.NewSentimentSource(
		sources.NewCryptoPanicClient(cfg.Sentiment.BaseURL, config.SentimentToken(), cfg.Sentiment.Timeout),
		ratelimit.NewGate(sources.SentimentMinInterval))

	analyzer := analyze.New(exchange, caps, sentiment)
	pipeline := universe.NewPipeline(cfg.QuoteAsset)
	metrics := telemetry.NewMetrics(nil)
	return scan.New(exchange, analyzer, pipeline, metrics)
}

func printResult(result domain.ScanResult) {
	if result.DataStale {
		log.Warn().Msg("result contains stale or degraded data")
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSYMBOL\tSCORE\tCONF\tBUCKET\tPRICE\t24H%\tRSI\tNEWS")
	for i, coin := range result.Top {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%s\t%s\t%.6g\t%+.2f\t%.1f\t%+d\n",
			i+1, coin.Symbol, coin.Score, coin.Confidence, coin.Bucket,
			coin.Price, coin.ChangePct24h, coin.RSI, coin.SentimentNet)
	}
	w.Flush()

	if result.Debug != nil {
		log.Info().
			Str("scan_id", result.Debug.ScanID).
			Dur("duration", result.Debug.Duration).
			Interface("stages", result.Debug.StageCounts).
			Int("excluded_examples", len(result.Debug.Excluded)).
			Msg("scan debug")
	}
}
