// Command tiltcalc prints the optimal fixed tilt and the monthly breakdown for
// one site, from the irradiance archive or a spreadsheet of monthly values.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"Helio/internal/calc/premium/importer"
	"Helio/internal/calc/solar"
	"Helio/internal/calc/tilt"
	"Helio/internal/config"
	"Helio/internal/irradiance"
	"Helio/internal/log"

	"github.com/spf13/pflag"
)

type options struct {
	lat, lon   float64
	day        int
	configPath string
	xlsx       string
	megajoules bool
	ephemeris  bool
	debug      bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet("tiltcalc", pflag.ContinueOnError)
	fs.Float64Var(&o.lat, "lat", 0, "site latitude in degrees, north positive")
	fs.Float64Var(&o.lon, "lon", 0, "site longitude in degrees, east positive")
	fs.IntVar(&o.day, "day", 15, "representative day of each month")
	fs.StringVarP(&o.configPath, "config", "c", "", "path to YAML config")
	fs.StringVar(&o.xlsx, "xlsx", "", "read monthly horizontal irradiation from this workbook instead of the archive")
	fs.BoolVar(&o.megajoules, "mj", false, "workbook values are MJ/m² per day")
	fs.BoolVar(&o.ephemeris, "ephemeris", false, "show the declination fit error against the ephemeris")
	fs.BoolVarP(&o.debug, "debug", "d", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if !fs.Changed("lat") || !fs.Changed("lon") {
		return options{}, fmt.Errorf("--lat and --lon are required")
	}
	return o, nil
}

func source(o options, cfg *config.Config) (irradiance.Source, error) {
	if o.xlsx == "" {
		return irradiance.NewArchive(irradiance.ArchiveOptions{
			BaseURL:           cfg.Irradiance.BaseURL,
			Timeout:           cfg.Irradiance.Timeout,
			RequestsPerSecond: cfg.Irradiance.RequestsPerSecond,
			Retry:             irradiance.RetryPolicy{MaxAttempts: cfg.Irradiance.MaxAttempts, BaseDelay: cfg.Irradiance.BaseDelay},
			CacheTTL:          cfg.Irradiance.CacheTTL,
		}), nil
	}
	f, err := os.Open(o.xlsx)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	monthly, err := importer.ParseMonthly(f, o.megajoules)
	if err != nil {
		return nil, err
	}
	return irradiance.Static{Monthly: monthly}, nil
}

func printResult(w io.Writer, res tilt.Result, o options, year int) {
	if !res.Found() {
		fmt.Fprintf(w, "no optimum: only %d months of usable irradiance\n", res.ValidMonths)
		return
	}
	fmt.Fprintf(w, "optimal tilt      %d°\n", *res.OptimalTiltDeg)
	fmt.Fprintf(w, "annual yield      %.1f kWh/m²\n", res.AnnualYieldMWh*1000)
	fmt.Fprintf(w, "min peak sun hrs  %.2f\n\n", res.MinMonthlyIrradiance)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := "month\tday\tH0\tH\tKt\tHd\tRb\tHi\t"
	if o.ephemeris {
		header += "Δδ°\t"
	}
	fmt.Fprintln(tw, header)
	for _, m := range res.Monthly {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.3f\t%.2f\t%.3f\t%.2f\t",
			m.Name, m.DayOfYear, m.Astro.Extraterrestrial, m.Horizontal.Global, m.Horizontal.ClearnessIndex,
			m.Horizontal.Diffuse, m.Tilted.BeamFactor, m.Tilted.Global)
		if o.ephemeris {
			fmt.Fprintf(tw, "%+.3f\t", solar.DeclinationError(year, m.DayOfYear))
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := log.Init(o.debug || cfg.Log.Debug, log.FileOptions{}); err != nil {
		return err
	}
	defer log.Sync()

	src, err := source(o, cfg)
	if err != nil {
		return err
	}
	opt := tilt.New(src, tilt.Options{
		MinValidMonths: cfg.Optimizer.MinValidMonths,
		StepDeg:        cfg.Optimizer.StepDeg,
		MaxDeg:         tilt.Int(cfg.Optimizer.MaxDeg),
		Albedo:         tilt.Float(cfg.Optimizer.Albedo),
		Concurrency:    cfg.Optimizer.Concurrency,
		ReferenceYear:  cfg.Irradiance.ReferenceYear,
	})

	start := time.Now()
	res, err := opt.Optimize(ctx, tilt.Input{Latitude: o.lat, Longitude: o.lon, Day: o.day})
	if err != nil {
		return err
	}
	log.Debugw("optimization finished", "elapsed", time.Since(start))
	printResult(stdout, res, o, cfg.Irradiance.ReferenceYear)
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "tiltcalc:", err)
		os.Exit(1)
	}
}
