//go:build analysis

// saberbench measures key generation, encapsulation and decapsulation across
// the parameter sets and batch widths, prints summary statistics, and renders
// an HTML report with the raw numbers alongside.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/montanaflynn/stats"

	"github.com/lattisec/saber"
	"github.com/lattisec/saber/utils"
)

var paramSets = map[string]saber.ParametersLiteral{
	"LightSaber": saber.ParamsLightSaber,
	"Saber":      saber.ParamsSaber,
	"FireSaber":  saber.ParamsFireSaber,
}

var singleOps = []string{"KeyGen", "Encapsulate", "Decapsulate"}

type opStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean_us"`
	Median float64 `json:"median_us"`
	Std    float64 `json:"std_us"`
	P95    float64 `json:"p95_us"`
}

func summarize(durations []time.Duration) opStats {

	values := make([]float64, len(durations))
	for i, d := range durations {
		values[i] = float64(d.Nanoseconds()) / 1e3
	}

	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	stddev, _ := stats.StandardDeviation(values)
	p95, _ := stats.Percentile(values, 95)

	return opStats{Count: len(values), Mean: mean, Median: median, Std: stddev, P95: p95}
}

type setReport struct {
	Single     map[string]opStats `json:"single"`
	Batched    map[string]opStats `json:"batched_per_instance"`
	FailureLog float64            `json:"failure_rate_log2,omitempty"`
}

func pickHasher(name string) (saber.Hasher, error) {
	switch name {
	case "sha3":
		return saber.SHA3Hasher{}, nil
	case "gost":
		return saber.GOSTHasher{}, nil
	case "blake3":
		return saber.Blake3Hasher{}, nil
	default:
		return nil, fmt.Errorf("unknown hash backend %q: sha3, gost or blake3", name)
	}
}

// benchSingle times runs repetitions of the three KEM operations.
func benchSingle(scheme *saber.Scheme, runs int) (map[string]opStats, error) {

	durations := map[string][]time.Duration{}

	pk, sk, err := scheme.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	for i := 0; i < runs; i++ {
		start := time.Now()
		if pk, sk, err = scheme.GenerateKeyPair(); err != nil {
			return nil, err
		}
		durations["KeyGen"] = append(durations["KeyGen"], time.Since(start))
	}

	var ct *saber.Ciphertext
	for i := 0; i < runs; i++ {
		start := time.Now()
		if ct, _, err = scheme.Encapsulate(pk); err != nil {
			return nil, err
		}
		durations["Encapsulate"] = append(durations["Encapsulate"], time.Since(start))
	}

	for i := 0; i < runs; i++ {
		start := time.Now()
		if _, err = scheme.Decapsulate(sk, ct); err != nil {
			return nil, err
		}
		durations["Decapsulate"] = append(durations["Decapsulate"], time.Since(start))
	}

	out := map[string]opStats{}
	for op, ds := range durations {
		out[op] = summarize(ds)
	}
	return out, nil
}

// benchBatched times the batched entry points at each width and reports
// per-instance costs, so the widths compare directly against each other and
// against the single path.
func benchBatched(params saber.Parameters, hasher saber.Hasher, runs, batch int) (map[string]opStats, error) {

	out := map[string]opStats{}

	for _, width := range []int{1, 2, 4} {

		scheme, err := saber.NewScheme(params, saber.WithHasher(hasher), saber.WithBatchWidth(width))
		if err != nil {
			return nil, err
		}

		pks, sks, err := scheme.GenerateKeyPairBatch(batch)
		if err != nil {
			return nil, err
		}

		var encaps, decaps []time.Duration
		for i := 0; i < runs; i++ {

			start := time.Now()
			cts, _, err := scheme.EncapsulateBatch(pks)
			if err != nil {
				return nil, err
			}
			encaps = append(encaps, time.Since(start)/time.Duration(batch))

			start = time.Now()
			if _, err := scheme.DecapsulateBatch(sks, cts); err != nil {
				return nil, err
			}
			decaps = append(decaps, time.Since(start)/time.Duration(batch))
		}

		out[fmt.Sprintf("Encapsulate/width=%d", width)] = summarize(encaps)
		out[fmt.Sprintf("Decapsulate/width=%d", width)] = summarize(decaps)
	}

	return out, nil
}

func toBarItems(vals []float64) []opts.BarData {
	out := make([]opts.BarData, len(vals))
	for i, v := range vals {
		out[i] = opts.BarData{Value: v}
	}
	return out
}

func newLatencyChart(title string, xLabels []string, series map[string][]float64) *charts.Bar {

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "mean per operation, microseconds"}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	bar.SetXAxis(xLabels)
	for _, name := range utils.GetSortedKeys(series) {
		bar.AddSeries(name, toBarItems(series[name]))
	}
	return bar
}

func saveJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func main() {
	runs := flag.Int("runs", 200, "measured repetitions per operation")
	batch := flag.Int("batch", 64, "instances per batched call")
	hashName := flag.String("hash", "sha3", "hash backend: sha3, gost or blake3")
	outDir := flag.String("out", "bench_reports", "output directory for reports")
	withRate := flag.Bool("rate", true, "also compute decryption failure rates")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	hasher, err := pickHasher(*hashName)
	if err != nil {
		log.Fatal(err)
	}

	report := map[string]*setReport{}

	for _, name := range utils.GetSortedKeys(paramSets) {

		params, err := saber.NewParametersFromLiteral(paramSets[name])
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}

		log.Printf("[saberbench] %s: single path (%d runs)", name, *runs)

		scheme, err := saber.NewScheme(params, saber.WithHasher(hasher))
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}

		single, err := benchSingle(scheme, *runs)
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}

		log.Printf("[saberbench] %s: batched paths (%d instances)", name, *batch)

		batched, err := benchBatched(params, hasher, *runs, *batch)
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}

		r := &setReport{Single: single, Batched: batched}

		if *withRate {
			r.FailureLog = params.DecryptionFailureRate()
			log.Printf("[saberbench] %s: failure rate 2^%.1f", name, r.FailureLog)
		}

		report[name] = r

		for _, op := range singleOps {
			s := single[op]
			fmt.Printf("%-10s %-12s mean %8.1f us  median %8.1f us  p95 %8.1f us\n",
				name, op, s.Mean, s.Median, s.P95)
		}
	}

	ts := time.Now().Format("20060102_150405")

	jsonPath := filepath.Join(*outDir, fmt.Sprintf("saberbench_%s.json", ts))
	if err := saveJSON(jsonPath, report); err != nil {
		log.Printf("warn: save report: %v", err)
	}

	page := components.NewPage()

	singleSeries := map[string][]float64{}
	for _, name := range utils.GetSortedKeys(report) {
		for _, op := range singleOps {
			singleSeries[name] = append(singleSeries[name], report[name].Single[op].Mean)
		}
	}
	page.AddCharts(newLatencyChart("Single-instance latency", singleOps, singleSeries))

	widthLabels := []string{"width=1", "width=2", "width=4"}
	for _, op := range []string{"Encapsulate", "Decapsulate"} {
		series := map[string][]float64{}
		for _, name := range utils.GetSortedKeys(report) {
			for _, w := range []int{1, 2, 4} {
				key := fmt.Sprintf("%s/width=%d", op, w)
				series[name] = append(series[name], report[name].Batched[key].Mean)
			}
		}
		page.AddCharts(newLatencyChart("Batched "+op+" per instance", widthLabels, series))
	}

	htmlPath := filepath.Join(*outDir, fmt.Sprintf("saberbench_%s.html", ts))
	f, err := os.Create(htmlPath)
	if err != nil {
		log.Fatalf("create html: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("render html: %v", err)
	}

	fmt.Println("Report page:", htmlPath)
	fmt.Println("Report JSON:", jsonPath)
}
