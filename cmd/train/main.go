// mlp-train: trains a sigmoid multilayer perceptron on an MNIST-style CSV
//
// Usage:
//
//	mlp-train -train=mnist_train.csv -test=mnist_test.csv -epochs=4 -lr=0.001
//	mlp-train -config=net.cfg -kernel=parallel -train=mnist_train.csv
//	mlp-train -train=mnist_train.csv 784 2 64,32 10
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"mlp/dataset"
	"mlp/kernel"
	"mlp/metrics"
	"mlp/nn"
	"mlp/train"
	"mlp/utils"
)

var (
	configFile   = flag.String("config", "", "Network shape config file (key = value)")
	arch         = flag.String("arch", "", "Full layer list, e.g. \"784 128 10\"")
	kernelName   = flag.String("kernel", "sequential", "Inner product: sequential, parallel, vector")
	trainFile    = flag.String("train", "", "Training CSV (label first)")
	testFile     = flag.String("test", "", "Test CSV (label first)")
	epochs       = flag.Int("epochs", train.DefaultConfig().Epochs, "Number of training epochs")
	learningRate = flag.Float64("lr", train.DefaultConfig().LearningRate, "Learning rate")
	batchSize    = flag.Int("batch", train.DefaultConfig().BatchSize, "Mini-batch size")
	patience     = flag.Int("patience", train.DefaultConfig().Patience, "Early stopping patience")
	seed         = flag.Uint64("seed", 0, "Weight initialisation seed")
	bias         = flag.Bool("bias", false, "Append a constant 1.0 input channel")
	standardize  = flag.Bool("standardize", false, "Shift and scale features by the training set moments")
	rows         = flag.Int("rows", 0, "Maximum training rows (0 = all)")
	testRows     = flag.Int("test-rows", 0, "Maximum test rows (0 = all)")
	samples      = flag.Int("samples", 100, "Number of synthetic samples when no -train file is given")
	logLevel     = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	metricsAddr  = flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :2112")
	linger       = flag.Duration("metrics-linger", 0, "Keep serving metrics this long after the run ends")
	verbose      = flag.Bool("verbose", true, "Print timing statistics")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unknown log level %q\n", *logLevel)
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(level)
	runID := uuid.NewString()
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Str("run", runID).Logger()

	if err := run(runID); err != nil {
		log.Error().Err(err).Msg("training failed")
		os.Exit(1)
	}
}

func run(runID string) error {
	totalStart := time.Now()
	stats := &utils.TimingStats{}

	shape, err := loadShape()
	if err != nil {
		return err
	}
	k, err := kernel.ByName(*kernelName)
	if err != nil {
		return err
	}
	cfg := train.Config{
		Epochs:       *epochs,
		LearningRate: *learningRate,
		BatchSize:    *batchSize,
		Patience:     *patience,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	inputSize := shape.InputSize
	if *bias {
		inputSize++
	}

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                        MLP Trainer                           ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nConfiguration:\n")
	fmt.Printf("  Run:           %s\n", runID)
	fmt.Printf("  Features:      %d (bias channel: %v)\n", shape.InputSize, *bias)
	fmt.Printf("  Hidden layers: %v\n", shape.HiddenSizes)
	fmt.Printf("  Outputs:       %d\n", shape.OutputSize)
	fmt.Printf("  Kernel:        %s (cpu: %s)\n", k.Name(), kernel.Features())
	fmt.Printf("  Epochs:        %d\n", cfg.Epochs)
	fmt.Printf("  Learning Rate: %g\n", cfg.LearningRate)
	fmt.Printf("  Batch Size:    %d\n", cfg.BatchSize)
	fmt.Printf("  Patience:      %d\n", cfg.Patience)
	fmt.Println()

	start := time.Now()
	opts := dataset.Options{Features: shape.InputSize, Classes: shape.OutputSize, Bias: *bias}
	trainSet, testSet, err := loadData(opts)
	if err != nil {
		return err
	}
	if *standardize {
		skip := 0
		if *bias {
			skip = 1
		}
		mean, std := dataset.Moments(trainSet)
		dataset.Standardize(trainSet, mean, std, skip)
		dataset.Standardize(testSet, mean, std, skip)
	}
	stats.DataLoadingTime = time.Since(start)
	log.Info().Int("train", len(trainSet)).Int("test", len(testSet)).Dur("elapsed", stats.DataLoadingTime).Msg("loaded data")

	start = time.Now()
	net, err := nn.New(inputSize, shape.HiddenSizes, shape.OutputSize, nn.WithKernel(k), nn.WithSeed(*seed))
	if err != nil {
		return err
	}
	defer net.Release()
	stats.ModelInitTime = time.Since(start)
	fmt.Printf("Network: %s\n\n", net)

	trainOpts := []train.Option{train.WithLogger(log.Logger)}
	if *metricsAddr != "" {
		obs, srv, err := serveMetrics(*metricsAddr, runID)
		if err != nil {
			return err
		}
		defer stopMetrics(srv, *linger)
		trainOpts = append(trainOpts, train.WithObserver(obs))
	}

	fmt.Println("Starting training...")
	res, err := train.Train(net, cfg, trainSet, trainOpts...)
	if err != nil {
		return err
	}
	for _, e := range res.Epochs {
		fmt.Printf("Epoch %d/%d | Loss: %.6f | Correct: %d/%d | Accuracy: %.2f%% | Time: %.2fs\n",
			e.Epoch+1, cfg.Epochs, e.Loss, e.Correct, e.Total, e.Accuracy, e.Elapsed.Seconds())
	}
	if res.Stopped {
		fmt.Printf("Early stopping after epoch %d (best %d correct)\n", res.StoppedAt+1, res.Best)
	}
	stats.Add(res.Timing)

	if len(testSet) > 0 {
		ev, err := train.Evaluate(net, testSet, trainOpts...)
		if err != nil {
			return err
		}
		stats.EvaluationTime = ev.Elapsed
		fmt.Printf("\nTest accuracy: %.2f%% (%d/%d)\n", ev.Accuracy, ev.Correct, ev.Total)
	}

	stats.TotalTime = time.Since(totalStart)
	fmt.Printf("\nTraining complete! Total time: %.2fs\n", stats.TotalTime.Seconds())
	utils.PrintTimingStats(stats, len(res.Epochs)*len(trainSet))
	return nil
}

// loadShape resolves the network shape from, in order, -config, the
// positional form, -arch and the defaults.
func loadShape() (utils.NetConfig, error) {
	switch {
	case *configFile != "":
		return utils.LoadConfigFile(*configFile)
	case flag.NArg() > 0:
		return utils.ParseArgs(flag.Args())
	case *arch != "":
		return utils.FromArchitecture(*arch)
	default:
		return utils.DefaultNetConfig(), nil
	}
}

func loadData(opts dataset.Options) (trainSet, testSet []train.Sample, err error) {
	if *trainFile == "" {
		log.Warn().Int("samples", *samples).Msg("no -train file given, using synthetic data")
		return generateData(opts, *samples), nil, nil
	}

	trainOpts := opts
	trainOpts.MaxRows = *rows
	trainSet, err = dataset.LoadFile(*trainFile, trainOpts)
	if err != nil {
		return nil, nil, err
	}
	if len(trainSet) == 0 {
		return nil, nil, errors.New("training file contains no samples")
	}

	if *testFile != "" {
		testOpts := opts
		testOpts.MaxRows = *testRows
		testSet, err = dataset.LoadFile(*testFile, testOpts)
		if err != nil {
			return nil, nil, err
		}
	}
	return trainSet, testSet, nil
}

func generateData(opts dataset.Options, n int) []train.Sample {
	rng := rand.New(rand.NewSource(*seed))
	out := make([]train.Sample, n)
	for i := range out {
		input := make([]float64, opts.InputWidth())
		for j := 0; j < opts.Features; j++ {
			input[j] = rng.Float64()
		}
		if opts.Bias {
			input[opts.Features] = 1.0
		}
		out[i] = train.Sample{
			Input: input,
			Label: train.OneHot(rng.Intn(opts.Classes), opts.Classes),
		}
	}
	return out
}

func serveMetrics(addr, runID string) (*metrics.Observer, *http.Server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	obs, err := metrics.NewObserver(reg, runID)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
	return obs, srv, nil
}

// stopMetrics keeps the final values scrapeable for linger, then shuts the
// server down.
func stopMetrics(srv *http.Server, linger time.Duration) {
	if linger > 0 {
		log.Info().Dur("linger", linger).Msg("run finished, still serving metrics")
		time.Sleep(linger)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("metrics server shutdown")
	}
}
