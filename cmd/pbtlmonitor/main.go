// Command pbtlmonitor checks a PBTL property against a recorded
// distributed-system trace.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pbtlmonitor/monitor"
	"pbtlmonitor/trace"
)

var (
	verbose            bool
	debug              bool
	validateOnly       bool
	stopOnVerdict      bool
	debugFinal         bool
	lenientCausality   bool
	allowInferredProcs bool
	configPath         string
	propertyFlag       string
	tracePathFlag      string
	formulaSizeLimit   int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pbtlmonitor",
	Short: "Check a PBTL property against a recorded distributed trace",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVarP(&propertyFlag, "property", "p", "", "PBTL formula source, e.g. \"EP(request) & !EP(bad)\"")
	rootCmd.Flags().StringVarP(&tracePathFlag, "trace", "t", "", "path to the CSV trace file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print a verdict line after every absorbed event")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug-level structured logging")
	rootCmd.Flags().BoolVar(&validateOnly, "validate-only", false, "parse the trace and formula, then exit without monitoring")
	rootCmd.Flags().BoolVar(&stopOnVerdict, "stop-on-verdict", false, "stop absorbing events once the verdict becomes terminal")
	rootCmd.Flags().BoolVar(&debugFinal, "debug-final", false, "on exit, print the state of every disjunct that never reached a verdict")
	rootCmd.Flags().BoolVar(&lenientCausality, "lenient-causality", false, "retain frontiers unready for an event instead of failing")
	rootCmd.Flags().BoolVar(&allowInferredProcs, "allow-inferred-processes", false, "infer the process set from the trace when no system_processes directive is present")
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration (overrides individual flags)")
	rootCmd.Flags().IntVar(&formulaSizeLimit, "formula-size-limit", 0, "override the DLNF transform's AST node-count guard")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	property := propertyFlag
	tracePath := tracePathFlag
	opts := baseOptions()

	if configPath != "" {
		cfg, err := monitor.LoadRunConfig(configPath)
		if err != nil {
			return err
		}
		if cfg.Property != "" {
			property = cfg.Property
		} else if cfg.PropertyFile != "" {
			data, err := os.ReadFile(cfg.PropertyFile)
			if err != nil {
				return err
			}
			property = string(data)
		}
		tracePath = cfg.Trace
		allowInferredProcs = allowInferredProcs || cfg.AllowInferredProcs
		verbose = verbose || cfg.Verbose
		debug = debug || cfg.Debug
		opts = append(opts, cfg.Options()...)
	}

	if property == "" || tracePath == "" {
		return fmt.Errorf("both --property (or --config property) and --trace (or --config trace) are required")
	}

	initLogger()
	if logger != nil {
		opts = append(opts, monitor.WithLogger(logger))
	}

	f, err := os.Open(tracePath)
	if err != nil {
		return err
	}
	defer f.Close()

	events, processes, err := trace.Read(f, nil, allowInferredProcs)
	if err != nil {
		return err
	}

	m, err := monitor.New(property, processes, opts...)
	if err != nil {
		return err
	}

	if validateOnly {
		fmt.Printf("trace OK: %d events over %d processes\n", len(events), len(processes))
		return nil
	}

	v, hist, err := m.Run(events)
	if verbose {
		for _, h := range hist {
			fmt.Printf("%s -> %s\n", h.EventID, h.Verdict)
		}
	}
	if err != nil {
		return err
	}

	fmt.Println(v)

	if debugFinal {
		printDebugFinal(m)
	}
	return nil
}

func baseOptions() []monitor.Option {
	var opts []monitor.Option
	if stopOnVerdict {
		opts = append(opts, monitor.WithStopOnVerdict())
	}
	if lenientCausality {
		opts = append(opts, monitor.WithLenientCausality())
	}
	if formulaSizeLimit > 0 {
		opts = append(opts, monitor.WithFormulaSizeLimit(formulaSizeLimit))
	}
	if verbose {
		opts = append(opts, monitor.WithVerbose())
	}
	if debug {
		opts = append(opts, monitor.WithDebug())
	}
	return opts
}

func initLogger() {
	cfg := zap.NewProductionConfig()
	if debug || verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
		return
	}
	logger = l.With(zap.String("run_id", uuid.NewString()))
}

func printDebugFinal(m *monitor.Monitor) {
	for i, s := range m.DisjunctStates() {
		if s.Verdict().Terminal() {
			continue
		}
		fmt.Printf("disjunct %d still %s: %s\n", i, s.Verdict(), m.DLNF().Disjuncts[i])
	}
}
