package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"tokenview/pkg/config"
	"tokenview/pkg/detail"
	"tokenview/pkg/favorites"
	"tokenview/pkg/metrics"
	"tokenview/pkg/models"
	"tokenview/pkg/rpc"
	"tokenview/pkg/safety"
	"tokenview/pkg/server"
	"tokenview/pkg/tui"
	"tokenview/pkg/utils"
	"tokenview/pkg/watcher"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// Version should be set during build
var Version = "dev"

const (
	logFileName   = ".tokenview.log"
	// RPC errors are cut to one terminal line in the human readable report
	maxErrorWidth = 120
)

func main() {
	testFlag := flag.Bool("t", false, "Test configuration and exit")
	testLongFlag := flag.Bool("test", false, "Test configuration and exit")
	jsonFlag := flag.Bool("json", false, "Output test results as JSON")
	dryRunFlag := flag.Bool("dry-run", false, "Perform a trial run with no changes made")
	configFlag := flag.String("config", "", "Path to configuration file")
	restoreFlag := flag.Bool("restore", false, "Restore the most recent configuration backup and exit")
	favoritesFlag := flag.Bool("favorites", false, "List favorited tokens and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	serverFlag := flag.Bool("server", false, "Run in headless server mode")
	portFlag := flag.Int("port", 8080, "Port for API server")
	addressFlag := flag.String("address", "", "Token contract address to open")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("tokenview version %s\n", Version)
		os.Exit(0)
	}

	path, err := config.GetConfigPath(*configFlag)
	if err != nil {
		fmt.Printf("Error determining config path: %v\n", err)
		os.Exit(1)
	}

	if *restoreFlag {
		if err := config.RestoreLastBackup(path); err != nil {
			fmt.Printf("Error restoring backup of %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Restored %s from its latest backup.\n", path)
		os.Exit(0)
	}

	cfg, err := config.LoadConfigFromFile(path)
	if err != nil {
		fmt.Printf("Error loading config from %s: %v\n", path, err)
		os.Exit(1)
	}

	if *testFlag || *testLongFlag {
		var out io.Writer = os.Stdout
		if *jsonFlag {
			out = io.Discard
		}
		report := testConfig(context.Background(), &cfg, path, *dryRunFlag, out)
		if *jsonFlag {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(report)
		}
		if !report.ValidStructure {
			os.Exit(1)
		}
		os.Exit(0)
	}

	if len(cfg.Chains) == 0 {
		fmt.Println("Error: No Chains found in configuration.")
		fmt.Printf("Please create a config file at %s with 'chains'.\n", path)
		os.Exit(1)
	}

	log, closeLog := newLogger(*serverFlag)
	defer closeLog()

	store, err := openFavorites(cfg.Global, log)
	if err != nil {
		fmt.Printf("Error opening favorites: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	if *favoritesFlag {
		ids, err := store.List()
		if err != nil {
			fmt.Printf("Error listing favorites: %v\n", err)
			os.Exit(1)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	active := cfg.ActiveChain()
	filter := watcher.NewNetworkFilter(active.ChainID)
	w := watcher.NewWatcher(cfg.Global, filter, log, m)
	w.Start(ctx)
	defer w.Stop()

	classifier := safety.NewClassifier(cfg.Global.SafeTokens, cfg.Global.BlockedTokens)
	classifier.SetLabels(cfg.Global.Classifications)

	formatter := utils.NewCurrencyFormatter(cfg.Global.Locale)
	reconciler := detail.NewReconciler(cfg.Global.Locale, formatter.Format)
	adapter := favorites.NewAdapter(store, log)

	srv := server.NewServer(w, server.Options{
		Chain:      active,
		Classifier: classifier,
		Favorites:  adapter,
		Reconciler: reconciler,
		Gatherer:   reg,
		Metrics:    m,
		Log:        log,
	})

	if *serverFlag {
		log.WithFields(logrus.Fields{"port": *portFlag, "chain": active.Name}).Info("Running in server mode")
		if err := srv.Start(ctx, *portFlag); err != nil {
			log.WithError(err).Error("Server error")
			os.Exit(1)
		}
		return
	}

	go func() {
		if err := srv.Start(ctx, *portFlag); err != nil {
			log.WithError(err).Warn("Server error")
		}
	}()

	deps := tui.Deps{
		Watcher:    w,
		Chain:      active,
		Classifier: classifier,
		Favorites:  adapter,
		Reconciler: reconciler,
		Format:     formatter.Format,
	}
	if err := tui.Start(deps, tokenAddress(*addressFlag, flag.Args()), Version); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// tokenAddress prefers the -address flag over the first positional argument.
func tokenAddress(flagValue string, args []string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if len(args) > 0 {
		return strings.TrimSpace(args[0])
	}
	return ""
}

// newLogger writes to stderr in server mode. The TUI owns the terminal, so
// interactive runs log to a file in the home directory instead.
func newLogger(serverMode bool) (*logrus.Logger, func()) {
	log := logrus.New()
	level, err := logrus.ParseLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		log.Errorf("Parse log level: %v.", err)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if serverMode {
		return log, func() {}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(io.Discard)
		return log, func() {}
	}
	f, err := os.OpenFile(filepath.Join(home, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return log, func() {}
	}
	log.SetOutput(f)
	return log, func() { _ = f.Close() }
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func openFavorites(g config.GlobalConfig, log logrus.FieldLogger) (favorites.Store, error) {
	if g.FavoritesDB == "" {
		log.Debug("No favorites database configured, favorites are kept in memory")
		return favorites.NewMemoryStore(), nil
	}
	return favorites.OpenSQLite(g.FavoritesDB)
}

// testConfig checks the structure of cfg and probes every RPC endpoint.
// Chains without a configured chain id get the observed one, and the file is
// rewritten unless dryRun is set. Progress is written to out.
func testConfig(ctx context.Context, cfg *config.Config, path string, dryRun bool, out io.Writer) models.TestReport {
	report := models.TestReport{
		ConfigPath:     path,
		ValidStructure: true,
		DryRun:         dryRun,
	}
	fmt.Fprintf(out, "Testing configuration at: %s\n", path)

	if err := cfg.Validate(); err != nil {
		report.ValidStructure = false
		report.StructureErrors = append(report.StructureErrors, err.Error())
		fmt.Fprintf(out, "Error: %v\n", err)
		return report
	}

	report.ChainCount = len(cfg.Chains)
	for _, c := range cfg.Chains {
		report.TokenCount += len(c.Tokens)
	}
	fmt.Fprintf(out, "Found %d tokens and %d Chains.\n", report.TokenCount, report.ChainCount)

	configUpdated := false
	for i := range cfg.Chains {
		chain := &cfg.Chains[i]
		cResult := models.ChainResult{Name: chain.Name, ConfigChainID: chain.ChainID}
		fmt.Fprintf(out, "Testing Chain: %s\n", chain.Name)

		var observed int64
		for _, url := range chain.RPCURLs {
			rResult := models.RPCResult{URL: url}
			fmt.Fprintf(out, "  RPC: %s ... ", url)

			id, latency, err := rpc.CheckRPC(ctx, url)
			if err != nil {
				rResult.Status = "error"
				rResult.Error = err.Error()
				fmt.Fprintf(out, "Failed: %s\n", utils.TruncateString(err.Error(), maxErrorWidth))
				cResult.RPCs = append(cResult.RPCs, rResult)
				continue
			}

			rResult.Status = "ok"
			rResult.ChainID = id
			rResult.LatencyMS = latency.Milliseconds()
			fmt.Fprintf(out, "OK (ChainID: %d, %sms)", id, utils.FormatFloat(float64(latency.Microseconds())/1000, 1))

			if observed == 0 {
				observed = id
				cResult.ObservedChainID = id
			} else if observed != id {
				fmt.Fprintf(out, " - WARNING: ChainID mismatch with previous RPC (%d)", observed)
				cResult.Inconsistent = true
			}

			switch {
			case chain.ChainID == 0:
				chain.ChainID = id
				configUpdated = true
				cResult.ChainIDUpdated = true
				fmt.Fprint(out, " - UPDATED CONFIG")
				if dryRun {
					fmt.Fprint(out, " (DRY RUN)")
				}
			case chain.ChainID != id:
				rResult.Error = fmt.Sprintf("Mismatch! Expected %d", chain.ChainID)
				fmt.Fprintf(out, " - MISMATCH! Expected %d", chain.ChainID)
			default:
				fmt.Fprint(out, " - Verified")
			}
			fmt.Fprintln(out)
			cResult.RPCs = append(cResult.RPCs, rResult)
		}

		if cResult.Inconsistent {
			report.InconsistentChains = append(report.InconsistentChains, chain.Name)
		}
		report.Chains = append(report.Chains, cResult)
	}

	if len(report.InconsistentChains) > 0 {
		fmt.Fprintln(out, "\nWARNING: Inconsistent RPCs detected!")
		fmt.Fprintln(out, "The following chains have RPCs returning conflicting Chain IDs:")
		for _, name := range report.InconsistentChains {
			fmt.Fprintf(out, " - %s\n", name)
		}
	}

	if configUpdated {
		report.ConfigUpdated = true
		fmt.Fprintln(out, "\nUpdating configuration with fetched Chain IDs...")
		if dryRun {
			fmt.Fprintln(out, "Dry run enabled: Configuration NOT saved.")
		} else if err := config.SaveConfig(*cfg, path); err != nil {
			report.SaveError = err.Error()
			fmt.Fprintf(out, "Failed to save config: %v\n", err)
		} else {
			fmt.Fprintln(out, "Configuration saved successfully.")
		}
	}
	return report
}
