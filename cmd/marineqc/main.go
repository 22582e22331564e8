package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chrissnell/marineqc/internal/app"
	"github.com/chrissnell/marineqc/internal/log"
	"github.com/chrissnell/marineqc/internal/storage/sqlite"
	"github.com/chrissnell/marineqc/pkg/config"
	"github.com/chrissnell/marineqc/pkg/responseformat"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "", "Path to a YAML configuration file. If empty, the configuration\n\t\t\t  stored in the database is used, or the defaults if none is stored")
	dbPath := flag.String("db", "", "Path to the SQLite reports database (overrides run.database)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	logFile := flag.String("logfile", "", "Also write JSON logs to this file, rotated by size")
	workers := flag.Int("workers", 0, "Number of platforms to check in parallel (overrides run.workers)")
	format := flag.String("format", "", "Summary format: json or msgpack (overrides run.summary_format)")
	output := flag.String("output", "-", "Where to write the run summary; - for stdout")
	saveConfig := flag.Bool("save-config", false, "Store the effective configuration in the database and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("marineqc %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.InitWithFile(*debug, *logFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(*cfgFile, *dbPath, *workers, *format, *output, *saveConfig); err != nil {
		log.Errorf("marineqc: %v", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfgFile, dbPath string, workers int, format, output string, saveConfig bool) error {
	cfg, err := loadConfig(cfgFile, dbPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.Run.Database = dbPath
	}
	if workers > 0 {
		cfg.Run.Workers = workers
	}
	if format != "" {
		cfg.Run.SummaryFormat = format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if saveConfig {
		provider, err := config.NewSQLiteProvider(cfg.Run.Database)
		if err != nil {
			return err
		}
		defer provider.Close()
		if err := provider.SaveConfig(cfg); err != nil {
			return err
		}
		log.Infof("stored configuration in %s", cfg.Run.Database)
		return nil
	}

	summaryFormat, err := responseformat.ParseFormat(cfg.Run.SummaryFormat)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := sqlite.New(ctx, cfg.Run.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.BackfillUIDs(ctx); err != nil {
		return err
	}

	summary, err := app.New(cfg, store, store, log.GetSugaredLogger()).RunWithSignals(ctx)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("could not create summary file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return responseformat.NewFormatter(summaryFormat).Write(w, summary)
}

// loadConfig reads the YAML file if one is given, and otherwise whatever is
// stored in the reports database.
func loadConfig(cfgFile, dbPath string) (*config.Config, error) {
	var provider config.ConfigProvider

	if cfgFile != "" {
		filename, _ := filepath.Abs(cfgFile)
		provider = config.NewYAMLProvider(filename)
	} else {
		if dbPath == "" {
			dbPath = config.Default().Run.Database
		}
		p, err := config.NewSQLiteProvider(dbPath)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		provider = p
	}
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading configuration. Did you pass the -config flag? Run with -h for help: %w", err)
	}
	return cfg, nil
}
