package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// registers the history subcommand flags, seeded with configured defaults
func BindIngestFlags(fs *pflag.FlagSet, cfg *Config, flags *IngestFlags) {
	fs.StringVar(&flags.Source, "source", SourcePgAdmin, "history source: pgadmin or file")
	fs.StringVar(&flags.Path, "path", "", "pgAdmin database path, or glob of history files (default PGADMIN_DB_PATH)")
	fs.IntVar(&flags.Workers, "workers", cfg.IngestWorkers, "number of queries embedded concurrently")
	fs.BoolVar(&flags.Progress, "progress", true, "show a progress bar")
}

// fills unset values and rejects unknown sources
func (f *IngestFlags) Resolve(cfg *Config) error {
	switch f.Source {
	case SourcePgAdmin:
		if f.Path == "" {
			f.Path = cfg.PgAdminDBPath
		}
	case SourceFile:
		if f.Path == "" {
			return fmt.Errorf("--path is required for the file source")
		}
	default:
		return fmt.Errorf("unknown history source %q", f.Source)
	}

	if f.Workers < 1 {
		f.Workers = 1
	}

	return nil
}
