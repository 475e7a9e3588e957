package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagStripNames = flag.Bool("strip-names", false, "Omit element names from exported models")
	flagNoGroups   = flag.Bool("no-groups", false, "Do not export the groups hierarchy")
	flagCharset    = flag.String("charset", "", "Charset of legacy zip entry names")
	flagLogFile    = flag.String("log-file", "", "Write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagStripNames {
		cfg.Export.StripNames = true
	}
	if *flagNoGroups {
		cfg.Export.ExportGroups = false
	}
	if *flagCharset != "" {
		cfg.Import.LegacyCharset = *flagCharset
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
