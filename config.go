/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Seednode/ulvareth/party"
)

type Config struct {
	bind           string
	enforceCap     bool
	maxUpload      int64
	maxUploadSize  string
	metrics        bool
	mode           string
	partySize      int
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	// group subcommand
	output string
	pretty bool

	// sample subcommand
	seed uint64

	logger *zap.SugaredLogger
}

func (c *Config) validateGrouping() error {
	if c.partySize < party.MinSize || c.partySize > party.MaxSize {
		return fmt.Errorf("invalid party size (must be between %d-%d inclusive): %d", party.MinSize, party.MaxSize, c.partySize)
	}
	if _, err := party.ParseMode(c.mode); err != nil {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	size, err := parseSize(c.maxUploadSize)
	if err != nil {
		return err
	}
	if size < 1 {
		return fmt.Errorf("invalid max upload size (must be positive): %s", c.maxUploadSize)
	}
	c.maxUpload = size

	return c.validateGrouping()
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// groupMode returns the configured grouping strategy, already validated.
func (c *Config) groupMode() party.Mode {
	m, err := party.ParseMode(c.mode)
	if err != nil {
		return party.ModeCategory
	}
	return m
}

func normalizeFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// bindFlags lets every flag in fs be set from ULVARETH_<FLAG> as well.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func addGroupingFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.mode, "mode", "m", string(party.ModeCategory), "grouping strategy, category or balanced (env: ULVARETH_MODE)")
	fs.IntVarP(&cfg.partySize, "party-size", "s", party.DefaultSize, "target players per party (env: ULVARETH_PARTY_SIZE)")
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ULVARETH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "ulvareth",
		Short:         "Archetype quiz and party builder for tabletop sessions, packed in a single webapp.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.logger = newLogger(cfg.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.SetNormalizeFunc(normalizeFlags)
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: ULVARETH_VERBOSE)")

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalizeFlags)

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: ULVARETH_BIND)")
	fs.BoolVar(&cfg.enforceCap, "enforce-cap", false, "refuse manual moves into full parties by default (env: ULVARETH_ENFORCE_CAP)")
	fs.StringVar(&cfg.maxUploadSize, "max-upload-size", "1MB", "maximum accepted roster or payload size (env: ULVARETH_MAX_UPLOAD_SIZE)")
	fs.BoolVar(&cfg.metrics, "metrics", false, "expose prometheus metrics at /metrics (env: ULVARETH_METRICS)")
	addGroupingFlags(fs, cfg)
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: ULVARETH_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: ULVARETH_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: ULVARETH_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle GM sessions are ended (env: ULVARETH_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: ULVARETH_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: ULVARETH_TLS_KEY)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: ULVARETH_VERSION)")

	bindFlags(v, pfs)
	bindFlags(v, fs)

	cmd.AddCommand(
		newGroupCmd(cfg, v),
		newSampleCmd(cfg, v),
		newInboxCmd(cfg),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("ulvareth v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newGroupCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group [file...]",
		Short: "Propose parties for one or more CSV rosters (stdin when no files are given).",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateGrouping(); err != nil {
				return err
			}
			return runGroup(cfg, cmd.InOrStdin(), cmd.OutOrStdout(), args)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalizeFlags)

	addGroupingFlags(fs, cfg)
	fs.StringVarP(&cfg.output, "output", "o", "", "write the assignment CSV to this file instead of stdout (env: ULVARETH_OUTPUT)")
	fs.BoolVar(&cfg.pretty, "pretty", false, "render parties for the terminal instead of CSV (env: ULVARETH_PRETTY)")

	bindFlags(v, fs)

	return cmd
}

func newSampleCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample [name]",
		Short: "Print a bundled sample roster, or list them when no name is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cfg, cmd.OutOrStdout(), args)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalizeFlags)
	fs.Uint64Var(&cfg.seed, "seed", 0, "seed for generated samples, 0 for random (env: ULVARETH_SEED)")

	bindFlags(v, fs)

	return cmd
}

func newInboxCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "inbox <link|payload>",
		Short: "Decode a quiz share link into a roster CSV row.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInbox(cfg, cmd.OutOrStdout(), args[0])
		},
	}
}
