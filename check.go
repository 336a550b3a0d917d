package cwn

import (
	"fmt"
	"github.com/spf13/pflag"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type CheckOptions struct {
	SourceZip   string
	MaxDistance int
	Debug       bool
}

type CheckResult struct {
	Locations []LocationRecord
	Table     string
	Notified  bool // notifier was called
	EmailSent bool // provider acknowledged
}

// Checker runs one fetch, filter, report and notify pass. Every collaborator
// is supplied by the caller; nothing is read from package state.
type Checker struct {
	Config    *Config
	Gazetteer *Gazetteer
	Feed      *FeedSource
	Notifier  Notifier // unused in debug mode, may be nil then
}

func (c *Checker) Check(opts CheckOptions) (*CheckResult, error) {
	if _, ok := c.Gazetteer.Lookup(opts.SourceZip); !ok {
		Log.Warnf("Source zip code %s not found in zip code data, no distances can be computed", opts.SourceZip)
	}

	var collection *FeatureCollection
	var err error
	if opts.Debug {
		collection, err = c.Feed.LoadCached()
	} else {
		collection, err = c.Feed.Fetch()
	}
	if err != nil {
		return nil, err
	}

	all := ParseFeatures(collection, opts.SourceZip, c.Gazetteer)

	locations, err := ApplyFilters(all, opts.MaxDistance, c.Config.DistancePolicy)
	if err != nil {
		return nil, &ConfigError{Msg: "Invalid filter configuration", Err: err}
	}

	if len(locations) == 0 {
		return nil, &NoResultsError{SourceZip: opts.SourceZip, MaxDistance: opts.MaxDistance}
	}

	result := &CheckResult{
		Locations: locations,
		Table:     RenderTable(locations),
	}

	if opts.Debug {
		return result, nil
	}

	if c.Notifier == nil {
		return result, &ConfigError{Msg: "No notifier configured"}
	}

	result.Notified = true
	result.EmailSent, err = c.Notifier.Notify(c.Config.EmailSubject, RenderHTML(result.Table))
	if err != nil {
		return result, err
	}

	Log.Infof("Notified %d location(s) via %s, sent: %v", len(locations), c.Notifier.Name(), result.EmailSent)

	return result, nil
}

type cliArgs struct {
	opts       CheckOptions
	configPath string
	nearbyZips bool
}

func parseArgs(args []string, stderr io.Writer) (*cliArgs, error) {
	exeName := "covidwa-nearby"
	if len(args) > 0 {
		exeName = filepath.Base(args[0])
		args = args[1:]
	}

	parsed := new(cliArgs)

	fs := pflag.NewFlagSet(exeName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&parsed.opts.Debug, "debug", false, "use the cached feed and print instead of sending email")
	fs.StringVar(&parsed.configPath, "config", "", "path to yaml config (default "+DefaultConfigPath+" if present)")
	fs.BoolVar(&parsed.nearbyZips, "nearby-zips", false, "list zip codes within max_distance of source_zip_code and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [--debug] [--config path] [--nearby-zips] <source_zip_code> <max_distance>\n", exeName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, &ConfigError{Msg: "Invalid arguments", Err: err}
	}

	positional := fs.Args()
	if len(positional) != 2 {
		fs.Usage()
		return nil, &ConfigError{Msg: fmt.Sprintf("Expected 2 arguments, got %d", len(positional))}
	}

	parsed.opts.SourceZip = strings.TrimSpace(positional[0])

	maxDistance, err := strconv.Atoi(positional[1])
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("max_distance must be an integer, got '%s'", positional[1])}
	}
	parsed.opts.MaxDistance = maxDistance

	return parsed, nil
}

func loadConfig(path string) (*Config, error) {
	if len(path) == 0 {
		return NewConfigDefaultPath()
	}
	return NewConfig(path)
}

// Run is the command line entry point; it returns the process exit code
func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	result, err := runCheck(args, stdout, stderr)

	if result != nil {
		fmt.Fprintln(stdout, result.Table)
		if result.Notified {
			fmt.Fprintf(stdout, "Email sent: %v\n", result.EmailSent)
		}
	}

	if err != nil {
		msg, code := ExitStatus(err)
		Log.Debugf("%v", err)
		fmt.Fprintln(stderr, msg)
		return code
	}

	return ExitOK
}

func runCheck(args []string, stdout io.Writer, stderr io.Writer) (*CheckResult, error) {
	cli, err := parseArgs(args, stderr)
	if err != nil {
		return nil, err
	}

	config, err := loadConfig(cli.configPath)
	if err != nil {
		return nil, err
	}

	if cli.opts.Debug {
		Log.SetLevel("debug")
	}

	if cli.nearbyZips {
		gazetteer, err := LoadGazetteer(config.GazetteerPath)
		if err != nil {
			return nil, err
		}

		zips := gazetteer.Within(cli.opts.SourceZip, cli.opts.MaxDistance)
		if len(zips) == 0 {
			return nil, &NoResultsError{SourceZip: cli.opts.SourceZip, MaxDistance: cli.opts.MaxDistance}
		}
		fmt.Fprintln(stdout, strings.Join(zips, "\n"))
		return nil, nil
	}

	// credentials first so a bad file stops the run before any network access
	creds, err := LoadCredentials(config.CredentialsPath, config.ApiKeySSMParam)
	if err != nil {
		return nil, err
	}

	gazetteer, err := LoadGazetteer(config.GazetteerPath)
	if err != nil {
		return nil, err
	}

	checker := &Checker{
		Config:    config,
		Gazetteer: gazetteer,
		Feed:      NewFeedSource(config),
	}
	if !cli.opts.Debug {
		checker.Notifier = NewNotifier(config, creds)
	}

	return checker.Check(cli.opts)
}
