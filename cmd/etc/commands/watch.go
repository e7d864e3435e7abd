package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/etc/internal/app/watch"
	"github.com/slok/etc/internal/model"
	"github.com/slok/etc/internal/profile"
	"github.com/slok/etc/internal/progress"
	"github.com/slok/etc/internal/render"
	"github.com/slok/etc/internal/sample"
	"github.com/slok/etc/internal/storage"
	"github.com/slok/etc/internal/storage/sqlite"
)

type WatchCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	flags        watchFlags
	noStore      bool
	profileName  string
	profilesFile string
}

// NewWatchCommand returns the watch command.
func NewWatchCommand(rootCmd *RootCommand, app *kingpin.Application) *WatchCommand {
	c := &WatchCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("watch", "Estimate time of completion for a numeric quantity read from stdin.")
	c.Cmd.Arg("goal", "Target value the quantity is moving toward (optional when the profile sets one).").StringVar(&c.flags.goalRaw)
	c.Cmd.Flag("field", "1-based field to extract from each input line (0 uses the whole line).").Short('f').IsSetByUser(&c.flags.fieldSet).IntVar(&c.flags.field)
	c.Cmd.Flag("delimiter", "Field delimiter (defaults to any whitespace).").Short('d').IsSetByUser(&c.flags.delimiterSet).StringVar(&c.flags.delimiter)
	c.Cmd.Flag("label", "Label for the tracked quantity.").Short('l').IsSetByUser(&c.flags.labelSet).StringVar(&c.flags.label)
	c.Cmd.Flag("output", "Output mode.").Short('o').Default(render.ModeLine).IsSetByUser(&c.flags.outputSet).EnumVar(&c.flags.output, render.ModeLine, render.ModeScreen, render.ModePlain, "json")
	c.Cmd.Flag("no-store", "Don't record the run in the database.").BoolVar(&c.noStore)
	c.Cmd.Flag("profile", "Named watch profile to apply.").StringVar(&c.profileName)
	defaultProfiles := filepath.Join(homedir.HomeDir(), ".etc", "profiles.yaml")
	c.Cmd.Flag("profiles-file", "Path to the profiles YAML file.").Envar("ETC_PROFILES_FILE").Default(defaultProfiles).StringVar(&c.profilesFile)

	return c
}

func (c WatchCommand) Name() string { return c.Cmd.FullCommand() }

func (c WatchCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	var prof *profile.Profile
	if c.profileName != "" {
		repo := profile.NewYAMLRepository(os.DirFS(filepath.Dir(c.profilesFile)))
		p, err := repo.GetProfile(ctx, filepath.Base(c.profilesFile), c.profileName)
		if err != nil {
			return fmt.Errorf("could not load profile: %w", err)
		}
		prof = &p
	}

	settings, err := resolveWatchSettings(c.flags, prof)
	if err != nil {
		return err
	}

	// Samples come from stdin, the status goes to stderr so the watched
	// stream can keep flowing through a pipe untouched.
	source, err := sample.NewLineSource(sample.LineSourceConfig{
		Reader:    c.rootCmd.Stdin,
		Field:     settings.field,
		Delimiter: settings.delimiter,
	})
	if err != nil {
		return fmt.Errorf("could not create sample source: %w", err)
	}

	var sink progress.Sink
	if settings.output == "json" {
		sink = render.NewJSONLines(c.rootCmd.Stdout)
	} else {
		sink, err = render.NewStatusLine(render.StatusLineConfig{
			Output: c.rootCmd.Stderr,
			Mode:   settings.output,
			Label:  settings.label,
		})
		if err != nil {
			return fmt.Errorf("could not create render sink: %w", err)
		}
	}

	var repo storage.Repository
	if !c.noStore {
		sqliteRepo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: c.rootCmd.DBPath,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("could not create repository: %w", err)
		}
		defer sqliteRepo.Close()
		repo = sqliteRepo
	}

	svc, err := watch.NewService(watch.ServiceConfig{
		Goal:       settings.goal,
		Label:      settings.label,
		Source:     source,
		Sink:       sink,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	run, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("could not watch: %w", err)
	}

	if settings.output != "json" {
		fmt.Fprintln(c.rootCmd.Stderr)
	}
	logger.Debugf("Run %s finished with status %s", run.ID, run.Status)

	return nil
}

// watchFlags carries the raw watch command inputs plus whether each flag was
// given explicitly on the command line.
type watchFlags struct {
	goalRaw      string
	field        int
	fieldSet     bool
	delimiter    string
	delimiterSet bool
	label        string
	labelSet     bool
	output       string
	outputSet    bool
}

// watchSettings are the effective watch parameters after merging an optional
// profile.
type watchSettings struct {
	goal      float64
	field     int
	delimiter string
	label     string
	output    string
}

// resolveWatchSettings merges the command flags with an optional profile.
// Explicit flags always win, the profile only fills what the user didn't set.
// The goal may come from either side; having none is an error.
func resolveWatchSettings(flags watchFlags, prof *profile.Profile) (watchSettings, error) {
	s := watchSettings{
		field:     flags.field,
		delimiter: flags.delimiter,
		label:     flags.label,
		output:    flags.output,
	}

	if prof != nil {
		if !flags.fieldSet && prof.Field != 0 {
			s.field = prof.Field
		}
		if !flags.delimiterSet && prof.Delimiter != "" {
			s.delimiter = prof.Delimiter
		}
		if !flags.labelSet && prof.Label != "" {
			s.label = prof.Label
		}
		if !flags.outputSet && prof.Output != "" {
			s.output = prof.Output
		}
	}

	switch {
	case flags.goalRaw != "":
		goal, err := strconv.ParseFloat(flags.goalRaw, 64)
		if err != nil {
			return watchSettings{}, fmt.Errorf("invalid goal %q: %w", flags.goalRaw, model.ErrNotValid)
		}
		s.goal = goal
	case prof != nil && prof.Goal != nil:
		s.goal = *prof.Goal
	default:
		return watchSettings{}, fmt.Errorf("a goal is required, pass it as argument or through a profile: %w", model.ErrNotValid)
	}

	return s, nil
}
