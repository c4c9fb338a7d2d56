// Package main provides the tunebox CLI entry point.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/soramane/tunebox/internal/app/playback"
	"github.com/soramane/tunebox/internal/app/playback/factory"
	"github.com/soramane/tunebox/internal/domain/track"
	"github.com/soramane/tunebox/internal/infra/config"
	"github.com/soramane/tunebox/internal/infra/library"
	"github.com/soramane/tunebox/internal/infra/logger"
)

var (
	app        = kingpin.New("tunebox", "background audio playback engine")
	configPath = app.Flag("config", "Path to config file").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()
	dirs       = app.Flag("dir", "Library directory (repeatable, overrides config)").Strings()

	scanCmd = app.Command("scan", "Scan the library and list accepted tracks")
)

func init() {
	app.Command("play", "Scan the library and start the interactive player (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{Output: "stderr", Level: cfg.Logging.Level}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if len(*dirs) > 0 {
		cfg.Library.Dirs = *dirs
	}

	switch command {
	case scanCmd.FullCommand():
		scan(cfg)
	default:
		if err := run(cfg); err != nil {
			zlog.Error().Msgf("tunebox error: %v", err)
			os.Exit(1)
		}
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.Load(*configPath)
	}
	return config.Default()
}

func scan(cfg *config.Config) {
	scanner := library.NewScanner(afero.NewOsFs(), cfg.Library)
	for i, t := range scanner.Scan(cfg.Library.Dirs) {
		fmt.Printf("%3d  %s — %s  (%s)\n", i, t.Artist, t.Title, t.Path)
	}
}

// run scans the library, builds the audio system and drives it from
// stdin commands until EOF or quit.
func run(cfg *config.Config) error {
	system, err := factory.NewSystem(cfg, consoleEvents{})
	if err != nil {
		return err
	}
	defer func() {
		if err := system.Close(); err != nil {
			zlog.Warn().Err(err).Msg("close failed")
		}
	}()

	scanner := library.NewScanner(afero.NewOsFs(), cfg.Library)
	tracks := scanner.Scan(cfg.Library.Dirs)
	for _, t := range tracks {
		system.AddTrack(t)
	}
	if len(tracks) == 0 {
		zlog.Warn().Msg("library is empty; add tracks with --dir or the config file")
	}

	fmt.Println("tunebox ready. Commands: play [n], pause, resume, stop, next, prev, mode, shuffle, vol <0..1>, list, status, quit")

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		if quit := dispatch(system, strings.Fields(in.Text())); quit {
			break
		}
	}
	return in.Err()
}

// dispatch executes one console command. Returns true on quit.
func dispatch(system *playback.System, args []string) bool {
	if len(args) == 0 {
		return false
	}

	report := func(err error) {
		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}

	switch args[0] {
	case "play":
		index := system.Playlist().CurrentIndex()
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("usage: play [index]")
				return false
			}
			index = n
		}
		report(system.LoadAndPlayTrack(index))
	case "pause":
		report(system.PausePlayback())
	case "resume":
		report(system.ResumePlayback())
	case "stop":
		report(system.StopPlayback())
	case "next":
		report(system.NextTrack())
	case "prev":
		report(system.PreviousTrack())
	case "mode":
		fmt.Println(system.CycleRepeatMode().Display())
	case "shuffle":
		fmt.Printf("shuffle: %v\n", system.ToggleShuffle())
	case "vol":
		if len(args) < 2 {
			fmt.Println("usage: vol <0..1>")
			return false
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			fmt.Println("usage: vol <0..1>")
			return false
		}
		report(system.SetVolume(v))
	case "list":
		printTracks(system)
	case "status":
		printStatus(system.Status())
	case "quit", "exit":
		return true
	default:
		fmt.Printf("unknown command: %s\n", args[0])
	}
	return false
}

func printTracks(system *playback.System) {
	current := system.Playlist().CurrentIndex()
	for i, t := range system.Playlist().Tracks() {
		marker := "  "
		if i == current {
			marker = "> "
		}
		fmt.Printf("%s%3d  %s — %s\n", marker, i, t.Artist, t.Title)
	}
}

func printStatus(st playback.Status) {
	fmt.Printf("state: %s  volume: %.2f  repeat: %s  shuffle: %v\n", st.PlaybackState, st.Volume, st.RepeatDisplay, st.Shuffle)
	if st.CurrentTrack != nil {
		fmt.Printf("track: %s — %s [%d/%d]\n", st.CurrentTrack.Artist, st.CurrentTrack.Title, st.CurrentIndex+1, st.PlaylistSize)
	}
	fmt.Printf("monitor: running=%v interval=%v\n", st.Monitor.IsMonitoring, st.Monitor.Interval)
}

// consoleEvents prints engine transitions for the interactive session.
type consoleEvents struct{}

func (consoleEvents) OnTrackStarted(t *track.Track, index int) {
	fmt.Printf("♪ playing [%d] %s — %s\n", index, t.Artist, t.Title)
}

func (consoleEvents) OnTrackFinished(t *track.Track, index int) {
	zlog.Debug().Msgf("finished [%d] %s", index, t.Title)
}

func (consoleEvents) OnPlaybackPaused(t *track.Track, _ int) {
	fmt.Printf("paused %s\n", t.Title)
}

func (consoleEvents) OnPlaybackResumed(t *track.Track, _ int) {
	fmt.Printf("resumed %s\n", t.Title)
}

func (consoleEvents) OnPlaybackStopped() {
	fmt.Println("playback stopped")
}

func (consoleEvents) OnRepeatModeChanged(mode playback.RepeatMode) {
	zlog.Debug().Msgf("repeat mode: %s", mode)
}
