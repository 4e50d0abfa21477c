package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/clip-finder/internal/config"
	"github.com/kozaktomas/clip-finder/internal/detect"
	"github.com/kozaktomas/clip-finder/internal/identity"
	"github.com/kozaktomas/clip-finder/internal/media"
	"github.com/kozaktomas/clip-finder/internal/scan"
)

var findCmd = &cobra.Command{
	Use:   "find <video-url-or-path>",
	Short: "Find a single-speaker clip in a video",
	Long: `Scan a video for a window of the target duration in which exactly one
person is continuously visible, and extract it as a clip.

With --person, the window must match the stored reference identity and the
first match is extracted automatically. Without it, each candidate is shown
for interactive review; rejected speakers are remembered and skipped for the
rest of the session. --auto accepts the first candidate unconditionally.

Examples:
  # Interactive scan of a YouTube video
  clip-finder find https://www.youtube.com/watch?v=XXXX

  # Automatic scan for a stored identity
  clip-finder find interview.mp4 --person "Jan Novak"

  # Looser matching, start one minute in
  clip-finder find interview.mp4 --profile loose --start 60`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().String("person", "", "Match against this stored reference identity and auto-accept")
	findCmd.Flags().Float64("start", 0, "Start scanning from this timestamp (seconds)")
	findCmd.Flags().Float64("duration", 0, "Target clip duration in seconds (overrides config)")
	findCmd.Flags().Float64("fps", 0, "Analyzed frames per second (overrides config)")
	findCmd.Flags().Float64("tolerance", 0, "Max embedding distance for one identity (overrides config)")
	findCmd.Flags().Float64("min-valid-ratio", 0, "Required fraction of single-face frames per window (overrides config)")
	findCmd.Flags().Float64("max-scan", 0, "Stop scanning past this media timestamp (overrides config)")
	findCmd.Flags().String("profile", "", "Scan preset: default, strict, or loose")
	findCmd.Flags().Bool("auto", false, "Accept the first candidate without asking")
	findCmd.Flags().Bool("json", false, "Print only the result record on stdout")
}

// findResult is the JSON record printed on success.
type findResult struct {
	Path           string    `json:"path"`
	Start          float64   `json:"start"`
	End            float64   `json:"end"`
	Duration       float64   `json:"duration"`
	FramesAnalyzed int       `json:"frames_analyzed"`
	Elapsed        float64   `json:"elapsed"`
	SpeakerVector  []float32 `json:"speaker_encoding,omitempty"`
}

func runFind(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	scanCfg, err := buildScanConfig(cmd, cfg)
	if err != nil {
		return err
	}

	// With --json, stdout carries nothing but the result record (or "null");
	// everything human-facing moves to stderr.
	status := io.Writer(os.Stdout)
	if mustGetBool(cmd, "json") {
		status = os.Stderr
	}

	tools, err := media.NewTools(logger)
	if err != nil {
		return err
	}

	// Resolve the source to a local file before opening the frame stream.
	source := args[0]
	if media.IsURL(source) {
		downloader, err := media.NewDownloader(cfg.Media.CacheDir, cfg.Media.MaxHeight, logger)
		if err != nil {
			return err
		}
		source, err = downloader.Fetch(ctx, source)
		if err != nil {
			return err
		}
	} else if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("video not readable: %w", err)
	}

	// Probing validates that ffmpeg can actually read the container.
	info, err := tools.Probe(ctx, source)
	if err != nil {
		return fmt.Errorf("video not readable: %w", err)
	}
	fmt.Fprintf(status, "Video: %s (%.1fs, %.2f fps)\n", source, info.Duration, info.FPS)

	frames, err := tools.OpenFrames(ctx, source, scanCfg.StartOffset, scanCfg.SampleRate)
	if err != nil {
		return fmt.Errorf("video not readable: %w", err)
	}
	defer frames.Close()

	detector := detect.NewClient(cfg.Detector.URL, cfg.Detector.MinScore)
	samples := detect.NewSampleSource(frames, detector, cfg.Detector.Dim, logger)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWriter(os.Stderr),
	)

	session := scan.NewSession(scanCfg, progressSource{inner: samples, bar: bar})
	session.Logger = logger
	session.Exclusions = identity.NewSet(cfg.Detector.Dim)

	person := mustGetString(cmd, "person")
	if person != "" {
		refs, err := loadReferenceSet(ctx, cfg, person)
		if err != nil {
			return err
		}
		session.References = refs
		fmt.Fprintf(status, "Matching against %d reference vectors for %q\n", refs.Len(), identity.Slugify(person))
	} else if !mustGetBool(cmd, "auto") {
		session.Decider = newPrompter(status)
	}

	result, err := session.Run(ctx)
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	if result.State != scan.Accepted {
		fmt.Println("null")
		return fmt.Errorf("no qualifying clip found")
	}

	exporter, err := media.NewExporter(tools, cfg.Media.OutputDir)
	if err != nil {
		return err
	}
	clipPath, err := exporter.Extract(ctx, source, result.Candidate.Start, result.Candidate.Duration)
	if err != nil {
		return err
	}

	out := findResult{
		Path:           clipPath,
		Start:          result.Candidate.Start,
		End:            result.Candidate.End,
		Duration:       result.Candidate.Duration,
		FramesAnalyzed: result.Candidate.FramesAnalyzed,
		Elapsed:        math.Round(result.Candidate.Elapsed.Seconds()*100) / 100,
		SpeakerVector:  result.Candidate.Representative,
	}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

// buildScanConfig layers flag overrides over the named profile over the env
// config.
func buildScanConfig(cmd *cobra.Command, cfg *config.Config) (scan.Config, error) {
	scanCfg := scan.Config{
		TargetDuration: cfg.Scan.TargetDuration,
		SampleRate:     cfg.Scan.SampleFPS,
		Tolerance:      cfg.Scan.Tolerance,
		MinValidRatio:  cfg.Scan.MinValidRatio,
		MaxMediaTime:   cfg.Scan.MaxScanSeconds,
		MaxWallClock:   cfg.Scan.MaxWallClock,
	}

	if name := mustGetString(cmd, "profile"); name != "" {
		profile, ok := cfg.Profile(name)
		if !ok {
			return scan.Config{}, fmt.Errorf("unknown scan profile %q", name)
		}
		scanCfg.Tolerance = profile.Tolerance
		scanCfg.MinValidRatio = profile.MinValidRatio
	}

	for flag, dst := range map[string]*float64{
		"start":           &scanCfg.StartOffset,
		"duration":        &scanCfg.TargetDuration,
		"fps":             &scanCfg.SampleRate,
		"tolerance":       &scanCfg.Tolerance,
		"min-valid-ratio": &scanCfg.MinValidRatio,
		"max-scan":        &scanCfg.MaxMediaTime,
	} {
		if cmd.Flags().Changed(flag) {
			*dst = mustGetFloat64(cmd, flag)
		}
	}
	return scanCfg, nil
}

// loadReferenceSet loads the stored identity for --person.
func loadReferenceSet(ctx context.Context, cfg *config.Config, person string) (*identity.Set, error) {
	store, closeStore, err := openIdentityStore(cfg)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	slug := identity.Slugify(person)
	vectors, err := store.Load(ctx, slug)
	if errors.Is(err, identity.ErrNotFound) {
		return nil, fmt.Errorf("no stored identity %q, run: clip-finder identity import %s <image>...", slug, slug)
	}
	if err != nil {
		return nil, err
	}

	refs := identity.NewSetFromVectors(cfg.Detector.Dim, vectors, logger)
	if refs.Len() == 0 {
		return nil, fmt.Errorf("identity %q has no usable vectors", slug)
	}
	return refs, nil
}

// prompter asks the operator whether to use each presented candidate. A
// single buffered reader lives for the whole session so typed-ahead answers
// survive between consecutive prompts.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(os.Stdin), out: out}
}

// Decide implements scan.DecisionProvider.
func (p *prompter) Decide(ctx context.Context, c scan.Candidate) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintf(p.out, "\nCandidate clip: %.1fs - %.1fs (%d frames analyzed, %.1fs elapsed)\n",
		c.Start, c.End, c.FramesAnalyzed, c.Elapsed.Seconds())
	fmt.Fprint(p.out, "Use this clip? [y/N]: ")

	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read decision: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	case "", "n", "no":
		return false, nil
	default:
		return false, scan.ErrInvalidDecision
	}
}

// progressSource ticks the progress bar for every sample pulled.
type progressSource struct {
	inner scan.SampleSource
	bar   *progressbar.ProgressBar
}

func (p progressSource) Next(ctx context.Context) (scan.Sample, error) {
	s, err := p.inner.Next(ctx)
	if err == nil {
		_ = p.bar.Add(1)
	}
	return s, err
}
