package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ppiankov/umactually/internal/align"
	"github.com/ppiankov/umactually/internal/render"
	"github.com/spf13/cobra"
)

var (
	replaySpeed    float64
	replayFrom     float64
	replayScrollAt []float64
	replayWindow   int
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay <id>",
	Short: "Play back a video analysis transcript in real time",
	Long: `Replay walks through the transcript of a stored video analysis as if
the video were playing. The segment under the playhead is printed as it
becomes active and the transcript window follows along.

--scroll-at simulates a manual scroll at the given playback seconds: the
window stops following until the resume delay has passed.

Example:
  umactually replay 0190a6c2-...
  umactually replay 0190a6c2-... --speed 4 --from 90
  umactually replay 0190a6c2-... --scroll-at 12 --scroll-at 40`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1, "playback speed multiplier")
	replayCmd.Flags().Float64Var(&replayFrom, "from", 0, "start position in seconds")
	replayCmd.Flags().Float64SliceVar(&replayScrollAt, "scroll-at", nil, "simulate a manual scroll at these playback seconds")
	replayCmd.Flags().IntVar(&replayWindow, "window", 0, "transcript lines shown around the active segment (default from config)")
}

func runReplay(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()
	out, err := openEntry(a, args[0])
	if err != nil {
		return err
	}
	if len(out.Transcript) == 0 {
		return fmt.Errorf("analysis %s has no transcript to replay", out.HistoryID)
	}

	window := a.cfg.Playback.WindowSize
	if replayWindow > 0 {
		window = replayWindow
	}
	segments := out.Transcript
	duration := segments[len(segments)-1].EndTime

	view := render.NewTranscriptView(cmd.OutOrStdout(), a.printer, segments, window)
	scroller := align.NewAutoScroller(view, align.WithResumeDelay(a.cfg.Playback.ScrollResume))
	tracker := align.NewTracker(segments, scroller, view.SetActive)

	player := align.NewSimulatedPlayer(duration, replaySpeed, nil)
	player.Seek(replayFrom)

	gestures := newGestureSchedule(replayScrollAt, scroller.UserScrolled)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.printer.Header(fmt.Sprintf("Replaying %s", out.VideoURL))
	fmt.Fprintf(os.Stderr, "  %d segments, %s at %.1fx (Ctrl-C to stop)\n\n",
		len(segments), render.FormatTimestamp(duration), replaySpeed)

	follow := &followStatus{out: os.Stderr}

	player.Play()
	err = tracker.Run(ctx, player, a.cfg.Playback.PollInterval, func() bool {
		gestures.fire(player.CurrentTime())
		follow.update(scroller.Armed())
		return !player.Playing()
	})
	if ctx.Err() != nil {
		fmt.Fprintf(os.Stderr, "\nStopped at %s", render.FormatTimestamp(player.CurrentTime()))
		if active := tracker.Active(); active >= 0 {
			fmt.Fprintf(os.Stderr, " (segment %d of %d)", active+1, len(segments))
		}
		fmt.Fprintln(os.Stderr)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\n✓ Replay finished\n")
	return nil
}

// followStatus reports when auto-scroll pauses for a manual scroll and when it resumes
type followStatus struct {
	out       io.Writer
	seen      bool
	following bool
}

func (f *followStatus) update(armed bool) {
	if !f.seen {
		f.seen, f.following = true, armed
		return
	}
	if armed == f.following {
		return
	}
	f.following = armed
	if armed {
		fmt.Fprintln(f.out, "  ↻ following playback again")
	} else {
		fmt.Fprintln(f.out, "  ⏸ manual scroll, not following playback")
	}
}

// gestureSchedule fires a simulated scroll once playback passes each mark
type gestureSchedule struct {
	mu      sync.Mutex
	marks   []float64
	fired   []bool
	gesture func()
}

func newGestureSchedule(marks []float64, gesture func()) *gestureSchedule {
	return &gestureSchedule{marks: marks, fired: make([]bool, len(marks)), gesture: gesture}
}

func (g *gestureSchedule) fire(position float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, m := range g.marks {
		if !g.fired[i] && position >= m {
			g.fired[i] = true
			logger.Debug("simulated manual scroll", "at", m)
			g.gesture()
		}
	}
}

