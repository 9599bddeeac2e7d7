package main

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tracker-go/internal/model"
)

var pomodoroCmd = &cobra.Command{
	Use:     "pomodoro",
	Aliases: []string{"pom"},
	Short:   "Run pomodoro cycles and sessions",
}

var pomodoroStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a pomodoro cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		var s model.CycleSettings
		s.FocusDuration, _ = f.GetInt("focus")
		s.ShortBreakDuration, _ = f.GetInt("short-break")
		s.LongBreakDuration, _ = f.GetInt("long-break")
		s.SessionsUntilLongBreak, _ = f.GetInt("sessions")
		s.AutoStartBreaks, _ = f.GetBool("auto-breaks")
		s.AutoStartPomodoros, _ = f.GetBool("auto-pomodoros")
		return runOp(cmd, "startPomodoroCycle", s)
	},
}

var pomodoroCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the cycle in progress and its sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, "getCurrentPomodoroCycle", struct{}{})
	},
}

func cycleStatusCmd(use, short string, status model.CycleStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " CYCLE_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(cmd, "updateCycleStatus", map[string]any{"id": args[0], "status": status})
		},
	}
}

var pomodoroSessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start and finish sessions inside a cycle",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start CYCLE_ID FOCUS|SHORT_BREAK|LONG_BREAK MINUTES",
	Short: "Start a session",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[2])
		if err != nil {
			return err
		}
		return runOp(cmd, "startSession", map[string]any{
			"cycleId":         args[0],
			"sessionType":     args[1],
			"durationMinutes": minutes,
		})
	},
}

var sessionDoneCmd = &cobra.Command{
	Use:   "done SESSION_ID",
	Short: "Finish a session (--skipped if it was not worked through)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		skipped, _ := cmd.Flags().GetBool("skipped")
		return runOp(cmd, "completeSession", map[string]any{"sessionId": args[0], "wasCompleted": !skipped})
	},
}

var pomodoroStatsCmd = &cobra.Command{
	Use:   "stats [YYYY-MM-DD]",
	Short: "Show completed focus minutes for a UTC day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := time.Now().UTC().Format("2006-01-02")
		if len(args) == 1 {
			date = args[0]
		}
		return runOp(cmd, "getDailyFocusMinutes", map[string]string{"date": date})
	},
}

func init() {
	f := pomodoroStartCmd.Flags()
	f.Int("focus", 25, "Focus minutes")
	f.Int("short-break", 5, "Short break minutes")
	f.Int("long-break", 15, "Long break minutes")
	f.Int("sessions", 4, "Focus sessions before a long break")
	f.Bool("auto-breaks", false, "Start breaks automatically")
	f.Bool("auto-pomodoros", false, "Start focus sessions automatically")

	sessionDoneCmd.Flags().Bool("skipped", false, "Mark the session as not worked through")
	pomodoroSessionCmd.AddCommand(sessionStartCmd, sessionDoneCmd)

	pomodoroCmd.AddCommand(
		pomodoroStartCmd,
		pomodoroCurrentCmd,
		cycleStatusCmd("finish", "Mark a cycle completed", model.StatusCompleted),
		cycleStatusCmd("abandon", "Abandon a cycle", model.StatusAbandoned),
		pomodoroSessionCmd,
		pomodoroStatsCmd,
	)
}
