package main

import (
	"github.com/spf13/cobra"
)

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage habits and their daily completions",
}

var habitAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Create a habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		icon, _ := cmd.Flags().GetString("icon")
		return runOp(cmd, "createHabit", map[string]string{
			"title":       args[0],
			"description": description,
			"icon":        icon,
		})
	},
}

var habitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits",
	RunE: func(cmd *cobra.Command, args []string) error {
		if archived, _ := cmd.Flags().GetBool("archived"); archived {
			return runOp(cmd, "listArchivedHabits", struct{}{})
		}
		return runOp(cmd, "listActiveHabits", struct{}{})
	},
}

var habitUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change a habit; only the given flags are applied",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := map[string]any{"id": args[0]}
		for _, name := range []string{"title", "description", "icon"} {
			if cmd.Flags().Changed(name) {
				v, _ := cmd.Flags().GetString(name)
				patch[name] = v
			}
		}
		if cmd.Flags().Changed("archived") {
			v, _ := cmd.Flags().GetBool("archived")
			patch["isArchived"] = v
		}
		return runOp(cmd, "updateHabit", patch)
	},
}

var habitArchiveCmd = &cobra.Command{
	Use:   "archive ID",
	Short: "Archive a habit, keeping its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, "updateHabit", map[string]any{"id": args[0], "isArchived": true})
	},
}

var habitDeleteCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a habit and all of its completions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, "deleteHabit", map[string]string{"habitId": args[0]})
	},
}

var habitDoneCmd = &cobra.Command{
	Use:   "done ID",
	Short: "Toggle a habit's completion for today (or --date)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		return runOp(cmd, "toggleHabitCompletion", map[string]string{"habitId": args[0], "createdAt": date})
	},
}

var habitLogCmd = &cobra.Command{
	Use:   "log ID",
	Short: "List a habit's completions, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := map[string]any{"habitId": args[0]}
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
			req["limit"] = limit
		}
		return runOp(cmd, "listHabitCompletions", req)
	},
}

var habitStreakCmd = &cobra.Command{
	Use:   "streak ID",
	Short: "Show a habit's current streak in days",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, "getHabitCompletionStreak", map[string]string{"habitId": args[0]})
	},
}

func init() {
	habitAddCmd.Flags().StringP("description", "d", "", "Habit description")
	habitAddCmd.Flags().String("icon", "", "Icon name")
	habitListCmd.Flags().Bool("archived", false, "List archived habits instead")
	habitUpdateCmd.Flags().String("title", "", "New title")
	habitUpdateCmd.Flags().StringP("description", "d", "", "New description")
	habitUpdateCmd.Flags().String("icon", "", "New icon name")
	habitUpdateCmd.Flags().Bool("archived", false, "Archive (or with =false, restore) the habit")
	habitDoneCmd.Flags().String("date", "", "Day to toggle, YYYY-MM-DD (default today)")
	habitLogCmd.Flags().IntP("limit", "n", 0, "Maximum number of completions to show")

	habitCmd.AddCommand(habitAddCmd, habitListCmd, habitUpdateCmd, habitArchiveCmd,
		habitDeleteCmd, habitDoneCmd, habitLogCmd, habitStreakCmd)
}
