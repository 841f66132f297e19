package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTaskList,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDone,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change a task's title, description or estimate",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

func init() {
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskDeleteCmd)

	taskAddCmd.Flags().IntP("estimate", "e", 1, "Estimated pomodoros")
	taskAddCmd.Flags().StringP("description", "d", "", "Task description")
	taskListCmd.Flags().Bool("all", false, "Include completed tasks")
	taskEditCmd.Flags().StringP("title", "t", "", "New title")
	taskEditCmd.Flags().IntP("estimate", "e", 1, "New estimated pomodoros")
	taskEditCmd.Flags().StringP("description", "d", "", "New description")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	estimate, _ := cmd.Flags().GetInt("estimate")
	description, _ := cmd.Flags().GetString("description")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.tasks.Create(context.Background(), strings.Join(args, " "), description, estimate)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added task %d: %s (%d pomodoros)\n", t.ID, t.Title, t.EstimatedPomodoros)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, err := a.tasks.GetAll(context.Background(), all)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return nil
	}
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] %3d  %-30s %d/%d\n", mark, t.ID, t.Title, t.CompletedPomodoros, t.EstimatedPomodoros)
	}
	return nil
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tasks.SetCompleted(context.Background(), id, true); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Completed task %d\n", id)
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("title") && !flags.Changed("estimate") && !flags.Changed("description") {
		return fmt.Errorf("nothing to change: pass --title, --estimate or --description")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	t, err := a.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		t.Title = strings.TrimSpace(title)
	}
	if flags.Changed("estimate") {
		t.EstimatedPomodoros, _ = flags.GetInt("estimate")
	}
	if flags.Changed("description") {
		description, _ := flags.GetString("description")
		t.Description = strings.TrimSpace(description)
	}
	if err := a.tasks.Update(ctx, t); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d: %s (%d pomodoros)\n", t.ID, t.Title, t.EstimatedPomodoros)
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tasks.Delete(context.Background(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
	return nil
}

func parseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}
