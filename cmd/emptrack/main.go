package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"emptrack/internal/attendance"
	"emptrack/internal/domain"
	"emptrack/internal/reminder"
	"emptrack/internal/tui"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "emptrack",
	Short: "Employee attendance and task-progress assistant",
	Long:  "emptrack indexes the employee directory, attendance ledger and task log, and answers questions about who is in, who is on leave and how people are performing.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question, or prompt in a loop when none is given",
	RunE:  runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat",
	RunE:  runChat,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the index now",
	RunE:  runRefresh,
}

var checkinCmd = &cobra.Command{
	Use:   "checkin <emp_id> <WFO|WFH|leave>",
	Short: "Record today's attendance for an employee",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheckin,
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send task-report reminders on the configured schedule",
	RunE:  runRemind,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (defaults to ./config.yaml or ~/.config/emptrack/config.yaml)")
	checkinCmd.Flags().String("notes", "", "Free-text note stored with the check-in")
	remindCmd.Flags().Bool("once", false, "Send reminders once and exit")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(remindCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*app, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return newApp(cfg)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		fmt.Fprintln(out, a.router.Answer(strings.Join(args, " ")))
		return nil
	}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if q == "exit" || q == "quit" {
			return nil
		}
		fmt.Fprintf(out, "Assistant: %s\n\n", a.router.Answer(q))
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	summary := "Index not built"
	if a.index.Refresh() {
		st := a.index.State()
		summary = fmt.Sprintf("%d documents indexed at %s", len(st.IDs), st.LastRefresh.Format("15:04:05"))
	}
	_, err = tea.NewProgram(tui.New(a.router, summary), tea.WithAltScreen()).Run()
	return err
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.index.Refresh() {
		return domain.ErrEmptyCorpus
	}
	st := a.index.State()
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents (dimension %d) at %s\n", len(st.IDs), st.Dim, st.LastRefresh.Format("2006-01-02 15:04:05"))
	return nil
}

func runCheckin(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	notes, _ := cmd.Flags().GetString("notes")
	svc := attendance.NewService(a.loader, a.lateAfter, nil, a.logger)
	res, err := svc.CheckIn(args[0], args[1], notes)
	if errors.Is(err, domain.ErrAlreadyCheckedIn) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Already checked in today.")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) checked in as %s at %s\n", res.Employee.Name, res.Record.EmpID, res.Record.Status, res.Record.CheckInTime)
	if res.Late {
		fmt.Fprintln(cmd.OutOrStdout(), "Marked late.")
	}
	return nil
}

func runRemind(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	spec, err := reminder.CronSpec(a.cfg.ReminderTime, a.cfg.ReminderDays)
	if err != nil {
		return err
	}
	notifier := reminder.LogNotifier{Emails: a.cfg.ReminderEmails, ChatIDs: a.cfg.TelegramChatIDs, Logger: a.logger}
	sched, err := reminder.NewScheduler(spec, a.loader, notifier, nil, a.logger)
	if err != nil {
		return err
	}

	if once, _ := cmd.Flags().GetBool("once"); once {
		n, err := sched.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d reminders sent\n", n)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sched.Start()
	fmt.Fprintf(cmd.OutOrStdout(), "Reminders scheduled (%s), next run %s. Ctrl+C to stop.\n", spec, sched.Next().Format("Mon 2006-01-02 15:04"))
	<-ctx.Done()
	<-sched.Stop().Done()
	return nil
}
