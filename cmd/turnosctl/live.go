package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Turnos-api/internal/application/livesync"
	"github.com/jhoicas/Turnos-api/internal/application/view"
	"github.com/jhoicas/Turnos-api/internal/application/workspace"
	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Turnos-api/internal/infrastructure/realtime"
)

const listenTimeout = 10 * time.Second

// openWorkspace abre un workspace para el usuario --as, con listener propio sobre la base.
// El listener y el hub se detienen al cancelar el contexto devuelto por el caller.
func openWorkspace(ctx context.Context, e *env, userID string, out io.Writer) (*workspace.Workspace, error) {
	if userID == "" {
		return nil, fmt.Errorf("--as es obligatorio: %w", domain.ErrInvalidInput)
	}
	profiles := postgres.NewProfileRepository(e.pool)
	roles, err := postgres.NewRoleRepository(e.pool).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	session := workspace.Session{UserID: userID, Roles: roles}
	p, err := profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	if p.EmployeeID != nil {
		session.EmployeeID = *p.EmployeeID
	}

	hub := realtime.NewHub(e.cfg.Realtime.Buffer, e.log.Component("hub"))
	listener := postgres.NewListener(e.pool, e.cfg.Realtime.Channel, hub, e.log.Component("listener"))
	go func() {
		_ = listener.Run(ctx)
		hub.Close()
	}()
	waitCtx, cancel := context.WithTimeout(ctx, listenTimeout)
	defer cancel()
	if err := listener.WaitReady(waitCtx); err != nil {
		return nil, err
	}

	return workspace.Open(ctx, workspace.Deps{
		Employees: postgres.NewEmployeeRepository(e.pool),
		Shifts:    postgres.NewShiftRepository(e.pool),
		TimeOff:   postgres.NewTimeOffRepository(e.pool),
		Balances:  postgres.NewBalanceRepository(e.pool),
		Messages:  postgres.NewMessageRepository(e.pool),
		Profiles:  profiles,
		Feed:      hub,
		Notifier:  consoleNotifier(out),
		Log:       e.log,
	}, session)
}

func consoleNotifier(out io.Writer) livesync.Notifier {
	return livesync.NotifierFunc(func(n livesync.Notice) {
		fmt.Fprintf(out, "[%s] %s: %s\n", n.Level, n.Title, n.Message)
	})
}

// follow redibuja con cada cambio del estado hasta que ctx termine.
func follow(ctx context.Context, onChange func(func()), draw func()) {
	dirty := make(chan struct{}, 1)
	onChange(func() {
		select {
		case dirty <- struct{}{}:
		default:
		}
	})
	for {
		select {
		case <-ctx.Done():
			return
		case <-dirty:
			draw()
		}
	}
}

func printWeek(out io.Writer, week [7][]view.ShiftRow) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for day, rows := range week {
		fmt.Fprintf(tw, "%s\t\t\t\t\n", view.DayName(day))
		for _, r := range rows {
			end := r.EndLabel
			if end == "" {
				end = "abierto"
			}
			fmt.Fprintf(tw, "\t%s\t%s - %s\t%s\t%s\n", r.EmployeeName, r.StartLabel, end, r.Type, r.ID)
		}
	}
	_ = tw.Flush()
}

func preview(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func printConversations(out io.Writer, list []view.Conversation) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CON\tÚLTIMO\tSIN LEER\tFECHA")
	for _, c := range list {
		name := c.OtherName
		if name == "" {
			name = c.OtherID
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", name, preview(c.LatestMessage.Content, 40), c.UnreadCount,
			c.LatestMessage.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func newScheduleCmd(e *env) *cobra.Command {
	var as string
	var followFlag bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Muestra el horario semanal; con --follow se actualiza en vivo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			out := cmd.OutOrStdout()

			ws, err := openWorkspace(ctx, e, as, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()
			sched, err := ws.Schedule(ctx)
			if err != nil {
				return err
			}
			printWeek(out, sched.Week())
			if followFlag {
				follow(ctx, sched.OnChange, func() {
					fmt.Fprintln(out, "──")
					printWeek(out, sched.Week())
				})
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "ID del usuario que abre la sesión")
	cmd.Flags().BoolVar(&followFlag, "follow", false, "seguir cambios en vivo")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func newMoveShiftCmd(e *env) *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "move-shift SHIFT_ID DAY",
		Short: "Mueve un turno a otro día (0 = domingo … 6 = sábado)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("DAY %q: %w", args[1], domain.ErrInvalidDay)
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			ws, err := openWorkspace(ctx, e, as, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()
			sched, err := ws.Schedule(ctx)
			if err != nil {
				return err
			}
			if err := sched.MoveShift(ctx, args[0], day); err != nil {
				return err
			}
			printWeek(cmd.OutOrStdout(), sched.Week())
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "ID del usuario que abre la sesión")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func newInboxCmd(e *env) *cobra.Command {
	var as string
	var followFlag bool
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Muestra las conversaciones; con --follow se actualiza en vivo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			out := cmd.OutOrStdout()

			ws, err := openWorkspace(ctx, e, as, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()
			inbox, err := ws.Inbox(ctx)
			if err != nil {
				return err
			}
			draw := func() {
				printConversations(out, inbox.Conversations())
				fmt.Fprintf(out, "sin leer: %d\n", inbox.UnreadCount())
			}
			draw()
			if followFlag {
				follow(ctx, inbox.OnChange, func() {
					fmt.Fprintln(out, "──")
					draw()
				})
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "ID del usuario que abre la sesión")
	cmd.Flags().BoolVar(&followFlag, "follow", false, "seguir cambios en vivo")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}
