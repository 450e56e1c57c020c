package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"aficionado-be/pkg/events"
	pktNats "aficionado-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// addEventCommands adds the workspace event tail
func (app *App) addEventCommands(rootCmd *cobra.Command) {
	var durable string

	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Tail workspace events from NATS",
		Long: `Print workspace events (uploads, deletions, example copies, saved responses)
as they are published. Requires NATS_URL.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sub, err := pktNats.NewSubscriber(app.Config.App.NatsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = sub.Subscribe(ctx, pktNats.SubjectPrefix+".>", durable, func(_ context.Context, event events.Event) error {
				app.printEvent(event)
				return nil
			})
			if err != nil {
				return err
			}

			app.warn("Listening for workspace events, Ctrl+C to stop")
			<-ctx.Done()
			return nil
		},
	}
	eventsCmd.Flags().StringVar(&durable, "durable", "", "Durable consumer name (replays missed events)")

	rootCmd.AddCommand(eventsCmd)
}

func (app *App) printEvent(event events.Event) {
	payload := event.Payload()
	fmt.Fprintf(app.Out, "%s %s %v %v\n",
		event.Timestamp().Local().Format(time.DateTime),
		color.CyanString("%-18s", event.EventType()),
		payload["username"],
		payload["files"],
	)
}
