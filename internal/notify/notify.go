package notify

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/tabkeep/tabkeepd/internal/logger"
)

// Notifier surfaces user-facing notifications. Implementations must be
// best-effort: a failed notification never fails the operation that
// triggered it.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// ClosedTabsMessage is the notification body shown after an auto-close
// batch. One message per batch regardless of how many tabs closed.
func ClosedTabsMessage(n int) string {
	if n == 1 {
		return "Closed 1 inactive tab"
	}
	return fmt.Sprintf("Closed %d inactive tabs", n)
}

// LogNotifier writes notifications to the structured log. It is the
// fallback when no desktop notifier is configured.
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (n *LogNotifier) Notify(_ context.Context, message string) error {
	n.logger.Info("notification", logger.String("message", message))
	return nil
}

// ExecNotifier shells out to an external notifier binary (notify-send
// or similar) with the message as its single argument.
type ExecNotifier struct {
	command string
	logger  logger.Logger
}

func NewExecNotifier(command string, log logger.Logger) *ExecNotifier {
	return &ExecNotifier{command: command, logger: log}
}

func (n *ExecNotifier) Notify(ctx context.Context, message string) error {
	cmd := exec.CommandContext(ctx, n.command, message)
	if err := cmd.Run(); err != nil {
		n.logger.Warn("notifier command failed",
			logger.String("command", n.command),
			logger.Error(err))
		return fmt.Errorf("notifier %s: %w", n.command, err)
	}
	return nil
}
