package out

import (
	"context"

	"github.com/gen2brain/beeep"

	trackerout "onehour/internal/modules/tracker/port/out"
)

type DesktopNotifier struct{}

func NewDesktopNotifier() trackerout.Notifier {
	return DesktopNotifier{}
}

func (DesktopNotifier) Notify(_ context.Context, title, message string) error {
	return beeep.Notify(title, message, "")
}
