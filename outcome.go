package download_prompt

import (
	"fmt"
	"time"

	"github.com/alanbriolat/download-prompt/generic"
)

// OutcomeSink is the backend that receives exactly one outcome per session.
type OutcomeSink interface {
	OnComplete(path string, onlyOnWifi bool, startTime generic.Option[time.Time])
	OnCancel()
}

// Outcome is the terminal result of a session: either Complete (Cancelled == false) or Cancelled.
type Outcome struct {
	Cancelled  bool
	Path       string
	OnlyOnWifi bool
	StartTime  generic.Option[time.Time]
}

func Complete(path string, choice SchedulingChoice) Outcome {
	return Outcome{
		Path:       path,
		OnlyOnWifi: choice.OnlyOnWifi(),
		StartTime:  choice.StartTime(),
	}
}

func Cancelled() Outcome {
	return Outcome{Cancelled: true}
}

// Deliver reports the outcome to sink.
func (o Outcome) Deliver(sink OutcomeSink) {
	if o.Cancelled {
		sink.OnCancel()
	} else {
		sink.OnComplete(o.Path, o.OnlyOnWifi, o.StartTime)
	}
}

func (o Outcome) String() string {
	if o.Cancelled {
		return "Cancelled"
	}
	return fmt.Sprintf("Complete{Path:%q, OnlyOnWifi:%v, StartTime:%v}", o.Path, o.OnlyOnWifi, o.StartTime)
}

// SinkFunc adapts a function to OutcomeSink.
type SinkFunc func(Outcome)

func (f SinkFunc) OnComplete(path string, onlyOnWifi bool, startTime generic.Option[time.Time]) {
	f(Outcome{Path: path, OnlyOnWifi: onlyOnWifi, StartTime: startTime})
}

func (f SinkFunc) OnCancel() {
	f(Cancelled())
}
