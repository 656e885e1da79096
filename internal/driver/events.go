package driver

// Status tracks one resolution request through the pipeline.
type Status uint8

const (
	StatusQueued Status = iota
	StatusResolving
	StatusDone
	StatusError
)

// Event reports a status change for one request, identified by its index in
// the submitted batch.
type Event struct {
	Index  int
	Label  string
	Status Status
}

// Sink consumes progress events.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
