// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package twitch

import (
	"fmt"
	"strings"
)

// An Event reports that a watched channel has started streaming.
type Event struct {
	Stream

	Icon string // local path of the channel logo, or "" if none is cached
}

// Title returns the headline of a notification for e.
func (e Event) Title() string { return fmt.Sprintf("%s started streaming", e.Label()) }

// Message returns the body of a notification for e.
func (e Event) Message() string { return fmt.Sprintf("Playing: %s", e.Game) }

// ChannelStatus is the state of one watched channel after an update.
type ChannelStatus struct {
	Name   string
	Online bool
	Stream Stream // the most recent stream; zero if never seen online
}

// A Roster tracks the online state of a fixed set of channels across polls.
// A Roster is not safe for concurrent use.
type Roster struct {
	channels []*channel
}

type channel struct {
	name      string
	online    bool
	wasOnline bool
	last      Stream
}

// NewRoster constructs a Roster watching the named channels. Names are
// matched case-insensitively and duplicates are ignored.
func NewRoster(names []string) *Roster {
	r := new(Roster)
	for _, name := range names {
		if name == "" || r.find(name) != nil {
			continue
		}
		r.channels = append(r.channels, &channel{name: name})
	}
	return r
}

// Channels returns the names of the watched channels, in order.
func (r *Roster) Channels() []string {
	out := make([]string, len(r.channels))
	for i, c := range r.channels {
		out[i] = c.name
	}
	return out
}

// Update records the streams reported by one poll. Watched channels not
// listed in streams are offline. Update returns an event for each watched
// channel that was offline at the previous update and is now online.
func (r *Roster) Update(streams []Stream) []Event {
	for _, c := range r.channels {
		c.online = false
	}
	var events []Event
	for _, s := range streams {
		c := r.find(s.Name)
		if c == nil || c.online {
			continue
		}
		c.online = true
		c.last = s
		if !c.wasOnline {
			events = append(events, Event{Stream: s})
		}
	}
	for _, c := range r.channels {
		c.wasOnline = c.online
	}
	return events
}

// Online returns the names of the channels online at the last update.
func (r *Roster) Online() []string {
	var out []string
	for _, c := range r.channels {
		if c.online {
			out = append(out, c.name)
		}
	}
	return out
}

// Status reports the state of every watched channel, in order.
func (r *Roster) Status() []ChannelStatus {
	out := make([]ChannelStatus, len(r.channels))
	for i, c := range r.channels {
		out[i] = ChannelStatus{Name: c.name, Online: c.online, Stream: c.last}
	}
	return out
}

func (r *Roster) find(name string) *channel {
	for _, c := range r.channels {
		if strings.EqualFold(c.name, name) {
			return c
		}
	}
	return nil
}
