package seqserver

import "sync/atomic"

// Stats counts server activity. All fields are updated atomically.
type Stats struct {
	accepted    atomic.Int64
	active      atomic.Int64
	completed   atomic.Int64
	truncated   atomic.Int64
	failed      atomic.Int64
	messagesIn  atomic.Int64
	messagesOut atomic.Int64
	bytesIn     atomic.Int64
	bytesOut    atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	ConnectionsAccepted int64 `json:"connections_accepted"`
	ConnectionsActive   int64 `json:"connections_active"`
	SequencesCompleted  int64 `json:"sequences_completed"`
	SequencesTruncated  int64 `json:"sequences_truncated"`
	SequencesFailed     int64 `json:"sequences_failed"`
	MessagesIn          int64 `json:"messages_in"`
	MessagesOut         int64 `json:"messages_out"`
	BytesIn             int64 `json:"bytes_in"`
	BytesOut            int64 `json:"bytes_out"`
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		ConnectionsAccepted: s.accepted.Load(),
		ConnectionsActive:   s.active.Load(),
		SequencesCompleted:  s.completed.Load(),
		SequencesTruncated:  s.truncated.Load(),
		SequencesFailed:     s.failed.Load(),
		MessagesIn:          s.messagesIn.Load(),
		MessagesOut:         s.messagesOut.Load(),
		BytesIn:             s.bytesIn.Load(),
		BytesOut:            s.bytesOut.Load(),
	}
}
