// Package metrics maps session and submission events onto StatsD metrics.
package metrics

import (
	"time"

	"github.com/target/profilegate/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultRejected = "rejected"
	ResultDropped  = "superseded"
)

// Resolution sources.
const (
	SourceRole   = "role"
	SourceHint   = "hint"
	SourceCache  = "cache"
	SourceRemote = "remote"
)

// ResolutionMetric describes one completeness resolution.
type ResolutionMetric struct {
	Role       string
	Source     string
	Completion string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitResolution emits session.resolve and session.resolve.duration.
func EmitResolution(sink statsd.Sink, in ResolutionMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"role":       in.Role,
		"source":     in.Source,
		"completion": in.Completion,
		"result":     in.Result,
	}
	if class := Classify(in.Err); class != "" {
		tags["error_class"] = class
	}
	sink.Count("session.resolve", 1, tags)
	if in.Duration > 0 {
		sink.Timing("session.resolve.duration", in.Duration, CloneTags(tags))
	}
}

// EmitTransition emits session.transition for login, logout and rehydrate.
func EmitTransition(sink statsd.Sink, transition, role string) {
	if sink == nil {
		return
	}
	sink.Count("session.transition", 1, map[string]string{"transition": transition, "role": role})
}

// SubmissionMetric describes one profile submission attempt.
type SubmissionMetric struct {
	Role     string
	Result   string
	Parts    int
	Bytes    int
	Warnings int
	Duration time.Duration
	Err      error
}

// EmitSubmission emits profile.submit plus size and duration metrics.
func EmitSubmission(sink statsd.Sink, in SubmissionMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"role": in.Role, "result": in.Result}
	if class := Classify(in.Err); class != "" && in.Result != ResultSuccess {
		tags["error_class"] = class
	}
	sink.Count("profile.submit", 1, tags)
	if in.Result == ResultSuccess {
		sink.Gauge("profile.submit.parts", float64(in.Parts), CloneTags(tags))
		sink.Gauge("profile.submit.bytes", float64(in.Bytes), CloneTags(tags))
	}
	if in.Warnings > 0 {
		sink.Count("profile.submit.attachment_dropped", int64(in.Warnings), CloneTags(tags))
	}
	if in.Duration > 0 {
		sink.Timing("profile.submit.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
