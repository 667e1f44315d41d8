// Package fleet lists and operates on the EC2 instances, volumes and
// snapshots selected by a project tag.
package fleet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"shotty/src/ec2api"
)

const (
	// ProjectTag is the tag key used to group resources.
	ProjectTag = "Project"
	// NoProject is rendered when a resource has no ProjectTag.
	NoProject = "<no project>"
	// SnapshotDescription is set on every snapshot the orchestrator creates.
	SnapshotDescription = "Created by AutoShotty"
)

// ConfirmFunc asks whether a state-changing action should go ahead.
type ConfirmFunc func(question string) (bool, error)

// Operator runs the fleet workflows against one EC2 client. Announcements
// and listing lines are written to Out; diagnostics go to Log.
type Operator struct {
	Client  ec2api.Client
	Out     io.Writer
	Log     *slog.Logger
	Confirm ConfirmFunc
}

// NewOperator returns an Operator that never prompts and logs to the
// default slog logger.
func NewOperator(client ec2api.Client, out io.Writer) *Operator {
	if out == nil {
		out = io.Discard
	}
	return &Operator{Client: client, Out: out, Log: slog.Default()}
}

// FilterInstances returns the instances tagged Project=project, or every
// instance when project is empty. Each call re-queries EC2.
func (o *Operator) FilterInstances(ctx context.Context, project string) ([]ec2api.Instance, error) {
	var filters []ec2api.Filter
	if project != "" {
		filters = append(filters, ec2api.TagFilter(ProjectTag, project))
	}
	instances, err := o.Client.ListInstances(ctx, filters...)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	o.logger().Debug("filtered instances",
		slog.String("project", project),
		slog.Int("count", len(instances)))
	return instances, nil
}

func (o *Operator) confirm(question string) (bool, error) {
	if o.Confirm == nil {
		return true, nil
	}
	return o.Confirm(question)
}

func (o *Operator) logger() *slog.Logger {
	if o.Log == nil {
		return slog.Default()
	}
	return o.Log
}

func (o *Operator) printf(format string, args ...any) {
	fmt.Fprintf(o.Out, format, args...)
}

func projectOf(tags ec2api.Tags) string {
	return tags.Get(ProjectTag, NoProject)
}

func encryptionLabel(encrypted bool) string {
	if encrypted {
		return "Encrypted"
	}
	return "Not Encrypted"
}

// formatStartTime renders t in the C-locale "%c" layout, in UTC.
func formatStartTime(t time.Time) string {
	return t.UTC().Format(time.ANSIC)
}
