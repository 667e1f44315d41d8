package ec2api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/smithy-go"
)

// Lifecycle states the fleet workflows care about.
const (
	InstanceRunning = "running"
	InstanceStopped = "stopped"

	SnapshotPending   = "pending"
	SnapshotCompleted = "completed"
)

// Tags is a read-only view over a resource's key/value tag set.
type Tags struct {
	m map[string]string
}

// NewTags copies kv into a new tag set.
func NewTags(kv map[string]string) Tags {
	m := make(map[string]string, len(kv))
	for k, v := range kv {
		m[k] = v
	}
	return Tags{m: m}
}

// Get returns the value for key, or def when the tag is absent.
func (t Tags) Get(key, def string) string {
	if v, ok := t.m[key]; ok {
		return v
	}
	return def
}

// Lookup reports the value for key and whether it was present.
func (t Tags) Lookup(key string) (string, bool) {
	v, ok := t.m[key]
	return v, ok
}

func (t Tags) Len() int { return len(t.m) }

// Instance models the EC2 instance fields shotty reads.
type Instance struct {
	ID               string
	Type             string
	AvailabilityZone string
	State            string
	PublicDNSName    string
	Tags             Tags
}

// Volume is an EBS volume attached to an instance.
type Volume struct {
	ID        string
	State     string
	SizeGiB   int32
	Encrypted bool
	Tags      Tags
}

// Snapshot is a point-in-time copy of a volume.
type Snapshot struct {
	ID          string
	VolumeID    string
	Description string
	State       string
	Progress    string
	StartTime   time.Time
	Encrypted   bool
	Tags        Tags
}

// Filter is a server-side DescribeInstances filter, e.g. Name "tag:Project".
type Filter struct {
	Name   string
	Values []string
}

// TagFilter matches resources whose tag key equals value exactly.
func TagFilter(key, value string) Filter {
	return Filter{Name: "tag:" + key, Values: []string{value}}
}

// Client is a narrow interface over the EC2 API used by our app.
// Keep it small and focused on what we actually need so it stays mockable.
type Client interface {
	// Instances
	ListInstances(ctx context.Context, filters ...Filter) ([]Instance, error)
	GetInstance(ctx context.Context, id string) (Instance, error)
	StopInstance(ctx context.Context, id string) error
	StartInstance(ctx context.Context, id string) error
	WaitUntilStopped(ctx context.Context, id string) error
	WaitUntilRunning(ctx context.Context, id string) error

	// Volumes, in attachment order
	InstanceVolumes(ctx context.Context, instanceID string) ([]Volume, error)

	// Snapshots, newest first
	VolumeSnapshots(ctx context.Context, volumeID string) ([]Snapshot, error)
	CreateSnapshot(ctx context.Context, volumeID, description string) (Snapshot, error)
}

// ClientError is a request the service rejected, e.g. stopping an instance
// that is not in a stoppable state. It satisfies smithy.APIError so fakes and
// the real SDK are classified the same way.
type ClientError struct {
	Code    string
	Message string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("api error %s: %s", e.Code, e.Message)
}

func (e *ClientError) ErrorCode() string             { return e.Code }
func (e *ClientError) ErrorMessage() string          { return e.Message }
func (e *ClientError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

// IsClientError reports whether err is an error response returned by the
// service, as opposed to a transport, credential or context failure.
func IsClientError(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr)
}

// ErrorReason renders err compactly for console output. Service errors are
// shown as "<code>: <message>".
func ErrorReason(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() + ": " + apiErr.ErrorMessage()
	}
	return err.Error()
}
