package ec2api

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Call records a single request made against the FakeClient.
type Call struct {
	Op  string
	ID  string
	Arg string
}

func (c Call) String() string {
	if c.Arg == "" {
		return c.Op + " " + c.ID
	}
	return c.Op + " " + c.ID + " " + c.Arg
}

var _ Client = (*FakeClient)(nil)

// FakeClient is an in-memory implementation for unit tests.
type FakeClient struct {
	Instances []Instance            // listing order
	Volumes   map[string][]Volume   // instance ID -> attachment order
	Snapshots map[string][]Snapshot // volume ID -> newest first

	// Errors injected per instance or volume ID.
	StopErr           map[string]error
	StartErr          map[string]error
	WaitErr           map[string]error
	CreateSnapshotErr map[string]error

	Calls []Call
	Now   func() time.Time

	seq int
}

func NewFake() *FakeClient {
	return &FakeClient{
		Volumes:           map[string][]Volume{},
		Snapshots:         map[string][]Snapshot{},
		StopErr:           map[string]error{},
		StartErr:          map[string]error{},
		WaitErr:           map[string]error{},
		CreateSnapshotErr: map[string]error{},
		Now:               time.Now,
	}
}

// AddInstance appends an instance together with its attached volumes.
func (f *FakeClient) AddInstance(inst Instance, volumes ...Volume) {
	f.Instances = append(f.Instances, inst)
	f.Volumes[inst.ID] = append(f.Volumes[inst.ID], volumes...)
}

// CallsFor returns the recorded calls with the given operation name.
func (f *FakeClient) CallsFor(op string) []Call {
	var out []Call
	for _, c := range f.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeClient) record(op, id, arg string) {
	f.Calls = append(f.Calls, Call{Op: op, ID: id, Arg: arg})
}

func (f *FakeClient) ListInstances(_ context.Context, filters ...Filter) ([]Instance, error) {
	f.record("ListInstances", "", filterString(filters))
	out := make([]Instance, 0, len(f.Instances))
	for _, inst := range f.Instances {
		ok, err := matches(inst, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (f *FakeClient) GetInstance(_ context.Context, id string) (Instance, error) {
	f.record("GetInstance", id, "")
	i, err := f.index(id)
	if err != nil {
		return Instance{}, err
	}
	return f.Instances[i], nil
}

func (f *FakeClient) StopInstance(_ context.Context, id string) error {
	f.record("StopInstance", id, "")
	if err := f.StopErr[id]; err != nil {
		return err
	}
	return f.setState(id, "stopping")
}

func (f *FakeClient) StartInstance(_ context.Context, id string) error {
	f.record("StartInstance", id, "")
	if err := f.StartErr[id]; err != nil {
		return err
	}
	return f.setState(id, "pending")
}

func (f *FakeClient) WaitUntilStopped(_ context.Context, id string) error {
	f.record("WaitUntilStopped", id, "")
	if err := f.WaitErr[id]; err != nil {
		return err
	}
	return f.setState(id, InstanceStopped)
}

func (f *FakeClient) WaitUntilRunning(_ context.Context, id string) error {
	f.record("WaitUntilRunning", id, "")
	if err := f.WaitErr[id]; err != nil {
		return err
	}
	return f.setState(id, InstanceRunning)
}

func (f *FakeClient) InstanceVolumes(_ context.Context, instanceID string) ([]Volume, error) {
	f.record("InstanceVolumes", instanceID, "")
	if _, err := f.index(instanceID); err != nil {
		return nil, err
	}
	return append([]Volume(nil), f.Volumes[instanceID]...), nil
}

func (f *FakeClient) VolumeSnapshots(_ context.Context, volumeID string) ([]Snapshot, error) {
	f.record("VolumeSnapshots", volumeID, "")
	return append([]Snapshot(nil), f.Snapshots[volumeID]...), nil
}

func (f *FakeClient) CreateSnapshot(_ context.Context, volumeID, description string) (Snapshot, error) {
	f.record("CreateSnapshot", volumeID, description)
	if err := f.CreateSnapshotErr[volumeID]; err != nil {
		return Snapshot{}, err
	}
	f.seq++
	s := Snapshot{
		ID:          fmt.Sprintf("snap-fake%04d", f.seq),
		VolumeID:    volumeID,
		Description: description,
		State:       SnapshotPending,
		Progress:    "0%",
		StartTime:   f.Now().UTC(),
		Tags:        NewTags(nil),
	}
	// mimic EC2 ordering: newest first
	f.Snapshots[volumeID] = append([]Snapshot{s}, f.Snapshots[volumeID]...)
	return s, nil
}

func (f *FakeClient) index(id string) (int, error) {
	for i := range f.Instances {
		if f.Instances[i].ID == id {
			return i, nil
		}
	}
	return -1, &ClientError{Code: "InvalidInstanceID.NotFound", Message: "The instance ID '" + id + "' does not exist"}
}

func (f *FakeClient) setState(id, state string) error {
	i, err := f.index(id)
	if err != nil {
		return err
	}
	f.Instances[i].State = state
	return nil
}

func matches(inst Instance, filters []Filter) (bool, error) {
	for _, flt := range filters {
		var have string
		var ok bool
		switch {
		case strings.HasPrefix(flt.Name, "tag:"):
			have, ok = inst.Tags.Lookup(strings.TrimPrefix(flt.Name, "tag:"))
		case flt.Name == "instance-state-name":
			have, ok = inst.State, true
		default:
			return false, &ClientError{Code: "InvalidParameterValue", Message: "unsupported filter " + flt.Name}
		}
		if !ok || !contains(flt.Values, have) {
			return false, nil
		}
	}
	return true, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func filterString(filters []Filter) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		parts = append(parts, f.Name+"="+strings.Join(f.Values, ","))
	}
	return strings.Join(parts, ";")
}
