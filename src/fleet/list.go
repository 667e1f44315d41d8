package fleet

import (
	"context"
	"fmt"
	"strconv"

	"shotty/src/ec2api"
)

// Column headings for the table renderer, in Fields() order.
var (
	VolumeHeaders   = []string{"VOLUME", "INSTANCE", "STATE", "SIZE", "ENCRYPTION", "PROJECT"}
	SnapshotHeaders = []string{"SNAPSHOT", "VOLUME", "INSTANCE", "DESCRIPTION", "STATE", "PROGRESS", "STARTED", "ENCRYPTION", "PROJECT"}
	InstanceHeaders = []string{"INSTANCE", "TYPE", "ZONE", "STATE", "PUBLIC DNS", "PROJECT"}
)

// VolumeRow is one line of `volumes list`.
type VolumeRow struct {
	VolumeID   string `json:"volumeId" yaml:"volumeId"`
	InstanceID string `json:"instanceId" yaml:"instanceId"`
	State      string `json:"state" yaml:"state"`
	Size       string `json:"size" yaml:"size"`
	Encryption string `json:"encryption" yaml:"encryption"`
	Project    string `json:"project" yaml:"project"`
}

func (r VolumeRow) Fields() []string {
	return []string{r.VolumeID, r.InstanceID, r.State, r.Size, r.Encryption, r.Project}
}

// SnapshotRow is one line of `snapshots list`.
type SnapshotRow struct {
	SnapshotID  string `json:"snapshotId" yaml:"snapshotId"`
	VolumeID    string `json:"volumeId" yaml:"volumeId"`
	InstanceID  string `json:"instanceId" yaml:"instanceId"`
	Description string `json:"description" yaml:"description"`
	State       string `json:"state" yaml:"state"`
	Progress    string `json:"progress" yaml:"progress"`
	StartTime   string `json:"startTime" yaml:"startTime"`
	Encryption  string `json:"encryption" yaml:"encryption"`
	Project     string `json:"project" yaml:"project"`
}

func (r SnapshotRow) Fields() []string {
	return []string{r.SnapshotID, r.VolumeID, r.InstanceID, r.Description, r.State, r.Progress, r.StartTime, r.Encryption, r.Project}
}

// InstanceRow is one line of `instances list`.
type InstanceRow struct {
	InstanceID       string `json:"instanceId" yaml:"instanceId"`
	InstanceType     string `json:"instanceType" yaml:"instanceType"`
	AvailabilityZone string `json:"availabilityZone" yaml:"availabilityZone"`
	State            string `json:"state" yaml:"state"`
	PublicDNSName    string `json:"publicDnsName" yaml:"publicDnsName"`
	Project          string `json:"project" yaml:"project"`
}

func (r InstanceRow) Fields() []string {
	return []string{r.InstanceID, r.InstanceType, r.AvailabilityZone, r.State, r.PublicDNSName, r.Project}
}

// ListVolumes emits one row per volume attached to each filtered instance.
func (o *Operator) ListVolumes(ctx context.Context, project string, emit func(VolumeRow) error) error {
	instances, err := o.FilterInstances(ctx, project)
	if err != nil {
		return err
	}
	for _, inst := range instances {
		volumes, err := o.Client.InstanceVolumes(ctx, inst.ID)
		if err != nil {
			return fmt.Errorf("list volumes of %s: %w", inst.ID, err)
		}
		for _, v := range volumes {
			row := VolumeRow{
				VolumeID:   v.ID,
				InstanceID: inst.ID,
				State:      v.State,
				Size:       strconv.Itoa(int(v.SizeGiB)) + "GiB",
				Encryption: encryptionLabel(v.Encrypted),
				Project:    projectOf(v.Tags),
			}
			if err := emit(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// SnapshotListOptions controls ListSnapshots.
type SnapshotListOptions struct {
	Project string
	// All lists every snapshot instead of stopping at the newest completed one.
	All bool
}

// ListSnapshots emits snapshots newest first for every volume of the
// filtered instances. Unless opts.All is set, a volume's listing ends after
// its first completed snapshot.
func (o *Operator) ListSnapshots(ctx context.Context, opts SnapshotListOptions, emit func(SnapshotRow) error) error {
	instances, err := o.FilterInstances(ctx, opts.Project)
	if err != nil {
		return err
	}
	for _, inst := range instances {
		volumes, err := o.Client.InstanceVolumes(ctx, inst.ID)
		if err != nil {
			return fmt.Errorf("list volumes of %s: %w", inst.ID, err)
		}
		for _, v := range volumes {
			snaps, err := o.Client.VolumeSnapshots(ctx, v.ID)
			if err != nil {
				return fmt.Errorf("list snapshots of %s: %w", v.ID, err)
			}
			for _, s := range snaps {
				row := SnapshotRow{
					SnapshotID:  s.ID,
					VolumeID:    v.ID,
					InstanceID:  inst.ID,
					Description: s.Description,
					State:       s.State,
					Progress:    s.Progress,
					StartTime:   formatStartTime(s.StartTime),
					Encryption:  encryptionLabel(s.Encrypted),
					Project:     projectOf(s.Tags),
				}
				if err := emit(row); err != nil {
					return err
				}
				if s.State == ec2api.SnapshotCompleted && !opts.All {
					break
				}
			}
		}
	}
	return nil
}

// ListInstances emits one row per filtered instance.
func (o *Operator) ListInstances(ctx context.Context, project string, emit func(InstanceRow) error) error {
	instances, err := o.FilterInstances(ctx, project)
	if err != nil {
		return err
	}
	for _, inst := range instances {
		row := InstanceRow{
			InstanceID:       inst.ID,
			InstanceType:     inst.Type,
			AvailabilityZone: inst.AvailabilityZone,
			State:            inst.State,
			PublicDNSName:    inst.PublicDNSName,
			Project:          projectOf(inst.Tags),
		}
		if err := emit(row); err != nil {
			return err
		}
	}
	return nil
}
