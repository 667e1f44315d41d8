package fleet

import (
	"context"
	"fmt"
	"log/slog"

	"shotty/src/ec2api"
)

// SnapshotOptions controls SnapshotInstances.
type SnapshotOptions struct {
	Project string
	Verbose bool
}

// SnapshotInstances stops each filtered instance, snapshots every attached
// volume that has no snapshot in progress, then starts the instance again.
// Instances are handled one at a time.
//
// Only a rejected stop request is tolerated: it is reported and the instance
// is skipped. Failures while waiting, creating snapshots or starting end the
// run with the error.
func (o *Operator) SnapshotInstances(ctx context.Context, opts SnapshotOptions) ([]Result, error) {
	instances, err := o.FilterInstances(ctx, opts.Project)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(instances))
	for _, inst := range instances {
		ok, err := o.confirm("Stop, snapshot and restart instance " + inst.ID + "?")
		if err != nil {
			return results, err
		}
		if !ok {
			o.printf("Skipped snapshot of %s\n", inst.ID)
			results = append(results, Result{InstanceID: inst.ID, Action: ActionSnapshot, Skipped: true})
			continue
		}

		stop, err := o.transition(ctx, inst.ID, ActionStop)
		if err != nil {
			return results, err
		}
		if stop.Failed {
			results = append(results, stop)
			continue
		}

		if err := o.snapshotStopped(ctx, inst.ID, opts.Verbose); err != nil {
			return results, err
		}
		results = append(results, Result{InstanceID: inst.ID, Action: ActionSnapshot})
	}
	return results, nil
}

func (o *Operator) snapshotStopped(ctx context.Context, id string, verbose bool) error {
	if err := o.Client.WaitUntilStopped(ctx, id); err != nil {
		return err
	}
	if verbose {
		cur, err := o.Client.GetInstance(ctx, id)
		if err != nil {
			return fmt.Errorf("describe %s: %w", id, err)
		}
		o.printf("Instance %s is %s\n", id, cur.State)
	}

	volumes, err := o.Client.InstanceVolumes(ctx, id)
	if err != nil {
		return fmt.Errorf("list volumes of %s: %w", id, err)
	}
	for _, v := range volumes {
		pending, err := o.HasPendingSnapshot(ctx, v.ID)
		if err != nil {
			return err
		}
		if pending {
			o.printf("Snapshot of %s already in progress, skipping.\n", v.ID)
			continue
		}
		o.printf("Creating snapshot of %s\n", v.ID)
		snap, err := o.Client.CreateSnapshot(ctx, v.ID, SnapshotDescription)
		if err != nil {
			return fmt.Errorf("create snapshot of %s: %w", v.ID, err)
		}
		o.logger().Info("created snapshot",
			slog.String("instance", id),
			slog.String("volume", v.ID),
			slog.String("snapshot", snap.ID))
	}

	o.printf("Starting instance %s...\n", id)
	if err := o.Client.StartInstance(ctx, id); err != nil {
		return fmt.Errorf("start %s: %w", id, err)
	}
	return o.Client.WaitUntilRunning(ctx, id)
}

// HasPendingSnapshot reports whether the newest snapshot of the volume is
// still pending.
func (o *Operator) HasPendingSnapshot(ctx context.Context, volumeID string) (bool, error) {
	snaps, err := o.Client.VolumeSnapshots(ctx, volumeID)
	if err != nil {
		return false, fmt.Errorf("list snapshots of %s: %w", volumeID, err)
	}
	return len(snaps) > 0 && snaps[0].State == ec2api.SnapshotPending, nil
}
