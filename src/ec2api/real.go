package ec2api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
)

// DefaultWaitTimeout matches the 40 attempts x 15s budget of the EC2
// instance-state waiters.
const DefaultWaitTimeout = 10 * time.Minute

const dryRunCode = "DryRunOperation"

// ConnectOptions selects the credentials and behaviour of a RealClient.
type ConnectOptions struct {
	Profile     string
	Region      string
	DryRun      bool
	WaitTimeout time.Duration
}

// ec2API is the subset of *ec2.Client used here; the paginators and waiters
// take the same narrow interfaces.
type ec2API interface {
	ec2.DescribeInstancesAPIClient
	ec2.DescribeVolumesAPIClient
	ec2.DescribeSnapshotsAPIClient
	StopInstances(ctx context.Context, in *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
	StartInstances(ctx context.Context, in *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	CreateSnapshot(ctx context.Context, in *ec2.CreateSnapshotInput, optFns ...func(*ec2.Options)) (*ec2.CreateSnapshotOutput, error)
}

var _ Client = (*RealClient)(nil)

// RealClient wraps the AWS SDK EC2 client.
type RealClient struct {
	c           ec2API
	dryRun      bool
	waitTimeout time.Duration
}

// Connect loads the shared AWS configuration for the given profile and
// region and returns a client bound to it.
func Connect(ctx context.Context, opts ConnectOptions) (*RealClient, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config (profile %q): %w", opts.Profile, err)
	}
	slog.Debug("connected to ec2",
		slog.String("profile", opts.Profile),
		slog.String("region", cfg.Region),
		slog.Bool("dryRun", opts.DryRun))
	return newRealClient(ec2.NewFromConfig(cfg), opts), nil
}

func newRealClient(c ec2API, opts ConnectOptions) *RealClient {
	timeout := opts.WaitTimeout
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	return &RealClient{c: c, dryRun: opts.DryRun, waitTimeout: timeout}
}

func (r *RealClient) ListInstances(ctx context.Context, filters ...Filter) ([]Instance, error) {
	in := &ec2.DescribeInstancesInput{}
	for _, f := range filters {
		in.Filters = append(in.Filters, types.Filter{Name: aws.String(f.Name), Values: f.Values})
	}
	var out []Instance
	p := ec2.NewDescribeInstancesPaginator(r.c, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, res := range page.Reservations {
			for _, i := range res.Instances {
				out = append(out, toInstance(i))
			}
		}
	}
	return out, nil
}

func (r *RealClient) GetInstance(ctx context.Context, id string) (Instance, error) {
	page, err := r.c.DescribeInstances(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{id}})
	if err != nil {
		return Instance{}, err
	}
	for _, res := range page.Reservations {
		if len(res.Instances) > 0 {
			return toInstance(res.Instances[0]), nil
		}
	}
	return Instance{}, fmt.Errorf("instance %s not found", id)
}

func (r *RealClient) StopInstance(ctx context.Context, id string) error {
	_, err := r.c.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{id},
		DryRun:      aws.Bool(r.dryRun),
	})
	return r.dryRunOK(err)
}

func (r *RealClient) StartInstance(ctx context.Context, id string) error {
	_, err := r.c.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{id},
		DryRun:      aws.Bool(r.dryRun),
	})
	return r.dryRunOK(err)
}

func (r *RealClient) WaitUntilStopped(ctx context.Context, id string) error {
	if r.dryRun {
		return nil
	}
	w := ec2.NewInstanceStoppedWaiter(r.c, func(o *ec2.InstanceStoppedWaiterOptions) {
		o.MinDelay = 15 * time.Second
	})
	if err := w.Wait(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{id}}, r.waitTimeout); err != nil {
		return fmt.Errorf("wait for %s to stop: %w", id, err)
	}
	return nil
}

func (r *RealClient) WaitUntilRunning(ctx context.Context, id string) error {
	if r.dryRun {
		return nil
	}
	w := ec2.NewInstanceRunningWaiter(r.c, func(o *ec2.InstanceRunningWaiterOptions) {
		o.MinDelay = 15 * time.Second
	})
	if err := w.Wait(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{id}}, r.waitTimeout); err != nil {
		return fmt.Errorf("wait for %s to run: %w", id, err)
	}
	return nil
}

func (r *RealClient) InstanceVolumes(ctx context.Context, instanceID string) ([]Volume, error) {
	in := &ec2.DescribeVolumesInput{
		Filters: []types.Filter{{Name: aws.String("attachment.instance-id"), Values: []string{instanceID}}},
	}
	var out []Volume
	p := ec2.NewDescribeVolumesPaginator(r.c, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, v := range page.Volumes {
			out = append(out, toVolume(v))
		}
	}
	return out, nil
}

func (r *RealClient) VolumeSnapshots(ctx context.Context, volumeID string) ([]Snapshot, error) {
	in := &ec2.DescribeSnapshotsInput{
		Filters: []types.Filter{{Name: aws.String("volume-id"), Values: []string{volumeID}}},
	}
	var out []Snapshot
	p := ec2.NewDescribeSnapshotsPaginator(r.c, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range page.Snapshots {
			out = append(out, toSnapshot(s))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *RealClient) CreateSnapshot(ctx context.Context, volumeID, description string) (Snapshot, error) {
	resp, err := r.c.CreateSnapshot(ctx, &ec2.CreateSnapshotInput{
		VolumeId:    aws.String(volumeID),
		Description: aws.String(description),
		DryRun:      aws.Bool(r.dryRun),
	})
	if err != nil {
		return Snapshot{}, r.dryRunOK(err)
	}
	return Snapshot{
		ID:          aws.ToString(resp.SnapshotId),
		VolumeID:    aws.ToString(resp.VolumeId),
		Description: aws.ToString(resp.Description),
		State:       string(resp.State),
		Progress:    aws.ToString(resp.Progress),
		StartTime:   aws.ToTime(resp.StartTime),
		Encrypted:   aws.ToBool(resp.Encrypted),
		Tags:        toTags(resp.Tags),
	}, nil
}

// dryRunOK turns the DryRunOperation response into success when dry-run is on.
func (r *RealClient) dryRunOK(err error) error {
	if err == nil || !r.dryRun {
		return err
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == dryRunCode {
		return nil
	}
	return err
}

func toInstance(i types.Instance) Instance {
	inst := Instance{
		ID:            aws.ToString(i.InstanceId),
		Type:          string(i.InstanceType),
		PublicDNSName: aws.ToString(i.PublicDnsName),
		Tags:          toTags(i.Tags),
	}
	if i.Placement != nil {
		inst.AvailabilityZone = aws.ToString(i.Placement.AvailabilityZone)
	}
	if i.State != nil {
		inst.State = string(i.State.Name)
	}
	return inst
}

func toVolume(v types.Volume) Volume {
	return Volume{
		ID:        aws.ToString(v.VolumeId),
		State:     string(v.State),
		SizeGiB:   aws.ToInt32(v.Size),
		Encrypted: aws.ToBool(v.Encrypted),
		Tags:      toTags(v.Tags),
	}
}

func toSnapshot(s types.Snapshot) Snapshot {
	return Snapshot{
		ID:          aws.ToString(s.SnapshotId),
		VolumeID:    aws.ToString(s.VolumeId),
		Description: aws.ToString(s.Description),
		State:       string(s.State),
		Progress:    aws.ToString(s.Progress),
		StartTime:   aws.ToTime(s.StartTime),
		Encrypted:   aws.ToBool(s.Encrypted),
		Tags:        toTags(s.Tags),
	}
}

func toTags(tags []types.Tag) Tags {
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		m[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return Tags{m: m}
}

func sortNewestFirst(snaps []Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].StartTime.After(snaps[j].StartTime) })
}
