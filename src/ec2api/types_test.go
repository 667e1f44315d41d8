package ec2api_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotty/src/ec2api"
)

func TestTags_GetAndImmutability(t *testing.T) {
	src := map[string]string{"Project": "web"}
	tags := ec2api.NewTags(src)
	src["Project"] = "changed"

	assert.Equal(t, "web", tags.Get("Project", "<none>"))
	assert.Equal(t, "<none>", tags.Get("Owner", "<none>"))
	_, ok := tags.Lookup("Owner")
	assert.False(t, ok)
	assert.Equal(t, 1, tags.Len())

	var zero ec2api.Tags
	assert.Equal(t, "d", zero.Get("Project", "d"))
}

func TestIsClientError(t *testing.T) {
	ce := &ec2api.ClientError{Code: "IncorrectInstanceState", Message: "nope"}
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"client error", ce, true},
		{"wrapped", fmt.Errorf("stop i-1: %w", ce), true},
		{"generic api error", &smithy.GenericAPIError{Code: "UnauthorizedOperation", Message: "denied"}, true},
		{"transport", errors.New("connection reset"), false},
		{"context", context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ec2api.IsClientError(tt.err))
		})
	}
}

func TestErrorReason(t *testing.T) {
	ce := &ec2api.ClientError{Code: "IncorrectInstanceState", Message: "nope"}
	assert.Equal(t, "IncorrectInstanceState: nope", ec2api.ErrorReason(fmt.Errorf("x: %w", ce)))
	assert.Equal(t, "boom", ec2api.ErrorReason(errors.New("boom")))
}

func TestFakeClient_FilterAndLifecycle(t *testing.T) {
	ctx := context.Background()
	f := ec2api.NewFake()
	f.AddInstance(ec2api.Instance{ID: "i-1", State: "running", Tags: ec2api.NewTags(map[string]string{"Project": "web"})},
		ec2api.Volume{ID: "vol-1"})
	f.AddInstance(ec2api.Instance{ID: "i-2", State: "stopped", Tags: ec2api.NewTags(nil)})

	all, err := f.ListInstances(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	web, err := f.ListInstances(ctx, ec2api.TagFilter("Project", "web"))
	require.NoError(t, err)
	require.Len(t, web, 1)
	assert.Equal(t, "i-1", web[0].ID)

	stopped, err := f.ListInstances(ctx, ec2api.Filter{Name: "instance-state-name", Values: []string{"stopped"}})
	require.NoError(t, err)
	require.Len(t, stopped, 1)
	assert.Equal(t, "i-2", stopped[0].ID)

	_, err = f.ListInstances(ctx, ec2api.Filter{Name: "vpc-id", Values: []string{"vpc-1"}})
	assert.True(t, ec2api.IsClientError(err))

	require.NoError(t, f.StopInstance(ctx, "i-1"))
	require.NoError(t, f.WaitUntilStopped(ctx, "i-1"))
	got, err := f.GetInstance(ctx, "i-1")
	require.NoError(t, err)
	assert.Equal(t, ec2api.InstanceStopped, got.State)

	err = f.StartInstance(ctx, "i-404")
	assert.True(t, ec2api.IsClientError(err))
}

func TestFakeClient_CreateSnapshotIsNewest(t *testing.T) {
	ctx := context.Background()
	f := ec2api.NewFake()
	f.Snapshots["vol-1"] = []ec2api.Snapshot{{ID: "snap-old", State: ec2api.SnapshotCompleted}}

	s, err := f.CreateSnapshot(ctx, "vol-1", "Created by AutoShotty")
	require.NoError(t, err)
	assert.Equal(t, ec2api.SnapshotPending, s.State)

	snaps, err := f.VolumeSnapshots(ctx, "vol-1")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, s.ID, snaps[0].ID)
	assert.Equal(t, "snap-old", snaps[1].ID)
	assert.Equal(t, "CreateSnapshot vol-1 Created by AutoShotty", f.CallsFor("CreateSnapshot")[0].String())
}
