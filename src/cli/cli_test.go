package cli_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotty/src/cli"
	"shotty/src/config"
	"shotty/src/ec2api"
	"shotty/src/version"
)

func fakeFleet() *ec2api.FakeClient {
	f := ec2api.NewFake()
	f.Now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	f.AddInstance(ec2api.Instance{
		ID: "i-1", Type: "t3.micro", AvailabilityZone: "us-east-1a", State: "running",
		PublicDNSName: "ec2-1.example", Tags: ec2api.NewTags(map[string]string{"Project": "web"}),
	}, ec2api.Volume{ID: "vol-1", State: "in-use", SizeGiB: 8, Tags: ec2api.NewTags(nil)})
	f.AddInstance(ec2api.Instance{
		ID: "i-2", Type: "m5.large", AvailabilityZone: "us-east-1b", State: "running",
		Tags: ec2api.NewTags(map[string]string{"Project": "db"}),
	})
	return f
}

// run executes the CLI against f and returns stdout.
func run(t *testing.T, f *ec2api.FakeClient, args ...string) (string, *config.Options, error) {
	t.Helper()
	var got config.Options
	reset := cli.SetClientFactoryForTest(func(_ context.Context, opts config.Options) (ec2api.Client, error) {
		got = opts
		return f, nil
	})
	defer reset()

	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	_, err := cmd.ExecuteC()
	return out.String(), &got, err
}

func TestRootHelp_ShowsUsage(t *testing.T) {
	var out bytes.Buffer
	cmd := cli.NewRootCmd(&out, nil)
	cmd.SetArgs([]string{"--help"})
	_, err := cmd.ExecuteC()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "shotty")
	for _, sub := range []string{"volumes", "snapshots", "instances"} {
		assert.Contains(t, out.String(), sub)
	}
}

func TestVersionCommand_PrintsVersion(t *testing.T) {
	out, _, err := run(t, fakeFleet(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, version.Version)
}

func TestGlobalFlags_Present(t *testing.T) {
	cmd := cli.NewRootCmd(nil, nil)
	for _, name := range []string{"profile", "region", "log-level", "wait-timeout", "dry-run", "confirm", "yes"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing global flag --%s", name)
	}
}

func TestGlobalFlags_ResolveIntoOptions(t *testing.T) {
	t.Setenv(config.EnvRegion, "eu-central-1")
	_, opts, err := run(t, fakeFleet(), "--profile", "ops", "--dry-run", "--wait-timeout", "2m", "instances", "list")
	require.NoError(t, err)
	assert.Equal(t, "ops", opts.Profile)
	assert.Equal(t, "eu-central-1", opts.Region)
	assert.True(t, opts.DryRun)
	assert.Equal(t, 2*time.Minute, opts.WaitTimeout)
}

func TestGlobalFlags_DefaultProfile(t *testing.T) {
	_, opts, err := run(t, fakeFleet(), "instances", "list")
	require.NoError(t, err)
	assert.Equal(t, "shotty", opts.Profile)
}

func TestInstancesList_Project(t *testing.T) {
	out, _, err := run(t, fakeFleet(), "instances", "list", "--project", "web")
	require.NoError(t, err)
	assert.Equal(t, "i-1, t3.micro, us-east-1a, running, ec2-1.example, web\n", out)
}

func TestVolumesList_Text(t *testing.T) {
	out, _, err := run(t, fakeFleet(), "volumes", "list")
	require.NoError(t, err)
	assert.Equal(t, "vol-1, i-1, in-use, 8GiB, Not Encrypted, <no project>\n", out)
}

func TestVolumesList_JSON(t *testing.T) {
	out, _, err := run(t, fakeFleet(), "volumes", "list", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"volumeId": "vol-1"`)
	assert.Contains(t, out, `"size": "8GiB"`)
}

func TestSnapshotsList_AllFlag(t *testing.T) {
	f := fakeFleet()
	f.Snapshots["vol-1"] = []ec2api.Snapshot{
		{ID: "snap-b", State: "completed", Progress: "100%", StartTime: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "snap-a", State: "completed", Progress: "100%", StartTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	out, _, err := run(t, f, "snapshots", "list")
	require.NoError(t, err)
	assert.Equal(t, "snap-b, vol-1, i-1, , completed, 100%, Thu Jan  2 00:00:00 2025, Not Encrypted, <no project>\n", out)

	out, _, err = run(t, f, "snapshots", "list", "--all", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "snapshotId: snap-b")
	assert.Contains(t, out, "snapshotId: snap-a")
}

func TestList_RejectsUnknownOutput(t *testing.T) {
	_, _, err := run(t, fakeFleet(), "instances", "list", "-o", "csv")
	assert.ErrorContains(t, err, "unsupported --output")
}

func TestInstancesStop_ReportsClientError(t *testing.T) {
	f := fakeFleet()
	f.StopErr["i-1"] = &ec2api.ClientError{Code: "IncorrectInstanceState", Message: "already stopping"}
	out, _, err := run(t, f, "instances", "stop")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Stopping instance i-1...",
		"Could not stop i-1. IncorrectInstanceState: already stopping",
		"Stopping instance i-2...",
	}, "\n")+"\n", out)
}

func TestInstancesStart_Project(t *testing.T) {
	f := fakeFleet()
	out, _, err := run(t, f, "instances", "start", "--project", "db")
	require.NoError(t, err)
	assert.Equal(t, "Starting instance i-2...\n", out)
	assert.Len(t, f.CallsFor("StartInstance"), 1)
}

func TestInstancesSnapshot_Scenario(t *testing.T) {
	f := fakeFleet()
	out, _, err := run(t, f, "instances", "snapshot", "--project", "web")
	require.NoError(t, err)
	assert.Equal(t, "Stopping instance i-1...\nCreating snapshot of vol-1\nStarting instance i-1...\n", out)
	calls := f.CallsFor("CreateSnapshot")
	require.Len(t, calls, 1)
	assert.Equal(t, "Created by AutoShotty", calls[0].Arg)
}

func TestInstancesSnapshot_ConfirmDeclined(t *testing.T) {
	f := fakeFleet()
	reset := cli.SetClientFactoryForTest(func(context.Context, config.Options) (ec2api.Client, error) { return f, nil })
	defer reset()

	var out bytes.Buffer
	cmd := cli.NewRootCmd(&out, nil)
	cmd.SetIn(strings.NewReader("n\n"))
	cmd.SetArgs([]string{"--confirm", "instances", "snapshot", "--project", "web"})
	_, err := cmd.ExecuteC()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Stop, snapshot and restart instance i-1? [y/N]: ")
	assert.Contains(t, out.String(), "Skipped snapshot of i-1")
	assert.Empty(t, f.CallsFor("StopInstance"))
}

func TestClientFactoryError(t *testing.T) {
	reset := cli.SetClientFactoryForTest(func(context.Context, config.Options) (ec2api.Client, error) {
		return nil, errors.New("failed to get shared config profile, shotty")
	})
	defer reset()
	cmd := cli.NewRootCmd(nil, nil)
	cmd.SetArgs([]string{"volumes", "list"})
	_, err := cmd.ExecuteC()
	assert.ErrorContains(t, err, "shared config profile")
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := run(t, fakeFleet(), "--log-level", "loud", "instances", "list")
	assert.ErrorContains(t, err, "invalid log level")
}
