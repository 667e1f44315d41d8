package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"shotty/src/config"
	"shotty/src/ec2api"
	"shotty/src/fleet"
	"shotty/src/safety"
)

type clientFactoryFunc func(context.Context, config.Options) (ec2api.Client, error)

var newClientFn clientFactoryFunc = connectEC2

func connectEC2(ctx context.Context, opts config.Options) (ec2api.Client, error) {
	return ec2api.Connect(ctx, ec2api.ConnectOptions{
		Profile:     opts.Profile,
		Region:      opts.Region,
		DryRun:      opts.DryRun,
		WaitTimeout: opts.WaitTimeout,
	})
}

// SetClientFactoryForTest allows tests to replace the EC2 connection with a
// fake. The returned function restores the previous factory.
func SetClientFactoryForTest(fn func(context.Context, config.Options) (ec2api.Client, error)) func() {
	prev := newClientFn
	newClientFn = fn
	return func() {
		newClientFn = prev
	}
}

// newOperator resolves the global options, connects to EC2 and returns the
// command context with an operator writing to stdout.
func newOperator(cmd *cobra.Command, stdout io.Writer) (context.Context, *fleet.Operator, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := getOptions(cmd)
	if err != nil {
		return ctx, nil, err
	}
	client, err := newClientFn(ctx, opts)
	if err != nil {
		return ctx, nil, err
	}
	op := fleet.NewOperator(client, stdout)
	if sopts := safetyOptions(opts); sopts.Prompt {
		op.Confirm = safety.NewPrompter(sopts, cmd.InOrStdin(), stdout).Confirm
	}
	return ctx, op, nil
}
