package cli

import (
	"os"

	"github.com/spf13/cobra"

	"shotty/src/config"
	"shotty/src/safety"
)

// addGlobalFlags adds persistent connection, logging and safety flags to the root command.
func addGlobalFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.PersistentFlags().String("profile", d.Profile, "AWS shared-config profile (env "+config.EnvProfile+")")
	cmd.PersistentFlags().String("region", "", "AWS region; defaults to the profile's region (env "+config.EnvRegion+")")
	cmd.PersistentFlags().String("log-level", d.LogLevel, "Diagnostic log level: debug|info|warn|error (env "+config.EnvLogLevel+")")
	cmd.PersistentFlags().Duration("wait-timeout", d.WaitTimeout, "Maximum time to wait for an instance to stop or start (env "+config.EnvWaitTimeout+")")
	cmd.PersistentFlags().Bool("dry-run", false, "Ask EC2 to validate state-changing requests without making changes")
	cmd.PersistentFlags().Bool("confirm", false, "Prompt before each state-changing action")
	cmd.PersistentFlags().BoolP("yes", "y", false, "Assume 'yes' to prompts and run non-interactively")
}

// getOptions resolves global flags, falling back to the environment and
// then to the defaults for flags left unset.
func getOptions(cmd *cobra.Command) (config.Options, error) {
	opts, err := config.Default().WithEnv(os.LookupEnv)
	if err != nil {
		return opts, err
	}
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("profile") {
		opts.Profile, _ = flags.GetString("profile")
	}
	if flags.Changed("region") {
		opts.Region, _ = flags.GetString("region")
	}
	if flags.Changed("log-level") {
		opts.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("wait-timeout") {
		opts.WaitTimeout, _ = flags.GetDuration("wait-timeout")
	}
	opts.DryRun, _ = flags.GetBool("dry-run")
	opts.Confirm, _ = flags.GetBool("confirm")
	opts.Yes, _ = flags.GetBool("yes")
	return opts, opts.Validate()
}

// safetyOptions maps the resolved options onto the prompt settings.
func safetyOptions(opts config.Options) safety.Options {
	return safety.Options{Prompt: opts.Confirm, Yes: opts.Yes, DryRun: opts.DryRun}
}
