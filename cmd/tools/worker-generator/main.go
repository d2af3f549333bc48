// cmd/tools/worker-generator/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lending-workers/pkg/registry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var activityID, outputDir, registryPath string
	var force bool

	cmd := &cobra.Command{
		Use:          "worker-generator",
		Short:        "Scaffold a job worker from its activity registry entry",
		Example:      `  worker-generator --activity record-funding`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("error loading registry from %s: %w", registryPath, err)
			}
			activity, ok := reg.Find(activityID)
			if !ok {
				return fmt.Errorf("activity %q not found in registry %s", activityID, registryPath)
			}

			dir, err := Generate(activity, outputDir, force)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Worker scaffold generated at: %s\n", dir)
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "  1. Implement execute in handler.go")
			fmt.Fprintln(out, "  2. Write tests in handler_test.go")
			fmt.Fprintln(out, "  3. Register the handler in cmd/worker-manager/main.go")
			fmt.Fprintln(out, "  4. Add the worker to configs/config.yaml")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&activityID, "activity", "", "Activity ID from registry (e.g., record-funding)")
	f.StringVar(&outputDir, "output", "./internal/workers/", "Output directory for the generated worker")
	f.StringVar(&registryPath, "registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	f.BoolVar(&force, "force", false, "Overwrite an existing worker directory")
	_ = cmd.MarkFlagRequired("activity")
	return cmd
}
