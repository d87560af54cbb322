package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the coursemate version",
	Long:  "Print the coursemate version with the Go toolchain and commit it was built from.",
	Run:   runVersion,
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version number")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) {
	if short, _ := cmd.Flags().GetBool("short"); short {
		cmd.Println(version)
		return
	}
	cmd.Printf("coursemate version %s (%s)\n", version, runtime.Version())
	if rev := buildRevision(); rev != "" {
		cmd.Printf("commit %s\n", rev)
	}
}

// buildRevision is the VCS revision stamped into the binary, shortened to
// twelve characters. Builds without VCS info return "".
func buildRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return ""
}
