package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	rlerrors "github.com/matzehuels/repolens/pkg/errors"
	"github.com/matzehuels/repolens/pkg/integrations/github"
)

// fingerprintCommand creates the fingerprint command.
func (c *CLI) fingerprintCommand() *cobra.Command {
	var skipArchive bool

	cmd := &cobra.Command{
		Use:   "fingerprint <owner/repo|url>",
		Short: "Print the fingerprint of one repository as JSON",
		Example: `  repolens fingerprint spf13/cobra
  repolens fingerprint https://github.com/spf13/cobra --skip-archive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := parseRepoArg(args[0])
			if err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if skipArchive {
				cfg.Fingerprint.SkipArchive = true
			}

			runner, err := c.newRunner(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Fingerprinting %s/%s...", owner, repo))
			spinner.Start()
			fp, err := runner.Fingerprint(cmd.Context(), owner, repo)
			spinner.Stop()
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fp)
		},
	}

	cmd.Flags().BoolVar(&skipArchive, "skip-archive", false, "skip the source archive (no code summary)")
	return cmd
}

// parseRepoArg accepts "owner/repo" or a GitHub URL.
func parseRepoArg(arg string) (owner, repo string, err error) {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "github.com/") {
		arg = "https://" + arg
	}
	if !strings.Contains(arg, "://") && !strings.HasPrefix(arg, "git@") {
		return rlerrors.ParseFullName(arg)
	}
	owner, repo, ok := github.ExtractURL(arg)
	if !ok {
		return "", "", rlerrors.New(rlerrors.ErrCodeInvalidRepository, "not a GitHub repository URL: %q", arg)
	}
	if err := rlerrors.ValidateRepository(owner, repo); err != nil {
		return "", "", err
	}
	return owner, repo, nil
}
