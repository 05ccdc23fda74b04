package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/monist/pkg/errors"
	"github.com/matzehuels/monist/pkg/monorepo"
)

// verifyCommand creates the verify-deps command.
func (c *CLI) verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-deps",
		Short: "Check that member dependencies agree with the root package.json",
		Long: `Check that member dependencies agree with the root package.json.

External dependencies of the members must be declared with the same version
in the devDependencies of the root package.json, members must not have
external devDependencies, and the root package.json must not have runtime
dependencies. Every violation is reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.loadRepo()
			if err != nil {
				return err
			}
			if err := c.verify(repo); err != nil {
				return err
			}
			printSuccess(c.Stdout, "Dependencies of %s are consistent", plural(len(repo.Members()), "member", "members"))
			return nil
		},
	}
}

// verify logs every violation and fails when there is at least one.
func (c *CLI) verify(repo *monorepo.Monorepo) error {
	violations := repo.Verify()
	for _, v := range violations {
		c.ErrLogger.Error(v)
	}
	if len(violations) > 0 {
		return errors.New(errors.ErrCodeVerificationFailed, "found %s", plural(len(violations), "dependency problem", "dependency problems"))
	}
	return nil
}

// updateVersionsCommand creates the update-versions command.
func (c *CLI) updateVersionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update-versions <version>",
		Short: "Set the version of the monorepo and of every member",
		Long: `Set the version of the monorepo and of every member.

Dependencies between members are pinned to the new version as well. The
dependencies are verified first and nothing is written if verification
fails.`,
		Example: `  monist update-versions 1.4.0`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.loadRepo()
			if err != nil {
				return err
			}
			if err := c.verify(repo); err != nil {
				return err
			}
			if err := repo.UpdateVersions(args[0]); err != nil {
				return err
			}
			printSuccess(c.Stdout, "Updated %s to %s", plural(len(repo.Members()), "member", "members"), args[0])
			return nil
		},
	}
}

// setScriptCommand creates the set-script command.
func (c *CLI) setScriptCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "set-script <name> <content>",
		Short: "Add a script to every member",
		Long: `Add a script to the package.json of every member.

Without --overwrite nothing is written when any member already has a
script with that name.`,
		Example: `  monist set-script lint "eslint src"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.loadRepo()
			if err != nil {
				return err
			}
			if err := repo.SetScript(args[0], args[1], overwrite); err != nil {
				return err
			}
			printSuccess(c.Stdout, "Set script %s in %s", args[0], plural(len(repo.Members()), "member", "members"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing scripts with the same name")
	return cmd
}

// delScriptCommand creates the del-script command.
func (c *CLI) delScriptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "del-script <name>",
		Short: "Remove a script from every member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.loadRepo()
			if err != nil {
				return err
			}
			if err := repo.DelScript(args[0]); err != nil {
				return err
			}
			printSuccess(c.Stdout, "Removed script %s", args[0])
			return nil
		},
	}
}

// lockfilesCommand creates the remove-local-from-lockfiles command.
func (c *CLI) lockfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-local-from-lockfiles <lockfile...>",
		Short: "Remove members from package-lock.json files",
		Long: `Remove the entries of members from package-lock.json files.

A lock file left without any dependency is deleted. Relative paths are
resolved against the monorepo root.`,
		Example: `  monist remove-local-from-lockfiles packages/*/package-lock.json`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.loadRepo()
			if err != nil {
				return err
			}
			for _, path := range args {
				if !filepath.IsAbs(path) {
					path = filepath.Join(repo.Top, path)
				}
				deleted, err := repo.RemoveLocalFromLockfile(path)
				if err != nil {
					return err
				}
				if deleted {
					printDetail(c.Stdout, "deleted %s", path)
				} else {
					printDetail(c.Stdout, "cleaned %s", path)
				}
			}
			printSuccess(c.Stdout, "Processed %s", plural(len(args), "lock file", "lock files"))
			return nil
		},
	}
}
