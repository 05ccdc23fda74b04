package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/monist/pkg/monorepo"
)

// planCommand creates the plan command printing the execution order.
func (c *CLI) planCommand() *cobra.Command {
	var asJSON, trees bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the order in which members are processed",
		Long: `Show the order in which members are processed.

Members are grouped in batches. Every member comes after all of its local
dependencies, and the members of one batch do not depend on each other, so
they can run in parallel.

With --trees the dependency forest is printed instead: every member without
dependents is a root, and its local dependencies are indented below it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.loadRepo()
			if err != nil {
				return err
			}
			if trees {
				return c.printTrees(repo)
			}
			return c.printPlan(repo, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the batches as a JSON array of member names")
	cmd.Flags().BoolVar(&trees, "trees", false, "print the dependency forest instead of the batches")

	return cmd
}

func (c *CLI) printPlan(repo *monorepo.Monorepo, asJSON bool) error {
	plan, err := repo.Plan()
	if err != nil {
		return err
	}

	if asJSON {
		names := make([][]string, len(plan))
		for i, batch := range plan {
			names[i] = make([]string, len(batch))
			for j, m := range batch {
				names[i][j] = m.Name
			}
		}
		enc := json.NewEncoder(c.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(names)
	}

	if len(plan) == 0 {
		printWarning(c.Stdout, "No members found in %s", repo.Top)
		return nil
	}
	printInfo(c.Stdout, "%s: %s in %s", StyleTitle.Render(repo.Name()),
		plural(memberCount(plan), "member", "members"), plural(len(plan), "batch", "batches"))
	_, err = c.Stdout.Write([]byte(planTable(repo.Top, plan) + "\n"))
	return err
}

func (c *CLI) printTrees(repo *monorepo.Monorepo) error {
	forest, err := repo.Forest()
	if err != nil {
		return err
	}
	return forest.Dump(c.Stdout, func(m *monorepo.Member) string { return m.Name })
}
