package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/weft-lang/weft/internal/cache"
	"github.com/weft-lang/weft/internal/cli/config"
	"github.com/weft-lang/weft/internal/dialect"
)

// NewDialectsCommand creates the dialects command
func NewDialectsCommand() *cobra.Command {
	var (
		projectName string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "dialects",
		Short: "List the dialects visible to each project",
		Long: `Scan the configured projects for Weft dialect metadata and list the
dialects each project can use, including the bundled standard dialect
when its implementation is on the project's dependency path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			workspace, err := buildWorkspace(cfg)
			if err != nil {
				return err
			}

			dialectCache := cache.New(workspace)
			if err := dialectCache.Initialize(); err != nil {
				return fmt.Errorf("failed to initialize dialect cache: %w", err)
			}
			defer dialectCache.Close()

			heading := color.New(color.FgCyan, color.Bold)
			name := color.New(color.FgWhite, color.Bold)

			for _, project := range workspace.Projects() {
				if projectName != "" && project.Name() != projectName {
					continue
				}

				heading.Printf("%s\n", project.Name())
				dialects := dialectCache.ProjectDialects(project)
				if len(dialects) == 0 {
					fmt.Println("  (no dialects found)")
					continue
				}

				for _, d := range dialects {
					attrs, elems, objects := countItems(d)
					name.Printf("  %s", d.Name)
					fmt.Printf("  prefix=%s  %d attributes, %d elements, %d expression objects\n",
						d.Prefix, attrs, elems, objects)
					if verbose {
						printItems(d)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectName, "project", "", "Only list dialects for the named project")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every processor and expression object")

	return cmd
}

func countItems(d *dialect.Dialect) (attrs, elems, objects int) {
	for _, item := range d.Items {
		switch item.Kind {
		case dialect.ItemProcessor:
			if item.Processor.Kind == dialect.AttributeProcessor {
				attrs++
			} else {
				elems++
			}
		case dialect.ItemExpressionObject:
			objects++
		}
	}
	return attrs, elems, objects
}

func printItems(d *dialect.Dialect) {
	for _, item := range d.Items {
		switch item.Kind {
		case dialect.ItemProcessor:
			fmt.Printf("    %s (%s)\n", item.Processor.FullName(), item.Processor.Kind)
		case dialect.ItemExpressionObject:
			fmt.Printf("    #%s -> %s\n", item.ExpressionObject.Name, item.ExpressionObject.Class)
		case dialect.ItemExpressionObjectMethod:
			fmt.Printf("    #%s\n", item.Method.Name)
		}
	}
}
