package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var coursesJSON bool

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List ingested courses",
	RunE:  runCourses,
}

var outlineCmd = &cobra.Command{
	Use:   "outline [course title]",
	Short: "Show a course outline",
	Long: `Prints the title, link, instructor and lessons of a course.

The title is resolved the same way the assistant resolves it, so a partial
name usually finds the right course.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutline,
}

func init() {
	coursesCmd.Flags().BoolVar(&coursesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(outlineCmd)
}

func runCourses(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	analytics, err := catalogService.Analytics(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	if coursesJSON {
		if analytics.CourseTitles == nil {
			analytics.CourseTitles = []string{}
		}
		data, err := json.MarshalIndent(analytics, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal courses: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if analytics.TotalCourses == 0 {
		cmd.Println("No courses ingested. Run 'coursemate ingest <dir>' to add some.")
		return nil
	}

	cmd.Printf("Courses (%d):\n", analytics.TotalCourses)
	for i, title := range analytics.CourseTitles {
		cmd.Printf("  [%d] %s\n", i+1, title)
	}
	return nil
}

func runOutline(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	outline, err := catalogService.Outline(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get outline: %w", err)
	}
	cmd.Println(outline)
	return nil
}
