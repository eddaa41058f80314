package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// resourceFlags holds the metadata flags shared by add and update.
type resourceFlags struct {
	title       string
	description string
	contentType string
	year        string
	faculty     string
	module      string
	locator     string
}

func (f *resourceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "resource title")
	cmd.Flags().StringVar(&f.description, "description", "", "short description")
	cmd.Flags().StringVar(&f.contentType, "type", "", "MIME type (detected from the extension if empty)")
	cmd.Flags().StringVar(&f.year, "year", "", "academic year")
	cmd.Flags().StringVar(&f.faculty, "faculty", "", "faculty identifier")
	cmd.Flags().StringVar(&f.module, "module", "", "module identifier")
}

func (f *resourceFlags) document(id string) domain.SourceDocument {
	return domain.SourceDocument{
		ID:          id,
		Title:       f.title,
		Description: f.description,
		Locator:     f.locator,
		ContentType: f.contentType,
		Year:        f.year,
		FacultyID:   f.faculty,
		ModuleID:    f.module,
	}
}

func (f *resourceFlags) reset() {
	*f = resourceFlags{}
}

// resourceJSONRecord is the --json shape of a resource.
type resourceJSONRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Locator     string `json:"locator"`
	ContentType string `json:"content_type,omitempty"`
	Year        string `json:"year,omitempty"`
	FacultyID   string `json:"faculty_id,omitempty"`
	ModuleID    string `json:"module_id,omitempty"`
}

var (
	addFlags     resourceFlags
	updateFlags  resourceFlags
	resourceJSON bool
)

var resourceCmd = &cobra.Command{
	Use:     "resource",
	Aliases: []string{"resources"},
	Short:   "Manage learning resources",
	Long: `Add, update, remove and list the learning resources known to learnbox-search.
Every change is queued for vectorization in the background.`,
}

var resourceAddCmd = &cobra.Command{
	Use:   "add [id] [locator]",
	Short: "Add a resource",
	Long: `Register a resource and queue it for vectorization.
The locator is a local path, a file:// URI or an http(s):// URL.`,
	Args: cobra.ExactArgs(2),
	RunE: runResourceAdd,
}

var resourceUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a resource",
	Long:  `Change a resource's metadata or locator and queue it for revectorization. Omitted flags keep their value.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runResourceUpdate,
}

var resourceRemoveCmd = &cobra.Command{
	Use:     "remove [id]",
	Aliases: []string{"rm"},
	Short:   "Remove a resource",
	Long:    `Remove a resource from the catalogue and delete its vectors.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runResourceRemove,
}

var resourceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List resources",
	Args:    cobra.NoArgs,
	RunE:    runResourceList,
}

func init() {
	addFlags.bind(resourceAddCmd)
	updateFlags.bind(resourceUpdateCmd)
	resourceUpdateCmd.Flags().StringVar(&updateFlags.locator, "locator", "", "new locator")
	resourceListCmd.Flags().BoolVar(&resourceJSON, "json", false, "output resources as JSON")

	resourceCmd.AddCommand(resourceAddCmd)
	resourceCmd.AddCommand(resourceUpdateCmd)
	resourceCmd.AddCommand(resourceRemoveCmd)
	resourceCmd.AddCommand(resourceListCmd)
	rootCmd.AddCommand(resourceCmd)
}

func runResourceAdd(cmd *cobra.Command, args []string) error {
	if resourceService == nil {
		return errResourceNotConfigured
	}

	addFlags.locator = args[1]
	doc := addFlags.document(args[0])
	if doc.Title == "" {
		doc.Title = filepath.Base(doc.Locator)
	}

	if err := resourceService.Add(cmd.Context(), doc); err != nil {
		return fmt.Errorf("failed to add resource: %w", err)
	}

	cmd.Printf("Added resource %s (%s)\n", doc.ID, doc.Title)
	return nil
}

func runResourceUpdate(cmd *cobra.Command, args []string) error {
	if resourceService == nil {
		return errResourceNotConfigured
	}

	if err := resourceService.Update(cmd.Context(), updateFlags.document(args[0])); err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}

	cmd.Printf("Updated resource %s\n", args[0])
	return nil
}

func runResourceRemove(cmd *cobra.Command, args []string) error {
	if resourceService == nil {
		return errResourceNotConfigured
	}

	if err := resourceService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove resource: %w", err)
	}

	cmd.Printf("Removed resource %s\n", args[0])
	return nil
}

func runResourceList(cmd *cobra.Command, _ []string) error {
	if resourceService == nil {
		return errResourceNotConfigured
	}

	docs, err := resourceService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list resources: %w", err)
	}

	if resourceJSON {
		out := make([]resourceJSONRecord, len(docs))
		for i := range docs {
			out[i] = resourceJSONRecord(docs[i])
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal resources: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No resources configured.")
		return nil
	}

	cmd.Println(titleStyle.Render("Resources:"))
	for i := range docs {
		cmd.Printf("  %s  %s\n", docs[i].ID, subtitleStyle.Render(docs[i].Title))
		if tags := resourceTags(docs[i]); tags != "" {
			cmd.Printf("      %s\n", mutedStyle.Render(tags))
		}
		cmd.Printf("      %s\n", mutedStyle.Render(docs[i].Locator))
	}
	return nil
}
