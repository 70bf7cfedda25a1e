// Snippet commands for the snipstash CLI.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rajnsunny/SnipStash/internal/client"
	"github.com/rajnsunny/SnipStash/internal/model"
)

var (
	addTitle       string
	addCode        string
	addFile        string
	addLanguage    string
	addDescription string
	addTags        []string

	updateTitle       string
	updateCode        string
	updateFile        string
	updateLanguage    string
	updateDescription string
	updateTags        []string

	searchQuery    string
	searchLanguage string
	searchTag      string
)

func languageFlagValue(raw string) (model.Language, error) {
	lang := model.Language(strings.ToLower(strings.TrimSpace(raw)))
	if !lang.Valid() {
		return "", fmt.Errorf("unknown language %q (valid: %s)", raw, languageNames())
	}
	return lang, nil
}

func languageNames() string {
	names := make([]string, len(model.Languages))
	for i, l := range model.Languages {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your snippets, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireAuth()
		if err != nil {
			return err
		}
		snippets, err := c.List(cmd.Context())
		if err != nil {
			return err
		}
		return printSnippets(snippets)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one snippet in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireAuth()
		if err != nil {
			return err
		}
		snippet, err := c.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printSnippet(snippet)
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new snippet",
	Long: `Save a new snippet. The server scans the code and adds tags like
"loop", "error-handling", or "api" alongside any --tag values you pass.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireAuth()
		if err != nil {
			return err
		}
		if addTitle == "" {
			return fmt.Errorf("--title is required")
		}
		lang, err := languageFlagValue(addLanguage)
		if err != nil {
			return err
		}
		code, err := readCode(addCode, addFile)
		if err != nil {
			return err
		}

		snippet, err := c.Create(cmd.Context(), client.SnippetPayload{
			Title:       addTitle,
			Code:        code,
			Language:    lang,
			Description: addDescription,
			Tags:        addTags,
		})
		if err != nil {
			return err
		}
		return printSnippet(snippet)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a snippet's fields",
	Long: `Replace a snippet's fields. All fields are sent as given: tags are
replaced with the --tag values, and the server re-scans the code for
automatic tags only when the code or language actually changed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireAuth()
		if err != nil {
			return err
		}
		if updateTitle == "" {
			return fmt.Errorf("--title is required")
		}
		lang, err := languageFlagValue(updateLanguage)
		if err != nil {
			return err
		}
		code, err := readCode(updateCode, updateFile)
		if err != nil {
			return err
		}

		snippet, err := c.Update(cmd.Context(), args[0], client.SnippetPayload{
			Title:       updateTitle,
			Code:        code,
			Language:    lang,
			Description: updateDescription,
			Tags:        updateTags,
		})
		if err != nil {
			return err
		}
		return printSnippet(snippet)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a snippet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireAuth()
		if err != nil {
			return err
		}
		if err := c.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("deleted", args[0])
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search snippets by text, language, and tag",
	Long: `Search snippets. Criteria combine with AND: --query matches a
substring of the title, description, or code; --language and --tag match
exactly. With no criteria the full collection is returned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireAuth()
		if err != nil {
			return err
		}

		criteria := model.Criteria{Text: searchQuery, Tag: searchTag}
		if searchLanguage != "" {
			lang, err := languageFlagValue(searchLanguage)
			if err != nil {
				return err
			}
			criteria.Language = lang
		}

		snippets, err := c.Search(cmd.Context(), criteria)
		if err != nil {
			return err
		}
		return printSnippets(snippets)
	},
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "snippet title")
	addCmd.Flags().StringVar(&addCode, "code", "", "snippet body")
	addCmd.Flags().StringVar(&addFile, "file", "", "read the snippet body from a file")
	addCmd.Flags().StringVar(&addLanguage, "language", "other", "programming language")
	addCmd.Flags().StringVar(&addDescription, "description", "", "optional description")
	addCmd.Flags().StringSliceVar(&addTags, "tag", nil, "tag to attach (repeatable)")

	updateCmd.Flags().StringVar(&updateTitle, "title", "", "snippet title")
	updateCmd.Flags().StringVar(&updateCode, "code", "", "snippet body")
	updateCmd.Flags().StringVar(&updateFile, "file", "", "read the snippet body from a file")
	updateCmd.Flags().StringVar(&updateLanguage, "language", "other", "programming language")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "optional description")
	updateCmd.Flags().StringSliceVar(&updateTags, "tag", nil, "tag to attach (repeatable)")

	searchCmd.Flags().StringVar(&searchQuery, "query", "", "free-text match over title, description, and code")
	searchCmd.Flags().StringVar(&searchLanguage, "language", "", "exact language filter")
	searchCmd.Flags().StringVar(&searchTag, "tag", "", "exact tag filter")
}
