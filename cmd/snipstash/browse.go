// Interactive browse mode for the snipstash CLI.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rajnsunny/SnipStash/internal/client"
	"github.com/rajnsunny/SnipStash/internal/model"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse your collection interactively",
	Long: `Browse your collection in an interactive shell. The filter acts as an
overlay on the loaded list: deleting or editing while a filter is active
changes the collection but not the filtered view, until you run "filter"
again or "clear".

Commands:
  list                      reload and show the collection
  show <id>                 print one snippet in full
  filter [q=..] [lang=..] [tag=..]   apply a server-side search
  clear                     drop the filter
  rm <id>                   delete a snippet
  quit                      exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireAuth()
		if err != nil {
			return err
		}
		session := client.NewSession(c)
		if err := session.Refresh(cmd.Context()); err != nil {
			return err
		}
		return browseLoop(cmd, session)
	},
}

func browseLoop(cmd *cobra.Command, session *client.Session) error {
	ctx := cmd.Context()
	scanner := bufio.NewScanner(os.Stdin)

	showState(session)
	for {
		fmt.Print("snipstash> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "quit", "exit", "q":
			return nil
		case "list":
			if err = session.Refresh(ctx); err == nil {
				showState(session)
			}
		case "show":
			if len(fields) != 2 {
				err = fmt.Errorf("usage: show <id>")
				break
			}
			var snippet *model.Snippet
			if snippet, err = session.Get(ctx, fields[1]); err == nil {
				err = printSnippet(snippet)
			}
		case "filter":
			var criteria model.Criteria
			if criteria, err = parseFilter(fields[1:]); err == nil {
				if err = session.ApplyFilter(ctx, criteria); err == nil {
					showState(session)
				}
			}
		case "clear":
			session.ClearFilter()
			showState(session)
		case "rm":
			if len(fields) != 2 {
				err = fmt.Errorf("usage: rm <id>")
				break
			}
			if err = session.Delete(ctx, fields[1]); err == nil {
				fmt.Println("deleted", fields[1])
				showState(session)
			}
		default:
			err = fmt.Errorf("unknown command %q", fields[0])
		}

		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
}

// parseFilter reads key=value words: q=text, lang=python, tag=loop.
func parseFilter(words []string) (model.Criteria, error) {
	var criteria model.Criteria
	for _, word := range words {
		key, value, found := strings.Cut(word, "=")
		if !found || value == "" {
			return criteria, fmt.Errorf("want key=value, got %q", word)
		}
		switch key {
		case "q", "query":
			criteria.Text = value
		case "lang", "language":
			lang, err := languageFlagValue(value)
			if err != nil {
				return criteria, err
			}
			criteria.Language = lang
		case "tag":
			criteria.Tag = value
		default:
			return criteria, fmt.Errorf("unknown filter key %q (want q, lang, or tag)", key)
		}
	}
	return criteria, nil
}

func showState(session *client.Session) {
	state := session.State()
	if state.FilterActive() {
		fmt.Printf("-- filtered view: %d of %d snippets --\n", len(state.Filtered), len(state.Snippets))
	}
	if err := printSnippets(session.Displayed()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
}
