// Shared helpers for snipstash CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rajnsunny/SnipStash/internal/client"
	"github.com/rajnsunny/SnipStash/internal/model"
)

// serverURL resolves the server address: --server flag, then config,
// then the default.
func serverURL() string {
	if flagServer != "" {
		return flagServer
	}
	return cfg.GetString(cfgKeyServer)
}

// newClient builds a client with the saved token, if any.
func newClient() *client.Client {
	c := client.New(serverURL())
	if token := cfg.GetString(cfgKeyToken); token != "" {
		c.SetToken(token)
	}
	return c
}

// requireAuth returns an authenticated client or an error telling the
// user to log in first.
func requireAuth() (*client.Client, error) {
	if cfg.GetString(cfgKeyToken) == "" {
		return nil, fmt.Errorf("not logged in; run `snipstash login` first")
	}
	return newClient(), nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printSnippets renders a snippet table, or JSON with --json.
func printSnippets(snippets []model.Snippet) error {
	if flagJSON {
		return printJSON(snippets)
	}
	if len(snippets) == 0 {
		fmt.Println("no snippets")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tLANGUAGE\tTAGS\tUPDATED")
	for _, s := range snippets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Title, s.Language,
			strings.Join(s.Tags, ","),
			s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// printSnippet renders one snippet in full, or JSON with --json.
func printSnippet(s *model.Snippet) error {
	if flagJSON {
		return printJSON(s)
	}
	fmt.Printf("ID:       %s\n", s.ID)
	fmt.Printf("Title:    %s\n", s.Title)
	fmt.Printf("Language: %s\n", s.Language)
	if s.Description != "" {
		fmt.Printf("About:    %s\n", s.Description)
	}
	fmt.Printf("Tags:     %s\n", strings.Join(s.Tags, ", "))
	fmt.Printf("Updated:  %s\n\n", s.UpdatedAt.Format("2006-01-02 15:04"))
	fmt.Println(s.Code)
	return nil
}

// readCode returns the snippet body from --file, or from the --code
// flag when no file is given.
func readCode(codeFlag, fileFlag string) (string, error) {
	if fileFlag != "" {
		b, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", fmt.Errorf("read code file: %w", err)
		}
		return string(b), nil
	}
	if codeFlag == "" {
		return "", fmt.Errorf("provide the code with --code or --file")
	}
	return codeFlag, nil
}
