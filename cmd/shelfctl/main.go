// shelfctl is a terminal client for the shelfmark server: search the catalog,
// save books to your list, and prune it. A small local cache of saved IDs
// marks already-saved search results; the server list is always authoritative.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shelfmark/server/bookcache"
	"github.com/shelfmark/server/handlers"
	"github.com/shelfmark/server/models"
	"github.com/spf13/cobra"
)

var serverURL string

func main() {
	root := &cobra.Command{
		Use:           "shelfctl",
		Short:         "Search books and manage your saved list",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", envOr("SHELFMARK_URL", "http://localhost:8080"), "shelfmark server base URL")

	root.AddCommand(registerCmd(), loginCmd(), searchCmd(), saveCmd(), removeCmd(), listCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <email> <password>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverURL, "")
			resp, err := client.register(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if err := writeToken(resp.Token); err != nil {
				return err
			}
			fmt.Printf("registered and logged in as %s\n", resp.User.Username)
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username-or-email> <password>",
		Short: "Log in and store the token locally",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverURL, "")
			resp, err := client.login(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := writeToken(resp.Token); err != nil {
				return err
			}
			syncCache(resp.User)
			fmt.Printf("logged in as %s (%d saved books)\n", resp.User.Username, resp.User.BookCount)
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search the book catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverURL, readToken())
			books, err := client.search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Println("no results")
				return nil
			}
			cache := openCache()
			for i, b := range books {
				marker := " "
				if cache.Contains(b.BookID) {
					marker = "*"
				}
				fmt.Printf("%2d %s %s — %s [%s]\n", i+1, marker, b.Title, strings.Join(b.Authors, ", "), b.BookID)
			}
			fmt.Println("(* already saved; run `shelfctl save <n>` to save a result)")
			return writeLastResults(books)
		},
	}
}

func saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <result-number>",
		Short: "Save a book from the last search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("result number must be an integer, got %q", args[0])
			}
			books, err := readLastResults()
			if err != nil {
				return err
			}
			if n < 1 || n > len(books) {
				return fmt.Errorf("result number out of range (last search had %d results)", len(books))
			}
			client := newAPIClient(serverURL, readToken())
			user, err := client.save(cmd.Context(), books[n-1])
			if err != nil {
				return err
			}
			syncCache(*user)
			fmt.Printf("saved %q (%d books on your list)\n", books[n-1].Title, user.BookCount)
			return nil
		},
	}
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <bookId>",
		Short: "Remove a book from your list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverURL, readToken())
			user, err := client.remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			syncCache(*user)
			fmt.Printf("removed %s (%d books on your list)\n", args[0], user.BookCount)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show your saved books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverURL, readToken())
			user, err := client.me(cmd.Context())
			if err != nil {
				return err
			}
			syncCache(*user)
			if user.BookCount == 0 {
				fmt.Println("no saved books yet")
				return nil
			}
			for _, b := range user.SavedBooks {
				fmt.Printf("%s — %s [%s]\n", b.Title, strings.Join(b.Authors, ", "), b.BookID)
			}
			return nil
		},
	}
}

func configDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "shelfmark")
}

func writeToken(token string) error {
	if err := os.MkdirAll(configDir(), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(configDir(), "token"), []byte(token), 0o600)
}

func readToken() string {
	data, err := os.ReadFile(filepath.Join(configDir(), "token"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func openCache() *bookcache.Cache {
	cache := bookcache.New(filepath.Join(configDir(), "saved_books.json"))
	_ = cache.Load()
	return cache
}

// syncCache reconciles the local ID cache with the authoritative server list.
func syncCache(user handlers.UserResponse) {
	ids := make([]string, 0, len(user.SavedBooks))
	for _, b := range user.SavedBooks {
		ids = append(ids, b.BookID)
	}
	cache := openCache()
	cache.Replace(ids)
	if err := cache.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not write saved-book cache:", err)
	}
}

func writeLastResults(books []models.SavedBook) error {
	data, err := json.Marshal(books)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir(), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(configDir(), "last_search.json"), data, 0o644)
}

func readLastResults() ([]models.SavedBook, error) {
	data, err := os.ReadFile(filepath.Join(configDir(), "last_search.json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.New("no previous search; run `shelfctl search <term>` first")
	}
	if err != nil {
		return nil, err
	}
	var books []models.SavedBook
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
