// Command smartdocs is the terminal client for the document service: it
// manages the local session and drives uploads, listing, search, download
// and dashboard views against the REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/kirillkom/smartdocs/internal/client/api"
	"github.com/kirillkom/smartdocs/internal/client/doclist"
	"github.com/kirillkom/smartdocs/internal/client/export"
	"github.com/kirillkom/smartdocs/internal/client/guard"
	"github.com/kirillkom/smartdocs/internal/client/session"
	"github.com/kirillkom/smartdocs/internal/client/upload"
	"github.com/kirillkom/smartdocs/internal/config"
	"github.com/kirillkom/smartdocs/internal/core/domain"
)

const usage = `usage: smartdocs <command> [flags]

commands:
  register   create an account and sign in
  login      sign in and persist the session
  logout     clear the persisted session
  me         show the signed-in user
  list       list documents (-search, -category, -export file.xlsx)
  upload     upload a file and wait for classification
  update     edit document metadata (-title, -category, -tags a,b)
  share      share a document with another user (-user id)
  unshare    revoke a user's access to a document (-user id)
  download   download a document by id (-o path)
  delete     delete a document by id
  stats      dashboard totals and per-category counts
  recent     recently uploaded documents (-limit)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	store, err := session.Open(stateDir(cfg))
	if err != nil {
		fatal(err)
	}
	client := api.New(cfg.ClientBaseURL, store)

	command, args := os.Args[1], os.Args[2:]
	if err := run(ctx, command, args, store, client); err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, command string, args []string, store *session.Store, client *api.Client) error {
	switch command {
	case "register":
		return runRegister(ctx, args, store, client)
	case "login":
		return runLogin(ctx, args, store, client)
	case "logout":
		return store.Logout()
	case "me":
		return runMe(ctx, store, client)
	case "list":
		return runList(ctx, args, store, client)
	case "upload":
		return runUpload(ctx, args, store, client)
	case "update":
		return runUpdate(ctx, args, store, client)
	case "share":
		return runShare(ctx, args, store, client.AddCollaborator)
	case "unshare":
		return runShare(ctx, args, store, client.RemoveCollaborator)
	case "download":
		return runDownload(ctx, args, store, client)
	case "delete":
		return runDelete(ctx, args, store, client)
	case "stats":
		return runStats(ctx, store, client)
	case "recent":
		return runRecent(ctx, args, store, client)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func stateDir(cfg config.Config) string {
	if cfg.ClientStateDir != "" {
		return cfg.ClientStateDir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "smartdocs")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "smartdocs:", err)
	os.Exit(1)
}

func runRegister(ctx context.Context, args []string, store *session.Store, client *api.Client) error {
	flags := flag.NewFlagSet("register", flag.ExitOnError)
	username := flags.String("username", "", "account username")
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	organization := flags.String("organization", "", "optional organization")
	_ = flags.Parse(args)

	reg := domain.Registration{
		Username:     *username,
		Email:        *email,
		Password:     *password,
		Organization: *organization,
	}
	if err := store.Register(ctx, client, reg); err != nil {
		return err
	}
	fmt.Printf("registered and signed in as %s\n", *username)
	return nil
}

func runLogin(ctx context.Context, args []string, store *session.Store, client *api.Client) error {
	flags := flag.NewFlagSet("login", flag.ExitOnError)
	username := flags.String("username", "", "account username")
	password := flags.String("password", "", "account password")
	_ = flags.Parse(args)

	if err := store.Login(ctx, client, *username, *password); err != nil {
		return err
	}
	fmt.Printf("signed in as %s\n", *username)
	return nil
}

func runMe(ctx context.Context, store *session.Store, client *api.Client) error {
	if err := guard.Require(store); err != nil {
		return err
	}
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s> role=%s\n", user.Username, user.Email, user.Role)
	return nil
}

func runList(ctx context.Context, args []string, store *session.Store, client *api.Client) error {
	flags := flag.NewFlagSet("list", flag.ExitOnError)
	search := flags.String("search", "", "filter by filename, title or summary")
	category := flags.String("category", "", "filter by category")
	exportPath := flags.String("export", "", "write the list to an .xlsx workbook")
	_ = flags.Parse(args)

	if err := guard.Require(store); err != nil {
		return err
	}

	fetcher := doclist.NewFetcher(client)
	docs, err := fetcher.Refresh(ctx, api.ListQuery{Search: *search, Category: *category})
	if err != nil {
		return fmt.Errorf("%s", fetcher.ErrMessage())
	}

	if *exportPath != "" {
		if err := export.WriteXLSX(*exportPath, docs); err != nil {
			return err
		}
		fmt.Printf("exported %d documents to %s\n", len(docs), *exportPath)
		return nil
	}

	printDocuments(docs)
	counts := doclist.CategoryCounts(docs)
	if len(counts) > 0 {
		fmt.Println()
		for category, count := range counts {
			fmt.Printf("%s: %d\n", category, count)
		}
	}
	return nil
}

func runUpload(ctx context.Context, args []string, store *session.Store, client *api.Client) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: smartdocs upload <file>")
	}
	if err := guard.Require(store); err != nil {
		return err
	}

	tracker := upload.NewTracker(client)
	tracker.Subscribe(func(task upload.Task) {
		switch task.Status {
		case upload.StatusUploading:
			fmt.Printf("\ruploading %s: %d%%", task.Filename, task.Progress)
		case upload.StatusProcessing:
			fmt.Printf("\ruploaded %s, waiting for classification...\n", task.Filename)
		}
	})

	task, err := tracker.Add(args[0])
	if err != nil {
		return err
	}
	final, err := tracker.Start(ctx, task.ID)
	if err != nil {
		return err
	}
	if final.Status == upload.StatusError {
		return fmt.Errorf("%s", final.Message)
	}
	fmt.Printf("done: %s classified as %s (%.0f%% confidence)\n",
		final.Document.Filename, final.Document.Category, final.Document.Confidence*100)
	return nil
}

func runUpdate(ctx context.Context, args []string, store *session.Store, client *api.Client) error {
	flags := flag.NewFlagSet("update", flag.ExitOnError)
	title := flags.String("title", "", "new title")
	category := flags.String("category", "", "new category")
	tags := flags.String("tags", "", "comma-separated tags")
	_ = flags.Parse(args)
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: smartdocs update [-title t] [-category c] [-tags a,b] <id>")
	}
	if err := guard.Require(store); err != nil {
		return err
	}

	var update domain.DocumentUpdate
	if *title != "" {
		update.Title = title
	}
	if *category != "" {
		update.Category = category
	}
	if *tags != "" {
		update.Tags = strings.Split(*tags, ",")
	}
	if update.IsEmpty() {
		return fmt.Errorf("nothing to update")
	}

	doc, err := client.UpdateDocument(ctx, flags.Arg(0), update)
	if err != nil {
		return err
	}
	fmt.Printf("updated %s: title=%q category=%q tags=%v\n", doc.ID, doc.Title, doc.Category, doc.Tags)
	return nil
}

func runShare(ctx context.Context, args []string, store *session.Store, change func(context.Context, string, string) error) error {
	flags := flag.NewFlagSet("share", flag.ExitOnError)
	user := flags.String("user", "", "user id to grant or revoke")
	_ = flags.Parse(args)
	if flags.NArg() != 1 || *user == "" {
		return fmt.Errorf("usage: smartdocs share|unshare -user <user-id> <id>")
	}
	if err := guard.Require(store); err != nil {
		return err
	}
	if err := change(ctx, flags.Arg(0), *user); err != nil {
		return err
	}
	fmt.Printf("sharing updated for %s\n", flags.Arg(0))
	return nil
}

func runDownload(ctx context.Context, args []string, store *session.Store, client *api.Client) error {
	flags := flag.NewFlagSet("download", flag.ExitOnError)
	out := flags.String("o", "", "output path (defaults to the stored filename)")
	_ = flags.Parse(args)
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: smartdocs download [-o path] <id>")
	}
	if err := guard.Require(store); err != nil {
		return err
	}

	body, filename, err := client.DownloadDocument(ctx, flags.Arg(0))
	if err != nil {
		return err
	}
	defer body.Close()

	target := *out
	if target == "" {
		target = filename
	}
	if target == "" {
		target = flags.Arg(0)
	}

	file, err := os.Create(target)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := io.Copy(file, body); err != nil {
		return err
	}
	fmt.Printf("saved %s\n", target)
	return nil
}

func runDelete(ctx context.Context, args []string, store *session.Store, client *api.Client) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: smartdocs delete <id>")
	}
	if err := guard.Require(store); err != nil {
		return err
	}
	if err := client.DeleteDocument(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("deleted", args[0])
	return nil
}

func runStats(ctx context.Context, store *session.Store, client *api.Client) error {
	if err := guard.Require(store); err != nil {
		return err
	}
	stats, err := client.DashboardStats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("documents: %d, total size: %d bytes\n", stats.TotalDocuments, stats.TotalSize)
	for category, count := range stats.ByCategory {
		fmt.Printf("  %s: %d\n", category, count)
	}
	for status, count := range stats.ByStatus {
		fmt.Printf("  [%s]: %d\n", status, count)
	}
	return nil
}

func runRecent(ctx context.Context, args []string, store *session.Store, client *api.Client) error {
	flags := flag.NewFlagSet("recent", flag.ExitOnError)
	limit := flags.Int("limit", 5, "number of documents to show")
	_ = flags.Parse(args)

	if err := guard.Require(store); err != nil {
		return err
	}
	docs, err := client.RecentDocuments(ctx, *limit)
	if err != nil {
		return err
	}
	printDocuments(docs)
	return nil
}

func printDocuments(docs []domain.Document) {
	if len(docs) == 0 {
		fmt.Println("no documents")
		return
	}
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tFILENAME\tCATEGORY\tSTATUS\tUPLOADED")
	for _, doc := range docs {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			doc.ID, doc.Filename, doc.Category, doc.Status, doc.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = writer.Flush()
}
