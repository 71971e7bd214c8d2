package main

import (
	"bufio"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lotas/blattwerk/internal/analyzer"
	"github.com/lotas/blattwerk/internal/applog"
	"github.com/lotas/blattwerk/internal/export"
	"github.com/lotas/blattwerk/internal/extensions"
	"github.com/lotas/blattwerk/internal/passwords"
	"github.com/lotas/blattwerk/internal/profiles"
	"github.com/lotas/blattwerk/internal/search"
	"github.com/lotas/blattwerk/internal/server"
	"github.com/lotas/blattwerk/internal/session"
	"github.com/lotas/blattwerk/internal/settings"
	"github.com/lotas/blattwerk/internal/storage"
	"github.com/lotas/blattwerk/internal/tabs"
	"github.com/lotas/blattwerk/internal/tui"
	"github.com/lotas/blattwerk/internal/types"
	"github.com/lotas/blattwerk/internal/userdata"
)

const passwordsFile = "passwords.json"

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "browse":
			runBrowse(args[1:])
			return
		case "export":
			runExport(args[1:])
			return
		case "diff":
			runDiff(args[1:])
			return
		case "analyze":
			runAnalyze(args[1:])
			return
		case "sessions":
			runSessions(args[1:])
			return
		case "bookmarks":
			runBookmarks(args[1:])
			return
		case "history":
			runHistory(args[1:])
			return
		case "profiles":
			runProfiles(args[1:])
			return
		case "config":
			runConfig(args[1:])
			return
		case "extensions":
			runExtensions(args[1:])
			return
		case "passwords":
			runPasswords(args[1:])
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
		if !strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(os.Stderr, "Unknown command %q. Run 'blattwerk help' for usage.\n", args[0])
			os.Exit(2)
		}
	}

	runBrowse(args)
}

func printHelp() {
	fmt.Print(`blattwerk — a text-mode web browser

Usage:
  blattwerk [browse]                             Start the browser (default)
    --profile <name>       Profile to use (env: BLATTWERK_PROFILE)
    --home <url>           Startup URL for the first tab
    --session <file>       Restore tabs from a session file
    --port <n>             Control server port (default: from settings;
                           0 disables)
    --db <path>            Database path (default: inside the profile)

  blattwerk export                               Export a saved session
    --name <name>          Stored session name (default: the latest)
    --file <path>          Read from a session file instead of the store
    --format <f>           markdown or json (default: markdown)
    --out <file>           Output file path (default: stdout)
    --render               Render markdown for the terminal

  blattwerk diff <a> <b>                         Compare two sessions
                                                 (session file paths or
                                                 stored session names)

  blattwerk analyze                              Inspect bookmarks and sessions
    --dupes                Bookmarks sharing a page
    --stale                Bookmarks with no recent visit
    --days <n>             Staleness threshold (default: 30)
    --dead                 Probe bookmarks for dead links
    --summary              Summarize the latest saved session

  blattwerk sessions [list]                      List saved sessions
  blattwerk sessions rm <id> [--yes]             Delete a saved session

  blattwerk bookmarks [list]                     List bookmarks
  blattwerk bookmarks search <query>             Search bookmarks
  blattwerk bookmarks add <url> [title]          Save a bookmark
  blattwerk bookmarks rm <id|url>                Remove a bookmark

  blattwerk history [recent] [--limit n]         Show recent visits
  blattwerk history search <query>               Search the visit log
  blattwerk history clear [--yes]                Delete the visit log

  blattwerk profiles [list]                      List profiles
  blattwerk profiles create <name>               Create a profile
  blattwerk profiles use <name>                  Switch the active profile
  blattwerk profiles rm <name> [--yes]           Delete a profile and its data

  blattwerk config [list]                        Show every setting
  blattwerk config get <key>                     Show one setting
  blattwerk config set <key> <value>             Change a setting
  blattwerk config path                          Print the settings file path

  blattwerk extensions [list] [--dir path]       List installed extensions

  blattwerk passwords [list]                     List saved credentials
  blattwerk passwords add <url> <user> <pass>    Save a credential
  blattwerk passwords rm <url> <user>            Remove a credential
  blattwerk passwords search <query>             Search credentials

Most commands take --profile to select a profile.

Environment:
  BLATTWERK_PROFILE     Default profile (overridden by --profile)
  BLATTWERK_*           Any settings key, e.g. BLATTWERK_PRIVACY_SAVE_HISTORY
`)
}

func runBrowse(args []string) {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	home := fs.String("home", "", "Startup URL for the first tab")
	sessionFile := fs.String("session", "", "Session file to restore tabs from")
	port := fs.Int("port", 0, "Control server port (0 disables)")
	dbPath := fs.String("db", "", "Database path (default: inside the profile)")
	fs.Parse(args)

	pm, err := openProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	p, err := resolveProfile(pm, *profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	data, err := userdata.Open(p.DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := applog.Init(p.Path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer applog.Close()

	st, err := settings.Load(p.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	resolvedDB := *dbPath
	if resolvedDB == "" {
		resolvedDB = storage.PathIn(data.Dir())
	}
	db, err := storage.OpenDB(resolvedDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	controlPort := *port
	if controlPort == 0 {
		controlPort = st.Advanced.ControlPort
	}
	var srv *server.Server
	if controlPort > 0 {
		srv = server.New(controlPort)
	}

	startURL := st.General.Homepage
	if *home != "" {
		startURL = search.Normalize(*home, st.SearchEngine())
	}

	mgr, err := startupTabs(*sessionFile, startURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	applog.Info("app.start", "profile", p.Name, "tabs", mgr.Count())

	model := tui.NewModel(mgr, st, p.Name, db, srv)
	prog := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if st.Privacy.ClearOnExit {
		// The database sits at the data root; per-kind clears leave it alone.
		for _, k := range []userdata.Kind{userdata.Cache, userdata.Cookies, userdata.LocalStorage} {
			if err := data.Clear(k); err != nil {
				applog.Error("userdata.clear", err, "kind", k)
			}
		}
	}

	if err := settings.Save(st, p.Path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save settings: %v\n", err)
	}
	applog.Info("app.exit")
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	name := fs.String("name", "", "Stored session name (default: the latest)")
	file := fs.String("file", "", "Read from a session file instead of the store")
	format := fs.String("format", "markdown", "Output format: markdown or json")
	outFile := fs.String("out", "", "Output file path (default: stdout)")
	render := fs.Bool("render", false, "Render markdown for the terminal")
	fs.Parse(args)

	s, err := loadSession(*file, *name, *profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var output string
	switch *format {
	case "json":
		output, err = export.JSON(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating JSON: %v\n", err)
			os.Exit(1)
		}
	case "markdown", "md":
		output = export.Markdown(s)
		if *render {
			output = export.Render(output, 100)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown format %q. Use markdown or json.\n", *format)
		os.Exit(1)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, []byte(output), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Print(output)
	}
}

func runDiff(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(reorderArgs(args))

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk diff <a> <b>")
		fmt.Fprintln(os.Stderr, "Each argument is a session file path or a stored session name.")
		os.Exit(1)
	}

	db, p, err := openStore(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	from, err := diffArg(db, p.Name, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	to, err := diffArg(db, p.Name, fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(session.FormatDiff(session.Diff(from, to)))
}

// diffArg loads one side of a diff. An existing file path wins; anything
// else names a stored session.
func diffArg(db *sql.DB, profile, arg string) (*types.Session, error) {
	if _, err := os.Stat(arg); err == nil {
		return session.ReadFile(arg)
	}
	return storage.GetSessionByName(db, profile, arg)
}

func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	dupes := fs.Bool("dupes", false, "Report bookmarks sharing a page")
	stale := fs.Bool("stale", false, "Report bookmarks with no recent visit")
	days := fs.Int("days", 30, "Staleness threshold in days")
	dead := fs.Bool("dead", false, "Probe bookmarks for dead links")
	summary := fs.Bool("summary", false, "Summarize the latest saved session")
	fs.Parse(args)

	db, p, err := openStore(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// With no mode flags, run every offline check. Dead-link probes hit
	// the network and only run when asked for.
	all := !*dupes && !*stale && !*dead && !*summary

	if *summary || all {
		analyzeSummary(db, p.Name)
	}
	if *dupes || all {
		analyzeDupes(db)
	}
	if *stale || all {
		analyzeStale(db, *days)
	}
	if *dead {
		analyzeDead(db)
	}
}

func analyzeSummary(db *sql.DB, profile string) {
	s, err := storage.GetLatestSession(db, profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if s == nil {
		fmt.Println("No saved sessions to summarize.")
		return
	}

	stats := analyzer.Summarize(s)
	label := s.Name
	if label == "" {
		label = "(unnamed)"
	}
	fmt.Printf("Latest session %s, saved %s\n", label, s.SavedAt.Format("2006-01-02 15:04"))
	fmt.Printf("  Tabs:            %d\n", stats.Tabs)
	fmt.Printf("  Unique hosts:    %d\n", stats.UniqueHosts)
	fmt.Printf("  History entries: %d\n", stats.HistoryEntries)
	fmt.Printf("  Deepest history: %d\n", stats.DeepestHistory)
}

func analyzeDupes(db *sql.DB) {
	list, err := storage.ListBookmarks(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	groups := analyzer.FindDuplicateBookmarks(list)
	if len(groups) == 0 {
		fmt.Println("No duplicate bookmarks.")
		return
	}

	fmt.Println("Duplicate bookmarks:")
	for _, g := range groups {
		fmt.Printf("  %s\n", g.URL)
		for _, b := range g.Bookmarks {
			fmt.Printf("    #%-4d %s (added %s)\n", b.ID, b.URL, b.CreatedAt.Format("2006-01-02"))
		}
	}
}

func analyzeStale(db *sql.DB, days int) {
	bookmarks, err := storage.ListBookmarks(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	visits, err := storage.ListVisits(db, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stale := analyzer.StaleBookmarks(bookmarks, visits, days)
	if len(stale) == 0 {
		fmt.Printf("No bookmarks stale after %d days.\n", days)
		return
	}

	fmt.Printf("Stale bookmarks (no visit in %d days):\n", days)
	for _, sb := range stale {
		last := "never visited"
		if !sb.LastVisited.IsZero() {
			last = "last visit " + sb.LastVisited.Format("2006-01-02")
		}
		fmt.Printf("  %4dd  %s (%s)\n", sb.Days, sb.Bookmark.URL, last)
	}
}

func analyzeDead(db *sql.DB) {
	bookmarks, err := storage.ListBookmarks(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(bookmarks) == 0 {
		fmt.Println("No bookmarks to check.")
		return
	}

	fmt.Fprintf(os.Stderr, "Checking %d bookmarks...\n", len(bookmarks))

	results := make(chan analyzer.DeadLink)
	go func() {
		analyzer.CheckDeadBookmarks(bookmarks, results)
		close(results)
	}()

	checked, deadCount := 0, 0
	for r := range results {
		checked++
		if r.IsDead {
			deadCount++
			fmt.Printf("  dead (%s)  %s\n", r.Reason, r.Bookmark.URL)
		}
	}
	fmt.Printf("%d checked, %d dead.\n", checked, deadCount)
}

func runSessions(args []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		runSessionsList(args)
		return
	}
	switch args[0] {
	case "list":
		runSessionsList(args[1:])
	case "rm":
		runSessionsRemove(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown sessions command %q. Use list or rm.\n", args[0])
		os.Exit(1)
	}
}

func runSessionsList(args []string) {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(args)

	db, p, err := openStore(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	list, err := storage.ListSessions(db, p.Name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(list) == 0 {
		fmt.Println("No saved sessions.")
		return
	}

	fmt.Printf("%-5s %5s  %-20s %s\n", "ID", "TABS", "NAME", "SAVED")
	for _, m := range list {
		name := m.Name
		if name == "" {
			name = "-"
		}
		fmt.Printf("%5d %5d  %-20s %s\n", m.ID, m.TabCount, name, m.SavedAt.Format("2006-01-02 15:04"))
	}
}

func runSessionsRemove(args []string) {
	fs := flag.NewFlagSet("sessions rm", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	yes := fs.Bool("yes", false, "Skip confirmation prompt")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk sessions rm <id> [--yes]")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid session id: %s\n", fs.Arg(0))
		os.Exit(1)
	}

	if !*yes && !confirm(fmt.Sprintf("Delete session #%d?", id)) {
		fmt.Println("Aborted.")
		return
	}

	db, _, err := openStore(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.DeleteSession(db, id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Session #%d deleted.\n", id)
}

func runBookmarks(args []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		runBookmarksList(args)
		return
	}
	switch args[0] {
	case "list":
		runBookmarksList(args[1:])
	case "search":
		runBookmarksSearch(args[1:])
	case "add":
		runBookmarksAdd(args[1:])
	case "rm":
		runBookmarksRemove(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown bookmarks command %q. Use list, search, add, or rm.\n", args[0])
		os.Exit(1)
	}
}

func runBookmarksList(args []string) {
	fs := flag.NewFlagSet("bookmarks", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(args)

	db, _, err := openStore(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	list, err := storage.ListBookmarks(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(list) == 0 {
		fmt.Println("No bookmarks saved.")
		return
	}
	printBookmarks(list)
}

func runBookmarksSearch(args []string) {
	fs := flag.NewFlagSet("bookmarks search", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk bookmarks search <query>")
		os.Exit(1)
	}
	query := strings.Join(fs.Args(), " ")

	db, _, err := openStore(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	list, err := storage.SearchBookmarks(db, query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(list) == 0 {
		fmt.Printf("No bookmarks match %q.\n", query)
		return
	}
	printBookmarks(list)
}

func printBookmarks(list []types.Bookmark) {
	fmt.Printf("%-5s %-16s  %-30s %s\n", "ID", "ADDED", "TITLE", "URL")
	for _, b := range list {
		fmt.Printf("%5d %-16s  %-30s %s\n",
			b.ID, b.CreatedAt.Format("2006-01-02 15:04"), b.Title, b.URL)
	}
}

func runBookmarksAdd(args []string) {
	fs := flag.NewFlagSet("bookmarks add", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk bookmarks add <url> [title]")
		os.Exit(1)
	}
	url := fs.Arg(0)
	title := strings.Join(fs.Args()[1:], " ")

	db, _, err := openStore(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	b, err := storage.AddBookmark(db, url, title)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Bookmarked %s (#%d)\n", b.URL, b.ID)
}

func runBookmarksRemove(args []string) {
	fs := flag.NewFlagSet("bookmarks rm", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk bookmarks rm <id|url>")
		os.Exit(1)
	}
	arg := fs.Arg(0)

	db, _, err := openStore(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if id, convErr := strconv.ParseInt(arg, 10, 64); convErr == nil {
		if err := storage.DeleteBookmark(db, id); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Bookmark #%d removed.\n", id)
		return
	}

	saved, err := storage.IsBookmarked(db, arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !saved {
		fmt.Fprintf(os.Stderr, "No bookmark for %s\n", arg)
		os.Exit(1)
	}
	if err := storage.DeleteBookmarkByURL(db, arg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Bookmark %s removed.\n", arg)
}

func runHistory(args []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		runHistoryRecent(args)
		return
	}
	switch args[0] {
	case "recent":
		runHistoryRecent(args[1:])
	case "search":
		runHistorySearch(args[1:])
	case "clear":
		runHistoryClear(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown history command %q. Use recent, search, or clear.\n", args[0])
		os.Exit(1)
	}
}

func runHistoryRecent(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	limit := fs.Int("limit", 20, "Most recent visits to show")
	fs.Parse(args)

	db, _, err := openStore(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	visits, err := storage.ListVisits(db, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(visits) == 0 {
		fmt.Println("No visits recorded.")
		return
	}
	printVisits(visits)
}

func runHistorySearch(args []string) {
	fs := flag.NewFlagSet("history search", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	limit := fs.Int("limit", 50, "Maximum matches to show")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk history search <query>")
		os.Exit(1)
	}
	query := strings.Join(fs.Args(), " ")

	db, _, err := openStore(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	visits, err := storage.SearchVisits(db, query, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(visits) == 0 {
		fmt.Printf("No visits match %q.\n", query)
		return
	}
	printVisits(visits)
}

func printVisits(visits []types.Visit) {
	fmt.Printf("%-16s  %-30s %s\n", "VISITED", "TITLE", "URL")
	for _, v := range visits {
		fmt.Printf("%-16s  %-30s %s\n",
			v.VisitedAt.Format("2006-01-02 15:04"), v.Title, v.URL)
	}
}

func runHistoryClear(args []string) {
	fs := flag.NewFlagSet("history clear", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	yes := fs.Bool("yes", false, "Skip confirmation prompt")
	fs.Parse(args)

	db, p, err := openStore(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	n, err := storage.CountVisits(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if n == 0 {
		fmt.Println("History is already empty.")
		return
	}

	if !*yes && !confirm(fmt.Sprintf("Delete all %d visits for profile %q?", n, p.Name)) {
		fmt.Println("Aborted.")
		return
	}

	removed, err := storage.ClearVisits(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Removed %d visits.\n", removed)
}

func runProfiles(args []string) {
	if len(args) == 0 {
		runProfilesList()
		return
	}
	switch args[0] {
	case "list":
		runProfilesList()
	case "create":
		runProfilesCreate(args[1:])
	case "use":
		runProfilesUse(args[1:])
	case "rm":
		runProfilesRemove(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown profiles command %q. Use list, create, use, or rm.\n", args[0])
		os.Exit(1)
	}
}

func runProfilesList() {
	pm, err := openProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	list := pm.Profiles()
	if len(list) == 0 {
		fmt.Println("No profiles yet. One is created on first browse.")
		return
	}

	active, _ := pm.Active()
	for _, p := range list {
		suffix := ""
		if p.ID == active.ID {
			suffix = " [active]"
		}
		fmt.Printf("%s (%s)%s\n", p.Name, p.Path, suffix)
	}
}

func runProfilesCreate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk profiles create <name>")
		os.Exit(1)
	}

	pm, err := openProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	p, err := pm.Create(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Profile %q created at %s\n", p.Name, p.Path)
}

func runProfilesUse(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk profiles use <name>")
		os.Exit(1)
	}

	pm, err := openProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	p, ok := pm.ByName(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "Profile %q not found. Available profiles:\n", args[0])
		for _, q := range pm.Profiles() {
			fmt.Fprintf(os.Stderr, "  - %s\n", q.Name)
		}
		os.Exit(1)
	}
	if err := pm.SetActive(p.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Active profile is now %q.\n", p.Name)
}

func runProfilesRemove(args []string) {
	fs := flag.NewFlagSet("profiles rm", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Skip confirmation prompt")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk profiles rm <name> [--yes]")
		os.Exit(1)
	}

	pm, err := openProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	p, ok := pm.ByName(fs.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "Profile %q not found.\n", fs.Arg(0))
		os.Exit(1)
	}

	if !*yes && !confirm(fmt.Sprintf("Delete profile %q and all its data?", p.Name)) {
		fmt.Println("Aborted.")
		return
	}

	if err := pm.Delete(p.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Profile %q deleted.\n", p.Name)
}

func runConfig(args []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		runConfigList(args)
		return
	}
	switch args[0] {
	case "list":
		runConfigList(args[1:])
	case "get":
		runConfigGet(args[1:])
	case "set":
		runConfigSet(args[1:])
	case "path":
		runConfigPath(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command %q. Use list, get, set, or path.\n", args[0])
		os.Exit(1)
	}
}

func runConfigList(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(args)

	p, err := openProfile(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	st, err := settings.Load(p.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, k := range settings.Keys() {
		v, _ := settings.Get(st, k)
		fmt.Printf("%-34s %s\n", k, v)
	}
}

func runConfigGet(args []string) {
	fs := flag.NewFlagSet("config get", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk config get <key>")
		os.Exit(1)
	}

	p, err := openProfile(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	st, err := settings.Load(p.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	v, ok := settings.Get(st, fs.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown settings key %q. Run 'blattwerk config list' for keys.\n", fs.Arg(0))
		os.Exit(1)
	}
	fmt.Println(v)
}

func runConfigSet(args []string) {
	fs := flag.NewFlagSet("config set", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk config set <key> <value>")
		os.Exit(1)
	}

	p, err := openProfile(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	st, err := settings.Load(p.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := settings.Set(&st, fs.Arg(0), fs.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := settings.Save(st, p.Path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	v, _ := settings.Get(st, fs.Arg(0))
	fmt.Printf("%s = %s\n", fs.Arg(0), v)
}

func runConfigPath(args []string) {
	fs := flag.NewFlagSet("config path", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(args)

	p, err := openProfile(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(settings.Path(p.Path))
}

func runExtensions(args []string) {
	if len(args) > 0 && args[0] == "list" {
		args = args[1:]
	}
	fs := flag.NewFlagSet("extensions", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	dir := fs.String("dir", "", "Extensions directory (default: inside the profile)")
	fs.Parse(args)

	root := *dir
	if root == "" {
		p, err := openProfile(*profileName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		root = filepath.Join(p.Path, "extensions")
	}

	reg := extensions.NewRegistry(root)
	if err := reg.Scan(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	list := reg.List()
	if len(list) == 0 {
		fmt.Printf("No extensions in %s\n", root)
		return
	}

	fmt.Printf("%-20s %-10s %-25s %s\n", "ID", "VERSION", "NAME", "PERMISSIONS")
	for _, e := range list {
		perms := make([]string, len(e.Permissions))
		for i, perm := range e.Permissions {
			perms[i] = string(perm)
		}
		fmt.Printf("%-20s %-10s %-25s %s\n", e.ID, e.Version, e.Name, strings.Join(perms, ","))
	}
}

func runPasswords(args []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		runPasswordsList(args)
		return
	}
	switch args[0] {
	case "list":
		runPasswordsList(args[1:])
	case "add":
		runPasswordsAdd(args[1:])
	case "rm":
		runPasswordsRemove(args[1:])
	case "search":
		runPasswordsSearch(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown passwords command %q. Use list, add, rm, or search.\n", args[0])
		os.Exit(1)
	}
}

func runPasswordsList(args []string) {
	fs := flag.NewFlagSet("passwords", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(args)

	store, err := openPasswords(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	entries := store.All()
	if len(entries) == 0 {
		fmt.Println("No passwords saved.")
		return
	}
	printPasswords(entries)
}

func runPasswordsAdd(args []string) {
	fs := flag.NewFlagSet("passwords add", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk passwords add <url> <username> <password>")
		os.Exit(1)
	}

	store, err := openPasswords(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := store.Add(fs.Arg(0), fs.Arg(1), fs.Arg(2)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := store.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Password for %s on %s saved.\n", fs.Arg(1), passwords.NormalizeOrigin(fs.Arg(0)))
}

func runPasswordsRemove(args []string) {
	fs := flag.NewFlagSet("passwords rm", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk passwords rm <url> <username>")
		os.Exit(1)
	}

	store, err := openPasswords(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := store.Delete(fs.Arg(0), fs.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := store.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Password removed.")
}

func runPasswordsSearch(args []string) {
	fs := flag.NewFlagSet("passwords search", flag.ExitOnError)
	profileName := fs.String("profile", "", "Profile name (env: BLATTWERK_PROFILE)")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: blattwerk passwords search <query>")
		os.Exit(1)
	}
	query := strings.Join(fs.Args(), " ")

	store, err := openPasswords(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	found := store.Search(query)
	if len(found) == 0 {
		fmt.Printf("No passwords match %q.\n", query)
		return
	}
	printPasswords(found)
}

// printPasswords lists credentials. The secrets themselves never print.
func printPasswords(entries []passwords.Entry) {
	fmt.Printf("%-30s %-20s %-12s %s\n", "ORIGIN", "USERNAME", "CREATED", "USES")
	for _, e := range entries {
		fmt.Printf("%-30s %-20s %-12s %d\n",
			e.URL, e.Username, e.CreatedAt.Format("2006-01-02"), e.UseCount)
	}
}

// openProfiles loads the profile index from the default root.
func openProfiles() (*profiles.Manager, error) {
	root, err := profiles.DefaultRoot()
	if err != nil {
		return nil, err
	}
	return profiles.Open(root)
}

// resolveProfile picks the working profile: flag, then BLATTWERK_PROFILE,
// then the stored active profile, then "default". Named profiles are
// created on first use.
func resolveProfile(pm *profiles.Manager, flagValue string) (profiles.Profile, error) {
	name := flagValue
	if name == "" {
		name = os.Getenv("BLATTWERK_PROFILE")
	}
	if name != "" {
		return pm.Ensure(name)
	}
	if p, ok := pm.Active(); ok {
		return p, nil
	}
	return pm.Ensure(profiles.DefaultName)
}

// openProfile resolves the working profile without opening its database.
func openProfile(profileFlag string) (profiles.Profile, error) {
	pm, err := openProfiles()
	if err != nil {
		return profiles.Profile{}, err
	}
	return resolveProfile(pm, profileFlag)
}

// openStore resolves the working profile and opens its database.
func openStore(profileFlag string) (*sql.DB, profiles.Profile, error) {
	p, err := openProfile(profileFlag)
	if err != nil {
		return nil, profiles.Profile{}, err
	}
	db, err := storage.OpenDB(storage.PathIn(p.DataDir()))
	if err != nil {
		return nil, profiles.Profile{}, fmt.Errorf("open database: %w", err)
	}
	return db, p, nil
}

// openPasswords opens the profile's credential store, creating the data
// directory on first use.
func openPasswords(profileFlag string) (*passwords.Store, error) {
	p, err := openProfile(profileFlag)
	if err != nil {
		return nil, err
	}
	data, err := userdata.Open(p.DataDir())
	if err != nil {
		return nil, err
	}
	return passwords.Open(filepath.Join(data.Dir(), passwordsFile))
}

// startupTabs builds the tab manager the browser starts with: restored
// from an explicit session file when one was given, otherwise a single
// tab at the start URL. The restore_tabs_on_startup setting is stored
// configuration only and is not consulted here.
func startupTabs(sessionFile, startURL string) (*tabs.Manager, error) {
	if sessionFile == "" {
		return tabs.NewManager(startURL), nil
	}
	s, err := session.ReadFile(sessionFile)
	if err != nil {
		return nil, err
	}
	return session.Restore(s, startURL), nil
}

// loadSession reads a session from an explicit file, a named store entry,
// or the profile's latest save, in that order of preference.
func loadSession(file, name, profileFlag string) (*types.Session, error) {
	if file != "" {
		return session.ReadFile(file)
	}

	db, p, err := openStore(profileFlag)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if name != "" {
		return storage.GetSessionByName(db, p.Name, name)
	}
	s, err := storage.GetLatestSession(db, p.Name)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("no saved sessions for profile %q", p.Name)
	}
	return s, nil
}

// confirm prints a [y/N] prompt and reads one line from stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

// reorderArgs moves flag arguments before positional arguments so that
// flag.Parse handles them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			flags = append(flags, args[i])
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				flags = append(flags, args[i+1])
				i++
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
