package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/adapter/source/tmdb"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/listing"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/mmcdole/marquee/internal/store/sqlstore"
	"github.com/mmcdole/marquee/internal/tui"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

type options struct {
	plain      bool
	refresh    bool
	clearCache bool
	category   string
	search     string
	movieID    int
}

func main() {
	var showVersion bool
	var opts options
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&opts.plain, "plain", false, "print listings instead of starting the TUI")
	flag.BoolVar(&opts.refresh, "refresh", false, "drop cached movies and fetch from the API")
	flag.BoolVar(&opts.clearCache, "clear-cache", false, "delete the cache directory and exit")
	flag.StringVar(&opts.category, "category", "", "category to print in plain mode")
	flag.StringVar(&opts.search, "search", "", "search loaded titles (plain mode)")
	flag.IntVar(&opts.movieID, "movie", 0, "print one cached movie by id (plain mode)")
	flag.Parse()

	if showVersion {
		fmt.Printf("marquee %s\n", Version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting marquee", "version", Version)

	if opts.clearCache {
		if err := adapter.ClearCache(cfg.Cache.Dir); err != nil {
			return err
		}
		fmt.Println("✓ Cache cleared")
		return nil
	}

	if !cfg.IsConfigured() {
		return runSetupFlow(cfg, logger)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	movies, err := openStore(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer movies.Close()

	if opts.refresh {
		if err := movies.InvalidateAll(); err != nil {
			return fmt.Errorf("failed to invalidate cache: %w", err)
		}
	}

	client := newClient(cfg, logger)
	repo := catalog.NewRepository(client, movies, logger)

	order := listing.Preserve
	if cfg.Browse.Shuffle {
		order = listing.Shuffle
	}

	plain := opts.plain || opts.search != "" || opts.movieID != 0 || !term.IsTerminal(int(os.Stdout.Fd()))
	if plain {
		return runPlain(repo, cfg.Browse.Categories, order, opts)
	}

	observer := tui.NewChannelObserver()
	session := listing.NewSession(repo, cfg.Browse.Categories,
		listing.WithOrdering(order),
		listing.WithObserver(observer),
		listing.WithLogger(logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("session stopped", "error", err)
		}
	}()

	opener := adapter.NewOpener(cfg.Viewer.Command, cfg.Viewer.Args, logger)
	model := tui.NewModel(session, repo, opener, observer.States(), session.Snapshot(), cfg.TMDB.ImageBaseURL)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// movieCache is a MovieStore that can also drop every row
type movieCache interface {
	domain.MovieStore
	InvalidateAll() error
}

// openStore opens the configured cache backend
func openStore(cfg adapter.CacheConfig) (movieCache, error) {
	switch cfg.Driver {
	case adapter.CacheDriverSQLite:
		return sqlstore.Open(cfg.Dir)
	case adapter.CacheDriverMemory:
		return store.NewMemoryStore(), nil
	default:
		return store.NewMovieStore(cfg.Dir)
	}
}

func newClient(cfg *adapter.Config, logger *slog.Logger) *tmdb.Client {
	return tmdb.NewClient(cfg.TMDB.APIKey, logger,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithTimeout(cfg.TMDB.Timeout),
	)
}

// runPlain prints listings, search results or one movie to stdout
func runPlain(repo *catalog.Repository, categories []string, order listing.Ordering, opts options) error {
	ctx := context.Background()

	if opts.movieID != 0 {
		for _, r := range domain.Collect(repo.FetchOne(ctx, opts.movieID)) {
			switch r := r.(type) {
			case domain.Success[domain.Movie]:
				printMovie(r.Data)
			case domain.Failure[domain.Movie]:
				return errors.New(r.Message)
			}
		}
		return nil
	}

	state := listing.NewState(categories)
	for _, category := range categories {
		var token uint64
		state, token = state.Begin(category)
		for r := range repo.FetchList(ctx, opts.refresh, category, listing.FirstPage) {
			if f, ok := r.(domain.Failure[[]domain.Movie]); ok {
				fmt.Fprintf(os.Stderr, "%s: %s\n", category, f.Message)
			}
			state = listing.Reduce(state, listing.Result{Category: category, Token: token, State: r}, order)
		}
	}

	if opts.search != "" {
		results := listing.Search(state, opts.search)
		if len(results) == 0 {
			fmt.Println("No matches")
			return nil
		}
		for _, m := range results {
			printRow(m)
		}
		return nil
	}

	category := state.ActiveCategory()
	if opts.category != "" {
		category = domain.NormalizeCategory(opts.category)
		if !state.Tracks(category) {
			return fmt.Errorf("category %q is not configured (have %s)", category, strings.Join(categories, ", "))
		}
	}
	for _, m := range state.Movies[category] {
		printRow(m)
	}
	return nil
}

func printRow(m domain.Movie) {
	fmt.Printf("%-8d %s  %-40s %s\n", m.ID, tui.RatingStars(m.VoteAverage), styles.Truncate(m.Title, 40), m.Year())
}

func printMovie(m domain.Movie) {
	fmt.Println(m.Title)
	if m.OriginalTitle != "" && m.OriginalTitle != m.Title {
		fmt.Println(m.OriginalTitle)
	}
	fmt.Printf("Rating:   %s %s\n", tui.RatingStars(m.VoteAverage), m.FormattedRating())
	fmt.Printf("Released: %s\n", m.ReleaseDate)
	fmt.Printf("Category: %s\n", m.Category)
	if m.Overview != "" {
		fmt.Println()
		fmt.Println(m.Overview)
	}
}

// runSetupFlow asks for an API key, verifies it and saves the config
func runSetupFlow(cfg *adapter.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to Marquee!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Enter your TMDB API key: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		cfg.TMDB.APIKey = strings.TrimSpace(input)

		if cfg.TMDB.APIKey == "" {
			fmt.Println("API key cannot be empty. Please try again.")
			continue
		}

		fmt.Println()
		if err := verifyKeyWithSpinner(newClient(cfg, logger)); err != nil {
			fmt.Printf("\n✗ Could not verify key: %v\n", err)
			fmt.Println("Please check the key and try again.")
			fmt.Println()
			continue
		}
		break
	}

	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run marquee again to start browsing.")

	return nil
}

// verifyKeyWithSpinner fetches one page with a visual spinner
func verifyKeyWithSpinner(client *tmdb.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		_, err := client.FetchPage(ctx, domain.CategoryPopular, listing.FirstPage)
		resultCh <- err
	}()

	frame := 0
	fmt.Printf("\r%s Verifying API key...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Println("✓ API key accepted")
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Verifying API key...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("verification timed out")
		}
	}
}
