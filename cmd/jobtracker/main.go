package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarcChen/job-tracker/internal/browser"
	"github.com/MarcChen/job-tracker/internal/config"
	"github.com/MarcChen/job-tracker/internal/filter"
	"github.com/MarcChen/job-tracker/internal/notify"
	"github.com/MarcChen/job-tracker/internal/pipeline"
	"github.com/MarcChen/job-tracker/internal/scheduler"
	"github.com/MarcChen/job-tracker/internal/scraper"
	"github.com/MarcChen/job-tracker/internal/scraper/airfrance"
	"github.com/MarcChen/job-tracker/internal/scraper/apple"
	"github.com/MarcChen/job-tracker/internal/scraper/businessfrance"
	"github.com/MarcChen/job-tracker/internal/scraper/wttj"
	"github.com/MarcChen/job-tracker/internal/store"
)

const runTimeout = 30 * time.Minute

func main() {
	var (
		sourcesFlag = flag.String("sources", "all", "sources to run: a group (all, vie, cdi, tech, wttj, airfrance, apple, data, ai, french-companies) or comma-separated IDs")
		includeFlag multiFlag
		excludeFlag multiFlag
		listFlag    = flag.Bool("list-sources", false, "list available sources and exit")
		archiveFlag = flag.Bool("archive-duplicates", false, "archive duplicate pages in the notion database and exit")
		configFlag  = flag.String("config", config.DefaultPath, "path to the YAML config file")
	)
	flag.Var(&includeFlag, "include", "extra include keyword (repeatable)")
	flag.Var(&excludeFlag, "exclude", "extra exclude keyword (repeatable)")
	flag.Parse()

	if *listFlag {
		listSources()
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid config: %v", err)
	}

	specs, err := config.ParseSelection(*sourcesFlag)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if len(specs) == 0 {
		log.Fatal("❌ No sources selected")
	}
	for _, spec := range specs {
		extra := ""
		if spec.Keyword != "" {
			extra = fmt.Sprintf(" (keyword: %s)", spec.Keyword)
		}
		log.Printf("▶️ Selected source %s: %s%s", spec.ID, spec.Name, extra)
	}

	include, exclude := cfg.Filters()
	include = append(include, includeFlag...)
	exclude = append(exclude, excludeFlag...)
	keywords := filter.Keywords{Include: include, Exclude: exclude}
	log.Printf("🔧 Filters: %d include, %d exclude keywords", len(include), len(exclude))

	st, err := newStore(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to init store: %v", err)
	}

	if *archiveFlag {
		notion, ok := st.(*store.NotionStore)
		if !ok {
			log.Fatal("❌ -archive-duplicates requires the notion backend")
		}
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		n, err := notion.ArchiveDuplicates(ctx)
		if err != nil {
			log.Fatalf("❌ Archiving duplicates: %v", err)
		}
		log.Printf("🧹 Archived %d duplicate pages.", n)
		return
	}
	alerter, err := newAlerter(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to init alerter: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runOnce := func(ctx context.Context) error {
		return run(ctx, cfg, specs, st, alerter, keywords)
	}

	if cfg.Schedule != "" {
		log.Printf("⏰ Scheduling runs: %s", cfg.Schedule)
		sched := scheduler.New(runOnce)
		if err := sched.Start(ctx, cfg.Schedule); err != nil {
			log.Fatalf("❌ Invalid schedule: %v", err)
		}
		<-ctx.Done()
		sched.Stop()
		return
	}

	if err := runOnce(ctx); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

// run executes one full scraping run with a fresh browser.
func run(ctx context.Context, cfg *config.Config, specs []config.SourceSpec,
	st store.Store, alerter notify.Alerter, keywords filter.Keywords) error {

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	mgr, err := browser.NewManager(cfg.Headless)
	if err != nil {
		return fmt.Errorf("starting browser: %w", err)
	}
	defer mgr.Close()

	sess, err := mgr.NewSession()
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}

	p := pipeline.New(sess, st, alerter, newAdapters(specs), keywords)
	report, err := p.Run(ctx)
	if err != nil {
		return err
	}

	report.Log()
	if report.AllSourcesFailed() {
		return fmt.Errorf("every source failed")
	}
	log.Println("🏁 Execution finished.")
	return nil
}

func newAdapters(specs []config.SourceSpec) []scraper.Adapter {
	var adapters []scraper.Adapter
	for _, spec := range specs {
		switch spec.ID {
		case "1":
			adapters = append(adapters, businessfrance.New())
		case "2":
			adapters = append(adapters, airfrance.New(spec.Keyword, spec.Contract))
		case "3":
			adapters = append(adapters, apple.New())
		case "4", "5":
			adapters = append(adapters, wttj.New(spec.Keyword, spec.Location))
		}
	}
	return adapters
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "notion":
		return store.NewNotionStore(cfg.NotionToken, cfg.NotionDatabaseID), nil
	case "supabase":
		return store.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, "")
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func newAlerter(cfg *config.Config) (notify.Alerter, error) {
	switch cfg.AlertBackend {
	case "sms":
		return notify.NewSMSAlerter(cfg.FreeMobileUserID, cfg.FreeMobileAPIKey), nil
	case "telegram":
		return notify.NewTelegramAlerter(cfg.TelegramToken, cfg.TelegramChatID)
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown alert backend %q", cfg.AlertBackend)
}

func listSources() {
	fmt.Println("Available sources:")
	for _, spec := range config.Registry() {
		extra := ""
		if spec.Keyword != "" {
			extra += fmt.Sprintf(" (keyword: %s)", spec.Keyword)
		}
		if spec.Location != "" {
			extra += fmt.Sprintf(" (location: %s)", spec.Location)
		}
		fmt.Printf("  %s: %s [%s]%s\n", spec.ID, spec.Name, spec.Category, extra)
		fmt.Printf("      %s\n", spec.Description)
	}
}

// multiFlag collects repeated string flag values.
type multiFlag []string

func (m *multiFlag) String() string { return fmt.Sprint([]string(*m)) }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
