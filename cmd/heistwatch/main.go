package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"heist-tracker/internal/config"
	"heist-tracker/internal/heist"
	"heist-tracker/internal/identity"
	"heist-tracker/internal/notify"
	"heist-tracker/internal/service"
	"heist-tracker/internal/store"
)

func main() {
	dbFlag := pflag.String("db", "", "SQLite path (overrides HEIST_DB)")
	filterFlag := pflag.String("filter", string(heist.FilterExpired), "feed to watch: active, assigned or expired")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *dbFlag != "" {
		cfg.DatabaseURL = *dbFlag
	}

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	// The daemon is an anonymous observer; restricted feeds show up empty
	// until someone extends it with sign-in.
	idc := identity.NewContext()
	defer idc.Close()
	idc.Resolve(nil)

	watcher := heist.NewListWatcher(st, idc, heist.Filter(*filterFlag))
	defer watcher.Close()
	unwatch := watcher.Subscribe(func(state heist.ListState) {
		switch {
		case state.Loading:
		case state.Err != "":
			log.Printf("watch %s: %s", *filterFlag, state.Err)
		default:
			log.Printf("watch %s: %d heists", *filterFlag, len(state.Heists))
		}
	})
	defer unwatch()

	reminders := service.NewReminderService(st)

	var notifier *notify.TelegramNotifier
	if cfg.TelegramToken != "" {
		notifier, err = notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("notify: %v", err)
		}
	}

	scheduler := service.NewSchedulerService(time.Local)
	job := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sendReminders(jobCtx, reminders, notifier)
	}
	if cfg.DailyReminderAt != "" {
		_, err = scheduler.ScheduleDaily(cfg.DailyReminderAt, job)
	} else {
		_, err = scheduler.ScheduleInterval(cfg.ReminderInterval, job)
	}
	if err != nil {
		log.Fatalf("schedule reminders: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Heist tracker started.")
	<-ctx.Done()
	log.Println("Shutdown complete.")
}

func sendReminders(ctx context.Context, reminders *service.ReminderService, notifier *notify.TelegramNotifier) {
	digests, err := reminders.DigestAll(ctx, time.Now())
	if err != nil {
		log.Printf("reminders: %v", err)
		return
	}

	for _, digest := range digests {
		log.Printf("reminder for %s:\n%s", digest.User.Codename, digest.Text)
		if notifier == nil {
			continue
		}
		if err := notifier.Send(ctx, digest.Text); err != nil {
			log.Printf("reminder delivery for %s: %v", digest.User.Codename, err)
		}
	}
}
