package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"hrdesk/backend/internal/api/handler"
	"hrdesk/backend/internal/complaint"
	"hrdesk/backend/internal/config"
	"hrdesk/backend/internal/filestore"
	"hrdesk/backend/internal/localization"
	"hrdesk/backend/internal/logger"
	"hrdesk/backend/internal/notify"
	"hrdesk/backend/internal/reminder"
	"hrdesk/backend/internal/storage"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `Usage: admin <command> [flags]

Commands:
  restore <complaint_id>         restore a soft-deleted complaint
  force-delete <complaint_id>    permanently delete a complaint and its files
  token --user <id> [--employee <id>] [--role <role>]...
                                 mint an actor token
  process-reminders [--batch <n>]
                                 deliver every reminder that is due now
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]
	flags := pflag.NewFlagSet(command, pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", os.Getenv("HRDESK_CONFIG"), "path to the YAML config file")

	var run func(ctx context.Context, cfg *config.Config, args []string) error
	switch command {
	case "restore":
		run = restoreComplaint
	case "force-delete":
		run = forceDeleteComplaint
	case "token":
		user := flags.String("user", "", "user id (token subject)")
		employee := flags.Uint("employee", 0, "linked employee id")
		roles := flags.StringSlice("role", nil, "role, repeatable")
		run = func(ctx context.Context, cfg *config.Config, args []string) error {
			return mintToken(cfg, *user, *employee, *roles)
		}
	case "process-reminders":
		batch := flags.Int("batch", 0, "reminders per poll")
		run = func(ctx context.Context, cfg *config.Config, args []string) error {
			return processReminders(ctx, cfg, *batch)
		}
	default:
		fmt.Printf("Unknown command %q\n\n%s", command, usage)
		os.Exit(1)
	}

	if err := flags.Parse(os.Args[2:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("Invalid flags: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := run(context.Background(), cfg, flags.Args()); err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

// services wires the complaint and reminder services against the configured
// Postgres, Redis and disks.
type services struct {
	complaints *complaint.Service
	reminders  *reminder.Service
	logger     *zap.Logger
	close      func()
}

func connect(ctx context.Context, cfg *config.Config) (*services, error) {
	zapLogger, err := logger.New(cfg.App.LogLevel, cfg.IsDevelopment())
	if err != nil {
		return nil, err
	}

	db, err := storage.OpenPostgres(cfg.Database, true)
	if err != nil {
		return nil, err
	}
	rdb, err := storage.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	store := storage.NewStorageService(db, rdb)

	disks, err := filestore.Setup(ctx, cfg.Storage)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	localizer, err := localization.NewLocalizer(cfg.Localization.Path)
	if err != nil {
		localizer = localization.Bundled()
	}
	notifier := notify.NewRedisNotifier(store, localizer, config.NotificationChannel, cfg.Localization.Language, zapLogger)

	return &services{
		complaints: complaint.NewService(store, notifier, disks, zapLogger,
			complaint.WithDocumentsDisk(cfg.Storage.DocumentsDisk),
		),
		reminders: reminder.NewService(store, store, notifier, zapLogger),
		logger:    zapLogger,
		close: func() {
			_ = rdb.Close()
			_ = zapLogger.Sync()
		},
	}, nil
}

func complaintID(args []string) (uint, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one complaint id")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid complaint id %q", args[0])
	}
	return uint(id), nil
}

func restoreComplaint(ctx context.Context, cfg *config.Config, args []string) error {
	id, err := complaintID(args)
	if err != nil {
		return err
	}
	svc, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	restored, err := svc.complaints.Restore(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Complaint %s has been restored.\n", restored.ComplaintNumber)
	return nil
}

func forceDeleteComplaint(ctx context.Context, cfg *config.Config, args []string) error {
	id, err := complaintID(args)
	if err != nil {
		return err
	}
	svc, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	if err := svc.complaints.ForceDelete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Complaint %d has been permanently deleted.\n", id)
	return nil
}

func mintToken(cfg *config.Config, userID string, employeeID uint, roles []string) error {
	actor := complaint.Actor{UserID: userID, Roles: roles}
	if employeeID != 0 {
		actor.EmployeeID = &employeeID
	}

	token, err := handler.IssueToken(cfg.Auth, actor, time.Now())
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func processReminders(ctx context.Context, cfg *config.Config, batch int) error {
	svc, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	if batch <= 0 {
		batch = cfg.Reminder.BatchSize
	}
	reminder.NewWorker(svc.reminders, cfg.Reminder.GetPollInterval(), batch, svc.logger).Poll(ctx)
	fmt.Println("Due reminders processed.")
	return nil
}
