package app

import (
	"fmt"
	"log"

	digestdomain "resurface-backend/internal/digest/domain"
	digestrepo "resurface-backend/internal/digest/repository"
	digestusecase "resurface-backend/internal/digest/usecase"
	notedomain "resurface-backend/internal/note/domain"
	noterepo "resurface-backend/internal/note/repository"
	"resurface-backend/internal/note/source"
	noteusecase "resurface-backend/internal/note/usecase"
	senddelivery "resurface-backend/internal/send/delivery"
	senddomain "resurface-backend/internal/send/domain"
	sendrepo "resurface-backend/internal/send/repository"
	sendusecase "resurface-backend/internal/send/usecase"
	sequencedomain "resurface-backend/internal/sequence/domain"
	sequencerepo "resurface-backend/internal/sequence/repository"
	sequenceusecase "resurface-backend/internal/sequence/usecase"
	userdomain "resurface-backend/internal/user/domain"
	userrepo "resurface-backend/internal/user/repository"
	"resurface-backend/pkg/config"
	"resurface-backend/pkg/database"
	"resurface-backend/pkg/mailer"

	"gorm.io/gorm"
)

// App wires the repositories, use cases and clients shared by the API
// server and the batch runner binary.
type App struct {
	Config         *config.Config
	DB             *gorm.DB
	Adapters       *source.Registry
	Syncer         *noteusecase.Syncer
	DigestRunner   *digestusecase.Runner
	SequenceRunner *sequenceusecase.Runner
	WebhookHandler *senddelivery.WebhookHandler
}

// New connects to the database, runs migrations, and assembles the full
// dependency graph. The webhook handler is nil when no webhook secret is
// configured; callers skip the route in that case.
func New(cfg *config.Config) (*App, error) {
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	userRepo := userrepo.NewUserRepository(db)
	connectionRepo := noterepo.NewConnectionRepository(db)
	cursorRepo := noterepo.NewSyncCursorRepository(db)
	scopeRepo := noterepo.NewScopeItemRepository(db)
	documentRepo := noterepo.NewDocumentRepository(db)
	reviewRepo := digestrepo.NewReviewStateRepository(db)
	digestRepo := digestrepo.NewDigestRepository(db)
	sequenceRepo := sequencerepo.NewSequenceStateRepository(db)
	sendRepo := sendrepo.NewSendRecordRepository(db)

	mailClient := mailer.NewClient(cfg.MailerBaseURL, cfg.MailerAPIKey, cfg.MailerFrom, cfg.MailerMaxAttempts, cfg.MailerDryRun)

	defs, err := sequencedomain.LoadDefinitions(cfg.SequencesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load sequence definitions: %w", err)
	}

	adapters := source.NewRegistry()
	pipeline := noteusecase.NewPipeline(documentRepo, cursorRepo, scopeRepo)
	syncer := noteusecase.NewSyncer(connectionRepo, cursorRepo, pipeline, adapters, cfg.SyncConnectionDelay)

	policy := digestusecase.PolicyFromName(cfg.SchedulePolicy)
	digestRunner := digestusecase.NewRunner(
		userRepo,
		reviewRepo,
		digestRepo,
		documentRepo,
		sendRepo,
		digestusecase.DueDateSelector{},
		policy,
		mailClient,
		mailClient.From(),
		cfg.DigestBatchSize,
	)

	sequenceRunner := sequenceusecase.NewRunner(
		sequenceRepo,
		userRepo,
		digestRepo,
		connectionRepo,
		sendRepo,
		mailClient,
		defs,
		mailClient.From(),
		cfg.BillingEnabled,
	)

	var webhookHandler *senddelivery.WebhookHandler
	if cfg.MailerWebhookSecret != "" {
		verifier, err := mailer.NewWebhookVerifier(cfg.MailerWebhookSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to build webhook verifier: %w", err)
		}
		webhookHandler = senddelivery.NewWebhookHandler(verifier, sendusecase.NewTracker(sendRepo))
	} else {
		log.Println("[App] no webhook secret configured, engagement webhook disabled")
	}

	return &App{
		Config:         cfg,
		DB:             db,
		Adapters:       adapters,
		Syncer:         syncer,
		DigestRunner:   digestRunner,
		SequenceRunner: sequenceRunner,
		WebhookHandler: webhookHandler,
	}, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userdomain.User{},
		&notedomain.Connection{},
		&notedomain.Document{},
		&notedomain.SyncCursor{},
		&notedomain.ScopeItem{},
		&digestdomain.ReviewState{},
		&digestdomain.Digest{},
		&digestdomain.DigestItem{},
		&sequencedomain.SequenceState{},
		&senddomain.SendRecord{},
	)
}
