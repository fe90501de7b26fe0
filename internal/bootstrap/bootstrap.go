package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mvarga/claimsdesk/internal/config"
	"github.com/mvarga/claimsdesk/internal/core/ports"
	"github.com/mvarga/claimsdesk/internal/core/usecase"
	"github.com/mvarga/claimsdesk/internal/infrastructure/chunking"
	"github.com/mvarga/claimsdesk/internal/infrastructure/engine/dlp"
	"github.com/mvarga/claimsdesk/internal/infrastructure/engine/docai"
	"github.com/mvarga/claimsdesk/internal/infrastructure/engine/gateway"
	"github.com/mvarga/claimsdesk/internal/infrastructure/export/xlsx"
	"github.com/mvarga/claimsdesk/internal/infrastructure/extractor/pdftext"
	"github.com/mvarga/claimsdesk/internal/infrastructure/queue/nats"
	"github.com/mvarga/claimsdesk/internal/infrastructure/repository/postgres"
	"github.com/mvarga/claimsdesk/internal/infrastructure/resilience"
	"github.com/mvarga/claimsdesk/internal/infrastructure/storage/localfs"
	"github.com/mvarga/claimsdesk/internal/infrastructure/storage/s3"
	"github.com/mvarga/claimsdesk/internal/infrastructure/vector/qdrant"
)

// App wires the full dependency graph once for both binaries. The api uses
// everything; the worker only needs the batch usecase and the queue.
type App struct {
	Config config.Config

	Queue     ports.BatchQueue
	Claims    ports.ClaimService
	Ingest    ports.DocumentIngestor
	Pipeline  ports.PipelineService
	Batch     ports.BatchProcessor
	Reports   ports.ReportService
	Workflow  ports.WorkflowService
	Knowledge ports.KnowledgeService

	Documents ports.DocumentRepository
	ReportLog ports.ReportRepository
	Roles     ports.RoleDirectory
	Exporter  *xlsx.Exporter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	claimRepo := postgres.NewClaimRepository(db)
	docRepo := postgres.NewDocumentRepository(db)
	processedRepo := postgres.NewProcessedDocumentRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	contextRepo := postgres.NewContextRepository(db)
	roles := postgres.NewRoleDirectory(db)

	storage, err := newObjectStorage(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		BreakerEnabled:      true,
		BreakerMinRequests:  uint32(cfg.BreakerMinRequests),
		BreakerFailureRatio: cfg.BreakerFailureRatio,
		BreakerOpenTimeout:  time.Duration(cfg.BreakerOpenTimeoutSeconds) * time.Second,
	})

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	gatewayClient := gateway.New(
		cfg.GatewayURL,
		cfg.GatewayAPIKey,
		cfg.GatewayChatModel,
		cfg.GatewayEmbedModel,
		gateway.WithExecutor(executor),
	)
	refiner := gateway.NewRefiner(gatewayClient)
	reportEngine := gateway.NewReportEngine(gatewayClient)
	embedder := gateway.NewEmbedder(gatewayClient)

	ocr, deid, err := newGoogleEngines(ctx, cfg, executor)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, err
	}

	knowledgeStore := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)

	workflowUC := usecase.NewWorkflow(claimRepo, docRepo, reportRepo)
	pipelineUC := usecase.NewPipeline(docRepo, processedRepo, storage, ocr, deid, refiner)

	return &App{
		Config: cfg,

		Queue:     queue,
		Claims:    usecase.NewClaims(claimRepo),
		Ingest:    usecase.NewIngest(claimRepo, docRepo, storage),
		Pipeline:  pipelineUC,
		Batch:     usecase.NewBatch(claimRepo, docRepo, pipelineUC, workflowUC),
		Reports:   usecase.NewReports(claimRepo, docRepo, processedRepo, reportRepo, contextRepo, reportEngine, workflowUC),
		Workflow:  workflowUC,
		Knowledge: usecase.NewKnowledge(chunker, embedder, knowledgeStore),

		Documents: docRepo,
		ReportLog: reportRepo,
		Roles:     roles,
		Exporter:  xlsx.New(),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func newObjectStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "s3":
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "", "local":
		return localfs.New(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// newGoogleEngines builds the OCR and de-identification engines. Without a
// configured Document AI processor the local pdf text extractor is used.
// DLP has no local substitute: anonymization cannot be skipped, so missing
// DLP configuration fails the boot.
func newGoogleEngines(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.OCREngine, ports.Deidentifier, error) {
	var credentials []byte
	if cfg.GoogleCredentialsFile != "" {
		raw, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("read google credentials: %w", err)
		}
		credentials = raw
	}

	var ocr ports.OCREngine = pdftext.New()
	if cfg.DocAIProcessorID != "" {
		docaiClient, err := docai.New(ctx, docai.Config{
			ProjectID:       cfg.DocAIProjectID,
			Location:        cfg.DocAILocation,
			ProcessorID:     cfg.DocAIProcessorID,
			CredentialsJSON: credentials,
		}, docai.WithExecutor(executor))
		if err != nil {
			return nil, nil, fmt.Errorf("init document ai: %w", err)
		}
		ocr = docaiClient
	}

	if cfg.DLPProjectID == "" {
		return nil, nil, errors.New("dlp project id is required")
	}
	deidClient, err := dlp.New(ctx, dlp.Config{
		ProjectID:       cfg.DLPProjectID,
		CredentialsJSON: credentials,
	}, dlp.WithExecutor(executor))
	if err != nil {
		return nil, nil, fmt.Errorf("init dlp: %w", err)
	}

	return ocr, deidClient, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
