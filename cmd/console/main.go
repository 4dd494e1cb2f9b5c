// cmd/console/main.go
//
// Command-line console for the Mesagoo message gateway: authentication,
// template management, single message sends and the bulk CSV workflow.
package main

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mesagoo-console/internal/common/config"
	"mesagoo-console/internal/common/errors"
	"mesagoo-console/internal/common/logger"
	"mesagoo-console/internal/common/validation"
	"mesagoo-console/internal/gateway"
	"mesagoo-console/internal/models"
	"mesagoo-console/internal/session"
)

const usage = `Usage: console <command> [options]

Commands:
  config                       show the configured base URL and session state
  config --base-url <url>      point the console at a different deployment
  login --email <e> --password <p>
  logout
  whoami
  gateways                     list message gateways
  senders                      list sender identities
  template list|get|create|update|delete
  send --file <payload.json>   send a single message
  verify <id>                  check delivery state of a sent message
  bulk upload|validate|process|status|details|list|watch
`

type app struct {
	cfg    *config.Config
	log    logger.Logger
	store  session.Store
	client *gateway.Client
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	if cfg.Logging.Level != "" {
		log = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := newApp(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("startup failed", zap.Error(err))
	}
	defer cleanup()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.WithError(err).Error("command failed", map[string]interface{}{
			"command":   os.Args[1],
			"errorCode": errors.ExtractCode(err),
		})
		fmt.Fprintf(os.Stderr, "error: %s\n", errorMessage(err))
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, func(), error) {
	var store session.Store
	cleanup := func() {}

	switch cfg.Session.Backend {
	case "redis":
		redisStore := session.NewRedisStore(cfg.Session.Redis)
		if err := redisStore.Ping(ctx); err != nil {
			return nil, nil, err
		}
		store = redisStore
		cleanup = func() { redisStore.Close() }
	default:
		store = session.NewMemoryStore()
	}

	// The configured base URL seeds a fresh session only; a URL set with
	// `console config --base-url` persists and wins on later runs.
	settings, err := store.Settings(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if cfg.API.BaseURL != "" && settings.BaseURL == session.DefaultBaseURL {
		if err := store.SetBaseURL(ctx, cfg.API.BaseURL); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	client, err := gateway.NewClient(gateway.Options{
		Store:   store,
		Timeout: config.GetDuration(cfg.API.Timeout),
		Logger:  log,
		OnSessionExpired: func() {
			fmt.Fprintln(os.Stderr, "session expired, run `console login` to continue")
		},
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &app{cfg: cfg, log: log, store: store, client: client}, cleanup, nil
}

// authRequired lists the commands guarded up front; login, logout and
// config work without a session.
var authRequired = map[string]bool{
	"whoami":   true,
	"gateways": true,
	"senders":  true,
	"template": true,
	"send":     true,
	"verify":   true,
	"bulk":     true,
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	if authRequired[command] && !a.client.IsAuthenticated(ctx) {
		return fmt.Errorf("not logged in, run `console login` first")
	}

	switch command {
	case "config":
		return a.runConfig(ctx, args)
	case "login":
		return a.runLogin(ctx, args)
	case "logout":
		return a.client.Logout(ctx)
	case "whoami":
		return a.runWhoami(ctx)
	case "gateways":
		gateways, err := a.client.MessageGateways(ctx)
		if err != nil {
			return err
		}
		return printJSON(gateways)
	case "senders":
		senders, err := a.client.Senders(ctx)
		if err != nil {
			return err
		}
		return printJSON(senders)
	case "template":
		return a.runTemplate(ctx, args)
	case "send":
		return a.runSend(ctx, args)
	case "verify":
		return a.runVerify(ctx, args)
	case "bulk":
		return a.runBulk(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) runConfig(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	baseURL := fs.String("base-url", "", "gateway API base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *baseURL != "" {
		if err := a.store.SetBaseURL(ctx, *baseURL); err != nil {
			return err
		}
	}

	settings, err := a.store.Settings(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"base_url":      settings.BaseURL,
		"authenticated": a.store.IsAuthenticated(ctx),
	})
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("both --email and --password are required")
	}

	auth, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}

	a.log.Info("logged in", map[string]interface{}{"email": *email})
	return printJSON(auth.User)
}

func (a *app) runWhoami(ctx context.Context) error {
	user := a.client.CurrentUser(ctx)
	if user == nil {
		return fmt.Errorf("not logged in")
	}
	return printJSON(user)
}

func (a *app) runTemplate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: console template list|get|create|update|delete")
	}

	switch args[0] {
	case "list":
		templates, err := a.client.ListTemplates(ctx)
		if err != nil {
			return err
		}
		return printJSON(templates)

	case "get":
		id, err := parseID(args[1:], "template")
		if err != nil {
			return err
		}
		template, err := a.client.GetTemplate(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(template)

	case "create":
		input, err := loadTemplateInput(args[1:])
		if err != nil {
			return err
		}
		template, err := a.client.CreateTemplate(ctx, *input)
		if err != nil {
			return err
		}
		return printJSON(template)

	case "update":
		id, err := parseID(args[1:], "template")
		if err != nil {
			return err
		}
		input, err := loadTemplateInput(args[2:])
		if err != nil {
			return err
		}
		template, err := a.client.UpdateTemplate(ctx, id, *input)
		if err != nil {
			return err
		}
		return printJSON(template)

	case "delete":
		id, err := parseID(args[1:], "template")
		if err != nil {
			return err
		}
		if err := a.client.DeleteTemplate(ctx, id); err != nil {
			return err
		}
		a.log.Info("template deleted", map[string]interface{}{"id": id})
		return nil

	default:
		return fmt.Errorf("unknown template subcommand %q", args[0])
	}
}

func (a *app) runSend(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	file := fs.String("file", "", "JSON payload file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("--file is required")
	}

	raw, generic, err := readPayloadFile(*file)
	if err != nil {
		return err
	}
	if err := validation.ValidateSingleMessage(generic); err != nil {
		return err
	}

	var payload models.SingleMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode %s: %w", *file, err)
	}

	receipt, err := a.client.SendSingleMessage(ctx, payload)
	if err != nil {
		return err
	}
	return printJSON(receipt)
}

func (a *app) runVerify(ctx context.Context, args []string) error {
	id, err := parseID(args, "message")
	if err != nil {
		return err
	}
	verification, err := a.client.VerifyMessage(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(verification)
}

func (a *app) runBulk(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: console bulk upload|validate|process|status|details|list|watch")
	}

	switch args[0] {
	case "upload":
		return a.runBulkUpload(ctx, args[1:])

	case "validate":
		id, err := parseID(args[1:], "batch")
		if err != nil {
			return err
		}
		result, err := a.client.ValidateBulkCSV(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(result)

	case "process":
		id, err := parseID(args[1:], "batch")
		if err != nil {
			return err
		}
		batch, err := a.client.ProcessBulkCSV(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(batch)

	case "status":
		id, err := parseID(args[1:], "batch")
		if err != nil {
			return err
		}
		batch, err := a.client.BulkCSVStatus(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(batch)

	case "details":
		id, err := parseID(args[1:], "batch")
		if err != nil {
			return err
		}
		details, err := a.client.BulkCSVDetails(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(details)

	case "list":
		return a.runBulkList(ctx, args[1:])

	case "watch":
		return a.runBulkWatch(ctx, args[1:])

	default:
		return fmt.Errorf("unknown bulk subcommand %q", args[0])
	}
}

func (a *app) runBulkUpload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bulk upload", flag.ContinueOnError)
	file := fs.String("file", "", "CSV file to upload")
	gatewayID := fs.Int64("gateway", 0, "message gateway ID")
	senderID := fs.Int64("sender", 0, "sender ID")
	templateID := fs.Int64("template", 0, "template ID (optional)")
	mappingJSON := fs.String("mapping", "", "column mapping as JSON (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" || *gatewayID == 0 || *senderID == 0 {
		return fmt.Errorf("--file, --gateway and --sender are required")
	}

	var mapping models.BulkMessageMapping
	if *mappingJSON != "" {
		if err := json.Unmarshal([]byte(*mappingJSON), &mapping); err != nil {
			return fmt.Errorf("decode --mapping: %w", err)
		}
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	batch, err := a.client.UploadBulkCSV(ctx, gateway.UploadRequest{
		File:             f,
		Filename:         *file,
		MessageGatewayID: *gatewayID,
		SenderID:         *senderID,
		TemplateID:       *templateID,
		Mapping:          mapping,
	})
	if err != nil {
		return err
	}
	return printJSON(batch)
}

func (a *app) runBulkList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bulk list", flag.ContinueOnError)
	status := fs.String("status", "", "filter by status")
	page := fs.Int("page", 0, "page number")
	perPage := fs.Int("per-page", 0, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := &gateway.BulkListFilter{}
	if *status != "" {
		s := models.BulkMessageCsvStatus(*status)
		filter.Status = &s
	}
	if *page > 0 {
		filter.Page = page
	}
	if *perPage > 0 {
		filter.PerPage = perPage
	}

	batches, err := a.client.ListBulkCSVs(ctx, filter)
	if err != nil {
		return err
	}
	return printJSON(batches)
}

func (a *app) runBulkWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bulk watch", flag.ContinueOnError)
	interval := fs.Duration("interval", 2*time.Second, "poll interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(fs.Args(), "batch")
	if err != nil {
		return err
	}

	batch, err := a.client.AwaitBulkCSV(ctx, id, *interval)
	if err != nil {
		return err
	}
	return printJSON(batch)
}

func loadTemplateInput(args []string) (*models.TemplateInput, error) {
	fs := flag.NewFlagSet("template input", flag.ContinueOnError)
	file := fs.String("file", "", "JSON template file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *file == "" {
		return nil, fmt.Errorf("--file is required")
	}

	raw, generic, err := readPayloadFile(*file)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateTemplateInput(generic); err != nil {
		return nil, err
	}

	var input models.TemplateInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("decode %s: %w", *file, err)
	}
	return &input, nil
}

func readPayloadFile(path string) ([]byte, map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return raw, generic, nil
}

func parseID(args []string, noun string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s ID is required", noun)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s ID %q", noun, args[0])
	}
	return id, nil
}

// errorMessage flattens a StandardError to its message plus details.
func errorMessage(err error) string {
	var stdErr *errors.StandardError
	if goerrors.As(err, &stdErr) {
		if stdErr.Details != "" {
			return fmt.Sprintf("%s (%s)", stdErr.Message, stdErr.Details)
		}
		return stdErr.Message
	}
	return err.Error()
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
