package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pmcp "github.com/plankhq/plank/internal/mcp"
	"github.com/plankhq/plank/internal/objectstore"
	"github.com/plankhq/plank/internal/server"
	"github.com/plankhq/plank/internal/service"
	"github.com/plankhq/plank/internal/store"
	"github.com/plankhq/plank/internal/telemetry"
)

const banner = `
 ___ _      _   _  _ _  __
| _ \ |    /_\ | \| | |/ /
|  _/ |__ / _ \| .` + "`" + ` | ' <
|_| |____/_/ \_\_|\_|_|\_\
`

// devBypassKey is accepted as a valid API key when --dev is set, so local
// tooling can hit the API without creating a key first.
const devBypassKey = "plank-dev-key"

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		noUI bool
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Plank daemon",
		Long: `Start the HTTP daemon that serves the REST API, the web UI, and the
OpenAPI description. Requests from this machine or your private LAN are
trusted automatically; everything else needs an API key or session token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, noUI, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "HTTP listen host")
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "Disable the web UI")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging, dev API key)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(host string, port int, noUI, dev bool) error {
	fmt.Print(banner)
	fmt.Println()

	fileCfg := loadFileConfig()

	// Set up logger
	logLevel := slog.LevelInfo
	if dev || fileCfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	}
	var handler slog.Handler
	if fileCfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}
	logger := slog.New(handler)

	// 1. Open the data store
	dir := resolveDataDir()
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	logger.Info("store opened", "data_dir", dir)

	// 2. Open the snapshot object store
	objects, err := objectstore.New(filepath.Join(dir, "snapshots"))
	if err != nil {
		return fmt.Errorf("init snapshot store: %w", err)
	}

	// 3. Initialize auth service
	jwtSecret := viper.GetString("auth.jwt_secret")
	if jwtSecret == "" {
		jwtSecret = fileCfg.Auth.JWTSecret
	}
	if jwtSecret == "" {
		jwtSecret = "plank-dev-secret-change-me"
		if !dev {
			logger.Warn("auth.jwt_secret not set, using insecure default; set PLANK_AUTH_JWT_SECRET")
		}
	}
	bypass := fileCfg.Auth.DevBypassKey
	if dev {
		bypass = devBypassKey
	}
	authSvc := service.NewAuthService(st, jwtSecret, bypass, logger)

	// 4. Build the HTTP server
	srvCfg := server.DefaultConfig()
	srvCfg.Host = host
	srvCfg.Port = port
	srvCfg.EnableUI = !noUI
	srvCfg.OAuthAuthorizeURL = fileCfg.Auth.OAuthAuthorizeURL
	if url := viper.GetString("auth.oauth_authorize_url"); url != "" {
		srvCfg.OAuthAuthorizeURL = url
	}
	if hdr := fileCfg.Auth.APIKeyHeader; hdr != "" {
		srvCfg.APIKeyHeader = hdr
	}
	if origins := fileCfg.Server.CORS.Origins; len(origins) > 0 {
		srvCfg.CORSOrigins = origins
	}

	srv := server.New(srvCfg, st, objects, authSvc, logger)

	// 5. Optionally expose the MCP channel alongside the REST API. Stdio
	// transport only makes sense under `plank mcp`; here only HTTP applies.
	if fileCfg.MCP.Enabled && fileCfg.MCP.Transport == "http" {
		mcpSrv := pmcp.NewMCPServer(st, logger)
		go func() {
			if err := mcpSrv.ServeHTTP(":3001"); err != nil {
				logger.Error("MCP HTTP server stopped", "error", err)
			}
		}()
	}

	// 6. Start the telemetry heartbeat
	ctx := context.Background()
	tracker := telemetry.New(ctx, st, telemetryProps(ctx, st))
	if tracker != nil {
		telemetry.PrintNotice()
		tracker.Start()
		defer tracker.Shutdown()
	}

	fmt.Printf("→ Plank %s\n", versionString())
	fmt.Printf("→ Listening on http://%s:%d\n", host, port)
	if !noUI {
		fmt.Printf("→ Web UI:   http://%s:%d/\n", host, port)
	}
	fmt.Printf("→ OpenAPI:  http://%s:%d/openapi.json\n", host, port)
	fmt.Printf("→ Health:   http://%s:%d/health\n", host, port)
	if dev {
		fmt.Printf("→ Dev API key: %s\n", devBypassKey)
	}
	fmt.Println()

	return srv.ListenAndServe()
}

// telemetryProps returns a PropertiesFunc that counts the main entities at
// flush time. Count failures report zero rather than aborting the heartbeat.
func telemetryProps(ctx context.Context, st *store.Store) telemetry.PropertiesFunc {
	started := time.Now()
	return func() telemetry.Properties {
		props := telemetry.Properties{
			Version:     versionString(),
			OS:          runtime.GOOS,
			Arch:        runtime.GOARCH,
			StorageDrv:  viper.GetString("storage.driver"),
			UptimeHours: time.Since(started).Hours(),
		}
		if props.StorageDrv == "" {
			props.StorageDrv = "sqlite"
		}
		if projects, err := st.ListProjects(ctx); err == nil {
			props.Projects = len(projects)
		}
		if tasks, err := st.ListTasks(ctx); err == nil {
			props.Tasks = len(tasks)
		}
		if bugs, err := st.ListBugs(ctx); err == nil {
			props.Bugs = len(bugs)
		}
		if users, err := st.ListUsers(ctx); err == nil {
			props.Users = len(users)
		}
		if keys, err := st.ListAPIKeys(ctx); err == nil {
			props.APIKeys = len(keys)
		}
		return props
	}
}
