// Command honeybear starts the Honey Bear game server.
//
// It supports two modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket and an /mcp endpoint
//  2. "stdio-mcp" runs an MCP stdio server and starts an internal HTTP API if none is available
//
// Flags control host/port, board directory, clock speed, debug logging,
// Redis fan-out across instances and optional ngrok tunneling.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/honeybear/api"
	"github.com/wricardo/mcp-training/honeybear/game/config"
	"github.com/wricardo/mcp-training/honeybear/game/engine"
	"github.com/wricardo/mcp-training/honeybear/game/service"
	"github.com/wricardo/mcp-training/honeybear/game/session"
	"github.com/wricardo/mcp-training/honeybear/transport/mcp"
	"github.com/wricardo/mcp-training/honeybear/transport/redisbus"
	"github.com/wricardo/mcp-training/honeybear/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Honey Bear Game Server"
)

const (
	cleanupInterval = time.Hour
	sessionMaxAge   = 24 * time.Hour
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "honeybear",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing board configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.DurationFlag{
				Name:    "tick",
				Value:   engine.DefaultTickInterval,
				Usage:   "real-time length of one game second",
				Sources: cli.EnvVars("TICK_INTERVAL"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for sharing state updates between instances (disabled when empty)",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runHTTPServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run the HTTP server with API, WebSocket and MCP endpoint (default)",
				Action:  runHTTPServer,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run an MCP stdio server backed by a local or internal HTTP API",
				Action:  runStdioMCP,
			},
		},
	}
}

// services bundles what both modes share
type services struct {
	game     service.GameService
	sessions *session.Manager
}

// initializeServices wires the session and config managers into the game service
func initializeServices(configDir string, tick time.Duration) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager(session.WithTickInterval(tick))

	return &services{
		game:     service.NewGameService(sessionManager, configManager),
		sessions: sessionManager,
	}, nil
}

// connectRedis returns nil when addr is empty
func connectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return client, nil
}

// mcpHandler serves single JSON-RPC messages over HTTP POST
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// buildRouter mounts the API at the root and the MCP endpoint at /mcp
func buildRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient.GetMCPServer()))
	return mainRouter
}

// runHTTPServer starts the REST API, WebSocket hub and /mcp endpoint. With
// --redis-addr state updates go through Redis so every instance's viewers
// see them. With --ngrok a public tunnel serves the same router.
func runHTTPServer(ctx context.Context, cmd *cli.Command) error {
	svc, err := initializeServices(cmd.String("config-dir"), cmd.Duration("tick"))
	if err != nil {
		return err
	}
	defer svc.sessions.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	hub := websocket.NewHub()
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	var opts []api.Option
	rdb, err := connectRedis(ctx, cmd.String("redis-addr"))
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		bus := redisbus.New(rdb)
		opts = append(opts, api.WithBroadcaster(bus))
		svc.sessions.SetTickObserver(bus.BroadcastTick)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bus.Run(ctx, hub); err != nil {
				log.Printf("Redis bus stopped: %v", err)
			}
		}()
		log.Printf("Sharing state updates through Redis at %s", cmd.String("redis-addr"))
	} else {
		svc.sessions.SetTickObserver(hub.BroadcastTick)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.sessions.RunCleanup(ctx, cleanupInterval, sessionMaxAge, func(removed int) {
			log.Printf("Cleaned up %d expired sessions", removed)
		})
	}()

	apiServer := api.NewServer(svc.game, hub, opts...)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := buildRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("%s v%s listening on %s", AppName, Version, addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return runErr
}

// runNgrok serves handler through a public tunnel until ctx is done
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Println("WARNING: ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// apiAvailable reports whether a game API answers at baseURL
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses a game server already
// listening on --host/--port and otherwise starts an internal one on a random
// loopback port. Logs go to stderr so stdout stays a clean JSON-RPC stream.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	log.SetOutput(os.Stderr)

	externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), cmd.Int("port"))
	baseURL := externalURL

	if apiAvailable(ctx, externalURL) {
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No API server at %s, starting internal HTTP server", externalURL)

		svc, err := initializeServices(cmd.String("config-dir"), cmd.Duration("tick"))
		if err != nil {
			return err
		}
		defer svc.sessions.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run(ctx)
		svc.sessions.SetTickObserver(hub.BroadcastTick)

		httpServer := &http.Server{Handler: api.NewServer(svc.game, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.Printf("Internal HTTP server on %s", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Println("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
