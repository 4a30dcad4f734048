// Command slctl is a command-line client for the SellerLegend API.
//
// Usage:
//
//	SL_BASE_URL=https://app.sellerlegend.com SL_CLIENT_ID=... SL_CLIENT_SECRET=... slctl <command>
//
// Commands:
//
//	status              probe the API health endpoint
//	auth-url            print the authorization URL for the browser flow
//	login               run the interactive authorization-code flow
//	client-credentials  obtain a token via the client_credentials grant
//	token-info          decode and print the held access token's claims
//	whoami              print the authenticated user's profile
//	orders              list recent orders
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sellerlegend/sellerlegend-go/internal/callback"
	"github.com/sellerlegend/sellerlegend-go/internal/config"
	"github.com/sellerlegend/sellerlegend-go/pkg/oauth"
	"github.com/sellerlegend/sellerlegend-go/pkg/sellerlegend"
	"github.com/sellerlegend/sellerlegend-go/pkg/tokenstore"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: slctl [-config file] <status|auth-url|login|client-credentials|token-info|whoami|orders>")
		os.Exit(2)
	}
	command := flag.Arg(0)

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Environment == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = logger

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	cred := tokenstore.New()
	if cfg.AccessToken != "" {
		cred.Store(cfg.AccessToken, cfg.RefreshToken, 0)
	}

	engine := oauth.New(cfg.ClientID, cfg.ClientSecret, cfg.BaseURL, cfg.RedirectURI, cred, logger,
		oauth.WithTimeout(cfg.Timeout.Std()))

	client := sellerlegend.NewClient(cfg.BaseURL, engine, logger,
		sellerlegend.WithTimeout(cfg.Timeout.Std()),
		sellerlegend.WithRetry(cfg.MaxRetries, cfg.BackoffFactor))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "status":
		err = runStatus(ctx, client)
	case "auth-url":
		err = runAuthURL(engine)
	case "login":
		err = runLogin(ctx, cfg, engine, logger)
	case "client-credentials":
		err = runClientCredentials(ctx, engine, cred)
	case "token-info":
		err = runTokenInfo(cred)
	case "whoami":
		err = runWhoami(ctx, client)
	case "orders":
		err = runOrders(ctx, client, flag.Args()[1:])
	default:
		logger.Fatal().Str("command", command).Msg("unknown command")
	}
	if err != nil {
		logger.Fatal().Err(err).Str("command", command).Msg("command failed")
	}
}

func runStatus(ctx context.Context, client *sellerlegend.Client) error {
	status, err := client.GetServiceStatus(ctx)
	if err != nil {
		return err
	}
	return printJSON(status)
}

func runAuthURL(engine *oauth.Client) error {
	authURL, state, err := engine.AuthorizationURL("", "*")
	if err != nil {
		return err
	}
	fmt.Println(authURL)
	fmt.Fprintf(os.Stderr, "state: %s\n", state)
	return nil
}

// runLogin drives the full interactive flow: print the authorization URL,
// wait for the browser redirect on the loopback server, exchange the code.
func runLogin(ctx context.Context, cfg *config.Config, engine *oauth.Client, logger zerolog.Logger) error {
	authURL, _, err := engine.AuthorizationURL("", "*")
	if err != nil {
		return err
	}

	srv := callback.New(cfg.CallbackAddr, "/callback", logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	defer srv.Shutdown()

	fmt.Fprintf(os.Stderr, "Open this URL in your browser:\n\n  %s\n\nWaiting for the redirect on %s ...\n", authURL, cfg.CallbackAddr)

	res, err := srv.Wait(ctx, 5*time.Minute)
	if err != nil {
		return fmt.Errorf("waiting for authorization redirect: %w", err)
	}
	if res.Error != "" {
		return fmt.Errorf("authorization denied: %s", res.Error)
	}

	tok, err := engine.ExchangeAuthorizationCode(ctx, res.Code, res.State)
	if err != nil {
		return err
	}

	logger.Info().Msg("login successful")
	return printJSON(map[string]any{
		"token_type":    tok.TokenType,
		"expires_in":    tok.ExpiresIn,
		"access_token":  tok.AccessToken,
		"refresh_token": tok.RefreshToken,
	})
}

func runClientCredentials(ctx context.Context, engine *oauth.Client, cred *tokenstore.Credential) error {
	if _, err := engine.ExchangeClientCredentials(ctx); err != nil {
		return err
	}
	return printJSON(cred.Info())
}

func runTokenInfo(cred *tokenstore.Credential) error {
	raw, ok := cred.AccessToken()
	if !ok {
		return fmt.Errorf("no access token held; run login or client-credentials first")
	}
	claims, err := oauth.TokenClaims(raw)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"credential": cred.Info(),
		"claims":     claims,
	})
}

func runWhoami(ctx context.Context, client *sellerlegend.Client) error {
	me, err := client.User.Me(ctx)
	if err != nil {
		return err
	}
	return printJSON(me)
}

func runOrders(ctx context.Context, client *sellerlegend.Client, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	startDate := fs.String("start", "", "start date (YYYY-MM-DD)")
	endDate := fs.String("end", "", "end date (YYYY-MM-DD)")
	channel := fs.String("channel", "", "sales channel (amazon or non-amazon)")
	perPage := fs.Int("per-page", 0, "page size (500, 1000, or 2000)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	orders, err := client.Sales.Orders(ctx, sellerlegend.OrdersOptions{
		PerPage:      *perPage,
		StartDate:    *startDate,
		EndDate:      *endDate,
		SalesChannel: *channel,
	})
	if err != nil {
		return err
	}
	return printJSON(orders)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
