// Command paymentsctl calls the Payments API from the shell.
//
// Usage:
//
//	paymentsctl [global flags] <command> [flags] [args]
//
// Commands: list, get, create, cancel, complete, cancel-by-key, schema.
// Connection settings come from PAYMENTS_BASE_URL, PAYMENTS_ACCESS_TOKEN,
// PAYMENTS_TIMEOUT and PAYMENTS_USER_AGENT.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	payments "github.com/ggoodman/payments-go"
	"github.com/ggoodman/payments-go/auth"
	"github.com/ggoodman/payments-go/request"
	"github.com/ggoodman/payments-go/schema"
	"github.com/ggoodman/payments-go/tokencache"
	"github.com/ggoodman/payments-go/tokencache/memory"
	"github.com/ggoodman/payments-go/tokencache/redis"
	"github.com/ggoodman/payments-go/transport"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type globalFlags struct {
	verbose      bool
	tokenFile    string
	issuer       string
	clientID     string
	clientSecret string
	scopes       string
	tokenCache   string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var g globalFlags
	fs := flag.NewFlagSet("paymentsctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&g.verbose, "v", false, "log requests to stderr")
	fs.StringVar(&g.tokenFile, "token-file", "", "read the access token from a file and reload it on change")
	fs.StringVar(&g.issuer, "oidc-issuer", os.Getenv("PAYMENTS_OIDC_ISSUER"), "obtain tokens by client credentials from this issuer")
	fs.StringVar(&g.clientID, "client-id", os.Getenv("PAYMENTS_CLIENT_ID"), "client id for -oidc-issuer")
	fs.StringVar(&g.clientSecret, "client-secret", os.Getenv("PAYMENTS_CLIENT_SECRET"), "client secret for -oidc-issuer")
	fs.StringVar(&g.scopes, "scopes", "", "comma separated scopes for -oidc-issuer")
	fs.StringVar(&g.tokenCache, "token-cache", "memory", "where issued tokens are shared: memory or redis")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: paymentsctl [flags] list|get|create|cancel|complete|cancel-by-key|schema ...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "schema" {
		return runSchema(rest, stdout, stderr)
	}

	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := []payments.Option{payments.WithLogger(logger)}
	creds, closeCreds, err := g.credentials(ctx, logger)
	if err != nil {
		return reportError(stderr, fmt.Errorf("credentials: %w", err))
	}
	defer closeCreds()
	if creds != nil {
		opts = append(opts, payments.WithCredentials(creds))
	}

	client, err := payments.NewClientFromEnv(opts...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	var result any
	switch cmd {
	case "list":
		result, err = runList(ctx, client, rest, stderr)
	case "get", "cancel", "complete":
		result, err = runByID(ctx, client, cmd, rest)
	case "create":
		result, err = runCreate(ctx, client, rest, stderr)
	case "cancel-by-key":
		result, err = runCancelByKey(ctx, client, rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}
	if err != nil {
		return reportError(stderr, err)
	}
	return writeJSON(stdout, result)
}

// credentials picks the token source implied by the flags. The environment
// token, if any, is applied by the client itself and is overridden here.
func (g globalFlags) credentials(ctx context.Context, logger *slog.Logger) (auth.Credentials, func(), error) {
	noop := func() {}
	switch {
	case g.tokenFile != "":
		fc, err := auth.NewFileCredentials(ctx, g.tokenFile, auth.WithLogHandler(logger.Handler()))
		if err != nil {
			return nil, noop, err
		}
		return fc, func() { _ = fc.Close() }, nil
	case g.issuer != "":
		var cache tokencache.Cache
		switch g.tokenCache {
		case "memory", "":
			cache = memory.New()
		case "redis":
			rc, err := redis.NewFromEnv(ctx)
			if err != nil {
				return nil, noop, err
			}
			cache = rc
		default:
			return nil, noop, usageError{fmt.Errorf("unknown token cache %q", g.tokenCache)}
		}
		var scopes []string
		for _, s := range strings.Split(g.scopes, ",") {
			if s = strings.TrimSpace(s); s != "" {
				scopes = append(scopes, s)
			}
		}
		dc, err := auth.NewFromDiscovery(ctx, g.issuer, g.clientID, g.clientSecret,
			auth.WithScopes(scopes...),
			auth.WithTokenCache(cache, g.issuer+"|"+g.clientID),
			auth.WithDiscoveryLogHandler(logger.Handler()),
		)
		if err != nil {
			_ = cache.Close()
			return nil, noop, err
		}
		return dc, func() { _ = cache.Close() }, nil
	}
	return nil, noop, nil
}

func runList(ctx context.Context, client *payments.Client, args []string, stderr io.Writer) (any, error) {
	var (
		params                                    payments.ListPaymentsParams
		begin, end, order, cursor, loc, l4, brand optString
		total                                     optInt64
	)
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Var(&begin, "begin", "start of the reporting period, RFC 3339")
	fs.Var(&end, "end", "end of the reporting period, RFC 3339")
	fs.Var(&order, "sort", "ASC or DESC")
	fs.Var(&cursor, "cursor", "pagination cursor from a previous page")
	fs.Var(&loc, "location", "location id")
	fs.Var(&total, "total", "exact total amount in the smallest currency unit")
	fs.Var(&l4, "last4", "last 4 digits of the card")
	fs.Var(&brand, "brand", "card brand, e.g. VISA")
	if err := fs.Parse(args); err != nil {
		return nil, usageError{err}
	}
	params.BeginTime, params.EndTime, params.SortOrder = begin.p, end.p, order.p
	params.Cursor, params.LocationID, params.Last4, params.CardBrand = cursor.p, loc.p, l4.p, brand.p
	params.Total = total.p

	resp, err := client.Payments.ListPayments(ctx, params)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func runByID(ctx context.Context, client *payments.Client, cmd string, args []string) (any, error) {
	if len(args) != 1 {
		return nil, usageError{fmt.Errorf("%s takes exactly one payment id", cmd)}
	}
	var (
		resp *request.Response[payments.PaymentResponse]
		err  error
	)
	switch cmd {
	case "get":
		resp, err = client.Payments.GetPayment(ctx, args[0])
	case "cancel":
		resp, err = client.Payments.CancelPayment(ctx, args[0])
	case "complete":
		resp, err = client.Payments.CompletePayment(ctx, args[0])
	}
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func runCreate(ctx context.Context, client *payments.Client, args []string, stderr io.Writer) (any, error) {
	var (
		body          payments.CreatePaymentRequest
		note, ref     optString
		autocomplete  = true
		idempotentKey string
	)
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&body.SourceID, "source", "", "payment source id, e.g. a card nonce")
	fs.Int64Var(&body.AmountMoney.Amount, "amount", 0, "amount in the smallest currency unit")
	fs.StringVar(&body.AmountMoney.Currency, "currency", "USD", "ISO 4217 currency code")
	fs.StringVar(&idempotentKey, "idempotency-key", "", "idempotency key; generated when empty")
	fs.BoolVar(&autocomplete, "autocomplete", true, "complete the payment immediately")
	fs.Var(&note, "note", "note attached to the payment")
	fs.Var(&ref, "reference", "reference id")
	if err := fs.Parse(args); err != nil {
		return nil, usageError{err}
	}
	if body.SourceID == "" || body.AmountMoney.Amount <= 0 {
		return nil, usageError{errors.New("create requires -source and a positive -amount")}
	}
	if idempotentKey == "" {
		idempotentKey = payments.NewIdempotencyKey()
	}
	body.IdempotencyKey = idempotentKey
	body.Autocomplete = payments.Bool(autocomplete)
	body.Note, body.ReferenceID = note.p, ref.p

	resp, err := client.Payments.CreatePayment(ctx, body)
	if err != nil {
		// The key is what cancel-by-key needs if the outcome is unknown.
		return nil, fmt.Errorf("%w (idempotency key %s)", err, idempotentKey)
	}
	return resp.Result, nil
}

func runCancelByKey(ctx context.Context, client *payments.Client, args []string) (any, error) {
	if len(args) != 1 {
		return nil, usageError{errors.New("cancel-by-key takes exactly one idempotency key")}
	}
	resp, err := client.Payments.CancelPaymentByIdempotencyKey(ctx, payments.CancelPaymentByIdempotencyKeyRequest{IdempotencyKey: args[0]})
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func runSchema(args []string, stdout, stderr io.Writer) int {
	all := payments.Schemas()
	if len(args) == 0 {
		names := make([]string, 0, len(all))
		for name := range all {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}
	v, ok := all[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown model %q\n", args[0])
		return 2
	}
	fp, err := schema.Fingerprint(v)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return writeJSON(stdout, map[string]any{
		"model":       args[0],
		"fingerprint": fp,
		"schema":      schema.JSONSchema(v),
	})
}

type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

func reportError(stderr io.Writer, err error) int {
	var (
		uerr usageError
		serr *transport.StatusError
		aerr *request.ArgumentError
		derr *request.ResponseDecodeError
	)
	switch {
	case errors.As(err, &uerr):
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return 2
	case errors.As(err, &serr):
		fmt.Fprintf(stderr, "%v: %s\n", err, strings.TrimSpace(string(serr.Response.Body)))
	case errors.As(err, &aerr):
		fmt.Fprintln(stderr, "invalid argument:", err)
	case errors.As(err, &derr):
		fmt.Fprintln(stderr, "unexpected response:", err)
	default:
		fmt.Fprintln(stderr, err)
	}
	return 1
}

func writeJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return 1
	}
	return 0
}

type optString struct{ p *string }

func (o *optString) String() string {
	if o.p == nil {
		return ""
	}
	return *o.p
}

func (o *optString) Set(s string) error {
	o.p = &s
	return nil
}

type optInt64 struct{ p *int64 }

func (o *optInt64) String() string {
	if o.p == nil {
		return ""
	}
	return strconv.FormatInt(*o.p, 10)
}

func (o *optInt64) Set(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	o.p = &n
	return nil
}
