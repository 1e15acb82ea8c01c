// Command hotelctl runs one hotel front-desk command against the configured
// document store and prints the outcome.
//
//	hotelctl [-env FILE[,FILE]] [-json] COMMAND [flags]
//
// Storage, logging and metrics are configured through HOTEL_* environment
// variables (see internal/config).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"hotelcore/internal/config"
	"hotelcore/internal/core"
	"hotelcore/internal/infra/document"
	"hotelcore/internal/logging"
	"hotelcore/internal/metrics"
)

// Exit codes.
const (
	exitOK       = 0
	exitRejected = 1
	exitUsage    = 2
	exitFailure  = 3
)

var exitFunc = os.Exit

func main() {
	code := cli(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hotelctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFiles := fs.String("env", "", "comma-separated .env files to load (default .env if present)")
	asJSON := fs.Bool("json", false, "print the outcome as JSON")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "usage: hotelctl [-env FILE] [-json] COMMAND [flags]\ncommands: %s\n", joinOps())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}
	cmd, err := parseCommand(fs.Arg(0), fs.Args()[1:], stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "hotelctl: %v\n", err)
		return exitUsage
	}

	var files []string
	if *envFiles != "" {
		files = strings.Split(*envFiles, ",")
	}
	cfg, err := config.Load(files...)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "hotelctl: config: %v\n", err)
		return exitUsage
	}
	logger, err := logging.FromStrings(cfg.LogLevel, cfg.LogFormat, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "hotelctl: %v\n", err)
		return exitUsage
	}

	sink, closer, err := document.Open(ctx, cfg)
	if err != nil {
		logger.Error("open document store", "driver", string(cfg.StorageDriver), "error", err)
		return exitFailure
	}
	defer func() { _ = closer.Close() }()

	recorder := metrics.NewPrometheusRecorder()
	opts := []core.ServiceOption{
		core.WithLogger(logger),
		core.WithAuditRecorder(core.LoggerAuditRecorder{Logger: logger}),
		core.WithMetricsRecorder(recorder),
	}
	if cfg.TraceFile != "" {
		// #nosec G304 -- path comes from operator configuration
		f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			logger.Error("open trace file", "path", cfg.TraceFile, "error", err)
			return exitFailure
		}
		defer func() { _ = f.Close() }()
		opts = append(opts, core.WithTracer(core.NewJSONTracer(f)))
	}
	svc, err := core.OpenService(ctx, sink, opts...)
	if err != nil {
		logger.Error("load hotel document", "driver", string(cfg.StorageDriver), "error", err)
		return exitFailure
	}
	if cmd.Op == core.OpRegister {
		cmd = prefillFromHistory(svc, cmd)
	}

	out := svc.Submit(ctx, cmd)

	if cfg.MetricsTextfile != "" {
		if err := recorder.WatchOccupancy(svc.Summary); err != nil {
			logger.Warn("register occupancy metrics", "error", err)
		}
		if err := recorder.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn("write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	if err := render(stdout, out, *asJSON); err != nil {
		logger.Error("write output", "error", err)
		return exitFailure
	}
	switch {
	case out.Err != nil:
		return exitFailure
	case !out.OK:
		return exitRejected
	default:
		return exitOK
	}
}

// prefillFromHistory fills a returning guest's missing name and age from the
// last recorded registration.
func prefillFromHistory(svc *core.Service, cmd core.Command) core.Command {
	prev, ok := svc.PreviousRegistration(cmd.Key)
	if !ok {
		return cmd
	}
	if cmd.Name == "" {
		cmd.Name = prev.Name
	}
	if cmd.Age == "" {
		cmd.Age = prev.Age
	}
	return cmd
}

func joinOps() string {
	names := make([]string, len(core.Ops))
	for i, op := range core.Ops {
		names[i] = string(op)
	}
	return strings.Join(names, ", ")
}

func knownOp(name string) (core.Op, bool) {
	for _, op := range core.Ops {
		if string(op) == name {
			return op, true
		}
	}
	return "", false
}

// parseCommand maps a command name and its flags onto a core.Command.
func parseCommand(name string, args []string, stderr io.Writer) (core.Command, error) {
	op, ok := knownOp(name)
	if !ok {
		return core.Command{}, fmt.Errorf("unknown command %q (commands: %s)", name, joinOps())
	}
	cmd := core.Command{Op: op}
	fs := flag.NewFlagSet("hotelctl "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var misc string
	needsKey := false
	switch op {
	case core.OpRegister:
		needsKey = true
		fs.StringVar(&cmd.Name, "name", "", "guest name (prefilled for returning guests)")
		fs.StringVar(&cmd.Age, "age", "", "guest age (prefilled for returning guests)")
	case core.OpEditUser:
		needsKey = true
		fs.StringVar(&cmd.Name, "name", "", "new name")
		fs.StringVar(&cmd.Age, "age", "", "new age")
		fs.StringVar(&cmd.NewKey, "new-key", "", "move the guest to this key")
	case core.OpUnregister, core.OpCheckIn:
		needsKey = true
	case core.OpCheckOut, core.OpRemoveBooking:
		needsKey = true
		fs.BoolVar(&cmd.Unregister, "unregister", false, "also unregister the guest")
	case core.OpAddBooking, core.OpEditBooking:
		needsKey = true
		fs.StringVar(&cmd.Room, "room", "", "room number")
		fs.StringVar(&cmd.Message, "message", "", "message left on the room")
	case core.OpAddRoom, core.OpEditRoom:
		if op == core.OpEditRoom {
			fs.StringVar(&cmd.Room, "room", "", "room number")
		}
		var state string
		fs.StringVar(&cmd.RoomFields.Name, "name", "", "room name")
		fs.StringVar(&cmd.RoomFields.Price, "price", "", "price per night")
		fs.StringVar(&cmd.RoomFields.Capacity, "capacity", "", "number of guests")
		fs.StringVar(&state, "state", "", "vacant or occupied")
		fs.StringVar(&cmd.RoomFields.Description, "description", "", "free text description")
		fs.StringVar(&misc, "misc", "", "comma-separated tags")
		if err := fs.Parse(args); err != nil {
			return core.Command{}, err
		}
		cmd.RoomFields.State = core.RoomState(state)
		cmd.RoomFields.Misc = splitList(misc)
		return cmd, checkExtra(fs)
	case core.OpRemoveRoom:
		fs.StringVar(&cmd.Room, "room", "", "room number")
	case core.OpFilterRooms:
		fs.StringVar(&cmd.Field, "field", "", "room field (name, price, capacity, state, description, user, message, misc)")
		fs.StringVar(&cmd.Value, "value", "", "value to match")
		fs.BoolVar(&cmd.Inverted, "invert", false, "return rooms that do not match")
	}
	if needsKey {
		fs.StringVar(&cmd.Key, "key", "", "guest identifier (12 digits, dashes allowed)")
	}
	if err := fs.Parse(args); err != nil {
		return core.Command{}, err
	}
	if needsKey && cmd.Key == "" {
		return core.Command{}, fmt.Errorf("%s: -key is required", name)
	}
	return cmd, checkExtra(fs)
}

func checkExtra(fs *flag.FlagSet) error {
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type jsonOutcome struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func render(w io.Writer, out core.Outcome, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		jo := jsonOutcome{OK: out.OK, Message: out.Message, Data: out.Data}
		if out.Err != nil {
			jo.Error = out.Err.Error()
		}
		return enc.Encode(jo)
	}
	var lines []string
	switch data := out.Data.(type) {
	case map[string]core.User:
		for _, k := range sortedKeys(data) {
			lines = append(lines, fmt.Sprintf("%s  %s  %s", k, data[k].Name, data[k].Age))
		}
	case map[string]core.Booking:
		for _, k := range sortedKeys(data) {
			b := data[k]
			lines = append(lines, fmt.Sprintf("%s  room %s  checked in: %t", k, b.Room, b.CheckedIn))
		}
	case map[string]core.HistoryRecord:
		for _, k := range sortedKeys(data) {
			h := data[k]
			lines = append(lines, fmt.Sprintf("%s  %s  %s  registrations: %d", k, h.Name, h.Age, h.TotalRegistrations))
		}
	case []core.NumberedRoom:
		for _, r := range data {
			line := fmt.Sprintf("%d. %s  price %s  capacity %s  %s", r.Number, r.Name, r.Price, r.Capacity, r.State)
			if r.Occupant != "" {
				line += "  guest " + r.Occupant
			}
			if len(r.Misc) > 0 {
				line += "  [" + strings.Join(r.Misc, ", ") + "]"
			}
			lines = append(lines, line)
		}
	}
	if out.Message != "" {
		lines = append([]string{out.Message}, lines...)
	}
	if len(lines) == 0 && out.OK {
		lines = []string{"(none)"}
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
