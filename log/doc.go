// Package log provides structured logging handler construction for use with
// [log/slog].
//
// It supports multiple output formats ([FormatJSON] and [FormatLogfmt]) and
// the usual [log/slog] severity levels. Use [CreateHandler] or
// [CreateHandlerWithStrings] to build a handler directly, or use [Config]
// with CLI flag integration via [github.com/spf13/pflag] and shell
// completion support via [github.com/spf13/cobra].
//
// Typical usage creates a [Config], registers flags, then builds a handler
// at startup:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
//
// A [Publisher] fans out log output to multiple subscribers — useful for
// tailing logs from more than one goroutine, or re-emitting them into a
// separate diagnostics stream:
//
//	pub := log.NewPublisher()
//	handler := log.CreateHandler(pub, slog.LevelInfo, log.FormatJSON)
//	logger := slog.New(handler)
//
//	sub := pub.Subscribe()
//	go func() {
//	    for entry := range sub.C() {
//	        // Deliver entry elsewhere.
//	    }
//	}()
//
// Combine it with [io.MultiWriter] to write to multiple locations:
//
//	pub := log.NewPublisher()
//	w := io.MultiWriter(logFile, pub)
//	handler := log.CreateHandler(w, slog.LevelInfo, log.FormatJSON)
//	logger := slog.New(handler)
package log
